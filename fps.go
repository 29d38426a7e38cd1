package drape

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPSOverlay draws the current FPS, TPS and load state in a small panel.
// The text is refreshed every ~0.5 seconds.
type FPSOverlay struct {
	img     *ebiten.Image
	elapsed float64
	op      ebiten.DrawImageOptions

	// Status, when set, supplies an extra line such as "loading 60%".
	Status func() string
}

// NewFPSOverlay creates an overlay panel.
func NewFPSOverlay() *FPSOverlay {
	// 140x48 fits three lines of debug font.
	return &FPSOverlay{img: ebiten.NewImage(140, 48), elapsed: 0.5}
}

// Update advances the refresh timer by dt seconds.
func (f *FPSOverlay) Update(dt float64) {
	f.elapsed += dt
	if f.elapsed < 0.5 {
		return
	}
	f.elapsed = 0

	f.img.Clear()
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	msg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	if f.Status != nil {
		if s := f.Status(); s != "" {
			msg += "\n" + s
		}
	}
	ebitenutil.DebugPrint(f.img, msg)
}

// Draw blits the panel at the top-left corner of screen.
func (f *FPSOverlay) Draw(screen *ebiten.Image) {
	f.op.GeoM.Reset()
	screen.DrawImage(f.img, &f.op)
}
