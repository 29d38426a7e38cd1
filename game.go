package drape

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// Preview wires the parameter store, the composer, pointer interaction and
// the renderer into an ebiten.Game.
type Preview struct {
	cfg Config

	Store       *Store
	Composer    *Composer
	Interaction *Interaction
	Input       *PointerInput
	Renderer    *Renderer
	Loop        *RenderLoop
	Snapshots   *Snapshotter
	FPS         *FPSOverlay

	runner *TestRunner
	// ExitOnScriptDone stops the loop once an attached script completes.
	ExitOnScriptDone bool

	loadPercent float64
}

// NewPreview builds a preview for cfg. Loading of cfg.Piece starts
// immediately; the render loop starts stopped.
func NewPreview(ctx context.Context, cfg Config, loader AssetLoader) *Preview {
	size := cfg.Calibration.CanvasSize
	viewport := Rect{Width: float64(size), Height: float64(size)}

	initial := DefaultState()
	if cfg.Piece != "" {
		initial.Piece = cfg.Piece
	}

	p := &Preview{cfg: cfg}
	p.Store = NewStore(initial)
	p.Composer = NewComposer(p.Store, loader, cfg.Calibration)
	p.Composer.OnProgress = func(ev LoadEvent) { p.loadPercent = ev.Percent() }
	scene := p.Composer.Initialize(ctx, viewport)

	p.Interaction = NewInteraction(p.Store, scene)
	p.Input = NewPointerInput(p.Interaction)
	p.Snapshots = NewSnapshotter(cfg.SnapshotDir, cfg.SnapshotFormat)

	p.Renderer = NewRenderer(p.Composer, size)
	p.Renderer.Snapshots = p.Snapshots
	if cfg.Window.ShowFPS {
		p.FPS = NewFPSOverlay()
		p.FPS.Status = p.status
		p.Renderer.FPS = p.FPS
	}
	p.Loop = NewRenderLoop(p.Renderer.Draw)
	return p
}

// SetTestRunner attaches a script. Its step runs at the start of each Update.
func (p *Preview) SetTestRunner(r *TestRunner) {
	p.runner = r
}

func (p *Preview) status() string {
	if p.Composer.Loading() {
		return fmt.Sprintf("loading %.0f%%", p.loadPercent)
	}
	return string(p.Store.State().Piece)
}

// Update advances the script, input, loading and animation by one tick.
// It returns ebiten.Termination once the loop has been stopped.
func (p *Preview) Update() error {
	if !p.Loop.Running() {
		return ebiten.Termination
	}
	dt := 1.0 / float64(ebiten.TPS())
	if p.runner != nil {
		p.runner.step(p)
		if p.ExitOnScriptDone && p.runner.Done() {
			p.Loop.Stop()
			return nil
		}
	}
	p.Input.Update()
	p.Composer.Update(dt)
	if p.FPS != nil {
		p.FPS.Update(dt)
	}
	return nil
}

// Draw clears the screen and ticks the render loop.
func (p *Preview) Draw(screen *ebiten.Image) {
	screen.Fill(p.cfg.Window.ClearColor.toRGBA())
	p.Loop.Tick(screen)
}

// Layout keeps the logical screen at the canvas size; ebiten scales it into
// the window.
func (p *Preview) Layout(_, _ int) (int, int) {
	size := p.cfg.Calibration.CanvasSize
	return size, size
}

// Close stops the loop and releases everything the preview owns.
func (p *Preview) Close() {
	p.Loop.Stop()
	p.Interaction.PointerUp()
	p.Composer.Close()
}

// Run opens a window and runs the preview for cfg until the window closes or
// a script finishes. script may be nil.
func Run(ctx context.Context, cfg Config, script *TestRunner) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	SetDebugMode(cfg.Debug)

	loader := NewLoader(os.DirFS(cfg.Assets.Root), cfg.Assets)
	p := NewPreview(ctx, cfg, loader)
	defer p.Close()
	if script != nil {
		p.SetTestRunner(script)
		p.ExitOnScriptDone = true
	}

	size := cfg.Calibration.CanvasSize
	ebiten.SetWindowSize(size, size)
	ebiten.SetWindowTitle(cfg.Window.Title)
	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	p.Loop.Start()
	if err := ebiten.RunGame(p); err != nil {
		return fmt.Errorf("run preview: %w", err)
	}
	return nil
}
