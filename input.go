package drape

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// PointerTarget receives pointer transitions in screen coordinates.
// *Interaction implements it.
type PointerTarget interface {
	PointerDown(sx, sy float64) bool
	PointerMove(sx, sy float64)
	PointerUp()
}

// pointerState tracks one physical pointer between frames.
type pointerState struct {
	down         bool
	lastX, lastY float64
}

// PointerInput polls the mouse and the first touch each frame and feeds edge
// transitions to a PointerTarget. Queued synthetic events take priority: while
// any are pending, one is consumed per frame and real input is ignored.
type PointerInput struct {
	target PointerTarget

	mouse pointerState
	touch pointerState

	touchID     ebiten.TouchID
	touchActive bool
	touchIDs    []ebiten.TouchID

	synthetic   pointerState
	injectQueue []syntheticPointerEvent
}

// NewPointerInput creates an input poller feeding target.
func NewPointerInput(target PointerTarget) *PointerInput {
	return &PointerInput{target: target}
}

// Update processes one frame of input.
func (p *PointerInput) Update() {
	if p.processInjectedInput() {
		return
	}
	p.processMousePointer()
	p.processTouchPointer()
}

// processMousePointer handles the left mouse button.
func (p *PointerInput) processMousePointer() {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	p.processPointer(&p.mouse, float64(mx), float64(my), pressed)
}

// processTouchPointer follows the first touch until it lifts; later touches
// are ignored while it is down.
func (p *PointerInput) processTouchPointer() {
	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])
	if p.touchActive {
		for _, id := range p.touchIDs {
			if id == p.touchID {
				tx, ty := ebiten.TouchPosition(id)
				p.processPointer(&p.touch, float64(tx), float64(ty), true)
				return
			}
		}
		p.touchActive = false
		p.processPointer(&p.touch, p.touch.lastX, p.touch.lastY, false)
		return
	}
	if len(p.touchIDs) == 0 {
		return
	}
	p.touchID = p.touchIDs[0]
	p.touchActive = true
	tx, ty := ebiten.TouchPosition(p.touchID)
	p.processPointer(&p.touch, float64(tx), float64(ty), true)
}

// processPointer runs the press/move/release edge detection for one pointer.
func (p *PointerInput) processPointer(ps *pointerState, sx, sy float64, pressed bool) {
	switch {
	case pressed && !ps.down:
		ps.down = true
		p.target.PointerDown(sx, sy)
	case !pressed && ps.down:
		ps.down = false
		p.target.PointerUp()
	case pressed && ps.down:
		if sx != ps.lastX || sy != ps.lastY {
			p.target.PointerMove(sx, sy)
		}
	}
	ps.lastX, ps.lastY = sx, sy
}
