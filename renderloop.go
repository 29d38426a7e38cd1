package drape

import "github.com/hajimehoshi/ebiten/v2"

// FrameFunc draws one frame into target. target is nil when the loop is
// driven without a display.
type FrameFunc func(target *ebiten.Image, frame uint64)

// RenderLoop is the start/stop-able per-frame driver. It does not own a
// timer: a driver calls Tick once per display frame (the ebiten game from
// Draw, or a test directly). While stopped, Tick does nothing.
type RenderLoop struct {
	draw    FrameFunc
	running bool
	frame   uint64

	// OnStop runs once when Stop transitions the loop out of running.
	OnStop func()
}

// NewRenderLoop creates a stopped loop that calls draw on every tick.
func NewRenderLoop(draw FrameFunc) *RenderLoop {
	if draw == nil {
		panic("drape: render loop needs a frame func")
	}
	return &RenderLoop{draw: draw}
}

// Start begins ticking. Calling Start on a running loop is a no-op.
func (l *RenderLoop) Start() {
	l.running = true
}

// Stop halts ticking. Calling Stop on a stopped loop is a no-op.
func (l *RenderLoop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	if l.OnStop != nil {
		l.OnStop()
	}
}

// Running reports whether the loop is ticking.
func (l *RenderLoop) Running() bool {
	return l.running
}

// Frame returns the number of frames drawn so far.
func (l *RenderLoop) Frame() uint64 {
	return l.frame
}

// Tick draws one frame if running and reports whether it did.
func (l *RenderLoop) Tick(target *ebiten.Image) bool {
	if !l.running {
		return false
	}
	l.frame++
	l.draw(target, l.frame)
	return true
}
