package drape

// syntheticPointerEvent represents a single injected pointer event in screen
// coordinates, the same space real mouse input arrives in.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
}

// InjectPress queues a pointer press at the given screen coordinates.
// The event is consumed on the next frame's Update call.
func (p *PointerInput) InjectPress(x, y float64) {
	p.injectQueue = append(p.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (p *PointerInput) InjectMove(x, y float64) {
	p.injectQueue = append(p.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (p *PointerInput) InjectRelease(x, y float64) {
	p.injectQueue = append(p.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: false})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (p *PointerInput) InjectClick(x, y float64) {
	p.InjectPress(x, y)
	p.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, then a move and
// release at (toX, toY). Minimum frames is 2.
func (p *PointerInput) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	p.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		p.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	if steps > 0 || toX != fromX || toY != fromY {
		p.InjectMove(toX, toY)
	}
	p.InjectRelease(toX, toY)
}

// PendingInjected returns the number of queued synthetic events.
func (p *PointerInput) PendingInjected() int {
	return len(p.injectQueue)
}

// processInjectedInput pops one event and feeds it through the same edge
// detection as real input. Returns true if an event was consumed.
func (p *PointerInput) processInjectedInput() bool {
	if len(p.injectQueue) == 0 {
		return false
	}
	evt := p.injectQueue[0]
	copy(p.injectQueue, p.injectQueue[1:])
	p.injectQueue = p.injectQueue[:len(p.injectQueue)-1]
	p.processPointer(&p.synthetic, evt.screenX, evt.screenY, evt.pressed)
	return true
}
