package drape

import "math"

// HitTester maps screen positions to normalized device coordinates and picks
// the nearest object under them. *Scene implements it.
type HitTester interface {
	ScreenToNDC(sx, sy float64) (float64, float64)
	PickNDC(nx, ny float64) (Hit, bool)
}

// ScreenToNDC maps a screen position through the scene camera's viewport.
func (s *Scene) ScreenToNDC(sx, sy float64) (float64, float64) {
	return s.Camera.ScreenToNDC(sx, sy)
}

// DragState is the state of the pattern drag controller.
type DragState uint8

const (
	DragIdle DragState = iota
	DragActive
)

// String returns "idle" or "dragging".
func (s DragState) String() string {
	if s == DragActive {
		return "dragging"
	}
	return "idle"
}

// Interaction turns pointer input into pattern offsets. A drag starts only
// when the nearest object under the pointer is the garment; every move while
// dragging sets the offsets absolutely from the pointer position, accounting
// for the pattern rotation. Pointer events are not clipped to the canvas.
type Interaction struct {
	store ParameterStore
	hits  HitTester
	state DragState

	// OnDragStart and OnDragEnd observe state transitions.
	OnDragStart func(Hit)
	OnDragEnd   func()
}

// NewInteraction creates an idle controller.
func NewInteraction(store ParameterStore, hits HitTester) *Interaction {
	return &Interaction{store: store, hits: hits}
}

// State returns the current drag state.
func (in *Interaction) State() DragState {
	return in.state
}

// Dragging reports whether a drag is in progress.
func (in *Interaction) Dragging() bool {
	return in.state == DragActive
}

// PointerDown hit-tests the pointer and starts a drag on the garment. It
// reports whether a drag started. A miss is not an error.
func (in *Interaction) PointerDown(sx, sy float64) bool {
	if in.state == DragActive || in.hits == nil {
		return false
	}
	hit, ok := in.hits.PickNDC(in.hits.ScreenToNDC(sx, sy))
	if !ok || hit.Node == nil || hit.Node.Tag != TagGarment {
		return false
	}
	in.state = DragActive
	if in.OnDragStart != nil {
		in.OnDragStart(hit)
	}
	return true
}

// PointerMove updates the pattern offsets while dragging.
func (in *Interaction) PointerMove(sx, sy float64) {
	if in.state != DragActive {
		return
	}
	nx, ny := in.hits.ScreenToNDC(sx, sy)
	ox, oy := OffsetForPointer(in.store.State().Transform.Rotation, nx, ny)
	in.store.Dispatch(SetOffsetX(ox))
	in.store.Dispatch(SetOffsetY(oy))
}

// PointerUp ends any drag. It is safe to call while idle.
func (in *Interaction) PointerUp() {
	if in.state != DragActive {
		return
	}
	in.state = DragIdle
	if in.OnDragEnd != nil {
		in.OnDragEnd()
	}
}

// OffsetForPointer converts a pointer position in NDC to pattern offsets for
// a pattern rotated by rotation degrees. The cardinal rotations use exact
// values; other angles use the continuous form, which agrees with them:
//
//	offsetX = -x*cos(r) - y*sin(r)
//	offsetY =  x*sin(r) - y*cos(r)
func OffsetForPointer(rotation, x, y float64) (float64, float64) {
	if r, ok := cardinal(rotation); ok {
		switch r {
		case 0:
			return -x, -y
		case 90:
			return -y, x
		case -90:
			return y, -x
		case 180:
			return x, y
		}
	}
	rad := degToRad(rotation)
	c, s := math.Cos(rad), math.Sin(rad)
	return -x*c - y*s, x*s - y*c
}
