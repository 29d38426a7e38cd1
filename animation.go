package drape

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates one float64 field. Create one with TweenValue and call
// Update(dt) each frame; owners drive their own tweens.
type Tween struct {
	tween *gween.Tween
	field *float64
	Done  bool
}

// Update advances the tween by dt seconds and writes the value to the field.
func (tw *Tween) Update(dt float32) {
	if tw.Done {
		return
	}
	val, finished := tw.tween.Update(dt)
	*tw.field = float64(val)
	tw.Done = finished
}

// TweenValue animates *field from from to to over duration seconds. A
// non-positive duration writes the end value immediately.
func TweenValue(field *float64, from, to float64, duration float32, fn ease.TweenFunc) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	if duration <= 0 {
		*field = to
		return &Tween{tween: gween.New(float32(to), float32(to), 0, fn), field: field, Done: true}
	}
	*field = from
	return &Tween{tween: gween.New(float32(from), float32(to), duration, fn), field: field}
}
