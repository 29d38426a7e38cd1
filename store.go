package drape

import (
	"fmt"
	"strings"
)

// ActionType identifies a parameter mutation.
type ActionType uint8

const (
	ActionSetPiece ActionType = iota
	ActionSetScale
	ActionSetRotation
	ActionSetOffsetX
	ActionSetOffsetY
	ActionSetHue
	ActionSetSaturation
	ActionSetLightness
	ActionSetShadow
	ActionSetHighlight
	ActionResetColors
	ActionResetLights
	ActionResetScale
	actionCount
)

var actionNames = [actionCount]string{
	ActionSetPiece:      "set-piece",
	ActionSetScale:      "set-scale",
	ActionSetRotation:   "set-rotation",
	ActionSetOffsetX:    "set-offset-x",
	ActionSetOffsetY:    "set-offset-y",
	ActionSetHue:        "set-hue",
	ActionSetSaturation: "set-saturation",
	ActionSetLightness:  "set-lightness",
	ActionSetShadow:     "set-shadow",
	ActionSetHighlight:  "set-highlight",
	ActionResetColors:   "reset-colors",
	ActionResetLights:   "reset-lights",
	ActionResetScale:    "reset-scale",
}

// String returns the kebab-case action name used in scripts.
func (t ActionType) String() string {
	if t < actionCount {
		return actionNames[t]
	}
	return fmt.Sprintf("action(%d)", uint8(t))
}

// ParseActionType resolves a kebab-case action name.
func ParseActionType(name string) (ActionType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range actionNames {
		if n == name {
			return ActionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// Action is a single store mutation. Value carries the numeric payload;
// Piece is used only by ActionSetPiece.
type Action struct {
	Type  ActionType
	Value float64
	Piece PieceID
}

// String formats the action for logs.
func (a Action) String() string {
	switch a.Type {
	case ActionSetPiece:
		return fmt.Sprintf("%s(%s)", a.Type, a.Piece)
	case ActionResetColors, ActionResetLights, ActionResetScale:
		return a.Type.String()
	}
	return fmt.Sprintf("%s(%g)", a.Type, a.Value)
}

// SetPiece returns an action selecting the given garment.
func SetPiece(id PieceID) Action { return Action{Type: ActionSetPiece, Piece: id} }

// SetScale returns an action setting the pattern scale.
func SetScale(v float64) Action { return Action{Type: ActionSetScale, Value: v} }

// SetRotation returns an action setting the pattern rotation in degrees.
func SetRotation(deg float64) Action { return Action{Type: ActionSetRotation, Value: deg} }

// SetOffsetX returns an action setting the horizontal pattern offset.
func SetOffsetX(v float64) Action { return Action{Type: ActionSetOffsetX, Value: v} }

// SetOffsetY returns an action setting the vertical pattern offset.
func SetOffsetY(v float64) Action { return Action{Type: ActionSetOffsetY, Value: v} }

// SetHue returns an action setting the hue rotation in degrees.
func SetHue(deg float64) Action { return Action{Type: ActionSetHue, Value: deg} }

// SetSaturation returns an action setting the saturation factor.
func SetSaturation(v float64) Action { return Action{Type: ActionSetSaturation, Value: v} }

// SetLightness returns an action setting the lightness factor.
func SetLightness(v float64) Action { return Action{Type: ActionSetLightness, Value: v} }

// SetShadow returns an action setting the shadow light intensity.
func SetShadow(v float64) Action { return Action{Type: ActionSetShadow, Value: v} }

// SetHighlight returns an action setting the highlight light intensity.
func SetHighlight(v float64) Action { return Action{Type: ActionSetHighlight, Value: v} }

// ResetColors, ResetLights and ResetScale restore their group to defaults.
func ResetColors() Action { return Action{Type: ActionResetColors} }
func ResetLights() Action { return Action{Type: ActionResetLights} }
func ResetScale() Action  { return Action{Type: ActionResetScale} }

// Reduce applies a to s and returns the new state. It is pure.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionSetPiece:
		s.Piece = a.Piece
	case ActionSetScale:
		s.Transform.Scale = a.Value
	case ActionSetRotation:
		s.Transform.Rotation = a.Value
	case ActionSetOffsetX:
		s.Transform.OffsetX = a.Value
	case ActionSetOffsetY:
		s.Transform.OffsetY = a.Value
	case ActionSetHue:
		s.Color.Hue = a.Value
	case ActionSetSaturation:
		s.Color.Saturation = a.Value
	case ActionSetLightness:
		s.Color.Lightness = a.Value
	case ActionSetShadow:
		s.Lighting.Shadow = a.Value
	case ActionSetHighlight:
		s.Lighting.Highlight = a.Value
	case ActionResetColors:
		s.Color = DefaultColor()
	case ActionResetLights:
		s.Lighting = DefaultLighting()
	case ActionResetScale:
		s.Transform.Scale = DefaultTransform().Scale
	}
	return s
}

// ParameterStore is the state container consumed by the compositor, the
// composer and the interaction controller.
type ParameterStore interface {
	State() State
	Dispatch(a Action)
	Subscribe(fn func(Action, State)) Subscription
}

type subscriber struct {
	id uint32
	fn func(Action, State)
}

// Store is the default ParameterStore. Dispatch is synchronous: subscribers
// run in registration order before Dispatch returns. Not safe for concurrent
// use; all dispatches happen on the game thread.
type Store struct {
	state  State
	subs   []subscriber
	nextID uint32
}

// NewStore creates a store holding initial.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// State returns the current snapshot.
func (s *Store) State() State {
	return s.state
}

// Dispatch applies a and notifies subscribers with the resulting state.
func (s *Store) Dispatch(a Action) {
	s.state = Reduce(s.state, a)
	// Copy so a subscriber may unsubscribe during notification.
	subs := append([]subscriber(nil), s.subs...)
	for _, sub := range subs {
		sub.fn(a, s.state)
	}
}

// Subscribe registers fn to run after every dispatch.
func (s *Store) Subscribe(fn func(Action, State)) Subscription {
	if fn == nil {
		panic("drape: cannot subscribe nil func")
	}
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return NewSubscription(func() { s.unsubscribe(id) })
}

func (s *Store) unsubscribe(id uint32) {
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Subscription allows removing a store subscriber.
type Subscription struct {
	remove func()
}

// NewSubscription wraps an unsubscribe func for ParameterStore
// implementations other than Store.
func NewSubscription(remove func()) Subscription {
	return Subscription{remove: remove}
}

// Remove unregisters the subscriber. Safe to call more than once.
func (h Subscription) Remove() {
	if h.remove != nil {
		h.remove()
	}
}
