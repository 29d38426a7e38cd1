package drape

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`

	// Type, Value and Piece describe a store action for "dispatch" and
	// "select" steps.
	Type  string  `json:"type,omitempty"`
	Value float64 `json:"value,omitempty"`
	Piece PieceID `json:"piece,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// scriptDriver is what a TestRunner drives. *Preview implements it.
type scriptDriver interface {
	pointerInput() *PointerInput
	parameterStore() ParameterStore
	loading() bool
	snapshot(label string)
	stop()
}

func (p *Preview) pointerInput() *PointerInput     { return p.Input }
func (p *Preview) parameterStore() ParameterStore { return p.Store }
func (p *Preview) loading() bool                  { return p.Composer.Loading() }
func (p *Preview) snapshot(label string)          { p.Snapshots.Queue(label) }
func (p *Preview) stop()                          { p.Loop.Stop() }

// TestRunner sequences injected pointer events, store actions and snapshots
// across frames for automated visual checks. Attach it with
// Preview.SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	awaiting  bool
	done      bool
}

// LoadTestScript parses and validates a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func (st testStep) validate() error {
	switch st.Action {
	case "press", "move", "release", "click", "drag", "wait", "snapshot",
		"await-load", "stop":
		return nil
	case "select":
		if st.Piece == "" {
			return fmt.Errorf("select needs a piece")
		}
		return nil
	case "dispatch":
		if _, err := ParseActionType(st.Type); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *TestRunner) step(d scriptDriver) {
	if r.done {
		return
	}
	in := d.pointerInput()
	// Wait for pending injections to drain before advancing.
	if in.PendingInjected() > 0 {
		return
	}
	if r.awaiting {
		if d.loading() {
			return
		}
		r.awaiting = false
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "snapshot":
		d.snapshot(st.Label)
	case "press":
		in.InjectPress(st.X, st.Y)
	case "move":
		in.InjectMove(st.X, st.Y)
	case "release":
		in.InjectRelease(st.X, st.Y)
	case "click":
		in.InjectClick(st.X, st.Y)
	case "drag":
		in.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "select":
		d.parameterStore().Dispatch(SetPiece(st.Piece))
	case "dispatch":
		typ, _ := ParseActionType(st.Type)
		d.parameterStore().Dispatch(Action{Type: typ, Value: st.Value, Piece: st.Piece})
	case "await-load":
		r.awaiting = d.loading()
	case "stop":
		d.stop()
		r.done = true
		return
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && !r.awaiting && in.PendingInjected() == 0 {
		r.done = true
	}
}
