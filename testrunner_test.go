package drape

import (
	"strings"
	"testing"
)

// fakeDriver stands in for a Preview.
type fakeDriver struct {
	input     *PointerInput
	target    *recordingTarget
	store     *Store
	busy      bool
	snapshots []string
	stopped   int
}

func newFakeDriver() *fakeDriver {
	rec := &recordingTarget{}
	return &fakeDriver{
		input:  NewPointerInput(rec),
		target: rec,
		store:  NewStore(DefaultState()),
	}
}

func (d *fakeDriver) pointerInput() *PointerInput     { return d.input }
func (d *fakeDriver) parameterStore() ParameterStore { return d.store }
func (d *fakeDriver) loading() bool                  { return d.busy }
func (d *fakeDriver) snapshot(label string)          { d.snapshots = append(d.snapshots, label) }
func (d *fakeDriver) stop()                          { d.stopped++ }

// frame mirrors Preview.Update: the runner steps, then input is processed.
func (d *fakeDriver) frame(r *TestRunner) {
	r.step(d)
	d.input.processInjectedInput()
}

func mustLoadScript(t *testing.T, src string) *TestRunner {
	t.Helper()
	r, err := LoadTestScript([]byte(src))
	if err != nil {
		t.Fatalf("LoadTestScript: %v", err)
	}
	return r
}

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"bad json", `{"steps": [`, "parse test script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "hover"}]}`, `step 0: unknown action "hover"`},
		{"select without piece", `{"steps": [{"action": "wait"}, {"action": "select"}]}`, "step 1: select needs a piece"},
		{"bad dispatch", `{"steps": [{"action": "dispatch", "type": "set-gamma"}]}`, `unknown action "set-gamma"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestTestRunnerSequence(t *testing.T) {
	r := mustLoadScript(t, `{"steps": [
		{"action": "dispatch", "type": "set-hue", "value": 45},
		{"action": "click", "x": 10, "y": 20},
		{"action": "wait", "frames": 3},
		{"action": "snapshot", "label": "after-click"}
	]}`)
	d := newFakeDriver()

	frames := 0
	for !r.Done() && frames < 100 {
		d.frame(r)
		frames++
	}
	// dispatch, click (2 frames), wait (3 frames), snapshot.
	if frames != 7 {
		t.Errorf("script took %d frames, want 7", frames)
	}
	if d.store.State().Color.Hue != 45 {
		t.Errorf("Hue = %v, want 45", d.store.State().Color.Hue)
	}
	expectCalls(t, d.target.calls, []string{"down 10,20", "up"})
	if len(d.snapshots) != 1 || d.snapshots[0] != "after-click" {
		t.Errorf("snapshots = %v", d.snapshots)
	}

	// Done is sticky.
	d.frame(r)
	if len(d.snapshots) != 1 {
		t.Error("finished runner kept running")
	}
}

func TestTestRunnerDrag(t *testing.T) {
	r := mustLoadScript(t, `{"steps": [
		{"action": "drag", "fromX": 0, "fromY": 0, "toX": 30, "toY": 60, "frames": 4},
		{"action": "snapshot", "label": "dragged"}
	]}`)
	d := newFakeDriver()
	for i := 0; i < 20 && !r.Done(); i++ {
		d.frame(r)
	}
	expectCalls(t, d.target.calls, []string{"down 0,0", "move 10,20", "move 20,40", "move 30,60", "up"})
	if len(d.snapshots) != 1 {
		t.Errorf("snapshots = %v", d.snapshots)
	}
}

func TestTestRunnerAwaitLoad(t *testing.T) {
	r := mustLoadScript(t, `{"steps": [
		{"action": "select", "piece": "silk_scarf"},
		{"action": "await-load"},
		{"action": "snapshot", "label": "loaded"}
	]}`)
	d := newFakeDriver()

	d.frame(r)
	if d.store.State().Piece != PieceSilkScarf {
		t.Fatalf("Piece = %q, want silk_scarf", d.store.State().Piece)
	}

	d.busy = true
	for i := 0; i < 5; i++ {
		d.frame(r)
	}
	if len(d.snapshots) != 0 || r.Done() {
		t.Fatal("runner advanced while loading")
	}

	d.busy = false
	d.frame(r)
	if len(d.snapshots) != 1 || d.snapshots[0] != "loaded" {
		t.Errorf("snapshots = %v", d.snapshots)
	}
	if !r.Done() {
		t.Error("runner not done")
	}
}

func TestTestRunnerAwaitLoadWhenIdle(t *testing.T) {
	r := mustLoadScript(t, `{"steps": [{"action": "await-load"}, {"action": "snapshot"}]}`)
	d := newFakeDriver()
	d.frame(r)
	d.frame(r)
	if len(d.snapshots) != 1 {
		t.Errorf("snapshots = %v, want one without waiting", d.snapshots)
	}
}

func TestTestRunnerStop(t *testing.T) {
	r := mustLoadScript(t, `{"steps": [
		{"action": "stop"},
		{"action": "snapshot", "label": "never"}
	]}`)
	d := newFakeDriver()
	d.frame(r)
	d.frame(r)
	if d.stopped != 1 || !r.Done() {
		t.Errorf("stopped = %d, done = %v", d.stopped, r.Done())
	}
	if len(d.snapshots) != 0 {
		t.Errorf("steps ran after stop: %v", d.snapshots)
	}
}
