package drape

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestRenderLoopStartStop(t *testing.T) {
	var frames []uint64
	l := NewRenderLoop(func(target *ebiten.Image, frame uint64) {
		if target != nil {
			t.Error("headless tick got a target")
		}
		frames = append(frames, frame)
	})

	if l.Running() || l.Tick(nil) {
		t.Fatal("new loop is ticking")
	}

	l.Start()
	l.Start()
	for i := 0; i < 3; i++ {
		if !l.Tick(nil) {
			t.Fatalf("tick %d skipped", i)
		}
	}
	if len(frames) != 3 || frames[2] != 3 || l.Frame() != 3 {
		t.Errorf("frames = %v, Frame() = %d", frames, l.Frame())
	}

	l.Stop()
	if l.Tick(nil) || len(frames) != 3 {
		t.Error("stopped loop ticked")
	}

	// Restarting continues the frame count.
	l.Start()
	l.Tick(nil)
	if frames[len(frames)-1] != 4 {
		t.Errorf("frame after restart = %d, want 4", frames[len(frames)-1])
	}
}

func TestRenderLoopOnStop(t *testing.T) {
	l := NewRenderLoop(func(*ebiten.Image, uint64) {})
	calls := 0
	l.OnStop = func() { calls++ }

	l.Stop()
	if calls != 0 {
		t.Error("OnStop ran for a loop that never started")
	}
	l.Start()
	l.Stop()
	l.Stop()
	if calls != 1 {
		t.Errorf("OnStop calls = %d, want 1", calls)
	}
}

func TestRenderLoopNilDraw(t *testing.T) {
	expectPanic(t, "NewRenderLoop(nil)", func() { NewRenderLoop(nil) })
}
