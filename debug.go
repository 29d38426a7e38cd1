package drape

import (
	"fmt"
	"io"
	"os"
	"time"
)

// LogOutput receives load progress, load errors and debug stats.
// Replace it before starting the preview to redirect logs.
var LogOutput io.Writer = os.Stderr

// globalDebug enables per-frame stats and extra tree checks.
var globalDebug bool

// SetDebugMode toggles debug logging and disposed-node checks.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// logf writes one prefixed line to LogOutput.
func logf(format string, args ...any) {
	_, _ = fmt.Fprintf(LogOutput, "[drape] "+format+"\n", args...)
}

// debugf is logf gated by debug mode.
func debugf(format string, args ...any) {
	if globalDebug {
		logf(format, args...)
	}
}

// debugStats holds per-frame timing and draw metrics.
// Only populated when debug mode is on.
type debugStats struct {
	shadeTime     time.Duration
	drawTime      time.Duration
	composeTime   time.Duration
	triangleCount int
	drawCallCount int
}

// debugLog prints frame stats.
func debugLog(frame uint64, stats debugStats) {
	if !globalDebug {
		return
	}
	total := stats.shadeTime + stats.drawTime + stats.composeTime
	logf("frame %d | shade: %v | draw: %v | compose: %v | total: %v",
		frame, stats.shadeTime, stats.drawTime, stats.composeTime, total)
	logf("triangles: %d | draw calls: %d", stats.triangleCount, stats.drawCallCount)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("drape debug: %s on disposed node %q", op, n.Name))
	}
}
