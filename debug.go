package popstage

import (
	"log"
	"os"
)

// debugLogger writes diagnostics to stderr when debug mode is on and
// discards them otherwise.
type debugLogger struct {
	enabled bool
	l       *log.Logger
}

func newDebugLogger(enabled bool) *debugLogger {
	return &debugLogger{enabled: enabled, l: log.New(os.Stderr, "[popstage] ", log.Lmicroseconds)}
}

func (d *debugLogger) printf(format string, args ...any) {
	if d == nil || !d.enabled {
		return
	}
	d.l.Printf(format, args...)
}

// FrameStats summarizes one FrameApplier pass.
type FrameStats struct {
	Version     uint64
	Evaluated   int
	Running     int
	Highlighted int
}

// logFrame prints per-frame stats. Idle frames (nothing running) are
// skipped to keep the log readable.
func (d *debugLogger) logFrame(s FrameStats) {
	if s.Running == 0 {
		return
	}
	d.printf("frame: v%d | targets: %d (%d running) | highlighted: %d",
		s.Version, s.Evaluated, s.Running, s.Highlighted)
}

func (d *debugLogger) logRetarget(t *TweenTarget) {
	d.printf("retarget %s: %+v -> %+v over %v", t.ID, t.From, t.To, t.Duration)
}

func (d *debugLogger) logSnapshot(s *Snapshot) {
	d.printf("snapshot v%d: route=%s dock=%t dragging=%t selection=%d upload=%t theme=%s",
		s.Version, s.Route, s.Dock.Open, s.Dragging, s.Selection.Len(), s.Upload != nil, s.Theme)
}
