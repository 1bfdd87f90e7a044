package popstage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// scriptFile is a file entry in a drop or pick step. Path, when set, names
// a file on disk whose bytes become the payload; otherwise Data is used.
type scriptFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
	Data string `json:"data,omitempty"`
}

// scriptStep is a single action in a script.
type scriptStep struct {
	Action string       `json:"action"`
	Label  string       `json:"label,omitempty"`
	Files  []scriptFile `json:"files,omitempty"`
	On     bool         `json:"on,omitempty"`
	Screen int          `json:"screen,omitempty"`
	Key    int          `json:"key,omitempty"`
	Path   string       `json:"path,omitempty"`
	Theme  string       `json:"theme,omitempty"`
	Frames int          `json:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"dragenter": true, "dragover": true, "dragleave": true, "drop": true, "pick": true,
	"hover": true, "unhover": true, "screen": true, "key": true, "navigate": true, "theme": true,
	"reset": true, "analyze": true, "wait": true, "screenshot": true,
}

// ScriptRunner replays a recorded sequence of stage events, one step per
// frame, for automated runs and visual checks.
//
// A script is JSON of the form
//
//	{"steps": [
//	  {"action": "dragenter"},
//	  {"action": "drop", "files": [{"name": "a.mp3", "type": "audio/mpeg"}]},
//	  {"action": "wait", "frames": 60},
//	  {"action": "screenshot", "label": "docked"}
//	]}
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	ctx       context.Context
}

// LoadScript parses a JSON script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "navigate" && !RoutePath(st.Path).Known() {
			return nil, fmt.Errorf("parse script: step %d: unknown route %q", i, st.Path)
		}
	}
	return &ScriptRunner{steps: sc.Steps, ctx: context.Background()}, nil
}

// LoadScriptFile reads and parses the script at path.
func LoadScriptFile(path string) (*ScriptRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return LoadScript(data)
}

// SetContext sets the context analyze steps submit with.
func (r *ScriptRunner) SetContext(ctx context.Context) {
	r.ctx = ctx
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Step advances the runner by one frame. capture receives screenshot
// labels and may be nil when running without a window.
func (r *ScriptRunner) Step(s *Stage, capture func(label string)) {
	if r.done {
		return
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
	case "dragenter":
		s.DragEnter()
	case "dragover":
		s.DragOver()
	case "dragleave":
		s.DragLeave()
	case "drop":
		s.Drop(st.files())
	case "pick":
		s.PickFiles(st.files())
	case "hover":
		s.HoverUpload(true)
	case "unhover":
		s.HoverUpload(false)
	case "screen":
		s.HoverScreen(ScreenID(st.Screen), st.On)
	case "key":
		s.Key(st.Key)
	case "navigate":
		s.Navigate(RoutePath(st.Path))
	case "theme":
		s.SetTheme(ParseTheme(st.Theme))
	case "reset":
		s.ResetUpload()
	case "analyze":
		s.Analyze(r.ctx)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	case "screenshot":
		if capture != nil {
			capture(st.Label)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}

func (st scriptStep) files() []File {
	files := make([]File, 0, len(st.Files))
	for _, sf := range st.Files {
		f := File{Name: sf.Name, MediaType: sf.Type, Size: int64(len(sf.Data))}
		switch {
		case sf.Path != "":
			p := sf.Path
			if info, err := os.Stat(p); err == nil {
				f.Size = info.Size()
			}
			f.Open = func() (io.ReadCloser, error) { return os.Open(p) }
		default:
			data := sf.Data
			f.Open = func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(data)), nil }
		}
		files = append(files, f)
	}
	return files
}

// FrameClock is a stage clock advanced by whole frames, for headless runs.
type FrameClock struct {
	frame int64
	tick  time.Duration
}

// NewFrameClock returns a clock ticking at tps frames per second.
func NewFrameClock(tps int) *FrameClock {
	if tps <= 0 {
		tps = 60
	}
	return &FrameClock{tick: time.Second / time.Duration(tps)}
}

// Now returns the time of the current frame.
func (c *FrameClock) Now() time.Duration {
	return time.Duration(c.frame) * c.tick
}

// Advance moves the clock forward by n frames.
func (c *FrameClock) Advance(n int) {
	c.frame += int64(n)
}

// RunHeadless drives s without a window: each frame steps the script, runs
// s.Update, then advances clock. It stops when the script is done and no
// transition is running, or after maxFrames frames, and returns the number
// of frames run. Submissions started by the script are awaited before the
// next Update. s should have been created WithClock(clock.Now).
func (r *ScriptRunner) RunHeadless(s *Stage, clock *FrameClock, maxFrames int) int {
	frames := 0
	for frames < maxFrames {
		r.Step(s, nil)
		if s.Snapshot().Submitting {
			if err := s.AwaitSubmission(r.ctx); err != nil {
				s.log.printf("script: %v", err)
			}
		}
		stats := s.Update()
		clock.Advance(1)
		frames++
		if r.done && stats.Running == 0 && !s.Snapshot().Submitting {
			break
		}
	}
	return frames
}
