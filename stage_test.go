package popstage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

type manualClock struct {
	now time.Duration
}

func (c *manualClock) Now() time.Duration { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now += d }

// fakeAnalyzer answers Submit with res/err. When block is set, Submit waits
// for it to be closed first.
type fakeAnalyzer struct {
	res   *AnalysisResult
	err   error
	block chan struct{}
	calls int
	got   *UploadRecord
}

func (f *fakeAnalyzer) Submit(ctx context.Context, rec *UploadRecord) (*AnalysisResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.calls++
	f.got = rec
	return f.res, f.err
}

func newTestStage(t *testing.T, a Analyzer) (*Stage, *manualClock) {
	t.Helper()
	clk := &manualClock{}
	if a == nil {
		a = &fakeAnalyzer{res: &AnalysisResult{}}
	}
	s, err := NewStage(DefaultConfig(), WithClock(clk.Now), WithAnalyzer(a))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s, clk
}

func lastNotice(t *testing.T, s *Stage) Notice {
	t.Helper()
	ns := s.Notices().Visible(s.Now())
	if len(ns) == 0 {
		t.Fatal("no notice raised")
	}
	return ns[len(ns)-1]
}

func TestNewStageInitialState(t *testing.T) {
	s, _ := newTestStage(t, nil)
	snap := s.Snapshot()
	if snap.Version != 1 {
		t.Errorf("Version = %d, want 1", snap.Version)
	}
	if snap.Route != RouteUpload || snap.Theme != ThemeDark {
		t.Errorf("route=%q theme=%v", snap.Route, snap.Theme)
	}
	for i := 0; i < 4; i++ {
		if snap.Channel(ScreenID(i)) != i {
			t.Errorf("screen %d channel = %d", i, snap.Channel(ScreenID(i)))
		}
	}
	if !s.Drag().Acquired() {
		t.Error("stage should acquire the drag session")
	}
	stats := s.Update()
	if stats.Running != 0 || stats.Evaluated != 6 {
		t.Errorf("stats = %+v", stats)
	}
	if s.Graph().Camera.Pose() != DefaultRouteTable().Lookup(RouteUpload) {
		t.Error("camera should rest at the upload pose")
	}
}

func TestNewStageRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theme = "sepia"
	if _, err := NewStage(cfg); err == nil {
		t.Error("expected error")
	}
}

func TestStageDragOpensDock(t *testing.T) {
	s, clk := newTestStage(t, nil)
	s.DragEnter()
	s.DragEnter()
	if !s.Snapshot().Dragging || !s.Snapshot().Dock.Open {
		t.Fatal("drag should open the dock")
	}
	s.DragLeave()
	if !s.Snapshot().Dock.Open {
		t.Fatal("nested leave must not close the dock")
	}

	clk.Advance(time.Second)
	s.Update()
	mid := s.Graph().Dock.Position.Z
	if mid <= 0 || mid >= 0.12 {
		t.Errorf("dock halfway = %v, want in (0, 0.12)", mid)
	}
	clk.Advance(time.Second)
	s.Update()
	if got := s.Graph().Dock.Position.Z; got != 0.12 {
		t.Errorf("dock = %v, want exactly 0.12", got)
	}

	s.DragLeave()
	if s.Snapshot().Dragging || s.Snapshot().Dock.Open {
		t.Error("last leave should close the dock")
	}
	clk.Advance(2 * time.Second)
	s.Update()
	if got := s.Graph().Dock.Position.Z; got != 0 {
		t.Errorf("dock = %v, want 0", got)
	}
}

func TestStageDropAudio(t *testing.T) {
	s, _ := newTestStage(t, nil)
	s.DragEnter()
	s.Drop([]File{textFile("readme.txt"), audioFile("Track 01.flac")})

	snap := s.Snapshot()
	if snap.Dragging || snap.Dock.Open {
		t.Error("drop should end the drag")
	}
	if snap.Upload == nil || snap.Upload.Title != "Track 01" {
		t.Fatalf("upload = %+v", snap.Upload)
	}
	n := lastNotice(t, s)
	if n.Kind != NoticeSuccess || n.Message != "Audio file uploaded!" {
		t.Errorf("notice = %+v", n)
	}
}

func TestStageRejectedDropLeavesStore(t *testing.T) {
	s, _ := newTestStage(t, nil)
	s.PickFiles([]File{audioFile("keep.mp3")})
	before := s.Snapshot()

	s.Drop([]File{textFile("a.txt")})
	if s.Snapshot() != before {
		t.Error("rejected drop must not change the store")
	}
	n := lastNotice(t, s)
	if n.Kind != NoticeError || n.Message != "The file you uploaded is not audio!" {
		t.Errorf("notice = %+v", n)
	}
}

func TestStageHoverHighlightsPlayer(t *testing.T) {
	s, _ := newTestStage(t, nil)
	s.HoverUpload(true)
	stats := s.Update()

	body := s.Graph().Root.Find("cdplayer_body")
	if !body.Highlighted {
		t.Error("player body should be highlighted")
	}
	if s.Graph().CDPlayer.Highlighted {
		t.Error("groups are never highlighted")
	}
	if stats.Highlighted != 8 {
		t.Errorf("highlighted = %d, want 8 player drawables", stats.Highlighted)
	}
	if s.Graph().Root.Find("room").Highlighted {
		t.Error("room must not be highlighted")
	}
	if !s.Snapshot().Dock.Open {
		t.Error("hovering the upload region opens the dock")
	}

	s.HoverUpload(false)
	if s.Update().Highlighted != 0 || body.Highlighted {
		t.Error("unhover should clear the highlight")
	}
	if s.Snapshot().Dock.Open {
		t.Error("dock should close")
	}
}

func TestStageHoverWithDragKeepsDockOpen(t *testing.T) {
	s, _ := newTestStage(t, nil)
	s.DragEnter()
	s.HoverUpload(true)
	s.HoverUpload(false)
	if !s.Snapshot().Dock.Open {
		t.Error("an active drag keeps the dock open")
	}
}

func TestStageHoverWithoutPlayer(t *testing.T) {
	s, _ := newTestStage(t, nil)
	s.Graph().CDPlayer = nil
	v := s.Snapshot().Version
	s.HoverUpload(true)
	if s.Snapshot().Version != v {
		t.Error("hover without a player must do nothing")
	}
}

func TestStageNavigateMovesCamera(t *testing.T) {
	s, clk := newTestStage(t, nil)
	s.Navigate(RouteAnalysis)
	want := DefaultRouteTable().Lookup(RouteAnalysis)

	clk.Advance(500 * time.Millisecond)
	s.Update()
	if s.Graph().Camera.Position == want.Position {
		t.Error("camera should still be moving")
	}
	clk.Advance(500 * time.Millisecond)
	s.Update()
	if s.Graph().Camera.Pose() != want {
		t.Errorf("camera = %+v, want %+v", s.Graph().Camera.Pose(), want)
	}
	if x := s.Graph().Marker.Position.X; math.Abs(x-(-1.2+0.8)) > 1e-9 {
		t.Errorf("marker x = %v, want -0.4", x)
	}
}

func TestStageNavigateInterrupted(t *testing.T) {
	s, clk := newTestStage(t, nil)
	s.Navigate(RouteSupport)
	clk.Advance(300 * time.Millisecond)
	s.Update()
	before := s.Graph().Camera.Position

	s.Navigate(RouteResults)
	s.Update()
	if !s.Graph().Camera.Position.Near(before, tweenEps) {
		t.Errorf("camera jumped: %v -> %v", before, s.Graph().Camera.Position)
	}
	clk.Advance(time.Second)
	s.Update()
	if s.Graph().Camera.Pose() != DefaultRouteTable().Lookup(RouteResults) {
		t.Error("camera should settle on the last route")
	}
}

func TestStageUnrelatedChangesDoNotRetarget(t *testing.T) {
	s, _ := newTestStage(t, nil)
	retargets := 0
	s.Transitions().OnRetarget(func(*TweenTarget) { retargets++ })

	s.HoverScreen(1, true)
	s.Key(4)
	s.PickFiles([]File{audioFile("a.mp3")})
	s.ResetUpload()
	s.Navigate(RouteUpload)
	if retargets != 0 {
		t.Errorf("retargets = %d, want 0", retargets)
	}

	s.Navigate(RouteResults)
	if retargets != 3 {
		t.Errorf("route change retargets = %d, want 3 (position, rotation, marker)", retargets)
	}
}

func TestStageTheme(t *testing.T) {
	s, clk := newTestStage(t, nil)
	s.ToggleTheme()
	if s.Snapshot().Theme != ThemeLight {
		t.Fatal("theme should be light")
	}
	clk.Advance(800 * time.Millisecond)
	s.Update()
	if s.Graph().Ambient.Intensity != 1 || s.Graph().Point.Intensity != 12 {
		t.Errorf("lights = %v/%v, want 1/12", s.Graph().Ambient.Intensity, s.Graph().Point.Intensity)
	}
	s.ToggleTheme()
	if s.Snapshot().Theme != ThemeDark {
		t.Error("toggle back to dark")
	}
}

func TestStageLightThemeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theme = "light"
	s, err := NewStage(cfg, WithClock(func() time.Duration { return 0 }))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Update()
	if s.Graph().Ambient.Intensity != 1 {
		t.Errorf("ambient = %v, want the light preset", s.Graph().Ambient.Intensity)
	}
}

func TestStageChannelKey(t *testing.T) {
	s, clk := newTestStage(t, nil)
	if s.Key(3) {
		t.Error("no screen hovered")
	}
	s.HoverScreen(2, true)
	if !s.Key(5) {
		t.Fatal("Key(5) should switch screen 2")
	}
	s.Update()
	if s.Graph().Screens[2].Channel != 5 {
		t.Errorf("screen channel = %d, want 5", s.Graph().Screens[2].Channel)
	}
	if !s.Channels().Glitching(2, clk.now) {
		t.Error("screen should glitch")
	}
	if s.Key(5) {
		t.Error("same channel is ignored")
	}
}

func TestStageAnalyzeSuccess(t *testing.T) {
	res := &AnalysisResult{Analysis: "ok"}
	fa := &fakeAnalyzer{res: res}
	s, _ := newTestStage(t, fa)

	if s.Analyze(context.Background()) {
		t.Fatal("Analyze without an upload should do nothing")
	}
	s.PickFiles([]File{audioFile("a.mp3")})
	if !s.Analyze(context.Background()) {
		t.Fatal("Analyze should start")
	}
	if !s.Snapshot().Submitting {
		t.Error("Submitting should be set")
	}
	if err := s.AwaitSubmission(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Submitting || snap.Route != RouteAnalysis {
		t.Errorf("submitting=%v route=%q", snap.Submitting, snap.Route)
	}
	if s.LastResult() != res || fa.calls != 1 || fa.got != snap.Upload {
		t.Errorf("result=%v calls=%d", s.LastResult(), fa.calls)
	}
}

func TestStageAnalyzeSingleFlight(t *testing.T) {
	fa := &fakeAnalyzer{res: &AnalysisResult{}, block: make(chan struct{})}
	s, _ := newTestStage(t, fa)
	s.PickFiles([]File{audioFile("a.mp3")})

	if !s.Analyze(context.Background()) {
		t.Fatal("first Analyze should start")
	}
	if s.Analyze(context.Background()) {
		t.Error("second Analyze while in flight should do nothing")
	}
	s.Update()
	if !s.Snapshot().Submitting {
		t.Error("Update must not block on the pending request")
	}
	close(fa.block)
	if err := s.AwaitSubmission(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fa.calls != 1 {
		t.Errorf("calls = %d, want 1", fa.calls)
	}
}

func TestStageAnalyzeFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend", &SubmissionError{Status: 422, Message: "Unsupported codec"}, "Unsupported codec"},
		{"no message", &SubmissionError{Status: 500}, "Analysis failed, please try again."},
		{"other", errors.New("boom"), "Analysis failed, please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStage(t, &fakeAnalyzer{err: tt.err})
			s.PickFiles([]File{audioFile("a.mp3")})
			s.Analyze(context.Background())
			if err := s.AwaitSubmission(context.Background()); err != nil {
				t.Fatal(err)
			}
			snap := s.Snapshot()
			if snap.Submitting || snap.Route != RouteUpload {
				t.Errorf("submitting=%v route=%q", snap.Submitting, snap.Route)
			}
			n := lastNotice(t, s)
			if n.Kind != NoticeError || n.Message != tt.want {
				t.Errorf("notice = %+v, want error %q", n, tt.want)
			}
		})
	}
}

func TestStageAwaitNothingInFlight(t *testing.T) {
	s, _ := newTestStage(t, nil)
	if err := s.AwaitSubmission(context.Background()); err != nil {
		t.Error(err)
	}
}

func TestStageWithNotifier(t *testing.T) {
	var got []Notice
	s, err := NewStage(DefaultConfig(), WithNotifier(NotifierFunc(func(n Notice) { got = append(got, n) })))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.PickFiles([]File{textFile("x.txt")})
	if len(got) != 1 || got[0].Kind != NoticeError {
		t.Errorf("notices = %v", got)
	}
	if s.Notices().Len() != 1 {
		t.Error("the stage queue also receives notices")
	}
}

func TestStageClose(t *testing.T) {
	s, _ := newTestStage(t, nil)
	s.DragEnter()
	s.Close()
	if s.Snapshot().Dragging {
		t.Error("closing during a drag ends it")
	}
	s.DragEnter()
	if s.Snapshot().Dragging {
		t.Error("closed stage must ignore drag events")
	}
	s.Close() // idempotent
}
