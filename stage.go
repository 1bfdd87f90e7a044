package popstage

import (
	"context"
	"errors"
	"time"
)

// Analyzer submits an upload for analysis. *Submitter is the production
// implementation.
type Analyzer interface {
	Submit(ctx context.Context, rec *UploadRecord) (*AnalysisResult, error)
}

type submitResult struct {
	res *AnalysisResult
	err error
}

// Option configures a Stage.
type Option func(*Stage)

// WithNotifier forwards every notice to n in addition to the stage's own
// notice queue.
func WithNotifier(n Notifier) Option {
	return func(s *Stage) { s.extraNotifier = n }
}

// WithAnalyzer replaces the HTTP submitter built from the config.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Stage) { s.analyzer = a }
}

// WithClock replaces the wall clock. The function returns the time
// elapsed since an arbitrary fixed origin and must never go backward.
func WithClock(clock func() time.Duration) Option {
	return func(s *Stage) { s.clock = clock }
}

// Stage wires the synchronization components to the desk scene. Event
// methods (DragEnter, Navigate, Key, ...) and Update must all be called
// from one goroutine; each event runs to completion, including any
// retargeting it causes, before it returns.
type Stage struct {
	cfg    *Config
	routes *RouteTable

	store       *Store
	drag        *DragSession
	selection   *SelectionRegistry
	transitions *TransitionController
	channels    *ChannelSelector
	graph       *Graph
	frame       *FrameApplier

	notices       *NoticeQueue
	extraNotifier Notifier
	notifier      Notifier
	analyzer      Analyzer
	clock         func() time.Duration
	log           *debugLogger

	prev        *Snapshot
	uploadHover bool
	results     chan submitResult
	lastResult  *AnalysisResult
	release     func()
	handles     []CallbackHandle
}

// NewStage builds a stage from cfg (nil means DefaultConfig) and acquires
// its drag session. Call Close to release it.
func NewStage(cfg *Config, opts ...Option) (*Stage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	routes, err := cfg.RouteTable()
	if err != nil {
		return nil, err
	}

	theme := ParseTheme(cfg.Theme)
	graph := NewDeskGraph(routes, cfg.Lights.For(theme))
	channels := make(map[ScreenID]int, len(graph.Screens))
	for id, scr := range graph.Screens {
		channels[id] = scr.Channel
	}
	store := NewStore(Snapshot{Route: DefaultRoute, Theme: theme, Channels: channels})

	s := &Stage{
		cfg:         cfg,
		routes:      routes,
		store:       store,
		drag:        NewDragSession(),
		selection:   NewSelectionRegistry(),
		transitions: NewTransitionController(),
		channels:    NewChannelSelector(store),
		graph:       graph,
		notices:     NewNoticeQueue(cfg.Notices.Capacity, cfg.Notices.TTL),
		results:     make(chan submitResult, 1),
		log:         newDebugLogger(cfg.Debug),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		start := time.Now()
		s.clock = func() time.Duration { return time.Since(start) }
	}
	if s.analyzer == nil {
		s.analyzer = NewSubmitter(cfg.Analysis.BaseURL, cfg.Analysis.Timeout)
	}
	s.notifier = MultiNotifier(s.notices, s.extraNotifier)
	s.frame = NewFrameApplier(store, s.transitions, graph)
	s.frame.log = s.log

	s.seed()
	s.wire()
	s.prev = store.Current()
	s.release = s.drag.Acquire()
	return s, nil
}

// seed records the resting value of every target from the initial state.
func (s *Stage) seed() {
	snap := s.store.Current()
	pose := s.routes.Lookup(snap.Route)
	preset := s.cfg.Lights.For(snap.Theme)
	s.transitions.Seed(TargetCameraPosition, pose.Position)
	s.transitions.Seed(TargetCameraRotation, pose.Rotation)
	s.transitions.Seed(TargetDockOffset, Vec3{})
	s.transitions.Seed(TargetMarkerOffset, Vec3{X: s.markerOffset(snap.Route)})
	s.transitions.Seed(TargetAmbientLight, Vec3{X: preset.Ambient})
	s.transitions.Seed(TargetPointLight, Vec3{X: preset.Point})
}

func (s *Stage) wire() {
	s.handles = append(s.handles,
		s.drag.OnDragStarted(func() {
			s.store.SetDragging(true)
			s.syncDock()
		}),
		s.drag.OnDragEnded(func() {
			s.store.SetDragging(false)
			s.syncDock()
		}),
		s.drag.OnAccepted(func(f File) {
			s.store.AcceptUpload(f)
			s.notify(NoticeSuccess, uploadSuccessMessage)
		}),
		s.drag.OnRejected(func(err error) {
			s.notify(NoticeError, err.Error())
		}),
		s.selection.OnChange(func(set SelectionSet) {
			s.store.PublishSelection(set)
		}),
		s.store.Subscribe(s.onSnapshot),
		s.transitions.OnRetarget(s.log.logRetarget),
	)
}

// onSnapshot retargets animations whose inputs changed between the
// previous and the new snapshot.
func (s *Stage) onSnapshot(next *Snapshot) {
	prev := s.prev
	s.prev = next
	s.log.logSnapshot(next)
	now := s.clock()

	if next.Route != prev.Route {
		pose := s.routes.Lookup(next.Route)
		cam := s.cfg.Timing(TransitionCamera)
		s.transitions.SetTarget(TargetCameraPosition, pose.Position, cam.Duration, cam.Easing, now)
		s.transitions.SetTarget(TargetCameraRotation, pose.Rotation, cam.Duration, cam.Easing, now)
		mk := s.cfg.Timing(TransitionMarker)
		s.transitions.SetScalar(TargetMarkerOffset, s.markerOffset(next.Route), mk.Duration, mk.Easing, now)
	}
	if next.Dock.Open != prev.Dock.Open {
		dk := s.cfg.Timing(TransitionDock)
		to := 0.0
		if next.Dock.Open {
			to = s.cfg.DockOpenOffset
		}
		s.transitions.SetScalar(TargetDockOffset, to, dk.Duration, dk.Easing, now)
	}
	if next.Theme != prev.Theme {
		lt := s.cfg.Timing(TransitionLight)
		preset := s.cfg.Lights.For(next.Theme)
		s.transitions.SetScalar(TargetAmbientLight, preset.Ambient, lt.Duration, lt.Easing, now)
		s.transitions.SetScalar(TargetPointLight, preset.Point, lt.Duration, lt.Easing, now)
	}
}

func (s *Stage) markerOffset(p RoutePath) float64 {
	return float64(p.Index()) * s.cfg.MarkerSpacing
}

// syncDock opens the dock while a drag is active or the upload region is
// hovered, and closes it otherwise.
func (s *Stage) syncDock() {
	s.store.SetDockOpen(s.store.Current().Dragging || s.uploadHover)
}

func (s *Stage) notify(kind NoticeKind, msg string) {
	s.notifier.Notify(Notice{Kind: kind, Message: msg, At: s.clock()})
}

// --- Events ---

// DragEnter handles a page-level dragenter.
func (s *Stage) DragEnter() { s.drag.Enter() }

// DragOver handles a page-level dragover.
func (s *Stage) DragOver() { s.drag.Over() }

// DragLeave handles a page-level dragleave.
func (s *Stage) DragLeave() { s.drag.Leave() }

// Drop handles a page-level drop carrying files.
func (s *Stage) Drop(files []File) { s.drag.Drop(files) }

// PickFiles handles the file-picker change event.
func (s *Stage) PickFiles(files []File) { s.drag.Pick(files) }

// HoverUpload highlights the CD player and opens the dock while the pointer
// is over the upload region. Without a CD player node it does nothing.
func (s *Stage) HoverUpload(on bool) {
	if s.graph.CDPlayer == nil || s.uploadHover == on {
		return
	}
	s.uploadHover = on
	if on {
		s.selection.Add(s.graph.CDPlayer)
	} else {
		s.selection.Remove(s.graph.CDPlayer)
	}
	s.syncDock()
}

// HoverScreen records the pointer entering or leaving a TV screen.
func (s *Stage) HoverScreen(screen ScreenID, on bool) {
	s.channels.Hover(screen, on)
}

// Key handles a digit key press. See ChannelSelector.Key.
func (s *Stage) Key(digit int) bool {
	return s.channels.Key(digit, s.clock())
}

// Navigate moves to route p. The camera and marker follow.
func (s *Stage) Navigate(p RoutePath) {
	s.store.Navigate(p)
}

// SetTheme switches the lighting preset.
func (s *Stage) SetTheme(t Theme) {
	s.store.SetTheme(t)
}

// ToggleTheme flips between the dark and light presets.
func (s *Stage) ToggleTheme() {
	if s.store.Current().Theme == ThemeDark {
		s.SetTheme(ThemeLight)
		return
	}
	s.SetTheme(ThemeDark)
}

// ResetUpload forgets the accepted upload.
func (s *Stage) ResetUpload() {
	s.store.ResetUpload()
}

// Analyze submits the current upload in the background. It reports false,
// doing nothing, when there is no upload or a submission is in flight. The
// outcome is applied by a later Update.
func (s *Stage) Analyze(ctx context.Context) bool {
	snap := s.store.Current()
	if snap.Upload == nil || snap.Submitting {
		return false
	}
	s.store.SetSubmitting(true)
	rec := snap.Upload
	go func() {
		res, err := s.analyzer.Submit(ctx, rec)
		s.results <- submitResult{res: res, err: err}
	}()
	return true
}

// Update applies finished submissions and writes the frame at the current
// clock time into the render graph.
func (s *Stage) Update() FrameStats {
	select {
	case r := <-s.results:
		s.finishSubmit(r)
	default:
	}
	return s.frame.Apply(s.clock())
}

// AwaitSubmission blocks until the in-flight submission finishes and
// applies its outcome. It returns at once when nothing is in flight.
func (s *Stage) AwaitSubmission(ctx context.Context) error {
	if !s.store.Current().Submitting {
		return nil
	}
	select {
	case r := <-s.results:
		s.finishSubmit(r)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Stage) finishSubmit(r submitResult) {
	s.store.SetSubmitting(false)
	if r.err != nil {
		msg := genericSubmissionMessage
		var se *SubmissionError
		if errors.As(r.err, &se) {
			msg = se.UserMessage()
		}
		s.log.printf("submission failed: %v", r.err)
		s.notify(NoticeError, msg)
		return
	}
	s.lastResult = r.res
	s.Navigate(RouteAnalysis)
}

// Close releases the drag session and unregisters internal callbacks.
func (s *Stage) Close() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
	for _, h := range s.handles {
		h.Remove()
	}
	s.handles = nil
}

// --- Accessors ---

// Snapshot returns the current state snapshot.
func (s *Stage) Snapshot() *Snapshot { return s.store.Current() }

// Store returns the state store.
func (s *Stage) Store() *Store { return s.store }

// Graph returns the render graph.
func (s *Stage) Graph() *Graph { return s.graph }

// Transitions returns the transition controller.
func (s *Stage) Transitions() *TransitionController { return s.transitions }

// Drag returns the drag session.
func (s *Stage) Drag() *DragSession { return s.drag }

// Selection returns the selection registry.
func (s *Stage) Selection() *SelectionRegistry { return s.selection }

// Channels returns the channel selector.
func (s *Stage) Channels() *ChannelSelector { return s.channels }

// Notices returns the on-screen notice queue.
func (s *Stage) Notices() *NoticeQueue { return s.notices }

// Routes returns the camera route table.
func (s *Stage) Routes() *RouteTable { return s.routes }

// Config returns the stage configuration.
func (s *Stage) Config() *Config { return s.cfg }

// Now returns the stage clock.
func (s *Stage) Now() time.Duration { return s.clock() }

// LastResult returns the most recent successful analysis, or nil.
func (s *Stage) LastResult() *AnalysisResult { return s.lastResult }
