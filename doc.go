// Package popstage is an animated desk scene for [Ebitengine] that follows
// an audio-upload application's state.
//
// The scene (a CD player with a sliding dock, a wall of TV screens, and a
// navigation marker) never owns application state. Events go to a [Stage],
// which runs them through a small set of components:
//
//   - [DragSession] turns nested drag enter/leave events into one active
//     signal and classifies dropped or picked files.
//   - [SelectionRegistry] tracks the highlighted drawable leaves.
//   - [Store] holds the immutable, versioned [Snapshot] that everything
//     else reads.
//   - [TransitionController] runs eased, interruptible tweens for the camera,
//     dock, marker, and lights.
//   - [FrameApplier] writes the state at the frame time into the render graph.
//
// # Quick start
//
// [Run] opens a window and game loop for a stage:
//
//	stage, err := popstage.NewStage(popstage.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer stage.Close()
//	popstage.Run(stage, popstage.RunConfig{})
//
// To drive a stage without a window, call its event methods and
// [Stage.Update] from one goroutine, or replay a [ScriptRunner] with
// [ScriptRunner.RunHeadless].
//
// # Analysis
//
// [Stage.Analyze] posts the accepted upload as multipart form data to the
// configured analysis endpoint. The request runs on its own goroutine; its
// result is applied by the next [Stage.Update], which navigates to the
// analysis route on success or raises an error notice on failure.
//
// # Configuration
//
// [LoadConfig] reads a YAML file over [DefaultConfig]. Route poses,
// transition durations and easings, light presets, and the analysis
// endpoint can all be overridden.
//
// [Ebitengine]: https://ebitengine.org
package popstage
