package popstage

import (
	"io"
	"strings"
)

// notAudioReason is the rejection message shown for drops without audio.
const notAudioReason = "The file you uploaded is not audio!"

// File is one entry of a dropped or picked file list. Open is the opaque
// handle to the payload; it may be nil for entries that are only classified.
type File struct {
	Name      string
	MediaType string
	Size      int64
	Open      func() (io.ReadCloser, error)
}

// IsAudio reports whether the entry's media type is in the audio/ family.
func (f File) IsAudio() bool {
	return strings.HasPrefix(f.MediaType, "audio/")
}

// Classify scans files in order and returns the first audio entry.
func Classify(files []File) (File, bool) {
	for _, f := range files {
		if f.IsAudio() {
			return f, true
		}
	}
	return File{}, false
}

// DragSession turns the page-level drag event stream into a binary
// active/inactive signal and accept/reject decisions.
//
// Pointers crossing descendant element boundaries fire nested enter/leave
// pairs; a nesting counter coalesces them so the active signal changes only
// on the outermost enter and the matching last leave. The counter never goes
// negative and a drop always resets it to zero.
//
// Events are only honored while the session is acquired (see Acquire).
type DragSession struct {
	counter  int
	acquired bool

	started  handlerList[struct{}]
	ended    handlerList[struct{}]
	accepted handlerList[File]
	rejected handlerList[error]
}

// NewDragSession creates an idle, unacquired session.
func NewDragSession() *DragSession {
	return &DragSession{}
}

// Acquire activates the session and returns the function that releases
// it. Releasing resets the counter, ending any drag in progress. Calling
// the release function more than once is a no-op.
func (d *DragSession) Acquire() (release func()) {
	d.acquired = true
	released := false
	return func() {
		if released {
			return
		}
		released = true
		d.acquired = false
		d.reset()
	}
}

// Acquired reports whether the session currently honors events.
func (d *DragSession) Acquired() bool {
	return d.acquired
}

// Active reports whether a drag is over the page.
func (d *DragSession) Active() bool {
	return d.counter > 0
}

// Depth returns the current nesting depth.
func (d *DragSession) Depth() int {
	return d.counter
}

// OnDragStarted registers fn to run when the session becomes active.
func (d *DragSession) OnDragStarted(fn func()) CallbackHandle {
	return d.started.add(func(struct{}) { fn() })
}

// OnDragEnded registers fn to run when the session becomes inactive.
func (d *DragSession) OnDragEnded(fn func()) CallbackHandle {
	return d.ended.add(func(struct{}) { fn() })
}

// OnAccepted registers fn to receive the audio entry of a drop or pick.
func (d *DragSession) OnAccepted(fn func(File)) CallbackHandle {
	return d.accepted.add(fn)
}

// OnRejected registers fn to receive the *ValidationError of a drop or pick
// that carried no audio entry.
func (d *DragSession) OnRejected(fn func(error)) CallbackHandle {
	return d.rejected.add(fn)
}

// Enter handles a dragenter event.
func (d *DragSession) Enter() {
	if !d.acquired {
		return
	}
	d.counter++
	if d.counter == 1 {
		d.started.fire(struct{}{})
	}
}

// Over handles a dragover event. It carries no state; hosts must still
// accept it for the drop to be delivered.
func (d *DragSession) Over() {}

// Leave handles a dragleave event.
func (d *DragSession) Leave() {
	if !d.acquired || d.counter == 0 {
		return
	}
	d.counter--
	if d.counter == 0 {
		d.ended.fire(struct{}{})
	}
}

// Drop handles a drop event: the counter is reset and the file list is
// classified. An empty list emits nothing beyond the drag end.
func (d *DragSession) Drop(files []File) {
	if !d.acquired {
		return
	}
	d.reset()
	d.classify(files)
}

// Pick handles the file-picker change event. It shares the drop's
// classification but does not touch the counter.
func (d *DragSession) Pick(files []File) {
	if !d.acquired {
		return
	}
	d.classify(files)
}

func (d *DragSession) reset() {
	wasActive := d.counter > 0
	d.counter = 0
	if wasActive {
		d.ended.fire(struct{}{})
	}
}

func (d *DragSession) classify(files []File) {
	if len(files) == 0 {
		return
	}
	if f, ok := Classify(files); ok {
		d.accepted.fire(f)
		return
	}
	d.rejected.fire(&ValidationError{Reason: notAudioReason})
}
