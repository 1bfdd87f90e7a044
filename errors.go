package popstage

import (
	"errors"
	"fmt"
)

// ErrNoAudio is matched (via errors.Is) by every ValidationError raised
// because a drop or pick carried no audio-typed file.
var ErrNoAudio = errors.New("no audio file")

// ValidationError reports a rejected drop or file pick. The stage surfaces
// it as an error notice and leaves the store untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is makes every ValidationError match ErrNoAudio.
func (e *ValidationError) Is(target error) bool {
	return target == ErrNoAudio
}

// genericSubmissionMessage is shown when the backend gave no usable message.
const genericSubmissionMessage = "Analysis failed, please try again."

// SubmissionError reports a failed analysis request. Status is zero when
// the request never produced a response (transport error or timeout).
type SubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("submit analysis: status %d: %s", e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("submit analysis: %v", e.Err)
	}
	return "submit analysis: " + e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown to the user: the backend-provided
// message when present, else a generic fallback.
func (e *SubmissionError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return genericSubmissionMessage
}
