package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy rejects a transition while another network call is in flight.
	ErrBusy = errors.New("conversation: another request is in flight")
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current state.
	ErrInvalidTransition = errors.New("conversation: invalid transition")
	// ErrNoDraft is returned for refine or publish before a form id exists.
	ErrNoDraft = errors.New("conversation: no draft yet")
	// ErrNoFormID fails a create whose response did not identify the form.
	ErrNoFormID = errors.New("conversation: generation returned no form id")
	// ErrPublished is returned for any mutation after publish.
	ErrPublished = errors.New("conversation: form already published")
)

// TransitionError wraps a failed network-backed transition. The controller has
// already rolled back to From when it is returned.
type TransitionError struct {
	Transition string
	From       State
	Err        error
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("conversation: %s failed: %v", e.Transition, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }
