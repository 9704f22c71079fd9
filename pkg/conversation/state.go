package conversation

import "github.com/goliatone/go-formchat/pkg/model"

// State is a conversation lifecycle stage.
type State string

const (
	StateEmpty              State = "empty"
	StateAwaitingGeneration State = "awaiting_generation"
	StateDrafted            State = "drafted"
	StateAwaitingRefinement State = "awaiting_refinement"
	StatePublishing         State = "publishing"
	StatePublished          State = "published"
)

// Pending reports whether the state waits on a network call.
func (s State) Pending() bool {
	switch s {
	case StateAwaitingGeneration, StateAwaitingRefinement, StatePublishing:
		return true
	default:
		return false
	}
}

// Snapshot is a deep copy of the controller state, safe to hand to renderers
// and subscribers.
type Snapshot struct {
	State     State           `json:"state"`
	Draft     model.FormDraft `json:"draft"`
	LastError string          `json:"lastError,omitempty"`
	Busy      bool            `json:"busy"`
}

// HasDraft reports whether a form id has been assigned.
func (s Snapshot) HasDraft() bool {
	return s.Draft.ID != ""
}
