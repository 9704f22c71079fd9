package model

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// MessageStatus tracks the two-phase lifecycle of a log entry: user messages
// are appended as pending before the network call and settle afterwards.
type MessageStatus string

const (
	MessagePending   MessageStatus = "pending"
	MessageConfirmed MessageStatus = "confirmed"
	MessageFailed    MessageStatus = "failed"
)

// ChatMessage is one append-only conversation log entry.
type ChatMessage struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	Text      string        `json:"text"`
	Status    MessageStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
}

// FormDraft is the conversation-scoped aggregate mutated by each refinement
// turn and frozen on publish.
type FormDraft struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Fields    Schema        `json:"fields"`
	Messages  []ChatMessage `json:"messages"`
	Published bool          `json:"published"`
}

// Clone returns a deep copy safe to hand to other goroutines.
func (d FormDraft) Clone() FormDraft {
	out := d
	out.Fields = d.Fields.Clone()
	out.Messages = append([]ChatMessage(nil), d.Messages...)
	return out
}

// Submission is one respondent's answers against a published schema.
type Submission struct {
	ID             string           `json:"id"`
	FormID         string           `json:"formId"`
	SubmitterEmail string           `json:"submitterEmail"`
	Values         map[string]any   `json:"values"`
	Fields         []SubmittedField `json:"fields,omitempty"`
	SubmittedAt    time.Time        `json:"submittedAt"`
}

// FormSummary is a row of the owner's form listing.
type FormSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	PublicID  string    `json:"publicId"`
	CreatedAt time.Time `json:"createdAt"`
}
