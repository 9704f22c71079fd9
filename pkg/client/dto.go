package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CreateFormRequest is the body of POST /Chat.
type CreateFormRequest struct {
	FormName string `json:"formName"`
	Message  string `json:"message"`
}

// CreateFormResponse carries the generated draft; LLMResponse is JSON text.
type CreateFormResponse struct {
	FormPublicID ID     `json:"formPublicId"`
	FormName     string `json:"formName"`
	LLMResponse  string `json:"llmResponse"`
}

// RefineRequest is the body of PUT /Chat/form/public/{formId}.
type RefineRequest struct {
	Message string `json:"message"`
}

// RefineResponse carries the doubly encoded refined draft.
type RefineResponse struct {
	FormJSON string `json:"formJson"`
}

// FinalJSON is both the publish body and the load response.
type FinalJSON struct {
	FinalJSON string `json:"finalJson"`
}

// SubmitRequest is the body of POST /Forms/public/{formId}/submit.
type SubmitRequest struct {
	Email    string `json:"email"`
	FormData string `json:"formData"`
}

// Submission is one row of GET /Forms/{formId}/submissions.
type Submission struct {
	ID            ID        `json:"id"`
	Email         string    `json:"email"`
	SubmittedData string    `json:"submittedData"`
	SubmittedAt   Timestamp `json:"submittedAt"`
}

// FormSummary is one row of GET /forms.
type FormSummary struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	PublicID  ID        `json:"publicId"`
	CreatedAt Timestamp `json:"createdAt"`
}

// LoginRequest is the body of POST /Auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /Auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthUser is the user block of an auth response.
type AuthUser struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// ID accepts identifiers encoded as strings or numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("client: id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// timestampLayouts covers RFC 3339 and the zone-less form some backends emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp accepts RFC 3339, zone-less ISO timestamps (read as UTC) and
// unix seconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if trimmed[0] != '"' {
		secs, err := strconv.ParseInt(string(trimmed), 10, 64)
		if err != nil {
			return fmt.Errorf("client: timestamp: %w", err)
		}
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("client: unrecognised timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Title   string `json:"title"`
}

// errorMessage extracts a message from common JSON error bodies.
func errorMessage(body string) string {
	var env errorEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return ""
	}
	for _, candidate := range []string{env.Error, env.Message, env.Title} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}
