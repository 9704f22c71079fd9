package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-formchat/pkg/model"
)

var (
	// ErrUnauthorized matches transport errors carrying a 401 status.
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrNotFound matches transport errors carrying a 404 status.
	ErrNotFound = errors.New("client: not found")
)

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 2048

// TransportError reports a network failure or a non-2xx response.
type TransportError struct {
	Op     string
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("client: ")
	b.WriteString(e.Op)
	if e.Status != 0 && (e.Status < 200 || e.Status > 299) {
		fmt.Fprintf(&b, ": %d %s", e.Status, http.StatusText(e.Status))
		if msg := summarizeBody(e.Body); msg != "" {
			b.WriteString(": ")
			b.WriteString(msg)
		}
		return b.String()
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is maps well-known statuses onto sentinels.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	default:
		return false
	}
}

// Kind implements model.KindError.
func (e *TransportError) Kind() model.ErrorKind { return model.KindTransport }

// Temporary reports whether a retry may succeed.
func (e *TransportError) Temporary() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

func summarizeBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	if msg := errorMessage(body); msg != "" {
		return msg
	}
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		body = body[:idx]
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return body
}
