package conversation

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formchat/pkg/model"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used when the call context carries none.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = &l
	}
}

// WithMetrics records transition outcomes.
func WithMetrics(rec Recorder) Option {
	return func(c *Controller) {
		if rec != nil {
			c.metrics = rec
		}
	}
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides message id generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithDecorators runs decorators over every schema before it replaces the
// draft.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(c *Controller) {
		c.decorators = append(c.decorators, decorators...)
	}
}

// WithCallTimeout bounds every network-backed transition. Zero disables the
// bound.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithSubscriberBuffer sets the channel capacity handed out by Subscribe.
func WithSubscriberBuffer(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.subBuffer = n
		}
	}
}

func defaultIDGenerator() string {
	return uuid.NewString()
}
