// Package speech turns a stream of speech-to-text transcript updates into
// discrete send requests once the speaker goes quiet.
package speech

import (
	"strings"
	"sync"
	"time"
)

// DefaultQuietPeriod is how long the transcript must stay unchanged before
// it is sent.
const DefaultQuietPeriod = 900 * time.Millisecond

// Timer is the subset of *time.Timer the trigger relies on.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests swap in a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithQuietPeriod overrides DefaultQuietPeriod.
func WithQuietPeriod(d time.Duration) Option {
	return func(t *Trigger) {
		if d > 0 {
			t.quiet = d
		}
	}
}

// WithClock injects the scheduling clock.
func WithClock(clock Clock) Option {
	return func(t *Trigger) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// Trigger debounces transcript updates and calls fire once per quiet period
// with the latest transcript. Text identical to the last sent transcript is
// never fired twice.
type Trigger struct {
	quiet time.Duration
	clock Clock
	fire  func(string)

	mu       sync.Mutex
	timer    Timer
	pending  string
	lastSent string
	seq      uint64
	stopped  bool
}

// NewTrigger builds a trigger calling fire from the clock's goroutine.
func NewTrigger(fire func(transcript string), opts ...Option) *Trigger {
	t := &Trigger{
		quiet: DefaultQuietPeriod,
		clock: realClock{},
		fire:  fire,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// QuietPeriod reports the configured debounce window.
func (t *Trigger) QuietPeriod() time.Duration {
	return t.quiet
}

// Update records the latest full transcript and restarts the quiet period.
func (t *Trigger) Update(transcript string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.pending = strings.TrimSpace(transcript)
	t.seq++
	seq := t.seq
	t.timer = t.clock.AfterFunc(t.quiet, func() { t.elapsed(seq) })
}

// Flush fires the pending transcript immediately, for example when the
// speaker presses send.
func (t *Trigger) Flush() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	text, ok := t.takeLocked()
	t.mu.Unlock()
	if ok {
		t.fire(text)
	}
}

// Reset forgets the last sent transcript so the same words may be sent again
// in a new conversation.
func (t *Trigger) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSent = ""
	t.pending = ""
}

// Stop cancels any pending fire. Later updates are ignored.
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.seq++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Trigger) elapsed(seq uint64) {
	t.mu.Lock()
	if seq != t.seq || t.stopped {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	text, ok := t.takeLocked()
	t.mu.Unlock()
	if ok {
		t.fire(text)
	}
}

func (t *Trigger) takeLocked() (string, bool) {
	text := t.pending
	t.pending = ""
	if text == "" || text == t.lastSent || t.fire == nil {
		return "", false
	}
	t.lastSent = text
	return text, true
}
