package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/schema"
	"github.com/goliatone/go-formchat/pkg/validation"
)

const (
	transitionCreate  = "create"
	transitionRefine  = "refine"
	transitionPublish = "publish"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeTimeout = "timeout"
	outcomeDegrade = "degraded"
)

// Controller is the conversation state machine for a single form draft.
type Controller struct {
	generator Generator
	publisher Publisher

	logger     *zerolog.Logger
	metrics    Recorder
	now        func() time.Time
	newID      func() string
	decorators []model.Decorator
	timeout    time.Duration
	subBuffer  int

	mu          sync.Mutex
	state       State
	draft       model.FormDraft
	lastErr     error
	busy        bool
	subscribers map[int]chan Snapshot
	nextSub     int
}

// NewController builds a controller in the Empty state.
func NewController(generator Generator, publisher Publisher, opts ...Option) (*Controller, error) {
	if generator == nil {
		return nil, errors.New("conversation: generator is required")
	}
	if publisher == nil {
		return nil, errors.New("conversation: publisher is required")
	}
	c := &Controller{
		generator:   generator,
		publisher:   publisher,
		metrics:     nopRecorder{},
		now:         time.Now,
		newID:       defaultIDGenerator,
		subBuffer:   8,
		state:       StateEmpty,
		draft:       model.FormDraft{Fields: model.Schema{}, Messages: []model.ChatMessage{}},
		subscribers: make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State reports the current lifecycle stage.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel receiving a snapshot after every transition and
// a function that cancels the subscription. Slow subscribers miss
// intermediate snapshots rather than blocking the controller.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Snapshot, c.subBuffer)
	c.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// CreatePrompt sends the first prompt. It is only allowed from Empty. Empty
// inputs fail locally with a *validation.Error.
func (c *Controller) CreatePrompt(ctx context.Context, name, message string) (Snapshot, error) {
	if err := validation.ValidateCreate(name, message); err != nil {
		c.metrics.ValidationFailed(transitionCreate)
		return c.Snapshot(), err
	}

	c.mu.Lock()
	if err := c.admitLocked(transitionCreate, StateEmpty); err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}
	msgID := c.appendMessageLocked(model.RoleUser, message, model.MessagePending)
	c.draft.Name = name
	c.beginLocked(StateAwaitingGeneration)
	c.mu.Unlock()
	c.broadcast()

	log := c.log(ctx).With().Str("transition", transitionCreate).Logger()
	log.Debug().Str("form_name", name).Msg("requesting generation")

	var gen Generation
	err := c.call(ctx, transitionCreate, func(callCtx context.Context) error {
		var callErr error
		gen, callErr = c.generator.Create(callCtx, name, message)
		return callErr
	})

	callErr := err
	fields, err := c.settleFields(&log, gen, err)
	if err == nil && strings.TrimSpace(gen.FormID) == "" {
		// Refine and publish address the draft by its form id.
		err = ErrNoFormID
		if callErr != nil {
			err = fmt.Errorf("%w: %w", ErrNoFormID, callErr)
		}
	}

	c.mu.Lock()
	if err != nil {
		c.settleMessageLocked(msgID, model.MessageFailed, err)
		c.draft.Name = ""
		c.failLocked(StateEmpty, transitionCreate, err)
		c.mu.Unlock()
		c.broadcast()
		log.Warn().Err(err).Msg("create failed; conversation reset")
		return c.Snapshot(), &TransitionError{Transition: transitionCreate, From: StateEmpty, Err: err}
	}

	c.draft.ID = gen.FormID
	if gen.FormName != "" {
		c.draft.Name = gen.FormName
	}
	c.draft.Fields = fields
	c.settleMessageLocked(msgID, model.MessageConfirmed, nil)
	if gen.Reply != "" {
		c.appendMessageLocked(model.RoleAgent, gen.Reply, model.MessageConfirmed)
	}
	c.succeedLocked(StateDrafted)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.broadcast()

	log.Info().Str("form_id", gen.FormID).Int("fields", len(fields)).Msg("draft created")
	return snap, nil
}

// SendMessage refines the draft. The message is logged as pending before the
// call; on success the field list is replaced wholesale, on failure it is
// left untouched and the message is marked failed.
func (c *Controller) SendMessage(ctx context.Context, text string) (Snapshot, error) {
	c.mu.Lock()
	if err := c.admitLocked(transitionRefine, StateDrafted); err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}
	if err := validation.ValidateMessage(text); err != nil {
		c.mu.Unlock()
		c.metrics.ValidationFailed(transitionRefine)
		return c.Snapshot(), err
	}
	formID := c.draft.ID
	msgID := c.appendMessageLocked(model.RoleUser, text, model.MessagePending)
	c.beginLocked(StateAwaitingRefinement)
	c.mu.Unlock()
	c.broadcast()

	log := c.log(ctx).With().Str("transition", transitionRefine).Str("form_id", formID).Logger()

	var gen Generation
	err := c.call(ctx, transitionRefine, func(callCtx context.Context) error {
		var callErr error
		gen, callErr = c.generator.Refine(callCtx, formID, text)
		return callErr
	})

	fields, err := c.settleFields(&log, gen, err)

	c.mu.Lock()
	if err != nil {
		c.settleMessageLocked(msgID, model.MessageFailed, err)
		c.failLocked(StateDrafted, transitionRefine, err)
		c.mu.Unlock()
		c.broadcast()
		log.Warn().Err(err).Msg("refinement failed; schema unchanged")
		return c.Snapshot(), &TransitionError{Transition: transitionRefine, From: StateDrafted, Err: err}
	}

	c.draft.Fields = fields
	c.settleMessageLocked(msgID, model.MessageConfirmed, nil)
	if gen.Reply != "" {
		c.appendMessageLocked(model.RoleAgent, gen.Reply, model.MessageConfirmed)
	}
	c.succeedLocked(StateDrafted)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.broadcast()

	log.Info().Int("fields", len(fields)).Msg("draft refined")
	return snap, nil
}

// Publish sends the current field list to the publisher and freezes the
// draft. Only structure is published. The returned schema is a copy owned by
// the caller.
func (c *Controller) Publish(ctx context.Context) (model.Schema, error) {
	c.mu.Lock()
	if err := c.admitLocked(transitionPublish, StateDrafted); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	formID := c.draft.ID
	fields := c.draft.Fields.Clone()
	c.beginLocked(StatePublishing)
	c.mu.Unlock()
	c.broadcast()

	log := c.log(ctx).With().Str("transition", transitionPublish).Str("form_id", formID).Logger()

	err := c.call(ctx, transitionPublish, func(callCtx context.Context) error {
		return c.publisher.Publish(callCtx, formID, fields.Clone())
	})

	c.mu.Lock()
	if err != nil {
		c.failLocked(StateDrafted, transitionPublish, err)
		c.mu.Unlock()
		c.broadcast()
		log.Warn().Err(err).Msg("publish failed; draft kept")
		return nil, &TransitionError{Transition: transitionPublish, From: StateDrafted, Err: err}
	}
	c.draft.Published = true
	c.succeedLocked(StatePublished)
	c.mu.Unlock()
	c.broadcast()

	log.Info().Int("fields", len(fields)).Msg("form published")
	return fields, nil
}

// admitLocked checks the busy flag and the source state of a transition.
func (c *Controller) admitLocked(transition string, from State) error {
	if c.busy {
		c.metrics.RejectBusy(transition)
		return ErrBusy
	}
	if c.state == StatePublished {
		return ErrPublished
	}
	if transition != transitionCreate && c.draft.ID == "" {
		return ErrNoDraft
	}
	if c.state != from {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, transition, c.state)
	}
	return nil
}

func (c *Controller) beginLocked(next State) {
	c.busy = true
	c.state = next
	c.lastErr = nil
}

func (c *Controller) succeedLocked(next State) {
	c.busy = false
	c.state = next
}

func (c *Controller) failLocked(rollback State, transition string, err error) {
	c.busy = false
	c.state = rollback
	c.lastErr = fmt.Errorf("%s: %w", transition, err)
}

func (c *Controller) appendMessageLocked(role model.Role, text string, status model.MessageStatus) string {
	id := c.newID()
	c.draft.Messages = append(c.draft.Messages, model.ChatMessage{
		ID:        id,
		Role:      role,
		Text:      text,
		Status:    status,
		Timestamp: c.now(),
	})
	return id
}

func (c *Controller) settleMessageLocked(id string, status model.MessageStatus, err error) {
	for idx := range c.draft.Messages {
		if c.draft.Messages[idx].ID != id {
			continue
		}
		c.draft.Messages[idx].Status = status
		if err != nil {
			c.draft.Messages[idx].Error = err.Error()
		}
		return
	}
}

// settleFields turns a generation result into the next schema. Parse
// failures degrade to an empty field list and are recorded, not returned.
func (c *Controller) settleFields(log *zerolog.Logger, gen Generation, err error) (model.Schema, error) {
	if err != nil {
		var parseErr *schema.ParseError
		if !errors.As(err, &parseErr) {
			return nil, err
		}
		log.Warn().Err(err).Msg("generation response could not be parsed; using an empty field list")
		gen.Fields = model.Schema{}
	}

	fields := gen.Fields.Clone()
	if err := model.ApplyDecorators(&fields, c.decorators...); err != nil {
		return nil, fmt.Errorf("conversation: decorate schema: %w", err)
	}
	if dupes := model.DuplicateIDs(fields); len(dupes) > 0 {
		log.Warn().Strs("duplicate_ids", dupes).Msg("schema has colliding field ids; later fields win")
	}
	return fields, nil
}

// call runs fn outside the lock with the configured timeout and records
// metrics. A deadline is reported as a failed transition.
func (c *Controller) call(ctx context.Context, transition string, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := c.metrics.TrackInFlight()
	defer done()

	start := time.Now()
	err := fn(ctx)
	if err == nil {
		err = ctx.Err()
	}

	outcome := outcomeSuccess
	var parseErr *schema.ParseError
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		outcome = outcomeTimeout
	case errors.As(err, &parseErr):
		outcome = outcomeDegrade
	default:
		outcome = outcomeFailure
	}
	c.metrics.ObserveTransition(transition, outcome, time.Since(start))
	return err
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State: c.state,
		Draft: c.draft.Clone(),
		Busy:  c.busy,
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	return snap
}

func (c *Controller) broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subscribers) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) log(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	if c.logger != nil {
		return c.logger
	}
	return logger.From(ctx)
}
