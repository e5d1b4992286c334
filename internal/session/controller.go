package session

import (
	"context"
	"sync"

	"promptdeck/internal/composer"
	"promptdeck/internal/logger"
	"promptdeck/internal/testutils"
	"promptdeck/pkg/decktypes"
)

// subscriberBuffer is the number of snapshots a slow subscriber may lag behind
// before older ones are dropped.
const subscriberBuffer = 16

// Option configures a Controller.
type Option func(*Controller)

// WithGenerator sets the source of message IDs and timestamps.
func WithGenerator(g *testutils.Generator) Option {
	return func(c *Controller) {
		c.gen = g
	}
}

// Controller owns one conversation bound to a single template.
// It is safe for concurrent use.
type Controller struct {
	id     string
	desc   decktypes.TemplateDescriptor
	client decktypes.CompletionClient
	gen    *testutils.Generator

	// ctx lives as long as the session; Close cancels it and with it any in-flight call.
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	lastErr     error
	closed      bool
	subscribers map[int]chan State
	nextSubID   int
}

// NewController creates an idle session bound to desc. An empty id is replaced
// by a generated one.
func NewController(id string, desc decktypes.TemplateDescriptor, client decktypes.CompletionClient, opts ...Option) *Controller {
	c := &Controller{
		desc:        desc,
		client:      client,
		subscribers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gen == nil {
		c.gen = testutils.NewGenerator(false)
	}
	if id == "" {
		id = c.gen.NewID()
	}
	c.id = id
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.state = NewState(id, desc)

	logger.Debug("Session created", "session", id, "template", desc.ID)
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Template returns the bound template.
func (c *Controller) Template() decktypes.TemplateDescriptor {
	return c.desc.Clone()
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// LastError returns the completion failure of the latest accepted submit, kept
// for diagnostics. It is nil once a new submit is accepted.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SetDraft replaces the pending chat text.
func (c *Controller) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return decktypes.ErrSessionClosed
	}
	_, err := c.applyLocked(EventSetDraft{Text: text})
	return err
}

// SetField sets one pending form value.
func (c *Controller) SetField(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return decktypes.ErrSessionClosed
	}
	_, err := c.applyLocked(EventSetField{Key: key, Value: value})
	return err
}

// CanSubmit reports whether the pending input would be accepted right now.
// Submit controls are disabled while it is false.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Phase != PhaseIdle {
		return false
	}
	_, err := composer.Compose(c.desc, c.pendingInputLocked())
	return err == nil
}

// Submit sends the pending draft or form values. The user message is appended
// before the completion call starts; Submit then blocks until the reply or the
// failure message has been appended. A completion failure is not returned; it
// shows up in the transcript and in LastError.
func (c *Controller) Submit(ctx context.Context) error {
	return c.submit(ctx, nil)
}

// SubmitInput is Submit with explicit input instead of the pending values.
func (c *Controller) SubmitInput(ctx context.Context, input composer.Input) error {
	return c.submit(ctx, &input)
}

func (c *Controller) submit(ctx context.Context, input *composer.Input) error {
	effect, err := c.begin(input)
	if err != nil {
		return err
	}
	if call, ok := effect.(EffectCallCompletion); ok {
		c.complete(ctx, call)
	}
	return nil
}

// SubmitAsync is Submit with the completion call running in the background.
// The returned channel is closed once the session is back to idle.
func (c *Controller) SubmitAsync(ctx context.Context) (<-chan struct{}, error) {
	effect, err := c.begin(nil)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	call, ok := effect.(EffectCallCompletion)
	if !ok {
		close(done)
		return done, nil
	}

	go func() {
		defer close(done)
		c.complete(ctx, call)
	}()
	return done, nil
}

// AttachFile records a file chosen in the upload widget. Nothing is read or
// sent; the upload notice is appended instead.
func (c *Controller) AttachFile(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return decktypes.ErrSessionClosed
	}
	_, err := c.applyLocked(EventAttachFile{Name: name})
	return err
}

// Subscribe returns a channel that receives a snapshot after every transition,
// starting with the current state. The channel is closed by the returned
// cancel func or by Close.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, subscriberBuffer)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch
	ch <- c.state.Clone()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close tears the session down and cancels any in-flight completion call.
// It is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
	logger.Debug("Session closed", "session", c.state.ID)
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// begin runs Idle -> Submitting -> Awaiting (or back to Idle for unavailable
// templates) under one lock, so two submits can never both pass the guard.
func (c *Controller) begin(input *composer.Input) (Effect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, decktypes.ErrSessionClosed
	}

	in := c.pendingInputLocked()
	if input != nil {
		in = *input
	}

	effect, err := c.applyLocked(EventSubmit{Input: in})
	if err != nil {
		logger.Debug("Submit rejected", "session", c.state.ID, "error", err)
		return nil, err
	}
	validated := effect.(EffectValidated)

	effect, err = c.applyLocked(EventValidated{RequestText: validated.RequestText})
	if err != nil {
		return nil, err
	}
	c.lastErr = nil

	if _, ok := effect.(EffectReplyUnavailable); ok {
		logger.Info("Template not available, skipping completion", "session", c.state.ID, "template", c.desc.ID)
		if _, err := c.applyLocked(EventUnavailable{}); err != nil {
			return nil, err
		}
	}
	return effect, nil
}

// complete performs the single outbound call and settles the session.
func (c *Controller) complete(ctx context.Context, call EffectCallCompletion) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	text, err := c.client.Complete(ctx, call.RequestText, call.SystemPrompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		logger.Error("Completion failed", "session", c.state.ID, "template", c.desc.ID, "error", err)
		_, _ = c.applyLocked(EventFailed{Err: err})
		return
	}
	_, _ = c.applyLocked(EventCompleted{Text: text})
}

// applyLocked reduces ev into the current state, stamps new messages and
// notifies subscribers. c.mu must be held.
func (c *Controller) applyLocked(ev Event) (Effect, error) {
	prev := c.state
	next, effect, err := Reduce(prev, ev, c.desc)
	if err != nil {
		return effect, err
	}

	for i := len(prev.Transcript); i < len(next.Transcript); i++ {
		next.Transcript[i].ID = c.gen.NewID()
		next.Transcript[i].Timestamp = c.gen.Now()
	}
	c.state = next

	if prev.Phase != next.Phase {
		logger.Transition(next.ID, prev.Phase.String(), next.Phase.String(), "event", ev.eventName())
	}
	c.publishLocked()
	return effect, nil
}

func (c *Controller) publishLocked() {
	if c.closed {
		return
	}
	for _, ch := range c.subscribers {
		snap := c.state.Clone()
		select {
		case ch <- snap:
		default:
			// Drop the oldest snapshot so the newest always gets through.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (c *Controller) pendingInputLocked() composer.Input {
	return composer.Input{Text: c.state.PendingInput, Fields: c.state.PendingFormValues}
}
