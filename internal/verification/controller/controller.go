// Package controller runs the submission state machine of an enriched form.
//
// A submit attempt moves the controller from Idle to Verifying, where the
// address is read once, checked against the previous attempt for a
// confirmation and sent to the verification service. The classified result
// goes through the strictness policy and the attempt settles as Allowed (the
// form is corrected and submitted natively) or Blocked (messages are shown and
// the override may be armed for the next attempt).
package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"avelements/internal/address"
	"avelements/internal/events"
	"avelements/internal/verification/client"
	"avelements/internal/verification/confirmation"
	"avelements/internal/verification/denormalize"
	"avelements/internal/verification/metrics"
	"avelements/internal/verification/policy"
)

// InterceptorName identifies the controller's handler in a SubmitChain.
const InterceptorName = "avelements.verify"

// ErrVerificationPending is returned by Submit while an attempt is in flight.
var ErrVerificationPending = errors.New("verification already in progress")

// Target names a message container of the form.
type Target string

const (
	TargetMessage   Target = "message"
	TargetPrimary   Target = "primaryMsg"
	TargetSecondary Target = "secondaryMsg"
	TargetCity      Target = "cityMsg"
	TargetState     Target = "stateMsg"
	TargetZip       Target = "zipMsg"
)

// Form is the enriched form the controller drives.
type Form interface {
	ID() string
	Read() address.Fields
	Write(field address.Field, value string)
	ShowMessage(target Target, text string, html bool)
	HideMessages()
	NativeSubmit(ctx context.Context) error
}

// Verifier classifies an address. *client.Client implements it.
type Verifier interface {
	Verify(ctx context.Context, fields address.Fields) client.Result
}

// Phase is the controller's position in the submission state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseVerifying Phase = "verifying"
	PhaseBlocked   Phase = "blocked"
	PhaseAllowed   Phase = "allowed"
)

// Config is fixed for the lifetime of a controller.
type Config struct {
	Strictness  address.Strictness `json:"strictness"`
	Denormalize bool               `json:"denormalize"`
	Autosubmit  bool               `json:"autosubmit"`
	Messages    address.Messages   `json:"messages,omitempty"`
}

// State holds the runtime flags that survive between attempts.
type State struct {
	Submitted     bool            `json:"submitted"`
	Override      bool            `json:"override"`
	Confirmed     bool            `json:"confirmed"`
	International bool            `json:"international"`
	LastSnapshot  *address.Fields `json:"last_snapshot,omitempty"`
}

// Settlement reports how one attempt ended.
type Settlement struct {
	AttemptID string
	// Fields are the values read when the attempt started.
	Fields    address.Fields
	Confirmed bool
	Result    client.Result
	Decision  policy.Decision
	// Corrected holds the street lines written back to the form, if any.
	Corrected *denormalize.Parts
	// Submitted is set when the native submission went out.
	Submitted bool
	SubmitErr error
	// Stale attempts were abandoned by Reset; nothing was applied.
	Stale bool
}

// Controller is safe for concurrent use.
type Controller struct {
	form     Form
	verifier Verifier
	sink     events.Sink
	chain    *SubmitChain
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	newID    func() string

	mu      sync.Mutex
	phase   Phase
	attempt string
	state   State

	wg sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithChain binds the controller to an existing handler chain.
func WithChain(chain *SubmitChain) Option {
	return func(c *Controller) {
		if chain != nil {
			c.chain = chain
		}
	}
}

// WithState restores runtime flags from a previous controller.
func WithState(s State) Option {
	return func(c *Controller) {
		c.state = s
	}
}

// WithIDGenerator overrides attempt id generation.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// New creates an idle controller. Call Attach to intercept submissions.
func New(form Form, verifier Verifier, sink events.Sink, cfg Config, opts ...Option) *Controller {
	if cfg.Messages == nil {
		cfg.Messages = address.DefaultMessages()
	}
	if !cfg.Strictness.IsValid() {
		cfg.Strictness = address.DefaultStrictness
	}
	if sink == nil {
		sink = events.Nop
	}
	c := &Controller{
		form:     form,
		verifier: verifier,
		sink:     sink,
		chain:    NewSubmitChain(),
		cfg:      cfg,
		logger:   slog.New(slog.DiscardHandler),
		newID:    uuid.NewString,
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chain returns the submit handler chain the controller is bound to.
func (c *Controller) Chain() *SubmitChain {
	return c.chain
}

// Attach binds the interceptor as the first submit handler.
func (c *Controller) Attach() {
	c.chain.Prepend(InterceptorName, c.intercept)
}

// Detach unbinds the interceptor.
func (c *Controller) Detach() {
	c.chain.Remove(InterceptorName)
}

func (c *Controller) intercept(ctx context.Context, ev *SubmitEvent) {
	ev.PreventDefault()
	ev.StopPropagation()
	ev.Pending, ev.Err = c.Submit(ctx)
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// State returns a copy of the runtime flags.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.LastSnapshot != nil {
		snap := *s.LastSnapshot
		s.LastSnapshot = &snap
	}
	return s
}

// Reset abandons the in-flight attempt, if any, and returns to Idle. A
// result that arrives for the abandoned attempt is dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempt = ""
	c.phase = PhaseIdle
}

// Wait blocks until every accepted attempt has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Submit starts a verification attempt. The returned channel delivers exactly
// one Settlement and is then closed. While an attempt is in flight Submit
// returns ErrVerificationPending and the new attempt is ignored.
func (c *Controller) Submit(ctx context.Context) (<-chan Settlement, error) {
	c.mu.Lock()
	if c.phase == PhaseVerifying {
		c.mu.Unlock()
		c.metrics.IncPendingRejections()
		c.logger.DebugContext(ctx, "submit ignored while verification is pending",
			"form", c.form.ID(),
		)
		return nil, ErrVerificationPending
	}

	fields := c.form.Read()
	confirmed := confirmation.IsConfirmation(fields, c.state.LastSnapshot, c.cfg.Strictness)
	snapshot := fields
	c.state.Confirmed = confirmed
	c.state.International = fields.IsInternational()
	c.state.LastSnapshot = &snapshot
	override := c.state.Override

	id := c.newID()
	c.attempt = id
	c.phase = PhaseVerifying
	c.mu.Unlock()

	c.form.HideMessages()

	out := make(chan Settlement, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(out)
		out <- c.run(ctx, id, fields, confirmed, override)
	}()
	return out, nil
}

func (c *Controller) run(ctx context.Context, id string, fields address.Fields, confirmed, override bool) Settlement {
	s := Settlement{AttemptID: id, Fields: fields, Confirmed: confirmed}

	if c.cfg.Strictness == address.StrictnessOff {
		s.Result = client.Result{Outcome: address.OutcomeDeliverable, Code: 200, Data: []byte(`{}`)}
	} else {
		s.Result = c.verifier.Verify(ctx, fields)
	}
	c.metrics.ObserveOutcome(string(s.Result.Outcome))

	c.mu.Lock()
	if c.attempt != id {
		c.mu.Unlock()
		c.metrics.IncStaleResults()
		c.logger.InfoContext(ctx, "dropping result of abandoned attempt",
			"form", c.form.ID(),
			"attempt_id", id,
			"outcome", s.Result.Outcome,
		)
		s.Stale = true
		return s
	}
	s.Decision = policy.Evaluate(policy.Input{
		Strictness: c.cfg.Strictness,
		Outcome:    s.Result.Outcome,
		Kind:       s.Result.Kind,
		Confirmed:  confirmed,
		Override:   override,
	})
	if s.Result.International {
		c.state.International = true
	}
	if s.Decision.Allowed() {
		c.state.Submitted = true
		c.state.Override = false
	} else {
		c.state.Override = s.Decision.ArmOverride
	}
	c.mu.Unlock()

	c.metrics.ObserveDecision(string(s.Decision.Verdict), string(s.Decision.Reason))
	c.logger.InfoContext(ctx, "verification attempt settled",
		"form", c.form.ID(),
		"attempt_id", id,
		"outcome", s.Result.Outcome,
		"verdict", s.Decision.Verdict,
		"reason", s.Decision.Reason,
		"confirmed", confirmed,
		"override", override,
	)

	final := PhaseBlocked
	if s.Decision.Allowed() {
		c.allow(ctx, &s)
		final = PhaseAllowed
	} else {
		c.block(&s)
	}

	c.mu.Lock()
	if c.attempt == id {
		c.phase = final
	}
	c.mu.Unlock()
	return s
}

func (c *Controller) allow(ctx context.Context, s *Settlement) {
	if s.Decision.Notify {
		c.show(s.Decision.Kind, c.cfg.Messages.Text(s.Decision.Kind))
	}

	if s.Result.Outcome == address.OutcomeUnauthorized {
		c.emit(events.Error, events.Payload{Code: 401, Type: events.TypeAuthorization, Data: s.Result.Data})
	} else {
		c.emit(events.Verification, events.Payload{Code: 200, Data: s.Result.Data})
	}

	if v := s.Result.Verified; v != nil && v.PrimaryLine != "" && s.Result.Outcome.IsDeliverable() {
		parts := denormalize.Resolve(*v, s.Fields.Secondary != "", c.cfg.Denormalize)
		c.form.Write(address.FieldPrimary, parts.Primary)
		c.form.Write(address.FieldSecondary, parts.Secondary)
		s.Corrected = &parts
	}

	c.Detach()
	defer c.Attach()
	if !c.cfg.Autosubmit {
		return
	}
	ev := c.chain.Dispatch(ctx)
	if ev.DefaultPrevented() {
		c.logger.InfoContext(ctx, "native submission prevented by another submit handler",
			"form", c.form.ID(),
		)
		return
	}
	if err := c.form.NativeSubmit(ctx); err != nil {
		s.SubmitErr = err
		c.logger.ErrorContext(ctx, "native form submission failed",
			"form", c.form.ID(),
			"attempt_id", s.AttemptID,
			"error", err,
		)
		return
	}
	s.Submitted = true
}

func (c *Controller) block(s *Settlement) {
	c.show(s.Decision.Kind, c.cfg.Messages.Text(s.Decision.Kind))
	c.emit(events.Error, events.Payload{Code: s.Result.Code, Type: events.TypeVerification, Data: s.Result.Data})
	c.Attach()
}

// ShowError renders a form-level message outside of an attempt, e.g. a form
// detection problem found during enrichment.
func (c *Controller) ShowError(kind address.ErrorKind, text string) {
	c.show(kind, text)
}

// show renders the form-level message and the field-level messages of kind,
// then emits the alert event.
func (c *Controller) show(kind address.ErrorKind, text string) {
	c.form.ShowMessage(TargetMessage, text, kind.IsHTML())

	field := c.cfg.Messages.Text(kind)
	switch kind {
	case address.KindPrimaryLine:
		c.form.ShowMessage(TargetPrimary, field, false)
	case address.KindCityStateZip:
		c.form.ShowMessage(TargetCity, field, false)
		c.form.ShowMessage(TargetState, field, false)
		c.form.ShowMessage(TargetZip, field, false)
	case address.KindZip:
		c.form.ShowMessage(TargetZip, field, false)
	case address.KindMissingUnit, address.KindUnnecessaryUnit, address.KindIncorrectUnit:
		if c.cfg.Denormalize {
			c.form.ShowMessage(TargetSecondary, field, false)
		} else {
			c.form.ShowMessage(TargetPrimary, field, false)
		}
	}

	c.emit(events.Alert, events.Payload{
		Type:  string(kind),
		Error: &events.Message{Type: string(kind), Text: text},
	})
}

func (c *Controller) emit(name string, p events.Payload) {
	p.Form = c.form.ID()
	c.sink.Emit(name, p)
}
