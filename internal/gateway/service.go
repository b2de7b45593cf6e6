// Package gateway runs enrichment and submit attempts on behalf of pages that
// post their forms to the server. Each attempt binds a headless form to the
// request, restores the form's runtime flags from the session store and
// persists them again once the attempt settles.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"avelements/internal/address"
	"avelements/internal/enrichment"
	"avelements/internal/events"
	"avelements/internal/session"
	"avelements/internal/verification/client"
	"avelements/internal/verification/controller"
	"avelements/internal/verification/form"
	"avelements/internal/verification/metrics"
	dErrors "avelements/pkg/domain-errors"
	"avelements/pkg/platform/sentinel"
	"avelements/pkg/requestcontext"
)

// VerifierFactory builds the verifier used for a session's attempts.
type VerifierFactory func(sess *session.Session) controller.Verifier

// Autocompleter looks up primary line suggestions.
type Autocompleter interface {
	Autocomplete(ctx context.Context, req client.AutocompleteRequest) ([]client.Suggestion, error)
}

// EnrichResult is returned by Enrich.
type EnrichResult struct {
	FormID        string
	Page          enrichment.PageState
	Config        controller.Config
	Wired         bool
	InjectMessage bool
	InjectStyles  enrichment.StyleInjection
	Messages      []form.Message
	Events        []events.Event
}

// SubmitResult is returned by Submit.
type SubmitResult struct {
	FormID    string
	AttemptID string
	Allowed   bool
	Submitted bool
	Outcome   address.Outcome
	Reason    string
	Fields    address.Fields
	Messages  []form.Message
	Events    []events.Event
}

// Service orchestrates enrichment and submit attempts.
type Service struct {
	store     session.Store
	enricher  *enrichment.Enricher
	verifiers VerifierFactory
	suggest   Autocompleter
	sink      events.Sink
	lockTTL   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSink forwards every event to a downstream sink as well as returning
// it to the caller.
func WithSink(sink events.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLockTTL overrides session.DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithAutocompleter enables Autocomplete.
func WithAutocompleter(a Autocompleter) Option {
	return func(s *Service) {
		s.suggest = a
	}
}

func New(store session.Store, enricher *enrichment.Enricher, verifiers VerifierFactory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		enricher:  enricher,
		verifiers: verifiers,
		sink:      events.Nop,
		lockTTL:   session.DefaultLockTTL,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enrich evaluates a form descriptor and creates or refreshes its session.
// A stored session marks the form enriched; re-enriching it keeps its
// runtime flags. A form that no longer qualifies loses its session.
func (s *Service) Enrich(ctx context.Context, d enrichment.Descriptor) (*EnrichResult, error) {
	if d.ID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "form id is required")
	}

	release, err := s.lock(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, d.ID, release)

	existing, err := s.store.Get(ctx, d.ID)
	current := enrichment.TagEnriched
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		existing, current = nil, enrichment.TagUntouched
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}

	recorder := events.NewRecorder()
	sink := s.requestSink(ctx, recorder)
	f := form.New(d.ID, address.Fields{})

	res := s.enricher.Enrich(ctx, d, current, f, sink)
	out := &EnrichResult{
		FormID:        d.ID,
		Page:          res.Config.Page,
		Config:        res.Config.Controller,
		Wired:         res.Wired,
		InjectMessage: res.InjectMessage,
		InjectStyles:  res.InjectStyles,
	}

	switch {
	case res.Tag != enrichment.TagEnriched:
		if existing != nil {
			err = s.store.Delete(ctx, d.ID)
		}
	case existing != nil:
		existing.APIKey = res.Config.APIKey
		existing.Endpoints = res.Config.Endpoints
		existing.Config = res.Config.Controller
		err = s.store.Save(ctx, existing)
	default:
		err = s.store.Save(ctx, &session.Session{
			ID:        d.ID,
			APIKey:    res.Config.APIKey,
			Endpoints: res.Config.Endpoints,
			Config:    res.Config.Controller,
		})
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}

	out.Messages = f.Messages()
	out.Events = recorder.Events()
	return out, nil
}

// Submit runs one verification attempt for formID with the values the user
// entered. Concurrent attempts for one form are refused with CodeConflict.
// The session is read under the form lock so every attempt starts from the
// state the previous one saved.
func (s *Service) Submit(ctx context.Context, formID string, fields address.Fields) (*SubmitResult, error) {
	release, err := s.lock(ctx, formID)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, formID, release)

	sess, err := s.store.Get(ctx, formID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "form is not enriched")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}

	recorder := events.NewRecorder()
	f := form.New(formID, fields)
	ctrl := controller.New(f, s.verifiers(sess), s.requestSink(ctx, recorder), sess.Config,
		controller.WithState(sess.State),
		controller.WithLogger(s.logger),
		controller.WithMetrics(s.metrics),
	)
	ctrl.Attach()

	ev := ctrl.Chain().Dispatch(ctx)
	if ev.Err != nil {
		return nil, dErrors.Wrap(ev.Err, dErrors.CodeConflict, "verification already in progress for this form")
	}
	if ev.Pending == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "submit was not intercepted")
	}

	var settled controller.Settlement
	select {
	case settled = <-ev.Pending:
	case <-ctx.Done():
		ctrl.Reset()
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "request ended before verification settled")
	}

	sess.State = ctrl.State()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}
	if settled.SubmitErr != nil {
		s.logger.WarnContext(ctx, "native submission failed",
			"form_id", formID,
			"attempt_id", settled.AttemptID,
			"error", settled.SubmitErr,
		)
	}

	return &SubmitResult{
		FormID:    formID,
		AttemptID: settled.AttemptID,
		Allowed:   settled.Decision.Allowed(),
		Submitted: settled.Submitted,
		Outcome:   settled.Result.Outcome,
		Reason:    string(settled.Decision.Reason),
		Fields:    f.Read(),
		Messages:  f.Messages(),
		Events:    recorder.Events(),
	}, nil
}

// Reset clears a form's runtime flags, e.g. after the page reloads it.
func (s *Service) Reset(ctx context.Context, formID string) error {
	release, err := s.lock(ctx, formID)
	if err != nil {
		return err
	}
	defer s.release(ctx, formID, release)

	sess, err := s.store.Get(ctx, formID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "form is not enriched")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}
	sess.State = controller.State{}
	if err := s.store.Save(ctx, sess); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}
	return nil
}

// Autocomplete proxies a suggestion lookup.
func (s *Service) Autocomplete(ctx context.Context, req client.AutocompleteRequest) ([]client.Suggestion, error) {
	if s.suggest == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "autocompletion is not configured")
	}
	suggestions, err := s.suggest.Autocomplete(ctx, req)
	switch {
	case err == nil:
		return suggestions, nil
	case errors.Is(err, client.ErrEmptyPrefix):
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	case client.CategoryOf(err) == client.CategoryUnauthorized:
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "autocompletion rejected the API key")
	case client.CategoryOf(err) == client.CategoryTimeout:
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "autocompletion timed out")
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "autocompletion unavailable")
	}
}

func (s *Service) lock(ctx context.Context, formID string) (session.ReleaseFunc, error) {
	release, err := s.store.Lock(ctx, formID, s.lockTTL)
	if errors.Is(err, session.ErrLocked) {
		s.metrics.IncPendingRejections()
		return nil, dErrors.Wrap(err, dErrors.CodeConflict, "verification already in progress for this form")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}
	return release, nil
}

func (s *Service) release(ctx context.Context, formID string, release session.ReleaseFunc) {
	// The request context may already be done; the lock must still go.
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := release(releaseCtx); err != nil {
		s.logger.WarnContext(ctx, "failed to release form lock", "form_id", formID, "error", err)
	}
}

// requestSink returns the sink for one request: the recorder, plus the
// downstream sink with the request's client metadata attached.
func (s *Service) requestSink(ctx context.Context, recorder *events.Recorder) events.Sink {
	meta := events.Metadata{
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Device:    requestcontext.Device(ctx),
	}
	return events.Fanout{recorder, events.WithMetadata(s.sink, meta)}
}
