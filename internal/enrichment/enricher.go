package enrichment

import (
	"context"
	"encoding/json"
	"log/slog"

	"avelements/internal/address"
	"avelements/internal/events"
	"avelements/internal/verification/controller"
)

// Result reports what Enrich did for one form.
type Result struct {
	Config Config
	// Tag is the form's tag after this detection.
	Tag Tag
	// Wired is false when the form was already enriched or does not qualify.
	Wired bool
	// InjectMessage is set when the page must create the verify-message
	// container for this form.
	InjectMessage bool
	// InjectStyles lists the stylesheets the page does not carry yet.
	InjectStyles StyleInjection
}

// Enricher gates and wires forms.
type Enricher struct {
	init      Initializer
	overrides Overrides
	logger    *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithInitializer replaces the in-process InitState, e.g. with one shared
// by every gateway replica.
func WithInitializer(init Initializer) Option {
	return func(e *Enricher) {
		if init != nil {
			e.init = init
		}
	}
}

func New(overrides Overrides, opts ...Option) *Enricher {
	e := &Enricher{
		init:      NewInitState(),
		overrides: overrides,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich detects d for a form currently tagged current. On the untouched to
// enriched transition it emits elements.enriched on sink and reports a form
// detection problem on form.
func (e *Enricher) Enrich(ctx context.Context, d Descriptor, current Tag, form controller.Form, sink events.Sink) Result {
	cfg := BuildConfig(d, e.overrides)
	next, wire := Transition(current, cfg.Page)
	res := Result{Config: cfg, Tag: next}

	if !wire {
		e.logger.DebugContext(ctx, "form not wired",
			"form_id", d.ID,
			"tag", next,
			"enrich", cfg.Page.Enrich,
		)
		return res
	}
	res.Wired = true

	page := d.PageKey()
	if cfg.Page.Verify && cfg.Page.CreateMessage {
		res.InjectMessage = true
		res.InjectStyles.VerifyMessage = e.needsStyles(ctx, page, StylesVerifyMessage)
	}
	if cfg.Page.Autocomplete {
		res.InjectStyles.Autocomplete = e.needsStyles(ctx, page, StylesAutocomplete)
	}

	if sink == nil {
		sink = events.Nop
	}
	encoded, err := json.Marshal(cfg)
	if err != nil {
		e.logger.ErrorContext(ctx, "encode enrichment config", "form_id", d.ID, "error", err)
	}
	sink.Emit(events.Enriched, events.Payload{Config: encoded, Form: d.ID})

	if cfg.Page.Verify && d.ParseError != "" && form != nil {
		ctrl := controller.New(form, nil, sink, cfg.Controller, controller.WithLogger(e.logger))
		ctrl.ShowError(address.KindFormDetection, d.ParseError)
	}

	e.logger.InfoContext(ctx, "form enriched",
		"form_id", d.ID,
		"page", page,
		"strictness", cfg.Page.Strictness,
		"verify", cfg.Page.Verify,
		"autocomplete", cfg.Page.Autocomplete,
	)
	return res
}

// needsStyles claims kind for page. Errors fall back to injecting.
func (e *Enricher) needsStyles(ctx context.Context, page string, kind StyleKind) bool {
	injected, err := e.init.StylesInjected(ctx, page, kind)
	if err != nil {
		e.logger.WarnContext(ctx, "style injection state unavailable",
			"page", page,
			"kind", kind,
			"error", err,
		)
		return true
	}
	return !injected
}
