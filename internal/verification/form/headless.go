// Package form provides a headless Form for running the submission controller
// outside a browser: the gateway binds one to each submit request and reports
// back what the controller rendered and wrote.
package form

import (
	"context"
	"sort"
	"sync"

	"avelements/internal/address"
	"avelements/internal/verification/controller"
)

// Message is a rendered message container.
type Message struct {
	Target controller.Target `json:"target"`
	Text   string            `json:"text"`
	HTML   bool              `json:"html,omitempty"`
}

// SubmitFunc performs the native submission of the form's values.
type SubmitFunc func(ctx context.Context, fields address.Fields) error

// Headless is an in-memory form.
type Headless struct {
	id     string
	submit SubmitFunc

	mu          sync.Mutex
	fields      address.Fields
	messages    map[controller.Target]Message
	submissions int
}

// Option configures a Headless form.
type Option func(*Headless)

// WithSubmitFunc sets what a native submission does. By default it only
// counts the submission.
func WithSubmitFunc(fn SubmitFunc) Option {
	return func(h *Headless) {
		h.submit = fn
	}
}

func New(id string, fields address.Fields, opts ...Option) *Headless {
	h := &Headless{
		id:       id,
		fields:   fields,
		messages: make(map[controller.Target]Message),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Headless) ID() string { return h.id }

func (h *Headless) Read() address.Fields {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fields
}

func (h *Headless) Write(field address.Field, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fields = h.fields.With(field, value)
}

// Set replaces every field value, as a user editing the form would.
func (h *Headless) Set(fields address.Fields) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fields = fields
}

func (h *Headless) ShowMessage(target controller.Target, text string, html bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages[target] = Message{Target: target, Text: text, HTML: html}
}

func (h *Headless) HideMessages() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.messages)
}

func (h *Headless) NativeSubmit(ctx context.Context) error {
	h.mu.Lock()
	fields := h.fields
	h.mu.Unlock()

	if h.submit != nil {
		if err := h.submit(ctx, fields); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.submissions++
	h.mu.Unlock()
	return nil
}

// Messages returns the visible messages ordered by target.
func (h *Headless) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Message, 0, len(h.messages))
	for _, m := range h.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// Message returns the text shown in target, if visible.
func (h *Headless) Message(target controller.Target) (Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.messages[target]
	return m, ok
}

// Submissions counts successful native submissions.
func (h *Headless) Submissions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.submissions
}
