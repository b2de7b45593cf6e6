package controller

import (
	"context"
	"slices"
	"sync"
)

// SubmitEvent is passed along a SubmitChain for one submit attempt.
type SubmitEvent struct {
	defaultPrevented bool
	stopped          bool

	// Pending is set by the verification interceptor when it accepted the
	// attempt; it delivers the attempt's Settlement.
	Pending <-chan Settlement
	// Err is set by the interceptor when the attempt was refused.
	Err error
}

// PreventDefault suppresses the form's native submission.
func (e *SubmitEvent) PreventDefault() { e.defaultPrevented = true }

// StopPropagation keeps later handlers from running.
func (e *SubmitEvent) StopPropagation() { e.stopped = true }

func (e *SubmitEvent) DefaultPrevented() bool { return e.defaultPrevented }

// SubmitHandler reacts to a submit attempt.
type SubmitHandler func(ctx context.Context, ev *SubmitEvent)

type namedHandler struct {
	name    string
	handler SubmitHandler
}

// SubmitChain is the ordered list of submit handlers bound to a form. Handlers
// run first to last until one stops propagation.
type SubmitChain struct {
	mu       sync.Mutex
	handlers []namedHandler
}

func NewSubmitChain() *SubmitChain {
	return &SubmitChain{}
}

// Prepend binds h ahead of every other handler, replacing any handler with
// the same name.
func (c *SubmitChain) Prepend(name string, h SubmitHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(name)
	c.handlers = slices.Insert(c.handlers, 0, namedHandler{name: name, handler: h})
}

// Append binds h after every other handler, replacing any handler with the
// same name.
func (c *SubmitChain) Append(name string, h SubmitHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(name)
	c.handlers = append(c.handlers, namedHandler{name: name, handler: h})
}

// Remove unbinds the named handler and reports whether it was bound.
func (c *SubmitChain) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(name)
}

func (c *SubmitChain) remove(name string) bool {
	i := slices.IndexFunc(c.handlers, func(h namedHandler) bool { return h.name == name })
	if i < 0 {
		return false
	}
	c.handlers = slices.Delete(c.handlers, i, i+1)
	return true
}

// Names lists the bound handlers in run order.
func (c *SubmitChain) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.handlers))
	for i, h := range c.handlers {
		out[i] = h.name
	}
	return out
}

// Dispatch runs the handlers bound at call time and returns the event.
func (c *SubmitChain) Dispatch(ctx context.Context) *SubmitEvent {
	c.mu.Lock()
	handlers := slices.Clone(c.handlers)
	c.mu.Unlock()

	ev := &SubmitEvent{}
	for _, h := range handlers {
		h.handler(ctx, ev)
		if ev.stopped {
			break
		}
	}
	return ev
}
