package enrichment

import (
	"context"
	"sync"
)

// StyleKind names a stylesheet injected once per page.
type StyleKind string

const (
	StylesVerifyMessage StyleKind = "verify_message"
	StylesAutocomplete  StyleKind = "autocomplete"
)

// StyleInjection lists the stylesheets a page must inject while wiring a form.
type StyleInjection struct {
	VerifyMessage bool `json:"verify_message"`
	Autocomplete  bool `json:"autocomplete"`
}

// Initializer records which stylesheets each page already carries.
type Initializer interface {
	// StylesInjected reports whether page already has kind and records that
	// it now does. It returns false exactly once per page and kind.
	StylesInjected(ctx context.Context, page string, kind StyleKind) (bool, error)
}

// InitState is an in-process Initializer for a single process serving a
// bounded set of pages, such as tests and the CLI.
type InitState struct {
	mu    sync.Mutex
	pages map[string]map[StyleKind]bool
}

func NewInitState() *InitState {
	return &InitState{pages: make(map[string]map[StyleKind]bool)}
}

func (s *InitState) StylesInjected(_ context.Context, page string, kind StyleKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds, ok := s.pages[page]
	if !ok {
		kinds = make(map[StyleKind]bool)
		s.pages[page] = kinds
	}
	if kinds[kind] {
		return true, nil
	}
	kinds[kind] = true
	return false, nil
}
