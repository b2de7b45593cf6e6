package gateway

import (
	"context"

	"avelements/internal/enrichment"
	"avelements/internal/session"
)

// PageInitializer keeps per-page stylesheet state in the session store so
// every replica agrees on which page still needs them.
type PageInitializer struct {
	store session.Store
}

func NewPageInitializer(store session.Store) *PageInitializer {
	return &PageInitializer{store: store}
}

func (p *PageInitializer) StylesInjected(ctx context.Context, page string, kind enrichment.StyleKind) (bool, error) {
	first, err := p.store.MarkPage(ctx, page, "styles:"+string(kind))
	if err != nil {
		return false, err
	}
	return !first, nil
}
