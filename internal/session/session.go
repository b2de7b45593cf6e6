// Package session persists the per-form controller state a gateway needs
// between submit attempts, and serializes attempts for one form across
// replicas.
package session

import (
	"context"
	"fmt"
	"time"

	"avelements/internal/verification/client"
	"avelements/internal/verification/controller"
	"avelements/pkg/platform/sentinel"
)

const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 24 * time.Hour

	// DefaultLockTTL bounds a verification lock held by a replica that died
	// mid-attempt. It exceeds the client timeout with margin.
	DefaultLockTTL = 15 * time.Second
)

// ErrLocked is returned by Lock while another attempt holds the form.
var ErrLocked = fmt.Errorf("verification in progress: %w", sentinel.ErrConflict)

// Session is one enriched form as seen by the gateway.
type Session struct {
	ID        string            `json:"id"`
	APIKey    string            `json:"api_key,omitempty"`
	Endpoints client.Endpoints  `json:"endpoints"`
	Config    controller.Config `json:"config"`
	State     controller.State  `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ReleaseFunc gives up a lock obtained from Store.Lock. Releasing a lock that
// already expired is not an error.
type ReleaseFunc func(ctx context.Context) error

// Store persists sessions. Get returns sentinel.ErrNotFound for unknown or
// expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string, ttl time.Duration) (ReleaseFunc, error)
	// MarkPage records mark on page and reports whether this call set it.
	// Marks expire with the session TTL.
	MarkPage(ctx context.Context, page, mark string) (bool, error)
}
