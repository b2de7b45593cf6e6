package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avelements/internal/events"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, ev := range []events.Event{
		events.NewEvent(events.Enriched, events.Payload{Form: "checkout"}),
		events.NewEvent(events.Alert, events.Payload{Form: "checkout"}),
		events.NewEvent(events.Verification, events.Payload{Form: "signup"}),
		events.NewEvent(events.Error, events.Payload{Form: "checkout"}),
	} {
		require.NoError(t, s.Append(ctx, ev))
	}

	all, err := s.ListByForm(ctx, "checkout")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, events.Enriched, all[0].Name)

	filtered, err := s.ListByForm(ctx, "checkout", events.Error, events.Verification)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, events.Error, filtered[0].Name)

	recent, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, events.Error, recent[0].Name)
	assert.Equal(t, "signup", recent[1].Payload.Form)
}
