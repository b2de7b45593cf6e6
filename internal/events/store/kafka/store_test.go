package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"avelements/internal/events"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func TestAppendProducesKeyedRecord(t *testing.T) {
	p := &fakeProducer{}
	store := NewWithProducer(p, "av-events")
	event := events.NewEvent(events.Error, events.Payload{Code: 401, Type: events.TypeAuthorization, Form: "checkout"})

	require.NoError(t, store.Append(context.Background(), event))
	require.Len(t, p.records, 1)

	rec := p.records[0]
	assert.Equal(t, "av-events", rec.Topic)
	assert.Equal(t, "checkout", string(rec.Key))
	assert.Equal(t, []kgo.RecordHeader{
		{Key: "event", Value: []byte(events.Error)},
		{Key: "event_id", Value: []byte(event.ID.String())},
	}, rec.Headers)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, 401, decoded.Payload.Code)
}

func TestAppendSurfacesProduceError(t *testing.T) {
	p := &fakeProducer{err: errors.New("NOT_LEADER_FOR_PARTITION")}
	err := NewWithProducer(p, "av-events").Append(context.Background(), events.NewEvent(events.Alert, events.Payload{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_LEADER_FOR_PARTITION")
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New(nil, "topic")
	require.Error(t, err)
	_, err = New([]string{"localhost:9092"}, "")
	require.Error(t, err)
}
