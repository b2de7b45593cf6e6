package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"avelements/internal/events"
)

// Reader consumes events from the topic as part of a consumer group.
type Reader struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewReader joins group and consumes topic from the earliest retained offset.
func NewReader(brokers []string, topic, group string, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Reader{client: client, logger: logger}, nil
}

// Run calls handle for every event until ctx is done or handle fails.
// Records that do not decode are logged and skipped.
func (r *Reader) Run(ctx context.Context, handle func(events.Event) error) error {
	for {
		fetches := r.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, fe := range fetches.Errors() {
			r.logger.WarnContext(ctx, "kafka fetch error",
				"topic", fe.Topic,
				"partition", fe.Partition,
				"error", fe.Err,
			)
		}

		var handleErr error
		fetches.EachRecord(func(rec *kgo.Record) {
			if handleErr != nil {
				return
			}
			var event events.Event
			if err := json.Unmarshal(rec.Value, &event); err != nil {
				r.logger.WarnContext(ctx, "skipping undecodable event record",
					"offset", rec.Offset,
					"error", err,
				)
				return
			}
			handleErr = handle(event)
		})
		if handleErr != nil {
			return handleErr
		}
	}
}

func (r *Reader) Close() {
	r.client.Close()
}
