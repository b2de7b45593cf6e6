// Package kafka publishes verification events to a Kafka topic and reads
// them back for operators.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"avelements/internal/events"
)

const (
	headerEvent   = "event"
	headerEventID = "event_id"
)

// Producer is the subset of *kgo.Client the store needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store produces each event as one record keyed by form id, so the events of
// a form stay ordered within a partition.
type Store struct {
	producer Producer
	client   *kgo.Client
	topic    string
}

// New connects to brokers and produces to topic.
func New(brokers []string, topic string, opts ...kgo.Opt) (*Store, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Store{producer: client, client: client, topic: topic}, nil
}

// NewWithProducer wraps an existing producer.
func NewWithProducer(p Producer, topic string) *Store {
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event events.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Payload.Form),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: headerEvent, Value: []byte(event.Name)},
			{Key: headerEventID, Value: []byte(event.ID.String())},
		},
		Timestamp: event.Timestamp,
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", event.Name, err)
	}
	return nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (s *Store) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	if s.client == nil {
		return errors.New("kafka: store has no admin client")
	}
	return EnsureTopic(ctx, s.client, s.topic, partitions, replication)
}

// Ping checks broker connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx)
}

func (s *Store) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// EnsureTopic creates topic with the given layout; an existing topic is not an error.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replication int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}
