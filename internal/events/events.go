// Package events carries the notifications the verification core emits to
// integrators.
//
// The core only knows the Sink interface. Concrete transports (structured
// logs, Kafka, the Postgres event store) sit behind it and are chosen by the
// process that wires the core.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event names.
const (
	Verification = "elements.us_verification.verification"
	Error        = "elements.us_verification.error"
	Alert        = "elements.us_verification.alert"
	Enriched     = "elements.enriched"
)

// Error event types.
const (
	TypeVerification  = "verification"
	TypeAuthorization = "authorization"
)

// Sink receives events. Emit must not block on slow transports.
type Sink interface {
	Emit(name string, payload Payload)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(name string, payload Payload)

func (f SinkFunc) Emit(name string, payload Payload) {
	f(name, payload)
}

// Nop discards every event.
var Nop Sink = SinkFunc(func(string, Payload) {})

// Payload is the body of an event. Fields not used by an event are omitted
// from its JSON form.
type Payload struct {
	Code   int             `json:"code,omitempty"`
	Type   string          `json:"type,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  *Message        `json:"error,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
	Form   string          `json:"form"`
	Meta   *Metadata       `json:"meta,omitempty"`
}

// Message is the display error attached to alert events.
type Message struct {
	Type string `json:"type"`
	Text string `json:"msg"`
}

// Metadata describes the request that produced an event.
type Metadata struct {
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Device    string `json:"device,omitempty"`
}

// Event is an emitted notification as persisted or published downstream.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Payload   Payload   `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a payload with an id and the current time.
func NewEvent(name string, payload Payload) Event {
	return Event{
		ID:        uuid.New(),
		Name:      name,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// WithMetadata returns a sink that attaches meta to every payload that does
// not already carry metadata.
func WithMetadata(next Sink, meta Metadata) Sink {
	return SinkFunc(func(name string, payload Payload) {
		if payload.Meta == nil {
			m := meta
			payload.Meta = &m
		}
		next.Emit(name, payload)
	})
}

// Fanout delivers every event to each sink in order.
type Fanout []Sink

func (f Fanout) Emit(name string, payload Payload) {
	for _, s := range f {
		if s != nil {
			s.Emit(name, payload)
		}
	}
}
