package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"clubauction/events"
)

const (
	sourceService  = "clubauction"
	publishTimeout = 5 * time.Second
)

// MessagePublisher sends raw bytes on a subject; NATSClient implements it
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope wraps every mirrored event
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// EventMirror copies committed auction events to a message bus. The
// in-process bus stays authoritative; a failed publish is only logged.
type EventMirror struct {
	publisher     MessagePublisher
	subjectMapper *EventSubjectMapper
	now           func() time.Time
}

// NewEventMirror creates a new event mirror
func NewEventMirror(publisher MessagePublisher, subjectMapper *EventSubjectMapper) *EventMirror {
	return &EventMirror{
		publisher:     publisher,
		subjectMapper: subjectMapper,
		now:           time.Now,
	}
}

// Attach subscribes the mirror to every event type on the bus
func (m *EventMirror) Attach(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		if err := m.Publish(ctx, event); err != nil {
			log.WithError(err).WithField("eventType", event.Type()).Error("Failed to mirror event to NATS")
		}
	})
}

// Publish wraps the event in an envelope and publishes it on its subject
func (m *EventMirror) Publish(ctx context.Context, event events.Event) error {
	envelope, err := m.envelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := m.subjectMapper.MapEventToSubject(event)
	if err := m.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Mirrored event to NATS")
	return nil
}

func (m *EventMirror) envelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     m.now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}, nil
}
