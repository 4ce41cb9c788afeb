package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubauction/events"
	"clubauction/models"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages chan published
	err      error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{messages: make(chan published, 8)}
}

func (f *fakePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages <- published{subject: subject, data: data}
	return nil
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	assert.Equal(t, "clubauction.auction.ended", mapper.MapEventToSubject(events.AuctionEndedEvent{}))
	assert.Equal(t, "clubauction.auction.group_bid_placed", mapper.MapEventToSubject(events.GroupBidPlacedEvent{}))
	assert.Equal(t, "clubauction.reports.weekly", mapper.MapEventToSubject(events.ReportGeneratedEvent{}))

	all := mapper.GetAllSubjects()
	assert.Len(t, all, len(events.AllEventTypes()))
	assert.NotContains(t, all, "")
}

func TestEventMirror_PublishWrapsEventInEnvelope(t *testing.T) {
	publisher := newFakePublisher()
	mirror := NewEventMirror(publisher, NewEventSubjectMapper())
	fixed := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)
	mirror.now = func() time.Time { return fixed }

	event := events.AuctionEndedEvent{
		Item:     models.NewItemKey(models.ItemTypeClub, 1),
		ItemName: "alpha",
		Winner:   models.Group("g1"),
		Amount:   1103,
		Debited:  1103,
	}

	require.NoError(t, mirror.Publish(context.Background(), event))

	msg := <-publisher.messages
	assert.Equal(t, "clubauction.auction.ended", msg.subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.data, &envelope))
	assert.Equal(t, "auction_ended", envelope.EventType)
	assert.Equal(t, "clubauction", envelope.SourceService)
	assert.Equal(t, fixed, envelope.Timestamp)
	assert.Len(t, envelope.EventID, 36)

	var payload events.AuctionEndedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestEventMirror_AttachMirrorsBusEvents(t *testing.T) {
	publisher := newFakePublisher()
	bus := events.NewBus()
	NewEventMirror(publisher, NewEventSubjectMapper()).Attach(bus)

	bus.Emit(context.Background(), events.MarketValueChangedEvent{ClubID: 1, OldValue: 1000, NewValue: 1010})

	select {
	case msg := <-publisher.messages:
		assert.Equal(t, "clubauction.market.value_changed", msg.subject)
	case <-time.After(time.Second):
		t.Fatal("event was not mirrored")
	}
}

func TestEventMirror_PublishError(t *testing.T) {
	publisher := newFakePublisher()
	publisher.err = errors.New("no responders")
	mirror := NewEventMirror(publisher, NewEventSubjectMapper())

	err := mirror.Publish(context.Background(), events.AuctionNoWinnerEvent{})

	assert.ErrorContains(t, err, "no responders")
}
