package infrastructure

import (
	"fmt"

	"clubauction/events"
)

const subjectPrefix = "clubauction"

var subjects = map[events.EventType]string{
	events.EventTypeAuctionStarted:     "clubauction.auction.started",
	events.EventTypeBidPlaced:          "clubauction.auction.bid_placed",
	events.EventTypeGroupBidPlaced:     "clubauction.auction.group_bid_placed",
	events.EventTypeAuctionEnded:       "clubauction.auction.ended",
	events.EventTypeAuctionNoWinner:    "clubauction.auction.no_winner",
	events.EventTypeGroupFundsChanged:  "clubauction.groups.funds_changed",
	events.EventTypeMarketValueChanged: "clubauction.market.value_changed",
	events.EventTypeReportGenerated:    "clubauction.reports.weekly",
}

// EventSubjectMapper handles mapping between auction events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts an event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjects[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("%s.unknown.%s", subjectPrefix, event.Type())
}

// GetAllSubjects returns every subject the mirror publishes to, in event type order
func (m *EventSubjectMapper) GetAllSubjects() []string {
	all := make([]string, 0, len(subjects))
	for _, eventType := range events.AllEventTypes() {
		all = append(all, subjects[eventType])
	}
	return all
}
