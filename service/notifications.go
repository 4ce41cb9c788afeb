package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"clubauction/events"
)

const notifyTimeout = 15 * time.Second

// SubscribeNotifier delivers committed auction events to the notifier.
// Delivery is best effort: failures are logged and never reach the ledger.
func SubscribeNotifier(bus *events.Bus, notifier Notifier) {
	deliver := func(eventType events.EventType, send func(ctx context.Context, event events.Event) error) {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) {
			ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
			defer cancel()

			if err := send(ctx, event); err != nil {
				log.WithError(err).WithField("eventType", eventType).Error("Failed to deliver notification")
			}
		})
	}

	deliver(events.EventTypeAuctionStarted, func(ctx context.Context, e events.Event) error {
		return notifier.NotifyAuctionStarted(ctx, e.(events.AuctionStartedEvent))
	})
	deliver(events.EventTypeBidPlaced, func(ctx context.Context, e events.Event) error {
		return notifier.NotifyBidPlaced(ctx, e.(events.BidPlacedEvent))
	})
	deliver(events.EventTypeGroupBidPlaced, func(ctx context.Context, e events.Event) error {
		return notifier.NotifyGroupBidPlaced(ctx, e.(events.GroupBidPlacedEvent))
	})
	deliver(events.EventTypeAuctionEnded, func(ctx context.Context, e events.Event) error {
		return notifier.NotifyAuctionEnded(ctx, e.(events.AuctionEndedEvent))
	})
	deliver(events.EventTypeAuctionNoWinner, func(ctx context.Context, e events.Event) error {
		return notifier.NotifyNoWinner(ctx, e.(events.AuctionNoWinnerEvent))
	})
	deliver(events.EventTypeReportGenerated, func(ctx context.Context, e events.Event) error {
		report := e.(events.ReportGeneratedEvent).Report
		return notifier.PostReport(ctx, &report)
	})
}
