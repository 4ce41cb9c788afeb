package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"clubauction/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the flow from TransactionalBus to the main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan AuctionEndedEvent, 1)
	mainBus.Subscribe(EventTypeAuctionEnded, func(ctx context.Context, event Event) {
		ended, ok := event.(AuctionEndedEvent)
		if !ok {
			t.Errorf("Expected AuctionEndedEvent, got %T", event)
			return
		}
		received <- ended
	})

	testEvent := AuctionEndedEvent{
		Item:     models.NewItemKey(models.ItemTypeClub, 7),
		ItemName: "Red Lions",
		Winner:   models.Group("Alpha"),
		Amount:   1100,
		Debited:  1100,
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	err := transactionalBus.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, testEvent.Item, got.Item)
		assert.Equal(t, "group:alpha", got.Winner.Encode())
		assert.Equal(t, int64(1100), got.Amount)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BidPlacedEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeBidPlaced, func(ctx context.Context, event Event) {
		defer wg.Done()
		if bid, ok := event.(BidPlacedEvent); ok {
			received <- bid
		}
	})

	key := models.NewItemKey(models.ItemTypeDuelist, 3)
	for i, amount := range []int64{1050, 1100, 1200} {
		transactionalBus.Publish(BidPlacedEvent{Item: key, BidID: int64(i + 1), Bidder: models.Individual(int64(i + 10)), Amount: amount})
	}

	require.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()
	close(received)

	amounts := make(map[int64]bool)
	for bid := range received {
		amounts[bid.Amount] = true
	}

	// Handlers run concurrently so only membership is checked
	assert.Len(t, amounts, 3)
	assert.True(t, amounts[1050])
	assert.True(t, amounts[1100])
	assert.True(t, amounts[1200])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeAuctionNoWinner, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(AuctionNoWinnerEvent{Item: models.NewItemKey(models.ItemTypeClub, 1)})
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_HandlerPanicDoesNotAffectOthers(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeReportGenerated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeReportGenerated, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), ReportGeneratedEvent{})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler was not called")
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	seen := make(map[EventType]bool)
	var wg sync.WaitGroup
	wg.Add(2)

	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen[event.Type()] = true
		mu.Unlock()
	})

	bus.Emit(context.Background(), MarketValueChangedEvent{ClubID: 1, OldValue: 1000, NewValue: 1020})
	bus.Emit(context.Background(), GroupFundsChangedEvent{GroupName: "alpha", OldFunds: 200, NewFunds: 180})
	wg.Wait()

	assert.True(t, seen[EventTypeMarketValueChanged])
	assert.True(t, seen[EventTypeGroupFundsChanged])
}
