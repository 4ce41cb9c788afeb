package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"clubauction/config"
	"clubauction/events"
	"clubauction/models"
)

const finalizeTimeout = 30 * time.Second

// AuctionOutcome is the settled result of a closed round
type AuctionOutcome struct {
	Key         models.ItemKey
	ItemName    string
	HasWinner   bool
	Winner      models.BidderIdentity
	Amount      int64
	Forced      bool
	Debit       *models.FundsChange
	Sale        *models.SaleHistory
	Contract    *models.Contract
	ClearedBids int64
}

// BidQuote is the current price of an item and what the next bid must reach
type BidQuote struct {
	Key         models.ItemKey
	ItemName    string
	BasePrice   int64
	Current     int64
	MinRequired int64
	BidCount    int
	Latest      *models.Bid
	Round       RoundStatus
}

// auctionItem is a club or a duelist seen through the auction engine
type auctionItem struct {
	key       models.ItemKey
	name      string
	basePrice int64
	club      *models.Club
	duelist   *models.Duelist
}

type auctionService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	metrics    *Metrics
	timers     *TimerRegistry
	locks      *keyLocker
	frozen     atomic.Bool

	// rounds is read-held by every single-item operation and write-held by
	// ResetAllAuctions, which clears all items at once
	rounds sync.RWMutex
}

// NewAuctionService creates the auction engine. Countdowns live in the
// returned service; Shutdown cancels them.
func NewAuctionService(uowFactory UnitOfWorkFactory, cfg *config.Config, metrics *Metrics) AuctionService {
	s := &auctionService{
		uowFactory: uowFactory,
		config:     cfg,
		metrics:    metrics,
		locks:      newKeyLocker(),
	}
	s.timers = NewTimerRegistry(s.onTimerExpired)
	return s
}

// PlaceBid places an individual bid
func (s *auctionService) PlaceBid(ctx context.Context, bidderID int64, key models.ItemKey, amount int64) (*models.Bid, error) {
	return s.placeBid(ctx, key, models.Individual(bidderID), bidderID, amount)
}

// PlaceGroupBid places a bid on behalf of a group
func (s *auctionService) PlaceGroupBid(ctx context.Context, bidderID int64, groupName string, key models.ItemKey, amount int64) (*models.Bid, error) {
	return s.placeBid(ctx, key, models.Group(groupName), bidderID, amount)
}

func (s *auctionService) placeBid(ctx context.Context, key models.ItemKey, bidder models.BidderIdentity, placedBy int64, amount int64) (*models.Bid, error) {
	if s.frozen.Load() {
		return nil, s.rejected(&BidRejectedError{Reason: RejectAuctionFrozen})
	}
	if !key.Type.IsValid() {
		return nil, s.rejected(&BidRejectedError{Reason: RejectInvalidItemType})
	}

	// The bid row and the countdown reset happen under the item lock so a
	// concurrent finalize sees both or neither
	s.rounds.RLock()
	defer s.rounds.RUnlock()
	unlock := s.locks.Lock(key)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := s.lookupItem(ctx, uow, key)
	if err != nil {
		return nil, err
	}

	latest, err := uow.BidRepository().GetLatest(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get current bid: %w", err)
	}

	check := BidCheck{
		ItemType:         key.Type,
		Current:          CurrentPrice(latest, item.basePrice),
		Amount:           amount,
		IncrementPercent: s.config.MinIncrementPercent,
		Frozen:           s.frozen.Load(),
	}

	groupName, isGroup := bidder.GroupName()
	if isGroup {
		group, err := uow.GroupRepository().GetByName(ctx, groupName)
		if err != nil {
			return nil, fmt.Errorf("failed to get group: %w", err)
		}
		if group == nil {
			return nil, notFound("group", groupName)
		}

		isMember, err := uow.GroupRepository().IsMember(ctx, groupName, placedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to check group membership: %w", err)
		}
		check.Group = &GroupStanding{IsMember: isMember, Funds: group.Funds}
	}

	if err := ValidateBid(check); err != nil {
		return nil, s.rejected(err)
	}

	bid := &models.Bid{
		Bidder:   bidder,
		Amount:   amount,
		ItemType: key.Type,
		ItemID:   key.ID,
	}
	if err := uow.BidRepository().Create(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to record bid: %w", err)
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%s bid %d on %s %s", bidder, amount, key.Type, item.name)); err != nil {
		return nil, err
	}

	countdown := s.countdownFor(key)
	uow.EventBus().Publish(events.BidPlacedEvent{
		Item:     key,
		ItemName: item.name,
		BidID:    bid.ID,
		Bidder:   bidder,
		Amount:   amount,
		EndsAt:   time.Now().Add(countdown),
	})

	if isGroup {
		members, err := uow.GroupRepository().ListMembers(ctx, groupName)
		if err != nil {
			return nil, fmt.Errorf("failed to list group members: %w", err)
		}
		uow.EventBus().Publish(events.GroupBidPlacedEvent{
			Item:      key,
			ItemName:  item.name,
			GroupName: groupName,
			PlacedBy:  placedBy,
			Members:   members,
			Amount:    amount,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.timers.Arm(key, countdown)
	s.refreshActiveRounds()
	s.metrics.BidsPlaced.WithLabelValues(string(key.Type), string(bidder.Kind)).Inc()

	log.WithFields(log.Fields{
		"item":      key.String(),
		"bidder":    bidder.Encode(),
		"amount":    amount,
		"countdown": countdown,
	}).Info("Bid accepted")

	return bid, nil
}

// StartAuction opens a fresh round, discarding any bids left on the item
func (s *auctionService) StartAuction(ctx context.Context, actor models.Actor, key models.ItemKey, countdown time.Duration) (*RoundStatus, error) {
	if !actor.CanAdminister() {
		return nil, ErrUnauthorized
	}
	if !key.Type.IsValid() {
		return nil, &BidRejectedError{Reason: RejectInvalidItemType}
	}
	if countdown <= 0 {
		countdown = s.config.AuctionTimeLimit
	}

	s.rounds.RLock()
	defer s.rounds.RUnlock()
	unlock := s.locks.Lock(key)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := s.lookupItem(ctx, uow, key)
	if err != nil {
		return nil, err
	}

	if _, err := uow.BidRepository().DeleteByItem(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to clear previous round: %w", err)
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%s started auction for %s %s", actor.Name(), key.Type, item.name)); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.AuctionStartedEvent{
		Item:      key,
		ItemName:  item.name,
		BasePrice: item.basePrice,
		EndsAt:    time.Now().Add(countdown),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	status := s.timers.Arm(key, countdown)
	s.refreshActiveRounds()

	log.WithFields(log.Fields{
		"item":      key.String(),
		"actor":     actor.UserID,
		"countdown": countdown,
	}).Info("Auction started")

	return &status, nil
}

// onTimerExpired runs on the timer goroutine when a countdown runs out
func (s *auctionService) onTimerExpired(key models.ItemKey, generation uint64) {
	s.rounds.RLock()
	defer s.rounds.RUnlock()
	unlock := s.locks.Lock(key)
	defer unlock()

	if !s.timers.Claim(key, generation) {
		log.WithField("item", key.String()).Debug("Ignoring superseded countdown")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	_, err := s.finalizeLocked(ctx, key)
	switch {
	case err == nil:
		s.timers.Release(key, generation)
	case Outcome(err) == OutcomeNotFound:
		log.WithError(err).WithField("item", key.String()).Warn("Auctioned item is gone, dropping its round")
		s.timers.Release(key, generation)
	default:
		// Bids stay in place, so the round gets another full countdown
		log.WithError(err).WithFields(log.Fields{
			"item":  key.String(),
			"retry": s.config.AuctionTimeLimit,
		}).Error("Failed to finalize auction")
		s.timers.Arm(key, s.config.AuctionTimeLimit)
	}
	s.refreshActiveRounds()
}

// Finalize closes the round now instead of waiting for the countdown
func (s *auctionService) Finalize(ctx context.Context, key models.ItemKey) (*AuctionOutcome, error) {
	if !key.Type.IsValid() {
		return nil, &BidRejectedError{Reason: RejectInvalidItemType}
	}

	s.rounds.RLock()
	defer s.rounds.RUnlock()
	unlock := s.locks.Lock(key)
	defer unlock()

	s.timers.Cancel(key)
	defer s.refreshActiveRounds()

	return s.finalizeLocked(ctx, key)
}

// finalizeLocked settles the round. The caller holds the item lock.
func (s *auctionService) finalizeLocked(ctx context.Context, key models.ItemKey) (*AuctionOutcome, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := s.lookupItem(ctx, uow, key)
	if err != nil {
		return nil, err
	}

	latest, err := uow.BidRepository().GetLatest(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get winning bid: %w", err)
	}

	outcome := &AuctionOutcome{Key: key, ItemName: item.name}

	if latest != nil {
		if err := s.settle(ctx, uow, item, latest.Bidder, latest.Amount, false, outcome); err != nil {
			return nil, err
		}

		outcome.Debit, err = s.debitWinner(ctx, uow, latest.Bidder, latest.Amount, item)
		if err != nil {
			return nil, err
		}
	}

	outcome.ClearedBids, err = uow.BidRepository().DeleteByItem(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to clear bids: %w", err)
	}

	if outcome.HasWinner {
		var debited int64
		if outcome.Debit != nil {
			debited = outcome.Debit.Applied
		}
		entry := fmt.Sprintf("Auction ended for %s %s. Winner: %s for %d", key.Type, item.name, outcome.Winner, outcome.Amount)
		if err := uow.AuditRepository().Record(ctx, entry); err != nil {
			return nil, err
		}
		uow.EventBus().Publish(events.AuctionEndedEvent{
			Item:     key,
			ItemName: item.name,
			Winner:   outcome.Winner,
			Amount:   outcome.Amount,
			Debited:  debited,
		})
	} else {
		if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("Auction ended for %s %s with no bids", key.Type, item.name)); err != nil {
			return nil, err
		}
		uow.EventBus().Publish(events.AuctionNoWinnerEvent{Item: key, ItemName: item.name})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.recordFinalized(outcome)
	return outcome, nil
}

// settle writes the sale record or the contract for a winner
func (s *auctionService) settle(ctx context.Context, uow UnitOfWork, item *auctionItem, winner models.BidderIdentity, amount int64, forced bool, outcome *AuctionOutcome) error {
	switch item.key.Type {
	case models.ItemTypeClub:
		sale := &models.SaleHistory{
			ClubID:            item.club.ID,
			Winner:            winner,
			Amount:            amount,
			MarketValueAtSale: item.club.MarketValue,
			Forced:            forced,
		}
		if err := uow.SaleHistoryRepository().Create(ctx, sale); err != nil {
			return fmt.Errorf("failed to record club sale: %w", err)
		}
		outcome.Sale = sale

	case models.ItemTypeDuelist:
		contract := &models.Contract{
			DuelistID:     item.duelist.ID,
			Owner:         winner,
			PurchasePrice: amount,
			Salary:        item.duelist.ExpectedSalary,
		}
		if err := uow.ContractRepository().Create(ctx, contract); err != nil {
			return fmt.Errorf("failed to sign contract: %w", err)
		}
		if err := uow.DuelistRepository().SetOwner(ctx, item.duelist.ID, winner); err != nil {
			return fmt.Errorf("failed to transfer duelist: %w", err)
		}
		outcome.Contract = contract
	}

	outcome.HasWinner = true
	outcome.Winner = winner
	outcome.Amount = amount
	outcome.Forced = forced
	return nil
}

// debitWinner takes the winning amount from a winning group's pool, clamped
// at zero. Individual winners are never debited. Returns nil when there was
// nothing to debit.
func (s *auctionService) debitWinner(ctx context.Context, uow UnitOfWork, winner models.BidderIdentity, amount int64, item *auctionItem) (*models.FundsChange, error) {
	groupName, ok := winner.GroupName()
	if !ok {
		return nil, nil
	}

	change, err := uow.GroupRepository().AdjustFunds(ctx, groupName, -amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit group: %w", err)
	}
	if change == nil {
		log.WithField("group", groupName).Warn("Winning group no longer exists, nothing debited")
		return nil, nil
	}

	entry := fmt.Sprintf("Deducted %d from group %s after winning %s %s", change.Applied, groupName, item.key.Type, item.name)
	if err := uow.AuditRepository().Record(ctx, entry); err != nil {
		return nil, err
	}
	uow.EventBus().Publish(events.GroupFundsChangedEvent{
		GroupName: groupName,
		OldFunds:  change.Before,
		NewFunds:  change.After,
		Reason:    "auction_win",
	})
	return change, nil
}

// ForceWinner settles the item for the given winner without touching balances
func (s *auctionService) ForceWinner(ctx context.Context, actor models.Actor, key models.ItemKey, winner models.BidderIdentity, amount int64) (*AuctionOutcome, error) {
	if !actor.IsOwner {
		return nil, ErrUnauthorized
	}
	if !key.Type.IsValid() {
		return nil, &BidRejectedError{Reason: RejectInvalidItemType}
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if winner.IsZero() {
		return nil, fmt.Errorf("winner is required")
	}

	s.rounds.RLock()
	defer s.rounds.RUnlock()
	unlock := s.locks.Lock(key)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := s.lookupItem(ctx, uow, key)
	if err != nil {
		return nil, err
	}

	outcome := &AuctionOutcome{Key: key, ItemName: item.name}
	if err := s.settle(ctx, uow, item, winner, amount, true, outcome); err != nil {
		return nil, err
	}

	outcome.ClearedBids, err = uow.BidRepository().DeleteByItem(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to clear bids: %w", err)
	}

	entry := fmt.Sprintf("Owner forced winner %s for %s %s at %d", winner, key.Type, item.name, amount)
	if err := uow.AuditRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.AuctionEndedEvent{
		Item:     key,
		ItemName: item.name,
		Winner:   winner,
		Amount:   amount,
		Forced:   true,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.timers.Cancel(key)
	s.refreshActiveRounds()
	s.recordFinalized(outcome)

	return outcome, nil
}

// ResetAllAuctions clears every round
func (s *auctionService) ResetAllAuctions(ctx context.Context, actor models.Actor) (int64, error) {
	if !actor.IsOwner {
		return 0, ErrUnauthorized
	}

	// Wait for in-flight bids and finalizes, and keep new ones out until
	// the bids are gone
	s.rounds.Lock()
	defer s.rounds.Unlock()

	cancelled := s.timers.CancelAll()
	s.refreshActiveRounds()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.BidRepository().DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%s reset all auctions (%d bids cleared)", actor.Name(), deleted)); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"actor":           actor.UserID,
		"bidsCleared":     deleted,
		"timersCancelled": cancelled,
	}).Warn("All auctions reset")

	return deleted, nil
}

// Freeze rejects all new bids
func (s *auctionService) Freeze(ctx context.Context, actor models.Actor) error {
	return s.setFrozen(ctx, actor, true)
}

// Unfreeze accepts bids again
func (s *auctionService) Unfreeze(ctx context.Context, actor models.Actor) error {
	return s.setFrozen(ctx, actor, false)
}

func (s *auctionService) setFrozen(ctx context.Context, actor models.Actor, frozen bool) error {
	if !actor.IsOwner {
		return ErrUnauthorized
	}

	s.frozen.Store(frozen)

	verb := "unfroze"
	if frozen {
		verb = "froze"
	}

	if err := s.audit(ctx, fmt.Sprintf("%s %s auctions", actor.Name(), verb)); err != nil {
		log.WithError(err).Warn("Failed to record freeze in audit log")
	}

	log.WithFields(log.Fields{
		"actor":  actor.UserID,
		"frozen": frozen,
	}).Info("Auction freeze toggled")
	return nil
}

// IsFrozen reports whether bidding is frozen
func (s *auctionService) IsFrozen() bool {
	return s.frozen.Load()
}

// CurrentBid quotes an item's price
func (s *auctionService) CurrentBid(ctx context.Context, key models.ItemKey) (*BidQuote, error) {
	if !key.Type.IsValid() {
		return nil, &BidRejectedError{Reason: RejectInvalidItemType}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := s.lookupItem(ctx, uow, key)
	if err != nil {
		return nil, err
	}

	latest, err := uow.BidRepository().GetLatest(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get current bid: %w", err)
	}

	count, err := uow.BidRepository().CountByItem(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to count bids: %w", err)
	}

	current := CurrentPrice(latest, item.basePrice)
	round, _ := s.timers.Status(key)

	return &BidQuote{
		Key:         key,
		ItemName:    item.name,
		BasePrice:   item.basePrice,
		Current:     current,
		MinRequired: MinRequiredBid(current, s.config.MinIncrementPercent),
		BidCount:    count,
		Latest:      latest,
		Round:       round,
	}, nil
}

// ActiveRounds lists running countdowns
func (s *auctionService) ActiveRounds() []RoundStatus {
	return s.timers.Active()
}

// Recover arms a default countdown for every item that still has bids,
// e.g. rounds that were open when the process stopped
func (s *auctionService) Recover(ctx context.Context) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	open, err := uow.BidRepository().ListOpenItems(ctx)
	if err != nil {
		return 0, err
	}

	s.rounds.RLock()
	defer s.rounds.RUnlock()

	armed := 0
	for _, key := range open {
		unlock := s.locks.Lock(key)
		if s.timers.State(key) == TimerIdle {
			s.timers.Arm(key, s.config.AuctionTimeLimit)
			armed++
		}
		unlock()
	}
	s.refreshActiveRounds()

	if armed > 0 {
		log.WithField("rounds", armed).Info("Re-armed open auction rounds")
	}
	return armed, nil
}

// Shutdown stops every countdown without finalizing
func (s *auctionService) Shutdown() {
	s.rounds.Lock()
	defer s.rounds.Unlock()

	if n := s.timers.CancelAll(); n > 0 {
		log.WithField("rounds", n).Info("Cancelled running countdowns on shutdown")
	}
	s.refreshActiveRounds()
}

func (s *auctionService) lookupItem(ctx context.Context, uow UnitOfWork, key models.ItemKey) (*auctionItem, error) {
	switch key.Type {
	case models.ItemTypeClub:
		club, err := uow.ClubRepository().GetByID(ctx, key.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get club: %w", err)
		}
		if club == nil {
			return nil, itemNotFound(key)
		}
		return &auctionItem{key: key, name: club.Name, basePrice: club.BasePrice, club: club}, nil

	case models.ItemTypeDuelist:
		duelist, err := uow.DuelistRepository().GetByID(ctx, key.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get duelist: %w", err)
		}
		if duelist == nil {
			return nil, itemNotFound(key)
		}
		return &auctionItem{key: key, name: duelist.Username, basePrice: duelist.BasePrice, duelist: duelist}, nil

	default:
		return nil, &BidRejectedError{Reason: RejectInvalidItemType}
	}
}

// countdownFor keeps a round's countdown length across bids; a round opened
// by a bid uses the configured default
func (s *auctionService) countdownFor(key models.ItemKey) time.Duration {
	if status, ok := s.timers.Status(key); ok && status.State == TimerArmed {
		return status.Duration
	}
	return s.config.AuctionTimeLimit
}

func (s *auctionService) audit(ctx context.Context, entry string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AuditRepository().Record(ctx, entry); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *auctionService) rejected(err error) error {
	if rejected, ok := err.(*BidRejectedError); ok {
		s.metrics.BidsRejected.WithLabelValues(string(rejected.Reason)).Inc()
	}
	return err
}

func (s *auctionService) recordFinalized(outcome *AuctionOutcome) {
	result := "no_winner"
	switch {
	case outcome.Forced:
		result = "forced"
	case outcome.HasWinner:
		result = "sold"
		s.metrics.AmountSettled.Add(float64(outcome.Amount))
	}
	s.metrics.AuctionsFinished.WithLabelValues(string(outcome.Key.Type), result).Inc()

	fields := log.Fields{
		"item":        outcome.Key.String(),
		"result":      result,
		"clearedBids": outcome.ClearedBids,
	}
	if outcome.HasWinner {
		fields["winner"] = outcome.Winner.Encode()
		fields["amount"] = outcome.Amount
	}
	log.WithFields(fields).Info("Auction finalized")
}

func (s *auctionService) refreshActiveRounds() {
	s.metrics.ActiveRounds.Set(float64(len(s.timers.Active())))
}
