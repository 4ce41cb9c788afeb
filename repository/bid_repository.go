package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubauction/database"
	"clubauction/models"
)

// BidRepository implements service.BidRepository
type BidRepository struct {
	q queryable
}

// NewBidRepository creates a new bid repository
func NewBidRepository(db *database.DB) *BidRepository {
	return &BidRepository{q: db.Pool}
}

func newBidRepositoryWithTx(tx queryable) *BidRepository {
	return &BidRepository{q: tx}
}

// Create inserts a bid
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (bidder_kind, bidder_ref, amount, item_type, item_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		string(bid.Bidder.Kind),
		bid.Bidder.Ref,
		bid.Amount,
		string(bid.ItemType),
		bid.ItemID,
	).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bid on %s: %w", bid.Key(), err)
	}

	return nil
}

// GetLatest returns the bid with the highest ID for the item
func (r *BidRepository) GetLatest(ctx context.Context, key models.ItemKey) (*models.Bid, error) {
	query := `
		SELECT id, bidder_kind, bidder_ref, amount, item_type, item_id, created_at
		FROM bids
		WHERE item_type = $1 AND item_id = $2
		ORDER BY id DESC
		LIMIT 1
	`

	var bid models.Bid
	var kind, ref, itemType string
	err := r.q.QueryRow(ctx, query, string(key.Type), key.ID).Scan(
		&bid.ID,
		&kind,
		&ref,
		&bid.Amount,
		&itemType,
		&bid.ItemID,
		&bid.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest bid on %s: %w", key, err)
	}

	bid.ItemType = models.ItemType(itemType)
	bid.Bidder, err = models.NewBidderIdentity(models.BidderKind(kind), ref)
	if err != nil {
		return nil, fmt.Errorf("bid %d: %w", bid.ID, err)
	}

	return &bid, nil
}

// ListByBidder returns the bidder's most recent bids across all open rounds
func (r *BidRepository) ListByBidder(ctx context.Context, bidder models.BidderIdentity, limit int) ([]*models.Bid, error) {
	query := `
		SELECT id, amount, item_type, item_id, created_at
		FROM bids
		WHERE bidder_kind = $1 AND bidder_ref = $2
		ORDER BY id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, string(bidder.Kind), bidder.Ref, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids of %s: %w", bidder.Encode(), err)
	}
	defer rows.Close()

	var bids []*models.Bid
	for rows.Next() {
		bid := &models.Bid{Bidder: bidder}
		var itemType string
		if err := rows.Scan(&bid.ID, &bid.Amount, &itemType, &bid.ItemID, &bid.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bid.ItemType = models.ItemType(itemType)
		bids = append(bids, bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}

// CountByItem returns the number of bids in the item's current round
func (r *BidRepository) CountByItem(ctx context.Context, key models.ItemKey) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bids WHERE item_type = $1 AND item_id = $2`, string(key.Type), key.ID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bids on %s: %w", key, err)
	}
	return count, nil
}

// DeleteByItem removes all bids of the item
func (r *BidRepository) DeleteByItem(ctx context.Context, key models.ItemKey) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM bids WHERE item_type = $1 AND item_id = $2`, string(key.Type), key.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bids on %s: %w", key, err)
	}
	return result.RowsAffected(), nil
}

// DeleteAll removes every bid
func (r *BidRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM bids`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete all bids: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListOpenItems returns every item with at least one bid
func (r *BidRepository) ListOpenItems(ctx context.Context) ([]models.ItemKey, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT item_type, item_id FROM bids ORDER BY item_type, item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list open items: %w", err)
	}
	defer rows.Close()

	var keys []models.ItemKey
	for rows.Next() {
		var itemType string
		var itemID int64
		if err := rows.Scan(&itemType, &itemID); err != nil {
			return nil, fmt.Errorf("failed to scan open item: %w", err)
		}
		keys = append(keys, models.NewItemKey(models.ItemType(itemType), itemID))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open items: %w", err)
	}

	return keys, nil
}
