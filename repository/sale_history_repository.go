package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clubauction/database"
	"clubauction/models"
)

// SaleHistoryRepository implements service.SaleHistoryRepository
type SaleHistoryRepository struct {
	q queryable
}

// NewSaleHistoryRepository creates a new sale history repository
func NewSaleHistoryRepository(db *database.DB) *SaleHistoryRepository {
	return &SaleHistoryRepository{q: db.Pool}
}

func newSaleHistoryRepositoryWithTx(tx queryable) *SaleHistoryRepository {
	return &SaleHistoryRepository{q: tx}
}

// Create appends a sale
func (r *SaleHistoryRepository) Create(ctx context.Context, sale *models.SaleHistory) error {
	query := `
		INSERT INTO club_sale_history (club_id, winner_kind, winner_ref, amount, market_value_at_sale, forced)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, sold_at
	`

	err := r.q.QueryRow(ctx, query,
		sale.ClubID,
		string(sale.Winner.Kind),
		sale.Winner.Ref,
		sale.Amount,
		sale.MarketValueAtSale,
		sale.Forced,
	).Scan(&sale.ID, &sale.SoldAt)
	if err != nil {
		return fmt.Errorf("failed to record sale of club %d: %w", sale.ClubID, err)
	}

	return nil
}

// ListBetween returns sales in [from, to), oldest first
func (r *SaleHistoryRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.SaleHistory, error) {
	query := `
		SELECT id, club_id, winner_kind, winner_ref, amount, market_value_at_sale, forced, sold_at
		FROM club_sale_history
		WHERE sold_at >= $1 AND sold_at < $2
		ORDER BY sold_at, id
	`

	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales between %s and %s: %w", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	return collectSales(rows)
}

// ListByClub returns the newest sales of a club
func (r *SaleHistoryRepository) ListByClub(ctx context.Context, clubID int64, limit int) ([]*models.SaleHistory, error) {
	query := `
		SELECT id, club_id, winner_kind, winner_ref, amount, market_value_at_sale, forced, sold_at
		FROM club_sale_history
		WHERE club_id = $1
		ORDER BY sold_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, clubID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales of club %d: %w", clubID, err)
	}
	return collectSales(rows)
}

func collectSales(rows pgx.Rows) ([]*models.SaleHistory, error) {
	defer rows.Close()

	var sales []*models.SaleHistory
	for rows.Next() {
		var s models.SaleHistory
		var kind, ref string
		if err := rows.Scan(&s.ID, &s.ClubID, &kind, &ref, &s.Amount, &s.MarketValueAtSale, &s.Forced, &s.SoldAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}

		winner, err := models.NewBidderIdentity(models.BidderKind(kind), ref)
		if err != nil {
			return nil, fmt.Errorf("sale %d: %w", s.ID, err)
		}
		s.Winner = winner
		sales = append(sales, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}
