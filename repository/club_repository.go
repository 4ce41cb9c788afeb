package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clubauction/database"
	"clubauction/models"
	"clubauction/service"
)

// ClubRepository implements service.ClubRepository
type ClubRepository struct {
	q queryable
}

// NewClubRepository creates a new club repository
func NewClubRepository(db *database.DB) *ClubRepository {
	return &ClubRepository{q: db.Pool}
}

// newClubRepositoryWithTx creates a new club repository with a transaction
func newClubRepositoryWithTx(tx queryable) *ClubRepository {
	return &ClubRepository{q: tx}
}

const clubColumns = `id, name, base_price, slogan, market_value, manager_id, created_at`

func scanClub(row pgx.Row) (*models.Club, error) {
	var club models.Club
	err := row.Scan(
		&club.ID,
		&club.Name,
		&club.BasePrice,
		&club.Slogan,
		&club.MarketValue,
		&club.ManagerID,
		&club.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// Create inserts a new club. The market value starts at the base price unless set.
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	if club.MarketValue == 0 {
		club.MarketValue = club.BasePrice
	}

	query := `
		INSERT INTO clubs (name, base_price, slogan, market_value, manager_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, club.Name, club.BasePrice, club.Slogan, club.MarketValue, club.ManagerID).
		Scan(&club.ID, &club.CreatedAt)
	if isUniqueViolation(err) {
		return service.ErrClubExists
	}
	if err != nil {
		return fmt.Errorf("failed to create club %q: %w", club.Name, err)
	}

	return nil
}

// GetByID retrieves a club by its ID
func (r *ClubRepository) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE id = $1`

	club, err := scanClub(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club %d: %w", id, err)
	}
	return club, nil
}

// GetByName retrieves a club by name, ignoring case
func (r *ClubRepository) GetByName(ctx context.Context, name string) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE LOWER(name) = LOWER($1)`

	club, err := scanClub(r.q.QueryRow(ctx, query, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club %q: %w", name, err)
	}
	return club, nil
}

// List returns all clubs ordered by name
func (r *ClubRepository) List(ctx context.Context) ([]*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY name`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	var clubs []*models.Club
	for rows.Next() {
		club, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, club)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clubs: %w", err)
	}

	return clubs, nil
}

// UpdateMarketValue sets a club's market value
func (r *ClubRepository) UpdateMarketValue(ctx context.Context, id int64, value int64) error {
	result, err := r.q.Exec(ctx, `UPDATE clubs SET market_value = $1 WHERE id = $2`, value, id)
	if err != nil {
		return fmt.Errorf("failed to update market value of club %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("club %d not found", id)
	}
	return nil
}

// SetManager assigns the club manager, or clears it when managerID is nil
func (r *ClubRepository) SetManager(ctx context.Context, id int64, managerID *int64) error {
	result, err := r.q.Exec(ctx, `UPDATE clubs SET manager_id = $1 WHERE id = $2`, managerID, id)
	if err != nil {
		return fmt.Errorf("failed to set manager of club %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("club %d not found", id)
	}
	return nil
}

// RecordMarketValue appends a market value history point
func (r *ClubRepository) RecordMarketValue(ctx context.Context, clubID int64, value int64) error {
	_, err := r.q.Exec(ctx, `INSERT INTO club_market_history (club_id, value) VALUES ($1, $2)`, clubID, value)
	if err != nil {
		return fmt.Errorf("failed to record market value of club %d: %w", clubID, err)
	}
	return nil
}

// GetMarketHistory returns history points recorded at or after since, oldest first
func (r *ClubRepository) GetMarketHistory(ctx context.Context, clubID int64, since time.Time) ([]*models.MarketValuePoint, error) {
	query := `
		SELECT id, club_id, value, recorded_at
		FROM club_market_history
		WHERE club_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at, id
	`

	rows, err := r.q.Query(ctx, query, clubID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get market history of club %d: %w", clubID, err)
	}
	defer rows.Close()

	var points []*models.MarketValuePoint
	for rows.Next() {
		var p models.MarketValuePoint
		if err := rows.Scan(&p.ID, &p.ClubID, &p.Value, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan market value point: %w", err)
		}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating market history: %w", err)
	}

	return points, nil
}
