package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubauction/database"
	"clubauction/models"
)

// DuelistRepository implements service.DuelistRepository
type DuelistRepository struct {
	q queryable
}

// NewDuelistRepository creates a new duelist repository
func NewDuelistRepository(db *database.DB) *DuelistRepository {
	return &DuelistRepository{q: db.Pool}
}

// newDuelistRepositoryWithTx creates a new duelist repository with a transaction
func newDuelistRepositoryWithTx(tx queryable) *DuelistRepository {
	return &DuelistRepository{q: tx}
}

const duelistColumns = `id, discord_user_id, username, avatar_url, base_price, expected_salary, owner_kind, owner_ref, registered_at`

func scanDuelist(row pgx.Row) (*models.Duelist, error) {
	var d models.Duelist
	var ownerKind, ownerRef *string
	err := row.Scan(
		&d.ID,
		&d.DiscordUserID,
		&d.Username,
		&d.AvatarURL,
		&d.BasePrice,
		&d.ExpectedSalary,
		&ownerKind,
		&ownerRef,
		&d.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}

	d.OwnedBy, err = identityFromColumns(ownerKind, ownerRef)
	if err != nil {
		return nil, fmt.Errorf("duelist %d: %w", d.ID, err)
	}
	return &d, nil
}

func (r *DuelistRepository) queryDuelists(ctx context.Context, query string, args ...any) ([]*models.Duelist, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var duelists []*models.Duelist
	for rows.Next() {
		d, err := scanDuelist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duelist: %w", err)
		}
		duelists = append(duelists, d)
	}

	return duelists, rows.Err()
}

// Create registers a new duelist as a free agent unless OwnedBy is set
func (r *DuelistRepository) Create(ctx context.Context, duelist *models.Duelist) error {
	ownerKind, ownerRef := identityColumns(duelist.OwnedBy)

	query := `
		INSERT INTO duelists (discord_user_id, username, avatar_url, base_price, expected_salary, owner_kind, owner_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, registered_at
	`

	err := r.q.QueryRow(ctx, query,
		duelist.DiscordUserID,
		duelist.Username,
		duelist.AvatarURL,
		duelist.BasePrice,
		duelist.ExpectedSalary,
		ownerKind,
		ownerRef,
	).Scan(&duelist.ID, &duelist.RegisteredAt)
	if err != nil {
		return fmt.Errorf("failed to create duelist %q: %w", duelist.Username, err)
	}

	return nil
}

// GetByID retrieves a duelist by ID
func (r *DuelistRepository) GetByID(ctx context.Context, id int64) (*models.Duelist, error) {
	query := `SELECT ` + duelistColumns + ` FROM duelists WHERE id = $1`

	d, err := scanDuelist(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get duelist %d: %w", id, err)
	}
	return d, nil
}

// List returns all duelists in registration order
func (r *DuelistRepository) List(ctx context.Context) ([]*models.Duelist, error) {
	duelists, err := r.queryDuelists(ctx, `SELECT `+duelistColumns+` FROM duelists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list duelists: %w", err)
	}
	return duelists, nil
}

// ListByOwner returns the duelists currently owned by the identity
func (r *DuelistRepository) ListByOwner(ctx context.Context, owner models.BidderIdentity) ([]*models.Duelist, error) {
	query := `SELECT ` + duelistColumns + ` FROM duelists WHERE owner_kind = $1 AND owner_ref = $2 ORDER BY id`

	duelists, err := r.queryDuelists(ctx, query, string(owner.Kind), owner.Ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list duelists owned by %s: %w", owner.Encode(), err)
	}
	return duelists, nil
}

// SetOwner records the new owner of a duelist; the zero identity makes it a free agent
func (r *DuelistRepository) SetOwner(ctx context.Context, id int64, owner models.BidderIdentity) error {
	ownerKind, ownerRef := identityColumns(owner)

	result, err := r.q.Exec(ctx, `UPDATE duelists SET owner_kind = $1, owner_ref = $2 WHERE id = $3`, ownerKind, ownerRef, id)
	if err != nil {
		return fmt.Errorf("failed to set owner of duelist %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("duelist %d not found", id)
	}
	return nil
}
