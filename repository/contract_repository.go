package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubauction/database"
	"clubauction/models"
)

// ContractRepository implements service.ContractRepository
type ContractRepository struct {
	q queryable
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *database.DB) *ContractRepository {
	return &ContractRepository{q: db.Pool}
}

func newContractRepositoryWithTx(tx queryable) *ContractRepository {
	return &ContractRepository{q: tx}
}

// Create appends a contract
func (r *ContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	query := `
		INSERT INTO duelist_contracts (duelist_id, owner_kind, owner_ref, purchase_price, salary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, signed_at
	`

	err := r.q.QueryRow(ctx, query,
		contract.DuelistID,
		string(contract.Owner.Kind),
		contract.Owner.Ref,
		contract.PurchasePrice,
		contract.Salary,
	).Scan(&contract.ID, &contract.SignedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract for duelist %d: %w", contract.DuelistID, err)
	}

	return nil
}

// GetLatestByDuelist returns the most recent contract of a duelist
func (r *ContractRepository) GetLatestByDuelist(ctx context.Context, duelistID int64) (*models.Contract, error) {
	query := `
		SELECT id, duelist_id, owner_kind, owner_ref, purchase_price, salary, signed_at
		FROM duelist_contracts
		WHERE duelist_id = $1
		ORDER BY id DESC
		LIMIT 1
	`

	var c models.Contract
	var ownerKind, ownerRef string
	err := r.q.QueryRow(ctx, query, duelistID).Scan(
		&c.ID,
		&c.DuelistID,
		&ownerKind,
		&ownerRef,
		&c.PurchasePrice,
		&c.Salary,
		&c.SignedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract for duelist %d: %w", duelistID, err)
	}

	c.Owner, err = models.NewBidderIdentity(models.BidderKind(ownerKind), ownerRef)
	if err != nil {
		return nil, fmt.Errorf("contract %d: %w", c.ID, err)
	}

	return &c, nil
}
