package repository

import (
	"context"
	"fmt"

	"clubauction/database"
	"clubauction/models"
)

// AuditRepository implements service.AuditRepository
type AuditRepository struct {
	q queryable
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{q: db.Pool}
}

func newAuditRepositoryWithTx(tx queryable) *AuditRepository {
	return &AuditRepository{q: tx}
}

// Record appends an audit line
func (r *AuditRepository) Record(ctx context.Context, entry string) error {
	if _, err := r.q.Exec(ctx, `INSERT INTO audit_logs (entry) VALUES ($1)`, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Tail returns the newest audit lines
func (r *AuditRepository) Tail(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT id, entry, created_at FROM audit_logs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Entry, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}

	return entries, nil
}
