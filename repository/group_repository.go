package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubauction/database"
	"clubauction/models"
	"clubauction/service"
)

// GroupRepository implements service.GroupRepository
type GroupRepository struct {
	q queryable
}

// NewGroupRepository creates a new investor group repository
func NewGroupRepository(db *database.DB) *GroupRepository {
	return &GroupRepository{q: db.Pool}
}

func newGroupRepositoryWithTx(tx queryable) *GroupRepository {
	return &GroupRepository{q: tx}
}

// Create inserts a group. Names are stored lowercased.
func (r *GroupRepository) Create(ctx context.Context, group *models.InvestorGroup) error {
	group.Name = models.NormalizeGroupName(group.Name)

	query := `
		INSERT INTO investor_groups (name, funds)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, group.Name, group.Funds).Scan(&group.ID, &group.CreatedAt)
	if isUniqueViolation(err) {
		return service.ErrGroupExists
	}
	if err != nil {
		return fmt.Errorf("failed to create group %q: %w", group.Name, err)
	}

	return nil
}

// GetByName retrieves a group by name
func (r *GroupRepository) GetByName(ctx context.Context, name string) (*models.InvestorGroup, error) {
	return r.getByName(ctx, `SELECT id, name, funds, created_at FROM investor_groups WHERE name = $1`, name)
}

// GetByNameForUpdate retrieves a group and locks its row until the transaction ends
func (r *GroupRepository) GetByNameForUpdate(ctx context.Context, name string) (*models.InvestorGroup, error) {
	return r.getByName(ctx, `SELECT id, name, funds, created_at FROM investor_groups WHERE name = $1 FOR UPDATE`, name)
}

func (r *GroupRepository) getByName(ctx context.Context, query, name string) (*models.InvestorGroup, error) {
	name = models.NormalizeGroupName(name)

	var g models.InvestorGroup
	err := r.q.QueryRow(ctx, query, name).Scan(&g.ID, &g.Name, &g.Funds, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group %q: %w", name, err)
	}
	return &g, nil
}

// AdjustFunds adds delta to the group's funds, never going below zero
func (r *GroupRepository) AdjustFunds(ctx context.Context, name string, delta int64) (*models.FundsChange, error) {
	name = models.NormalizeGroupName(name)

	query := `
		WITH prev AS (
			SELECT funds FROM investor_groups WHERE name = $1 FOR UPDATE
		)
		UPDATE investor_groups g
		SET funds = GREATEST(prev.funds + $2, 0)
		FROM prev
		WHERE g.name = $1
		RETURNING prev.funds, g.funds
	`

	var change models.FundsChange
	err := r.q.QueryRow(ctx, query, name, delta).Scan(&change.Before, &change.After)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust funds of group %q: %w", name, err)
	}

	change.Applied = change.After - change.Before
	if change.Applied < 0 {
		change.Applied = -change.Applied
	}
	return &change, nil
}

// AddMember adds a user to a group
func (r *GroupRepository) AddMember(ctx context.Context, groupName string, userID int64) error {
	groupName = models.NormalizeGroupName(groupName)

	_, err := r.q.Exec(ctx, `INSERT INTO group_members (group_name, user_id) VALUES ($1, $2)`, groupName, userID)
	if isUniqueViolation(err) {
		return service.ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("failed to add user %d to group %q: %w", userID, groupName, err)
	}
	return nil
}

// RemoveMember removes a user from a group
func (r *GroupRepository) RemoveMember(ctx context.Context, groupName string, userID int64) (bool, error) {
	groupName = models.NormalizeGroupName(groupName)

	result, err := r.q.Exec(ctx, `DELETE FROM group_members WHERE group_name = $1 AND user_id = $2`, groupName, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove user %d from group %q: %w", userID, groupName, err)
	}
	return result.RowsAffected() > 0, nil
}

// IsMember reports whether the user belongs to the group
func (r *GroupRepository) IsMember(ctx context.Context, groupName string, userID int64) (bool, error) {
	groupName = models.NormalizeGroupName(groupName)

	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_name = $1 AND user_id = $2)`,
		groupName, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of user %d in group %q: %w", userID, groupName, err)
	}
	return exists, nil
}

// ListMembers returns member user IDs in join order
func (r *GroupRepository) ListMembers(ctx context.Context, groupName string) ([]int64, error) {
	groupName = models.NormalizeGroupName(groupName)

	rows, err := r.q.Query(ctx, `SELECT user_id FROM group_members WHERE group_name = $1 ORDER BY id`, groupName)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %q: %w", groupName, err)
	}

	members, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan members of group %q: %w", groupName, err)
	}
	return members, nil
}

// ListGroupsForUser returns the groups a user belongs to
func (r *GroupRepository) ListGroupsForUser(ctx context.Context, userID int64) ([]*models.InvestorGroup, error) {
	query := `
		SELECT g.id, g.name, g.funds, g.created_at
		FROM investor_groups g
		JOIN group_members m ON m.group_name = g.name
		WHERE m.user_id = $1
		ORDER BY g.name
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of user %d: %w", userID, err)
	}
	defer rows.Close()

	var groups []*models.InvestorGroup
	for rows.Next() {
		var g models.InvestorGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Funds, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}
