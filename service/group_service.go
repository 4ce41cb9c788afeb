package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"clubauction/config"
	"clubauction/events"
	"clubauction/models"
)

// GroupInfo is a group together with its members
type GroupInfo struct {
	Group   *models.InvestorGroup
	Members []int64
}

type groupService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewGroupService creates a new investor group service
func NewGroupService(uowFactory UnitOfWorkFactory, cfg *config.Config) GroupService {
	return &groupService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// CreateGroup creates a group and makes the creator its first member
func (s *groupService) CreateGroup(ctx context.Context, creatorID int64, name string, startingFunds int64) (*models.InvestorGroup, error) {
	name = models.NormalizeGroupName(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if startingFunds < 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group := &models.InvestorGroup{Name: name, Funds: startingFunds}
	if err := uow.GroupRepository().Create(ctx, group); err != nil {
		return nil, err
	}

	if err := uow.GroupRepository().AddMember(ctx, name, creatorID); err != nil {
		return nil, fmt.Errorf("failed to add creator to group: %w", err)
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%d created group %s with starting %d", creatorID, name, startingFunds)); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"group":   name,
		"creator": creatorID,
		"funds":   startingFunds,
	}).Info("Investor group created")

	return group, nil
}

// JoinGroup adds the user to an existing group
func (s *groupService) JoinGroup(ctx context.Context, userID int64, name string) (*models.InvestorGroup, error) {
	name = models.NormalizeGroupName(name)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group, err := uow.GroupRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, notFound("group", name)
	}

	if err := uow.GroupRepository().AddMember(ctx, name, userID); err != nil {
		return nil, err
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%d joined group %s", userID, name)); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return group, nil
}

// Deposit adds to a group's pool. Anyone may fund a group.
func (s *groupService) Deposit(ctx context.Context, userID int64, name string, amount int64) (*models.FundsChange, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	name = models.NormalizeGroupName(name)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	change, err := uow.GroupRepository().AdjustFunds(ctx, name, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to deposit: %w", err)
	}
	if change == nil {
		return nil, notFound("group", name)
	}

	return change, s.finishFundsChange(ctx, uow, name, change, "deposit",
		fmt.Sprintf("%d deposited %d to %s", userID, amount, name))
}

// Withdraw takes from a group's pool. Only members may withdraw, and never
// more than the group holds.
func (s *groupService) Withdraw(ctx context.Context, userID int64, name string, amount int64) (*models.FundsChange, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	name = models.NormalizeGroupName(name)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group, err := uow.GroupRepository().GetByNameForUpdate(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, notFound("group", name)
	}

	isMember, err := uow.GroupRepository().IsMember(ctx, name, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}
	if amount > group.Funds {
		return nil, ErrInsufficientFunds
	}

	change, err := uow.GroupRepository().AdjustFunds(ctx, name, -amount)
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw: %w", err)
	}
	if change == nil {
		return nil, notFound("group", name)
	}

	return change, s.finishFundsChange(ctx, uow, name, change, "withdraw",
		fmt.Sprintf("%d withdrew %d from %s", userID, amount, name))
}

func (s *groupService) finishFundsChange(ctx context.Context, uow UnitOfWork, name string, change *models.FundsChange, reason, entry string) error {
	if err := uow.AuditRepository().Record(ctx, entry); err != nil {
		return err
	}

	uow.EventBus().Publish(events.GroupFundsChangedEvent{
		GroupName: name,
		OldFunds:  change.Before,
		NewFunds:  change.After,
		Reason:    reason,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"group":  name,
		"reason": reason,
		"funds":  change.After,
	}).Info("Group funds changed")
	return nil
}

// GetGroup returns a group and its members
func (s *groupService) GetGroup(ctx context.Context, name string) (*GroupInfo, error) {
	name = models.NormalizeGroupName(name)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group, err := uow.GroupRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, notFound("group", name)
	}

	members, err := uow.GroupRepository().ListMembers(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return &GroupInfo{Group: group, Members: members}, nil
}

func (s *groupService) GroupsForUser(ctx context.Context, userID int64) ([]*models.InvestorGroup, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.GroupRepository().ListGroupsForUser(ctx, userID)
}
