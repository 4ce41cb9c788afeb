package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"clubauction/config"
	"clubauction/events"
	"clubauction/models"
)

// LeaveResult describes a member leaving an investor group
type LeaveResult struct {
	GroupName string
	Penalty   int64
	Funds     models.FundsChange
}

// SalaryPenaltyResult describes a salary-miss decision for a contracted duelist
type SalaryPenaltyResult struct {
	DuelistID   int64
	DuelistName string
	Owner       models.BidderIdentity
	Applied     bool
	Penalty     int64
	// Debit is nil when nothing was taken: the penalty was skipped, the owner
	// is an individual, or the owning group no longer exists
	Debit *models.FundsChange
}

type penaltyService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	metrics    *Metrics
}

// NewPenaltyService creates the penalty and adjustment engine
func NewPenaltyService(uowFactory UnitOfWorkFactory, cfg *config.Config, metrics *Metrics) PenaltyService {
	return &penaltyService{
		uowFactory: uowFactory,
		config:     cfg,
		metrics:    metrics,
	}
}

// LeaveGroup removes the user from the group. The group, not the member,
// pays floor(funds * leavePercent / 100).
func (s *penaltyService) LeaveGroup(ctx context.Context, userID int64, groupName string) (*LeaveResult, error) {
	groupName = models.NormalizeGroupName(groupName)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group, err := uow.GroupRepository().GetByNameForUpdate(ctx, groupName)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, notFound("group", groupName)
	}

	removed, err := uow.GroupRepository().RemoveMember(ctx, groupName, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}
	if !removed {
		return nil, ErrNotMember
	}

	penalty := PercentOf(group.Funds, s.config.LeavePenaltyPercent)
	change, err := uow.GroupRepository().AdjustFunds(ctx, groupName, -penalty)
	if err != nil {
		return nil, fmt.Errorf("failed to apply leave penalty: %w", err)
	}
	if change == nil {
		return nil, notFound("group", groupName)
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%d left group %s, penalty %d", userID, groupName, penalty)); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.GroupFundsChangedEvent{
		GroupName: groupName,
		OldFunds:  change.Before,
		NewFunds:  change.After,
		Reason:    "leave_penalty",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.metrics.PenaltiesApplied.WithLabelValues("leave").Inc()
	log.WithFields(log.Fields{
		"group":   groupName,
		"userID":  userID,
		"penalty": penalty,
		"funds":   change.After,
	}).Info("Member left group")

	return &LeaveResult{GroupName: groupName, Penalty: penalty, Funds: *change}, nil
}

// ApplySalaryMissPenalty charges floor(salary * missPercent / 100) to the
// owner of a contracted duelist. Only group owners are debited; individually
// owned duelists are recorded in the audit log without a ledger change.
func (s *penaltyService) ApplySalaryMissPenalty(ctx context.Context, actor models.Actor, duelistID int64, apply bool) (*SalaryPenaltyResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	duelist, err := uow.DuelistRepository().GetByID(ctx, duelistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duelist: %w", err)
	}
	if duelist == nil {
		return nil, notFound("duelist", duelistID)
	}

	contract, err := uow.ContractRepository().GetLatestByDuelist(ctx, duelistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if contract == nil {
		return nil, ErrNotContracted
	}

	allowed, err := s.mayPenalize(ctx, uow, actor, contract.Owner)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}

	result := &SalaryPenaltyResult{
		DuelistID:   duelistID,
		DuelistName: duelist.Username,
		Owner:       contract.Owner,
	}
	if !apply {
		return result, nil
	}

	result.Applied = true
	result.Penalty = PercentOf(contract.Salary, s.config.DuelistMissPenaltyPercent)

	if groupName, ok := contract.Owner.GroupName(); ok {
		result.Debit, err = uow.GroupRepository().AdjustFunds(ctx, groupName, -result.Penalty)
		if err != nil {
			return nil, fmt.Errorf("failed to debit group: %w", err)
		}
		if result.Debit != nil {
			uow.EventBus().Publish(events.GroupFundsChangedEvent{
				GroupName: groupName,
				OldFunds:  result.Debit.Before,
				NewFunds:  result.Debit.After,
				Reason:    "salary_miss",
			})
		}
	}

	entry := fmt.Sprintf("%s applied salary deduction %d for duelist %s (id %d)", actor.Name(), result.Penalty, duelist.Username, duelistID)
	if err := uow.AuditRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.metrics.PenaltiesApplied.WithLabelValues("salary_miss").Inc()
	log.WithFields(log.Fields{
		"duelistID": duelistID,
		"owner":     contract.Owner.Encode(),
		"penalty":   result.Penalty,
		"debited":   result.Debit != nil,
	}).Info("Salary miss penalty applied")

	return result, nil
}

// mayPenalize allows members of an owning group, the individual owner, and admins
func (s *penaltyService) mayPenalize(ctx context.Context, uow UnitOfWork, actor models.Actor, owner models.BidderIdentity) (bool, error) {
	if actor.CanAdminister() {
		return true, nil
	}

	if groupName, ok := owner.GroupName(); ok {
		isMember, err := uow.GroupRepository().IsMember(ctx, groupName, actor.UserID)
		if err != nil {
			return false, fmt.Errorf("failed to check group membership: %w", err)
		}
		return isMember, nil
	}

	ownerID, ok := owner.UserID()
	return ok && ownerID == actor.UserID, nil
}

// AdjustGroupFunds applies a signed admin adjustment; the result never drops below zero
func (s *penaltyService) AdjustGroupFunds(ctx context.Context, actor models.Actor, groupName string, delta int64) (*models.FundsChange, error) {
	if !actor.CanAdminister() {
		return nil, ErrUnauthorized
	}
	groupName = models.NormalizeGroupName(groupName)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	change, err := uow.GroupRepository().AdjustFunds(ctx, groupName, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust group funds: %w", err)
	}
	if change == nil {
		return nil, notFound("group", groupName)
	}

	entry := fmt.Sprintf("%s adjusted funds of %s by %d. New funds %d", actor.Name(), groupName, delta, change.After)
	if err := uow.AuditRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.GroupFundsChangedEvent{
		GroupName: groupName,
		OldFunds:  change.Before,
		NewFunds:  change.After,
		Reason:    "adjustment",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.metrics.PenaltiesApplied.WithLabelValues("adjustment").Inc()
	log.WithFields(log.Fields{
		"group": groupName,
		"actor": actor.UserID,
		"delta": delta,
		"funds": change.After,
	}).Info("Group funds adjusted")

	return change, nil
}
