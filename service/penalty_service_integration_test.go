package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"clubauction/config"
	"clubauction/events"
	"clubauction/models"
	"clubauction/repository"
	"clubauction/repository/testutil"
	"clubauction/service"
)

func TestPenaltyEngine_LeaveScenario_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	penalties := service.NewPenaltyService(uowFactory, config.NewTestConfig(), service.NewMetrics(prometheus.NewRegistry()))
	groups := repository.NewGroupRepository(testDB.DB)

	require.NoError(t, groups.Create(ctx, testutil.CreateTestGroup("g1", 200)))
	require.NoError(t, groups.AddMember(ctx, "g1", 42))

	result, err := penalties.LeaveGroup(ctx, 42, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), result.Penalty)

	group, err := groups.GetByName(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(180), group.Funds)

	isMember, err := groups.IsMember(ctx, "g1", 42)
	require.NoError(t, err)
	assert.False(t, isMember)

	// Rejoining does not give the penalty back
	require.NoError(t, groups.AddMember(ctx, "g1", 42))
	group, err = groups.GetByName(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(180), group.Funds)
}

func TestPenaltyEngine_BalancesNeverNegative_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	penalties := service.NewPenaltyService(uowFactory, config.NewTestConfig(), service.NewMetrics(prometheus.NewRegistry()))
	groups := repository.NewGroupRepository(testDB.DB)
	wallets := repository.NewWalletRepository(testDB.DB)
	admin := models.Actor{UserID: 1, IsAdmin: true}

	run := 0
	rapid.Check(t, func(t *rapid.T) {
		run++
		name := fmt.Sprintf("prop-%d", run)
		userID := int64(10_000 + run)

		funds := rapid.Int64Range(0, 5_000).Draw(t, "funds")
		balance := rapid.Int64Range(1, 5_000).Draw(t, "balance")
		if err := groups.Create(ctx, testutil.CreateTestGroup(name, funds)); err != nil {
			t.Fatalf("create group: %v", err)
		}
		if _, err := wallets.Credit(ctx, userID, balance); err != nil {
			t.Fatalf("credit wallet: %v", err)
		}

		steps := rapid.IntRange(1, 12).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				delta := rapid.Int64Range(-10_000, 10_000).Draw(t, "delta")
				if _, err := penalties.AdjustGroupFunds(ctx, admin, name, delta); err != nil {
					t.Fatalf("adjust: %v", err)
				}
				funds = max(0, funds+delta)
			case 1:
				if err := groups.AddMember(ctx, name, userID); err != nil {
					t.Fatalf("join: %v", err)
				}
				result, err := penalties.LeaveGroup(ctx, userID, name)
				if err != nil {
					t.Fatalf("leave: %v", err)
				}
				funds = max(0, funds-result.Penalty)
			case 2:
				amount := rapid.Int64Range(0, 10_000).Draw(t, "debit")
				if _, err := wallets.Debit(ctx, userID, amount); err != nil {
					t.Fatalf("debit: %v", err)
				}
				balance = max(0, balance-amount)
			}
		}

		group, err := groups.GetByName(ctx, name)
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		if group.Funds < 0 || group.Funds != funds {
			t.Fatalf("group funds %d, want %d", group.Funds, funds)
		}

		wallet, err := wallets.Get(ctx, userID)
		if err != nil {
			t.Fatalf("get wallet: %v", err)
		}
		if wallet.Balance < 0 || wallet.Balance != balance {
			t.Fatalf("wallet balance %d, want %d", wallet.Balance, balance)
		}
	})
}
