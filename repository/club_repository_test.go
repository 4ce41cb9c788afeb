package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubauction/models"
	"clubauction/repository/testutil"
	"clubauction/service"
)

func TestClubRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClubRepository(testDB.DB)
	ctx := context.Background()

	club := testutil.CreateTestClub("Red Lions")
	club.MarketValue = 0
	require.NoError(t, repo.Create(ctx, club))
	assert.NotZero(t, club.ID)
	assert.Equal(t, club.BasePrice, club.MarketValue, "market value starts at the base price")

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, club.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Red Lions", got.Name)
		assert.Nil(t, got.ManagerID)
	})

	t.Run("by name ignores case", func(t *testing.T) {
		got, err := repo.GetByName(ctx, "red lions")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, club.ID, got.ID)
	})

	t.Run("missing club", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestClub("Red Lions"))
		assert.ErrorIs(t, err, service.ErrClubExists)
	})
}

func TestClubRepository_MarketValue(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClubRepository(testDB.DB)
	ctx := context.Background()

	club := testutil.CreateTestClub("Blue Hawks")
	require.NoError(t, repo.Create(ctx, club))

	since := time.Now().Add(-time.Minute)
	require.NoError(t, repo.UpdateMarketValue(ctx, club.ID, 1030))
	require.NoError(t, repo.RecordMarketValue(ctx, club.ID, 1030))
	require.NoError(t, repo.UpdateMarketValue(ctx, club.ID, 990))
	require.NoError(t, repo.RecordMarketValue(ctx, club.ID, 990))

	got, err := repo.GetByID(ctx, club.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(990), got.MarketValue)

	history, err := repo.GetMarketHistory(ctx, club.ID, since)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(1030), history[0].Value)
	assert.Equal(t, int64(990), history[1].Value)

	manager := int64(4242)
	require.NoError(t, repo.SetManager(ctx, club.ID, &manager))
	got, err = repo.GetByID(ctx, club.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, manager, *got.ManagerID)

	assert.Error(t, repo.UpdateMarketValue(ctx, 999999, 1))
}

func TestDuelistRepository_Ownership(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDuelistRepository(testDB.DB)
	contracts := NewContractRepository(testDB.DB)
	ctx := context.Background()

	duelist := testutil.CreateTestDuelist(111, "kaiba")
	require.NoError(t, repo.Create(ctx, duelist))

	got, err := repo.GetByID(ctx, duelist.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFreeAgent())

	owner := models.Group("Alpha")
	require.NoError(t, repo.SetOwner(ctx, duelist.ID, owner))

	owned, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, owner, owned[0].OwnedBy)

	contract, err := contracts.GetLatestByDuelist(ctx, duelist.ID)
	require.NoError(t, err)
	assert.Nil(t, contract)

	require.NoError(t, contracts.Create(ctx, &models.Contract{DuelistID: duelist.ID, Owner: models.Individual(7), PurchasePrice: 600, Salary: 100}))
	require.NoError(t, contracts.Create(ctx, &models.Contract{DuelistID: duelist.ID, Owner: owner, PurchasePrice: 900, Salary: 100}))

	contract, err = contracts.GetLatestByDuelist(ctx, duelist.ID)
	require.NoError(t, err)
	require.NotNil(t, contract)
	assert.Equal(t, owner, contract.Owner)
	assert.Equal(t, int64(900), contract.PurchasePrice)
}
