package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubauction/models"
	"clubauction/repository/testutil"
)

func TestBidRepository_LatestIsHighestID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBidRepository(testDB.DB)
	ctx := context.Background()

	club := models.NewItemKey(models.ItemTypeClub, 1)
	duelist := models.NewItemKey(models.ItemTypeDuelist, 1)

	latest, err := repo.GetLatest(ctx, club)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, repo.Create(ctx, testutil.CreateTestBid(models.Individual(1), club, 1050)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBid(models.Group("alpha"), club, 1100)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBid(models.Individual(2), duelist, 700)))

	latest, err = repo.GetLatest(ctx, club)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(1100), latest.Amount)
	assert.Equal(t, models.Group("alpha"), latest.Bidder)

	count, err := repo.CountByItem(ctx, club)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	open, err := repo.ListOpenItems(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ItemKey{club, duelist}, open)

	deleted, err := repo.DeleteByItem(ctx, club)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	latest, err = repo.GetLatest(ctx, club)
	require.NoError(t, err)
	assert.Nil(t, latest, "a closed round leaves no bids behind")

	deleted, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestBidRepository_ListByBidder(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBidRepository(testDB.DB)
	ctx := context.Background()

	club := models.NewItemKey(models.ItemTypeClub, 1)
	duelist := models.NewItemKey(models.ItemTypeDuelist, 4)

	require.NoError(t, repo.Create(ctx, testutil.CreateTestBid(models.Individual(1), club, 1050)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBid(models.Group("1"), club, 1103)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBid(models.Individual(1), duelist, 600)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBid(models.Individual(2), duelist, 630)))

	bids, err := repo.ListByBidder(ctx, models.Individual(1), 10)
	require.NoError(t, err)
	require.Len(t, bids, 2, "a group named like a user id is a different bidder")
	assert.Equal(t, duelist, bids[0].Key())
	assert.Equal(t, int64(600), bids[0].Amount)
	assert.Equal(t, models.Individual(1), bids[0].Bidder)
	assert.Equal(t, int64(1050), bids[1].Amount)

	bids, err = repo.ListByBidder(ctx, models.Individual(1), 1)
	require.NoError(t, err)
	assert.Len(t, bids, 1)

	bids, err = repo.ListByBidder(ctx, models.Individual(3), 10)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestSaleHistoryRepository_Window(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	clubs := NewClubRepository(testDB.DB)
	sales := NewSaleHistoryRepository(testDB.DB)
	ctx := context.Background()

	club := testutil.CreateTestClub("Green Owls")
	require.NoError(t, clubs.Create(ctx, club))

	before := time.Now().Add(-time.Minute)
	sale := &models.SaleHistory{ClubID: club.ID, Winner: models.Group("beta"), Amount: 1500, MarketValueAtSale: 1000}
	require.NoError(t, sales.Create(ctx, sale))

	window, err := sales.ListBetween(ctx, before, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, models.Group("beta"), window[0].Winner)
	assert.Equal(t, int64(1000), window[0].MarketValueAtSale)
	assert.False(t, window[0].Forced)

	empty, err := sales.ListBetween(ctx, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, empty)

	byClub, err := sales.ListByClub(ctx, club.ID, 10)
	require.NoError(t, err)
	assert.Len(t, byClub, 1)
}
