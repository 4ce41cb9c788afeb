package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubauction/repository/testutil"
	"clubauction/service"
)

func TestGroupRepository_Membership(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGroupRepository(testDB.DB)
	ctx := context.Background()

	group := testutil.CreateTestGroup("Alpha", 0)
	require.NoError(t, repo.Create(ctx, group))
	assert.Equal(t, "alpha", group.Name)

	assert.ErrorIs(t, repo.Create(ctx, testutil.CreateTestGroup("ALPHA", 0)), service.ErrGroupExists)

	require.NoError(t, repo.AddMember(ctx, "Alpha", 1))
	require.NoError(t, repo.AddMember(ctx, "alpha", 2))
	assert.ErrorIs(t, repo.AddMember(ctx, "alpha", 1), service.ErrAlreadyMember)

	isMember, err := repo.IsMember(ctx, "ALPHA", 2)
	require.NoError(t, err)
	assert.True(t, isMember)

	members, err := repo.ListMembers(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, members)

	groups, err := repo.ListGroupsForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "alpha", groups[0].Name)

	removed, err := repo.RemoveMember(ctx, "alpha", 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveMember(ctx, "alpha", 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGroupRepository_AdjustFundsClampsAtZero(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGroupRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestGroup("beta", 500)))

	change, err := repo.AdjustFunds(ctx, "beta", -525)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, int64(500), change.Before)
	assert.Equal(t, int64(0), change.After)
	assert.Equal(t, int64(500), change.Applied)

	change, err = repo.AdjustFunds(ctx, "beta", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(200), change.After)
	assert.Equal(t, int64(200), change.Applied)

	change, err = repo.AdjustFunds(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Nil(t, change)
}

func TestWalletRepository_CreditAndDebit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	wallet, err := repo.Get(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, wallet)

	change, err := repo.Debit(ctx, 5, 100)
	require.NoError(t, err)
	assert.Nil(t, change, "no wallet means nothing to debit")

	balance, err := repo.Credit(ctx, 5, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)

	balance, err = repo.Credit(ctx, 5, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(350), balance)

	change, err = repo.Debit(ctx, 5, 1000)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, int64(0), change.After)
	assert.Equal(t, int64(350), change.Applied)
}

func TestAuditRepository_Tail(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAuditRepository(testDB.DB)
	ctx := context.Background()

	for _, line := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Record(ctx, line))
	}

	entries, err := repo.Tail(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Entry)
	assert.Equal(t, "second", entries[1].Entry)
}
