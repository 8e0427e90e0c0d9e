package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"veledger/core/types"
	"veledger/native/locker"
	"veledger/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func TestManagerCommitPersists(t *testing.T) {
	db := storage.NewMemDB()
	m := NewManager(db)

	require.NoError(t, m.SetTokenBalance("SOL", types.Address{0x01}, big.NewInt(42)))
	require.True(t, m.Dirty())
	require.NoError(t, m.Commit())
	require.False(t, m.Dirty())

	fresh := NewManager(db)
	got, err := fresh.TokenBalance("SOL", types.Address{0x01})
	require.NoError(t, err)
	require.Equal(t, int64(42), got.Int64())
}

func TestManagerDiscardDropsPending(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.SetTokenBalance("SOL", types.Address{0x01}, big.NewInt(7)))
	m.Discard()
	require.False(t, m.Dirty())

	got, err := m.TokenBalance("SOL", types.Address{0x01})
	require.NoError(t, err)
	require.Zero(t, got.Sign())
}

func TestManagerPendingReadsSeeWrites(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.LockerPutLock(1, &locker.Lock{Amount: big.NewInt(100), End: 900}))
	lock, ok, err := m.LockerGetLock(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(900), lock.End)

	require.NoError(t, m.LockerDeleteLock(1))
	_, ok, err = m.LockerGetLock(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManagerDeleteCommits(t *testing.T) {
	db := storage.NewMemDB()
	m := NewManager(db)

	require.NoError(t, m.SetGovCurrent(types.Address{0xAA}))
	require.NoError(t, m.Commit())
	require.NoError(t, m.DeleteGovPending())
	require.NoError(t, m.SetGovPending(types.Address{0xBB}))
	require.NoError(t, m.Commit())

	fresh := NewManager(db)
	cur, ok, err := fresh.GovCurrent()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Address{0xAA}, cur)
	pend, ok, err := fresh.GovPending()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Address{0xBB}, pend)
}

func TestManagerRewardsRoundTrip(t *testing.T) {
	m := newTestManager(t)

	g, err := m.RewardsGlobal()
	require.NoError(t, err)
	require.Zero(t, g.ValueStaked.Sign())

	g.ValueStaked = big.NewInt(5000)
	g.LastRewardTime = 1234
	require.NoError(t, m.SetRewardsGlobal(g))

	got, err := m.RewardsGlobal()
	require.NoError(t, err)
	require.Equal(t, int64(5000), got.ValueStaked.Int64())
	require.Equal(t, uint64(1234), got.LastRewardTime)
}
