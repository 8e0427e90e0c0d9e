package votes

import (
	"math/big"
	"testing"

	"veledger/core/types"
	"veledger/native/locker"
)

type mockLedger struct {
	locks     map[uint64]*locker.Lock
	owned     map[types.Address][]uint64
	delegated map[types.Address][]uint64
}

func (m *mockLedger) GetLock(id uint64) (*locker.Lock, error) {
	lock, ok := m.locks[id]
	if !ok {
		return nil, locker.ErrLockNotFound
	}
	return lock.Clone(), nil
}

func (m *mockLedger) OwnedLocks(owner types.Address) ([]uint64, error) {
	return m.owned[owner], nil
}

func (m *mockLedger) DelegatedLocks(delegatee types.Address) ([]uint64, error) {
	return m.delegated[delegatee], nil
}

func (m *mockLedger) AllLockIDs() ([]uint64, error) {
	ids := make([]uint64, 0, len(m.locks))
	for id := range m.locks {
		ids = append(ids, id)
	}
	return ids, nil
}

const year uint64 = 365 * 24 * 3600

func TestPowerOfLockCurve(t *testing.T) {
	now := uint64(1_700_000_000)
	amount := big.NewInt(100)

	cases := []struct {
		name     string
		end      uint64
		expected int64
	}{
		{"expired lock keeps 1x", now - 1, 100},
		{"end exactly now keeps 1x", now, 100},
		// 100 locked for two years: 100 + 100*2y*3/(4y) = 250
		{"two years remaining", now + 2*year, 250},
		{"four year cap reaches 4x", now + locker.MaxLockDuration, 400},
		{"one year remaining", now + year, 175},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lock := &locker.Lock{Amount: amount, End: tc.end}
			got := PowerOfLock(lock, now)
			if got.Int64() != tc.expected {
				t.Fatalf("power = %s, want %d", got, tc.expected)
			}
		})
	}
}

func TestPowerOfLockDegenerate(t *testing.T) {
	now := uint64(1_700_000_000)
	if got := PowerOfLock(nil, now); got.Sign() != 0 {
		t.Fatalf("nil lock power = %s, want 0", got)
	}
	if got := PowerOfLock(&locker.Lock{Amount: big.NewInt(0), End: now + year}, now); got.Sign() != 0 {
		t.Fatalf("zero amount power = %s, want 0", got)
	}
}

func TestPowerDecaysAsTimePasses(t *testing.T) {
	start := uint64(1_700_000_000)
	lock := &locker.Lock{Amount: big.NewInt(1000), End: start + locker.MaxLockDuration}

	prev := PowerOfLock(lock, start)
	for _, elapsed := range []uint64{year, 2 * year, 3 * year, 4 * year} {
		cur := PowerOfLock(lock, start+elapsed)
		if cur.Cmp(prev) >= 0 {
			t.Fatalf("power did not decay at +%ds: %s -> %s", elapsed, prev, cur)
		}
		prev = cur
	}
	// fully expired: back to the 1x floor, never below
	if final := PowerOfLock(lock, start+locker.MaxLockDuration); final.Int64() != 1000 {
		t.Fatalf("expired power = %s, want 1000", final)
	}
}

func TestViewAggregations(t *testing.T) {
	now := uint64(1_700_000_000)
	alice := types.Address{0x0A}
	bob := types.Address{0x0B}

	ledger := &mockLedger{
		locks: map[uint64]*locker.Lock{
			1: {Amount: big.NewInt(100), End: now + 2*year}, // power 250
			2: {Amount: big.NewInt(100), End: now},          // power 100
		},
		owned: map[types.Address][]uint64{
			alice: {1, 2},
		},
		// alice delegated lock 1 to bob
		delegated: map[types.Address][]uint64{
			bob:   {1},
			alice: {2},
		},
	}
	view := NewView(ledger)
	view.SetNowFunc(func() uint64 { return now })

	power, err := view.PowerOf(alice)
	if err != nil {
		t.Fatalf("PowerOf: %v", err)
	}
	if power.Int64() != 350 {
		t.Fatalf("owned power = %s, want 350", power)
	}

	delegated, err := view.DelegatedPowerOf(bob)
	if err != nil {
		t.Fatalf("DelegatedPowerOf: %v", err)
	}
	if delegated.Int64() != 250 {
		t.Fatalf("delegated power = %s, want 250", delegated)
	}

	total, err := view.TotalPower()
	if err != nil {
		t.Fatalf("TotalPower: %v", err)
	}
	if total.Int64() != 350 {
		t.Fatalf("total power = %s, want 350", total)
	}

	single, err := view.PowerOfLockID(1)
	if err != nil {
		t.Fatalf("PowerOfLockID: %v", err)
	}
	if single.Int64() != 250 {
		t.Fatalf("lock power = %s, want 250", single)
	}
}
