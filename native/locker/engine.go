package locker

import (
	"math/big"
	"time"

	"veledger/core/events"
	"veledger/core/types"
)

// State describes the persistence surface the lock ledger requires. The
// canonical lock map, the owner and delegation indexes, and the aggregate
// locked supply all live behind this interface.
type State interface {
	LockerNextID() (uint64, error)
	LockerSetNextID(id uint64) error
	LockerGetLock(id uint64) (*Lock, bool, error)
	LockerPutLock(id uint64, lock *Lock) error
	LockerDeleteLock(id uint64) error
	LockerAllLockIDs() ([]uint64, error)
	LockerSetAllLockIDs(ids []uint64) error
	LockerOwner(id uint64) (types.Address, bool, error)
	LockerSetOwner(id uint64, owner types.Address) error
	LockerDeleteOwner(id uint64) error
	LockerOwnedLocks(owner types.Address) ([]uint64, error)
	LockerSetOwnedLocks(owner types.Address, ids []uint64) error
	LockerDelegatee(id uint64) (types.Address, bool, error)
	LockerSetDelegatee(id uint64, delegatee types.Address) error
	LockerDeleteDelegatee(id uint64) error
	LockerDelegatedLocks(delegatee types.Address) ([]uint64, error)
	LockerSetDelegatedLocks(delegatee types.Address, ids []uint64) error
	LockerTotalLocked() (*big.Int, error)
	LockerSetTotalLocked(amount *big.Int) error
}

// Bank is the token-movement surface the ledger consumes. Transfer failures
// are hard errors, never silently ignored.
type Bank interface {
	Transfer(symbol string, from, to types.Address, amount *big.Int) error
	TransferFrom(symbol string, spender, owner, to types.Address, amount *big.Int) error
	Permit(symbol string, owner, spender types.Address, value *big.Int, deadline uint64, sig []byte, now uint64) error
}

// Engine is the canonical lock ledger. It owns the lock-id space, escrows
// the underlying token in its module vault, and fans lock events out to the
// registered listeners.
type Engine struct {
	state     State
	bank      Bank
	emitter   events.Emitter
	nowFn     func() uint64
	listeners []Listener
	symbol    string
	vault     types.Address
}

// NewEngine constructs a lock ledger for the given escrow token symbol.
func NewEngine(symbol string) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
		symbol:  symbol,
		vault:   moduleVault,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetBank configures the token ledger the engine escrows through.
func (e *Engine) SetBank(bank Bank) { e.bank = bank }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source. Nil restores the wall clock.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

// AddListener registers a listener for lock events. Listeners are invoked
// synchronously; a failing listener is skipped and reported, never allowed
// to block the ledger.
func (e *Engine) AddListener(l Listener) {
	if l == nil {
		return
	}
	e.listeners = append(e.listeners, l)
}

// Vault returns the module address holding the escrowed tokens.
func (e *Engine) Vault() types.Address { return e.vault }

// Symbol returns the escrow token symbol.
func (e *Engine) Symbol() string { return e.symbol }

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.bank == nil {
		return ErrNilBank
	}
	return nil
}

func (e *Engine) notify(lockID uint64, oldOwner, newOwner types.Address, oldLock, newLock *Lock) {
	for _, l := range e.listeners {
		if err := l.RegisterLockEvent(lockID, oldOwner, newOwner, oldLock.Clone(), newLock.Clone()); err != nil {
			e.emit(events.LockListenerFailed{LockID: lockID, Listener: l.Name(), Reason: err.Error()})
		}
	}
}

func appendID(ids []uint64, id uint64) []uint64 {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []uint64, id uint64) []uint64 {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func (e *Engine) setDelegatee(id uint64, from, to types.Address) error {
	if !from.IsZero() {
		ids, err := e.state.LockerDelegatedLocks(from)
		if err != nil {
			return err
		}
		if err := e.state.LockerSetDelegatedLocks(from, removeID(ids, id)); err != nil {
			return err
		}
	}
	if to.IsZero() {
		return e.state.LockerDeleteDelegatee(id)
	}
	ids, err := e.state.LockerDelegatedLocks(to)
	if err != nil {
		return err
	}
	if err := e.state.LockerSetDelegatedLocks(to, appendID(ids, id)); err != nil {
		return err
	}
	return e.state.LockerSetDelegatee(id, to)
}

func (e *Engine) adjustTotalLocked(delta *big.Int) error {
	total, err := e.state.LockerTotalLocked()
	if err != nil {
		return err
	}
	return e.state.LockerSetTotalLocked(new(big.Int).Add(total, delta))
}

// CreateLock escrows amount of the caller's tokens until end (rounded down
// to the week) and mints a new lock owned by recipient. End of zero creates
// an immediately-withdrawable position that still accrues the base stake
// weight.
func (e *Engine) CreateLock(caller, recipient types.Address, amount *big.Int, end uint64) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if recipient.IsZero() {
		return 0, ErrZeroRecipient
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	now := e.now()
	rounded := RoundToWeek(end)
	if rounded > now+MaxLockDuration {
		return 0, ErrDurationTooLong
	}

	if err := e.bank.TransferFrom(e.symbol, e.vault, caller, e.vault, amount); err != nil {
		return 0, err
	}

	next, err := e.state.LockerNextID()
	if err != nil {
		return 0, err
	}
	id := next + 1 // ids are 1-based and never reused
	if err := e.state.LockerSetNextID(id); err != nil {
		return 0, err
	}
	lock := &Lock{Amount: new(big.Int).Set(amount), End: rounded}
	if err := e.state.LockerPutLock(id, lock); err != nil {
		return 0, err
	}
	if err := e.state.LockerSetOwner(id, recipient); err != nil {
		return 0, err
	}
	owned, err := e.state.LockerOwnedLocks(recipient)
	if err != nil {
		return 0, err
	}
	if err := e.state.LockerSetOwnedLocks(recipient, appendID(owned, id)); err != nil {
		return 0, err
	}
	all, err := e.state.LockerAllLockIDs()
	if err != nil {
		return 0, err
	}
	if err := e.state.LockerSetAllLockIDs(appendID(all, id)); err != nil {
		return 0, err
	}
	if err := e.setDelegatee(id, types.Address{}, recipient); err != nil {
		return 0, err
	}
	if err := e.adjustTotalLocked(amount); err != nil {
		return 0, err
	}

	e.emit(events.LockCreated{LockID: id, Owner: recipient, Amount: lock.Amount, End: lock.End})
	e.notify(id, types.Address{}, recipient, ZeroLock(), lock)
	return id, nil
}

// IncreaseAmount pulls tokens from the caller and adds them to an existing
// lock. The unlock time is unchanged; any account may top up any lock.
func (e *Engine) IncreaseAmount(caller types.Address, id uint64, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	lock, ok, err := e.state.LockerGetLock(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockNotFound
	}
	if err := e.bank.TransferFrom(e.symbol, e.vault, caller, e.vault, amount); err != nil {
		return err
	}
	oldLock := lock.Clone()
	newLock := &Lock{Amount: new(big.Int).Add(lock.Amount, amount), End: lock.End}
	return e.storeUpdate(id, oldLock, newLock, amount)
}

// IncreaseAmountSigned is the permit variant of IncreaseAmount: the signature
// grants the ledger's vault an allowance before the pull.
func (e *Engine) IncreaseAmountSigned(caller types.Address, id uint64, amount *big.Int, deadline uint64, sig []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.bank.Permit(e.symbol, caller, e.vault, amount, deadline, sig, e.now()); err != nil {
		return err
	}
	return e.IncreaseAmount(caller, id, amount)
}

// ExtendLock pushes the lock's unlock time out to newEnd (rounded down to
// the week). Only the owner may extend, the end is monotonic, and the
// four-year cap is enforced from the current time.
func (e *Engine) ExtendLock(caller types.Address, id uint64, newEnd uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	lock, ok, err := e.state.LockerGetLock(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockNotFound
	}
	owner, ok, err := e.state.LockerOwner(id)
	if err != nil {
		return err
	}
	if !ok || owner != caller {
		return ErrNotOwner
	}
	rounded := RoundToWeek(newEnd)
	if rounded < lock.End {
		return ErrEndBeforeCurrent
	}
	if rounded > e.now()+MaxLockDuration {
		return ErrDurationTooLong
	}
	oldLock := lock.Clone()
	newLock := &Lock{Amount: new(big.Int).Set(lock.Amount), End: rounded}
	return e.storeUpdate(id, oldLock, newLock, big.NewInt(0))
}

func (e *Engine) storeUpdate(id uint64, oldLock, newLock *Lock, lockedDelta *big.Int) error {
	if err := e.state.LockerPutLock(id, newLock); err != nil {
		return err
	}
	if lockedDelta.Sign() != 0 {
		if err := e.adjustTotalLocked(lockedDelta); err != nil {
			return err
		}
	}
	owner, _, err := e.state.LockerOwner(id)
	if err != nil {
		return err
	}
	e.emit(events.LockUpdated{LockID: id, Amount: newLock.Amount, End: newLock.End})
	e.notify(id, owner, owner, oldLock, newLock)
	return nil
}

// Withdraw pays out part or all of an expired lock to recipient. A full
// withdrawal deletes the lock and its indexes. The recipient parameter is
// honoured as the payout destination.
func (e *Engine) Withdraw(caller types.Address, id uint64, recipient types.Address, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if recipient.IsZero() {
		return ErrZeroRecipient
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	lock, ok, err := e.state.LockerGetLock(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockNotFound
	}
	owner, ok, err := e.state.LockerOwner(id)
	if err != nil {
		return err
	}
	if !ok || owner != caller {
		return ErrNotOwner
	}
	now := e.now()
	if !lock.Unlocked(now) {
		return ErrStillLocked
	}
	if amount.Cmp(lock.Amount) > 0 {
		return ErrExcessWithdraw
	}

	oldLock := lock.Clone()
	remaining := new(big.Int).Sub(lock.Amount, amount)
	full := remaining.Sign() == 0
	if full {
		if err := e.deleteLock(id, owner); err != nil {
			return err
		}
	} else {
		if err := e.state.LockerPutLock(id, &Lock{Amount: remaining, End: lock.End}); err != nil {
			return err
		}
	}
	if err := e.adjustTotalLocked(new(big.Int).Neg(amount)); err != nil {
		return err
	}
	if err := e.bank.Transfer(e.symbol, e.vault, recipient, amount); err != nil {
		return err
	}

	e.emit(events.LockWithdrawn{LockID: id, Recipient: recipient, Amount: amount, Remaining: remaining})
	if full {
		e.notify(id, owner, types.Address{}, oldLock, ZeroLock())
	} else {
		e.notify(id, owner, owner, oldLock, &Lock{Amount: remaining, End: lock.End})
	}
	return nil
}

func (e *Engine) deleteLock(id uint64, owner types.Address) error {
	delegatee, hasDelegatee, err := e.state.LockerDelegatee(id)
	if err != nil {
		return err
	}
	if hasDelegatee {
		if err := e.setDelegatee(id, delegatee, types.Address{}); err != nil {
			return err
		}
	}
	owned, err := e.state.LockerOwnedLocks(owner)
	if err != nil {
		return err
	}
	if err := e.state.LockerSetOwnedLocks(owner, removeID(owned, id)); err != nil {
		return err
	}
	all, err := e.state.LockerAllLockIDs()
	if err != nil {
		return err
	}
	if err := e.state.LockerSetAllLockIDs(removeID(all, id)); err != nil {
		return err
	}
	if err := e.state.LockerDeleteOwner(id); err != nil {
		return err
	}
	return e.state.LockerDeleteLock(id)
}

// Delegate assigns the lock's voting weight to a new delegatee. Owner-only;
// the reverse index moves in the same step.
func (e *Engine) Delegate(caller types.Address, id uint64, to types.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if _, ok, err := e.state.LockerGetLock(id); err != nil {
		return err
	} else if !ok {
		return ErrLockNotFound
	}
	owner, ok, err := e.state.LockerOwner(id)
	if err != nil {
		return err
	}
	if !ok || owner != caller {
		return ErrNotOwner
	}
	old, _, err := e.state.LockerDelegatee(id)
	if err != nil {
		return err
	}
	if old == to {
		return nil
	}
	if err := e.setDelegatee(id, old, to); err != nil {
		return err
	}
	e.emit(events.LockDelegated{LockID: id, OldDelegate: old, NewDelegate: to})
	return nil
}

// TransferLock hands ownership of a lock to a new account. The lock terms
// are untouched; delegation is re-derived to the new owner and listeners are
// notified with identical old and new lock snapshots.
func (e *Engine) TransferLock(caller types.Address, id uint64, to types.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if to.IsZero() {
		return ErrZeroRecipient
	}
	lock, ok, err := e.state.LockerGetLock(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockNotFound
	}
	owner, ok, err := e.state.LockerOwner(id)
	if err != nil {
		return err
	}
	if !ok || owner != caller {
		return ErrNotOwner
	}
	if owner == to {
		return nil
	}
	owned, err := e.state.LockerOwnedLocks(owner)
	if err != nil {
		return err
	}
	if err := e.state.LockerSetOwnedLocks(owner, removeID(owned, id)); err != nil {
		return err
	}
	newOwned, err := e.state.LockerOwnedLocks(to)
	if err != nil {
		return err
	}
	if err := e.state.LockerSetOwnedLocks(to, appendID(newOwned, id)); err != nil {
		return err
	}
	if err := e.state.LockerSetOwner(id, to); err != nil {
		return err
	}
	old, _, err := e.state.LockerDelegatee(id)
	if err != nil {
		return err
	}
	if err := e.setDelegatee(id, old, to); err != nil {
		return err
	}

	e.emit(events.LockTransferred{LockID: id, OldOwner: owner, NewOwner: to})
	e.notify(id, owner, to, lock, lock)
	return nil
}

// GetLock returns a copy of the lock entry.
func (e *Engine) GetLock(id uint64) (*Lock, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	lock, ok, err := e.state.LockerGetLock(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockNotFound
	}
	return lock.Clone(), nil
}

// OwnerOf returns the current owner of a lock.
func (e *Engine) OwnerOf(id uint64) (types.Address, error) {
	if e == nil || e.state == nil {
		return types.Address{}, ErrNilState
	}
	owner, ok, err := e.state.LockerOwner(id)
	if err != nil {
		return types.Address{}, err
	}
	if !ok {
		return types.Address{}, ErrLockNotFound
	}
	return owner, nil
}

// DelegateeOf returns the lock's current delegatee.
func (e *Engine) DelegateeOf(id uint64) (types.Address, error) {
	if e == nil || e.state == nil {
		return types.Address{}, ErrNilState
	}
	delegatee, ok, err := e.state.LockerDelegatee(id)
	if err != nil {
		return types.Address{}, err
	}
	if !ok {
		return types.Address{}, ErrLockNotFound
	}
	return delegatee, nil
}

// OwnedLocks enumerates the lock ids held by an account.
func (e *Engine) OwnedLocks(owner types.Address) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.LockerOwnedLocks(owner)
}

// DelegatedLocks enumerates the lock ids delegated to an account.
func (e *Engine) DelegatedLocks(delegatee types.Address) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.LockerDelegatedLocks(delegatee)
}

// AllLockIDs enumerates every live lock. This is a view-only aggregation and
// must never be relied upon inside a mutating path.
func (e *Engine) AllLockIDs() ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.LockerAllLockIDs()
}

// TotalLocked returns the aggregate escrowed amount across all locks.
func (e *Engine) TotalLocked() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.LockerTotalLocked()
}
