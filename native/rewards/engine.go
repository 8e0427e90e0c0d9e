package rewards

import (
	"errors"
	"math/big"
	"time"

	"veledger/core/events"
	"veledger/core/types"
	"veledger/native/locker"
	"veledger/native/token"
)

var (
	ErrNilState     = errors.New("rewards: state not configured")
	ErrNilBank      = errors.New("rewards: bank not configured")
	ErrNilLedger    = errors.New("rewards: lock ledger not configured")
	ErrNotStaked    = errors.New("rewards: lock not registered")
	ErrNotOwner     = errors.New("rewards: caller does not own the rewards")
	ErrInvalidTimes = errors.New("rewards: end time before start time")
)

// State describes the persistence surface of the reward accumulator.
type State interface {
	RewardsGlobal() (*GlobalState, error)
	SetRewardsGlobal(g *GlobalState) error
	RewardsLockInfo(id uint64) (*StakedLockInfo, bool, error)
	SetRewardsLockInfo(id uint64, info *StakedLockInfo) error
	DeleteRewardsLockInfo(id uint64) error
}

// Bank is the token surface the engine pays rewards through.
type Bank interface {
	Transfer(symbol string, from, to types.Address, amount *big.Int) error
	Approve(symbol string, owner, spender types.Address, amount *big.Int) error
	BalanceOf(symbol string, addr types.Address) (*big.Int, error)
}

// Ledger is the slice of the lock ledger the engine needs for compounding.
type Ledger interface {
	IncreaseAmount(caller types.Address, id uint64, amount *big.Int) error
}

// Engine accrues staking rewards for escrowed locks. It is driven by lock
// ledger callbacks: every mutation settles the lock's pending reward into
// its unpaid bucket, recomputes the weighted stake from the new snapshot and
// resets the reward debt. Rewards are paid from a funded pool, never minted.
type Engine struct {
	state   State
	bank    Bank
	ledger  Ledger
	emitter events.Emitter
	nowFn   func() uint64
	symbol  string
	pool    types.Address
}

// NewEngine constructs a rewards engine paying out the given token.
func NewEngine(symbol string) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
		symbol:  symbol,
		pool:    token.ModuleAddress("rewards/pool"),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetBank configures the token ledger rewards are paid through.
func (e *Engine) SetBank(bank Bank) { e.bank = bank }

// SetLedger configures the lock ledger used for compounding.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

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

// Pool returns the module address rewards are paid from.
func (e *Engine) Pool() types.Address { return e.pool }

// Name identifies the engine in lock ledger listener registrations.
func (e *Engine) Name() string { return "staking-rewards" }

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

// Update advances the global accumulator to the current time, clamped to the
// configured emission window.
func (e *Engine) Update() error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	g, err := e.state.RewardsGlobal()
	if err != nil {
		return err
	}
	advanceAccumulator(g, e.now())
	return e.state.SetRewardsGlobal(g)
}

func advanceAccumulator(g *GlobalState, now uint64) {
	if now <= g.LastRewardTime {
		return
	}
	from := g.LastRewardTime
	if from < g.StartTime {
		from = g.StartTime
	}
	to := now
	if to > g.EndTime {
		to = g.EndTime
	}
	if to > from && g.ValueStaked.Sign() > 0 && g.RewardPerSecond.Sign() > 0 {
		reward := new(big.Int).Mul(g.RewardPerSecond, new(big.Int).SetUint64(to-from))
		perShare := reward.Mul(reward, q12)
		perShare.Quo(perShare, g.ValueStaked)
		g.AccRewardPerShare.Add(g.AccRewardPerShare, perShare)
	}
	g.LastRewardTime = now
}

func pendingOf(info *StakedLockInfo, g *GlobalState) *big.Int {
	accrued := new(big.Int).Mul(info.Value, g.AccRewardPerShare)
	accrued.Quo(accrued, q12)
	accrued.Sub(accrued, info.RewardDebt)
	return accrued.Add(accrued, info.UnpaidRewards)
}

// RegisterLockEvent implements locker.Listener. Pending rewards are settled
// into the unpaid bucket before the stake weight changes; the reward debt is
// re-derived from the new value afterwards. Owner is mirrored from the new
// owner except on burn, where the last owner is kept so accrued rewards stay
// harvestable.
func (e *Engine) RegisterLockEvent(lockID uint64, oldOwner, newOwner types.Address, oldLock, newLock *locker.Lock) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	now := e.now()
	g, err := e.state.RewardsGlobal()
	if err != nil {
		return err
	}
	advanceAccumulator(g, now)

	info, ok, err := e.state.RewardsLockInfo(lockID)
	if err != nil {
		return err
	}
	if !ok {
		info = NewStakedLockInfo()
	}
	info.UnpaidRewards = pendingOf(info, g)

	newValue := StakeValue(newLock, now)
	g.ValueStaked.Sub(g.ValueStaked, info.Value)
	g.ValueStaked.Add(g.ValueStaked, newValue)
	info.Value = newValue
	info.RewardDebt = new(big.Int).Mul(newValue, g.AccRewardPerShare)
	info.RewardDebt.Quo(info.RewardDebt, q12)
	if !newOwner.IsZero() {
		info.Owner = newOwner
	}

	if err := e.state.SetRewardsGlobal(g); err != nil {
		return err
	}
	if info.Value.Sign() == 0 && info.UnpaidRewards.Sign() == 0 && newOwner.IsZero() {
		return e.state.DeleteRewardsLockInfo(lockID)
	}
	return e.state.SetRewardsLockInfo(lockID, info)
}

// PendingReward returns the reward claimable for a lock right now.
func (e *Engine) PendingReward(lockID uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	g, err := e.state.RewardsGlobal()
	if err != nil {
		return nil, err
	}
	advanceAccumulator(g, e.now())
	info, ok, err := e.state.RewardsLockInfo(lockID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return pendingOf(info, g), nil
}

func (e *Engine) settle(lockID uint64) (*GlobalState, *StakedLockInfo, error) {
	g, err := e.state.RewardsGlobal()
	if err != nil {
		return nil, nil, err
	}
	advanceAccumulator(g, e.now())
	info, ok, err := e.state.RewardsLockInfo(lockID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrNotStaked
	}
	info.UnpaidRewards = pendingOf(info, g)
	info.RewardDebt = new(big.Int).Mul(info.Value, g.AccRewardPerShare)
	info.RewardDebt.Quo(info.RewardDebt, q12)
	return g, info, nil
}

func (e *Engine) payOut(lockID uint64, info *StakedLockInfo, to types.Address) (*big.Int, error) {
	owed := new(big.Int).Set(info.UnpaidRewards)
	if owed.Sign() == 0 {
		return big.NewInt(0), nil
	}
	poolBal, err := e.bank.BalanceOf(e.symbol, e.pool)
	if err != nil {
		return nil, err
	}
	pay := owed
	if poolBal.Cmp(owed) < 0 {
		pay = poolBal
	}
	if pay.Sign() > 0 {
		if err := e.bank.Transfer(e.symbol, e.pool, to, pay); err != nil {
			return nil, err
		}
	}
	info.UnpaidRewards = new(big.Int).Sub(owed, pay)
	if info.UnpaidRewards.Sign() > 0 {
		e.emit(events.RewardsShortfall{LockID: lockID, Requested: owed, Paid: pay})
	}
	return pay, nil
}

// HarvestLock pays out the accrued rewards of one lock to its (mirrored)
// owner. Shortfalls against the pool stay accrued.
func (e *Engine) HarvestLock(caller types.Address, lockID uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if e.bank == nil {
		return nil, ErrNilBank
	}
	g, info, err := e.settle(lockID)
	if err != nil {
		return nil, err
	}
	if info.Owner != caller {
		return nil, ErrNotOwner
	}
	paid, err := e.payOut(lockID, info, info.Owner)
	if err != nil {
		return nil, err
	}
	if err := e.state.SetRewardsGlobal(g); err != nil {
		return nil, err
	}
	if err := e.state.SetRewardsLockInfo(lockID, info); err != nil {
		return nil, err
	}
	if paid.Sign() > 0 {
		e.emit(events.RewardsHarvested{LockID: lockID, Owner: info.Owner, Amount: paid})
	}
	return paid, nil
}

// HarvestAccount harvests every lock owned by the caller, returning the
// total paid.
func (e *Engine) HarvestAccount(caller types.Address, lockIDs []uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if e.bank == nil {
		return nil, ErrNilBank
	}
	total := big.NewInt(0)
	for _, id := range lockIDs {
		info, ok, err := e.state.RewardsLockInfo(id)
		if err != nil {
			return nil, err
		}
		if !ok || info.Owner != caller {
			continue
		}
		paid, err := e.HarvestLock(caller, id)
		if err != nil {
			return nil, err
		}
		total.Add(total, paid)
	}
	return total, nil
}

// CompoundLock re-escrows the caller's accrued rewards into the lock that
// earned them instead of paying them out.
func (e *Engine) CompoundLock(caller types.Address, lockID uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if e.bank == nil {
		return nil, ErrNilBank
	}
	if e.ledger == nil {
		return nil, ErrNilLedger
	}
	g, info, err := e.settle(lockID)
	if err != nil {
		return nil, err
	}
	if info.Owner != caller {
		return nil, ErrNotOwner
	}
	owed := new(big.Int).Set(info.UnpaidRewards)
	poolBal, err := e.bank.BalanceOf(e.symbol, e.pool)
	if err != nil {
		return nil, err
	}
	amount := owed
	if poolBal.Cmp(owed) < 0 {
		amount = poolBal
	}
	if amount.Sign() == 0 {
		if err := e.state.SetRewardsGlobal(g); err != nil {
			return nil, err
		}
		return big.NewInt(0), e.state.SetRewardsLockInfo(lockID, info)
	}
	info.UnpaidRewards = new(big.Int).Sub(owed, amount)
	// Settled bookkeeping must land before IncreaseAmount re-enters the
	// listener callback for this same lock.
	if err := e.state.SetRewardsGlobal(g); err != nil {
		return nil, err
	}
	if err := e.state.SetRewardsLockInfo(lockID, info); err != nil {
		return nil, err
	}
	lockerVault := token.ModuleAddress("locker/escrow")
	if err := e.bank.Approve(e.symbol, e.pool, lockerVault, amount); err != nil {
		return nil, err
	}
	if err := e.ledger.IncreaseAmount(e.pool, lockID, amount); err != nil {
		return nil, err
	}
	e.emit(events.RewardsCompounded{LockID: lockID, Amount: amount})
	return amount, nil
}

// SetRewardRate replaces the per-second emission rate, settling the
// accumulator at the old rate first. Governance-gated by the caller.
func (e *Engine) SetRewardRate(rate *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if rate == nil || rate.Sign() < 0 {
		return errors.New("rewards: rate must be non-negative")
	}
	g, err := e.state.RewardsGlobal()
	if err != nil {
		return err
	}
	advanceAccumulator(g, e.now())
	g.RewardPerSecond = new(big.Int).Set(rate)
	if err := e.state.SetRewardsGlobal(g); err != nil {
		return err
	}
	e.emit(events.RewardsRateSet{RewardPerSecond: rate})
	return nil
}

// SetTimes replaces the emission window. Governance-gated by the caller.
func (e *Engine) SetTimes(start, end uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if end < start {
		return ErrInvalidTimes
	}
	g, err := e.state.RewardsGlobal()
	if err != nil {
		return err
	}
	advanceAccumulator(g, e.now())
	g.StartTime = start
	g.EndTime = end
	return e.state.SetRewardsGlobal(g)
}

// Global returns a copy of the accumulator state.
func (e *Engine) Global() (*GlobalState, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	g, err := e.state.RewardsGlobal()
	if err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

// LockInfo returns a copy of the per-lock reward record.
func (e *Engine) LockInfo(lockID uint64) (*StakedLockInfo, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	info, ok, err := e.state.RewardsLockInfo(lockID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotStaked
	}
	return info.Clone(), nil
}
