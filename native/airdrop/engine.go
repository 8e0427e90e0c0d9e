// Package airdrop implements a one-shot Merkle-proof claim gate over a
// funded token balance.
package airdrop

import (
	"errors"
	"math/big"
	"time"

	"veledger/core/events"
	"veledger/core/types"
	"veledger/native/token"
)

var (
	ErrNilState       = errors.New("airdrop: state not configured")
	ErrNilBank        = errors.New("airdrop: bank not configured")
	ErrNilLedger      = errors.New("airdrop: lock ledger not configured")
	ErrAlreadyClaimed = errors.New("airdrop: already claimed")
	ErrInvalidProof   = errors.New("airdrop: proof invalid")
	ErrInvalidAmount  = errors.New("airdrop: amount must be positive")
	ErrNothingToSweep = errors.New("airdrop: nothing to recover")
)

// State describes the persistence surface of the distributor: the one-shot
// claim marks, keyed by user.
type State interface {
	AirdropClaimed(user types.Address) (bool, error)
	SetAirdropClaimed(user types.Address) error
}

// Bank is the token surface claims are paid through.
type Bank interface {
	Transfer(symbol string, from, to types.Address, amount *big.Int) error
	Approve(symbol string, owner, spender types.Address, amount *big.Int) error
	BalanceOf(symbol string, addr types.Address) (*big.Int, error)
}

// Ledger is the lock ledger surface used by lock-duration claims.
type Ledger interface {
	CreateLock(caller, recipient types.Address, amount *big.Int, end uint64) (uint64, error)
}

// Engine verifies Merkle claims against a root fixed at construction and
// pays each user at most once. Anyone may submit a claim on a user's
// behalf; funds always flow to the user.
type Engine struct {
	state   State
	bank    Bank
	ledger  Ledger
	emitter events.Emitter
	nowFn   func() uint64
	symbol  string
	root    types.Hash
	vault   types.Address
}

// NewEngine constructs a distributor for the given token and Merkle root.
func NewEngine(symbol string, root types.Hash) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
		symbol:  symbol,
		root:    root,
		vault:   token.ModuleAddress("airdrop/vault"),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetBank configures the token ledger claims are paid through.
func (e *Engine) SetBank(bank Bank) { e.bank = bank }

// SetLedger configures the lock ledger for lock-duration claims.
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

// Root returns the fixed distribution root.
func (e *Engine) Root() types.Hash { return e.root }

// Vault returns the module address holding the distribution funds.
func (e *Engine) Vault() types.Address { return e.vault }

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// Claimed reports whether the user has already claimed.
func (e *Engine) Claimed(user types.Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	return e.state.AirdropClaimed(user)
}

// Claim verifies the proof and pays the user once. The claim mark lands
// before any funds move. A lockTime greater than zero escrows the amount as
// a new lock ending lockTime seconds from now instead of paying directly.
func (e *Engine) Claim(user types.Address, amount *big.Int, lockTime uint64, proof []types.Hash) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if e.bank == nil {
		return 0, ErrNilBank
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	claimed, err := e.state.AirdropClaimed(user)
	if err != nil {
		return 0, err
	}
	if claimed {
		return 0, ErrAlreadyClaimed
	}
	if !VerifyProof(Leaf(user, amount, lockTime), proof, e.root) {
		return 0, ErrInvalidProof
	}
	if err := e.state.SetAirdropClaimed(user); err != nil {
		return 0, err
	}

	var lockID uint64
	if lockTime > 0 {
		if e.ledger == nil {
			return 0, ErrNilLedger
		}
		lockerVault := token.ModuleAddress("locker/escrow")
		if err := e.bank.Approve(e.symbol, e.vault, lockerVault, amount); err != nil {
			return 0, err
		}
		lockID, err = e.ledger.CreateLock(e.vault, user, amount, e.nowFn()+lockTime)
		if err != nil {
			return 0, err
		}
	} else {
		if err := e.bank.Transfer(e.symbol, e.vault, user, amount); err != nil {
			return 0, err
		}
	}
	e.emit(events.AirdropClaimed{User: user, Amount: amount, LockID: lockID})
	return lockID, nil
}

// GovernorRecover sweeps the remaining distribution balance to the given
// address. There is no sunset guard; the emitted event carries the swept
// amount so early sweeps are visible.
func (e *Engine) GovernorRecover(to types.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if e.bank == nil {
		return nil, ErrNilBank
	}
	balance, err := e.bank.BalanceOf(e.symbol, e.vault)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, ErrNothingToSweep
	}
	if err := e.bank.Transfer(e.symbol, e.vault, to, balance); err != nil {
		return nil, err
	}
	e.emit(events.AirdropRecovered{To: to, Amount: balance})
	return balance, nil
}
