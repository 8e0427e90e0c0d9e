// Package core wires the ledger engines over a shared state manager. The
// Processor is the only mutating entry point into the system: it serialises
// every operation behind one mutex, commits the state buffer when the engine
// succeeds and discards it when the engine fails, so callers observe each
// operation as all-or-nothing.
package core

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"veledger/core/events"
	"veledger/core/state"
	"veledger/core/types"
	"veledger/native/airdrop"
	"veledger/native/bonds"
	"veledger/native/gov"
	"veledger/native/locker"
	"veledger/native/rewards"
	"veledger/native/scp"
	"veledger/native/token"
	"veledger/native/votes"
	"veledger/storage"
)

// ErrUnknownTeller is returned when an operation names a teller that was not
// configured at startup.
var ErrUnknownTeller = errors.New("core: unknown bond teller")

// TellerConfig declares one bond market: principal is the token pulled from
// depositors, payout is the token minted and vested.
type TellerConfig struct {
	Name            string
	PrincipalSymbol string
	PayoutSymbol    string
}

// TokenAllocation seeds a balance at first boot.
type TokenAllocation struct {
	Symbol string
	To     types.Address
	Amount *big.Int
}

// RewardSchedule seeds the staking emission window at first boot. A nil or
// zero RatePerSecond leaves rewards disabled until governance configures them.
type RewardSchedule struct {
	RatePerSecond *big.Int
	StartTime     uint64
	EndTime       uint64
}

// ProcessorConfig carries the genesis wiring of the ledger.
type ProcessorConfig struct {
	// LockSymbol is the value token escrowed by the lock ledger and paid
	// out by staking rewards.
	LockSymbol string
	// Governor is installed as the initial governor when the state carries
	// none. A zero address leaves governance uninitialised.
	Governor types.Address
	// AirdropRoot is the Merkle root of the distributor; fixed for the
	// lifetime of the process.
	AirdropRoot types.Hash
	// Underwriting and DAO receive bond principal and protocol fees.
	Underwriting types.Address
	DAO          types.Address
	Tellers      []TellerConfig
	// Allocations and Rewards apply once, on the first boot of the state.
	Allocations []TokenAllocation
	Rewards     RewardSchedule
}

// Processor owns the state manager and every engine. All exported methods are
// safe for concurrent use.
type Processor struct {
	mu      sync.Mutex
	manager *state.Manager
	buf     *bufferedEmitter

	token   *token.Engine
	locker  *locker.Engine
	votes   *votes.View
	rewards *rewards.Engine
	tellers map[string]*bonds.Engine
	scp     *scp.Engine
	airdrop *airdrop.Engine
	gov     *gov.Engine
}

// bufferedEmitter holds events raised during an operation until the state
// buffer commits; a discarded operation drops its events with it.
type bufferedEmitter struct {
	pending []events.Event
	sink    events.Emitter
}

func (b *bufferedEmitter) Emit(evt events.Event) {
	b.pending = append(b.pending, evt)
}

func (b *bufferedEmitter) flush() {
	for _, evt := range b.pending {
		b.sink.Emit(evt)
	}
	b.pending = b.pending[:0]
}

func (b *bufferedEmitter) drop() { b.pending = b.pending[:0] }

// NewProcessor builds the engine graph over db and applies the genesis wiring
// in cfg: governor initialisation and teller mint authority, committed before
// the processor is returned.
func NewProcessor(db storage.Database, cfg ProcessorConfig) (*Processor, error) {
	manager := state.NewManager(db)
	buf := &bufferedEmitter{sink: events.NoopEmitter{}}

	p := &Processor{
		manager: manager,
		buf:     buf,
		token:   token.NewEngine(),
		locker:  locker.NewEngine(cfg.LockSymbol),
		rewards: rewards.NewEngine(cfg.LockSymbol),
		tellers: make(map[string]*bonds.Engine),
		scp:     scp.NewEngine(),
		airdrop: airdrop.NewEngine(cfg.LockSymbol, cfg.AirdropRoot),
		gov:     gov.NewEngine(),
	}

	p.token.SetState(manager)
	p.token.SetEmitter(buf)

	p.locker.SetState(manager)
	p.locker.SetBank(p.token)
	p.locker.SetEmitter(buf)

	p.votes = votes.NewView(p.locker)

	p.rewards.SetState(manager)
	p.rewards.SetBank(p.token)
	p.rewards.SetLedger(p.locker)
	p.rewards.SetEmitter(buf)
	p.locker.AddListener(p.rewards)

	for _, tc := range cfg.Tellers {
		if tc.Name == "" {
			return nil, errors.New("core: teller name must not be empty")
		}
		if _, dup := p.tellers[tc.Name]; dup {
			return nil, fmt.Errorf("core: duplicate teller %q", tc.Name)
		}
		teller := bonds.NewEngine(tc.Name, tc.PrincipalSymbol, tc.PayoutSymbol)
		teller.SetState(manager)
		teller.SetBank(p.token)
		teller.SetLedger(p.locker)
		teller.SetEmitter(buf)
		teller.SetAddresses(cfg.Underwriting, cfg.DAO)
		p.tellers[tc.Name] = teller
	}

	p.scp.SetState(manager)
	p.scp.SetEmitter(buf)

	p.airdrop.SetState(manager)
	p.airdrop.SetBank(p.token)
	p.airdrop.SetLedger(p.locker)
	p.airdrop.SetEmitter(buf)

	p.gov.SetState(manager)
	p.gov.SetEmitter(buf)

	if err := p.applyGenesis(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// applyGenesis installs the initial governor and grants each teller vault
// mint authority over its payout token, skipping slots already populated so
// restarts are idempotent.
func (p *Processor) applyGenesis(cfg ProcessorConfig) error {
	return p.exec(func() error {
		if !cfg.Governor.IsZero() {
			current, err := p.gov.Governance()
			if err != nil {
				return err
			}
			if current.IsZero() {
				if err := p.gov.Initialize(cfg.Governor); err != nil {
					return err
				}
			}
		}
		for _, teller := range p.tellers {
			symbol := teller.PayoutSymbol()
			if _, ok, err := p.manager.TokenMinter(symbol); err != nil {
				return err
			} else if !ok {
				if err := p.token.SetMinter(symbol, teller.Vault()); err != nil {
					return err
				}
			}
		}
		applied, err := p.manager.GenesisApplied()
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
		for _, alloc := range cfg.Allocations {
			symbol, err := token.NormalizeSymbol(alloc.Symbol)
			if err != nil {
				return err
			}
			if alloc.Amount == nil || alloc.Amount.Sign() <= 0 {
				return fmt.Errorf("core: allocation for %s must be positive", symbol)
			}
			bal, err := p.manager.TokenBalance(symbol, alloc.To)
			if err != nil {
				return err
			}
			if err := p.manager.SetTokenBalance(symbol, alloc.To, new(big.Int).Add(bal, alloc.Amount)); err != nil {
				return err
			}
			supply, err := p.manager.TokenSupply(symbol)
			if err != nil {
				return err
			}
			if err := p.manager.SetTokenSupply(symbol, new(big.Int).Add(supply, alloc.Amount)); err != nil {
				return err
			}
		}
		if cfg.Rewards.RatePerSecond != nil && cfg.Rewards.RatePerSecond.Sign() > 0 {
			if err := p.rewards.SetTimes(cfg.Rewards.StartTime, cfg.Rewards.EndTime); err != nil {
				return err
			}
			if err := p.rewards.SetRewardRate(cfg.Rewards.RatePerSecond); err != nil {
				return err
			}
		}
		return p.manager.SetGenesisApplied()
	})
}

// SetEmitter routes committed events to emitter. Events raised by a failed
// operation are never delivered.
func (p *Processor) SetEmitter(emitter events.Emitter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	p.buf.sink = emitter
}

// SetNowFunc overrides the clock of every time-aware engine. Tests use this;
// production leaves the default.
func (p *Processor) SetNowFunc(now func() uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locker.SetNowFunc(now)
	p.rewards.SetNowFunc(now)
	p.airdrop.SetNowFunc(now)
	p.votes.SetNowFunc(now)
	for _, teller := range p.tellers {
		teller.SetNowFunc(now)
	}
}

func (p *Processor) exec(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := fn(); err != nil {
		p.manager.Discard()
		p.buf.drop()
		return err
	}
	if err := p.manager.Commit(); err != nil {
		p.buf.drop()
		return err
	}
	p.buf.flush()
	return nil
}

// view serialises a read-only closure. Engines never write during views, but
// the buffer is discarded afterwards as a belt against stray writes.
func (p *Processor) view(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := fn()
	p.manager.Discard()
	p.buf.drop()
	return err
}

func (p *Processor) teller(name string) (*bonds.Engine, error) {
	teller, ok := p.tellers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeller, name)
	}
	return teller, nil
}

func nowUnix() uint64 { return uint64(time.Now().Unix()) }

// --- token ---

func (p *Processor) TokenTransfer(symbol string, from, to types.Address, amount *big.Int) error {
	return p.exec(func() error { return p.token.Transfer(symbol, from, to, amount) })
}

func (p *Processor) TokenTransferFrom(symbol string, spender, owner, to types.Address, amount *big.Int) error {
	return p.exec(func() error { return p.token.TransferFrom(symbol, spender, owner, to, amount) })
}

func (p *Processor) TokenApprove(symbol string, owner, spender types.Address, amount *big.Int) error {
	return p.exec(func() error { return p.token.Approve(symbol, owner, spender, amount) })
}

func (p *Processor) TokenPermit(symbol string, owner, spender types.Address, value *big.Int, deadline uint64, sig []byte) error {
	return p.exec(func() error {
		return p.token.Permit(symbol, owner, spender, value, deadline, sig, nowUnix())
	})
}

func (p *Processor) TokenMint(symbol string, caller, to types.Address, amount *big.Int) error {
	return p.exec(func() error { return p.token.Mint(symbol, caller, to, amount) })
}

// SetTokenMinter reassigns mint authority over symbol. Governor only.
func (p *Processor) SetTokenMinter(caller types.Address, symbol string, minter types.Address) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		return p.token.SetMinter(symbol, minter)
	})
}

func (p *Processor) TokenBalance(symbol string, addr types.Address) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.token.BalanceOf(symbol, addr)
		return err
	})
	return out, err
}

func (p *Processor) TokenSupply(symbol string) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.token.TotalSupply(symbol)
		return err
	})
	return out, err
}

func (p *Processor) TokenAllowance(symbol string, owner, spender types.Address) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.token.Allowance(symbol, owner, spender)
		return err
	})
	return out, err
}

// --- lock ledger ---

func (p *Processor) CreateLock(caller, recipient types.Address, amount *big.Int, end uint64) (uint64, error) {
	var id uint64
	err := p.exec(func() (err error) {
		id, err = p.locker.CreateLock(caller, recipient, amount, end)
		return err
	})
	return id, err
}

func (p *Processor) IncreaseAmount(caller types.Address, id uint64, amount *big.Int) error {
	return p.exec(func() error { return p.locker.IncreaseAmount(caller, id, amount) })
}

func (p *Processor) IncreaseAmountSigned(caller types.Address, id uint64, amount *big.Int, deadline uint64, sig []byte) error {
	return p.exec(func() error {
		return p.locker.IncreaseAmountSigned(caller, id, amount, deadline, sig)
	})
}

func (p *Processor) ExtendLock(caller types.Address, id uint64, newEnd uint64) error {
	return p.exec(func() error { return p.locker.ExtendLock(caller, id, newEnd) })
}

func (p *Processor) WithdrawLock(caller types.Address, id uint64, recipient types.Address, amount *big.Int) error {
	return p.exec(func() error { return p.locker.Withdraw(caller, id, recipient, amount) })
}

func (p *Processor) DelegateLock(caller types.Address, id uint64, to types.Address) error {
	return p.exec(func() error { return p.locker.Delegate(caller, id, to) })
}

func (p *Processor) TransferLock(caller types.Address, id uint64, to types.Address) error {
	return p.exec(func() error { return p.locker.TransferLock(caller, id, to) })
}

func (p *Processor) GetLock(id uint64) (*locker.Lock, error) {
	var out *locker.Lock
	err := p.view(func() (err error) {
		out, err = p.locker.GetLock(id)
		return err
	})
	return out, err
}

func (p *Processor) LockOwner(id uint64) (types.Address, error) {
	var out types.Address
	err := p.view(func() (err error) {
		out, err = p.locker.OwnerOf(id)
		return err
	})
	return out, err
}

func (p *Processor) LockDelegatee(id uint64) (types.Address, error) {
	var out types.Address
	err := p.view(func() (err error) {
		out, err = p.locker.DelegateeOf(id)
		return err
	})
	return out, err
}

func (p *Processor) OwnedLocks(owner types.Address) ([]uint64, error) {
	var out []uint64
	err := p.view(func() (err error) {
		out, err = p.locker.OwnedLocks(owner)
		return err
	})
	return out, err
}

func (p *Processor) DelegatedLocks(delegatee types.Address) ([]uint64, error) {
	var out []uint64
	err := p.view(func() (err error) {
		out, err = p.locker.DelegatedLocks(delegatee)
		return err
	})
	return out, err
}

func (p *Processor) TotalLocked() (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.locker.TotalLocked()
		return err
	})
	return out, err
}

// --- voting power ---

func (p *Processor) VotePowerOfLock(id uint64) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.votes.PowerOfLockID(id)
		return err
	})
	return out, err
}

func (p *Processor) VotePowerOf(account types.Address) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.votes.PowerOf(account)
		return err
	})
	return out, err
}

func (p *Processor) DelegatedVotePowerOf(account types.Address) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.votes.DelegatedPowerOf(account)
		return err
	})
	return out, err
}

func (p *Processor) TotalVotePower() (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.votes.TotalPower()
		return err
	})
	return out, err
}

// --- staking rewards ---

func (p *Processor) HarvestLock(caller types.Address, lockID uint64) (*big.Int, error) {
	var out *big.Int
	err := p.exec(func() (err error) {
		out, err = p.rewards.HarvestLock(caller, lockID)
		return err
	})
	return out, err
}

func (p *Processor) HarvestAccount(caller types.Address, lockIDs []uint64) (*big.Int, error) {
	var out *big.Int
	err := p.exec(func() (err error) {
		out, err = p.rewards.HarvestAccount(caller, lockIDs)
		return err
	})
	return out, err
}

func (p *Processor) CompoundLock(caller types.Address, lockID uint64) (*big.Int, error) {
	var out *big.Int
	err := p.exec(func() (err error) {
		out, err = p.rewards.CompoundLock(caller, lockID)
		return err
	})
	return out, err
}

func (p *Processor) PendingReward(lockID uint64) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.rewards.PendingReward(lockID)
		return err
	})
	return out, err
}

func (p *Processor) RewardsGlobal() (*rewards.GlobalState, error) {
	var out *rewards.GlobalState
	err := p.view(func() (err error) {
		out, err = p.rewards.Global()
		return err
	})
	return out, err
}

// SetRewardRate changes the emission rate after settling the accumulator.
// Governor only.
func (p *Processor) SetRewardRate(caller types.Address, rate *big.Int) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		return p.rewards.SetRewardRate(rate)
	})
}

// SetRewardTimes moves the emission window after settling the accumulator.
// Governor only.
func (p *Processor) SetRewardTimes(caller types.Address, start, end uint64) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		return p.rewards.SetTimes(start, end)
	})
}

// --- bond tellers ---

func (p *Processor) BondDeposit(tellerName string, caller, depositor types.Address, amount, minAmountOut *big.Int, stake bool) (*bonds.DepositReceipt, error) {
	var out *bonds.DepositReceipt
	err := p.exec(func() error {
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		out, err = teller.Deposit(caller, depositor, amount, minAmountOut, stake)
		return err
	})
	return out, err
}

func (p *Processor) BondDepositSigned(tellerName string, caller, depositor types.Address, amount, minAmountOut *big.Int, stake bool, principalPrice *big.Int, deadline uint64, sig []byte) (*bonds.DepositReceipt, error) {
	var out *bonds.DepositReceipt
	err := p.exec(func() error {
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		out, err = teller.DepositSigned(caller, depositor, amount, minAmountOut, stake, principalPrice, deadline, sig)
		return err
	})
	return out, err
}

func (p *Processor) BondClaimPayout(tellerName string, caller types.Address, bondID uint64) (*big.Int, error) {
	var out *big.Int
	err := p.exec(func() error {
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		out, err = teller.ClaimPayout(caller, bondID)
		return err
	})
	return out, err
}

// SetBondTerms replaces a teller's market terms and reseeds its price state.
// Governor only.
func (p *Processor) SetBondTerms(caller types.Address, tellerName string, terms bonds.Terms) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		return teller.SetTerms(terms)
	})
}

// SetBondFees sets a teller's protocol fee. Governor only.
func (p *Processor) SetBondFees(caller types.Address, tellerName string, bps uint64) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		return teller.SetFees(bps)
	})
}

// PauseBondTeller suspends deposits on a teller. Governor only.
func (p *Processor) PauseBondTeller(caller types.Address, tellerName string) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		return teller.Pause()
	})
}

// UnpauseBondTeller resumes deposits on a teller. Governor only.
func (p *Processor) UnpauseBondTeller(caller types.Address, tellerName string) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		return teller.Unpause()
	})
}

// SetBondPriceSigner adds or removes a price attestation signer. The signer
// set is shared by every teller, so any configured teller carries the write.
// Governor only.
func (p *Processor) SetBondPriceSigner(caller types.Address, signer types.Address, allowed bool) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		for _, teller := range p.tellers {
			return teller.SetPriceSigner(signer, allowed)
		}
		return errors.New("core: no tellers configured")
	})
}

func (p *Processor) BondPrice(tellerName string) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() error {
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		out, err = teller.CurrentPrice()
		return err
	})
	return out, err
}

func (p *Processor) BondMarket(tellerName string) (*bonds.Market, error) {
	var out *bonds.Market
	err := p.view(func() error {
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		out, err = teller.Market()
		return err
	})
	return out, err
}

func (p *Processor) Bond(tellerName string, bondID uint64) (*bonds.Bond, error) {
	var out *bonds.Bond
	err := p.view(func() error {
		teller, err := p.teller(tellerName)
		if err != nil {
			return err
		}
		out, err = teller.GetBond(bondID)
		return err
	})
	return out, err
}

// --- points ledger ---

func (p *Processor) ScpMint(caller, account types.Address, amount *big.Int, isRefundable bool) error {
	return p.exec(func() error { return p.scp.Mint(caller, account, amount, isRefundable) })
}

func (p *Processor) ScpBurn(caller, account types.Address, amount *big.Int) error {
	return p.exec(func() error { return p.scp.Burn(caller, account, amount) })
}

func (p *Processor) ScpTransfer(caller, from, to types.Address, amount *big.Int) error {
	return p.exec(func() error { return p.scp.Transfer(caller, from, to, amount) })
}

func (p *Processor) ScpWithdraw(caller, account types.Address, amount *big.Int) error {
	return p.exec(func() error { return p.scp.Withdraw(caller, account, amount) })
}

// SetScpMover grants or revokes point mover authority. Governor only.
func (p *Processor) SetScpMover(caller types.Address, mover types.Address, allowed bool) error {
	return p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		return p.scp.SetMover(mover, allowed)
	})
}

func (p *Processor) ScpBalance(account types.Address) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.scp.BalanceOf(account)
		return err
	})
	return out, err
}

func (p *Processor) ScpNonRefundable(account types.Address) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.scp.NonRefundableOf(account)
		return err
	})
	return out, err
}

func (p *Processor) ScpTotalSupply() (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.scp.TotalSupply()
		return err
	})
	return out, err
}

func (p *Processor) ScpMinRequired(account types.Address) (*big.Int, error) {
	var out *big.Int
	err := p.view(func() (err error) {
		out, err = p.scp.MinScpRequired(account)
		return err
	})
	return out, err
}

// --- airdrop ---

func (p *Processor) AirdropClaim(user types.Address, amount *big.Int, lockTime uint64, proof []types.Hash) (uint64, error) {
	var lockID uint64
	err := p.exec(func() (err error) {
		lockID, err = p.airdrop.Claim(user, amount, lockTime, proof)
		return err
	})
	return lockID, err
}

// AirdropRecover sweeps the unclaimed distributor balance to an address.
// Governor only.
func (p *Processor) AirdropRecover(caller, to types.Address) (*big.Int, error) {
	var out *big.Int
	err := p.exec(func() error {
		if err := p.gov.RequireGovernor(caller); err != nil {
			return err
		}
		var err error
		out, err = p.airdrop.GovernorRecover(to)
		return err
	})
	return out, err
}

func (p *Processor) AirdropClaimed(user types.Address) (bool, error) {
	var out bool
	err := p.view(func() (err error) {
		out, err = p.airdrop.Claimed(user)
		return err
	})
	return out, err
}

func (p *Processor) AirdropRoot() types.Hash { return p.airdrop.Root() }

// AddScpRetainer registers a product whose minimum point requirement floors
// point withdrawals. Call during startup, before serving traffic.
func (p *Processor) AddScpRetainer(r scp.Retainer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scp.AddRetainer(r)
}

// --- governance ---

func (p *Processor) Governor() (types.Address, error) {
	var out types.Address
	err := p.view(func() (err error) {
		out, err = p.gov.Governance()
		return err
	})
	return out, err
}

func (p *Processor) PendingGovernor() (types.Address, error) {
	var out types.Address
	err := p.view(func() (err error) {
		out, err = p.gov.PendingGovernance()
		return err
	})
	return out, err
}

func (p *Processor) SetPendingGovernor(caller, pending types.Address) error {
	return p.exec(func() error { return p.gov.SetPendingGovernance(caller, pending) })
}

func (p *Processor) AcceptGovernor(caller types.Address) error {
	return p.exec(func() error { return p.gov.AcceptGovernance(caller) })
}

func (p *Processor) LockGovernance(caller types.Address) error {
	return p.exec(func() error { return p.gov.LockGovernance(caller) })
}
