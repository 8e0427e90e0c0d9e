package token

import (
	"encoding/binary"
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"veledger/core/events"
	"veledger/core/types"
)

// State describes the persistence surface the token ledger requires.
type State interface {
	TokenBalance(symbol string, addr types.Address) (*big.Int, error)
	SetTokenBalance(symbol string, addr types.Address, amount *big.Int) error
	TokenSupply(symbol string) (*big.Int, error)
	SetTokenSupply(symbol string, amount *big.Int) error
	TokenAllowance(symbol string, owner, spender types.Address) (*big.Int, error)
	SetTokenAllowance(symbol string, owner, spender types.Address, amount *big.Int) error
	TokenPermitNonce(addr types.Address) (uint64, error)
	SetTokenPermitNonce(addr types.Address, nonce uint64) error
	TokenMinter(symbol string) (types.Address, bool, error)
	SetTokenMinter(symbol string, minter types.Address) error
}

// ModuleAddress derives a deterministic ledger address for an internal module
// vault. Module addresses have no known private key.
func ModuleAddress(name string) types.Address {
	digest := ethcrypto.Keccak256([]byte("veledger/module/" + name))
	return types.BytesToAddress(digest[12:])
}

// Engine implements a multi-token value ledger with ERC20-style transfer,
// allowance and signed-approval semantics plus a capability-gated mint
// authority per token. The bonding and locking engines consume it through
// their own narrow bank interfaces.
type Engine struct {
	state   State
	emitter events.Emitter
}

// NewEngine constructs a token engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// NormalizeSymbol canonicalises a token symbol. Symbols are upper-case and
// non-empty.
func NormalizeSymbol(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" {
		return "", ErrInvalidSymbol
	}
	return trimmed, nil
}

func positiveAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	return new(big.Int).Set(amount), nil
}

// BalanceOf returns the balance of addr for the given token.
func (e *Engine) BalanceOf(symbol string, addr types.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return e.state.TokenBalance(normalized, addr)
}

// TotalSupply returns the outstanding supply of the given token.
func (e *Engine) TotalSupply(symbol string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return e.state.TokenSupply(normalized)
}

// Transfer moves amount from the caller to the recipient. A false-return
// style partial failure does not exist; shortfalls are hard errors.
func (e *Engine) Transfer(symbol string, from, to types.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	amt, err := positiveAmount(amount)
	if err != nil {
		return err
	}
	return e.move(normalized, from, to, amt)
}

func (e *Engine) move(symbol string, from, to types.Address, amt *big.Int) error {
	fromBal, err := e.state.TokenBalance(symbol, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	// A self-transfer is a no-op; writing both legs from stale reads would
	// credit the amount twice.
	if from == to {
		return nil
	}
	toBal, err := e.state.TokenBalance(symbol, to)
	if err != nil {
		return err
	}
	if err := e.state.SetTokenBalance(symbol, from, new(big.Int).Sub(fromBal, amt)); err != nil {
		return err
	}
	return e.state.SetTokenBalance(symbol, to, new(big.Int).Add(toBal, amt))
}

// Approve sets the allowance granted by owner to spender.
func (e *Engine) Approve(symbol string, owner, spender types.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return e.state.SetTokenAllowance(normalized, owner, spender, new(big.Int).Set(amount))
}

// Allowance returns the amount spender may move on owner's behalf.
func (e *Engine) Allowance(symbol string, owner, spender types.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return e.state.TokenAllowance(normalized, owner, spender)
}

// TransferFrom moves amount from owner to recipient, consuming spender's
// allowance.
func (e *Engine) TransferFrom(symbol string, spender, owner, to types.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	amt, err := positiveAmount(amount)
	if err != nil {
		return err
	}
	allowance, err := e.state.TokenAllowance(normalized, owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amt) < 0 {
		return ErrInsufficientAllowance
	}
	if err := e.state.SetTokenAllowance(normalized, owner, spender, new(big.Int).Sub(allowance, amt)); err != nil {
		return err
	}
	return e.move(normalized, owner, to, amt)
}

// PermitDigest computes the signing digest for a signed approval. The digest
// binds the token, the parties, the value, the owner's current nonce and the
// deadline, so a permit can be replayed neither across tokens nor across
// uses.
func PermitDigest(symbol string, owner, spender types.Address, value *big.Int, nonce, deadline uint64) []byte {
	var valueBytes [32]byte
	if value != nil {
		value.FillBytes(valueBytes[:])
	}
	var nonceBytes, deadlineBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	binary.BigEndian.PutUint64(deadlineBytes[:], deadline)
	return ethcrypto.Keccak256(
		[]byte("veledger/permit"),
		[]byte(symbol),
		owner[:],
		spender[:],
		valueBytes[:],
		nonceBytes[:],
		deadlineBytes[:],
	)
}

// Permit applies a signed approval in the EIP-2612 manner: anyone may submit
// the signature; the allowance lands on (owner, spender). The owner's permit
// nonce increments on success.
func (e *Engine) Permit(symbol string, owner, spender types.Address, value *big.Int, deadline uint64, sig []byte, now uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	if now > deadline {
		return ErrPermitExpired
	}
	nonce, err := e.state.TokenPermitNonce(owner)
	if err != nil {
		return err
	}
	digest := PermitDigest(normalized, owner, spender, value, nonce, deadline)
	pub, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return ErrPermitInvalid
	}
	recovered := types.BytesToAddress(ethcrypto.PubkeyToAddress(*pub).Bytes())
	if recovered != owner {
		return ErrPermitInvalid
	}
	if err := e.state.SetTokenPermitNonce(owner, nonce+1); err != nil {
		return err
	}
	return e.state.SetTokenAllowance(normalized, owner, spender, new(big.Int).Set(value))
}

// SetMinter registers the single mint authority for a token. Callers gate
// this behind governance.
func (e *Engine) SetMinter(symbol string, minter types.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	if err := e.state.SetTokenMinter(normalized, minter); err != nil {
		return err
	}
	e.emit(events.TokenMinterSet{Symbol: normalized, Minter: minter})
	return nil
}

// Mint credits freshly created tokens to the recipient. Only the registered
// minter for the token may call; this is the depository capability the bond
// teller pulls payout through.
func (e *Engine) Mint(symbol string, caller, to types.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	amt, err := positiveAmount(amount)
	if err != nil {
		return err
	}
	minter, ok, err := e.state.TokenMinter(normalized)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoMinter
	}
	if minter != caller {
		return ErrNotMinter
	}
	supply, err := e.state.TokenSupply(normalized)
	if err != nil {
		return err
	}
	bal, err := e.state.TokenBalance(normalized, to)
	if err != nil {
		return err
	}
	if err := e.state.SetTokenSupply(normalized, new(big.Int).Add(supply, amt)); err != nil {
		return err
	}
	if err := e.state.SetTokenBalance(normalized, to, new(big.Int).Add(bal, amt)); err != nil {
		return err
	}
	e.emit(events.TokenMinted{Symbol: normalized, To: to, Amount: amt})
	return nil
}
