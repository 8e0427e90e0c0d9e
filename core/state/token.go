package state

import (
	"math/big"

	"veledger/core/types"
)

func tokenBalanceKey(symbol string, addr types.Address) string {
	return "token/balance/" + symbol + "/" + addr.Hex()
}

func tokenSupplyKey(symbol string) string {
	return "token/supply/" + symbol
}

func tokenAllowanceKey(symbol string, owner, spender types.Address) string {
	return "token/allowance/" + symbol + "/" + owner.Hex() + "/" + spender.Hex()
}

func tokenNonceKey(addr types.Address) string {
	return "token/permit-nonce/" + addr.Hex()
}

func tokenMinterKey(symbol string) string {
	return "token/minter/" + symbol
}

// TokenBalance returns addr's balance of the given token.
func (m *Manager) TokenBalance(symbol string, addr types.Address) (*big.Int, error) {
	return m.loadBigInt(tokenBalanceKey(symbol, addr))
}

// SetTokenBalance stores addr's balance of the given token.
func (m *Manager) SetTokenBalance(symbol string, addr types.Address, amount *big.Int) error {
	return m.storeBigInt(tokenBalanceKey(symbol, addr), amount)
}

// TokenSupply returns the outstanding supply of the given token.
func (m *Manager) TokenSupply(symbol string) (*big.Int, error) {
	return m.loadBigInt(tokenSupplyKey(symbol))
}

// SetTokenSupply stores the outstanding supply of the given token.
func (m *Manager) SetTokenSupply(symbol string, amount *big.Int) error {
	return m.storeBigInt(tokenSupplyKey(symbol), amount)
}

// TokenAllowance returns the allowance owner granted to spender.
func (m *Manager) TokenAllowance(symbol string, owner, spender types.Address) (*big.Int, error) {
	return m.loadBigInt(tokenAllowanceKey(symbol, owner, spender))
}

// SetTokenAllowance stores the allowance owner granted to spender.
func (m *Manager) SetTokenAllowance(symbol string, owner, spender types.Address, amount *big.Int) error {
	return m.storeBigInt(tokenAllowanceKey(symbol, owner, spender), amount)
}

// TokenPermitNonce returns addr's signed-approval replay counter.
func (m *Manager) TokenPermitNonce(addr types.Address) (uint64, error) {
	return m.loadUint64(tokenNonceKey(addr))
}

// SetTokenPermitNonce stores addr's signed-approval replay counter.
func (m *Manager) SetTokenPermitNonce(addr types.Address, nonce uint64) error {
	return m.storeUint64(tokenNonceKey(addr), nonce)
}

// TokenMinter returns the registered mint authority for a token.
func (m *Manager) TokenMinter(symbol string) (types.Address, bool, error) {
	return m.loadAddress(tokenMinterKey(symbol))
}

// SetTokenMinter stores the mint authority for a token.
func (m *Manager) SetTokenMinter(symbol string, minter types.Address) error {
	return m.storeAddress(tokenMinterKey(symbol), minter)
}
