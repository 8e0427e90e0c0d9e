package bonds

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"veledger/core/types"
)

// PriceDigest computes the signing digest for an off-chain price
// attestation: the principal token, its quoted price (quote units per 1e18
// principal units) and the attestation deadline.
func PriceDigest(symbol string, price *big.Int, deadline uint64) []byte {
	var priceBytes [32]byte
	if price != nil {
		price.FillBytes(priceBytes[:])
	}
	var deadlineBytes [8]byte
	binary.BigEndian.PutUint64(deadlineBytes[:], deadline)
	return ethcrypto.Keccak256(
		[]byte("veledger/price"),
		[]byte(symbol),
		priceBytes[:],
		deadlineBytes[:],
	)
}

// VerifyPrice checks a signed price attestation against the registered
// signer set. Expired deadlines, malformed signatures and unknown signers
// are distinct errors.
func (e *Engine) VerifyPrice(symbol string, price *big.Int, deadline uint64, sig []byte) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.now() > deadline {
		return ErrPriceExpired
	}
	digest := PriceDigest(symbol, price, deadline)
	pub, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return ErrBadPriceSig
	}
	signer := types.BytesToAddress(ethcrypto.PubkeyToAddress(*pub).Bytes())
	allowed, err := e.state.BondsIsPriceSigner(signer)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrUnknownSigner
	}
	return nil
}

// SetPriceSigner adds or removes an attestation signer. Governance gates the
// caller.
func (e *Engine) SetPriceSigner(addr types.Address, allowed bool) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	return e.state.BondsSetPriceSigner(addr, allowed)
}

// DepositSigned is the non-stable principal path: the principal amount is
// converted into the quote denomination using an oracle-attested price
// before the bond pricing runs. The verified price is quote units per 1e18
// principal units.
func (e *Engine) DepositSigned(caller, depositor types.Address, amount, minAmountOut *big.Int, stake bool, principalPrice *big.Int, deadline uint64, sig []byte) (*DepositReceipt, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if principalPrice == nil || principalPrice.Sign() <= 0 {
		return nil, ErrBadPriceSig
	}
	if err := e.VerifyPrice(e.principalSymbol, principalPrice, deadline, sig); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	valueIn := new(big.Int).Mul(amount, principalPrice)
	valueIn.Quo(valueIn, payoutScale)
	return e.deposit(caller, depositor, amount, valueIn, minAmountOut, stake)
}
