package bonds

import (
	"math/big"

	"github.com/holiman/uint256"
)

// DecayedPrice computes the teller price after elapsed seconds of decay from
// init. Whole half-lives are applied as right shifts; the remainder is a
// linear interpolation toward the next halving point:
//
//	price = init >> (elapsed/halfLife)
//	price -= price * (elapsed%halfLife) / halfLife / 2
//
// This exact piecewise-linear approximation is part of the protocol's
// observable behaviour; it must not be replaced with a true exponential.
func DecayedPrice(init *big.Int, elapsed, halfLife uint64) *big.Int {
	if init == nil || init.Sign() <= 0 {
		return big.NewInt(0)
	}
	if halfLife == 0 {
		return new(big.Int).Set(init)
	}
	price, overflow := uint256.FromBig(init)
	if overflow {
		return new(big.Int).Set(init)
	}
	price.Rsh(price, uint(elapsed/halfLife))
	rem := elapsed % halfLife
	if rem > 0 {
		sub := new(uint256.Int).Set(price)
		sub.Mul(sub, uint256.NewInt(rem))
		sub.Div(sub, uint256.NewInt(halfLife))
		sub.Div(sub, uint256.NewInt(2))
		price.Sub(price, sub)
	}
	return price.ToBig()
}
