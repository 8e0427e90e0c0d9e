package events

import (
	"math/big"

	"veledger/core/types"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func zeroAddress(a types.Address) bool {
	return a.IsZero()
}
