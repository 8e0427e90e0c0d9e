package state

import (
	"fmt"
	"math/big"

	"veledger/core/types"
	"veledger/native/bonds"
)

func bondsMarketKey(teller string) string { return "bonds/" + teller + "/market" }
func bondsNextIDKey(teller string) string { return "bonds/" + teller + "/next-id" }
func bondsBondKey(teller string, id uint64) string {
	return fmt.Sprintf("bonds/%s/bond/%d", teller, id)
}
func bondsSignerKey(addr types.Address) string { return "bonds/price-signer/" + addr.Hex() }

type storedMarket struct {
	StartPrice        *big.Int
	MinimumPrice      *big.Int
	MaxPayout         *big.Int
	PriceAdjNum       *big.Int
	PriceAdjDenom     *big.Int
	Capacity          *big.Int
	CapacityIsPayout  bool
	StartTime         uint64
	EndTime           uint64
	GlobalVestingTerm uint64
	HalfLife          uint64
	TermsSet          bool
	Paused            bool
	NextPrice         *big.Int
	RemainingCap      *big.Int
	LastPriceUpdate   uint64
	ProtocolFeeBps    uint64
}

type storedBond struct {
	Owner                types.Address
	PayoutAmount         *big.Int
	PayoutAlreadyClaimed *big.Int
	PrincipalPaid        *big.Int
	VestingStart         uint64
	LocalVestingTerm     uint64
}

// BondsMarket loads the mutable sale state of a teller.
func (m *Manager) BondsMarket(teller string) (*bonds.Market, bool, error) {
	stored := new(storedMarket)
	ok, err := m.loadRLP(bondsMarketKey(teller), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	market := &bonds.Market{
		Terms: bonds.Terms{
			StartPrice:        bigOrZero(stored.StartPrice),
			MinimumPrice:      bigOrZero(stored.MinimumPrice),
			MaxPayout:         bigOrZero(stored.MaxPayout),
			PriceAdjNum:       bigOrZero(stored.PriceAdjNum),
			PriceAdjDenom:     bigOrZero(stored.PriceAdjDenom),
			Capacity:          bigOrZero(stored.Capacity),
			CapacityIsPayout:  stored.CapacityIsPayout,
			StartTime:         stored.StartTime,
			EndTime:           stored.EndTime,
			GlobalVestingTerm: stored.GlobalVestingTerm,
			HalfLife:          stored.HalfLife,
		},
		TermsSet:        stored.TermsSet,
		Paused:          stored.Paused,
		NextPrice:       bigOrZero(stored.NextPrice),
		RemainingCap:    bigOrZero(stored.RemainingCap),
		LastPriceUpdate: stored.LastPriceUpdate,
		ProtocolFeeBps:  stored.ProtocolFeeBps,
	}
	return market, true, nil
}

// SetBondsMarket stores the mutable sale state of a teller.
func (m *Manager) SetBondsMarket(teller string, market *bonds.Market) error {
	stored := &storedMarket{
		StartPrice:        bigOrZero(market.StartPrice),
		MinimumPrice:      bigOrZero(market.MinimumPrice),
		MaxPayout:         bigOrZero(market.MaxPayout),
		PriceAdjNum:       bigOrZero(market.PriceAdjNum),
		PriceAdjDenom:     bigOrZero(market.PriceAdjDenom),
		Capacity:          bigOrZero(market.Capacity),
		CapacityIsPayout:  market.CapacityIsPayout,
		StartTime:         market.StartTime,
		EndTime:           market.EndTime,
		GlobalVestingTerm: market.GlobalVestingTerm,
		HalfLife:          market.HalfLife,
		TermsSet:          market.TermsSet,
		Paused:            market.Paused,
		NextPrice:         bigOrZero(market.NextPrice),
		RemainingCap:      bigOrZero(market.RemainingCap),
		LastPriceUpdate:   market.LastPriceUpdate,
		ProtocolFeeBps:    market.ProtocolFeeBps,
	}
	return m.storeRLP(bondsMarketKey(teller), stored)
}

// BondsGetBond loads one bond record.
func (m *Manager) BondsGetBond(teller string, id uint64) (*bonds.Bond, bool, error) {
	stored := new(storedBond)
	ok, err := m.loadRLP(bondsBondKey(teller, id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	bond := &bonds.Bond{
		Owner:                stored.Owner,
		PayoutAmount:         bigOrZero(stored.PayoutAmount),
		PayoutAlreadyClaimed: bigOrZero(stored.PayoutAlreadyClaimed),
		PrincipalPaid:        bigOrZero(stored.PrincipalPaid),
		VestingStart:         stored.VestingStart,
		LocalVestingTerm:     stored.LocalVestingTerm,
	}
	return bond, true, nil
}

// BondsPutBond stores one bond record.
func (m *Manager) BondsPutBond(teller string, id uint64, bond *bonds.Bond) error {
	stored := &storedBond{
		Owner:                bond.Owner,
		PayoutAmount:         bigOrZero(bond.PayoutAmount),
		PayoutAlreadyClaimed: bigOrZero(bond.PayoutAlreadyClaimed),
		PrincipalPaid:        bigOrZero(bond.PrincipalPaid),
		VestingStart:         bond.VestingStart,
		LocalVestingTerm:     bond.LocalVestingTerm,
	}
	return m.storeRLP(bondsBondKey(teller, id), stored)
}

// BondsDeleteBond removes a fully redeemed bond record.
func (m *Manager) BondsDeleteBond(teller string, id uint64) error {
	m.deleteRaw(bondsBondKey(teller, id))
	return nil
}

// BondsNextID returns the highest bond id assigned by a teller.
func (m *Manager) BondsNextID(teller string) (uint64, error) {
	return m.loadUint64(bondsNextIDKey(teller))
}

// BondsSetNextID persists the highest assigned bond id.
func (m *Manager) BondsSetNextID(teller string, id uint64) error {
	return m.storeUint64(bondsNextIDKey(teller), id)
}

// BondsIsPriceSigner reports whether addr is a registered price signer.
func (m *Manager) BondsIsPriceSigner(addr types.Address) (bool, error) {
	return m.loadBool(bondsSignerKey(addr))
}

// BondsSetPriceSigner adds or removes a price signer.
func (m *Manager) BondsSetPriceSigner(addr types.Address, allowed bool) error {
	if !allowed {
		m.deleteRaw(bondsSignerKey(addr))
		return nil
	}
	return m.storeBool(bondsSignerKey(addr), true)
}
