package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	valueLocked  prometheus.Gauge
	votePower    prometheus.Gauge
	scpSupply    prometheus.Gauge
	rewardsPool  prometheus.Gauge
	bondDeposits *prometheus.CounterVec
	bondClaims   *prometheus.CounterVec
	bondPrice    *prometheus.GaugeVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the singleton registry for gauges describing the economic
// state of the ledger. The daemon refreshes the gauges on a fixed cadence.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			valueLocked: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "veledger_value_locked",
				Help: "Total token value currently held in escrow across all locks.",
			}),
			votePower: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "veledger_vote_power_total",
				Help: "Aggregate voting power across all locks at refresh time.",
			}),
			scpSupply: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "veledger_scp_supply",
				Help: "Outstanding supply of contribution points.",
			}),
			rewardsPool: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "veledger_rewards_pool",
				Help: "Token balance backing pending staking reward payouts.",
			}),
			bondDeposits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "veledger_bond_deposits_total",
				Help: "Count of accepted bond deposits by teller.",
			}, []string{"teller"}),
			bondClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "veledger_bond_claims_total",
				Help: "Count of vested payout claims by teller.",
			}, []string{"teller"}),
			bondPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "veledger_bond_price",
				Help: "Current decayed bond price per teller at refresh time.",
			}, []string{"teller"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.valueLocked,
			ledgerRegistry.votePower,
			ledgerRegistry.scpSupply,
			ledgerRegistry.rewardsPool,
			ledgerRegistry.bondDeposits,
			ledgerRegistry.bondClaims,
			ledgerRegistry.bondPrice,
		)
	})
	return ledgerRegistry
}

func (m *LedgerMetrics) SetValueLocked(amount float64) {
	if m == nil {
		return
	}
	m.valueLocked.Set(amount)
}

func (m *LedgerMetrics) SetVotePower(power float64) {
	if m == nil {
		return
	}
	m.votePower.Set(power)
}

func (m *LedgerMetrics) SetScpSupply(amount float64) {
	if m == nil {
		return
	}
	m.scpSupply.Set(amount)
}

func (m *LedgerMetrics) SetRewardsPool(amount float64) {
	if m == nil {
		return
	}
	m.rewardsPool.Set(amount)
}

func (m *LedgerMetrics) ObserveBondDeposit(teller string) {
	if m == nil {
		return
	}
	if teller == "" {
		teller = "unknown"
	}
	m.bondDeposits.WithLabelValues(teller).Inc()
}

func (m *LedgerMetrics) ObserveBondClaim(teller string) {
	if m == nil {
		return
	}
	if teller == "" {
		teller = "unknown"
	}
	m.bondClaims.WithLabelValues(teller).Inc()
}

func (m *LedgerMetrics) SetBondPrice(teller string, price float64) {
	if m == nil {
		return
	}
	if teller == "" {
		teller = "unknown"
	}
	m.bondPrice.WithLabelValues(teller).Set(price)
}

// InitTeller pre-registers a teller's label so dashboards show zeroed series
// before the first deposit lands.
func (m *LedgerMetrics) InitTeller(teller string) {
	if m == nil {
		return
	}
	if teller == "" {
		teller = "unknown"
	}
	m.bondDeposits.WithLabelValues(teller).Add(0)
	m.bondClaims.WithLabelValues(teller).Add(0)
	m.bondPrice.WithLabelValues(teller).Set(0)
}
