package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"veledger/core"
	"veledger/core/types"
)

// GenesisTeller declares one bond market in the genesis document.
type GenesisTeller struct {
	Name      string `yaml:"name"`
	Principal string `yaml:"principal"`
	Payout    string `yaml:"payout"`
}

// GenesisAllocation seeds a token balance at first boot. Amounts are decimal
// strings so large base-unit values survive YAML round trips.
type GenesisAllocation struct {
	Symbol string `yaml:"symbol"`
	To     string `yaml:"to"`
	Amount string `yaml:"amount"`
}

// GenesisRewards seeds the staking emission schedule at first boot.
type GenesisRewards struct {
	RatePerSecond string `yaml:"ratePerSecond"`
	StartTime     uint64 `yaml:"startTime"`
	EndTime       uint64 `yaml:"endTime"`
}

// Genesis is the YAML document describing the initial ledger state.
type Genesis struct {
	LockSymbol   string              `yaml:"lockSymbol"`
	Governor     string              `yaml:"governor"`
	DAO          string              `yaml:"dao"`
	Underwriting string              `yaml:"underwriting"`
	AirdropRoot  string              `yaml:"airdropRoot"`
	Tellers      []GenesisTeller     `yaml:"tellers"`
	Allocations  []GenesisAllocation `yaml:"allocations"`
	Rewards      GenesisRewards      `yaml:"rewards"`
}

// LoadGenesis reads and parses the genesis document at path.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %s: %w", path, err)
	}
	gen := &Genesis{}
	if err := yaml.Unmarshal(raw, gen); err != nil {
		return nil, fmt.Errorf("genesis: parse %s: %w", path, err)
	}
	if strings.TrimSpace(gen.LockSymbol) == "" {
		return nil, fmt.Errorf("genesis: lockSymbol must be set")
	}
	return gen, nil
}

// ProcessorConfig resolves the genesis document into the processor's startup
// wiring, parsing addresses, hashes and amounts.
func (g *Genesis) ProcessorConfig() (core.ProcessorConfig, error) {
	cfg := core.ProcessorConfig{LockSymbol: strings.TrimSpace(g.LockSymbol)}

	var err error
	if cfg.Governor, err = optionalAddress("governor", g.Governor); err != nil {
		return cfg, err
	}
	if cfg.DAO, err = optionalAddress("dao", g.DAO); err != nil {
		return cfg, err
	}
	if cfg.Underwriting, err = optionalAddress("underwriting", g.Underwriting); err != nil {
		return cfg, err
	}
	if strings.TrimSpace(g.AirdropRoot) != "" {
		if cfg.AirdropRoot, err = types.ParseHash(g.AirdropRoot); err != nil {
			return cfg, fmt.Errorf("genesis: airdropRoot: %w", err)
		}
	}

	for _, teller := range g.Tellers {
		cfg.Tellers = append(cfg.Tellers, core.TellerConfig{
			Name:            strings.TrimSpace(teller.Name),
			PrincipalSymbol: strings.TrimSpace(teller.Principal),
			PayoutSymbol:    strings.TrimSpace(teller.Payout),
		})
	}

	for i, alloc := range g.Allocations {
		to, err := types.ParseAddress(alloc.To)
		if err != nil {
			return cfg, fmt.Errorf("genesis: allocations[%d]: %w", i, err)
		}
		amount, err := parseAmount(alloc.Amount)
		if err != nil {
			return cfg, fmt.Errorf("genesis: allocations[%d]: %w", i, err)
		}
		cfg.Allocations = append(cfg.Allocations, core.TokenAllocation{
			Symbol: strings.TrimSpace(alloc.Symbol),
			To:     to,
			Amount: amount,
		})
	}

	if strings.TrimSpace(g.Rewards.RatePerSecond) != "" {
		rate, err := parseAmount(g.Rewards.RatePerSecond)
		if err != nil {
			return cfg, fmt.Errorf("genesis: rewards.ratePerSecond: %w", err)
		}
		cfg.Rewards = core.RewardSchedule{
			RatePerSecond: rate,
			StartTime:     g.Rewards.StartTime,
			EndTime:       g.Rewards.EndTime,
		}
	}
	return cfg, nil
}

func optionalAddress(field, value string) (types.Address, error) {
	if strings.TrimSpace(value) == "" {
		return types.Address{}, nil
	}
	addr, err := types.ParseAddress(value)
	if err != nil {
		return types.Address{}, fmt.Errorf("genesis: %s: %w", field, err)
	}
	return addr, nil
}

func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}
