package config

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != ":8080" || cfg.MetricsAddress != ":9090" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not persisted: %v", err)
	}
	// A second load reads the persisted file back.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.DataDir != cfg.DataDir {
		t.Fatalf("reload DataDir = %q, want %q", again.DataDir, cfg.DataDir)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "config.toml", "GenesisFile = \"genesis.yaml\"\nBootnodes = []\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Fatalf("unknown key err = %v", err)
	}
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	path := writeFile(t, "config.toml", "GenesisFile = \"genesis.yaml\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MetricsRefreshSecs != 15 {
		t.Fatalf("MetricsRefreshSecs = %d, want 15", cfg.MetricsRefreshSecs)
	}

	clash := writeFile(t, "clash.toml", "GenesisFile = \"genesis.yaml\"\nListenAddress = \":7000\"\nMetricsAddress = \":7000\"\n")
	if _, err := Load(clash); err == nil {
		t.Fatalf("expected address clash to fail validation")
	}
}

const genesisDoc = `
lockSymbol: SLC
governor: "0101010101010101010101010101010101010101"
dao: "0202020202020202020202020202020202020202"
underwriting: "0303030303030303030303030303030303030303"
airdropRoot: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
tellers:
  - name: usdv
    principal: USDV
    payout: SLC
allocations:
  - symbol: USDV
    to: "0404040404040404040404040404040404040404"
    amount: "1000000000000000000"
rewards:
  ratePerSecond: "250"
  startTime: 1700000000
  endTime: 1731536000
`

func TestGenesisRoundTrip(t *testing.T) {
	path := writeFile(t, "genesis.yaml", genesisDoc)
	gen, err := LoadGenesis(path)
	if err != nil {
		t.Fatalf("load genesis: %v", err)
	}
	cfg, err := gen.ProcessorConfig()
	if err != nil {
		t.Fatalf("processor config: %v", err)
	}

	if cfg.LockSymbol != "SLC" {
		t.Fatalf("lock symbol = %q", cfg.LockSymbol)
	}
	if cfg.Governor[0] != 0x01 || cfg.DAO[0] != 0x02 || cfg.Underwriting[0] != 0x03 {
		t.Fatalf("addresses parsed wrong: %+v", cfg)
	}
	if cfg.AirdropRoot[0] != 0xaa {
		t.Fatalf("airdrop root parsed wrong: %x", cfg.AirdropRoot)
	}
	if len(cfg.Tellers) != 1 || cfg.Tellers[0].Name != "usdv" {
		t.Fatalf("tellers = %+v", cfg.Tellers)
	}
	if len(cfg.Allocations) != 1 {
		t.Fatalf("allocations = %+v", cfg.Allocations)
	}
	want, _ := new(big.Int).SetString("1000000000000000000", 10)
	if cfg.Allocations[0].Amount.Cmp(want) != 0 {
		t.Fatalf("allocation amount = %s", cfg.Allocations[0].Amount)
	}
	if cfg.Rewards.RatePerSecond.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("reward rate = %s", cfg.Rewards.RatePerSecond)
	}
}

func TestGenesisRejectsBadDocuments(t *testing.T) {
	missing := writeFile(t, "genesis.yaml", "governor: \"0101010101010101010101010101010101010101\"\n")
	if _, err := LoadGenesis(missing); err == nil {
		t.Fatalf("expected missing lockSymbol to fail")
	}

	badAddr := writeFile(t, "bad.yaml", "lockSymbol: SLC\ngovernor: \"zz\"\n")
	gen, err := LoadGenesis(badAddr)
	if err != nil {
		t.Fatalf("load genesis: %v", err)
	}
	if _, err := gen.ProcessorConfig(); err == nil {
		t.Fatalf("expected bad governor address to fail")
	}

	badAmount := writeFile(t, "amount.yaml", `
lockSymbol: SLC
allocations:
  - symbol: SLC
    to: "0404040404040404040404040404040404040404"
    amount: "-5"
`)
	gen, err = LoadGenesis(badAmount)
	if err != nil {
		t.Fatalf("load genesis: %v", err)
	}
	if _, err := gen.ProcessorConfig(); err == nil {
		t.Fatalf("expected negative allocation to fail")
	}
}
