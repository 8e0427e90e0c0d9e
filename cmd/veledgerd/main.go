package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veledger/config"
	"veledger/core"
	"veledger/core/events"
	"veledger/native/token"
	"veledger/observability"
	"veledger/observability/logging"
	"veledger/observability/metrics"
	"veledger/rpc"
	"veledger/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.Setup("veledgerd", cfg.Environment, logging.FileConfig{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	genesis, err := config.LoadGenesis(cfg.GenesisFile)
	if err != nil {
		logger.Error("Failed to load genesis", slog.Any("error", err))
		os.Exit(1)
	}
	procCfg, err := genesis.ProcessorConfig()
	if err != nil {
		logger.Error("Failed to resolve genesis", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	proc, err := core.NewProcessor(db, procCfg)
	if err != nil {
		logger.Error("Failed to build processor", slog.Any("error", err))
		os.Exit(1)
	}
	proc.SetEmitter(observability.EventEmitter{Next: depositCounter{}})

	for _, teller := range procCfg.Tellers {
		metrics.Ledger().InitTeller(teller.Name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go refreshLedgerMetrics(ctx, proc, procCfg, time.Duration(cfg.MetricsRefreshSecs)*time.Second, logger)

	apiServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           rpc.NewServer(proc, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("query API listening", slog.String("address", cfg.ListenAddress))
		errCh <- apiServer.ListenAndServe()
	}()
	go func() {
		logger.Info("metrics listening", slog.String("address", cfg.MetricsAddress))
		errCh <- metricsServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API shutdown failed", slog.Any("error", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", slog.Any("error", err))
	}
}

// depositCounter feeds accepted bond deposits and payout claims into the
// per-teller counters.
type depositCounter struct{}

func (depositCounter) Emit(evt events.Event) {
	switch e := evt.(type) {
	case events.BondCreated:
		metrics.Ledger().ObserveBondDeposit(e.Teller)
	case events.BondStaked:
		metrics.Ledger().ObserveBondDeposit(e.Teller)
	case events.BondPayoutClaimed:
		metrics.Ledger().ObserveBondClaim(e.Teller)
	}
}

// refreshLedgerMetrics republishes the economic gauges on a fixed cadence
// until ctx is cancelled.
func refreshLedgerMetrics(ctx context.Context, proc *core.Processor, procCfg core.ProcessorConfig, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	rewardsPool := token.ModuleAddress("rewards/pool")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if locked, err := proc.TotalLocked(); err == nil {
			metrics.Ledger().SetValueLocked(approx(locked))
		} else {
			logger.Warn("metrics refresh: total locked", slog.Any("error", err))
		}
		if power, err := proc.TotalVotePower(); err == nil {
			metrics.Ledger().SetVotePower(approx(power))
		}
		if supply, err := proc.ScpTotalSupply(); err == nil {
			metrics.Ledger().SetScpSupply(approx(supply))
		}
		if pool, err := proc.TokenBalance(procCfg.LockSymbol, rewardsPool); err == nil {
			metrics.Ledger().SetRewardsPool(approx(pool))
		}
		for _, teller := range procCfg.Tellers {
			if price, err := proc.BondPrice(teller.Name); err == nil {
				metrics.Ledger().SetBondPrice(teller.Name, approx(price))
			}
		}
	}
}

// approx converts a base-unit amount to a float for gauge export; precision
// loss is acceptable for dashboards.
func approx(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
