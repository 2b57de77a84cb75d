// Command tonpocket runs the simulated crypto wallet. It serves a local
// web UI with live valuation snapshots, drives the deposit/withdraw/swap
// pipeline and refreshes market prices from the configured platform
// (simulated by default).
//
// Usage:
//
//	tonpocket --config config.yaml
//	tonpocket --setup (interactive configuration wizard)
//	tonpocket (uses CLI arguments)
//
// Optional environment variables for live price feeds:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	For Hyperliquid: HYPERLIQUID_PRIVATE_KEY, HYPERLIQUID_API_URL
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tonpocket/config"
	"tonpocket/internal"
	"tonpocket/internal/services/feed"
	"tonpocket/internal/services/operation"
	"tonpocket/internal/setup"
	"tonpocket/internal/wallet"
	"tonpocket/internal/web"
)

func main() {
	setupFlag := flag.Bool("setup", false, "run the interactive configuration wizard")

	cfg, cfgErr := config.Get()
	if *setupFlag {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		data, err := os.ReadFile(setup.GeneratedConfigFile)
		if err != nil {
			log.Fatal(err)
		}
		cfg, cfgErr = config.Parse(data)
	}
	if cfgErr != nil {
		log.Fatal(cfgErr)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	client, err := internal.NewPlatformClient(cfg)
	if err != nil {
		logger.Fatal("failed to create platform client", zap.Error(err))
	}
	source, err := internal.NewPriceSource(client)
	if err != nil {
		logger.Fatal("failed to create price source", zap.Error(err))
	}

	w, err := wallet.New(wallet.Config{
		Nickname:      cfg.Nickname,
		SeedAssets:    cfg.Assets,
		StableAssetID: cfg.StableAssetID,
		DisplayRate:   cfg.DisplayRate,
		Latencies: operation.Latencies{
			Deposit:  cfg.DepositLatency,
			Withdraw: cfg.WithdrawLatency,
			Swap:     cfg.SwapLatency,
		},
		NotificationTTL: cfg.NotificationTTL,
		JournalCapacity: cfg.JournalCapacity,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create wallet", zap.Error(err))
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	priceFeed := feed.New(source, w, cfg.RefreshInterval, logger)
	if err := priceFeed.Start(ctx); err != nil {
		logger.Fatal("failed to start price feed", zap.Error(err))
	}

	server := web.NewServer(cfg.Listen, w, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(cfg.TLSDomains) > 0 {
			return server.StartWithAutoTLS(gctx, cfg.TLSDomains, "certs")
		}
		return server.Start(gctx)
	})

	logger.Info("wallet started",
		zap.String("nickname", cfg.Nickname),
		zap.String("listen", cfg.Listen),
		zap.String("platform", cfg.Platform))

	if err := g.Wait(); err != nil {
		logger.Error(err.Error())
	}
}
