package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"colocate/contact-agent/internal/app"
	"colocate/contact-agent/internal/ble"
	"colocate/contact-agent/internal/config"
	"colocate/contact-agent/internal/ident"
)

func main() {
	simulated := flag.Bool("sim", false, "run against a simulated radio instead of a platform transport")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	transport, err := buildTransport(*simulated)
	if err != nil {
		logger.Error("failed to initialise transport", "error", err)
		os.Exit(1)
	}

	application := app.New(cfg, logger, transport)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("application terminated", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped cleanly")
}

// buildTransport selects the radio implementation. Platform transports plug
// in behind ble.Transport; the simulated one ships in-tree for development.
func buildTransport(simulated bool) (ble.Transport, error) {
	if !simulated {
		return nil, errNoPlatformTransport
	}

	peers := []ble.SimPeer{
		{
			Address:    "AA:00:00:00:00:01",
			Identifier: simIdentifier(0x01),
			BaseRSSI:   -55,
			RSSIJitter: 6,
			Lifetime:   45 * time.Second,
		},
		{
			Address:      "AA:00:00:00:00:02",
			Identifier:   simIdentifier(0x02),
			BaseRSSI:     -72,
			RSSIJitter:   4,
			Lifetime:     90 * time.Second,
			Backgrounded: true,
		},
	}
	return ble.NewSimTransport(peers, 5*time.Second), nil
}

var errNoPlatformTransport = errors.New("no platform transport is linked into this build; pass -sim to use the simulated radio")

func simIdentifier(fill byte) []byte {
	raw := make([]byte, ident.Length)
	for i := range raw {
		raw[i] = fill
	}
	return raw
}

func logLevel(level string) slog.Leveler {
	var lvl slog.Level

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	lv := new(slog.LevelVar)
	lv.Set(lvl)
	return lv
}
