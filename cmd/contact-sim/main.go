// contact-sim runs the full capture pipeline against a simulated radio:
// a handful of peers advertise, connect, get sampled, and drop out of range,
// and the resulting contact events land in a SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"colocate/contact-agent/internal/ble"
	"colocate/contact-agent/internal/ident"
	"colocate/contact-agent/internal/scanner"
	"colocate/contact-agent/internal/store"
)

func main() {
	peerCount := flag.Int("peers", 3, "Number of simulated peers")
	period := flag.Duration("period", 500*time.Millisecond, "Signal sampling period")
	runFor := flag.Duration("run-for", 10*time.Second, "How long to run the simulation")
	dbPath := flag.String("db", "", "SQLite path for captured events (default: temp file)")
	baseRSSI := flag.Int("base-rssi", -60, "Baseline RSSI value to simulate")
	rssiJitter := flag.Int("rssi-jitter", 6, "Maximum random jitter applied to RSSI readings")
	verbose := flag.Bool("v", false, "Log scanner activity")

	flag.Parse()

	path := *dbPath
	if path == "" {
		path = filepath.Join(os.TempDir(), fmt.Sprintf("contact-sim-%d.db", time.Now().UnixNano()))
	}

	db, err := store.Open(path)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("failed to init schema: %v", err)
	}

	logOut := io.Writer(os.Stderr)
	if !*verbose {
		logOut = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	transport := ble.NewSimTransport(simPeers(*peerCount, *baseRSSI, *rssiJitter, *runFor), time.Second)
	worker := store.NewWorker(db, logger)

	scan := scanner.New(transport, worker, logger, scanner.WithPeriod(*period))
	if err := scan.Start(ctx); err != nil {
		log.Fatalf("failed to start scanner: %v", err)
	}

	log.Printf("simulating %d peers for %s (db: %s)", *peerCount, *runFor, path)

	select {
	case <-ctx.Done():
		log.Print("received shutdown signal")
	case <-time.After(*runFor):
	}

	scan.Stop()
	worker.Wait()

	events, err := db.AllContactEvents(context.Background())
	if err != nil {
		log.Fatalf("failed to load captured events: %v", err)
	}

	log.Printf("captured %d contact events", len(events))
	for _, event := range events {
		log.Printf("  peer=%s started=%s samples=%d duration=%ds",
			event.PeerID,
			event.StartedAt.Format(time.RFC3339),
			len(event.RSSIValues),
			event.DurationSeconds)
	}
}

// simPeers builds peers with staggered lifetimes so encounters end at
// different times during the run.
func simPeers(count, baseRSSI, jitter int, runFor time.Duration) []ble.SimPeer {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	peers := make([]ble.SimPeer, 0, count)
	for i := 0; i < count; i++ {
		raw := make([]byte, ident.Length)
		rng.Read(raw)

		lifetime := runFor / 4
		lifetime += time.Duration(i) * runFor / time.Duration(2*count)

		peers = append(peers, ble.SimPeer{
			Address:      fmt.Sprintf("AA:00:00:00:00:%02X", i+1),
			Identifier:   raw,
			BaseRSSI:     baseRSSI - rng.Intn(10),
			RSSIJitter:   jitter,
			Lifetime:     lifetime,
			Backgrounded: i%2 == 1,
		})
	}
	return peers
}
