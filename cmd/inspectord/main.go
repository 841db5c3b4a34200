// Command inspectord runs a simulated engine workload against an ObjectDB
// and serves its live state over the inspection WebSocket, so the streaming
// surface can be exercised and eyeballed without a game attached.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slotdb/slotdb/internal/core/entity"
	"github.com/slotdb/slotdb/internal/core/objdb"
	"github.com/slotdb/slotdb/internal/core/observability/log"
	"github.com/slotdb/slotdb/internal/inspect"
)

func main() {
	addr := flag.String("addr", ":7415", "inspect listen address")
	configPath := flag.String("config", "", "optional yaml config for the database")
	frameRate := flag.Duration("frame", 16*time.Millisecond, "simulated frame interval")
	flag.Parse()

	logger := log.New(log.LevelDebug)
	defer func() { _ = logger.Sync() }()

	cfg := objdb.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = objdb.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
	}

	db := objdb.New(objdb.WithLogger(logger), objdb.WithConfig(cfg))
	srv := inspect.NewServer(db, inspect.Config{Addr: *addr, Interval: time.Second}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go runWorkload(ctx, db, *frameRate)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case <-stopCh:
		cancel()
		if err := <-errCh; err != nil {
			fmt.Fprintln(os.Stderr, "Error stopping inspect server:", err)
		}
	case err := <-errCh:
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error running inspect server:", err)
			os.Exit(1)
		}
	}
}

// runWorkload opens a session per simulated frame, churns some lock-guarded
// objects, and tears a fraction of them down, keeping the snapshot counters
// moving.
func runWorkload(ctx context.Context, db *objdb.ObjectDB, frame time.Duration) {
	physics := db.ReserveLock("physics")
	render := db.ReserveLock("render")
	posKey := entity.KeyOf[[3]float64]()

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	var retained []objdb.Obj[[3]float64]
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s := db.MustNewSession(physics, render)
		pos := objdb.NewObjIn(s, physics, [3]float64{float64(i), 0, 0})
		ent := entity.NewWith(s, entity.Bind(posKey, pos))
		_ = entity.Get(ent, s, posKey)

		retained = append(retained, pos)
		if len(retained) > 512 {
			for _, old := range retained[:256] {
				old.Destroy(s)
			}
			retained = append(retained[:0], retained[256:]...)
		}
		ent.Destroy(s)
		s.Close()
	}
}
