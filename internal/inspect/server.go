// Package inspect serves live ObjectDB state to debugging clients over
// WebSocket: the lock table, the held set, and allocation counters. It is a
// development surface; the database itself has no network dependency.
package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/slotdb/slotdb/internal/core/objdb"
	"github.com/slotdb/slotdb/internal/core/observability/log"
	"github.com/slotdb/slotdb/pkg/generic"
)

// Config controls the inspection server.
type Config struct {
	// Addr is the listen address, e.g. ":7415".
	Addr string `json:"addr" yaml:"addr"`
	// Interval is how often snapshots are pushed to connected clients.
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// Server streams database snapshots to WebSocket clients.
type Server struct {
	db       *objdb.ObjectDB
	cfg      Config
	logger   log.Log
	upgrader websocket.Upgrader
	srv      *http.Server
	bufs     *generic.Pool[*bytes.Buffer]
}

// NewServer builds an inspection server for db.
func NewServer(db *objdb.ObjectDB, cfg Config, logger log.Log) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	s := &Server{
		db:     db,
		cfg:    cfg,
		logger: logger,
		bufs:   generic.NewBufferPool(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/ws", s.handleStream)
	s.srv = &http.Server{Addr: cfg.Addr, Handler: mux}
	return s
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("inspect server listening", log.String("addr", s.cfg.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return multierr.Append(ctx.Err(), s.srv.Shutdown(shutdownCtx))
	})

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// handleSnapshot answers one-shot JSON snapshot requests.
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.db.TakeSnapshot()); err != nil {
		s.logger.Warn("snapshot write failed", log.Error(err))
	}
}

// handleStream upgrades to WebSocket and pushes a snapshot every interval
// until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	s.logger.Debug("inspect client connected", log.String("remote", conn.RemoteAddr().String()))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := s.writeSnapshot(conn); err != nil {
				s.logger.Debug("inspect client dropped", log.Error(err))
				return
			}
		}
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn) error {
	buf := s.bufs.Get()
	defer s.bufs.Put(buf)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(s.db.TakeSnapshot()); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, buf.Bytes())
}
