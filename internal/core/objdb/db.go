package objdb

import (
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/slotdb/slotdb/internal/core/observability/log"
)

// ObjectDB owns the process-wide pieces of the object system: the shared
// generation counter and the lock registry. Everything else (heaps, slot
// free-lists, generation batches) lives on individual sessions. Construct one
// per application and thread it explicitly; there is no hidden global.
type ObjectDB struct {
	id  uuid.UUID
	cfg Config
	log log.Log

	// Next unclaimed generation. Sessions claim batches via CompareAndSwap.
	genCounter atomic.Uint64

	mu       sync.Mutex
	reserved *roaring.Bitmap
	held     *roaring.Bitmap
	names    [256]string

	// Diagnostics counters surfaced through Snapshot.
	liveSlots    atomic.Int64
	liveSessions atomic.Int64
	totalAllocs  atomic.Uint64
}

// Option configures an ObjectDB.
type Option func(*ObjectDB)

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(l log.Log) Option {
	return func(db *ObjectDB) { db.log = l }
}

// WithConfig overrides the default allocator tuning.
func WithConfig(cfg Config) Option {
	return func(db *ObjectDB) { db.cfg = cfg.withDefaults() }
}

// New builds an empty database.
func New(opts ...Option) *ObjectDB {
	db := &ObjectDB{
		id:       uuid.New(),
		cfg:      DefaultConfig(),
		log:      log.NewNop(),
		reserved: roaring.New(),
		held:     roaring.New(),
	}
	// Generation zero is reserved so a dead slot's packed state can never
	// collide with a live handle.
	db.genCounter.Store(1)

	for _, opt := range opts {
		opt(db)
	}
	return db
}

// ID returns the database's instance identifier, used in logs and snapshots.
func (db *ObjectDB) ID() uuid.UUID { return db.id }

// LockInfo describes one reserved lock in a Snapshot.
type LockInfo struct {
	ID   uint8  `json:"id"`
	Name string `json:"name"`
	Held bool   `json:"held"`
}

// Snapshot is a point-in-time view of the database's shared state, consumed
// by the diagnostics server.
type Snapshot struct {
	ID           string     `json:"id"`
	NextGen      uint64     `json:"next_gen"`
	LiveSlots    int64      `json:"live_slots"`
	LiveSessions int64      `json:"live_sessions"`
	TotalAllocs  uint64     `json:"total_allocs"`
	Locks        []LockInfo `json:"locks"`
}

// TakeSnapshot captures the registry and counters. The counters are loaded
// individually, so a snapshot taken during mutation is approximate.
func (db *ObjectDB) TakeSnapshot() Snapshot {
	snap := Snapshot{
		ID:           db.id.String(),
		NextGen:      db.genCounter.Load(),
		LiveSlots:    db.liveSlots.Load(),
		LiveSessions: db.liveSessions.Load(),
		TotalAllocs:  db.totalAllocs.Load(),
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.reserved.Iterate(func(id uint32) bool {
		snap.Locks = append(snap.Locks, LockInfo{
			ID:   uint8(id),
			Name: db.names[id],
			Held: db.held.Contains(id),
		})
		return true
	})
	return snap
}
