package objdb

import "sync/atomic"

// MaxGen is the exclusive ceiling of the generation space. Generations share a
// 64-bit word with an 8-bit lock id, leaving 56 bits of usable counter.
// Running past it is a hard capacity failure, not a recoverable condition.
const MaxGen = uint64(1) << 56

// extGen packs a generation and a lock id into one word so a slot's liveness
// and guard can be read with a single atomic load: (gen << 8) | lockID.
// The zero value means "slot is dead".
type extGen uint64

func packGen(lock Lock, gen uint64) extGen {
	return extGen(gen<<8 | uint64(lock))
}

func (e extGen) gen() uint64 { return uint64(e) >> 8 }
func (e extGen) lock() Lock  { return Lock(e) }

// genBatch hands out generations from a thread-local batch claimed off the
// database's shared counter, so the hot allocation path needs no
// synchronization. Each session owns one.
type genBatch struct {
	next uint64
	end  uint64
}

func (b *genBatch) generate(shared *atomic.Uint64, batchSize uint64) uint64 {
	if b.next == b.end {
		b.claim(shared, batchSize)
	}
	g := b.next
	b.next++
	return g
}

func (b *genBatch) claim(shared *atomic.Uint64, batchSize uint64) {
	for {
		cur := shared.Load()
		end := cur + batchSize
		if end > MaxGen {
			panic("objdb: generation space exhausted")
		}
		if shared.CompareAndSwap(cur, end) {
			b.next, b.end = cur, end
			return
		}
	}
}
