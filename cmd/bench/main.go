// Profiling:
// go build ./cmd/bench
// go tool pprof -http=":8000" -nodefraction=0.001 ./bench cpu.pprof

package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/pkg/profile"

	"github.com/slotdb/slotdb/internal/core/objdb"
)

type transform struct {
	Pos [3]float64
	Rot [4]float64
}

func main() {
	rounds := flag.Int("rounds", 50, "number of rounds")
	objects := flag.Int("objects", 10000, "objects per round")
	mem := flag.Bool("mem", false, "profile allocations instead of CPU")
	flag.Parse()

	mode := profile.CPUProfile
	if *mem {
		mode = profile.MemProfileAllocs
	}
	p := profile.Start(mode, profile.ProfilePath("."), profile.NoShutdownHook)
	start := time.Now()
	run(*rounds, *objects)
	elapsed := time.Since(start)
	p.Stop()

	total := *rounds * *objects
	fmt.Printf("%d alloc/get/destroy cycles in %v (%.0f ns/op)\n",
		total, elapsed, float64(elapsed.Nanoseconds())/float64(total))
}

func run(rounds, objects int) {
	db := objdb.New()
	lock := db.ReserveLock("bench")

	for range rounds {
		s := db.MustNewSession(lock)
		s.ReserveSlotCapacity(objects)

		handles := make([]objdb.Obj[transform], 0, objects)
		for i := range objects {
			handles = append(handles, objdb.NewObjIn(s, lock, transform{
				Pos: [3]float64{float64(i), 0, 0},
			}))
		}
		for _, h := range handles {
			t := h.Get(s)
			t.Pos[1] += 1
		}
		for _, h := range handles {
			h.Destroy(s)
		}
		s.Close()
	}
}
