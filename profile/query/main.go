// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.prof

package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/edwinsyarief/katachi"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

type health struct {
	Current, Max int
}

func main() {
	// CPU Profiling
	f, _ := os.Create("cpu.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	rounds := 50
	iters := 10000
	entities := 100000
	run(rounds, iters, entities)

	// Memory Profiling
	memFile, _ := os.Create("mem.prof")
	defer memFile.Close()
	runtime.GC() // Trigger garbage collection
	_ = pprof.WriteHeapProfile(memFile)
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := katachi.NewWorld(numEntities)
		katachi.MustRegisterComponent[position](w, "Position")
		katachi.MustRegisterComponent[velocity](w, "Velocity")
		katachi.MustRegisterComponent[health](w, "Health")

		for i := range numEntities {
			e := w.CreateEntity()
			_ = katachi.SetComponent(w, e, position{})
			_ = katachi.SetComponent(w, e, velocity{X: float64(i), Y: 1})
			if i%2 == 0 {
				_ = katachi.SetComponent(w, e, health{Current: 100, Max: 100})
			}
		}

		for range iters {
			katachi.Each2(w, func(_ katachi.Entity, p *position, v *velocity) {
				p.X += v.X
				p.Y += v.Y
			})
		}
	}
}
