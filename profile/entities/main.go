// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/edwinsyarief/katachi"
	"github.com/pkg/profile"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

func main() {
	rounds := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := katachi.NewWorld(numEntities)
		katachi.MustRegisterComponent[position](w, "Position")
		katachi.MustRegisterComponent[velocity](w, "Velocity")

		for range iters {
			spawned := make([]katachi.Entity, 0, numEntities)
			for range numEntities {
				e := w.CreateEntity()
				_ = katachi.SetComponent(w, e, position{})
				_ = katachi.SetComponent(w, e, velocity{X: 1, Y: 2})
				spawned = append(spawned, e)
			}
			katachi.Each2(w, func(_ katachi.Entity, p *position, v *velocity) {
				p.X += v.X
				p.Y += v.Y
			})
			for _, e := range spawned {
				w.RemoveEntity(e)
			}
		}
	}
}
