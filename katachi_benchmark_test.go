package katachi_test

import (
	"fmt"
	"testing"

	"github.com/edwinsyarief/katachi"
)

func benchWorld(size int) *katachi.World {
	w := katachi.NewWorld(size)
	katachi.MustRegisterComponent[Position](w, "Position")
	katachi.MustRegisterComponent[Velocity](w, "Velocity")
	katachi.MustRegisterComponent[Health](w, "Health")
	return w
}

func BenchmarkCreateEntity(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			b.ReportAllocs()
			w := benchWorld(size)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if w.EntityCount() >= size {
					b.StopTimer()
					w.ClearEntities()
					b.StartTimer()
				}
				w.CreateEntity()
			}
		})
	}
}

func BenchmarkSetComponent(b *testing.B) {
	w := benchWorld(1024)
	e := w.CreateEntity()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = katachi.SetComponent(w, e, Position{X: float64(i)})
	}
}

func BenchmarkGetComponent(b *testing.B) {
	w := benchWorld(1024)
	e := w.CreateEntity()
	_ = katachi.SetComponent(w, e, Position{X: 1})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, _ := katachi.GetComponent[Position](w, e)
		_ = p
	}
}

func BenchmarkQueryTwoComponents(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			w := benchWorld(size)
			for i := 0; i < size; i++ {
				e := w.CreateEntity()
				_ = katachi.SetComponent(w, e, Position{})
				if i%2 == 0 {
					_ = katachi.SetComponent(w, e, Velocity{})
				}
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = w.QueryNames("Position", "Velocity")
			}
		})
	}
}

func BenchmarkEach2Iteration(b *testing.B) {
	w := benchWorld(100000)
	for i := 0; i < 100000; i++ {
		e := w.CreateEntity()
		_ = katachi.SetComponent(w, e, Position{})
		_ = katachi.SetComponent(w, e, Velocity{VX: 1})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		katachi.Each2(w, func(e katachi.Entity, p *Position, v *Velocity) {
			p.X += v.VX
		})
	}
}

func BenchmarkStateMachineStep(b *testing.B) {
	m := newSafe()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Step(i % 4)
		if m.Current() == "unlocked" {
			m.Reset()
		}
	}
}
