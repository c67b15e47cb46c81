package katachi

// Timer repeat counts. A timer fires Repeat times in total; RepeatForever
// never stops.
const (
	RepeatForever = 0
	Once          = 1
)

// Timer is a component: an entity carrying one counts down by the frame
// delta and fires through the world's event bus. There is no background
// timer thread: a timer only advances while TimerSystem runs, and a paused
// frame leaves it untouched.
//
// Cancellation is cooperative: remove the component and the system simply
// stops seeing it.
type Timer struct {
	// Remaining is the time left before the next firing, in seconds.
	Remaining float64
	// Interval is the delay the timer re-arms to after each firing.
	Interval float64
	// Repeat is how many firings are left; RepeatForever means no limit.
	Repeat int
	// Done marks a timer that has fired its last time. It stays on the
	// entity until removed, so callers can observe completion.
	Done bool
}

// NewTimer returns a one-shot timer that fires after delay seconds.
func NewTimer(delay float64) Timer {
	return Timer{Remaining: delay, Interval: delay, Repeat: Once}
}

// NewRepeatingTimer returns a timer that fires every interval seconds, count
// times in total. Pass RepeatForever to never stop.
func NewRepeatingTimer(interval float64, count int) Timer {
	return Timer{Remaining: interval, Interval: interval, Repeat: count}
}

// TimerFired is published on the world's event bus each time a timer
// elapses. Subscribers look up the entity's other components for context.
type TimerFired struct {
	Entity Entity
}

// TimerSystem advances every Timer component by the frame delta and publishes
// TimerFired for each elapsed interval. A large delta can fire a repeating
// timer several times in one tick; each firing is published separately.
// Paused frames are skipped entirely.
func TimerSystem(w *World, f Frame) {
	if f.Paused {
		return
	}
	EachEntity(w, func(e Entity, t *Timer) {
		if t.Done {
			return
		}
		t.Remaining -= f.Delta
		for t.Remaining <= 0 && !t.Done {
			Publish(w.Events(), TimerFired{Entity: e})
			if t.Repeat != RepeatForever {
				t.Repeat--
				if t.Repeat <= 0 {
					t.Done = true
					return
				}
			}
			t.Remaining += t.Interval
			if t.Interval <= 0 {
				// Zero-interval repeaters would spin forever.
				t.Done = true
			}
		}
	})
}

// InstallTimers registers the Timer component and the timer system on the
// world. Idempotent; call once during world setup.
func InstallTimers(w *World) error {
	if _, err := RegisterComponent[Timer](w, "Timer"); err != nil {
		return err
	}
	w.AddSystem("timers", TimerSystem)
	return nil
}

// StartTimer attaches a timer component to the entity, replacing any timer it
// already carries.
func StartTimer(w *World, e Entity, t Timer) error {
	return SetComponent(w, e, t)
}

// CancelTimer removes the entity's timer component. Cancelling an entity with
// no timer returns ErrNotPresent.
func CancelTimer(w *World, e Entity) error {
	return RemoveComponent[Timer](w, e)
}
