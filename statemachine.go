package katachi

// Transition is one candidate edge out of a state. Given the step input it
// either returns the next state and true, or false to let the next candidate
// try. Transitions run in table order and the first match wins.
type Transition[S comparable, I any] func(input I) (S, bool)

// Row declares the ordered transition list for one state. Declaration order
// is semantic: the first row's state is the machine's default initial state,
// and within a row the first matching transition fires.
type Row[S comparable, I any] struct {
	State       S
	Transitions []Transition[S, I]
}

// Table is an ordered transition table. It is a slice rather than a map
// because both row order and transition order carry meaning.
type Table[S comparable, I any] []Row[S, I]

// Step records one taken transition, published on the Triggered channel.
type Step[S comparable, I any] struct {
	From  S
	To    S
	Input I
}

// StateMachine is a table-driven transition engine. It is always in exactly
// one state; feeding it input through Step is the only way to move it, and
// Reset is the only way to rewind it. Transitions and their side effects are
// observed through the notification channels, so collaborators (sound, UI,
// an outer machine in a nested arrangement) subscribe rather than being
// called directly.
//
// The machine is a plain value with no goroutine behind it: "suspension"
// between inputs is just the time between Step calls.
type StateMachine[S comparable, I any] struct {
	rows    Table[S, I]
	index   map[S]int
	initial S
	current S

	// Entered fires with the new state after every taken transition and
	// after Reset.
	Entered *Channel[S]
	// Exited fires with the old state before the new one is entered.
	Exited *Channel[S]
	// Triggered fires with the full (from, to, input) record of every taken
	// transition.
	Triggered *Channel[Step[S, I]]
	// NotTriggered fires with the input whenever no transition matched. The
	// machine stays put; this is informational, not an error.
	NotTriggered *Channel[I]
}

// NewStateMachine builds a machine from an ordered transition table. The
// initial state defaults to the first row's state; pass one explicit initial
// state to override. It panics on an empty table or an initial state that is
// not a table row, both construction-time programmer errors.
func NewStateMachine[S comparable, I any](table Table[S, I], initial ...S) *StateMachine[S, I] {
	if len(table) == 0 {
		panic("katachi: state machine table is empty")
	}
	m := &StateMachine[S, I]{
		rows:         table,
		index:        make(map[S]int, len(table)),
		Entered:      NewChannel[S](nil),
		Exited:       NewChannel[S](nil),
		Triggered:    NewChannel[Step[S, I]](nil),
		NotTriggered: NewChannel[I](nil),
	}
	for i, row := range table {
		if _, dup := m.index[row.State]; dup {
			panic("katachi: duplicate state machine table row")
		}
		m.index[row.State] = i
	}
	m.initial = table[0].State
	if len(initial) > 0 {
		if _, ok := m.index[initial[0]]; !ok {
			panic("katachi: initial state not in table")
		}
		m.initial = initial[0]
	}
	m.current = m.initial
	return m
}

// Current returns the machine's current state.
func (m *StateMachine[S, I]) Current() S {
	return m.current
}

// Initial returns the declared initial state.
func (m *StateMachine[S, I]) Initial() S {
	return m.initial
}

// Step feeds one input to the machine and returns the state after the step.
// The transitions of the current state's row are tried in table order; the
// first to match wins and the rest are skipped. If none match, or the
// machine sits in a state with no row (a de facto terminal state), the input
// is a no-op reported through NotTriggered.
func (m *StateMachine[S, I]) Step(input I) S {
	i, ok := m.index[m.current]
	if !ok {
		m.NotTriggered.Publish(input)
		return m.current
	}
	for _, t := range m.rows[i].Transitions {
		next, triggered := t(input)
		if !triggered {
			continue
		}
		from := m.current
		m.Exited.Publish(from)
		m.current = next
		m.Triggered.Publish(Step[S, I]{From: from, To: next, Input: input})
		m.Entered.Publish(next)
		return m.current
	}
	m.NotTriggered.Publish(input)
	return m.current
}

// Reset unconditionally returns the machine to its declared initial state
// without running any transition function. Exited and Entered fire so
// observers see the rewind; Triggered does not, because no transition was
// taken.
func (m *StateMachine[S, I]) Reset() {
	from := m.current
	m.Exited.Publish(from)
	m.current = m.initial
	m.Entered.Publish(m.initial)
}

// On is a Transition that fires on one exact input value.
func On[S, I comparable](input I, to S) Transition[S, I] {
	return func(in I) (S, bool) {
		var zero S
		if in == input {
			return to, true
		}
		return zero, false
	}
}

// Always is a Transition that fires on any input.
func Always[S comparable, I any](to S) Transition[S, I] {
	return func(I) (S, bool) {
		return to, true
	}
}

// When is a Transition guarded by a predicate over the input.
func When[S comparable, I any](cond func(I) bool, to S) Transition[S, I] {
	return func(in I) (S, bool) {
		var zero S
		if cond(in) {
			return to, true
		}
		return zero, false
	}
}
