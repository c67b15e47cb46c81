package katachi

import (
	"errors"
	"fmt"
)

// ErrUnknownScreen is returned when asking the screen manager for a screen it
// was never given.
var ErrUnknownScreen = errors.New("katachi: unknown screen")

// Screen is one screen or menu in an application: an opaque bundle of
// callbacks the manager drives. Any of the three may be nil. Rendering and
// input live entirely on the caller's side of these callbacks.
type Screen struct {
	// Enter runs when the screen becomes current.
	Enter func()
	// Update runs once per frame while the screen is current.
	Update func(Frame)
	// Exit runs when the screen stops being current.
	Exit func()
}

// ScreenManager drives screen and menu transitions with a state machine over
// screen names. The first screen added is the initial one; any added screen
// may transition to any other. Enter and Exit hooks ride on the machine's
// notification channels.
type ScreenManager struct {
	screens map[string]Screen
	order   []string
	machine *StateMachine[string, string]
}

// NewScreenManager returns an empty manager. Add screens, then Start.
func NewScreenManager() *ScreenManager {
	return &ScreenManager{screens: make(map[string]Screen)}
}

// Add registers a screen under a name. Adding after Start, or reusing a
// name, is an error.
func (sm *ScreenManager) Add(name string, screen Screen) error {
	if sm.machine != nil {
		return errors.New("katachi: screen manager already started")
	}
	if _, dup := sm.screens[name]; dup {
		return fmt.Errorf("katachi: screen %q added twice", name)
	}
	sm.screens[name] = screen
	sm.order = append(sm.order, name)
	return nil
}

// Start builds the transition table and enters the first added screen.
func (sm *ScreenManager) Start() error {
	if sm.machine != nil {
		return errors.New("katachi: screen manager already started")
	}
	if len(sm.order) == 0 {
		return errors.New("katachi: screen manager has no screens")
	}
	table := make(Table[string, string], 0, len(sm.order))
	for _, name := range sm.order {
		table = append(table, Row[string, string]{
			State: name,
			Transitions: []Transition[string, string]{
				sm.toKnownScreen,
			},
		})
	}
	sm.machine = NewStateMachine(table)
	sm.machine.Exited.Notify(func(name string) {
		if s, ok := sm.screens[name]; ok && s.Exit != nil {
			s.Exit()
		}
	})
	sm.machine.Entered.Notify(func(name string) {
		if s, ok := sm.screens[name]; ok && s.Enter != nil {
			s.Enter()
		}
	})
	if enter := sm.screens[sm.order[0]].Enter; enter != nil {
		enter()
	}
	return nil
}

// toKnownScreen is the single transition shared by every row: any registered
// screen name moves the machine there.
func (sm *ScreenManager) toKnownScreen(name string) (string, bool) {
	_, ok := sm.screens[name]
	return name, ok
}

// Show transitions to the named screen, firing the current screen's Exit and
// the target's Enter. Unknown names are rejected.
func (sm *ScreenManager) Show(name string) error {
	if sm.machine == nil {
		return errors.New("katachi: screen manager not started")
	}
	if _, ok := sm.screens[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScreen, name)
	}
	sm.machine.Step(name)
	return nil
}

// Current returns the name of the current screen, or "" before Start.
func (sm *ScreenManager) Current() string {
	if sm.machine == nil {
		return ""
	}
	return sm.machine.Current()
}

// Update runs the current screen's per-frame callback.
func (sm *ScreenManager) Update(f Frame) {
	if sm.machine == nil {
		return
	}
	if s, ok := sm.screens[sm.machine.Current()]; ok && s.Update != nil {
		s.Update(f)
	}
}
