package dialogue

import (
	"errors"
	"fmt"

	"github.com/edwinsyarief/katachi"
)

// Callbacks is how a runner delivers actions to the outside. Rendering,
// audio and input live behind these; the runner only sequences them. Any
// callback may be nil.
type Callbacks struct {
	// Speak delivers one line of dialogue.
	Speak func(actor, line string)
	// Pause asks the caller to wait before stepping again.
	Pause func(seconds float64)
	// Prompt shows the currently visible options. The runner re-prompts on
	// every Step until Choose supplies a valid choice.
	Prompt func(options []Option)
}

// Runner executes a compiled script. The control flow is two layers of state
// machine: an outer machine whose states are scene names, and one inner
// machine per scene whose states are action indices. The inner machine
// reports running off its end through its Entered channel; the runner reacts
// by either ending the dialogue or feeding the outer machine the requested
// next scene. Neither machine knows about the other.
type Runner struct {
	script *Script
	env    *Env
	cb     Callbacks

	outer *katachi.StateMachine[string, string]
	inner map[string]*katachi.StateMachine[int, *Env]

	nextScene  string // requested by a jump or resolved option; "" = none
	choice     string // fed in by Choose, consumed by the next options step
	sceneEnded bool   // set by the inner machine's end notification
	waiting    bool   // an options prompt is unresolved
	ended      bool
	evalErr    error // first expression error seen inside a transition
}

// NewRunner compiles the script and positions the run at the first action of
// the first scene.
func NewRunner(script *Script, cb Callbacks) (*Runner, error) {
	if script == nil || len(script.Scenes) == 0 {
		return nil, errors.New("dialogue: empty script")
	}
	r := &Runner{
		script: script,
		env:    NewEnv(),
		cb:     cb,
		inner:  make(map[string]*katachi.StateMachine[int, *Env], len(script.Scenes)),
	}
	outerTable := make(katachi.Table[string, string], 0, len(script.Scenes))
	for i := range script.Scenes {
		scene := &script.Scenes[i]
		r.inner[scene.Name] = r.compileScene(scene)
		outerTable = append(outerTable, katachi.Row[string, string]{
			State: scene.Name,
			Transitions: []katachi.Transition[string, string]{
				r.toKnownScene,
			},
		})
	}
	r.outer = katachi.NewStateMachine(outerTable)
	return r, nil
}

// Close releases the evaluation environment.
func (r *Runner) Close() {
	r.env.Close()
}

// Context returns the shared evaluation context, so the embedding game can
// seed variables before the run and read flags back out afterwards.
func (r *Runner) Context() *Env {
	return r.env
}

// Scene returns the current scene name.
func (r *Runner) Scene() string {
	return r.outer.Current()
}

// Ended reports whether the dialogue has finished.
func (r *Runner) Ended() bool {
	return r.ended
}

// Choose feeds a player choice back into the run. The value is the To field
// of one of the options most recently prompted; anything else is ignored and
// the next Step prompts again.
func (r *Runner) Choose(to string) {
	r.choice = to
}

// Step performs the current action and advances the run. It returns false
// once the dialogue has ended. A pending options prompt does not advance
// until Choose supplies a valid choice.
func (r *Runner) Step() (bool, error) {
	if r.ended {
		return false, nil
	}
	r.waiting = false
	scene, ok := r.script.scene(r.outer.Current())
	if !ok {
		return false, fmt.Errorf("dialogue: no such scene %q", r.outer.Current())
	}
	machine := r.inner[scene.Name]
	idx := machine.Current()
	if idx >= len(scene.Actions) {
		r.ended = true
		return false, nil
	}
	action := &scene.Actions[idx]

	guarded, err := r.env.EvalBool(action.If)
	if err != nil {
		return false, err
	}
	if guarded {
		wait, err := r.perform(action)
		if err != nil {
			return false, err
		}
		if wait {
			// Options are unresolved; stay put and re-prompt next Step.
			r.waiting = true
			return true, nil
		}
	}

	if r.nextScene != "" {
		return r.changeScene(machine)
	}

	r.sceneEnded = false
	machine.Step(r.env)
	if r.evalErr != nil {
		err := r.evalErr
		r.evalErr = nil
		return false, err
	}
	if r.sceneEnded {
		if r.nextScene != "" {
			return r.changeScene(machine)
		}
		// Ran off the end of a scene with nowhere to go.
		r.ended = true
		return false, nil
	}
	return true, nil
}

// Run steps until the dialogue ends or an options prompt needs input.
// It returns true if it stopped on a prompt.
func (r *Runner) Run() (bool, error) {
	for {
		more, err := r.Step()
		if err != nil || !more {
			return false, err
		}
		if r.waiting {
			return true, nil
		}
	}
}

// Waiting reports whether the run is holding on an unresolved options prompt.
func (r *Runner) Waiting() bool {
	return r.waiting
}

// perform executes one action. The second return is true when the run must
// hold still waiting for a choice.
func (r *Runner) perform(action *Action) (bool, error) {
	switch action.Kind {
	case KindSpeak:
		if r.cb.Speak != nil {
			r.cb.Speak(action.Actor, action.Line)
		}
	case KindPause:
		if r.cb.Pause != nil {
			r.cb.Pause(action.Seconds)
		}
	case KindSet:
		if err := r.env.Assign(action.Assign); err != nil {
			return false, err
		}
	case KindJump:
		r.nextScene = action.Target
	case KindOptions:
		visible, err := r.visibleOptions(action)
		if err != nil {
			return false, err
		}
		if r.choice != "" {
			for _, o := range visible {
				if o.To == r.choice {
					r.nextScene = o.To
					r.choice = ""
					return false, nil
				}
			}
			r.choice = ""
		}
		if r.cb.Prompt != nil {
			r.cb.Prompt(visible)
		}
		return true, nil
	}
	return false, nil
}

func (r *Runner) visibleOptions(action *Action) ([]Option, error) {
	visible := make([]Option, 0, len(action.Options))
	for _, o := range action.Options {
		show, err := r.env.EvalBool(o.If)
		if err != nil {
			return nil, err
		}
		if show {
			visible = append(visible, o)
		}
	}
	return visible, nil
}

// changeScene resets the inner machine so a future visit enters the scene
// fresh, then feeds the outer machine the requested scene name.
func (r *Runner) changeScene(current *katachi.StateMachine[int, *Env]) (bool, error) {
	target := r.nextScene
	r.nextScene = ""
	r.sceneEnded = false
	if target == EndScene {
		r.ended = true
		return false, nil
	}
	current.Reset()
	r.outer.Step(target)
	if r.outer.Current() != target {
		return false, fmt.Errorf("dialogue: jump to unknown scene %q", target)
	}
	return true, nil
}

// toKnownScene is the outer machine's only transition: any declared scene
// name moves the machine there.
func (r *Runner) toKnownScene(name string) (string, bool) {
	_, ok := r.inner[name]
	return name, ok
}

// compileScene builds the inner machine for one scene: states are action
// indices, and the single transition out of index i finds the next action
// whose guard passes, or the one-past-the-end terminal state. Entering the
// terminal state is announced through the Entered channel; that announcement
// is the only signal the scene is over.
func (r *Runner) compileScene(scene *Scene) *katachi.StateMachine[int, *Env] {
	n := len(scene.Actions)
	table := make(katachi.Table[int, *Env], 0, n)
	for i := range scene.Actions {
		from := i
		table = append(table, katachi.Row[int, *Env]{
			State: from,
			Transitions: []katachi.Transition[int, *Env]{
				func(env *Env) (int, bool) {
					for j := from + 1; j < n; j++ {
						ok, err := env.EvalBool(scene.Actions[j].If)
						if err != nil {
							r.evalErr = err
							return n, true
						}
						if ok {
							return j, true
						}
					}
					return n, true
				},
			},
		})
	}
	machine := katachi.NewStateMachine(table)
	machine.Entered.Notify(func(idx int) {
		if idx >= n {
			r.sceneEnded = true
		}
	})
	return machine
}
