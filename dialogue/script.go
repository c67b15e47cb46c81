// Package dialogue compiles dialogue scripts into nested state machines and
// runs them. A script is an ordered set of scenes, each an ordered list of
// actions (speak a line, pause, branch on a player option, jump, assign
// shared variables). The compiled form is an outer state machine over scene
// names whose scenes are themselves state machines over action indices; the
// inner machine never learns it is nested; it reports its end through its
// notification channel and the runner feeds the outer machine the next scene.
//
// Scripts are written in YAML. Conditions and assignments are Lua
// expressions evaluated against the shared dialogue context.
package dialogue

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EndScene is the reserved scene name that terminates the dialogue.
const EndScene = "end"

// ActionKind discriminates the variants of Action.
type ActionKind uint8

const (
	// KindSpeak delivers one line of dialogue.
	KindSpeak ActionKind = iota
	// KindPause waits for a duration.
	KindPause
	// KindSet assigns expressions into the shared context.
	KindSet
	// KindOptions prompts the player and branches on the choice.
	KindOptions
	// KindJump moves to another scene, optionally conditionally.
	KindJump
)

// Option is one selectable branch of a KindOptions action.
type Option struct {
	// Text is the label shown to the player.
	Text string `yaml:"text"`
	// To is the scene the choice jumps to; it doubles as the choice's
	// identifier fed back through Runner.Choose.
	To string `yaml:"to"`
	// If is an optional Lua expression; the option is only shown when it
	// evaluates true.
	If string `yaml:"if"`
}

// Action is one step of a scene. Kind selects which fields are meaningful.
type Action struct {
	Kind ActionKind
	// If guards the whole action: when non-empty and false, the action is
	// skipped.
	If string
	// Actor and Line carry a KindSpeak action.
	Actor string
	Line  string
	// Seconds carries a KindPause action.
	Seconds float64
	// Assign carries a KindSet action: variable name to Lua expression.
	Assign map[string]string
	// Options carries a KindOptions action.
	Options []Option
	// Target carries a KindJump action.
	Target string
}

// Scene is a named, ordered action list.
type Scene struct {
	Name    string
	Actions []Action
}

// Script is an ordered set of scenes. The first scene is where a run starts.
type Script struct {
	Scenes []Scene
}

// ErrBadScript is wrapped by every parse or validation failure.
var ErrBadScript = errors.New("dialogue: bad script")

// rawAction mirrors one YAML action mapping before validation.
type rawAction struct {
	Speak *struct {
		Actor string `yaml:"actor"`
		Line  string `yaml:"line"`
	} `yaml:"speak"`
	Pause   *float64          `yaml:"pause"`
	Set     map[string]string `yaml:"set"`
	Options []Option          `yaml:"options"`
	Jump    *struct {
		To string `yaml:"to"`
	} `yaml:"jump"`
	If string `yaml:"if"`
}

// Parse decodes and validates a YAML script. Scene order and action order are
// preserved; YAML mapping order is semantic here, which is why scenes are
// decoded from the node tree rather than into a Go map.
func Parse(data []byte) (*Script, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadScript, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrBadScript)
	}
	root := doc.Content[0]
	var scenesNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "scenes" {
			scenesNode = root.Content[i+1]
		}
	}
	if scenesNode == nil || scenesNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: missing scenes mapping", ErrBadScript)
	}
	script := &Script{}
	for i := 0; i+1 < len(scenesNode.Content); i += 2 {
		name := scenesNode.Content[i].Value
		if name == EndScene {
			return nil, fmt.Errorf("%w: scene name %q is reserved", ErrBadScript, EndScene)
		}
		scene, err := parseScene(name, scenesNode.Content[i+1])
		if err != nil {
			return nil, err
		}
		script.Scenes = append(script.Scenes, scene)
	}
	if len(script.Scenes) == 0 {
		return nil, fmt.Errorf("%w: no scenes", ErrBadScript)
	}
	return script, script.validate()
}

func parseScene(name string, node *yaml.Node) (Scene, error) {
	if node.Kind != yaml.SequenceNode {
		return Scene{}, fmt.Errorf("%w: scene %q is not an action list", ErrBadScript, name)
	}
	scene := Scene{Name: name}
	for n, item := range node.Content {
		var raw rawAction
		if err := item.Decode(&raw); err != nil {
			return Scene{}, fmt.Errorf("%w: scene %q action %d: %v", ErrBadScript, name, n, err)
		}
		action, err := raw.toAction()
		if err != nil {
			return Scene{}, fmt.Errorf("%w: scene %q action %d: %v", ErrBadScript, name, n, err)
		}
		scene.Actions = append(scene.Actions, action)
	}
	if len(scene.Actions) == 0 {
		return Scene{}, fmt.Errorf("%w: scene %q has no actions", ErrBadScript, name)
	}
	return scene, nil
}

func (raw rawAction) toAction() (Action, error) {
	a := Action{If: raw.If}
	variants := 0
	if raw.Speak != nil {
		variants++
		a.Kind = KindSpeak
		a.Actor = raw.Speak.Actor
		a.Line = raw.Speak.Line
	}
	if raw.Pause != nil {
		variants++
		a.Kind = KindPause
		a.Seconds = *raw.Pause
		if a.Seconds < 0 {
			return a, errors.New("negative pause")
		}
	}
	if raw.Set != nil {
		variants++
		a.Kind = KindSet
		a.Assign = raw.Set
	}
	if raw.Options != nil {
		variants++
		a.Kind = KindOptions
		a.Options = raw.Options
	}
	if raw.Jump != nil {
		variants++
		a.Kind = KindJump
		a.Target = raw.Jump.To
	}
	if variants != 1 {
		return a, fmt.Errorf("want exactly one action key, got %d", variants)
	}
	return a, nil
}

// validate checks every jump and option target against the scene set.
func (s *Script) validate() error {
	known := make(map[string]bool, len(s.Scenes)+1)
	known[EndScene] = true
	for _, scene := range s.Scenes {
		known[scene.Name] = true
	}
	for _, scene := range s.Scenes {
		for n, a := range scene.Actions {
			switch a.Kind {
			case KindJump:
				if !known[a.Target] {
					return fmt.Errorf("%w: scene %q action %d jumps to missing scene %q",
						ErrBadScript, scene.Name, n, a.Target)
				}
			case KindOptions:
				if len(a.Options) == 0 {
					return fmt.Errorf("%w: scene %q action %d has no options",
						ErrBadScript, scene.Name, n)
				}
				for _, o := range a.Options {
					if !known[o.To] {
						return fmt.Errorf("%w: scene %q action %d option %q targets missing scene %q",
							ErrBadScript, scene.Name, n, o.Text, o.To)
					}
				}
			}
		}
	}
	return nil
}

// scene looks a scene up by name.
func (s *Script) scene(name string) (*Scene, bool) {
	for i := range s.Scenes {
		if s.Scenes[i].Name == name {
			return &s.Scenes[i], true
		}
	}
	return nil, false
}
