package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	script, err := Parse([]byte(`
scenes:
  intro:
    - speak: {actor: guide, line: "Welcome."}
    - pause: 1.5
    - set: {visited: "true"}
    - jump: {to: market}
  market:
    - speak: {actor: trader, line: "Buy something?"}
    - options:
        - {text: "Leave", to: end}
        - {text: "Back", to: intro}
`))
	require.NoError(t, err)
	require.Len(t, script.Scenes, 2)

	// Scene order follows the document, not map iteration.
	assert.Equal(t, "intro", script.Scenes[0].Name)
	assert.Equal(t, "market", script.Scenes[1].Name)

	intro := script.Scenes[0]
	require.Len(t, intro.Actions, 4)
	assert.Equal(t, KindSpeak, intro.Actions[0].Kind)
	assert.Equal(t, "guide", intro.Actions[0].Actor)
	assert.Equal(t, "Welcome.", intro.Actions[0].Line)
	assert.Equal(t, KindPause, intro.Actions[1].Kind)
	assert.Equal(t, 1.5, intro.Actions[1].Seconds)
	assert.Equal(t, KindSet, intro.Actions[2].Kind)
	assert.Equal(t, map[string]string{"visited": "true"}, intro.Actions[2].Assign)
	assert.Equal(t, KindJump, intro.Actions[3].Kind)
	assert.Equal(t, "market", intro.Actions[3].Target)

	market := script.Scenes[1]
	require.Len(t, market.Actions, 2)
	assert.Equal(t, KindOptions, market.Actions[1].Kind)
	require.Len(t, market.Actions[1].Options, 2)
	assert.Equal(t, EndScene, market.Actions[1].Options[0].To)
}

func TestParseActionGuards(t *testing.T) {
	script, err := Parse([]byte(`
scenes:
  s:
    - speak: {actor: a, line: "always"}
    - speak: {actor: a, line: "sometimes"}
      if: "flag"
`))
	require.NoError(t, err)
	actions := script.Scenes[0].Actions
	assert.Empty(t, actions[0].If)
	assert.Equal(t, "flag", actions[1].If)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"not yaml":       "scenes: [",
		"no scenes key":  "other: {}",
		"empty scenes":   "scenes: {}",
		"reserved name":  "scenes:\n  end:\n    - pause: 1",
		"empty scene":    "scenes:\n  s: []",
		"scene not list": "scenes:\n  s: {speak: {}}",
		"no action key":  "scenes:\n  s:\n    - if: \"x\"",
		"two action keys": `
scenes:
  s:
    - speak: {actor: a, line: b}
      pause: 1
`,
		"negative pause": "scenes:\n  s:\n    - pause: -1",
		"jump to missing scene": `
scenes:
  s:
    - jump: {to: nowhere}
`,
		"option to missing scene": `
scenes:
  s:
    - options:
        - {text: t, to: nowhere}
`,
		"options without options": "scenes:\n  s:\n    - options: []",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.ErrorIs(t, err, ErrBadScript)
		})
	}
}

func TestScriptSceneLookup(t *testing.T) {
	script, err := Parse([]byte("scenes:\n  only:\n    - pause: 1"))
	require.NoError(t, err)

	s, ok := script.scene("only")
	require.True(t, ok)
	assert.Equal(t, "only", s.Name)

	_, ok = script.scene("missing")
	assert.False(t, ok)
}
