package dialogue

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Env is the shared evaluation context of one dialogue run. Conditions and
// assignments are Lua expressions evaluated in a single sandboxed VM whose
// globals persist across the whole run, so an assignment in one scene is
// visible to a condition in a later one.
//
// Single-goroutine access only, like everything else driven by the game loop.
type Env struct {
	vm *lua.LState
}

// NewEnv creates a sandboxed evaluation environment. Only the base, table,
// string and math libraries are opened; there is no io, os or package access
// from script expressions.
func NewEnv() *Env {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		vm.Push(vm.NewFunction(lib.open))
		vm.Push(lua.LString(lib.name))
		vm.Call(1, 0)
	}
	return &Env{vm: vm}
}

// Close releases the VM. The Env must not be used afterwards.
func (e *Env) Close() {
	e.vm.Close()
}

// Set stores a value as a global in the context. Supported kinds: bool,
// string, int, float64; anything else is stored via its string form.
func (e *Env) Set(name string, value any) {
	e.vm.SetGlobal(name, toLua(value))
}

// Get reads a global back out of the context as a Go value. Missing globals
// return nil.
func (e *Env) Get(name string) any {
	return fromLua(e.vm.GetGlobal(name))
}

// Eval evaluates a single Lua expression and returns its value.
func (e *Env) Eval(expr string) (lua.LValue, error) {
	if err := e.vm.DoString("return " + expr); err != nil {
		return lua.LNil, fmt.Errorf("dialogue: eval %q: %w", expr, err)
	}
	v := e.vm.Get(-1)
	e.vm.Pop(1)
	return v, nil
}

// EvalBool evaluates a condition expression. The empty expression is true,
// so unconditional actions and options need no guard.
func (e *Env) EvalBool(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	v, err := e.Eval(expr)
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(v), nil
}

// Assign evaluates each expression and stores the result under its variable
// name. Assignments in one call see globals written by earlier calls but not
// by each other; evaluation order within a call is unspecified.
func (e *Env) Assign(assignments map[string]string) error {
	for name, expr := range assignments {
		v, err := e.Eval(expr)
		if err != nil {
			return err
		}
		e.vm.SetGlobal(name, v)
	}
	return nil
}

func toLua(value any) lua.LValue {
	switch v := value.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

func fromLua(v lua.LValue) any {
	switch lv := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(lv)
	case lua.LNumber:
		return float64(lv)
	case lua.LString:
		return string(lv)
	default:
		return lv.String()
	}
}
