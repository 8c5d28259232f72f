package jsexec

import (
	"errors"
	"fmt"
)

// ErrNotCallable is wrapped by a ScriptError when CallFunction names a global
// that does not hold a function.
var ErrNotCallable = errors.New("not a callable function")

// ScriptError is any failure raised while loading or calling script code:
// exceptions, interrupts, and missing callbacks.
type ScriptError struct {
	// Op is "load" or "call".
	Op string
	// Name is the script name for loads and the function name for calls.
	Name string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
