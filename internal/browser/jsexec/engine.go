// internal/browser/jsexec/engine.go
package jsexec

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Engine owns one goja runtime. A document gets a fresh Engine on every load
// so no script state survives a reload.
//
// goja runtimes are not safe for concurrent use. Entry points from Go
// (LoadAndRun, CallFunction, Bind) serialize on execMu. Go functions invoked
// from inside a running script execute on the same goroutine and must use
// the runtime directly through the value they were bound with.
type Engine struct {
	vm     *goja.Runtime
	logger *zap.Logger

	execMu sync.Mutex

	loadTimeout     time.Duration
	callbackTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithCallbackTimeout bounds each CallFunction. Zero disables the watchdog.
func WithCallbackTimeout(d time.Duration) Option {
	return func(e *Engine) { e.callbackTimeout = d }
}

// WithLoadTimeout bounds each LoadAndRun. Zero disables the watchdog.
func WithLoadTimeout(d time.Duration) Option {
	return func(e *Engine) { e.loadTimeout = d }
}

func New(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		vm:     goja.New(),
		logger: logger.Named("jsexec"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.installConsole(logger.Named("script"))
	return e
}

// Runtime exposes the underlying VM for building bound objects. Values created
// on it must only be touched while the engine is executing or before it has
// been shared.
func (e *Engine) Runtime() *goja.Runtime {
	return e.vm
}

// Bind exposes value as a global named name.
func (e *Engine) Bind(name string, value interface{}) error {
	e.execMu.Lock()
	defer e.execMu.Unlock()
	if err := e.vm.Set(name, value); err != nil {
		return fmt.Errorf("binding global %q: %w", name, err)
	}
	return nil
}

// LoadAndRun compiles and runs src at the top level.
func (e *Engine) LoadAndRun(ctx context.Context, name, src string) error {
	e.execMu.Lock()
	defer e.execMu.Unlock()

	release := e.watch(ctx, e.loadTimeout)
	defer release()

	_, err := e.guard(func() (goja.Value, error) {
		return e.vm.RunScript(name, src)
	})
	if err != nil {
		return &ScriptError{Op: "load", Name: name, Err: err}
	}
	e.logger.Debug("Script loaded.", zap.String("script", name))
	return nil
}

// CallFunction calls the global function name with args converted to script
// values and returns the exported result.
func (e *Engine) CallFunction(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	e.execMu.Lock()
	defer e.execMu.Unlock()

	fn, ok := goja.AssertFunction(e.vm.Get(name))
	if !ok {
		return nil, &ScriptError{Op: "call", Name: name, Err: ErrNotCallable}
	}

	release := e.watch(ctx, e.callbackTimeout)
	defer release()

	values := make([]goja.Value, len(args))
	for i, arg := range args {
		values[i] = e.vm.ToValue(arg)
	}
	result, err := e.guard(func() (goja.Value, error) {
		return fn(goja.Undefined(), values...)
	})
	if err != nil {
		return nil, &ScriptError{Op: "call", Name: name, Err: err}
	}
	if result == nil {
		return nil, nil
	}
	return result.Export(), nil
}

// watch interrupts the VM when ctx ends or timeout elapses. The returned
// func must be called once execution has returned; it waits for an interrupt
// that is already in flight so the next run starts clean.
func (e *Engine) watch(ctx context.Context, timeout time.Duration) func() {
	cancel := func() {}
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		e.vm.Interrupt(ctx.Err())
		close(fired)
	})

	return func() {
		if !stop() {
			<-fired
		}
		e.vm.ClearInterrupt()
		cancel()
	}
}

// guard converts goja failures and Go panics raised by bound functions into
// plain errors.
func (e *Engine) guard(run func() (goja.Value, error)) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Recovered panic in script execution.", zap.Any("panic", r))
			v, err = nil, fmt.Errorf("panic in bound function: %v", r)
		}
	}()

	v, err = run()
	if err == nil {
		return v, nil
	}
	switch typed := err.(type) {
	case *goja.InterruptedError:
		if cause, ok := typed.Value().(error); ok {
			return nil, fmt.Errorf("script interrupted: %w", cause)
		}
		return nil, fmt.Errorf("script interrupted: %v", typed.Value())
	case *goja.Exception:
		return nil, fmt.Errorf("uncaught exception: %w", typed)
	}
	return nil, err
}

// installConsole routes print and console.* to logger.
func (e *Engine) installConsole(logger *zap.Logger) {
	logFunc := func(level zapcore.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = e.stringify(arg)
			}
			logger.Log(level, strings.Join(parts, " "))
			return goja.Undefined()
		}
	}

	console := e.vm.NewObject()
	_ = console.Set("log", logFunc(zap.InfoLevel))
	_ = console.Set("info", logFunc(zap.InfoLevel))
	_ = console.Set("warn", logFunc(zap.WarnLevel))
	_ = console.Set("error", logFunc(zap.ErrorLevel))
	_ = console.Set("debug", logFunc(zap.DebugLevel))
	_ = e.vm.Set("console", console)
	_ = e.vm.Set("print", logFunc(zap.InfoLevel))
}

// stringify renders plain objects and arrays as JSON and everything else
// with the script's own string conversion.
func (e *Engine) stringify(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	obj, isObj := v.(*goja.Object)
	if !isObj || obj.ClassName() == "Function" {
		return v.String()
	}
	jsonObj, ok := e.vm.Get("JSON").(*goja.Object)
	if !ok {
		return v.String()
	}
	stringifyFn, ok := goja.AssertFunction(jsonObj.Get("stringify"))
	if !ok {
		return v.String()
	}
	out, err := stringifyFn(goja.Undefined(), v)
	if err != nil || goja.IsUndefined(out) {
		return v.String()
	}
	return out.String()
}
