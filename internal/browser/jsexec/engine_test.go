package jsexec_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/capsule-browser/internal/browser/jsexec"
)

func newTestEngine(t *testing.T, opts ...jsexec.Option) (*jsexec.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return jsexec.New(zap.New(core), opts...), logs
}

func TestLoadAndCall(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.LoadAndRun(ctx, "main.js", `
		var clicks = 0;
		function onClick(button) { clicks += button; return clicks; }
	`))

	result, err := engine.CallFunction(ctx, "onClick", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result)

	result, err = engine.CallFunction(ctx, "onClick", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result)
}

func TestBindExposesGoValues(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	var got []string
	require.NoError(t, engine.Bind("record", func(s string) { got = append(got, s) }))
	require.NoError(t, engine.Bind("answer", 42))

	require.NoError(t, engine.LoadAndRun(ctx, "bind.js", `record("v" + answer);`))
	assert.Equal(t, []string{"v42"}, got)
}

func TestScriptErrors(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("syntax error on load", func(t *testing.T) {
		err := engine.LoadAndRun(ctx, "broken.js", `function (`)
		var scriptErr *jsexec.ScriptError
		require.True(t, errors.As(err, &scriptErr))
		assert.Equal(t, "load", scriptErr.Op)
		assert.Equal(t, "broken.js", scriptErr.Name)
	})

	t.Run("exception in call", func(t *testing.T) {
		require.NoError(t, engine.LoadAndRun(ctx, "throws.js", `function boom() { throw new Error("kaboom"); }`))
		_, err := engine.CallFunction(ctx, "boom")
		var scriptErr *jsexec.ScriptError
		require.True(t, errors.As(err, &scriptErr))
		assert.Equal(t, "call", scriptErr.Op)
		assert.Contains(t, err.Error(), "kaboom")
	})

	t.Run("missing function", func(t *testing.T) {
		_, err := engine.CallFunction(ctx, "doesNotExist")
		assert.ErrorIs(t, err, jsexec.ErrNotCallable)
	})

	// The engine stays usable after every failure above.
	require.NoError(t, engine.LoadAndRun(ctx, "ok.js", `var fine = true;`))
}

func TestPanicInBoundFunctionIsRecovered(t *testing.T) {
	engine, _ := newTestEngine(t)

	require.NoError(t, engine.Bind("explode", func() { panic("go side failure") }))
	err := engine.LoadAndRun(context.Background(), "panic.js", `explode();`)

	var scriptErr *jsexec.ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Contains(t, err.Error(), "go side failure")
}

func TestCallbackTimeoutInterrupts(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine, _ := newTestEngine(t, jsexec.WithCallbackTimeout(50*time.Millisecond))
	ctx := context.Background()
	require.NoError(t, engine.LoadAndRun(ctx, "loop.js", `
		function spin() { for (;;) {} }
		function quick() { return "done"; }
	`))

	start := time.Now()
	_, err := engine.CallFunction(ctx, "spin")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)

	// The interrupt must not leak into the next call.
	result, err := engine.CallFunction(ctx, "quick")
	require.NoError(t, err)
	assert.Equal(t, "done", result)
}

func TestCanceledContextInterruptsLoad(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := engine.LoadAndRun(ctx, "forever.js", `for (;;) {}`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsoleRoutesToLogger(t *testing.T) {
	engine, logs := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.LoadAndRun(ctx, "log.js", `
		print("hello", 1);
		console.warn({a: 1});
		console.error("bad");
	`))

	script := logs.Filter(func(e observer.LoggedEntry) bool {
		return e.LoggerName == "script"
	}).All()
	require.Len(t, script, 3)
	assert.Equal(t, "hello 1", script[0].Message)
	assert.Equal(t, zapcore.InfoLevel, script[0].Level)
	assert.Equal(t, `{"a":1}`, script[1].Message)
	assert.Equal(t, zapcore.WarnLevel, script[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, script[2].Level)
}
