// internal/browser/events/dispatcher.go
package events

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
)

// State is where a Dispatcher is in its cycle.
type State int32

const (
	StateIdle State = iota
	StateButtonsPolled
	StateDispatching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateButtonsPolled:
		return "buttons_polled"
	case StateDispatching:
		return "dispatching"
	}
	return "unknown"
}

// Caller invokes a named script function.
type Caller interface {
	CallFunction(ctx context.Context, name string, args ...interface{}) (interface{}, error)
}

// Result summarizes one dispatch.
type Result struct {
	Hits      []*dom.Node
	Callbacks []string
	Calls     int
	Failures  int
}

// Dispatcher hit-tests pointer input against a scene tree and calls the
// matching script callbacks. Every node under the pointer fires, not just
// the topmost one.
type Dispatcher struct {
	logger *zap.Logger
	state  atomic.Int32
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger.Named("events")}
}

// State returns the current phase. It is safe to call from any goroutine.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Dispatch processes in against root. No node lock is held while a callback
// runs, so callbacks are free to mutate the tree through the bridge. A
// failing callback is logged and the remaining ones still run.
func (d *Dispatcher) Dispatch(ctx context.Context, root *dom.Node, in Input, caller Caller) Result {
	d.state.Store(int32(StateButtonsPolled))
	defer d.state.Store(int32(StateIdle))

	var res Result
	if len(in.Pressed) == 0 || root == nil {
		return res
	}

	wanted := make(map[string]bool, len(in.Pressed))
	for _, b := range in.Pressed {
		if name := b.EventName(); name != "" {
			wanted[name] = true
		}
	}

	// The pointer position is captured once in 'in'; collection only reads
	// records and finishes before any script runs.
	dom.ForEachDescendant(root, func(n *dom.Node) {
		if n.Kind() == dom.KindScript {
			return
		}
		if !n.Geometry().Get().Contains(in.X, in.Y) {
			return
		}
		res.Hits = append(res.Hits, n)
		for _, ev := range n.EventsSnapshot() {
			if wanted[ev.Name] {
				res.Callbacks = append(res.Callbacks, ev.Callback)
			}
		}
	})

	if len(res.Callbacks) == 0 {
		return res
	}

	d.state.Store(int32(StateDispatching))
	for _, cb := range res.Callbacks {
		for _, b := range in.Pressed {
			res.Calls++
			if _, err := caller.CallFunction(ctx, cb, int(b)); err != nil {
				res.Failures++
				d.logger.Warn("Event callback failed.",
					zap.String("callback", cb),
					zap.Stringer("button", b),
					zap.Error(err))
			}
		}
	}

	d.logger.Debug("Dispatched pointer input.",
		zap.Float32("x", in.X), zap.Float32("y", in.Y),
		zap.Int("hits", len(res.Hits)),
		zap.Int("calls", res.Calls),
		zap.Int("failures", res.Failures))
	return res
}
