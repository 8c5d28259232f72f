// internal/browser/jsbind/bridge.go
package jsbind

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/jsexec"
	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

const handleKey = "__capsule_node__"

// Bridge exposes a document's scene tree to its script engine. Every
// accessor goes through the same per-node records the rest of the program
// uses and copies values out before returning to script code.
type Bridge struct {
	vm     *goja.Runtime
	engine *jsexec.Engine
	root   *dom.Node
	title  string
	logger *zap.Logger

	// Guards the identity map and the detached set.
	mu       sync.Mutex
	handles  map[*dom.Node]*goja.Object
	detached map[*dom.Node]bool
	cbSeq    int
}

// NewBridge prepares a bridge for root. Install must be called before any
// script runs.
func NewBridge(engine *jsexec.Engine, root *dom.Node, title string, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		vm:       engine.Runtime(),
		engine:   engine,
		root:     root,
		title:    title,
		logger:   logger.Named("bridge"),
		handles:  make(map[*dom.Node]*goja.Object),
		detached: make(map[*dom.Node]bool),
	}
}

// Install binds the document global.
func (b *Bridge) Install() error {
	doc := b.vm.NewObject()
	b.defineAccessor(doc, "root", func() goja.Value { return b.Wrap(b.root) }, nil)
	b.defineAccessor(doc, "title", func() goja.Value { return b.vm.ToValue(b.title) }, nil)

	find := func(call goja.FunctionCall) goja.Value {
		return b.Wrap(dom.FindByID(b.root, call.Argument(0).String()))
	}
	_ = doc.Set("findById", find)
	_ = doc.Set("getElementById", find)
	_ = doc.Set("create", b.create)

	return b.engine.Bind("document", doc)
}

// Wrap returns the script handle for n, creating it on first use. The same
// node always maps to the same handle.
func (b *Bridge) Wrap(n *dom.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}

	b.mu.Lock()
	if obj, ok := b.handles[n]; ok {
		b.mu.Unlock()
		return obj
	}
	b.mu.Unlock()

	obj := b.newHandle(n)

	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.handles[n]; ok {
		return existing
	}
	b.handles[n] = obj
	return obj
}

func (b *Bridge) unwrap(v goja.Value) (*dom.Node, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	hv := obj.Get(handleKey)
	if hv == nil {
		return nil, false
	}
	n, ok := hv.Export().(*dom.Node)
	return n, ok && n != nil
}

func (b *Bridge) throw(err error) {
	panic(b.vm.NewGoError(err))
}

// defineAccessor installs a getter and an optional setter in one step.
func (b *Bridge) defineAccessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	var getter, setter goja.Value
	if get != nil {
		getter = b.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	}
	if set != nil {
		setter = b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	if err := obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
		b.logger.Error("Failed to define accessor", zap.String("property", name), zap.Error(err))
	}
}

func (b *Bridge) newHandle(n *dom.Node) *goja.Object {
	h := &nodeHandle{bridge: b, node: n}
	obj := b.vm.NewObject()
	_ = obj.DefineDataProperty(handleKey, b.vm.ToValue(n), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)

	b.defineAccessor(obj, "kind", func() goja.Value { return b.vm.ToValue(n.Kind().String()) }, nil)
	b.defineAccessor(obj, "id", h.getID, h.setID)
	b.defineAccessor(obj, "children", h.children, nil)
	b.defineAccessor(obj, "events", h.events, nil)
	b.defineAccessor(obj, "style", func() goja.Value { return b.newStyleHandle(n.Style()) }, nil)

	geometry := func(pick func(dom.Geometry) float32) func() goja.Value {
		return func() goja.Value {
			return b.vm.ToValue(float64(pick(n.Geometry().Get())))
		}
	}
	b.defineAccessor(obj, "x", geometry(func(g dom.Geometry) float32 { return g.X }), nil)
	b.defineAccessor(obj, "y", geometry(func(g dom.Geometry) float32 { return g.Y }), nil)
	b.defineAccessor(obj, "width", geometry(func(g dom.Geometry) float32 { return g.Width }), nil)
	b.defineAccessor(obj, "height", geometry(func(g dom.Geometry) float32 { return g.Height }), nil)

	_ = obj.Set("findById", h.findByID)
	_ = obj.Set("isText", func(goja.FunctionCall) goja.Value { return b.vm.ToValue(n.Kind() == dom.KindText) })
	_ = obj.Set("on", h.on)
	_ = obj.Set("appendChild", h.appendChild)

	if n.Kind() == dom.KindText {
		b.defineAccessor(obj, "text", h.getText, h.setText)
		_ = obj.Set("getText", func(goja.FunctionCall) goja.Value { return h.getText() })
		_ = obj.Set("setText", func(call goja.FunctionCall) goja.Value {
			h.setText(call.Argument(0))
			return goja.Undefined()
		})
	}
	return obj
}

// create builds a detached node that can later be attached with appendChild.
func (b *Bridge) create(call goja.FunctionCall) goja.Value {
	kind := strings.ToLower(call.Argument(0).String())
	var n *dom.Node
	switch kind {
	case dom.KindContainer.String():
		n = dom.NewNode(dom.KindContainer, nil, nil, nil)
	case dom.KindText.String():
		content := ""
		if arg := call.Argument(1); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
			content = arg.String()
		}
		n = dom.NewTextNode(content, nil, nil)
	default:
		b.throw(&UnknownKindError{Kind: kind})
	}

	b.mu.Lock()
	b.detached[n] = true
	b.mu.Unlock()
	return b.Wrap(n)
}

// registerCallback stores fn under a generated global name so it can be
// referenced from an Event like any named function.
func (b *Bridge) registerCallback(fn goja.Value) string {
	b.mu.Lock()
	b.cbSeq++
	name := fmt.Sprintf("__capsule_cb_%d", b.cbSeq)
	b.mu.Unlock()

	if err := b.vm.Set(name, fn); err != nil {
		b.throw(fmt.Errorf("on: registering callback: %w", err))
	}
	return name
}

// styleValue converts a script value into the text form style.Record.Set
// accepts.
func styleValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

var styleAliases = map[string]string{
	"fontSize":        style.AttrFontSize,
	"backgroundColor": style.AttrBackgroundColor,
	"flexDirection":   style.AttrFlexDirection,
	"flex_direction":  style.AttrFlexDirection,
}

// newStyleHandle exposes a style record. Invalid values are logged and
// leave the field as it was.
func (b *Bridge) newStyleHandle(rec *style.Record) *goja.Object {
	obj := b.vm.NewObject()

	get := func(attr string) goja.Value {
		v, err := rec.Get(attr)
		if err != nil {
			b.throw(err)
		}
		return b.vm.ToValue(v)
	}
	set := func(attr string, v goja.Value) {
		value := styleValue(v)
		if err := rec.Set(attr, value); err != nil {
			b.logger.Warn("Script set an invalid style value, keeping previous.",
				zap.String("attribute", attr), zap.String("value", value), zap.Error(err))
		}
	}

	for _, attr := range style.Attributes {
		b.defineAccessor(obj, attr,
			func() goja.Value { return get(attr) },
			func(v goja.Value) { set(attr, v) })
	}
	for alias, attr := range styleAliases {
		b.defineAccessor(obj, alias,
			func() goja.Value { return get(attr) },
			func(v goja.Value) { set(attr, v) })
	}

	_ = obj.Set("get", func(call goja.FunctionCall) goja.Value {
		return get(call.Argument(0).String())
	})
	_ = obj.Set("set", func(call goja.FunctionCall) goja.Value {
		set(call.Argument(0).String(), call.Argument(1))
		return goja.Undefined()
	})
	return obj
}
