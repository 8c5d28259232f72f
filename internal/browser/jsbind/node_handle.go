package jsbind

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
)

// nodeHandle implements the methods behind a node's script object.
type nodeHandle struct {
	bridge *Bridge
	node   *dom.Node
}

func (h *nodeHandle) getID() goja.Value {
	return h.bridge.vm.ToValue(h.node.ID())
}

func (h *nodeHandle) setID(v goja.Value) {
	h.node.SetID(styleValue(v))
}

func (h *nodeHandle) children() goja.Value {
	snapshot := h.node.ChildrenSnapshot()
	items := make([]interface{}, len(snapshot))
	for i, c := range snapshot {
		items[i] = h.bridge.Wrap(c)
	}
	return h.bridge.vm.NewArray(items...)
}

func (h *nodeHandle) events() goja.Value {
	snapshot := h.node.EventsSnapshot()
	items := make([]interface{}, len(snapshot))
	for i, e := range snapshot {
		obj := h.bridge.vm.NewObject()
		_ = obj.Set("name", e.Name)
		_ = obj.Set("callback", e.Callback)
		items[i] = obj
	}
	return h.bridge.vm.NewArray(items...)
}

func (h *nodeHandle) findByID(call goja.FunctionCall) goja.Value {
	return h.bridge.Wrap(dom.FindByID(h.node, call.Argument(0).String()))
}

func (h *nodeHandle) getText() goja.Value {
	txt, ok := h.node.AsText()
	if !ok {
		return goja.Undefined()
	}
	return h.bridge.vm.ToValue(txt.Content())
}

func (h *nodeHandle) setText(v goja.Value) {
	h.node.SetText(styleValue(v))
}

// on registers a handler. The name may be given with or without the "on"
// prefix; the callback may be a function or the name of a global function.
func (h *nodeHandle) on(call goja.FunctionCall) goja.Value {
	name := strings.ToLower(call.Argument(0).String())
	if !strings.HasPrefix(name, "on") {
		name = "on" + name
	}

	cb := call.Argument(1)
	var callback string
	if _, isFn := goja.AssertFunction(cb); isFn {
		callback = h.bridge.registerCallback(cb)
	} else {
		callback = strings.TrimSpace(styleValue(cb))
	}
	if callback == "" {
		h.bridge.throw(&InvalidHandleError{Op: "on"})
	}

	h.node.AppendEvent(dom.Event{Name: name, Callback: callback})
	h.bridge.logger.Debug("Event registered from script.", zap.String("event", name), zap.String("callback", callback))
	return goja.Undefined()
}

// appendChild attaches a node made by document.create. Nodes already in a
// tree are rejected.
func (h *nodeHandle) appendChild(call goja.FunctionCall) goja.Value {
	child, ok := h.bridge.unwrap(call.Argument(0))
	if !ok {
		h.bridge.throw(&InvalidHandleError{Op: "appendChild"})
	}
	if h.node.Kind() == dom.KindText || h.node.Kind() == dom.KindScript {
		h.bridge.throw(&AttachError{Reason: h.node.Kind().String() + " nodes cannot have children"})
	}
	if dom.FindNode(child, h.node) {
		h.bridge.throw(&AttachError{Reason: "a node cannot be appended inside itself"})
	}

	b := h.bridge
	b.mu.Lock()
	if !b.detached[child] {
		b.mu.Unlock()
		b.throw(&AttachError{Reason: "node is already attached"})
	}
	delete(b.detached, child)
	b.mu.Unlock()

	h.node.AppendChild(child)
	// The parent's content size changes even if its own style did not.
	h.node.Style().MarkDirty()
	return call.Argument(0)
}
