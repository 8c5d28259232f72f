// browser/dom/node.go
package dom

import (
	"sync"

	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

// Event binds an event name such as "onclick" to the name of a script
// function. Events are never removed.
type Event struct {
	Name     string `json:"name"`
	Callback string `json:"callback"`
}

// Text is the mutable content of a text node.
type Text struct {
	mu      sync.RWMutex
	content string
}

func (t *Text) Content() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.content
}

func (t *Text) setContent(s string) {
	t.mu.Lock()
	t.content = s
	t.mu.Unlock()
}

// Node is a single element of the scene tree. Children and events only ever
// grow, and the style and geometry records are shared with whoever holds the
// node. A node is fully built before it is appended, so readers never see a
// partial one.
type Node struct {
	kind Kind

	idMu sync.RWMutex
	id   string

	text   *Text
	script string

	children *appendList[*Node]
	events   *appendList[Event]

	style    *style.Record
	geometry *GeometryRecord
}

// NewNode creates a node of the given kind. A nil style record is replaced by
// one holding the defaults.
func NewNode(kind Kind, children []*Node, events []Event, st *style.Record) *Node {
	if st == nil {
		st = style.NewRecord()
	}
	n := &Node{
		kind:     kind,
		children: newAppendList(children),
		events:   newAppendList(events),
		style:    st,
		geometry: &GeometryRecord{},
	}
	if kind == KindText {
		n.text = &Text{}
	}
	return n
}

// NewTextNode creates a text node holding content.
func NewTextNode(content string, events []Event, st *style.Record) *Node {
	n := NewNode(KindText, nil, events, st)
	n.text.content = content
	return n
}

// NewScriptNode creates a script node holding source.
func NewScriptNode(source string) *Node {
	n := NewNode(KindScript, nil, nil, nil)
	n.script = source
	return n
}

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) ID() string {
	n.idMu.RLock()
	defer n.idMu.RUnlock()
	return n.id
}

func (n *Node) SetID(id string) {
	n.idMu.Lock()
	n.id = id
	n.idMu.Unlock()
}

// Style returns the node's shared style record.
func (n *Node) Style() *style.Record { return n.style }

// Geometry returns the node's shared computed geometry record.
func (n *Node) Geometry() *GeometryRecord { return n.geometry }

// AsText returns the text payload when the node is a text node.
func (n *Node) AsText() (*Text, bool) {
	if n.kind != KindText {
		return nil, false
	}
	return n.text, true
}

// AsScript returns the script source when the node is a script node.
func (n *Node) AsScript() (string, bool) {
	if n.kind != KindScript {
		return "", false
	}
	return n.script, true
}

// SetText replaces the content of a text node and marks its style dirty so
// the next tick re-measures it. It reports false for other kinds.
func (n *Node) SetText(s string) bool {
	t, ok := n.AsText()
	if !ok {
		return false
	}
	t.setContent(s)
	n.style.MarkDirty()
	return true
}

// AppendChild publishes child as the last child of n. Safe for concurrent use
// with readers and other writers.
func (n *Node) AppendChild(child *Node) {
	n.children.append(child)
}

// AppendEvent registers an event handler on n.
func (n *Node) AppendEvent(e Event) {
	n.events.append(e)
}

// ChildrenSnapshot returns a copy of the children as of the call.
func (n *Node) ChildrenSnapshot() []*Node { return n.children.snapshot() }

// EventsSnapshot returns a copy of the events as of the call.
func (n *Node) EventsSnapshot() []Event { return n.events.snapshot() }

func (n *Node) NumChildren() int { return n.children.len() }
