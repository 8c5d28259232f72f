// internal/browser/session/document.go
package session

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/jsbind"
	"github.com/xkilldash9x/capsule-browser/internal/browser/jsexec"
	"github.com/xkilldash9x/capsule-browser/internal/browser/parser"
)

// Document is one loaded capsule: its tree, metadata and the script engine
// that belongs to it. A reload replaces the whole Document; nothing is
// carried over.
type Document struct {
	ID       uuid.UUID
	Meta     parser.Meta
	Root     *dom.Node
	Engine   *jsexec.Engine
	Bridge   *jsbind.Bridge
	Path     string
	LoadedAt time.Time

	// Warnings are the recoverable parse problems followed by the scripts
	// that failed during the initial run.
	Warnings []error
}

// Title returns the capsule's title.
func (d *Document) Title() string {
	return d.Meta.Title
}

// scripts returns the sources to run on load: meta scripts first, then
// script nodes in tree order.
func (d *Document) scripts() []namedScript {
	var out []namedScript
	for i, src := range d.Meta.Scripts {
		out = append(out, namedScript{name: metaScriptName(i), src: src})
	}
	i := 0
	dom.ForEachDescendant(d.Root, func(n *dom.Node) {
		if src, ok := n.AsScript(); ok {
			name := viewScriptName(i)
			if id := n.ID(); id != "" {
				name = id
			}
			out = append(out, namedScript{name: name, src: src})
			i++
		}
	})
	return out
}

type namedScript struct {
	name string
	src  string
}

func metaScriptName(i int) string { return "meta-script-" + strconv.Itoa(i) }
func viewScriptName(i int) string { return "view-script-" + strconv.Itoa(i) }
