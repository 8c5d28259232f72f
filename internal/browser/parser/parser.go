// internal/browser/parser/parser.go
package parser

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

// Element and attribute names of the capsule markup.
const (
	TagCapsule   = "capsule"
	TagMeta      = "meta"
	TagTitle     = "title"
	TagView      = "view"
	TagContainer = "obj"
	TagText      = "text"
	TagScript    = "script"
	TagStyle     = "style"

	AttrID    = "id"
	AttrStyle = "style"
)

// Meta is the non-visual header of a capsule.
type Meta struct {
	Title   string
	Scripts []string
}

// Capsule is the parsed form of a source document.
type Capsule struct {
	Meta Meta
	Root *dom.Node
	// Sheet holds the rules of every <style> element in <meta>.
	Sheet Stylesheet
	// Warnings holds every recoverable problem found while parsing, in
	// document order. Each one has also been logged.
	Warnings []error
}

// Parser turns capsule markup into a scene tree.
type Parser struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger.Named("parser")}
}

// Parse reads src. Structural problems (malformed XML, a root that is not
// <capsule>, an unexpected top-level element) return a *ParseError.
// Unknown node tags and bad attribute values are logged and collected in
// Capsule.Warnings.
func (p *Parser) Parse(src []byte) (*Capsule, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(src); err != nil {
		return nil, &ParseError{Reason: "malformed markup", Err: err}
	}

	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Reason: "document has no root element"}
	}
	if root.Tag != TagCapsule {
		return nil, &ParseError{Reason: "root element is <" + root.Tag + ">, want <capsule>"}
	}

	c := &Capsule{}
	var view *etree.Element
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case TagMeta:
			p.parseMeta(c, child)
		case TagView:
			if view != nil {
				return nil, &ParseError{Reason: "more than one <view> element"}
			}
			view = child
		default:
			return nil, &ParseError{Reason: "unexpected top-level element <" + child.Tag + ">"}
		}
	}

	if view == nil {
		c.Root = dom.NewNode(dom.KindView, nil, nil, nil)
	} else {
		c.Root = p.parseNode(c, view, dom.KindView)
	}

	p.logger.Debug("Parsed capsule.",
		zap.String("title", c.Meta.Title),
		zap.Int("scripts", len(c.Meta.Scripts)),
		zap.Int("nodes", dom.Count(c.Root)),
		zap.Int("warnings", len(c.Warnings)),
	)
	return c, nil
}

func (p *Parser) parseMeta(c *Capsule, el *etree.Element) {
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case TagTitle:
			c.Meta.Title = strings.TrimSpace(child.Text())
		case TagScript:
			c.Meta.Scripts = append(c.Meta.Scripts, child.Text())
		case TagStyle:
			sheet, errs := ParseStylesheet(child.Text())
			c.Sheet.Rules = append(c.Sheet.Rules, sheet.Rules...)
			for _, err := range errs {
				p.warn(c, err, "Skipping stylesheet rule.")
			}
		default:
			p.logger.Debug("Ignoring unknown meta element.", zap.String("tag", child.Tag))
		}
	}
}

func (p *Parser) warn(c *Capsule, err error, msg string, fields ...zap.Field) {
	c.Warnings = append(c.Warnings, err)
	p.logger.Warn(msg, append(fields, zap.Error(err))...)
}

func kindForTag(tag string) (dom.Kind, bool) {
	switch tag {
	case TagContainer:
		return dom.KindContainer, true
	case TagText:
		return dom.KindText, true
	case TagScript:
		return dom.KindScript, true
	}
	return 0, false
}

// parseNode builds the node for el and its subtree. Children are built
// before the parent so every node is complete when it becomes reachable.
func (p *Parser) parseNode(c *Capsule, el *etree.Element, kind dom.Kind) *dom.Node {
	if kind == dom.KindScript {
		n := dom.NewScriptNode(el.Text())
		if id := el.SelectAttrValue(AttrID, ""); id != "" {
			n.SetID(id)
		}
		return n
	}

	var children []*dom.Node
	for _, child := range el.ChildElements() {
		if kind == dom.KindText {
			p.logger.Debug("Ignoring element nested in text.", zap.String("tag", child.Tag))
			continue
		}
		childKind, ok := kindForTag(child.Tag)
		if !ok {
			p.warn(c, &UnknownNodeKindError{Tag: child.Tag, Path: child.GetPath()}, "Skipping unknown node kind.")
			continue
		}
		children = append(children, p.parseNode(c, child, childKind))
	}

	id := el.SelectAttrValue(AttrID, "")
	rec := style.NewRecord()
	normal, important := c.Sheet.Match(el.Tag, id)
	for _, d := range normal {
		p.applyStyle(c, rec, el.Tag, d.Property, d.Value)
	}

	var events []dom.Event
	var inline string
	for _, attr := range el.Attr {
		key := strings.ToLower(attr.Key)
		switch {
		case key == AttrID:
		case key == AttrStyle:
			inline = attr.Value
		case strings.HasPrefix(key, "on") && len(key) > 2:
			events = append(events, dom.Event{Name: key, Callback: strings.TrimSpace(attr.Value)})
		default:
			p.applyStyle(c, rec, el.Tag, key, attr.Value)
		}
	}
	for _, d := range ParseDeclarations(inline) {
		p.applyStyle(c, rec, el.Tag, d.Property, d.Value)
	}
	for _, d := range important {
		p.applyStyle(c, rec, el.Tag, d.Property, d.Value)
	}

	var n *dom.Node
	if kind == dom.KindText {
		n = dom.NewTextNode(strings.TrimSpace(el.Text()), events, rec)
	} else {
		n = dom.NewNode(kind, children, events, rec)
	}
	if id != "" {
		n.SetID(id)
	}
	return n
}

// applyStyle sets one style attribute. Unknown names are ignored; bad values
// become warnings and leave the previous value.
func (p *Parser) applyStyle(c *Capsule, rec *style.Record, tag, attr, value string) {
	err := rec.Set(attr, value)
	if err == nil {
		return
	}
	var unknown *style.UnknownAttributeError
	if errors.As(err, &unknown) {
		p.logger.Debug("Ignoring unknown attribute.", zap.String("attribute", attr), zap.String("tag", tag))
		return
	}
	p.warn(c, err, "Bad style attribute, keeping default.", zap.String("tag", tag))
}
