// internal/browser/parser/stylesheet.go
package parser

import (
	"fmt"
	"sort"
	"strings"
)

// Declaration is one "property: value" pair. Property names are normalized
// to the markup attribute names, so "background-color" and
// "background_color" are the same property.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Selector matches nodes by tag, by id, or both. "*" or an empty Tag
// matches every visual tag.
type Selector struct {
	Tag string
	ID  string
}

// Specificity orders selectors: an id outweighs any number of tags.
func (s Selector) Specificity() int {
	n := 0
	if s.ID != "" {
		n += 100
	}
	if s.Tag != "" && s.Tag != "*" {
		n++
	}
	return n
}

// Matches reports whether a node with the given tag and id is selected.
func (s Selector) Matches(tag, id string) bool {
	if s.Tag != "" && s.Tag != "*" && s.Tag != tag {
		return false
	}
	return s.ID == "" || s.ID == id
}

// Rule applies Declarations to every node matched by any of Selectors.
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
}

// Stylesheet is the combined content of a capsule's <style> elements.
type Stylesheet struct {
	Rules []Rule
}

// matched is a declaration tagged with what decides its precedence.
type matched struct {
	decl        Declaration
	specificity int
	order       int
}

// Match returns the declarations that apply to a node, normal ones first,
// each group ordered by ascending specificity and then source order, so
// applying them in sequence leaves the winning value in place.
func (s Stylesheet) Match(tag, id string) (normal, important []Declaration) {
	var hits []matched
	order := 0
	for _, rule := range s.Rules {
		best := -1
		for _, sel := range rule.Selectors {
			if sel.Matches(tag, id) && sel.Specificity() > best {
				best = sel.Specificity()
			}
		}
		for _, d := range rule.Declarations {
			order++
			if best >= 0 {
				hits = append(hits, matched{decl: d, specificity: best, order: order})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].specificity != hits[j].specificity {
			return hits[i].specificity < hits[j].specificity
		}
		return hits[i].order < hits[j].order
	})
	for _, h := range hits {
		if h.decl.Important {
			important = append(important, h.decl)
		} else {
			normal = append(normal, h.decl)
		}
	}
	return normal, important
}

// SelectorError reports a selector the stylesheet cannot express; its rule
// is skipped.
type SelectorError struct {
	Selector string
	Reason   string
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("unsupported selector %q: %s", e.Selector, e.Reason)
}

// ParseStylesheet reads rules of the form "obj, #title { width: 50%; }".
// Comments and at-rules are skipped. A rule with an unsupported selector is
// dropped and reported.
func ParseStylesheet(src string) (Stylesheet, []error) {
	p := &sheetScanner{input: src}
	var sheet Stylesheet
	var errs []error
	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		if p.currentChar() == '@' {
			p.skipAtRule()
			continue
		}

		prelude := p.readUntil('{')
		if p.eof() {
			errs = append(errs, &SelectorError{Selector: strings.TrimSpace(prelude), Reason: "missing declaration block"})
			break
		}
		decls := p.parseBlock()

		selectors, err := parseSelectors(prelude)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(decls) > 0 {
			sheet.Rules = append(sheet.Rules, Rule{Selectors: selectors, Declarations: decls})
		}
	}
	return sheet, errs
}

// ParseDeclarations reads an inline declaration list such as the value of a
// style attribute: "width: 100; color: red".
func ParseDeclarations(src string) []Declaration {
	p := &sheetScanner{input: src}
	var decls []Declaration
	for {
		p.consumeWhitespace()
		if p.eof() {
			return decls
		}
		if d, ok := p.parseDeclaration(); ok {
			decls = append(decls, d)
		}
	}
}

func parseSelectors(prelude string) ([]Selector, error) {
	var out []Selector
	for _, part := range strings.Split(prelude, ",") {
		raw := strings.TrimSpace(part)
		if raw == "" {
			return nil, &SelectorError{Selector: prelude, Reason: "empty selector"}
		}
		sel, err := parseSelector(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

// parseSelector accepts tag, #id and tag#id.
func parseSelector(raw string) (Selector, error) {
	if strings.ContainsAny(raw, " \t\n>+~") {
		return Selector{}, &SelectorError{Selector: raw, Reason: "combinators are not supported"}
	}
	if strings.ContainsAny(raw, ".[:") {
		return Selector{}, &SelectorError{Selector: raw, Reason: "only tag and #id selectors are supported"}
	}

	tag, id, hasID := strings.Cut(raw, "#")
	tag = strings.ToLower(tag)
	if hasID && id == "" {
		return Selector{}, &SelectorError{Selector: raw, Reason: "empty id"}
	}
	switch tag {
	case "", "*", TagView, TagContainer, TagText:
	default:
		return Selector{}, &SelectorError{Selector: raw, Reason: "unknown tag " + tag}
	}
	return Selector{Tag: tag, ID: id}, nil
}

// normalizeProperty maps CSS-style spellings onto attribute names.
func normalizeProperty(prop string) string {
	prop = strings.ReplaceAll(strings.ToLower(prop), "-", "_")
	if prop == "flex_direction" {
		return "flexdir"
	}
	return prop
}

// sheetScanner is a byte cursor over stylesheet source.
type sheetScanner struct {
	input string
	pos   int
}

// readUntil returns the text up to target and leaves the cursor on it.
func (p *sheetScanner) readUntil(target byte) string {
	start := p.pos
	p.skipTo(target)
	return p.input[start:p.pos]
}

// parseBlock parses "{ ... }" with the cursor on the opening brace.
func (p *sheetScanner) parseBlock() []Declaration {
	p.consumeChar()
	var decls []Declaration
	for {
		p.consumeWhitespace()
		if p.eof() {
			return decls
		}
		if p.currentChar() == '}' {
			p.consumeChar()
			return decls
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		if d, ok := p.parseDeclaration(); ok {
			decls = append(decls, d)
		}
	}
}

// parseDeclaration reads one "property: value[ !important];". Malformed
// input is skipped up to the next ';' or '}'.
func (p *sheetScanner) parseDeclaration() (Declaration, bool) {
	if !isIdentStart(p.currentChar()) {
		p.skipDeclaration()
		return Declaration{}, false
	}
	prop := p.parseIdentifier()
	p.consumeWhitespace()
	if p.eof() || p.currentChar() != ':' {
		p.skipDeclaration()
		return Declaration{}, false
	}
	p.consumeChar()
	p.consumeWhitespace()

	val := p.parseValue()
	d := Declaration{Property: normalizeProperty(prop), Value: val}
	if lower := strings.ToLower(val); strings.HasSuffix(lower, "!important") {
		d.Important = true
		d.Value = strings.TrimSpace(val[:len(val)-len("!important")])
	}
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
	if d.Value == "" {
		return Declaration{}, false
	}
	return d, true
}

func (p *sheetScanner) skipDeclaration() {
	p.skipTo(';', '}')
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
}

// parseValue reads up to ';' or '}', stepping over quoted strings and
// parenthesized groups such as rgb(1, 2, 3).
func (p *sheetScanner) parseValue() string {
	start := p.pos
	for !p.eof() {
		ch := p.currentChar()
		if ch == ';' || ch == '}' {
			break
		}
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '(' {
			p.consumeChar()
			p.skipBlock('(', ')')
			continue
		}
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

func (p *sheetScanner) eof() bool {
	return p.pos >= len(p.input)
}

func (p *sheetScanner) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *sheetScanner) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

func (p *sheetScanner) consumeWhitespace() {
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
}

func (p *sheetScanner) startsWith(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *sheetScanner) skipComment() {
	p.pos += 2
	end := strings.Index(p.input[p.pos:], "*/")
	if end == -1 {
		p.pos = len(p.input)
		return
	}
	p.pos += end + 2
}

func (p *sheetScanner) skipTo(targets ...byte) {
	for !p.eof() {
		ch := p.currentChar()
		for _, target := range targets {
			if ch == target {
				return
			}
		}
		p.pos++
	}
}

// skipBlock consumes through the close that balances an already consumed
// open.
func (p *sheetScanner) skipBlock(open, close byte) {
	depth := 1
	for !p.eof() {
		switch p.consumeChar() {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *sheetScanner) skipQuotedString(quote byte) {
	p.consumeChar()
	for !p.eof() {
		ch := p.consumeChar()
		if ch == '\\' {
			p.consumeChar()
		} else if ch == quote {
			return
		}
	}
}

func (p *sheetScanner) skipAtRule() {
	p.consumeChar()
	_ = p.parseIdentifier()
	for !p.eof() {
		switch p.currentChar() {
		case '{':
			p.consumeChar()
			p.skipBlock('{', '}')
			return
		case ';':
			p.consumeChar()
			return
		}
		p.pos++
	}
}

func (p *sheetScanner) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '-'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
