package style

import (
	"strconv"
	"strings"
	"sync"
)

// Attribute names understood by Record.Set and Record.Get. The same names are
// used by the markup attributes and the script style handle.
const (
	AttrWidth           = "width"
	AttrHeight          = "height"
	AttrAlign           = "align"
	AttrJustify         = "justify"
	AttrFlexDirection   = "flexdir"
	AttrFontSize        = "font_size"
	AttrColor           = "color"
	AttrBackgroundColor = "background_color"
)

// Attributes lists every settable style attribute.
var Attributes = []string{
	AttrWidth, AttrHeight, AttrAlign, AttrJustify,
	AttrFlexDirection, AttrFontSize, AttrColor, AttrBackgroundColor,
}

// Styling is a point-in-time copy of a Record's fields.
type Styling struct {
	Width           Dimension
	Height          Dimension
	Align           AlignItems
	Justify         JustifyContent
	FlexDirection   FlexDirection
	FontSize        uint16
	Color           *Color
	BackgroundColor *Color
}

// DefaultStyling returns the values a freshly created node starts with.
func DefaultStyling() Styling {
	return Styling{
		Width:         Undefined(),
		Height:        Undefined(),
		Align:         AlignStretch,
		Justify:       JustifyFlexStart,
		FlexDirection: FlexRow,
		FontSize:      DefaultFontSize,
	}
}

func (s Styling) clone() Styling {
	out := s
	if s.Color != nil {
		c := *s.Color
		out.Color = &c
	}
	if s.BackgroundColor != nil {
		c := *s.BackgroundColor
		out.BackgroundColor = &c
	}
	return out
}

// Record is the shared, lock-guarded style of a single node. Every setter
// writes the field and raises the dirty flag inside one critical section, so
// a concurrent TakeDirty never observes a new value without the flag.
type Record struct {
	mu     sync.Mutex
	values Styling
	dirty  bool
}

// NewRecord creates a record holding the defaults. New records start dirty so
// the first tick lays them out.
func NewRecord() *Record {
	return &Record{values: DefaultStyling(), dirty: true}
}

// NewRecordFrom creates a dirty record with the given initial values.
func NewRecordFrom(s Styling) *Record {
	return &Record{values: s.clone(), dirty: true}
}

// Snapshot copies all fields out under the lock.
func (r *Record) Snapshot() Styling {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values.clone()
}

// TakeDirty returns the dirty flag and clears it atomically.
func (r *Record) TakeDirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.dirty
	r.dirty = false
	return d
}

func (r *Record) IsDirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirty
}

// MarkDirty raises the flag without changing any field. Used for changes that
// affect layout but live outside the record, such as text content.
func (r *Record) MarkDirty() {
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}

func (r *Record) update(fn func(s *Styling)) {
	r.mu.Lock()
	fn(&r.values)
	r.dirty = true
	r.mu.Unlock()
}

func (r *Record) SetWidth(d Dimension)  { r.update(func(s *Styling) { s.Width = d }) }
func (r *Record) SetHeight(d Dimension) { r.update(func(s *Styling) { s.Height = d }) }
func (r *Record) SetAlign(a AlignItems) { r.update(func(s *Styling) { s.Align = a }) }
func (r *Record) SetJustify(j JustifyContent) {
	r.update(func(s *Styling) { s.Justify = j })
}
func (r *Record) SetFlexDirection(f FlexDirection) {
	r.update(func(s *Styling) { s.FlexDirection = f })
}
func (r *Record) SetFontSize(size uint16) { r.update(func(s *Styling) { s.FontSize = size }) }

// SetColor sets the foreground color; nil clears it.
func (r *Record) SetColor(c *Color) {
	r.update(func(s *Styling) { s.Color = copyColor(c) })
}

// SetBackgroundColor sets the fill color; nil clears it.
func (r *Record) SetBackgroundColor(c *Color) {
	r.update(func(s *Styling) { s.BackgroundColor = copyColor(c) })
}

func copyColor(c *Color) *Color {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

// Set parses value and assigns it to the named attribute. A value that fails
// to parse leaves the record untouched and returns an *AttributeError.
func (r *Record) Set(attr, value string) error {
	switch strings.ToLower(attr) {
	case AttrWidth, AttrHeight:
		d, err := ParseDimension(value)
		if err != nil {
			return &AttributeError{Attribute: attr, Value: value, Err: err}
		}
		if strings.EqualFold(attr, AttrWidth) {
			r.SetWidth(d)
		} else {
			r.SetHeight(d)
		}
	case AttrAlign:
		a, err := ParseAlignItems(value)
		if err != nil {
			return &AttributeError{Attribute: attr, Value: value, Err: err}
		}
		r.SetAlign(a)
	case AttrJustify:
		j, err := ParseJustifyContent(value)
		if err != nil {
			return &AttributeError{Attribute: attr, Value: value, Err: err}
		}
		r.SetJustify(j)
	case AttrFlexDirection, "flex_direction", "flexdirection":
		f, err := ParseFlexDirection(value)
		if err != nil {
			return &AttributeError{Attribute: attr, Value: value, Err: err}
		}
		r.SetFlexDirection(f)
	case AttrFontSize, "fontsize":
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
		if err != nil {
			return &AttributeError{Attribute: attr, Value: value, Err: err}
		}
		r.SetFontSize(uint16(n))
	case AttrColor, AttrBackgroundColor, "backgroundcolor":
		var c *Color
		if strings.TrimSpace(value) != "" {
			parsed, ok := ParseColor(value)
			if !ok {
				return &AttributeError{Attribute: attr, Value: value, Err: errBadColor}
			}
			c = &parsed
		}
		if strings.EqualFold(attr, AttrColor) {
			r.SetColor(c)
		} else {
			r.SetBackgroundColor(c)
		}
	default:
		return &UnknownAttributeError{Attribute: attr}
	}
	return nil
}

// Get renders the named attribute as text. The empty string stands for an
// unset color.
func (r *Record) Get(attr string) (string, error) {
	s := r.Snapshot()
	switch strings.ToLower(attr) {
	case AttrWidth:
		return s.Width.String(), nil
	case AttrHeight:
		return s.Height.String(), nil
	case AttrAlign:
		return s.Align.String(), nil
	case AttrJustify:
		return s.Justify.String(), nil
	case AttrFlexDirection, "flex_direction", "flexdirection":
		return s.FlexDirection.String(), nil
	case AttrFontSize, "fontsize":
		return strconv.FormatUint(uint64(s.FontSize), 10), nil
	case AttrColor:
		return colorText(s.Color), nil
	case AttrBackgroundColor, "backgroundcolor":
		return colorText(s.BackgroundColor), nil
	}
	return "", &UnknownAttributeError{Attribute: attr}
}

func colorText(c *Color) string {
	if c == nil {
		return ""
	}
	return c.String()
}
