package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DimensionUnit tags the variant held by a Dimension.
type DimensionUnit uint8

const (
	DimensionUndefined DimensionUnit = iota
	DimensionAuto
	DimensionPoints
	DimensionPercent
)

// Dimension is a width or height value. Percent values are stored as a
// fraction of the parent size, so "50%" is Percent(0.5).
type Dimension struct {
	Unit  DimensionUnit
	Value float32
}

func Undefined() Dimension          { return Dimension{Unit: DimensionUndefined} }
func Auto() Dimension               { return Dimension{Unit: DimensionAuto} }
func Points(v float32) Dimension    { return Dimension{Unit: DimensionPoints, Value: v} }
func Percent(frac float32) Dimension { return Dimension{Unit: DimensionPercent, Value: frac} }

// IsDefinite reports whether the dimension carries a concrete size.
func (d Dimension) IsDefinite() bool {
	return d.Unit == DimensionPoints || d.Unit == DimensionPercent
}

// String renders the dimension in the same text form ParseDimension accepts.
func (d Dimension) String() string {
	switch d.Unit {
	case DimensionAuto:
		return "auto"
	case DimensionPoints:
		return strconv.FormatFloat(float64(d.Value), 'f', -1, 32)
	case DimensionPercent:
		return strconv.FormatFloat(float64(d.Value*100), 'f', -1, 32) + "%"
	default:
		return "undefined"
	}
}

// ParseDimension parses "auto", "undefined", "<n>%" and plain point values.
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "auto":
		return Auto(), nil
	case "undefined", "":
		return Undefined(), nil
	}

	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := parseFiniteFloat(pct)
		if err != nil {
			return Dimension{}, err
		}
		return Percent(v / 100), nil
	}

	v, err := parseFiniteFloat(strings.TrimSuffix(s, "px"))
	if err != nil {
		return Dimension{}, err
	}
	if v < 0 {
		return Dimension{}, fmt.Errorf("negative size %q", s)
	}
	return Points(v), nil
}

func parseFiniteFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return float32(v), nil
}

// normalizeKeyword folds "flex_start", "flex-start", "FlexStart" and
// "flexstart" to the same key.
func normalizeKeyword(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// AlignItems controls cross-axis placement of a container's children.
type AlignItems uint8

const (
	AlignStretch AlignItems = iota
	AlignFlexStart
	AlignFlexEnd
	AlignCenter
	AlignBaseline
)

var alignNames = map[AlignItems]string{
	AlignStretch:   "stretch",
	AlignFlexStart: "flex_start",
	AlignFlexEnd:   "flex_end",
	AlignCenter:    "center",
	AlignBaseline:  "baseline",
}

func (a AlignItems) String() string { return alignNames[a] }

func ParseAlignItems(s string) (AlignItems, error) {
	for v, name := range alignNames {
		if normalizeKeyword(name) == normalizeKeyword(s) {
			return v, nil
		}
	}
	return AlignStretch, fmt.Errorf("unknown align value %q", s)
}

// JustifyContent controls main-axis distribution of a container's children.
type JustifyContent uint8

const (
	JustifyFlexStart JustifyContent = iota
	JustifyFlexEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

var justifyNames = map[JustifyContent]string{
	JustifyFlexStart:    "flex_start",
	JustifyFlexEnd:      "flex_end",
	JustifyCenter:       "center",
	JustifySpaceBetween: "space_between",
	JustifySpaceAround:  "space_around",
	JustifySpaceEvenly:  "space_evenly",
}

func (j JustifyContent) String() string { return justifyNames[j] }

func ParseJustifyContent(s string) (JustifyContent, error) {
	for v, name := range justifyNames {
		if normalizeKeyword(name) == normalizeKeyword(s) {
			return v, nil
		}
	}
	return JustifyFlexStart, fmt.Errorf("unknown justify value %q", s)
}

// FlexDirection picks the main axis and its orientation.
type FlexDirection uint8

const (
	FlexRow FlexDirection = iota
	FlexColumn
	FlexRowReverse
	FlexColumnReverse
)

var flexDirectionNames = map[FlexDirection]string{
	FlexRow:           "row",
	FlexColumn:        "column",
	FlexRowReverse:    "row_reverse",
	FlexColumnReverse: "column_reverse",
}

func (f FlexDirection) String() string { return flexDirectionNames[f] }

// IsRow reports whether the main axis is horizontal.
func (f FlexDirection) IsRow() bool { return f == FlexRow || f == FlexRowReverse }

// IsReverse reports whether items are placed from the main-axis end.
func (f FlexDirection) IsReverse() bool { return f == FlexRowReverse || f == FlexColumnReverse }

func ParseFlexDirection(s string) (FlexDirection, error) {
	for v, name := range flexDirectionNames {
		if normalizeKeyword(name) == normalizeKeyword(s) {
			return v, nil
		}
	}
	return FlexRow, fmt.Errorf("unknown flex direction %q", s)
}
