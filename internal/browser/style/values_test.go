package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input    string
		expected Color
		ok       bool
	}{
		// Keywords
		{"red", Color{R: 255, G: 0, B: 0, A: 255}, true},
		{"transparent", Color{R: 0, G: 0, B: 0, A: 0}, true},
		{"  White ", White, true},
		// Hex
		{"#ff0099", Color{R: 0xff, G: 0x00, B: 0x99, A: 255}, true},
		{"#f09", Color{R: 0xff, G: 0x00, B: 0x99, A: 255}, true},
		{"#ff009988", Color{R: 0xff, G: 0x00, B: 0x99, A: 0x88}, true},
		// RGB/RGBA
		{"rgb(255, 0, 153)", Color{R: 255, G: 0, B: 153, A: 255}, true},
		// 0.5 * 255 = 127.5, rounded up.
		{"rgba(0, 0, 0, 0.5)", Color{R: 0, G: 0, B: 0, A: 128}, true},
		{"rgb(100%, 50%, 0%)", Color{R: 255, G: 128, B: 0, A: 255}, true},
		// Invalid
		{"invalidcolor", Color{}, false},
		{"#12345", Color{}, false},
		{"#gggggg", Color{}, false},
		{"rgb(1, 2)", Color{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual, ok := ParseColor(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, actual)
			}
		})
	}
}

func TestColorStringRoundTrip(t *testing.T) {
	c := Color{R: 0x12, G: 0xab, B: 0x00, A: 0x7f}
	assert.Equal(t, "#12ab007f", c.String())

	back, ok := ParseColor(c.String())
	require.True(t, ok)
	assert.Equal(t, c, back)
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		input    string
		expected Dimension
		isErr    bool
	}{
		{"120", Points(120), false},
		{"12.5px", Points(12.5), false},
		{"50%", Percent(0.5), false},
		{"100%", Percent(1), false},
		{"auto", Auto(), false},
		{"AUTO", Auto(), false},
		{"undefined", Undefined(), false},
		{"", Undefined(), false},
		{"-4", Dimension{}, true},
		{"wide", Dimension{}, true},
		{"NaN", Dimension{}, true},
		{"abc%", Dimension{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual, err := ParseDimension(tt.input)
			if tt.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Unit, actual.Unit)
			assert.InDelta(t, tt.expected.Value, actual.Value, 0.0001)
		})
	}
}

func TestDimensionString(t *testing.T) {
	assert.Equal(t, "120", Points(120).String())
	assert.Equal(t, "50%", Percent(0.5).String())
	assert.Equal(t, "auto", Auto().String())
	assert.Equal(t, "undefined", Undefined().String())
}

func TestParseKeywords(t *testing.T) {
	t.Run("align", func(t *testing.T) {
		for _, in := range []string{"flexstart", "flex_start", "flex-start", "FlexStart"} {
			a, err := ParseAlignItems(in)
			require.NoError(t, err, in)
			assert.Equal(t, AlignFlexStart, a)
		}
		_, err := ParseAlignItems("sideways")
		assert.Error(t, err)
	})

	t.Run("justify", func(t *testing.T) {
		j, err := ParseJustifyContent("SpaceEvenly")
		require.NoError(t, err)
		assert.Equal(t, JustifySpaceEvenly, j)
		assert.Equal(t, "space_evenly", j.String())
	})

	t.Run("flex direction", func(t *testing.T) {
		f, err := ParseFlexDirection("column-reverse")
		require.NoError(t, err)
		assert.Equal(t, FlexColumnReverse, f)
		assert.False(t, f.IsRow())
		assert.True(t, f.IsReverse())
	})
}
