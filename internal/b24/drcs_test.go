package b24

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDrcsFont_Depth0(t *testing.T) {
	// scenario 7 from spec.md §8: depth=0, width=4, height=2,
	// pattern=[0b10110000, 0b01000000] -> [1,0,1,1, 0,1,0,0]
	font, err := DecodeDrcsFont(RawDrcsFont{
		Depth:       0,
		Width:       4,
		Height:      2,
		PatternData: []byte{0b10110000, 0b01000000},
	})
	require.NoError(t, err)
	want := []float32{1, 0, 1, 1, 0, 1, 0, 0}
	assert.Equal(t, want, font.Alpha)
}

func TestDecodeDrcsFont_Depth2SizeMismatchRejected(t *testing.T) {
	// depth=2 doubles the per-row bit width versus depth=0, so a pattern
	// sized for depth=0 at the same width/height is half a row short
	// (the single 8-pixel row needs 2 bytes at depth=2; 1 is given).
	_, err := DecodeDrcsFont(RawDrcsFont{
		Depth:       2,
		Width:       8,
		Height:      1,
		PatternData: []byte{0xFF},
	})
	assert.Error(t, err)
}

func TestDecodeDrcsFont_InvalidDepthRejected(t *testing.T) {
	_, err := DecodeDrcsFont(RawDrcsFont{
		Depth:       1,
		Width:       2,
		Height:      2,
		PatternData: []byte{0xFF},
	})
	assert.Error(t, err)
}

func TestFontCache_PutGetLookup(t *testing.T) {
	c := NewFontCache()
	code := DrcsCharCode{Set: 1, Code1: NewGraphicCode(0x21)}

	require.NoError(t, c.Put(code, RawDrcsFont{
		Depth: 0, Width: 2, Height: 2, PatternData: []byte{0b10000000, 0b10000000},
	}))
	require.NoError(t, c.Put(code, RawDrcsFont{
		Depth: 0, Width: 4, Height: 4, PatternData: make([]byte, 4),
	}))

	entry := c.Get(code)
	require.NotNil(t, entry)
	assert.Len(t, entry.Fonts, 2)

	// exact match wins
	exact := entry.Lookup(2, 2)
	assert.Equal(t, 2, exact.Width)

	// no match -> most recently added
	fallback := entry.Lookup(99, 99)
	assert.Equal(t, 4, fallback.Width)

	decoded, dropped := c.Stats()
	assert.Equal(t, 2, decoded)
	assert.Equal(t, 0, dropped)
}

func TestFontCache_MalformedDropsOnlyThatFont(t *testing.T) {
	c := NewFontCache()
	code := DrcsCharCode{Set: 0, Code1: NewGraphicCode(0x21), Code2: NewGraphicCode(0x21)}

	err := c.Put(code, RawDrcsFont{Depth: 3, Width: 1, Height: 1, PatternData: []byte{0}})
	assert.Error(t, err)

	require.NoError(t, c.Put(code, RawDrcsFont{Depth: 0, Width: 1, Height: 1, PatternData: []byte{0x80}}))

	entry := c.Get(code)
	require.NotNil(t, entry)
	assert.Len(t, entry.Fonts, 1)

	decoded, dropped := c.Stats()
	assert.Equal(t, 1, decoded)
	assert.Equal(t, 1, dropped)
}

func TestDrcsCharCode_Number(t *testing.T) {
	drcs0 := DrcsCharCode{Set: 0, Code1: NewGraphicCode(0x21), Code2: NewGraphicCode(0x21)}
	assert.Equal(t, uint16(0), drcs0.Number())

	drcs1 := DrcsCharCode{Set: 1, Code1: NewGraphicCode(0x21)}
	assert.Equal(t, uint16(8836), drcs1.Number())

	drcs2 := DrcsCharCode{Set: 2, Code1: NewGraphicCode(0x21)}
	assert.Equal(t, uint16(8836+94), drcs2.Number())
}
