package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlightPolygons_SingleBottomBit(t *testing.T) {
	polys := highlightPolygons(0b0001, false, 10, 20, 8, 6)
	require.Len(t, polys, 1)
	assert.Equal(t, []Point2{{10, 20}, {18, 20}, {18, 19}, {10, 19}}, polys[0])
}

func TestHighlightPolygons_SingleRightBit(t *testing.T) {
	polys := highlightPolygons(0b0010, false, 10, 20, 8, 6)
	require.Len(t, polys, 1)
	assert.Equal(t, []Point2{{18, 14}, {18, 20}, {17, 20}, {17, 14}}, polys[0])
}

func TestHighlightPolygons_SingleTopBit(t *testing.T) {
	polys := highlightPolygons(0b0100, false, 10, 20, 8, 6)
	require.Len(t, polys, 1)
	assert.Equal(t, []Point2{{10, 14}, {18, 14}, {18, 15}, {10, 15}}, polys[0])
}

func TestHighlightPolygons_SingleLeftBit(t *testing.T) {
	polys := highlightPolygons(0b1000, false, 10, 20, 8, 6)
	require.Len(t, polys, 1)
	assert.Equal(t, []Point2{{10, 14}, {10, 20}, {11, 20}, {11, 14}}, polys[0])
}

func TestHighlightPolygons_UnderlineFoldsIntoBottomBit(t *testing.T) {
	withUnderline := highlightPolygons(0b0110, true, 10, 20, 8, 6)
	withBottomBit := highlightPolygons(0b0111, false, 10, 20, 8, 6)
	assert.Equal(t, withBottomBit, withUnderline)
}

func TestHighlightPolygons_NoneWhenNothingSet(t *testing.T) {
	assert.Nil(t, highlightPolygons(0, false, 0, 0, 1, 1))
}
