package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRendererState_ViewBoxMatchesFormatTable(t *testing.T) {
	var s RendererState
	s.Reset(FormatQhdHorz)
	w, h := s.ViewBox()
	assert.Equal(t, 960.0, w)
	assert.Equal(t, 540.0, h)

	s.Reset(FormatProfileC)
	w, h = s.ViewBox()
	assert.Equal(t, 330.0, w)
	assert.Equal(t, 180.0, h)
}

func TestRendererState_EffectiveHemmingDefaultsToBackground(t *testing.T) {
	var s RendererState
	s.Reset(FormatQhdHorz)
	assert.Equal(t, s.Background, s.EffectiveHemming())

	s.HasHemming = true
	s.Hemming = 3
	assert.Equal(t, 3, s.EffectiveHemming())
}

func TestRendererState_EffectiveHemmingForcedToDefaultOnProfileC(t *testing.T) {
	var s RendererState
	s.Reset(FormatProfileC)
	s.HasHemming = true
	s.Hemming = 3

	// profile-c's format-table entry forces the default hemming color
	// regardless of what ORN set, per spec.md §4.2.
	assert.Equal(t, s.Background, s.EffectiveHemming())
}
