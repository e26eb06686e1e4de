package caption

import "github.com/aznhe21/tavoo/internal/b24"

// Polarity selects whether the effective foreground/background swap.
type Polarity int

const (
	PolarityNormal Polarity = iota
	PolarityInverted1
	PolarityInverted2
)

// WritingMode tracks WMM, accepted but inert for this renderer (see
// SPEC_FULL.md §4 "Caption State Machine" supplement).
type WritingMode int

const (
	WritingModeBoth WritingMode = iota
	WritingModeForeground
	WritingModeBackground
)

const noRepeat = -1
const repeatUntilWrap = 0

// RendererState is the per-Machine-instance mutable state described by
// spec.md §3's RendererState, reset on every clear-screen and on every
// Reset().
type RendererState struct {
	CursorX, CursorY float64

	Format DisplayFormat
	Config SectionConfig

	CharCompW, CharCompH float64

	Foreground, Background int
	HasHemming             bool
	Hemming                int
	Polarity               Polarity
	Underline              bool
	Highlight              int // 0..15, HLC value
	Flashing               FlashingMode
	WritingMode            WritingMode
	PaletteIndex           int

	DisplayLeft, DisplayTop, DisplayWidth, DisplayHeight float64

	HSpacing, VSpacing float64

	RepeatCharacter int // noRepeat, repeatUntilWrap(0), or a positive count
	Wrapped         bool
}

// Reset applies the display-format reset table from spec.md §4.2,
// reinitializing every field including the cursor's starting cell.
func (s *RendererState) Reset(format DisplayFormat) {
	geo := formatGeometries[format]
	s.Format = format
	s.DisplayLeft = 0
	s.DisplayTop = 0
	s.DisplayWidth = geo.DisplayW
	s.DisplayHeight = geo.DisplayH
	s.HSpacing = geo.HSpace
	s.VSpacing = geo.VSpace

	if format == FormatProfileC {
		s.CharCompW, s.CharCompH = 18, 18
	} else {
		s.CharCompW, s.CharCompH = 36, 36
	}

	s.Config = sectionConfigFor(b24.CharSizeNormal)
	s.Foreground = 7
	s.Background = 8
	s.HasHemming = false
	s.Hemming = 0
	s.Polarity = PolarityNormal
	s.Underline = false
	s.Highlight = 0
	s.Flashing = FlashingNone
	s.WritingMode = WritingModeBoth
	s.PaletteIndex = 0
	s.RepeatCharacter = noRepeat
	s.Wrapped = false

	charW, charH, _, _ := charGeometry(s.CharCompW, s.CharCompH, s.HSpacing, s.VSpacing, s.Config)
	if geo.CursorLeftmost {
		s.CursorX = s.DisplayLeft
	} else {
		s.CursorX = s.DisplayLeft + s.DisplayWidth - charW
	}
	if format == FormatProfileC {
		s.CursorY = s.DisplayTop + s.DisplayHeight - 2*charH
	} else {
		s.CursorY = s.DisplayTop + charH
	}
}

// EffectiveColors returns (foreground, background) swapped under
// inverted-1 polarity, per spec.md §4.2's character emission semantics.
func (s *RendererState) EffectiveColors() (fg, bg int) {
	if s.Polarity == PolarityInverted1 {
		return s.Background, s.Foreground
	}
	return s.Foreground, s.Background
}

// EffectiveHemming returns the hemming color, defaulting to the
// effective background when ORN hasn't set one explicitly, or always on
// formats whose reset table entry forces the default hemming color
// (profile-c, spec.md §4.2's format table).
func (s *RendererState) EffectiveHemming() int {
	if s.HasHemming && !formatGeometries[s.Format].ForceDefaultHemming {
		return s.Hemming
	}
	_, bg := s.EffectiveColors()
	return bg
}

// ViewBox returns the format's fixed view-box dimensions from the reset
// table (spec.md §4.2), surfaced by the façade for the host to size its
// drawing surface.
func (s *RendererState) ViewBox() (w, h float64) {
	geo := formatGeometries[s.Format]
	return geo.ViewW, geo.ViewH
}

// CharGeometry returns the current cell size and inter-character spacing.
func (s *RendererState) CharGeometry() (charW, charH, hSpace, vSpace float64) {
	return charGeometry(s.CharCompW, s.CharCompH, s.HSpacing, s.VSpacing, s.Config)
}
