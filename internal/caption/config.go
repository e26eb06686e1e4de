package caption

import "github.com/aznhe21/tavoo/internal/b24"

// DisplayFormat selects one of the fixed view-box/geometry presets a
// management-data packet's language format field maps onto.
type DisplayFormat int

const (
	FormatQhdHorz DisplayFormat = iota
	FormatQhdVert
	FormatSdHorz
	FormatSdVert
	FormatProfileC // one-seg
)

// FormatGeometry is one row of the display-format reset table (spec.md
// §4.2's "Display-format reset table").
type FormatGeometry struct {
	ViewW, ViewH        float64
	DisplayW, DisplayH  float64
	HSpace, VSpace      float64
	CursorLeftmost      bool // true: cursor starts at left column; false: rightmost (vertical writing)
	ForceDefaultHemming bool
}

var formatGeometries = map[DisplayFormat]FormatGeometry{
	FormatQhdHorz:  {ViewW: 960, ViewH: 540, DisplayW: 960, DisplayH: 540, HSpace: 4, VSpace: 24, CursorLeftmost: true},
	FormatQhdVert:  {ViewW: 960, ViewH: 540, DisplayW: 960, DisplayH: 540, HSpace: 12, VSpace: 24, CursorLeftmost: false},
	FormatSdHorz:   {ViewW: 960, ViewH: 480, DisplayW: 720, DisplayH: 480, HSpace: 4, VSpace: 16, CursorLeftmost: true},
	FormatSdVert:   {ViewW: 720, ViewH: 480, DisplayW: 720, DisplayH: 480, HSpace: 8, VSpace: 24, CursorLeftmost: false},
	FormatProfileC: {ViewW: 330, ViewH: 180, DisplayW: 320, DisplayH: 180, HSpace: 2, VSpace: 6, CursorLeftmost: true, ForceDefaultHemming: true},
}

// mapB24Format maps a b24.CaptionFormat (from the management-data
// language entry) to our DisplayFormat enum: other horizontal formats map
// to qhd-horz, other vertical formats to qhd-vert, and the remaining
// formats fall back to qhd-horz, matching the original source's
// practice of narrowing the format space at the message boundary.
func mapB24Format(f b24.CaptionFormat, oneseg bool) DisplayFormat {
	if oneseg {
		return FormatProfileC
	}
	switch f {
	case b24.FormatQhdHorz, b24.FormatStandardDensityHorz, b24.FormatHighDensityHorz, b24.FormatFhdHorz, b24.FormatHdHorz:
		return FormatQhdHorz
	case b24.FormatQhdVert, b24.FormatStandardDensityVert, b24.FormatHighDensityVert, b24.FormatFhdVert, b24.FormatHdVert:
		return FormatQhdVert
	case b24.FormatSdHorz:
		return FormatSdHorz
	case b24.FormatSdVert:
		return FormatSdVert
	default:
		return FormatQhdHorz
	}
}

// SectionConfig is the eight-multiplier geometry table derived from the
// current char-size opcode (spec.md §4.2's "SECTION_CONFIG derivation").
// The exact per-size ratios aren't specified by the distilled spec, so
// these follow the conventional ARIB broadcast profile ratios used by
// other open caption decoders: small/micro halve both axes, medium
// halves height only, the SZX "-W" variants double one or both axes.
type SectionConfig struct {
	FontWidthFactor  float64
	FontHeightFactor float64
	HSpaceFactor     float64
	VSpaceFactor     float64
	LeftSpaceFactor  float64
	RightSpaceFactor float64
	UpperSpaceFactor float64
	LowerSpaceFactor float64
}

// CharSizeSpecial1/CharSizeSpecial2 have no distinct ratio documented in
// the distilled spec either; they're placeholders pending real broadcast
// samples that exercise them and fall back to the normal ratio like every
// other unmapped size in sectionConfigFor.
var sectionConfigs = map[b24.CharSize]SectionConfig{
	b24.CharSizeNormal:    {1, 1, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
	b24.CharSizeSmall:     {0.5, 0.5, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
	b24.CharSizeMedium:    {1, 0.5, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
	b24.CharSizeMicro:     {0.5, 0.5, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
	b24.CharSizeHighW:     {1, 2, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
	b24.CharSizeWidthW:    {2, 1, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
	b24.CharSizeSizeW:     {2, 2, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
	b24.CharSizeSpecial1:  {1, 1, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
	b24.CharSizeSpecial2:  {1, 1, 1, 1, 0.0625, 0.125, 0.0625, 0.125},
}

func sectionConfigFor(cs b24.CharSize) SectionConfig {
	if c, ok := sectionConfigs[cs]; ok {
		return c
	}
	return sectionConfigs[b24.CharSizeNormal]
}

// charGeometry is the fully-resolved cell size in pixels for a given
// character-composition dot size, the format table's base spacing, and
// the current section config, truncated toward zero per spec.md §4.2. The
// cell is the font box plus the effective inter-character spacing
// (hSpacing/vSpacing scaled by the section config's space factors) — not
// the font box scaled by the space factor on its own, which undercounts
// the advance the format-table spacing is meant to contribute.
func charGeometry(compW, compH, hSpacing, vSpacing float64, cfg SectionConfig) (charW, charH, hSpace, vSpace float64) {
	fontW := truncTowardZero(compW * cfg.FontWidthFactor)
	fontH := truncTowardZero(compH * cfg.FontHeightFactor)
	hSpace = truncTowardZero(hSpacing * cfg.HSpaceFactor)
	vSpace = truncTowardZero(vSpacing * cfg.VSpaceFactor)
	charW = fontW + hSpace
	charH = fontH + vSpace
	return
}

func truncTowardZero(v float64) float64 {
	if v < 0 {
		return -float64(int64(-v))
	}
	return float64(int64(v))
}
