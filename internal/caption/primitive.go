// Package caption implements the ARIB Caption State Machine (C2) and the
// Pending Queue (C3): together they turn scheduled CaptionPacket values
// into drawing primitives for a renderer façade instance.
package caption

// FlashingMode is attached to glyph/image primitives for the compositor
// to animate; the state machine never animates anything itself.
type FlashingMode int

const (
	FlashingNone FlashingMode = iota
	FlashingNormal
	FlashingInverted
)

// PrimitiveKind discriminates Primitive's tagged union.
type PrimitiveKind int

const (
	PrimitiveRect PrimitiveKind = iota
	PrimitivePolygon
	PrimitiveGlyph
	PrimitiveDrcsImage
)

// Point is a single polygon vertex in display-surface coordinates.
type Point struct{ X, Y float64 }

// Primitive is one abstract drawing operation emitted by the state
// machine. Per SPEC_FULL.md §5, rendering never touches a real drawing
// surface — the renderer façade hands these to whatever the host
// integration uses (canvas, GPU texture, terminal grid, ...).
type Primitive struct {
	Kind PrimitiveKind

	// Rect / glyph / DRCS image geometry.
	X, Y, W, H float64
	Color      int // effective palette-relative color index

	// Polygon geometry (stroke width 1, per spec.md §4.2).
	Points []Point

	// Glyph payload.
	Rune rune

	// DRCS payload.
	DrcsSet  int
	DrcsCode uint16

	Flashing FlashingMode

	// Hemming is the effective outline/edging color a compositor draws
	// around a glyph or DRCS image, per spec.md §4.2's ORN semantics.
	Hemming int
}
