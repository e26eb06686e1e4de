package caption

// highlightPolygons builds the highlight/underline outline polygons for
// one character cell, following spec.md §4.2's bit encoding: bit0=bottom
// (set directly by HLC or folded in by underline), bit1=right, bit2=top,
// bit3=left. combined = hlc | (underline ? 0b0001 : 0).
//
// Each set bit contributes one edge-strip polygon using the coordinate
// formula from spec.md: l=x, lw=x+1, r=x+cw, rw=r-1, t=y-ch, tw=t+1,
// b=y, bw=b-1. This reproduces the four single-bit cases in the spec's
// table exactly; compound bit patterns become the union of the
// contributing edge strips, satisfying the testable property that
// polygons(h, underline) == polygons(h|1, false).
func highlightPolygons(hlc int, underline bool, x, y, cw, ch float64) [][]Point2 {
	combined := hlc
	if underline {
		combined |= 0b0001
	}
	if combined == 0 {
		return nil
	}

	l, lw := x, x+1
	r, rw := x+cw, x+cw-1
	t, tw := y-ch, y-ch+1
	b, bw := y, y-1

	var polys [][]Point2
	if combined&0b0001 != 0 { // bottom
		polys = append(polys, []Point2{{l, b}, {r, b}, {r, bw}, {l, bw}})
	}
	if combined&0b0010 != 0 { // right
		polys = append(polys, []Point2{{r, t}, {r, b}, {rw, b}, {rw, t}})
	}
	if combined&0b0100 != 0 { // top
		polys = append(polys, []Point2{{l, t}, {r, t}, {r, tw}, {l, tw}})
	}
	if combined&0b1000 != 0 { // left
		polys = append(polys, []Point2{{l, t}, {l, b}, {lw, b}, {lw, t}})
	}
	return polys
}

// Point2 is a raw coordinate pair used while building polygon primitives,
// distinct from Primitive's Point to keep polygon construction
// independent of the primitive-emission helpers.
type Point2 struct{ X, Y float64 }
