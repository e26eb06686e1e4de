package b24

import "strings"

// DecodeString renders an 8-unit code byte string (as carried by SI
// descriptors such as service/network/event names) into UTF-8 text. It
// reuses the caption decoder with DefaultOptions and concatenates every
// printable character's rendering, skipping control opcodes — SI text
// fields carry C1 opcodes only for mid-string size/color changes, which
// this helper's callers (channel/service listings) have no use for.
func DecodeString(data []byte) (string, error) {
	chars := Decode(data, DefaultOptions, nil)
	var b strings.Builder
	for _, c := range chars {
		switch c.Kind {
		case OpGeneric:
			b.WriteString(DecodeRune(c.Generic))
		case OpMosaic:
			b.WriteByte(c.Mosaic.Code.Get())
		case OpSpace:
			b.WriteByte(' ')
		}
	}
	return b.String(), nil
}
