package b24

import (
	"go.uber.org/zap"
)

// GraphicSet identifies which character plane a G0..G3 register currently
// designates. The full 32-member enumeration mirrors isdb::eight::decode's
// GraphicSet (original_source), since caption and superimpose streams both
// rely on DRCS designation switching between all sixteen DRCS slots.
type GraphicSet int

const (
	GSKanji GraphicSet = iota
	GSAlnum
	GSHira
	GSKata
	GSMosaicA
	GSMosaicB
	GSMosaicC
	GSMosaicD
	GSPropAlnum
	GSPropHira
	GSPropKata
	GSJisXKata
	GSJisKanjiPlane1
	GSJisKanjiPlane2
	GSExtraSymbols
	GSDrcs0
	GSDrcs1
	GSDrcs2
	GSDrcs3
	GSDrcs4
	GSDrcs5
	GSDrcs6
	GSDrcs7
	GSDrcs8
	GSDrcs9
	GSDrcs10
	GSDrcs11
	GSDrcs12
	GSDrcs13
	GSDrcs14
	GSDrcs15
	GSMacro
)

// isTwoByte reports whether a graphic set consumes two graphic-region bytes
// per character (kanji planes, extra symbols, and DRCS-0).
func (g GraphicSet) isTwoByte() bool {
	switch g {
	case GSKanji, GSJisKanjiPlane1, GSJisKanjiPlane2, GSExtraSymbols, GSDrcs0:
		return true
	default:
		return false
	}
}

// Designator names one of the four graphic-set registers G0..G3.
type Designator int

const (
	G0 Designator = iota
	G1
	G2
	G3
)

// Options selects the initial graphic-set designations and GL/GR
// invocations for a statement. The three presets mirror the source's
// DEFAULT / CAPTION / ONESEG_CAPTION constants.
type Options struct {
	GraphicSets [4]GraphicSet
	GL          Designator
	GR          Designator
}

var (
	// DefaultOptions is used for superimpose (independent text display)
	// data, matching isdb::eight::decode::Options::DEFAULT.
	DefaultOptions = Options{
		GraphicSets: [4]GraphicSet{GSKanji, GSAlnum, GSHira, GSKata},
		GL:          G0,
		GR:          G2,
	}
	// CaptionOptions is used for full-seg caption streams.
	CaptionOptions = Options{
		GraphicSets: [4]GraphicSet{GSKanji, GSAlnum, GSHira, GSMacro},
		GL:          G0,
		GR:          G2,
	}
	// OnesegCaptionOptions is used for one-seg caption streams: G1 holds
	// DRCS-1 and is invoked into GL, and GR invokes G0 (kanji).
	OnesegCaptionOptions = Options{
		GraphicSets: [4]GraphicSet{GSKanji, GSDrcs1, GSHira, GSMacro},
		GL:          G1,
		GR:          G0,
	}
)

// decoder walks a statement's bytes producing AribChar values. It tracks
// the G0..G3 designation state and the macro table across the whole
// statement, since MACRO (0x95) redefinitions persist until redefined.
type decoder struct {
	data []byte
	pos  int

	graphicSets [4]GraphicSet
	gl, gr      Designator

	// macros holds the raw substitution bytes for macro codes 0x21..0x7E,
	// indexed by code-0x21. Broadcast streams essentially never carry
	// MACRO-defined escape sequences in practice, so macro bodies are
	// recorded but not re-interpreted as nested opcodes — callers see a
	// single informational no-op rather than substituted control codes.
	macros [94][]byte

	log *zap.Logger
}

// Decode parses a full ARIB 8-unit statement into a sequence of AribChar
// values using the given initial options.
func Decode(data []byte, opts Options, log *zap.Logger) []AribChar {
	if log == nil {
		log = zap.NewNop()
	}
	d := &decoder{
		data:        data,
		graphicSets: opts.GraphicSets,
		gl:          opts.GL,
		gr:          opts.GR,
		log:         log,
	}
	var out []AribChar
	for {
		c, ok := d.next()
		if !ok {
			break
		}
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

func (d *decoder) eof() bool { return d.pos >= len(d.data) }

func (d *decoder) readByte() (uint8, bool) {
	if d.eof() {
		return 0, false
	}
	b := d.data[d.pos]
	d.pos++
	return b, true
}

func (d *decoder) skip(n int) {
	d.pos += n
	if d.pos > len(d.data) {
		d.pos = len(d.data)
	}
}

func (d *decoder) designate(g Designator, set GraphicSet) {
	d.graphicSets[g] = set
}

// getGraphic builds the printable AribChar for a single graphic-region
// code taken from the given designator's currently designated set,
// consuming a second byte first for two-byte planes.
func (d *decoder) getGraphic(g Designator, c1 uint8) (*AribChar, bool) {
	set := d.graphicSets[g]
	gc1 := NewGraphicCode(c1)

	if set == GSMacro {
		// MACRO-designated register (G3 in the caption presets, reached
		// through SS3 or LS3): the code is logged and consumed, and no
		// macro body is replayed.
		d.log.Debug("b24: graphic read from macro-designated register", zap.Uint8("code", c1))
		return nil, true
	}

	if set.isTwoByte() {
		c2, ok := d.readByte()
		if !ok {
			return nil, false
		}
		c2 &= 0x7F
		if c2 < 0x21 || c2 > 0x7E {
			// not a graphic code: drop the lead byte and decode this
			// byte on its own next time round
			d.pos--
			return nil, true
		}
		gc2 := NewGraphicCode(c2)
		if set == GSDrcs0 {
			return &AribChar{Kind: OpDrcs, Drcs: DrcsCharCode{Set: 0, Code1: gc1, Code2: gc2}}, true
		}
		var gs GenericSet
		switch set {
		case GSKanji:
			gs = SetKanji
		case GSJisKanjiPlane1:
			gs = SetJisKanjiPlane1
		case GSJisKanjiPlane2:
			gs = SetJisKanjiPlane2
		case GSExtraSymbols:
			gs = SetExtraSymbols
		}
		return &AribChar{Kind: OpGeneric, Generic: GenericChar{Set: gs, C1: gc1, C2: gc2}}, true
	}

	switch set {
	case GSAlnum:
		return &AribChar{Kind: OpGeneric, Generic: GenericChar{Set: SetAlnum, C1: gc1}}, true
	case GSHira:
		return &AribChar{Kind: OpGeneric, Generic: GenericChar{Set: SetHira, C1: gc1}}, true
	case GSKata:
		return &AribChar{Kind: OpGeneric, Generic: GenericChar{Set: SetKata, C1: gc1}}, true
	case GSPropAlnum:
		return &AribChar{Kind: OpGeneric, Generic: GenericChar{Set: SetPropAlnum, C1: gc1}}, true
	case GSPropHira:
		return &AribChar{Kind: OpGeneric, Generic: GenericChar{Set: SetPropHira, C1: gc1}}, true
	case GSPropKata:
		return &AribChar{Kind: OpGeneric, Generic: GenericChar{Set: SetPropKata, C1: gc1}}, true
	case GSJisXKata:
		return &AribChar{Kind: OpGeneric, Generic: GenericChar{Set: SetJisXKata, C1: gc1}}, true
	case GSMosaicA:
		return &AribChar{Kind: OpMosaic, Mosaic: MosaicChar{Set: MosaicA, Code: gc1}}, true
	case GSMosaicB:
		return &AribChar{Kind: OpMosaic, Mosaic: MosaicChar{Set: MosaicB, Code: gc1}}, true
	case GSMosaicC:
		return &AribChar{Kind: OpMosaic, Mosaic: MosaicChar{Set: MosaicC, Code: gc1}}, true
	case GSMosaicD:
		return &AribChar{Kind: OpMosaic, Mosaic: MosaicChar{Set: MosaicD, Code: gc1}}, true
	default:
		// GSDrcs1..GSDrcs15
		n := int(set - GSDrcs1 + 1)
		return &AribChar{Kind: OpDrcs, Drcs: DrcsCharCode{Set: n, Code1: gc1}}, true
	}
}

func (d *decoder) readGraphic(g Designator) (*AribChar, bool) {
	c1, ok := d.readByte()
	if !ok {
		return nil, false
	}
	if c1 < 0x21 || c1 > 0x7E {
		// malformed stream; treat as consumed, emit nothing
		return nil, true
	}
	return d.getGraphic(g, c1)
}

// next decodes one AribChar (or a non-printable opcode) starting at the
// current position. A nil, true result means a byte was consumed with no
// corresponding AribChar (e.g. LS0/designation). false means EOF.
func (d *decoder) next() (*AribChar, bool) {
	b, ok := d.readByte()
	if !ok {
		return nil, false
	}

	switch {
	case b >= 0x21 && b <= 0x7E:
		return d.getGraphic(d.gl, b)
	case b >= 0xA1 && b <= 0xFE:
		return d.getGraphic(d.gr, b&0x7F)
	}

	switch b {
	case 0x00:
		return &AribChar{Kind: OpNull}, true
	case 0x07:
		d.log.Debug("b24: deprecated BEL code")
		return nil, true
	case 0x08:
		return &AribChar{Kind: OpActivePositionBackward}, true
	case 0x09:
		return &AribChar{Kind: OpActivePositionForward}, true
	case 0x0A:
		return &AribChar{Kind: OpActivePositionDown}, true
	case 0x0B:
		return &AribChar{Kind: OpActivePositionUp}, true
	case 0x0C:
		return &AribChar{Kind: OpClearScreen}, true
	case 0x0D:
		return &AribChar{Kind: OpActivePositionReturn}, true
	case 0x0E:
		d.gl = G1
		return nil, true
	case 0x0F:
		d.gl = G0
		return nil, true
	case 0x16:
		p, ok := d.readByte()
		if !ok {
			return nil, false
		}
		return &AribChar{Kind: OpParameterizedActivePositionForward, P1: uint32(p & 0x3F)}, true
	case 0x18:
		d.log.Debug("b24: deprecated CAN code")
		return nil, true
	case 0x19:
		return d.readGraphic(G2)
	case 0x1C:
		p1, ok1 := d.readByte()
		p2, ok2 := d.readByte()
		if !ok1 || !ok2 {
			return nil, false
		}
		return &AribChar{Kind: OpActivePositionSet, P1: uint32(p1 & 0x3F), P2: uint32(p2 & 0x3F)}, true
	case 0x1D:
		return d.readGraphic(G3)
	case 0x1E:
		return &AribChar{Kind: OpRecordSeparator}, true
	case 0x1F:
		return &AribChar{Kind: OpUnitSeparator}, true
	case 0x20:
		return &AribChar{Kind: OpSpace}, true
	case 0x7F:
		return &AribChar{Kind: OpDelete}, true
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87:
		return &AribChar{Kind: OpColorForeground, P1: uint32(b & 0x07)}, true
	case 0x88:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeSmall)}, true
	case 0x89:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeMedium)}, true
	case 0x8A:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeNormal)}, true
	case 0x8B:
		return d.readSZX()
	case 0x90:
		return d.readCOL()
	case 0x91:
		return d.readFLC()
	case 0x92:
		// CDC: deprecated, param length varies; consume conservatively.
		d.log.Debug("b24: deprecated CDC code")
		return nil, true
	case 0x93:
		return d.readPOL()
	case 0x94:
		return d.readWMM()
	case 0x95:
		return d.readMacro()
	case 0x97:
		p, ok := d.readByte()
		if !ok {
			return nil, false
		}
		return &AribChar{Kind: OpHighlightBlock, P1: uint32(p & 0x0F)}, true
	case 0x98:
		p, ok := d.readByte()
		if !ok {
			return nil, false
		}
		return &AribChar{Kind: OpRepeatCharacter, P1: uint32(p & 0x3F)}, true
	case 0x99:
		return &AribChar{Kind: OpStopLining}, true
	case 0x9A:
		return &AribChar{Kind: OpStartLining}, true
	case 0x9B:
		return d.readCSI()
	case 0x9D:
		return d.readTime()
	case 0x1B:
		return d.readEsc()
	default:
		d.log.Debug("b24: unknown arib char", zap.Uint8("byte", b))
		return nil, true
	}
}

func (d *decoder) readSZX() (*AribChar, bool) {
	p, ok := d.readByte()
	if !ok {
		return nil, false
	}
	switch p {
	case 0x60:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeMicro)}, true
	case 0x41:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeHighW)}, true
	case 0x44:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeWidthW)}, true
	case 0x45:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeSizeW)}, true
	case 0x6B:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeSpecial1)}, true
	case 0x64:
		return &AribChar{Kind: OpCharSize, P1: uint32(CharSizeSpecial2)}, true
	default:
		d.log.Debug("b24: unknown SZX parameter", zap.Uint8("byte", p))
		return nil, true
	}
}

func (d *decoder) readCOL() (*AribChar, bool) {
	p, ok := d.readByte()
	if !ok {
		return nil, false
	}
	switch {
	case p >= 0x48 && p <= 0x4F:
		return &AribChar{Kind: OpColorForeground, P1: uint32(p & 0x0F)}, true
	case p >= 0x50 && p <= 0x5F:
		return &AribChar{Kind: OpColorBackground, P1: uint32(p & 0x0F)}, true
	case p >= 0x60 && p <= 0x6F:
		return &AribChar{Kind: OpColorHalfForeground, P1: uint32(p & 0x0F)}, true
	case p >= 0x70 && p <= 0x7F:
		return &AribChar{Kind: OpColorHalfBackground, P1: uint32(p & 0x0F)}, true
	case p == 0x20:
		p2, ok := d.readByte()
		if !ok {
			return nil, false
		}
		return &AribChar{Kind: OpColorPalette, P1: uint32(p2 & 0x0F)}, true
	default:
		d.log.Debug("b24: unknown COL parameter", zap.Uint8("byte", p))
		return nil, true
	}
}

func (d *decoder) readFLC() (*AribChar, bool) {
	p, ok := d.readByte()
	if !ok {
		return nil, false
	}
	switch p {
	case 0x40:
		return &AribChar{Kind: OpFlushingControlStartNormal}, true
	case 0x47:
		return &AribChar{Kind: OpFlushingControlStartInverted}, true
	case 0x4F:
		return &AribChar{Kind: OpFlushingControlStop}, true
	default:
		d.log.Debug("b24: unknown FLC parameter", zap.Uint8("byte", p))
		return nil, true
	}
}

func (d *decoder) readPOL() (*AribChar, bool) {
	p, ok := d.readByte()
	if !ok {
		return nil, false
	}
	switch p {
	case 0x40:
		return &AribChar{Kind: OpPatternPolarityNormal}, true
	case 0x41:
		return &AribChar{Kind: OpPatternPolarityInverted1}, true
	case 0x42:
		return &AribChar{Kind: OpPatternPolarityInverted2}, true
	default:
		d.log.Debug("b24: unknown POL parameter", zap.Uint8("byte", p))
		return nil, true
	}
}

func (d *decoder) readWMM() (*AribChar, bool) {
	p, ok := d.readByte()
	if !ok {
		return nil, false
	}
	switch p {
	case 0x40:
		return &AribChar{Kind: OpWritingModeBoth}, true
	case 0x44:
		return &AribChar{Kind: OpWritingModeForeground}, true
	case 0x45:
		return &AribChar{Kind: OpWritingModeBackground}, true
	default:
		d.log.Debug("b24: unknown WMM parameter", zap.Uint8("byte", p))
		return nil, true
	}
}

// readMacro handles the MACRO opcode (0x95). Definitions are recorded for
// completeness but never re-interpreted as nested control codes — see the
// decoder struct's macros field comment.
func (d *decoder) readMacro() (*AribChar, bool) {
	mode, ok := d.readByte()
	if !ok {
		return nil, false
	}
	switch mode {
	case 0x40, 0x41:
		idx, ok := d.readByte()
		if !ok || idx < 0x21 || idx > 0x7E {
			return nil, true
		}
		start := d.pos
		for !d.eof() {
			if d.data[d.pos] == 0x95 && d.pos+1 < len(d.data) && d.data[d.pos+1] == 0x4F {
				d.macros[idx-0x21] = append([]byte(nil), d.data[start:d.pos]...)
				d.skip(2)
				break
			}
			d.pos++
		}
		d.log.Debug("b24: macro defined", zap.Uint8("index", idx))
		return nil, true
	default:
		d.log.Debug("b24: unknown MACRO mode", zap.Uint8("byte", mode))
		return nil, true
	}
}

// readParamSequence parses numeric parameters separated by 0x3B,
// terminated either by an intermediate byte (0x20) followed by a final
// byte, or directly by a final byte with no intermediate.
func (d *decoder) readParamSequence() (params []uint32, final uint8, ok bool) {
	params = make([]uint32, 0, 4)
	cur := uint32(0)
	haveCur := false
	for {
		b, more := d.readByte()
		if !more {
			return nil, 0, false
		}
		switch {
		case b >= 0x30 && b <= 0x39:
			cur = cur*10 + uint32(b-0x30)
			haveCur = true
		case b == 0x3B:
			params = append(params, cur)
			cur, haveCur = 0, false
		case b == 0x20:
			if haveCur {
				params = append(params, cur)
			}
			fb, more := d.readByte()
			if !more {
				return nil, 0, false
			}
			return params, fb, true
		default:
			if haveCur {
				params = append(params, cur)
			}
			return params, b, true
		}
	}
}

func (d *decoder) readCSI() (*AribChar, bool) {
	params, final, ok := d.readParamSequence()
	if !ok {
		return nil, false
	}
	p := func(i int) uint32 {
		if i < len(params) {
			return params[i]
		}
		return 0
	}

	switch final {
	case 0x53: // SWF
		if len(params) == 1 {
			return &AribChar{Kind: OpSetWritingFormatInit, P1: p(0)}, true
		}
		c := &AribChar{Kind: OpSetWritingFormatDetails, Bool1: p(0) == 8, P1: p(1), P2: p(2)}
		if len(params) > 3 {
			c.P3, c.HasP4 = p(3), true
		}
		return c, true
	case 0x54: // CCC
		if len(params) == 1 {
			return &AribChar{Kind: OpCompositeCharacterCompositionEnd}, true
		}
		switch {
		case len(params) > 2 && p(2) != 0:
			return &AribChar{Kind: OpCompositeCharacterCompositionStartOr, P1: p(0), P2: p(1)}, true
		case len(params) > 3 && p(3) != 0:
			return &AribChar{Kind: OpCompositeCharacterCompositionStartAnd, P1: p(0), P2: p(1)}, true
		default:
			return &AribChar{Kind: OpCompositeCharacterCompositionStartXor, P1: p(0), P2: p(1)}, true
		}
	case 0x6E:
		return &AribChar{Kind: OpRasterColorCommand, P1: p(0)}, true
	case 0x61:
		return &AribChar{Kind: OpActiveCoordinatePositionSet, P1: p(0), P2: p(1)}, true
	case 0x56:
		return &AribChar{Kind: OpSetDisplayFormat, P1: p(0), P2: p(1)}, true
	case 0x5F:
		return &AribChar{Kind: OpSetDisplayPosition, P1: p(0), P2: p(1)}, true
	case 0x57:
		return &AribChar{Kind: OpCharacterCompositionDotDesignation, P1: p(0), P2: p(1)}, true
	case 0x5B, 0x5C:
		// deprecated PLD/PLU: consumed, no AribChar emitted
		return nil, true
	case 0x58:
		return &AribChar{Kind: OpSetHorizontalSpacing, P1: p(0)}, true
	case 0x59:
		return &AribChar{Kind: OpSetVerticalSpacing, P1: p(0)}, true
	case 0x42:
		return &AribChar{Kind: OpCharacterDeformation, P1: p(0), P2: p(1)}, true
	case 0x5D:
		return &AribChar{Kind: OpColoringBlock, Bool1: p(0) == 0, P1: p(0)}, true
	case 0x5E:
		encoded := ((p(1)/100)&0xF)<<4 | (p(1)%100)&0xF
		return &AribChar{Kind: OpRasterColorDesignation, P1: p(0), P2: encoded}, true
	case 0x62:
		return &AribChar{Kind: OpSwitchControl, P1: p(0), P2: p(1), P3: p(2)}, true
	case 0x65:
		return &AribChar{Kind: OpCharacterFontSet, P1: p(0)}, true
	case 0x63: // ORN
		switch p(0) {
		case 0:
			return &AribChar{Kind: OpOrnamentControlClear}, true
		case 1:
			return &AribChar{Kind: OpOrnamentControlHemming, P1: p(1)}, true
		case 2:
			return &AribChar{Kind: OpOrnamentControlShade, P1: p(1)}, true
		case 3:
			return &AribChar{Kind: OpOrnamentControlHollow}, true
		default:
			d.log.Debug("b24: unknown ORN parameter", zap.Uint32("p1", p(0)))
			return nil, true
		}
	case 0x64: // MDF
		switch p(0) {
		case 0:
			return &AribChar{Kind: OpFontStandard}, true
		case 1:
			return &AribChar{Kind: OpFontBold}, true
		case 2:
			return &AribChar{Kind: OpFontSlated}, true
		case 3:
			return &AribChar{Kind: OpFontBoldSlated}, true
		default:
			d.log.Debug("b24: unknown MDF parameter", zap.Uint32("p1", p(0)))
			return nil, true
		}
	case 0x66: // XCS
		switch p(0) {
		case 0:
			return &AribChar{Kind: OpExternalCharacterSetStart}, true
		case 1:
			return &AribChar{Kind: OpExternalCharacterSetEnd}, true
		default:
			return nil, true
		}
	case 0x68:
		return &AribChar{Kind: OpBuiltinSoundReplay, P1: p(0)}, true
	case 0x69: // ACS
		switch p(0) {
		case 0:
			return &AribChar{Kind: OpAlternativeCharacterSetStart}, true
		case 1:
			return &AribChar{Kind: OpAlternativeCharacterSetEnd}, true
		case 2:
			return &AribChar{Kind: OpAlternativeCharacterSetAlnumKataStart}, true
		case 3:
			return &AribChar{Kind: OpAlternativeCharacterSetAlnumKataEnd}, true
		case 4:
			return &AribChar{Kind: OpAlternativeCharacterSetSpeechStart}, true
		case 5:
			return &AribChar{Kind: OpAlternativeCharacterSetSpeechEnd}, true
		default:
			return nil, true
		}
	case 0x6A: // UED
		switch p(0) {
		case 0:
			return &AribChar{Kind: OpEmbedInvisibleDataStart}, true
		case 1:
			return &AribChar{Kind: OpEmbedInvisibleDataEnd}, true
		case 2:
			return &AribChar{Kind: OpEmbedInvisibleDataLinkedCaptionStart}, true
		case 3:
			return &AribChar{Kind: OpEmbedInvisibleDataLinkedCaptionEnd}, true
		default:
			return nil, true
		}
	case 0x6F:
		return &AribChar{Kind: OpSkipCharacterSet}, true
	default:
		d.log.Debug("b24: unknown CSI final byte", zap.Uint8("byte", final))
		return nil, true
	}
}

func (d *decoder) readTime() (*AribChar, bool) {
	b, ok := d.readByte()
	if !ok {
		return nil, false
	}
	switch b {
	case 0x20:
		p, ok := d.readByte()
		if !ok {
			return nil, false
		}
		return &AribChar{Kind: OpWaitForProcess, P1: uint32(p & 0x3F)}, true
	case 0x28:
		mode, ok := d.readByte()
		if !ok {
			return nil, false
		}
		switch mode {
		case 0x40:
			return &AribChar{Kind: OpTimeControlMode, TimeMode: TimeControlFree}, true
		case 0x41:
			return &AribChar{Kind: OpTimeControlMode, TimeMode: TimeControlRealTime}, true
		case 0x42:
			return &AribChar{Kind: OpTimeControlMode, TimeMode: TimeControlOffsetTime}, true
		case 0x43:
			return &AribChar{Kind: OpTimeControlMode, TimeMode: TimeControlReserved}, true
		default:
			d.log.Debug("b24: unknown TIME mode", zap.Uint8("byte", mode))
			return nil, true
		}
	case 0x29:
		params, final, ok := d.readParamSequence()
		if !ok {
			return nil, false
		}
		p := func(i int) uint32 {
			if i < len(params) {
				return params[i]
			}
			return 0
		}
		switch final {
		case 0x40:
			return &AribChar{Kind: OpPresentationStartPlaybackTime, P1: p(0)*3600000 + p(1)*60000 + p(2)*1000 + p(3)}, true
		case 0x41:
			return &AribChar{Kind: OpOffsetTime, P1: p(0)*3600000 + p(1)*60000 + p(2)*1000 + p(3)}, true
		case 0x42:
			return &AribChar{Kind: OpPerformanceTime, P1: p(0)*3600 + p(1)*60 + p(2)}, true
		case 0x43:
			return &AribChar{Kind: OpDisplayEndTime, P1: p(0)*3600000 + p(1)*60000 + p(2)*1000 + p(3)}, true
		default:
			d.log.Debug("b24: unknown TIME(0x29) final byte", zap.Uint8("byte", final))
			return nil, true
		}
	default:
		d.log.Debug("b24: unknown TIME byte", zap.Uint8("byte", b))
		return nil, true
	}
}

// readEsc handles the ISO-2022-style escape sequences: locking-shift
// invocations (LS1R/LS2/LS2R/LS3/LS3R) and G0..G3 graphic-set designation.
func (d *decoder) readEsc() (*AribChar, bool) {
	b, ok := d.readByte()
	if !ok {
		return nil, false
	}
	switch b {
	case 0x6E:
		d.gl = G2
		return nil, true
	case 0x6F:
		d.gl = G3
		return nil, true
	case 0x7E:
		d.gr = G1
		return nil, true
	case 0x7D:
		d.gr = G2
		return nil, true
	case 0x7C:
		d.gr = G3
		return nil, true
	case 0x24:
		return d.readEscDesignate2Byte()
	case 0x28, 0x29, 0x2A, 0x2B:
		reg := Designator(b - 0x28)
		return d.readEscDesignate1Byte(reg)
	default:
		d.log.Debug("b24: unknown escape sequence", zap.Uint8("byte", b))
		return nil, true
	}
}

func (d *decoder) readEscDesignate2Byte() (*AribChar, bool) {
	b, ok := d.readByte()
	if !ok {
		return nil, false
	}
	// ESC 0x24 <final> designates G0; ESC 0x24 [0x29-0x2B] <final>
	// designates G1..G3.
	reg := G0
	final := b
	if b >= 0x28 && b <= 0x2B {
		reg = Designator(b - 0x28)
		f, ok := d.readByte()
		if !ok {
			return nil, false
		}
		final = f
	}
	switch final {
	case 0x42:
		d.designate(reg, GSKanji)
	case 0x39:
		d.designate(reg, GSJisKanjiPlane1)
	case 0x3A:
		d.designate(reg, GSJisKanjiPlane2)
	case 0x3B:
		d.designate(reg, GSExtraSymbols)
	case 0x20:
		// 2-byte DRCS designation: ESC 0x24 [0x28-0x2B] 0x20 0x40 -> DRCS-0
		f2, ok := d.readByte()
		if !ok {
			return nil, false
		}
		if f2 == 0x40 {
			d.designate(reg, GSDrcs0)
		} else {
			d.log.Debug("b24: unknown 2-byte DRCS final", zap.Uint8("byte", f2))
		}
	default:
		d.log.Debug("b24: unknown 2-byte designation final", zap.Uint8("byte", final))
	}
	return nil, true
}

func (d *decoder) readEscDesignate1Byte(reg Designator) (*AribChar, bool) {
	b, ok := d.readByte()
	if !ok {
		return nil, false
	}
	if b == 0x20 {
		final, ok := d.readByte()
		if !ok {
			return nil, false
		}
		if final >= 0x41 && final <= 0x4F {
			d.designate(reg, GSDrcs1+GraphicSet(final-0x41))
		} else if final == 0x70 {
			d.designate(reg, GSMacro)
		} else {
			d.log.Debug("b24: unknown 1-byte DRCS final", zap.Uint8("byte", final))
		}
		return nil, true
	}
	switch b {
	case 0x4A:
		d.designate(reg, GSAlnum)
	case 0x30:
		d.designate(reg, GSHira)
	case 0x31:
		d.designate(reg, GSKata)
	case 0x32:
		d.designate(reg, GSMosaicA)
	case 0x33:
		d.designate(reg, GSMosaicB)
	case 0x34:
		d.designate(reg, GSMosaicC)
	case 0x35:
		d.designate(reg, GSMosaicD)
	case 0x36:
		d.designate(reg, GSPropAlnum)
	case 0x37:
		d.designate(reg, GSPropHira)
	case 0x38:
		d.designate(reg, GSPropKata)
	case 0x49:
		d.designate(reg, GSJisXKata)
	default:
		d.log.Debug("b24: unknown 1-byte designation final", zap.Uint8("byte", b))
	}
	return nil, true
}
