package caption

import (
	"github.com/aznhe21/tavoo/internal/b24"
	"go.uber.org/zap"
)

// Machine is the Caption State Machine (C2): it owns one RendererState,
// one DRCS FontCache, and the management-data context that gates which
// data packets it accepts, per spec.md §4.2.
type Machine struct {
	State RendererState
	Drcs  *b24.FontCache

	log    *zap.Logger
	oneseg bool

	hasContext        bool
	group             Group
	languageTag       uint8
	dmfPlayback       b24.DisplayMode
	lastManagementPos float64

	useSubLang bool

	// idleExpiry defaults to spec.md §4.2's hardcoded 3-minute window
	// when zero; SetTimings overrides it from internal/config for
	// deployments that want a different idle/rewind-forward tolerance.
	idleExpiry float64
}

const defaultIdleExpirySeconds = 180

// SetTimings overrides the idle-expiry window (also used as the
// rewind-forward tolerance, per spec.md §4.2's single 3-minute constant)
// from internal/config.Config.
func (m *Machine) SetTimings(idleExpirySeconds float64) {
	m.idleExpiry = idleExpirySeconds
}

func (m *Machine) idleExpirySeconds() float64 {
	if m.idleExpiry > 0 {
		return m.idleExpiry
	}
	return defaultIdleExpirySeconds
}

// NewMachine returns a Machine with an empty DRCS cache and no
// management context established yet.
func NewMachine(log *zap.Logger, oneseg bool) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Machine{Drcs: b24.NewFontCache(), log: log, oneseg: oneseg}
	if oneseg {
		m.pinOnesegContext()
	}
	return m
}

// SetUseSubLang selects the second language entry of a management-data
// packet when available, per spec.md §4.2's language-selection rule.
func (m *Machine) SetUseSubLang(v bool) { m.useSubLang = v }

// ViewBox returns the current display format's fixed view-box dimensions,
// e.g. (960, 540) for qhd-horz per spec.md §4.2's format table.
func (m *Machine) ViewBox() (w, h float64) { return m.State.ViewBox() }

func (m *Machine) pinOnesegContext() {
	m.hasContext = true
	m.group = GroupA
	m.languageTag = 0
	m.dmfPlayback = b24.DisplaySelectable
	m.State.Reset(FormatProfileC)
}

// Reset fully reinitializes the machine: DRCS cache, display state, and
// management context, per spec.md §4.2's "renderer fully resets".
func (m *Machine) Reset() {
	m.Drcs.Clear()
	m.hasContext = false
	if m.oneseg {
		m.pinOnesegContext()
	} else {
		m.State.Reset(FormatQhdHorz)
	}
}

// Process dispatches one Packet at playback position pos, returning the
// emitted primitives and, if the statement contained a wait-for-process
// opcode, a postponed entry to re-enqueue.
func (m *Machine) Process(pos float64, p Packet) (prims []Primitive, postponed *PendingEntry) {
	switch p.Kind {
	case PacketManagementData:
		m.processManagementData(pos, p)
		return nil, nil
	case PacketData:
		if !m.acceptData(pos, p) {
			return nil, nil
		}
		return m.runDataUnits(pos, p.DataUnits)
	case PacketPostponed:
		return m.runStatement(pos, p.StatementTail)
	default:
		return nil, nil
	}
}

func (m *Machine) processManagementData(pos float64, p Packet) {
	if !m.oneseg && m.hasContext && p.Group != m.group {
		m.Reset()
	}

	if !m.oneseg {
		m.group = p.Group
		lang := selectLanguage(p.Languages, m.useSubLang)
		if lang != nil {
			m.languageTag = lang.LanguageTag
			m.dmfPlayback = lang.DmfPlayback
			m.State.Reset(mapB24Format(lang.Format, false))
		} else {
			m.State.Reset(FormatQhdHorz)
		}
		m.hasContext = true
	}
	m.lastManagementPos = pos

	m.ingestDrcsUnits(p.DataUnits)
}

func selectLanguage(langs []b24.CaptionLanguage, useSubLang bool) *b24.CaptionLanguage {
	if len(langs) == 0 {
		return nil
	}
	if useSubLang && len(langs) >= 2 {
		return &langs[1]
	}
	return &langs[0]
}

// acceptData applies spec.md §4.2's filtering/lifecycle rule: data
// packets are accepted only with an established context, matching group
// and language tag, and within 3 minutes forward of the last
// management-data position (a rewind resets the renderer).
func (m *Machine) acceptData(pos float64, p Packet) bool {
	if !m.oneseg && !m.hasContext {
		return false
	}
	if pos < m.lastManagementPos {
		m.Reset()
		return false
	}
	if pos-m.lastManagementPos > m.idleExpirySeconds() {
		m.Reset()
		return false
	}
	if !m.oneseg && (p.Group != m.group || p.LanguageTag != m.languageTag) {
		return false
	}
	m.ingestDrcsUnits(p.DataUnits)
	return true
}

// CheckIdle resets the machine if more than 3 minutes have elapsed since
// the last management-data packet, per spec.md §4.5: the façade's tick
// runs this expiration check every frame, independent of whether any
// pending entry is due.
func (m *Machine) CheckIdle(now float64) {
	if !m.oneseg && m.hasContext && now-m.lastManagementPos > m.idleExpirySeconds() {
		m.Reset()
	}
}

func (m *Machine) ingestDrcsUnits(units []b24.DataUnit) {
	for _, u := range units {
		switch u.Kind {
		case b24.DataUnitDrcsSb:
			m.ingestOneDrcsUnit(u.Raw, false)
		case b24.DataUnitDrcsDb:
			m.ingestOneDrcsUnit(u.Raw, true)
		}
	}
}

func (m *Machine) ingestOneDrcsUnit(raw []byte, isDb bool) {
	entries, err := b24.ParseDrcsDataUnit(raw, isDb)
	if err != nil {
		m.log.Debug("caption: malformed drcs data unit", zap.Error(err))
		return
	}
	for _, e := range entries {
		m.Drcs.ClearCode(e.Code)
		for _, font := range e.Fonts {
			if err := m.Drcs.Put(e.Code, font); err != nil {
				m.log.Debug("caption: dropped malformed drcs font", zap.Error(err))
			}
		}
	}
}

func (m *Machine) runDataUnits(pos float64, units []b24.DataUnit) (prims []Primitive, postponed *PendingEntry) {
	for _, u := range units {
		if u.Kind != b24.DataUnitStatementBody {
			continue
		}
		var opts b24.Options
		if m.oneseg {
			opts = b24.OnesegCaptionOptions
		} else {
			opts = b24.CaptionOptions
		}
		chars := b24.Decode(u.Raw, opts, m.log)
		p2, post := m.runStatement(pos, chars)
		prims = append(prims, p2...)
		if post != nil {
			postponed = post
			return prims, postponed
		}
	}
	return prims, postponed
}

// runStatement interprets a decoded AribChar sequence, mutating State and
// accumulating primitives, stopping immediately (and producing a
// postponed entry) on a wait-for-process opcode.
func (m *Machine) runStatement(pos float64, chars []b24.AribChar) (prims []Primitive, postponed *PendingEntry) {
	for i := 0; i < len(chars); i++ {
		c := chars[i]
		switch c.Kind {
		case b24.OpGeneric, b24.OpMosaic, b24.OpDrcs, b24.OpSpace, b24.OpDelete:
			prims = append(prims, m.emitRepeated(c)...)
			continue
		case b24.OpWaitForProcess:
			tail := append([]b24.AribChar(nil), chars[i+1:]...)
			return prims, &PendingEntry{
				Pos:    pos + float64(c.P1)/10,
				Packet: Packet{Kind: PacketPostponed, StatementTail: tail},
			}
		}
		prims = append(prims, m.applyOpcode(c)...)
	}
	return prims, nil
}

// emitRepeated handles RPC's "the next emission consumes the stored
// count" rule (spec.md §4.2 "Repeat"), then clears RepeatCharacter.
func (m *Machine) emitRepeated(c b24.AribChar) []Primitive {
	count := m.State.RepeatCharacter
	m.State.RepeatCharacter = noRepeat
	if count == noRepeat {
		return m.emitOne(c)
	}
	var prims []Primitive
	if count == repeatUntilWrap {
		// Repeat until the advance wraps; emit at least one character
		// even if wrapped is already true, per Open Question 1.
		for {
			prims = append(prims, m.emitOne(c)...)
			if m.State.Wrapped {
				break
			}
		}
		return prims
	}
	for i := 0; i < count; i++ {
		prims = append(prims, m.emitOne(c)...)
	}
	return prims
}

func (m *Machine) emitOne(c b24.AribChar) []Primitive {
	switch c.Kind {
	case b24.OpGeneric:
		return m.emitGlyph(c)
	case b24.OpMosaic:
		return m.emitMosaic(c)
	case b24.OpDrcs:
		return m.emitDrcs(c)
	case b24.OpSpace:
		return m.emitSpace()
	case b24.OpDelete:
		return m.emitDelete()
	default:
		return nil
	}
}

// cellTop returns the cell's top-left Y coordinate. CursorY tracks the
// cell's baseline (Reset/APS place it at DisplayTop + N*charH), so the
// cell itself paints one charH above that.
func (m *Machine) cellTop(charH float64) float64 {
	return m.State.CursorY - charH
}

func (m *Machine) cellRect(color int) Primitive {
	charW, charH, _, _ := m.State.CharGeometry()
	return Primitive{Kind: PrimitiveRect, X: m.State.CursorX, Y: m.cellTop(charH), W: charW, H: charH, Color: color}
}

func (m *Machine) highlightPrimitives() []Primitive {
	if m.State.Highlight == 0 && !m.State.Underline {
		return nil
	}
	fg, _ := m.State.EffectiveColors()
	charW, charH, _, _ := m.State.CharGeometry()
	polys := highlightPolygons(m.State.Highlight, m.State.Underline, m.State.CursorX, m.State.CursorY, charW, charH)
	out := make([]Primitive, 0, len(polys))
	for _, poly := range polys {
		pts := make([]Point, len(poly))
		for i, p := range poly {
			pts[i] = Point{X: p.X, Y: p.Y}
		}
		out = append(out, Primitive{Kind: PrimitivePolygon, Points: pts, Color: fg})
	}
	return out
}

func (m *Machine) emitGlyph(c b24.AribChar) []Primitive {
	_, bg := m.State.EffectiveColors()
	fg, _ := m.State.EffectiveColors()
	prims := []Primitive{m.cellRect(bg)}
	prims = append(prims, m.highlightPrimitives()...)
	r := []rune(b24.DecodeRune(c.Generic))
	var rn rune
	if len(r) > 0 {
		rn = r[0]
	}
	_, charH, _, _ := m.State.CharGeometry()
	prims = append(prims, Primitive{Kind: PrimitiveGlyph, X: m.State.CursorX, Y: m.cellTop(charH), Rune: rn, Color: fg, Flashing: m.State.Flashing, Hemming: m.State.EffectiveHemming()})
	m.advanceForward()
	return prims
}

func (m *Machine) emitMosaic(c b24.AribChar) []Primitive {
	_, bg := m.State.EffectiveColors()
	fg, _ := m.State.EffectiveColors()
	prims := []Primitive{m.cellRect(bg)}
	prims = append(prims, m.highlightPrimitives()...)
	_, charH, _, _ := m.State.CharGeometry()
	prims = append(prims, Primitive{Kind: PrimitiveGlyph, X: m.State.CursorX, Y: m.cellTop(charH), Rune: rune(c.Mosaic.Code.Get()), Color: fg, Flashing: m.State.Flashing, Hemming: m.State.EffectiveHemming()})
	m.advanceForward()
	return prims
}

func (m *Machine) emitDrcs(c b24.AribChar) []Primitive {
	_, bg := m.State.EffectiveColors()
	fg, _ := m.State.EffectiveColors()
	prims := []Primitive{m.cellRect(bg)}
	prims = append(prims, m.highlightPrimitives()...)
	charW, charH, _, _ := m.State.CharGeometry()
	prims = append(prims, Primitive{
		Kind: PrimitiveDrcsImage, X: m.State.CursorX, Y: m.cellTop(charH), W: charW, H: charH,
		DrcsSet: c.Drcs.Set, DrcsCode: c.Drcs.Number(), Color: fg, Flashing: m.State.Flashing, Hemming: m.State.EffectiveHemming(),
	})
	m.advanceForward()
	return prims
}

func (m *Machine) emitSpace() []Primitive {
	_, bg := m.State.EffectiveColors()
	prims := []Primitive{m.cellRect(bg)}
	m.advanceForward()
	return prims
}

func (m *Machine) emitDelete() []Primitive {
	fg, _ := m.State.EffectiveColors()
	prims := []Primitive{m.cellRect(fg)}
	m.advanceForward()
	return prims
}

func (m *Machine) advanceForward() {
	charW, _, _, _ := m.State.CharGeometry()
	m.State.CursorX += charW
	if m.State.CursorX >= m.State.DisplayLeft+m.State.DisplayWidth {
		_, charH, _, _ := m.State.CharGeometry()
		m.State.CursorY += charH
		m.State.CursorX = m.State.DisplayLeft
		m.State.Wrapped = true
	} else {
		m.State.Wrapped = false
	}
}

func (m *Machine) advanceBackward() {
	charW, _, _, _ := m.State.CharGeometry()
	m.State.CursorX -= charW
	if m.State.CursorX < m.State.DisplayLeft {
		_, charH, _, _ := m.State.CharGeometry()
		m.State.CursorY -= charH
		m.State.CursorX = m.State.DisplayLeft + m.State.DisplayWidth - charW
		m.State.Wrapped = true
	} else {
		m.State.Wrapped = false
	}
}

// applyOpcode handles every non-printable AribChar opcode.
func (m *Machine) applyOpcode(c b24.AribChar) []Primitive {
	charW, charH, _, _ := m.State.CharGeometry()
	switch c.Kind {
	case b24.OpNull, b24.OpRecordSeparator, b24.OpUnitSeparator:
		// structural no-ops
	case b24.OpActivePositionBackward:
		m.advanceBackward()
	case b24.OpActivePositionForward:
		m.advanceForward()
	case b24.OpActivePositionDown:
		m.State.CursorY += charH
		if m.State.CursorY > m.State.DisplayTop+m.State.DisplayHeight {
			m.State.CursorY = m.State.DisplayTop + charH
		}
	case b24.OpActivePositionUp:
		m.State.CursorY -= charH
		if m.State.CursorY-charH < m.State.DisplayTop {
			m.State.CursorY = m.State.DisplayTop + m.State.DisplayHeight
		}
	case b24.OpActivePositionReturn:
		if !m.State.Wrapped {
			m.State.CursorX = m.State.DisplayLeft
			m.State.CursorY += charH
		}
		m.State.Wrapped = false
	case b24.OpParameterizedActivePositionForward:
		for i := uint32(0); i < c.P1; i++ {
			m.advanceForward()
		}
	case b24.OpActivePositionSet:
		m.State.CursorX = m.State.DisplayLeft + float64(c.P2)*charW
		m.State.CursorY = m.State.DisplayTop + float64(c.P1+1)*charH
		m.State.Wrapped = false
	case b24.OpActiveCoordinatePositionSet:
		m.State.CursorX = float64(c.P1)
		m.State.CursorY = float64(c.P2)
		m.State.Wrapped = false
	case b24.OpClearScreen:
		m.State.Reset(m.State.Format)
	case b24.OpCharSize:
		m.State.Config = sectionConfigFor(b24.CharSize(c.P1))
	case b24.OpColorForeground:
		m.State.Foreground = m.State.PaletteIndex<<4 | int(c.P1)
	case b24.OpColorBackground:
		m.State.Background = m.State.PaletteIndex<<4 | int(c.P1)
	case b24.OpColorHalfForeground, b24.OpColorHalfBackground:
		// ignored per spec.md §4.2
	case b24.OpColorPalette:
		m.State.PaletteIndex = int(c.P1)
	case b24.OpPatternPolarityNormal:
		m.State.Polarity = PolarityNormal
	case b24.OpPatternPolarityInverted1:
		m.State.Polarity = PolarityInverted1
	case b24.OpPatternPolarityInverted2:
		m.State.Polarity = PolarityInverted2
	case b24.OpFlushingControlStartNormal:
		m.State.Flashing = FlashingNormal
	case b24.OpFlushingControlStartInverted:
		m.State.Flashing = FlashingInverted
	case b24.OpFlushingControlStop:
		m.State.Flashing = FlashingNone
	case b24.OpStartLining:
		m.State.Underline = true
	case b24.OpStopLining:
		m.State.Underline = false
	case b24.OpHighlightBlock:
		m.State.Highlight = int(c.P1)
	case b24.OpOrnamentControlClear:
		m.State.HasHemming = false
	case b24.OpOrnamentControlHemming:
		m.State.HasHemming = true
		m.State.Hemming = int(c.P1)
	case b24.OpOrnamentControlShade, b24.OpOrnamentControlHollow:
		// accepted silently; shading/hollow ornaments aren't distinct
		// primitive kinds in this renderer.
	case b24.OpRepeatCharacter:
		m.State.RepeatCharacter = int(c.P1)
	case b24.OpSetWritingFormatInit:
		switch c.P1 {
		case 7:
			m.State.Reset(FormatQhdHorz)
		case 8:
			m.State.Reset(FormatQhdVert)
		case 9:
			m.State.Reset(FormatSdHorz)
		case 10:
			m.State.Reset(FormatSdVert)
		}
	case b24.OpSetDisplayFormat:
		m.State.DisplayWidth = float64(c.P1)
		m.State.DisplayHeight = float64(c.P2)
	case b24.OpSetDisplayPosition:
		m.State.DisplayLeft = float64(c.P1)
		m.State.DisplayTop = float64(c.P2)
	case b24.OpSetHorizontalSpacing:
		m.State.HSpacing = float64(c.P1)
	case b24.OpSetVerticalSpacing:
		m.State.VSpacing = float64(c.P1)
	case b24.OpWritingModeBoth:
		m.State.WritingMode = WritingModeBoth
	case b24.OpWritingModeForeground:
		m.State.WritingMode = WritingModeForeground
	case b24.OpWritingModeBackground:
		m.State.WritingMode = WritingModeBackground
	default:
		// Every remaining opcode (CCC, MDF/CharacterFontSet, XCS, ACS,
		// UED, SCS, raster-color, builtin-sound-replay, switch-control,
		// character-composition-dot-designation, character-deformation,
		// coloring-block, raster-color-designation, time-control-mode,
		// the TIME presentation/offset/performance/display-end opcodes)
		// is accepted silently per spec.md §4.2 and SPEC_FULL.md §4.
		m.log.Debug("caption: opcode accepted silently", zap.Int("kind", int(c.Kind)))
	}
	return nil
}
