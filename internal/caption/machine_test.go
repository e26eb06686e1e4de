package caption

import (
	"testing"

	"github.com/aznhe21/tavoo/internal/b24"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hiragana(c1 uint8) b24.AribChar {
	return b24.AribChar{Kind: b24.OpGeneric, Generic: b24.GenericChar{Set: b24.SetHira, C1: b24.NewGraphicCode(c1)}}
}

func TestMachine_DataRejectedWithoutManagementContext(t *testing.T) {
	m := NewMachine(nil, false)
	prims, postponed := m.Process(0, Packet{Kind: PacketData, Group: GroupA, DataUnits: []b24.DataUnit{
		{Kind: b24.DataUnitStatementBody, Raw: []byte{0x24}},
	}})
	assert.Nil(t, prims)
	assert.Nil(t, postponed)
}

func TestMachine_ManagementDataEstablishesContextThenRendersCharacter(t *testing.T) {
	m := NewMachine(nil, false)
	m.Process(0, Packet{
		Kind:  PacketManagementData,
		Group: GroupA,
		Languages: []b24.CaptionLanguage{
			{LanguageTag: 0, DmfPlayback: b24.DisplayAutoDisplay, Format: b24.FormatQhdHorz},
		},
	})

	prims, postponed := m.Process(1, Packet{
		Kind: PacketData, Group: GroupA, LanguageTag: 0,
		DataUnits: []b24.DataUnit{{Kind: b24.DataUnitStatementBody, Raw: []byte{0xA2}}},
	})
	require.Nil(t, postponed)
	require.NotEmpty(t, prims)

	var sawGlyph bool
	for _, p := range prims {
		if p.Kind == PrimitiveGlyph {
			sawGlyph = true
			assert.Equal(t, "あ", string(p.Rune))
		}
	}
	assert.True(t, sawGlyph)
}

func TestMachine_TwoGlyphsEmitBackgroundsAtScenarioOneCoordinates(t *testing.T) {
	// spec.md §8 scenario 1: qhd-horz, two consecutive normal-size glyphs
	// paint backgrounds at (0,0,40,60) and (40,0,40,60) — the cell's
	// top-left, one charH above the baseline cursor.
	m := NewMachine(nil, false)
	m.Process(0, Packet{
		Kind:  PacketManagementData,
		Group: GroupA,
		Languages: []b24.CaptionLanguage{
			{LanguageTag: 0, DmfPlayback: b24.DisplayAutoDisplay, Format: b24.FormatQhdHorz},
		},
	})

	prims, postponed := m.Process(1, Packet{
		Kind: PacketData, Group: GroupA, LanguageTag: 0,
		DataUnits: []b24.DataUnit{{Kind: b24.DataUnitStatementBody, Raw: []byte{0xA2, 0xA4}}},
	})
	require.Nil(t, postponed)

	var backgrounds []Primitive
	for _, p := range prims {
		if p.Kind == PrimitiveRect {
			backgrounds = append(backgrounds, p)
		}
	}
	require.Len(t, backgrounds, 2)
	assert.Equal(t, Primitive{Kind: PrimitiveRect, X: 0, Y: 0, W: 40, H: 60, Color: backgrounds[0].Color}, backgrounds[0])
	assert.Equal(t, Primitive{Kind: PrimitiveRect, X: 40, Y: 0, W: 40, H: 60, Color: backgrounds[1].Color}, backgrounds[1])
}

func TestMachine_DataPacketWithMismatchedLanguageTagIsDropped(t *testing.T) {
	m := NewMachine(nil, false)
	m.Process(0, Packet{
		Kind: PacketManagementData, Group: GroupA,
		Languages: []b24.CaptionLanguage{{LanguageTag: 0, Format: b24.FormatQhdHorz}},
	})
	prims, _ := m.Process(1, Packet{
		Kind: PacketData, Group: GroupA, LanguageTag: 1,
		DataUnits: []b24.DataUnit{{Kind: b24.DataUnitStatementBody, Raw: []byte{0x24}}},
	})
	assert.Nil(t, prims)
}

func TestMachine_GroupSwitchResetsDrcsCache(t *testing.T) {
	m := NewMachine(nil, false)
	code := b24.DrcsCharCode{Set: 1, Code1: b24.NewGraphicCode(0x21)}
	require.NoError(t, m.Drcs.Put(code, b24.RawDrcsFont{Depth: 0, Width: 1, Height: 1, PatternData: []byte{0x80}}))
	require.NotNil(t, m.Drcs.Get(code))

	m.Process(0, Packet{Kind: PacketManagementData, Group: GroupA, Languages: []b24.CaptionLanguage{{Format: b24.FormatQhdHorz}}})
	m.Process(1, Packet{Kind: PacketManagementData, Group: GroupB, Languages: []b24.CaptionLanguage{{Format: b24.FormatQhdHorz}}})

	assert.Nil(t, m.Drcs.Get(code))
}

func TestMachine_RewindBeforeLastManagementDataResets(t *testing.T) {
	m := NewMachine(nil, false)
	m.Process(100, Packet{Kind: PacketManagementData, Group: GroupA, Languages: []b24.CaptionLanguage{{Format: b24.FormatQhdHorz}}})
	prims, _ := m.Process(50, Packet{
		Kind: PacketData, Group: GroupA,
		DataUnits: []b24.DataUnit{{Kind: b24.DataUnitStatementBody, Raw: []byte{0x24}}},
	})
	assert.Nil(t, prims)

	// Context was reset by the rewind; a subsequent data packet at any
	// position is dropped until management data arrives again.
	prims2, _ := m.Process(51, Packet{
		Kind: PacketData, Group: GroupA,
		DataUnits: []b24.DataUnit{{Kind: b24.DataUnitStatementBody, Raw: []byte{0x24}}},
	})
	assert.Nil(t, prims2)
}

func TestMachine_DrcsIngestedFromManagementDataAndRendered(t *testing.T) {
	m := NewMachine(nil, false)
	// One drcs_1 code (set folded to 1), one uncompressed 1bpp 1x1 font.
	raw := []byte{
		0x01,       // number_of_code
		0x01, 0x21, // set nibble 1, code 0x21
		0x01,             // number_of_font
		0x00, 0x00, 0x01, // mode 0, depth 0, width 1
		0x01,       // height 1
		byte(0x80), // pattern data, 1 bit used
	}
	entries, err := b24.ParseDrcsDataUnit(raw, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Fonts, 1)

	m.Process(0, Packet{
		Kind: PacketManagementData, Group: GroupA,
		Languages: []b24.CaptionLanguage{{Format: b24.FormatQhdHorz}},
		DataUnits: []b24.DataUnit{{Kind: b24.DataUnitDrcsSb, Raw: raw}},
	})

	got := m.Drcs.Get(entries[0].Code)
	require.NotNil(t, got)
	require.Len(t, got.Fonts, 1)

	chars := []b24.AribChar{{Kind: b24.OpDrcs, Drcs: entries[0].Code}}
	prims, postponed := m.runStatement(0, chars)
	require.Nil(t, postponed)
	var sawDrcs bool
	for _, p := range prims {
		if p.Kind == PrimitiveDrcsImage {
			sawDrcs = true
			assert.Equal(t, entries[0].Code.Number(), p.DrcsCode)
		}
	}
	assert.True(t, sawDrcs)
}

func TestMachine_WaitForProcessPostponesRemainder(t *testing.T) {
	m := NewMachine(nil, false)
	m.State.Reset(FormatQhdHorz)
	chars := []b24.AribChar{
		hiragana(0x24),
		{Kind: b24.OpWaitForProcess, P1: 50}, // 5.0s
		hiragana(0x25),
	}
	prims, postponed := m.runStatement(10, chars)
	require.NotNil(t, postponed)
	assert.InDelta(t, 15.0, postponed.Pos, 1e-9)
	require.Len(t, postponed.Packet.StatementTail, 1)
	assert.Equal(t, b24.OpGeneric, postponed.Packet.StatementTail[0].Kind)

	var glyphCount int
	for _, p := range prims {
		if p.Kind == PrimitiveGlyph {
			glyphCount++
		}
	}
	assert.Equal(t, 1, glyphCount)
}

func TestMachine_RepeatCharacterEmitsStoredCount(t *testing.T) {
	m := NewMachine(nil, false)
	m.State.Reset(FormatQhdHorz)
	chars := []b24.AribChar{
		{Kind: b24.OpRepeatCharacter, P1: 3},
		hiragana(0x24),
	}
	prims, postponed := m.runStatement(0, chars)
	require.Nil(t, postponed)
	var glyphCount int
	for _, p := range prims {
		if p.Kind == PrimitiveGlyph {
			glyphCount++
		}
	}
	assert.Equal(t, 3, glyphCount)
	assert.Equal(t, noRepeat, m.State.RepeatCharacter)
}

func TestMachine_RepeatUntilWrapStopsAtFirstWrap(t *testing.T) {
	m := NewMachine(nil, false)
	m.State.Reset(FormatQhdHorz)
	charW, _, _, _ := m.State.CharGeometry()
	m.State.DisplayWidth = charW * 2 // exactly two cells wide

	chars := []b24.AribChar{
		{Kind: b24.OpRepeatCharacter, P1: 0}, // repeat-until-wrap
		hiragana(0x24),
	}
	prims, postponed := m.runStatement(0, chars)
	require.Nil(t, postponed)
	var glyphCount int
	for _, p := range prims {
		if p.Kind == PrimitiveGlyph {
			glyphCount++
		}
	}
	assert.Equal(t, 2, glyphCount)
	assert.True(t, m.State.Wrapped)
}

func TestMachine_ForwardThenBackwardAdvanceReturnsToOrigin(t *testing.T) {
	m := NewMachine(nil, false)
	m.State.Reset(FormatQhdHorz)
	startX, startY := m.State.CursorX, m.State.CursorY

	for i := 0; i < 5; i++ {
		m.applyOpcode(b24.AribChar{Kind: b24.OpActivePositionForward})
	}
	for i := 0; i < 5; i++ {
		m.applyOpcode(b24.AribChar{Kind: b24.OpActivePositionBackward})
	}

	assert.Equal(t, startX, m.State.CursorX)
	assert.Equal(t, startY, m.State.CursorY)
}

func TestMachine_ClearScreenResetsAttributesButKeepsFormat(t *testing.T) {
	m := NewMachine(nil, false)
	m.State.Reset(FormatQhdHorz)
	m.applyOpcode(b24.AribChar{Kind: b24.OpColorForeground, P1: 3})
	m.applyOpcode(b24.AribChar{Kind: b24.OpStartLining})
	m.applyOpcode(b24.AribChar{Kind: b24.OpClearScreen})

	assert.Equal(t, 7, m.State.Foreground)
	assert.False(t, m.State.Underline)
	assert.Equal(t, FormatQhdHorz, m.State.Format)
}

func TestMachine_SetWritingFormatInitDiscardsPriorDisplayOverrides(t *testing.T) {
	m := NewMachine(nil, false)
	m.State.Reset(FormatQhdHorz)
	m.applyOpcode(b24.AribChar{Kind: b24.OpSetDisplayPosition, P1: 100, P2: 200})
	m.applyOpcode(b24.AribChar{Kind: b24.OpSetWritingFormatInit, P1: 7})

	assert.EqualValues(t, 0, m.State.DisplayLeft)
	assert.EqualValues(t, 0, m.State.DisplayTop)
}
