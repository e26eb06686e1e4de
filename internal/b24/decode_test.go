package b24

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SimpleKanaAndControl(t *testing.T) {
	// hiragana 'あ' is GR code 0xA2 (G2 holds the hira plane in
	// CaptionOptions); APR is 0x0D.
	chars := Decode([]byte{0xA2, 0x0D}, CaptionOptions, nil)
	require.Len(t, chars, 2)
	assert.Equal(t, OpGeneric, chars[0].Kind)
	assert.Equal(t, "あ", DecodeRune(chars[0].Generic))
	assert.Equal(t, OpActivePositionReturn, chars[1].Kind)
}

func TestDecode_ColorForegroundOpcodes(t *testing.T) {
	chars := Decode([]byte{0x80, 0x87}, CaptionOptions, nil)
	require.Len(t, chars, 2)
	assert.Equal(t, OpColorForeground, chars[0].Kind)
	assert.EqualValues(t, 0, chars[0].P1)
	assert.Equal(t, OpColorForeground, chars[1].Kind)
	assert.EqualValues(t, 7, chars[1].P1)
}

func TestDecode_CSI_SetDisplayFormat(t *testing.T) {
	// CSI SDF: 0x9B '1' ';' '2' SP 'V' (0x56) -> SetDisplayFormat(1,2)
	data := []byte{0x9B, '1', ';', '2', 0x20, 0x56}
	chars := Decode(data, CaptionOptions, nil)
	require.Len(t, chars, 1)
	assert.Equal(t, OpSetDisplayFormat, chars[0].Kind)
	assert.EqualValues(t, 1, chars[0].P1)
	assert.EqualValues(t, 2, chars[0].P2)
}

func TestDecode_RepeatCharacterOpcode(t *testing.T) {
	data := []byte{0x98, 0x23} // RPC, p1 = 0x23&0x3F = 3
	chars := Decode(data, CaptionOptions, nil)
	require.Len(t, chars, 1)
	assert.Equal(t, OpRepeatCharacter, chars[0].Kind)
	assert.EqualValues(t, 3, chars[0].P1)
}

func TestDecode_TimeWaitForProcess(t *testing.T) {
	data := []byte{0x9D, 0x20, 0x25} // TIME, WaitForProcess, p1 = 0x25&0x3F = 5
	chars := Decode(data, CaptionOptions, nil)
	require.Len(t, chars, 1)
	assert.Equal(t, OpWaitForProcess, chars[0].Kind)
	assert.EqualValues(t, 5, chars[0].P1)
}

func TestDecode_EscDesignateDrcsAndReadGlyph(t *testing.T) {
	// ESC 0x28 0x20 0x41 designates G0 = Drcs1; then a GL byte reads it.
	data := []byte{0x1B, 0x28, 0x20, 0x41, 0x21}
	chars := Decode(data, CaptionOptions, nil)
	require.Len(t, chars, 1)
	assert.Equal(t, OpDrcs, chars[0].Kind)
	assert.Equal(t, 1, chars[0].Drcs.Set)
}

func TestDecode_LockingShiftSwitchesGL(t *testing.T) {
	// LS1 (0x0E) switches GL to G1 (alnum in CaptionOptions), then reads 'A'.
	data := []byte{0x0E, 0x41}
	chars := Decode(data, CaptionOptions, nil)
	require.Len(t, chars, 1)
	assert.Equal(t, OpGeneric, chars[0].Kind)
	assert.Equal(t, SetAlnum, chars[0].Generic.Set)
	assert.Equal(t, "A", DecodeRune(chars[0].Generic))
}

func TestDecode_UnassignedByteConsumedSilently(t *testing.T) {
	// 0xA0 falls outside both the GL (0x21-0x7E) and GR (0xA1-0xFE)
	// ranges and has no C1 meaning; it must be consumed without emitting
	// an AribChar or panicking.
	chars := Decode([]byte{0xA0, 0x99}, CaptionOptions, nil)
	require.Len(t, chars, 1)
	assert.Equal(t, OpStopLining, chars[0].Kind)
}
