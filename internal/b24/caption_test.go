package b24

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildManagementData(numLanguages int, statement []byte) []byte {
	// tmd = Free (top two bits 00), no otm.
	out := []byte{0x00, byte(numLanguages)}
	for i := 0; i < numLanguages; i++ {
		// language_tag=0, dmf_recv=AutoDisplay(00), dmf_playback=AutoDisplay(00)
		out = append(out, 0x00)
		out = append(out, []byte("jpn")...)
		// format=StandardDensityHorz(0b0000), tcs=EightBit(00), rollup=NonRollup(00)
		out = append(out, 0x00)
	}
	out = append(out, buildDataUnitLoop(statement)...)
	return out
}

// buildDataUnitLoop packs a single StatementBody data unit the way
// readDataUnits expects to read it back.
func buildDataUnitLoop(statement []byte) []byte {
	entry := []byte{0x1F, 0x20} // unit_separator, parameter=StatementBody
	size := len(statement)
	entry = append(entry, byte(size>>16), byte(size>>8), byte(size))
	entry = append(entry, statement...)

	loopLen := len(entry)
	out := []byte{byte(loopLen >> 16), byte(loopLen >> 8), byte(loopLen)}
	out = append(out, entry...)
	return out
}

func TestReadCaptionManagementData(t *testing.T) {
	statement := []byte{0xA2, 0x0D} // あ + APR
	data := buildManagementData(1, statement)

	md, err := ReadCaptionManagementData(data)
	require.NoError(t, err)
	assert.Equal(t, TimeControlFree, md.Tmd)
	require.Len(t, md.Languages, 1)
	assert.Equal(t, "jpn", md.Languages[0].LangCode)
	assert.Equal(t, FormatStandardDensityHorz, md.Languages[0].Format)
	assert.Equal(t, CodeEightBit, md.Languages[0].Tcs)
	assert.Equal(t, RollupNone, md.Languages[0].RollupMode)
	require.Len(t, md.DataUnits, 1)
	assert.Equal(t, DataUnitStatementBody, md.DataUnits[0].Kind)
	assert.Equal(t, statement, md.DataUnits[0].Raw)
}

func TestReadCaptionData_NoTimestampUnderFreeMode(t *testing.T) {
	statement := []byte{0x0C} // CS
	data := buildDataUnitLoop(statement)

	cd, err := ReadCaptionData(data, TimeControlFree)
	require.NoError(t, err)
	assert.False(t, cd.HasPresentMs)
	require.Len(t, cd.DataUnits, 1)
	assert.Equal(t, DataUnitStatementBody, cd.DataUnits[0].Kind)
}

func TestReadCaptionData_RealTimeCarriesPresentationTime(t *testing.T) {
	// stm = 01:02:03.456 in BCD
	stm := []byte{0x01, 0x02, 0x03, 0x45, 0x60}
	data := append(append([]byte{}, stm...), buildDataUnitLoop([]byte{0x0C})...)

	cd, err := ReadCaptionData(data, TimeControlRealTime)
	require.NoError(t, err)
	require.True(t, cd.HasPresentMs)
	assert.EqualValues(t, 1*3600000+2*60000+3*1000+456, cd.PresentMs)
}

func TestReadDataUnits_UnrenderedKindsKeepFraming(t *testing.T) {
	entry := []byte{0x1F, 0x28} // Geometric
	entry = append(entry, 0, 0, 2)
	entry = append(entry, 0xAA, 0xBB)
	loopLen := len(entry)
	data := append([]byte{byte(loopLen >> 16), byte(loopLen >> 8), byte(loopLen)}, entry...)

	units, err := readDataUnits(data)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, DataUnitUnrendered, units[0].Kind)
	assert.Equal(t, []byte{0xAA, 0xBB}, units[0].Raw)
}
