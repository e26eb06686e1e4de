package b24

import (
	"fmt"
)

// DisplayMode is the caption language's dmf_recv/dmf_playback field,
// grounded on isdb::pes::caption::DisplayMode (original_source).
type DisplayMode int

const (
	DisplayAutoDisplay DisplayMode = iota
	DisplayAutoHide
	DisplaySelectable
	DisplayMayDisplay
)

func parseDisplayMode(v uint8) DisplayMode {
	switch v {
	case 0b00:
		return DisplayAutoDisplay
	case 0b01:
		return DisplayAutoHide
	case 0b10:
		return DisplaySelectable
	default:
		return DisplayMayDisplay
	}
}

// CaptionFormat is the language entry's display-format hint (SDF preset).
type CaptionFormat int

const (
	FormatStandardDensityHorz CaptionFormat = iota
	FormatStandardDensityVert
	FormatHighDensityHorz
	FormatHighDensityVert
	FormatWesternHorz
	FormatUnknown
	FormatFhdHorz
	FormatFhdVert
	FormatQhdHorz
	FormatQhdVert
	FormatHdHorz
	FormatHdVert
	FormatSdHorz
	FormatSdVert
)

var captionFormatTable = map[uint8]CaptionFormat{
	0b0000: FormatStandardDensityHorz,
	0b0001: FormatStandardDensityVert,
	0b0010: FormatHighDensityHorz,
	0b0011: FormatHighDensityVert,
	0b0100: FormatWesternHorz,
	// 0b0101 intentionally unmapped -> FormatUnknown
	0b0110: FormatFhdHorz,
	0b0111: FormatFhdVert,
	0b1000: FormatQhdHorz,
	0b1001: FormatQhdVert,
	0b1010: FormatHdHorz,
	0b1011: FormatHdVert,
	0b1100: FormatSdHorz,
	0b1101: FormatSdVert,
}

// CharacterCodeScheme is the language entry's tcs field.
type CharacterCodeScheme int

const (
	CodeEightBit CharacterCodeScheme = iota
	CodeUCS
	CodeReserved
)

// RollupMode is the language entry's rollup_mode field.
type RollupMode int

const (
	RollupNone RollupMode = iota
	RollupOn
	RollupReserved
)

// CaptionLanguage describes one language entry inside a management-data
// packet, grounded on isdb::pes::caption::CaptionLanguage.
type CaptionLanguage struct {
	LanguageTag  uint8
	DmfRecv      DisplayMode
	DmfPlayback  DisplayMode
	DisplayCond  uint8
	HasDisplayCond bool
	LangCode     string
	Format       CaptionFormat
	Tcs          CharacterCodeScheme
	RollupMode   RollupMode
}

// CaptionManagementData is the parsed management-data caption packet,
// carrying the time-control mode and per-language configuration that
// precedes a stream's data packets.
type CaptionManagementData struct {
	Tmd       TimeControlMode
	OffsetMs  uint64
	HasOffset bool
	Languages []CaptionLanguage
	DataUnits []DataUnit
}

// CaptionData is a single data packet: the rendering opcodes for one
// language, tagged by the management data's tmd when it requires a
// presentation start time.
type CaptionData struct {
	Tmd          TimeControlMode
	PresentMs    uint64
	HasPresentMs bool
	DataUnits    []DataUnit
}

// DataUnitKind discriminates DataUnit's tagged union.
type DataUnitKind int

const (
	DataUnitStatementBody DataUnitKind = iota
	DataUnitDrcsSb
	DataUnitDrcsDb
	DataUnitUnrendered // Geometric, SynthesizedSound, Colormap, Bitmap, Unknown
)

// DataUnit is one parsed data-unit entry from a caption/superimpose PES
// payload, grounded on isdb::pes::caption::DataUnit.
type DataUnit struct {
	Kind DataUnitKind
	Raw  []byte // statement bytes (StatementBody) or raw DRCS/unrendered payload
}

// DataGroup is one parsed data_group wrapper from a caption/superimpose
// PES's synchronized-PES payload, following isdb::pes::caption::DataGroup.
type DataGroup struct {
	DataGroupID      uint8
	DataGroupVersion uint8
	LinkNumber       uint8
	LastLinkNumber   uint8
	Data             []byte
}

// ReadDataGroup parses the data_group_id/version/link-number/size header
// and slices out data_group_data, following DataGroup::read.
func ReadDataGroup(data []byte) (DataGroup, error) {
	if len(data) < 5 {
		return DataGroup{}, fmt.Errorf("b24: data group too short")
	}
	size := int(data[3])<<8 | int(data[4])
	if len(data) < 5+size {
		return DataGroup{}, fmt.Errorf("b24: data group size mismatch: have %d want %d", len(data)-5, size)
	}
	return DataGroup{
		DataGroupID:      data[0] >> 2,
		DataGroupVersion: data[0] & 0x03,
		LinkNumber:       data[1],
		LastLinkNumber:   data[2],
		Data:             data[5 : 5+size],
	}, nil
}

// ReadCaptionManagementData parses a management-data packet's payload,
// following isdb::pes::caption::CaptionManagementData::read.
func ReadCaptionManagementData(data []byte) (CaptionManagementData, error) {
	var out CaptionManagementData
	if len(data) < 1 {
		return out, fmt.Errorf("b24: management data too short")
	}
	tmdBits := data[0] >> 6
	out.Tmd = TimeControlMode(tmdBits)
	pos := 1
	if out.Tmd == TimeControlOffsetTime {
		if len(data) < pos+5 {
			return out, fmt.Errorf("b24: management data truncated before otm")
		}
		out.OffsetMs = bcdMillis(data[pos : pos+5])
		out.HasOffset = true
		pos += 5
	}
	if len(data) < pos+1 {
		return out, fmt.Errorf("b24: management data truncated before language count")
	}
	numLanguages := int(data[pos])
	pos++
	for i := 0; i < numLanguages; i++ {
		if len(data) < pos+1 {
			return out, fmt.Errorf("b24: management data truncated in language %d", i)
		}
		b := data[pos]
		pos++
		lang := CaptionLanguage{
			LanguageTag: b >> 5,
			DmfRecv:     parseDisplayMode((b >> 2) & 0x3),
			DmfPlayback: parseDisplayMode(b & 0x3),
		}
		if lang.DmfRecv == DisplayMayDisplay && lang.DmfPlayback != DisplayMayDisplay {
			if len(data) < pos+1 {
				return out, fmt.Errorf("b24: management data truncated before dc")
			}
			lang.DisplayCond = data[pos]
			lang.HasDisplayCond = true
			pos++
		}
		if len(data) < pos+4 {
			return out, fmt.Errorf("b24: management data truncated before lang_code")
		}
		lang.LangCode = string(data[pos : pos+3])
		fb := data[pos+3]
		pos += 4
		format := (fb & 0xF0) >> 4
		if f, ok := captionFormatTable[format]; ok {
			lang.Format = f
		} else {
			lang.Format = FormatUnknown
		}
		lang.Tcs = CharacterCodeScheme((fb & 0x0C) >> 2)
		switch fb & 0x03 {
		case 0b00:
			lang.RollupMode = RollupNone
		case 0b01:
			lang.RollupMode = RollupOn
		default:
			lang.RollupMode = RollupReserved
		}
		out.Languages = append(out.Languages, lang)
	}
	units, err := readDataUnits(data[pos:])
	if err != nil {
		return out, err
	}
	out.DataUnits = units
	return out, nil
}

// ReadCaptionData parses a data packet's payload, following
// isdb::pes::caption::CaptionData::read.
func ReadCaptionData(data []byte, tmd TimeControlMode) (CaptionData, error) {
	var out CaptionData
	out.Tmd = tmd
	pos := 0
	if tmd == TimeControlRealTime || tmd == TimeControlOffsetTime {
		if len(data) < 5 {
			return out, fmt.Errorf("b24: data packet truncated before stm")
		}
		out.PresentMs = bcdMillis(data[0:5])
		out.HasPresentMs = true
		pos = 5
	}
	units, err := readDataUnits(data[pos:])
	if err != nil {
		return out, err
	}
	out.DataUnits = units
	return out, nil
}

// readDataUnits parses the data_unit_loop (a 3-byte length prefix followed
// by a sequence of unit_separator/parameter/size/payload entries),
// following isdb::pes::caption::DataUnit::read.
func readDataUnits(data []byte) ([]DataUnit, error) {
	if len(data) < 3 {
		return nil, fmt.Errorf("b24: data unit loop too short")
	}
	loopLen := int(data[0])<<16 | int(data[1])<<8 | int(data[2])
	pos := 3
	end := pos + loopLen
	if end > len(data) {
		end = len(data)
	}
	var units []DataUnit
	for pos < end {
		if pos+1 > end {
			break
		}
		if data[pos] == 0x1F {
			pos++ // unit_separator
		}
		if pos+4 > end {
			break
		}
		param := data[pos]
		// 3-byte size field, read as documented in the source: a
		// big-endian 16-bit value shifted left 8 and or'd with the next
		// byte, i.e. effectively a 24-bit big-endian integer.
		size := int(data[pos+1])<<16 | int(data[pos+2])<<8 | int(data[pos+3])
		pos += 4
		if pos+size > end {
			size = end - pos
		}
		payload := data[pos : pos+size]
		pos += size

		switch param {
		case 0x20:
			units = append(units, DataUnit{Kind: DataUnitStatementBody, Raw: payload})
		case 0x30:
			units = append(units, DataUnit{Kind: DataUnitDrcsSb, Raw: payload})
		case 0x31:
			units = append(units, DataUnit{Kind: DataUnitDrcsDb, Raw: payload})
		default:
			// Geometric(0x28), SynthesizedSound(0x2C), Colormap(0x34),
			// Bitmap(0x35), and anything unrecognized: kept for framing
			// integrity but never rendered (§3 supplement / Non-goals).
			units = append(units, DataUnit{Kind: DataUnitUnrendered, Raw: payload})
		}
	}
	return units, nil
}

// bcdMillis decodes a 5-byte BCD timestamp (hour/min/sec/millisecond,
// packed as used for otm and stm fields) into total milliseconds. The
// millisecond field is three BCD digits: both nibbles of byte 3 and the
// high nibble of byte 4; the low nibble of byte 4 is not part of it.
func bcdMillis(b []byte) uint64 {
	if len(b) < 5 {
		return 0
	}
	hour := bcdByte(b[0])
	min := bcdByte(b[1])
	sec := bcdByte(b[2])
	ms := uint64(bcdNibble(b[3]>>4))*100 + uint64(bcdNibble(b[3]&0xF))*10 + uint64(bcdNibble(b[4]>>4))
	return hour*3600000 + min*60000 + sec*1000 + ms
}

func bcdByte(b byte) uint64 {
	return uint64(bcdNibble(b>>4))*10 + uint64(bcdNibble(b&0xF))
}

func bcdNibble(n byte) byte { return n & 0xF }
