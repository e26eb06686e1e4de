package caption

import (
	"fmt"

	"github.com/aznhe21/tavoo/internal/b24"
)

// Group is the ARIB data-group selector (A/B) carried by management-data
// and data packets.
type Group int

const (
	GroupA Group = iota
	GroupB
)

// PacketKind discriminates Packet's tagged union (spec.md §3's
// CaptionPacket: management-data / data / postponed).
type PacketKind int

const (
	PacketManagementData PacketKind = iota
	PacketData
	PacketPostponed
)

// Packet is a CaptionPacket: either a management-data packet establishing
// display/language context, a data packet carrying a statement to
// render, or an internal postponed packet produced by the state
// machine's TIME (wait-for-process) handling.
type Packet struct {
	Kind PacketKind

	Group       Group
	LanguageTag uint8
	Tmd         b24.TimeControlMode
	Languages   []b24.CaptionLanguage
	DataUnits   []b24.DataUnit

	StatementTail []b24.AribChar
}

// NewPacketFromDataGroup turns a parsed b24.DataGroup into a Packet,
// following isdb::filters::sorter's data_group_id convention: the high
// nibble selects group A (0x00) or B (0x20), the low nibble 0 means
// management data and 1..8 means data for language_tag = nibble-1.
func NewPacketFromDataGroup(dg b24.DataGroup) (Packet, error) {
	var group Group
	switch dg.DataGroupID & 0xF0 {
	case 0x00:
		group = GroupA
	case 0x20:
		group = GroupB
	default:
		return Packet{}, fmt.Errorf("caption: unrecognized data group id 0x%02X", dg.DataGroupID)
	}

	tag := dg.DataGroupID & 0x0F
	if tag == 0 {
		md, err := b24.ReadCaptionManagementData(dg.Data)
		if err != nil {
			return Packet{}, err
		}
		return Packet{
			Kind:      PacketManagementData,
			Group:     group,
			Tmd:       md.Tmd,
			Languages: md.Languages,
			DataUnits: md.DataUnits,
		}, nil
	}
	if tag < 1 || tag > 8 {
		return Packet{}, fmt.Errorf("caption: unrecognized data group tag %d", tag)
	}
	langTag := tag - 1
	// A data packet only needs its management tmd when one has already
	// been established; callers that don't track it can pass
	// b24.TimeControlFree, matching the common Free-mode broadcast case.
	data, err := b24.ReadCaptionData(dg.Data, b24.TimeControlFree)
	if err != nil {
		return Packet{}, err
	}
	return Packet{
		Kind:        PacketData,
		Group:       group,
		LanguageTag: langTag,
		Tmd:         data.Tmd,
		DataUnits:   data.DataUnits,
	}, nil
}
