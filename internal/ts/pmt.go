package ts

import (
	"encoding/binary"
	"errors"
)

// CaptionComponentTag classifies an ARIB stream-identifier descriptor's
// component_tag value as carrying caption or superimpose data, following
// the broadcast convention: 0x30-0x37 are the eight caption-language
// component tags, 0x38-0x3F are superimpose (bit 3 separates the two).
type CaptionComponentTag int

const (
	ComponentTagNotCaption CaptionComponentTag = iota
	ComponentTagCaption
	ComponentTagSuperimpose
)

// ClassifyComponentTag maps a stream-identifier descriptor's component_tag
// byte to its caption/superimpose role, or ComponentTagNotCaption for any
// other elementary stream.
func ClassifyComponentTag(tag uint8) CaptionComponentTag {
	switch {
	case tag >= 0x30 && tag <= 0x37:
		return ComponentTagCaption
	case tag >= 0x38 && tag <= 0x3F:
		return ComponentTagSuperimpose
	default:
		return ComponentTagNotCaption
	}
}

const (
	StreamIdentifierDescTagID uint8 = 0x52
	PMTPrivateDataStreamType  uint8 = 0x06
)

// parsePMT parses a Program Map Table section, following the same
// tag/length descriptor-walking style as parseNIT/parseEITEntry.
func parsePMT(payload []byte, d *Decoder) (Frame, error) {
	if payload[0] != PMTTID {
		return nil, errors.New("illegal PMT frame")
	}
	frame := PMTFrame{}
	frame.ServiceID = binary.BigEndian.Uint16(payload[3:5])
	frame.Version = payload[5] & 0b00111110 >> 1
	frame.CurrentNext = payload[5]&1 == 1
	frame.Session = payload[6]
	frame.LastSession = payload[7]
	frame.PcrPID = binary.BigEndian.Uint16(payload[8:10]) & PIDMask
	programInfoLen := int(binary.BigEndian.Uint16(payload[10:12]) & 0xfff)
	pos := 12 + programInfoLen
	end := len(payload) - 4 // CRC32 trailer
	for pos < end {
		streamType := payload[pos]
		pid := binary.BigEndian.Uint16(payload[pos+1:pos+3]) & PIDMask
		esInfoLen := int(binary.BigEndian.Uint16(payload[pos+3:pos+5]) & 0xfff)
		descStart := pos + 5
		descEnd := descStart + esInfoLen
		if descEnd > end {
			descEnd = end
		}
		info := ESInfo{StreamId: streamType, PID: pid}
		descs := payload[descStart:descEnd]
		for len(descs) >= 2 {
			tagID := descs[0]
			tagLen := int(descs[1])
			if 2+tagLen > len(descs) {
				break
			}
			content := descs[2 : 2+tagLen]
			if tagID == StreamIdentifierDescTagID && len(content) >= 1 {
				info.ComponentTag = content[0]
				info.HasComponentTag = true
			}
			descs = descs[2+tagLen:]
		}
		frame.StreamList = append(frame.StreamList, info)
		pos = descEnd
	}
	if frame.CurrentNext {
		if d.lastPmtMap == nil {
			d.lastPmtMap = make(map[uint16]*PMTFrame)
		}
		d.lastPmtMap[frame.ServiceID] = &frame
	}
	return &frame, nil
}

// CaptionStreamPID scans a parsed PMT for the first elementary stream
// whose stream-identifier descriptor classifies it as caption or
// superimpose, following ARIB's private_stream_1/component_tag
// convention rather than a fixed PID.
func CaptionStreamPID(pmt *PMTFrame) (pid uint16, role CaptionComponentTag, ok bool) {
	for _, info := range pmt.StreamList {
		if info.StreamId != PMTPrivateDataStreamType || !info.HasComponentTag {
			continue
		}
		if role := ClassifyComponentTag(info.ComponentTag); role != ComponentTagNotCaption {
			return info.PID, role, true
		}
	}
	return 0, ComponentTagNotCaption, false
}

// CaptionStreamPIDs is CaptionStreamPID generalized to both channels at
// once: a broadcast PMT may carry a caption component and a superimpose
// component simultaneously, each with its own PID.
func CaptionStreamPIDs(pmt *PMTFrame) (captionPID uint16, hasCaption bool, superimposePID uint16, hasSuperimpose bool) {
	for _, info := range pmt.StreamList {
		if info.StreamId != PMTPrivateDataStreamType || !info.HasComponentTag {
			continue
		}
		switch ClassifyComponentTag(info.ComponentTag) {
		case ComponentTagCaption:
			captionPID, hasCaption = info.PID, true
		case ComponentTagSuperimpose:
			superimposePID, hasSuperimpose = info.PID, true
		}
	}
	return
}
