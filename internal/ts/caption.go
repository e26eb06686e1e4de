package ts

import (
	"encoding/binary"
	"errors"
)

// PESStreamPrivateStream1 is the MPEG-2 PES stream_id ARIB uses for the
// caption/superimpose elementary stream, following
// isdb::pes::StreamId::PRIVATE_STREAM_1.
const PESStreamPrivateStream1 = 0xBD

// CaptionPESPacket is one demultiplexed caption/superimpose access unit:
// the synchronized-PES payload (data_group framing still intact) plus its
// presentation timestamp when the PES header carried one.
type CaptionPESPacket struct {
	PTSSeconds float64
	HasPTS     bool
	Payload    []byte
}

// ReadCaptionPES assembles one full PES packet for pid from the
// transport stream and strips its PES and synchronized-PES headers,
// following isdb::pes::PesPacket::parse and
// isdb::pes::IndependentPes::read. It skips packets on pid that aren't
// private_stream_1 (there shouldn't be any on a caption/superimpose PID,
// but malformed streams happen) and keeps reading until it finds one.
func (d *Decoder) ReadCaptionPES(pid uint16) (CaptionPESPacket, error) {
	for {
		buf, isPUSI, err := d.SeekNextPacket(pid, true)
		if err != nil {
			return CaptionPESPacket{}, err
		}
		if !isPUSI {
			continue
		}
		payload := getPayload(buf)
		if len(payload) < 6 || payload[0] != 0 || payload[1] != 0 || payload[2] != 1 {
			continue
		}
		if payload[3] != PESStreamPrivateStream1 {
			continue
		}

		pesLen := int(binary.BigEndian.Uint16(payload[4:6]))
		full := append([]byte(nil), payload...)
		lastCounter := buf[3] & CounterMask
		for pesLen == 0 || len(full) < 6+pesLen {
			nbuf, nIsPUSI, err := d.SeekNextPacket(pid, false)
			if err != nil {
				return CaptionPESPacket{}, err
			}
			if nIsPUSI {
				// A new PES packet started before this one reached its
				// declared length; treat what we accumulated as final.
				break
			}
			counter := nbuf[3] & CounterMask
			if counter == lastCounter {
				continue
			}
			lastCounter = counter
			full = append(full, getPayload(nbuf)...)
		}
		if pesLen != 0 && len(full) > 6+pesLen {
			full = full[:6+pesLen]
		}
		return parseCaptionPES(full)
	}
}

// parseCaptionPES strips the PES header (reading PTS when present) and
// then the ARIB STD-B24 第三編 synchronized-PES wrapper
// (data_identifier/private_stream_id/PES_data_packet_header_length),
// leaving the data_group byte stream b24.ReadDataGroup expects.
func parseCaptionPES(data []byte) (CaptionPESPacket, error) {
	if len(data) < 9 {
		return CaptionPESPacket{}, errors.New("ts: pes packet too short")
	}
	ptsDtsFlags := (data[7] & 0b11000000) >> 6
	headerDataLen := int(data[8])
	mid := 9 + headerDataLen
	if len(data) < mid {
		return CaptionPESPacket{}, errors.New("ts: pes header truncated")
	}

	out := CaptionPESPacket{}
	if ptsDtsFlags&0b10 != 0 && headerDataLen >= 5 {
		out.PTSSeconds = readPTS(data[9:14]) / 90000
		out.HasPTS = true
	}

	body := data[mid:]
	if len(body) < 3 {
		return out, errors.New("ts: synchronized pes body too short")
	}
	if body[0] != 0x80 && body[0] != 0x81 {
		return out, errors.New("ts: invalid synchronized pes data_identifier")
	}
	if body[1] != 0xFF {
		return out, errors.New("ts: invalid synchronized pes private_stream_id")
	}
	headerLen := int(body[2] & 0x0F)
	pos := 3 + headerLen
	if pos > len(body) {
		return out, errors.New("ts: synchronized pes private data truncated")
	}
	out.Payload = body[pos:]
	return out, nil
}

// readPTS decodes a 5-byte PTS field into 90kHz ticks, following
// isdb::time::Timestamp::read_pts.
func readPTS(b []byte) float64 {
	v := (uint64(b[0]&0b00001110) << 29) |
		(uint64(binary.BigEndian.Uint16(b[1:3])&0b1111111111111110) << 14) |
		(uint64(binary.BigEndian.Uint16(b[3:5])) >> 1)
	return float64(v)
}
