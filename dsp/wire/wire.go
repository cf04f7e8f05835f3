// Package wire implements the on-the-wire byte layouts shared by every
// emitted record: the 24-byte topic descriptor and the 24-byte
// per-record metadata header, plus the spectrum quantization rules.
//
// A compatibility wart is preserved deliberately: the spectrum payload
// is quantized big-endian (QuantizeU16 writes MSB first) while every
// other multi-byte field in this package is little-endian. This
// matches the wire format of the tool this protocol was distilled
// from and is flagged, not "fixed", per the design notes.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/tejeez/spektri/dsp/core"
	"github.com/tejeez/spektri/dsp/types"
)

// ProtocolVersion is byte 0 of every topic descriptor.
const ProtocolVersion = 2

// MessageType is byte 1 of a topic descriptor (the high nibble of the
// original single-byte encoding; kept as a full byte here as the
// message kind, independent of the data format byte).
type MessageType byte

const (
	MessageStatus   MessageType = 0x20
	MessageWaveform MessageType = 0x40
	MessageSpectrum MessageType = 0x60
)

// NumberKind is bits 5..4 of the data format byte.
type NumberKind byte

const (
	KindSigned   NumberKind = 0
	KindFloat    NumberKind = 1
	KindUnsigned NumberKind = 2
)

// sizeCodes maps a per-sample bit width to the 3-bit size code used in
// the data format byte (bits 3..1).
var sizeCodes = map[int]byte{
	8:  2,
	12: 3,
	16: 4,
	24: 5,
	32: 6,
	64: 7,
}

// FormatByte builds the topic descriptor's data format byte (byte 2):
// bit 7..6 real(0)/complex(1), bit 5..4 NumberKind, bit 3..1 size code,
// bit 0 endianness (0 little, 1 big).
func FormatByte(isComplex bool, kind NumberKind, sizeBits int, bigEndian bool) byte {
	var b byte
	if isComplex {
		b |= 1 << 6
	}
	b |= byte(kind) << 4
	b |= sizeCodes[sizeBits] << 1
	if bigEndian {
		b |= 1
	}
	return b
}

// Topic is the 24-byte descriptor published (or prefixed) alongside a
// stream of records, describing protocol version, message kind, data
// format, and the two stream parameters (spectrum bin spacing/first-bin
// frequency, or signal sample rate/center frequency).
type Topic struct {
	Type   MessageType
	Format byte
	A      float64 // bin spacing, or signal sample rate
	B      float64 // first-bin frequency, or signal center frequency
}

// Bytes serializes t into the 24-byte topic descriptor wire format.
// Topic.Bytes is a pure function of its fields (testable property 2).
func (t Topic) Bytes() [24]byte {
	var buf [24]byte
	buf[0] = ProtocolVersion
	buf[1] = byte(t.Type)
	buf[2] = t.Format
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(t.A))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(t.B))
	return buf
}

// SpectrumTopic builds the topic descriptor for a spectrum stream.
func SpectrumTopic(fi types.FftInfo, sizeBits int) Topic {
	return Topic{
		Type:   MessageSpectrum,
		Format: FormatByte(false, KindUnsigned, sizeBits, sizeBits == 16),
		A:      fi.BinSpacing(),
		B:      fi.Fc,
	}
}

// SignalTopic builds the topic descriptor for a filter's baseband
// waveform stream.
func SignalTopic(fsOut, fcOut float64) Topic {
	return Topic{
		Type:   MessageWaveform,
		Format: FormatByte(true, KindFloat, 32, false),
		A:      fsOut,
		B:      fcOut,
	}
}

// HeaderSize is the fixed size, in bytes, of the per-record metadata
// header prefixed to every payload.
const HeaderSize = 24

// AppendHeader appends the 24-byte per-record metadata header (seq,
// secs, nanosecs, reserved) to buf and returns the extended slice.
func AppendHeader(buf []byte, meta types.Metadata) []byte {
	secs, nanos := meta.SecsNanos()

	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[0:8], meta.Seq)
	binary.LittleEndian.PutUint64(hdr[8:16], secs)
	binary.LittleEndian.PutUint32(hdr[16:20], nanos)
	binary.LittleEndian.PutUint32(hdr[20:24], 0) // reserved

	return append(buf, hdr[:]...)
}

// QuantizeU8 maps a dB value to the 0.5 dB/LSB, 0 dB-near-250 byte
// scale, clamped to [0,255].
func QuantizeU8(db float64) byte {
	return byte(core.Clamp(math.Round(2*db+250), 0, 255))
}

// QuantizeU16 maps a dB value to the 0.05 dB/LSB, 0 dB-near-4000
// 12-bit scale, clamped to [0,4095], written big-endian into dst.
func QuantizeU16(dst []byte, db float64) {
	v := uint16(core.Clamp(math.Round(20*db+4000), 0, 4095))
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}
