package spectrum

import (
	"errors"
	"math"

	"github.com/tejeez/spektri/dsp/types"
	"github.com/tejeez/spektri/dsp/wire"
)

// Format selects the quantized wire representation of an emitted
// spectrum record.
type Format int

const (
	// FormatU8 quantizes at 0.5 dB per LSB, 0 dB near byte value 250.
	FormatU8 Format = iota
	// FormatU16 quantizes at 0.05 dB per LSB, 0 dB near 4000, written
	// big-endian into two bytes (a deliberately preserved wire wart:
	// every other multi-byte field in this protocol is little-endian).
	FormatU16
)

func (f Format) bits() int {
	if f == FormatU16 {
		return 16
	}
	return 8
}

// ErrInvalidAverages is returned by New for a non-positive averages count.
var ErrInvalidAverages = errors.New("spectrum: averages must be positive")

// Accumulator implements the Welch-method spectrum estimator: it
// consumes the K unwindowed forward-FFT outputs of a processing
// block, applies the Hann-equivalent post-FFT convolution described in
// dsp/spectrum's package doc, and emits one quantized record every A
// accumulated frames.
//
// An Accumulator is owned by exactly one caller and is not safe for
// concurrent use; the K frames of a block are folded in sequentially,
// since bin k's update reads bins k-1 and k+1 of the same frame.
type Accumulator struct {
	info     types.FftInfo
	averages int
	format   Format
	topic    wire.Topic

	acc  []float64 // non-negative accumulator, length M
	accn int       // frames folded in since the last flush
	seq  uint64    // accumulator's own emission counter, distinct from block seq

	// scratch reused across ingestOne calls to avoid per-call allocation.
	cRe, cIm, csq []float64
}

// New builds an Accumulator for info, flushing a record every averages
// frames in the given output format.
func New(info types.FftInfo, averages int, format Format) (*Accumulator, error) {
	if averages <= 0 {
		return nil, ErrInvalidAverages
	}
	m := info.Bins()
	return &Accumulator{
		info:     info,
		averages: averages,
		format:   format,
		topic:    wire.SpectrumTopic(info, format.bits()),
		acc:      make([]float64, m),
		cRe:      make([]float64, m),
		cIm:      make([]float64, m),
		csq:      make([]float64, m),
	}, nil
}

// Topic returns the 24-byte topic descriptor for this accumulator's
// output stream.
func (a *Accumulator) Topic() wire.Topic { return a.topic }

// Ingest folds the K forward-FFT outputs of one processing block into
// the running accumulator, in block order, and returns one fully
// framed record (metadata header || quantized payload) per average
// boundary crossed. meta.Time is copied into every emitted record;
// meta.Seq is not used here since the accumulator keeps its own
// emission sequence, distinct from the block sequence.
func (a *Accumulator) Ingest(frame [][]complex128, meta types.Metadata) [][]byte {
	var records [][]byte
	for _, buf := range frame {
		a.ingestOne(buf)
		if a.accn >= a.averages {
			records = append(records, a.flush(meta))
		}
	}
	return records
}

// ingestOne adds |c[k]|^2 to acc[k] for one FFT output, where
// c[k] = X[k] - 0.5*(X[k-1]+X[k+1]) is the frequency-domain
// equivalent of a Hann-windowed transform. Edge bins use GetBin for
// wraparound/conjugate-symmetry; interior bins index the raw buffer
// directly, which is numerically equivalent since GetBin degenerates
// to plain indexing away from the edges.
func (a *Accumulator) ingestOne(buf []complex128) {
	m := len(a.acc)

	c0 := edgeC(buf, a.info, 0)
	a.cRe[0], a.cIm[0] = real(c0), imag(c0)
	for k := 1; k < m-1; k++ {
		c := buf[k] - 0.5*(buf[k-1]+buf[k+1])
		a.cRe[k], a.cIm[k] = real(c), imag(c)
	}
	if m > 1 {
		cLast := edgeC(buf, a.info, m-1)
		a.cRe[m-1], a.cIm[m-1] = real(cLast), imag(cLast)
	}

	PowerFromParts(a.csq, a.cRe, a.cIm)
	for k, p := range a.csq {
		a.acc[k] += p
	}
	a.accn++
}

// edgeC computes c[k] for a bin that may need modulo/conjugate
// wraparound to find its neighbors.
func edgeC(buf []complex128, fi types.FftInfo, k int) complex128 {
	return buf[k] - 0.5*(types.GetBin(buf, fi, k-1)+types.GetBin(buf, fi, k+1))
}

// flush quantizes the accumulated averages into one record, resets the
// accumulator, and advances its emission sequence.
func (a *Accumulator) flush(meta types.Metadata) []byte {
	dbOffset := -10 * math.Log10(float64(a.accn))

	var payload []byte
	switch a.format {
	case FormatU16:
		payload = make([]byte, 2*len(a.acc))
		for k, p := range a.acc {
			db := 10*math.Log10(p) + dbOffset
			wire.QuantizeU16(payload[2*k:2*k+2], db)
		}
	default:
		payload = make([]byte, len(a.acc))
		for k, p := range a.acc {
			db := 10*math.Log10(p) + dbOffset
			payload[k] = wire.QuantizeU8(db)
		}
	}

	for k := range a.acc {
		a.acc[k] = 0
	}
	a.accn = 0

	record := wire.AppendHeader(nil, types.Metadata{Seq: a.seq, Time: meta.Time})
	a.seq++
	return append(record, payload...)
}
