// Package types holds the value types shared by the framer, the
// multi-FFT stage, the spectrum accumulator, and the filter bank: the
// immutable FFT descriptor, per-record metadata, and the bin-mapping
// arithmetic used to turn a requested output sample rate and center
// frequency into a concrete bin range.
package types

import (
	"errors"
	"time"

	"github.com/tejeez/spektri/dsp/core"
)

// ErrInvalidBinMapping is returned by NewBinMapping and NewExactBinMapping
// when the requested output bandwidth cannot be represented.
var ErrInvalidBinMapping = errors.New("types: invalid bin mapping")

// ErrNotExact is returned by NewExactBinMapping when the nearest
// representable sample rate and center frequency do not exactly match the
// requested values.
var ErrNotExact = errors.New("types: requested frequency is not exactly representable")

// FftInfo is the immutable descriptor shared by the accumulator and the
// filter bank, fixed once at startup.
type FftInfo struct {
	Fs        float64 // input sample rate, Hz
	Fc        float64 // input center frequency, Hz
	Size      int     // forward FFT size N
	IsComplex bool    // true for complex (I/Q) input, false for real input
}

// BinSpacing returns the frequency spacing of adjacent FFT bins, Fs/N.
func (fi FftInfo) BinSpacing() float64 {
	return fi.Fs / float64(fi.Size)
}

// Bins returns the number of usable output bins: N for complex input,
// N/2+1 for real input (the upper half is conjugate-symmetric and is
// reconstructed on demand by GetBin rather than stored).
func (fi FftInfo) Bins() int {
	if fi.IsComplex {
		return fi.Size
	}
	return fi.Size/2 + 1
}

// Metadata is copied into every emitted record's header: a monotonically
// increasing sequence number and the wall-clock time the owning
// ProcessingBlock (or accumulator flush) was produced.
type Metadata struct {
	Seq  uint64
	Time time.Time
}

// SecsNanos splits Time into seconds and nanoseconds since the Unix
// epoch, the representation used on the wire. A timestamp before the
// epoch is not treated as an error: both fields are written as zero
// (spec error kind TimestampBeforeEpoch).
func (m Metadata) SecsNanos() (secs uint64, nanos uint32) {
	d := m.Time.Sub(time.Unix(0, 0))
	if d < 0 {
		return 0, 0
	}
	return uint64(d / time.Second), uint32(d % time.Second)
}

// binMultiple is the granularity BinMapping rounds to. The 25% overlap
// trim keeps 3B/4 samples and the passband rotation shifts by B/2, both
// integers when B is a multiple of 4; the center bin is rounded to the
// same multiple.
const binMultiple = 4

// BinMapping is the result of converting a desired output sample rate
// and center frequency into a concrete, 25%-overlap-compatible bin
// range of a size-N FFT.
type BinMapping struct {
	Bins     int // IFFT size B, a multiple of 4
	FirstBin int // index of the first bin included (signed, wraps modulo N)
}

// NewBinMapping rounds (fsOut, fcOut) to the nearest representable bin
// range for fi. It never fails to find a mapping unless the requested
// bandwidth rounds to zero or negative bins.
func NewBinMapping(fi FftInfo, fsOut, fcOut float64) (BinMapping, error) {
	spacing := fi.BinSpacing()

	bins := core.RoundToMultiple(fsOut/spacing, binMultiple)
	center := core.RoundToMultiple((fcOut-fi.Fc)/spacing, binMultiple)

	if bins <= 0 {
		return BinMapping{}, ErrInvalidBinMapping
	}

	return BinMapping{
		Bins:     bins,
		FirstBin: center - bins/2,
	}, nil
}

// NewExactBinMapping behaves like NewBinMapping but additionally
// rejects any request whose rounded bin range does not reproduce the
// requested (fsOut, fcOut) exactly via Frequencies.
func NewExactBinMapping(fi FftInfo, fsOut, fcOut float64) (BinMapping, error) {
	bm, err := NewBinMapping(fi, fsOut, fcOut)
	if err != nil {
		return BinMapping{}, err
	}

	actualFs, actualFc := bm.Frequencies(fi)
	if actualFs != fsOut || actualFc != fcOut {
		return BinMapping{}, ErrNotExact
	}

	return bm, nil
}

// Frequencies converts a BinMapping back to the actual output sample
// rate and center frequency it represents.
func (bm BinMapping) Frequencies(fi FftInfo) (fsOut, fcOut float64) {
	spacing := fi.BinSpacing()
	fsOut = spacing * float64(bm.Bins)
	fcOut = fi.Fc + spacing*float64(bm.FirstBin+bm.Bins/2)
	return fsOut, fcOut
}

// NearestFreq reports the sample rate and center frequency the filter
// bank would actually produce for a request, without constructing a
// filter. It is the non-committal counterpart of NewBinMapping, used
// by callers (e.g. a future config UI) to preview a snap-to-grid result.
func NearestFreq(fi FftInfo, fsOut, fcOut float64) (actualFs, actualFc float64, err error) {
	bm, err := NewBinMapping(fi, fsOut, fcOut)
	if err != nil {
		return 0, 0, err
	}
	fsOut, fcOut = bm.Frequencies(fi)
	return fsOut, fcOut, nil
}

// GetBin returns the complex value at integer bin i of a single FFT
// output buffer of length fi.Bins(), applying modulo-N wraparound and,
// for real-input spectra, conjugate symmetry for bins above N/2. This
// is the one mechanism both the spectrum accumulator and the filter
// bank use for all boundary handling.
func GetBin(buf []complex128, fi FftInfo, i int) complex128 {
	n := fi.Size
	m := ((i % n) + n) % n

	if fi.IsComplex {
		return buf[m]
	}
	if m <= n/2 {
		return buf[m]
	}
	return complex(real(buf[n-m]), -imag(buf[n-m]))
}
