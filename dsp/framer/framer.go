// Package framer implements the overlap-save input buffer: it turns a
// stream of raw bytes into equally spaced, overlapping windows ready
// for the forward FFT stage.
package framer

import "errors"

// Sample is the element type a Framer operates on: a real sample for
// real-valued input formats, or a complex sample for I/Q input.
type Sample interface {
	float64 | complex128
}

// Decoder turns raw input bytes into decoded samples. It is the one
// seam between the framer and the input-format byte layout; the
// framer never interprets raw_bytes itself.
type Decoder[S Sample] interface {
	// BytesPerSample is the number of raw bytes consumed per decoded
	// sample.
	BytesPerSample() int
	// Decode fills dst with len(dst) samples read from raw. raw must
	// contain at least len(dst)*BytesPerSample() bytes.
	Decode(raw []byte, dst []S)
}

// ErrShortRead is returned by Ingest when raw does not contain enough
// bytes for one full processing block. Per the spec this is treated as
// a graceful end of stream, not a hard error; callers should stop the
// main loop without emitting a partial block.
var ErrShortRead = errors.New("framer: short read")

// Layout describes the buffer sizes a Framer requires, in samples.
type Layout struct {
	Overlap int // samples retained from the previous block, N/4
	New     int // newly decoded samples per block, (N-N/4)*K
	Total   int // Overlap + New
}

// Framer maintains the overlap-save input buffer for one FFT size N and
// block size K. Ingest is called once per processing block; it is not
// safe for concurrent use.
type Framer[S Sample] struct {
	n       int
	k       int
	overlap int
	step    int // N - overlap, the stride between consecutive windows
	decoder Decoder[S]
	buf     []S
}

// New constructs a Framer for an FFT size n and k windows per block.
// n must be a positive multiple of 4 so the 25% overlap is exact.
func New[S Sample](n, k int, decoder Decoder[S]) (*Framer[S], error) {
	if n <= 0 || n%4 != 0 {
		return nil, errInvalidFFTSize
	}
	if k <= 0 {
		return nil, errInvalidBlockCount
	}

	overlap := n / 4
	step := n - overlap

	return &Framer[S]{
		n:       n,
		k:       k,
		overlap: overlap,
		step:    step,
		decoder: decoder,
		buf:     make([]S, overlap+step*k),
	}, nil
}

// Layout returns the buffer sizes this Framer requires.
func (f *Framer[S]) Layout() Layout {
	return Layout{
		Overlap: f.overlap,
		New:     f.step * f.k,
		Total:   len(f.buf),
	}
}

// Ingest decodes raw into the framer's buffer and returns K slices of N
// samples each, with 25% overlap between consecutive slices. The
// returned slices alias the Framer's internal buffer and are only
// valid until the next call to Ingest.
//
// If raw does not contain enough bytes for a full block, Ingest
// returns ErrShortRead; the caller must treat this as a clean
// end-of-stream and must not retain or publish a partial block.
func (f *Framer[S]) Ingest(raw []byte) ([][]S, error) {
	newSamples := f.step * f.k
	need := newSamples * f.decoder.BytesPerSample()
	if len(raw) < need {
		return nil, ErrShortRead
	}

	// Slide the overlap region from the end of the previous buffer to
	// the front, then decode the new samples into the tail.
	copy(f.buf[:f.overlap], f.buf[len(f.buf)-f.overlap:])
	f.decoder.Decode(raw[:need], f.buf[f.overlap:])

	windows := make([][]S, f.k)
	for i := range windows {
		off := i * f.step
		windows[i] = f.buf[off : off+f.n]
	}
	return windows, nil
}

var (
	errInvalidFFTSize    = errors.New("framer: fft size must be a positive multiple of 4")
	errInvalidBlockCount = errors.New("framer: block count must be positive")
)
