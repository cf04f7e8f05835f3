package filterbank

import (
	"math"
	"testing"

	"github.com/tejeez/spektri/dsp/types"
)

// TestFilterSingleBinImpulseProducesConstantOutput exercises the
// raised-cosine weighting, the (i+B/2)%B rotation, and the IFFT
// together: a unit impulse at the bin the filter rotates to DC must,
// after the inverse transform and the 25%-overlap trim, come out as a
// constant of magnitude weights[B/2]/B = 1/B. The chosen first bin
// (4) plus the filter's 32-bin width wraps past N=16, which also
// exercises GetBin's modulo wraparound on both ends of the rotation.
func TestFilterSingleBinImpulseProducesConstantOutput(t *testing.T) {
	fi := types.FftInfo{Fs: 16, Fc: 0, Size: 16, IsComplex: true}

	// fsOut=32, fcOut=20 round to BinMapping{Bins: 32, FirstBin: 4}.
	f, err := newFilter(fi, 32, 20, "")
	if err != nil {
		t.Fatalf("newFilter: %v", err)
	}
	if f.bm.Bins != 32 || f.bm.FirstBin != 4 {
		t.Fatalf("bm = %+v, want {Bins:32 FirstBin:4}", f.bm)
	}

	buf := make([]complex128, fi.Bins())
	buf[4] = complex(1, 0) // bin (FirstBin + B/2) mod N = (4+16) mod 16 = 4

	payload, err := f.process([][]complex128{buf}, fi, types.Metadata{})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	samples := decodeComplexFloat32LE(t, payload[24:])
	if len(samples) != 3*32/4 {
		t.Fatalf("len(samples) = %d, want %d", len(samples), 3*32/4)
	}

	want := 1.0 / 32.0
	for i, s := range samples {
		if math.Abs(real(s)-want) > 1e-5 || math.Abs(imag(s)) > 1e-5 {
			t.Fatalf("sample %d = %v, want (%v, 0)", i, s, want)
		}
	}
}

func decodeComplexFloat32LE(t *testing.T, b []byte) []complex128 {
	t.Helper()
	if len(b)%8 != 0 {
		t.Fatalf("payload length %d not a multiple of 8", len(b))
	}
	out := make([]complex128, len(b)/8)
	for i := range out {
		re := math.Float32frombits(leUint32(b[i*8 : i*8+4]))
		im := math.Float32frombits(leUint32(b[i*8+4 : i*8+8]))
		out[i] = complex(float64(re), float64(im))
	}
	return out
}

// TestFilterWeightsPeakAtCenter checks the raised-cosine construction
// the package doc references: w[B/2] = 1 (full pass), w[0] = 0 (full
// null at the segment boundary the rotation wraps to the edge).
func TestFilterWeightsPeakAtCenter(t *testing.T) {
	fi := types.FftInfo{Fs: 16, Fc: 0, Size: 16, IsComplex: true}
	f, err := newFilter(fi, 32, 20, "")
	if err != nil {
		t.Fatalf("newFilter: %v", err)
	}
	if got := f.weights[0]; math.Abs(got) > 1e-12 {
		t.Fatalf("weights[0] = %v, want 0", got)
	}
	if got := f.weights[len(f.weights)/2]; math.Abs(got-1) > 1e-12 {
		t.Fatalf("weights[B/2] = %v, want 1", got)
	}
}

// TestFilterAcceptsSizeMultipleOfFourNotEight checks that a filter
// whose IFFT size is a multiple of 4 but not of 8 is still accepted
// (bank_test.go covers the same case through Bank.AddFilter), and that
// its trim bounds come out as [B/8, 7B/8) with integer division, which
// keeps 3B/4 samples per FFT output.
func TestFilterAcceptsSizeMultipleOfFourNotEight(t *testing.T) {
	fi := types.FftInfo{Fs: 16, Fc: 0, Size: 16, IsComplex: true}
	// fsOut=12 rounds Bins to 12, a multiple of 4 but not of 8.
	f, err := newFilter(fi, 12, 0, "")
	if err != nil {
		t.Fatalf("newFilter: %v", err)
	}
	if f.bm.Bins != 12 {
		t.Fatalf("bm.Bins = %d, want 12", f.bm.Bins)
	}

	buf := make([]complex128, fi.Bins())
	payload, err := f.process([][]complex128{buf}, fi, types.Metadata{})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	samples := decodeComplexFloat32LE(t, payload[24:])
	// lo, hi := 12/8, 12*7/8 = 1, 10: a span of 9 samples, 3B/4.
	if len(samples) != 9 {
		t.Fatalf("len(samples) = %d, want 9", len(samples))
	}
}
