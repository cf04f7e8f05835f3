package types

import (
	"math"
	"math/cmplx"
	"testing"
	"time"
)

func TestBinMappingWorkedExample(t *testing.T) {
	// Values used in the original tool's own regression test.
	fi := FftInfo{Fs: 128.0e6, Fc: 0, Size: 16384, IsComplex: true}

	bm, err := NewBinMapping(fi, 500000.0, 50.250e6)
	if err != nil {
		t.Fatalf("NewBinMapping: %v", err)
	}
	if bm.Bins != 64 {
		t.Fatalf("Bins = %d, want 64", bm.Bins)
	}
	if bm.FirstBin != 6400 {
		t.Fatalf("FirstBin = %d, want 6400", bm.FirstBin)
	}

	fsOut, fcOut := bm.Frequencies(fi)
	if fsOut != 500000.0 || fcOut != 50.250e6 {
		t.Fatalf("Frequencies() = (%v, %v), want (500000, 50250000)", fsOut, fcOut)
	}

	if _, err := NewExactBinMapping(fi, 500000.0, 50.250e6); err != nil {
		t.Fatalf("NewExactBinMapping: %v", err)
	}
}

func TestBinMappingNotExact(t *testing.T) {
	fi := FftInfo{Fs: 128.0e6, Fc: 0, Size: 16384, IsComplex: true}

	// A center frequency that does not land on a multiple-of-4 bin.
	_, err := NewExactBinMapping(fi, 500000.0, 50.251e6)
	if err == nil {
		t.Fatal("expected NewExactBinMapping to reject a non-exact request")
	}
}

func TestBinMappingRejectsZeroBandwidth(t *testing.T) {
	fi := FftInfo{Fs: 128.0e6, Fc: 0, Size: 16384, IsComplex: true}

	if _, err := NewBinMapping(fi, 1.0, 0); err == nil {
		t.Fatal("expected error for a bandwidth that rounds to zero bins")
	}
}

func TestMetadataSecsNanos(t *testing.T) {
	m := Metadata{Seq: 1, Time: time.Unix(100, 250)}
	secs, nanos := m.SecsNanos()
	if secs != 100 || nanos != 250 {
		t.Fatalf("SecsNanos() = (%d, %d), want (100, 250)", secs, nanos)
	}

	before := Metadata{Seq: 2, Time: time.Unix(0, 0).Add(-time.Hour)}
	secs, nanos = before.SecsNanos()
	if secs != 0 || nanos != 0 {
		t.Fatalf("SecsNanos() for pre-epoch time = (%d, %d), want (0, 0)", secs, nanos)
	}
}

func TestGetBinModuloAndSymmetry(t *testing.T) {
	fi := FftInfo{Fs: 16, Fc: 0, Size: 16, IsComplex: true}
	buf := make([]complex128, 16)
	for i := range buf {
		buf[i] = complex(float64(i), 0)
	}

	if GetBin(buf, fi, 0) != buf[0] {
		t.Fatal("bin 0 mismatch")
	}
	if GetBin(buf, fi, 16) != buf[0] {
		t.Fatal("modulo wraparound failed for i == N")
	}
	if GetBin(buf, fi, -1) != buf[15] {
		t.Fatal("modulo wraparound failed for negative i")
	}

	fiReal := FftInfo{Fs: 16, Fc: 0, Size: 16, IsComplex: false}
	realBuf := make([]complex128, fiReal.Bins())
	for i := range realBuf {
		realBuf[i] = complex(float64(i), float64(i))
	}
	got := GetBin(realBuf, fiReal, 10) // 16 - 10 = 6, conjugated
	want := cmplx.Conj(realBuf[6])
	if got != want {
		t.Fatalf("GetBin conjugate symmetry = %v, want %v", got, want)
	}
}

func TestFftInfoBins(t *testing.T) {
	complexFi := FftInfo{Size: 100, IsComplex: true}
	if complexFi.Bins() != 100 {
		t.Fatalf("complex Bins() = %d, want 100", complexFi.Bins())
	}

	realFi := FftInfo{Size: 100, IsComplex: false}
	if realFi.Bins() != 51 {
		t.Fatalf("real Bins() = %d, want 51", realFi.Bins())
	}

	if !math.IsNaN(math.NaN()) {
		t.Fatal("sanity check failed")
	}
}
