package filterbank

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/tejeez/spektri/dsp/types"
	"github.com/tejeez/spektri/dsp/wire"
)

// Filter is one channel of the bank: a bin range, a raised-cosine
// weighting, and a cached IFFT plan. It is not safe for concurrent
// use, but distinct Filters share no state and may run concurrently
// with each other.
type Filter struct {
	bm      types.BinMapping
	weights []float64
	plan    *algofft.Plan[complex128]
	y       []complex128 // IFFT input/output scratch, length Bins

	topic        wire.Topic
	file         *os.File
	fsOut, fcOut float64
}

func newFilter(fi types.FftInfo, fsOut, fcOut float64, filePath string) (*Filter, error) {
	bm, err := types.NewBinMapping(fi, fsOut, fcOut)
	if err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(bm.Bins)
	if err != nil {
		return nil, fmt.Errorf("filterbank: failed to create IFFT plan: %w", err)
	}

	weights := make([]float64, bm.Bins)
	for i := range weights {
		weights[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(bm.Bins))
	}

	actualFs, actualFc := bm.Frequencies(fi)

	var file *os.File
	if filePath != "" {
		file, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("filterbank: open output file %q: %w", filePath, err)
		}
	}

	return &Filter{
		bm:      bm,
		weights: weights,
		plan:    plan,
		y:       make([]complex128, bm.Bins),
		topic:   wire.SignalTopic(actualFs, actualFc),
		file:    file,
		fsOut:   actualFs,
		fcOut:   actualFc,
	}, nil
}

// Done reports whether this filter has finished producing output and
// should be pruned from its bank. Nothing currently retires a filter;
// the hook exists for a future self-terminating channel (e.g. a
// one-shot capture) without changing Bank's bookkeeping.
func (f *Filter) Done() bool { return false }

// process channelizes one processing block's K forward-FFT outputs
// through this filter and returns a fully framed record.
func (f *Filter) process(frame [][]complex128, fi types.FftInfo, meta types.Metadata) ([]byte, error) {
	b := f.bm.Bins
	lo := b / 8
	hi := b * 7 / 8

	out := wire.AppendHeader(nil, meta)
	for _, fftOut := range frame {
		for i := 0; i < b; i++ {
			f.y[(i+b/2)%b] = complex(f.weights[i], 0) * types.GetBin(fftOut, fi, f.bm.FirstBin+i)
		}
		// In place: algo-fft's Plan.Inverse accepts dst==src, the same
		// way overlap_save.go transforms os.outputBuffer in place.
		if err := f.plan.Inverse(f.y, f.y); err != nil {
			return nil, fmt.Errorf("filterbank: inverse FFT: %w", err)
		}
		for _, v := range f.y[lo:hi] {
			out = appendComplexFloat32LE(out, v)
		}
	}
	return out, nil
}

func appendComplexFloat32LE(buf []byte, v complex128) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint32(tmp[0:4], math.Float32bits(float32(real(v))))
	binary.LittleEndian.PutUint32(tmp[4:8], math.Float32bits(float32(imag(v))))
	return append(buf, tmp[:]...)
}
