// Package multifft runs the K forward FFTs of a processing block in
// parallel, applying the rectangular analysis window on the way in.
package multifft

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/tejeez/spektri/dsp/types"
	"github.com/tejeez/spektri/dsp/window"
)

// MultiFFT holds one independent forward-FFT plan per fan-out slot.
//
// The design notes call out that an FFT library's plan object may not
// be safe to invoke concurrently from multiple goroutines even against
// disjoint buffers, if it carries internal scratch state. Rather than
// assume otherwise, each of the K slots gets its own *algofft.Plan,
// built from the same planner parameters; the K forward transforms
// then have no shared mutable state at all.
type MultiFFT struct {
	info   types.FftInfo
	window []float64
	plans  []*algofft.Plan[complex128]
	// scratch holds one full-size (N) complex buffer per slot, used
	// only for real input: the forward transform always runs at size
	// N, and for real input only the first N/2+1 bins are kept.
	scratch [][]complex128
}

// New builds a MultiFFT for info.Size-point FFTs, k slots, using a
// rectangular window scaled by scaling.
func New(info types.FftInfo, k int, scaling float64) (*MultiFFT, error) {
	if k <= 0 {
		return nil, fmt.Errorf("multifft: k must be positive, got %d", k)
	}

	w, err := window.Generate(window.TypeRectangular, info.Size, scaling)
	if err != nil {
		return nil, fmt.Errorf("multifft: %w", err)
	}

	mf := &MultiFFT{
		info:   info,
		window: w,
		plans:  make([]*algofft.Plan[complex128], k),
	}

	if !info.IsComplex {
		mf.scratch = make([][]complex128, k)
	}

	for i := range mf.plans {
		plan, err := algofft.NewPlan64(info.Size)
		if err != nil {
			return nil, fmt.Errorf("multifft: failed to create FFT plan: %w", err)
		}
		mf.plans[i] = plan
		if mf.scratch != nil {
			mf.scratch[i] = make([]complex128, info.Size)
		}
	}

	return mf, nil
}

// Slots returns the number of parallel FFT slots (K).
func (mf *MultiFFT) Slots() int { return len(mf.plans) }

// OutputBins returns the number of complex bins produced per slot: N
// for complex input, N/2+1 for real input.
func (mf *MultiFFT) OutputBins() int { return mf.info.Bins() }

// NewOutputs allocates a fresh K-slot FftFrame sized for this MultiFFT.
// Callers reuse the returned buffers across blocks rather than calling
// this more than once.
func (mf *MultiFFT) NewOutputs() [][]complex128 {
	out := make([][]complex128, len(mf.plans))
	for i := range out {
		out[i] = make([]complex128, mf.OutputBins())
	}
	return out
}

// ForwardComplex windows and transforms k complex input slices of
// length N, writing M=N complex bins into outputs[i]. inputs and
// outputs must each have exactly Slots() entries.
func (mf *MultiFFT) ForwardComplex(inputs [][]complex128, outputs [][]complex128) error {
	if len(inputs) != len(mf.plans) || len(outputs) != len(mf.plans) {
		return fmt.Errorf("multifft: expected %d slots, got %d inputs and %d outputs", len(mf.plans), len(inputs), len(outputs))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(mf.plans))

	for i := range mf.plans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in, out := inputs[i], outputs[i]
			for j, v := range in {
				out[j] = v * complex(mf.window[j], 0)
			}
			// In place: algo-fft's Plan.Forward/Inverse accept dst==src,
			// the same way overlap_save.go/streaming_overlap_save.go
			// transform os.inputBuffer/os.outputBuffer in place.
			if err := mf.plans[i].Forward(out, out); err != nil {
				errs[i] = fmt.Errorf("multifft: forward FFT slot %d: %w", i, err)
			}
		}(i)
	}
	wg.Wait()

	return firstError(errs)
}

// ForwardReal windows and transforms k real input slices of length N,
// writing M=N/2+1 complex bins into outputs[i]. inputs and outputs
// must each have exactly Slots() entries.
func (mf *MultiFFT) ForwardReal(inputs [][]float64, outputs [][]complex128) error {
	if len(inputs) != len(mf.plans) || len(outputs) != len(mf.plans) {
		return fmt.Errorf("multifft: expected %d slots, got %d inputs and %d outputs", len(mf.plans), len(inputs), len(outputs))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(mf.plans))

	for i := range mf.plans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in, scratch, out := inputs[i], mf.scratch[i], outputs[i]
			for j, v := range in {
				scratch[j] = complex(v*mf.window[j], 0)
			}
			// In place, as above.
			if err := mf.plans[i].Forward(scratch, scratch); err != nil {
				errs[i] = fmt.Errorf("multifft: forward FFT slot %d: %w", i, err)
				return
			}
			copy(out, scratch[:len(out)])
		}(i)
	}
	wg.Wait()

	return firstError(errs)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// GetBin returns the complex value at integer bin i of one slot's FFT
// output, applying modulo-N wraparound and (for real input)
// conjugate-symmetric reconstruction of the upper half. It delegates to
// types.GetBin, the single implementation of this rule shared with the
// spectrum accumulator and the filter bank.
func (mf *MultiFFT) GetBin(slot []complex128, i int) complex128 {
	return types.GetBin(slot, mf.info, i)
}
