package filterbank

import (
	"log"
	"sync"

	"github.com/tejeez/spektri/dsp/types"
)

// Sink is the minimal publish capability a Bank needs: sending a
// record's payload under its stream's topic. *sink.MQTT from the
// top-level sink package satisfies it; filterbank accepts
// the interface rather than importing the transport package so the DSP
// core stays free of MQTT/file concerns.
type Sink interface {
	Send(topic [24]byte, payload []byte) error
}

// Bank runs a processing block through every registered Filter and
// publishes each one's output. Filters run concurrently with each
// other (disjoint state, independent IFFT plans); publishing happens
// afterward, sequentially, in registration order.
type Bank struct {
	info    types.FftInfo
	filters []*Filter
}

// New returns an empty Bank for the given FFT descriptor.
func New(info types.FftInfo) *Bank {
	return &Bank{info: info}
}

// AddFilter registers a new channel extracting fsOut Hz around fcOut
// Hz. If filePath is non-empty, the filter's output is also appended
// to that file. An invalid bin mapping is reported to the caller and
// does not affect previously registered filters.
func (b *Bank) AddFilter(fsOut, fcOut float64, filePath string) error {
	f, err := newFilter(b.info, fsOut, fcOut, filePath)
	if err != nil {
		return err
	}
	b.filters = append(b.filters, f)
	return nil
}

// NumFilters returns the number of currently registered filters.
func (b *Bank) NumFilters() int { return len(b.filters) }

// NearestFreq reports the output sample rate and center frequency the
// bank would actually produce for a requested (fsOut, fcOut), without
// registering a filter. Supplemented from the original tool's
// Fcfb::nearest_freq query (see DESIGN.md) for callers that want to
// preview a snap-to-grid result, e.g. a configuration UI.
func (b *Bank) NearestFreq(fsOut, fcOut float64) (actualFs, actualFc float64, err error) {
	return types.NearestFreq(b.info, fsOut, fcOut)
}

// Ingest channelizes one processing block's K forward-FFT outputs
// through every registered filter and publishes each filter's record
// to bus, and to its own file if one is configured. A publish failure
// is logged and the record is dropped; it never stops the pipeline or
// affects other filters.
func (b *Bank) Ingest(frame [][]complex128, meta types.Metadata, bus Sink) {
	if len(b.filters) == 0 {
		return
	}

	records := make([][]byte, len(b.filters))
	errs := make([]error, len(b.filters))

	var wg sync.WaitGroup
	for i, f := range b.filters {
		wg.Add(1)
		go func(i int, f *Filter) {
			defer wg.Done()
			records[i], errs[i] = f.process(frame, b.info, meta)
		}(i, f)
	}
	wg.Wait()

	for i, f := range b.filters {
		if errs[i] != nil {
			log.Printf("filterbank: filter %d (%.1f Hz): %v", i, f.fcOut, errs[i])
			continue
		}
		if err := bus.Send(f.topic.Bytes(), records[i]); err != nil {
			log.Printf("filterbank: filter %d (%.1f Hz): publish: %v", i, f.fcOut, err)
		}
		if f.file != nil {
			if _, err := f.file.Write(records[i]); err != nil {
				log.Printf("filterbank: filter %d (%.1f Hz): file write: %v", i, f.fcOut, err)
			}
		}
	}
}

// PruneDone removes every filter that reports itself done, releasing
// its file handle. It is called once per block after Ingest.
func (b *Bank) PruneDone() {
	kept := b.filters[:0]
	for _, f := range b.filters {
		if f.Done() {
			if f.file != nil {
				f.file.Close()
			}
			continue
		}
		kept = append(kept, f)
	}
	b.filters = kept
}
