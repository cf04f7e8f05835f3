// Command spektri reads a raw sample stream from standard input,
// channelizes it into a live spectrum and any number of baseband
// filter outputs, and publishes both over MQTT (and, optionally, to
// mirror files).
package main

import (
	"bufio"
	"io"
	"log"
	"os"
	"time"

	"github.com/tejeez/spektri/config"
	"github.com/tejeez/spektri/decode"
	"github.com/tejeez/spektri/dsp/filterbank"
	"github.com/tejeez/spektri/dsp/framer"
	"github.com/tejeez/spektri/dsp/multifft"
	"github.com/tejeez/spektri/dsp/spectrum"
	"github.com/tejeez/spektri/dsp/types"
	"github.com/tejeez/spektri/sink"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("spektri: %v", err)
	}

	info := types.FftInfo{
		Fs:        cfg.SampleRate,
		Fc:        cfg.CenterFreq,
		Size:      cfg.FFTSize,
		IsComplex: cfg.InputFormat.IsComplex(),
	}

	mf, err := multifft.New(info, cfg.FFTBuf, 1.0)
	if err != nil {
		log.Fatalf("spektri: %v", err)
	}

	acc, err := spectrum.New(info, cfg.Averages, cfg.SpectrumFormat)
	if err != nil {
		log.Fatalf("spektri: %v", err)
	}

	bank := filterbank.New(info)
	for _, fspec := range cfg.Filters {
		if err := bank.AddFilter(fspec.Fs, fspec.Fc, fspec.File); err != nil {
			log.Printf("spektri: skipping filter fs=%v fc=%v: %v", fspec.Fs, fspec.Fc, err)
		}
	}

	bus, err := sink.NewMQTT(cfg.ZmqBind)
	if err != nil {
		log.Fatalf("spektri: %v", err)
	}
	defer bus.Close()

	var specFile *sink.File
	if cfg.SpectrumFile != "" {
		specFile, err = sink.OpenFile(cfg.SpectrumFile)
		if err != nil {
			log.Fatalf("spektri: %v", err)
		}
		defer specFile.Close()
	}

	run, err := newRunner(info, cfg, mf)
	if err != nil {
		log.Fatalf("spektri: %v", err)
	}

	stdin := bufio.NewReaderSize(os.Stdin, 1<<20)
	outputs := mf.NewOutputs()
	raw := make([]byte, run.rawBlockSize())

	var blockSeq uint64
	for {
		if _, err := io.ReadFull(stdin, raw); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return
			}
			log.Fatalf("spektri: reading input: %v", err)
		}

		if err := run.forward(raw, outputs); err != nil {
			log.Fatalf("spektri: %v", err)
		}

		meta := types.Metadata{Seq: blockSeq, Time: time.Now()}
		blockSeq++

		for _, record := range acc.Ingest(outputs, meta) {
			topic := acc.Topic().Bytes()
			if err := bus.Send(topic, record); err != nil {
				log.Printf("spektri: spectrum publish: %v", err)
			}
			if specFile != nil {
				if err := specFile.Write(record); err != nil {
					log.Printf("spektri: spectrum file write: %v", err)
				}
			}
		}

		bank.Ingest(outputs, meta, bus)
		bank.PruneDone()
	}
}

// runner hides the framer.Framer[S] generic parameter behind the one
// code path main needs: decode raw bytes, run the forward FFTs, bail
// cleanly on a short final block.
type runner struct {
	need    int
	forward func(raw []byte, outputs [][]complex128) error
}

func (r *runner) rawBlockSize() int { return r.need }

func newRunner(info types.FftInfo, cfg *config.Config, mf *multifft.MultiFFT) (*runner, error) {
	if info.IsComplex {
		fr, err := framer.New[complex128](info.Size, cfg.FFTBuf, decode.Complex{Format: cfg.InputFormat})
		if err != nil {
			return nil, err
		}
		layout := fr.Layout()
		return &runner{
			need: layout.New * cfg.InputFormat.BytesPerSample(),
			forward: func(raw []byte, outputs [][]complex128) error {
				windows, err := fr.Ingest(raw)
				if err != nil {
					return err
				}
				return mf.ForwardComplex(windows, outputs)
			},
		}, nil
	}

	fr, err := framer.New[float64](info.Size, cfg.FFTBuf, decode.Real{Format: cfg.InputFormat})
	if err != nil {
		return nil, err
	}
	layout := fr.Layout()
	return &runner{
		need: layout.New * cfg.InputFormat.BytesPerSample(),
		forward: func(raw []byte, outputs [][]complex128) error {
			windows, err := fr.Ingest(raw)
			if err != nil {
				return err
			}
			return mf.ForwardReal(windows, outputs)
		},
	}, nil
}
