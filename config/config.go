// Package config parses the command-line flags that configure a
// spektri run into a validated Config, using pflag for GNU-style
// long flags and repeatable filter/broker lists.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tejeez/spektri/decode"
	"github.com/tejeez/spektri/dsp/spectrum"
)

// ErrConfig wraps every error Parse returns, so callers can
// distinguish a bad invocation from a runtime I/O failure.
var ErrConfig = errors.New("config")

// FilterSpec is one parsed --filters entry: an output bandwidth and
// center frequency, and an optional mirror file path.
type FilterSpec struct {
	Fs   float64
	Fc   float64
	File string
}

// Config is the fully parsed and validated configuration for one run.
type Config struct {
	SampleRate float64
	CenterFreq float64

	FFTSize  int
	FFTBuf   int
	Averages int

	InputFormat    decode.Format
	SpectrumFormat spectrum.Format
	SpectrumFile   string

	Filters []FilterSpec
	ZmqBind []string
}

const defaultZmqBind = "ipc:///tmp/spektri.zmq"

// Parse parses args (typically os.Args[1:]) into a Config.
func Parse(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("spektri", pflag.ContinueOnError)

	sampleRate := fs.Float64("samplerate", 0, "input sample rate, Hz (required)")
	centerFreq := fs.Float64("centerfreq", 0, "input center frequency, Hz")
	fftSize := fs.Int("fftsize", 16384, "forward FFT size N")
	fftBuf := fs.Int("fftbuf", 8, "number of FFT windows per processing block, K")
	averages := fs.Int("averages", 2000, "spectrum frames averaged per emitted record")
	inputFormat := fs.String("inputformat", "cs16le", "input sample format")
	spectrumFormat := fs.String("spectrumformat", "u8", "spectrum quantization, u8 or u16")
	spectrumFile := fs.String("spectrumfile", "/dev/stdout", "file to mirror the spectrum stream to")
	filters := fs.StringArray("filters", nil, "repeatable fs=<Hz>:fc=<Hz>[:file=<path>] filter spec")
	zmqBind := fs.StringArray("zmqbind", nil, "repeatable MQTT broker URL to publish to")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if *sampleRate <= 0 {
		return nil, fmt.Errorf("%w: --samplerate must be positive", ErrConfig)
	}
	if *fftSize <= 0 || *fftSize%4 != 0 {
		return nil, fmt.Errorf("%w: --fftsize must be a positive multiple of 4", ErrConfig)
	}
	if *fftBuf <= 0 {
		return nil, fmt.Errorf("%w: --fftbuf must be positive", ErrConfig)
	}
	if *averages <= 0 {
		return nil, fmt.Errorf("%w: --averages must be positive", ErrConfig)
	}

	format, err := decode.ParseFormat(*inputFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: --inputformat: %v", ErrConfig, err)
	}

	var specFormat spectrum.Format
	switch strings.ToLower(*spectrumFormat) {
	case "u8":
		specFormat = spectrum.FormatU8
	case "u16":
		specFormat = spectrum.FormatU16
	default:
		return nil, fmt.Errorf("%w: --spectrumformat must be u8 or u16, got %q", ErrConfig, *spectrumFormat)
	}

	parsedFilters := make([]FilterSpec, 0, len(*filters))
	for _, spec := range *filters {
		fspec, err := parseFilterSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: --filters %q: %v", ErrConfig, spec, err)
		}
		parsedFilters = append(parsedFilters, fspec)
	}

	binds := *zmqBind
	if len(binds) == 0 {
		binds = []string{defaultZmqBind}
	}

	return &Config{
		SampleRate:     *sampleRate,
		CenterFreq:     *centerFreq,
		FFTSize:        *fftSize,
		FFTBuf:         *fftBuf,
		Averages:       *averages,
		InputFormat:    format,
		SpectrumFormat: specFormat,
		SpectrumFile:   *spectrumFile,
		Filters:        parsedFilters,
		ZmqBind:        binds,
	}, nil
}

// parseFilterSpec parses one colon-separated fs=...:fc=...[:file=...]
// filter specification.
func parseFilterSpec(s string) (FilterSpec, error) {
	var spec FilterSpec
	var haveFs, haveFc bool

	for _, field := range strings.Split(s, ":") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return FilterSpec{}, fmt.Errorf("malformed field %q, want key=value", field)
		}
		switch key {
		case "fs":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return FilterSpec{}, fmt.Errorf("fs: %w", err)
			}
			spec.Fs, haveFs = v, true
		case "fc":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return FilterSpec{}, fmt.Errorf("fc: %w", err)
			}
			spec.Fc, haveFc = v, true
		case "file":
			spec.File = value
		default:
			return FilterSpec{}, fmt.Errorf("unknown field %q", key)
		}
	}

	if !haveFs || !haveFc {
		return FilterSpec{}, errors.New("filter spec must set both fs and fc")
	}
	return spec, nil
}
