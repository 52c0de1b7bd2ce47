package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

var (
	ErrClipNotFound    = errors.New("audio: clip not found")
	ErrUnsupportedClip = errors.New("audio: unsupported clip format")
)

// toneLength is the duration of generated "tone:<hz>" clips.
const toneLength = 250 * time.Millisecond

// ClipLoader decodes clips into seekable buffers at the mixer's sample rate.
// Files in Dir win over the embedded FS.
type ClipLoader struct {
	Dir  string
	FS   fs.FS
	Rate beep.SampleRate
}

// Load returns a seekable stream for name. Names of the form "tone:440" are
// synthesized instead of read.
func (l ClipLoader) Load(name string) (beep.StreamSeeker, error) {
	buf := beep.NewBuffer(beep.Format{SampleRate: l.Rate, NumChannels: 2, Precision: 2})

	if hz, ok := strings.CutPrefix(name, "tone:"); ok {
		freq, err := strconv.ParseFloat(hz, 64)
		if err != nil || freq <= 0 {
			return nil, fmt.Errorf("audio: tone %q: %w", name, ErrUnsupportedClip)
		}
		buf.Append(NewOscillator(freq, toneLength, WaveSine, l.Rate))
		return buf.Streamer(0, buf.Len()), nil
	}

	if !strings.EqualFold(filepath.Ext(name), ".wav") {
		return nil, fmt.Errorf("audio: %s: %w", name, ErrUnsupportedClip)
	}
	data, err := l.read(name)
	if err != nil {
		return nil, err
	}
	stream, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", name, err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if format.SampleRate != l.Rate {
		s = beep.Resample(4, format.SampleRate, l.Rate, stream)
	}
	buf.Append(s)
	return buf.Streamer(0, buf.Len()), nil
}

func (l ClipLoader) read(name string) ([]byte, error) {
	if l.Dir != "" {
		if data, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(name))); err == nil {
			return data, nil
		}
	}
	if l.FS != nil {
		if data, err := fs.ReadFile(l.FS, filepath.ToSlash(name)); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("audio: %s: %w", name, ErrClipNotFound)
}
