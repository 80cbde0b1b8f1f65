package audio

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// Waveform types
const (
	waveSine = iota
	waveSquare
	waveNoise
)

// floatBuffer is mono float64 samples at unity gain
type floatBuffer []float64

// oscillator generates raw waveform samples
func oscillator(waveType int, freq float64, samples, rate int) floatBuffer {
	buf := make(floatBuffer, samples)
	phase := 0.0
	phaseInc := freq / float64(rate)

	for i := 0; i < samples; i++ {
		switch waveType {
		case waveSine:
			buf[i] = math.Sin(2 * math.Pi * phase)
		case waveSquare:
			if phase < 0.5 {
				buf[i] = 1.0
			} else {
				buf[i] = -1.0
			}
		case waveNoise:
			buf[i] = rand.Float64()*2 - 1
		}

		phase += phaseInc
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	return buf
}

// constantTone returns a flat buffer, handy for exact gain assertions
func constantTone(level float64, samples int) floatBuffer {
	buf := make(floatBuffer, samples)
	for i := range buf {
		buf[i] = level
	}
	return buf
}

// writeWAV encodes buf as 16-bit PCM into dir/name, duplicating to chans channels
func writeWAV(t *testing.T, dir, name string, buf floatBuffer, rate, chans int) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create %s: %v", p, err)
	}
	defer f.Close()

	data := make([]int, 0, len(buf)*chans)
	for _, v := range buf {
		s := int(math.Round(v * 32767))
		for c := 0; c < chans; c++ {
			data = append(data, s)
		}
	}

	enc := gowav.NewEncoder(f, rate, 16, chans, 1)
	ib := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: chans, SampleRate: rate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		t.Fatalf("encode %s: %v", p, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize %s: %v", p, err)
	}
	return p
}
