package audio

import (
	"fmt"
	"io/fs"
	"log"
	"math"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/orbit-sound/constant"
)

// Mixer is the beep-backed Backend
// It is itself a beep.Streamer; Start hands it to the speaker behind a master volume
type Mixer struct {
	mu sync.Mutex

	fsys    fs.FS
	rate    beep.SampleRate
	buffers []*beep.Buffer
	voices  []voice
	gen     uint32
	paused  bool
	scratch [][2]float64

	out       *effects.Volume
	speakerOn bool
}

// NewMixer creates a mixer reading assets from fsys
func NewMixer(fsys fs.FS, rate int, buffers, slots int) *Mixer {
	m := &Mixer{
		fsys:    fsys,
		rate:    beep.SampleRate(rate),
		buffers: make([]*beep.Buffer, buffers),
		voices:  make([]voice, slots),
	}
	for i := range m.voices {
		m.voices[i] = newVoice()
	}
	m.out = &effects.Volume{Streamer: m, Base: 2}
	return m
}

// Start opens the output device and begins playback
func (m *Mixer) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.speakerOn {
		return ErrAlreadyRunning
	}
	if err := speaker.Init(m.rate, m.rate.N(constant.AudioBufferDuration)); err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	speaker.Play(m.out)
	m.speakerOn = true
	return nil
}

// Close stops output and releases every open stream
func (m *Mixer) Close() {
	m.mu.Lock()
	on := m.speakerOn
	m.speakerOn = false
	m.mu.Unlock()

	if on {
		speaker.Clear()
		speaker.Close()
	}

	m.mu.Lock()
	for i := range m.voices {
		m.voices[i].stop()
	}
	m.mu.Unlock()
}

// SetMasterVolume scales the final mix, v in [0, 1]
func (m *Mixer) SetMasterVolume(v float64) {
	v = clampGain(v)

	m.mu.Lock()
	on := m.speakerOn
	m.mu.Unlock()
	if on {
		speaker.Lock()
		defer speaker.Unlock()
	}

	if v == 0 {
		m.out.Silent = true
		return
	}
	m.out.Silent = false
	m.out.Volume = math.Log2(v)
}

// IsOpen reports whether the output device is held
func (m *Mixer) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speakerOn
}

// decode opens path and returns a stream at the mixer rate
// The returned length is the source play time
func (m *Mixer) decode(p string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := m.fsys.Open(p)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var s beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(path.Ext(p)) {
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", p, err)
	}
	return s, format, nil
}

// resample adapts s to the mixer rate when the asset differs
func (m *Mixer) resample(s beep.Streamer, from beep.SampleRate) beep.Streamer {
	if from == m.rate {
		return s
	}
	return beep.Resample(constant.AudioResampleQuality, from, m.rate, s)
}

// LoadBuffer implements Backend
func (m *Mixer) LoadBuffer(index int, p string) (time.Duration, error) {
	if index < 0 || index >= len(m.buffers) {
		return 0, fmt.Errorf("%w: index %d", ErrBufferCapacity, index)
	}

	s, format, err := m.decode(p)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	dur := format.SampleRate.D(s.Len())
	buf := beep.NewBuffer(beep.Format{SampleRate: m.rate, NumChannels: 2, Precision: 2})
	buf.Append(m.resample(s, format.SampleRate))
	if err := s.Err(); err != nil {
		return 0, fmt.Errorf("decode %s: %w", p, err)
	}

	m.mu.Lock()
	m.buffers[index] = buf
	m.mu.Unlock()
	return dur, nil
}

// nextID advances the generation counter, skipping zero
// Caller holds m.mu
func (m *Mixer) nextID(slot int) PlaybackID {
	m.gen++
	if m.gen == 0 {
		m.gen++
	}
	return PlaybackID{Slot: slot, Gen: m.gen}
}

func (m *Mixer) validSlot(slot int) bool {
	return slot >= 0 && slot < len(m.voices)
}

func (m *Mixer) frames(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return m.rate.N(time.Duration(seconds * float64(time.Second)))
}

// PlaySource implements Backend
func (m *Mixer) PlaySource(slot, buffer int, mode PlayMode, left, right float64) PlaybackID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.validSlot(slot) {
		return PlaybackID{}
	}
	// A failed play still silences the slot so it matches the cleared binding
	if buffer < 0 || buffer >= len(m.buffers) || m.buffers[buffer] == nil {
		m.voices[slot].stop()
		return PlaybackID{}
	}
	b := m.buffers[buffer]

	var src beep.Streamer = b.Streamer(0, b.Len())
	if mode&PlayLoop != 0 {
		src = beep.Loop(-1, b.Streamer(0, b.Len()))
	}

	id := m.nextID(slot)
	v := &m.voices[slot]
	v.start(id.Gen, src, nil, mode, m.frames(v.fadePeriod))
	v.left.set(left)
	v.right.set(right)
	return id
}

// PlayStream implements Backend
func (m *Mixer) PlayStream(slot int, p string, mode PlayMode) PlaybackID {
	if !m.validSlot(slot) {
		return PlaybackID{}
	}

	s, format, err := m.decode(p)
	if err != nil {
		log.Printf("audio: stream %s: %v", p, err)
		m.mu.Lock()
		m.voices[slot].stop()
		m.mu.Unlock()
		return PlaybackID{}
	}

	var src beep.Streamer = s
	if mode&PlayLoop != 0 {
		src = beep.Loop(-1, s)
	}
	src = m.resample(src, format.SampleRate)

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID(slot)
	v := &m.voices[slot]
	v.start(id.Gen, src, s, mode, m.frames(v.fadePeriod))
	v.left.set(1)
	v.right.set(1)
	return id
}

// slotRange clips [slot, slot+count) to the voice array
func (m *Mixer) slotRange(slot, count int) (lo, hi int) {
	lo = max(slot, 0)
	hi = min(slot+count, len(m.voices))
	return lo, hi
}

// SetParameter implements Backend
func (m *Mixer) SetParameter(slot, count int, param Param, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lo, hi := m.slotRange(slot, count)
	for i := lo; i < hi; i++ {
		switch param {
		case ParamVolume:
			m.voices[i].volume = clampGain(value)
		case ParamFadePeriod:
			m.voices[i].fadePeriod = math.Max(value, 0)
		}
	}
}

// Pan implements Backend
func (m *Mixer) Pan(slot int, left, right, period float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.validSlot(slot) {
		return
	}
	n := m.frames(period)
	v := &m.voices[slot]
	v.left.to(clampGain(left), n)
	v.right.to(clampGain(right), n)
}

// Control implements Backend
func (m *Mixer) Control(slot, count int, cmd ControlCmd) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lo, hi := m.slotRange(slot, count)
	for i := lo; i < hi; i++ {
		v := &m.voices[i]
		switch cmd {
		case ControlStop:
			v.stop()
		case ControlFadeOut:
			v.beginFadeOut(m.frames(v.fadePeriod))
		}
	}
}

// IsPlaying implements Backend
func (m *Mixer) IsPlaying(id PlaybackID) bool {
	if id.IsZero() || !m.validSlot(id.Slot) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v := &m.voices[id.Slot]
	return v.gen == id.Gen && v.active()
}

// Suspend implements Backend
// Voices hold their position while suspended
func (m *Mixer) Suspend(on bool) {
	m.mu.Lock()
	changed := m.paused != on
	m.paused = on
	speakerOn := m.speakerOn
	m.mu.Unlock()

	if !changed || !speakerOn {
		return
	}
	var err error
	if on {
		err = speaker.Suspend()
	} else {
		err = speaker.Resume()
	}
	if err != nil {
		log.Printf("audio: suspend(%v): %v", on, err)
	}
}

// Active returns the number of voices currently producing sound
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for i := range m.voices {
		if m.voices[i].active() {
			n++
		}
	}
	return n
}

// Stream implements beep.Streamer, mixing every active voice
func (m *Mixer) Stream(samples [][2]float64) (n int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}
	if m.paused {
		return len(samples), true
	}

	if cap(m.scratch) < len(samples) {
		m.scratch = make([][2]float64, len(samples))
	}
	for i := range m.voices {
		v := &m.voices[i]
		v.mix(samples, m.scratch)
		if v.err != nil {
			log.Printf("audio: slot %d stream error: %v", i, v.err)
			v.err = nil
		}
	}

	for i := range samples {
		samples[i][0] = softLimit(samples[i][0])
		samples[i][1] = softLimit(samples[i][1])
	}
	return len(samples), true
}

// Err implements beep.Streamer
func (m *Mixer) Err() error {
	return nil
}

// softLimit compresses peaks above 0.8 and hard clips at 1
func softLimit(v float64) float64 {
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}

	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	return v
}
