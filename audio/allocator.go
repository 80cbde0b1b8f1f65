package audio

import (
	"fmt"

	"github.com/lixenwraith/orbit-sound/constant"
)

// Layout sizes the voice slot array
// Sources come first, then Streams; the first AudioMusicChannels streams are music
type Layout struct {
	Sources int
	Streams int
}

// DefaultLayout returns 10 source slots and 6 stream slots
func DefaultLayout() Layout {
	return Layout{
		Sources: constant.AudioSourceCount,
		Streams: constant.AudioStreamCount,
	}
}

// MaxSlots is the total slot count
func (l Layout) MaxSlots() int { return l.Sources + l.Streams }

// MusicSlot is the first reserved music channel
func (l Layout) MusicSlot() int { return l.Sources }

// FxStreamSlot is the first slot of the streamed-effect pool
func (l Layout) FxStreamSlot() int { return l.Sources + constant.AudioMusicChannels }

// FxStreamPool is the streamed-effect pool width
func (l Layout) FxStreamPool() int { return l.Streams - constant.AudioMusicChannels }

// IsMusicSlot reports whether slot is one of the reserved music channels
func (l Layout) IsMusicSlot(slot int) bool {
	return slot >= l.MusicSlot() && slot < l.FxStreamSlot()
}

// Validate checks the layout leaves room for every pool
func (l Layout) Validate() error {
	if l.Sources < 1 {
		return fmt.Errorf("layout: need at least 1 source slot, got %d", l.Sources)
	}
	if l.FxStreamPool() < 1 {
		return fmt.Errorf("layout: need at least %d stream slots, got %d", constant.AudioMusicChannels+1, l.Streams)
	}
	return nil
}

// binding is the active occupancy of one slot
type binding struct {
	sample *Sample // Non-owning, nil when the slot is empty
	id     PlaybackID
}

func (b *binding) clear() {
	b.sample = nil
	b.id = PlaybackID{}
}

// SlotInfo describes one slot for diagnostics
type SlotInfo struct {
	Slot   int
	Sample string
	ID     PlaybackID
	Music  bool
}

// Allocator assigns play requests to voice slots round-robin
// Not safe for concurrent use; all calls come from the owning goroutine
type Allocator struct {
	backend Backend
	layout  Layout
	slots   []binding

	nextSource int
	nextStream int
	nextMusic  int

	musicFadeDelta float64

	played uint64
	failed uint64
}

// NewAllocator creates an allocator over backend
func NewAllocator(backend Backend, layout Layout) (*Allocator, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Allocator{
		backend: backend,
		layout:  layout,
		slots:   make([]binding, layout.MaxSlots()),
	}, nil
}

// Layout returns the slot layout
func (a *Allocator) Layout() Layout { return a.layout }

// Backend returns the driven backend
func (a *Allocator) Backend() Backend { return a.backend }

func modeFor(op Op) PlayMode {
	if op&OpRepeat != 0 {
		return PlayLoop
	}
	return PlayOnce
}

// PlayEffect starts s on the next slot of its pool and records the binding
// Returns the zero PlaybackID if the backend could not start playback
func (a *Allocator) PlayEffect(s *Sample, left, right float64, op Op) PlaybackID {
	mode := modeFor(op)

	var slot int
	var id PlaybackID
	if s.Mode == ModeBuffered {
		slot = a.nextSource
		a.nextSource = (a.nextSource + 1) % a.layout.Sources

		id = a.backend.PlaySource(slot, s.Buffer, mode, left, right)
	} else {
		slot = a.layout.FxStreamSlot() + a.nextStream
		a.nextStream = (a.nextStream + 1) % a.layout.FxStreamPool()

		a.backend.SetParameter(slot, 1, ParamVolume, left)
		id = a.backend.PlayStream(slot, s.Path, mode)
	}

	a.bind(slot, s, id)
	return id
}

// PlayMusic starts s on the idle music channel, alternating per call
// fadeDelta != 0 requests a fade-in; the fade rate is shared by both channels
// and only pushed to the backend when it changes. A non-zero fadeOut is told
// to fade on its own channel
func (a *Allocator) PlayMusic(s *Sample, volume, fadeDelta float64, repeat bool, fadeOut PlaybackID) PlaybackID {
	if fadeDelta != 0 && a.musicFadeDelta != fadeDelta {
		a.musicFadeDelta = fadeDelta
		a.backend.SetParameter(a.layout.MusicSlot(), constant.AudioMusicChannels, ParamFadePeriod, 1.0/fadeDelta)
	}

	if !fadeOut.IsZero() {
		a.backend.Control(fadeOut.Slot, 1, ControlFadeOut)
	}

	if s == nil {
		return PlaybackID{}
	}

	slot := a.layout.MusicSlot() + a.nextMusic
	a.nextMusic ^= 1

	mode := PlayOnce
	if repeat {
		mode = PlayLoop
	}
	if fadeDelta != 0 {
		mode |= PlayFadeIn
	}

	a.backend.SetParameter(slot, 1, ParamVolume, volume)
	id := a.backend.PlayStream(slot, s.Path, mode)

	a.bind(slot, s, id)
	return id
}

func (a *Allocator) bind(slot int, s *Sample, id PlaybackID) {
	b := &a.slots[slot]
	if id.IsZero() {
		b.clear()
		a.failed++
		return
	}
	b.sample = s
	b.id = id
	a.played++
}

// resolve returns the live binding for id, nil if id is zero or stale
func (a *Allocator) resolve(id PlaybackID) *binding {
	if id.IsZero() || id.Slot < 0 || id.Slot >= len(a.slots) {
		return nil
	}
	b := &a.slots[id.Slot]
	if b.sample != nil && b.id == id {
		return b
	}
	return nil
}

// Resolve reports whether id still owns its slot
func (a *Allocator) Resolve(id PlaybackID) bool {
	return a.resolve(id) != nil
}

// Binding returns the sample name and id bound to slot, empty if idle
func (a *Allocator) Binding(slot int) (string, PlaybackID) {
	if slot < 0 || slot >= len(a.slots) || a.slots[slot].sample == nil {
		return "", PlaybackID{}
	}
	b := &a.slots[slot]
	return b.sample.Name, b.id
}

// Release stops the slot owned by id and clears it
// Returns false for zero or stale ids without touching the backend
func (a *Allocator) Release(id PlaybackID) bool {
	b := a.resolve(id)
	if b == nil {
		return false
	}
	a.backend.Control(id.Slot, 1, ControlStop)
	b.clear()
	return true
}

// StopAll silences every slot and clears all bindings
func (a *Allocator) StopAll() {
	a.backend.Control(0, a.layout.MaxSlots(), ControlStop)
	for i := range a.slots {
		a.slots[i].clear()
	}
}

// StopAllExceptMusic silences every slot outside the music channels
// Music bindings survive so in-flight tracks keep playing across the sweep
func (a *Allocator) StopAllExceptMusic() {
	a.backend.Control(0, a.layout.Sources, ControlStop)
	a.backend.Control(a.layout.FxStreamSlot(), a.layout.FxStreamPool(), ControlStop)

	for i := range a.slots {
		if !a.layout.IsMusicSlot(i) {
			a.slots[i].clear()
		}
	}
}

// Slots returns a snapshot of every slot
func (a *Allocator) Slots() []SlotInfo {
	out := make([]SlotInfo, len(a.slots))
	for i := range a.slots {
		b := &a.slots[i]
		out[i] = SlotInfo{Slot: i, ID: b.id, Music: a.layout.IsMusicSlot(i)}
		if b.sample != nil {
			out[i].Sample = b.sample.Name
		}
	}
	return out
}

// Stats returns successful and failed play counts
func (a *Allocator) Stats() (played, failed uint64) {
	return a.played, a.failed
}
