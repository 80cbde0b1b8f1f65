package audio

// Event is a caller-held handle to one playback
// It never owns its slot: once the slot is stopped or reused the handle goes
// stale and every operation becomes a no-op returning false
type Event struct {
	alloc   *Allocator
	catalog *Catalog
	id      PlaybackID
}

// NewEvent creates an idle handle bound to an allocator and catalog
func NewEvent(alloc *Allocator, catalog *Catalog) *Event {
	return &Event{alloc: alloc, catalog: catalog}
}

// ID returns the current playback id, zero if idle
func (e *Event) ID() PlaybackID { return e.id }

// Reset forgets the playback without stopping it
func (e *Event) Reset() { e.id = PlaybackID{} }

// Play stops any playback held by e, then starts name
// Unknown names leave e idle
func (e *Event) Play(name string, left, right float64, op Op) {
	e.Stop()
	if s, ok := e.catalog.Lookup(name); ok {
		e.id = e.alloc.PlayEffect(s, left, right, op)
	}
}

// PlayMusic starts track name on the idle music channel
// fadeDelta is a volume-per-second rate; 0 starts at full volume immediately
// A non-nil fadeOut holding a playback is faded on its own channel
func (e *Event) PlayMusic(name string, volume, fadeDelta float64, repeat bool, fadeOut *Event) {
	var prev PlaybackID
	if fadeOut != nil {
		prev = fadeOut.id
	}

	s, _ := e.catalog.Lookup(name)
	id := e.alloc.PlayMusic(s, volume, fadeDelta, repeat, prev)
	if s != nil {
		e.id = id
	}
}

// Stop halts the playback if e still owns its slot
// Returns false if e was idle or stale
func (e *Event) Stop() bool {
	if e.id.IsZero() {
		return false
	}
	return e.alloc.Release(e.id)
}

// IsPlaying reports whether e owns a slot and the backend still produces sound
// Finished voices keep their binding until the next stop or sweep
func (e *Event) IsPlaying() bool {
	if e.alloc.resolve(e.id) == nil {
		return false
	}
	return e.alloc.backend.IsPlaying(e.id)
}

// SetOp is accepted for interface parity; option changes mid-play are unsupported
func (e *Event) SetOp(Op) bool {
	return false
}

// SetVolume changes stereo gain immediately
func (e *Event) SetVolume(left, right float64) bool {
	if e.alloc.resolve(e.id) == nil {
		return false
	}
	e.alloc.backend.Pan(e.id.Slot, left, right, 0)
	return true
}

// VolumeAnimate ramps stereo gain toward the targets at dvdt volume per second
// The second rate is unused; the backend ramps both channels together
func (e *Event) VolumeAnimate(targetLeft, targetRight, dvdt, _ float64) bool {
	if e.alloc.resolve(e.id) == nil {
		return false
	}
	e.alloc.backend.Pan(e.id.Slot, targetLeft, targetRight, period(dvdt))
	return true
}

// FadeOut fades the playback to silence at dvdt volume per second
func (e *Event) FadeOut(dvdt float64, _ Op) bool {
	if e.alloc.resolve(e.id) == nil {
		return false
	}
	e.alloc.backend.SetParameter(e.id.Slot, 1, ParamFadePeriod, period(dvdt))
	e.alloc.backend.Control(e.id.Slot, 1, ControlFadeOut)
	return true
}

// period converts a rate to seconds, non-positive rates mean immediate
func period(rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return 1.0 / rate
}
