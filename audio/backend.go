package audio

import "time"

// Backend is the mixing engine the sound layer drives
// Slots are addressed by index; ranges are [slot, slot+count)
// Implementations own decoding and mixing; callers own slot bookkeeping
type Backend interface {
	// LoadBuffer decodes path fully into preload buffer index
	LoadBuffer(index int, path string) (time.Duration, error)

	// PlaySource plays a preload buffer on a source slot with per-channel gain
	// Returns the zero PlaybackID on failure
	PlaySource(slot, buffer int, mode PlayMode, left, right float64) PlaybackID

	// PlayStream plays path incrementally on a stream slot
	// Returns the zero PlaybackID on failure
	PlayStream(slot int, path string, mode PlayMode) PlaybackID

	// SetParameter applies value to count slots starting at slot
	SetParameter(slot, count int, param Param, value float64)

	// Pan ramps a slot's stereo gain to left/right over period seconds (0 = immediate)
	Pan(slot int, left, right, period float64)

	// Control applies cmd to count slots starting at slot
	Control(slot, count int, cmd ControlCmd)

	// IsPlaying reports whether id is still producing sound
	IsPlaying(id PlaybackID) bool

	// Suspend pauses (on) or resumes all output
	Suspend(on bool)
}
