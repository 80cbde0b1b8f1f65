package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100

	// AudioBufferDuration is the speaker buffer length, bounds output latency
	AudioBufferDuration = 100 * time.Millisecond

	// AudioResampleQuality is passed to beep.Resample for assets not at AudioSampleRate
	AudioResampleQuality = 4
)

// Voice Slot Layout
// Slots [0, AudioSourceCount) play preloaded buffers
// Slots from AudioSourceCount on play streams; the first two are music
const (
	AudioBufferCount = 196
	AudioSourceCount = 10
	AudioStreamCount = 6

	// AudioMusicChannels are reserved at the head of the stream range
	AudioMusicChannels = 2
)

// Sample Loading
const (
	// AudioStreamThreshold in bytes; files at or under it are preloaded
	// sounds/Ship/Thruster_large.ogg is 85787 bytes (22KHz, 7.98 seconds)
	AudioStreamThreshold int64 = 88000

	// AudioStreamDuration is the cutoff for the duration load policy
	AudioStreamDuration = 10 * time.Second

	AudioEffectsDir = "sounds"
	AudioMusicDir   = "music"
	AudioDataRoot   = "data"
)

// Spatialization
const (
	// AudioDistanceFalloff scales listener distance into attenuation
	AudioDistanceFalloff = 0.002
)

// Diagnostics
const (
	// AudioMissLogInterval throttles unknown-sample log lines
	AudioMissLogInterval = 2 * time.Second
)
