package audio

import (
	"errors"
	"fmt"
	"time"
)

// StorageMode tells how a sample reaches the mixer
type StorageMode int

const (
	ModeBuffered StorageMode = iota // Fully decoded into a preload buffer
	ModeStreamed                    // Decoded incrementally from disk
)

func (m StorageMode) String() string {
	if m == ModeBuffered {
		return "buffered"
	}
	return "streamed"
}

// Sample is an immutable catalog entry
type Sample struct {
	Name     string
	Mode     StorageMode
	Buffer   int    // Preload buffer index, -1 unless Mode == ModeBuffered
	Path     string // Relative to the data root
	Size     int64  // Bytes on disk, -1 if unknown
	Duration time.Duration
	IsMusic  bool
}

// Op is a play request option set
type Op int

const (
	OpRepeat Op = 1 << iota // Loop until stopped
)

// PlayMode flags understood by a Backend
type PlayMode int

const (
	PlayOnce   PlayMode = 0
	PlayLoop   PlayMode = 1 << 0
	PlayFadeIn PlayMode = 1 << 1
)

// Param selects a per-voice parameter
type Param int

const (
	ParamVolume     Param = iota // Stream gain, 0.0-1.0
	ParamFadePeriod              // Seconds for fade-in/out transitions
)

// ControlCmd is a transport command applied to a slot range
type ControlCmd int

const (
	ControlStop ControlCmd = iota
	ControlFadeOut
)

// PlaybackID correlates a caller handle with one slot occupancy
// The zero value means "not playing"
type PlaybackID struct {
	Slot int
	Gen  uint32
}

// IsZero reports whether id refers to no playback
func (id PlaybackID) IsZero() bool {
	return id.Gen == 0
}

func (id PlaybackID) String() string {
	if id.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", id.Slot, id.Gen)
}

// Sentinel errors
var (
	ErrBufferCapacity    = errors.New("preload buffer capacity exhausted")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNoDevice          = errors.New("audio device unavailable")
	ErrAlreadyRunning    = errors.New("audio engine already running")
	ErrNotRunning        = errors.New("audio engine not running")
)
