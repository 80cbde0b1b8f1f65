package audio

import (
	"log"
	"sync/atomic"

	"github.com/lixenwraith/orbit-sound/jobs"
)

// AudioService wraps AudioEngine as a Service
// Handles graceful degradation when no audio device is available
type AudioService struct {
	queue       *jobs.Queue
	audioEngine *AudioEngine
	disabled    atomic.Bool
}

// NewService creates an audio service whose load jobs run on queue
func NewService(queue *jobs.Queue) *AudioService {
	return &AudioService{queue: queue}
}

// Name implements Service
func (s *AudioService) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return []string{"jobs"}
}

// Init implements Service
// args[0]: *AudioConfig, default LoadAudioConfig()
// args[1]: bool - mute override (true = muted)
// Sets disabled flag on failure (no error returned)
func (s *AudioService) Init(args ...any) error {
	config := LoadAudioConfig()
	if len(args) > 0 {
		if cfg, ok := args[0].(*AudioConfig); ok && cfg != nil {
			config = cfg
		}
	}
	if len(args) > 1 {
		if muted, ok := args[1].(bool); ok {
			config.Enabled = !muted
		}
	}

	audioEngine, err := NewAudioEngine(config, EngineDeps{Queue: s.queue})
	if err != nil {
		log.Printf("audio: disabled: %v", err)
		s.disabled.Store(true)
		return nil
	}
	s.audioEngine = audioEngine
	return nil
}

// Start implements Service
// Opens the device and orders the catalog load; sets disabled on failure (no error returned)
func (s *AudioService) Start() error {
	if s.disabled.Load() || s.audioEngine == nil {
		return nil
	}

	if err := s.audioEngine.Start(); err != nil {
		log.Printf("audio: disabled: %v", err)
		s.disabled.Store(true)
		s.audioEngine.Stop()
		s.audioEngine = nil
		return nil
	}
	return nil
}

// Stop implements Service
func (s *AudioService) Stop() error {
	if s.audioEngine != nil && s.audioEngine.IsRunning() {
		s.audioEngine.Stop()
	}
	return nil
}

// IsDisabled returns true if audio is unavailable
func (s *AudioService) IsDisabled() bool {
	return s.disabled.Load()
}

// Engine returns the underlying AudioEngine (nil if disabled)
func (s *AudioService) Engine() *AudioEngine {
	if s.disabled.Load() {
		return nil
	}
	return s.audioEngine
}

// Player returns the effect-facing interface for game systems
// Returns nil if audio is disabled
func (s *AudioService) Player() AudioPlayer {
	if s.disabled.Load() || s.audioEngine == nil {
		return nil
	}
	return s.audioEngine
}

// AudioPlayer defines the minimal audio interface used by game systems
type AudioPlayer interface {
	PlaySfx(name string, left, right float64, op Op) PlaybackID
	BodyMakeNoise(listener, body Body, name string, vol float64) PlaybackID
	NewEvent() *Event
	ToggleMute() bool
	IsMuted() bool
	IsRunning() bool
}
