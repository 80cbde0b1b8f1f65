package audio

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/orbit-sound/constant"
)

// AudioConfig holds audio settings
type AudioConfig struct {
	Enabled      bool    `toml:"enabled"`
	MasterVolume float64 `toml:"master_volume"` // 0.0-1.0
	SfxVolume    float64 `toml:"sfx_volume"`    // 0.0-1.0, applied by convenience plays only
	SampleRate   int     `toml:"sample_rate"`

	DataRoot    string     `toml:"data_root"`
	EffectsDir  string     `toml:"effects_dir"`
	MusicDir    string     `toml:"music_dir"`
	LoadPolicy  LoadPolicy `toml:"load_policy"`
	LoadWorkers int        `toml:"load_workers"`

	StreamThreshold int64         `toml:"stream_threshold"` // Bytes, PolicySize
	StreamDuration  time.Duration `toml:"stream_duration"`  // PolicyDuration

	Buffers int `toml:"buffers"`
	Sources int `toml:"sources"`
	Streams int `toml:"streams"`
}

// DefaultAudioConfig returns the built-in configuration
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:         true,
		MasterVolume:    0.5,
		SfxVolume:       1.0,
		SampleRate:      constant.AudioSampleRate,
		DataRoot:        constant.AudioDataRoot,
		EffectsDir:      constant.AudioEffectsDir,
		MusicDir:        constant.AudioMusicDir,
		LoadPolicy:      PolicySize,
		LoadWorkers:     4,
		StreamThreshold: constant.AudioStreamThreshold,
		StreamDuration:  constant.AudioStreamDuration,
		Buffers:         constant.AudioBufferCount,
		Sources:         constant.AudioSourceCount,
		Streams:         constant.AudioStreamCount,
	}
}

// Layout returns the slot layout described by the config
func (c *AudioConfig) Layout() Layout {
	return Layout{Sources: c.Sources, Streams: c.Streams}
}

// Validate rejects configurations the engine cannot run with
func (c *AudioConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("config: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Buffers < 1 {
		return fmt.Errorf("config: need at least 1 preload buffer, got %d", c.Buffers)
	}
	switch c.LoadPolicy {
	case PolicySize, PolicyDuration:
	default:
		return fmt.Errorf("config: unknown load policy %q", c.LoadPolicy)
	}
	return c.Layout().Validate()
}

// LoadAudioConfig loads defaults, then the TOML file named by
// ORBIT_SOUND_CONFIG, then environment variables
func LoadAudioConfig() *AudioConfig {
	cfg := DefaultAudioConfig()

	if path := os.Getenv("ORBIT_SOUND_CONFIG"); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			log.Printf("audio: config file: %v", err)
		}
	}

	// Check if audio is enabled
	if enabled := os.Getenv("ORBIT_SOUND_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Volumes are 0-100 converted to 0.0-1.0
	if volume := os.Getenv("ORBIT_SOUND_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = percent(val)
		}
	}
	if volume := os.Getenv("ORBIT_SOUND_SFX_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.SfxVolume = percent(val)
		}
	}

	if sampleRate := os.Getenv("ORBIT_SOUND_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if root := os.Getenv("ORBIT_SOUND_DATA_ROOT"); root != "" {
		cfg.DataRoot = root
	}

	if policy := os.Getenv("ORBIT_SOUND_LOAD_POLICY"); policy != "" {
		p := LoadPolicy(strings.ToLower(policy))
		if p == PolicySize || p == PolicyDuration {
			cfg.LoadPolicy = p
		}
	}

	if workers := os.Getenv("ORBIT_SOUND_LOAD_WORKERS"); workers != "" {
		if val, err := strconv.Atoi(workers); err == nil && val > 0 {
			cfg.LoadWorkers = val
		}
	}

	return cfg
}

// loadConfigFile overlays a TOML file onto cfg
func loadConfigFile(cfg *AudioConfig, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("audio: config %s: unknown key %s", path, key)
	}
	cfg.MasterVolume = clampGain(cfg.MasterVolume)
	cfg.SfxVolume = clampGain(cfg.SfxVolume)
	return nil
}

func percent(v int) float64 {
	return clampGain(float64(v) / 100.0)
}
