package audio

import (
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/orbit-sound/jobs"
)

// EngineDeps are optional collaborators; zero fields get production defaults
type EngineDeps struct {
	FS      fs.FS       // Asset root, default os.DirFS(cfg.DataRoot)
	Backend Backend     // Default is a beep Mixer over FS
	Queue   *jobs.Queue // Default is an engine-owned queue
}

// EngineStats is a point-in-time summary for diagnostics
type EngineStats struct {
	Samples     int
	Buffered    int
	Streamed    int
	Music       int
	BuffersUsed int
	Played      uint64
	Failed      uint64
	Active      int // -1 when the backend cannot report it
	Pending     int
}

// AudioEngine owns the catalog, allocator and backend for one output device
// Play and stop calls belong to the owning goroutine; volume accessors are safe anywhere
type AudioEngine struct {
	config *AudioConfig

	fsys     fs.FS
	backend  Backend
	mixer    *Mixer // nil when an external backend was injected
	queue    *jobs.Queue
	ownQueue bool

	catalog *Catalog
	alloc   *Allocator
	buffers *bufferPool

	running atomic.Bool
	muted   atomic.Bool

	mu sync.RWMutex // Protects config volumes

	loadErr error // Owner goroutine only, set by job Finish
}

// NewAudioEngine creates an engine; nothing touches the device until Start
func NewAudioEngine(cfg *AudioConfig, deps EngineDeps) (*AudioEngine, error) {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ae := &AudioEngine{
		config:  cfg,
		fsys:    deps.FS,
		backend: deps.Backend,
		queue:   deps.Queue,
		catalog: NewCatalog(),
		buffers: newBufferPool(cfg.Buffers),
	}
	if ae.fsys == nil {
		ae.fsys = os.DirFS(cfg.DataRoot)
	}
	if ae.backend == nil {
		ae.mixer = NewMixer(ae.fsys, cfg.SampleRate, cfg.Buffers, cfg.Layout().MaxSlots())
		ae.mixer.SetMasterVolume(cfg.MasterVolume)
		ae.backend = ae.mixer
	}
	if ae.queue == nil {
		ae.queue = jobs.NewQueue(cfg.LoadWorkers)
		ae.ownQueue = true
	}
	ae.muted.Store(!cfg.Enabled)
	if ae.mixer != nil && !cfg.Enabled {
		ae.mixer.SetMasterVolume(0)
	}

	alloc, err := NewAllocator(ae.backend, cfg.Layout())
	if err != nil {
		return nil, err
	}
	ae.alloc = alloc
	return ae, nil
}

// InitDevice opens the output device, or resets it when already open
// Every slot is stopped and every binding cleared either way
func (ae *AudioEngine) InitDevice() error {
	if ae.mixer != nil && !ae.mixer.IsOpen() {
		if err := ae.mixer.Start(); err != nil {
			return err
		}
	}
	ae.alloc.StopAll()
	return nil
}

// Start opens the device and orders the catalog load
func (ae *AudioEngine) Start() error {
	if ae.running.Load() {
		return ErrAlreadyRunning
	}
	if err := ae.InitDevice(); err != nil {
		return err
	}
	if err := ae.Load(); err != nil {
		if ae.mixer != nil {
			ae.mixer.Close()
		}
		return err
	}
	ae.running.Store(true)
	return nil
}

// Load orders one job for effects and one for music, then silences every slot
// Results reach the catalog on a later Update
func (ae *AudioEngine) Load() error {
	rules := loadRules{
		policy:    ae.config.LoadPolicy,
		threshold: ae.config.StreamThreshold,
		maxLength: ae.config.StreamDuration,
		workers:   max(ae.config.LoadWorkers, 1),
	}

	for _, dir := range []struct {
		path    string
		isMusic bool
	}{
		{ae.config.EffectsDir, false},
		{ae.config.MusicDir, true},
	} {
		job := &LoadJob{
			dir:     dir.path,
			isMusic: dir.isMusic,
			fsys:    ae.fsys,
			backend: ae.backend,
			buffers: ae.buffers,
			rules:   rules,
			catalog: ae.catalog,
			onDone:  ae.loadDone,
		}
		if !ae.queue.Order(job) {
			return fmt.Errorf("load %s: %w", dir.path, jobs.ErrClosed)
		}
	}

	ae.alloc.StopAll()
	return nil
}

func (ae *AudioEngine) loadDone(err error) {
	if err != nil && ae.loadErr == nil {
		ae.loadErr = err
	}
}

// Update runs pending job finishers on the caller's goroutine
// Returns the first load failure; buffer exhaustion is not recoverable
func (ae *AudioEngine) Update() error {
	ae.queue.Pump()
	return ae.loadErr
}

// WaitLoaded blocks until all ordered jobs finish and merges their results
func (ae *AudioEngine) WaitLoaded() error {
	ae.queue.Wait()
	return ae.loadErr
}

// Stop silences all slots and releases the device
func (ae *AudioEngine) Stop() {
	if !ae.running.CompareAndSwap(true, false) {
		return
	}
	ae.alloc.StopAll()
	if ae.ownQueue {
		ae.queue.Close()
	}
	if ae.mixer != nil {
		ae.mixer.Close()
	}
}

// IsRunning returns true between Start and Stop
func (ae *AudioEngine) IsRunning() bool {
	return ae.running.Load()
}

// SetMasterVolume updates the output gain (0.0-1.0)
func (ae *AudioEngine) SetMasterVolume(vol float64) {
	vol = clampGain(vol)

	ae.mu.Lock()
	ae.config.MasterVolume = vol
	ae.mu.Unlock()

	if ae.mixer != nil && !ae.muted.Load() {
		ae.mixer.SetMasterVolume(vol)
	}
}

// MasterVolume returns the output gain
func (ae *AudioEngine) MasterVolume() float64 {
	ae.mu.RLock()
	defer ae.mu.RUnlock()
	return ae.config.MasterVolume
}

// SetSfxVolume updates the gain applied by PlaySfx and BodyMakeNoise (0.0-1.0)
func (ae *AudioEngine) SetSfxVolume(vol float64) {
	ae.mu.Lock()
	ae.config.SfxVolume = clampGain(vol)
	ae.mu.Unlock()
}

// SfxVolume returns the effect gain
func (ae *AudioEngine) SfxVolume() float64 {
	ae.mu.RLock()
	defer ae.mu.RUnlock()
	return ae.config.SfxVolume
}

// ToggleMute toggles mute state, returns true if now enabled
func (ae *AudioEngine) ToggleMute() bool {
	muted := !ae.muted.Load()
	ae.muted.Store(muted)

	if ae.mixer != nil {
		if muted {
			ae.mixer.SetMasterVolume(0)
		} else {
			ae.mixer.SetMasterVolume(ae.MasterVolume())
		}
	}
	return !muted
}

// IsMuted returns current mute state
func (ae *AudioEngine) IsMuted() bool {
	return ae.muted.Load()
}

// NewEvent returns an idle handle bound to this engine
func (ae *AudioEngine) NewEvent() *Event {
	return NewEvent(ae.alloc, ae.catalog)
}

// PlaySfx fires an effect scaled by the sfx volume and forgets the handle
func (ae *AudioEngine) PlaySfx(name string, left, right float64, op Op) PlaybackID {
	if ae.muted.Load() {
		return PlaybackID{}
	}
	sfx := ae.SfxVolume()

	e := ae.NewEvent()
	e.Play(name, left*sfx, right*sfx, op)
	return e.ID()
}

// BodyMakeNoise plays name positioned at body as heard by listener
func (ae *AudioEngine) BodyMakeNoise(listener, body Body, name string, vol float64) PlaybackID {
	left, right := ComputeStereoGains(listener, body, vol)
	return ae.PlaySfx(name, left, right, 0)
}

// StopAll silences every slot
func (ae *AudioEngine) StopAll() {
	ae.alloc.StopAll()
}

// StopAllExceptMusic silences effects, leaving music channels playing
func (ae *AudioEngine) StopAllExceptMusic() {
	ae.alloc.StopAllExceptMusic()
}

// Pause suspends (true) or resumes (false) all output
func (ae *AudioEngine) Pause(on bool) {
	ae.backend.Suspend(on)
}

// MusicFiles returns the sorted music track names
func (ae *AudioEngine) MusicFiles() []string {
	return ae.catalog.MusicNames()
}

// Catalog returns the sample catalog
func (ae *AudioEngine) Catalog() *Catalog {
	return ae.catalog
}

// Allocator returns the slot allocator
func (ae *AudioEngine) Allocator() *Allocator {
	return ae.alloc
}

// Slots returns a snapshot of every voice slot
func (ae *AudioEngine) Slots() []SlotInfo {
	return ae.alloc.Slots()
}

// Stats returns catalog, allocation and queue counters
func (ae *AudioEngine) Stats() EngineStats {
	st := EngineStats{
		BuffersUsed: ae.buffers.used(),
		Active:      -1,
		Pending:     ae.queue.Pending(),
	}
	for _, s := range ae.catalog.Samples() {
		st.Samples++
		switch {
		case s.IsMusic:
			st.Music++
		case s.Mode == ModeBuffered:
			st.Buffered++
		default:
			st.Streamed++
		}
	}
	st.Played, st.Failed = ae.alloc.Stats()
	if ae.mixer != nil {
		st.Active = ae.mixer.Active()
	}
	return st
}
