package audio

import (
	"fmt"
	"sync"
	"time"
)

// call records one Backend invocation
type call struct {
	op    string
	slot  int
	count int
	param Param
	cmd   ControlCmd
	value float64
	mode  PlayMode
	path  string
}

// fakeBackend records calls and hands out ids; failSlots forces zero ids
type fakeBackend struct {
	mu sync.Mutex

	gen       uint32
	calls     []call
	playing   map[PlaybackID]bool
	failSlots map[int]bool
	failLoad  map[string]bool
	loaded    map[int]string
	suspended bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		playing:   make(map[PlaybackID]bool),
		failSlots: make(map[int]bool),
		failLoad:  make(map[string]bool),
		loaded:    make(map[int]string),
	}
}

func (f *fakeBackend) record(c call) {
	f.calls = append(f.calls, c)
}

func (f *fakeBackend) start(slot int) PlaybackID {
	if f.failSlots[slot] {
		return PlaybackID{}
	}
	f.gen++
	id := PlaybackID{Slot: slot, Gen: f.gen}
	for other := range f.playing {
		if other.Slot == slot {
			delete(f.playing, other)
		}
	}
	f.playing[id] = true
	return id
}

func (f *fakeBackend) LoadBuffer(index int, path string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "load", slot: index, path: path})
	if f.failLoad[path] {
		return 0, fmt.Errorf("decode %s: %w", path, ErrUnsupportedFormat)
	}
	f.loaded[index] = path
	return time.Second, nil
}

func (f *fakeBackend) PlaySource(slot, buffer int, mode PlayMode, left, right float64) PlaybackID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "source", slot: slot, count: buffer, mode: mode, value: left})
	return f.start(slot)
}

func (f *fakeBackend) PlayStream(slot int, path string, mode PlayMode) PlaybackID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "stream", slot: slot, path: path, mode: mode})
	return f.start(slot)
}

func (f *fakeBackend) SetParameter(slot, count int, param Param, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "param", slot: slot, count: count, param: param, value: value})
}

func (f *fakeBackend) Pan(slot int, left, right, period float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "pan", slot: slot, value: period})
}

func (f *fakeBackend) Control(slot, count int, cmd ControlCmd) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "control", slot: slot, count: count, cmd: cmd})
	if cmd != ControlStop {
		return
	}
	for id := range f.playing {
		if id.Slot >= slot && id.Slot < slot+count {
			delete(f.playing, id)
		}
	}
}

func (f *fakeBackend) IsPlaying(id PlaybackID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing[id]
}

func (f *fakeBackend) Suspend(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspended = on
}

// finish simulates a voice running out on its own
func (f *fakeBackend) finish(id PlaybackID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.playing, id)
}

// reset drops recorded calls
func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// ops returns recorded calls with the given op name
func (f *fakeBackend) ops(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}
