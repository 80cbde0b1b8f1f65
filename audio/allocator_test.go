package audio

import "testing"

func newTestAllocator(t *testing.T) (*Allocator, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	a, err := NewAllocator(fb, DefaultLayout())
	if err != nil {
		t.Fatalf("NewAllocator: %v", err)
	}
	return a, fb
}

func bufferedSample(name string, buffer int) *Sample {
	return &Sample{Name: name, Mode: ModeBuffered, Buffer: buffer, Path: "sounds/" + name + ".ogg"}
}

func streamedSample(name string) *Sample {
	return &Sample{Name: name, Mode: ModeStreamed, Buffer: -1, Path: "sounds/" + name + ".ogg"}
}

func musicSample(name string) *Sample {
	return &Sample{Name: name, Mode: ModeStreamed, Buffer: -1, Path: name + ".ogg", IsMusic: true}
}

// TestLayoutValidate verifies the slot layout bounds
func TestLayoutValidate(t *testing.T) {
	testCases := []struct {
		name   string
		layout Layout
		valid  bool
	}{
		{"default", DefaultLayout(), true},
		{"minimal", Layout{Sources: 1, Streams: 3}, true},
		{"no sources", Layout{Sources: 0, Streams: 6}, false},
		{"music only", Layout{Sources: 10, Streams: 2}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.layout.Validate()
			if (err == nil) != tc.valid {
				t.Errorf("Validate() = %v, want valid=%v", err, tc.valid)
			}
		})
	}

	l := DefaultLayout()
	if l.MaxSlots() != 16 || l.MusicSlot() != 10 || l.FxStreamSlot() != 12 || l.FxStreamPool() != 4 {
		t.Errorf("Unexpected default layout: max=%d music=%d fx=%d pool=%d",
			l.MaxSlots(), l.MusicSlot(), l.FxStreamSlot(), l.FxStreamPool())
	}
}

// TestSourceRoundRobinWraps verifies the 11th buffered play reuses slot 0
func TestSourceRoundRobinWraps(t *testing.T) {
	a, _ := newTestAllocator(t)
	s := bufferedSample("ping", 0)

	var ids []PlaybackID
	for i := 0; i < 11; i++ {
		ids = append(ids, a.PlayEffect(s, 1, 1, 0))
	}

	for i := 0; i < 10; i++ {
		if ids[i].Slot != i {
			t.Errorf("Play %d: expected slot %d, got %d", i, i, ids[i].Slot)
		}
	}
	if ids[10].Slot != 0 {
		t.Errorf("Expected 11th play on slot 0, got %d", ids[10].Slot)
	}

	if a.Resolve(ids[0]) {
		t.Error("Expected first id to be stale after slot reuse")
	}
	if !a.Resolve(ids[10]) {
		t.Error("Expected newest id to resolve")
	}
}

// TestStreamedEffectPool verifies streamed effects cycle slots 12..15
func TestStreamedEffectPool(t *testing.T) {
	a, fb := newTestAllocator(t)
	s := streamedSample("engine_loop")

	want := []int{12, 13, 14, 15, 12}
	for i, slot := range want {
		id := a.PlayEffect(s, 0.7, 0.3, OpRepeat)
		if id.Slot != slot {
			t.Errorf("Play %d: expected slot %d, got %d", i, slot, id.Slot)
		}
	}

	params := fb.ops("param")
	if len(params) != len(want) {
		t.Fatalf("Expected %d volume params, got %d", len(want), len(params))
	}
	if params[0].param != ParamVolume || params[0].value != 0.7 || params[0].count != 1 {
		t.Errorf("Expected left gain as stream volume, got %+v", params[0])
	}

	streams := fb.ops("stream")
	if streams[0].mode != PlayLoop {
		t.Errorf("Expected loop mode for OpRepeat, got %v", streams[0].mode)
	}
	if streams[0].path != s.Path {
		t.Errorf("Expected stream path %q, got %q", s.Path, streams[0].path)
	}
}

// TestFailedPlayClearsSlot verifies a zero id leaves the slot empty
func TestFailedPlayClearsSlot(t *testing.T) {
	a, fb := newTestAllocator(t)
	s := bufferedSample("ping", 0)

	first := a.PlayEffect(s, 1, 1, 0)
	for i := 1; i < 10; i++ {
		a.PlayEffect(s, 1, 1, 0)
	}

	fb.failSlots[0] = true
	id := a.PlayEffect(s, 1, 1, 0)
	if !id.IsZero() {
		t.Fatalf("Expected zero id from failing backend, got %v", id)
	}
	if a.Resolve(first) {
		t.Error("Expected previous binding on slot 0 to be cleared")
	}
	if name, _ := a.Binding(0); name != "" {
		t.Errorf("Expected slot 0 empty, bound to %q", name)
	}

	played, failed := a.Stats()
	if played != 10 || failed != 1 {
		t.Errorf("Expected 10 played, 1 failed; got %d, %d", played, failed)
	}
}

// TestReleaseStaleAndZero verifies Release ignores ids it does not own
func TestReleaseStaleAndZero(t *testing.T) {
	a, fb := newTestAllocator(t)

	if a.Release(PlaybackID{}) {
		t.Error("Expected Release(zero) to return false")
	}

	id := a.PlayEffect(bufferedSample("ping", 0), 1, 1, 0)
	fb.reset()

	if !a.Release(id) {
		t.Error("Expected first Release to return true")
	}
	if a.Release(id) {
		t.Error("Expected second Release to return false")
	}

	stops := fb.ops("control")
	if len(stops) != 1 {
		t.Fatalf("Expected exactly one backend stop, got %d", len(stops))
	}
	if stops[0].slot != id.Slot || stops[0].count != 1 || stops[0].cmd != ControlStop {
		t.Errorf("Unexpected stop call %+v", stops[0])
	}
}

// TestStopAll verifies every slot is silenced and cleared
func TestStopAll(t *testing.T) {
	a, fb := newTestAllocator(t)
	fx := a.PlayEffect(bufferedSample("ping", 0), 1, 1, 0)
	song := a.PlayMusic(musicSample("music/theme"), 1, 0, true, PlaybackID{})
	fb.reset()

	a.StopAll()

	stops := fb.ops("control")
	if len(stops) != 1 || stops[0].slot != 0 || stops[0].count != 16 {
		t.Errorf("Expected one stop over [0,16), got %+v", stops)
	}
	if a.Resolve(fx) || a.Resolve(song) {
		t.Error("Expected all bindings cleared")
	}
}

// TestStopAllExceptMusic verifies music slots keep their binding
func TestStopAllExceptMusic(t *testing.T) {
	a, fb := newTestAllocator(t)

	fx := a.PlayEffect(bufferedSample("ping", 0), 1, 1, 0)
	stream := a.PlayEffect(streamedSample("roar"), 1, 1, 0)
	song := a.PlayMusic(musicSample("music/theme"), 1, 0, true, PlaybackID{})
	if song.Slot != 10 {
		t.Fatalf("Expected first track on slot 10, got %d", song.Slot)
	}
	fb.reset()

	a.StopAllExceptMusic()

	stops := fb.ops("control")
	if len(stops) != 2 {
		t.Fatalf("Expected two range stops, got %d", len(stops))
	}
	if stops[0].slot != 0 || stops[0].count != 10 {
		t.Errorf("Expected source stop over [0,10), got %+v", stops[0])
	}
	if stops[1].slot != 12 || stops[1].count != 4 {
		t.Errorf("Expected fx stream stop over [12,16), got %+v", stops[1])
	}

	if a.Resolve(fx) || a.Resolve(stream) {
		t.Error("Expected effect bindings cleared")
	}
	if !a.Resolve(song) {
		t.Error("Expected music binding to survive")
	}
	if !fb.IsPlaying(song) {
		t.Error("Expected music still playing on backend")
	}
}

// TestPlayMusicAlternatesChannels verifies the toggle and fade parameter push
func TestPlayMusicAlternatesChannels(t *testing.T) {
	a, fb := newTestAllocator(t)
	song := musicSample("music/theme")

	first := a.PlayMusic(song, 0.8, 0.5, true, PlaybackID{})
	second := a.PlayMusic(song, 0.8, 0.5, true, first)
	third := a.PlayMusic(song, 0.8, 0.5, false, second)

	if first.Slot != 10 || second.Slot != 11 || third.Slot != 10 {
		t.Errorf("Expected slots 10,11,10; got %d,%d,%d", first.Slot, second.Slot, third.Slot)
	}

	var fades []call
	for _, c := range fb.ops("param") {
		if c.param == ParamFadePeriod {
			fades = append(fades, c)
		}
	}
	if len(fades) != 1 {
		t.Fatalf("Expected fade period pushed once for an unchanged rate, got %d", len(fades))
	}
	if fades[0].slot != 10 || fades[0].count != 2 || fades[0].value != 2.0 {
		t.Errorf("Expected fade period 2s over [10,12), got %+v", fades[0])
	}

	var fadeOuts []call
	for _, c := range fb.ops("control") {
		if c.cmd == ControlFadeOut {
			fadeOuts = append(fadeOuts, c)
		}
	}
	if len(fadeOuts) != 2 || fadeOuts[0].slot != 10 || fadeOuts[1].slot != 11 {
		t.Errorf("Expected fade-outs on 10 then 11, got %+v", fadeOuts)
	}

	streams := fb.ops("stream")
	if streams[0].mode != PlayLoop|PlayFadeIn {
		t.Errorf("Expected loop+fade-in, got %v", streams[0].mode)
	}
	if streams[2].mode != PlayFadeIn {
		t.Errorf("Expected once+fade-in, got %v", streams[2].mode)
	}
}

// TestPlayMusicMissingTrack verifies a nil sample still fades out but does not toggle
func TestPlayMusicMissingTrack(t *testing.T) {
	a, fb := newTestAllocator(t)

	first := a.PlayMusic(musicSample("music/theme"), 1, 0, true, PlaybackID{})
	id := a.PlayMusic(nil, 1, 0, true, first)
	if !id.IsZero() {
		t.Errorf("Expected zero id for missing track, got %v", id)
	}
	if len(fb.ops("stream")) != 1 {
		t.Error("Expected no stream started for missing track")
	}

	next := a.PlayMusic(musicSample("music/other"), 1, 0, false, PlaybackID{})
	if next.Slot != 11 {
		t.Errorf("Expected toggle unchanged by missing track, got slot %d", next.Slot)
	}

	streams := fb.ops("stream")
	if streams[len(streams)-1].mode != PlayOnce {
		t.Errorf("Expected plain once mode without fade, got %v", streams[len(streams)-1].mode)
	}
}
