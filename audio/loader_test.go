package audio

import (
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/lixenwraith/orbit-sound/constant"
)

func sizeRules() loadRules {
	return loadRules{
		policy:    PolicySize,
		threshold: constant.AudioStreamThreshold,
		maxLength: constant.AudioStreamDuration,
		workers:   2,
	}
}

func bytesOf(n int) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(strings.Repeat("x", n))}
}

func runJob(t *testing.T, job *LoadJob) error {
	t.Helper()
	err := job.Run()
	job.Finish(err)
	return err
}

// TestLoadJobThresholdInclusive verifies the byte threshold boundary
func TestLoadJobThresholdInclusive(t *testing.T) {
	fsys := fstest.MapFS{
		"sounds/Ship/at_limit.ogg":   bytesOf(88000),
		"sounds/Ship/over_limit.ogg": bytesOf(88001),
		"sounds/small.WAV":           bytesOf(10),
		"sounds/notes.txt":           bytesOf(10),
	}
	fb := newFakeBackend()
	cat := NewCatalog()

	job := &LoadJob{
		dir: "sounds", fsys: fsys, backend: fb,
		buffers: newBufferPool(8), rules: sizeRules(), catalog: cat,
	}
	if err := runJob(t, job); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if cat.Len() != 3 {
		t.Fatalf("Expected 3 entries, got %d", cat.Len())
	}

	at, ok := cat.Lookup("at_limit")
	if !ok || at.Mode != ModeBuffered || at.Buffer < 0 || at.Buffer >= 8 {
		t.Errorf("Expected at_limit buffered, got %+v", at)
	}
	over, ok := cat.Lookup("over_limit")
	if !ok || over.Mode != ModeStreamed || over.Buffer != -1 {
		t.Errorf("Expected over_limit streamed, got %+v", over)
	}
	if over.Path != "sounds/Ship/over_limit.ogg" {
		t.Errorf("Expected data-root relative path, got %q", over.Path)
	}
	if _, ok := cat.Lookup("small"); !ok {
		t.Error("Expected upper-case extension accepted")
	}

	if len(fb.ops("load")) != 2 {
		t.Errorf("Expected 2 buffer loads, got %d", len(fb.ops("load")))
	}
}

// TestLoadJobMusicAlwaysStreamed verifies music keys and storage
func TestLoadJobMusicAlwaysStreamed(t *testing.T) {
	fsys := fstest.MapFS{
		"music/core/space/ambient.ogg": bytesOf(100),
		"music/theme.ogg":              bytesOf(500000),
	}
	fb := newFakeBackend()
	cat := NewCatalog()

	job := &LoadJob{
		dir: "music", isMusic: true, fsys: fsys, backend: fb,
		buffers: newBufferPool(8), rules: sizeRules(), catalog: cat,
	}
	if err := runJob(t, job); err != nil {
		t.Fatalf("Run: %v", err)
	}

	names := cat.MusicNames()
	if len(names) != 2 || names[0] != "music/core/space/ambient" || names[1] != "music/theme" {
		t.Errorf("Unexpected music names %v", names)
	}
	for _, n := range names {
		s, _ := cat.Lookup(n)
		if s.Mode != ModeStreamed || !s.IsMusic {
			t.Errorf("Expected %s streamed music, got %+v", n, s)
		}
	}
	if len(fb.ops("load")) != 0 {
		t.Error("Expected music to take no buffers")
	}
}

// TestLoadJobBufferExhaustion verifies running out of buffers fails the job
func TestLoadJobBufferExhaustion(t *testing.T) {
	fsys := fstest.MapFS{
		"sounds/a.ogg": bytesOf(10),
		"sounds/b.ogg": bytesOf(10),
		"sounds/c.ogg": bytesOf(10),
	}
	var finished error
	job := &LoadJob{
		dir: "sounds", fsys: fsys, backend: newFakeBackend(),
		buffers: newBufferPool(2), rules: sizeRules(), catalog: NewCatalog(),
		onDone: func(err error) { finished = err },
	}

	err := runJob(t, job)
	if !errors.Is(err, ErrBufferCapacity) {
		t.Fatalf("Expected ErrBufferCapacity, got %v", err)
	}
	if !errors.Is(finished, ErrBufferCapacity) {
		t.Errorf("Expected onDone to receive the failure, got %v", finished)
	}
}

// TestLoadJobMissingDirectory verifies an absent directory is empty, not an error
func TestLoadJobMissingDirectory(t *testing.T) {
	cat := NewCatalog()
	job := &LoadJob{
		dir: "sounds", fsys: fstest.MapFS{}, backend: newFakeBackend(),
		buffers: newBufferPool(2), rules: sizeRules(), catalog: cat,
	}
	if err := runJob(t, job); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cat.Len() != 0 {
		t.Errorf("Expected empty catalog, got %d", cat.Len())
	}
}

// TestLoadJobDecodeFailureStreams verifies a failed preload falls back to streaming
func TestLoadJobDecodeFailureStreams(t *testing.T) {
	fsys := fstest.MapFS{"sounds/broken.ogg": bytesOf(10)}
	fb := newFakeBackend()
	fb.failLoad["sounds/broken.ogg"] = true
	cat := NewCatalog()

	job := &LoadJob{
		dir: "sounds", fsys: fsys, backend: fb,
		buffers: newBufferPool(2), rules: sizeRules(), catalog: cat,
	}
	if err := runJob(t, job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s, ok := cat.Lookup("broken")
	if !ok || s.Mode != ModeStreamed {
		t.Errorf("Expected broken streamed, got %+v", s)
	}
}

// TestLoadJobDurationPolicy verifies header-based preload decisions
func TestLoadJobDurationPolicy(t *testing.T) {
	dir := t.TempDir()
	rate := 8000
	writeWAV(t, dir, "sounds/short.wav", oscillator(waveSine, 440, rate/2, rate), rate, 1)
	writeWAV(t, dir, "sounds/long.wav", oscillator(waveSine, 440, rate*3, rate), rate, 1)

	fb := newFakeBackend()
	cat := NewCatalog()
	rules := sizeRules()
	rules.policy = PolicyDuration
	rules.maxLength = time.Second

	job := &LoadJob{
		dir: "sounds", fsys: os.DirFS(dir), backend: fb,
		buffers: newBufferPool(4), rules: rules, catalog: cat,
	}
	if err := runJob(t, job); err != nil {
		t.Fatalf("Run: %v", err)
	}

	short, _ := cat.Lookup("short")
	long, _ := cat.Lookup("long")
	if short == nil || short.Mode != ModeBuffered {
		t.Errorf("Expected short buffered, got %+v", short)
	}
	if long == nil || long.Mode != ModeStreamed {
		t.Errorf("Expected long streamed, got %+v", long)
	}
	if long != nil && (long.Duration < 2900*time.Millisecond || long.Duration > 3100*time.Millisecond) {
		t.Errorf("Expected ~3s duration, got %v", long.Duration)
	}
}

// TestCatalogMergeLastWriterWins verifies key collisions resolve to the later merge
func TestCatalogMergeLastWriterWins(t *testing.T) {
	cat := NewCatalog()
	cat.Merge(map[string]Sample{"boom": {Mode: ModeBuffered, Buffer: 1, Path: "sounds/a/boom.ogg"}})
	cat.Merge(map[string]Sample{"boom": {Mode: ModeStreamed, Buffer: -1, Path: "sounds/b/boom.ogg"}})

	s, ok := cat.Lookup("boom")
	if !ok {
		t.Fatal("Expected boom present")
	}
	if s.Path != "sounds/b/boom.ogg" || s.Name != "boom" {
		t.Errorf("Expected later entry, got %+v", s)
	}
	if cat.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", cat.Len())
	}
}

// TestBufferPool verifies indices are dense and capacity is enforced
func TestBufferPool(t *testing.T) {
	p := newBufferPool(2)
	for want := 0; want < 2; want++ {
		got, err := p.take()
		if err != nil || got != want {
			t.Fatalf("take() = %d, %v; want %d", got, err, want)
		}
	}
	if _, err := p.take(); !errors.Is(err, ErrBufferCapacity) {
		t.Errorf("Expected ErrBufferCapacity, got %v", err)
	}
	if p.used() != 2 {
		t.Errorf("Expected used capped at 2, got %d", p.used())
	}
}
