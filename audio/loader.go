package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
)

// bufferPool hands out preload buffer indices across load jobs
type bufferPool struct {
	next     atomic.Int32
	capacity int
}

func newBufferPool(capacity int) *bufferPool {
	return &bufferPool{capacity: capacity}
}

// take reserves the next index; running out is a startup configuration error
func (p *bufferPool) take() (int, error) {
	n := int(p.next.Add(1)) - 1
	if n >= p.capacity {
		return -1, fmt.Errorf("%w: %d buffers", ErrBufferCapacity, p.capacity)
	}
	return n, nil
}

// used returns the number of indices handed out, capped at capacity
func (p *bufferPool) used() int {
	return min(int(p.next.Load()), p.capacity)
}

// loadRules carries the preload decision inputs shared by all load jobs
type loadRules struct {
	policy    LoadPolicy
	threshold int64
	maxLength time.Duration
	workers   int
}

// LoadJob scans one directory and builds catalog entries
// Run happens off the owner goroutine; Finish merges into the catalog
type LoadJob struct {
	dir     string
	isMusic bool

	fsys    fs.FS
	backend Backend
	buffers *bufferPool
	rules   loadRules
	catalog *Catalog
	onDone  func(err error)

	mu      sync.Mutex
	loaded  map[string]Sample
	bytes   int64
	elapsed time.Duration
}

// Run walks dir recursively, probing and preloading each supported file
// A missing directory yields an empty result rather than an error
func (j *LoadJob) Run() error {
	start := time.Now()
	defer func() { j.elapsed = time.Since(start) }()

	j.loaded = make(map[string]Sample)

	type entry struct{ name, path string }
	var files []entry
	err := fs.WalkDir(j.fsys, j.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == j.dir && errors.Is(err, fs.ErrNotExist) {
				log.Printf("audio: sound directory '%s' does not exist, nothing to load", j.dir)
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			files = append(files, entry{name: d.Name(), path: p})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", j.dir, err)
	}

	wg := sizedwaitgroup.New(j.rules.workers)
	var firstErr error
	var errOnce sync.Once

	for _, f := range files {
		wg.Add()
		go func(name, p string) {
			defer wg.Done()
			if err := j.loadOne(name, p); err != nil {
				errOnce.Do(func() { firstErr = err })
			}
		}(f.name, f.path)
	}
	wg.Wait()

	return firstErr
}

func (j *LoadJob) loadOne(name, p string) error {
	key := SampleKey(name, p, j.isMusic)
	if key == "" {
		return nil
	}

	s := Sample{
		Mode:    ModeStreamed,
		Buffer:  -1,
		Path:    p,
		Size:    ProbeSize(j.fsys, p),
		IsMusic: j.isMusic,
	}

	if !j.isMusic && j.preload(&s) {
		idx, err := j.buffers.take()
		if err != nil {
			return fmt.Errorf("preload %s: %w", p, err)
		}
		dur, err := j.backend.LoadBuffer(idx, p)
		if err != nil {
			log.Printf("audio: preload %s failed, streaming instead: %v", p, err)
		} else {
			s.Mode = ModeBuffered
			s.Buffer = idx
			s.Duration = dur
		}
	}

	j.mu.Lock()
	j.loaded[key] = s
	if s.Size > 0 {
		j.bytes += s.Size
	}
	j.mu.Unlock()
	return nil
}

// preload decides buffer vs stream; any size or duration read failure means stream
func (j *LoadJob) preload(s *Sample) bool {
	switch j.rules.policy {
	case PolicyDuration:
		dur, err := ProbeDuration(j.fsys, s.Path)
		if err != nil {
			return false
		}
		s.Duration = dur
		return dur <= j.rules.maxLength
	default:
		return s.Size >= 0 && s.Size <= j.rules.threshold
	}
}

// Finish merges loaded samples into the catalog on the owner goroutine
// Partial results are merged even when Run failed
func (j *LoadJob) Finish(err error) {
	if j.loaded != nil {
		j.catalog.Merge(j.loaded)
	}

	kind := "effects"
	if j.isMusic {
		kind = "music tracks"
	}
	buffered := 0
	for _, s := range j.loaded {
		if s.Mode == ModeBuffered {
			buffered++
		}
	}
	log.Printf("audio: loaded %d %s from %s (%d buffered, %s) in %s",
		len(j.loaded), kind, j.dir, buffered,
		humanize.Bytes(uint64(j.bytes)),
		durafmt.Parse(j.elapsed).LimitFirstN(2))

	if err != nil {
		log.Printf("audio: load %s failed: %v", j.dir, err)
	}
	if j.onDone != nil {
		j.onDone(err)
	}
}
