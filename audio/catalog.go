package audio

import (
	"log"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/lixenwraith/orbit-sound/constant"
)

// Catalog maps logical sound names to loaded samples
// Append-only at runtime; entries are replaced only by a later merge
type Catalog struct {
	mu      sync.RWMutex
	samples map[string]*Sample

	missLog *rate.Limiter
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		samples: make(map[string]*Sample),
		missLog: rate.NewLimiter(rate.Every(constant.AudioMissLogInterval), 1),
	}
}

// Lookup returns the sample registered under name
// A miss is not an error; it is logged at most once per AudioMissLogInterval
func (c *Catalog) Lookup(name string) (*Sample, bool) {
	c.mu.RLock()
	s, ok := c.samples[name]
	c.mu.RUnlock()

	if !ok && c.missLog.Allow() {
		log.Printf("audio: unknown sound sample: %s", name)
	}
	return s, ok
}

// Insert adds or replaces a single entry
func (c *Catalog) Insert(name string, s Sample) {
	s.Name = name
	c.mu.Lock()
	c.samples[name] = &s
	c.mu.Unlock()
}

// Merge inserts all entries, last writer wins on key collision
func (c *Catalog) Merge(loaded map[string]Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, s := range loaded {
		s.Name = name
		c.samples[name] = &s
	}
}

// Len returns the entry count
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.samples)
}

// MusicNames returns all music keys in sorted order
func (c *Catalog) MusicNames() []string {
	c.mu.RLock()
	songs := make([]string, 0, len(c.samples))
	for name, s := range c.samples {
		if s.IsMusic {
			songs = append(songs, name)
		}
	}
	c.mu.RUnlock()

	sort.Strings(songs)
	return songs
}

// Samples returns a name-sorted snapshot of every entry
func (c *Catalog) Samples() []Sample {
	c.mu.RLock()
	out := make([]Sample, 0, len(c.samples))
	for _, s := range c.samples {
		out = append(out, *s)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
