package audio

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/gopxl/beep/vorbis"
)

// LoadPolicy picks how effects are split between preload buffers and streams
type LoadPolicy string

const (
	// PolicySize preloads files at or under a byte threshold
	PolicySize LoadPolicy = "size"
	// PolicyDuration preloads files at or under a duration read from the header
	PolicyDuration LoadPolicy = "duration"
)

// ProbeSize returns the file size, -1 if the file cannot be stat'ed
func ProbeSize(fsys fs.FS, p string) int64 {
	info, err := fs.Stat(fsys, p)
	if err != nil || info.IsDir() {
		return -1
	}
	return info.Size()
}

// ProbeDuration reads the play length from the file header
func ProbeDuration(fsys fs.FS, p string) (time.Duration, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return 0, err
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".wav":
		defer f.Close()
		rs, err := readSeeker(f)
		if err != nil {
			return 0, err
		}
		d := wav.NewDecoder(rs)
		if !d.IsValidFile() {
			return 0, fmt.Errorf("%w: %s: invalid wav header", ErrUnsupportedFormat, p)
		}
		if err := d.FwdToPCM(); err != nil {
			return 0, fmt.Errorf("probe %s: %w", p, err)
		}
		bytesPerSec := int64(d.SampleRate) * int64(d.NumChans) * int64(d.BitDepth/8)
		if bytesPerSec == 0 {
			return 0, fmt.Errorf("%w: %s: zero byte rate", ErrUnsupportedFormat, p)
		}
		return time.Duration(d.PCMLen() * int64(time.Second) / bytesPerSec), nil

	case ".ogg":
		s, format, err := vorbis.Decode(f)
		if err != nil {
			f.Close()
			return 0, fmt.Errorf("probe %s: %w", p, err)
		}
		defer s.Close()
		return format.SampleRate.D(s.Len()), nil

	default:
		f.Close()
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, p)
	}
}

// readSeeker returns f as an io.ReadSeeker, buffering it if it cannot seek
func readSeeker(f fs.File) (io.ReadSeeker, error) {
	if rs, ok := f.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
