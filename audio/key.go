package audio

import (
	"path"
	"strings"
)

// supportedExts lists the extensions the loader accepts, all four characters
var supportedExts = []string{".ogg", ".wav"}

// hasSupportedExt matches case-insensitively
func hasSupportedExt(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range supportedExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// SampleKey derives the catalog key for a file
// Effects are keyed by bare file name, music by data-root-relative path,
// both without extension. Case is preserved. Returns "" for unsupported files
func SampleKey(name, filePath string, isMusic bool) string {
	if !hasSupportedExt(name) {
		return ""
	}
	if isMusic {
		p := path.Clean(filePath)
		return p[:len(p)-4]
	}
	base := path.Base(name)
	return base[:len(base)-4]
}
