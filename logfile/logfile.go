// Package logfile routes the standard logger to a rotated file for terminal binaries
package logfile

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "orbit-sound.log"
	maxLogSize  = 10 * 1024 * 1024
)

// Setup sends log output to logs/orbit-sound.log when debug is set, otherwise discards it
// An existing file over maxLogSize is renamed with a timestamp first
// Returns the open file (caller closes) or nil when logging is off or the file cannot be opened
func Setup(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "log directory: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		base := strings.TrimSuffix(logFileName, filepath.Ext(logFileName))
		rotated := filepath.Join(logDir, fmt.Sprintf("%s-%s.log", base, time.Now().Format("20060102-150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation: %v\n", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f
}
