package logger

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// fileLogger writes timestamped messages to a rotating log file. Intended for
// unattended scheduled runs where stdout is not collected.
type fileLogger struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
}

// NewFileLogger creates a logger writing to the given file path with rotation.
func NewFileLogger(path string) Logger {
	return &fileLogger{
		writer: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		},
	}
}

// Logf writes a formatted message prefixed with the current time.
func (f *fileLogger) Logf(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(f.writer, "%s %s\n", time.Now().Format(time.RFC3339), msg)
}
