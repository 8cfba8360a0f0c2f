package utils

import (
	"log"
	"os"
	"runtime"
	"time"
)

// Logger appends timestamped lines to a log file, annotated with the
// calling site. The API's request logging goes through the Fiber logger
// middleware; this is for lifecycle events worth keeping after restarts.
type Logger struct {
	logger *log.Logger
}

// NewLogger opens the log file named by LOG_FILE, defaulting to app.log
func NewLogger() *Logger {
	path := os.Getenv("LOG_FILE")
	if path == "" {
		path = "app.log"
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Failed to open log file %s, falling back to stderr: %v", path, err)
		return &Logger{logger: log.New(os.Stderr, "", 0)}
	}
	return &Logger{
		logger: log.New(file, "", 0),
	}
}

// Log writes one annotated line
func (l *Logger) Log(message string) {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file = "unknown"
		line = 0
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf("[%s] %s:%d %s\n", timestamp, file, line, message)
}
