package docxedit

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Fields are structured key/value pairs attached to log lines.
type Fields map[string]interface{}

var (
	globalLogger     *log.Logger
	globalLoggerMu   sync.RWMutex
	globalLoggerOnce sync.Once
)

func initGlobalLogger() {
	globalLoggerOnce.Do(func() {
		config := GetGlobalConfig()
		logger := NewLogger(os.Stderr, parseLogLevel(config.LogLevel))
		globalLoggerMu.Lock()
		globalLogger = logger
		globalLoggerMu.Unlock()
	})
}

// offLevel is above every level charmbracelet/log emits.
const offLevel = log.FatalLevel + 1

func parseLogLevel(levelStr string) log.Level {
	switch levelStr {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "off":
		return offLevel
	default:
		return log.InfoLevel
	}
}

// NewLogger creates a logger writing to w at the given level. Timestamps are
// formatted as "HH:MM:SS.ms".
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "docxedit",
	})
}

// SetLogger replaces the package logger.
func SetLogger(logger *log.Logger) {
	initGlobalLogger()
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()
}

// GetLogger returns the package logger.
func GetLogger() *log.Logger {
	initGlobalLogger()
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// WithField returns a child of the package logger carrying key=value.
func WithField(key string, value interface{}) *log.Logger {
	return GetLogger().With(key, value)
}

// WithFields returns a child of the package logger carrying fields.
func WithFields(fields Fields) *log.Logger {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return GetLogger().With(kv...)
}

// UpdateLoggerFromConfig updates the global logger based on the current global configuration
func UpdateLoggerFromConfig() {
	config := GetGlobalConfig()
	GetLogger().SetLevel(parseLogLevel(config.LogLevel))
}
