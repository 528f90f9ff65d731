package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Str("component", "gema-eval").Logger().Level(zerolog.WarnLevel)
)

// Logger returns the logger shared by all SDK components.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the SDK logger. Call before constructing SDK components;
// components capture the logger at construction time.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// SetDebug lowers the SDK logger level to debug when enabled, or restores the
// default warn level.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		logger = logger.Level(zerolog.DebugLevel)
		return
	}
	logger = logger.Level(zerolog.WarnLevel)
}
