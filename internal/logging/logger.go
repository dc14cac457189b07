package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Logger defines a minimal, printf-style logging contract.
//
// The SDK logs through this interface everywhere so callers can plug in their
// own implementation without the library forcing a logging framework on them.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

const (
	debugLogEnvKey = "HARI_DEBUG_LOG"
	logLevelEnvKey = "HARI_LOG_LEVEL"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}

var (
	sinkOnce sync.Once
	sink     *log.Logger
	sinkLvl  Level
	sinkMu   sync.Mutex
)

// componentLogger writes to the shared debug sink, tagged with a component name.
type componentLogger struct {
	component string
}

// NewComponentLogger returns the default SDK logger scoped to a component.
//
// The sink is resolved once per process: HARI_DEBUG_LOG selects a log file
// ("1" or "true" pick ~/hari-debug.log, any other value is used as a path);
// when unset the logger discards everything, so importing the SDK never
// produces output the caller did not ask for.
func NewComponentLogger(component string) Logger {
	sinkOnce.Do(initSink)
	if sink == nil {
		return Nop()
	}
	return &componentLogger{component: component}
}

func initSink() {
	target := strings.TrimSpace(os.Getenv(debugLogEnvKey))
	if target == "" {
		return
	}
	if target == "1" || strings.EqualFold(target, "true") {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		target = filepath.Join(home, "hari-debug.log")
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("hari: failed to open debug log %s: %v", target, err)
		return
	}
	sink = log.New(file, "", 0)
	sinkLvl = parseLevel(os.Getenv(logLevelEnvKey))
}

func parseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

func (l *componentLogger) log(level Level, format string, args ...any) {
	if level < sinkLvl {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	} else {
		file = "???"
		line = 0
	}

	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	sinkMu.Lock()
	defer sinkMu.Unlock()
	if l.component != "" {
		sink.Printf("[%s] [%s] [%s] %s:%d %s", timestamp, level, l.component, file, line, msg)
	} else {
		sink.Printf("[%s] [%s] %s:%d %s", timestamp, level, file, line, msg)
	}
}

func (l *componentLogger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *componentLogger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *componentLogger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *componentLogger) Error(format string, args ...any) { l.log(LevelError, format, args...) }
