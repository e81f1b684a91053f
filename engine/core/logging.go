package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogSink is the structured logger consumed by the host and the devices.
// *log.Logger satisfies it.
type LogSink interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(func() {
		singleton = &logger{NewLogger(os.Stderr, "Retina 🎞️ ", log.DebugLevel)}
	})
	return singleton
}

// NewLogger builds a charmbracelet logger configured the way the engine logs.
func NewLogger(w io.Writer, prefix string, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
	l.SetLevel(level)
	return l
}

// DefaultLogger returns the process wide logger.
func DefaultLogger() *log.Logger {
	return getLogger().Logger
}

// SetLogLevel applies a textual level ("debug", "info", ...) to the process wide logger.
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Debug(interface{}, ...interface{}) {}
func (NopSink) Info(interface{}, ...interface{}) {}
func (NopSink) Warn(interface{}, ...interface{}) {}
func (NopSink) Error(interface{}, ...interface{}) {}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
