package engine

import (
	"github.com/spaghettifunk/retina/engine/config"
)

type ApplicationConfig struct {
	// The application name used in logs.
	Name string
	// Host settings. Nil means config.Default().
	Host *config.HostConfig
	// File the host settings were read from, if any. When set and Watch is
	// true, edits to the file are applied between frames.
	ConfigPath string
	Watch      bool
	// Stop after this many presented frames, zero runs until cancelled.
	MaxFrames uint64
}
