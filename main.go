/*
Renders the testbed scene with the software device. With -out the last
presented frame is written as a PNG.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/retina/engine"
	"github.com/spaghettifunk/retina/engine/config"
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/renderer/software"
	"github.com/spaghettifunk/retina/testbed"
)

type snapshotter interface {
	Snapshot() image.Image
}

func main() {
	configPath := flag.String("config", "", "TOML host configuration")
	watch := flag.Bool("watch", false, "reload -config when it changes")
	frames := flag.Uint64("frames", 0, "stop after this many frames, 0 runs until interrupted")
	out := flag.String("out", "", "write the last frame to this PNG file")
	flag.Parse()

	if err := run(*configPath, *watch, *frames, *out); err != nil {
		core.LogFatal("%v", err)
	}
}

func run(configPath string, watch bool, frames uint64, out string) error {
	settings := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = loaded
		core.LogDebug("config loaded from %s", configPath)
	} else if watch {
		core.LogWarn("-watch needs -config, not watching")
	}

	logger := core.DefaultLogger()
	app := &engine.ApplicationConfig{
		Name:       "Retina testbed",
		Host:       settings,
		ConfigPath: configPath,
		Watch:      watch && configPath != "",
		MaxFrames:  frames,
	}
	tb := testbed.NewTestGame(app, logger)

	e, err := engine.New(tb.Game, software.NewDevice, logger)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			core.LogError("shutdown: %v", err)
		}
	}()

	// capture sigterm and other system calls here
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := e.Run(ctx); err != nil {
		return err
	}
	core.LogInfo("stopped after %d frames, %d dropped", e.Frames(), e.Dropped())

	if out == "" {
		return nil
	}
	if err := writeFrame(e, out); err != nil {
		return err
	}
	core.LogInfo("last frame written to %s", out)
	return nil
}

func writeFrame(e *engine.Engine, path string) error {
	s, ok := e.Host().Device().(snapshotter)
	if !ok {
		return fmt.Errorf("device %T cannot snapshot frames", e.Host().Device())
	}
	img := s.Snapshot()
	if img == nil {
		return fmt.Errorf("no frame was presented")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
