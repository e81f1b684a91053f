package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/retina/engine/config"
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/host"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/d2d"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

/**
 * @brief Drives a game on top of a render host: the game updates, the
 * host draws, resizes and config edits are applied between frames.
 */
type Engine struct {
	currentStage Stage
	gameInstance *Game
	host         *host.RenderHost
	logger       core.LogSink
	settings     *config.HostConfig
	watcher      *config.Watcher
	pending      chan *config.HostConfig
	interval     time.Duration
	isSuspended  bool
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
	frames       uint64
	dropped      uint64
	failures     int
	frameErr     error
}

// Run gives up after this many failed frames in a row.
const maxConsecutiveFailures = 30

func New(g *Game, factory renderer.DeviceFactory, logger core.LogSink) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine: missing game or application config: %w", core.ErrInvalidConfig)
	}
	if logger == nil {
		logger = core.DefaultLogger()
	}
	settings := g.ApplicationConfig.Host
	if settings == nil {
		settings = config.Default()
	}
	if err := core.SetLogLevel(settings.LogLevel); err != nil {
		logger.Warn("ignoring log level", "level", settings.LogLevel, "err", err)
	}
	hc, err := settings.ToHost()
	if err != nil {
		return nil, err
	}
	h, err := host.New(hc, factory, logger)
	if err != nil {
		return nil, err
	}
	h.SetOverlay(d2d.NewStatisticsOverlay())

	return &Engine{
		currentStage: EngineStageBootComplete,
		gameInstance: g,
		host:         h,
		logger:       logger,
		settings:     settings,
		pending:      make(chan *config.HostConfig, 1),
		interval:     settings.Interval(),
		width:        uint32(settings.Width),
		height:       uint32(settings.Height),
		clock:        core.NewClock(),
	}, nil
}

func (e *Engine) Host() *host.RenderHost { return e.host }

func (e *Engine) Stage() Stage { return e.currentStage }

// Frames returns how many frames Run has presented.
func (e *Engine) Frames() uint64 { return e.frames }

// Dropped returns how many frames failed and were skipped.
func (e *Engine) Dropped() uint64 { return e.dropped }

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("engine: initialize in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	events := e.host.Events()
	events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	events.Register(core.EVENT_CODE_EXCEPTION_OCCURRED, e, e.onException)

	if err := e.host.StartD3D(int(e.width), int(e.height)); err != nil {
		return err
	}
	if fn := e.gameInstance.FnInitialize; fn != nil {
		if err := fn(e.host); err != nil {
			e.host.EndD3D()
			return err
		}
	}
	if fn := e.gameInstance.FnOnResize; fn != nil {
		if err := fn(e.width, e.height); err != nil {
			return err
		}
	}

	app := e.gameInstance.ApplicationConfig
	if app.ConfigPath != "" && app.Watch {
		w, err := config.Watch(app.ConfigPath, e.logger, e.queueConfig)
		if err != nil {
			return err
		}
		e.watcher = w
	}

	e.currentStage = EngineStageInitialized
	e.logger.Info("engine initialized", "name", app.Name, "width", e.width, "height", e.height)
	return nil
}

/**
 * @brief Updates the game and draws a frame every interval until ctx is
 * done or MaxFrames frames were presented. A failed frame is logged and
 * skipped; a failed game update or too many failed frames in a row end
 * the run.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return core.ErrDeviceNotReady
	}
	e.currentStage = EngineStageRunning
	defer func() { e.currentStage = EngineStageInitialized }()

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	events := e.host.Events()
	events.Fire(core.EVENT_CODE_START_RENDER_LOOP, e, core.EventContext{})
	defer func() {
		stopped := core.EventContext{}
		stopped.Data.U32[0] = uint32(e.frames)
		events.Fire(core.EVENT_CODE_STOP_RENDER_LOOP, e, stopped)
	}()

	maxFrames := e.gameInstance.ApplicationConfig.MaxFrames
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-e.pending:
			if e.applyConfig(cfg) {
				ticker.Reset(e.interval)
			}
		case <-ticker.C:
			if e.isSuspended {
				continue
			}
			if err := e.step(); err != nil {
				return err
			}
			if maxFrames > 0 && e.frames >= maxFrames {
				return nil
			}
		}
	}
}

func (e *Engine) step() error {
	e.frameErr = nil
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	e.lastTime = currentTime

	if fn := e.gameInstance.FnUpdate; fn != nil {
		if err := fn(delta); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}

	e.host.InvalidateRender()
	if !e.host.Tick() {
		err := e.frameErr
		if err == nil {
			err = core.ErrFrameAborted
		}
		e.dropped++
		e.failures++
		if e.failures >= maxConsecutiveFailures {
			return fmt.Errorf("render: %d frames failed in a row: %w", e.failures, err)
		}
		e.logger.Warn("frame dropped", "failures", e.failures, "err", err)
		return nil
	}
	e.failures = 0
	e.frames++
	return nil
}

// Resize resizes the host. A zero size suspends rendering until the next non zero one.
func (e *Engine) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		if !e.isSuspended {
			e.logger.Info("zero sized target, suspending rendering")
		}
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		e.logger.Info("target restored, resuming rendering")
		e.isSuspended = false
	}
	return e.host.Resize(int(width), int(height))
}

func (e *Engine) IsSuspended() bool { return e.isSuspended }

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown || e.currentStage == EngineStageUninitialized {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	if fn := e.gameInstance.FnShutdown; fn != nil {
		errs = append(errs, fn())
	}
	e.host.EndD3D()
	e.host.Events().Shutdown()
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

func (e *Engine) queueConfig(cfg *config.HostConfig) {
	// keep only the newest edit
	select {
	case <-e.pending:
	default:
	}
	e.pending <- cfg
}

// applyConfig applies a reloaded config and reports whether the frame interval changed.
func (e *Engine) applyConfig(cfg *config.HostConfig) bool {
	hc, err := cfg.ToHost()
	if err != nil {
		e.logger.Warn("config rejected", "err", err)
		return false
	}
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		e.logger.Warn("ignoring log level", "level", cfg.LogLevel, "err", err)
	}
	if hc.RenderTechnique != e.host.RenderTechnique() {
		e.logger.Warn("technique changes need a restart", "technique", hc.RenderTechnique)
	}

	e.host.SetClearColor(hc.ClearColor)
	e.host.SetShadowMapEnabled(hc.ShadowMapEnabled)
	e.host.SetRenderConfiguration(hc.Render)
	e.host.SetShowRenderDetail(hc.RenderDetail)
	e.host.SetEnableRenderFrustum(hc.EnableRenderFrustum)
	if hc.MSAA != e.host.MSAA() {
		if err := e.host.SetMSAA(hc.MSAA); err != nil {
			e.logger.Error("msaa change failed", "err", err)
		}
	}
	if uint32(hc.Width) != e.width || uint32(hc.Height) != e.height {
		if err := e.Resize(uint32(hc.Width), uint32(hc.Height)); err != nil {
			e.logger.Error("resize failed", "err", err)
		}
	}
	e.settings = cfg

	interval := cfg.Interval()
	changed := interval != e.interval
	e.interval = interval
	return changed
}

func (e *Engine) onResized(code core.SystemEventCode, sender, listenerInst interface{}, data core.EventContext) bool {
	width, height := data.Data.U32[0], data.Data.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	e.logger.Debug("resized", "width", width, "height", height)
	if fn := e.gameInstance.FnOnResize; fn != nil {
		if err := fn(width, height); err != nil {
			e.logger.Error("game resize failed", "err", err)
		}
	}
	return false
}

func (e *Engine) onException(code core.SystemEventCode, sender, listenerInst interface{}, data core.EventContext) bool {
	e.frameErr = data.Err
	return false
}
