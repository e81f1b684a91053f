package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/host"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

/**
 * @brief The on-disk host configuration, a TOML document.
 */
type HostConfig struct {
	/** @brief Initial render target width in pixels. */
	Width int `toml:"width"`
	/** @brief Initial render target height in pixels. */
	Height int `toml:"height"`
	/** @brief Clear colour as #rgb, #rgba, #rrggbb or #rrggbbaa. */
	ClearColor string `toml:"clear_color"`
	/** @brief Sample count: 1, 2, 4 or 8. */
	MSAA int `toml:"msaa"`
	ShadowMap bool `toml:"shadow_map"`
	/** @brief Technique used by nodes without one of their own. */
	Technique string `toml:"technique"`
	/** @brief One of debug, info, warn, error, fatal. */
	LogLevel string `toml:"log_level"`
	/** @brief Overlay rows: fps, statistics, triangles, camera or all. */
	RenderDetail   []string `toml:"render_detail"`
	FrustumCulling bool     `toml:"frustum_culling"`
	/** @brief Render loop period, e.g. "16ms". */
	FrameInterval string `toml:"frame_interval"`

	Render metadata.RenderConfiguration `toml:"render"`
}

func Default() *HostConfig {
	return &HostConfig{
		Width:         1280,
		Height:        720,
		ClearColor:    "#1a1a1f",
		MSAA:          int(metadata.MSAADisable),
		Technique:     effects.TechniqueMesh,
		LogLevel:      "info",
		RenderDetail:  []string{"fps"},
		FrameInterval: "16ms",
		Render:        metadata.DefaultRenderConfiguration(),
	}
}

// Load reads path over the defaults. Keys missing from the file keep their default value.
func Load(path string) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*HostConfig, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *HostConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *HostConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", core.ErrInvalidConfig, c.Width, c.Height)
	}
	if !metadata.MSAALevel(c.MSAA).IsValid() {
		return fmt.Errorf("%w: msaa %d", core.ErrInvalidConfig, c.MSAA)
	}
	if !isHexColour(c.ClearColor) {
		return fmt.Errorf("%w: clear colour %q", core.ErrInvalidConfig, c.ClearColor)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if c.FrameInterval != "" {
		if d, err := time.ParseDuration(c.FrameInterval); err != nil || d <= 0 {
			return fmt.Errorf("%w: frame interval %q", core.ErrInvalidConfig, c.FrameInterval)
		}
	}
	return nil
}

// Interval returns the render loop period, a 60Hz default when unset.
func (c *HostConfig) Interval() time.Duration {
	d, err := time.ParseDuration(c.FrameInterval)
	if err != nil || d <= 0 {
		return time.Second / 60
	}
	return d
}

func (c *HostConfig) ClearColour() math.Vec4 {
	rgba := gg.Hex(c.ClearColor)
	return math.NewVec4(float32(rgba.R), float32(rgba.G), float32(rgba.B), float32(rgba.A))
}

// ToHost converts the document into render host settings.
func (c *HostConfig) ToHost() (host.Config, error) {
	if err := c.Validate(); err != nil {
		return host.Config{}, err
	}
	return host.Config{
		Width:               c.Width,
		Height:              c.Height,
		ClearColor:          c.ClearColour(),
		MSAA:                metadata.MSAALevel(c.MSAA),
		ShadowMapEnabled:    c.ShadowMap,
		RenderTechnique:     c.Technique,
		Render:              c.Render,
		RenderDetail:        metadata.ParseRenderDetail(c.RenderDetail),
		EnableRenderFrustum: c.FrustumCulling,
	}, nil
}

func isHexColour(s string) bool {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}
