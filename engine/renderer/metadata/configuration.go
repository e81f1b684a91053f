package metadata

/**
 * @brief Toggles for the stages of a frame.
 */
type RenderConfiguration struct {
	/** @brief Draw the 2D overlay after the 3D passes. */
	RenderD2D bool `toml:"render_d2d"`
	/** @brief Rebuild the per-frame buckets every frame. */
	UpdatePerFrameData bool `toml:"update_per_frame_data"`
	/** @brief Run the light pass. */
	RenderLights bool `toml:"render_lights"`
	/** @brief Clear colour and depth at the start of each frame. */
	ClearEachFrame bool `toml:"clear_each_frame"`
	/** @brief Refresh cached world bounds of every renderable each frame. */
	AutoUpdateOctree bool `toml:"auto_update_octree"`
}

func DefaultRenderConfiguration() RenderConfiguration {
	return RenderConfiguration{
		RenderD2D:          true,
		UpdatePerFrameData: true,
		RenderLights:       true,
		ClearEachFrame:     true,
		AutoUpdateOctree:   false,
	}
}

/**
 * @brief A read-only snapshot of what the last frame did.
 */
type RenderStatistics struct {
	FrameNumber        uint64
	FPS                float64
	FrameTimeMS        float64
	NumRenderables     int
	NumLights          int
	NumGeneralCores    int
	NumPostEffectCores int
	NumScreenSpaced    int
	NumCulled          int
	DrawCalls          int
	Triangles          int
	CameraPosition     [3]float32
}
