package metadata

import "strings"

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

/** @brief The pass bucket a scene node is drawn in. */
type RenderType int

const (
	/** @brief Solid geometry, drawn in the general pass. */
	RenderTypeOpaque RenderType = iota
	/** @brief Blended geometry, drawn after the opaque content. */
	RenderTypeTransparent
	/** @brief Particle systems, drawn last in the general pass. */
	RenderTypeParticle
	/** @brief Light sources, uploaded in the light pass. */
	RenderTypeLight
	/** @brief Work that must run before the general pass (e.g. shadow maps). */
	RenderTypePreProc
	/** @brief Post effects applied on top of tagged general content. */
	RenderTypePostProc
	/** @brief Content drawn with its own camera in a screen region. */
	RenderTypeScreenSpaced
)

func (r RenderType) String() string {
	switch r {
	case RenderTypeOpaque:
		return "opaque"
	case RenderTypeTransparent:
		return "transparent"
	case RenderTypeParticle:
		return "particle"
	case RenderTypeLight:
		return "light"
	case RenderTypePreProc:
		return "preproc"
	case RenderTypePostProc:
		return "postproc"
	case RenderTypeScreenSpaced:
		return "screenspaced"
	}
	return "unknown"
}

// IsGeneral reports whether the render type is drawn in the general pass.
func (r RenderType) IsGeneral() bool {
	return r == RenderTypeOpaque || r == RenderTypeTransparent || r == RenderTypeParticle
}

/** @brief Multisample anti-aliasing sample counts. */
type MSAALevel uint32

const (
	MSAADisable MSAALevel = 1
	MSAATwo     MSAALevel = 2
	MSAAFour    MSAALevel = 4
	MSAAEight   MSAALevel = 8
)

func (m MSAALevel) IsValid() bool {
	switch m {
	case MSAADisable, MSAATwo, MSAAFour, MSAAEight:
		return true
	}
	return false
}

/** @brief What the statistics overlay shows. */
type RenderDetail uint32

const (
	RenderDetailNone       RenderDetail = 0x0
	RenderDetailFPS        RenderDetail = 0x1
	RenderDetailStatistics RenderDetail = 0x2
	RenderDetailTriangle   RenderDetail = 0x4
	RenderDetailCamera     RenderDetail = 0x8
)

func (d RenderDetail) Has(flag RenderDetail) bool {
	return d&flag != 0
}

// ParseRenderDetail turns names such as "fps" or "camera" into flags.
func ParseRenderDetail(names []string) RenderDetail {
	detail := RenderDetailNone
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "fps":
			detail |= RenderDetailFPS
		case "statistics", "stats":
			detail |= RenderDetailStatistics
		case "triangle", "triangles":
			detail |= RenderDetailTriangle
		case "camera":
			detail |= RenderDetailCamera
		case "all":
			detail |= RenderDetailFPS | RenderDetailStatistics | RenderDetailTriangle | RenderDetailCamera
		}
	}
	return detail
}
