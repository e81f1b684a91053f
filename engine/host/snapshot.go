package host

import (
	"slices"

	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
	"github.com/spaghettifunk/retina/engine/scene"
)

// postEffectTagged is implemented by cores that carry post effect names.
type postEffectTagged interface {
	HasAnyPostEffect() bool
}

// overlayRoot is implemented by screen spaced nodes that own an overlay camera.
type overlayRoot interface {
	ScreenSpaceCore() cores.ScreenSpaceConfigurable
}

/**
 * @brief The render buckets of one frame. Built once and never modified;
 * accessors return copies.
 */
type FrameSnapshot struct {
	frameNumber  uint64
	renderables  []scene.Node
	lights       []cores.LightSource
	preProc      []cores.RenderCore
	general      []cores.RenderCore
	withPost     []cores.PostEffectTarget
	postEffects  []cores.PostEffectRenderer
	screenSpaced []scene.Node
	culled       int
}

/**
 * @brief Walks the attached tree under root and sorts every visible node
 * into its bucket. General cores are ordered opaque, transparent, particle.
 * Screen spaced subtrees are collected by their root only. With frustum
 * culling enabled, general cores whose world bounds are outside the main
 * camera are dropped before the post effect subset is taken.
 */
func buildSnapshot(rc *renderer.RenderContext, root scene.Node, frameNumber uint64, cull bool) *FrameSnapshot {
	s := &FrameSnapshot{frameNumber: frameNumber}
	var opaque, transparent, particle []scene.Node

	root.Base().Walk(func(n scene.Node) bool {
		b := n.Base()
		if !b.Visible() || !b.IsAttached() {
			return false
		}
		s.renderables = append(s.renderables, n)
		c := b.RenderCore()
		switch b.RenderType() {
		case metadata.RenderTypeOpaque:
			opaque = append(opaque, n)
		case metadata.RenderTypeTransparent:
			transparent = append(transparent, n)
		case metadata.RenderTypeParticle:
			particle = append(particle, n)
		case metadata.RenderTypeLight:
			if l, ok := c.(cores.LightSource); ok {
				s.lights = append(s.lights, l)
			}
		case metadata.RenderTypePreProc:
			s.preProc = append(s.preProc, c)
		case metadata.RenderTypePostProc:
			if p, ok := c.(cores.PostEffectRenderer); ok {
				s.postEffects = append(s.postEffects, p)
			}
		case metadata.RenderTypeScreenSpaced:
			if _, ok := n.(overlayRoot); ok {
				s.screenSpaced = append(s.screenSpaced, n)
			}
			return false
		}
		return true
	})

	for _, bucket := range [][]scene.Node{opaque, transparent, particle} {
		for _, n := range bucket {
			b := n.Base()
			if cull {
				bounds := b.WorldBounds()
				if !bounds.IsEmpty() && !rc.IsBoxVisible(bounds) {
					s.culled++
					continue
				}
			}
			c := b.RenderCore()
			s.general = append(s.general, c)
			if tagged, ok := c.(postEffectTagged); ok && tagged.HasAnyPostEffect() {
				if target, ok := c.(cores.PostEffectTarget); ok {
					s.withPost = append(s.withPost, target)
				}
			}
		}
	}
	return s
}

func (s *FrameSnapshot) FrameNumber() uint64 { return s.frameNumber }

func (s *FrameSnapshot) Renderables() []scene.Node { return slices.Clone(s.renderables) }

func (s *FrameSnapshot) Lights() []cores.LightSource { return slices.Clone(s.lights) }

func (s *FrameSnapshot) PreProcCores() []cores.RenderCore { return slices.Clone(s.preProc) }

func (s *FrameSnapshot) GeneralRenderCores() []cores.RenderCore { return slices.Clone(s.general) }

// GeneralCoresWithPostEffect is always a subset of GeneralRenderCores.
func (s *FrameSnapshot) GeneralCoresWithPostEffect() []cores.PostEffectTarget {
	return slices.Clone(s.withPost)
}

func (s *FrameSnapshot) PostEffectCores() []cores.PostEffectRenderer {
	return slices.Clone(s.postEffects)
}

func (s *FrameSnapshot) ScreenSpacedNodes() []scene.Node { return slices.Clone(s.screenSpaced) }

func (s *FrameSnapshot) Culled() int { return s.culled }
