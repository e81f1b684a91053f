package d2d

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var ErrNoCanvas = errors.New("render target has no 2d canvas")

// Canvas is implemented by render targets that expose a 2D surface.
type Canvas interface {
	Canvas() *gg.Context
}

/**
 * @brief Draws frame statistics in a translucent panel in the top left
 * corner of the render target.
 */
type StatisticsOverlay struct {
	Face       font.Face
	Margin     float64
	Padding    float64
	Background gg.RGBA
	Foreground color.Color
}

func NewStatisticsOverlay() *StatisticsOverlay {
	return &StatisticsOverlay{
		Face:       basicfont.Face7x13,
		Margin:     8,
		Padding:    6,
		Background: gg.RGBA{R: 0, G: 0, B: 0, A: 0.55},
		Foreground: color.White,
	}
}

// Lines returns the rows selected by detail, in a fixed order.
func Lines(stats metadata.RenderStatistics, detail metadata.RenderDetail) []string {
	var lines []string
	if detail.Has(metadata.RenderDetailFPS) {
		lines = append(lines, fmt.Sprintf("FPS: %.1f (%.2f ms)", stats.FPS, stats.FrameTimeMS))
	}
	if detail.Has(metadata.RenderDetailStatistics) {
		lines = append(lines,
			fmt.Sprintf("Frame: %d", stats.FrameNumber),
			fmt.Sprintf("Renderables: %d  Lights: %d", stats.NumRenderables, stats.NumLights),
			fmt.Sprintf("Cores: %d  Post: %d  Overlay: %d  Culled: %d",
				stats.NumGeneralCores, stats.NumPostEffectCores, stats.NumScreenSpaced, stats.NumCulled),
		)
	}
	if detail.Has(metadata.RenderDetailTriangle) {
		lines = append(lines, fmt.Sprintf("Draw calls: %d  Triangles: %d", stats.DrawCalls, stats.Triangles))
	}
	if detail.Has(metadata.RenderDetailCamera) {
		p := stats.CameraPosition
		lines = append(lines, fmt.Sprintf("Camera: (%.2f, %.2f, %.2f)", p[0], p[1], p[2]))
	}
	return lines
}

// Draw renders the statistics onto target. Nothing is drawn when detail selects no rows.
func (o *StatisticsOverlay) Draw(target renderer.RenderTargetView, stats metadata.RenderStatistics, detail metadata.RenderDetail) error {
	lines := Lines(stats, detail)
	if len(lines) == 0 {
		return nil
	}
	surface, ok := target.(Canvas)
	if !ok {
		return fmt.Errorf("d2d: %T: %w", target, ErrNoCanvas)
	}
	canvas := surface.Canvas()

	text := o.rasterize(lines)
	w := float64(text.Bounds().Dx())
	h := float64(text.Bounds().Dy())

	canvas.SetRGBA(o.Background.R, o.Background.G, o.Background.B, o.Background.A)
	canvas.DrawRoundedRectangle(o.Margin, o.Margin, w, h, 4)
	if err := canvas.Fill(); err != nil {
		return fmt.Errorf("d2d: panel: %w", err)
	}
	canvas.DrawImage(gg.ImageBufFromImage(text), o.Margin, o.Margin)
	return nil
}

// rasterize draws lines into a transparent image sized to fit them with padding.
func (o *StatisticsOverlay) rasterize(lines []string) *image.RGBA {
	metrics := o.Face.Metrics()
	lineHeight := metrics.Height.Ceil()
	width := 0
	for _, l := range lines {
		width = max(width, font.MeasureString(o.Face, l).Ceil())
	}
	pad := int(o.Padding)
	img := image.NewRGBA(image.Rect(0, 0, width+2*pad, lineHeight*len(lines)+2*pad))

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(o.Foreground),
		Face: o.Face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(pad, pad+metrics.Ascent.Ceil()+i*lineHeight)
		d.DrawString(l)
	}
	return img
}
