package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reflow/pkg/display"
	"reflow/pkg/geom"
	"reflow/pkg/images"
	"reflow/pkg/scroll"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

func newTestRenderer(w, h int) *Renderer {
	return NewRenderer(w, h, text.NewPlaceholderManager(), images.NewCache(nil))
}

// rgbAt samples a pixel as 8-bit channels.
func rgbAt(r *Renderer, x, y int) (uint8, uint8, uint8) {
	cr, cg, cb, _ := r.Image().At(x, y).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)
}

func TestRenderFillsRect(t *testing.T) {
	r := newTestRenderer(100, 100)
	r.Render(&display.List{Items: []display.Item{
		display.Rect{
			Bounds: geom.Rect{X: 10, Y: 10, Width: 40, Height: 40},
			Color:  geom.RGB(255, 0, 0),
		},
	}})

	cr, cg, cb := rgbAt(r, 20, 20)
	assert.Equal(t, uint8(255), cr)
	assert.Equal(t, uint8(0), cg)
	assert.Equal(t, uint8(0), cb)

	cr, cg, cb = rgbAt(r, 80, 80)
	assert.Equal(t, uint8(255), cr, "outside the rect stays white")
	assert.Equal(t, uint8(255), cg)
	assert.Equal(t, uint8(255), cb)
}

func TestClipLimitsPaintAndIsRestored(t *testing.T) {
	r := newTestRenderer(100, 100)
	r.Render(&display.List{Items: []display.Item{
		display.PushClip{Bounds: geom.Rect{Width: 30, Height: 30}},
		display.Rect{
			Bounds: geom.Rect{Width: 100, Height: 100},
			Color:  geom.RGB(0, 0, 255),
		},
		display.PopClip{},
		display.Rect{
			Bounds: geom.Rect{X: 60, Y: 60, Width: 20, Height: 20},
			Color:  geom.RGB(0, 128, 0),
		},
	}})

	_, _, cb := rgbAt(r, 10, 10)
	assert.Equal(t, uint8(255), cb, "inside clip")

	cr, _, cb := rgbAt(r, 45, 45)
	assert.Equal(t, uint8(255), cr, "clipped area stays white")
	assert.Equal(t, uint8(255), cb)

	_, cg, _ := rgbAt(r, 70, 70)
	assert.Equal(t, uint8(128), cg, "paint after pop escapes the clip")
}

func TestScrollFrameTranslatesContent(t *testing.T) {
	r := newTestRenderer(100, 100)
	r.Render(&display.List{Items: []display.Item{
		display.PushScrollFrame{
			ID:      1,
			Clip:    geom.Rect{Width: 100, Height: 50},
			Content: geom.Rect{Width: 100, Height: 200},
			Offset:  scroll.Offset{Y: 20},
		},
		display.Rect{
			Bounds: geom.Rect{Y: 20, Width: 100, Height: 20},
			Color:  geom.RGB(0, 0, 0),
		},
		display.PopScrollFrame{},
	}})

	cr, _, _ := rgbAt(r, 10, 5)
	assert.Equal(t, uint8(0), cr, "scrolled content shifts up")

	cr, _, _ = rgbAt(r, 10, 30)
	assert.Equal(t, uint8(255), cr, "the original position is empty")
}

func TestOpacityFoldsIntoFillAlpha(t *testing.T) {
	r := newTestRenderer(50, 50)
	r.Render(&display.List{Items: []display.Item{
		display.PushEffect{Opacity: 0.5},
		display.Rect{
			Bounds: geom.Rect{Width: 50, Height: 50},
			Color:  geom.RGB(0, 0, 0),
		},
		display.PopEffect{},
	}})

	cr, _, _ := rgbAt(r, 25, 25)
	assert.InDelta(t, 128, float64(cr), 3, "half-opaque black over white")
}

func TestLinearGradientShadesAcross(t *testing.T) {
	r := newTestRenderer(100, 20)
	r.Render(&display.List{Items: []display.Item{
		display.Gradient{
			Bounds: geom.Rect{Width: 100, Height: 20},
			Gradient: styled.Gradient{
				Kind:     styled.GradientLinear,
				AngleDeg: 90, // to the right
				Stops: []styled.ColorStop{
					{Color: geom.RGB(0, 0, 0), Offset: 0},
					{Color: geom.RGB(255, 255, 255), Offset: 1},
				},
			},
		},
	}})

	left, _, _ := rgbAt(r, 5, 10)
	right, _, _ := rgbAt(r, 95, 10)
	assert.Less(t, left, right)
}

func TestBrokenImageDrawsPlaceholder(t *testing.T) {
	r := newTestRenderer(60, 60)
	r.Render(&display.List{Items: []display.Item{
		display.Image{
			Bounds: geom.Rect{X: 10, Y: 10, Width: 40, Height: 40},
			Dest:   geom.Rect{X: 10, Y: 10, Width: 40, Height: 40},
			Source: "no-such-file.png",
			Repeat: styled.RepeatNone,
		},
	}})

	cr, _, _ := rgbAt(r, 30, 12)
	assert.Equal(t, uint8(230), cr, "gray placeholder box")
}

func TestTransformTranslatesDrawing(t *testing.T) {
	m := display.Identity
	m[12] = 40
	r := newTestRenderer(100, 100)
	r.Render(&display.List{Items: []display.Item{
		display.PushTransform{Matrix: m},
		display.Rect{
			Bounds: geom.Rect{Width: 20, Height: 20},
			Color:  geom.RGB(0, 0, 0),
		},
		display.PopTransform{},
	}})

	cr, _, _ := rgbAt(r, 50, 10)
	assert.Equal(t, uint8(0), cr, "rect drawn at the translated position")

	cr, _, _ = rgbAt(r, 10, 10)
	assert.Equal(t, uint8(255), cr)
}
