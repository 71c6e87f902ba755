package geom

// Color is an sRGB color with 8 bits per channel, non-premultiplied alpha.
type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

var (
	Transparent = Color{}
	Black       = Color{A: 255}
	White       = Color{R: 255, G: 255, B: 255, A: 255}
)

func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

func (c Color) IsTransparent() bool { return c.A == 0 }

// Floats returns the channels as 0..1 floats, the form the software
// rasterizer and gradient interpolation consume.
func (c Color) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

// Lerp linearly interpolates between two colors in sRGB space.
func (c Color) Lerp(to Color, t float64) Color {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return to
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return Color{
		R: lerp(c.R, to.R),
		G: lerp(c.G, to.G),
		B: lerp(c.B, to.B),
		A: lerp(c.A, to.A),
	}
}
