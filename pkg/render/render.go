// Package render rasterizes display lists onto a software canvas. It is
// the debug and paged-output sink; interactive windows hand the encoded
// list to a compositor instead. Fidelity follows the canvas: opacity is
// folded into fill alpha, blend modes and filters are ignored, and blurs
// are approximated with layered fills.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"reflow/pkg/display"
	"reflow/pkg/geom"
	"reflow/pkg/images"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

type Renderer struct {
	ctx    *gg.Context
	fonts  *text.Manager
	images *images.Cache

	// gg's clip mask survives Push/Pop, so the live clips are tracked
	// here and reapplied from scratch after every pop.
	clips []display.PushClip
	alpha []float64
}

func NewRenderer(width, height int, fonts *text.Manager, imgs *images.Cache) *Renderer {
	return &Renderer{
		ctx:    gg.NewContext(width, height),
		fonts:  fonts,
		images: imgs,
		alpha:  []float64{1},
	}
}

// Render clears the canvas to white and draws the whole list.
func (r *Renderer) Render(l *display.List) {
	r.ctx.SetRGB(1, 1, 1)
	r.ctx.Clear()
	r.RenderItems(l.Items)
}

// RenderPage draws one paginated page onto a cleared canvas.
func (r *Renderer) RenderPage(p display.Page) {
	r.ctx.SetRGB(1, 1, 1)
	r.ctx.Clear()
	r.RenderItems(p.Items)
}

// RenderItems draws items onto the canvas as-is, without clearing.
func (r *Renderer) RenderItems(items []display.Item) {
	for _, it := range items {
		r.drawItem(it)
	}
}

func (r *Renderer) Image() image.Image { return r.ctx.Image() }

func (r *Renderer) SavePNG(filename string) error {
	return r.ctx.SavePNG(filename)
}

func (r *Renderer) drawItem(it display.Item) {
	switch v := it.(type) {
	case display.Rect:
		r.drawRect(v)
	case display.Border:
		r.drawBorder(v)
	case display.Text:
		r.drawText(v)
	case display.Image:
		r.drawImage(v)
	case display.Gradient:
		r.drawGradient(v)
	case display.Shadow:
		r.drawShadow(v)
	case display.PushClip:
		r.pushClip(v)
	case display.PopClip:
		r.popClip()
	case display.PushTransform:
		r.ctx.Push()
		r.applyMatrix(v.Matrix)
	case display.PopTransform:
		r.ctx.Pop()
	case display.PushEffect:
		r.alpha = append(r.alpha, r.alpha[len(r.alpha)-1]*v.Opacity)
	case display.PopEffect:
		r.alpha = r.alpha[:len(r.alpha)-1]
	case display.PushScrollFrame:
		r.pushClip(display.PushClip{Bounds: v.Clip})
		r.ctx.Push()
		r.ctx.Translate(-v.Offset.X, -v.Offset.Y)
	case display.PopScrollFrame:
		r.ctx.Pop()
		r.popClip()
	}
}

// setColor folds the live opacity stack into the fill alpha.
func (r *Renderer) setColor(c geom.Color) {
	a := float64(c.A) / 255.0 * r.alpha[len(r.alpha)-1]
	r.ctx.SetRGBA(
		float64(c.R)/255.0,
		float64(c.G)/255.0,
		float64(c.B)/255.0,
		a,
	)
}

func maxRadius(radii [4]float64) float64 {
	m := 0.0
	for _, v := range radii {
		if v > m {
			m = v
		}
	}
	return m
}

// pathRect traces a plain or rounded rectangle without filling it.
func (r *Renderer) pathRect(b geom.Rect, radii [4]float64) {
	if rad := maxRadius(radii); rad > 0 {
		r.ctx.DrawRoundedRectangle(b.X, b.Y, b.Width, b.Height, rad)
	} else {
		r.ctx.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	}
}

func (r *Renderer) drawRect(v display.Rect) {
	if v.Color.A == 0 || v.Bounds.Width <= 0 || v.Bounds.Height <= 0 {
		return
	}
	r.setColor(v.Color)
	r.pathRect(v.Bounds, v.Radii)
	r.ctx.Fill()
}

// drawBorder paints each side as a mitered trapezoid (the CSS corner
// join). Rounded borders fall back to a stroked rounded rectangle in the
// top side's color and width.
func (r *Renderer) drawBorder(v display.Border) {
	w := v.Widths
	if w.Top <= 0 && w.Right <= 0 && w.Bottom <= 0 && w.Left <= 0 {
		return
	}

	if maxRadius(v.Radii) > 0 {
		if v.Colors[0].A == 0 {
			return
		}
		r.setColor(v.Colors[0])
		r.ctx.SetLineWidth(math.Max(w.Top, 1))
		inset := w.Top / 2
		r.ctx.DrawRoundedRectangle(
			v.Bounds.X+inset, v.Bounds.Y+inset,
			v.Bounds.Width-w.Top, v.Bounds.Height-w.Top,
			maxRadius(v.Radii))
		r.ctx.Stroke()
		return
	}

	ol, ot := v.Bounds.X, v.Bounds.Y
	or, ob := v.Bounds.X+v.Bounds.Width, v.Bounds.Y+v.Bounds.Height
	il, it := ol+w.Left, ot+w.Top
	ir, ib := or-w.Right, ob-w.Bottom

	if w.Top > 0 && v.Styles[0] != styled.BorderStyleNone && v.Colors[0].A > 0 {
		r.setColor(v.Colors[0])
		r.drawSide(v.Styles[0], w.Top, true,
			[4][2]float64{{ol, ot}, {or, ot}, {ir, it}, {il, it}})
	}
	if w.Right > 0 && v.Styles[1] != styled.BorderStyleNone && v.Colors[1].A > 0 {
		r.setColor(v.Colors[1])
		r.drawSide(v.Styles[1], w.Right, false,
			[4][2]float64{{or, ot}, {or, ob}, {ir, ib}, {ir, it}})
	}
	if w.Bottom > 0 && v.Styles[2] != styled.BorderStyleNone && v.Colors[2].A > 0 {
		r.setColor(v.Colors[2])
		r.drawSide(v.Styles[2], w.Bottom, true,
			[4][2]float64{{ol, ob}, {or, ob}, {ir, ib}, {il, ib}})
	}
	if w.Left > 0 && v.Styles[3] != styled.BorderStyleNone && v.Colors[3].A > 0 {
		r.setColor(v.Colors[3])
		r.drawSide(v.Styles[3], w.Left, false,
			[4][2]float64{{ol, ot}, {ol, ob}, {il, ib}, {il, it}})
	}
}

// drawSide fills one border side. Solid and double fill the trapezoid
// outline; dashed and dotted stroke along the side's midline instead.
func (r *Renderer) drawSide(style styled.BorderLineStyle, width float64, horizontal bool, quad [4][2]float64) {
	switch style {
	case styled.BorderStyleDashed, styled.BorderStyleDotted:
		r.ctx.SetLineWidth(width)
		if style == styled.BorderStyleDashed {
			r.ctx.SetDash(10, 5)
		} else {
			r.ctx.SetDash(2, 4)
		}
		mx0 := (quad[0][0] + quad[3][0]) / 2
		my0 := (quad[0][1] + quad[3][1]) / 2
		mx1 := (quad[1][0] + quad[2][0]) / 2
		my1 := (quad[1][1] + quad[2][1]) / 2
		r.ctx.DrawLine(mx0, my0, mx1, my1)
		r.ctx.Stroke()
		r.ctx.SetDash()
	case styled.BorderStyleDouble:
		// Two strips of a third each with a gap between.
		third := width / 3
		r.strip(quad, horizontal, 0, third)
		r.strip(quad, horizontal, width-third, third)
	default:
		r.fillQuad(quad)
	}
}

// strip fills a sub-band of a side's trapezoid, offset from the outer
// edge. Good enough for double borders away from extreme corner joins.
func (r *Renderer) strip(quad [4][2]float64, horizontal bool, offset, size float64) {
	sign := 1.0
	if horizontal {
		if quad[2][1] < quad[0][1] {
			sign = -1 // bottom side grows upward
		}
		y := quad[0][1] + sign*offset
		r.ctx.DrawRectangle(quad[0][0], math.Min(y, y+sign*size), quad[1][0]-quad[0][0], size)
	} else {
		if quad[2][0] < quad[0][0] {
			sign = -1 // right side grows leftward
		}
		x := quad[0][0] + sign*offset
		r.ctx.DrawRectangle(math.Min(x, x+sign*size), quad[0][1], size, quad[1][1]-quad[0][1])
	}
	r.ctx.Fill()
}

func (r *Renderer) fillQuad(quad [4][2]float64) {
	r.ctx.MoveTo(quad[0][0], quad[0][1])
	for _, p := range quad[1:] {
		r.ctx.LineTo(p[0], p[1])
	}
	r.ctx.ClosePath()
	r.ctx.Fill()
}

func (r *Renderer) drawText(v display.Text) {
	face, ok := r.fonts.Face(v.Face)
	if !ok {
		// Metrics-only placeholder: no rasterizable glyphs.
		return
	}
	r.ctx.SetFontFace(face)
	r.setColor(v.Color)
	for _, g := range v.Glyphs {
		r.ctx.DrawString(g.Text, g.X, g.Y)
	}
}

func (r *Renderer) drawImage(v display.Image) {
	if v.Texture != 0 {
		// GPU textures have no software representation.
		r.placeholderBox(v.Dest, geom.RGB(230, 230, 230))
		return
	}
	img, err := r.images.Load(v.Source)
	if err != nil {
		r.brokenImage(v.Dest)
		return
	}
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw <= 0 || ih <= 0 {
		return
	}

	r.pushClip(display.PushClip{Bounds: v.Bounds})
	switch v.Repeat {
	case styled.RepeatNone:
		r.drawScaled(img, v.Dest, iw, ih)
	case styled.RepeatX:
		for x := tileStart(v.Dest.X, v.Bounds.X, v.Dest.Width); x < v.Bounds.X+v.Bounds.Width; x += v.Dest.Width {
			r.drawScaled(img, geom.Rect{X: x, Y: v.Dest.Y, Width: v.Dest.Width, Height: v.Dest.Height}, iw, ih)
		}
	case styled.RepeatY:
		for y := tileStart(v.Dest.Y, v.Bounds.Y, v.Dest.Height); y < v.Bounds.Y+v.Bounds.Height; y += v.Dest.Height {
			r.drawScaled(img, geom.Rect{X: v.Dest.X, Y: y, Width: v.Dest.Width, Height: v.Dest.Height}, iw, ih)
		}
	default: // repeat both axes
		for y := tileStart(v.Dest.Y, v.Bounds.Y, v.Dest.Height); y < v.Bounds.Y+v.Bounds.Height; y += v.Dest.Height {
			for x := tileStart(v.Dest.X, v.Bounds.X, v.Dest.Width); x < v.Bounds.X+v.Bounds.Width; x += v.Dest.Width {
				r.drawScaled(img, geom.Rect{X: x, Y: y, Width: v.Dest.Width, Height: v.Dest.Height}, iw, ih)
			}
		}
	}
	r.popClip()
}

// tileStart walks the tiling phase back until it covers the area's left
// or top edge.
func tileStart(pos, edge, size float64) float64 {
	if size <= 0 {
		return pos
	}
	for pos > edge {
		pos -= size
	}
	return pos
}

func (r *Renderer) drawScaled(img image.Image, dest geom.Rect, iw, ih float64) {
	if dest.Width <= 0 || dest.Height <= 0 {
		return
	}
	r.ctx.Push()
	r.ctx.Translate(dest.X, dest.Y)
	r.ctx.Scale(dest.Width/iw, dest.Height/ih)
	r.ctx.DrawImage(img, 0, 0)
	r.ctx.Pop()
}

func (r *Renderer) placeholderBox(b geom.Rect, c geom.Color) {
	r.setColor(c)
	r.ctx.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	r.ctx.Fill()
}

// brokenImage draws the gray crossed box that stands in for an image
// that failed to load.
func (r *Renderer) brokenImage(b geom.Rect) {
	r.placeholderBox(b, geom.RGB(230, 230, 230))
	r.setColor(geom.RGB(128, 128, 128))
	r.ctx.SetLineWidth(2)
	r.ctx.DrawLine(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
	r.ctx.DrawLine(b.X+b.Width, b.Y, b.X, b.Y+b.Height)
	r.ctx.Stroke()
}

func (r *Renderer) drawGradient(v display.Gradient) {
	if len(v.Gradient.Stops) == 0 {
		return
	}
	b := v.Bounds
	var pat gg.Pattern
	switch v.Gradient.Kind {
	case styled.GradientLinear:
		// CSS angle: 0deg points up, 90deg right.
		rad := v.Gradient.AngleDeg * math.Pi / 180
		dx, dy := math.Sin(rad), -math.Cos(rad)
		cx, cy := b.X+b.Width/2, b.Y+b.Height/2
		half := (math.Abs(dx)*b.Width + math.Abs(dy)*b.Height) / 2
		lg := gg.NewLinearGradient(cx-dx*half, cy-dy*half, cx+dx*half, cy+dy*half)
		for _, s := range v.Gradient.Stops {
			lg.AddColorStop(s.Offset, toNRGBA(s.Color, r.alpha[len(r.alpha)-1]))
		}
		pat = lg
	default:
		// Radial, and the conic fallback the software sink settles for.
		cx := b.X + v.Gradient.CenterX*b.Width
		cy := b.Y + v.Gradient.CenterY*b.Height
		radius := math.Hypot(b.Width, b.Height) / 2
		rg := gg.NewRadialGradient(cx, cy, 0, cx, cy, radius)
		for _, s := range v.Gradient.Stops {
			rg.AddColorStop(s.Offset, toNRGBA(s.Color, r.alpha[len(r.alpha)-1]))
		}
		pat = rg
	}
	r.ctx.SetFillStyle(pat)
	r.pathRect(b, v.Radii)
	r.ctx.Fill()
}

func toNRGBA(c geom.Color, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * alpha)}
}

// drawShadow approximates a gaussian blur with concentric fills at
// decreasing alpha, the same trick the old box renderer used.
func (r *Renderer) drawShadow(v display.Shadow) {
	if v.Color.A == 0 {
		return
	}
	steps := int(v.Blur / 2)
	if steps < 1 {
		steps = 1
	}
	if steps > 10 {
		steps = 10
	}
	base := float64(v.Color.A) / 255.0 / float64(steps)

	for i := 0; i < steps; i++ {
		offset := float64(i) * 2
		a := base * (1 - float64(i)/float64(steps))
		r.ctx.SetRGBA(
			float64(v.Color.R)/255.0,
			float64(v.Color.G)/255.0,
			float64(v.Color.B)/255.0,
			a*r.alpha[len(r.alpha)-1],
		)
		b := v.Bounds
		if v.Inset {
			// Rings shrinking inward from the box edge.
			r.ctx.SetLineWidth(math.Max(2, v.Blur/float64(steps)))
			r.pathRect(geom.Rect{
				X: b.X + offset, Y: b.Y + offset,
				Width: b.Width - offset*2, Height: b.Height - offset*2,
			}, v.Radii)
			r.ctx.Stroke()
		} else {
			r.pathRect(geom.Rect{
				X: b.X - offset, Y: b.Y - offset,
				Width: b.Width + offset*2, Height: b.Height + offset*2,
			}, [4]float64{v.Radii[0] + offset, v.Radii[1] + offset, v.Radii[2] + offset, v.Radii[3] + offset})
			r.ctx.Fill()
		}
	}
}

func (r *Renderer) pushClip(v display.PushClip) {
	r.clips = append(r.clips, v)
	r.applyClip(v)
}

func (r *Renderer) popClip() {
	if len(r.clips) == 0 {
		return
	}
	r.clips = r.clips[:len(r.clips)-1]
	r.ctx.ResetClip()
	for _, c := range r.clips {
		r.applyClip(c)
	}
}

func (r *Renderer) applyClip(v display.PushClip) {
	if v.Shape != nil {
		r.pathShape(*v.Shape)
	} else {
		r.pathRect(v.Bounds, v.Radii)
	}
	r.ctx.Clip()
}

func (r *Renderer) pathShape(s geom.ResolvedShape) {
	switch s.Kind {
	case geom.ShapeCircle, geom.ShapeEllipse:
		r.ctx.DrawEllipse(s.Center.X, s.Center.Y, s.RadiusX, s.RadiusY)
	case geom.ShapePolygon:
		if len(s.Points) == 0 {
			return
		}
		r.ctx.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			r.ctx.LineTo(p.X, p.Y)
		}
		r.ctx.ClosePath()
	default: // inset
		r.pathRect(s.Rect, [4]float64{s.Round, s.Round, s.Round, s.Round})
	}
}

// applyMatrix decomposes the 2D affine part into the primitive operations
// the canvas exposes: translate, rotate, scale, then a residual x-shear.
func (r *Renderer) applyMatrix(m display.Matrix) {
	a, b := m[0], m[1]
	c, d := m[4], m[5]
	e, f := m[12], m[13]

	r.ctx.Translate(e, f)
	sx := math.Hypot(a, b)
	if sx == 0 {
		return
	}
	theta := math.Atan2(b, a)
	shear := (a*c + b*d) / sx
	sy := (a*d - b*c) / sx

	if theta != 0 {
		r.ctx.Rotate(theta)
	}
	if sx != 1 || sy != 1 {
		r.ctx.Scale(sx, sy)
	}
	if sy != 0 && shear != 0 {
		r.ctx.Shear(shear/sx, 0)
	}
}
