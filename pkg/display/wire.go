package display

import (
	"encoding/binary"

	"github.com/chewxy/math32"

	"reflow/pkg/geom"
)

// Opcode identifies one wire item.
type Opcode byte

const (
	OpRect Opcode = iota + 1
	OpBorder
	OpText
	OpImage
	OpGradient
	OpShadow
	OpPushClip
	OpPopClip
	OpPushTransform
	OpPopTransform
	OpPushEffect
	OpPopEffect
	OpPushScroll
	OpPopScroll
)

// Arena is a reusable byte buffer the compositor supplies; encoding appends
// into it so the consumer can zero-copy retain the frame's bytes.
type Arena struct {
	buf []byte
}

func NewArena(capacity int) *Arena {
	return &Arena{buf: make([]byte, 0, capacity)}
}

// Reset empties the arena without releasing its backing storage.
func (a *Arena) Reset() { a.buf = a.buf[:0] }

// Bytes returns the encoded frame.
func (a *Arena) Bytes() []byte { return a.buf }

// Len returns the current encoded size.
func (a *Arena) Len() int { return len(a.buf) }

// Encode writes the list into the arena as opcode-prefixed records.
// Coordinates are 32-bit little-endian floats in device pixels (logical
// pixels times scale); colors are sRGB 8-bit RGBA. Returns the encoded
// bytes, which alias the arena.
func Encode(a *Arena, l *List, scale float64) []byte {
	e := &encoder{a: a, scale: scale}
	for _, it := range l.Items {
		e.item(it)
	}
	return a.buf
}

type encoder struct {
	a     *Arena
	scale float64
}

func (e *encoder) op(o Opcode)  { e.a.buf = append(e.a.buf, byte(o)) }
func (e *encoder) u8(v byte)    { e.a.buf = append(e.a.buf, v) }
func (e *encoder) u16(v uint16) { e.a.buf = binary.LittleEndian.AppendUint16(e.a.buf, v) }
func (e *encoder) u64(v uint64) { e.a.buf = binary.LittleEndian.AppendUint64(e.a.buf, v) }

// f32 writes a raw float32 without device scaling (factors, angles).
func (e *encoder) f32(v float64) { e.f32b(float32(v)) }

func (e *encoder) f32b(v float32) {
	e.a.buf = binary.LittleEndian.AppendUint32(e.a.buf, math32.Float32bits(v))
}

// px writes a logical length as device pixels. The scale multiply runs in
// float32 and the result snaps to 1/16 device pixel, so edges that are
// equal in logical space stay bit-equal on the wire.
func (e *encoder) px(v float64) {
	d := float32(v) * float32(e.scale)
	e.f32b(math32.Round(d*16) / 16)
}

func (e *encoder) rect(r geom.Rect) {
	e.px(r.X)
	e.px(r.Y)
	e.px(r.Width)
	e.px(r.Height)
}

func (e *encoder) color(c geom.Color) {
	e.a.buf = append(e.a.buf, c.R, c.G, c.B, c.A)
}

func (e *encoder) radii(r [4]float64) {
	for _, v := range r {
		e.px(v)
	}
}

func (e *encoder) str(s string) {
	e.u16(uint16(len(s)))
	e.a.buf = append(e.a.buf, s...)
}

func (e *encoder) item(it Item) {
	switch v := it.(type) {
	case Rect:
		e.op(OpRect)
		e.rect(v.Bounds)
		e.color(v.Color)
		e.radii(v.Radii)
	case Border:
		e.op(OpBorder)
		e.rect(v.Bounds)
		e.px(v.Widths.Top)
		e.px(v.Widths.Right)
		e.px(v.Widths.Bottom)
		e.px(v.Widths.Left)
		for _, c := range v.Colors {
			e.color(c)
		}
		for _, s := range v.Styles {
			e.u8(byte(s))
		}
		e.radii(v.Radii)
	case Text:
		e.op(OpText)
		e.rect(v.Bounds)
		e.color(v.Color)
		e.f32(v.Face.Size * e.scale)
		var flags byte
		if v.Face.Bold {
			flags |= 1
		}
		if v.Face.Italic {
			flags |= 2
		}
		if v.Face.Mono {
			flags |= 4
		}
		e.u8(flags)
		e.u8(byte(len(v.Face.Families)))
		for _, f := range v.Face.Families {
			e.str(f)
		}
		e.u16(uint16(len(v.Glyphs)))
		for _, g := range v.Glyphs {
			e.px(g.X)
			e.px(g.Y)
			e.str(g.Text)
		}
	case Image:
		e.op(OpImage)
		e.rect(v.Bounds)
		e.rect(v.Dest)
		e.u8(byte(v.Repeat))
		e.u64(v.Texture)
		e.str(v.Source)
	case Gradient:
		e.op(OpGradient)
		e.rect(v.Bounds)
		e.u8(byte(v.Gradient.Kind))
		e.f32(v.Gradient.AngleDeg)
		e.f32(v.Gradient.CenterX)
		e.f32(v.Gradient.CenterY)
		e.u16(uint16(len(v.Gradient.Stops)))
		for _, s := range v.Gradient.Stops {
			e.color(s.Color)
			e.f32(s.Offset)
		}
		e.radii(v.Radii)
	case Shadow:
		e.op(OpShadow)
		e.rect(v.Bounds)
		e.color(v.Color)
		e.px(v.Blur)
		if v.Inset {
			e.u8(1)
		} else {
			e.u8(0)
		}
		e.radii(v.Radii)
	case PushClip:
		e.op(OpPushClip)
		e.rect(v.Bounds)
		e.radii(v.Radii)
		if v.Shape == nil {
			e.u8(0)
		} else {
			e.u8(1)
			e.shape(*v.Shape)
		}
	case PopClip:
		e.op(OpPopClip)
	case PushTransform:
		e.op(OpPushTransform)
		// Device-pixel matrix: only the translation terms scale.
		m := v.Matrix
		m[12] *= e.scale
		m[13] *= e.scale
		for _, f := range m {
			e.f32(f)
		}
	case PopTransform:
		e.op(OpPopTransform)
	case PushEffect:
		e.op(OpPushEffect)
		e.f32(v.Opacity)
		e.u8(byte(v.Blend))
		e.u8(byte(len(v.Filters)))
		for _, f := range v.Filters {
			e.u8(byte(f.Kind))
			e.f32(f.Amount)
		}
		e.u8(byte(len(v.Backdrop)))
		for _, f := range v.Backdrop {
			e.u8(byte(f.Kind))
			e.f32(f.Amount)
		}
	case PopEffect:
		e.op(OpPopEffect)
	case PushScrollFrame:
		e.op(OpPushScroll)
		e.u64(uint64(v.ID))
		e.rect(v.Clip)
		e.rect(v.Content)
		e.px(v.Offset.X)
		e.px(v.Offset.Y)
	case PopScrollFrame:
		e.op(OpPopScroll)
	}
}

func (e *encoder) shape(s geom.ResolvedShape) {
	e.u8(byte(s.Kind))
	e.px(s.Center.X)
	e.px(s.Center.Y)
	e.px(s.RadiusX)
	e.px(s.RadiusY)
	e.rect(s.Rect)
	e.px(s.Round)
	e.u16(uint16(len(s.Points)))
	for _, p := range s.Points {
		e.px(p.X)
		e.px(p.Y)
	}
}
