package display

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/pkg/geom"
	"reflow/pkg/scroll"
	"reflow/pkg/text"
)

func f32At(t *testing.T, b []byte, off int) float64 {
	t.Helper()
	require.LessOrEqual(t, off+4, len(b))
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4])))
}

func TestEncodeRectRecord(t *testing.T) {
	l := &List{Items: []Item{
		Rect{
			Bounds: geom.Rect{X: 10, Y: 20, Width: 30, Height: 40},
			Color:  geom.RGBA(1, 2, 3, 128),
			Radii:  [4]float64{4, 0, 0, 0},
		},
	}}
	b := Encode(NewArena(0), l, 1)

	// opcode, 4 coords, RGBA, 4 corner radii.
	require.Len(t, b, 1+16+4+16)
	assert.Equal(t, byte(OpRect), b[0])
	assert.InDelta(t, 10, f32At(t, b, 1), 0.001)
	assert.InDelta(t, 20, f32At(t, b, 5), 0.001)
	assert.InDelta(t, 30, f32At(t, b, 9), 0.001)
	assert.InDelta(t, 40, f32At(t, b, 13), 0.001)
	assert.Equal(t, []byte{1, 2, 3, 128}, b[17:21])
	assert.InDelta(t, 4, f32At(t, b, 21), 0.001)
}

func TestEncodeScalesToDevicePixels(t *testing.T) {
	l := &List{Items: []Item{
		Rect{Bounds: geom.Rect{X: 10, Y: 0, Width: 100, Height: 50}},
	}}
	b := Encode(NewArena(0), l, 2)

	assert.InDelta(t, 20, f32At(t, b, 1), 0.001)
	assert.InDelta(t, 200, f32At(t, b, 9), 0.001)
}

func TestEncodeSnapsToSixteenthPixel(t *testing.T) {
	l := &List{Items: []Item{
		Rect{Bounds: geom.Rect{X: 10.567, Width: 1, Height: 1}},
	}}
	b := Encode(NewArena(0), l, 1)

	assert.InDelta(t, 10.5625, f32At(t, b, 1), 1e-6)
}

func TestEncodeTransformScalesOnlyTranslation(t *testing.T) {
	m := Identity
	m[0] = 2   // scale x
	m[12] = 10 // translate x
	l := &List{Items: []Item{PushTransform{Matrix: m}, PopTransform{}}}
	b := Encode(NewArena(0), l, 2)

	require.Equal(t, byte(OpPushTransform), b[0])
	// Linear part stays in logical units, translation becomes device px.
	assert.InDelta(t, 2, f32At(t, b, 1), 0.001)
	assert.InDelta(t, 20, f32At(t, b, 1+12*4), 0.001)
	assert.Equal(t, byte(OpPopTransform), b[1+16*4])
}

func TestEncodeOpcodeSequence(t *testing.T) {
	l := &List{Items: []Item{
		PushClip{Bounds: geom.Rect{Width: 100, Height: 100}},
		Rect{Bounds: geom.Rect{Width: 10, Height: 10}},
		PopClip{},
	}}
	b := Encode(NewArena(0), l, 1)

	var ops []Opcode
	i := 0
	for i < len(b) {
		op := Opcode(b[i])
		ops = append(ops, op)
		switch op {
		case OpPushClip:
			i += 1 + 16 + 16 + 1 // rect, radii, no-shape marker
		case OpRect:
			i += 1 + 16 + 4 + 16
		case OpPopClip:
			i++
		default:
			t.Fatalf("unexpected opcode %d at %d", op, i)
		}
	}
	assert.Equal(t, []Opcode{OpPushClip, OpRect, OpPopClip}, ops)
}

func TestEncodeTextRecord(t *testing.T) {
	l := &List{Items: []Item{
		Text{
			Bounds: geom.Rect{Width: 40, Height: 19.2},
			Color:  geom.RGB(0, 0, 0),
			Face:   text.FaceRequest{Families: []string{"serif"}, Size: 16, Bold: true},
			Glyphs: []Glyph{{Text: "hi", X: 0, Y: 12.8}},
		},
	}}
	b := Encode(NewArena(0), l, 1)

	require.Equal(t, byte(OpText), b[0])
	off := 1 + 16 + 4 // opcode, bounds, color
	assert.InDelta(t, 16, f32At(t, b, off), 0.001)
	off += 4
	assert.Equal(t, byte(1), b[off], "bold flag")
	off++
	assert.Equal(t, byte(1), b[off], "family count")
	off++
	require.Equal(t, uint16(5), binary.LittleEndian.Uint16(b[off:off+2]))
	off += 2
	assert.Equal(t, "serif", string(b[off:off+5]))
	off += 5
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[off:off+2]), "glyph count")
	off += 2 + 4 + 4 // count, x, y
	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(b[off:off+2]))
	assert.Equal(t, "hi", string(b[off+2:off+4]))
}

func TestArenaResetReusesStorage(t *testing.T) {
	l := &List{Items: []Item{
		Rect{Bounds: geom.Rect{X: 1, Y: 2, Width: 3, Height: 4}},
	}}
	a := NewArena(256)
	first := append([]byte(nil), Encode(a, l, 1)...)

	a.Reset()
	assert.Zero(t, a.Len())
	second := Encode(a, l, 1)
	assert.Equal(t, first, second)
}

func TestEncodeScrollFrame(t *testing.T) {
	l := &List{Items: []Item{
		PushScrollFrame{
			ID:      7,
			Clip:    geom.Rect{Width: 200, Height: 100},
			Content: geom.Rect{Width: 200, Height: 400},
			Offset:  scroll.Offset{Y: 50},
		},
		PopScrollFrame{},
	}}
	b := Encode(NewArena(0), l, 2)

	require.Equal(t, byte(OpPushScroll), b[0])
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(b[1:9]))
	// Offset is a length and scales with the rest.
	offY := 1 + 8 + 16 + 16 + 4
	assert.InDelta(t, 100, f32At(t, b, offY), 0.001)
}
