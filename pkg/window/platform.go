package window

import (
	"reflow/pkg/display"
	"reflow/pkg/geom"
)

// PlatformWindow is the shell the coordinator talks back to: requested
// cursor shape, IME rectangle, and window property changes. The platform
// side owns event decoding and delivers State snapshots.
type PlatformWindow interface {
	SetTitle(title string)
	SetSize(size geom.Size)
	SetCursor(cursor CursorShape)
	SetIMERect(rect geom.Rect)
	CloseWindow()
}

// CursorShape is the pointer shape the hovered content requests.
type CursorShape uint8

const (
	CursorDefault CursorShape = iota
	CursorPointer
	CursorText
	CursorGrab
)

// DisplaySink consumes finished frames. The compositor, the software
// rasterizer, and tests all sit behind this.
type DisplaySink interface {
	Submit(list *display.List)
}

// ByteSink consumes encoded wire frames.
type ByteSink interface {
	SubmitFrame(frame []byte)
}

// WireSink adapts a ByteSink to the DisplaySink interface by encoding
// each list into a reused arena, so the compositor side only ever sees
// the binary format.
type WireSink struct {
	Out   ByteSink
	Scale float64
	arena *display.Arena
}

func NewWireSink(out ByteSink, scale float64) *WireSink {
	if scale <= 0 {
		scale = 1
	}
	return &WireSink{Out: out, Scale: scale, arena: display.NewArena(1 << 16)}
}

func (w *WireSink) Submit(list *display.List) {
	w.arena.Reset()
	w.Out.SubmitFrame(display.Encode(w.arena, list, w.Scale))
}
