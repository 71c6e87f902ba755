package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reflow/pkg/geom"
)

func ptr[T any](v T) *T { return &v }

func kindsOf(events []Event) []EventKind {
	var out []EventKind
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestSynthesizeTransitions(t *testing.T) {
	in := func(x, y float64) *geom.Point { return &geom.Point{X: x, Y: y} }

	cases := []struct {
		name string
		prev State
		cur  State
		want []EventKind
	}{
		{
			name: "left down",
			prev: State{Mouse: MouseState{CursorPosition: in(5, 5)}},
			cur:  State{Mouse: MouseState{CursorPosition: in(5, 5), LeftDown: true}},
			want: []EventKind{LeftMouseDown},
		},
		{
			name: "left up",
			prev: State{Mouse: MouseState{CursorPosition: in(5, 5), LeftDown: true}},
			cur:  State{Mouse: MouseState{CursorPosition: in(5, 5)}},
			want: []EventKind{LeftMouseUp},
		},
		{
			name: "mouse over on movement",
			prev: State{Mouse: MouseState{CursorPosition: in(5, 5)}},
			cur:  State{Mouse: MouseState{CursorPosition: in(6, 5)}},
			want: []EventKind{MouseOver},
		},
		{
			name: "enter window",
			prev: State{},
			cur:  State{Mouse: MouseState{CursorPosition: in(5, 5)}},
			want: []EventKind{MouseEnter},
		},
		{
			name: "leave window",
			prev: State{Mouse: MouseState{CursorPosition: in(5, 5)}},
			cur:  State{},
			want: []EventKind{MouseLeave},
		},
		{
			name: "wheel",
			prev: State{},
			cur:  State{Mouse: MouseState{ScrollY: -3}},
			want: []EventKind{Scroll},
		},
		{
			name: "key down then text",
			prev: State{},
			cur: State{Keyboard: KeyboardState{
				CurrentKey:  ptr(uint32(0x41)),
				CurrentChar: ptr('a'),
			}},
			want: []EventKind{VirtualKeyDown, TextInput},
		},
		{
			name: "key up",
			prev: State{Keyboard: KeyboardState{CurrentKey: ptr(uint32(0x41))}},
			cur:  State{},
			want: []EventKind{VirtualKeyUp},
		},
		{
			name: "resize",
			prev: State{Size: geom.Size{Width: 800, Height: 600}},
			cur:  State{Size: geom.Size{Width: 1024, Height: 768}},
			want: []EventKind{Resized},
		},
		{
			name: "move",
			prev: State{},
			cur:  State{Position: geom.Point{X: 100, Y: 50}},
			want: []EventKind{Moved},
		},
		{
			name: "close requested",
			prev: State{},
			cur:  State{CloseRequested: true},
			want: []EventKind{CloseRequested},
		},
		{
			name: "focus gained",
			prev: State{},
			cur:  State{Focused: true},
			want: []EventKind{WindowFocusReceived},
		},
		{
			name: "focus lost",
			prev: State{Focused: true},
			cur:  State{},
			want: []EventKind{WindowFocusLost},
		},
		{
			name: "theme change",
			prev: State{Theme: ThemeLight},
			cur:  State{Theme: ThemeDark},
			want: []EventKind{ThemeChanged},
		},
		{
			name: "file hover and cancel",
			prev: State{HoveredFile: ptr("/tmp/a.png")},
			cur:  State{},
			want: []EventKind{HoveredFileCancelled},
		},
		{
			name: "file drop",
			prev: State{},
			cur:  State{DroppedFile: ptr("/tmp/a.png")},
			want: []EventKind{DroppedFile},
		},
		{
			name: "steady state is silent",
			prev: State{Mouse: MouseState{CursorPosition: in(5, 5)}, Focused: true},
			cur:  State{Mouse: MouseState{CursorPosition: in(5, 5)}, Focused: true},
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Synthesize(&tc.prev, &tc.cur)
			assert.Equal(t, tc.want, kindsOf(got))
		})
	}
}

func TestSynthesizePayloads(t *testing.T) {
	pos := geom.Point{X: 12, Y: 34}
	prev := State{}
	cur := State{
		Mouse:       MouseState{CursorPosition: &pos, ScrollY: -120},
		DroppedFile: ptr("/data/report.pdf"),
	}

	events := Synthesize(&prev, &cur)
	assert.Equal(t, []EventKind{MouseEnter, Scroll, DroppedFile}, kindsOf(events))
	assert.Equal(t, pos, events[0].Cursor)
	assert.Equal(t, -120.0, events[1].ScrollY)
	assert.Equal(t, "/data/report.pdf", events[2].File)
}

func TestSynthesizeHeldKeyDoesNotRepeat(t *testing.T) {
	key := ptr(uint32(0x41))
	prev := State{Keyboard: KeyboardState{CurrentKey: key}}
	cur := State{Keyboard: KeyboardState{CurrentKey: key}}
	assert.Empty(t, Synthesize(&prev, &cur))
}
