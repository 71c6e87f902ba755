package window

import "reflow/pkg/geom"

// EventKind is a synthesised high-level event.
type EventKind uint8

const (
	LeftMouseDown EventKind = iota
	LeftMouseUp
	MouseOver
	MouseEnter
	MouseLeave
	Scroll
	VirtualKeyDown
	VirtualKeyUp
	TextInput
	Resized
	Moved
	CloseRequested
	WindowFocusReceived
	WindowFocusLost
	ThemeChanged
	HoveredFile
	HoveredFileCancelled
	DroppedFile
)

func (k EventKind) String() string {
	switch k {
	case LeftMouseDown:
		return "left-mouse-down"
	case LeftMouseUp:
		return "left-mouse-up"
	case MouseOver:
		return "mouse-over"
	case MouseEnter:
		return "mouse-enter"
	case MouseLeave:
		return "mouse-leave"
	case Scroll:
		return "scroll"
	case VirtualKeyDown:
		return "virtual-key-down"
	case VirtualKeyUp:
		return "virtual-key-up"
	case TextInput:
		return "text-input"
	case Resized:
		return "resized"
	case Moved:
		return "moved"
	case CloseRequested:
		return "close-requested"
	case WindowFocusReceived:
		return "window-focus-received"
	case WindowFocusLost:
		return "window-focus-lost"
	case ThemeChanged:
		return "theme-changed"
	case HoveredFile:
		return "hovered-file"
	case HoveredFileCancelled:
		return "hovered-file-cancelled"
	case DroppedFile:
		return "dropped-file"
	}
	return "unknown"
}

// Event is one synthesised event with the payload its kind implies.
type Event struct {
	Kind     EventKind
	Cursor   geom.Point // valid for mouse events
	ScrollX  float64
	ScrollY  float64
	Key      uint32 // virtual keycode for key events
	Char     rune   // text-input rune
	File     string // hovered/dropped path
}

// Synthesize diffs two window states and emits the high-level events the
// transition implies. Order follows input causality: pointer state first,
// then keys and text, then window-level transitions.
func Synthesize(prev, cur *State) []Event {
	var out []Event

	if !prev.Mouse.LeftDown && cur.Mouse.LeftDown {
		out = append(out, Event{Kind: LeftMouseDown, Cursor: cur.CursorOr()})
	}
	if prev.Mouse.LeftDown && !cur.Mouse.LeftDown {
		out = append(out, Event{Kind: LeftMouseUp, Cursor: cur.CursorOr()})
	}

	switch {
	case !prev.InWindow() && cur.InWindow():
		out = append(out, Event{Kind: MouseEnter, Cursor: cur.CursorOr()})
	case prev.InWindow() && !cur.InWindow():
		out = append(out, Event{Kind: MouseLeave, Cursor: prev.CursorOr()})
	case cur.InWindow() && prev.CursorOr() != cur.CursorOr():
		out = append(out, Event{Kind: MouseOver, Cursor: cur.CursorOr()})
	}

	if cur.Mouse.ScrollX != 0 || cur.Mouse.ScrollY != 0 {
		out = append(out, Event{
			Kind:    Scroll,
			Cursor:  cur.CursorOr(),
			ScrollX: cur.Mouse.ScrollX,
			ScrollY: cur.Mouse.ScrollY,
		})
	}

	if k := cur.Keyboard.CurrentKey; k != nil &&
		(prev.Keyboard.CurrentKey == nil || *prev.Keyboard.CurrentKey != *k) {
		out = append(out, Event{Kind: VirtualKeyDown, Key: *k})
	}
	if k := prev.Keyboard.CurrentKey; k != nil && cur.Keyboard.CurrentKey == nil {
		out = append(out, Event{Kind: VirtualKeyUp, Key: *k})
	}
	if c := cur.Keyboard.CurrentChar; c != nil {
		out = append(out, Event{Kind: TextInput, Char: *c})
	}

	if prev.Size != cur.Size {
		out = append(out, Event{Kind: Resized})
	}
	if prev.Position != cur.Position {
		out = append(out, Event{Kind: Moved})
	}
	if !prev.CloseRequested && cur.CloseRequested {
		out = append(out, Event{Kind: CloseRequested})
	}
	if !prev.Focused && cur.Focused {
		out = append(out, Event{Kind: WindowFocusReceived})
	}
	if prev.Focused && !cur.Focused {
		out = append(out, Event{Kind: WindowFocusLost})
	}
	if prev.Theme != cur.Theme {
		out = append(out, Event{Kind: ThemeChanged})
	}

	switch {
	case prev.HoveredFile == nil && cur.HoveredFile != nil:
		out = append(out, Event{Kind: HoveredFile, File: *cur.HoveredFile})
	case prev.HoveredFile != nil && cur.HoveredFile == nil:
		out = append(out, Event{Kind: HoveredFileCancelled})
	}
	if prev.DroppedFile == nil && cur.DroppedFile != nil {
		out = append(out, Event{Kind: DroppedFile, File: *cur.DroppedFile})
	}

	return out
}
