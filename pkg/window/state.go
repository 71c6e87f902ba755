// Package window drives the frame pipeline: platform events come in, the
// layout callback produces a styled DOM, layout and display-list building
// run under a frame budget, and the finished list goes to a display sink.
package window

import (
	"reflow/pkg/geom"
)

// Theme is the platform light/dark preference.
type Theme uint8

const (
	ThemeLight Theme = iota
	ThemeDark
)

// MouseState is the pointer portion of the window state. CursorPosition
// is nil while the pointer is outside the window.
type MouseState struct {
	CursorPosition *geom.Point
	LeftDown       bool
	RightDown      bool
	MiddleDown     bool
	ScrollX        float64
	ScrollY        float64
}

// KeyboardState carries the most recent key transition and text input.
// CurrentKey holds the virtual keycode while a key is down; CurrentChar
// holds a just-delivered text-input rune for exactly one frame.
type KeyboardState struct {
	CurrentKey  *uint32
	CurrentChar *rune
}

// State is the complete per-frame window snapshot the platform
// collaborator maintains. Event synthesis diffs two of these.
type State struct {
	Size           geom.Size
	Position       geom.Point
	Scale          float64
	Focused        bool
	CloseRequested bool
	Theme          Theme
	HoveredFile    *string
	DroppedFile    *string

	Mouse    MouseState
	Keyboard KeyboardState
}

// InWindow reports whether the pointer is inside the window.
func (s *State) InWindow() bool { return s.Mouse.CursorPosition != nil }

// CursorOr returns the pointer position, or the zero point when outside.
func (s *State) CursorOr() geom.Point {
	if s.Mouse.CursorPosition == nil {
		return geom.Point{}
	}
	return *s.Mouse.CursorPosition
}
