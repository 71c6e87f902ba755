// Package report carries the toolkit's typed error kinds and the
// debug-message channel the window coordinator and debug overlay consume.
package report

import "fmt"

// Kind classifies an error surfaced by the core pipeline.
type Kind uint8

const (
	// InvalidStyledDom: the layout callback returned a structurally
	// inconsistent tree. Fatal for the frame.
	InvalidStyledDom Kind = iota
	// InvalidTree: the layout cache is inconsistent. Indicates a toolkit
	// bug; fatal for the frame.
	InvalidTree
	// FontLoadingFailed: a font in a family chain could not be loaded.
	// Recoverable; layout proceeds with the next fallback.
	FontLoadingFailed
	// ImageDecodeFailed: a referenced image could not be decoded.
	// Recoverable; the element paints as a transparent rect.
	ImageDecodeFailed
	// ConcurrentBorrow: a callback took a mutable reference while another
	// reference was live. Non-fatal; the borrow returns nothing.
	ConcurrentBorrow
	// LayoutBudgetExceeded: the per-frame time cap was exceeded.
	LayoutBudgetExceeded
)

func (k Kind) String() string {
	switch k {
	case InvalidStyledDom:
		return "invalid styled dom"
	case InvalidTree:
		return "invalid layout tree"
	case FontLoadingFailed:
		return "font loading failed"
	case ImageDecodeFailed:
		return "image decode failed"
	case ConcurrentBorrow:
		return "concurrent borrow"
	case LayoutBudgetExceeded:
		return "layout budget exceeded"
	}
	return "unknown"
}

// Fatal reports whether an error of this kind aborts the frame. Fatal
// errors cause the coordinator to re-submit the previous display list.
func (k Kind) Fatal() bool {
	return k == InvalidStyledDom || k == InvalidTree
}

// Error is a typed toolkit error. Use errors.Is with a bare kind sentinel
// (for example report.ErrFontLoading) to test the kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind, so sentinels below work with
// the errors package.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidStyledDom = &Error{Kind: InvalidStyledDom}
	ErrInvalidTree      = &Error{Kind: InvalidTree}
	ErrFontLoading      = &Error{Kind: FontLoadingFailed}
	ErrImageDecode      = &Error{Kind: ImageDecodeFailed}
	ErrConcurrentBorrow = &Error{Kind: ConcurrentBorrow}
	ErrBudgetExceeded   = &Error{Kind: LayoutBudgetExceeded}
)

// Errorf builds a typed error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a typed error around an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
