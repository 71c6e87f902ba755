package edit

// Clipboard is the platform clipboard collaborator. Calls may block; the
// editor touches it only inside Create (Paste capture) and Apply (Copy,
// Cut), never during layout.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

// MemoryClipboard is an in-process clipboard used when no platform
// collaborator is wired, and in tests.
type MemoryClipboard struct {
	text string
}

func NewMemoryClipboard() *MemoryClipboard { return &MemoryClipboard{} }

func (m *MemoryClipboard) ReadText() (string, error) { return m.text, nil }

func (m *MemoryClipboard) WriteText(s string) error {
	m.text = s
	return nil
}
