package text

import (
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"reflow/pkg/report"
)

// placeholderAdvance is the per-grapheme advance (as a fraction of the font
// size) of the metrics-only placeholder used when no face can be loaded.
const placeholderAdvance = 0.5

// Metrics are the vertical metrics of a face at a given size.
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
}

type faceKey struct {
	path string
	size float64
}

// Manager resolves font-family chains to loaded faces and caches text
// measurement. It is safe for concurrent read access; loading is
// serialised internally. All caches are per-instance; there is no
// process-global font state.
type Manager struct {
	config  FontConfig
	reports *report.Channel

	mu       sync.Mutex
	faces    map[faceKey]font.Face
	broken   map[faceKey]bool
	measures map[measureKey]float64
}

type measureKey struct {
	face faceKey
	text string
}

// NewManager builds a manager over the given config. reports may be nil.
func NewManager(cfg FontConfig, reports *report.Channel) *Manager {
	return &Manager{
		config:   cfg,
		reports:  reports,
		faces:    make(map[faceKey]font.Face),
		broken:   make(map[faceKey]bool),
		measures: make(map[measureKey]float64),
	}
}

// NewPlaceholderManager returns a manager with no font files configured;
// every request resolves to the metrics-only placeholder. Layout tests use
// it for deterministic measurement.
func NewPlaceholderManager() *Manager {
	return NewManager(FontConfig{}, nil)
}

// resolve maps a request to a face key. Named families beyond the built-in
// ones all map onto the built-in paths today; the chain still matters
// because a later built-in keyword ("monospace") can redirect the path.
func (m *Manager) resolve(req FaceRequest) faceKey {
	mono := req.Mono
	for _, fam := range req.Families {
		if fam == "monospace" {
			mono = true
		}
	}
	return faceKey{path: m.config.Path(req.Bold, req.Italic, mono), size: req.Size}
}

// face loads (or returns the cached) face for a request. The second result
// is false when only the placeholder is available.
func (m *Manager) face(req FaceRequest) (font.Face, bool) {
	key := m.resolve(req)
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[key]; ok {
		return f, true
	}
	if m.broken[key] || key.path == "" {
		return nil, false
	}
	f, err := gg.LoadFontFace(key.path, key.size)
	if err != nil {
		m.broken[key] = true
		if m.reports != nil {
			m.reports.Report(report.TopicText,
				report.Wrap(report.FontLoadingFailed, key.path, err))
		}
		return nil, false
	}
	m.faces[key] = f
	return f, true
}

// Metrics returns ascent/descent/line height for a request. The
// placeholder uses 80/20 of the font size, the usual split for Latin
// faces.
func (m *Manager) Metrics(req FaceRequest) Metrics {
	if f, ok := m.face(req); ok {
		fm := f.Metrics()
		asc := fixedToFloat(fm.Ascent)
		desc := fixedToFloat(fm.Descent)
		return Metrics{Ascent: asc, Descent: desc, LineHeight: asc + desc}
	}
	return Metrics{
		Ascent:     req.Size * 0.8,
		Descent:    req.Size * 0.2,
		LineHeight: req.Size,
	}
}

// MeasureString returns the advance width of s for the request.
func (m *Manager) MeasureString(s string, req FaceRequest) float64 {
	if s == "" {
		return 0
	}
	key := measureKey{face: m.resolve(req), text: s}
	m.mu.Lock()
	if w, ok := m.measures[key]; ok {
		m.mu.Unlock()
		return w
	}
	m.mu.Unlock()

	var w float64
	if f, ok := m.face(req); ok {
		w = fixedToFloat(font.MeasureString(f, s))
	} else {
		w = float64(graphemeCount(s)) * req.Size * placeholderAdvance
	}
	m.mu.Lock()
	m.measures[key] = w
	m.mu.Unlock()
	return w
}

// Face exposes the loaded face for rendering; ok is false when only the
// placeholder metrics exist (the renderer then draws placeholder boxes).
func (m *Manager) Face(req FaceRequest) (font.Face, bool) {
	return m.face(req)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
