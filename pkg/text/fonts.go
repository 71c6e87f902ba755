// Package text is the font manager and text model the layout consumes:
// font-family chain resolution, word/grapheme segmentation, shaped runs
// with line breaks, and caret/selection geometry.
package text

import (
	"os"
	"path/filepath"
	"runtime"
)

// FontConfig holds paths to the font files backing the built-in families.
type FontConfig struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Monospace  string
	MonoBold   string
}

func defaultFontsDir() string {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "..", "fonts")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "fonts")
}

// DefaultFontConfig returns a FontConfig over the bundled fonts directory.
func DefaultFontConfig() FontConfig {
	dir := defaultFontsDir()
	return FontConfig{
		Regular:    filepath.Join(dir, "AtkinsonHyperlegible-Regular.ttf"),
		Bold:       filepath.Join(dir, "AtkinsonHyperlegible-Bold.ttf"),
		Italic:     filepath.Join(dir, "AtkinsonHyperlegible-Italic.ttf"),
		BoldItalic: filepath.Join(dir, "AtkinsonHyperlegible-BoldItalic.ttf"),
		Monospace:  filepath.Join(dir, "AtkinsonHyperlegibleMono-Regular.otf"),
		MonoBold:   filepath.Join(dir, "AtkinsonHyperlegibleMono-Bold.otf"),
	}
}

// Path returns the font file for a style combination, falling back to the
// regular face when a variant is not configured.
func (fc FontConfig) Path(bold, italic, mono bool) string {
	if mono {
		if bold && fc.MonoBold != "" {
			return fc.MonoBold
		}
		if fc.Monospace != "" {
			return fc.Monospace
		}
	}
	if bold && italic && fc.BoldItalic != "" {
		return fc.BoldItalic
	}
	if bold && fc.Bold != "" {
		return fc.Bold
	}
	if italic && fc.Italic != "" {
		return fc.Italic
	}
	return fc.Regular
}

// FaceRequest identifies a font face: a family chain plus size and style
// flags. The manager resolves the chain left to right and falls back to
// the built-in faces, then to a metrics-only placeholder.
type FaceRequest struct {
	Families []string
	Size     float64
	Bold     bool
	Italic   bool
	Mono     bool
}
