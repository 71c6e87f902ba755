// Package images is the decoded-image cache behind replaced elements.
// Sources are file paths or data URIs. A source that fails to decode is
// remembered so the element paints as a transparent placeholder without
// retrying the decode every frame.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"sync"

	"reflow/pkg/report"
)

// Cache caches decoded images per source. Shared process-wide by the
// coordinator; mutation happens on the UI thread, background threads read
// through the same handle.
type Cache struct {
	mu      sync.RWMutex
	images  map[string]image.Image
	failed  map[string]bool
	reports *report.Channel
}

// NewCache builds an empty cache. reports may be nil.
func NewCache(reports *report.Channel) *Cache {
	return &Cache{
		images:  make(map[string]image.Image),
		failed:  make(map[string]bool),
		reports: reports,
	}
}

// IsDataURI reports whether the source is an inline data URI.
func IsDataURI(source string) bool {
	return strings.HasPrefix(source, "data:")
}

// DecodeDataURI decodes a base64 data URI into an image.
func DecodeDataURI(uri string) (image.Image, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, errors.New("data uri has no payload")
	}
	meta, payload := uri[:comma], uri[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("only base64 data uris are supported")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	return img, err
}

// Load returns the decoded image for a source, caching the result. A
// source that previously failed returns (nil, error) without retrying.
func (c *Cache) Load(source string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[source]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	if c.failed[source] {
		c.mu.RUnlock()
		return nil, report.Errorf(report.ImageDecodeFailed, "%s", source)
	}
	c.mu.RUnlock()

	img, err := c.decode(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failed[source] = true
		werr := report.Wrap(report.ImageDecodeFailed, source, err)
		if c.reports != nil {
			c.reports.Report(report.TopicImages, werr)
		}
		return nil, werr
	}
	c.images[source] = img
	return img, nil
}

func (c *Cache) decode(source string) (image.Image, error) {
	if IsDataURI(source) {
		return DecodeDataURI(source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// Dimensions returns the natural size of a source. ok is false when the
// source cannot be decoded; the caller falls back to the declared size.
func (c *Cache) Dimensions(source string) (width, height int, ok bool) {
	img, err := c.Load(source)
	if err != nil || img == nil {
		return 0, 0, false
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), true
}
