// Package scroll holds the stable scroll-ID scheme and the per-container
// offset store. A node is a scroll container iff its computed overflow on
// either axis is scroll or auto and its content actually overflows; the
// layout package performs that discovery and tags containers with IDs
// derived here.
package scroll

import (
	"encoding/binary"
	"hash/fnv"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// ID identifies one scroll container stably across reconciliations: it is
// derived from the owning DOM and the node's tag/class identity, not from
// the node index, so incremental reloads keep scroll offsets.
type ID uint64

// DeriveID computes the stable scroll ID for a node.
func DeriveID(dom styled.DomID, data *styled.NodeData) ID {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(dom))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], data.TagClassHash())
	h.Write(buf[:])
	return ID(h.Sum64())
}

// DeriveIDDisambiguated mixes the node ID in; used when two containers in
// one DOM collide on tag/class identity.
func DeriveIDDisambiguated(dom styled.DomID, data *styled.NodeData, node styled.NodeID) ID {
	base := DeriveID(dom, data)
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(base))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(node)))
	h.Write(buf[:])
	return ID(h.Sum64())
}

// Offset is a per-container scroll offset in logical pixels.
type Offset struct {
	X float64
	Y float64
}

// Container describes one discovered scroll container for a frame.
type Container struct {
	ID ID
	// ParentRect is the container's padding box, ChildRect the union of
	// its children's margin boxes, both in canvas coordinates.
	ParentRect geom.Rect
	ChildRect  geom.Rect
	OverflowX  bool
	OverflowY  bool
}

// MaxOffset returns how far the content can scroll on each axis.
func (c Container) MaxOffset() Offset {
	o := Offset{}
	if c.OverflowX {
		o.X = c.ChildRect.Width - c.ParentRect.Width
		if o.X < 0 {
			o.X = 0
		}
	}
	if c.OverflowY {
		o.Y = c.ChildRect.Height - c.ParentRect.Height
		if o.Y < 0 {
			o.Y = 0
		}
	}
	return o
}

// State maps scroll IDs to live offsets. It survives across frames on the
// coordinator; reconciliation never resets it.
type State struct {
	offsets map[ID]Offset
}

func NewState() *State {
	return &State{offsets: make(map[ID]Offset)}
}

// Get returns the offset for a container (zero when unknown).
func (s *State) Get(id ID) Offset {
	return s.offsets[id]
}

// Set stores an offset.
func (s *State) Set(id ID, o Offset) {
	s.offsets[id] = o
}

// ScrollBy adjusts an offset by a wheel delta, clamped to the container's
// scrollable range.
func (s *State) ScrollBy(c Container, dx, dy float64) Offset {
	o := s.offsets[c.ID]
	max := c.MaxOffset()
	o.X = clamp(o.X+dx, 0, max.X)
	o.Y = clamp(o.Y+dy, 0, max.Y)
	s.offsets[c.ID] = o
	return o
}

// Retain drops offsets whose containers vanished, keeping the map from
// growing across long sessions. Called with the IDs discovered this frame.
func (s *State) Retain(live map[ID]bool) {
	for id := range s.offsets {
		if !live[id] {
			delete(s.offsets, id)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
