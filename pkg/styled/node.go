package styled

import (
	"hash/fnv"

	"reflow/pkg/geom"
)

// DomID identifies an independent DOM instance. Iframe callbacks produce
// DOMs with fresh IDs carved out of the parent coordinator's counter.
type DomID uint64

// NodeID is a per-DOM node index. The root is always 0.
type NodeID int32

// NilNode marks an absent node reference.
const NilNode NodeID = -1

// NodeType is the node-data variant.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
	ImageNode
	IFrameNode
	GLNode
)

// IFrameCallback produces a nested DOM for the given available size. The
// returned DOM must carry a DomID distinct from the embedding DOM's.
type IFrameCallback func(available geom.Size) *Dom

// GLTextureCallback returns an opaque GPU texture handle for the given
// physical size; the display list embeds the handle.
type GLTextureCallback func(size geom.Size) uint64

// NodeData is the identity and content of one node.
type NodeData struct {
	Type    NodeType
	Tag     string
	ID      string
	Classes []string

	// Text for TextNode, image source for ImageNode.
	Text        string
	ImageSource string

	IFrame IFrameCallback
	GL     GLTextureCallback

	// TabIndex marks the node focusable/hit-testable. Zero means the node
	// takes no tag in the hit-test map unless it has callbacks.
	TabIndex int
}

// Hash is the node-data content hash used for reconciliation and stable
// scroll IDs. Callback identities do not participate: swapping a callback
// does not invalidate layout.
func (d *NodeData) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(d.Type)})
	h.Write([]byte(d.Tag))
	h.Write([]byte{0})
	h.Write([]byte(d.ID))
	for _, c := range d.Classes {
		h.Write([]byte{0})
		h.Write([]byte(c))
	}
	h.Write([]byte{1})
	h.Write([]byte(d.Text))
	h.Write([]byte{1})
	h.Write([]byte(d.ImageSource))
	return h.Sum64()
}

// TagClassHash hashes only tag and classes; scroll IDs are derived from it
// so that content edits keep scroll offsets stable.
func (d *NodeData) TagClassHash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(d.Tag))
	for _, c := range d.Classes {
		h.Write([]byte{0})
		h.Write([]byte(c))
	}
	return h.Sum64()
}
