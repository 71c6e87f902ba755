package layout

import (
	"reflow/pkg/geom"
	"reflow/pkg/scroll"
	"reflow/pkg/styled"
)

// DirtySets is the outcome of reconciling a freshly built tree against the
// cached previous generation.
type DirtySets struct {
	Added        []styled.NodeID
	Removed      []styled.NodeID
	LayoutRoots  []NodeIdx // nodes whose geometry must be recomputed
	PositionOnly []NodeIdx // paint-only changes, geometry reusable

	ViewportChanged bool
	First           bool // no previous generation existed
}

// Clean reports that nothing changed at all: the previous result can be
// returned untouched.
func (d DirtySets) Clean() bool {
	return !d.First && !d.ViewportChanged &&
		len(d.Added) == 0 && len(d.Removed) == 0 && len(d.LayoutRoots) == 0 &&
		len(d.PositionOnly) == 0
}

// PositionOnlyPass reports that only paint-affecting properties changed, so
// the cached geometry stands and only styles need swapping.
func (d DirtySets) PositionOnlyPass() bool {
	return !d.First && !d.ViewportChanged &&
		len(d.Added) == 0 && len(d.Removed) == 0 && len(d.LayoutRoots) == 0 &&
		len(d.PositionOnly) > 0
}

// Cache carries layout state for one DOM across passes: the previous tree
// generation plus the derived results that let a clean pass return without
// solving anything.
type Cache struct {
	tree             *Tree
	running          []RunningBox
	scrollContainers []scroll.Container
	pageCount        int

	viewport geom.Size
	pageSize geom.Size
}

func NewCache() *Cache {
	return &Cache{}
}

// reconcile diffs the new tree against the cached generation by DOM node
// identity, classifying every change and warming the new tree with every
// cached result that is still valid.
func (c *Cache) reconcile(tree *Tree, opts Options) DirtySets {
	var d DirtySets
	if c.tree == nil {
		d.First = true
		d.LayoutRoots = append(d.LayoutRoots, tree.Root)
		return d
	}
	if c.viewport != opts.Viewport || c.pageSize != opts.PageSize {
		d.ViewportChanged = true
	}

	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.DomNode == styled.NilNode {
			continue
		}
		oldIdx := c.tree.ByDom(n.DomNode)
		if oldIdx == NilIdx {
			d.Added = append(d.Added, n.DomNode)
			d.LayoutRoots = appendRoot(d.LayoutRoots, tree, NodeIdx(i))
			continue
		}
		old := c.tree.Node(oldIdx)
		switch {
		case n.Hash == old.Hash && sameShape(tree, NodeIdx(i), c.tree, oldIdx):
			carryResult(n, old)
		case n.LayoutHash == old.LayoutHash && sameShape(tree, NodeIdx(i), c.tree, oldIdx):
			// Geometry inputs unchanged; only paint properties moved.
			carryResult(n, old)
			n.Dirty |= DirtyPosition
			d.PositionOnly = append(d.PositionOnly, NodeIdx(i))
		default:
			n.Dirty |= DirtyIntrinsic | DirtyLayout
			d.LayoutRoots = appendRoot(d.LayoutRoots, tree, NodeIdx(i))
		}
	}

	for id := range c.tree.byDom {
		if tree.ByDom(id) == NilIdx {
			d.Removed = append(d.Removed, id)
			d.LayoutRoots = appendRoot(d.LayoutRoots, tree, tree.Root)
		}
	}

	if len(d.LayoutRoots) > 0 || d.ViewportChanged {
		// A changed subtree invalidates the content-driven sizes of its
		// ancestors even when their own hashes held.
		for _, r := range d.LayoutRoots {
			for a := tree.Node(r).Parent; a != NilIdx; a = tree.Node(a).Parent {
				an := tree.Node(a)
				an.Intrinsic.Valid = false
				an.measure = nil
			}
		}
	}
	return d
}

// sameShape checks that a node kept its child list, so cached child
// geometry below it still lines up.
func sameShape(nt *Tree, ni NodeIdx, ot *Tree, oi NodeIdx) bool {
	nc := nt.Node(ni).FirstChild
	oc := ot.Node(oi).FirstChild
	for nc != NilIdx && oc != NilIdx {
		nn, on := nt.Node(nc), ot.Node(oc)
		if nn.DomNode != on.DomNode || nn.Anon != on.Anon {
			return false
		}
		nc = nn.NextSibling
		oc = on.NextSibling
	}
	return nc == NilIdx && oc == NilIdx
}

// carryResult copies everything expensive from the old generation: cached
// intrinsic sizes, measurement memo, shaped text and resolved geometry.
func carryResult(n, old *LayoutNode) {
	n.Intrinsic = old.Intrinsic
	n.measure = old.measure
	n.Shaped = old.Shaped
	n.Box = old.Box
	n.Content = old.Content
	n.Pos = old.Pos
	n.RelOffset = old.RelOffset
	n.PageIndex = old.PageIndex
	n.ScrollID = old.ScrollID
	n.ListMarker = old.ListMarker
	n.Baseline = old.Baseline
	n.lastAvail = old.lastAvail
}

func appendRoot(roots []NodeIdx, t *Tree, i NodeIdx) []NodeIdx {
	// Re-layout happens at the nearest block-level ancestor so inline
	// siblings reflow together.
	for i != NilIdx {
		n := t.Node(i)
		if n.Style != nil && !n.Style.Display.IsInlineLevel() {
			break
		}
		i = n.Parent
	}
	if i == NilIdx {
		i = t.Root
	}
	for _, r := range roots {
		if r == i {
			return roots
		}
	}
	return append(roots, i)
}

// adoptStyles moves the freshly cascaded styles of a paint-only pass onto
// the cached tree, keeping its geometry.
func (c *Cache) adoptStyles(fresh *Tree) {
	for i := range fresh.Nodes {
		n := &fresh.Nodes[i]
		if n.DomNode == styled.NilNode {
			continue
		}
		oldIdx := c.tree.ByDom(n.DomNode)
		if oldIdx == NilIdx {
			continue
		}
		old := c.tree.Node(oldIdx)
		old.Style = n.Style
		old.Data = n.Data
		old.Hash = n.Hash
		old.LayoutHash = n.LayoutHash
	}
}

func (c *Cache) store(tree *Tree, running []RunningBox, sc []scroll.Container, pages int, opts Options) {
	c.tree = tree
	c.running = running
	c.scrollContainers = sc
	c.pageCount = pages
	c.viewport = opts.Viewport
	c.pageSize = opts.PageSize
}

// Tree exposes the cached generation, mainly for tests and debug overlays.
func (c *Cache) Tree() *Tree { return c.tree }
