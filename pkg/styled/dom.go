package styled

import "reflow/pkg/report"

// StyleSet carries the pre-resolved property sets for each pseudo-state.
// Normal must be present; absent states fall back to Normal so the layout
// never re-runs the cascade.
type StyleSet struct {
	Normal *ComputedStyle
	Hover  *ComputedStyle
	Active *ComputedStyle
	Focus  *ComputedStyle
}

// For returns the property set for a state, falling back to Normal.
func (s *StyleSet) For(state State) *ComputedStyle {
	switch state {
	case StateHover:
		if s.Hover != nil {
			return s.Hover
		}
	case StateActive:
		if s.Active != nil {
			return s.Active
		}
	case StateFocus:
		if s.Focus != nil {
			return s.Focus
		}
	}
	return s.Normal
}

// hierarchyItem links one node into the tree. All references are NodeIDs
// into the flat vectors; NilNode marks absence.
type hierarchyItem struct {
	Parent      NodeID
	FirstChild  NodeID
	LastChild   NodeID
	NextSibling NodeID
	PrevSibling NodeID
}

// Dom is the styled DOM: a flat node vector with parallel arrays for
// hierarchy, node data and cascade-resolved styles. Once returned from a
// layout callback it is treated as immutable for the rest of the frame.
type Dom struct {
	id     DomID
	hier   []hierarchyItem
	data   []NodeData
	styles []StyleSet
	// lazily computed per-node content hashes (data hash x style hash)
	hashes []uint64
	hashed []bool
}

// NewDom creates a DOM with a single root node.
func NewDom(id DomID, rootData NodeData, rootStyle *ComputedStyle) *Dom {
	if rootStyle == nil {
		rootStyle = DefaultBlock()
	}
	d := &Dom{id: id}
	d.hier = append(d.hier, hierarchyItem{
		Parent: NilNode, FirstChild: NilNode, LastChild: NilNode,
		NextSibling: NilNode, PrevSibling: NilNode,
	})
	d.data = append(d.data, rootData)
	d.styles = append(d.styles, StyleSet{Normal: rootStyle})
	d.hashes = append(d.hashes, 0)
	d.hashed = append(d.hashed, false)
	return d
}

// NewBody is the common case: a root element with block display filling
// the viewport.
func NewBody(id DomID) *Dom {
	return NewDom(id, NodeData{Type: ElementNode, Tag: "body"}, DefaultBlock())
}

func (d *Dom) ID() DomID    { return d.id }
func (d *Dom) Len() int     { return len(d.data) }
func (d *Dom) Root() NodeID { return 0 }

// AddNode appends a node under parent and returns its ID. Style may be
// nil for text nodes; they inherit at layout time.
func (d *Dom) AddNode(parent NodeID, data NodeData, style StyleSet) NodeID {
	id := NodeID(len(d.data))
	d.data = append(d.data, data)
	d.styles = append(d.styles, style)
	d.hashes = append(d.hashes, 0)
	d.hashed = append(d.hashed, false)
	item := hierarchyItem{
		Parent: parent, FirstChild: NilNode, LastChild: NilNode,
		NextSibling: NilNode, PrevSibling: NilNode,
	}
	p := &d.hier[parent]
	if p.LastChild != NilNode {
		item.PrevSibling = p.LastChild
		d.hier[p.LastChild].NextSibling = id
	} else {
		p.FirstChild = id
	}
	p.LastChild = id
	d.hier = append(d.hier, item)
	return id
}

// AddElement appends an element node with a Normal-only style set.
func (d *Dom) AddElement(parent NodeID, tag string, style *ComputedStyle) NodeID {
	return d.AddNode(parent, NodeData{Type: ElementNode, Tag: tag}, StyleSet{Normal: style})
}

// AddText appends a text node. Its style is inherited during layout.
func (d *Dom) AddText(parent NodeID, text string) NodeID {
	return d.AddNode(parent, NodeData{Type: TextNode, Text: text}, StyleSet{})
}

func (d *Dom) Parent(n NodeID) NodeID      { return d.hier[n].Parent }
func (d *Dom) FirstChild(n NodeID) NodeID  { return d.hier[n].FirstChild }
func (d *Dom) LastChild(n NodeID) NodeID   { return d.hier[n].LastChild }
func (d *Dom) NextSibling(n NodeID) NodeID { return d.hier[n].NextSibling }
func (d *Dom) PrevSibling(n NodeID) NodeID { return d.hier[n].PrevSibling }

func (d *Dom) Data(n NodeID) *NodeData { return &d.data[n] }

// Style returns the property set for the node in the given state. Text
// nodes without a declared set get nil; the layout inherits for them.
func (d *Dom) Style(n NodeID, state State) *ComputedStyle {
	set := &d.styles[n]
	if set.Normal == nil {
		return nil
	}
	return set.For(state)
}

// Children collects the child IDs of a node in document order.
func (d *Dom) Children(n NodeID) []NodeID {
	var out []NodeID
	for c := d.hier[n].FirstChild; c != NilNode; c = d.hier[c].NextSibling {
		out = append(out, c)
	}
	return out
}

// WalkDepthFirst visits the subtree rooted at n in pre-order. Returning
// false from fn skips the node's descendants.
func (d *Dom) WalkDepthFirst(n NodeID, fn func(NodeID) bool) {
	if !fn(n) {
		return
	}
	for c := d.hier[n].FirstChild; c != NilNode; c = d.hier[c].NextSibling {
		d.WalkDepthFirst(c, fn)
	}
}

// Hash is the per-node reconciliation hash combining node data and the
// Normal style. Computed lazily and memoised: the DOM is immutable for
// the frame.
func (d *Dom) Hash(n NodeID) uint64 {
	if d.hashed[n] {
		return d.hashes[n]
	}
	h := d.data[n].Hash()
	if s := d.styles[n].Normal; s != nil {
		h = h*31 ^ s.Hash()
	}
	d.hashes[n] = h
	d.hashed[n] = true
	return h
}

// Validate checks structural consistency: every non-root node has exactly
// one parent, sibling links are symmetric and there are no cycles.
// A failure is an InvalidStyledDom error.
func (d *Dom) Validate() error {
	seen := make([]bool, len(d.data))
	var walk func(n NodeID, depth int) error
	walk = func(n NodeID, depth int) error {
		if n < 0 || int(n) >= len(d.data) {
			return report.Errorf(report.InvalidStyledDom, "node %d out of range", n)
		}
		if seen[n] {
			return report.Errorf(report.InvalidStyledDom, "node %d referenced as child twice", n)
		}
		seen[n] = true
		if depth > len(d.data) {
			return report.Errorf(report.InvalidStyledDom, "cycle at node %d", n)
		}
		prev := NilNode
		for c := d.hier[n].FirstChild; c != NilNode; c = d.hier[c].NextSibling {
			if d.hier[c].Parent != n {
				return report.Errorf(report.InvalidStyledDom,
					"node %d has parent %d but is linked under %d", c, d.hier[c].Parent, n)
			}
			if d.hier[c].PrevSibling != prev {
				return report.Errorf(report.InvalidStyledDom, "sibling links broken at node %d", c)
			}
			if err := walk(c, depth+1); err != nil {
				return err
			}
			prev = c
		}
		if d.hier[n].LastChild != prev {
			return report.Errorf(report.InvalidStyledDom, "last-child link broken at node %d", n)
		}
		return nil
	}
	if err := walk(0, 0); err != nil {
		return err
	}
	for i, ok := range seen {
		if !ok {
			return report.Errorf(report.InvalidStyledDom, "node %d unreachable from root", i)
		}
	}
	return nil
}
