package display

import (
	"sort"

	"reflow/pkg/geom"
	"reflow/pkg/images"
	"reflow/pkg/layout"
	"reflow/pkg/scroll"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// Options configure display-list emission.
type Options struct {
	// Scroll supplies live offsets for scroll-frame items. Nil means all
	// frames start at offset zero.
	Scroll *scroll.State

	// Images resolves natural sizes for object-fit and background-image
	// placement. Nil falls back to stretching into the box.
	Images *images.Cache

	// SubLists maps iframe nodes to their pre-built sub-display-lists
	// (already ID-remapped by the coordinator). The builder splices them
	// into the iframe's content box.
	SubLists map[Tag]*List
}

// Build walks the laid-out tree in paint order and emits the display list.
// Running elements are diverted into per-name side groups; repeating table
// headers are additionally recorded for per-page replay.
func Build(res *layout.Result, opts Options) *List {
	b := &builder{tree: res.Tree, opts: opts, list: &List{}}
	b.out = &b.list.Items

	b.running = make(map[layout.NodeIdx]string, len(res.Running))
	for _, rb := range res.Running {
		b.running[rb.Idx] = rb.Name
	}

	b.paint(res.Tree.Root)

	for _, rb := range res.Running {
		group := RunningGroup{Name: rb.Name}
		b.out = &group.Items
		b.paint(rb.Idx)
		b.list.Running = append(b.list.Running, group)
	}
	b.out = &b.list.Items
	return b.list
}

type builder struct {
	tree    *layout.Tree
	opts    Options
	list    *List
	out     *[]Item
	running map[layout.NodeIdx]string
}

func (b *builder) emit(it Item) {
	*b.out = append(*b.out, it)
}

func (b *builder) tag(n *layout.LayoutNode) Tag {
	if n.Data == nil {
		return Tag{Dom: b.tree.DomID, Node: styled.NilNode}
	}
	return Tag{Dom: b.tree.DomID, Node: n.DomNode}
}

// cornerRadii resolves the style's border radii against the border box.
func cornerRadii(st *styled.ComputedStyle, box geom.Rect) [4]float64 {
	var out [4]float64
	for i, v := range st.BorderRadius {
		out[i] = v.Resolve(box.Width, st.FontSize)
	}
	return out
}

func hasRadii(r [4]float64) bool {
	return r[0] != 0 || r[1] != 0 || r[2] != 0 || r[3] != 0
}

func needsEffect(st *styled.ComputedStyle) bool {
	return st.Opacity < 1 || st.MixBlendMode != styled.BlendNormal ||
		len(st.Filters) > 0 || len(st.BackdropFilters) > 0
}

// isStackingContext mirrors the CSS triggers the pipeline supports:
// positioned with an explicit z-index, opacity, transforms, blending and
// filters.
func isStackingContext(n *layout.LayoutNode) bool {
	st := n.Style
	if st == nil {
		return false
	}
	if st.Position.IsPositioned() {
		return true
	}
	return needsEffect(st) || len(st.Transform) > 0
}

// paint emits one box and its subtree. The box is treated as the root of
// its own paint unit: structural pushes, own decorations, children in the
// CSS paint bands, structural pops.
func (b *builder) paint(i layout.NodeIdx) {
	n := b.tree.Node(i)
	st := n.Style
	if st == nil || st.Display == styled.DisplayNone {
		return
	}
	box := n.BorderBox().Translate(n.RelOffset.X, n.RelOffset.Y)
	radii := cornerRadii(st, box)
	start := len(*b.out)

	var pops []Item

	if st.ClipPath != nil {
		shape := st.ClipPath.Resolve(box, st.FontSize)
		b.emit(PushClip{Bounds: box, Shape: &shape})
		pops = append(pops, PopClip{})
	}
	if st.OverflowX != styled.OverflowVisible || st.OverflowY != styled.OverflowVisible {
		pad := n.PaddingBox().Translate(n.RelOffset.X, n.RelOffset.Y)
		b.emit(PushClip{Bounds: pad, Radii: radii})
		pops = append(pops, PopClip{})
	}
	if len(st.Transform) > 0 {
		b.emit(PushTransform{Matrix: resolveTransform(st, box)})
		pops = append(pops, PopTransform{})
	}
	if needsEffect(st) {
		b.emit(PushEffect{
			Opacity:  st.Opacity,
			Blend:    st.MixBlendMode,
			Filters:  st.Filters,
			Backdrop: st.BackdropFilters,
		})
		pops = append(pops, PopEffect{})
	}
	if n.ScrollID != 0 {
		var off scroll.Offset
		if b.opts.Scroll != nil {
			off = b.opts.Scroll.Get(n.ScrollID)
		}
		b.emit(PushScrollFrame{
			ID:      n.ScrollID,
			Clip:    n.PaddingBox().Translate(n.RelOffset.X, n.RelOffset.Y),
			Content: b.contentUnion(i),
			Offset:  off,
		})
		pops = append(pops, PopScrollFrame{})
	}

	blockKids, inlineKids, floatKids, contexts := b.partition(i)

	// Negative z-index stacking contexts paint before the background.
	for _, c := range contexts {
		if zIndexOf(b.tree.Node(c)) < 0 {
			b.paint(c)
		}
	}

	b.emitShadows(n, box, radii)
	b.emitBackground(n, box, radii)
	b.emitBorder(n, box, radii)
	b.emitReplaced(n, st)

	for _, c := range blockKids {
		b.paint(c)
	}
	for _, c := range floatKids {
		b.paint(c)
	}
	b.emitLines(n)
	for _, c := range inlineKids {
		b.paint(c)
	}
	for _, c := range contexts {
		if zIndexOf(b.tree.Node(c)) >= 0 {
			b.paint(c)
		}
	}

	for k := len(pops) - 1; k >= 0; k-- {
		b.emit(pops[k])
	}

	b.recordRepeatHeader(i, start)
}

func zIndexOf(n *layout.LayoutNode) int {
	if n.Style == nil || !n.Style.ZIndexSet {
		return 0
	}
	return n.Style.ZIndex
}

// partition buckets the children into the paint bands: in-flow block
// boxes, in-flow inline-level boxes, floats, and stacking contexts (sorted
// stable by z-index so document order breaks ties).
func (b *builder) partition(i layout.NodeIdx) (blocks, inlines, floats, contexts []layout.NodeIdx) {
	for c := b.tree.Node(i).FirstChild; c != layout.NilIdx; c = b.tree.Node(c).NextSibling {
		cn := b.tree.Node(c)
		st := cn.Style
		if st == nil || st.Display == styled.DisplayNone {
			continue
		}
		if _, isRunning := b.running[c]; isRunning || st.Position == styled.PositionRunning {
			continue
		}
		switch {
		case isStackingContext(cn):
			contexts = append(contexts, c)
		case st.Float != styled.FloatNone:
			floats = append(floats, c)
		case st.Display.IsInlineLevel() || cn.Words != nil:
			inlines = append(inlines, c)
		default:
			blocks = append(blocks, c)
		}
	}
	sort.SliceStable(contexts, func(a, z int) bool {
		return zIndexOf(b.tree.Node(contexts[a])) < zIndexOf(b.tree.Node(contexts[z]))
	})
	return
}

// contentUnion is the scrollable extent of a scroll container: the union
// of its children's margin boxes.
func (b *builder) contentUnion(i layout.NodeIdx) geom.Rect {
	var u geom.Rect
	for c := b.tree.Node(i).FirstChild; c != layout.NilIdx; c = b.tree.Node(c).NextSibling {
		u = u.Union(b.tree.Node(c).MarginBox())
	}
	return u
}

func (b *builder) emitShadows(n *layout.LayoutNode, box geom.Rect, radii [4]float64) {
	for _, s := range n.Style.Shadows {
		if s.Inset {
			continue
		}
		r := box.Translate(s.OffsetX, s.OffsetY).Outset(geom.UniformEdges(s.Spread))
		b.emit(Shadow{Tag: b.tag(n), Bounds: r, Color: s.Color, Blur: s.Blur, Radii: radii})
	}
}

// emitBackground paints the background area (padding box plus border, i.e.
// the border box): color first, then the declared layers bottom-up.
func (b *builder) emitBackground(n *layout.LayoutNode, box geom.Rect, radii [4]float64) {
	bg := n.Style.Background
	if !bg.Color.IsTransparent() {
		b.emit(Rect{Tag: b.tag(n), Bounds: box, Color: bg.Color, Radii: radii})
	}
	for _, layer := range bg.Layers {
		if layer.Gradient != nil {
			b.emit(Gradient{Tag: b.tag(n), Bounds: box, Gradient: *layer.Gradient, Radii: radii})
			continue
		}
		if layer.ImageSource == "" {
			continue
		}
		b.emit(Image{
			Tag:    b.tag(n),
			Bounds: box,
			Dest:   b.backgroundDest(layer, box),
			Source: layer.ImageSource,
			Repeat: layer.Repeat,
		})
	}
	for _, s := range n.Style.Shadows {
		if s.Inset {
			r := box.Translate(s.OffsetX, s.OffsetY).Inset(geom.UniformEdges(s.Spread))
			b.emit(Shadow{Tag: b.tag(n), Bounds: r, Color: s.Color, Blur: s.Blur, Radii: radii, Inset: true})
		}
	}
}

// backgroundDest sizes and positions one image layer inside the painting
// area per background-size and the position fractions.
func (b *builder) backgroundDest(layer styled.BackgroundLayer, area geom.Rect) geom.Rect {
	natural := area.Size()
	if b.opts.Images != nil {
		if w, h, ok := b.opts.Images.Dimensions(layer.ImageSource); ok {
			natural = geom.Size{Width: float64(w), Height: float64(h)}
		}
	}
	var size geom.Size
	switch layer.SizeKind {
	case styled.BackgroundSizeExplicit:
		size = layer.Size
	case styled.BackgroundSizeCover:
		fit := layout.FitObject(styled.ObjectFitCover, area.Size(), natural)
		size = fit.Size()
	case styled.BackgroundSizeContain:
		fit := layout.FitObject(styled.ObjectFitContain, area.Size(), natural)
		size = fit.Size()
	default:
		size = natural
	}
	return geom.Rect{
		X:      area.X + (area.Width-size.Width)*layer.PositionX,
		Y:      area.Y + (area.Height-size.Height)*layer.PositionY,
		Width:  size.Width,
		Height: size.Height,
	}
}

func (b *builder) emitBorder(n *layout.LayoutNode, box geom.Rect, radii [4]float64) {
	w := n.Box.Border
	if w.Top == 0 && w.Right == 0 && w.Bottom == 0 && w.Left == 0 {
		return
	}
	st := n.Style
	b.emit(Border{
		Tag:    b.tag(n),
		Bounds: box,
		Widths: w,
		Colors: st.BorderColor,
		Styles: st.BorderStyle,
		Radii:  radii,
	})
}

// emitReplaced paints image content, GL textures and iframe sub-lists into
// the content box.
func (b *builder) emitReplaced(n *layout.LayoutNode, st *styled.ComputedStyle) {
	if n.Data == nil {
		return
	}
	content := geom.RectFrom(n.ContentOrigin(), n.Content).
		Translate(n.RelOffset.X, n.RelOffset.Y)
	switch n.Data.Type {
	case styled.ImageNode:
		natural := content.Size()
		if b.opts.Images != nil {
			if w, h, ok := b.opts.Images.Dimensions(n.Data.ImageSource); ok {
				natural = geom.Size{Width: float64(w), Height: float64(h)}
			}
		}
		dest := layout.FitObject(st.ObjectFit, content.Size(), natural).
			Translate(content.X, content.Y)
		b.emit(Image{Tag: b.tag(n), Bounds: content, Dest: dest, Source: n.Data.ImageSource})
	case styled.GLNode:
		if n.Data.GL == nil {
			return
		}
		handle := n.Data.GL(content.Size())
		b.emit(Image{Tag: b.tag(n), Bounds: content, Dest: content, Texture: handle})
	case styled.IFrameNode:
		sub, ok := b.opts.SubLists[b.tag(n)]
		if !ok {
			return
		}
		b.emit(PushClip{Bounds: content})
		for _, it := range sub.Items {
			b.emit(translateItem(it, content.X, content.Y))
		}
		b.emit(PopClip{})
	}
}

// emitLines paints the inline content of a container: one text item per
// non-atomic fragment. Atomic fragments are real child boxes and paint in
// the inline band of the recursion instead.
func (b *builder) emitLines(n *layout.LayoutNode) {
	for _, line := range n.Lines {
		for _, frag := range line.Fragments {
			if frag.Atomic || frag.Text == "" {
				continue
			}
			fn := b.tree.Node(frag.Node)
			st := fn.Style
			if st == nil {
				st = n.Style
			}
			b.emit(Text{
				Tag:    b.tag(fn),
				Bounds: frag.Rect,
				Color:  st.Color,
				Face:   faceOf(st),
				Glyphs: []Glyph{{Text: frag.Text, X: frag.Rect.X, Y: frag.Rect.Y + frag.Ascent}},
			})
		}
	}
}

// recordRepeatHeader registers a repeating table-header-group's emitted
// item range for per-page replay, with the owning table's extent so the
// replay stops on the table's last page.
func (b *builder) recordRepeatHeader(i layout.NodeIdx, start int) {
	n := b.tree.Node(i)
	st := n.Style
	if st == nil || st.Display != styled.DisplayTableHeaderGroup || !st.RepeatTableHeader {
		return
	}
	if b.out != &b.list.Items {
		return
	}
	table := n.Parent
	for table != layout.NilIdx && b.tree.Node(table).Style.Display != styled.DisplayTable {
		table = b.tree.Node(table).Parent
	}
	bottom := n.BorderBox().Bottom()
	if table != layout.NilIdx {
		bottom = b.tree.Node(table).BorderBox().Bottom()
	}
	b.list.Repeats = append(b.list.Repeats, RepeatGroup{
		Items:       append([]Item(nil), (*b.out)[start:]...),
		HeaderY:     n.BorderBox().Y,
		TableBottom: bottom,
	})
}

func faceOf(st *styled.ComputedStyle) text.FaceRequest {
	return text.FaceRequest{
		Families: st.FontFamilies,
		Size:     st.FontSize,
		Bold:     st.FontWeight.IsBold(),
		Italic:   st.FontStyle == styled.FontStyleItalic,
		Mono:     st.Monospace,
	}
}
