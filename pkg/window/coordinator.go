package window

import (
	"time"

	"reflow/pkg/display"
	"reflow/pkg/geom"
	"reflow/pkg/layout"
	"reflow/pkg/report"
	"reflow/pkg/scroll"
	"reflow/pkg/styled"
)

const (
	// DefaultFrameBudget caps the callback-plus-layout phase of one frame.
	DefaultFrameBudget = 250 * time.Millisecond
	// DefaultMaxRefreshRetries bounds same-frame RefreshDom loops.
	DefaultMaxRefreshRetries = 5
)

// Options parameterise a coordinator.
type Options struct {
	FrameBudget       time.Duration
	MaxRefreshRetries int
	Scale             float64
	// PageSize enables paged output when non-zero.
	PageSize   geom.Size
	PageMargin geom.Edges

	// PageHeader and PageFooter reserve per-page running-element bands.
	PageHeader float64
	PageFooter float64
	Reports    *report.Channel
}

func (o Options) budget() time.Duration {
	if o.FrameBudget <= 0 {
		return DefaultFrameBudget
	}
	return o.FrameBudget
}

func (o Options) retries() int {
	if o.MaxRefreshRetries <= 0 {
		return DefaultMaxRefreshRetries
	}
	return o.MaxRefreshRetries
}

// LayoutInfo is what the layout callback gets to build against.
type LayoutInfo struct {
	Viewport geom.Size
	Theme    Theme
	Scale    float64
	Frame    uint64
}

// LayoutFunc is the application's per-frame DOM builder. It must be
// non-blocking; the result is treated as an immutable snapshot.
type LayoutFunc func(info LayoutInfo) *styled.Dom

// Response is what an event handler returns to the coordinator.
type Response struct {
	// RefreshDom re-runs the layout callback within the same frame.
	RefreshDom bool
	Cursor     CursorShape
}

// EventFunc handles one synthesised event. hits is the display-list hit
// path under the cursor for pointer events, topmost first; empty
// otherwise.
type EventFunc func(ev Event, hits []display.Hit) Response

// Coordinator drives the frame pipeline. It is single-threaded: every
// method except the mailbox must be called from the UI thread.
type Coordinator struct {
	opts    Options
	engine  *layout.Engine
	cache   *layout.Cache
	scroll  *scroll.State
	mailbox *Mailbox
	sink    DisplaySink

	layoutFn LayoutFunc
	eventFn  EventFunc

	states map[styled.NodeID]styled.State

	prev     State
	prevRes  *layout.Result
	prevList *display.List
	frame    uint64
	refresh  bool
}

func NewCoordinator(engine *layout.Engine, sink DisplaySink, layoutFn LayoutFunc, opts Options) *Coordinator {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Coordinator{
		opts:     opts,
		engine:   engine,
		cache:    layout.NewCache(),
		scroll:   scroll.NewState(),
		mailbox:  NewMailbox(),
		sink:     sink,
		layoutFn: layoutFn,
	}
}

// SetEventHandler installs the application event handler. May be nil.
func (c *Coordinator) SetEventHandler(fn EventFunc) { c.eventFn = fn }

// Mailbox returns the background-thread writeback channel.
func (c *Coordinator) Mailbox() *Mailbox { return c.mailbox }

// Scroll returns the live scroll-offset state.
func (c *Coordinator) Scroll() *scroll.State { return c.scroll }

// LastList returns the most recently submitted display list.
func (c *Coordinator) LastList() *display.List { return c.prevList }

// SetNodeState switches a node's active pseudo-state (hover, active,
// focus). The styled DOM carries all state property sets pre-resolved, so
// this re-runs reconciliation, not restyling; only nodes whose effective
// properties changed go dirty.
func (c *Coordinator) SetNodeState(n styled.NodeID, st styled.State) {
	if st == styled.StateNormal {
		delete(c.states, n)
		return
	}
	if c.states == nil {
		c.states = make(map[styled.NodeID]styled.State)
	}
	c.states[n] = st
}

// RequestRefresh asks for another layout pass within the current frame.
// Event handlers, writeback callbacks and the layout callback itself may
// call it; the coordinator honours up to MaxRefreshRetries per frame.
func (c *Coordinator) RequestRefresh() { c.refresh = true }

// Frame runs one full frame against the new window state: writebacks,
// event synthesis, dispatch against the frame the user saw, then layout,
// display-list build and submit.
func (c *Coordinator) Frame(cur State) error {
	deadline := time.Now().Add(c.opts.budget())
	c.frame++

	for _, wb := range c.mailbox.Drain() {
		if wb.Callback != nil {
			wb.Callback(wb.Data)
		}
	}

	events := Synthesize(&c.prev, &cur)
	c.applyScrollEvents(events)
	if c.dispatch(events, c.prevList) {
		c.refresh = true
	}

	info := LayoutInfo{
		Viewport: cur.Size,
		Theme:    cur.Theme,
		Scale:    c.opts.Scale,
		Frame:    c.frame,
	}

	var (
		res  *layout.Result
		list *display.List
		err  error
	)
	for attempt := 0; ; attempt++ {
		c.refresh = false
		res, list, err = c.solve(info, deadline)
		if err != nil {
			// Fatal: keep showing the last good frame.
			c.report(report.TopicWindow, err)
			if c.prevList != nil {
				c.sink.Submit(c.prevList)
			}
			c.prev = cur
			return err
		}
		if !c.refresh {
			break
		}
		if attempt >= c.opts.retries() {
			if c.opts.Reports != nil {
				c.opts.Reports.Warnf(report.TopicWindow,
					"RefreshDom retry limit (%d) reached", c.opts.retries())
			}
			break
		}
	}

	c.sink.Submit(list)
	c.prev = cur
	c.prevRes = res
	c.prevList = list
	return nil
}

// solve runs the layout callback and the pipeline once. When the frame
// budget is already spent it falls back to the previous frame's layout
// and logs a warning instead of starting a pass that cannot finish.
func (c *Coordinator) solve(info LayoutInfo, deadline time.Time) (*layout.Result, *display.List, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 && c.prevRes != nil {
		if c.opts.Reports != nil {
			c.opts.Reports.Warnf(report.TopicWindow,
				"frame budget exhausted before layout; reusing previous frame")
		}
		return c.prevRes, c.prevList, nil
	}

	dom := c.layoutFn(info)
	res, err := c.engine.Layout(dom, c.cache, layout.Options{
		Viewport:   info.Viewport,
		PageSize:   c.opts.PageSize,
		PageMargin: c.opts.PageMargin,
		PageHeader: c.opts.PageHeader,
		PageFooter: c.opts.PageFooter,
		States:     c.states,
		Scroll:     c.scroll,
		Budget:     remaining,
	})
	if err != nil {
		return nil, nil, err
	}
	if res.Truncated && c.opts.Reports != nil {
		c.opts.Reports.Warnf(report.TopicWindow,
			"layout truncated by frame budget; geometry may be stale")
	}

	list := display.Build(res, display.Options{
		Scroll: c.scroll,
		Images: c.engine.Images,
	})
	return res, list, nil
}

// dispatch hands synthesised events to the application handler and
// reports whether any callback requested a DOM refresh.
func (c *Coordinator) dispatch(events []Event, list *display.List) bool {
	if c.eventFn == nil {
		return false
	}
	refresh := false
	for _, ev := range events {
		var hits []display.Hit
		if isPointerEvent(ev.Kind) && list != nil {
			hits = display.HitNodes(list, ev.Cursor)
		}
		resp := c.eventFn(ev, hits)
		refresh = refresh || resp.RefreshDom
	}
	return refresh
}

func isPointerEvent(k EventKind) bool {
	switch k {
	case LeftMouseDown, LeftMouseUp, MouseOver, MouseEnter, MouseLeave, Scroll:
		return true
	}
	return false
}

// applyScrollEvents routes wheel deltas to the innermost scroll container
// under the cursor, clamped to its content.
func (c *Coordinator) applyScrollEvents(events []Event) {
	if c.prevRes == nil {
		return
	}
	for _, ev := range events {
		if ev.Kind != Scroll {
			continue
		}
		if target, ok := scrollContainerAt(c.prevRes.ScrollContainers, ev.Cursor); ok {
			c.scroll.ScrollBy(target, ev.ScrollX, ev.ScrollY)
		}
	}
}

// scrollContainerAt picks the container under the point. With nesting the
// smallest containing padding box wins, which is the innermost one.
func scrollContainerAt(containers []scroll.Container, pt geom.Point) (scroll.Container, bool) {
	var best scroll.Container
	bestArea := 0.0
	found := false
	for _, sc := range containers {
		if !sc.ParentRect.Contains(pt) {
			continue
		}
		area := sc.ParentRect.Width * sc.ParentRect.Height
		if !found || area < bestArea {
			best, bestArea, found = sc, area, true
		}
	}
	return best, found
}

func (c *Coordinator) report(topic report.Topic, err error) {
	if c.opts.Reports == nil {
		return
	}
	if te, ok := err.(*report.Error); ok {
		c.opts.Reports.Report(topic, te)
		return
	}
	c.opts.Reports.Report(topic, report.Wrap(report.InvalidTree, "frame failed", err))
}

// Pages paginates the last frame for paged sinks. Returns nil when the
// coordinator is not in paged mode or no frame has been produced.
func (c *Coordinator) Pages() []display.Page {
	if c.prevRes == nil || c.prevList == nil ||
		c.opts.PageSize.Width <= 0 || c.opts.PageSize.Height <= 0 {
		return nil
	}
	frag := layout.NewFragmentationContext(c.opts.PageSize, c.opts.PageMargin).
		WithHeaderFooter(c.opts.PageHeader, c.opts.PageFooter)
	return display.Paginate(c.prevList, frag, c.prevRes.PageCount)
}
