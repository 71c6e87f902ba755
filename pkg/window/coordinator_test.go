package window

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/pkg/display"
	"reflow/pkg/geom"
	"reflow/pkg/images"
	"reflow/pkg/layout"
	"reflow/pkg/report"
	"reflow/pkg/scroll"
	"reflow/pkg/styled"
	"reflow/pkg/text"
)

type recordingSink struct {
	lists []*display.List
}

func (r *recordingSink) Submit(l *display.List) { r.lists = append(r.lists, l) }

func testEngine() *layout.Engine {
	return layout.NewEngine(text.NewPlaceholderManager(), images.NewCache(nil), nil)
}

func coloredDiv(dom *styled.Dom, w, h float64, mods ...func(*styled.ComputedStyle)) styled.NodeID {
	s := styled.DefaultBlock()
	s.Width = geom.Px(w)
	s.Height = geom.Px(h)
	s.Background.Color = geom.RGB(10, 20, 30)
	for _, m := range mods {
		m(s)
	}
	return dom.AddElement(dom.Root(), "div", s)
}

func viewport() State {
	return State{Size: geom.Size{Width: 800, Height: 600}}
}

func TestFrameSubmitsDisplayList(t *testing.T) {
	sink := &recordingSink{}
	co := NewCoordinator(testEngine(), sink, func(info LayoutInfo) *styled.Dom {
		dom := styled.NewBody(1)
		coloredDiv(dom, 200, 100)
		return dom
	}, Options{})

	require.NoError(t, co.Frame(viewport()))

	require.Len(t, sink.lists, 1)
	assert.NotEmpty(t, sink.lists[0].Items)
	assert.Same(t, sink.lists[0], co.LastList())
}

func TestLayoutInfoCarriesWindowState(t *testing.T) {
	var got LayoutInfo
	co := NewCoordinator(testEngine(), &recordingSink{}, func(info LayoutInfo) *styled.Dom {
		got = info
		return styled.NewBody(1)
	}, Options{Scale: 2})

	cur := viewport()
	cur.Theme = ThemeDark
	require.NoError(t, co.Frame(cur))

	assert.Equal(t, cur.Size, got.Viewport)
	assert.Equal(t, ThemeDark, got.Theme)
	assert.Equal(t, 2.0, got.Scale)
	assert.Equal(t, uint64(1), got.Frame)
}

func TestRequestRefreshReSolvesSameFrame(t *testing.T) {
	var co *Coordinator
	calls := 0
	sink := &recordingSink{}
	co = NewCoordinator(testEngine(), sink, func(info LayoutInfo) *styled.Dom {
		calls++
		if calls == 1 {
			co.RequestRefresh()
		}
		dom := styled.NewBody(1)
		coloredDiv(dom, 200, 100)
		return dom
	}, Options{})

	require.NoError(t, co.Frame(viewport()))

	assert.Equal(t, 2, calls, "refresh should re-run layout within the frame")
	assert.Len(t, sink.lists, 1, "only the final list is submitted")
}

func TestRefreshRetryLimitIsBounded(t *testing.T) {
	var co *Coordinator
	calls := 0
	reports := report.NewChannel(nil)
	co = NewCoordinator(testEngine(), &recordingSink{}, func(info LayoutInfo) *styled.Dom {
		calls++
		co.RequestRefresh()
		return styled.NewBody(1)
	}, Options{MaxRefreshRetries: 2, Reports: reports})

	require.NoError(t, co.Frame(viewport()))

	assert.Equal(t, 3, calls)
	warned := false
	for _, m := range reports.Recent() {
		if strings.Contains(m.Text, "retry limit") {
			warned = true
		}
	}
	assert.True(t, warned, "hitting the retry limit must leave a warning")
}

func TestScrollEventMovesContainerOffset(t *testing.T) {
	sink := &recordingSink{}
	co := NewCoordinator(testEngine(), sink, func(info LayoutInfo) *styled.Dom {
		dom := styled.NewBody(1)
		sc := coloredDiv(dom, 200, 100, func(s *styled.ComputedStyle) {
			s.OverflowY = styled.OverflowScroll
		})
		tall := styled.DefaultBlock()
		tall.Width = geom.Px(200)
		tall.Height = geom.Px(300)
		dom.AddElement(sc, "div", tall)
		return dom
	}, Options{})

	require.NoError(t, co.Frame(viewport()))

	cur := viewport()
	pos := geom.Point{X: 50, Y: 50}
	cur.Mouse = MouseState{CursorPosition: &pos, ScrollY: 50}
	require.NoError(t, co.Frame(cur))

	id := scroll.DeriveID(1, &styled.NodeData{Type: styled.ElementNode, Tag: "div"})
	assert.Equal(t, 50.0, co.Scroll().Get(id).Y)

	// A second identical wheel tick clamps at the scrollable range.
	next := cur
	require.NoError(t, co.Frame(next))
	next.Mouse.ScrollY = 500
	require.NoError(t, co.Frame(next))
	assert.Equal(t, 200.0, co.Scroll().Get(id).Y)
}

func TestFatalLayoutErrorKeepsPreviousFrame(t *testing.T) {
	broken := false
	sink := &recordingSink{}
	co := NewCoordinator(testEngine(), sink, func(info LayoutInfo) *styled.Dom {
		if broken {
			none := styled.DefaultBlock()
			none.Display = styled.DisplayNone
			return styled.NewDom(2, styled.NodeData{Type: styled.ElementNode, Tag: "body"}, none)
		}
		dom := styled.NewBody(1)
		coloredDiv(dom, 200, 100)
		return dom
	}, Options{})

	require.NoError(t, co.Frame(viewport()))
	require.Len(t, sink.lists, 1)

	broken = true
	err := co.Frame(viewport())
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrInvalidStyledDom))

	// The sink got the last good list again, and it stays current.
	require.Len(t, sink.lists, 2)
	assert.Same(t, sink.lists[0], sink.lists[1])
	assert.Same(t, sink.lists[0], co.LastList())
}

func TestExhaustedBudgetReusesPreviousLayout(t *testing.T) {
	calls := 0
	sink := &recordingSink{}
	reports := report.NewChannel(nil)
	co := NewCoordinator(testEngine(), sink, func(info LayoutInfo) *styled.Dom {
		calls++
		dom := styled.NewBody(1)
		coloredDiv(dom, 200, 100)
		return dom
	}, Options{FrameBudget: time.Nanosecond, Reports: reports})

	require.NoError(t, co.Frame(viewport()))
	require.Equal(t, 1, calls)

	require.NoError(t, co.Frame(viewport()))
	assert.Equal(t, 1, calls, "second frame reuses the previous layout")
	require.Len(t, sink.lists, 2)
	assert.Same(t, sink.lists[0], sink.lists[1])
}

func TestEventDispatchSeesPreviousFrameHits(t *testing.T) {
	var target styled.NodeID
	sink := &recordingSink{}
	co := NewCoordinator(testEngine(), sink, func(info LayoutInfo) *styled.Dom {
		dom := styled.NewBody(1)
		target = coloredDiv(dom, 200, 100)
		return dom
	}, Options{})

	var gotHits []display.Hit
	co.SetEventHandler(func(ev Event, hits []display.Hit) Response {
		if ev.Kind == LeftMouseDown {
			gotHits = hits
		}
		return Response{}
	})

	require.NoError(t, co.Frame(viewport()))

	cur := viewport()
	pos := geom.Point{X: 50, Y: 50}
	cur.Mouse = MouseState{CursorPosition: &pos, LeftDown: true}
	require.NoError(t, co.Frame(cur))

	require.NotEmpty(t, gotHits)
	assert.Equal(t, target, gotHits[0].Tag.Node)
}
