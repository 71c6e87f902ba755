package edit

import (
	"errors"
	"time"

	"github.com/rivo/uniseg"

	"reflow/pkg/text"
)

var (
	// ErrAlreadyApplied rejects applying one changeset twice.
	ErrAlreadyApplied = errors.New("edit: changeset already applied")
	// ErrCancelled is returned when the apply interceptor vetoes.
	ErrCancelled = errors.New("edit: changeset cancelled")
	// ErrNothingSelected rejects Copy and Cut with an empty selection.
	ErrNothingSelected = errors.New("edit: nothing selected")
	// ErrWrongTarget rejects a changeset created for another node.
	ErrWrongTarget = errors.New("edit: changeset targets a different node")
)

// Editor owns one editable text buffer: its segmented content, caret and
// selection, a clipboard collaborator, and the undo history. Mutations go
// through Create then Apply.
type Editor struct {
	target    Target
	words     *text.Words
	cursor    text.Cursor
	selection *text.SelectionRange
	clipboard Clipboard
	history   *history
	intercept func(*TextChangeset) bool
	nextID    ChangesetID
	now       func() time.Time
}

func NewEditor(target Target, content string, clip Clipboard) *Editor {
	if clip == nil {
		clip = NewMemoryClipboard()
	}
	return &Editor{
		target:    target,
		words:     text.NewWords(content),
		clipboard: clip,
		history:   newHistory(DefaultHistoryLimit),
		now:       time.Now,
	}
}

func (e *Editor) Target() Target     { return e.target }
func (e *Editor) Text() string       { return e.words.Text }
func (e *Editor) Words() *text.Words { return e.words }
func (e *Editor) Cursor() text.Cursor {
	return e.cursor
}

// Selection returns the active selection, or false when collapsed.
func (e *Editor) Selection() (text.SelectionRange, bool) {
	if e.selection == nil || e.selection.IsEmpty() {
		return text.SelectionRange{}, false
	}
	return e.selection.Normalized(), true
}

// SelectedText returns the text under the selection.
func (e *Editor) SelectedText() string {
	sel, ok := e.Selection()
	if !ok {
		return ""
	}
	return e.words.Substring(sel.Start.Cluster, sel.End.Cluster)
}

// SetInterceptor installs a hook consulted before every Apply; returning
// false cancels the changeset.
func (e *Editor) SetInterceptor(fn func(*TextChangeset) bool) { e.intercept = fn }

// Create builds a changeset without touching the buffer. It snapshots
// the caret state and, for mutating ops, resolves the affected cluster
// span and the text it will remove, so the inverse is derivable and the
// later Apply is deterministic. Paste captures the clipboard here.
func (e *Editor) Create(op Op) (*TextChangeset, error) {
	cs := &TextChangeset{
		ID:         e.nextID,
		Target:     e.target,
		Op:         op,
		Timestamp:  e.now(),
		prevCursor: e.cursor,
	}
	if e.selection != nil {
		sel := *e.selection
		cs.prevSelection = &sel
	}
	e.nextID++

	switch op.Kind {
	case InsertText:
		cs.removeStart, cs.removed = e.selectedSpan()
		cs.insert = op.Text
	case ReplaceText:
		cs.removeStart, cs.removed = e.selectedSpan()
		cs.insert = op.Text
	case DeleteText:
		if start, removed := e.selectedSpan(); removed != "" {
			cs.removeStart, cs.removed = start, removed
		} else if p := e.insertionPoint(); p > 0 {
			// Backspace: remove the cluster before the caret.
			cs.removeStart = p - 1
			cs.removed = e.words.Substring(p-1, p)
		}
	case Copy:
		if e.SelectedText() == "" {
			return nil, ErrNothingSelected
		}
		cs.clip = e.SelectedText()
	case Cut:
		start, removed := e.selectedSpan()
		if removed == "" {
			return nil, ErrNothingSelected
		}
		cs.removeStart, cs.removed = start, removed
		cs.clip = removed
	case Paste:
		pasted, err := e.clipboard.ReadText()
		if err != nil {
			return nil, err
		}
		cs.removeStart, cs.removed = e.selectedSpan()
		cs.insert = pasted
	}
	return cs, nil
}

// Apply performs a created changeset. The interceptor may cancel it; a
// cancelled or failed changeset leaves the buffer untouched. Applied
// changesets enter the undo history (except Copy) and clear redo.
func (e *Editor) Apply(cs *TextChangeset) error {
	if cs.applied {
		return ErrAlreadyApplied
	}
	if cs.Target != e.target {
		return ErrWrongTarget
	}
	if e.intercept != nil && !e.intercept(cs) {
		return ErrCancelled
	}
	if err := e.perform(cs); err != nil {
		return err
	}
	if cs.Op.Kind.undoable() {
		e.history.record(cs)
	}
	return nil
}

// Undo reverts the most recent changeset by applying its inverse.
func (e *Editor) Undo() bool {
	cs, ok := e.history.popUndo()
	if !ok {
		return false
	}
	if err := e.perform(cs.Inverse()); err != nil {
		return false
	}
	e.history.pushRedo(cs)
	return true
}

// Redo replays the most recently undone changeset.
func (e *Editor) Redo() bool {
	cs, ok := e.history.popRedo()
	if !ok {
		return false
	}
	replay := *cs
	replay.applied = false
	if err := e.perform(&replay); err != nil {
		return false
	}
	e.history.pushUndo(cs)
	return true
}

// CanUndo and CanRedo report history availability.
func (e *Editor) CanUndo() bool { return len(e.history.undo) > 0 }
func (e *Editor) CanRedo() bool { return len(e.history.redo) > 0 }

// perform executes a changeset against the buffer without history
// bookkeeping.
func (e *Editor) perform(cs *TextChangeset) error {
	switch cs.Op.Kind {
	case InsertText, DeleteText, ReplaceText, Cut, Paste:
		if cs.Op.Kind == Cut {
			if err := e.clipboard.WriteText(cs.clip); err != nil {
				return err
			}
		}
		e.splice(cs)
	case Copy:
		if err := e.clipboard.WriteText(cs.clip); err != nil {
			return err
		}
	case SetSelection:
		sel := e.clampRange(cs.Op.Range)
		e.selection = &sel
		e.cursor = sel.End
	case ExtendSelection:
		anchor := e.cursor
		if e.selection != nil {
			anchor = e.selection.Start
		}
		to := e.clampCursor(cs.Op.Cursor)
		e.selection = &text.SelectionRange{Start: anchor, End: to}
		e.cursor = to
	case ClearSelection:
		e.selection = nil
	case MoveCursor:
		e.cursor = e.clampCursor(cs.Op.Cursor)
		e.selection = nil
	case SelectAll:
		all := text.SelectionRange{
			End: text.Cursor{Cluster: e.words.ClusterCount()},
		}
		e.selection = &all
		e.cursor = all.End
	}

	if cs.restoreCaret {
		e.cursor = cs.prevCursor
		e.selection = nil
		if cs.prevSelection != nil {
			sel := *cs.prevSelection
			e.selection = &sel
		}
	}
	cs.applied = true
	return nil
}

// splice removes the snapshot span and inserts the snapshot text, then
// re-segments. The caret lands after the inserted text.
func (e *Editor) splice(cs *TextChangeset) {
	start := cs.removeStart
	end := start + uniseg.GraphemeClusterCount(cs.removed)
	startByte := e.clusterByte(start)
	endByte := e.clusterByte(end)

	e.words = text.NewWords(e.words.Text[:startByte] + cs.insert + e.words.Text[endByte:])
	e.cursor = text.Cursor{Cluster: start + uniseg.GraphemeClusterCount(cs.insert)}
	e.selection = nil
}

// clusterByte maps a cluster index to its starting byte offset; an index
// past the last cluster maps to the end of the string.
func (e *Editor) clusterByte(i int) int {
	if i >= len(e.words.Clusters) {
		return len(e.words.Text)
	}
	if i < 0 {
		return 0
	}
	return e.words.Clusters[i].Start
}

// insertionPoint maps the caret to a cluster index, folding affinity.
func (e *Editor) insertionPoint() int {
	p := e.cursor.Cluster
	if e.cursor.Affinity == text.AffinityTrailing {
		p++
	}
	if n := e.words.ClusterCount(); p > n {
		p = n
	}
	if p < 0 {
		p = 0
	}
	return p
}

// selectedSpan resolves the active selection to a cluster span and its
// text. A collapsed selection yields the caret's point and empty text.
func (e *Editor) selectedSpan() (int, string) {
	sel, ok := e.Selection()
	if !ok {
		return e.insertionPoint(), ""
	}
	return sel.Start.Cluster, e.words.Substring(sel.Start.Cluster, sel.End.Cluster)
}

func (e *Editor) clampCursor(c text.Cursor) text.Cursor {
	if n := e.words.ClusterCount(); c.Cluster > n {
		c.Cluster = n
		c.Affinity = text.AffinityLeading
	}
	if c.Cluster < 0 {
		c.Cluster = 0
	}
	return c
}

func (e *Editor) clampRange(r text.SelectionRange) text.SelectionRange {
	r.Start = e.clampCursor(r.Start)
	r.End = e.clampCursor(r.End)
	return r.Normalized()
}
