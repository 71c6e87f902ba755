// Package edit implements changeset-based text mutation. Every edit is a
// TextChangeset built in two phases: Create inspects the buffer and
// produces a pure description (including the text it will remove, so the
// inverse is derivable), and Apply performs it after the application has
// had the chance to cancel. Caret and selection boundaries always align
// to grapheme clusters.
package edit

import (
	"time"

	"reflow/pkg/styled"
	"reflow/pkg/text"
)

// ChangesetID numbers changesets per editor instance, from zero.
type ChangesetID uint64

// Target names the text node a changeset edits.
type Target struct {
	Dom  styled.DomID
	Node styled.NodeID
}

// OpKind is the changeset operation.
type OpKind uint8

const (
	InsertText OpKind = iota
	DeleteText
	ReplaceText
	SetSelection
	ExtendSelection
	ClearSelection
	MoveCursor
	Copy
	Cut
	Paste
	SelectAll
)

func (k OpKind) String() string {
	switch k {
	case InsertText:
		return "insert-text"
	case DeleteText:
		return "delete-text"
	case ReplaceText:
		return "replace-text"
	case SetSelection:
		return "set-selection"
	case ExtendSelection:
		return "extend-selection"
	case ClearSelection:
		return "clear-selection"
	case MoveCursor:
		return "move-cursor"
	case Copy:
		return "copy"
	case Cut:
		return "cut"
	case Paste:
		return "paste"
	case SelectAll:
		return "select-all"
	}
	return "unknown"
}

// mutates reports whether the operation changes buffer text. Only
// mutating changesets enter the undo history; pure selection and cursor
// moves are recorded too so undo restores them, but Copy is not.
func (k OpKind) mutates() bool {
	switch k {
	case InsertText, DeleteText, ReplaceText, Cut, Paste:
		return true
	}
	return false
}

// undoable reports whether the operation belongs in the history.
func (k OpKind) undoable() bool {
	return k != Copy
}

// Op is the operation payload of a changeset.
type Op struct {
	Kind OpKind
	// Text is the insertion payload for InsertText and ReplaceText.
	Text string
	// Cursor is the destination for MoveCursor and ExtendSelection.
	Cursor text.Cursor
	// Range is the requested selection for SetSelection.
	Range text.SelectionRange
}

// TextChangeset is one created edit. The create phase fills the snapshot
// fields so Apply is deterministic and Inverse needs no buffer access.
type TextChangeset struct {
	ID        ChangesetID
	Target    Target
	Op        Op
	Timestamp time.Time

	// Snapshot taken at create time.
	removeStart   int // cluster index
	removed       string
	insert        string
	clip          string // Copy/Cut clipboard payload
	prevCursor    text.Cursor
	prevSelection *text.SelectionRange

	// restoreCaret makes Apply reinstate prevCursor/prevSelection after
	// the mutation; set on inverses so undo lands where the edit began.
	restoreCaret bool
	applied      bool
}

// Removed returns the text this changeset deletes from the buffer.
func (cs *TextChangeset) Removed() string { return cs.removed }

// Inserted returns the text this changeset adds to the buffer. For Paste
// this is the clipboard content captured at create time.
func (cs *TextChangeset) Inserted() string { return cs.insert }

// Applied reports whether Apply has run.
func (cs *TextChangeset) Applied() bool { return cs.applied }

// Inverse derives the changeset that undoes an applied one. The inverse
// of an insertion deletes the inserted range, the inverse of a deletion
// re-inserts the removed text, and selection ops restore the prior caret
// state. The inverse carries the same ID with applied state cleared.
func (cs *TextChangeset) Inverse() *TextChangeset {
	inv := &TextChangeset{
		ID:        cs.ID,
		Target:    cs.Target,
		Timestamp: cs.Timestamp,
	}
	switch {
	case cs.insert != "" && cs.removed != "":
		inv.Op = Op{Kind: ReplaceText, Text: cs.removed}
		inv.removeStart = cs.removeStart
		inv.removed = cs.insert
		inv.insert = cs.removed
	case cs.insert != "":
		inv.Op = Op{Kind: DeleteText}
		inv.removeStart = cs.removeStart
		inv.removed = cs.insert
	case cs.removed != "":
		inv.Op = Op{Kind: InsertText, Text: cs.removed}
		inv.removeStart = cs.removeStart
		inv.insert = cs.removed
	default:
		// Pure caret/selection op: restoring the snapshot is the whole
		// inverse.
		inv.Op = Op{Kind: MoveCursor, Cursor: cs.prevCursor}
		if cs.prevSelection != nil {
			sel := *cs.prevSelection
			inv.Op = Op{Kind: SetSelection, Range: sel}
		}
	}
	inv.prevCursor = cs.prevCursor
	inv.prevSelection = cs.prevSelection
	inv.restoreCaret = true
	return inv
}
