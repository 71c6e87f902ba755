package edit

// DefaultHistoryLimit bounds the undo stack.
const DefaultHistoryLimit = 100

// history holds applied changesets for undo and redo. Both stacks are
// bounded; pushing onto a full undo stack drops the oldest entry.
type history struct {
	limit int
	undo  []*TextChangeset
	redo  []*TextChangeset
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &history{limit: limit}
}

// record stores a freshly applied changeset and invalidates redo.
func (h *history) record(cs *TextChangeset) {
	if len(h.undo) >= h.limit {
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:len(h.undo)-1]
	}
	h.undo = append(h.undo, cs)
	h.redo = h.redo[:0]
}

func (h *history) popUndo() (*TextChangeset, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	cs := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return cs, true
}

func (h *history) popRedo() (*TextChangeset, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	cs := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return cs, true
}

func (h *history) pushRedo(cs *TextChangeset) {
	if len(h.redo) >= h.limit {
		copy(h.redo, h.redo[1:])
		h.redo = h.redo[:len(h.redo)-1]
	}
	h.redo = append(h.redo, cs)
}

func (h *history) pushUndo(cs *TextChangeset) {
	if len(h.undo) >= h.limit {
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:len(h.undo)-1]
	}
	h.undo = append(h.undo, cs)
}
