package layout

import (
	"fmt"

	"reflow/pkg/styled"
)

// counterSet implements CSS counter scoping (CSS 2.2 §12.4). Each element
// that resets a counter opens a scope for it; descendants increment the
// innermost scope. The implicit "list-item" counter numbers list items.
type counterSet struct {
	scopes []map[string]int
}

func newCounterSet() *counterSet {
	return &counterSet{scopes: []map[string]int{{}}}
}

func (c *counterSet) push() {
	c.scopes = append(c.scopes, map[string]int{})
}

func (c *counterSet) pop() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// apply processes an element's counter-reset then counter-increment lists,
// in that order.
func (c *counterSet) apply(st *styled.ComputedStyle) {
	for _, op := range st.CounterResets {
		c.scopes[len(c.scopes)-1][op.Name] = op.Value
	}
	for _, op := range st.CounterIncrements {
		c.increment(op.Name, op.Value)
	}
}

// increment bumps the innermost scope that defines the counter, creating
// it at the current scope when none does.
func (c *counterSet) increment(name string, by int) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if _, ok := c.scopes[i][name]; ok {
			c.scopes[i][name] += by
			return
		}
	}
	c.scopes[len(c.scopes)-1][name] = by
}

func (c *counterSet) value(name string) int {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v
		}
	}
	return 0
}

// marker produces the marker text for a list item, advancing the implicit
// list-item counter unless the element's own increments already did.
func (c *counterSet) marker(st *styled.ComputedStyle) string {
	explicit := false
	for _, op := range st.CounterIncrements {
		if op.Name == "list-item" {
			explicit = true
		}
	}
	if !explicit {
		c.increment("list-item", 1)
	}
	return fmt.Sprintf("%d. ", c.value("list-item"))
}
