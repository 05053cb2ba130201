package sections

import "fmt"

// Navigator tracks the active section over the currently visible section
// list and applies the editor's transition rules. It lives as long as the
// session; there is no terminal state.
type Navigator struct {
	showAdvanced   bool
	activeIndex    int
	preservedIndex int

	// gate decides whether forward navigation may leave the given section.
	gate func(Section) bool
}

// NewNavigator creates a navigator starting at the first section. The gate
// is consulted by Next only; sidebar jumps bypass it on purpose so users can
// inspect later sections without being blocked.
func NewNavigator(showAdvanced bool, gate func(Section) bool) *Navigator {
	if gate == nil {
		gate = func(Section) bool { return true }
	}
	return &Navigator{
		showAdvanced:   showAdvanced,
		preservedIndex: -1,
		gate:           gate,
	}
}

// Sections returns the currently visible section list.
func (n *Navigator) Sections() []Section {
	return Visible(n.showAdvanced)
}

// ActiveIndex returns the index of the active section within the visible
// list.
func (n *Navigator) ActiveIndex() int {
	return n.activeIndex
}

// Active returns the active section.
func (n *Navigator) Active() Section {
	return n.Sections()[n.activeIndex]
}

// ShowAdvanced reports whether advanced sections are in the visible list.
func (n *Navigator) ShowAdvanced() bool {
	return n.showAdvanced
}

// Next advances to the following section. Movement is blocked when the
// current section fails its validation gate; at the last section Next is a
// no-op. Returns true when the index moved.
func (n *Navigator) Next() bool {
	if !n.gate(n.Active()) {
		return false
	}
	if n.activeIndex >= len(n.Sections())-1 {
		return false
	}
	n.activeIndex++
	return true
}

// Previous moves back one section; always allowed above index 0.
func (n *Navigator) Previous() bool {
	if n.activeIndex == 0 {
		return false
	}
	n.activeIndex--
	return true
}

// JumpTo moves directly to the given visible index, bypassing the gate.
func (n *Navigator) JumpTo(index int) error {
	if index < 0 || index >= len(n.Sections()) {
		return fmt.Errorf("section index %d out of range (0..%d)", index, len(n.Sections())-1)
	}
	n.activeIndex = index
	return nil
}

// ToggleAdvanced flips whether advanced sections are visible. When the
// active index falls outside the shrunken list it is clamped to the last
// valid index.
func (n *Navigator) ToggleAdvanced() bool {
	n.showAdvanced = !n.showAdvanced
	if last := len(n.Sections()) - 1; n.activeIndex > last {
		n.activeIndex = last
	}
	return n.showAdvanced
}

// PreserveIndex captures the active index immediately before a save so the
// user is not bounced back to the first section after the record refresh.
func (n *Navigator) PreserveIndex() {
	n.preservedIndex = n.activeIndex
}

// RestoreIndex restores the preserved index, clamped to the visible list.
// No-op when nothing was preserved.
func (n *Navigator) RestoreIndex() {
	if n.preservedIndex < 0 {
		return
	}
	idx := n.preservedIndex
	if last := len(n.Sections()) - 1; idx > last {
		idx = last
	}
	n.activeIndex = idx
	n.preservedIndex = -1
}
