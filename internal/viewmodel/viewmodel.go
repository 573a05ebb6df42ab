package viewmodel

import (
	"github.com/steeef/search-ui/internal/filter"
	"github.com/steeef/search-ui/internal/session"
)

// visibleRowHeight is the fixed row height the list layout uses to
// compute which row is on screen (spec.md §4.5).
const visibleRowHeight = 3

// ViewModel is the console's entire mutable state: the loaded session
// set, the current filter/query result, selection and scroll, and the
// active Mode.
type ViewModel struct {
	Sessions []session.Session
	LaunchCwd string

	Query    string
	Filters  filter.Filters
	RankedIDs []string // last query-engine result, nil when Query is empty or the search failed
	Snippets  map[string]string

	Filtered []int // indices into Sessions, post filter+sort+truncate
	MaxResults int

	Selected     int
	ListScroll   int
	PreviewScroll int
	FullContentScroll int

	Mode Mode
}

// New builds a ViewModel resting in NormalMode with the default filter
// bundle.
func New(sessions []session.Session, launchCwd string, maxResults int) *ViewModel {
	vm := &ViewModel{
		Sessions:   sessions,
		LaunchCwd:  launchCwd,
		Filters:    filter.Default(),
		Snippets:   map[string]string{},
		MaxResults: maxResults,
		Mode:       NormalMode{},
	}
	vm.Rerun()
	return vm
}

// Rerun re-applies the filter/sort pipeline and resets selection and
// scroll, per spec.md §4.3's "every filter update must reset selected,
// list_scroll, preview_scroll to 0".
func (vm *ViewModel) Rerun() {
	idxs := filter.FilteredIndices(vm.Sessions, vm.LaunchCwd, vm.Filters)
	idxs = filter.Arrange(vm.Sessions, idxs, filter.Order{
		Query:     vm.Query,
		RankedIDs: vm.RankedIDs,
		TimeSort:  vm.Filters.TimeSort,
	})
	vm.Filtered = filter.Truncate(idxs, vm.MaxResults)
	vm.Selected = 0
	vm.ListScroll = 0
	vm.PreviewScroll = 0
	vm.clampSelection()
}

// clampSelection enforces spec.md §4.5's selection invariant: selected
// is 0 when filtered is empty, else within [0, len(filtered)-1].
func (vm *ViewModel) clampSelection() {
	if len(vm.Filtered) == 0 {
		vm.Selected = 0
		return
	}
	if vm.Selected < 0 {
		vm.Selected = 0
	}
	if vm.Selected > len(vm.Filtered)-1 {
		vm.Selected = len(vm.Filtered) - 1
	}
}

// MoveSelection shifts Selected by delta rows, clamping to the filtered
// set's bounds.
func (vm *ViewModel) MoveSelection(delta int) {
	vm.Selected += delta
	vm.clampSelection()
}

// JumpTo sets Selected to the 1-indexed row, clamped to
// [1, len(Filtered)] per spec.md §4.5's jump-to-row rule.
func (vm *ViewModel) JumpTo(row int) {
	if len(vm.Filtered) == 0 {
		vm.Selected = 0
		return
	}
	if row < 1 {
		row = 1
	}
	if row > len(vm.Filtered) {
		row = len(vm.Filtered)
	}
	vm.Selected = row - 1
}

// EnsureListVisible adjusts ListScroll so Selected is on screen, given
// how many rows the list viewport can currently show.
func (vm *ViewModel) EnsureListVisible(visibleRows int) {
	if visibleRows <= 0 {
		return
	}
	if vm.Selected < vm.ListScroll {
		vm.ListScroll = vm.Selected
	}
	if vm.Selected >= vm.ListScroll+visibleRows {
		vm.ListScroll = vm.Selected - visibleRows + 1
	}
	if vm.ListScroll < 0 {
		vm.ListScroll = 0
	}
}

// ClampPreviewScroll bounds PreviewScroll to [0, max(0, lines-visible)].
func (vm *ViewModel) ClampPreviewScroll(lines, visible int) {
	vm.PreviewScroll = clampScroll(vm.PreviewScroll, lines, visible)
}

// ClampFullContentScroll bounds FullContentScroll the same way.
func (vm *ViewModel) ClampFullContentScroll(lines, visible int) {
	vm.FullContentScroll = clampScroll(vm.FullContentScroll, lines, visible)
}

func clampScroll(scroll, lines, visible int) int {
	max := lines - visible
	if max < 0 {
		max = 0
	}
	if scroll < 0 {
		return 0
	}
	if scroll > max {
		return max
	}
	return scroll
}

// SelectedSession returns the currently selected session and true, or
// the zero value and false when Filtered is empty.
func (vm *ViewModel) SelectedSession() (session.Session, bool) {
	if len(vm.Filtered) == 0 {
		return session.Session{}, false
	}
	return vm.Sessions[vm.Filtered[vm.Selected]], true
}

// SessionAt returns the session at a Filtered index.
func (vm *ViewModel) SessionAt(filteredIdx int) (session.Session, bool) {
	if filteredIdx < 0 || filteredIdx >= len(vm.Filtered) {
		return session.Session{}, false
	}
	return vm.Sessions[vm.Filtered[filteredIdx]], true
}

// HasActiveFilters reports whether any filter axis deviates from the
// resting default, used to decide whether Esc in NormalMode should pass
// through ExitConfirmMode (spec.md §4.5).
func (vm *ViewModel) HasActiveFilters() bool {
	d := filter.Default()
	f := vm.Filters
	if f.ClaudeHome != "" || f.CodexHome != "" || f.DirOverride != "" || f.Global {
		return true
	}
	if f.IncludeOriginal != d.IncludeOriginal || f.IncludeTrimmed != d.IncludeTrimmed ||
		f.IncludeContinued != d.IncludeContinued || f.IncludeSub != d.IncludeSub {
		return true
	}
	if f.Agent != "" || f.MinLines > 0 {
		return true
	}
	if f.AfterDate.Canonical != "" || f.BeforeDate.Canonical != "" {
		return true
	}
	return false
}

// VisibleRowHeight exposes the fixed list row height to the renderer.
func VisibleRowHeight() int { return visibleRowHeight }
