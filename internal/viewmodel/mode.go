// Package viewmodel holds the search console's state machine: exactly
// one Mode is active at a time, each carrying its own data, so the
// dispatcher never has to reconcile a combination of booleans into a
// priority order (spec.md §9: "avoid ad-hoc boolean flags").
package viewmodel

// Mode is the tagged union of every state the console can be in. Each
// concrete type below is one variant; type-switching on Mode is how the
// dispatcher and renderer branch on it.
type Mode interface {
	modeName() string
}

// PromptKind distinguishes the several single-line text prompts that all
// share the InputPrompt mode shape.
type PromptKind int

const (
	PromptMinLines PromptKind = iota
	PromptAgent
	PromptJumpToLine
	PromptAfterDate
	PromptBeforeDate
	PromptScopeDir
)

// NormalMode is the resting state: the query box is live, the filtered
// list and preview are on screen.
type NormalMode struct{}

func (NormalMode) modeName() string { return "normal" }

// CommandMode waits for a single command-character keystroke (entered by
// `:`).
type CommandMode struct{}

func (CommandMode) modeName() string { return "command" }

// InputPromptMode is a single-line text prompt for one of PromptKind's
// variants.
type InputPromptMode struct {
	Kind   PromptKind
	Buffer string
}

func (InputPromptMode) modeName() string { return "input-prompt" }

// FilterModalMode is the arrow-driven menu of filter toggles.
type FilterModalMode struct {
	Selected int
}

func (FilterModalMode) modeName() string { return "filter-modal" }

// ScopeModalMode offers the three scope choices.
type ScopeModalMode struct {
	Selected int // 0=global, 1=current, 2=custom
}

func (ScopeModalMode) modeName() string { return "scope-modal" }

// ActionModalMode appears after Enter on a selected row, offering view
// vs. emit-handoff.
type ActionModalMode struct {
	SessionIndex int // index into ViewModel.Filtered
}

func (ActionModalMode) modeName() string { return "action-modal" }

// FullViewMode is the scrollable full-transcript overlay.
type FullViewMode struct {
	SessionIndex int
	Buffer       string
	Scroll       int
}

func (FullViewMode) modeName() string { return "full-view" }

// InViewSearchMode is the less-style incremental search inside
// FullViewMode; it remembers the mode it will return to on Enter/Esc.
type InViewSearchMode struct {
	Parent  FullViewMode
	Pattern string
}

func (InViewSearchMode) modeName() string { return "in-view-search" }

// ExitConfirmMode guards against losing active filter state on quit.
type ExitConfirmMode struct{}

func (ExitConfirmMode) modeName() string { return "exit-confirm" }

// ModeName returns the stable, lowercase-kebab name of m, for
// diagnostics and tests. The dispatcher itself branches on m's concrete
// type, not on this name.
func ModeName(m Mode) string {
	if m == nil {
		return ""
	}
	return m.modeName()
}
