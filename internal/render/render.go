// Package render is the pure projection of a viewmodel.ViewModel onto a
// terminal frame (spec.md §4.6). It never mutates its input.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/steeef/search-ui/internal/session"
	"github.com/steeef/search-ui/internal/styles"
	"github.com/steeef/search-ui/internal/viewmodel"
)

// rowHeight matches viewmodel.VisibleRowHeight's fixed 3-line row.
const rowHeight = 3

// Frame renders the full screen for width x height.
func Frame(vm *viewmodel.ViewModel, width, height int, now time.Time) string {
	searchBar := renderSearchBar(vm, width)
	status := renderStatus(vm, width)

	contentHeight := height - lipgloss.Height(searchBar) - lipgloss.Height(status) - 2
	if contentHeight < 1 {
		contentHeight = 1
	}
	content := renderContent(vm, width, contentHeight, now)

	base := lipgloss.JoinVertical(lipgloss.Left, searchBar, "", content, "", status)

	switch m := vm.Mode.(type) {
	case viewmodel.FilterModalMode:
		return overlay(base, renderFilterModal(vm, m), width, height)
	case viewmodel.ScopeModalMode:
		return overlay(base, renderScopeModal(m), width, height)
	case viewmodel.ActionModalMode:
		return overlay(base, renderActionModal(), width, height)
	case viewmodel.ExitConfirmMode:
		return overlay(base, renderExitConfirm(), width, height)
	case viewmodel.FullViewMode:
		return renderFullView(m, width, height)
	case viewmodel.InViewSearchMode:
		return renderInViewSearch(m, width, height)
	case viewmodel.InputPromptMode:
		return overlay(base, renderInputPromptModal(m), width, height)
	}
	return base
}

// textField renders value through a bubbles/textinput.Model so the
// search bar and modal prompts share the teacher's real text-entry
// widget (cursor, prompt glyph) rather than a hand-formatted string.
// The ViewModel remains the sole owner of the buffer; this builds a
// throwaway Model purely to project it, mirroring how the teacher's
// worktree.PromptPicker wraps textinput.Model for filter entry.
func textField(prompt, value string, width int) string {
	if width < 1 {
		width = 1
	}
	ti := textinput.New()
	ti.Prompt = prompt
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Width = width
	ti.Focus()
	return ti.View()
}

func renderSearchBar(vm *viewmodel.ViewModel, width int) string {
	label := "Search: "
	if _, ok := vm.Mode.(viewmodel.CommandMode); ok {
		label = "Command: "
	}
	line := textField(label, vm.Query, width-len(label)-6)
	return styles.SearchBar.Width(width - 4).Render(ansi.Truncate(line, width-6, "…"))
}

// promptLabel names each InputPromptMode kind's prompt text.
func promptLabel(kind viewmodel.PromptKind) string {
	switch kind {
	case viewmodel.PromptMinLines:
		return "Minimum lines: "
	case viewmodel.PromptAgent:
		return "Agent (claude/codex): "
	case viewmodel.PromptJumpToLine:
		return "Jump to row: "
	case viewmodel.PromptAfterDate:
		return "After date: "
	case viewmodel.PromptBeforeDate:
		return "Before date: "
	case viewmodel.PromptScopeDir:
		return "Scope directory: "
	default:
		return "> "
	}
}

func renderInputPromptModal(m viewmodel.InputPromptMode) string {
	field := textField(promptLabel(m.Kind), m.Buffer, 40)
	return styles.Overlay.Render(field + "\n\nenter: apply    esc: cancel")
}

func renderContent(vm *viewmodel.ViewModel, width, height int, now time.Time) string {
	listWidth := width * 70 / 100
	previewWidth := width - listWidth - 1

	visibleRows := height / rowHeight
	if visibleRows < 1 {
		visibleRows = 1
	}
	vm.EnsureListVisible(visibleRows)

	list := renderList(vm, listWidth, visibleRows, now)
	preview := renderPreview(vm, previewWidth, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", preview)
}

func renderList(vm *viewmodel.ViewModel, width, visibleRows int, now time.Time) string {
	if len(vm.Filtered) == 0 {
		return styles.NormalRow.Width(width).Render("No sessions match the active filters.")
	}
	var b strings.Builder
	end := vm.ListScroll + visibleRows
	if end > len(vm.Filtered) {
		end = len(vm.Filtered)
	}
	for i := vm.ListScroll; i < end; i++ {
		s, _ := vm.SessionAt(i)
		header := renderRowHeader(s, i, width, now)
		snippet := renderRowSnippet(vm, s, width)
		style := styles.NormalRow
		if i == vm.Selected {
			style = styles.SelectedRow
		}
		b.WriteString(style.Render(ansi.Truncate(header, width, "…")))
		b.WriteString("\n")
		b.WriteString(styles.Snippet.Render(ansi.Truncate(snippet, width, "…")))
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderRowHeader builds row#, agent glyph, session-id (with
// annotations), project, branch, line count, date.
func renderRowHeader(s session.Session, row, width int, now time.Time) string {
	glyph := "C"
	if s.Agent == session.AgentCodex {
		glyph = "X"
	}
	glyph = styles.AgentGlyph.Render(glyph)
	id := annotatedID(s)
	date := formatDateTier(s.Modified, now, width)
	project := padRight(s.EffectiveProject(), 20)
	branch := padRight(s.Branch, 12)
	return fmt.Sprintf("%3d %s %s  %s %s %4dL  %s", row+1, glyph, id, project, branch, s.Lines, date)
}

// padRight pads s with spaces up to a display width of w, measuring
// width with go-runewidth so double-width (CJK) and emoji runes in
// project/branch names still land in aligned columns rather than
// throwing off every field to their right. Strings already at or past w
// are truncated first.
func padRight(s string, w int) string {
	if runewidth.StringWidth(s) > w {
		return runewidth.Truncate(s, w, "")
	}
	return runewidth.FillRight(s, w)
}

// annotatedID truncates the session id and appends the derivation/
// sub-agent annotation (spec.md §4.6).
func annotatedID(s session.Session) string {
	id := s.CanonicalUUID()
	short := id
	if len(short) > 10 {
		short = short[:8] + ".."
	}
	switch {
	case s.IsSubAgent():
		short += " (s)"
	case s.DerivationType == session.DerivationTrimmed:
		short += " (t)"
	case s.DerivationType == session.DerivationContinued:
		short += " (c)"
	}
	return short
}

func renderRowSnippet(vm *viewmodel.ViewModel, s session.Session, width int) string {
	if strings.TrimSpace(vm.Query) == "" {
		return s.LastMsgContent
	}
	if snippet, ok := vm.Snippets[s.SessionID]; ok {
		return renderHighlighted(snippet)
	}
	return s.LastMsgContent
}

// renderHighlighted converts the abstract ⟨b⟩…⟨/b⟩ markers into styled
// spans for terminal display.
func renderHighlighted(snippet string) string {
	var b strings.Builder
	rest := snippet
	for {
		start := strings.Index(rest, "⟨b⟩")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		rest = rest[start+len("⟨b⟩"):]
		end := strings.Index(rest, "⟨/b⟩")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(styles.Highlight.Render(rest[:end]))
		rest = rest[end+len("⟨/b⟩"):]
	}
	return b.String()
}

// formatDateTier degrades across three tiers as width shrinks
// (spec.md §4.6).
func formatDateTier(rfc3339 string, now time.Time, width int) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return ""
	}
	switch {
	case width >= 90:
		return t.Format("01/02 - 01/02 15:04")
	case width >= 60:
		return t.Format("01/02 - 01/02")
	default:
		return relativeAge(now.Sub(t))
	}
}

func relativeAge(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw", int(d.Hours()/(24*7)))
	default:
		return fmt.Sprintf("%dmo", int(d.Hours()/(24*30)))
	}
}

func renderPreview(vm *viewmodel.ViewModel, width, height int) string {
	s, ok := vm.SelectedSession()
	if !ok {
		return styles.NormalRow.Width(width).Render("")
	}
	body := s.LastMsgContent
	if snippet, ok := vm.Snippets[s.SessionID]; ok && strings.TrimSpace(vm.Query) != "" {
		body = renderHighlighted(snippet)
	}
	lines := strings.Split(body, "\n")
	vm.ClampPreviewScroll(len(lines), height)
	if vm.PreviewScroll < len(lines) {
		lines = lines[vm.PreviewScroll:]
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	content := strings.Join(lines, "\n")
	return styles.NormalRow.Width(width).Height(height).Render(ansi.Truncate(content, width*height, ""))
}

func renderStatus(vm *viewmodel.ViewModel, width int) string {
	parts := []string{fmt.Sprintf("%d/%d sessions", len(vm.Filtered), len(vm.Sessions))}
	if vm.Filters.TimeSort {
		parts = append(parts, "sort: time")
	} else {
		parts = append(parts, "sort: relevance")
	}
	if vm.HasActiveFilters() {
		parts = append(parts, "filters active")
	}
	return styles.StatusBar.Width(width).Render(ansi.Truncate(strings.Join(parts, "  ·  "), width, "…"))
}

func overlay(base, box string, width, height int) string {
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	return centered
}

func renderFilterModal(vm *viewmodel.ViewModel, m viewmodel.FilterModalMode) string {
	items := []struct {
		label   string
		enabled bool
	}{
		{"Original", vm.Filters.IncludeOriginal},
		{"Trimmed", vm.Filters.IncludeTrimmed},
		{"Continued", vm.Filters.IncludeContinued},
		{"Sub-agent", vm.Filters.IncludeSub},
	}
	var b strings.Builder
	b.WriteString("Filters\n\n")
	for i, it := range items {
		cursor := "  "
		if i == m.Selected {
			cursor = "> "
		}
		mark := "[ ]"
		if it.enabled {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, mark, it.label)
	}
	return styles.Overlay.Render(b.String())
}

func renderScopeModal(m viewmodel.ScopeModalMode) string {
	items := []string{"global", "current directory", "custom…"}
	var b strings.Builder
	b.WriteString("Scope\n\n")
	for i, it := range items {
		cursor := "  "
		if i == m.Selected {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, it)
	}
	return styles.Overlay.Render(b.String())
}

func renderActionModal() string {
	return styles.Overlay.Render("v: view transcript     a: emit selection\n\nesc: cancel")
}

func renderExitConfirm() string {
	return styles.Overlay.Render("Active filters will be lost. Quit? (y/n)")
}

// renderFullView delegates the transcript window to bubbles' viewport,
// which owns line-wrap-aware scrolling; FullViewMode.Scroll only tracks
// the line offset the dispatcher wants, not any internal render state.
func renderFullView(m viewmodel.FullViewMode, width, height int) string {
	vp := viewport.New(width, height)
	vp.SetContent(m.Buffer)
	vp.YOffset = clampYOffset(m.Scroll, vp.TotalLineCount(), height)
	return vp.View()
}

func clampYOffset(offset, totalLines, height int) int {
	max := totalLines - height
	if max < 0 {
		max = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}

func renderInViewSearch(m viewmodel.InViewSearchMode, width, height int) string {
	base := renderFullView(m.Parent, width, height-1)
	bar := styles.SearchBar.Width(width - 4).Render("/" + m.Pattern)
	return lipgloss.JoinVertical(lipgloss.Left, base, bar)
}
