// Package dispatch is the input dispatcher: a single-threaded
// cooperative state machine that routes each keystroke to the handler
// registered for the active mode (spec.md §4.5, §9's "dispatch table
// maps (mode, key) to transitions").
package dispatch

import (
	"context"
	"os"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/steeef/search-ui/internal/apperr"
	"github.com/steeef/search-ui/internal/filter"
	"github.com/steeef/search-ui/internal/searchidx"
	"github.com/steeef/search-ui/internal/session"
	"github.com/steeef/search-ui/internal/transcript"
	"github.com/steeef/search-ui/internal/viewmodel"
)

// Reader is the subset of *searchidx.Reader the dispatcher depends on,
// so tests can substitute a fake.
type Reader interface {
	Search(ctx context.Context, raw string, home searchidx.HomeFilters) (searchidx.Result, error)
}

// HandoffWriter emits the selection JSON exactly once on confirmation.
type HandoffWriter func(s session.Session, snippet string) error

// Dispatcher owns the ViewModel and the collaborators a key handler may
// need: the query engine, home filters to scope searches with, and the
// handoff sink.
type Dispatcher struct {
	VM      *viewmodel.ViewModel
	Reader  Reader
	Home    searchidx.HomeFilters
	Handoff HandoffWriter

	// VisibleRows is updated by the program on every window resize. No
	// key handler reads it; the renderer computes its own visible row
	// count when it keeps the selection on screen.
	VisibleRows int

	quit bool
}

// New builds a Dispatcher over vm.
func New(vm *viewmodel.ViewModel, reader Reader, home searchidx.HomeFilters, handoff HandoffWriter) *Dispatcher {
	return &Dispatcher{VM: vm, Reader: reader, Home: home, Handoff: handoff, VisibleRows: 10}
}

// Quit reports whether a handled key ended the program.
func (d *Dispatcher) Quit() bool { return d.quit }

// Handle routes msg to the handler for the Dispatcher's active mode.
// Ctrl-C is a hard quit from every mode (spec.md §4.5).
func (d *Dispatcher) Handle(msg tea.KeyMsg) {
	if msg.String() == "ctrl+c" {
		d.quit = true
		return
	}
	switch m := d.VM.Mode.(type) {
	case viewmodel.NormalMode:
		d.handleNormal(msg)
	case viewmodel.CommandMode:
		d.handleCommand(msg)
	case viewmodel.InputPromptMode:
		d.handleInputPrompt(msg, m)
	case viewmodel.FilterModalMode:
		d.handleFilterModal(msg, m)
	case viewmodel.ScopeModalMode:
		d.handleScopeModal(msg, m)
	case viewmodel.ActionModalMode:
		d.handleActionModal(msg, m)
	case viewmodel.FullViewMode:
		d.handleFullView(msg, m)
	case viewmodel.InViewSearchMode:
		d.handleInViewSearch(msg, m)
	case viewmodel.ExitConfirmMode:
		d.handleExitConfirm(msg)
	}
}

func (d *Dispatcher) handleNormal(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		if d.VM.HasActiveFilters() {
			d.VM.Mode = viewmodel.ExitConfirmMode{}
		} else {
			d.quit = true
		}
		return
	case tea.KeyEnter:
		if _, ok := d.VM.SelectedSession(); ok {
			d.VM.Mode = viewmodel.ActionModalMode{SessionIndex: d.VM.Selected}
		}
		return
	case tea.KeyUp:
		d.VM.MoveSelection(-1)
		return
	case tea.KeyDown:
		d.VM.MoveSelection(1)
		return
	case tea.KeyBackspace:
		d.mutateQuery(func(q string) string {
			if q == "" {
				return q
			}
			r := []rune(q)
			return string(r[:len(r)-1])
		})
		return
	case tea.KeyCtrlF:
		d.VM.Mode = viewmodel.FilterModalMode{}
		return
	case tea.KeyCtrlG:
		d.VM.Mode = viewmodel.InputPromptMode{Kind: viewmodel.PromptJumpToLine}
		return
	case tea.KeyCtrlS:
		if strings.TrimSpace(d.VM.Query) != "" {
			d.VM.Filters.TimeSort = !d.VM.Filters.TimeSort
			d.VM.Rerun()
		}
		return
	}
	switch msg.String() {
	case ":":
		d.VM.Mode = viewmodel.CommandMode{}
		return
	case "/":
		d.VM.Mode = viewmodel.ScopeModalMode{}
		return
	}
	if r := singleRune(msg); r != 0 {
		d.mutateQuery(func(q string) string { return q + string(r) })
	}
}

// mutateQuery applies f to the live query, reruns the query engine when
// it changed, then re-applies the filter pipeline.
func (d *Dispatcher) mutateQuery(f func(string) string) {
	next := f(d.VM.Query)
	if next == d.VM.Query {
		return
	}
	d.VM.Query = next
	d.runQuery()
	d.VM.Rerun()
}

func (d *Dispatcher) runQuery() {
	if strings.TrimSpace(d.VM.Query) == "" {
		d.VM.RankedIDs = nil
		d.VM.Snippets = map[string]string{}
		return
	}
	if d.Reader == nil {
		return
	}
	res, err := d.Reader.Search(context.Background(), d.VM.Query, d.Home)
	if err != nil {
		// Non-fatal: downgrade to "no matches" with an empty snippet map.
		d.VM.RankedIDs = nil
		d.VM.Snippets = map[string]string{}
		return
	}
	d.VM.RankedIDs = res.RankedIDs
	d.VM.Snippets = res.Snippets
}

func (d *Dispatcher) handleCommand(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		d.VM.Mode = viewmodel.NormalMode{}
	case "x":
		d.VM.Filters = filter.Default()
		d.VM.Mode = viewmodel.NormalMode{}
		d.VM.Rerun()
	case "o":
		d.VM.Filters.IncludeOriginal = !d.VM.Filters.IncludeOriginal
		d.VM.Mode = viewmodel.NormalMode{}
		d.VM.Rerun()
	case "s":
		d.VM.Filters.IncludeSub = !d.VM.Filters.IncludeSub
		d.VM.Mode = viewmodel.NormalMode{}
		d.VM.Rerun()
	case "t":
		d.VM.Filters.IncludeTrimmed = !d.VM.Filters.IncludeTrimmed
		d.VM.Mode = viewmodel.NormalMode{}
		d.VM.Rerun()
	case "c":
		d.VM.Filters.IncludeContinued = !d.VM.Filters.IncludeContinued
		d.VM.Mode = viewmodel.NormalMode{}
		d.VM.Rerun()
	case "a":
		d.VM.Mode = viewmodel.InputPromptMode{Kind: viewmodel.PromptAgent}
	case "m":
		d.VM.Mode = viewmodel.InputPromptMode{Kind: viewmodel.PromptMinLines}
	case ">":
		d.VM.Mode = viewmodel.InputPromptMode{Kind: viewmodel.PromptAfterDate}
	case "<":
		d.VM.Mode = viewmodel.InputPromptMode{Kind: viewmodel.PromptBeforeDate}
	default:
		d.VM.Mode = viewmodel.NormalMode{}
	}
}

func (d *Dispatcher) handleInputPrompt(msg tea.KeyMsg, m viewmodel.InputPromptMode) {
	switch msg.Type {
	case tea.KeyEsc:
		d.VM.Mode = viewmodel.NormalMode{}
		return
	case tea.KeyBackspace:
		r := []rune(m.Buffer)
		if len(r) > 0 {
			m.Buffer = string(r[:len(r)-1])
		}
		d.VM.Mode = m
		return
	case tea.KeyEnter:
		d.applyPrompt(m)
		return
	}
	if r := singleRune(msg); r != 0 {
		m.Buffer += string(r)
		d.VM.Mode = m
	}
}

func (d *Dispatcher) applyPrompt(m viewmodel.InputPromptMode) {
	defer func() { d.VM.Mode = viewmodel.NormalMode{} }()
	buf := strings.TrimSpace(m.Buffer)
	switch m.Kind {
	case viewmodel.PromptMinLines:
		n := 0
		for _, r := range buf {
			if !unicode.IsDigit(r) {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		d.VM.Filters.MinLines = n
		d.VM.Rerun()
	case viewmodel.PromptAgent:
		d.VM.Filters.Agent = session.NormalizeAgent(buf)
		if buf == "" {
			d.VM.Filters.Agent = ""
		}
		d.VM.Rerun()
	case viewmodel.PromptJumpToLine:
		n := 0
		for _, r := range buf {
			if unicode.IsDigit(r) {
				n = n*10 + int(r-'0')
			}
		}
		d.VM.JumpTo(n)
	case viewmodel.PromptAfterDate:
		if bound, err := filter.ParseBound(buf, time.Now()); err == nil {
			d.VM.Filters.AfterDate = bound
			d.VM.Rerun()
		}
	case viewmodel.PromptBeforeDate:
		if bound, err := filter.ParseBound(buf, time.Now()); err == nil {
			d.VM.Filters.BeforeDate = bound
			d.VM.Rerun()
		}
	case viewmodel.PromptScopeDir:
		d.VM.Filters.DirOverride = buf
		d.VM.Rerun()
	}
}

func (d *Dispatcher) handleFilterModal(msg tea.KeyMsg, m viewmodel.FilterModalMode) {
	const itemCount = 4
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlF:
		d.VM.Mode = viewmodel.NormalMode{}
	case tea.KeyUp:
		m.Selected = (m.Selected - 1 + itemCount) % itemCount
		d.VM.Mode = m
	case tea.KeyDown:
		m.Selected = (m.Selected + 1) % itemCount
		d.VM.Mode = m
	case tea.KeyEnter, tea.KeySpace:
		switch m.Selected {
		case 0:
			d.VM.Filters.IncludeOriginal = !d.VM.Filters.IncludeOriginal
		case 1:
			d.VM.Filters.IncludeTrimmed = !d.VM.Filters.IncludeTrimmed
		case 2:
			d.VM.Filters.IncludeContinued = !d.VM.Filters.IncludeContinued
		case 3:
			d.VM.Filters.IncludeSub = !d.VM.Filters.IncludeSub
		}
		d.VM.Rerun()
	}
}

func (d *Dispatcher) handleScopeModal(msg tea.KeyMsg, m viewmodel.ScopeModalMode) {
	switch msg.Type {
	case tea.KeyEsc:
		d.VM.Mode = viewmodel.NormalMode{}
	case tea.KeyUp:
		m.Selected = (m.Selected - 1 + 3) % 3
		d.VM.Mode = m
	case tea.KeyDown:
		m.Selected = (m.Selected + 1) % 3
		d.VM.Mode = m
	case tea.KeyEnter:
		switch m.Selected {
		case 0:
			d.VM.Filters.Global = true
			d.VM.Filters.DirOverride = ""
			d.VM.Mode = viewmodel.NormalMode{}
			d.VM.Rerun()
		case 1:
			d.VM.Filters.Global = false
			d.VM.Filters.DirOverride = ""
			d.VM.Mode = viewmodel.NormalMode{}
			d.VM.Rerun()
		case 2:
			d.VM.Mode = viewmodel.InputPromptMode{Kind: viewmodel.PromptScopeDir}
		}
	}
}

func (d *Dispatcher) handleActionModal(msg tea.KeyMsg, m viewmodel.ActionModalMode) {
	switch msg.Type {
	case tea.KeyEsc:
		d.VM.Mode = viewmodel.NormalMode{}
		return
	}
	switch msg.String() {
	case "v":
		s, ok := d.VM.SessionAt(m.SessionIndex)
		if !ok {
			d.VM.Mode = viewmodel.NormalMode{}
			return
		}
		buf, err := RenderTranscript(s.ExportPath)
		if err != nil || strings.TrimSpace(buf) == "" {
			buf = s.LastMsgContent
		}
		d.VM.Mode = viewmodel.FullViewMode{SessionIndex: m.SessionIndex, Buffer: buf}
	case "a":
		s, ok := d.VM.SessionAt(m.SessionIndex)
		if !ok {
			d.VM.Mode = viewmodel.NormalMode{}
			return
		}
		snippet := d.VM.Snippets[s.SessionID]
		if d.Handoff != nil {
			d.Handoff(s, snippet)
		}
		d.quit = true
	}
}

func (d *Dispatcher) handleFullView(msg tea.KeyMsg, m viewmodel.FullViewMode) {
	switch msg.Type {
	case tea.KeyEsc:
		d.VM.Mode = viewmodel.NormalMode{}
		return
	case tea.KeySpace:
		d.VM.Mode = viewmodel.NormalMode{}
		return
	case tea.KeyUp:
		m.Scroll--
		d.VM.Mode = m
		return
	case tea.KeyDown:
		m.Scroll++
		d.VM.Mode = m
		return
	}
	switch msg.String() {
	case "q":
		d.VM.Mode = viewmodel.NormalMode{}
	case "/":
		d.VM.Mode = viewmodel.InViewSearchMode{Parent: m}
	}
}

func (d *Dispatcher) handleInViewSearch(msg tea.KeyMsg, m viewmodel.InViewSearchMode) {
	switch msg.Type {
	case tea.KeyEsc:
		d.VM.Mode = m.Parent
		return
	case tea.KeyEnter:
		parent := m.Parent
		if idx := strings.Index(strings.ToLower(parent.Buffer), strings.ToLower(m.Pattern)); idx >= 0 {
			parent.Scroll = strings.Count(parent.Buffer[:idx], "\n")
		}
		d.VM.Mode = parent
		return
	case tea.KeyBackspace:
		r := []rune(m.Pattern)
		if len(r) > 0 {
			m.Pattern = string(r[:len(r)-1])
		}
		d.VM.Mode = m
		return
	}
	if r := singleRune(msg); r != 0 {
		m.Pattern += string(r)
		d.VM.Mode = m
	}
}

func (d *Dispatcher) handleExitConfirm(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "enter":
		d.quit = true
	case "n", "esc":
		d.VM.Mode = viewmodel.NormalMode{}
	}
}

// singleRune extracts the one rune a printable key press carries, or 0
// when msg isn't a single printable rune (Space included, per spec.md
// §4.5: "Space is also a query char").
func singleRune(msg tea.KeyMsg) rune {
	if msg.Type == tea.KeySpace {
		return ' '
	}
	if msg.Type != tea.KeyRunes {
		return 0
	}
	if len(msg.Runes) != 1 {
		return 0
	}
	return msg.Runes[0]
}

// RenderTranscript parses a session's export file into the full-view
// buffer. Any failure to open or read the file comes back as an
// *apperr.TranscriptReadFailure; callers treat it as non-fatal and fall
// back to the session's last message (spec.md §4.4).
func RenderTranscript(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &apperr.TranscriptReadFailure{Path: path, Err: err}
	}
	defer f.Close()
	buf, err := transcript.Render(f)
	if err != nil {
		return "", &apperr.TranscriptReadFailure{Path: path, Err: err}
	}
	return buf, nil
}
