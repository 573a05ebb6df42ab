package dispatch

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/steeef/search-ui/internal/apperr"
	"github.com/steeef/search-ui/internal/searchidx"
	"github.com/steeef/search-ui/internal/session"
	"github.com/steeef/search-ui/internal/viewmodel"
)

type fakeReader struct {
	result searchidx.Result
	err    error
	calls  int
}

func (f *fakeReader) Search(ctx context.Context, raw string, home searchidx.HomeFilters) (searchidx.Result, error) {
	f.calls++
	return f.result, f.err
}

func mkSessions(n int) []session.Session {
	out := make([]session.Session, n)
	for i := range out {
		out[i] = session.Session{
			SessionID: string(rune('a' + i)),
			Agent:     session.AgentClaude,
			Cwd:       "/proj",
			Modified:  "2026-07-01T00:00:00Z",
		}
	}
	return out
}

func newDispatcher(n int) (*Dispatcher, *fakeReader) {
	vm := viewmodel.New(mkSessions(n), "/proj", 0)
	r := &fakeReader{result: searchidx.Result{Snippets: map[string]string{}}}
	d := New(vm, r, searchidx.HomeFilters{}, nil)
	return d, r
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestCtrlCHardQuitsFromEveryMode(t *testing.T) {
	modes := []viewmodel.Mode{
		viewmodel.NormalMode{},
		viewmodel.CommandMode{},
		viewmodel.InputPromptMode{Kind: viewmodel.PromptMinLines},
		viewmodel.FilterModalMode{},
		viewmodel.ScopeModalMode{},
		viewmodel.ActionModalMode{},
		viewmodel.FullViewMode{},
		viewmodel.InViewSearchMode{},
		viewmodel.ExitConfirmMode{},
	}
	for _, m := range modes {
		d, _ := newDispatcher(2)
		d.VM.Mode = m
		d.Handle(tea.KeyMsg{Type: tea.KeyCtrlC})
		if !d.Quit() {
			t.Errorf("Ctrl-C from mode %q did not quit", viewmodel.ModeName(m))
		}
	}
}

func TestNormalModeTypingAppendsToQueryAndRuns(t *testing.T) {
	d, r := newDispatcher(2)
	d.Handle(runeKey('f'))
	d.Handle(runeKey('o'))
	d.Handle(runeKey('o'))
	if d.VM.Query != "foo" {
		t.Errorf("Query = %q, want foo", d.VM.Query)
	}
	if r.calls != 3 {
		t.Errorf("Search calls = %d, want 3 (one per keystroke)", r.calls)
	}
}

func TestNormalModeBackspaceTrimsQuery(t *testing.T) {
	d, _ := newDispatcher(2)
	d.VM.Query = "foo"
	d.Handle(tea.KeyMsg{Type: tea.KeyBackspace})
	if d.VM.Query != "fo" {
		t.Errorf("Query after backspace = %q, want fo", d.VM.Query)
	}
}

func TestNormalModeEscWithNoActiveFiltersQuits(t *testing.T) {
	d, _ := newDispatcher(2)
	d.Handle(tea.KeyMsg{Type: tea.KeyEsc})
	if !d.Quit() {
		t.Error("Esc with no active filters should quit")
	}
}

func TestNormalModeEscWithActiveFiltersAsksToConfirm(t *testing.T) {
	d, _ := newDispatcher(2)
	d.VM.Filters.MinLines = 5
	d.Handle(tea.KeyMsg{Type: tea.KeyEsc})
	if d.Quit() {
		t.Error("Esc with active filters should not quit directly")
	}
	if viewmodel.ModeName(d.VM.Mode) != "exit-confirm" {
		t.Errorf("mode = %q, want exit-confirm", viewmodel.ModeName(d.VM.Mode))
	}
}

func TestExitConfirmYesQuitsNoReturnsToNormal(t *testing.T) {
	d, _ := newDispatcher(2)
	d.VM.Mode = viewmodel.ExitConfirmMode{}
	d.Handle(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if d.Quit() || viewmodel.ModeName(d.VM.Mode) != "normal" {
		t.Errorf("'n' should return to normal without quitting, got mode=%q quit=%v", viewmodel.ModeName(d.VM.Mode), d.Quit())
	}

	d2, _ := newDispatcher(2)
	d2.VM.Mode = viewmodel.ExitConfirmMode{}
	d2.Handle(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if !d2.Quit() {
		t.Error("'y' should quit")
	}
}

func TestNormalModeEnterOpensActionModal(t *testing.T) {
	d, _ := newDispatcher(2)
	d.Handle(tea.KeyMsg{Type: tea.KeyEnter})
	if viewmodel.ModeName(d.VM.Mode) != "action-modal" {
		t.Errorf("mode after Enter = %q, want action-modal", viewmodel.ModeName(d.VM.Mode))
	}
}

func TestCtrlFOpensFilterModal(t *testing.T) {
	d, _ := newDispatcher(2)
	d.Handle(tea.KeyMsg{Type: tea.KeyCtrlF})
	if viewmodel.ModeName(d.VM.Mode) != "filter-modal" {
		t.Errorf("mode after Ctrl-F = %q, want filter-modal", viewmodel.ModeName(d.VM.Mode))
	}
}

func TestFilterModalTogglesIncludeAndReruns(t *testing.T) {
	d, _ := newDispatcher(2)
	d.VM.Mode = viewmodel.FilterModalMode{Selected: 3} // sub-agent row
	before := d.VM.Filters.IncludeSub
	d.Handle(tea.KeyMsg{Type: tea.KeyEnter})
	if d.VM.Filters.IncludeSub == before {
		t.Error("Enter on the sub-agent row should toggle IncludeSub")
	}
}

func TestCommandModeResetFiltersWithX(t *testing.T) {
	d, _ := newDispatcher(2)
	d.VM.Filters.MinLines = 20
	d.VM.Mode = viewmodel.CommandMode{}
	d.Handle(runeKey('x'))
	if d.VM.Filters.MinLines != 0 {
		t.Errorf("MinLines after 'x' reset = %d, want 0", d.VM.Filters.MinLines)
	}
	if viewmodel.ModeName(d.VM.Mode) != "normal" {
		t.Errorf("mode after 'x' = %q, want normal", viewmodel.ModeName(d.VM.Mode))
	}
}

func TestInputPromptMinLinesAppliesOnEnter(t *testing.T) {
	d, _ := newDispatcher(2)
	d.VM.Mode = viewmodel.InputPromptMode{Kind: viewmodel.PromptMinLines}
	d.Handle(runeKey('4'))
	d.Handle(runeKey('2'))
	d.Handle(tea.KeyMsg{Type: tea.KeyEnter})
	if d.VM.Filters.MinLines != 42 {
		t.Errorf("MinLines = %d, want 42", d.VM.Filters.MinLines)
	}
	if viewmodel.ModeName(d.VM.Mode) != "normal" {
		t.Errorf("mode after applying prompt = %q, want normal", viewmodel.ModeName(d.VM.Mode))
	}
}

func TestInputPromptEscCancelsWithoutApplying(t *testing.T) {
	d, _ := newDispatcher(2)
	d.VM.Mode = viewmodel.InputPromptMode{Kind: viewmodel.PromptMinLines}
	d.Handle(runeKey('9'))
	d.Handle(tea.KeyMsg{Type: tea.KeyEsc})
	if d.VM.Filters.MinLines != 0 {
		t.Errorf("MinLines = %d, want 0 after cancel", d.VM.Filters.MinLines)
	}
	if viewmodel.ModeName(d.VM.Mode) != "normal" {
		t.Errorf("mode after Esc = %q, want normal", viewmodel.ModeName(d.VM.Mode))
	}
}

func TestActionModalEmitCallsHandoffAndQuits(t *testing.T) {
	vm := viewmodel.New(mkSessions(2), "/proj", 0)
	var got session.Session
	var gotSnippet string
	d := New(vm, &fakeReader{result: searchidx.Result{Snippets: map[string]string{}}}, searchidx.HomeFilters{}, func(s session.Session, snippet string) error {
		got = s
		gotSnippet = snippet
		return nil
	})
	d.VM.Mode = viewmodel.ActionModalMode{SessionIndex: 0}
	d.Handle(runeKey('a'))
	if !d.Quit() {
		t.Error("emitting a handoff should quit")
	}
	if got.SessionID != vm.Sessions[vm.Filtered[0]].SessionID {
		t.Errorf("handoff called with session %q, want %q", got.SessionID, vm.Sessions[vm.Filtered[0]].SessionID)
	}
	_ = gotSnippet
}

func TestFullViewEscReturnsToNormal(t *testing.T) {
	d, _ := newDispatcher(2)
	d.VM.Mode = viewmodel.FullViewMode{Buffer: "some transcript text"}
	d.Handle(tea.KeyMsg{Type: tea.KeyEsc})
	if viewmodel.ModeName(d.VM.Mode) != "normal" {
		t.Errorf("mode after Esc from full view = %q, want normal", viewmodel.ModeName(d.VM.Mode))
	}
}

func TestInViewSearchEnterScrollsToMatch(t *testing.T) {
	d, _ := newDispatcher(2)
	parent := viewmodel.FullViewMode{Buffer: "line one\nline two\nneedle here\nline four"}
	d.VM.Mode = viewmodel.InViewSearchMode{Parent: parent, Pattern: "needle"}
	d.Handle(tea.KeyMsg{Type: tea.KeyEnter})
	fv, ok := d.VM.Mode.(viewmodel.FullViewMode)
	if !ok {
		t.Fatalf("mode after Enter = %q, want full-view", viewmodel.ModeName(d.VM.Mode))
	}
	if fv.Scroll != 2 {
		t.Errorf("Scroll = %d, want 2 (needle is on the third line)", fv.Scroll)
	}
}

func TestRenderTranscriptMissingFileReturnsTranscriptReadFailure(t *testing.T) {
	_, err := RenderTranscript("/nonexistent/path/session.jsonl")
	if err == nil {
		t.Fatal("RenderTranscript on a missing file returned nil error")
	}
	var readErr *apperr.TranscriptReadFailure
	if !errors.As(err, &readErr) {
		t.Fatalf("RenderTranscript error = %v, want *apperr.TranscriptReadFailure", err)
	}
	if readErr.Path != "/nonexistent/path/session.jsonl" {
		t.Errorf("TranscriptReadFailure.Path = %q, want the requested path", readErr.Path)
	}
}
