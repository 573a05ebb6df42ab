package filter

import (
	"testing"

	"github.com/steeef/search-ui/internal/session"
)

func sess(id string, mods ...func(*session.Session)) session.Session {
	s := session.Session{
		SessionID: id,
		Agent:     session.AgentClaude,
		Cwd:       "/home/user/proj",
		Modified:  "2026-07-01T00:00:00Z",
		Lines:     10,
	}
	for _, m := range mods {
		m(&s)
	}
	return s
}

func TestMatchesTypeDefaultsExcludeSubAgent(t *testing.T) {
	f := Default()
	original := sess("a")
	trimmed := sess("b", func(s *session.Session) { s.DerivationType = session.DerivationTrimmed })
	continued := sess("c", func(s *session.Session) { s.DerivationType = session.DerivationContinued })
	sub := sess("d", func(s *session.Session) { s.IsSidechain = true })

	cwd := "/home/user/proj"
	if !Matches(original, cwd, f) {
		t.Error("original session should match default filters")
	}
	if !Matches(trimmed, cwd, f) {
		t.Error("trimmed session should match default filters")
	}
	if !Matches(continued, cwd, f) {
		t.Error("continued session should match default filters")
	}
	if Matches(sub, cwd, f) {
		t.Error("sub-agent session should be excluded by default filters")
	}
}

func TestMatchesTypeSubAgentIsExclusiveOfDerivation(t *testing.T) {
	f := Default()
	f.IncludeSub = true
	// A sub-agent session also carrying a derivation type is still keyed
	// solely on IncludeSub.
	s := sess("a", func(s *session.Session) {
		s.IsSidechain = true
		s.DerivationType = session.DerivationTrimmed
	})
	if !Matches(s, "/home/user/proj", f) {
		t.Error("sub-agent session should match when IncludeSub is set, regardless of derivation type")
	}
	f.IncludeSub = false
	if Matches(s, "/home/user/proj", f) {
		t.Error("sub-agent session should be excluded when IncludeSub is unset, regardless of derivation type")
	}
}

func TestMatchesScopeLocalDefault(t *testing.T) {
	f := Default()
	local := sess("a", func(s *session.Session) { s.Cwd = "/home/user/proj" })
	other := sess("b", func(s *session.Session) { s.Cwd = "/home/user/other" })

	if !Matches(local, "/home/user/proj", f) {
		t.Error("session in launch cwd should match local scope")
	}
	if Matches(other, "/home/user/proj", f) {
		t.Error("session outside launch cwd should not match local scope")
	}
}

// TestMatchesScopeLocalIncludesSubdirectory is spec.md §8's S5: launch
// cwd /home/u/proj must include both /home/u/proj and /home/u/proj/sub
// under the default local scope, excluding only /home/u/other.
func TestMatchesScopeLocalIncludesSubdirectory(t *testing.T) {
	f := Default()
	exact := sess("a", func(s *session.Session) { s.Cwd = "/home/u/proj" })
	sub := sess("b", func(s *session.Session) { s.Cwd = "/home/u/proj/sub" })
	sibling := sess("c", func(s *session.Session) { s.Cwd = "/home/u/proj-other" })
	other := sess("d", func(s *session.Session) { s.Cwd = "/home/u/other" })

	if !Matches(exact, "/home/u/proj", f) {
		t.Error("session at launch cwd should match local scope")
	}
	if !Matches(sub, "/home/u/proj", f) {
		t.Error("session in a subdirectory of launch cwd should match local scope")
	}
	if Matches(sibling, "/home/u/proj", f) {
		t.Error("session in a sibling directory sharing a prefix should not match local scope")
	}
	if Matches(other, "/home/u/proj", f) {
		t.Error("session outside launch cwd should not match local scope")
	}
}

func TestMatchesScopeGlobal(t *testing.T) {
	f := Default()
	f.Global = true
	other := sess("b", func(s *session.Session) { s.Cwd = "/home/user/other" })
	if !Matches(other, "/home/user/proj", f) {
		t.Error("global scope should match sessions outside launch cwd")
	}
}

func TestMatchesScopeDirOverridePrefix(t *testing.T) {
	f := Default()
	f.DirOverride = "/home/user/proj"
	f.Global = true // DirOverride should win regardless of Global

	exact := sess("a", func(s *session.Session) { s.Cwd = "/home/user/proj" })
	nested := sess("b", func(s *session.Session) { s.Cwd = "/home/user/proj/sub" })
	sibling := sess("c", func(s *session.Session) { s.Cwd = "/home/user/projector" })
	unrelated := sess("d", func(s *session.Session) { s.Cwd = "/home/user/other" })

	if !Matches(exact, "/home/user/elsewhere", f) {
		t.Error("exact dir override match should pass")
	}
	if !Matches(nested, "/home/user/elsewhere", f) {
		t.Error("nested dir under override should pass")
	}
	if Matches(sibling, "/home/user/elsewhere", f) {
		t.Error("a directory sharing only a string prefix (not a path prefix) should not match")
	}
	if Matches(unrelated, "/home/user/elsewhere", f) {
		t.Error("unrelated directory should not match")
	}
}

func TestMatchesHomeEmptyMatchesAny(t *testing.T) {
	f := Default()
	f.ClaudeHome = "/home/user/.claude"
	s := sess("a") // s.ClaudeHome left empty
	if !Matches(s, "/home/user/proj", f) {
		t.Error("session with no recorded home should match any home filter")
	}
}

func TestMatchesHomeMismatch(t *testing.T) {
	f := Default()
	f.ClaudeHome = "/home/user/.claude"
	s := sess("a", func(s *session.Session) { s.ClaudeHome = "/other/.claude" })
	if Matches(s, "/home/user/proj", f) {
		t.Error("session with a differing recorded home should not match")
	}
}

func TestMatchesMinLines(t *testing.T) {
	f := Default()
	f.MinLines = 20
	short := sess("a", func(s *session.Session) { s.Lines = 5 })
	long := sess("b", func(s *session.Session) { s.Lines = 30 })
	if Matches(short, "/home/user/proj", f) {
		t.Error("session below min-lines should not match")
	}
	if !Matches(long, "/home/user/proj", f) {
		t.Error("session at or above min-lines should match")
	}
}

func TestMatchesDateRange(t *testing.T) {
	f := Default()
	f.AfterDate = DateBound{Canonical: "20260701"}
	f.BeforeDate = DateBound{Canonical: "20260731"}

	inRange := sess("a", func(s *session.Session) { s.Modified = "2026-07-15T00:00:00Z" })
	before := sess("b", func(s *session.Session) { s.Modified = "2026-06-30T00:00:00Z" })
	after := sess("c", func(s *session.Session) { s.Modified = "2026-08-01T00:00:00Z" })

	if !Matches(inRange, "/home/user/proj", f) {
		t.Error("session within date range should match")
	}
	if Matches(before, "/home/user/proj", f) {
		t.Error("session before AfterDate should not match")
	}
	if Matches(after, "/home/user/proj", f) {
		t.Error("session after BeforeDate should not match")
	}
}

func TestFilteredIndicesPreservesOrder(t *testing.T) {
	sessions := []session.Session{
		sess("a"),
		sess("b", func(s *session.Session) { s.IsSidechain = true }),
		sess("c"),
	}
	got := FilteredIndices(sessions, "/home/user/proj", Default())
	want := []int{0, 2}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("FilteredIndices = %v, want %v", got, want)
	}
}

func TestArrangeNoQuerySortsByModifiedDesc(t *testing.T) {
	sessions := []session.Session{
		sess("a", func(s *session.Session) { s.Modified = "2026-07-01T00:00:00Z" }),
		sess("b", func(s *session.Session) { s.Modified = "2026-07-15T00:00:00Z" }),
		sess("c", func(s *session.Session) { s.Modified = "2026-07-10T00:00:00Z" }),
	}
	got := Arrange(sessions, []int{0, 1, 2}, Order{})
	want := []int{1, 2, 0}
	for i, idx := range want {
		if got[i] != idx {
			t.Fatalf("Arrange = %v, want %v", got, want)
		}
	}
}

func TestArrangeWithQueryIntersectsAndRanksByOrder(t *testing.T) {
	sessions := []session.Session{
		sess("a"),
		sess("b"),
		sess("c"), // not ranked: should be dropped
	}
	order := Order{Query: "foo", RankedIDs: []string{"b", "a"}}
	got := Arrange(sessions, []int{0, 1, 2}, order)
	want := []int{1, 0}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Arrange = %v, want %v", got, want)
	}
}

func TestArrangeWithQueryAndTimeSortIgnoresRankOrder(t *testing.T) {
	sessions := []session.Session{
		sess("a", func(s *session.Session) { s.Modified = "2026-07-01T00:00:00Z" }),
		sess("b", func(s *session.Session) { s.Modified = "2026-07-20T00:00:00Z" }),
	}
	order := Order{Query: "foo", RankedIDs: []string{"a", "b"}, TimeSort: true}
	got := Arrange(sessions, []int{0, 1}, order)
	want := []int{1, 0}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Arrange with TimeSort = %v, want %v (most recently modified first)", got, want)
	}
}

func TestTruncate(t *testing.T) {
	idxs := []int{1, 2, 3, 4, 5}
	if got := Truncate(idxs, 0); len(got) != 5 {
		t.Errorf("Truncate with max=0 should be a no-op, got %v", got)
	}
	if got := Truncate(idxs, 3); len(got) != 3 || got[2] != 3 {
		t.Errorf("Truncate(idxs, 3) = %v, want [1 2 3]", got)
	}
	if got := Truncate(idxs, 10); len(got) != 5 {
		t.Errorf("Truncate with max > len should be a no-op, got %v", got)
	}
}
