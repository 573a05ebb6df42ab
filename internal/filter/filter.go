package filter

import (
	"sort"
	"strings"

	"github.com/steeef/search-ui/internal/session"
)

// Filters is the active_filters bundle: every axis the Filter/Sort
// Pipeline's conjunction is built from (spec.md §4.3).
type Filters struct {
	ClaudeHome string
	CodexHome  string

	// DirOverride, when non-empty, pins scope to this directory
	// regardless of Global.
	DirOverride string
	// Global selects the global scope; false means local (launch cwd
	// only). Ignored when DirOverride is set.
	Global bool

	IncludeOriginal  bool
	IncludeTrimmed   bool
	IncludeContinued bool
	IncludeSub       bool

	// Agent restricts to one agent variant; "" means any.
	Agent session.Agent

	// MinLines is the minimum body length; 0 means unset.
	MinLines int

	// AfterDate/BeforeDate are canonical YYYYMMDD bounds; "" means unset.
	AfterDate  DateBound
	BeforeDate DateBound

	// TimeSort, when true and a query is active, orders results by
	// descending modified instead of query-engine rank.
	TimeSort bool
}

// Default returns the filter bundle's resting state: original, trimmed,
// and continued sessions included, sub-agents excluded, local scope,
// no other restriction (spec.md §6: "if none are given, defaults
// apply").
func Default() Filters {
	return Filters{
		IncludeOriginal:  true,
		IncludeTrimmed:   true,
		IncludeContinued: true,
		IncludeSub:       false,
	}
}

// Matches reports whether s satisfies the conjunction of every active
// filter axis, per spec.md §4.3 steps 1-6.
func Matches(s session.Session, launchCwd string, f Filters) bool {
	if !matchesHome(s, f) {
		return false
	}
	if !matchesScope(s, launchCwd, f) {
		return false
	}
	if !matchesType(s, f) {
		return false
	}
	if f.Agent != "" && s.Agent != f.Agent {
		return false
	}
	if f.MinLines > 0 && s.Lines < f.MinLines {
		return false
	}
	if !matchesDateRange(s, f) {
		return false
	}
	return true
}

func matchesHome(s session.Session, f Filters) bool {
	var want string
	if s.Agent == session.AgentCodex {
		want = f.CodexHome
	} else {
		want = f.ClaudeHome
	}
	if want == "" || s.ClaudeHome == "" {
		return true
	}
	return s.ClaudeHome == want
}

func matchesScope(s session.Session, launchCwd string, f Filters) bool {
	if f.DirOverride != "" {
		return s.Cwd == f.DirOverride || strings.HasPrefix(s.Cwd, f.DirOverride+"/")
	}
	if f.Global {
		return true
	}
	return s.Cwd != "" && (s.Cwd == launchCwd || strings.HasPrefix(s.Cwd, launchCwd+"/"))
}

func matchesType(s session.Session, f Filters) bool {
	if s.IsSubAgent() {
		return f.IncludeSub
	}
	switch s.DerivationType {
	case session.DerivationOriginal:
		return f.IncludeOriginal
	case session.DerivationTrimmed:
		return f.IncludeTrimmed
	case session.DerivationContinued:
		return f.IncludeContinued
	default:
		return true
	}
}

func matchesDateRange(s session.Session, f Filters) bool {
	if f.AfterDate.Canonical == "" && f.BeforeDate.Canonical == "" {
		return true
	}
	modified := CanonicalModified(s.Modified)
	if modified == "" {
		return false
	}
	if f.AfterDate.Canonical != "" && modified < f.AfterDate.Canonical {
		return false
	}
	if f.BeforeDate.Canonical != "" && modified > f.BeforeDate.Canonical {
		return false
	}
	return true
}

// FilteredIndices returns the indices into sessions that pass Matches,
// in input order.
func FilteredIndices(sessions []session.Session, launchCwd string, f Filters) []int {
	var out []int
	for i, s := range sessions {
		if Matches(s, launchCwd, f) {
			out = append(out, i)
		}
	}
	return out
}

// Order describes how a filtered index set should be arranged: by
// descending modified when there is no active query; otherwise the set
// is intersected with the query-engine result and ordered by its rank,
// or by descending modified when TimeSort is set.
type Order struct {
	Query     string
	RankedIDs []string
	TimeSort  bool
}

// Arrange reorders (and, when a query is active, intersects) idxs per
// spec.md §4.3's merge step. idxs are indices into sessions.
func Arrange(sessions []session.Session, idxs []int, order Order) []int {
	if strings.TrimSpace(order.Query) == "" {
		return sortByModifiedDesc(sessions, idxs)
	}

	rankPos := make(map[string]int, len(order.RankedIDs))
	for i, id := range order.RankedIDs {
		rankPos[id] = i
	}
	intersected := make([]int, 0, len(idxs))
	for _, idx := range idxs {
		if _, ok := rankPos[sessions[idx].SessionID]; ok {
			intersected = append(intersected, idx)
		}
	}

	if order.TimeSort {
		return sortByModifiedDesc(sessions, intersected)
	}
	sort.SliceStable(intersected, func(i, j int) bool {
		return rankPos[sessions[intersected[i]].SessionID] < rankPos[sessions[intersected[j]].SessionID]
	})
	return intersected
}

func sortByModifiedDesc(sessions []session.Session, idxs []int) []int {
	out := append([]int(nil), idxs...)
	sort.SliceStable(out, func(i, j int) bool {
		return sessions[out[i]].Modified > sessions[out[j]].Modified
	})
	return out
}

// Truncate bounds idxs to max entries when max > 0 (spec.md §4.3's
// max_results cap).
func Truncate(idxs []int, max int) []int {
	if max <= 0 || len(idxs) <= max {
		return idxs
	}
	return idxs[:max]
}
