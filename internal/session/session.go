// Package session defines the Session entity: one conversation
// transcript's read-only metadata, as loaded from the on-disk index.
package session

import "path/filepath"

// Agent identifies which AI-assistant variant produced a session.
type Agent string

const (
	AgentClaude Agent = "claude"
	AgentCodex  Agent = "codex"
)

// NormalizeAgent maps any unrecognized agent string to the non-claude
// variant, per spec.md §3 ("unknown values treated as the non-claude
// variant").
func NormalizeAgent(raw string) Agent {
	if Agent(raw) == AgentClaude {
		return AgentClaude
	}
	return AgentCodex
}

// DerivationType describes how a session relates to an ancestor session.
type DerivationType string

const (
	DerivationOriginal  DerivationType = ""
	DerivationTrimmed   DerivationType = "trimmed"
	DerivationContinued DerivationType = "continued"
)

// Session is one conversation transcript's metadata. Immutable once
// loaded: all fields are read-only for the lifetime of the record.
type Session struct {
	SessionID       string
	Agent           Agent
	Project         string
	Branch          string
	Cwd             string
	Created         string // RFC3339
	Modified        string // RFC3339; the primary ordering key
	Lines           int
	ExportPath      string
	FirstMsgRole    string
	FirstMsgContent string
	LastMsgRole     string
	LastMsgContent  string
	DerivationType  DerivationType
	IsSidechain     bool
	ClaudeHome      string // optional; empty when absent from the index
}

// EffectiveProject returns Project, falling back to the basename of Cwd
// when Project is empty (spec.md §3).
func (s Session) EffectiveProject() string {
	if s.Project != "" {
		return s.Project
	}
	if s.Cwd == "" {
		return ""
	}
	return filepath.Base(s.Cwd)
}

// IsSubAgent reports whether this session is a sub-agent (sidechain)
// session. Sub-agent membership is disjoint from the derivation-type axis
// (spec.md §3 invariant): a session is a sub-agent XOR it has a
// derivation type.
func (s Session) IsSubAgent() bool { return s.IsSidechain }

// CanonicalUUID returns the canonical UUID portion of SessionID. For the
// codex agent variant the stored id is a prefixed form whose last 36
// characters are the canonical UUID (spec.md §3); for other variants the
// full id is already canonical.
func (s Session) CanonicalUUID() string {
	if s.Agent != AgentCodex {
		return s.SessionID
	}
	if len(s.SessionID) <= 36 {
		return s.SessionID
	}
	return s.SessionID[len(s.SessionID)-36:]
}
