// Package handoff emits the JSON record that transfers a confirmed
// selection (or, in --json mode, an entire filtered result set) to
// whatever external tool launched the search console (spec.md §6).
package handoff

import (
	"encoding/json"
	"io"

	"github.com/steeef/search-ui/internal/searchidx"
	"github.com/steeef/search-ui/internal/session"
)

// Record is one handoff JSON object.
type Record struct {
	SessionID      string `json:"session_id"`
	Agent          string `json:"agent"`
	Project        string `json:"project"`
	Branch         string `json:"branch"`
	Cwd            string `json:"cwd"`
	Lines          int    `json:"lines"`
	Created        string `json:"created"`
	Modified       string `json:"modified"`
	FirstMsg       string `json:"first_msg"`
	LastMsg        string `json:"last_msg"`
	FilePath       string `json:"file_path"`
	DerivationType string `json:"derivation_type"`
	IsSidechain    bool   `json:"is_sidechain"`
	Snippet        string `json:"snippet"`
}

// FromSession builds a Record from a session and its (possibly
// highlighted) snippet, stripping highlight delimiters before emission.
func FromSession(s session.Session, snippet string) Record {
	return Record{
		SessionID:      s.SessionID,
		Agent:          string(s.Agent),
		Project:        s.EffectiveProject(),
		Branch:         s.Branch,
		Cwd:            s.Cwd,
		Lines:          s.Lines,
		Created:        s.Created,
		Modified:       s.Modified,
		FirstMsg:       s.FirstMsgContent,
		LastMsg:        s.LastMsgContent,
		FilePath:       s.ExportPath,
		DerivationType: string(s.DerivationType),
		IsSidechain:    s.IsSidechain,
		Snippet:        searchidx.StripHighlights(snippet),
	}
}

// Write serializes one Record as a single JSON line to w.
func Write(w io.Writer, r Record) error {
	enc := json.NewEncoder(w)
	return enc.Encode(r)
}

// WriteMany serializes rs as JSON-lines to w, for --json mode.
func WriteMany(w io.Writer, rs []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range rs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
