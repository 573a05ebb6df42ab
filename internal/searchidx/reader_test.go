package searchidx

import (
	"log/slog"
	"testing"

	"github.com/blevesearch/bleve/v2"
)

// docWithoutClaudeHome is a complete mandatory-field document with no
// claude_home key at all, simulating an older index built before that
// optional field existed (spec.md §4.1).
func docWithoutClaudeHome(id string) map[string]interface{} {
	return map[string]interface{}{
		"session_id":        id,
		"agent":             "claude",
		"project":           "search-ui",
		"branch":            "main",
		"cwd":               "/home/dev/search-ui",
		"created":           "2026-07-01T10:00:00Z",
		"modified":          "2026-07-30T10:00:00Z",
		"lines":             42,
		"export_path":       "/tmp/" + id + ".jsonl",
		"first_msg_role":    "user",
		"first_msg_content": "how do I page through results",
		"last_msg_role":     "assistant",
		"last_msg_content":  "here is the snippet extraction algorithm",
		"derivation_type":   "original",
		"is_sidechain":      false,
		"body":              "here is the snippet extraction algorithm in full",
	}
}

func newMemReader(t *testing.T) (*Reader, bleve.Index) {
	t.Helper()
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		t.Fatalf("bleve.NewMemOnly: %v", err)
	}
	return &Reader{idx: idx, logger: slog.Default()}, idx
}

func TestProbeSchemaOnIndexMissingClaudeHomeStaysFalse(t *testing.T) {
	r, idx := newMemReader(t)
	defer idx.Close()
	if err := idx.Index("sess-1", docWithoutClaudeHome("sess-1")); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := r.probeSchema(); err != nil {
		t.Fatalf("probeSchema returned error on a complete mandatory-field document: %v", err)
	}
	if r.HasClaudeHome() {
		t.Error("HasClaudeHome() = true after probing an index with no claude_home field, want false")
	}
}

func TestProbeSchemaMissingMandatoryFieldFails(t *testing.T) {
	r, idx := newMemReader(t)
	defer idx.Close()
	doc := docWithoutClaudeHome("sess-1")
	delete(doc, "project")
	if err := idx.Index("sess-1", doc); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := r.probeSchema(); err == nil {
		t.Fatal("probeSchema returned nil error on a document missing a mandatory field")
	}
}

func TestProbeSchemaOnEmptyIndexIsValid(t *testing.T) {
	r, idx := newMemReader(t)
	defer idx.Close()
	if err := r.probeSchema(); err != nil {
		t.Fatalf("probeSchema on an empty index returned error: %v", err)
	}
	if r.HasClaudeHome() {
		t.Error("HasClaudeHome() = true on an empty, unprobed index, want false")
	}
}

func TestLoadSessionsOnIndexMissingClaudeHome(t *testing.T) {
	r, idx := newMemReader(t)
	defer idx.Close()
	if err := idx.Index("sess-1", docWithoutClaudeHome("sess-1")); err != nil {
		t.Fatalf("Index: %v", err)
	}
	sessions, err := r.LoadSessions(10)
	if err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("LoadSessions returned %d sessions, want 1", len(sessions))
	}
	if sessions[0].ClaudeHome != "" {
		t.Errorf("ClaudeHome = %q, want empty for a document with no claude_home field", sessions[0].ClaudeHome)
	}
	if r.HasClaudeHome() {
		t.Error("HasClaudeHome() = true after loading sessions from an index with no claude_home field, want false")
	}
}

func TestLoadSessionsObservesClaudeHomeWhenPresent(t *testing.T) {
	r, idx := newMemReader(t)
	defer idx.Close()
	doc := docWithoutClaudeHome("sess-1")
	doc["claude_home"] = "/home/dev/.claude"
	if err := idx.Index("sess-1", doc); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if _, err := r.LoadSessions(10); err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	if !r.HasClaudeHome() {
		t.Error("HasClaudeHome() = false after loading a session with claude_home set, want true")
	}
}
