// Package searchidx is the Index Reader and Query Engine: it opens the
// on-disk inverted index an external indexer has already produced,
// materializes session metadata into memory, and answers ranked keyword
// queries against the transcript-body field.
//
// The index is a bleve index (github.com/blevesearch/bleve/v2). Field
// resolution is probe-based rather than schema-introspection-based: we
// request the mandatory field set on a small match-all search and treat
// an absent field on a returned hit as a schema mismatch, since that is
// the only way a field's absence is actually observable through bleve's
// search API (see SPEC_FULL.md §4E.1).
package searchidx

import (
	"context"
	"log/slog"
	"sort"

	"github.com/blevesearch/bleve/v2"

	"github.com/steeef/search-ui/internal/apperr"
	"github.com/steeef/search-ui/internal/session"
)

// Reader loads session metadata out of a read-only bleve index.
type Reader struct {
	idx    bleve.Index
	logger *slog.Logger

	// hasClaudeHome records whether the schema probe observed the
	// optional claude_home field on any sampled hit. The Query Engine
	// consults this, not HomeFilters.empty(), before conjoining a home
	// filter onto a body query (spec.md §4.2: the filter only applies
	// "when the loaded schema exposes claude_home").
	hasClaudeHome bool
}

// Open opens the index at path read-only and validates its schema.
// Returns *apperr.IndexUnavailable if the index cannot be opened, or
// *apperr.SchemaMismatch if a mandatory field is missing.
func Open(path string, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, &apperr.IndexUnavailable{Path: path, Err: err}
	}
	r := &Reader{idx: idx, logger: logger}
	if err := r.probeSchema(); err != nil {
		idx.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the underlying index handle.
func (r *Reader) Close() error { return r.idx.Close() }

// Index returns the underlying bleve index, for use by the Query Engine.
func (r *Reader) Index() bleve.Index { return r.idx }

// HasClaudeHome reports whether the loaded schema exposes the optional
// claude_home field, as observed by probeSchema/LoadSessions. The Query
// Engine gates its home-directory conjunction on this rather than on
// HomeFilters.empty() alone, since claude_home may be absent from older
// indices (spec.md §4.1).
func (r *Reader) HasClaudeHome() bool { return r.hasClaudeHome }

// probeSchema requests the mandatory and optional field sets on a single
// match-all hit, fails if any mandatory field is absent, and records
// whether the optional claude_home field was present. An empty index is
// treated as schema-valid (it cannot be probed); hasClaudeHome then stays
// false until LoadSessions gets a chance to observe real hits.
func (r *Reader) probeSchema() error {
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = 1
	req.Fields = allMetadataFields()
	res, err := r.idx.SearchInContext(context.Background(), req)
	if err != nil {
		return &apperr.ReadFailure{Err: err}
	}
	if len(res.Hits) == 0 {
		return nil
	}
	hit := res.Hits[0]
	for _, field := range MandatoryFields {
		if _, ok := hit.Fields[field]; !ok {
			return &apperr.SchemaMismatch{Field: field}
		}
	}
	if _, ok := hit.Fields["claude_home"]; ok {
		r.hasClaudeHome = true
	}
	return nil
}

// LoadSessions materializes up to n Session records, retrieved via a
// match-all ranked collector over 2n documents then sorted descending by
// modified and truncated to n (spec.md §4.1: the collector's limit is a
// performance hint, the authoritative ordering is recency).
func (r *Reader) LoadSessions(n int) ([]session.Session, error) {
	if n <= 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = 2 * n
	req.SortBy([]string{"-modified"})
	req.Fields = allMetadataFields()

	res, err := r.idx.SearchInContext(context.Background(), req)
	if err != nil {
		return nil, &apperr.ReadFailure{Err: err}
	}

	sessions := make([]session.Session, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if _, ok := hit.Fields["claude_home"]; ok {
			r.hasClaudeHome = true
		}
		s, err := sessionFromFields(hit.ID, hit.Fields)
		if err != nil {
			r.logger.Warn("skipping session with incomplete metadata", "id", hit.ID, "err", err)
			continue
		}
		sessions = append(sessions, s)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Modified > sessions[j].Modified
	})
	if len(sessions) > n {
		sessions = sessions[:n]
	}
	if len(sessions) == n {
		r.logger.Warn("index load hit the result cap; corpus may be truncated", "n", n)
	}
	return sessions, nil
}

func allMetadataFields() []string {
	out := make([]string, 0, len(MandatoryFields)+len(OptionalFields))
	out = append(out, MandatoryFields...)
	out = append(out, OptionalFields...)
	return out
}
