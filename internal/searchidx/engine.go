package searchidx

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/steeef/search-ui/internal/apperr"
)

// phraseBoost is the score multiplier applied to an exact phrase match
// over the independent-term disjunction (spec.md §4.2).
const phraseBoost = 5.0

// recencyHalfLife is the decay constant of the recency boost (one
// week): the boost term exp(-age/recencyHalfLife) starts at 1 for a
// fresh session and has fallen to 1/e (about 0.37) at this age.
const recencyHalfLife = 7 * 24 * time.Hour

// maxSearchResults bounds how many hits the engine asks bleve for.
const maxSearchResults = 500

// snippetMaxLen is the soft cap on an extracted snippet's length.
const snippetMaxLen = 200

// HomeFilters narrows a search to sessions whose recorded claude_home
// equals one of the given Claude or Codex home directories.
type HomeFilters struct {
	ClaudeHome string
	CodexHome  string
}

func (h HomeFilters) empty() bool {
	return h.ClaudeHome == "" && h.CodexHome == ""
}

// Result is the Query Engine's answer: document IDs in ranked order,
// plus a highlighted snippet for each.
type Result struct {
	RankedIDs []string
	Snippets  map[string]string
}

// Search runs raw against the body field, boosting exact-phrase matches
// over independent-term matches, optionally conjoined with a home-
// directory filter, then re-ranks by a recency-weighted score. An empty
// query returns an empty, error-free Result (spec.md §4.2: searching is
// opt-in, not the default view).
func (r *Reader) Search(ctx context.Context, raw string, home HomeFilters) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{Snippets: map[string]string{}}, nil
	}

	bodyQuery, err := r.runBodyQuery(ctx, raw, home)
	if err != nil {
		return Result{}, &apperr.QueryExecutionFailure{Query: raw, Err: err}
	}

	type scored struct {
		id       string
		adjusted float64
		body     string
	}
	now := time.Now()
	entries := make([]scored, 0, len(bodyQuery.Hits))
	for _, hit := range bodyQuery.Hits {
		modified, _ := hit.Fields["modified"].(string)
		age := ageOf(now, modified)
		adjusted := hit.Score * (1 + math.Exp(-age.Seconds()/recencyHalfLife.Seconds()))
		body, _ := hit.Fields[BodyField].(string)
		entries = append(entries, scored{id: hit.ID, adjusted: adjusted, body: body})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].adjusted > entries[j].adjusted })

	res := Result{
		RankedIDs: make([]string, len(entries)),
		Snippets:  make(map[string]string, len(entries)),
	}
	for i, e := range entries {
		res.RankedIDs[i] = e.id
		if snippet := ExtractSnippet(e.body, raw, snippetMaxLen); snippet != "" {
			res.Snippets[e.id] = snippet
		}
	}
	return res, nil
}

// bleveResult is a thin alias to keep runBodyQuery's signature readable.
type bleveResult = bleve.SearchResult

func (r *Reader) runBodyQuery(ctx context.Context, raw string, home HomeFilters) (*bleveResult, error) {
	tokens := strings.Fields(raw)

	tryWith := func(base query.Query) (*bleveResult, error) {
		q := composeQuery(base, raw, tokens)
		if !home.empty() && r.hasClaudeHome {
			q = bleve.NewConjunctionQuery(q, homeQuery(home))
		}
		req := bleve.NewSearchRequest(q)
		req.Size = maxSearchResults
		req.Fields = []string{BodyField, "modified"}
		return r.idx.SearchInContext(ctx, req)
	}

	res, err := tryWith(queryStringBase(raw))
	if err == nil {
		return res, nil
	}
	// Lenient degrade: the query-string syntax failed to parse (e.g. an
	// unbalanced quote or an operator token); retry treating the whole
	// query as literal terms (spec.md §4.2).
	literal := bleve.NewMatchQuery(raw)
	literal.SetField(BodyField)
	return tryWith(literal)
}

// queryStringBase scopes raw to the body field using bleve's query
// string syntax, so operators like AND/OR/field:value still work.
func queryStringBase(raw string) query.Query {
	return bleve.NewQueryStringQuery(fmt.Sprintf("%s:(%s)", BodyField, raw))
}

// composeQuery builds the boosted disjunction: base OR an exact-phrase
// match of the full query, boosted. Single-word queries skip the phrase
// clause since it would be redundant with base.
func composeQuery(base query.Query, raw string, tokens []string) query.Query {
	if len(tokens) <= 1 {
		return base
	}
	phrase := bleve.NewMatchPhraseQuery(raw)
	phrase.SetBoost(phraseBoost)
	phrase.SetField(BodyField)
	return bleve.NewDisjunctionQuery(base, phrase)
}

func homeQuery(home HomeFilters) query.Query {
	var clauses []query.Query
	if home.ClaudeHome != "" {
		t := bleve.NewTermQuery(home.ClaudeHome)
		t.SetField("claude_home")
		clauses = append(clauses, t)
	}
	if home.CodexHome != "" {
		t := bleve.NewTermQuery(home.CodexHome)
		t.SetField("claude_home")
		clauses = append(clauses, t)
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

// ageOf parses an RFC3339 modified timestamp and returns its age relative
// to now. An unparseable timestamp is a metadata defect, not a relevance
// signal, so it is treated as age zero (maximal boost) rather than
// excluded or penalized.
func ageOf(now time.Time, modified string) time.Duration {
	t, err := time.Parse(time.RFC3339, modified)
	if err != nil {
		return 0
	}
	age := now.Sub(t)
	if age < 0 {
		return 0
	}
	return age
}
