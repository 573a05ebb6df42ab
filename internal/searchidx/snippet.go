package searchidx

import (
	"sort"
	"strings"
)

// highlightOpen and highlightClose are the abstract highlight delimiters
// spec.md §3 describes: the renderer restyles them, the JSON handoff
// strips them.
const (
	highlightOpen  = "⟨b⟩"
	highlightClose = "⟨/b⟩"
)

// StripHighlights removes the highlight delimiters, for the JSON handoff
// path (spec.md §6).
func StripHighlights(s string) string {
	s = strings.ReplaceAll(s, highlightOpen, "")
	s = strings.ReplaceAll(s, highlightClose, "")
	return s
}

// ExtractSnippet implements the manual snippet extraction algorithm from
// spec.md §4.2: locate the first exact-phrase occurrence in body; if
// none, the first single-keyword occurrence; slice a window of ~100
// characters centered on the match, snap to whitespace boundaries, wrap
// with "…" where truncated, and mark every matched span in the window
// with the highlight delimiters. maxLen is the soft cap (spec.md: 200).
//
// This repository runs this algorithm unconditionally rather than only
// as a fallback after bleve's own highlighter (see SPEC_FULL.md §4E.2).
func ExtractSnippet(body, rawQuery string, maxLen int) string {
	body = strings.TrimSpace(body)
	rawQuery = strings.TrimSpace(rawQuery)
	if body == "" || rawQuery == "" {
		return ""
	}

	const windowSize = 100
	lowBody := strings.ToLower(body)
	lowQuery := strings.ToLower(rawQuery)
	tokens := strings.Fields(lowQuery)

	matchPos, matchLen := -1, 0
	if idx := strings.Index(lowBody, lowQuery); idx >= 0 && len(tokens) > 1 {
		matchPos, matchLen = idx, len(rawQuery)
	}
	if matchPos < 0 {
		for _, tok := range tokens {
			if tok == "" {
				continue
			}
			if idx := strings.Index(lowBody, tok); idx >= 0 && (matchPos < 0 || idx < matchPos) {
				matchPos, matchLen = idx, len(tok)
			}
		}
	}
	if matchPos < 0 {
		return ""
	}

	start := matchPos - (windowSize-matchLen)/2
	if start < 0 {
		start = 0
	}
	end := start + windowSize
	if end > len(body) {
		end = len(body)
		start = end - windowSize
		if start < 0 {
			start = 0
		}
	}

	start = snapForward(body, start)
	end = snapBackward(body, end)
	if end <= start {
		end = len(body)
	}

	truncatedStart := start > 0
	truncatedEnd := end < len(body)

	window := body[start:end]

	// Apply the length cap to the plain window text before highlighting,
	// so the rune-trim can never land inside a ⟨b⟩…⟨/b⟩ run and leak an
	// unterminated delimiter downstream.
	reserved := 0
	if truncatedStart {
		reserved++
	}
	if maxLen > 0 {
		budget := maxLen - reserved - 1 // reserve one rune for a trailing "…"
		if budget < 0 {
			budget = 0
		}
		if runes := []rune(window); len(runes) > budget {
			window = string(runes[:budget])
			truncatedEnd = true
		}
	}

	windowLow := strings.ToLower(window)
	ranges := matchRanges(windowLow, lowQuery, tokens)
	highlighted := applyHighlights(window, ranges)

	var b strings.Builder
	if truncatedStart {
		b.WriteString("…")
	}
	b.WriteString(highlighted)
	if truncatedEnd {
		b.WriteString("…")
	}
	return b.String()
}

// snapForward moves pos forward to just past the next whitespace
// character, so the window doesn't begin mid-word. pos is returned
// unchanged when it already follows whitespace or is at or past the end
// of s; a negative pos becomes 0.
func snapForward(s string, pos int) int {
	if pos <= 0 || pos >= len(s) {
		return max0(pos)
	}
	if s[pos-1] == ' ' || s[pos-1] == '\n' || s[pos-1] == '\t' {
		return pos
	}
	for i := pos; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\n' || s[i] == '\t' {
			return i + 1
		}
	}
	return len(s)
}

// snapBackward moves pos backward to the end of the previous word, so
// the window doesn't end mid-word.
func snapBackward(s string, pos int) int {
	if pos <= 0 || pos >= len(s) {
		return min0(pos, len(s))
	}
	if s[pos] == ' ' || s[pos] == '\n' || s[pos] == '\t' {
		return pos
	}
	for i := pos; i > 0; i-- {
		if s[i-1] == ' ' || s[i-1] == '\n' || s[i-1] == '\t' {
			return i
		}
	}
	return 0
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func min0(n, cap int) int {
	if n > cap {
		return cap
	}
	if n < 0 {
		return 0
	}
	return n
}

type byteRange struct{ start, end int }

// matchRanges finds every occurrence of the phrase (if multi-word) and
// each individual token within the (lowercased) window, merging
// overlapping spans.
func matchRanges(windowLow, phraseLow string, tokens []string) []byteRange {
	var ranges []byteRange
	add := func(needle string) {
		if needle == "" {
			return
		}
		from := 0
		for {
			idx := strings.Index(windowLow[from:], needle)
			if idx < 0 {
				return
			}
			start := from + idx
			ranges = append(ranges, byteRange{start, start + len(needle)})
			from = start + len(needle)
			if from >= len(windowLow) {
				return
			}
		}
	}
	if len(tokens) > 1 {
		add(phraseLow)
	}
	for _, tok := range tokens {
		add(tok)
	}
	return mergeRanges(ranges)
}

func mergeRanges(ranges []byteRange) []byteRange {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	merged := []byteRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func applyHighlights(window string, ranges []byteRange) string {
	if len(ranges) == 0 {
		return window
	}
	var b strings.Builder
	prev := 0
	for _, r := range ranges {
		if r.start < prev {
			continue
		}
		b.WriteString(window[prev:r.start])
		b.WriteString(highlightOpen)
		b.WriteString(window[r.start:r.end])
		b.WriteString(highlightClose)
		prev = r.end
	}
	b.WriteString(window[prev:])
	return b.String()
}
