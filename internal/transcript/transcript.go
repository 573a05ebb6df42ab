// Package transcript renders a JSON-lines session transcript into the
// role-tagged text buffer the full-view overlay and in-view search
// operate on (spec.md §4.4).
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	userPrefix      = "> "
	assistantPrefix = "⏺ "
	toolResultLead  = "  ⎿"
	continuationPad = "  "
)

// scannerBufferSize matches the generous per-line buffer the teacher's
// codex adapter uses; transcript lines can carry large tool payloads.
const scannerBufferSize = 10 * 1024 * 1024

// rawRecord is the outermost shape both record families share.
type rawRecord struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

// contentBlock covers both Shape A's {type, text, name} blocks and
// Shape B's {type, text} blocks; the two vocabularies overlap enough to
// share one struct.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Name string `json:"name"`
}

// shapeAMessage is Shape A's nested `message` object.
type shapeAMessage struct {
	Content json.RawMessage `json:"content"`
}

// shapeBPayload is Shape B's `response_item` payload.
type shapeBPayload struct {
	Role    string          `json:"role"`
	Content []contentBlock  `json:"content"`
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

// Render parses a JSON-lines transcript from r and returns the
// role-tagged text buffer described in spec.md §4.4. Malformed lines are
// silently skipped; it never returns a non-nil error for bad input, only
// for a read failure on the underlying reader.
func Render(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), scannerBufferSize)

	var b strings.Builder
	lastRole := ""
	first := true

	emit := func(role, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		if !first && role != lastRole {
			b.WriteString("\n")
		}
		first = false
		lastRole = role
		writeMessage(&b, role, text)
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		switch rec.Type {
		case "user", "assistant":
			text := renderShapeA(rec.Message)
			emit(rec.Type, text)
		case "response_item":
			var payload shapeBPayload
			if err := json.Unmarshal(rec.Payload, &payload); err != nil {
				continue
			}
			if payload.Role != "user" && payload.Role != "assistant" {
				continue
			}
			emit(payload.Role, renderBlocks(payload.Content))
		case "event_msg":
			var payload struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Payload, &payload); err != nil {
				continue
			}
			if payload.Type != "user_message" {
				continue
			}
			emit("user", payload.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		return b.String(), err
	}
	return b.String(), nil
}

// renderShapeA extracts display text from a Shape A message field, which
// is either a bare string or an array of content blocks.
func renderShapeA(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var msg shapeAMessage
	if err := json.Unmarshal(raw, &msg); err != nil || len(msg.Content) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(msg.Content, &asString); err == nil {
		return asString
	}
	var blocks []contentBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return ""
	}
	return renderBlocks(blocks)
}

// renderBlocks flattens a content-block array per spec.md §4.4: text
// (and input_text/output_text) blocks emit their text, tool_use (and
// function_call) blocks emit a "[Tool: name]" marker, everything else is
// skipped.
func renderBlocks(blocks []contentBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		switch blk.Type {
		case "text", "input_text", "output_text":
			if blk.Text != "" {
				parts = append(parts, blk.Text)
			}
		case "tool_use", "function_call":
			parts = append(parts, fmt.Sprintf("[Tool: %s]", blk.Name))
		}
	}
	return strings.Join(parts, "\n")
}

// writeMessage appends one role-tagged message to b, indenting
// continuation lines so a multi-line bubble stays visually contiguous,
// and rendering a line beginning with a tool-result marker as an
// indented `⎿` line instead of a prefixed bubble.
func writeMessage(b *strings.Builder, role, text string) {
	lines := strings.Split(text, "\n")
	prefix := assistantPrefix
	if role == "user" {
		prefix = userPrefix
	}
	for i, line := range lines {
		switch {
		case i == 0:
			b.WriteString(prefix)
			b.WriteString(line)
		case strings.HasPrefix(strings.TrimSpace(line), "[Tool"):
			b.WriteString("\n")
			b.WriteString(toolResultLead)
			b.WriteString(" ")
			b.WriteString(line)
		default:
			b.WriteString("\n")
			b.WriteString(continuationPad)
			b.WriteString(line)
		}
	}
	b.WriteString("\n")
}
