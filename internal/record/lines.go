package record

import "strings"

// FromLines parses one record per line of text, skipping empty lines. Each
// line is padded or truncated to the fixed record width.
func FromLines(text string) []Record {
	var recs []Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		recs = append(recs, FromString(line))
	}
	return recs
}

// Render formats records one per line with trailing spaces trimmed, joined by
// newlines. The result has no trailing newline; writers that need one (e.g.
// the text sink) add it themselves.
func Render(recs []Record) string {
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = strings.TrimRight(r.String(), " ")
	}
	return strings.Join(lines, "\n")
}
