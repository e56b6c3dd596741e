package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError describes a malformed DSL line. Line numbers are 1-based.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Parse turns DSL text into an ordered command list. It returns a *ParseError
// for the first malformed line encountered; no partial command list is
// returned alongside an error.
func Parse(text string) ([]Command, error) {
	var commands []Command

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Strip the PIPE keyword from the head line. A standalone PIPE
		// declaration carries no stage and is skipped.
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "PIPE ") {
			line = strings.TrimSpace(line[5:])
		} else if upper == "PIPE" {
			continue
		}

		// A line holds one or more stages separated by `|`. Leading markers
		// on continuation lines and legacy trailing delimiters show up as
		// empty segments and are skipped; a trailing ? ends the pipeline.
		for _, seg := range splitStages(line) {
			seg = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(seg), "?"))
			if seg == "" {
				continue
			}

			cmd, err := parseCommand(seg)
			if err != nil {
				return nil, &ParseError{Line: i + 1, Reason: err.Error()}
			}
			commands = append(commands, cmd)
		}
	}

	return commands, nil
}

// splitStages splits one line into stage texts on `|` delimiters. Delimiters
// inside quoted filter values do not split.
func splitStages(line string) []string {
	var segs []string
	var b strings.Builder
	inQuote := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '|' && !inQuote:
			segs = append(segs, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	return append(segs, b.String())
}

func parseCommand(line string) (Command, error) {
	keyword := strings.ToUpper(strings.Fields(line)[0])
	switch keyword {
	case "FILTER":
		return parseFilter(line[len("FILTER"):])
	case "SELECT":
		return parseSelect(line[len("SELECT"):])
	case "TAKE":
		return parseCount(KindTake, "TAKE", line[len("TAKE"):])
	case "SKIP":
		return parseCount(KindSkip, "SKIP", line[len("SKIP"):])
	case "DEDUP":
		return parseDedup(line[len("DEDUP"):])
	case "SORT":
		return parseSort(line[len("SORT"):])
	}
	return Command{}, fmt.Errorf("unknown stage keyword: %s", keyword)
}

// parseFilter parses `pos,len = "value"` or `pos,len != "value"`.
func parseFilter(rest string) (Command, error) {
	rest = strings.TrimSpace(rest)

	var fieldPart, valuePart string
	kind := KindFilterEq
	if idx := strings.Index(rest, "!="); idx >= 0 {
		kind = KindFilterNe
		fieldPart, valuePart = rest[:idx], rest[idx+2:]
	} else if idx := strings.Index(rest, "="); idx >= 0 {
		fieldPart, valuePart = rest[:idx], rest[idx+1:]
	} else {
		return Command{}, fmt.Errorf("FILTER requires = or != operator")
	}

	pos, length, err := parsePosLen(fieldPart)
	if err != nil {
		return Command{}, fmt.Errorf("FILTER: %w", err)
	}

	value, err := parseQuoted(valuePart)
	if err != nil {
		return Command{}, fmt.Errorf("FILTER: %w", err)
	}

	return Command{Kind: kind, Pos: pos, Len: length, Value: value}, nil
}

// parseSelect parses `s,l,d; s,l,d; ...`.
func parseSelect(rest string) (Command, error) {
	var fields []FieldSpec

	for _, spec := range strings.Split(rest, ";") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		parts := strings.Split(spec, ",")
		if len(parts) != 3 {
			return Command{}, fmt.Errorf("SELECT field %q requires src_pos,len,dst_pos", spec)
		}
		src, err := parseInt(parts[0], "source position")
		if err != nil {
			return Command{}, fmt.Errorf("SELECT: %w", err)
		}
		length, err := parseInt(parts[1], "length")
		if err != nil {
			return Command{}, fmt.Errorf("SELECT: %w", err)
		}
		dst, err := parseInt(parts[2], "destination position")
		if err != nil {
			return Command{}, fmt.Errorf("SELECT: %w", err)
		}
		fields = append(fields, FieldSpec{Src: src, Len: length, Dst: dst})
	}

	if len(fields) == 0 {
		return Command{}, fmt.Errorf("SELECT requires at least one field specification")
	}
	return Command{Kind: KindSelect, Fields: fields}, nil
}

func parseCount(kind Kind, keyword, rest string) (Command, error) {
	n, err := parseInt(rest, "count")
	if err != nil {
		return Command{}, fmt.Errorf("%s: %w", keyword, err)
	}
	return Command{Kind: kind, N: n}, nil
}

func parseDedup(rest string) (Command, error) {
	pos, length, err := parsePosLen(rest)
	if err != nil {
		return Command{}, fmt.Errorf("DEDUP: %w", err)
	}
	return Command{Kind: KindDedup, Pos: pos, Len: length}, nil
}

// parseSort parses `pos,len` optionally followed by DESC.
func parseSort(rest string) (Command, error) {
	rest = strings.TrimSpace(rest)
	desc := false
	if upper := strings.ToUpper(rest); strings.HasSuffix(upper, " DESC") {
		desc = true
		rest = strings.TrimSpace(rest[:len(rest)-len("DESC")-1])
	}
	pos, length, err := parsePosLen(rest)
	if err != nil {
		return Command{}, fmt.Errorf("SORT: %w", err)
	}
	return Command{Kind: KindSort, Pos: pos, Len: length, Desc: desc}, nil
}

func parsePosLen(s string) (pos, length int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("requires pos,len field spec")
	}
	pos, err = parseInt(parts[0], "position")
	if err != nil {
		return 0, 0, err
	}
	length, err = parseInt(parts[1], "length")
	if err != nil {
		return 0, 0, err
	}
	return pos, length, nil
}

func parseInt(s, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s number: %q", what, strings.TrimSpace(s))
	}
	return n, nil
}

// parseQuoted extracts the contents of a double-quoted value.
func parseQuoted(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return "", fmt.Errorf("value must be a terminated quoted string: %s", s)
	}
	return s[1 : len(s)-1], nil
}
