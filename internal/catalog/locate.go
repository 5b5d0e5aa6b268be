package catalog

import (
	"bytes"
	"strings"

	"fortio.org/safecast"

	"bitcat/internal/source"
)

// keyLoc is where one `key = value` pair sits in the catalog text.
type keyLoc struct {
	Key   source.Span
	Value source.Span
	// Inner is the text between the quotes of a single-line string.
	Inner source.Span
	// Verbatim is true when Inner holds exactly the decoded string,
	// i.e. the string has no escape sequences.
	Verbatim bool
}

type tableLoc struct {
	Header source.Span
	Keys   map[string]keyLoc
}

func (t *tableLoc) key(name string) (keyLoc, bool) {
	if t == nil || t.Keys == nil {
		return keyLoc{}, false
	}
	k, ok := t.Keys[name]
	return k, ok
}

// span returns the value span of key, falling back to the table header.
func (t *tableLoc) span(name string, fallback source.Span) source.Span {
	if k, ok := t.key(name); ok {
		return k.Value
	}
	if t != nil && t.Header.IsValid() {
		return t.Header
	}
	return fallback
}

// layout lists the [catalog] table and every [[flag]] table in file order.
type layout struct {
	Catalog *tableLoc
	Flags   []*tableLoc
}

// locate scans the catalog text line by line and records where tables and
// keys are. It understands the subset of TOML a catalog is normally written
// in: headers, bare or quoted keys, single-line values. Anything else is left
// unlocated and diagnostics fall back to the nearest header.
func locate(f *source.File) layout {
	var (
		out     layout
		current *tableLoc
	)
	content := f.Content
	var off int
	for off <= len(content) {
		end := bytes.IndexByte(content[off:], '\n')
		if end < 0 {
			end = len(content)
		} else {
			end += off
		}
		line := content[off:end]
		trimmed := bytes.TrimLeft(line, " \t")
		lead := off + len(line) - len(trimmed)

		switch {
		case len(trimmed) == 0 || trimmed[0] == '#':
		case bytes.HasPrefix(trimmed, []byte("[[")):
			name, ok := headerName(trimmed, 2)
			current = nil
			if ok && name == "flag" {
				current = newTable(f, lead, lead+headerLen(trimmed))
				out.Flags = append(out.Flags, current)
			}
		case trimmed[0] == '[':
			name, ok := headerName(trimmed, 1)
			current = nil
			if ok && name == "catalog" {
				current = newTable(f, lead, lead+headerLen(trimmed))
				out.Catalog = current
			}
		default:
			if current != nil {
				if key, loc, ok := parseKeyLine(f, trimmed, lead); ok {
					if _, seen := current.Keys[key]; !seen {
						current.Keys[key] = loc
					}
				}
			}
		}
		off = end + 1
	}
	return out
}

func newTable(f *source.File, start, end int) *tableLoc {
	return &tableLoc{Header: mkSpan(f, start, end), Keys: make(map[string]keyLoc, 4)}
}

func headerName(line []byte, brackets int) (string, bool) {
	closing := bytes.Repeat([]byte("]"), brackets)
	i := bytes.Index(line, closing)
	if i < brackets {
		return "", false
	}
	name := strings.TrimSpace(string(line[brackets:i]))
	return strings.Trim(name, `"'`), true
}

func headerLen(line []byte) int {
	if i := bytes.LastIndexByte(line, ']'); i >= 0 {
		return i + 1
	}
	return len(line)
}

func parseKeyLine(f *source.File, line []byte, lead int) (string, keyLoc, bool) {
	eq := bytes.IndexByte(line, '=')
	if eq <= 0 {
		return "", keyLoc{}, false
	}
	rawKey := bytes.TrimRight(line[:eq], " \t")
	key := strings.Trim(string(rawKey), `"'`)
	loc := keyLoc{Key: mkSpan(f, lead, lead+len(rawKey))}

	valStart := eq + 1
	for valStart < len(line) && (line[valStart] == ' ' || line[valStart] == '\t') {
		valStart++
	}
	if valStart >= len(line) {
		return "", keyLoc{}, false
	}
	rest := line[valStart:]
	switch {
	case bytes.HasPrefix(rest, []byte(`"""`)), bytes.HasPrefix(rest, []byte(`'''`)):
		// многострочные строки не размечаем
		loc.Value = mkSpan(f, lead+valStart, lead+valStart+3)
	case rest[0] == '"':
		closeAt, escaped := scanBasicString(rest)
		loc.Value = mkSpan(f, lead+valStart, lead+valStart+closeAt+1)
		loc.Inner = mkSpan(f, lead+valStart+1, lead+valStart+closeAt)
		loc.Verbatim = !escaped && closeAt < len(rest)
	case rest[0] == '\'':
		closeAt := bytes.IndexByte(rest[1:], '\'')
		if closeAt < 0 {
			closeAt = len(rest) - 1
		}
		closeAt++
		loc.Value = mkSpan(f, lead+valStart, lead+valStart+closeAt+1)
		loc.Inner = mkSpan(f, lead+valStart+1, lead+valStart+closeAt)
		loc.Verbatim = closeAt < len(rest)
	default:
		n := len(rest)
		if hash := bytes.IndexByte(rest, '#'); hash >= 0 {
			n = hash
		}
		n = len(bytes.TrimRight(rest[:n], " \t"))
		loc.Value = mkSpan(f, lead+valStart, lead+valStart+n)
	}
	return key, loc, true
}

// scanBasicString returns the index of the closing quote of the basic string
// starting at s[0], and whether it contains escapes.
func scanBasicString(s []byte) (int, bool) {
	escaped := false
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			escaped = true
			i++
		case '"':
			return i, escaped
		}
	}
	return len(s), escaped
}

func mkSpan(f *source.File, start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return source.Span{File: f.ID}
	}
	e, err := safecast.Conv[uint32](min(end, len(f.Content)))
	if err != nil || e < s {
		e = s
	}
	return source.Span{File: f.ID, Start: s, End: e}
}
