package tablefmt

import (
	"encoding/json"
	"fmt"
	"io"
	"math/bits"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"

	"bitcat/internal/resolve"
)

// Format selects an encoding.
type Format string

const (
	FormatPretty  Format = "pretty"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPretty, FormatJSON, FormatMsgpack:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want pretty, json or msgpack)", s)
}

// Write encodes t to w in format f.
func Write(w io.Writer, t *resolve.Table, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatMsgpack:
		return WriteMsgpack(w, t)
	default:
		return WritePretty(w, t)
	}
}

func WriteJSON(w io.Writer, t *resolve.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromTable(t)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func WriteMsgpack(w io.Writer, t *resolve.Table) error {
	if err := msgpack.NewEncoder(w).Encode(FromTable(t)); err != nil {
		return fmt.Errorf("encode msgpack: %w", err)
	}
	return nil
}

// ReadMsgpack decodes a document written by WriteMsgpack.
func ReadMsgpack(r io.Reader) (Document, error) {
	var doc Document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode msgpack: %w", err)
	}
	return doc, nil
}

// WritePretty prints an aligned table: name, hex value, source and the set
// bit positions. Column widths use display width, so names outside ASCII
// line up too.
func WritePretty(w io.Writer, t *resolve.Table) error {
	doc := FromTable(t)
	header := []string{"FLAG", "VALUE", "SOURCE", "BITS"}
	rows := make([][]string, 0, len(doc.Flags))
	for _, r := range doc.Flags {
		rows = append(rows, []string{r.Name, r.Value, r.Source, bitList(r.Lo, r.Hi)})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %d flags)\n", doc.Catalog, doc.Repr, len(doc.Flags))
	writeRow(&b, header, widths)
	for _, row := range rows {
		writeRow(&b, row, widths)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i == len(cells)-1 {
			b.WriteString(cell)
			break
		}
		b.WriteString(runewidth.FillRight(cell, widths[i]))
		b.WriteString("  ")
	}
	b.WriteByte('\n')
}

// bitList renders the set bit positions, e.g. "0,1".
func bitList(lo, hi uint64) string {
	if lo == 0 && hi == 0 {
		return "-"
	}
	var parts []string
	for half, part := range [2]uint64{lo, hi} {
		for part != 0 {
			n := bits.TrailingZeros64(part)
			parts = append(parts, strconv.Itoa(half*64+n))
			part &= part - 1
		}
	}
	return strings.Join(parts, ",")
}
