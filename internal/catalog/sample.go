package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

type sampleCatalog struct {
	Name    string `toml:"name"`
	Package string `toml:"package"`
	Repr    string `toml:"repr"`
}

type sampleFlag struct {
	Name     string `toml:"name"`
	Value    *int64 `toml:"value,omitempty"`
	Compound string `toml:"compound,omitempty"`
}

type sampleDocument struct {
	Catalog sampleCatalog `toml:"catalog"`
	Flags   []sampleFlag  `toml:"flag"`
}

// WriteSample writes a small catalog named name to w; `bitcat init` uses it.
func WriteSample(w io.Writer, name string) error {
	lit := func(v int64) *int64 { return &v }
	doc := sampleDocument{
		Catalog: sampleCatalog{Name: name, Package: strings.ToLower(name), Repr: "u8"},
		Flags: []sampleFlag{
			{Name: "Read", Value: lit(1)},
			{Name: "Write", Value: lit(2)},
			{Name: "Exec", Value: lit(4)},
			{Name: "ReadWrite", Compound: "Read | Write"},
			{Name: "All", Compound: "ReadWrite | Exec"},
		},
	}
	header := "# Bit-flag catalog. Run `bitcat check` to validate it and\n" +
		"# `bitcat gen` to generate the Go flag set.\n\n"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode sample catalog: %w", err)
	}
	return nil
}
