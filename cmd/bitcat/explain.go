package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"bitcat/internal/bitset"
	"bitcat/internal/word"
)

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <catalog.toml> <raw>...",
		Short: "Decompose raw values into the flags of a catalog",
		Long: `Decompose raw values into flag names. A value is an integer literal
(decimal, 0x, 0o or 0b, '_' separators allowed) or flag names joined by |,
for example "Read|Write".`,
		Args: cobra.MinimumNArgs(2),
		RunE: runExplain,
	}
}

func runExplain(cmd *cobra.Command, args []string) error {
	_, res, err := compileOne(cmd, args[0])
	if err != nil {
		return err
	}
	contract := bitset.NewContract(res.Table)
	out := cmd.OutOrStdout()
	for _, arg := range args[1:] {
		set, err := explainArg(contract, arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s = %s\n", word.Hex(set.Raw()), set)
	}
	return nil
}

// explainArg turns one argument into a set of the contract. Literals wider
// than the representation are rejected rather than silently masked.
func explainArg(c *bitset.Contract, arg string) (bitset.Set, error) {
	text := strings.TrimSpace(arg)
	if text != "" && text[0] >= '0' && text[0] <= '9' {
		raw, err := word.ParseLiteral(text)
		if err != nil {
			return bitset.Set{}, err
		}
		if !c.Repr().Fits(raw) {
			return bitset.Set{}, fmt.Errorf("%s does not fit in %s", text, c.Repr())
		}
		return c.FromRaw(raw), nil
	}
	set := c.Empty()
	for _, name := range strings.Split(text, "|") {
		name = norm.NFC.String(strings.TrimSpace(name))
		fl, ok := c.Flag(name)
		if !ok {
			return bitset.Set{}, fmt.Errorf("%s has no flag %q", c.Name(), name)
		}
		set = set.OrFlag(fl)
	}
	return set, nil
}
