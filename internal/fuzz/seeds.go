package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, предел для тестового корпуса
	maxFuzzInput = 1 << 16
)

var compoundSeeds = []string{
	"Read | Write",
	"(A | B) & ^C",
	"A &^ B",
	"1 << 7 | 0x80",
	"!A | ~B",
	"-A",
	"A.B | f(C, D)",
	"'text' | \"x\"",
	"0b1010_1010 ^ 0o17",
	"((((A))))",
	"A |",
	"(A | B",
	"A $ B",
	"0x",
	"Café | 読む",
}

func addCompoundSeeds(f *testing.F) {
	for _, s := range compoundSeeds {
		f.Add([]byte(s))
	}
}

var catalogSeeds = []string{
	"[catalog]\nname = \"P\"\nrepr = \"u8\"\n\n[[flag]]\nname = \"A\"\nvalue = 1\n\n[[flag]]\nname = \"B\"\ncompound = \"A | 2\"\n",
	"[catalog]\nname = \"Q\"\nrepr = \"u128\"\nauto_assign = true\n\n[[flag]]\nname = \"A\"\n\n[[flag]]\nname = \"B\"\n",
	"[catalog]\nname = \"L\"\nrepr = \"u16\"\nstrict_operators = true\n\n[[flag]]\nname = \"D\"\ncompound = \"D & 1\"\n",
	"[catalog]\nname = \"E\"\nrepr = \"usize\"\nptr_bits = 32\n\n[[flag]]\nname = \"X\"\nvalue = \"0x1_0000_0000\"\n",
	"[catalog]\nrepr = \"i8\"\n[[flag]]\nvalue = -1\n",
	"[catalog\n",
}

func addCatalogSeeds(f *testing.F) {
	for _, s := range catalogSeeds {
		f.Add([]byte(s))
	}
	// примеры из testdata, если они есть
	matches, err := filepath.Glob(filepath.Join("..", "..", "testdata", "*.toml"))
	if err != nil {
		return
	}
	for _, path := range matches {
		// #nosec G304 -- path comes from repository testdata
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f.Add(clampSeed(src))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
