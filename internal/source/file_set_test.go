package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("perm.toml", []byte("a = 1"), 0)
	if id1 != 1 {
		t.Fatalf("first FileID = %d, want 1", id1)
	}
	id2 := fs.Add("perm.toml", []byte("a = 2"), 0)
	if id2 != 2 {
		t.Fatalf("second FileID = %d, want 2", id2)
	}

	latest, ok := fs.GetLatest("perm.toml")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "a = 1" {
		t.Errorf("old version content = %q", got)
	}
	if fs.Get(NoFileID) != nil {
		t.Errorf("Get(NoFileID) should be nil")
	}
	if fs.Get(42) != nil {
		t.Errorf("Get(42) should be nil")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.toml", []byte("a\nb\n"))
	file := fs.Get(id)

	want := []uint32{1, 3}
	if len(file.LineIdx) != len(want) {
		t.Fatalf("LineIdx = %v, want %v", file.LineIdx, want)
	}
	for i := range want {
		if file.LineIdx[i] != want[i] {
			t.Fatalf("LineIdx = %v, want %v", file.LineIdx, want)
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("c.toml", []byte("[catalog]\nname = \"P\"\nrepr = \"u8\"\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{9, LineCol{Line: 1, Col: 10}}, // сам '\n'
		{10, LineCol{Line: 2, Col: 1}},
		{17, LineCol{Line: 2, Col: 8}},
		{21, LineCol{Line: 3, Col: 1}},
	}
	for _, tt := range tests {
		start, _, ok := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if !ok {
			t.Fatalf("Resolve(%d) not ok", tt.off)
		}
		if start != tt.want {
			t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
		}
	}

	if _, _, ok := fs.Resolve(Span{}); ok {
		t.Error("Resolve of an empty span must fail")
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("l.toml", []byte("first\nsecond\nthird")))

	for i, want := range []string{"", "first", "second", "third", ""} {
		if got := f.GetLine(uint32(i)); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestLoadNormalizesInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.toml")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a = 1\r\nb = 2\r\n")...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if got := string(f.Content); got != "a = 1\nb = 2\n" {
		t.Errorf("content = %q", got)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
	if got := f.FormatPath("relative", dir); got != "bom.toml" {
		t.Errorf("relative path = %q", got)
	}
	if got := f.FormatPath("basename", ""); got != "bom.toml" {
		t.Errorf("basename = %q", got)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 6}
	b := Span{File: 1, Start: 1, End: 5}
	if got := a.Cover(b); got != (Span{File: 1, Start: 1, End: 6}) {
		t.Errorf("Cover = %v", got)
	}
	if got := (Span{}).Cover(b); got != b {
		t.Errorf("invalid.Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 1}); got != a {
		t.Errorf("cross-file Cover = %v", got)
	}
	if got := a.ShiftRight(10); got != (Span{File: 1, Start: 14, End: 16}) {
		t.Errorf("ShiftRight = %v", got)
	}
}
