package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hakutaku/hakoniwa/pkg/opcode"
)

func TestSourceMapExactLine(t *testing.T) {
	m := SourceMap{5: 3, 10: 8, 15: 20}

	orig, ok := m.ResolveOriginalLine(10)
	if !ok {
		t.Fatal("expected line 10 to resolve")
	}
	if orig != 8 {
		t.Errorf("expected original line 8, got %d", orig)
	}
}

func TestSourceMapBackwardNearest(t *testing.T) {
	// The reported line falls between mapped entries; the nearest mapped
	// line at or before it wins.
	m := SourceMap{5: 4, 10: 10, 20: 30}

	orig, ok := m.ResolveOriginalLine(12)
	if !ok {
		t.Fatal("expected line 12 to resolve")
	}
	if orig != 10 {
		t.Errorf("expected original line 10, got %d", orig)
	}
}

func TestSourceMapNoMappingBelow(t *testing.T) {
	m := SourceMap{10: 10}

	if _, ok := m.ResolveOriginalLine(9); ok {
		t.Error("expected no resolution below the first mapped line")
	}
	if _, ok := m.ResolveOriginalLine(0); ok {
		t.Error("expected no resolution for line 0")
	}
}

func TestSourceMapEmpty(t *testing.T) {
	var m SourceMap

	if _, ok := m.ResolveOriginalLine(100); ok {
		t.Error("expected no resolution from an empty map")
	}
}

func TestScriptHandlerLookup(t *testing.T) {
	s := &Script{
		Name: "ball.hks",
		Handlers: map[string][]opcode.OpCode{
			"init": {{Cmd: opcode.Call, Args: []any{"print", "hi"}, Line: 1}},
		},
	}

	if got := s.Handler("init"); len(got) != 1 {
		t.Errorf("expected init handler with 1 opcode, got %d", len(got))
	}
	if got := s.Handler("update"); got != nil {
		t.Errorf("expected nil for undefined handler, got %v", got)
	}

	var nilScript *Script
	if got := nilScript.Handler("init"); got != nil {
		t.Error("expected nil handler from nil script")
	}
}

func TestLoaderLoadsUTF8Source(t *testing.T) {
	dir := t.TempDir()
	content := "x = 1\nprint(x)\n"
	if err := os.WriteFile(filepath.Join(dir, "scene.hks"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir)
	sources, err := loader.LoadAllSources()
	if err != nil {
		t.Fatalf("LoadAllSources failed: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].FileName != "scene.hks" {
		t.Errorf("unexpected file name %q", sources[0].FileName)
	}
	if sources[0].Content != content {
		t.Errorf("unexpected content %q", sources[0].Content)
	}
}

func TestLoaderDecodesShiftJIS(t *testing.T) {
	dir := t.TempDir()
	// "あ" in Shift-JIS.
	data := []byte{0x82, 0xA0, 0x0A}
	if err := os.WriteFile(filepath.Join(dir, "jp.HKS"), data, 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir)
	sources, err := loader.LoadAllSources()
	if err != nil {
		t.Fatalf("LoadAllSources failed: %v", err)
	}
	if sources[0].Content != "あ\n" {
		t.Errorf("expected decoded content, got %q", sources[0].Content)
	}
}

func TestLoaderNoSources(t *testing.T) {
	loader := NewLoader(t.TempDir())
	if _, err := loader.LoadAllSources(); err == nil {
		t.Error("expected error for a directory without script sources")
	}
}

func TestSourceFileLine(t *testing.T) {
	f := &SourceFile{Content: "one\r\ntwo\nthree"}

	if got := f.Line(1); got != "one" {
		t.Errorf("line 1 = %q", got)
	}
	if got := f.Line(3); got != "three" {
		t.Errorf("line 3 = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Errorf("line 4 = %q, expected empty", got)
	}
	if got := f.Line(0); got != "" {
		t.Errorf("line 0 = %q, expected empty", got)
	}
}
