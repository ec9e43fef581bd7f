package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/ast"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadFileValid(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "token"
kind = "contract"
trees = ["src/main.ast.json", "src/lib.ast.json"]

[check]
max_diagnostics = 50
jobs = 4
`)

	m, err := LoadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Config.Package.Name != "token" {
		t.Fatalf("name = %q", m.Config.Package.Name)
	}
	if m.Kind() != ast.ProgramContract {
		t.Fatalf("kind = %v", m.Kind())
	}
	if m.Root != dir {
		t.Fatalf("root = %q, want %q", m.Root, dir)
	}
	paths := m.TreePaths()
	if len(paths) != 2 {
		t.Fatalf("tree paths = %v", paths)
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) && !strings.HasPrefix(p, dir) {
			t.Fatalf("tree path %q not under root", p)
		}
	}
	if m.Config.Check.MaxDiagnostics != 50 || m.Config.Check.Jobs != 4 {
		t.Fatalf("check section = %+v", m.Config.Check)
	}
}

func TestLoadFileRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing package",
			content: `[check]` + "\n" + `jobs = 1` + "\n",
			wantErr: "missing [package]",
		},
		{
			name:    "missing name",
			content: "[package]\nkind = \"script\"\n",
			wantErr: "missing [package].name",
		},
		{
			name:    "missing kind",
			content: "[package]\nname = \"p\"\n",
			wantErr: "missing [package].kind",
		},
		{
			name:    "unknown kind",
			content: "[package]\nname = \"p\"\nkind = \"daemon\"\n",
			wantErr: "unknown [package].kind",
		},
		{
			name:    "absolute tree",
			content: "[package]\nname = \"p\"\nkind = \"script\"\ntrees = [\"/abs/main.ast.json\"]\n",
			wantErr: "must be relative",
		},
		{
			name:    "negative jobs",
			content: "[package]\nname = \"p\"\nkind = \"script\"\n\n[check]\njobs = -1\n",
			wantErr: "must not be negative",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeManifest(t, dir, tc.content)
			if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"p\"\nkind = \"library\"\n")
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("root = %q, want %q", m.Root, root)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if ok {
		t.Fatal("found a manifest in an empty temp dir")
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	var a, b, c Digest
	a[0], b[0], c[0] = 1, 2, 3
	if Combine(a, b, c) == Combine(a, c, b) {
		t.Fatal("dependency order must change the digest")
	}
	if Combine(a) == Combine(b) {
		t.Fatal("content must change the digest")
	}
}
