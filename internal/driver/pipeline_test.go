package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

const cleanScript = `{
  "format": 1,
  "name": "demo",
  "kind": "script",
  "file": "src/main.sw",
  "source": "fn main() -> u64 {\n    7\n}\n",
  "span": [0, 26],
  "decls": [
    {
      "node": "fn", "name": "main", "span": [0, 26], "name_span": [3, 7],
      "public": true,
      "return": {"node": "named", "span": [13, 16], "path": ["u64"]},
      "body": {
        "node": "block", "span": [17, 26],
        "tail": {"node": "int", "span": [23, 24], "int": 7}
      }
    }
  ]
}`

const brokenScript = `{
  "format": 1,
  "name": "demo",
  "kind": "script",
  "file": "src/main.sw",
  "source": "fn main() -> u64 {\n    true\n}\n",
  "span": [0, 29],
  "decls": [
    {
      "node": "fn", "name": "main", "span": [0, 29], "name_span": [3, 7],
      "public": true,
      "return": {"node": "named", "span": [13, 16], "path": ["u64"]},
      "body": {
        "node": "block", "span": [17, 29],
        "tail": {"node": "bool", "span": [23, 27], "bool": true}
      }
    }
  ]
}`

func writeTree(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tree: %v", err)
	}
	return path
}

func TestRunChecksCleanScript(t *testing.T) {
	dir := t.TempDir()
	path := writeTree(t, dir, "main.ast.json", cleanScript)

	res, err := Run(context.Background(), Options{
		Package:   "demo",
		TreePaths: []string{path},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.FromCache {
		t.Fatal("first run claims a cache hit without a cache")
	}
	if res.Bag.HasErrors() {
		t.Fatalf("clean script has errors: %v", res.Bag.Items())
	}
	if res.Sema == nil || len(res.Sema.EntryPoints) != 1 {
		t.Fatalf("entry points = %+v", res.Sema)
	}
	if res.Schedule == nil {
		t.Fatal("schedule missing on a clean run")
	}
}

func TestRunCacheHitReplaysDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := writeTree(t, dir, "main.ast.json", brokenScript)
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts := Options{Package: "demo", TreePaths: []string{path}, Cache: cache}

	first, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.FromCache || !first.Bag.HasErrors() {
		t.Fatalf("first run: fromCache=%v errors=%v", first.FromCache, first.Bag.Items())
	}

	second, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.FromCache {
		t.Fatal("second run missed the cache")
	}
	if second.Bag.ErrorCount() != first.Bag.ErrorCount() {
		t.Fatalf("replayed %d errors, want %d", second.Bag.ErrorCount(), first.Bag.ErrorCount())
	}
	d := second.Bag.Items()[0]
	if d.Code != diag.TypeMismatch {
		t.Fatalf("replayed code = %v", d.Code)
	}
	// Replayed spans must resolve against the re-registered source.
	if d.Primary.File == 0 && d.Primary.Start == 0 && d.Primary.End == 0 {
		t.Fatalf("replayed span lost: %+v", d.Primary)
	}
	start, _ := second.FileSet.Resolve(d.Primary)
	if start.Line != 2 {
		t.Fatalf("replayed span resolves to line %d, want 2", start.Line)
	}
}

func TestRunCacheMissAfterEdit(t *testing.T) {
	dir := t.TempDir()
	path := writeTree(t, dir, "main.ast.json", brokenScript)
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts := Options{Package: "demo", TreePaths: []string{path}, Cache: cache}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("first run: %v", err)
	}
	writeTree(t, dir, "main.ast.json", cleanScript)

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.FromCache {
		t.Fatal("edited input still hit the cache")
	}
	if res.Bag.HasErrors() {
		t.Fatalf("fixed script still errors: %v", res.Bag.Items())
	}
}

func TestInternalDiagnosticIsFatal(t *testing.T) {
	// An internal-consistency diagnostic means the checker caught its
	// own bug; the run aborts with a distinguished error instead of
	// presenting it as a user error.
	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.InternalUntypedNode, source.Span{}, "expression left untyped"))
	err := internalFailure("demo", bag)
	if err == nil {
		t.Fatal("internal diagnostic produced no error")
	}
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal", err)
	}

	clean := diag.NewBag(8)
	clean.Add(diag.NewError(diag.TypeMismatch, source.Span{}, "ordinary error"))
	if err := internalFailure("demo", clean); err != nil {
		t.Fatalf("ordinary errors must not abort: %v", err)
	}
}

func TestRunRejectsEmptyInputs(t *testing.T) {
	if _, err := Run(context.Background(), Options{Package: "demo"}); err == nil {
		t.Fatal("no error for empty input list")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "c"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var key [32]byte
	key[0] = 7
	in := DiskPayload{
		Schema:    diskCacheSchemaVersion,
		Package:   "demo",
		Instances: 3,
		Diags: []CachedDiag{{
			Severity: uint8(diag.SevError),
			Code:     uint16(diag.TypeMismatch),
			Message:  "boom",
			Path:     "src/main.sw",
			Start:    4, End: 8,
		}},
		HadErrors: true,
	}
	if err := cache.Put(key, &in); err != nil {
		t.Fatalf("put: %v", err)
	}
	var out DiskPayload
	ok, err := cache.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Package != "demo" || out.Instances != 3 || len(out.Diags) != 1 || out.Diags[0].Message != "boom" {
		t.Fatalf("payload = %+v", out)
	}

	var missing [32]byte
	missing[0] = 8
	if ok, err := cache.Get(missing, &out); err != nil || ok {
		t.Fatalf("miss: ok=%v err=%v", ok, err)
	}
}
