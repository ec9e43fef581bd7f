package astio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/sema"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

const scriptTree = `{
  "format": 1,
  "name": "demo",
  "kind": "script",
  "file": "src/main.sw",
  "source": "fn main() -> u64 {\n    let x: u64 = 2;\n    x + 3\n}\n",
  "span": [0, 55],
  "decls": [
    {
      "node": "fn", "name": "main", "span": [0, 55], "name_span": [3, 7],
      "public": true,
      "return": {"node": "named", "span": [13, 16], "path": ["u64"]},
      "body": {
        "node": "block", "span": [17, 55],
        "stmts": [
          {
            "node": "let", "span": [23, 38], "name": "x",
            "type": {"node": "named", "span": [30, 33], "path": ["u64"]},
            "value": {"node": "int", "span": [36, 37], "int": 2}
          }
        ],
        "tail": {
          "node": "binary", "span": [43, 48], "op": "add",
          "left": {"node": "path", "span": [43, 44], "path": ["x"]},
          "right": {"node": "int", "span": [47, 48], "int": 3}
        }
      }
    }
  ]
}`

func TestLoadFileDecodesAndChecks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ast.json")
	if err := os.WriteFile(path, []byte(scriptTree), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	b := ast.NewBuilder(ast.Hints{}, nil)
	fs := source.NewFileSet()
	mod, err := LoadFile(b, fs, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Modules.Get(mod).Kind; got != ast.ProgramScript {
		t.Fatalf("kind = %v, want script", got)
	}
	if f, ok := fs.GetByPath("src/main.sw"); !ok || len(f.Content) == 0 {
		t.Fatal("embedded source not registered")
	}

	bag := diag.NewBag(16)
	sema.Check(b, []ast.ModuleID{mod}, sema.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if bag.HasErrors() {
		t.Fatalf("decoded module fails checking: %v", bag.Items())
	}
}

func TestDecodeNormalizesIdentifiers(t *testing.T) {
	// "café" spelled precomposed in the declaration and decomposed at
	// the use site; NFC makes them the same symbol.
	tree := &Tree{
		Format: 1,
		Name:   "norm",
		Kind:   "library",
		Source: "const café: u64 = 1;\nconst B: u64 = café;\n",
		Decls: []declJSON{
			{
				Node: "const", Name: "café", Span: spanJSON{0, 20},
				Type:  &typeJSON{Node: "named", Span: spanJSON{12, 15}, Path: []string{"u64"}},
				Value: &exprJSON{Node: "int", Span: spanJSON{18, 19}, Int: 1},
			},
			{
				Node: "const", Name: "B", Span: spanJSON{21, 42},
				Type:  &typeJSON{Node: "named", Span: spanJSON{30, 33}, Path: []string{"u64"}},
				Value: &exprJSON{Node: "path", Span: spanJSON{36, 41}, Path: []string{"café"}},
			},
		},
	}

	b := ast.NewBuilder(ast.Hints{}, nil)
	fs := source.NewFileSet()
	mod, err := Decode(b, fs, tree)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	bag := diag.NewBag(16)
	sema.Check(b, []ast.ModuleID{mod}, sema.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if bag.HasErrors() {
		t.Fatalf("decomposed spelling did not resolve: %v", bag.Items())
	}
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{}, nil)
	_, err := Decode(b, source.NewFileSet(), &Tree{Format: 99, Kind: "script"})
	if err == nil || !strings.Contains(err.Error(), "unsupported interchange format") {
		t.Fatalf("err = %v", err)
	}
}

func TestDecodeRejectsBadNodes(t *testing.T) {
	cases := []struct {
		name string
		tree Tree
		want string
	}{
		{
			name: "bad kind",
			tree: Tree{Format: 1, Kind: "daemon"},
			want: "unknown program kind",
		},
		{
			name: "bad decl",
			tree: Tree{Format: 1, Kind: "library", Decls: []declJSON{{Node: "module"}}},
			want: "unknown decl node",
		},
		{
			name: "const without value",
			tree: Tree{Format: 1, Kind: "library", Decls: []declJSON{{Node: "const", Name: "A"}}},
			want: "without value",
		},
		{
			name: "bad op",
			tree: Tree{Format: 1, Kind: "library", Decls: []declJSON{{
				Node: "const", Name: "A",
				Value: &exprJSON{Node: "binary", Op: "xor",
					Left:  &exprJSON{Node: "int", Int: 1},
					Right: &exprJSON{Node: "int", Int: 2}},
			}}},
			want: "unknown binary op",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ast.NewBuilder(ast.Hints{}, nil)
			_, err := Decode(b, source.NewFileSet(), &tc.tree)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestTreeRoundTripsThroughJSON(t *testing.T) {
	var tree Tree
	if err := json.Unmarshal([]byte(scriptTree), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tree.Format != FormatVersion || len(tree.Decls) != 1 {
		t.Fatalf("tree = format %d, %d decls", tree.Format, len(tree.Decls))
	}
	if tree.Decls[0].Body == nil || tree.Decls[0].Body.Tail == nil {
		t.Fatal("fn body tail lost in decoding")
	}
}
