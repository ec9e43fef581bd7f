package mono

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/sema"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// DumpOptions configure the manifest dump.
type DumpOptions struct {
	// PathMode matches source.File.FormatPath: "relative", "absolute",
	// "basename", "auto".
	PathMode string
	// Mangled also prints the stable mangled form of each argument
	// list, the name codegen keys on.
	Mangled bool
}

// Dump writes the schedule as a stable text manifest: one line per
// instance in emit order (an instance follows everything it requires),
// each followed by its use sites and the instances it requires.
func Dump(w io.Writer, prog *Program, res *sema.Result, fs *source.FileSet, opts DumpOptions) error {
	if w == nil || prog == nil || len(prog.Order) == 0 {
		return nil
	}
	if opts.PathMode == "" {
		opts.PathMode = "relative"
	}
	in := res.Types
	strs := res.Table.Strings

	for _, key := range prog.Order {
		inst := prog.Instances[key]
		label := instLabel(in, strs, res, inst)
		if _, err := fmt.Fprintf(w, "fn %s  depth=%d uses=%d\n", label, inst.Depth, len(inst.Sites)); err != nil {
			return err
		}
		if opts.Mangled {
			if _, err := fmt.Fprintf(w, "  mangle %s\n", mangleArgs(in, inst.Args)); err != nil {
				return err
			}
		}

		sites := make([]UseSite, len(inst.Sites))
		copy(sites, inst.Sites)
		sort.SliceStable(sites, func(i, j int) bool {
			si, sj := spanSortKey(sites[i].Span), spanSortKey(sites[j].Span)
			if si != sj {
				return si < sj
			}
			return sites[i].Caller < sites[j].Caller
		})
		for _, us := range sites {
			caller := "_"
			if us.Caller.IsValid() {
				caller = symbolLabel(strs, res, us.Caller)
			}
			if _, err := fmt.Fprintf(w, "  - at %s caller=%s\n",
				formatSpan(fs, us.Span, opts.PathMode), caller); err != nil {
				return err
			}
		}
		for _, req := range inst.Requires {
			child := prog.Instances[req]
			if child == nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "  requires %s\n", instLabel(in, strs, res, child)); err != nil {
				return err
			}
		}
	}
	return nil
}

func instLabel(in *types.Interner, strs *source.Interner, res *sema.Result, inst *Instance) string {
	base := symbolLabel(strs, res, inst.Sym)
	if len(inst.Args) == 0 {
		return base
	}
	out := base + "<"
	for i, a := range inst.Args {
		if i > 0 {
			out += ", "
		}
		out += in.Format(strs, a)
	}
	return out + ">"
}

func symbolLabel(strs *source.Interner, res *sema.Result, id namespace.SymbolID) string {
	sym := res.Table.Symbols.Get(id)
	if sym == nil {
		return fmt.Sprintf("sym#%d", id)
	}
	if name, ok := strs.Lookup(sym.Name); ok {
		return name
	}
	return fmt.Sprintf("sym#%d", id)
}

// mangleArgs joins the mangled form of each argument; the pair of symbol
// and this string is the stable identity of an instance between runs.
func mangleArgs(in *types.Interner, args []types.TypeID) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += "_"
		}
		out += in.Mangle(a)
	}
	return out
}

func spanSortKey(sp source.Span) string {
	if sp == (source.Span{}) {
		return ""
	}
	return fmt.Sprintf("%08d:%08d:%08d", sp.File, sp.Start, sp.End)
}

func formatSpan(fs *source.FileSet, sp source.Span, pathMode string) string {
	if fs == nil || sp == (source.Span{}) || int(sp.File) >= fs.Len() {
		return "_:0:0"
	}
	file := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	path := "_"
	if file != nil {
		path = filepath.ToSlash(file.FormatPath(pathMode, fs.BaseDir()))
	}
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}
