package namespace

import (
	"fmt"

	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// Declare inserts a new symbol into scope. Functions may overload when
// their arities differ; every other kind collides with any existing symbol
// of the same name in the same scope. On collision the diagnostic names the
// previous declaration site and no symbol is allocated.
func (t *Table) Declare(scope ScopeID, sym Symbol, reporter diag.Reporter) (SymbolID, bool) {
	existing := t.LookupLocal(scope, sym.Name)
	for _, prevID := range existing {
		prev := t.Symbols.Get(prevID)
		if prev == nil {
			continue
		}
		if sym.Kind == SymbolFunction && prev.Kind == SymbolFunction {
			if prev.Arity != sym.Arity {
				continue // legal arity overload
			}
			t.reportCollision(reporter, &sym, prev,
				fmt.Sprintf("function %q with %d parameter(s) is already declared",
					t.name(sym.Name), sym.Arity))
			return NoSymbolID, false
		}
		t.reportCollision(reporter, &sym, prev,
			fmt.Sprintf("the name %q is already declared in this scope", t.name(sym.Name)))
		return NoSymbolID, false
	}

	id := t.Symbols.New(sym)
	t.insert(scope, id)
	return id, true
}

func (t *Table) reportCollision(reporter diag.Reporter, sym, prev *Symbol, msg string) {
	if reporter == nil {
		return
	}
	reporter.Report(diag.NewError(diag.NameCollision, sym.Span, msg).
		WithNote(prev.Span, "previous declaration here"))
}

func (t *Table) name(id source.StringID) string {
	s, _ := t.Strings.Lookup(id)
	return s
}
