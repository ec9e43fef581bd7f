package namespace

import (
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// seedPrelude declares the implicit built-ins every module sees: the
// primitive type names and the diverging revert intrinsic.
func (t *Table) seedPrelude(in *types.Interner) {
	bl := in.Builtins()

	builtinType := func(name string, typ types.TypeID) {
		id := t.Symbols.New(Symbol{
			Name:  t.Strings.Intern(name),
			Kind:  SymbolBuiltinType,
			Flags: SymbolFlagBuiltin,
			Type:  typ,
		})
		t.insert(t.prelude, id)
	}
	builtinType("u8", bl.U8)
	builtinType("u16", bl.U16)
	builtinType("u32", bl.U32)
	builtinType("u64", bl.U64)
	builtinType("bool", bl.Bool)
	builtinType("str", bl.String)

	// revert(code: u64) -> ! aborts execution; its never type lets it
	// close any match arm or branch.
	revert := t.Symbols.New(Symbol{
		Name:  t.Strings.Intern("revert"),
		Kind:  SymbolBuiltinFn,
		Flags: SymbolFlagBuiltin | SymbolFlagSignatureDone,
		Arity: 1,
		Sig: &FnSignature{
			Params: []types.TypeID{bl.U64},
			Result: bl.Never,
		},
	})
	t.insert(t.prelude, revert)
}
