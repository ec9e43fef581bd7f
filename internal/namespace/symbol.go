package namespace

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolStruct
	SymbolEnum
	SymbolTrait
	SymbolConst
	SymbolStorageField
	SymbolTypeParam
	SymbolImport
	SymbolBuiltinType
	SymbolBuiltinFn
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolEnum:
		return "enum"
	case SymbolTrait:
		return "trait"
	case SymbolConst:
		return "const"
	case SymbolStorageField:
		return "storage field"
	case SymbolTypeParam:
		return "type parameter"
	case SymbolImport:
		return "import"
	case SymbolBuiltinType:
		return "builtin type"
	case SymbolBuiltinFn:
		return "builtin function"
	default:
		return "invalid"
	}
}

// IsType reports whether the symbol names a type.
func (k SymbolKind) IsType() bool {
	switch k {
	case SymbolStruct, SymbolEnum, SymbolTypeParam, SymbolBuiltinType:
		return true
	}
	return false
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagPublic SymbolFlags = 1 << iota
	SymbolFlagBuiltin
	SymbolFlagImported
	SymbolFlagSignatureDone
)

// FnSignature is the elaborated type of a function declaration. The
// signature is filled by the typed-tree builder's signature pass; bodies
// may reference it before their own elaboration (two-pass recursion
// support).
type FnSignature struct {
	TypeParams []types.TypeID
	Params     []types.TypeID
	Result     types.TypeID
	HasSelf    bool
}

// Instantiate returns a copy of the signature with every type parameter in
// the substitution's domain replaced.
func (s *FnSignature) Instantiate(in *types.Interner, sub *types.Subst) FnSignature {
	out := FnSignature{
		Params:  make([]types.TypeID, len(s.Params)),
		Result:  in.Apply(sub, s.Result),
		HasSelf: s.HasSelf,
	}
	for i, p := range s.Params {
		out.Params[i] = in.Apply(sub, p)
	}
	return out
}

// Symbol describes a named declaration available in a scope.
type Symbol struct {
	Name   source.StringID
	Kind   SymbolKind
	Scope  ScopeID
	Span   source.Span
	Flags  SymbolFlags
	Decl   ast.DeclID
	Module ast.ModuleID
	// Type carries the declared type: the generic nominal for
	// struct/enum symbols, the value type for consts and storage fields,
	// the rigid parameter type for type parameters.
	Type types.TypeID
	// Sig is set for function symbols once the signature pass ran.
	Sig *FnSignature
	// Arity supports function overloading before signatures exist.
	Arity int
	// Target is the imported symbol for SymbolImport entries.
	Target SymbolID
}

// IsPublic reports whether the symbol is visible outside its module.
func (s *Symbol) IsPublic() bool {
	return s.Flags&(SymbolFlagPublic|SymbolFlagBuiltin) != 0
}
