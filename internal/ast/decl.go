package ast

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

type DeclKind uint8

const (
	DeclFn DeclKind = iota
	DeclStruct
	DeclEnum
	DeclTrait
	DeclImpl
	DeclConst
	DeclStorage
	DeclUse
)

func (k DeclKind) String() string {
	switch k {
	case DeclFn:
		return "fn"
	case DeclStruct:
		return "struct"
	case DeclEnum:
		return "enum"
	case DeclTrait:
		return "trait"
	case DeclImpl:
		return "impl"
	case DeclConst:
		return "const"
	case DeclStorage:
		return "storage"
	case DeclUse:
		return "use"
	default:
		return "unknown"
	}
}

type Decl struct {
	Kind    DeclKind
	Span    source.Span
	Payload PayloadID
}

// TypeParam is one generic parameter of a declaration.
type TypeParam struct {
	Name source.StringID
	Span source.Span
}

// Param is one function parameter.
type Param struct {
	Name source.StringID
	Type TypeExprID
	Span source.Span
}

// Field is one struct field.
type Field struct {
	Name source.StringID
	Type TypeExprID
	Span source.Span
}

// Variant is one enum variant; Payload is NoTypeExprID for bare variants.
type Variant struct {
	Name    source.StringID
	Payload TypeExprID
	Span    source.Span
}

// StorageField is one contract storage slot with its initializer, which
// must be a constant context.
type StorageField struct {
	Name source.StringID
	Type TypeExprID
	Init ExprID
	Span source.Span
}

type FnDecl struct {
	Name       source.StringID
	NameSpan   source.Span
	Public     bool
	TypeParams []TypeParamID
	Params     []ParamID
	Return     TypeExprID // NoTypeExprID means unit
	Body       ExprID     // block expr; NoExprID for trait method signatures
}

type StructDecl struct {
	Name       source.StringID
	NameSpan   source.Span
	Public     bool
	TypeParams []TypeParamID
	Fields     []FieldID
}

type EnumDecl struct {
	Name       source.StringID
	NameSpan   source.Span
	Public     bool
	TypeParams []TypeParamID
	Variants   []VariantID
}

type TraitDecl struct {
	Name     source.StringID
	NameSpan source.Span
	Public   bool
	Methods  []DeclID // DeclFn entries, possibly bodyless
}

// ImplDecl implements a trait for a target type, or adds inherent methods
// when Trait is empty.
type ImplDecl struct {
	TraitPath  []source.StringID // empty for inherent impls
	Target     TypeExprID
	TypeParams []TypeParamID
	Methods    []DeclID // DeclFn entries
	Span       source.Span
}

type ConstDecl struct {
	Name     source.StringID
	NameSpan source.Span
	Public   bool
	Type     TypeExprID
	Value    ExprID
}

type StorageDecl struct {
	Fields []StorageFieldID
}

type UseDecl struct {
	Path  []source.StringID
	Alias source.StringID // NoStringID keeps the last path segment
	Span  source.Span
}

// Decls manages allocation of declarations and their payloads.
type Decls struct {
	Arena         *Arena[Decl]
	Fns           *Arena[FnDecl]
	Structs       *Arena[StructDecl]
	Enums         *Arena[EnumDecl]
	Traits        *Arena[TraitDecl]
	Impls         *Arena[ImplDecl]
	Consts        *Arena[ConstDecl]
	Storages      *Arena[StorageDecl]
	Uses          *Arena[UseDecl]
	TypeParams    *Arena[TypeParam]
	Params        *Arena[Param]
	Fields        *Arena[Field]
	Variants      *Arena[Variant]
	StorageFields *Arena[StorageField]
}

func NewDecls(capHint uint) *Decls {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Decls{
		Arena:         NewArena[Decl](capHint),
		Fns:           NewArena[FnDecl](capHint),
		Structs:       NewArena[StructDecl](capHint),
		Enums:         NewArena[EnumDecl](capHint),
		Traits:        NewArena[TraitDecl](capHint),
		Impls:         NewArena[ImplDecl](capHint),
		Consts:        NewArena[ConstDecl](capHint),
		Storages:      NewArena[StorageDecl](capHint),
		Uses:          NewArena[UseDecl](capHint),
		TypeParams:    NewArena[TypeParam](capHint),
		Params:        NewArena[Param](capHint),
		Fields:        NewArena[Field](capHint),
		Variants:      NewArena[Variant](capHint),
		StorageFields: NewArena[StorageField](capHint),
	}
}

func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}

func (d *Decls) new(kind DeclKind, sp source.Span, payload uint32) DeclID {
	return DeclID(d.Arena.Allocate(Decl{Kind: kind, Span: sp, Payload: PayloadID(payload)}))
}

func (d *Decls) NewFn(sp source.Span, fn FnDecl) DeclID {
	return d.new(DeclFn, sp, d.Fns.Allocate(fn))
}

func (d *Decls) NewStruct(sp source.Span, st StructDecl) DeclID {
	return d.new(DeclStruct, sp, d.Structs.Allocate(st))
}

func (d *Decls) NewEnum(sp source.Span, en EnumDecl) DeclID {
	return d.new(DeclEnum, sp, d.Enums.Allocate(en))
}

func (d *Decls) NewTrait(sp source.Span, tr TraitDecl) DeclID {
	return d.new(DeclTrait, sp, d.Traits.Allocate(tr))
}

func (d *Decls) NewImpl(sp source.Span, im ImplDecl) DeclID {
	return d.new(DeclImpl, sp, d.Impls.Allocate(im))
}

func (d *Decls) NewConst(sp source.Span, c ConstDecl) DeclID {
	return d.new(DeclConst, sp, d.Consts.Allocate(c))
}

func (d *Decls) NewStorage(sp source.Span, st StorageDecl) DeclID {
	return d.new(DeclStorage, sp, d.Storages.Allocate(st))
}

func (d *Decls) NewUse(sp source.Span, u UseDecl) DeclID {
	return d.new(DeclUse, sp, d.Uses.Allocate(u))
}

func (d *Decls) NewTypeParam(sp source.Span, name source.StringID) TypeParamID {
	return TypeParamID(d.TypeParams.Allocate(TypeParam{Name: name, Span: sp}))
}

func (d *Decls) NewParam(sp source.Span, name source.StringID, typ TypeExprID) ParamID {
	return ParamID(d.Params.Allocate(Param{Name: name, Type: typ, Span: sp}))
}

func (d *Decls) NewStructField(sp source.Span, name source.StringID, typ TypeExprID) FieldID {
	return FieldID(d.Fields.Allocate(Field{Name: name, Type: typ, Span: sp}))
}

func (d *Decls) NewVariant(sp source.Span, name source.StringID, payload TypeExprID) VariantID {
	return VariantID(d.Variants.Allocate(Variant{Name: name, Payload: payload, Span: sp}))
}

func (d *Decls) NewStorageField(sp source.Span, name source.StringID, typ TypeExprID, init ExprID) StorageFieldID {
	return StorageFieldID(d.StorageFields.Allocate(StorageField{Name: name, Type: typ, Init: init, Span: sp}))
}

func (d *Decls) Fn(id DeclID) *FnDecl {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclFn {
		return nil
	}
	return d.Fns.Get(uint32(decl.Payload))
}

func (d *Decls) Struct(id DeclID) *StructDecl {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclStruct {
		return nil
	}
	return d.Structs.Get(uint32(decl.Payload))
}

func (d *Decls) Enum(id DeclID) *EnumDecl {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclEnum {
		return nil
	}
	return d.Enums.Get(uint32(decl.Payload))
}

func (d *Decls) Trait(id DeclID) *TraitDecl {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclTrait {
		return nil
	}
	return d.Traits.Get(uint32(decl.Payload))
}

func (d *Decls) Impl(id DeclID) *ImplDecl {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclImpl {
		return nil
	}
	return d.Impls.Get(uint32(decl.Payload))
}

func (d *Decls) Const(id DeclID) *ConstDecl {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclConst {
		return nil
	}
	return d.Consts.Get(uint32(decl.Payload))
}

func (d *Decls) Storage(id DeclID) *StorageDecl {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclStorage {
		return nil
	}
	return d.Storages.Get(uint32(decl.Payload))
}

func (d *Decls) Use(id DeclID) *UseDecl {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclUse {
		return nil
	}
	return d.Uses.Get(uint32(decl.Payload))
}

// Name returns the declared name for named declaration kinds.
func (d *Decls) Name(id DeclID) source.StringID {
	decl := d.Get(id)
	if decl == nil {
		return source.NoStringID
	}
	switch decl.Kind {
	case DeclFn:
		return d.Fns.Get(uint32(decl.Payload)).Name
	case DeclStruct:
		return d.Structs.Get(uint32(decl.Payload)).Name
	case DeclEnum:
		return d.Enums.Get(uint32(decl.Payload)).Name
	case DeclTrait:
		return d.Traits.Get(uint32(decl.Payload)).Name
	case DeclConst:
		return d.Consts.Get(uint32(decl.Payload)).Name
	default:
		return source.NoStringID
	}
}
