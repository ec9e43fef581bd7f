package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"github.com/FuelLabs/sway-sub019/internal/source"
)

// NominalKind distinguishes struct-like from enum-like declarations.
type NominalKind uint8

const (
	NominalStruct NominalKind = iota
	NominalEnum
)

// Field describes a single field of a struct (or the payload of an enum
// variant). Order is declaration order; the ABI exporter relies on it.
type Field struct {
	Name source.StringID
	Type TypeID
	Span source.Span
}

// Variant describes one enum variant.
type Variant struct {
	Name    source.StringID
	Payload TypeID // Unit for payload-free variants
	Span    source.Span
}

// NominalInfo stores metadata for one nominal type instance. Owner is the
// opaque declaration handle assigned by the namespace; two instances are the
// same type exactly when Owner and Args match.
type NominalInfo struct {
	Kind     NominalKind
	Name     source.StringID
	Owner    uint32
	Decl     source.Span
	Args     []TypeID
	Fields   []Field
	Variants []Variant
}

// RegisterNominal returns the TypeID for (owner, args), reusing an existing
// instance when one matches so nominal identity stays handle-based.
func (in *Interner) RegisterNominal(kind NominalKind, name source.StringID, owner uint32, decl source.Span, args []TypeID) TypeID {
	if id, ok := in.FindNominal(owner, args); ok {
		return id
	}
	slot := in.appendNominalInfo(NominalInfo{
		Kind:  kind,
		Name:  name,
		Owner: owner,
		Decl:  decl,
		Args:  slices.Clone(args),
	})
	return in.internRaw(Type{Kind: KindNominal, Payload: slot})
}

// FindNominal locates an existing instance of owner with the given args.
func (in *Interner) FindNominal(owner uint32, args []TypeID) (TypeID, bool) {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindNominal {
			continue
		}
		info := &in.nominals[tt.Payload]
		if info.Owner == owner && slices.Equal(info.Args, args) {
			return id, true
		}
	}
	return NoTypeID, false
}

// SetFields stores resolved struct fields. Fields arrive after registration
// because recursive types need the nominal handle before their bodies
// elaborate.
func (in *Interner) SetFields(id TypeID, fields []Field) {
	info := in.nominalInfo(id)
	if info == nil {
		return
	}
	info.Fields = slices.Clone(fields)
}

// SetVariants stores resolved enum variants.
func (in *Interner) SetVariants(id TypeID, variants []Variant) {
	info := in.nominalInfo(id)
	if info == nil {
		return
	}
	info.Variants = slices.Clone(variants)
}

// NominalInfo returns metadata for the nominal TypeID.
func (in *Interner) NominalInfo(id TypeID) (*NominalInfo, bool) {
	info := in.nominalInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// FieldNamed returns the field with the given name, if any.
func (in *Interner) FieldNamed(id TypeID, name source.StringID) (Field, bool) {
	info := in.nominalInfo(id)
	if info == nil {
		return Field{}, false
	}
	for _, f := range info.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// VariantNamed returns the enum variant with the given name, if any.
func (in *Interner) VariantNamed(id TypeID, name source.StringID) (Variant, bool) {
	info := in.nominalInfo(id)
	if info == nil {
		return Variant{}, false
	}
	for _, v := range info.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

func (in *Interner) nominalInfo(id TypeID) *NominalInfo {
	tt, ok := in.Lookup(in.Resolve(id))
	if !ok || tt.Kind != KindNominal {
		return nil
	}
	return &in.nominals[tt.Payload]
}

func (in *Interner) appendNominalInfo(info NominalInfo) uint32 {
	in.nominals = append(in.nominals, info)
	slot, err := safecast.Conv[uint32](len(in.nominals) - 1)
	if err != nil {
		panic(fmt.Errorf("nominal info overflow: %w", err))
	}
	return slot
}
