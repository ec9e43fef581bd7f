package types

import (
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/source"
)

func TestSubstDistinctDomain(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	p := in.RegisterParam(strs.Intern("T"), 1, 0)

	s := NewSubst()
	if err := s.Bind(p, in.Builtins().U64); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := s.Bind(p, in.Builtins().Bool); err == nil {
		t.Fatal("duplicate domain entry accepted")
	}
}

func TestApplyReplacesParams(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	p := in.RegisterParam(strs.Intern("T"), 1, 0)
	bl := in.Builtins()

	s, err := MakeSubst([]TypeID{p}, []TypeID{bl.U32})
	if err != nil {
		t.Fatalf("MakeSubst: %v", err)
	}

	arr := in.Intern(MakeArray(p, 8))
	got := in.Apply(s, arr)
	want := in.Intern(MakeArray(bl.U32, 8))
	if got != want {
		t.Fatalf("Apply = %s, want %s", in.Format(strs, got), in.Format(strs, want))
	}

	tup := in.Tuple([]TypeID{p, in.Intern(MakeRef(p))})
	got = in.Apply(s, tup)
	want = in.Tuple([]TypeID{bl.U32, in.Intern(MakeRef(bl.U32))})
	if got != want {
		t.Fatalf("Apply tuple = %s, want %s", in.Format(strs, got), in.Format(strs, want))
	}
}

func TestApplyNominalInstantiates(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	bl := in.Builtins()
	p := in.RegisterParam(strs.Intern("T"), 2, 0)

	generic := in.RegisterNominal(NominalStruct, strs.Intern("Box"), 2, source.Span{}, []TypeID{p})
	in.SetFields(generic, []Field{{Name: strs.Intern("value"), Type: p}})

	s, _ := MakeSubst([]TypeID{p}, []TypeID{bl.U64})
	inst := in.Apply(s, generic)
	if inst == generic {
		t.Fatal("Apply returned the generic instance")
	}
	info, ok := in.NominalInfo(inst)
	if !ok {
		t.Fatal("instance has no nominal info")
	}
	if len(info.Fields) != 1 || in.Resolve(info.Fields[0].Type) != bl.U64 {
		t.Fatalf("instance fields not substituted: %+v", info.Fields)
	}

	// Applying the same substitution twice reuses the instance.
	again := in.Apply(s, generic)
	if again != inst {
		t.Fatalf("second Apply gave %d, want %d", again, inst)
	}
}

func TestApplyRecursiveNominalTerminates(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	bl := in.Builtins()
	p := in.RegisterParam(strs.Intern("T"), 3, 0)

	// node<T> { value: T, next: &node<T> }
	node := in.RegisterNominal(NominalStruct, strs.Intern("Node"), 3, source.Span{}, []TypeID{p})
	in.SetFields(node, []Field{
		{Name: strs.Intern("value"), Type: p},
		{Name: strs.Intern("next"), Type: in.Intern(MakeRef(node))},
	})

	s, _ := MakeSubst([]TypeID{p}, []TypeID{bl.Bool})
	inst := in.Apply(s, node)
	info, _ := in.NominalInfo(inst)
	if info == nil || len(info.Fields) != 2 {
		t.Fatalf("instance fields: %+v", info)
	}
	nextType := in.MustLookup(in.Resolve(info.Fields[1].Type))
	if nextType.Kind != KindRef || in.Resolve(nextType.Elem) != inst {
		t.Fatalf("recursive field does not point back at the instance")
	}
}

func TestCanonicalChasesBindings(t *testing.T) {
	in := NewInterner()
	bl := in.Builtins()
	v := in.FreshVar(source.Span{})
	tup := in.Tuple([]TypeID{v, bl.Bool})
	if err := in.Unify(v, bl.U8); err != nil {
		t.Fatalf("unify: %+v", err)
	}
	canon := in.Canonical(tup)
	want := in.Tuple([]TypeID{bl.U8, bl.Bool})
	if canon != want {
		t.Fatalf("Canonical = %d, want %d", canon, want)
	}
}
