package mono

import (
	"fmt"
	"strings"

	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/sema"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

type Options struct {
	// MaxDepth bounds instantiation chains. A generic function whose
	// body demands itself at ever-larger arguments never converges; the
	// bound turns that into a diagnostic instead of divergence.
	MaxDepth int
	Reporter diag.Reporter
}

const defaultMaxDepth = 64

// Instance is one concrete copy of a generic symbol the program needs.
type Instance struct {
	Key   InstKey
	Sym   namespace.SymbolID
	Args  []types.TypeID
	Depth int
	// Requires lists the instances this one's body demands, in the
	// order its call sites were recorded.
	Requires []InstKey
	// Sites are the locations that demanded this instance directly.
	Sites []UseSite
}

// Program is the monomorphization schedule: every concrete instance the
// program needs. Order is the emit order: an instance appears after
// everything it requires, so codegen can lower front to back.
type Program struct {
	Instances map[InstKey]*Instance
	Order     []InstKey
}

func (p *Program) Get(key InstKey) *Instance {
	if p == nil {
		return nil
	}
	return p.Instances[key]
}

func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Order)
}

// siteRef is a recorded demand: a call site inside caller asking for
// entry's symbol at entry's (possibly still parameterized) arguments.
type siteRef struct {
	entry *InstEntry
	span  source.Span
}

type scheduler struct {
	res      *sema.Result
	in       *types.Interner
	m        *InstantiationMap
	opts     Options
	byCaller map[namespace.SymbolID][]siteRef
	prog     *Program
	queue    []*Instance
	// reported suppresses repeat depth diagnostics for the same symbol.
	reported map[namespace.SymbolID]bool
}

// Schedule closes the recorded instantiations over generic bodies:
// demands from non-generic code are roots, and instantiating a generic
// caller replays the demands inside its body with the caller's parameters
// substituted. The result is the complete set of concrete instances,
// discovered breadth-first.
func Schedule(res *sema.Result, m *InstantiationMap, opts Options) *Program {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	s := &scheduler{
		res:      res,
		in:       res.Types,
		m:        m,
		opts:     opts,
		byCaller: make(map[namespace.SymbolID][]siteRef),
		prog: &Program{
			Instances: make(map[InstKey]*Instance),
		},
		reported: make(map[namespace.SymbolID]bool),
	}
	s.indexSites()
	s.seedRoots()
	s.drain()
	s.prog.Order = s.emitOrder()
	return s.prog
}

// emitOrder reorders the instances callee-first: everything an instance
// requires precedes it. Discovery order breaks ties, so the result is
// deterministic. Self-recursion is its own instance and keeps its slot;
// mutual recursion falls back to discovery order within the cycle.
func (s *scheduler) emitOrder() []InstKey {
	order := make([]InstKey, 0, len(s.prog.Order))
	visited := make(map[InstKey]bool, len(s.prog.Order))
	var visit func(key InstKey)
	visit = func(key InstKey) {
		if visited[key] {
			return
		}
		visited[key] = true
		for _, req := range s.prog.Instances[key].Requires {
			if req != key {
				visit(req)
			}
		}
		order = append(order, key)
	}
	for _, key := range s.prog.Order {
		visit(key)
	}
	return order
}

func (s *scheduler) indexSites() {
	for _, e := range s.m.sortedEntries() {
		for _, us := range e.UseSites {
			s.byCaller[us.Caller] = append(s.byCaller[us.Caller], siteRef{entry: e, span: us.Span})
		}
	}
}

// seedRoots turns every demand from non-generic code into a root
// instance. Entry points are non-generic by program-kind validation, so
// everything reachable from them starts here.
func (s *scheduler) seedRoots() {
	for _, e := range s.m.sortedEntries() {
		for _, us := range e.UseSites {
			if s.isGeneric(us.Caller) {
				continue // replayed when the caller is instantiated
			}
			if !s.argsConcrete(e.TypeArgs) {
				continue // sema already diagnosed the open type
			}
			s.ensure(e.Key.Sym, e.TypeArgs, us, 1, nil)
		}
	}
}

func (s *scheduler) drain() {
	for len(s.queue) > 0 {
		inst := s.queue[0]
		s.queue = s.queue[1:]
		s.expand(inst)
	}
}

// expand replays the demands recorded inside the instance's body,
// substituting the body's rigid parameters with the instance arguments.
func (s *scheduler) expand(inst *Instance) {
	sym := s.res.Table.Symbols.Get(inst.Sym)
	if sym == nil || sym.Sig == nil || len(sym.Sig.TypeParams) == 0 {
		return
	}
	sub, err := types.MakeSubst(sym.Sig.TypeParams, inst.Args)
	if err != nil {
		return
	}
	for _, ref := range s.byCaller[inst.Sym] {
		args := make([]types.TypeID, len(ref.entry.TypeArgs))
		for i, a := range ref.entry.TypeArgs {
			args[i] = s.in.Canonical(s.in.Apply(sub, a))
		}
		if !s.argsConcrete(args) {
			continue
		}
		us := UseSite{Span: ref.span, Caller: inst.Sym}
		child := s.ensure(ref.entry.Key.Sym, args, us, inst.Depth+1, inst)
		if child != nil {
			inst.Requires = append(inst.Requires, child.Key)
		}
	}
}

// ensure returns the instance for (sym, args), creating and queueing it on
// first demand. A demand past the depth bound reports and is dropped.
func (s *scheduler) ensure(sym namespace.SymbolID, args []types.TypeID, us UseSite, depth int, from *Instance) *Instance {
	key := InstKey{Sym: sym, ArgsKey: typeArgsKey(args)}
	if inst, ok := s.prog.Instances[key]; ok {
		inst.Sites = append(inst.Sites, us)
		return inst
	}
	if depth > s.opts.MaxDepth {
		s.reportDepth(sym, us, from)
		return nil
	}
	inst := &Instance{
		Key:   key,
		Sym:   sym,
		Args:  args,
		Depth: depth,
		Sites: []UseSite{us},
	}
	s.prog.Instances[key] = inst
	s.prog.Order = append(s.prog.Order, key)
	s.queue = append(s.queue, inst)
	return inst
}

func (s *scheduler) reportDepth(sym namespace.SymbolID, us UseSite, from *Instance) {
	if s.opts.Reporter == nil || s.reported[sym] {
		return
	}
	s.reported[sym] = true
	name := s.symbolName(sym)
	msg := fmt.Sprintf(
		"instantiating %q recurses past depth %d; each level demands a new instance",
		name, s.opts.MaxDepth)
	if from != nil {
		msg += " (via " + s.instanceName(from) + ")"
	}
	s.opts.Reporter.Report(diag.NewError(diag.RecursionUnboundInst, us.Span, msg))
}

func (s *scheduler) isGeneric(id namespace.SymbolID) bool {
	if !id.IsValid() {
		return false
	}
	sym := s.res.Table.Symbols.Get(id)
	return sym != nil && sym.Sig != nil && len(sym.Sig.TypeParams) > 0
}

func (s *scheduler) argsConcrete(args []types.TypeID) bool {
	for _, a := range args {
		if !s.in.IsConcrete(a) {
			return false
		}
	}
	return true
}

func (s *scheduler) symbolName(id namespace.SymbolID) string {
	sym := s.res.Table.Symbols.Get(id)
	if sym == nil {
		return fmt.Sprintf("sym#%d", id)
	}
	name, ok := s.res.Table.Strings.Lookup(sym.Name)
	if !ok {
		return fmt.Sprintf("sym#%d", id)
	}
	return name
}

func (s *scheduler) instanceName(inst *Instance) string {
	base := s.symbolName(inst.Sym)
	if len(inst.Args) == 0 {
		return base
	}
	parts := make([]string, len(inst.Args))
	for i, a := range inst.Args {
		parts[i] = s.in.Format(s.res.Table.Strings, a)
	}
	return base + "<" + strings.Join(parts, ", ") + ">"
}
