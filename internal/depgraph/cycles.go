package depgraph

import (
	"fmt"
	"strings"

	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// ExtractCycle walks value edges inside the cyclic node set and returns
// one concrete cycle, starting and ending at its smallest node. Returns
// nil when the topo found no cycle.
func ExtractCycle(g *Graph, topo *Topo) []NodeID {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return nil
	}
	comps := valueComponents(g, topo.Cycles)
	if len(comps) == 0 {
		return nil
	}
	return cycleWithin(g, comps[0])
}

// valueComponents groups the cyclic nodes into strongly connected
// components over their value edges. Disjoint cycles land in separate
// groups, so each can be reported with its own members.
func valueComponents(g *Graph, cyclic []NodeID) [][]NodeID {
	in := make(map[NodeID]struct{}, len(cyclic))
	for _, id := range cyclic {
		in[id] = struct{}{}
	}
	succ := make(map[NodeID][]NodeID, len(cyclic))
	pred := make(map[NodeID][]NodeID, len(cyclic))
	for _, id := range cyclic {
		for _, to := range g.ValueEdges(id) {
			if _, ok := in[to]; ok {
				succ[id] = append(succ[id], to)
				pred[to] = append(pred[to], id)
			}
		}
	}

	assigned := make(map[NodeID]struct{}, len(cyclic))
	var comps [][]NodeID
	for _, id := range cyclic {
		if _, ok := assigned[id]; ok {
			continue
		}
		fwd := reachable(id, succ)
		back := reachable(id, pred)
		var comp []NodeID
		for _, n := range cyclic {
			if _, ok := assigned[n]; ok {
				continue
			}
			if _, ok := fwd[n]; !ok {
				continue
			}
			if _, ok := back[n]; !ok {
				continue
			}
			comp = append(comp, n)
			assigned[n] = struct{}{}
		}
		comps = append(comps, comp)
	}
	return comps
}

func reachable(start NodeID, adj map[NodeID][]NodeID) map[NodeID]struct{} {
	seen := map[NodeID]struct{}{start: {}}
	stack := []NodeID{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[cur] {
			if _, ok := seen[next]; !ok {
				seen[next] = struct{}{}
				stack = append(stack, next)
			}
		}
	}
	return seen
}

// cycleWithin walks value edges inside one component until a node
// repeats; the revisit closes the cycle. Every component node has a
// value successor in the component, so the walk terminates.
func cycleWithin(g *Graph, comp []NodeID) []NodeID {
	if len(comp) == 0 {
		return nil
	}
	in := make(map[NodeID]struct{}, len(comp))
	for _, id := range comp {
		in[id] = struct{}{}
	}
	seen := map[NodeID]int{}
	path := []NodeID{}
	cur := comp[0]
	for {
		if at, ok := seen[cur]; ok {
			cycle := append([]NodeID(nil), path[at:]...)
			return rotateToMin(cycle)
		}
		seen[cur] = len(path)
		path = append(path, cur)
		next, ok := cyclicSuccessor(g, in, cur)
		if !ok {
			return nil
		}
		cur = next
	}
}

func cyclicSuccessor(g *Graph, inCycle map[NodeID]struct{}, id NodeID) (NodeID, bool) {
	for _, to := range g.ValueEdges(id) {
		if _, ok := inCycle[to]; ok {
			return to, true
		}
	}
	return 0, false
}

func rotateToMin(cycle []NodeID) []NodeID {
	if len(cycle) == 0 {
		return cycle
	}
	min := 0
	for i, id := range cycle {
		if id < cycle[min] {
			min = i
		}
	}
	rotated := make([]NodeID, 0, len(cycle))
	rotated = append(rotated, cycle[min:]...)
	rotated = append(rotated, cycle[:min]...)
	return rotated
}

// ReportCycles emits one recursion error per declaration trapped in a
// value cycle. Each component names its own cycle, so disjoint cycles
// never point at each other. Breaking a cycle needs a reference or
// another indirection, which the message suggests.
func ReportCycles(g *Graph, topo *Topo, strs *source.Interner, reporter diag.Reporter) {
	if !topo.Cyclic || reporter == nil {
		return
	}
	for _, comp := range valueComponents(g, topo.Cycles) {
		summary := formatCycle(g, strs, cycleWithin(g, comp))
		for _, id := range comp {
			node := g.Nodes[id]
			name, _ := strs.Lookup(node.Name)
			msg := fmt.Sprintf("%q depends on itself by value: %s", name, summary)
			reporter.Report(diag.NewError(diag.RecursionValueCycle, node.Span, msg).
				WithNote(node.Span, "insert a reference to break the cycle"))
		}
	}
}

func formatCycle(g *Graph, strs *source.Interner, cycle []NodeID) string {
	if len(cycle) == 0 {
		return ""
	}
	names := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		name, _ := strs.Lookup(g.Nodes[id].Name)
		names = append(names, name)
	}
	first, _ := strs.Lookup(g.Nodes[cycle[0]].Name)
	names = append(names, first)
	return strings.Join(names, " -> ")
}
