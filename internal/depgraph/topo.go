package depgraph

import (
	"slices"
)

// Topo is the elaboration schedule: Order lists declarations so every
// value dependency of a node precedes it, and Batches groups nodes with
// no value dependencies between them so the driver can elaborate a batch
// in parallel. Indirect edges never constrain the schedule; bodies are
// checked after every signature exists.
type Topo struct {
	Order   []NodeID
	Batches [][]NodeID
	Cyclic  bool
	Cycles  []NodeID // nodes left inside a value cycle
}

// Toposort runs Kahn's algorithm over the value edges. Node IDs break
// ties inside a batch so the schedule is deterministic regardless of the
// order declarations were collected in.
func Toposort(g *Graph) *Topo {
	n := g.Len()
	topo := &Topo{
		Order:   make([]NodeID, 0, n),
		Batches: make([][]NodeID, 0),
	}

	indeg := make([]int, n)
	dependents := make([][]NodeID, n)
	for from := 0; from < n; from++ {
		for _, to := range g.value[from] {
			indeg[from]++
			dependents[to] = append(dependents[to], NodeID(from))
		}
	}

	current := make([]NodeID, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			current = append(current, NodeID(i))
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, dep := range dependents[id] {
				indeg[dep]--
				if indeg[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != n {
		topo.Cyclic = true
		for i := 0; i < n; i++ {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, NodeID(i))
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}
