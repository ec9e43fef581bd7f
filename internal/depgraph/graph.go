package depgraph

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// NodeID indexes a declaration node inside one Graph. Unlike the arena
// handles elsewhere, node IDs are dense 0-based indices so the Kahn
// walk can use them directly as slice offsets.
type NodeID uint32

// EdgeKind splits dependencies by strictness. A value edge means the
// source cannot be laid out or evaluated before the target is complete:
// a struct field held by value, an enum payload, an array element, a
// constant referenced from another constant's initializer. An indirect
// edge goes through a reference or a call and never forces ordering;
// signatures are elaborated for every declaration before any body.
type EdgeKind uint8

const (
	EdgeValue EdgeKind = iota
	EdgeIndirect
)

// Node is one top-level declaration in the dependency graph.
type Node struct {
	Decl   ast.DeclID
	Module ast.ModuleID
	Name   source.StringID
	Span   source.Span
}

// Graph holds the name-level dependency edges between top-level
// declarations of one compilation. Value and indirect edges are kept in
// separate adjacency lists; only value edges participate in cycle
// detection.
type Graph struct {
	Nodes    []Node
	value    [][]NodeID // value[from] = declarations from needs complete
	indirect [][]NodeID
	byDecl   map[ast.DeclID]NodeID
}

func NewGraph(capHint int) *Graph {
	return &Graph{
		Nodes:    make([]Node, 0, capHint),
		value:    make([][]NodeID, 0, capHint),
		indirect: make([][]NodeID, 0, capHint),
		byDecl:   make(map[ast.DeclID]NodeID, capHint),
	}
}

// AddNode registers a declaration and returns its node. Registering the
// same declaration twice returns the original node.
func (g *Graph) AddNode(n Node) NodeID {
	if id, ok := g.byDecl[n.Decl]; ok {
		return id
	}
	id, err := safecast.Conv[NodeID](len(g.Nodes))
	if err != nil {
		panic(fmt.Errorf("dependency node overflow: %w", err))
	}
	g.Nodes = append(g.Nodes, n)
	g.value = append(g.value, nil)
	g.indirect = append(g.indirect, nil)
	g.byDecl[n.Decl] = id
	return id
}

// NodeFor returns the node of a declaration, if registered.
func (g *Graph) NodeFor(decl ast.DeclID) (NodeID, bool) {
	id, ok := g.byDecl[decl]
	return id, ok
}

// AddEdge records that from depends on to. Self-referential indirect
// edges and duplicates are dropped; a self-referential value edge is kept
// because it is already a cycle.
func (g *Graph) AddEdge(kind EdgeKind, from, to NodeID) {
	if int(from) >= len(g.Nodes) || int(to) >= len(g.Nodes) {
		return
	}
	switch kind {
	case EdgeValue:
		if slices.Contains(g.value[from], to) {
			return
		}
		g.value[from] = append(g.value[from], to)
	case EdgeIndirect:
		if from == to || slices.Contains(g.indirect[from], to) {
			return
		}
		g.indirect[from] = append(g.indirect[from], to)
	}
}

// ValueEdges returns the value-dependency successors of a node.
func (g *Graph) ValueEdges(id NodeID) []NodeID {
	if int(id) >= len(g.value) {
		return nil
	}
	return g.value[id]
}

// IndirectEdges returns the reference/call successors of a node.
func (g *Graph) IndirectEdges(id NodeID) []NodeID {
	if int(id) >= len(g.indirect) {
		return nil
	}
	return g.indirect[id]
}

func (g *Graph) Len() int { return len(g.Nodes) }
