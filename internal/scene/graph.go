// Package scene provides the retained scene graph shared by the frame
// scheduler, the renderer and the scenes that populate it.
// It has no knowledge of how nodes are drawn or animated; callers discover
// that through capability interfaces such as Updatable.
package scene

import (
	"iter"
	"sync"
)

// Node is an opaque entity placed in a scene.
// Any value can be a node; behaviour is attached through capabilities.
type Node = any

// Updatable marks a node that has per-frame behaviour.
// Update receives the elapsed time in seconds since the previous frame.
type Updatable interface {
	Update(delta float64)
}

// Graph is an ordered, append-only collection of nodes.
// Nodes are never removed; the graph only grows for its lifetime.
//
// Add may be called from asset loader goroutines while a frame is
// traversing the graph. Traversals iterate over the nodes that were present
// when they started.
type Graph struct {
	mu    sync.RWMutex
	nodes []Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends a node. Nil nodes are ignored.
func (g *Graph) Add(n Node) {
	if n == nil {
		return
	}
	g.mu.Lock()
	g.nodes = append(g.nodes, n)
	g.mu.Unlock()
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// All returns a sequence over the nodes in insertion order.
// The sequence is restartable; each iteration takes a fresh snapshot.
func (g *Graph) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range g.snapshot() {
			if !yield(n) {
				return
			}
		}
	}
}

// ForEach calls visit for every node in insertion order.
func (g *Graph) ForEach(visit func(Node)) {
	for n := range g.All() {
		visit(n)
	}
}

// snapshot returns the current node slice. Elements below len are never
// rewritten, so the slice can be read without holding the lock.
func (g *Graph) snapshot() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[:len(g.nodes):len(g.nodes)]
}
