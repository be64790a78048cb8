// Package scene is the renderer-independent scene graph. The engine states
// which nodes it wants; a Reconciler turns that into Add, Update and Remove
// calls on whichever Graph backs the view.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"sync"

	"github.com/google/uuid"

	"farmgrid/internal/core"
	"farmgrid/internal/grid"
)

var (
	ErrDuplicate = errors.New("scene: node already present")
	ErrMissing   = errors.New("scene: node not present")
	ErrDisposed  = errors.New("scene: graph disposed")
)

// Kind classifies nodes so reconciliation can be scoped.
type Kind int

const (
	Ground Kind = iota
	Tile
	Cloud
	Wind
	Rain
	Marker
	Highlight
	Structure
)

var kindNames = [...]string{"ground", "tile", "cloud", "wind", "rain", "marker", "highlight", "structure"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Node is one drawable element.
type Node struct {
	ID       string
	Kind     Kind
	Position core.Vec3
	Yaw      float64
	Scale    core.Vec3
	Opacity  float64
	Color    color.RGBA
	Label    string
	Cell     grid.Cell
}

// NewID returns a fresh node identifier.
func NewID() string { return uuid.NewString() }

// Graph receives node changes.
type Graph interface {
	Add(n Node) error
	Update(n Node) error
	Remove(id string) error
	Dispose()
}

// Memory is a Graph that keeps nodes in a map. Renderers read it back with
// Nodes. It is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	nodes    map[string]Node
	disposed bool
}

// NewMemory returns an empty graph.
func NewMemory() *Memory {
	return &Memory{nodes: make(map[string]Node)}
}

func (m *Memory) Add(n Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	if _, ok := m.nodes[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, n.ID)
	}
	m.nodes[n.ID] = n
	return nil
}

func (m *Memory) Update(n Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	if _, ok := m.nodes[n.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrMissing, n.ID)
	}
	m.nodes[n.ID] = n
	return nil
}

func (m *Memory) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	if _, ok := m.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrMissing, id)
	}
	delete(m.nodes, id)
	return nil
}

// Dispose drops every node. Later calls fail with ErrDisposed.
func (m *Memory) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = map[string]Node{}
	m.disposed = true
}

// Len returns the number of nodes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// Nodes returns the nodes of the given kinds, or all nodes when none are
// given, ordered by kind then ID.
func (m *Memory) Nodes(kinds ...Kind) []Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := kindSet(kinds)
	out := make([]Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		if want == nil || want[n.Kind] {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func kindSet(kinds []Kind) map[Kind]bool {
	if len(kinds) == 0 {
		return nil
	}
	s := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}
