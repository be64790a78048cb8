package scene

import "errors"

// Diff counts the graph calls made by one Apply.
type Diff struct {
	Added   int
	Updated int
	Removed int
}

// Changed reports whether Apply touched the graph.
func (d Diff) Changed() bool { return d.Added+d.Updated+d.Removed > 0 }

// Reconciler remembers what it has pushed to a Graph and only sends changes.
type Reconciler struct {
	graph   Graph
	current map[string]Node
}

// NewReconciler wraps g.
func NewReconciler(g Graph) *Reconciler {
	return &Reconciler{graph: g, current: make(map[string]Node)}
}

// Apply makes the nodes of the given kinds match desired. Nodes of other
// kinds are left alone. Desired nodes whose kind is not listed are ignored.
func (r *Reconciler) Apply(kinds []Kind, desired []Node) (Diff, error) {
	var d Diff
	var errs []error
	scope := kindSet(kinds)

	want := make(map[string]Node, len(desired))
	for _, n := range desired {
		if scope[n.Kind] {
			want[n.ID] = n
		}
	}

	for id, n := range r.current {
		if !scope[n.Kind] {
			continue
		}
		if _, keep := want[id]; keep {
			continue
		}
		if err := r.graph.Remove(id); err != nil {
			errs = append(errs, err)
		}
		delete(r.current, id)
		d.Removed++
	}

	for id, n := range want {
		old, ok := r.current[id]
		switch {
		case !ok:
			if err := r.graph.Add(n); err != nil {
				errs = append(errs, err)
				continue
			}
			d.Added++
		case old != n:
			if err := r.graph.Update(n); err != nil {
				errs = append(errs, err)
				continue
			}
			d.Updated++
		default:
			continue
		}
		r.current[id] = n
	}
	return d, errors.Join(errs...)
}

// Len returns the number of nodes the reconciler believes are live.
func (r *Reconciler) Len() int { return len(r.current) }

// Dispose removes everything from the graph and disposes it.
func (r *Reconciler) Dispose() {
	r.current = make(map[string]Node)
	r.graph.Dispose()
}
