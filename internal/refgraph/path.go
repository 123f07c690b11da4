package refgraph

import (
	"fmt"

	"github.com/weftdev/weft/internal/item"
)

// FindPath searches for a path from sourceID to targetID following
// outgoing smart references only — the graph is directed and no
// implicit reverse edges exist. It returns the ordered item ids from
// source to target inclusive, or an empty slice when the target is
// unreachable. FindPath(x, x) is always [x].
//
// The walk is depth-first with backtracking, implemented with an
// explicit stack and a visited set so deep or cyclic graphs terminate
// without growing the call stack.
func (e *Engine) FindPath(sourceID, targetID string) ([]string, error) {
	if sourceID == targetID {
		return []string{sourceID}, nil
	}

	active, err := e.store.LoadActiveItems()
	if err != nil {
		return nil, fmt.Errorf("refgraph: find path: %w", err)
	}
	activeByID := make(map[string]*item.WorkItem, len(active))
	for i := range active {
		activeByID[active[i].ID] = &active[i]
	}

	// outgoing resolves an item and returns its reference targets in
	// persisted order. Unknown items have no outgoing edges.
	resolved := map[string][]string{}
	outgoing := func(id string) ([]string, error) {
		if targets, ok := resolved[id]; ok {
			return targets, nil
		}
		w := activeByID[id]
		if w == nil {
			var err error
			w, err = e.store.GetHistoricalItem(id)
			if err != nil {
				return nil, fmt.Errorf("refgraph: resolve %s: %w", id, err)
			}
		}
		var targets []string
		if w != nil {
			for _, ref := range w.Metadata.SmartReferences {
				targets = append(targets, ref.TargetID)
			}
		}
		resolved[id] = targets
		return targets, nil
	}

	type frame struct {
		id   string
		next int
	}

	stack := []frame{{id: sourceID}}
	visited := map[string]bool{sourceID: true}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		targets, err := outgoing(top.id)
		if err != nil {
			return nil, err
		}
		if top.next >= len(targets) {
			stack = stack[:len(stack)-1] // backtrack
			continue
		}

		next := targets[top.next]
		top.next++

		if next == targetID {
			path := make([]string, 0, len(stack)+1)
			for _, f := range stack {
				path = append(path, f.id)
			}
			return append(path, next), nil
		}
		if visited[next] {
			continue
		}
		visited[next] = true
		stack = append(stack, frame{id: next})
	}

	return []string{}, nil
}
