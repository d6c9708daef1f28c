// Package layout places tasks on a two-dimensional dependency diagram.
// Tasks are assigned to columns by longest dependency path and to rows
// by processing order, then given pixel-style coordinates from a cell
// geometry. The layout never fails: dependency cycles are tolerated,
// with every task in a cycle falling back to the leftmost column it
// can justify and every edge still drawn.
package layout

import (
	"github.com/gb2b/prodboard/pkg/models"
)

// Options is the cell geometry of the diagram grid.
type Options struct {
	NodeWidth  int
	NodeHeight int
	GapX       int
	GapY       int
}

// Node is a placed task. Level is the column (longest dependency path
// from any root), Index the row within that column, and X/Y the
// resulting top-left coordinates.
type Node struct {
	TaskID string
	Level  int
	Index  int
	X      int
	Y      int
}

// Edge is a drawn dependency arrow from a required task to the task
// that requires it.
type Edge struct {
	From string
	To   string
}

// Diagram is the computed layout: nodes in placement order, deduplicated
// edges, and the number of occupied columns.
type Diagram struct {
	Nodes  []Node
	Edges  []Edge
	Levels int
}

// Node returns the placed node for a task id.
func (d *Diagram) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.TaskID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Compute lays out the given tasks. Subtasks are skipped; they are
// rendered inside their parent elsewhere, not as diagram nodes. Edges
// to tasks absent from the input are dropped silently.
//
// Levels are longest-path: a task sits one column to the right of its
// deepest requirement. Assignment runs as a breadth-first walk from
// the dependency roots; tasks trapped in a cycle are never reached by
// the walk and keep the deepest level an acyclic predecessor pushed
// them to, or column zero if none did.
func Compute(tasks []*models.Task, opts Options) *Diagram {
	if opts.NodeWidth <= 0 {
		opts.NodeWidth = 22
	}
	if opts.NodeHeight <= 0 {
		opts.NodeHeight = 5
	}
	if opts.GapX < 0 {
		opts.GapX = 0
	}
	if opts.GapY < 0 {
		opts.GapY = 0
	}

	present := make(map[string]*models.Task)
	var ids []string
	for _, t := range tasks {
		if t.ParentID != "" {
			continue
		}
		if _, dup := present[t.ID]; dup {
			continue
		}
		present[t.ID] = t
		ids = append(ids, t.ID)
	}

	diagram := &Diagram{}

	// Deduplicated adjacency, prerequisite -> dependent, in input order.
	adj := make(map[string][]string)
	inDegree := make(map[string]int)
	drawn := make(map[Edge]bool)
	for _, id := range ids {
		for _, req := range present[id].Requires {
			if _, ok := present[req]; !ok {
				continue
			}
			e := Edge{From: req, To: id}
			if drawn[e] {
				continue
			}
			drawn[e] = true
			diagram.Edges = append(diagram.Edges, e)
			adj[req] = append(adj[req], id)
			inDegree[id]++
		}
	}

	// Breadth-first level assignment from the roots. A task inside a
	// cycle never reaches in-degree zero and is left for the fallback
	// pass below.
	levels := make(map[string]int)
	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
			levels[id] = 0
		}
	}

	placed := make(map[string]bool)
	var order []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		placed[id] = true
		order = append(order, id)

		for _, succ := range adj[id] {
			if l := levels[id] + 1; l > levels[succ] {
				levels[succ] = l
			}
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	// Cycle fallback: everything the walk never reached, in input order.
	for _, id := range ids {
		if !placed[id] {
			order = append(order, id)
		}
	}

	rows := make(map[int]int)
	maxLevel := -1
	for _, id := range order {
		lvl := levels[id]
		idx := rows[lvl]
		rows[lvl]++
		if lvl > maxLevel {
			maxLevel = lvl
		}
		diagram.Nodes = append(diagram.Nodes, Node{
			TaskID: id,
			Level:  lvl,
			Index:  idx,
			X:      lvl * (opts.NodeWidth + opts.GapX),
			Y:      idx * (opts.NodeHeight + opts.GapY),
		})
	}
	diagram.Levels = maxLevel + 1

	return diagram
}
