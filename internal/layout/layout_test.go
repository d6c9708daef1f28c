package layout

import (
	"testing"

	"github.com/gb2b/prodboard/pkg/models"
)

func task(id string, requires ...string) *models.Task {
	return &models.Task{ID: id, Title: id, Requires: requires}
}

func nodeLevel(t *testing.T, d *Diagram, id string) int {
	t.Helper()
	n, ok := d.Node(id)
	if !ok {
		t.Fatalf("task %s has no node", id)
	}
	return n.Level
}

func TestCompute_Chain(t *testing.T) {
	d := Compute([]*models.Task{
		task("A"),
		task("B", "A"),
		task("C", "B"),
	}, Options{})

	if len(d.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(d.Nodes))
	}
	for id, want := range map[string]int{"A": 0, "B": 1, "C": 2} {
		if got := nodeLevel(t, d, id); got != want {
			t.Errorf("level(%s) = %d, want %d", id, got, want)
		}
	}
	if d.Levels != 3 {
		t.Errorf("Levels = %d, want 3", d.Levels)
	}
}

func TestCompute_LevelsAreLongestPath(t *testing.T) {
	// C requires both A and B, and B requires A: C must sit to the
	// right of B, not at the level its shortest path from A suggests.
	d := Compute([]*models.Task{
		task("A"),
		task("B", "A"),
		task("C", "A", "B"),
	}, Options{})

	if got := nodeLevel(t, d, "C"); got != 2 {
		t.Errorf("level(C) = %d, want 2", got)
	}
}

func TestCompute_Diamond(t *testing.T) {
	d := Compute([]*models.Task{
		task("A"),
		task("B", "A"),
		task("C", "A"),
		task("D", "B", "C"),
	}, Options{})

	if got := nodeLevel(t, d, "D"); got != 2 {
		t.Errorf("level(D) = %d, want 2", got)
	}
	if len(d.Edges) != 4 {
		t.Errorf("expected 4 edges, got %d", len(d.Edges))
	}
	// B and C share a level and stack in discovery order.
	nb, _ := d.Node("B")
	nc, _ := d.Node("C")
	if nb.Level != 1 || nc.Level != 1 {
		t.Fatalf("levels(B, C) = %d, %d, want 1, 1", nb.Level, nc.Level)
	}
	if nb.Index != 0 || nc.Index != 1 {
		t.Errorf("indexes(B, C) = %d, %d, want 0, 1", nb.Index, nc.Index)
	}
}

func TestCompute_TwoCycleTerminates(t *testing.T) {
	d := Compute([]*models.Task{
		task("A", "B"),
		task("B", "A"),
	}, Options{})

	if len(d.Nodes) != 2 {
		t.Fatalf("expected both cycle members placed, got %d nodes", len(d.Nodes))
	}
	for _, id := range []string{"A", "B"} {
		if got := nodeLevel(t, d, id); got != 0 {
			t.Errorf("level(%s) = %d, want defensive 0", id, got)
		}
	}
	// The malformed edges still render.
	if len(d.Edges) != 2 {
		t.Errorf("expected 2 edges, got %d", len(d.Edges))
	}
}

func TestCompute_CycleWithAcyclicPredecessor(t *testing.T) {
	// B and C form a cycle but A pushes B one column right before the
	// walk stalls; C keeps the defensive level 0.
	d := Compute([]*models.Task{
		task("A"),
		task("B", "A", "C"),
		task("C", "B"),
	}, Options{})

	if got := nodeLevel(t, d, "B"); got != 1 {
		t.Errorf("level(B) = %d, want 1", got)
	}
	if got := nodeLevel(t, d, "C"); got != 0 {
		t.Errorf("level(C) = %d, want 0", got)
	}
}

func TestCompute_SkipsSubtasks(t *testing.T) {
	sub := task("S", "A")
	sub.ParentID = "A"
	d := Compute([]*models.Task{
		task("A"),
		sub,
		task("B", "S"), // requirement on a subtask is not a diagram edge
	}, Options{})

	if _, ok := d.Node("S"); ok {
		t.Error("subtasks must not appear in the diagram")
	}
	if len(d.Edges) != 0 {
		t.Errorf("edges to subtasks must be dropped, got %+v", d.Edges)
	}
	if got := nodeLevel(t, d, "B"); got != 0 {
		t.Errorf("level(B) = %d, want 0", got)
	}
}

func TestCompute_IgnoresMissingRequirements(t *testing.T) {
	d := Compute([]*models.Task{
		task("A", "GONE-00001"),
	}, Options{})

	if got := nodeLevel(t, d, "A"); got != 0 {
		t.Errorf("level(A) = %d, want 0", got)
	}
	if len(d.Edges) != 0 {
		t.Errorf("expected no edges, got %+v", d.Edges)
	}
}

func TestCompute_DeduplicatesEdges(t *testing.T) {
	d := Compute([]*models.Task{
		task("A"),
		task("B", "A", "A"),
	}, Options{})

	if len(d.Edges) != 1 {
		t.Errorf("expected 1 edge, got %+v", d.Edges)
	}
	if got := nodeLevel(t, d, "B"); got != 1 {
		t.Errorf("level(B) = %d, want 1", got)
	}
}

func TestCompute_Coordinates(t *testing.T) {
	opts := Options{NodeWidth: 20, NodeHeight: 4, GapX: 10, GapY: 2}
	d := Compute([]*models.Task{
		task("A"),
		task("B"),
		task("C", "A"),
	}, opts)

	na, _ := d.Node("A")
	nb, _ := d.Node("B")
	nc, _ := d.Node("C")

	if na.X != 0 || na.Y != 0 {
		t.Errorf("A at (%d,%d), want (0,0)", na.X, na.Y)
	}
	if nb.X != 0 || nb.Y != 6 {
		t.Errorf("B at (%d,%d), want (0,6)", nb.X, nb.Y)
	}
	if nc.X != 30 || nc.Y != 0 {
		t.Errorf("C at (%d,%d), want (30,0)", nc.X, nc.Y)
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	d := Compute(nil, Options{})
	if len(d.Nodes) != 0 || len(d.Edges) != 0 || d.Levels != 0 {
		t.Errorf("expected an empty diagram, got %+v", d)
	}
}
