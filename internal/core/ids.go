package core

import (
	"fmt"
	"strconv"
	"strings"
)

// taskIDGenerator issues sequential board-unique task ids with a fixed
// prefix, for example TASK-00042. Loading an existing board seeds the
// counter past every id already present so reloads never collide.
type taskIDGenerator struct {
	prefix   string
	padWidth int
	counter  int
}

func newTaskIDGenerator(prefix string, padWidth int) *taskIDGenerator {
	if prefix == "" {
		prefix = "TASK"
	}
	if padWidth <= 0 {
		padWidth = 5
	}
	return &taskIDGenerator{prefix: prefix, padWidth: padWidth}
}

// next returns a fresh id and advances the counter.
func (g *taskIDGenerator) next() string {
	g.counter++
	return fmt.Sprintf("%s-%0*d", g.prefix, g.padWidth, g.counter)
}

// observe advances the counter past id's numeric suffix if it has one.
// Ids with foreign prefixes or non-numeric suffixes are ignored; they
// remain valid on the board but do not influence generation.
func (g *taskIDGenerator) observe(id string) {
	idx := strings.LastIndex(id, "-")
	if idx < 0 {
		return
	}
	n, err := strconv.Atoi(id[idx+1:])
	if err != nil {
		return
	}
	if n > g.counter {
		g.counter = n
	}
}
