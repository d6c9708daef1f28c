package core

import (
	"fmt"
	"sort"

	"github.com/gb2b/prodboard/pkg/models"
)

// Suggestion is the engine's answer to "what should I work on next":
// the best ready task on the board plus a short list of alternatives
// worth considering instead.
type Suggestion struct {
	Task         *models.Task
	Alternatives []*models.Task
}

// SuggestedTask picks the highest-priority ready task across all
// sectors, breaking priority ties by earliest creation time and then
// board order. Up to maxAlternatives further ready tasks of the same
// or adjacent priority rank are returned as alternatives, in the same
// order. When nothing is ready the error wraps ErrNotFound.
func (b *board) SuggestedTask(maxAlternatives int) (*Suggestion, error) {
	var candidates []*models.Task
	for _, id := range b.order {
		if t := b.tasks[id]; t.Status == models.StatusReady {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no ready tasks on the board", ErrNotFound)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].Priority.Rank(), candidates[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return candidates[i].Created.Before(candidates[j].Created)
	})

	best := candidates[0]
	suggestion := &Suggestion{Task: best.Clone()}
	for _, t := range candidates[1:] {
		if maxAlternatives <= 0 || len(suggestion.Alternatives) >= maxAlternatives {
			break
		}
		diff := t.Priority.Rank() - best.Priority.Rank()
		if diff <= 1 {
			suggestion.Alternatives = append(suggestion.Alternatives, t.Clone())
		}
	}
	return suggestion, nil
}
