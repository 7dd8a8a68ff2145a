package generator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/alfredjeanlab/ticketforge/internal/graph"
	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/store"
)

// Verify checks the structural invariants of a dataset: every ticket and
// sprint validates, every edge has its inverse, every subtask points at
// an existing task, and every sprint reference resolves. All violations
// are joined into the returned error.
func Verify(ds *store.Dataset) error {
	var errs []error
	for _, id := range sortedIDs(ds.Tickets) {
		t := ds.Tickets[id]
		if err := model.ValidateTicket(t); err != nil {
			errs = append(errs, fmt.Errorf("ticket %s: %w", id, err))
		}
		if t.Type == model.TypeSubtask {
			if parent, ok := ds.Tickets[t.ParentID]; !ok || parent.Type != model.TypeTask {
				errs = append(errs, fmt.Errorf("subtask %s: parent %q is not a task", id, t.ParentID))
			}
		}
		if t.SprintID != "" {
			if _, ok := ds.Sprints[t.SprintID]; !ok {
				errs = append(errs, fmt.Errorf("ticket %s: unknown sprint %q", id, t.SprintID))
			}
		}
	}
	for _, a := range graph.CheckSymmetry(ds.Tickets) {
		errs = append(errs, errors.New(a.String()))
	}
	for _, id := range sortedIDs(ds.Sprints) {
		if err := model.ValidateSprint(ds.Sprints[id]); err != nil {
			errs = append(errs, fmt.Errorf("sprint %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
