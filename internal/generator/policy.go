package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/alfredjeanlab/ticketforge/internal/config"
	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/graph"
	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// Policy decides which relationship edges a backlog gets. Every edge goes
// through graph.Link, so pairs stay symmetric.
type Policy struct {
	Probabilities config.Probabilities

	rng     *rand.Rand
	emitter *emitter
}

// AddDependencies makes ticket depend on one or two of available with
// probability Dependency. A candidate that already depends on ticket is
// skipped; longer cycles are not detected. It returns the number of edges
// added.
func (p *Policy) AddDependencies(ctx context.Context, ticket *model.Ticket, available []*model.Ticket) (int, error) {
	if len(available) == 0 || !chance(p.rng, p.Probabilities.Dependency) {
		return 0, nil
	}
	added := 0
	for _, dep := range sample(p.rng, available, between(p.rng, 1, min(2, len(available)))) {
		if dep.ID == ticket.ID || dep.Links.Has(model.RelDependsOn, ticket.ID) || ticket.Links.Has(model.RelDependsOn, dep.ID) {
			continue
		}
		if err := p.link(ctx, ticket, dep, model.RelDependsOn, ""); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// WireClonesAndDuplicates walks tickets and, per ticket, may add a clone
// edge to a ticket in another component and a duplicate edge to a ticket
// of the same type and component set. Only single-component tickets are
// cloned. Empty candidate pools are skipped.
func (p *Policy) WireClonesAndDuplicates(ctx context.Context, tickets []*model.Ticket) error {
	for _, t := range tickets {
		if len(t.Components) == 1 && chance(p.rng, p.Probabilities.Clone) {
			var candidates []*model.Ticket
			for _, c := range tickets {
				if c.ID != t.ID && hasOtherComponent(c, t) {
					candidates = append(candidates, c)
				}
			}
			if len(candidates) > 0 {
				target := choice(p.rng, candidates)
				note := fmt.Sprintf("Similar functionality needed in %s", target.Components[0])
				if err := p.link(ctx, t, target, model.RelClones, note); err != nil {
					return err
				}
			}
		}

		if chance(p.rng, p.Probabilities.Duplicate) {
			var candidates []*model.Ticket
			for _, c := range tickets {
				if c.ID != t.ID && c.Type == t.Type && sameComponents(c, t) {
					candidates = append(candidates, c)
				}
			}
			if len(candidates) > 0 {
				if err := p.link(ctx, t, choice(p.rng, candidates), model.RelDuplicates, "Exact same issue reported separately"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// WireImplementations lets one to three tasks sharing a component with a
// story implement it, with probability Implements per story.
func (p *Policy) WireImplementations(ctx context.Context, stories, tasks []*model.Ticket) error {
	for _, story := range stories {
		if !chance(p.rng, p.Probabilities.Implements) {
			continue
		}
		var candidates []*model.Ticket
		for _, t := range tasks {
			if sharesComponent(t, story) {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		note := "Technical implementation of " + story.Summary
		for _, task := range sample(p.rng, candidates, between(p.rng, 1, min(3, len(candidates)))) {
			if task.Links.Has(model.RelImplements, story.ID) {
				continue
			}
			if err := p.link(ctx, task, story, model.RelImplements, note); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Policy) link(ctx context.Context, source, target *model.Ticket, rel model.RelationType, note string) error {
	if err := graph.Link(source, target, rel, note); err != nil {
		return err
	}
	p.emitter.emit(ctx, events.TopicLinkAdded, events.LinkAdded{
		RunID:  p.emitter.runID,
		Source: source.ID,
		Target: target.ID,
		Type:   rel,
		Note:   note,
	})
	return nil
}

// hasOtherComponent reports whether c touches a component t does not.
func hasOtherComponent(c, t *model.Ticket) bool {
	for _, comp := range c.Components {
		if !t.HasComponent(comp) {
			return true
		}
	}
	return false
}

func sameComponents(a, b *model.Ticket) bool {
	x := slices.Sorted(slices.Values(a.Components))
	y := slices.Sorted(slices.Values(b.Components))
	return slices.Equal(x, y)
}

func sharesComponent(a, b *model.Ticket) bool {
	for _, c := range a.Components {
		if b.HasComponent(c) {
			return true
		}
	}
	return false
}
