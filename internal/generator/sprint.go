package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/clock"
	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/idgen"
	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/store"
)

// ErrEpicAssigned is returned when an epic is assigned to a sprint.
var ErrEpicAssigned = errors.New("epics are not assigned to sprints")

// Assign adds t to sprint s and rolls its estimate into the committed
// total. The estimate also counts as completed if t is Done right now; a
// later transition to Done is not rolled up. Assigning a ticket twice to
// the same sprint is a no-op.
func Assign(t *model.Ticket, s *model.Sprint) error {
	if t.Type == model.TypeEpic {
		return fmt.Errorf("assign %s to %s: %w", t.ID, s.ID, ErrEpicAssigned)
	}
	if t.SprintID == s.ID && s.HasTicket(t.ID) {
		return nil
	}
	s.Tickets = append(s.Tickets, t.ID)
	t.SprintID = s.ID
	if points := t.Points(); points > 0 {
		s.StoryPointsCommitted += points
		if t.Status == model.StatusDone {
			s.StoryPointsCompleted += points
		}
	}
	return nil
}

var (
	planningNotes = []string{
		"Capacity reduced by one engineer for on-call rotation.",
		"Carry-over items from the previous sprint take priority.",
		"Team agreed to limit work in progress to two items per engineer.",
		"Dependencies on the platform team were confirmed during refinement.",
		"Stretch goals were identified but not committed.",
	}
	retrospectiveNotes = []string{
		"Estimation accuracy improved compared to the last sprint.",
		"Code review turnaround slowed delivery in the second week.",
		"Pairing on the riskiest items reduced late surprises.",
		"Unplanned support work consumed part of the capacity.",
		"Deployment pipeline instability caused several delays.",
	}
)

// SprintPlanner creates sprints for teams.
type SprintPlanner struct {
	DurationDays int
	// Initiative seeds sprint goals for teams without a tech stack.
	Initiative string

	mem     *store.Memory
	ids     *idgen.Allocator
	rng     *rand.Rand
	clock   clock.Clock
	emitter *emitter
	counter int
}

// Generate creates a sprint for team starting at start. The sprint is
// Active when now falls inside it and Planned otherwise; a sprint that
// already ended is Completed and back-filled with Close.
func (p *SprintPlanner) Generate(ctx context.Context, team *model.Team, start time.Time) (*model.Sprint, error) {
	id, err := p.ids.ForKind(idgen.PrefixSprint)
	if err != nil {
		return nil, fmt.Errorf("generate sprint: %w", err)
	}
	p.counter++
	end := start.AddDate(0, 0, p.DurationDays)
	demo := end.AddDate(0, 0, -1)
	s := &model.Sprint{
		ID:            id,
		Name:          fmt.Sprintf("Sprint %d", p.counter),
		Goal:          fmt.Sprintf("Improve %s capabilities and deliver key features", p.focus(team)),
		StartDate:     start,
		EndDate:       end,
		Status:        model.SprintPlanned,
		TeamID:        team.ID,
		Tickets:       []string{},
		DemoDate:      &demo,
		PlanningNotes: strings.Join(sample(p.rng, planningNotes, 2), " "),
	}

	now := p.clock.Now()
	switch {
	case s.Contains(now):
		s.Status = model.SprintActive
	case end.Before(now):
		p.Close(s)
	}

	if err := p.mem.AddSprint(s); err != nil {
		return nil, err
	}
	p.emitter.emit(ctx, events.TopicSprintCreated, events.SprintCreated{RunID: p.emitter.runID, Sprint: s})
	return s, nil
}

// GenerateForTeam creates n sprints for team: n-1 historical sprints
// followed by the current one, which starts now.
func (p *SprintPlanner) GenerateForTeam(ctx context.Context, team *model.Team, n int) ([]*model.Sprint, error) {
	now := p.clock.Now()
	duration := time.Duration(p.DurationDays) * 24 * time.Hour
	var out []*model.Sprint
	for i := 0; i < n-1; i++ {
		s, err := p.Generate(ctx, team, now.Add(-duration*time.Duration(n-i)))
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	if n > 0 {
		s, err := p.Generate(ctx, team, now)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Close marks s Completed and back-fills the completed total as 70 to
// 100 percent of committed, then derives velocity.
func (p *SprintPlanner) Close(s *model.Sprint) {
	s.Status = model.SprintCompleted
	s.StoryPointsCompleted = int(float64(s.StoryPointsCommitted) * uniform(p.rng, 0.7, 1.0))
	s.UpdateVelocity()
	s.RetrospectiveNotes = strings.Join(sample(p.rng, retrospectiveNotes, 2), " ")
}

func (p *SprintPlanner) focus(team *model.Team) string {
	switch {
	case len(team.TechStack) > 0:
		return choice(p.rng, team.TechStack)
	case p.Initiative != "":
		return p.Initiative
	}
	return "general"
}
