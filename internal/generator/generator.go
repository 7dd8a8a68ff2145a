// Package generator builds synthetic ticket hierarchies: epics, stories,
// tasks, subtasks and bugs wired into a typed relationship graph and
// rolled up into team sprints.
//
// A Generator owns the run's store.Memory and random source. The Factory,
// Policy, Blocker and SprintPlanner it exposes borrow both, so a fixed
// seed and clock replay the same ticket graph.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/alfredjeanlab/ticketforge/internal/clock"
	"github.com/alfredjeanlab/ticketforge/internal/config"
	"github.com/alfredjeanlab/ticketforge/internal/content"
	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/idgen"
	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/store"
)

// Options configures a Generator. Zero values pick defaults: the real
// clock, the template content provider, a no-op publisher and the default
// logger.
type Options struct {
	Seed      uint64
	Clock     clock.Clock
	Content   content.Provider
	Publisher events.Publisher
	Logger    *slog.Logger
	// Initiative pins every epic to one profile initiative. Empty picks
	// one at random per epic.
	Initiative string
	RunID      string
}

// Generator sequences ticket creation into sprint backlogs.
type Generator struct {
	Factory *Factory
	Policy  *Policy
	Blocker *Blocker
	Sprints *SprintPlanner

	profile    *config.Profile
	mem        *store.Memory
	rng        *rand.Rand
	clock      clock.Clock
	logger     *slog.Logger
	emitter    *emitter
	ids        *idgen.Allocator
	initiative string

	current  *model.FixVersion
	released *model.FixVersion
}

// New returns a Generator for profile. It fails if the profile is invalid
// or names an unknown initiative.
func New(profile *config.Profile, opts Options) (*Generator, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if opts.Initiative != "" {
		if _, err := profile.Initiative(opts.Initiative); err != nil {
			return nil, err
		}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Content == nil {
		opts.Content = content.NewTemplate(opts.Seed)
	}
	if opts.Publisher == nil {
		opts.Publisher = &events.NoopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	rng := newRand(opts.Seed)
	mem := store.NewMemory()
	ids := idgen.NewSeededAllocator(profile.ProjectPrefix, newIDRand(opts.Seed))
	em := &emitter{pub: opts.Publisher, runID: opts.RunID, logger: opts.Logger}

	g := &Generator{
		profile:    profile,
		mem:        mem,
		rng:        rng,
		clock:      opts.Clock,
		logger:     opts.Logger,
		emitter:    em,
		ids:        ids,
		initiative: opts.Initiative,
	}
	g.Factory = &Factory{
		profile: profile,
		mem:     mem,
		ids:     ids,
		content: opts.Content,
		rng:     rng,
		clock:   opts.Clock,
		logger:  opts.Logger,
		emitter: em,
	}
	g.Policy = &Policy{Probabilities: profile.Probabilities, rng: rng, emitter: em}
	g.Blocker = &Blocker{
		Probability: profile.Probabilities.Blocking,
		Reasons:     BlockingReasons,
		rng:         rng,
		clock:       opts.Clock,
		emitter:     em,
	}
	g.Sprints = &SprintPlanner{
		DurationDays: profile.SprintDurationDays,
		Initiative:   opts.Initiative,
		mem:          mem,
		ids:          ids,
		rng:          rng,
		clock:        opts.Clock,
		emitter:      em,
	}
	return g, nil
}

// Store returns the registry the run writes into.
func (g *Generator) Store() *store.Memory { return g.mem }

// RunID returns the identifier stamped on the run's events and exports.
func (g *Generator) RunID() string { return g.emitter.runID }

// GenerateFixVersions creates the release line: three released versions,
// the current development version and two planned ones.
func (g *Generator) GenerateFixVersions(ctx context.Context) ([]*model.FixVersion, error) {
	now := g.clock.Now()
	days := func(n int) time.Time { return now.AddDate(0, 0, n) }
	specs := []struct {
		name, description string
		release           time.Time
		released          bool
	}{
		{"v1.0.0", "Version 1.0.0 of the product", days(-270), true},
		{"v1.1.0", "Version 1.1.0 of the product", days(-180), true},
		{"v1.2.0", "Version 1.2.0 of the product", days(-90), true},
		{"v1.3.0", "Current development version", days(30), false},
		{"v1.4.0", "Planned version 1.4.0", days(90), false},
		{"v1.5.0", "Planned version 1.5.0", days(180), false},
	}

	var out []*model.FixVersion
	for _, s := range specs {
		id, err := g.ids.ForKind(idgen.PrefixFixVersion)
		if err != nil {
			return nil, fmt.Errorf("generate fix versions: %w", err)
		}
		v := &model.FixVersion{ID: id, Name: s.name, Description: s.description, ReleaseDate: s.release, Released: s.released}
		if err := g.mem.AddFixVersion(v); err != nil {
			return nil, err
		}
		g.emitter.emit(ctx, events.TopicFixVersionCreated, events.FixVersionCreated{RunID: g.RunID(), FixVersion: v})
		out = append(out, v)

		switch {
		case !v.Released && g.current == nil:
			g.current = v
		case v.Released && (g.released == nil || v.ReleaseDate.After(g.released.ReleaseDate)):
			g.released = v
		}
	}
	return out, nil
}

// BacklogOptions tunes BuildSprintBacklog.
type BacklogOptions struct {
	// Stories is the number of stories to create. Zero picks 2 to 4.
	Stories int
}

// Backlog is the ticket tree built for one sprint.
type Backlog struct {
	Epic     *model.Ticket
	Stories  []*model.Ticket
	Tasks    []*model.Ticket
	Subtasks []*model.Ticket
	Bugs     []*model.Ticket
}

// All returns every ticket of the backlog, epic first.
func (b *Backlog) All() []*model.Ticket {
	out := []*model.Ticket{b.Epic}
	out = append(out, b.Stories...)
	out = append(out, b.Tasks...)
	out = append(out, b.Subtasks...)
	return append(out, b.Bugs...)
}

// BuildSprintBacklog creates an epic for component and a story, task and
// subtask tree under it, all but the epic assigned to sprint. Bugs are
// added in proportion to the story count. Once every ticket exists the
// relationship policy wires dependencies, clones, duplicates and
// implementations, and a sample of stories and tasks may be blocked.
func (g *Generator) BuildSprintBacklog(ctx context.Context, sprint *model.Sprint, component model.Component, opts BacklogOptions) (*Backlog, error) {
	nStories := opts.Stories
	if nStories <= 0 {
		nStories = between(g.rng, 2, 4)
	}
	base := TicketContext{
		Component: component,
		Sprint:    sprint,
		TeamID:    sprint.TeamID,
		Anchor:    g.anchor(sprint),
	}
	if g.current != nil {
		base.FixVersions = []string{g.current.Name}
	}

	epicCtx := base
	epicCtx.Sprint = nil
	epicCtx.FixVersions = nil
	epicCtx.Initiative = g.pickInitiative()
	epic, err := g.Factory.NewEpic(ctx, epicCtx)
	if err != nil {
		return nil, err
	}
	base.Initiative = epicCtx.Initiative
	b := &Backlog{Epic: epic}

	for range nStories {
		sc := base
		sc.Parent = epic
		sc.Status = g.statusFor(sprint)
		story, err := g.Factory.NewStory(ctx, sc)
		if err != nil {
			return nil, err
		}
		b.Stories = append(b.Stories, story)

		var storyTasks []*model.Ticket
		for _, activity := range sample(g.rng, taskActivities, between(g.rng, 2, 4)) {
			tc := base
			tc.FixVersions = nil
			tc.Parent = story
			tc.Title = taskTitle(activity, story.Summary)
			tc.Status = g.statusFor(sprint)
			if related, ok := relatedComponents[component]; ok && chance(g.rng, 0.15) {
				tc.Extra = []model.Component{related}
			}
			task, err := g.Factory.NewTask(ctx, tc)
			if err != nil {
				return nil, err
			}

			var subtasks []*model.Ticket
			for range between(g.rng, 1, 3) {
				stc := base
				stc.FixVersions = nil
				stc.Parent = task
				stc.Status = g.statusFor(sprint)
				sub, err := g.Factory.NewSubtask(ctx, stc)
				if err != nil {
					return nil, err
				}
				if err := g.assign(ctx, sub, sprint); err != nil {
					return nil, err
				}
				subtasks = append(subtasks, sub)
			}
			if _, err := g.Policy.AddDependencies(ctx, task, subtasks); err != nil {
				return nil, err
			}
			if err := g.assign(ctx, task, sprint); err != nil {
				return nil, err
			}
			storyTasks = append(storyTasks, task)
			b.Subtasks = append(b.Subtasks, subtasks...)
		}
		if _, err := g.Policy.AddDependencies(ctx, story, storyTasks); err != nil {
			return nil, err
		}
		if err := g.assign(ctx, story, sprint); err != nil {
			return nil, err
		}
		b.Tasks = append(b.Tasks, storyTasks...)
	}
	if _, err := g.Policy.AddDependencies(ctx, epic, b.Stories); err != nil {
		return nil, err
	}

	nBugs := int(math.Round(float64(len(b.Stories)) * g.profile.BugFrequency))
	for range nBugs {
		bc := base
		bc.Status = g.statusFor(sprint)
		if g.released != nil {
			bc.AffectedVersions = []string{g.released.Name}
		}
		bug, err := g.Factory.NewBug(ctx, bc)
		if err != nil {
			return nil, err
		}
		if err := g.assign(ctx, bug, sprint); err != nil {
			return nil, err
		}
		b.Bugs = append(b.Bugs, bug)
	}

	work := append(append([]*model.Ticket(nil), b.Stories...), b.Tasks...)
	if err := g.Policy.WireClonesAndDuplicates(ctx, work); err != nil {
		return nil, err
	}
	if err := g.Policy.WireImplementations(ctx, b.Stories, b.Tasks); err != nil {
		return nil, err
	}

	k := int(float64(len(work)) * g.profile.Probabilities.BlockSample)
	blocked := 0
	for _, t := range sample(g.rng, work, k) {
		if g.Blocker.MaybeBlock(ctx, t) {
			blocked++
		}
	}

	g.logger.Debug("built sprint backlog",
		"sprint_id", sprint.ID,
		"component", component,
		"stories", len(b.Stories),
		"tasks", len(b.Tasks),
		"subtasks", len(b.Subtasks),
		"bugs", len(b.Bugs),
		"blocked", blocked,
	)
	return b, nil
}

// RunOptions tunes Run.
type RunOptions struct {
	// SprintsPerTeam is the number of sprints per team, the last one
	// current. Values below 1 mean 1.
	SprintsPerTeam int
}

// Run generates the release line and, for every team in the profile, a
// sprint sequence with one backlog per sprint. Backlogs cycle through the
// team's components. The finished dataset is verified before it is
// returned.
func (g *Generator) Run(ctx context.Context, opts RunOptions) (*store.Dataset, error) {
	n := max(opts.SprintsPerTeam, 1)
	if g.current == nil {
		if _, err := g.GenerateFixVersions(ctx); err != nil {
			return nil, err
		}
	}

	for i := range g.profile.Teams {
		team := &g.profile.Teams[i]
		g.mem.AddTeam(team)

		sprints, err := g.Sprints.GenerateForTeam(ctx, team, n)
		if err != nil {
			return nil, fmt.Errorf("team %s: %w", team.ID, err)
		}
		for j, s := range sprints {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			component := team.PrimaryComponent()
			if len(team.Components) > 0 {
				component = team.Components[j%len(team.Components)]
			}
			if _, err := g.BuildSprintBacklog(ctx, s, component, BacklogOptions{}); err != nil {
				return nil, fmt.Errorf("team %s sprint %s: %w", team.ID, s.ID, err)
			}
			// Historical sprints were back-filled before they had tickets.
			if s.Status == model.SprintCompleted {
				g.Sprints.Close(s)
			}
		}
		g.logger.Info("generated team sprints", "team_id", team.ID, "sprints", len(sprints))
	}

	ds := g.mem.Snapshot(g.RunID(), g.clock.Now())
	if issued := g.ids.Issued(); issued != len(ds.Tickets) {
		return nil, fmt.Errorf("issued %d ticket keys but registered %d tickets", issued, len(ds.Tickets))
	}
	if err := Verify(ds); err != nil {
		return nil, err
	}
	edges := len(g.mem.Edges())
	g.emitter.emit(ctx, events.TopicRunCompleted, events.RunCompleted{
		RunID:       ds.RunID,
		GeneratedAt: ds.GeneratedAt,
		Tickets:     len(ds.Tickets),
		Sprints:     len(ds.Sprints),
		FixVersions: len(ds.FixVersions),
		Edges:       edges,
	})
	g.logger.Info("generation complete",
		"run_id", ds.RunID,
		"tickets", len(ds.Tickets),
		"sprints", len(ds.Sprints),
		"edges", edges,
	)
	return ds, nil
}

func (g *Generator) assign(ctx context.Context, t *model.Ticket, s *model.Sprint) error {
	if err := Assign(t, s); err != nil {
		return err
	}
	g.emitter.emit(ctx, events.TopicSprintAssigned, events.SprintAssigned{
		RunID:       g.RunID(),
		SprintID:    s.ID,
		TicketID:    t.ID,
		StoryPoints: t.Points(),
		Committed:   s.StoryPointsCommitted,
		Completed:   s.StoryPointsCompleted,
	})
	return nil
}

// statusFor picks a ticket status consistent with the sprint's state.
func (g *Generator) statusFor(s *model.Sprint) model.Status {
	switch s.Status {
	case model.SprintCompleted:
		return model.StatusDone
	case model.SprintActive:
		r := g.rng.Float64()
		switch {
		case r < 0.3:
			return model.StatusToDo
		case r < 0.65:
			return model.StatusInProgress
		case r < 0.8:
			return model.StatusInReview
		}
		return model.StatusDone
	}
	return model.StatusToDo
}

// anchor is the point ticket timestamps are drawn back from: the sprint
// end for finished sprints, now otherwise.
func (g *Generator) anchor(s *model.Sprint) time.Time {
	now := g.clock.Now()
	if s.EndDate.Before(now) {
		return s.EndDate
	}
	return now
}

func (g *Generator) pickInitiative() string {
	if g.initiative != "" {
		return g.initiative
	}
	if len(g.profile.Initiatives) == 0 {
		return ""
	}
	return choice(g.rng, g.profile.Initiatives).Name
}
