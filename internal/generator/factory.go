package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/clock"
	"github.com/alfredjeanlab/ticketforge/internal/config"
	"github.com/alfredjeanlab/ticketforge/internal/content"
	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/idgen"
	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/store"
)

// ErrNoActors is returned when neither the requested team nor the profile
// has any member to report or own a ticket.
var ErrNoActors = errors.New("no actors available")

// Fallbacks used when the content provider returns nothing usable.
var (
	DefaultAcceptanceCriteria = []string{
		"System should validate all inputs",
		"Performance metrics should meet SLA requirements",
		"All error cases should be handled gracefully",
		"Documentation should be updated",
	}
	DefaultReproductionSteps = []string{
		"Navigate to the affected page",
		"Enter test data",
		"Click submit button",
	}
	DefaultTechnicalNotes   = "Implementation should follow our coding standards and include unit tests."
	DefaultExpectedBehavior = "System should process the request successfully"
	DefaultActualBehavior   = "System shows error message"
)

// TicketContext carries what a ticket is created for. Only Component is
// required; every other field narrows or overrides a default.
type TicketContext struct {
	Component model.Component
	// Extra lists secondary components the ticket also touches.
	Extra []model.Component
	// Parent is the owning ticket: the epic of a story, the story of a
	// task, the task of a subtask. Required for subtasks.
	Parent     *model.Ticket
	Sprint     *model.Sprint
	TeamID     string
	Initiative string
	Title      string
	// Status overrides the call-site default when set.
	Status           model.Status
	FixVersions      []string
	AffectedVersions []string
	// Anchor is the "now" timestamps are drawn back from. Zero means the
	// factory clock.
	Anchor time.Time
}

// Factory builds tickets of every variant and registers them in the run's
// store.
type Factory struct {
	profile *config.Profile
	mem     *store.Memory
	ids     *idgen.Allocator
	content content.Provider
	rng     *rand.Rand
	clock   clock.Clock
	logger  *slog.Logger
	emitter *emitter
}

// Create dispatches to the constructor for variant.
func (f *Factory) Create(ctx context.Context, variant model.TicketType, tc TicketContext) (*model.Ticket, error) {
	switch variant {
	case model.TypeEpic:
		return f.NewEpic(ctx, tc)
	case model.TypeStory:
		return f.NewStory(ctx, tc)
	case model.TypeTask:
		return f.NewTask(ctx, tc)
	case model.TypeSubtask:
		return f.NewSubtask(ctx, tc)
	case model.TypeBug:
		return f.NewBug(ctx, tc)
	}
	return nil, fmt.Errorf("create ticket: unknown type %q", variant)
}

// NewEpic creates an epic for tc.Component. Epics start In Progress and
// target a window from a month back to two months out.
func (f *Factory) NewEpic(ctx context.Context, tc TicketContext) (*model.Ticket, error) {
	if tc.Initiative != "" {
		if _, err := f.profile.Initiative(tc.Initiative); err != nil {
			return nil, fmt.Errorf("new epic: %w", err)
		}
	}
	if tc.Title == "" {
		tc.Title = epicTitle(tc.Component)
	}
	now := f.anchor(tc)
	created := daysAgo(now, f.rng, 30, 90)
	updated := daysAgo(now, f.rng, 1, 30)

	t, _, err := f.base(ctx, model.TypeEpic, tc, model.StatusInProgress, created, updated)
	if err != nil {
		return nil, err
	}
	start := now.AddDate(0, 0, -30)
	end := now.AddDate(0, 0, 60)
	points := 13
	t.StoryPoints = &points
	t.DueDate = &end
	t.Details = &model.EpicDetails{TargetStart: &start, TargetEnd: &end, Initiative: tc.Initiative}
	return f.register(ctx, t)
}

// NewStory creates a story. When tc.Parent is an epic the story is
// appended to its child list.
func (f *Factory) NewStory(ctx context.Context, tc TicketContext) (*model.Ticket, error) {
	if tc.Title == "" {
		tc.Title = storyTitle(f.rng, f.profile, tc.Component)
	}
	now := f.anchor(tc)
	t, text, err := f.base(ctx, model.TypeStory, tc, model.StatusToDo, daysAgo(now, f.rng, 15, 45), daysAgo(now, f.rng, 1, 15))
	if err != nil {
		return nil, err
	}

	criteria, err := f.content.ExtractAcceptanceCriteria(ctx, text)
	if err != nil {
		f.fallback(t, "acceptance_criteria", err)
		criteria = slices.Clone(DefaultAcceptanceCriteria)
	}
	points := choice(f.rng, f.profile.StoryPointScale)
	t.StoryPoints = &points

	d := &model.StoryDetails{AcceptanceCriteria: criteria}
	if len(f.profile.Personas) > 0 {
		d.UserPersona = choice(f.rng, f.profile.Personas)
	}
	if initiative := f.initiativeOf(tc); initiative != nil && len(initiative.Objectives) > 0 {
		d.BusinessValue = "Supports " + choice(f.rng, initiative.Objectives)
	}
	t.Details = d

	if epic := tc.Parent; epic != nil && epic.Type == model.TypeEpic {
		t.EpicLink = epic.ID
		epic.Epic().ChildStories = append(epic.Epic().ChildStories, t.ID)
	}
	return f.register(ctx, t)
}

// NewTask creates a task, optionally under the story in tc.Parent.
func (f *Factory) NewTask(ctx context.Context, tc TicketContext) (*model.Ticket, error) {
	if tc.Title == "" {
		parent := string(tc.Component) + " work"
		if tc.Parent != nil {
			parent = tc.Parent.Summary
		}
		tc.Title = taskTitle(choice(f.rng, taskActivities), parent)
	}
	now := f.anchor(tc)
	t, text, err := f.base(ctx, model.TypeTask, tc, model.StatusToDo, daysAgo(now, f.rng, 5, 15), daysAgo(now, f.rng, 1, 5))
	if err != nil {
		return nil, err
	}

	points := f.estimate(ctx, t, text)
	t.StoryPoints = &points
	notes, err := f.content.ExtractTechnicalNotes(ctx, text)
	if err != nil {
		f.fallback(t, "technical_notes", err)
		notes = DefaultTechnicalNotes
	}
	t.Details = &model.TaskDetails{TechnicalNotes: notes}

	if story := tc.Parent; story != nil {
		t.ParentID = story.ID
		t.EpicLink = story.EpicLink
	}
	return f.register(ctx, t)
}

// NewSubtask creates a subtask under the task in tc.Parent.
func (f *Factory) NewSubtask(ctx context.Context, tc TicketContext) (*model.Ticket, error) {
	task := tc.Parent
	if task == nil || task.Type != model.TypeTask {
		return nil, fmt.Errorf("new subtask: parent must be a task")
	}
	if tc.Title == "" {
		tc.Title = subtaskTitle(f.rng, task.ID)
	}
	now := f.anchor(tc)
	t, text, err := f.base(ctx, model.TypeSubtask, tc, model.StatusToDo, daysAgo(now, f.rng, 1, 5), hoursAgo(now, f.rng, 1, 24))
	if err != nil {
		return nil, err
	}

	points := f.estimate(ctx, t, text)
	t.StoryPoints = &points
	t.ParentID = task.ID
	t.EpicLink = task.EpicLink
	t.Details = &model.SubtaskDetails{Checklist: slices.Clone(subtaskChecklist)}
	return f.register(ctx, t)
}

// NewBug creates an unestimated defect report.
func (f *Factory) NewBug(ctx context.Context, tc TicketContext) (*model.Ticket, error) {
	if tc.Title == "" {
		tc.Title = bugTitle(f.rng, tc.Component)
	}
	now := f.anchor(tc)
	t, text, err := f.base(ctx, model.TypeBug, tc, model.StatusToDo, daysAgo(now, f.rng, 1, 10), hoursAgo(now, f.rng, 1, 24))
	if err != nil {
		return nil, err
	}

	steps, err := f.content.ExtractReproductionSteps(ctx, text)
	if err != nil {
		f.fallback(t, "steps_to_reproduce", err)
		steps = slices.Clone(DefaultReproductionSteps)
	}
	expected, err := content.ParseSection(text, content.SectionExpectedBehavior)
	if err != nil {
		f.fallback(t, "expected_behavior", err)
		expected = DefaultExpectedBehavior
	}
	actual, err := content.ParseSection(text, content.SectionActualBehavior)
	if err != nil {
		f.fallback(t, "actual_behavior", err)
		actual = DefaultActualBehavior
	}
	t.Details = &model.BugDetails{
		Severity:         choice(f.rng, []model.Priority{model.PriorityHighest, model.PriorityHigh, model.PriorityMedium}),
		StepsToReproduce: steps,
		ExpectedBehavior: expected,
		ActualBehavior:   actual,
		Environment:      choice(f.rng, bugEnvironments),
	}
	// Not every bug has a workaround; a missing section leaves it empty.
	if w, err := content.ParseSection(text, content.SectionWorkaround); err == nil {
		t.Bug().Workaround = w
	}
	return f.register(ctx, t)
}

// base fills the fields every variant shares and fetches the description.
// The returned text is the raw description for field extraction.
func (f *Factory) base(ctx context.Context, typ model.TicketType, tc TicketContext, status model.Status, created, updated time.Time) (*model.Ticket, string, error) {
	if !tc.Component.IsValid() {
		return nil, "", fmt.Errorf("new %s: invalid component %q", typ, tc.Component)
	}
	reporter, assignee, err := f.actors(tc.TeamID)
	if err != nil {
		return nil, "", fmt.Errorf("new %s: %w", typ, err)
	}

	req := content.Request{Title: tc.Title, Type: typ, Component: tc.Component, Initiative: tc.Initiative}
	if tc.Parent != nil {
		req.Parent = tc.Parent.Summary
	}
	text, err := f.content.GenerateDescription(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("new %s: %w", typ, ctx.Err())
		}
		f.logger.Warn("description generation failed, using title", "type", typ, "title", tc.Title, "err", err)
		text = "# " + tc.Title
	}
	summary, err := f.content.GenerateSummary(ctx, text, typ)
	if err != nil || strings.TrimSpace(summary) == "" {
		f.logger.Debug("summary generation failed, using title", "type", typ, "title", tc.Title, "err", err)
		summary = tc.Title
	}

	if tc.Status != "" {
		status = tc.Status
	}
	if updated.Before(created) {
		updated = created
	}
	t := &model.Ticket{
		ID:               f.ids.Next(),
		Type:             typ,
		Summary:          summary,
		Description:      text,
		Status:           status,
		Priority:         model.DefaultPriority(typ),
		ReporterID:       reporter.ID,
		AssigneeID:       assignee.ID,
		Components:       f.components(tc),
		Labels:           labels(tc),
		FixVersions:      slices.Clone(tc.FixVersions),
		AffectedVersions: slices.Clone(tc.AffectedVersions),
		CreatedAt:        created,
		UpdatedAt:        updated,
	}
	t.Watchers = f.watchers(tc.TeamID, reporter.ID)
	if tc.Sprint != nil {
		end := tc.Sprint.EndDate
		t.DueDate = &end
	}
	if status == model.StatusDone {
		resolved := updated
		t.ResolvedAt = &resolved
	}
	return t, text, nil
}

func (f *Factory) register(ctx context.Context, t *model.Ticket) (*model.Ticket, error) {
	if err := f.mem.AddTicket(t); err != nil {
		return nil, err
	}
	f.emitter.emit(ctx, events.TopicTicketCreated, events.TicketCreated{RunID: f.emitter.runID, Ticket: t})
	return t, nil
}

// estimate extracts an effort from text and snaps it to the story-point
// scale. Unusable text falls back to 3 or 4.
func (f *Factory) estimate(ctx context.Context, t *model.Ticket, text string) int {
	effort, err := f.content.ExtractEstimatedEffort(ctx, text)
	if err != nil {
		f.fallback(t, "estimated_effort", err)
		effort = between(f.rng, 3, 4)
	}
	return snapPoints(effort, f.profile.StoryPointScale)
}

func (f *Factory) fallback(t *model.Ticket, field string, err error) {
	f.logger.Debug("extraction failed, using default", "ticket_id", t.ID, "field", field, "err", err)
}

// actors draws a reporter and an assignee independently from the team's
// members. An unknown or empty team falls back to every profile member.
func (f *Factory) actors(teamID string) (reporter, assignee model.Member, err error) {
	pool := f.pool(teamID)
	if len(pool) == 0 {
		return model.Member{}, model.Member{}, ErrNoActors
	}
	return choice(f.rng, pool), choice(f.rng, pool), nil
}

func (f *Factory) pool(teamID string) []model.Member {
	if team, ok := f.profile.Team(teamID); ok && len(team.Members) > 0 {
		return team.Members
	}
	if teamID != "" {
		f.logger.Debug("team has no members, drawing from all teams", "team_id", teamID)
	}
	return f.profile.Members()
}

// watchers returns up to two members other than the reporter.
func (f *Factory) watchers(teamID, reporter string) []string {
	var ids []string
	for _, m := range f.pool(teamID) {
		if m.ID != reporter {
			ids = append(ids, m.ID)
		}
	}
	return sample(f.rng, ids, between(f.rng, 0, 2))
}

func (f *Factory) components(tc TicketContext) []model.Component {
	out := []model.Component{tc.Component}
	for _, c := range tc.Extra {
		if c.IsValid() && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func (f *Factory) initiativeOf(tc TicketContext) *config.Initiative {
	if tc.Initiative == "" {
		return nil
	}
	i, err := f.profile.Initiative(tc.Initiative)
	if err != nil {
		return nil
	}
	return i
}

func (f *Factory) anchor(tc TicketContext) time.Time {
	if !tc.Anchor.IsZero() {
		return tc.Anchor
	}
	return f.clock.Now()
}

func labels(tc TicketContext) []string {
	out := []string{strings.ToLower(string(tc.Component))}
	if tc.Initiative != "" {
		out = append(out, strings.ReplaceAll(strings.ToLower(tc.Initiative), " ", "-"))
	}
	return out
}

// snapPoints returns the scale value closest to effort, preferring the
// smaller value on ties. An empty scale returns effort unchanged.
func snapPoints(effort int, scale []int) int {
	if len(scale) == 0 {
		return effort
	}
	sorted := slices.Sorted(slices.Values(scale))
	best := sorted[0]
	for _, v := range sorted[1:] {
		if abs(v-effort) < abs(best-effort) {
			best = v
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
