package generator

import (
	"context"
	"slices"
	"testing"

	"github.com/alfredjeanlab/ticketforge/internal/config"
	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/graph"
	"github.com/alfredjeanlab/ticketforge/internal/model"
)

func mkTicket(id string, typ model.TicketType, comps ...model.Component) *model.Ticket {
	return &model.Ticket{ID: id, Type: typ, Summary: id + " summary", Components: comps}
}

func byID(tickets ...*model.Ticket) map[string]*model.Ticket {
	out := map[string]*model.Ticket{}
	for _, t := range tickets {
		out[t.ID] = t
	}
	return out
}

// alwaysPolicy returns the generator's policy with every probability set
// to one.
func alwaysPolicy(t *testing.T) (*Policy, *events.Recorder) {
	t.Helper()
	g, rec := newTestGenerator(t, Options{})
	g.Policy.Probabilities = config.Probabilities{Dependency: 1, Clone: 1, Duplicate: 1, Implements: 1}
	return g.Policy, rec
}

func TestAddDependencies(t *testing.T) {
	p, rec := alwaysPolicy(t)
	ctx := context.Background()
	parent := mkTicket("T-1", model.TypeStory, model.ComponentBackend)
	a := mkTicket("T-2", model.TypeTask, model.ComponentBackend)

	n, err := p.AddDependencies(ctx, parent, []*model.Ticket{a})
	if err != nil || n != 1 {
		t.Fatalf("AddDependencies = %d, %v; want 1 edge", n, err)
	}
	if !parent.Links.Has(model.RelDependsOn, a.ID) || !a.Links.Has(model.RelRequiredFor, parent.ID) {
		t.Errorf("links parent=%v child=%v", parent.Links, a.Links)
	}
	if rec.Count(events.TopicLinkAdded) != 1 {
		t.Errorf("link events = %d, want 1", rec.Count(events.TopicLinkAdded))
	}

	// Already linked, and the reverse direction is guarded one hop deep.
	if n, _ := p.AddDependencies(ctx, parent, []*model.Ticket{a}); n != 0 {
		t.Errorf("repeat added %d edges", n)
	}
	if n, _ := p.AddDependencies(ctx, a, []*model.Ticket{parent}); n != 0 {
		t.Errorf("reverse dependency added %d edges", n)
	}
	if n, _ := p.AddDependencies(ctx, parent, nil); n != 0 {
		t.Errorf("empty pool added %d edges", n)
	}
	if n, _ := p.AddDependencies(ctx, parent, []*model.Ticket{parent}); n != 0 {
		t.Errorf("self dependency added %d edges", n)
	}
	if asym := graph.CheckSymmetry(byID(parent, a)); len(asym) != 0 {
		t.Errorf("asymmetric edges: %v", asym)
	}
}

func TestAddDependencies_MultiHopCycleNotDetected(t *testing.T) {
	p, _ := alwaysPolicy(t)
	ctx := context.Background()
	a := mkTicket("T-1", model.TypeTask, model.ComponentBackend)
	b := mkTicket("T-2", model.TypeTask, model.ComponentBackend)
	c := mkTicket("T-3", model.TypeTask, model.ComponentBackend)

	for _, pair := range [][2]*model.Ticket{{a, b}, {b, c}, {c, a}} {
		if n, err := p.AddDependencies(ctx, pair[0], []*model.Ticket{pair[1]}); err != nil || n != 1 {
			t.Fatalf("%s -> %s: n=%d err=%v", pair[0].ID, pair[1].ID, n, err)
		}
	}
	if !graph.DependsOnReachable(byID(a, b, c), a.ID, a.ID) {
		t.Error("expected a three-ticket depends_on cycle")
	}
}

func TestAddDependencies_ZeroProbability(t *testing.T) {
	p, _ := alwaysPolicy(t)
	p.Probabilities.Dependency = 0
	parent := mkTicket("T-1", model.TypeStory, model.ComponentBackend)
	if n, _ := p.AddDependencies(context.Background(), parent, []*model.Ticket{mkTicket("T-2", model.TypeTask, model.ComponentBackend)}); n != 0 {
		t.Errorf("added %d edges at probability 0", n)
	}
}

func TestWireClonesAndDuplicates(t *testing.T) {
	p, _ := alwaysPolicy(t)
	single := mkTicket("T-1", model.TypeTask, model.ComponentBackend)
	twin := mkTicket("T-2", model.TypeTask, model.ComponentBackend)
	wide := mkTicket("T-3", model.TypeTask, model.ComponentBackend, model.ComponentDatabase)
	story := mkTicket("T-4", model.TypeStory, model.ComponentBackend)
	tickets := []*model.Ticket{single, twin, wide, story}

	if err := p.WireClonesAndDuplicates(context.Background(), tickets); err != nil {
		t.Fatal(err)
	}

	for _, tk := range []*model.Ticket{single, twin, story} {
		if !tk.Links.Has(model.RelClones, wide.ID) {
			t.Errorf("%s clones = %v, want [%s]", tk.ID, tk.Related(model.RelClones), wide.ID)
		}
		if note, _ := tk.Note(model.RelClones, wide.ID); note != "Similar functionality needed in Backend" {
			t.Errorf("%s clone note = %q", tk.ID, note)
		}
	}
	if len(wide.Related(model.RelClones)) != 0 {
		t.Errorf("multi-component ticket cloned: %v", wide.Related(model.RelClones))
	}

	if !single.Links.Has(model.RelDuplicates, twin.ID) || !twin.Links.Has(model.RelDuplicates, single.ID) {
		t.Errorf("twins not duplicated: %v / %v", single.Links, twin.Links)
	}
	if note, _ := single.Note(model.RelDuplicates, twin.ID); note != "Exact same issue reported separately" {
		t.Errorf("duplicate note = %q", note)
	}
	for _, tk := range []*model.Ticket{wide, story} {
		if len(tk.Related(model.RelDuplicates)) != 0 {
			t.Errorf("%s has no same-type, same-component peer but duplicates %v", tk.ID, tk.Related(model.RelDuplicates))
		}
	}
	if asym := graph.CheckSymmetry(byID(tickets...)); len(asym) != 0 {
		t.Errorf("asymmetric edges: %v", asym)
	}
}

func TestWireClonesAndDuplicates_EmptyPools(t *testing.T) {
	p, _ := alwaysPolicy(t)
	lone := mkTicket("T-1", model.TypeTask, model.ComponentBackend)
	if err := p.WireClonesAndDuplicates(context.Background(), []*model.Ticket{lone}); err != nil {
		t.Fatal(err)
	}
	if lone.Links.Count() != 0 {
		t.Errorf("lone ticket linked: %v", lone.Links)
	}
}

func TestWireImplementations(t *testing.T) {
	p, _ := alwaysPolicy(t)
	story := mkTicket("T-1", model.TypeStory, model.ComponentBackend)
	backend := mkTicket("T-2", model.TypeTask, model.ComponentBackend)
	frontend := mkTicket("T-3", model.TypeTask, model.ComponentFrontend)

	if err := p.WireImplementations(context.Background(), []*model.Ticket{story}, []*model.Ticket{backend, frontend}); err != nil {
		t.Fatal(err)
	}
	if !backend.Links.Has(model.RelImplements, story.ID) || !story.Links.Has(model.RelImplementedBy, backend.ID) {
		t.Errorf("backend task does not implement story: %v", backend.Links)
	}
	if note, _ := backend.Note(model.RelImplements, story.ID); note != "Technical implementation of T-1 summary" {
		t.Errorf("note = %q", note)
	}
	if frontend.Links.Count() != 0 {
		t.Errorf("task without shared component linked: %v", frontend.Links)
	}
}

func TestAddDependencies_DependencyViews(t *testing.T) {
	g, _ := newTestGenerator(t, Options{})
	g.Policy.Probabilities.Dependency = 1
	ctx := context.Background()
	s := activeSprint(t, g)

	story := mkTicket("T-1", model.TypeStory, model.ComponentBackend)
	task := mkTicket("T-2", model.TypeTask, model.ComponentBackend)
	for _, tk := range []*model.Ticket{story, task} {
		tk.SprintID = s.ID
		if err := g.mem.AddTicket(tk); err != nil {
			t.Fatal(err)
		}
	}
	if n, err := g.Policy.AddDependencies(ctx, story, []*model.Ticket{task}); err != nil || n != 1 {
		t.Fatalf("AddDependencies = %d, %v", n, err)
	}

	deps, err := g.mem.TicketDependencies(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(deps.RequiredFor) != 1 || deps.RequiredFor[0] != story.ID {
		t.Errorf("RequiredFor = %v, want [%s]", deps.RequiredFor, story.ID)
	}
	sd := g.mem.SprintDependencies(s.ID)
	if !slices.Contains(sd.RequiredFor, model.Pair{From: task.ID, To: story.ID}) {
		t.Errorf("sprint RequiredFor = %v", sd.RequiredFor)
	}
	if !slices.Contains(sd.Dependencies, model.Pair{From: story.ID, To: task.ID}) {
		t.Errorf("sprint Dependencies = %v", sd.Dependencies)
	}
}

func TestRun_DependencyViewsShowBothHalves(t *testing.T) {
	g, _ := newTestGenerator(t, Options{Seed: 7})
	if _, err := g.Run(context.Background(), RunOptions{SprintsPerTeam: 3}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var dependsOn, requiredFor int
	for _, tk := range g.mem.Tickets(model.TicketFilter{}) {
		deps, err := g.mem.TicketDependencies(tk.ID)
		if err != nil {
			t.Fatal(err)
		}
		dependsOn += len(deps.DependsOn)
		requiredFor += len(deps.RequiredFor)
	}
	if dependsOn == 0 {
		t.Fatal("run produced no dependencies")
	}
	if requiredFor != dependsOn {
		t.Errorf("required_for = %d, depends_on = %d", requiredFor, dependsOn)
	}

	var sprintDeps, sprintRequired int
	for _, s := range g.mem.Sprints() {
		sd := g.mem.SprintDependencies(s.ID)
		sprintDeps += len(sd.Dependencies)
		sprintRequired += len(sd.RequiredFor)
	}
	if sprintDeps > 0 && sprintRequired == 0 {
		t.Errorf("sprint views list %d dependencies but no required_for pairs", sprintDeps)
	}
}
