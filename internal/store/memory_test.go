package store

import (
	"errors"
	"testing"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/graph"
	"github.com/alfredjeanlab/ticketforge/internal/model"
)

var testTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func ticket(id string, typ model.TicketType, sprint string, status model.Status) *model.Ticket {
	return &model.Ticket{
		ID: id, Type: typ, Summary: id, Status: status, SprintID: sprint,
		Components: []model.Component{model.ComponentBackend},
	}
}

// seeded returns a registry with one sprint, four tickets and a few
// edges:
//
//	INNO-1 depends_on INNO-2, INNO-1 blocks INNO-3 ("api"), INNO-4 clones INNO-1
func seeded(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	a := ticket("INNO-1", model.TypeStory, "SPR-1", model.StatusInProgress)
	b := ticket("INNO-2", model.TypeTask, "SPR-1", model.StatusDone)
	c := ticket("INNO-3", model.TypeTask, "SPR-1", model.StatusBlocked)
	c.Blocking = &model.Blocking{Reason: "Resource constraints", Since: testTime}
	d := ticket("INNO-4", model.TypeBug, "", model.StatusToDo)
	for _, tk := range []*model.Ticket{a, b, c, d} {
		if err := m.AddTicket(tk); err != nil {
			t.Fatal(err)
		}
	}
	for _, l := range []struct {
		src, dst *model.Ticket
		rel      model.RelationType
		note     string
	}{
		{a, b, model.RelDependsOn, ""},
		{a, c, model.RelBlocks, "api"},
		{d, a, model.RelClones, ""},
	} {
		if err := graph.Link(l.src, l.dst, l.rel, l.note); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.AddSprint(&model.Sprint{ID: "SPR-1", Name: "Sprint 1", TeamID: "TEAM-A"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSprint(&model.Sprint{ID: "SPR-2", Name: "Sprint 2", TeamID: "TEAM-B"}); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMemory_Duplicates(t *testing.T) {
	m := seeded(t)
	if err := m.AddTicket(ticket("INNO-1", model.TypeTask, "", model.StatusToDo)); !errors.Is(err, ErrDuplicate) {
		t.Errorf("AddTicket err = %v, want ErrDuplicate", err)
	}
	if err := m.AddSprint(&model.Sprint{ID: "SPR-1"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("AddSprint err = %v, want ErrDuplicate", err)
	}
	v := &model.FixVersion{ID: "VER-1", Name: "v1.0.0"}
	if err := m.AddFixVersion(v); err != nil {
		t.Fatal(err)
	}
	if err := m.AddFixVersion(v); !errors.Is(err, ErrDuplicate) {
		t.Errorf("AddFixVersion err = %v, want ErrDuplicate", err)
	}
}

func TestMemory_Queries(t *testing.T) {
	m := seeded(t)

	if m.TicketCount() != 4 {
		t.Errorf("TicketCount = %d, want 4", m.TicketCount())
	}
	for _, tc := range []struct {
		name string
		got  []*model.Ticket
		want []string
	}{
		{"AllInOrder", m.Tickets(model.TicketFilter{}), []string{"INNO-1", "INNO-2", "INNO-3", "INNO-4"}},
		{"Tasks", m.Tickets(model.TicketFilter{Type: []model.TicketType{model.TypeTask}}), []string{"INNO-2", "INNO-3"}},
		{"SprintTickets", m.SprintTickets("SPR-1"), []string{"INNO-1", "INNO-2", "INNO-3"}},
		{"EmptySprint", m.SprintTickets("SPR-2"), nil},
		{"UnknownSprint", m.SprintTickets("SPR-9"), nil},
		{"Blocked", m.BlockedTickets(""), []string{"INNO-3"}},
		{"BlockedInOtherSprint", m.BlockedTickets("SPR-2"), nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.got) != len(tc.want) {
				t.Fatalf("got %d tickets, want %v", len(tc.got), tc.want)
			}
			for i, tk := range tc.got {
				if tk.ID != tc.want[i] {
					t.Errorf("[%d] = %s, want %s", i, tk.ID, tc.want[i])
				}
			}
		})
	}

	if got := m.TeamSprints("TEAM-B"); len(got) != 1 || got[0].ID != "SPR-2" {
		t.Errorf("TeamSprints(TEAM-B) = %v", got)
	}
	if _, ok := m.Ticket("INNO-9"); ok {
		t.Error("Ticket(INNO-9) found")
	}
}

func TestMemory_TicketDependencies(t *testing.T) {
	m := seeded(t)
	deps, err := m.TicketDependencies("INNO-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(deps.DependsOn) != 1 || deps.DependsOn[0] != "INNO-2" {
		t.Errorf("DependsOn = %v", deps.DependsOn)
	}
	if len(deps.Blocks) != 1 || deps.Blocks[0] != "INNO-3" {
		t.Errorf("Blocks = %v", deps.Blocks)
	}
	deps, _ = m.TicketDependencies("INNO-2")
	if len(deps.RequiredFor) != 1 || deps.RequiredFor[0] != "INNO-1" {
		t.Errorf("INNO-2 RequiredFor = %v", deps.RequiredFor)
	}
	deps, _ = m.TicketDependencies("INNO-3")
	if len(deps.BlockedBy) != 1 || deps.BlockedBy[0] != "INNO-1" {
		t.Errorf("INNO-3 BlockedBy = %v", deps.BlockedBy)
	}
	if _, err := m.TicketDependencies("INNO-9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemory_SprintDependencies(t *testing.T) {
	m := seeded(t)
	got := m.SprintDependencies("SPR-1")
	if len(got.Blocking) != 1 || got.Blocking[0] != (model.Pair{From: "INNO-1", To: "INNO-3"}) {
		t.Errorf("Blocking = %v", got.Blocking)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0] != (model.Pair{From: "INNO-1", To: "INNO-2"}) {
		t.Errorf("Dependencies = %v", got.Dependencies)
	}
	if len(got.RequiredFor) != 1 || got.RequiredFor[0] != (model.Pair{From: "INNO-2", To: "INNO-1"}) {
		t.Errorf("RequiredFor = %v", got.RequiredFor)
	}
}

func TestMemory_TicketRelationships(t *testing.T) {
	m := seeded(t)
	rels, err := m.TicketRelationships("INNO-1")
	if err != nil {
		t.Fatal(err)
	}
	blocks := rels.Outgoing[model.RelBlocks]
	if len(blocks) != 1 || blocks[0].ID != "INNO-3" || blocks[0].Note != "api" {
		t.Errorf("outgoing blocks = %+v", blocks)
	}
	if cloned := rels.Incoming[model.RelClonedBy]; len(cloned) != 1 || cloned[0].ID != "INNO-4" {
		t.Errorf("incoming cloned_by = %+v", cloned)
	}
	if _, ok := rels.Outgoing[model.RelClonedBy]; ok {
		t.Error("passive relation listed as outgoing")
	}
	if _, err := m.TicketRelationships("INNO-9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemory_Stats(t *testing.T) {
	st := seeded(t).Stats()
	if st.Total != 4 || st.BlockedCount != 1 || st.Edges != 6 {
		t.Errorf("stats = %+v", st)
	}
	if st.ByType[model.TypeTask] != 2 || st.ByStatus[model.StatusDone] != 1 {
		t.Errorf("by type %v by status %v", st.ByType, st.ByStatus)
	}
}

func TestMemory_SnapshotRoundTrip(t *testing.T) {
	m := seeded(t)
	m.AddTeam(&model.Team{ID: "TEAM-A", Name: "A"})
	ds := m.Snapshot("run-1", testTime)
	if ds.RunID != "run-1" || !ds.GeneratedAt.Equal(testTime) {
		t.Errorf("header = %s %v", ds.RunID, ds.GeneratedAt)
	}
	if len(ds.Tickets) != 4 || len(ds.Sprints) != 2 || len(ds.Teams) != 1 {
		t.Errorf("snapshot sizes tickets=%d sprints=%d teams=%d", len(ds.Tickets), len(ds.Sprints), len(ds.Teams))
	}

	back, err := FromDataset(ds)
	if err != nil {
		t.Fatal(err)
	}
	if back.TicketCount() != 4 || len(back.Edges()) != len(m.Edges()) {
		t.Errorf("rebuilt registry: %d tickets, %d edges", back.TicketCount(), len(back.Edges()))
	}
	if got := back.SprintTickets("SPR-1"); len(got) != 3 {
		t.Errorf("rebuilt SprintTickets = %d, want 3", len(got))
	}
}
