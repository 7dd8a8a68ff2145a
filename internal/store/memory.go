package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/graph"
	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// Memory is the in-process registry a generation run writes into. The
// generator owns its lifetime; every other component borrows it.
//
// Memory is not safe for concurrent use. A run has exactly one writer.
type Memory struct {
	tickets     map[string]*model.Ticket
	ticketOrder []string
	byType      map[model.TicketType][]string

	sprints     map[string]*model.Sprint
	sprintOrder []string

	fixVersions  map[string]*model.FixVersion
	versionOrder []string

	teams map[string]*model.Team
}

// NewMemory returns an empty registry.
func NewMemory() *Memory {
	return &Memory{
		tickets:     make(map[string]*model.Ticket),
		byType:      make(map[model.TicketType][]string),
		sprints:     make(map[string]*model.Sprint),
		fixVersions: make(map[string]*model.FixVersion),
		teams:       make(map[string]*model.Team),
	}
}

// AddTicket registers a ticket under its ID.
func (m *Memory) AddTicket(t *model.Ticket) error {
	if _, ok := m.tickets[t.ID]; ok {
		return fmt.Errorf("ticket %s: %w", t.ID, ErrDuplicate)
	}
	m.tickets[t.ID] = t
	m.ticketOrder = append(m.ticketOrder, t.ID)
	m.byType[t.Type] = append(m.byType[t.Type], t.ID)
	return nil
}

// Ticket returns the ticket with the given ID.
func (m *Memory) Ticket(id string) (*model.Ticket, bool) {
	t, ok := m.tickets[id]
	return t, ok
}

// Tickets returns the tickets matching filter in creation order.
func (m *Memory) Tickets(filter model.TicketFilter) []*model.Ticket {
	ids := m.ticketOrder
	if len(filter.Type) == 1 {
		ids = m.byType[filter.Type[0]]
	}
	var out []*model.Ticket
	for _, id := range ids {
		if t := m.tickets[id]; filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// TicketCount returns the number of registered tickets.
func (m *Memory) TicketCount() int {
	return len(m.tickets)
}

// AddSprint registers a sprint under its ID.
func (m *Memory) AddSprint(s *model.Sprint) error {
	if _, ok := m.sprints[s.ID]; ok {
		return fmt.Errorf("sprint %s: %w", s.ID, ErrDuplicate)
	}
	m.sprints[s.ID] = s
	m.sprintOrder = append(m.sprintOrder, s.ID)
	return nil
}

// Sprint returns the sprint with the given ID.
func (m *Memory) Sprint(id string) (*model.Sprint, bool) {
	s, ok := m.sprints[id]
	return s, ok
}

// Sprints returns every sprint in creation order.
func (m *Memory) Sprints() []*model.Sprint {
	out := make([]*model.Sprint, 0, len(m.sprintOrder))
	for _, id := range m.sprintOrder {
		out = append(out, m.sprints[id])
	}
	return out
}

// TeamSprints returns the sprints run by the given team.
func (m *Memory) TeamSprints(teamID string) []*model.Sprint {
	var out []*model.Sprint
	for _, id := range m.sprintOrder {
		if s := m.sprints[id]; s.TeamID == teamID {
			out = append(out, s)
		}
	}
	return out
}

// AddFixVersion registers a release tag.
func (m *Memory) AddFixVersion(v *model.FixVersion) error {
	if _, ok := m.fixVersions[v.ID]; ok {
		return fmt.Errorf("fix version %s: %w", v.ID, ErrDuplicate)
	}
	m.fixVersions[v.ID] = v
	m.versionOrder = append(m.versionOrder, v.ID)
	return nil
}

// FixVersions returns every release tag in creation order.
func (m *Memory) FixVersions() []*model.FixVersion {
	out := make([]*model.FixVersion, 0, len(m.versionOrder))
	for _, id := range m.versionOrder {
		out = append(out, m.fixVersions[id])
	}
	return out
}

// AddTeam records a team so exports can resolve team IDs.
func (m *Memory) AddTeam(t *model.Team) {
	m.teams[t.ID] = t
}

// SprintTickets returns the tickets assigned to a sprint. Unknown sprints
// yield nil.
func (m *Memory) SprintTickets(sprintID string) []*model.Ticket {
	if _, ok := m.sprints[sprintID]; !ok {
		return nil
	}
	return m.Tickets(model.TicketFilter{SprintID: sprintID})
}

// BlockedTickets returns blocked tickets, optionally narrowed to a sprint.
func (m *Memory) BlockedTickets(sprintID string) []*model.Ticket {
	return m.Tickets(model.TicketFilter{Status: []model.Status{model.StatusBlocked}, SprintID: sprintID})
}

// TicketDependencies returns the dependency view of one ticket.
func (m *Memory) TicketDependencies(id string) (model.Dependencies, error) {
	t, ok := m.tickets[id]
	if !ok {
		return model.Dependencies{}, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	return model.Dependencies{
		DependsOn:   t.Related(model.RelDependsOn),
		RequiredFor: t.Related(model.RelRequiredFor),
		BlockedBy:   t.Related(model.RelBlockedBy),
		Blocks:      t.Related(model.RelBlocks),
	}, nil
}

// SprintDependencies lists blocking, depends-on and required-for pairs
// starting at the tickets of a sprint.
func (m *Memory) SprintDependencies(sprintID string) model.SprintDependencies {
	var out model.SprintDependencies
	for _, t := range m.SprintTickets(sprintID) {
		for _, blocked := range t.Related(model.RelBlocks) {
			out.Blocking = append(out.Blocking, model.Pair{From: t.ID, To: blocked})
		}
		for _, dep := range t.Related(model.RelDependsOn) {
			out.Dependencies = append(out.Dependencies, model.Pair{From: t.ID, To: dep})
		}
		for _, dependent := range t.Related(model.RelRequiredFor) {
			out.RequiredFor = append(out.RequiredFor, model.Pair{From: t.ID, To: dependent})
		}
	}
	return out
}

// TicketRelationships groups a ticket's edges into outgoing (active
// voice) and incoming (passive voice) with any recorded notes.
func (m *Memory) TicketRelationships(id string) (*model.Relationships, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	out := &model.Relationships{
		Outgoing: map[model.RelationType][]model.RelatedTicket{},
		Incoming: map[model.RelationType][]model.RelatedTicket{},
	}
	for _, rel := range model.RelationTypes {
		dir := out.Incoming
		if rel.IsForward() {
			dir = out.Outgoing
		}
		for _, other := range t.Related(rel) {
			note, _ := t.Note(rel, other)
			dir[rel] = append(dir[rel], model.RelatedTicket{ID: other, Note: note})
		}
	}
	return out, nil
}

// Stats returns aggregate counts over every registered ticket.
func (m *Memory) Stats() *model.GraphStats {
	st := &model.GraphStats{
		ByStatus: map[model.Status]int{},
		ByType:   map[model.TicketType]int{},
	}
	for _, t := range m.tickets {
		st.Total++
		st.ByStatus[t.Status]++
		st.ByType[t.Type]++
		st.Edges += t.Links.Count()
		if t.Blocking != nil {
			st.BlockedCount++
		}
	}
	return st
}

// Edges returns the flattened relationship graph.
func (m *Memory) Edges() []*model.GraphEdge {
	return graph.Edges(m.tickets)
}

// Snapshot captures the registry as a Dataset. The records are shared,
// not copied.
func (m *Memory) Snapshot(runID string, at time.Time) *Dataset {
	ds := &Dataset{
		RunID:       runID,
		GeneratedAt: at,
		Tickets:     make(map[string]*model.Ticket, len(m.tickets)),
		Sprints:     make(map[string]*model.Sprint, len(m.sprints)),
		FixVersions: make(map[string]*model.FixVersion, len(m.fixVersions)),
		Teams:       make(map[string]*model.Team, len(m.teams)),
	}
	for id, t := range m.tickets {
		ds.Tickets[id] = t
	}
	for id, s := range m.sprints {
		ds.Sprints[id] = s
	}
	for id, v := range m.fixVersions {
		ds.FixVersions[id] = v
	}
	for id, t := range m.teams {
		ds.Teams[id] = t
	}
	return ds
}

// FromDataset rebuilds a registry from a dataset, e.g. one read back
// from an export. Records are ordered by ID since creation order is not
// persisted.
func FromDataset(ds *Dataset) (*Memory, error) {
	m := NewMemory()
	for _, id := range sortedKeys(ds.Tickets) {
		if err := m.AddTicket(ds.Tickets[id]); err != nil {
			return nil, err
		}
	}
	for _, id := range sortedKeys(ds.Sprints) {
		if err := m.AddSprint(ds.Sprints[id]); err != nil {
			return nil, err
		}
	}
	for _, id := range sortedKeys(ds.FixVersions) {
		if err := m.AddFixVersion(ds.FixVersions[id]); err != nil {
			return nil, err
		}
	}
	for _, t := range ds.Teams {
		m.AddTeam(t)
	}
	return m, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
