package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanTicket scans a single row into a model.Ticket.
// The row must contain columns in the order defined by ticketColumns.
func scanTicket(row scannable) (*model.Ticket, error) {
	var t model.Ticket
	var (
		assignee     sql.NullString
		watchers     []string
		components   []string
		labels       []string
		epicLink     sql.NullString
		parentID     sql.NullString
		sprintID     sql.NullString
		storyPoints  sql.NullInt64
		fixVersions  []string
		affected     []string
		resolvedAt   sql.NullTime
		dueDate      sql.NullTime
		reason       sql.NullString
		blockedSince sql.NullTime
		details      []byte
	)

	err := row.Scan(
		&t.ID,
		&t.Type,
		&t.Summary,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.ReporterID,
		&assignee,
		pq.Array(&watchers),
		pq.Array(&components),
		pq.Array(&labels),
		&epicLink,
		&parentID,
		&sprintID,
		&storyPoints,
		pq.Array(&fixVersions),
		pq.Array(&affected),
		&t.CreatedAt,
		&t.UpdatedAt,
		&resolvedAt,
		&dueDate,
		&reason,
		&blockedSince,
		&details,
	)
	if err != nil {
		return nil, err
	}

	t.AssigneeID = assignee.String
	t.Watchers = emptyToNil(watchers)
	t.Components = toComponents(components)
	t.Labels = emptyToNil(labels)
	t.EpicLink = epicLink.String
	t.ParentID = parentID.String
	t.SprintID = sprintID.String
	t.FixVersions = emptyToNil(fixVersions)
	t.AffectedVersions = emptyToNil(affected)
	if storyPoints.Valid {
		p := int(storyPoints.Int64)
		t.StoryPoints = &p
	}
	t.ResolvedAt = timePtr(resolvedAt)
	t.DueDate = timePtr(dueDate)
	if reason.Valid && blockedSince.Valid {
		t.Blocking = &model.Blocking{Reason: reason.String, Since: blockedSince.Time}
	}

	d, err := model.NewDetails(t.Type)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", t.ID, err)
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, d); err != nil {
			return nil, fmt.Errorf("ticket %s: decode details: %w", t.ID, err)
		}
	}
	t.Details = d

	return &t, nil
}

// scanSprint scans a single row into a model.Sprint.
// The row must contain columns in the order defined by sprintColumns.
func scanSprint(row scannable) (*model.Sprint, error) {
	var s model.Sprint
	var (
		velocity sql.NullFloat64
		demoDate sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Goal,
		&s.TeamID,
		&s.Status,
		&s.StartDate,
		&s.EndDate,
		&s.StoryPointsCommitted,
		&s.StoryPointsCompleted,
		&velocity,
		&demoDate,
		&s.PlanningNotes,
		&s.RetrospectiveNotes,
	)
	if err != nil {
		return nil, err
	}

	if velocity.Valid {
		v := velocity.Float64
		s.Velocity = &v
	}
	s.DemoDate = timePtr(demoDate)
	return &s, nil
}

// scanFixVersion scans a single row into a model.FixVersion.
func scanFixVersion(row scannable) (*model.FixVersion, error) {
	var v model.FixVersion
	err := row.Scan(&v.ID, &v.Name, &v.Description, &v.ReleaseDate, &v.Released, &v.Archived)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullIntPtr(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloatPtr(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// detailsBytes returns nil for a missing payload so the column is NULL.
func detailsBytes(d model.Details) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal details: %w", err)
	}
	return data, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyToNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func componentStrings(cs []model.Component) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func toComponents(ss []string) []model.Component {
	if len(ss) == 0 {
		return nil
	}
	out := make([]model.Component, len(ss))
	for i, s := range ss {
		out[i] = model.Component(s)
	}
	return out
}
