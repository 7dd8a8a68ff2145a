package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/store"
)

// ticketColumns is the column list used for SELECT statements on the tickets table.
const ticketColumns = `id, type, summary, description, status, priority,
	reporter_id, assignee_id, watchers, components, labels,
	epic_link, parent_id, sprint_id, story_points, fix_versions, affected_versions,
	created_at, updated_at, resolved_at, due_date, blocking_reason, blocked_since, details`

// sprintColumns is the column list used for SELECT statements on the sprints table.
const sprintColumns = `id, name, goal, team_id, status, start_date, end_date,
	points_committed, points_completed, velocity, demo_date,
	planning_notes, retrospective_notes`

// fixVersionColumns is the column list used for SELECT statements on the fix_versions table.
const fixVersionColumns = `id, name, description, release_date, released, archived`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryDeleteRun(ctx context.Context, db executor, runID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = $1`, runID)
	return err
}

func queryInsertRun(ctx context.Context, db executor, runID string, at time.Time) error {
	_, err := db.ExecContext(ctx, `INSERT INTO runs (id, generated_at) VALUES ($1, $2)`, runID, at.UTC())
	return err
}

func queryInsertTeam(ctx context.Context, db executor, runID string, t *model.Team) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal team: %w", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO teams (run_id, id, name, data) VALUES ($1, $2, $3, $4)`,
		runID, t.ID, t.Name, data)
	return err
}

func queryInsertFixVersion(ctx context.Context, db executor, runID string, v *model.FixVersion) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO fix_versions (run_id, `+fixVersionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		runID, v.ID, v.Name, v.Description, v.ReleaseDate, v.Released, v.Archived,
	)
	return err
}

func queryInsertSprint(ctx context.Context, db executor, runID string, s *model.Sprint) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sprints (run_id, `+sprintColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		runID,
		s.ID,
		s.Name,
		s.Goal,
		s.TeamID,
		string(s.Status),
		s.StartDate,
		s.EndDate,
		s.StoryPointsCommitted,
		s.StoryPointsCompleted,
		nullFloatPtr(s.Velocity),
		nullTimePtr(s.DemoDate),
		s.PlanningNotes,
		s.RetrospectiveNotes,
	)
	return err
}

func queryInsertTicket(ctx context.Context, db executor, runID string, t *model.Ticket) error {
	details, err := detailsBytes(t.Details)
	if err != nil {
		return err
	}
	var (
		reason sql.NullString
		since  sql.NullTime
	)
	if t.Blocking != nil {
		reason = nullString(t.Blocking.Reason)
		since = nullTimePtr(&t.Blocking.Since)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO tickets (run_id, `+ticketColumns+`)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25
		)`,
		runID,
		t.ID,
		string(t.Type),
		t.Summary,
		t.Description,
		string(t.Status),
		string(t.Priority),
		t.ReporterID,
		nullString(t.AssigneeID),
		pq.Array(nonNil(t.Watchers)),
		pq.Array(componentStrings(t.Components)),
		pq.Array(nonNil(t.Labels)),
		nullString(t.EpicLink),
		nullString(t.ParentID),
		nullString(t.SprintID),
		nullIntPtr(t.StoryPoints),
		pq.Array(nonNil(t.FixVersions)),
		pq.Array(nonNil(t.AffectedVersions)),
		t.CreatedAt,
		t.UpdatedAt,
		nullTimePtr(t.ResolvedAt),
		nullTimePtr(t.DueDate),
		reason,
		since,
		details,
	)
	return err
}

// queryInsertLinks stores every edge half held by t, in list order. The
// inverse halves are stored when their own source ticket is saved.
func queryInsertLinks(ctx context.Context, db executor, runID string, t *model.Ticket) error {
	rels := make([]string, 0, len(t.Links))
	for rel := range t.Links {
		rels = append(rels, string(rel))
	}
	sort.Strings(rels)
	for _, r := range rels {
		rel := model.RelationType(r)
		for pos, target := range t.Links[rel] {
			note, _ := t.Note(rel, target)
			_, err := db.ExecContext(ctx, `
				INSERT INTO ticket_links (run_id, source_id, target_id, type, note, position)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				runID, t.ID, target, r, note, pos,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func queryInsertSprintTickets(ctx context.Context, db executor, runID string, s *model.Sprint) error {
	for pos, ticketID := range s.Tickets {
		_, err := db.ExecContext(ctx, `
			INSERT INTO sprint_tickets (run_id, sprint_id, ticket_id, position)
			VALUES ($1, $2, $3, $4)`,
			runID, s.ID, ticketID, pos,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func queryLoadRun(ctx context.Context, db executor, runID string) (*store.Dataset, error) {
	ds := &store.Dataset{
		RunID:       runID,
		Tickets:     map[string]*model.Ticket{},
		Sprints:     map[string]*model.Sprint{},
		FixVersions: map[string]*model.FixVersion{},
		Teams:       map[string]*model.Team{},
	}
	err := db.QueryRowContext(ctx, `SELECT generated_at FROM runs WHERE id = $1`, runID).Scan(&ds.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if err := loadTeams(ctx, db, ds); err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	if err := loadFixVersions(ctx, db, ds); err != nil {
		return nil, fmt.Errorf("load fix versions: %w", err)
	}
	if err := loadSprints(ctx, db, ds); err != nil {
		return nil, fmt.Errorf("load sprints: %w", err)
	}
	if err := loadTickets(ctx, db, ds); err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	if err := loadLinks(ctx, db, ds); err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	if err := loadSprintTickets(ctx, db, ds); err != nil {
		return nil, fmt.Errorf("load sprint tickets: %w", err)
	}
	return ds, nil
}

func loadTeams(ctx context.Context, db executor, ds *store.Dataset) error {
	rows, err := db.QueryContext(ctx, `SELECT data FROM teams WHERE run_id = $1 ORDER BY id`, ds.RunID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return err
		}
		var t model.Team
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("decode team: %w", err)
		}
		ds.Teams[t.ID] = &t
	}
	return rows.Err()
}

func loadFixVersions(ctx context.Context, db executor, ds *store.Dataset) error {
	rows, err := db.QueryContext(ctx, `SELECT `+fixVersionColumns+` FROM fix_versions WHERE run_id = $1 ORDER BY release_date`, ds.RunID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanFixVersion(rows)
		if err != nil {
			return err
		}
		ds.FixVersions[v.ID] = v
	}
	return rows.Err()
}

func loadSprints(ctx context.Context, db executor, ds *store.Dataset) error {
	rows, err := db.QueryContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE run_id = $1 ORDER BY start_date, id`, ds.RunID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSprint(rows)
		if err != nil {
			return err
		}
		ds.Sprints[s.ID] = s
	}
	return rows.Err()
}

func loadTickets(ctx context.Context, db executor, ds *store.Dataset) error {
	rows, err := db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE run_id = $1 ORDER BY id`, ds.RunID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return err
		}
		ds.Tickets[t.ID] = t
	}
	return rows.Err()
}

func loadLinks(ctx context.Context, db executor, ds *store.Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT source_id, target_id, type, note FROM ticket_links
		WHERE run_id = $1 ORDER BY source_id, type, position`, ds.RunID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var source, target, rel, note string
		if err := rows.Scan(&source, &target, &rel, &note); err != nil {
			return err
		}
		t, ok := ds.Tickets[source]
		if !ok {
			return fmt.Errorf("link from unknown ticket %s", source)
		}
		addLink(t, model.RelationType(rel), target, note)
	}
	return rows.Err()
}

func loadSprintTickets(ctx context.Context, db executor, ds *store.Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT sprint_id, ticket_id FROM sprint_tickets
		WHERE run_id = $1 ORDER BY sprint_id, position`, ds.RunID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var sprintID, ticketID string
		if err := rows.Scan(&sprintID, &ticketID); err != nil {
			return err
		}
		if s, ok := ds.Sprints[sprintID]; ok {
			s.Tickets = append(s.Tickets, ticketID)
		}
	}
	return rows.Err()
}

func queryListRuns(ctx context.Context, db executor) ([]RunInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.generated_at, COUNT(t.id)
		FROM runs r LEFT JOIN tickets t ON t.run_id = r.id
		GROUP BY r.id, r.generated_at
		ORDER BY r.generated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.GeneratedAt, &r.Tickets); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// addLink restores one stored edge half onto t without touching the
// other endpoint, whose half is stored as its own row.
func addLink(t *model.Ticket, rel model.RelationType, target, note string) {
	if t.Links == nil {
		t.Links = model.Links{}
	}
	t.Links[rel] = append(t.Links[rel], target)
	if note == "" {
		return
	}
	if t.RelationshipNotes == nil {
		t.RelationshipNotes = map[model.RelationType]map[string]string{}
	}
	if t.RelationshipNotes[rel] == nil {
		t.RelationshipNotes[rel] = map[string]string{}
	}
	t.RelationshipNotes[rel][target] = note
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
