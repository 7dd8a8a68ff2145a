package events

import (
	"context"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// Event topic constants
const (
	TopicTicketCreated     = "ticketforge.ticket.created"
	TopicTicketBlocked     = "ticketforge.ticket.blocked"
	TopicLinkAdded         = "ticketforge.link.added"
	TopicSprintCreated     = "ticketforge.sprint.created"
	TopicSprintAssigned    = "ticketforge.sprint.assigned"
	TopicFixVersionCreated = "ticketforge.fix_version.created"
	TopicRunCompleted      = "ticketforge.run.completed"

	// TopicAll matches every event a run emits.
	TopicAll = "ticketforge.>"
)

// Event types

type TicketCreated struct {
	RunID  string        `json:"run_id"`
	Ticket *model.Ticket `json:"ticket"`
}

type TicketBlocked struct {
	RunID    string    `json:"run_id"`
	TicketID string    `json:"ticket_id"`
	Reason   string    `json:"reason"`
	Since    time.Time `json:"since"`
}

type LinkAdded struct {
	RunID  string             `json:"run_id"`
	Source string             `json:"source"`
	Target string             `json:"target"`
	Type   model.RelationType `json:"type"`
	Note   string             `json:"note,omitempty"`
}

type SprintCreated struct {
	RunID  string        `json:"run_id"`
	Sprint *model.Sprint `json:"sprint"`
}

type SprintAssigned struct {
	RunID       string `json:"run_id"`
	SprintID    string `json:"sprint_id"`
	TicketID    string `json:"ticket_id"`
	StoryPoints int    `json:"story_points"`
	Committed   int    `json:"committed"`
	Completed   int    `json:"completed"`
}

type FixVersionCreated struct {
	RunID      string            `json:"run_id"`
	FixVersion *model.FixVersion `json:"fix_version"`
}

type RunCompleted struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Tickets     int       `json:"tickets"`
	Sprints     int       `json:"sprints"`
	FixVersions int       `json:"fix_versions"`
	Edges       int       `json:"edges"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
