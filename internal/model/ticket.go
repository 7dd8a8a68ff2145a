package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// TicketType is the discriminant of the ticket union.
type TicketType string

const (
	TypeEpic    TicketType = "Epic"
	TypeStory   TicketType = "Story"
	TypeTask    TicketType = "Task"
	TypeSubtask TicketType = "Sub-task"
	TypeBug     TicketType = "Bug"
)

// TicketTypes lists every ticket variant in hierarchy order.
var TicketTypes = []TicketType{TypeEpic, TypeStory, TypeTask, TypeSubtask, TypeBug}

// String returns the string representation of the ticket type.
func (t TicketType) String() string {
	return string(t)
}

// IsValid checks whether the ticket type is a known variant.
func (t TicketType) IsValid() bool {
	return slices.Contains(TicketTypes, t)
}

// Estimated reports whether tickets of this type must carry story points.
func (t TicketType) Estimated() bool {
	switch t {
	case TypeStory, TypeTask, TypeSubtask:
		return true
	}
	return false
}

// Status represents the workflow state of a ticket.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusInReview   Status = "In Review"
	StatusBlocked    Status = "Blocked"
	StatusDone       Status = "Done"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusInReview, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// Priority ranks tickets; bugs reuse it as severity.
type Priority string

const (
	PriorityHighest Priority = "Highest"
	PriorityHigh    Priority = "High"
	PriorityMedium  Priority = "Medium"
	PriorityLow     Priority = "Low"
	PriorityLowest  Priority = "Lowest"
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// IsValid checks whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHighest, PriorityHigh, PriorityMedium, PriorityLow, PriorityLowest:
		return true
	}
	return false
}

// DefaultPriority returns the priority a freshly created ticket of type t
// receives: epics and bugs start High, everything else Medium.
func DefaultPriority(t TicketType) Priority {
	switch t {
	case TypeEpic, TypeBug:
		return PriorityHigh
	}
	return PriorityMedium
}

// Component is an area of the product a ticket touches.
type Component string

const (
	ComponentFrontend       Component = "Frontend"
	ComponentBackend        Component = "Backend"
	ComponentDatabase       Component = "Database"
	ComponentInfrastructure Component = "Infrastructure"
	ComponentSecurity       Component = "Security"
	ComponentTesting        Component = "Testing"
)

// Components lists every known component.
var Components = []Component{
	ComponentFrontend, ComponentBackend, ComponentDatabase,
	ComponentInfrastructure, ComponentSecurity, ComponentTesting,
}

// String returns the string representation of the component.
func (c Component) String() string {
	return string(c)
}

// IsValid checks whether the component is a known value.
func (c Component) IsValid() bool {
	return slices.Contains(Components, c)
}

// Blocking records why and since when a ticket is blocked. The two facts
// live in one value so that neither can be set without the other.
type Blocking struct {
	Reason string    `json:"reason"`
	Since  time.Time `json:"since"`
}

// Ticket is the base work-item record. Variant-specific data lives in
// Details, whose concrete type always matches Type.
type Ticket struct {
	ID          string      `json:"id"`
	Type        TicketType  `json:"type"`
	Summary     string      `json:"summary"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
	Priority    Priority    `json:"priority"`
	ReporterID  string      `json:"reporter_id"`
	AssigneeID  string      `json:"assignee_id,omitempty"`
	Watchers    []string    `json:"watchers,omitempty"`
	Components  []Component `json:"components"`
	Labels      []string    `json:"labels,omitempty"`

	EpicLink string `json:"epic_link,omitempty"`
	ParentID string `json:"parent_ticket,omitempty"`
	SprintID string `json:"sprint_id,omitempty"`

	StoryPoints      *int     `json:"story_points,omitempty"`
	FixVersions      []string `json:"fix_versions,omitempty"`
	AffectedVersions []string `json:"affected_versions,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`

	Links             Links                              `json:"links,omitempty"`
	RelationshipNotes map[RelationType]map[string]string `json:"relationship_notes,omitempty"`

	Blocking *Blocking `json:"-"`
	Details  Details   `json:"-"`
}

// BlockingReason returns the reason the ticket is blocked, or "".
func (t *Ticket) BlockingReason() string {
	if t.Blocking == nil {
		return ""
	}
	return t.Blocking.Reason
}

// BlockedSince returns when the ticket became blocked, or nil.
func (t *Ticket) BlockedSince() *time.Time {
	if t.Blocking == nil {
		return nil
	}
	since := t.Blocking.Since
	return &since
}

// Related returns the IDs linked from t by the given relation type.
func (t *Ticket) Related(rel RelationType) []string {
	return t.Links[rel]
}

// Note returns the note recorded on t for the edge (rel, targetID).
func (t *Ticket) Note(rel RelationType, targetID string) (string, bool) {
	note, ok := t.RelationshipNotes[rel][targetID]
	return note, ok
}

// HasComponent reports whether c is among the ticket's components.
func (t *Ticket) HasComponent(c Component) bool {
	return slices.Contains(t.Components, c)
}

// Points returns the story-point estimate or 0 when unestimated.
func (t *Ticket) Points() int {
	if t.StoryPoints == nil {
		return 0
	}
	return *t.StoryPoints
}

// Epic returns the epic payload, or nil if t is not an epic.
func (t *Ticket) Epic() *EpicDetails {
	d, _ := t.Details.(*EpicDetails)
	return d
}

// Story returns the story payload, or nil if t is not a story.
func (t *Ticket) Story() *StoryDetails {
	d, _ := t.Details.(*StoryDetails)
	return d
}

// Task returns the task payload, or nil if t is not a task.
func (t *Ticket) Task() *TaskDetails {
	d, _ := t.Details.(*TaskDetails)
	return d
}

// Subtask returns the subtask payload, or nil if t is not a subtask.
func (t *Ticket) Subtask() *SubtaskDetails {
	d, _ := t.Details.(*SubtaskDetails)
	return d
}

// Bug returns the bug payload, or nil if t is not a bug.
func (t *Ticket) Bug() *BugDetails {
	d, _ := t.Details.(*BugDetails)
	return d
}

// Details is the variant payload of a Ticket. The set of implementations
// is closed to this package.
type Details interface {
	TicketType() TicketType
	isDetails()
}

// EpicDetails is the payload of an Epic.
type EpicDetails struct {
	ChildStories []string   `json:"child_stories,omitempty"`
	TargetStart  *time.Time `json:"target_start,omitempty"`
	TargetEnd    *time.Time `json:"target_end,omitempty"`
	Initiative   string     `json:"initiative,omitempty"`
}

// StoryDetails is the payload of a Story.
type StoryDetails struct {
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	UserPersona        string   `json:"user_persona,omitempty"`
	BusinessValue      string   `json:"business_value,omitempty"`
}

// TaskDetails is the payload of a Task.
type TaskDetails struct {
	TechnicalNotes string `json:"technical_details,omitempty"`
}

// SubtaskDetails is the payload of a Subtask. Its parent lives on the
// base record as ParentID and is mandatory.
type SubtaskDetails struct {
	Checklist []string `json:"checklist,omitempty"`
}

// BugDetails is the payload of a Bug.
type BugDetails struct {
	Severity         Priority `json:"severity"`
	StepsToReproduce []string `json:"steps_to_reproduce"`
	ExpectedBehavior string   `json:"expected_behavior"`
	ActualBehavior   string   `json:"actual_behavior"`
	Environment      string   `json:"environment,omitempty"`
	Workaround       string   `json:"workaround,omitempty"`
}

func (*EpicDetails) TicketType() TicketType    { return TypeEpic }
func (*StoryDetails) TicketType() TicketType   { return TypeStory }
func (*TaskDetails) TicketType() TicketType    { return TypeTask }
func (*SubtaskDetails) TicketType() TicketType { return TypeSubtask }
func (*BugDetails) TicketType() TicketType     { return TypeBug }

func (*EpicDetails) isDetails()    {}
func (*StoryDetails) isDetails()   {}
func (*TaskDetails) isDetails()    {}
func (*SubtaskDetails) isDetails() {}
func (*BugDetails) isDetails()     {}

// NewDetails returns an empty payload for the given ticket type.
func NewDetails(t TicketType) (Details, error) {
	switch t {
	case TypeEpic:
		return &EpicDetails{}, nil
	case TypeStory:
		return &StoryDetails{}, nil
	case TypeTask:
		return &TaskDetails{}, nil
	case TypeSubtask:
		return &SubtaskDetails{}, nil
	case TypeBug:
		return &BugDetails{}, nil
	}
	return nil, fmt.Errorf("unknown ticket type %q", t)
}

// ticketAlias strips the methods of Ticket so that the custom
// marshalers below do not recurse.
type ticketAlias Ticket

// ticketJSON is the flattened wire form of a Ticket.
type ticketJSON struct {
	*ticketAlias
	BlockingReason string          `json:"blocking_reason,omitempty"`
	BlockedSince   *time.Time      `json:"blocked_since,omitempty"`
	Details        json.RawMessage `json:"details,omitempty"`
}

// MarshalJSON flattens the blocking state and embeds the variant payload
// under "details".
func (t *Ticket) MarshalJSON() ([]byte, error) {
	out := ticketJSON{
		ticketAlias:    (*ticketAlias)(t),
		BlockingReason: t.BlockingReason(),
		BlockedSince:   t.BlockedSince(),
	}
	if t.Details != nil {
		raw, err := json.Marshal(t.Details)
		if err != nil {
			return nil, fmt.Errorf("marshal %s details: %w", t.Type, err)
		}
		out.Details = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the payload according to the "type" discriminant.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	in := ticketJSON{ticketAlias: (*ticketAlias)(t)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if (in.BlockingReason == "") != (in.BlockedSince == nil) {
		return fmt.Errorf("ticket %s: blocking_reason and blocked_since must be set together", t.ID)
	}
	if in.BlockedSince != nil {
		t.Blocking = &Blocking{Reason: in.BlockingReason, Since: *in.BlockedSince}
	}
	details, err := NewDetails(t.Type)
	if err != nil {
		return fmt.Errorf("ticket %s: %w", t.ID, err)
	}
	if len(in.Details) > 0 {
		if err := json.Unmarshal(in.Details, details); err != nil {
			return fmt.Errorf("ticket %s: decode details: %w", t.ID, err)
		}
	}
	t.Details = details
	return nil
}
