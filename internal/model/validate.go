package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Add appends a field error.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateTicket checks a Ticket for structural violations.
// It returns a *ValidationError if any rules fail, or nil if the ticket is valid.
func ValidateTicket(t *Ticket) error {
	var ve ValidationError

	if strings.TrimSpace(t.ID) == "" {
		ve.Add("id", "is required")
	}
	if strings.TrimSpace(t.Summary) == "" {
		ve.Add("summary", "is required")
	}
	if !t.Type.IsValid() {
		ve.Add("type", "invalid value %q", t.Type)
	}
	if !t.Status.IsValid() {
		ve.Add("status", "invalid value %q", t.Status)
	}
	if !t.Priority.IsValid() {
		ve.Add("priority", "invalid value %q", t.Priority)
	}
	if t.ReporterID == "" {
		ve.Add("reporter_id", "is required")
	}
	if len(t.Components) == 0 {
		ve.Add("components", "must not be empty")
	}
	for _, c := range t.Components {
		if !c.IsValid() {
			ve.Add("components", "invalid value %q", c)
		}
	}

	// Payload must match the discriminant.
	switch {
	case t.Details == nil:
		ve.Add("details", "is required")
	case t.Details.TicketType() != t.Type:
		ve.Add("details", "payload is %s, ticket is %s", t.Details.TicketType(), t.Type)
	}

	if t.Type.Estimated() && (t.StoryPoints == nil || *t.StoryPoints <= 0) {
		ve.Add("story_points", "is required for %s", t.Type)
	}
	if t.Type == TypeEpic && t.SprintID != "" {
		ve.Add("sprint_id", "epics are never assigned to a sprint")
	}
	if t.Type == TypeSubtask && t.ParentID == "" {
		ve.Add("parent_ticket", "is required for subtasks")
	}

	if bug := t.Bug(); bug != nil {
		if !bug.Severity.IsValid() {
			ve.Add("severity", "invalid value %q", bug.Severity)
		}
		if len(bug.StepsToReproduce) == 0 {
			ve.Add("steps_to_reproduce", "must not be empty")
		}
		if bug.ExpectedBehavior == "" {
			ve.Add("expected_behavior", "is required")
		}
		if bug.ActualBehavior == "" {
			ve.Add("actual_behavior", "is required")
		}
	}

	// Blocking state consistency with Status.
	if t.Blocking != nil && strings.TrimSpace(t.Blocking.Reason) == "" {
		ve.Add("blocking_reason", "must not be empty")
	}
	if t.Status == StatusBlocked && t.Blocking == nil {
		ve.Add("blocking_reason", "is required when status is blocked")
	}
	if t.Status != StatusBlocked && t.Blocking != nil {
		ve.Add("blocking_reason", "must be nil when status is not blocked")
	}

	for rel, ids := range t.Links {
		if !rel.IsValid() {
			ve.Add("links", "unknown relation type %q", rel)
		}
		for _, id := range ids {
			if id == t.ID {
				ve.Add("links", "%s edge points at itself", rel)
			}
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateSprint checks a Sprint for rollup and date violations.
func ValidateSprint(s *Sprint) error {
	var ve ValidationError

	if strings.TrimSpace(s.ID) == "" {
		ve.Add("id", "is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		ve.Add("name", "is required")
	}
	if !s.Status.IsValid() {
		ve.Add("status", "invalid value %q", s.Status)
	}
	if !s.EndDate.After(s.StartDate) {
		ve.Add("end_date", "must be after start_date")
	}
	if s.StoryPointsCommitted < 0 {
		ve.Add("story_points_committed", "must not be negative, got %d", s.StoryPointsCommitted)
	}
	if s.StoryPointsCompleted < 0 {
		ve.Add("story_points_completed", "must not be negative, got %d", s.StoryPointsCompleted)
	}
	if s.StoryPointsCompleted > s.StoryPointsCommitted {
		ve.Add("story_points_completed", "%d exceeds committed %d", s.StoryPointsCompleted, s.StoryPointsCommitted)
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
