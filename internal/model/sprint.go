package model

import (
	"math"
	"time"
)

// SprintStatus represents the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "Planned"
	SprintActive    SprintStatus = "Active"
	SprintCompleted SprintStatus = "Completed"
	SprintCancelled SprintStatus = "Cancelled"
)

// String returns the string representation of the sprint status.
func (s SprintStatus) String() string {
	return string(s)
}

// IsValid checks whether the sprint status is a known value.
func (s SprintStatus) IsValid() bool {
	switch s {
	case SprintPlanned, SprintActive, SprintCompleted, SprintCancelled:
		return true
	}
	return false
}

// Sprint is a fixed-length work period with effort rollups.
type Sprint struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Status    SprintStatus `json:"status"`
	TeamID    string       `json:"team_id"`

	Tickets              []string `json:"tickets"`
	StoryPointsCommitted int      `json:"story_points_committed"`
	StoryPointsCompleted int      `json:"story_points_completed"`
	Velocity             *float64 `json:"velocity,omitempty"`

	DemoDate           *time.Time `json:"demo_date,omitempty"`
	PlanningNotes      string     `json:"planning_notes,omitempty"`
	RetrospectiveNotes string     `json:"retrospective_notes,omitempty"`
}

// DurationDays returns the sprint length in whole days, never less than 1.
func (s *Sprint) DurationDays() int {
	days := int(math.Round(s.EndDate.Sub(s.StartDate).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Contains reports whether at falls within [StartDate, EndDate].
func (s *Sprint) Contains(at time.Time) bool {
	return !at.Before(s.StartDate) && !at.After(s.EndDate)
}

// UpdateVelocity recomputes velocity as completed points per sprint day.
func (s *Sprint) UpdateVelocity() {
	v := float64(s.StoryPointsCompleted) / float64(s.DurationDays())
	s.Velocity = &v
}

// HasTicket reports whether id was assigned to the sprint.
func (s *Sprint) HasTicket(id string) bool {
	for _, t := range s.Tickets {
		if t == id {
			return true
		}
	}
	return false
}
