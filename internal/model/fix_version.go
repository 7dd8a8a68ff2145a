package model

import "time"

// FixVersion is a release tag attachable to tickets. It is independent
// of sprints and of the relationship graph.
type FixVersion struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ReleaseDate time.Time `json:"release_date"`
	Released    bool      `json:"released"`
	Archived    bool      `json:"archived"`
}
