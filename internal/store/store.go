// Package store holds generated records during a run and defines the
// sink interface finished datasets are persisted through.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a record with the same ID already exists.
var ErrDuplicate = errors.New("duplicate id")

// Dataset is a complete, internally consistent generation result.
type Dataset struct {
	RunID       string                       `json:"run_id"`
	GeneratedAt time.Time                    `json:"generated_at"`
	Tickets     map[string]*model.Ticket     `json:"tickets"`
	Sprints     map[string]*model.Sprint     `json:"sprints"`
	FixVersions map[string]*model.FixVersion `json:"fix_versions"`
	Teams       map[string]*model.Team       `json:"teams,omitempty"`
}

// Sink persists finished datasets.
type Sink interface {
	Save(ctx context.Context, ds *Dataset) error
	Close() error
}
