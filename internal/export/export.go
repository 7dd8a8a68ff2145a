// Package export writes generated datasets as one self-describing JSON
// file per collection and reads them back.
//
// Every file carries a header (format version, collection, run ID,
// generation time, record count) and a records object keyed by ID:
//
//	{"version":"1","collection":"tickets","run_id":"…","generated_at":"…","count":2,"records":{…}}
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/store"
)

// FormatVersion is written into every file header.
const FormatVersion = "1"

// Collection file names.
const (
	FileTickets       = "tickets.json"
	FileSprints       = "sprints.json"
	FileFixVersions   = "fix_versions.json"
	FileTeams         = "teams.json"
	FileRelationships = "relationships.json"
)

// Destination receives the encoded collection files of one export.
type Destination interface {
	// Write stores data under name, replacing any previous content.
	Write(ctx context.Context, name string, data []byte) error
}

// Header describes the collection a file holds.
type Header struct {
	Version     string    `json:"version"`
	Collection  string    `json:"collection"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Count       int       `json:"count"`
}

// File is the on-disk form of one collection.
type File[T any] struct {
	Header
	Records map[string]T `json:"records"`
}

// Files encodes every collection of ds, keyed by file name.
func Files(ds *store.Dataset) (map[string][]byte, error) {
	mem, err := store.FromDataset(ds)
	if err != nil {
		return nil, fmt.Errorf("index dataset: %w", err)
	}
	rels := make(map[string]*model.Relationships, len(ds.Tickets))
	for id := range ds.Tickets {
		r, err := mem.TicketRelationships(id)
		if err != nil {
			return nil, err
		}
		rels[id] = r
	}

	out := map[string][]byte{}
	for name, enc := range map[string]func() ([]byte, error){
		FileTickets:       func() ([]byte, error) { return encode(ds, "tickets", ds.Tickets) },
		FileSprints:       func() ([]byte, error) { return encode(ds, "sprints", ds.Sprints) },
		FileFixVersions:   func() ([]byte, error) { return encode(ds, "fix_versions", ds.FixVersions) },
		FileTeams:         func() ([]byte, error) { return encode(ds, "teams", ds.Teams) },
		FileRelationships: func() ([]byte, error) { return encode(ds, "relationships", rels) },
	} {
		data, err := enc()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

func encode[T any](ds *store.Dataset, collection string, records map[string]T) ([]byte, error) {
	if records == nil {
		records = map[string]T{}
	}
	f := File[T]{
		Header: Header{
			Version:     FormatVersion,
			Collection:  collection,
			RunID:       ds.RunID,
			GeneratedAt: ds.GeneratedAt.UTC(),
			Count:       len(records),
		},
		Records: records,
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Exporter writes datasets to one or more destinations.
type Exporter struct {
	destinations []Destination
	logger       *slog.Logger
}

// NewExporter returns an exporter for the given destinations. A nil
// logger uses slog.Default.
func NewExporter(logger *slog.Logger, destinations ...Destination) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{destinations: destinations, logger: logger}
}

// Export encodes ds once and writes every file to every destination. A
// failing destination does not stop the others; all failures are
// returned joined.
func (e *Exporter) Export(ctx context.Context, ds *store.Dataset) error {
	files, err := Files(ds)
	if err != nil {
		return err
	}

	var errs []error
	bytesWritten := 0
	for i, dest := range e.destinations {
		for _, name := range fileOrder {
			if err := dest.Write(ctx, name, files[name]); err != nil {
				e.logger.Error("export write failed", "destination", i, "file", name, "err", err)
				errs = append(errs, fmt.Errorf("destination %d: %s: %w", i, name, err))
				continue
			}
			bytesWritten += len(files[name])
		}
	}
	e.logger.Info("export completed", "run_id", ds.RunID, "destinations", len(e.destinations), "bytes", bytesWritten)
	return errors.Join(errs...)
}

// Export writes ds to a single destination.
func Export(ctx context.Context, ds *store.Dataset, dest Destination) error {
	files, err := Files(ds)
	if err != nil {
		return err
	}
	for _, name := range fileOrder {
		if err := dest.Write(ctx, name, files[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

var fileOrder = []string{FileTickets, FileSprints, FileFixVersions, FileTeams, FileRelationships}
