package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/store"
)

// Load reads an exported directory back into a dataset. The teams file
// is optional; the ticket, sprint and fix version files are required.
// Relationships are rebuilt from the tickets' own edge lists.
func Load(dir string) (*store.Dataset, error) {
	tickets, err := readFile[*model.Ticket](dir, FileTickets)
	if err != nil {
		return nil, err
	}
	sprints, err := readFile[*model.Sprint](dir, FileSprints)
	if err != nil {
		return nil, err
	}
	versions, err := readFile[*model.FixVersion](dir, FileFixVersions)
	if err != nil {
		return nil, err
	}
	teams, err := readFile[*model.Team](dir, FileTeams)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	ds := &store.Dataset{
		RunID:       tickets.RunID,
		GeneratedAt: tickets.GeneratedAt,
		Tickets:     tickets.Records,
		Sprints:     sprints.Records,
		FixVersions: versions.Records,
		Teams:       map[string]*model.Team{},
	}
	if teams != nil {
		ds.Teams = teams.Records
	}
	return ds, nil
}

func readFile[T any](dir, name string) (*File[T], error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var f File[T]
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if f.Version != FormatVersion {
		return nil, fmt.Errorf("%s: unsupported format version %q", name, f.Version)
	}
	if f.Records == nil {
		f.Records = map[string]T{}
	}
	return &f, nil
}
