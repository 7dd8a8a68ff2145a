package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirDestination writes collection files into a local directory.
type DirDestination struct {
	Dir string
}

// Write writes data to Dir/name through a temporary file, so a reader
// never sees a partial file.
func (d DirDestination) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	path := filepath.Join(d.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
