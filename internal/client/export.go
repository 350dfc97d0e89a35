package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Export writes the whole active collection in dir.
func (a *App) Export(ctx context.Context, dir string) error {
	if err := a.resume(ctx); err != nil {
		return err
	}

	export := a.Session.Export()
	filename := filepath.Join(dir, export.Filename())

	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "could not create export file")
	}
	defer f.Close()

	if _, err = export.WriteTo(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return errors.Wrap(err, "could not export")
	}

	fmt.Fprintf(a.Out, "%d items exported to %s\n", len(export.Items), filename)
	return nil
}
