package client

import (
	"context"
	"fmt"
	"io"

	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
)

// Import inserts one item per line of r in the active collection.
func (a *App) Import(ctx context.Context, r io.Reader, d gmset.Defaults) error {
	text, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "could not read import")
	}

	if err = a.resume(ctx); err != nil {
		return err
	}

	n, err := a.Session.BulkImport(ctx, gmset.SplitLines(string(text)), d)
	if err != nil {
		return errors.Wrap(err, "could not import items")
	}

	fmt.Fprintf(a.Out, "%d items imported\n", n)
	return nil
}
