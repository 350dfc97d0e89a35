package client

import (
	"context"
	"fmt"

	"github.com/mdouchement/grandmaster/internal/collection"
	"github.com/pkg/errors"
)

// NewCollection creates a collection and makes it the active one.
func (a *App) NewCollection(ctx context.Context, name string) error {
	if !a.Session.Preferences().Credentials.Configured() {
		return errors.Wrap(collection.ErrNotConfigured, "run configure first")
	}

	if _, err := a.Session.CreateCollection(ctx, name); err != nil {
		return err
	}

	return a.describe()
}

// OpenCollection makes the given collection the active one.
func (a *App) OpenCollection(ctx context.Context, code string) error {
	if !a.Session.Preferences().Credentials.Configured() {
		return errors.Wrap(collection.ErrNotConfigured, "run configure first")
	}

	if err := a.Session.Open(ctx, code); err != nil {
		return err
	}

	return a.describe()
}

func (a *App) describe() error {
	link, err := a.Session.ShareURL(a.Session.Preferences().Credentials.Endpoint)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "%s (%s)\n", a.Session.CollectionName(), a.Session.CollectionID())
	fmt.Fprintf(a.Out, "%d items\n", len(a.Session.Export().Items))
	fmt.Fprintf(a.Out, "Share: %s\n", link)
	return nil
}
