package client

import (
	"context"
	"io"
	"os"

	"github.com/mdouchement/grandmaster/internal/collection"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// An App runs the client commands against a Session backed by a preferences file.
type App struct {
	Session     *collection.Session
	Preferences *FilePreferences
	Logger      logrus.FieldLogger
	Out         io.Writer
	// Confirm answers the delete confirmations. Nil prompts on the terminal.
	Confirm collection.Confirm
}

// New returns an App using the given preferences file.
func New(filename string, log logrus.FieldLogger) (*App, error) {
	prefs := NewFilePreferences(filename, nil)

	session, err := collection.New(collection.Options{
		Preferences: prefs,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Session:     session,
		Preferences: prefs,
		Logger:      log,
		Out:         os.Stdout,
	}, nil
}

// Close ends the live subscription.
func (a *App) Close() {
	a.Session.Close()
}

// resume opens the last opened collection.
func (a *App) resume(ctx context.Context) error {
	if !a.Session.Preferences().Credentials.Configured() {
		return errors.Wrap(collection.ErrNotConfigured, "run configure first")
	}

	ok, err := a.Session.Resume(ctx)
	if err != nil {
		return errors.Wrap(err, "could not open last collection")
	}
	if !ok {
		return errors.Wrap(collection.ErrNoCollection, "run new or open first")
	}
	return nil
}
