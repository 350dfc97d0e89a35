package client

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mdouchement/grandmaster/internal/collection"
	"github.com/pkg/errors"
)

// Configure asks the collection server coordinates and stores them.
func (a *App) Configure() error {
	endpoint, err := readline.Line("Endpoint: ")
	if err != nil {
		return errors.Wrap(err, "could not read endpoint from stdin")
	}

	key, err := readline.Password("Access key: ")
	if err != nil {
		return errors.Wrap(err, "could not read access key from stdin")
	}

	creds := collection.Credentials{
		Endpoint:  strings.TrimSpace(endpoint),
		AccessKey: strings.TrimSpace(string(key)),
	}

	fmt.Fprintln(a.Out, "Storing preferences in "+a.Preferences.filename)
	return a.Session.Configure(creds)
}

// Forget removes the stored credentials and the last opened collection.
func (a *App) Forget() error {
	if err := a.Session.Forget(); err != nil {
		return errors.Wrap(err, "could not forget preferences")
	}

	fmt.Fprintln(a.Out, "Preferences removed")
	return nil
}
