package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
)

// Add inserts a blank item in the active collection.
func (a *App) Add(ctx context.Context, d gmset.Defaults) error {
	if err := a.resume(ctx); err != nil {
		return err
	}

	id, err := a.Session.AddItem(ctx, d)
	if err != nil {
		return errors.Wrap(err, "could not add item")
	}

	fmt.Fprintln(a.Out, id)
	return nil
}

// Edit updates the fields of an item from FIELD=VALUE assignments.
func (a *App) Edit(ctx context.Context, id string, assignments []string) error {
	patch, err := ParseAssignments(assignments)
	if err != nil {
		return err
	}

	if err = a.resume(ctx); err != nil {
		return err
	}

	return errors.Wrap(a.Session.PatchItem(ctx, id, patch), "could not edit item")
}

// Delete removes an item after confirmation, unless yes is set.
func (a *App) Delete(ctx context.Context, id string, yes bool) error {
	if err := a.resume(ctx); err != nil {
		return err
	}

	confirm := a.Confirm
	if confirm == nil {
		confirm = prompt
	}
	if yes {
		confirm = func(string) bool { return true }
	}

	deleted, err := a.Session.DeleteItem(ctx, id, confirm)
	if err != nil {
		return errors.Wrap(err, "could not delete item")
	}
	if !deleted {
		fmt.Fprintln(a.Out, "Aborted")
		return nil
	}

	fmt.Fprintln(a.Out, "Deleted")
	return nil
}

// ParseAssignments builds a patch from FIELD=VALUE assignments.
func ParseAssignments(assignments []string) (gmset.Patch, error) {
	var patch gmset.Patch
	for _, assignment := range assignments {
		field, value, ok := strings.Cut(assignment, "=")
		if !ok {
			return patch, errors.Errorf("invalid assignment %q (FIELD=VALUE)", assignment)
		}

		if err := patch.Set(strings.ToLower(strings.TrimSpace(field)), value); err != nil {
			return patch, err
		}
	}
	return patch, nil
}

func prompt(message string) bool {
	answer, err := readline.Line(message + " [y/N] ")
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
