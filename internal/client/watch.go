package client

import (
	"context"
	"fmt"
	"runtime"

	"github.com/mdouchement/grandmaster/internal/client/tui"
	"github.com/pkg/errors"
)

// Watch runs the live view of the active collection in the terminal.
func (a *App) Watch(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch r := r.(type) {
			case error:
				err = r
			default:
				err = fmt.Errorf("%v", r)
			}
			stack := make([]byte, 4<<10)
			length := runtime.Stack(stack, true)

			a.Logger.Errorf("[PANIC RECOVER] %s %s", err, stack[:length])
		}
	}()

	if err = a.resume(ctx); err != nil {
		return err
	}

	ui, err := tui.New(ctx, a.Session, a.Logger)
	if err != nil {
		return errors.Wrap(err, "could not start the terminal interface")
	}
	defer ui.Cleanup()

	ui.Run()
	return nil
}
