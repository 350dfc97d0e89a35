package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mdouchement/grandmaster/internal/client"
	"github.com/mdouchement/grandmaster/internal/client/tui"
	"github.com/mdouchement/grandmaster/internal/view"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	preferences string
	verbose     bool
)

func main() {
	c := &cobra.Command{
		Use:          "gmc",
		Short:        "Grand Master Set collection client",
		Version:      fmt.Sprintf("%s - build %.7s @ %s", version, revision, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	c.PersistentFlags().StringVarP(&preferences, "preferences", "p", client.PreferencesFile, "Preferences file")
	c.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logs")

	c.AddCommand(configureCmd)
	c.AddCommand(forgetCmd)
	c.AddCommand(newCmd)
	c.AddCommand(openCmd)
	c.AddCommand(listCmd())
	c.AddCommand(addCmd())
	c.AddCommand(editCmd)
	c.AddCommand(deleteCmd())
	c.AddCommand(importCmd())
	c.AddCommand(exportCmd())
	c.AddCommand(watchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, logger logrus.FieldLogger, fn func(ctx context.Context, app *client.App) error) error {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.WarnLevel)
		if verbose {
			l.SetLevel(logrus.DebugLevel)
		}
		logger = l
	}

	app, err := client.New(preferences, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(cmd.Context(), app)
}

func defaults(variant, category string) (gmset.Defaults, error) {
	d := gmset.DefaultDefaults()
	if variant != "" {
		v, err := gmset.ParseVariant(variant)
		if err != nil {
			return d, err
		}
		d.Variant = v
	}
	if category != "" {
		d.Category = category
	}
	return d, nil
}

var (
	configureCmd = &cobra.Command{
		Use:   "configure",
		Short: "Set the collection server endpoint and access key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, nil, func(_ context.Context, app *client.App) error {
				return app.Configure()
			})
		},
	}

	forgetCmd = &cobra.Command{
		Use:   "forget",
		Short: "Remove the stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, nil, func(_ context.Context, app *client.App) error {
				return app.Forget()
			})
		},
	}

	newCmd = &cobra.Command{
		Use:   "new [NAME]",
		Short: "Create a collection and open it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, nil, func(ctx context.Context, app *client.App) error {
				return app.NewCollection(ctx, strings.Join(args, " "))
			})
		},
	}

	openCmd = &cobra.Command{
		Use:   "open CODE",
		Short: "Open a shared collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, nil, func(ctx context.Context, app *client.App) error {
				return app.OpenCollection(ctx, args[0])
			})
		},
	}

	editCmd = &cobra.Command{
		Use:   "edit ID FIELD=VALUE...",
		Short: "Update the fields of an item",
		Long:  "Update the fields of an item.\nFields: pokemon, category, name, code, owned, qty, purchase_price, market_price, notes.\nAn empty price resets it to unknown.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, nil, func(ctx context.Context, app *client.App) error {
				return app.Edit(ctx, args[0], args[1:])
			})
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Live view of the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := tui.NewLogger(tui.LogFile)
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}

			return run(cmd, logger, func(ctx context.Context, app *client.App) error {
				return app.Watch(ctx)
			})
		},
	}
)

func listCmd() *cobra.Command {
	var (
		search string
		owned  string
		hide   []string
	)

	c := &cobra.Command{
		Use:   "list",
		Short: "List the items of the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := view.DefaultFilters()
			f.Search = search

			var err error
			if f.Owned, err = view.ParseOwnership(owned); err != nil {
				return err
			}

			for _, h := range hide {
				v, err := gmset.ParseVariant(h)
				if err != nil {
					return err
				}
				f = f.WithVariant(v, false)
			}

			return run(cmd, nil, func(ctx context.Context, app *client.App) error {
				return app.List(ctx, f)
			})
		},
	}
	c.Flags().StringVarP(&search, "search", "s", "", "Search in names, codes and categories")
	c.Flags().StringVarP(&owned, "owned", "o", "all", "Ownership filter (all, yes or no)")
	c.Flags().StringSliceVar(&hide, "hide", nil, "Hide the items of the given Pokémon")
	return c
}

func addCmd() *cobra.Command {
	var variant, category string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a blank item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := defaults(variant, category)
			if err != nil {
				return err
			}

			return run(cmd, nil, func(ctx context.Context, app *client.App) error {
				return app.Add(ctx, d)
			})
		},
	}
	c.Flags().StringVar(&variant, "variant", "", "Pokémon of the item")
	c.Flags().StringVar(&category, "category", "", "Category of the item")
	return c
}

func deleteCmd() *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, nil, func(ctx context.Context, app *client.App) error {
				return app.Delete(ctx, args[0], yes)
			})
		},
	}
	c.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return c
}

func importCmd() *cobra.Command {
	var variant, category string

	c := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import items, one `name | code | market | category` per line",
		Long:  "Import items, one `name | code | market | category` per line.\nThe lines are read from the standard input when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := defaults(variant, category)
			if err != nil {
				return err
			}

			var r io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "could not open import file")
				}
				defer f.Close()
				r = f
			}

			return run(cmd, nil, func(ctx context.Context, app *client.App) error {
				return app.Import(ctx, r, d)
			})
		},
	}
	c.Flags().StringVar(&variant, "variant", "", "Default Pokémon of the items")
	c.Flags().StringVar(&category, "category", "", "Default category of the items")
	return c
}

func exportCmd() *cobra.Command {
	var dir string

	c := &cobra.Command{
		Use:   "export",
		Short: "Export the whole collection as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, nil, func(ctx context.Context, app *client.App) error {
				return app.Export(ctx, dir)
			})
		},
	}
	c.Flags().StringVarP(&dir, "dir", "d", ".", "Destination directory")
	return c
}
