// Package tui renders the live view of a collection in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gcla/gowid"
	"github.com/gcla/gowid/widgets/columns"
	"github.com/gcla/gowid/widgets/edit"
	"github.com/gcla/gowid/widgets/framed"
	"github.com/gcla/gowid/widgets/pile"
	"github.com/gcla/gowid/widgets/styled"
	"github.com/gcla/gowid/widgets/text"
	"github.com/gdamore/tcell/v2"
	"github.com/mdouchement/grandmaster/internal/collection"
	"github.com/mdouchement/grandmaster/internal/view"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const help = "Tab focus | ^O owned | F2 Rayquaza | F3 Mew | ^N add | ^T toggle owned | ^D delete | ^Q quit"

// A TUI is a text-based interface.
type TUI struct {
	App     *gowid.App
	session *collection.Session
	log     logrus.FieldLogger
	ctx     context.Context

	main    *pile.Widget
	search  *edit.Widget
	list    *ItemList
	frame   *framed.Widget
	detail  *framed.Widget
	filters *text.Widget
	totals  *text.Widget
	status  *text.Widget

	mu      sync.Mutex
	armed   string // item waiting for the delete confirmation
	message string
}

// New returns a new TUI displaying the session.
func New(ctx context.Context, session *collection.Session, log logrus.FieldLogger) (*TUI, error) {
	ui := &TUI{
		session: session,
		log:     log,
		ctx:     ctx,
	}

	app, err := gowid.NewApp(layout(ui, log))
	if err != nil {
		return ui, errors.Wrap(err, "could not create application widgets")
	}

	ui.App = app
	return ui, nil
}

// Run starts the application and thus the event loop.
func (ui *TUI) Run() {
	cancel := ui.session.Observe(func(v view.View) {
		ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
			ui.render(v, app)
		}))
	})
	defer cancel()

	ui.App.MainLoop(gowid.UnhandledInputFunc(ui.unhandled))
}

// Cleanup cleans the application properly (in case of panic).
func (ui *TUI) Cleanup() {
	ui.App.GetScreen().Fini() // Cleanup tcell screen's objects
}

// DisplayStatus displays a message in the status bar (aka notifications).
func (ui *TUI) DisplayStatus(message string) {
	ui.mu.Lock()
	ui.message = message
	ui.mu.Unlock()

	ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
		ui.status.SetText(message, ui.App)
	}))
	go func() {
		timer := time.NewTimer(3 * time.Second)
		<-timer.C

		ui.mu.Lock()
		current := ui.message == message
		ui.mu.Unlock()
		if !current {
			return
		}

		ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
			ui.status.SetText(help, ui.App)
		}))
	}()
}

func (ui *TUI) render(v view.View, app gowid.IApp) {
	ui.frame.SetTitle(fmt.Sprintf("%s (%s)", ui.session.CollectionName(), ui.session.CollectionID()), app)
	ui.list.Replace(v.Items, app)
	ui.filters.SetText(describe(ui.session.Filters()), app)
	ui.totals.SetText(summary(v.Totals), app)

	if err := ui.session.Err(); err != nil {
		ui.status.SetText(err.Error(), app)
	}
}

////////////////////
//                //
// Layout         //
//                //
////////////////////

func layout(ui *TUI, log logrus.StdLogger) gowid.AppArgs {
	ui.search = edit.New(edit.Options{Caption: "Search: "})
	ui.list = NewItemList(ui)
	ui.frame = framed.NewUnicode(ui.list)
	ui.detail = framed.NewUnicode(text.New(""))
	ui.filters = text.New("")
	ui.totals = text.New("")
	ui.status = text.New(help)

	debounced := debounce.New(300 * time.Millisecond)
	ui.search.OnTextSet(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: func(app gowid.IApp, iw gowid.IWidget) {
		q := ui.search.Text()
		debounced(func() {
			ui.updateFilters(func(f view.Filters) view.Filters {
				f.Search = q
				return f
			})
		})
	}})

	body := columns.New([]gowid.IContainerWidget{
		&gowid.ContainerWidget{
			IWidget: styled.New(ui.frame, gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderWithWeight{W: 3},
		},
		&gowid.ContainerWidget{
			IWidget: styled.New(ui.detail, gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderWithWeight{W: 2},
		},
	})

	footer := pile.New([]gowid.IContainerWidget{
		&gowid.ContainerWidget{IWidget: ui.filters, D: gowid.RenderFlow{}},
		&gowid.ContainerWidget{IWidget: ui.totals, D: gowid.RenderFlow{}},
		&gowid.ContainerWidget{IWidget: ui.status, D: gowid.RenderFlow{}},
	})

	ui.main = pile.New([]gowid.IContainerWidget{
		&gowid.ContainerWidget{
			IWidget: styled.New(framed.NewUnicode(ui.search), gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderFlow{},
		},
		&gowid.ContainerWidget{IWidget: body, D: gowid.RenderWithWeight{W: 1}},
		&gowid.ContainerWidget{
			IWidget: styled.New(framed.NewUnicode(footer), gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderFlow{},
		},
	})

	return gowid.AppArgs{
		View: ui.main,
		Palette: &gowid.Palette{
			"mainpane": gowid.MakePaletteEntry(gowid.ColorLightGray, gowid.ColorBlack),
			// List style
			"normal":  gowid.MakePaletteEntry(gowid.ColorLightGray, gowid.ColorBlack),
			"focused": gowid.MakePaletteEntry(gowid.ColorBlack, gowid.ColorRed),
		},
		Log: log,
	}
}

////////////////////
//                //
// Events         //
//                //
////////////////////

func (ui *TUI) unhandled(app gowid.IApp, ev any) bool {
	evk, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}

	handled := true

	// Session calls are done outside of the event loop: they may block on the network
	// and their notifications are scheduled on this loop.
	switch evk.Key() {
	case tcell.KeyCtrlQ:
		app.Quit()
	case tcell.KeyTab:
		if ui.main.Focus() == 0 {
			ui.main.SetFocus(app, 1)
		} else {
			ui.main.SetFocus(app, 0)
		}
	case tcell.KeyCtrlO:
		go ui.updateFilters(func(f view.Filters) view.Filters {
			f.Owned = f.Owned.Next()
			return f
		})
	case tcell.KeyF2:
		go ui.toggleVariant(gmset.VariantRayquaza)
	case tcell.KeyF3:
		go ui.toggleVariant(gmset.VariantMew)
	case tcell.KeyCtrlN:
		go ui.add()
	case tcell.KeyCtrlT:
		if item, ok := ui.list.Focused(); ok {
			go ui.toggleOwned(item)
		}
	case tcell.KeyCtrlD:
		if item, ok := ui.list.Focused(); ok {
			ui.delete(item)
		}
	default:
		handled = false
	}

	return handled
}

func (ui *TUI) updateFilters(fn func(view.Filters) view.Filters) {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	ui.session.SetFilters(fn(ui.session.Filters()))
}

func (ui *TUI) toggleVariant(v gmset.Variant) {
	ui.updateFilters(func(f view.Filters) view.Filters {
		return f.WithVariant(v, !f.Variants[v])
	})
}

func (ui *TUI) add() {
	id, err := ui.session.AddItem(ui.ctx, gmset.DefaultDefaults())
	if err != nil {
		ui.fail(err, "could not add item")
		return
	}
	ui.DisplayStatus("Added " + id)
}

func (ui *TUI) toggleOwned(item gmset.Item) {
	owned := !item.Owned
	err := ui.session.PatchItem(ui.ctx, item.ID, gmset.Patch{Owned: &owned})
	if err != nil {
		ui.fail(err, "could not update item")
	}
}

// delete asks a second Ctrl-D on the same item before deleting it.
func (ui *TUI) delete(item gmset.Item) {
	ui.mu.Lock()
	confirmed := ui.armed == item.ID
	ui.armed = ""
	if !confirmed {
		ui.armed = item.ID
	}
	ui.mu.Unlock()

	if !confirmed {
		ui.DisplayStatus(fmt.Sprintf("Press Ctrl-D again to delete %s", label(item)))
		return
	}

	go func() {
		_, err := ui.session.DeleteItem(ui.ctx, item.ID, func(string) bool { return true })
		if err != nil {
			ui.fail(err, "could not delete item")
			return
		}
		ui.DisplayStatus("Deleted " + item.ID)
	}()
}

func (ui *TUI) fail(err error, message string) {
	ui.log.WithError(err).Error(message)
	ui.DisplayStatus(errors.Wrap(err, message).Error())
}

////////////////////
//                //
// Formatting     //
//                //
////////////////////

func describe(f view.Filters) string {
	var hidden []string
	for _, v := range gmset.Variants {
		if !f.Variants[v] {
			hidden = append(hidden, string(v))
		}
	}

	s := fmt.Sprintf("Owned: %s", f.Owned)
	if f.Search != "" {
		s += fmt.Sprintf(" | Search: %q", f.Search)
	}
	if len(hidden) > 0 {
		s += " | Hidden: " + strings.Join(hidden, ", ")
	}
	return s
}

func summary(t view.Totals) string {
	return fmt.Sprintf("%d/%d owned | Invested %s | Market %s | P/L %s",
		t.Owned,
		t.Count,
		t.Invested.StringFixed(2),
		t.Market.StringFixed(2),
		t.ProfitLoss.StringFixed(2),
	)
}
