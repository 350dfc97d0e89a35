package tui

import (
	"github.com/gcla/gowid"
	"github.com/gcla/gowid/widgets/list"
	"github.com/gcla/gowid/widgets/text"
	"github.com/gdamore/tcell/v2"
	"github.com/mdouchement/grandmaster/pkg/gmset"
)

// An ItemList is a list of Items to interract with.
// It implements gowid.IWidget by delegating to its presentation.
type ItemList struct {
	ui           *TUI
	presentation *list.Widget
	abstraction  *itemListAbstraction
}

// NewItemList returns a new ItemList.
func NewItemList(ui *TUI) *ItemList {
	abs := newItemListAbstraction(nil, "")

	return &ItemList{
		ui:           ui,
		presentation: list.New(abs),
		abstraction:  abs,
	}
}

// Replace displays the given items, keeping the focus on the same item when it is still visible.
func (w *ItemList) Replace(items []gmset.Item, app gowid.IApp) {
	focused := ""
	if item, ok := w.Focused(); ok {
		focused = item.ID
	}

	w.abstraction = newItemListAbstraction(items, focused)
	w.presentation.SetWalker(w.abstraction, app)
	w.showFocused(app)
}

// Focused returns the focused item.
func (w *ItemList) Focused() (gmset.Item, bool) {
	item, ok := w.abstraction.At(w.abstraction.Focus()).(*Item)
	if !ok {
		return gmset.Item{}, false
	}
	return item.abstraction, true
}

func (w *ItemList) showFocused(app gowid.IApp) {
	item, ok := w.abstraction.At(w.abstraction.Focus()).(*Item)
	if !ok {
		w.ui.detail.SetTitle("", app)
		w.ui.detail.SetSubWidget(text.New("No item"), app)
		return
	}

	w.ui.detail.SetTitle(item.Title(), app)
	w.ui.detail.SetSubWidget(item.Details(), app)
}

////////////////////
//                //
// Delegates      //
//                //
////////////////////

// Render implements gowid.IWidget
func (w *ItemList) Render(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.ICanvas {
	return w.presentation.Render(size, focus, app)
}

// RenderSize implements gowid.IWidget
func (w *ItemList) RenderSize(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.IRenderBox {
	return w.presentation.RenderSize(size, focus, app)
}

// UserInput implements gowid.IWidget
func (w *ItemList) UserInput(ev any, size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) bool {
	ok := w.presentation.UserInput(ev, size, focus, app)

	if evm, ok := ev.(*tcell.EventMouse); !ok || evm.Buttons() != tcell.ButtonNone {
		// Avoid next action on mouse hover event
		w.showFocused(app)
	}
	return ok
}

// Selectable implements gowid.IWidget
func (w *ItemList) Selectable() bool {
	return w.presentation.Selectable()
}

////////////////////
//                //
// Abstraction    //
//                //
////////////////////

// An itemListAbstraction is a list of Items to interract with.
// It implements list.IWalker interface.
type itemListAbstraction struct {
	widgets []*Item
	focus   list.ListPos
}

func newItemListAbstraction(items []gmset.Item, focused string) *itemListAbstraction {
	w := &itemListAbstraction{
		widgets: make([]*Item, 0, len(items)),
	}

	for i, item := range items {
		w.widgets = append(w.widgets, NewItem(item))
		if item.ID == focused {
			w.focus = list.ListPos(i)
		}
	}
	return w
}

func (w *itemListAbstraction) First() list.IWalkerPosition {
	if len(w.widgets) == 0 {
		return nil
	}
	return list.ListPos(0)
}

func (w *itemListAbstraction) Last() list.IWalkerPosition {
	if len(w.widgets) == 0 {
		return nil
	}
	return list.ListPos(len(w.widgets) - 1)
}

func (w *itemListAbstraction) Length() int {
	return len(w.widgets)
}

func (w *itemListAbstraction) At(pos list.IWalkerPosition) gowid.IWidget {
	var res gowid.IWidget
	ipos := int(pos.(list.ListPos))
	if ipos >= 0 && ipos < w.Length() {
		res = w.widgets[ipos]
	}
	return res
}

func (w *itemListAbstraction) Focus() list.IWalkerPosition {
	return w.focus
}

func (w *itemListAbstraction) SetFocus(focus list.IWalkerPosition, app gowid.IApp) {
	w.focus = focus.(list.ListPos)
}

func (w *itemListAbstraction) Next(ipos list.IWalkerPosition) list.IWalkerPosition {
	pos := ipos.(list.ListPos)
	if int(pos) == w.Length()-1 {
		return list.ListPos(-1)
	}
	return pos + 1
}

func (w *itemListAbstraction) Previous(ipos list.IWalkerPosition) list.IWalkerPosition {
	pos := ipos.(list.ListPos)
	if pos-1 == -1 {
		return list.ListPos(-1)
	}
	return pos - 1
}
