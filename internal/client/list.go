package client

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mdouchement/grandmaster/internal/view"
	"github.com/shopspring/decimal"
)

// List prints the items of the active collection matching the filters, followed by their totals.
func (a *App) List(ctx context.Context, f view.Filters) error {
	if err := a.resume(ctx); err != nil {
		return err
	}

	a.Session.SetFilters(f)
	fmt.Fprintf(a.Out, "%s (%s)\n\n", a.Session.CollectionName(), a.Session.CollectionID())
	return Render(a.Out, a.Session.View())
}

// Render writes the view as a table.
func Render(w io.Writer, v view.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tPOKEMON\tCATEGORY\tNAME\tCODE\tOWNED\tQTY\tPURCHASE\tMARKET")
	for _, item := range v.Items {
		owned := "no"
		if item.Owned {
			owned = "yes"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			item.ID,
			item.Variant,
			item.Category,
			item.Name,
			item.Code,
			owned,
			item.Qty(),
			amount(item.PurchasePrice),
			amount(item.MarketPrice),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s\n", Summary(v.Totals))
	return err
}

// Summary returns the one-line rendition of the totals.
func Summary(t view.Totals) string {
	return fmt.Sprintf("%d/%d owned | invested %s | market %s | P/L %s",
		t.Owned,
		t.Count,
		t.Invested.StringFixed(2),
		t.Market.StringFixed(2),
		t.ProfitLoss.StringFixed(2),
	)
}

func amount(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}
