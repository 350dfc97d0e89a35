package gmset

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Checked in this order against the whole line.
	mewKeyword      = regexp.MustCompile(`(?i)mew`)
	rayquazaKeyword = regexp.MustCompile(`(?i)rayquaza|ray`)

	newline = regexp.MustCompile(`\r?\n`)
)

// An ImportRecord is an item parsed from one import line.
type ImportRecord struct {
	Variant     Variant
	Category    string
	Name        string
	Code        string
	MarketPrice decimal.NullDecimal
}

// SplitLines splits an import text into trimmed, non-blank lines.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range newline.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseImport parses one record per line using the `name | code | market? | category?` grammar.
// Blank lines are dropped.
func ParseImport(lines []string, d Defaults) []ImportRecord {
	records := make([]ImportRecord, 0, len(lines))
	for _, line := range lines {
		if record, ok := ParseImportLine(line, d); ok {
			records = append(records, record)
		}
	}
	return records
}

// ParseImportLine parses a single import line. It returns false for a blank line.
func ParseImportLine(line string, d Defaults) (ImportRecord, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ImportRecord{}, false
	}

	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	field := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	record := ImportRecord{
		Variant:  d.Variant,
		Category: d.Category,
		Name:     field(0),
		Code:     field(1),
	}

	if market := field(2); market != "" {
		if price, err := Price(market); err == nil && !price.Decimal.IsNegative() {
			record.MarketPrice = price
		}
	}

	if category := field(3); category != "" {
		record.Category = category
	}

	switch {
	case mewKeyword.MatchString(line):
		record.Variant = VariantMew
	case rayquazaKeyword.MatchString(line):
		record.Variant = VariantRayquaza
	}

	return record, true
}

// Item returns the item built from the record.
func (r ImportRecord) Item(id, collectionID string) Item {
	item := NewItem(id, collectionID, Defaults{Variant: r.Variant, Category: r.Category})
	item.Name = r.Name
	item.Code = r.Code
	item.MarketPrice = r.MarketPrice
	return item
}
