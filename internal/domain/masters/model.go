// Package masters holds the option lists offered when logging a batch:
// print media, lamination films and printer models.
package masters

import "strings"

type Category string

const (
	CategoryPrintMedia Category = "print media"
	CategoryLamination Category = "lamination"
	CategoryPrinter    Category = "printer"
)

type Master struct {
	ID       int64
	Category string
	Name     string
}

// Options groups master names per known category.
type Options struct {
	PrintMedia []string `json:"print_media"`
	Lamination []string `json:"lamination"`
	Printers   []string `json:"printers"`
}

// CategoryOf maps a free-form category label to a known category.
// Unknown labels return "" and false.
func CategoryOf(label string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "print media", "media":
		return CategoryPrintMedia, true
	case "lamination", "lam":
		return CategoryLamination, true
	case "printer", "printer model":
		return CategoryPrinter, true
	}
	return "", false
}

// Group splits rows into option lists, keeping input order and skipping
// unknown categories and blank names.
func Group(rows []Master) Options {
	var o Options
	for _, m := range rows {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		cat, ok := CategoryOf(m.Category)
		if !ok {
			continue
		}
		switch cat {
		case CategoryPrintMedia:
			o.PrintMedia = append(o.PrintMedia, name)
		case CategoryLamination:
			o.Lamination = append(o.Lamination, name)
		case CategoryPrinter:
			o.Printers = append(o.Printers, name)
		}
	}
	return o
}

// Of returns the list for one category.
func (o Options) Of(c Category) []string {
	switch c {
	case CategoryPrintMedia:
		return o.PrintMedia
	case CategoryLamination:
		return o.Lamination
	case CategoryPrinter:
		return o.Printers
	}
	return nil
}
