// Package tabular extracts rendered HTML tables into rows of cell text and
// serves the table utilities built on them: CSV and Excel export and the
// case-insensitive substring filter.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/mukisa/dukani/internal/fragment"
)

// ErrNoTable indicates markup with no table element to operate on.
var ErrNoTable = errors.New("tabular: no table element found")

// Table is the extracted cell text of a rendered table.
type Table struct {
	Header []string
	Rows   [][]string
}

// FromHTML parses the first table element of the markup. Header cells come
// from the thead section, or from a leading all-th row when no thead exists.
func FromHTML(markup string) (*Table, error) {
	nodes, err := fragment.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("parse table markup: %w", err)
	}

	table := fragment.FindFirst(nodes, func(n *html.Node) bool {
		return fragment.IsTag(n, "table")
	})
	if table == nil {
		return nil, ErrNoTable
	}

	t := &Table{}
	trs := fragment.FindAll([]*html.Node{table}, func(n *html.Node) bool {
		return fragment.IsTag(n, "tr")
	})
	for _, tr := range trs {
		cells, header := rowCells(tr)
		if header && t.Header == nil && len(t.Rows) == 0 {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func rowCells(tr *html.Node) (cells []string, header bool) {
	header = fragment.Ancestor(tr, "thead") != nil
	allTH := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case fragment.IsTag(c, "th"):
			cells = append(cells, fragment.Text(c))
		case fragment.IsTag(c, "td"):
			cells = append(cells, fragment.Text(c))
			allTH = false
		}
	}
	if len(cells) > 0 && allTH {
		header = true
	}
	return cells, header
}

// isHeaderRow reports whether every cell of the row is a th element.
func isHeaderRow(tr *html.Node) bool {
	sawCell := false
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if fragment.IsTag(c, "td") {
			return false
		}
		if fragment.IsTag(c, "th") {
			sawCell = true
		}
	}
	return sawCell
}

// CSV writes the table with every cell quoted and embedded quotes doubled,
// cells joined by commas and rows by newlines.
func (t *Table) CSV(w io.Writer) error {
	var lines []string
	if t.Header != nil {
		lines = append(lines, csvLine(t.Header))
	}
	for _, row := range t.Rows {
		lines = append(lines, csvLine(row))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func csvLine(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// Filter keeps the body rows whose full text contains the query,
// case-insensitive. The header is always kept, and an empty query keeps
// every row.
func (t *Table) Filter(query string) *Table {
	out := &Table{Header: t.Header}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, row := range t.Rows {
		if q == "" || strings.Contains(strings.ToLower(strings.Join(row, " ")), q) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// FilterHTML applies the same predicate as visibility over the original
// markup: matching body rows are shown, the rest are hidden in place.
func FilterHTML(markup, query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	out, err := fragment.Transform(markup, func(nodes []*html.Node) error {
		table := fragment.FindFirst(nodes, func(n *html.Node) bool {
			return fragment.IsTag(n, "table")
		})
		if table == nil {
			return ErrNoTable
		}
		trs := fragment.FindAll([]*html.Node{table}, func(n *html.Node) bool {
			return fragment.IsTag(n, "tr") && fragment.Ancestor(n, "thead") == nil && !isHeaderRow(n)
		})
		for _, tr := range trs {
			if q == "" || strings.Contains(strings.ToLower(fragment.Text(tr)), q) {
				fragment.Show(tr)
			} else {
				fragment.Hide(tr)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
