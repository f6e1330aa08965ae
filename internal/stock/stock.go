// Package stock derives the three-level stock indicator from raw stock and
// reorder-level attributes, both for rendered fragments and for the
// scheduled low-stock digest.
package stock

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mukisa/dukani/internal/fragment"
)

// DefaultReorderLevel applies when an element declares no reorder level.
const DefaultReorderLevel = 10

const (
	indicatorClass = "stock-indicator"
	stockAttr      = "data-stock"
	reorderAttr    = "data-reorder-level"
	nameAttr       = "data-name"
)

// Level is the derived stock state.
type Level int

// Classification is total and mutually exclusive: zero stock is Out, stock
// within the reorder level is Low, anything above it is High.
const (
	Out Level = iota
	Low
	High
)

// String returns the level's class suffix.
func (l Level) String() string {
	switch l {
	case Out:
		return "out"
	case Low:
		return "low"
	default:
		return "high"
	}
}

// Label returns the indicator's display text.
func (l Level) Label() string {
	switch l {
	case Out:
		return "Out of stock"
	case Low:
		return "Low stock"
	default:
		return "In stock"
	}
}

// Classify maps a stock count onto its level. Negative counts are treated as
// zero; a non-positive reorder level falls back to the default.
func Classify(stock, reorderLevel int) Level {
	if reorderLevel <= 0 {
		reorderLevel = DefaultReorderLevel
	}
	switch {
	case stock <= 0:
		return Out
	case stock <= reorderLevel:
		return Low
	default:
		return High
	}
}

// Annotator applies indicator updates with a configured default reorder
// level for elements that declare none. The zero value falls back to
// DefaultReorderLevel.
type Annotator struct {
	DefaultReorderLevel int
}

func (a Annotator) defaultLevel() int {
	if a.DefaultReorderLevel <= 0 {
		return DefaultReorderLevel
	}
	return a.DefaultReorderLevel
}

// Annotate updates the stock indicator on every element of the fragment that
// declares a stock count. The indicator child is created once and prepended;
// re-running always resets it to exactly one level class.
func (a Annotator) Annotate(markup string) (string, error) {
	out, err := fragment.Transform(markup, func(nodes []*html.Node) error {
		fragment.WalkAll(nodes, func(n *html.Node) {
			raw, ok := fragment.Attr(n, stockAttr)
			if !ok {
				return
			}
			count, _ := strconv.Atoi(raw)
			level := Classify(count, reorderLevelOf(n, a.defaultLevel()))
			updateIndicator(n, level)
		})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("annotate stock fragment: %w", err)
	}
	return out, nil
}

func reorderLevelOf(n *html.Node, fallback int) int {
	raw, ok := fragment.Attr(n, reorderAttr)
	if !ok {
		return fallback
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level <= 0 {
		return fallback
	}
	return level
}

func updateIndicator(parent *html.Node, level Level) {
	indicator := findIndicator(parent)
	if indicator == nil {
		indicator = &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
		parent.InsertBefore(indicator, parent.FirstChild)
	}
	fragment.SetAttr(indicator, "class", indicatorClass+" stock-"+level.String())
	fragment.SetText(indicator, level.Label())
}

func findIndicator(parent *html.Node) *html.Node {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && fragment.HasClass(c, indicatorClass) {
			return c
		}
	}
	return nil
}

// Item is one stock-bearing entry extracted from a rendered snapshot.
type Item struct {
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
}

// Summary counts items per level.
type Summary struct {
	Out  int `json:"out"`
	Low  int `json:"low"`
	High int `json:"high"`
}

// Summarize tallies the classification of every item.
func Summarize(items []Item) Summary {
	var s Summary
	for _, item := range items {
		switch Classify(item.Stock, item.ReorderLevel) {
		case Out:
			s.Out++
		case Low:
			s.Low++
		default:
			s.High++
		}
	}
	return s
}

// ItemsFromHTML extracts every stock-declaring element of a rendered
// snapshot into items. The item name comes from the element's name attribute
// when present, falling back to its text content with any indicator label
// excluded, so already-annotated snapshots extract cleanly.
func (a Annotator) ItemsFromHTML(markup string) ([]Item, error) {
	nodes, err := fragment.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("parse stock snapshot: %w", err)
	}

	var items []Item
	fragment.WalkAll(nodes, func(n *html.Node) {
		raw, ok := fragment.Attr(n, stockAttr)
		if !ok {
			return
		}
		count, _ := strconv.Atoi(raw)
		name, ok := fragment.Attr(n, nameAttr)
		if !ok {
			name = itemName(n)
		}
		items = append(items, Item{
			Name:         name,
			Stock:        count,
			ReorderLevel: reorderLevelOf(n, a.defaultLevel()),
		})
	})
	return items, nil
}

// itemName collects the element's text content, skipping any indicator
// child's label.
func itemName(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && fragment.HasClass(node, indicatorClass) {
			return
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
