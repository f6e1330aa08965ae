// Package page applies the one-time decorations rendered fragments need
// before they ship: auto-dismiss hints on alerts, delete-confirmation
// prompts, tooltip markers, and variant price autofill. Every pass is
// idempotent so fragments can be re-processed safely.
package page

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"github.com/mukisa/dukani/internal/currency"
	"github.com/mukisa/dukani/internal/fragment"
)

const (
	alertClass          = "alert"
	alertPermanentClass = "alert-permanent"
	autodismissAttr     = "data-autodismiss-ms"
	confirmMarkerAttr   = "data-confirm-delete"
	confirmTextAttr     = "data-confirm"
	tooltipAttr         = "data-tooltip"
	tooltipInitAttr     = "data-tooltip-initialized"
	variantSelectClass  = "variant-select"
)

// Augmenter owns the configured decoration values.
type Augmenter struct {
	// DismissAfterMS is stamped on every alert not marked permanent.
	DismissAfterMS int
	// ConfirmText is the prompt shown before a confirmed delete proceeds.
	ConfirmText string
}

// Augment applies every decoration to the fragment in one pass.
func (a Augmenter) Augment(markup string) (string, error) {
	out, err := fragment.Transform(markup, func(nodes []*html.Node) error {
		fragment.WalkAll(nodes, func(n *html.Node) {
			a.stampAlert(n)
			a.stampConfirm(n)
			stampTooltip(n)
			autofillVariantPrice(n)
		})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("augment fragment: %w", err)
	}
	return out, nil
}

func (a Augmenter) stampAlert(n *html.Node) {
	if !fragment.HasClass(n, alertClass) || fragment.HasClass(n, alertPermanentClass) {
		return
	}
	fragment.SetAttr(n, autodismissAttr, strconv.Itoa(a.DismissAfterMS))
}

func (a Augmenter) stampConfirm(n *html.Node) {
	if _, ok := fragment.Attr(n, confirmMarkerAttr); !ok {
		return
	}
	if _, ok := fragment.Attr(n, confirmTextAttr); ok {
		return
	}
	fragment.SetAttr(n, confirmTextAttr, a.ConfirmText)
}

func stampTooltip(n *html.Node) {
	if _, ok := fragment.Attr(n, tooltipAttr); !ok {
		return
	}
	fragment.SetAttr(n, tooltipInitAttr, "true")
}

// autofillVariantPrice copies the amount embedded in the selected option's
// label into the sibling price field, searching the enclosing row first and
// the enclosing form as a fallback. Labels without a recognizable
// "CODE amount" pattern are skipped silently; this is a best-effort
// enhancement, not a contract.
func autofillVariantPrice(n *html.Node) {
	if !fragment.IsTag(n, "select") || !fragment.HasClass(n, variantSelectClass) {
		return
	}
	option := selectedOption(n)
	if option == nil {
		return
	}
	_, amount, ok := currency.ExtractAmount(fragment.Text(option))
	if !ok {
		return
	}
	target := priceFieldNear(n)
	if target == nil {
		return
	}
	fragment.SetAttr(target, "value", strconv.FormatInt(amount, 10))
}

func selectedOption(sel *html.Node) *html.Node {
	return fragment.FindFirst([]*html.Node{sel}, func(n *html.Node) bool {
		if !fragment.IsTag(n, "option") {
			return false
		}
		_, ok := fragment.Attr(n, "selected")
		return ok
	})
}

func priceFieldNear(sel *html.Node) *html.Node {
	for _, scope := range []string{"tr", "form"} {
		root := fragment.Ancestor(sel, scope)
		if root == nil {
			continue
		}
		target := fragment.FindFirst([]*html.Node{root}, func(n *html.Node) bool {
			if !fragment.IsTag(n, "input") {
				return false
			}
			name, _ := fragment.Attr(n, "name")
			return currency.IsAmountField(name)
		})
		if target != nil {
			return target
		}
	}
	return nil
}
