// Package pricing computes the derived amounts shown alongside line-item
// rows: per-row totals with discounts, the grand total, and the delivery
// fee. Amounts are whole currency units; intermediate math runs on decimals
// and rounds once at the end.
package pricing

import (
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/mukisa/dukani/internal/currency"
	"github.com/mukisa/dukani/internal/domain/models"
	"github.com/mukisa/dukani/internal/formset"
)

// DefaultDeliveryFeeRate is the delivery fee fraction of the item subtotal.
var DefaultDeliveryFeeRate = decimal.NewFromFloat(0.05)

var oneHundred = decimal.NewFromInt(100)

// Breakdown is the derived amounts for one row.
type Breakdown struct {
	Subtotal       int64
	DiscountAmount int64
	Total          int64
}

// LineTotal computes subtotal = quantity x price, the discount amount from a
// percentage, and the remaining total, each rounded to the nearest whole
// unit.
func LineTotal(quantity, unitPrice, discountPct decimal.Decimal) Breakdown {
	subtotal := quantity.Mul(unitPrice)
	discount := subtotal.Mul(discountPct).Div(oneHundred)
	total := subtotal.Sub(discount)
	return Breakdown{
		Subtotal:       subtotal.Round(0).IntPart(),
		DiscountAmount: discount.Round(0).IntPart(),
		Total:          total.Round(0).IntPart(),
	}
}

// LineTotalFromStrings parses the raw field values of a row and computes its
// breakdown. Missing or unparseable values default to zero.
func LineTotalFromStrings(quantity, unitPrice, discountPct string) Breakdown {
	return LineTotal(
		parseDecimal(quantity),
		parseDecimal(unitPrice),
		parseDecimal(discountPct),
	)
}

// GrandTotal sums rendered row-total displays, parsing out grouping
// characters. Displays with no numeric content contribute nothing.
func GrandTotal(rowTotals []string) int64 {
	var sum int64
	for _, display := range rowTotals {
		n, ok := currency.ParseDisplay(display)
		if !ok {
			continue
		}
		sum += n
	}
	return sum
}

// DeliveryFee computes the fee on an item subtotal when delivery is
// required, rounded to the nearest whole unit. When delivery is not required
// the fee is zero and its container stays hidden (shown=false).
func DeliveryFee(itemTotal int64, required bool, rate decimal.Decimal) (fee int64, shown bool) {
	if !required {
		return 0, false
	}
	if rate.IsZero() {
		rate = DefaultDeliveryFeeRate
	}
	fee = decimal.NewFromInt(itemTotal).Mul(rate).Round(0).IntPart()
	return fee, true
}

// Options configures a Recompute pass.
type Options struct {
	// Prefix is the formset prefix of the line-item rows, "items" by default.
	Prefix string
	// CurrencyCode prefixes every rendered display.
	CurrencyCode string
	// DeliveryFeeRate overrides the default fee fraction when positive.
	DeliveryFeeRate decimal.Decimal
	// DeliveryRequired mirrors the state of the delivery toggle.
	DeliveryRequired bool
}

// Field names of a line-item row, per the rendered form markup.
const (
	quantityField  = "quantity"
	unitPriceField = "unit_price"
	discountField  = "discount_percentage"
)

// Recompute decodes a submitted line-item payload and derives every display
// amount in one pass: row breakdowns, grand total, and delivery fee.
// Soft-deleted rows and rows missing both quantity and price are skipped, so
// the grand total always equals the sum of the rows that remain visible.
func Recompute(values url.Values, opts Options) (models.TotalsResponse, error) {
	if opts.Prefix == "" {
		opts.Prefix = "items"
	}
	if opts.CurrencyCode == "" {
		opts.CurrencyCode = currency.DefaultCode
	}

	rows, err := formset.Decode(opts.Prefix, values)
	if err != nil {
		return models.TotalsResponse{}, err
	}

	resp := models.TotalsResponse{Rows: []models.RowTotal{}}
	var grand int64
	for _, row := range rows {
		if row.Deleted {
			continue
		}
		qty := row.Field(quantityField)
		price := row.Field(unitPriceField)
		if qty == "" && price == "" {
			continue
		}
		b := LineTotalFromStrings(qty, price, row.Field(discountField))
		resp.Rows = append(resp.Rows, models.RowTotal{
			Index:          row.Index,
			Subtotal:       b.Subtotal,
			DiscountAmount: b.DiscountAmount,
			Total:          b.Total,
			Display:        currency.FormatWithCode(opts.CurrencyCode, b.Total),
		})
		grand += b.Total
	}

	resp.GrandTotal = grand
	resp.GrandTotalDisplay = currency.FormatWithCode(opts.CurrencyCode, grand)

	fee, shown := DeliveryFee(grand, opts.DeliveryRequired, opts.DeliveryFeeRate)
	resp.DeliveryFee = fee
	resp.DeliveryShown = shown
	if shown {
		resp.DeliveryFeeDisplay = currency.FormatWithCode(opts.CurrencyCode, fee)
	}

	return resp, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(currency.StripGrouping(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
