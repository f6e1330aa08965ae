package models

// RowTotal is the computed breakdown for one line-item row.
type RowTotal struct {
	Index          int    `json:"index"`
	Subtotal       int64  `json:"subtotal"`
	DiscountAmount int64  `json:"discount_amount"`
	Total          int64  `json:"total"`
	Display        string `json:"display"`
}

// TotalsResponse carries every derived amount recomputed from a submitted
// line-item payload: per-row totals, the grand total, and the delivery fee.
type TotalsResponse struct {
	Rows               []RowTotal `json:"rows"`
	GrandTotal         int64      `json:"grand_total"`
	GrandTotalDisplay  string     `json:"grand_total_display"`
	DeliveryFee        int64      `json:"delivery_fee"`
	DeliveryFeeDisplay string     `json:"delivery_fee_display"`
	DeliveryShown      bool       `json:"delivery_shown"`
}
