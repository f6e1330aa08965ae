package models

import "time"

// StockDigestItem is one product entry carried in a low-stock digest.
type StockDigestItem struct {
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
}

// StockDigest is the scheduled summary posted to the alert webhook.
type StockDigest struct {
	GeneratedAt time.Time         `json:"generated_at"`
	OutOfStock  int               `json:"out_of_stock"`
	LowStock    int               `json:"low_stock"`
	InStock     int               `json:"in_stock"`
	OutItems    []StockDigestItem `json:"out_items,omitempty"`
	LowItems    []StockDigestItem `json:"low_items,omitempty"`
}
