// Package digest builds the scheduled low-stock summary: it fetches the
// rendered inventory snapshot, classifies every stock entry, and shapes the
// out-of-stock and low-stock items into a digest for the alert webhook.
package digest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mukisa/dukani/internal/domain/models"
	"github.com/mukisa/dukani/internal/stock"
)

// Service generates stock digests from a rendered snapshot endpoint.
type Service struct {
	httpClient  *resty.Client
	snapshotURL string
	annotator   stock.Annotator
	logger      *zap.Logger
}

// NewService wires a digest service for the given snapshot URL.
func NewService(snapshotURL string, annotator stock.Annotator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	restyClient := resty.New().SetTimeout(30 * time.Second)
	return &Service{
		httpClient:  restyClient,
		snapshotURL: snapshotURL,
		annotator:   annotator,
		logger:      logger,
	}
}

// Generate fetches the snapshot fragment and summarizes it into a digest.
func (s *Service) Generate(ctx context.Context) (models.StockDigest, error) {
	resp, err := s.httpClient.R().SetContext(ctx).Get(s.snapshotURL)
	if err != nil {
		return models.StockDigest{}, fmt.Errorf("fetch stock snapshot: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return models.StockDigest{}, fmt.Errorf("fetch stock snapshot: status=%d", resp.StatusCode())
	}

	items, err := s.annotator.ItemsFromHTML(string(resp.Body()))
	if err != nil {
		return models.StockDigest{}, fmt.Errorf("extract stock items: %w", err)
	}

	summary := stock.Summarize(items)
	digest := models.StockDigest{
		GeneratedAt: time.Now(),
		OutOfStock:  summary.Out,
		LowStock:    summary.Low,
		InStock:     summary.High,
	}
	for _, item := range items {
		entry := models.StockDigestItem{
			Name:         item.Name,
			Stock:        item.Stock,
			ReorderLevel: item.ReorderLevel,
		}
		switch stock.Classify(item.Stock, item.ReorderLevel) {
		case stock.Out:
			digest.OutItems = append(digest.OutItems, entry)
		case stock.Low:
			digest.LowItems = append(digest.LowItems, entry)
		}
	}

	s.logger.Info("stock digest generated",
		zap.Int("items", len(items)),
		zap.Int("out_of_stock", summary.Out),
		zap.Int("low_stock", summary.Low))

	return digest, nil
}
