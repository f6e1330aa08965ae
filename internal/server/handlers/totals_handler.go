package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mukisa/dukani/internal/config"
	"github.com/mukisa/dukani/internal/currency"
	"github.com/mukisa/dukani/internal/formset"
	"github.com/mukisa/dukani/internal/pricing"
)

const deliveryToggleField = "delivery_required"

// TotalsHandler recomputes derived amounts from submitted form payloads and
// normalizes amount fields before submission.
type TotalsHandler struct {
	cfg    config.CurrencyConfig
	logger *zap.Logger
}

// NewTotalsHandler constructs the HTTP handler adapter.
func NewTotalsHandler(cfg config.CurrencyConfig, logger *zap.Logger) *TotalsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TotalsHandler{cfg: cfg, logger: logger}
}

// Recompute derives row totals, the grand total, and the delivery fee from a
// url-encoded line-item payload.
func (h *TotalsHandler) Recompute(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warn("invalid totals payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form payload"})
		return
	}
	values := c.Request.PostForm

	prefix := c.DefaultQuery("prefix", "items")
	opts := pricing.Options{
		Prefix:           prefix,
		CurrencyCode:     h.cfg.Code,
		DeliveryFeeRate:  decimal.NewFromFloat(h.cfg.DeliveryFeeRate),
		DeliveryRequired: isToggleChecked(values.Get(deliveryToggleField)),
	}

	resp, err := pricing.Recompute(values, opts)
	if err != nil {
		h.logger.Warn("failed recomputing totals", zap.String("prefix", prefix), zap.Error(err))
		c.JSON(statusForDecodeError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Normalize restores every amount field of a submitted payload to its raw
// numeric value and echoes the payload back url-encoded.
func (h *TotalsHandler) Normalize(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warn("invalid normalize payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form payload"})
		return
	}

	normalized := currency.NormalizeForm(c.Request.PostForm)
	c.Data(http.StatusOK, "application/x-www-form-urlencoded", []byte(normalized.Encode()))
}

// statusForDecodeError maps payload decode failures onto client errors.
func statusForDecodeError(err error) int {
	if errors.Is(err, formset.ErrCountMismatch) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func isToggleChecked(v string) bool {
	switch v {
	case "on", "true", "1", "checked":
		return true
	}
	return false
}
