package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mukisa/dukani/internal/domain/models"
	"github.com/mukisa/dukani/internal/formset"
	"github.com/mukisa/dukani/internal/page"
	"github.com/mukisa/dukani/internal/stock"
)

// FragmentsHandler serves the fragment transforms: formset row management,
// stock indicator annotation, and page decoration.
type FragmentsHandler struct {
	augmenter page.Augmenter
	annotator stock.Annotator
	logger    *zap.Logger
}

// NewFragmentsHandler constructs the HTTP handler adapter.
func NewFragmentsHandler(augmenter page.Augmenter, annotator stock.Annotator, logger *zap.Logger) *FragmentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FragmentsHandler{augmenter: augmenter, annotator: annotator, logger: logger}
}

// AddFormsetRow clones the next row of a repeatable group.
func (h *FragmentsHandler) AddFormsetRow(c *gin.Context) {
	var req models.FormsetRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid formset row payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	fs, err := formset.New(req.Prefix, req.Template)
	if err != nil {
		h.logger.Warn("rejected formset template", zap.String("prefix", req.Prefix), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	row, count, err := fs.AddRow(req.Count)
	if err != nil {
		h.logger.Error("failed cloning formset row", zap.String("prefix", req.Prefix), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clone row"})
		return
	}

	c.JSON(http.StatusOK, models.FormsetRowResponse{Row: row, TotalForms: count})
}

// RemoveFormsetRow applies the soft/hard delete rule to a row.
func (h *FragmentsHandler) RemoveFormsetRow(c *gin.Context) {
	var req models.FormsetRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid formset remove payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	row, removed, err := formset.RemoveRow(req.Row)
	if err != nil {
		h.logger.Error("failed removing formset row", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove row"})
		return
	}

	c.JSON(http.StatusOK, models.FormsetRemoveResponse{Row: row, Removed: removed})
}

// AnnotateStock refreshes the stock indicators of a fragment.
func (h *FragmentsHandler) AnnotateStock(c *gin.Context) {
	var req models.FragmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid stock fragment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	out, err := h.annotator.Annotate(req.Fragment)
	if err != nil {
		h.logger.Error("failed annotating stock fragment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to annotate fragment"})
		return
	}

	c.JSON(http.StatusOK, models.FragmentResponse{Fragment: out})
}

// Augment applies the page decorations to a fragment.
func (h *FragmentsHandler) Augment(c *gin.Context) {
	var req models.FragmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid augment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	out, err := h.augmenter.Augment(req.Fragment)
	if err != nil {
		h.logger.Error("failed augmenting fragment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to augment fragment"})
		return
	}

	c.JSON(http.StatusOK, models.FragmentResponse{Fragment: out})
}
