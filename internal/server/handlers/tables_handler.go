package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mukisa/dukani/internal/domain/models"
	"github.com/mukisa/dukani/internal/tabular"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TablesHandler serves table export and filtering.
type TablesHandler struct {
	logger *zap.Logger
}

// NewTablesHandler constructs the HTTP handler adapter.
func NewTablesHandler(logger *zap.Logger) *TablesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TablesHandler{logger: logger}
}

// Export serializes a rendered table to a downloadable CSV file, or to an
// Excel workbook when format=xlsx is requested.
func (h *TablesHandler) Export(c *gin.Context) {
	var req models.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid export payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	table, err := tabular.FromHTML(req.Table)
	if err != nil {
		if errors.Is(err, tabular.ErrNoTable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no table found"})
			return
		}
		h.logger.Error("failed parsing table markup", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unparseable table markup"})
		return
	}

	format := c.DefaultQuery("format", "csv")
	filename := exportFilename(req.Filename, format)

	var buf bytes.Buffer
	switch format {
	case "xlsx":
		title := strings.TrimSuffix(filename, ".xlsx")
		if err := table.XLSX(&buf, title); err != nil {
			h.logger.Error("failed writing workbook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	case "csv":
		if err := table.CSV(&buf); err != nil {
			h.logger.Error("failed writing csv", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build csv"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format"})
	}
}

// Filter hides the body rows of a rendered table that do not contain the
// query, case-insensitive, and returns the mutated markup.
func (h *TablesHandler) Filter(c *gin.Context) {
	var req models.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid filter payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	out, err := tabular.FilterHTML(req.Table, req.Query)
	if err != nil {
		if errors.Is(err, tabular.ErrNoTable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no table found"})
			return
		}
		h.logger.Error("failed filtering table", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unparseable table markup"})
		return
	}

	c.JSON(http.StatusOK, models.FragmentResponse{Fragment: out})
}

// exportFilename sanitizes a caller-supplied filename and falls back to a
// generated one. The extension always matches the export format.
func exportFilename(name, format string) string {
	ext := "." + format
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "export-" + uuid.NewString()
	}
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}
