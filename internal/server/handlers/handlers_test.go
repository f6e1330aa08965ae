package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mukisa/dukani/internal/config"
	"github.com/mukisa/dukani/internal/domain/models"
	"github.com/mukisa/dukani/internal/page"
	"github.com/mukisa/dukani/internal/stock"
)

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return testEngineWithAnnotator(stock.Annotator{})
}

func testEngineWithAnnotator(annotator stock.Annotator) *gin.Engine {
	gin.SetMode(gin.TestMode)

	fragments := NewFragmentsHandler(page.Augmenter{DismissAfterMS: 5000, ConfirmText: "Sure?"}, annotator, nil)
	totals := NewTotalsHandler(config.CurrencyConfig{Code: "UGX", DeliveryFeeRate: 0.05}, nil)
	tables := NewTablesHandler(nil)

	r := gin.New()
	r.POST("/fragments/formset/rows", fragments.AddFormsetRow)
	r.POST("/fragments/formset/rows/remove", fragments.RemoveFormsetRow)
	r.POST("/fragments/stock", fragments.AnnotateStock)
	r.POST("/totals/recompute", totals.Recompute)
	r.POST("/forms/normalize", totals.Normalize)
	r.POST("/tables/export", tables.Export)
	r.POST("/tables/filter", tables.Filter)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(t *testing.T, r *gin.Engine, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddFormsetRow(t *testing.T) {
	r := testEngine()

	w := postJSON(t, r, "/fragments/formset/rows", models.FormsetRowRequest{
		Prefix:   "items",
		Template: `<tr class="d-none" data-formset-template="true"><td><input name="items-__prefix__-quantity"></td></tr>`,
		Count:    1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.FormsetRowResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalForms != 2 {
		t.Errorf("TotalForms = %d, want 2", resp.TotalForms)
	}
	if !strings.Contains(resp.Row, `name="items-1-quantity"`) {
		t.Errorf("row = %s", resp.Row)
	}
}

func TestAddFormsetRow_BadTemplate(t *testing.T) {
	r := testEngine()

	w := postJSON(t, r, "/fragments/formset/rows", models.FormsetRowRequest{
		Prefix:   "items",
		Template: `<tr><td>no placeholder</td></tr>`,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestRemoveFormsetRow_SoftDelete(t *testing.T) {
	r := testEngine()

	w := postJSON(t, r, "/fragments/formset/rows/remove", models.FormsetRemoveRequest{
		Row: `<tr><td><input type="checkbox" name="items-0-DELETE"></td></tr>`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.FormsetRemoveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Removed {
		t.Fatal("persisted row reported removed")
	}
	if !strings.Contains(resp.Row, "checked") {
		t.Errorf("row = %s", resp.Row)
	}
}

func TestAnnotateStock(t *testing.T) {
	r := testEngine()

	w := postJSON(t, r, "/fragments/stock", models.FragmentRequest{
		Fragment: `<div data-stock="0">Teak board</div>`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "stock-out") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAnnotateStock_ConfiguredReorderLevel(t *testing.T) {
	r := testEngineWithAnnotator(stock.Annotator{DefaultReorderLevel: 20})

	w := postJSON(t, r, "/fragments/stock", models.FragmentRequest{
		Fragment: `<div data-stock="15">Teak board</div>`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "stock-low") {
		t.Errorf("stock of 15 with configured threshold 20 should be low: %s", w.Body.String())
	}
}

func TestRecomputeTotals(t *testing.T) {
	r := testEngine()

	w := postForm(t, r, "/totals/recompute", url.Values{
		"items-TOTAL_FORMS":           {"1"},
		"items-0-quantity":            {"3"},
		"items-0-unit_price":          {"1500"},
		"items-0-discount_percentage": {"10"},
		"delivery_required":           {"on"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.TotalsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.GrandTotalDisplay != "UGX 4,050" {
		t.Errorf("GrandTotalDisplay = %q", resp.GrandTotalDisplay)
	}
	if !resp.DeliveryShown || resp.DeliveryFee != 203 {
		t.Errorf("delivery fee = %d, shown = %v", resp.DeliveryFee, resp.DeliveryShown)
	}
}

func TestRecomputeTotals_CountMismatch(t *testing.T) {
	r := testEngine()

	w := postForm(t, r, "/totals/recompute", url.Values{
		"items-TOTAL_FORMS": {"1"},
		"items-0-quantity":  {"1"},
		"items-5-quantity":  {"1"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestNormalizeForm(t *testing.T) {
	r := testEngine()

	w := postForm(t, r, "/forms/normalize", url.Values{
		"unit_price": {"1,500"},
		"quantity":   {"3"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	values, err := url.ParseQuery(w.Body.String())
	if err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if values.Get("unit_price") != "1500" {
		t.Errorf("unit_price = %q, want 1500", values.Get("unit_price"))
	}
}

func TestExportCSV(t *testing.T) {
	r := testEngine()

	w := postJSON(t, r, "/tables/export", models.TableRequest{
		Table:    `<table><tr><td>A</td><td>B,C</td></tr></table>`,
		Filename: "items",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != `"A","B,C"` {
		t.Errorf("csv = %q", got)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "items.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestExportNoTable(t *testing.T) {
	r := testEngine()

	w := postJSON(t, r, "/tables/export", models.TableRequest{Table: "<div></div>"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestFilterTable(t *testing.T) {
	r := testEngine()

	w := postJSON(t, r, "/tables/filter", models.TableRequest{
		Table: `<table><tbody><tr><td>UGX 500</td></tr><tr><td>USD 20</td></tr></tbody></table>`,
		Query: "ugx",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.FragmentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if strings.Count(resp.Fragment, "display: none") != 1 {
		t.Errorf("fragment = %s", resp.Fragment)
	}
}
