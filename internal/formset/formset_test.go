package formset

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
)

const rowTemplate = `<tr class="formset-row d-none" data-formset-template="true">` +
	`<td><input type="number" name="items-__prefix__-quantity" id="id_items-__prefix__-quantity"></td>` +
	`<td><input type="text" name="items-__prefix__-unit_price" id="id_items-__prefix__-unit_price"></td>` +
	`</tr>`

func TestNew_RejectsBadTemplates(t *testing.T) {
	if _, err := New("items", "  "); err != ErrEmptyTemplate {
		t.Fatalf("New() err = %v, want ErrEmptyTemplate", err)
	}
	if _, err := New("items", "<tr><td></td></tr>"); err != ErrNoPlaceholder {
		t.Fatalf("New() err = %v, want ErrNoPlaceholder", err)
	}
}

func TestAddRow_SubstitutesIndexAndStripsMarkers(t *testing.T) {
	fs, err := New("items", rowTemplate)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	row, count, err := fs.AddRow(2)
	if err != nil {
		t.Fatalf("AddRow() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("AddRow() count = %d, want 3", count)
	}
	if !strings.Contains(row, `name="items-2-quantity"`) {
		t.Errorf("row missing substituted quantity field: %s", row)
	}
	if !strings.Contains(row, `name="items-2-unit_price"`) {
		t.Errorf("row missing substituted price field: %s", row)
	}
	if strings.Contains(row, PlaceholderToken) {
		t.Errorf("row still contains placeholder token: %s", row)
	}
	if strings.Contains(row, TemplateMarkerAttr) || strings.Contains(row, "d-none") {
		t.Errorf("row still carries template markers: %s", row)
	}
}

func TestAddRow_CountGrowsByOnePerAdd(t *testing.T) {
	fs, err := New("items", rowTemplate)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	count := 0
	for i := 0; i < 5; i++ {
		var row string
		row, count, err = fs.AddRow(count)
		if err != nil {
			t.Fatalf("AddRow() error = %v", err)
		}
		want := fmt.Sprintf(`name="items-%d-quantity"`, i)
		if !strings.Contains(row, want) {
			t.Errorf("add %d: row missing %s", i, want)
		}
	}
	if count != 5 {
		t.Fatalf("count after 5 adds = %d, want 5", count)
	}
}

func TestRemoveRow_PersistedRowIsSoftDeleted(t *testing.T) {
	row := `<tr class="formset-row">` +
		`<td><input type="number" name="items-0-quantity" value="3"></td>` +
		`<td><input type="checkbox" name="items-0-DELETE"></td>` +
		`</tr>`

	out, removed, err := RemoveRow(row)
	if err != nil {
		t.Fatalf("RemoveRow() error = %v", err)
	}
	if removed {
		t.Fatal("RemoveRow() removed a persisted row from the document")
	}
	if !strings.Contains(out, "checked") {
		t.Errorf("delete flag not checked: %s", out)
	}
	if !strings.Contains(out, DeletedClass) {
		t.Errorf("row not tagged deleted: %s", out)
	}
	if !strings.Contains(out, "display: none") {
		t.Errorf("row not hidden: %s", out)
	}
}

func TestRemoveRow_UnsavedRowIsRemoved(t *testing.T) {
	row := `<tr class="formset-row"><td><input type="number" name="items-3-quantity"></td></tr>`

	out, removed, err := RemoveRow(row)
	if err != nil {
		t.Fatalf("RemoveRow() error = %v", err)
	}
	if !removed {
		t.Fatal("RemoveRow() kept an unsaved row")
	}
	if out != "" {
		t.Fatalf("RemoveRow() markup = %q, want empty", out)
	}
}

func TestDecode_ReadsRowsAndDeleteFlags(t *testing.T) {
	values := url.Values{
		"items-TOTAL_FORMS":  {"2"},
		"items-0-quantity":   {"3"},
		"items-0-unit_price": {"1500"},
		"items-1-quantity":   {"1"},
		"items-1-unit_price": {"9000"},
		"items-1-DELETE":     {"on"},
	}

	rows, err := Decode("items", values)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Decode() gave %d rows, want 2", len(rows))
	}
	if rows[0].Field("quantity") != "3" || rows[0].Field("unit_price") != "1500" {
		t.Errorf("row 0 fields = %v", rows[0].Fields)
	}
	if rows[0].Deleted {
		t.Error("row 0 marked deleted")
	}
	if !rows[1].Deleted {
		t.Error("row 1 not marked deleted")
	}
}

func TestDecode_CountMismatchFails(t *testing.T) {
	values := url.Values{
		"items-TOTAL_FORMS": {"1"},
		"items-0-quantity":  {"3"},
		"items-1-quantity":  {"4"},
	}

	if _, err := Decode("items", values); err == nil {
		t.Fatal("Decode() accepted rows beyond the count field")
	}
}

func TestDecode_InvalidCountFails(t *testing.T) {
	values := url.Values{"items-0-quantity": {"3"}}
	if _, err := Decode("items", values); err == nil {
		t.Fatal("Decode() accepted a payload with no count field")
	}
}
