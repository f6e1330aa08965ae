package page

import (
	"strings"
	"testing"
)

var augmenter = Augmenter{DismissAfterMS: 5000, ConfirmText: "Are you sure?"}

func TestAugment_StampsAlerts(t *testing.T) {
	markup := `<div class="alert alert-success">Saved</div>` +
		`<div class="alert alert-permanent">Keep me</div>`

	out, err := augmenter.Augment(markup)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}
	if strings.Count(out, `data-autodismiss-ms="5000"`) != 1 {
		t.Fatalf("Augment() stamped %d alerts, want 1: %s", strings.Count(out, `data-autodismiss-ms="5000"`), out)
	}
	if strings.Contains(out, `alert-permanent" data-autodismiss-ms`) {
		t.Errorf("permanent alert stamped: %s", out)
	}
}

func TestAugment_StampsConfirmPrompts(t *testing.T) {
	markup := `<button data-confirm-delete="true">Delete</button>`

	out, err := augmenter.Augment(markup)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}
	if !strings.Contains(out, `data-confirm="Are you sure?"`) {
		t.Fatalf("confirm prompt not stamped: %s", out)
	}
}

func TestAugment_KeepsExistingConfirmText(t *testing.T) {
	markup := `<button data-confirm-delete="true" data-confirm="Remove order?">Delete</button>`

	out, err := augmenter.Augment(markup)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}
	if !strings.Contains(out, `data-confirm="Remove order?"`) {
		t.Fatalf("custom confirm text overwritten: %s", out)
	}
}

func TestAugment_MarksTooltips(t *testing.T) {
	out, err := augmenter.Augment(`<span data-tooltip="Reorder level">?</span>`)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}
	if !strings.Contains(out, `data-tooltip-initialized="true"`) {
		t.Fatalf("tooltip not marked: %s", out)
	}
}

func TestAugment_AutofillsVariantPriceWithinRow(t *testing.T) {
	markup := `<table><tbody><tr>` +
		`<td><select class="variant-select" name="items-0-variant">` +
		`<option>Choose</option>` +
		`<option selected>Mahogany 2x4 (UGX 25,000)</option>` +
		`</select></td>` +
		`<td><input type="text" name="items-0-unit_price" value=""></td>` +
		`</tr></tbody></table>`

	out, err := augmenter.Augment(markup)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}
	if !strings.Contains(out, `name="items-0-unit_price" value="25000"`) {
		t.Fatalf("price not autofilled: %s", out)
	}
}

func TestAugment_SkipsMalformedVariantLabels(t *testing.T) {
	markup := `<form><select class="variant-select" name="variant">` +
		`<option selected>Mahogany 2x4</option>` +
		`</select>` +
		`<input type="text" name="unit_price" value="900"></form>`

	out, err := augmenter.Augment(markup)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}
	if !strings.Contains(out, `value="900"`) {
		t.Fatalf("price overwritten despite malformed label: %s", out)
	}
}

func TestAugment_Idempotent(t *testing.T) {
	markup := `<div class="alert">Saved</div><span data-tooltip="hint">?</span>`

	once, err := augmenter.Augment(markup)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}
	twice, err := augmenter.Augment(once)
	if err != nil {
		t.Fatalf("Augment() rerun error = %v", err)
	}
	if once != twice {
		t.Fatalf("Augment() not idempotent:\nonce:  %s\ntwice: %s", once, twice)
	}
}
