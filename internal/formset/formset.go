// Package formset manages the repeatable row groups the rendered forms use
// for order and sale line items. It follows the management-form convention:
// fields are named <prefix>-<index>-<field>, a hidden <prefix>-TOTAL_FORMS
// field tracks the row count, and a hidden template row carries the
// placeholder token substituted with the new row's index on add.
package formset

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/mukisa/dukani/internal/fragment"
)

const (
	// PlaceholderToken is replaced with the zero-based row index when a
	// template row is cloned.
	PlaceholderToken = "__prefix__"

	// TotalFormsSuffix names the hidden count field, e.g. "items-TOTAL_FORMS".
	TotalFormsSuffix = "-TOTAL_FORMS"

	// DeleteSuffix names the per-row soft-delete flag, e.g. "items-0-DELETE".
	DeleteSuffix = "-DELETE"

	// TemplateMarkerAttr tags the hidden template row inside a container.
	TemplateMarkerAttr = "data-formset-template"

	// DeletedClass tags a soft-deleted row that stays in the document so the
	// server still receives its delete flag on submit.
	DeletedClass = "formset-deleted"

	templateHiddenClass = "d-none"
)

var (
	// ErrEmptyTemplate indicates a formset constructed without a template row.
	ErrEmptyTemplate = errors.New("formset: empty template")

	// ErrNoPlaceholder indicates template markup with no index placeholder.
	ErrNoPlaceholder = errors.New("formset: template contains no placeholder token")

	// ErrCountMismatch indicates a submitted payload whose count field does
	// not cover every row present in the data.
	ErrCountMismatch = errors.New("formset: count field does not match submitted rows")
)

// Formset clones new rows for one repeatable group.
type Formset struct {
	prefix   string
	template string
}

// New builds a formset for the given field prefix and hidden template row.
func New(prefix, templateHTML string) (*Formset, error) {
	if strings.TrimSpace(templateHTML) == "" {
		return nil, ErrEmptyTemplate
	}
	if !strings.Contains(templateHTML, PlaceholderToken) {
		return nil, ErrNoPlaceholder
	}
	return &Formset{prefix: prefix, template: templateHTML}, nil
}

// Prefix returns the field prefix the formset was built with.
func (f *Formset) Prefix() string {
	return f.prefix
}

// TotalFormsField returns the name of the hidden count field.
func (f *Formset) TotalFormsField() string {
	return f.prefix + TotalFormsSuffix
}

// AddRow clones the template for the next row. The placeholder token is
// substituted with the zero-based index (the current count) throughout the
// clone's markup, template-only markers are stripped, and the incremented
// count is returned for the hidden count field. The count field therefore
// always equals the number of visible rows after the add.
func (f *Formset) AddRow(count int) (rowHTML string, newCount int, err error) {
	if count < 0 {
		count = 0
	}
	markup := strings.ReplaceAll(f.template, PlaceholderToken, strconv.Itoa(count))

	rendered, err := fragment.Transform(markup, func(nodes []*html.Node) error {
		fragment.WalkAll(nodes, func(n *html.Node) {
			fragment.RemoveAttr(n, TemplateMarkerAttr)
			fragment.RemoveClass(n, templateHiddenClass)
		})
		return nil
	})
	if err != nil {
		return "", count, fmt.Errorf("clone template row: %w", err)
	}
	return rendered, count + 1, nil
}

// RemoveRow deletes a row. A persisted row (one carrying a delete-flag
// checkbox) is soft-deleted: the flag is checked and the row is tagged and
// hidden but kept in the document so the server receives the flag on submit.
// An unsaved row has no flag and is removed outright; removed reports which
// path was taken.
func RemoveRow(rowHTML string) (markup string, removed bool, err error) {
	nodes, err := fragment.Parse(rowHTML)
	if err != nil {
		return "", false, fmt.Errorf("parse row: %w", err)
	}

	flag := fragment.FindFirst(nodes, func(n *html.Node) bool {
		if !fragment.IsTag(n, "input") {
			return false
		}
		name, _ := fragment.Attr(n, "name")
		return strings.HasSuffix(name, DeleteSuffix)
	})
	if flag == nil {
		return "", true, nil
	}

	fragment.SetAttr(flag, "checked", "checked")
	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		fragment.AddClass(n, DeletedClass)
		fragment.Hide(n)
	}

	rendered, err := fragment.Render(nodes...)
	if err != nil {
		return "", false, fmt.Errorf("render row: %w", err)
	}
	return rendered, false, nil
}

// Row is one decoded entry of a submitted formset payload.
type Row struct {
	Index   int
	Fields  map[string]string
	Deleted bool
}

// Field returns the named field's value, or empty when absent.
func (r Row) Field(name string) string {
	return r.Fields[name]
}

// Decode reads a submitted payload into rows ordered by index. The count
// field must be present and must cover every row index found in the data.
func Decode(prefix string, values url.Values) ([]Row, error) {
	total, err := strconv.Atoi(values.Get(prefix + TotalFormsSuffix))
	if err != nil || total < 0 {
		return nil, fmt.Errorf("formset: invalid %s value %q", prefix+TotalFormsSuffix, values.Get(prefix+TotalFormsSuffix))
	}

	fieldPattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)-(.+)$`)

	rows := make([]Row, total)
	for i := range rows {
		rows[i] = Row{Index: i, Fields: map[string]string{}}
	}

	for key, vals := range values {
		m := fieldPattern.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if idx >= total {
			return nil, fmt.Errorf("%w: row %d submitted but count is %d", ErrCountMismatch, idx, total)
		}
		field := m[2]
		if field == strings.TrimPrefix(DeleteSuffix, "-") {
			rows[idx].Deleted = isChecked(vals[0])
			continue
		}
		rows[idx].Fields[field] = vals[0]
	}

	return rows, nil
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "checked":
		return true
	}
	return false
}
