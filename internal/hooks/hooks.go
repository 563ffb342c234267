// Package hooks describes the host's extension points as seen by an extension.
//
// The host owns dispatch. An extension receives a Registry at startup and
// binds callbacks to the points it cares about; the host later invokes them
// while handling its own admin requests.
package hooks

import (
	"context"
	"html/template"
	"io"
	"net/url"
	"slices"

	id "termcolor/pkg/domain"
	pstrings "termcolor/pkg/platform/strings"
)

// Registry is the host-provided set of extension points. Implementations must
// accept registrations before serving and may invoke callbacks concurrently.
type Registry interface {
	// OnTermCreated fires after the host stores a new term of the taxonomy.
	OnTermCreated(taxonomy id.Taxonomy, fn TermAction)
	// OnTermEdited fires after the host updates a term of the taxonomy.
	OnTermEdited(taxonomy id.Taxonomy, fn TermAction)
	// OnCreateFormFields renders extra fields on the "add term" form.
	OnCreateFormFields(taxonomy id.Taxonomy, fn FormFields)
	// OnEditFormFields renders extra rows on the "edit term" form.
	OnEditFormFields(taxonomy id.Taxonomy, fn FormFields)
	// FilterListColumns adjusts the columns of the term list table.
	FilterListColumns(taxonomy id.Taxonomy, fn ColumnsFilter)
	// FilterListColumnCell renders the cell of a custom column.
	FilterListColumnCell(taxonomy id.Taxonomy, fn ColumnCellFilter)
	// FilterListColumnCells renders one column for a page of terms at once.
	FilterListColumnCells(taxonomy id.Taxonomy, fn ColumnCellsFilter)
	// OnAdminEnqueue lets the extension add assets to an admin screen.
	OnAdminEnqueue(fn EnqueueAction)
}

// TermAction runs after a term is created or edited. The submission carries
// the form that triggered the write.
type TermAction func(ctx context.Context, termID id.TermID, sub Submission)

// FormFields writes HTML for the term forms. term is nil on the create form.
type FormFields func(ctx context.Context, w io.Writer, term *Term) error

// ColumnsFilter returns the adjusted column set.
type ColumnsFilter func(ctx context.Context, cols Columns) Columns

// ColumnCellFilter returns the HTML for column of termID. out is what earlier
// filters produced and must be returned unchanged for columns the filter does
// not own.
type ColumnCellFilter func(ctx context.Context, out template.HTML, column string, termID id.TermID) template.HTML

// ColumnCellsFilter is the page-at-a-time form of ColumnCellFilter. cells has
// an entry for every term on the page.
type ColumnCellsFilter func(ctx context.Context, cells map[id.TermID]template.HTML, column string) map[id.TermID]template.HTML

// EnqueueAction adds assets for the given screen.
type EnqueueAction func(ctx context.Context, screen Screen, assets *Assets)

// Term is the host's view of the term being edited.
type Term struct {
	ID       id.TermID
	Taxonomy id.Taxonomy
	Name     string
}

// Submission is the explicit request context handed to term actions, replacing
// any ambient request state. Form holds the posted fields.
type Submission struct {
	Form url.Values
}

// NewSubmission wraps posted form values.
func NewSubmission(form url.Values) Submission {
	return Submission{Form: form}
}

// Field returns the first value posted under name and whether it was present.
func (s Submission) Field(name string) (string, bool) {
	if s.Form == nil {
		return "", false
	}
	vals, ok := s.Form[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Column is one column of the term list table.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Columns keeps the table order.
type Columns []Column

// DefaultColumns is the host's stock term list layout.
func DefaultColumns() Columns {
	return Columns{
		{Key: "name", Label: "Name"},
		{Key: "description", Label: "Description"},
		{Key: "slug", Label: "Slug"},
		{Key: "posts", Label: "Count"},
	}
}

// With sets key to label, replacing the label in place when the key already
// exists and appending otherwise. The receiver is not modified.
func (c Columns) With(key, label string) Columns {
	out := slices.Clone(c)
	for i := range out {
		if out[i].Key == key {
			out[i].Label = label
			return out
		}
	}
	return append(out, Column{Key: key, Label: label})
}

// Label returns the label for key.
func (c Columns) Label(key string) (string, bool) {
	for _, col := range c {
		if col.Key == key {
			return col.Label, true
		}
	}
	return "", false
}

// Screen identifies the admin page being rendered.
type Screen struct {
	// HookSuffix is the admin page script, e.g. "edit-tags.php" or "term.php".
	HookSuffix string
	Taxonomy   id.Taxonomy
}

// Admin pages that list or edit terms.
const (
	ScreenTermList = "edit-tags.php"
	ScreenTermEdit = "term.php"
)

// IsTermScreen reports whether the screen lists or edits terms of taxonomy.
func (s Screen) IsTermScreen(taxonomy id.Taxonomy) bool {
	if s.HookSuffix != ScreenTermList && s.HookSuffix != ScreenTermEdit {
		return false
	}
	return s.Taxonomy == taxonomy
}

// Assets collects what extensions enqueue for a screen.
type Assets struct {
	Styles  []string        `json:"styles"`
	Scripts []string        `json:"scripts"`
	Head    []template.HTML `json:"head"`
	Footer  []template.HTML `json:"footer"`
}

// EnqueueStyle registers a host stylesheet handle once.
func (a *Assets) EnqueueStyle(handle string) {
	a.Styles = pstrings.DedupeAndTrim(append(a.Styles, handle))
}

// EnqueueScript registers a host script handle once.
func (a *Assets) EnqueueScript(handle string) {
	a.Scripts = pstrings.DedupeAndTrim(append(a.Scripts, handle))
}

// AddHead queues markup for the page head.
func (a *Assets) AddHead(html template.HTML) {
	a.Head = append(a.Head, html)
}

// AddFooter queues markup for the page footer.
func (a *Assets) AddFooter(html template.HTML) {
	a.Footer = append(a.Footer, html)
}

// Empty reports whether nothing was enqueued.
func (a *Assets) Empty() bool {
	return len(a.Styles) == 0 && len(a.Scripts) == 0 && len(a.Head) == 0 && len(a.Footer) == 0
}
