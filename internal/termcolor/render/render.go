// Package render produces the admin markup for term colors: the form fields,
// the list column and the color picker assets.
package render

import (
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io"
	"maps"
	"slices"

	"termcolor/internal/hooks"
	"termcolor/internal/termcolor"
	"termcolor/internal/termcolor/color"
	id "termcolor/pkg/domain"
)

// ColorSource reads validated colors.
type ColorSource interface {
	GetColor(ctx context.Context, termID id.TermID, withHash bool) string
	GetColors(ctx context.Context, termIDs []id.TermID, withHash bool) map[id.TermID]string
}

// NonceIssuer renders the hidden CSRF input for a form.
type NonceIssuer interface {
	Field(action, name string) (template.HTML, error)
}

// Translator resolves a label in a text domain.
type Translator func(text, domain string) string

// Identity returns text unchanged.
func Identity(text, _ string) string { return text }

var (
	createTmpl = template.Must(template.New("create").Parse(`{{.Nonce}}
<div class="form-field mg-term-color-wrap">
	<label for="{{.InputID}}">{{.Label}}</label>
	<input type="text" id="{{.InputID}}" name="{{.Name}}" value="" class="color-picker" data-default-color="{{.Default}}" />
</div>
`))

	editTmpl = template.Must(template.New("edit").Parse(`<tr class="form-field mg-term-color-wrap">
	<th scope="row"><label for="{{.InputID}}">{{.Label}}</label></th>
	<td>
		{{.Nonce}}
		<input type="text" id="{{.InputID}}" name="{{.Name}}" value="{{.Value}}" class="color-picker" data-default-color="{{.Default}}" />
	</td>
</tr>
`))
)

type fieldData struct {
	Nonce   template.HTML
	InputID string
	Name    string
	Label   string
	Value   string
	Default string
}

// Renderer writes the form fields and list column for the color attribute.
type Renderer struct {
	colors    ColorSource
	nonces    NonceIssuer
	translate Translator
}

type Option func(*Renderer)

// WithTranslator routes labels through t.
func WithTranslator(t Translator) Option {
	return func(r *Renderer) {
		if t != nil {
			r.translate = t
		}
	}
}

// New constructs a Renderer.
func New(colors ColorSource, nonces NonceIssuer, opts ...Option) (*Renderer, error) {
	if colors == nil {
		return nil, errors.New("color source is required")
	}
	if nonces == nil {
		return nil, errors.New("nonce issuer is required")
	}
	r := &Renderer{colors: colors, nonces: nonces, translate: Identity}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Renderer) label() string {
	return r.translate("Color", termcolor.TextDomain)
}

func (r *Renderer) fields(value string) (fieldData, error) {
	nonce, err := r.nonces.Field(termcolor.NonceAction, termcolor.NonceField)
	if err != nil {
		return fieldData{}, fmt.Errorf("render nonce field: %w", err)
	}
	return fieldData{
		Nonce:   nonce,
		InputID: termcolor.ColorInputID,
		Name:    termcolor.ColorField,
		Label:   r.label(),
		Value:   value,
		Default: color.DefaultField,
	}, nil
}

// CreateFields writes the color input for the "add term" form. The input
// starts blank.
func (r *Renderer) CreateFields(_ context.Context, w io.Writer, _ *hooks.Term) error {
	data, err := r.fields("")
	if err != nil {
		return err
	}
	return createTmpl.Execute(w, data)
}

// EditFields writes the color row for the "edit term" form, pre-filled with
// the term's color or the default.
func (r *Renderer) EditFields(ctx context.Context, w io.Writer, term *hooks.Term) error {
	if term == nil {
		return errors.New("edit form requires a term")
	}
	value := color.Or(r.colors.GetColor(ctx, term.ID, true), color.DefaultField)
	data, err := r.fields(value)
	if err != nil {
		return err
	}
	return editTmpl.Execute(w, data)
}

// Columns adds the color column to the term list.
func (r *Renderer) Columns(_ context.Context, cols hooks.Columns) hooks.Columns {
	return cols.With(termcolor.ColumnKey, r.label())
}

// Cell renders the swatch for the color column and returns out untouched for
// every other column.
func (r *Renderer) Cell(ctx context.Context, out template.HTML, column string, termID id.TermID) template.HTML {
	if column != termcolor.ColumnKey {
		return out
	}
	return swatch(r.colors.GetColor(ctx, termID, true))
}

// Cells is Cell for a page of terms, read with a single lookup.
func (r *Renderer) Cells(ctx context.Context, cells map[id.TermID]template.HTML, column string) map[id.TermID]template.HTML {
	if column != termcolor.ColumnKey || len(cells) == 0 {
		return cells
	}
	termIDs := slices.Sorted(maps.Keys(cells))
	colors := r.colors.GetColors(ctx, termIDs, true)

	out := make(map[id.TermID]template.HTML, len(cells))
	for _, termID := range termIDs {
		out[termID] = swatch(colors[termID])
	}
	return out
}

func swatch(c string) template.HTML {
	c = color.Or(c, color.DefaultColumn)
	return template.HTML(fmt.Sprintf(`<span class="color-block" style="background:%s;">&nbsp;</span>`, html.EscapeString(c))) //nolint:gosec // escaped hex color
}
