// Package extension binds the term color components to a host's hooks.
package extension

import (
	"context"
	"errors"
	"html/template"
	"io"

	"termcolor/internal/hooks"
	"termcolor/internal/termcolor/render"
	"termcolor/internal/termcolor/service"
	id "termcolor/pkg/domain"
)

// Saver persists a submitted term form.
type Saver interface {
	SaveColor(ctx context.Context, termID id.TermID, sub hooks.Submission) service.Outcome
}

// Fields renders the form inputs and list column.
type Fields interface {
	CreateFields(ctx context.Context, w io.Writer, term *hooks.Term) error
	EditFields(ctx context.Context, w io.Writer, term *hooks.Term) error
	Columns(ctx context.Context, cols hooks.Columns) hooks.Columns
	Cell(ctx context.Context, out template.HTML, column string, termID id.TermID) template.HTML
	Cells(ctx context.Context, cells map[id.TermID]template.HTML, column string) map[id.TermID]template.HTML
}

// Extension is the term color feature for one taxonomy.
type Extension struct {
	taxonomy id.Taxonomy
	saver    Saver
	fields   Fields
	assets   render.AssetLoader
}

// New assembles the extension for taxonomy.
func New(taxonomy id.Taxonomy, saver Saver, fields Fields) (*Extension, error) {
	if taxonomy == "" {
		return nil, errors.New("taxonomy is required")
	}
	if saver == nil {
		return nil, errors.New("saver is required")
	}
	if fields == nil {
		return nil, errors.New("fields renderer is required")
	}
	return &Extension{
		taxonomy: taxonomy,
		saver:    saver,
		fields:   fields,
		assets:   render.NewAssetLoader(taxonomy),
	}, nil
}

// Register binds every callback to reg. Call once at startup.
func (e *Extension) Register(reg hooks.Registry) {
	save := func(ctx context.Context, termID id.TermID, sub hooks.Submission) {
		e.saver.SaveColor(ctx, termID, sub)
	}

	reg.OnCreateFormFields(e.taxonomy, e.fields.CreateFields)
	reg.OnEditFormFields(e.taxonomy, e.fields.EditFields)
	reg.OnTermCreated(e.taxonomy, save)
	reg.OnTermEdited(e.taxonomy, save)
	reg.FilterListColumns(e.taxonomy, e.fields.Columns)
	reg.FilterListColumnCell(e.taxonomy, e.fields.Cell)
	reg.FilterListColumnCells(e.taxonomy, e.fields.Cells)
	reg.OnAdminEnqueue(e.assets.Enqueue)
}
