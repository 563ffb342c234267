package httptransport

import (
	"context"
	"html/template"
	"io"
	"slices"
	"sync"

	"termcolor/internal/hooks"
	id "termcolor/pkg/domain"
)

// Bridge is an in-process hooks.Registry. Extensions register against it at
// startup and the admin handlers dispatch host requests through it.
type Bridge struct {
	mu         sync.RWMutex
	created    map[id.Taxonomy][]hooks.TermAction
	edited     map[id.Taxonomy][]hooks.TermAction
	createForm map[id.Taxonomy][]hooks.FormFields
	editForm   map[id.Taxonomy][]hooks.FormFields
	columns    map[id.Taxonomy][]hooks.ColumnsFilter
	cell       map[id.Taxonomy][]hooks.ColumnCellFilter
	cells      map[id.Taxonomy][]hooks.ColumnCellsFilter
	enqueue    []hooks.EnqueueAction
}

var _ hooks.Registry = (*Bridge)(nil)

func NewBridge() *Bridge {
	return &Bridge{
		created:    make(map[id.Taxonomy][]hooks.TermAction),
		edited:     make(map[id.Taxonomy][]hooks.TermAction),
		createForm: make(map[id.Taxonomy][]hooks.FormFields),
		editForm:   make(map[id.Taxonomy][]hooks.FormFields),
		columns:    make(map[id.Taxonomy][]hooks.ColumnsFilter),
		cell:       make(map[id.Taxonomy][]hooks.ColumnCellFilter),
		cells:      make(map[id.Taxonomy][]hooks.ColumnCellsFilter),
	}
}

func (b *Bridge) OnTermCreated(taxonomy id.Taxonomy, fn hooks.TermAction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created[taxonomy] = append(b.created[taxonomy], fn)
}

func (b *Bridge) OnTermEdited(taxonomy id.Taxonomy, fn hooks.TermAction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edited[taxonomy] = append(b.edited[taxonomy], fn)
}

func (b *Bridge) OnCreateFormFields(taxonomy id.Taxonomy, fn hooks.FormFields) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createForm[taxonomy] = append(b.createForm[taxonomy], fn)
}

func (b *Bridge) OnEditFormFields(taxonomy id.Taxonomy, fn hooks.FormFields) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.editForm[taxonomy] = append(b.editForm[taxonomy], fn)
}

func (b *Bridge) FilterListColumns(taxonomy id.Taxonomy, fn hooks.ColumnsFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.columns[taxonomy] = append(b.columns[taxonomy], fn)
}

func (b *Bridge) FilterListColumnCell(taxonomy id.Taxonomy, fn hooks.ColumnCellFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cell[taxonomy] = append(b.cell[taxonomy], fn)
}

func (b *Bridge) FilterListColumnCells(taxonomy id.Taxonomy, fn hooks.ColumnCellsFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells[taxonomy] = append(b.cells[taxonomy], fn)
}

func (b *Bridge) OnAdminEnqueue(fn hooks.EnqueueAction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enqueue = append(b.enqueue, fn)
}

// snapshot copies a callback list so dispatch runs without the lock.
func snapshot[T any](mu *sync.RWMutex, m map[id.Taxonomy][]T, taxonomy id.Taxonomy) []T {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Clone(m[taxonomy])
}

// TermCreated runs the created actions in registration order.
func (b *Bridge) TermCreated(ctx context.Context, taxonomy id.Taxonomy, termID id.TermID, sub hooks.Submission) {
	for _, fn := range snapshot(&b.mu, b.created, taxonomy) {
		fn(ctx, termID, sub)
	}
}

// TermEdited runs the edited actions in registration order.
func (b *Bridge) TermEdited(ctx context.Context, taxonomy id.Taxonomy, termID id.TermID, sub hooks.Submission) {
	for _, fn := range snapshot(&b.mu, b.edited, taxonomy) {
		fn(ctx, termID, sub)
	}
}

// CreateFields writes every extension's create-form markup. The first error
// stops rendering.
func (b *Bridge) CreateFields(ctx context.Context, w io.Writer, taxonomy id.Taxonomy) error {
	for _, fn := range snapshot(&b.mu, b.createForm, taxonomy) {
		if err := fn(ctx, w, nil); err != nil {
			return err
		}
	}
	return nil
}

// EditFields writes every extension's edit-form markup for term.
func (b *Bridge) EditFields(ctx context.Context, w io.Writer, term *hooks.Term) error {
	for _, fn := range snapshot(&b.mu, b.editForm, term.Taxonomy) {
		if err := fn(ctx, w, term); err != nil {
			return err
		}
	}
	return nil
}

// Columns returns the list table columns after every filter ran over the
// host defaults.
func (b *Bridge) Columns(ctx context.Context, taxonomy id.Taxonomy) hooks.Columns {
	cols := hooks.DefaultColumns()
	for _, fn := range snapshot(&b.mu, b.columns, taxonomy) {
		cols = fn(ctx, cols)
	}
	return cols
}

// Cell renders one custom column cell.
func (b *Bridge) Cell(ctx context.Context, taxonomy id.Taxonomy, column string, termID id.TermID) template.HTML {
	var out template.HTML
	for _, fn := range snapshot(&b.mu, b.cell, taxonomy) {
		out = fn(ctx, out, column, termID)
	}
	return out
}

// Cells renders one custom column for a page of terms. Without a bulk filter
// it falls back to one Cell per term.
func (b *Bridge) Cells(ctx context.Context, taxonomy id.Taxonomy, column string, termIDs []id.TermID) map[id.TermID]template.HTML {
	out := make(map[id.TermID]template.HTML, len(termIDs))
	bulk := snapshot(&b.mu, b.cells, taxonomy)
	if len(bulk) == 0 {
		for _, termID := range termIDs {
			out[termID] = b.Cell(ctx, taxonomy, column, termID)
		}
		return out
	}
	for _, termID := range termIDs {
		out[termID] = ""
	}
	for _, fn := range bulk {
		out = fn(ctx, out, column)
	}
	return out
}

// Assets collects what extensions enqueue for screen.
func (b *Bridge) Assets(ctx context.Context, screen hooks.Screen) hooks.Assets {
	b.mu.RLock()
	actions := slices.Clone(b.enqueue)
	b.mu.RUnlock()

	var assets hooks.Assets
	for _, fn := range actions {
		fn(ctx, screen, &assets)
	}
	return assets
}
