package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	id "termcolor/pkg/domain"
	"termcolor/pkg/platform/sentinel"
)

// fanOutLimit bounds concurrent reads when a backend has no bulk read.
const fanOutLimit = 8

// ColorMeta is the typed accessor for the color attribute.
type ColorMeta struct {
	store Store
}

// NewColorMeta wraps a metadata store.
func NewColorMeta(s Store) *ColorMeta {
	return &ColorMeta{store: s}
}

// Get returns the raw stored color, or "" when the term has none.
func (c *ColorMeta) Get(ctx context.Context, termID id.TermID) (string, error) {
	v, err := c.store.Get(ctx, termID, KeyColor)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get color for term %d: %w", termID, err)
	}
	return v, nil
}

// Set upserts the color.
func (c *ColorMeta) Set(ctx context.Context, termID id.TermID, value string) error {
	if err := c.store.Update(ctx, termID, KeyColor, value); err != nil {
		return fmt.Errorf("set color for term %d: %w", termID, err)
	}
	return nil
}

// Delete removes the color.
func (c *ColorMeta) Delete(ctx context.Context, termID id.TermID) error {
	if err := c.store.Delete(ctx, termID, KeyColor); err != nil {
		return fmt.Errorf("delete color for term %d: %w", termID, err)
	}
	return nil
}

// GetMany returns raw colors for the terms that have one. Backends without a
// bulk read are queried concurrently.
func (c *ColorMeta) GetMany(ctx context.Context, termIDs []id.TermID) (map[id.TermID]string, error) {
	if len(termIDs) == 0 {
		return map[id.TermID]string{}, nil
	}
	if bulk, ok := c.store.(BulkGetter); ok {
		out, err := bulk.GetMany(ctx, termIDs, KeyColor)
		if err != nil {
			return nil, fmt.Errorf("get colors: %w", err)
		}
		return out, nil
	}

	values := make([]string, len(termIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, termID := range termIDs {
		g.Go(func() error {
			v, err := c.Get(gctx, termID)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[id.TermID]string, len(termIDs))
	for i, termID := range termIDs {
		if values[i] != "" {
			out[termID] = values[i]
		}
	}
	return out, nil
}
