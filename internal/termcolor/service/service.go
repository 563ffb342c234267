// Package service reads and saves the color attached to a term.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"termcolor/internal/audit"
	"termcolor/internal/hooks"
	"termcolor/internal/termcolor"
	"termcolor/internal/termcolor/color"
	"termcolor/internal/termcolor/metrics"
	id "termcolor/pkg/domain"
	"termcolor/pkg/requestcontext"
)

// ColorStore is the typed color accessor. Get returns "" when unset.
type ColorStore interface {
	Get(ctx context.Context, termID id.TermID) (string, error)
	Set(ctx context.Context, termID id.TermID, value string) error
	Delete(ctx context.Context, termID id.TermID) error
	GetMany(ctx context.Context, termIDs []id.TermID) (map[id.TermID]string, error)
}

// TokenVerifier checks the CSRF token posted with the term form.
type TokenVerifier interface {
	Verify(token, action string) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Outcome describes what SaveColor did. Hosts ignore it; metrics, audit and
// tests use it.
type Outcome string

const (
	OutcomeRejected  Outcome = "rejected"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// Service reads and saves term colors. No method returns an error: every
// failure degrades to "no color" on read and "no change" on write.
type Service struct {
	colors         ColorStore
	verifier       TokenVerifier
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service. The store and the verifier are required.
func New(colors ColorStore, verifier TokenVerifier, opts ...Option) (*Service, error) {
	if colors == nil {
		return nil, errors.New("color store is required")
	}
	if verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	s := &Service{colors: colors, verifier: verifier}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("termcolor/service")
	}
	return s, nil
}

// GetColor returns the term's color, re-validated on every read so a value
// written out of band never reaches the page. withHash prefixes '#'.
func (s *Service) GetColor(ctx context.Context, termID id.TermID, withHash bool) string {
	ctx, span := s.tracer.Start(ctx, "termcolor.GetColor",
		trace.WithAttributes(attribute.Int64("term.id", int64(termID))))
	defer span.End()

	raw, err := s.colors.Get(ctx, termID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		s.logger.WarnContext(ctx, "failed to read term color",
			"term_id", termID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		s.incRead("error")
		return ""
	}

	c := s.validateStored(ctx, termID, raw)
	if withHash {
		return color.WithHash(c)
	}
	return c
}

// GetColors is GetColor for a page of terms. Terms without a valid color are
// absent from the result.
func (s *Service) GetColors(ctx context.Context, termIDs []id.TermID, withHash bool) map[id.TermID]string {
	ctx, span := s.tracer.Start(ctx, "termcolor.GetColors",
		trace.WithAttributes(attribute.Int("term.count", len(termIDs))))
	defer span.End()

	raw, err := s.colors.GetMany(ctx, termIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		s.logger.WarnContext(ctx, "failed to read term colors",
			"term_count", len(termIDs),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		s.incRead("error")
		return map[id.TermID]string{}
	}

	out := make(map[id.TermID]string, len(raw))
	for _, termID := range termIDs {
		c := s.validateStored(ctx, termID, raw[termID])
		if c == "" {
			continue
		}
		if withHash {
			c = color.WithHash(c)
		}
		out[termID] = c
	}
	return out
}

func (s *Service) validateStored(ctx context.Context, termID id.TermID, raw string) string {
	if raw == "" {
		s.incRead("miss")
		return ""
	}
	c := color.Sanitize(raw)
	if c == "" {
		s.logger.WarnContext(ctx, "stored term color failed validation",
			"term_id", termID,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.incRead("invalid")
		return ""
	}
	s.incRead("hit")
	return c
}

// SaveColor applies a submitted term form. The CSRF token must verify or
// nothing happens. An invalid or empty color clears an existing one; a
// different valid color replaces it; the same color is not written again.
func (s *Service) SaveColor(ctx context.Context, termID id.TermID, sub hooks.Submission) Outcome {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "termcolor.SaveColor",
		trace.WithAttributes(attribute.Int64("term.id", int64(termID))))
	defer span.End()

	outcome := s.save(ctx, termID, sub)

	span.SetAttributes(attribute.String("termcolor.outcome", string(outcome)))
	if outcome == OutcomeFailed {
		span.SetStatus(codes.Error, "write failed")
	}
	if s.metrics != nil {
		s.metrics.IncSave(string(outcome))
		s.metrics.ObserveSave(start)
	}
	return outcome
}

func (s *Service) save(ctx context.Context, termID id.TermID, sub hooks.Submission) Outcome {
	requestID := requestcontext.RequestID(ctx)

	token, _ := sub.Field(termcolor.NonceField)
	if !s.verifier.Verify(token, termcolor.NonceAction) {
		s.logger.WarnContext(ctx, "term color save rejected - csrf verification failed",
			"term_id", termID,
			"request_id", requestID,
		)
		s.emit(ctx, audit.Event{Action: audit.ActionColorRejected, TermID: termID})
		return OutcomeRejected
	}

	raw, _ := sub.Field(termcolor.ColorField)
	newColor := color.Sanitize(raw)
	oldColor := s.GetColor(ctx, termID, false)

	switch {
	case oldColor != "" && newColor == "":
		if err := s.colors.Delete(ctx, termID); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete term color",
				"term_id", termID,
				"request_id", requestID,
				"error", err,
			)
			return OutcomeFailed
		}
		s.emit(ctx, audit.Event{Action: audit.ActionColorDeleted, TermID: termID, OldColor: oldColor})
		return OutcomeDeleted

	case oldColor != newColor:
		if err := s.colors.Set(ctx, termID, newColor); err != nil {
			s.logger.ErrorContext(ctx, "failed to save term color",
				"term_id", termID,
				"request_id", requestID,
				"error", err,
			)
			return OutcomeFailed
		}
		s.emit(ctx, audit.Event{Action: audit.ActionColorUpdated, TermID: termID, OldColor: oldColor, NewColor: newColor})
		return OutcomeUpdated

	default:
		return OutcomeUnchanged
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.Actor = requestcontext.Actor(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	s.logger.DebugContext(ctx, "term color save decided",
		"action", event.Action,
		"term_id", event.TermID,
		"request_id", event.RequestID,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"term_id", event.TermID,
			"error", err,
		)
	}
}

func (s *Service) incRead(result string) {
	if s.metrics != nil {
		s.metrics.IncRead(result)
	}
}
