package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ColorStore,TokenVerifier,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"termcolor/internal/audit"
	"termcolor/internal/hooks"
	"termcolor/internal/termcolor"
	"termcolor/internal/termcolor/metrics"
	"termcolor/internal/termcolor/service/mocks"
	id "termcolor/pkg/domain"
	"termcolor/pkg/requestcontext"
)

// =============================================================================
// Service Test Suite
// =============================================================================
// The service decides between delete, upsert and no-op from the submitted form
// and the stored value. Mocks pin down which store calls happen per branch and
// what the audit trail records.

type ServiceSuite struct {
	suite.Suite
	ctrl               *gomock.Controller
	mockColors         *mocks.MockColorStore
	mockVerifier       *mocks.MockTokenVerifier
	mockAuditPublisher *mocks.MockAuditPublisher
	metrics            *metrics.Metrics
	service            *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockColors = mocks.NewMockColorStore(s.ctrl)
	s.mockVerifier = mocks.NewMockTokenVerifier(s.ctrl)
	s.mockAuditPublisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.service, err = New(
		s.mockColors,
		s.mockVerifier,
		WithLogger(logger),
		WithAuditPublisher(s.mockAuditPublisher),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func submission(token, color string) hooks.Submission {
	form := url.Values{}
	if token != "" {
		form.Set(termcolor.NonceField, token)
	}
	form.Set(termcolor.ColorField, color)
	return hooks.NewSubmission(form)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil color store returns error", func() {
		_, err := New(nil, s.mockVerifier)
		s.Require().Error(err)
		s.Contains(err.Error(), "color store is required")
	})

	s.Run("nil verifier returns error", func() {
		_, err := New(s.mockColors, nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "token verifier is required")
	})

	s.Run("options are applied", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc, err := New(s.mockColors, s.mockVerifier,
			WithLogger(logger),
			WithAuditPublisher(s.mockAuditPublisher),
		)
		s.Require().NoError(err)
		s.Equal(logger, svc.logger)
		s.Equal(s.mockAuditPublisher, svc.auditPublisher)
		s.NotNil(svc.tracer)
	})
}

// =============================================================================
// GetColor
// =============================================================================

func (s *ServiceSuite) TestGetColor() {
	ctx := context.Background()
	termID := id.TermID(7)

	s.Run("valid stored value", func() {
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("ff0000", nil).Times(2)

		s.Equal("ff0000", s.service.GetColor(ctx, termID, false))
		s.Equal("#ff0000", s.service.GetColor(ctx, termID, true))
	})

	s.Run("unset returns empty even with hash", func() {
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("", nil)

		s.Equal("", s.service.GetColor(ctx, termID, true))
	})

	s.Run("stored value failing validation is hidden", func() {
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("not-a-color", nil)

		s.Equal("", s.service.GetColor(ctx, termID, true))
		s.Equal(1.0, promtest.ToFloat64(s.metrics.Reads.WithLabelValues("invalid")))
	})

	s.Run("store failure degrades to empty", func() {
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("", errors.New("connection refused"))

		s.Equal("", s.service.GetColor(ctx, termID, false))
		s.Equal(1.0, promtest.ToFloat64(s.metrics.Reads.WithLabelValues("error")))
	})
}

func (s *ServiceSuite) TestGetColors() {
	ctx := context.Background()
	ids := []id.TermID{1, 2, 3}

	s.Run("only valid colors are returned", func() {
		s.mockColors.EXPECT().GetMany(gomock.Any(), ids).Return(map[id.TermID]string{
			1: "abc",
			2: "zzz",
		}, nil)

		got := s.service.GetColors(ctx, ids, true)
		s.Equal(map[id.TermID]string{1: "#abc"}, got)
	})

	s.Run("store failure returns empty map", func() {
		s.mockColors.EXPECT().GetMany(gomock.Any(), ids).Return(nil, errors.New("timeout"))

		got := s.service.GetColors(ctx, ids, false)
		s.NotNil(got)
		s.Empty(got)
	})
}

// =============================================================================
// SaveColor
// =============================================================================

func (s *ServiceSuite) TestSaveColor_Rejected() {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	termID := id.TermID(5)

	s.Run("missing token touches nothing", func() {
		s.mockVerifier.EXPECT().Verify("", termcolor.NonceAction).Return(false)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				s.Equal(audit.ActionColorRejected, event.Action)
				s.Equal(termID, event.TermID)
				s.Equal("req-1", event.RequestID)
				return nil
			})

		s.Equal(OutcomeRejected, s.service.SaveColor(ctx, termID, submission("", "00ff00")))
	})

	s.Run("bad token touches nothing", func() {
		s.mockVerifier.EXPECT().Verify("forged", termcolor.NonceAction).Return(false)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		s.Equal(OutcomeRejected, s.service.SaveColor(ctx, termID, submission("forged", "")))
	})

	s.Equal(2.0, promtest.ToFloat64(s.metrics.Saves.WithLabelValues(string(OutcomeRejected))))
}

func (s *ServiceSuite) TestSaveColor_Branches() {
	ctx := context.Background()
	termID := id.TermID(9)

	s.Run("new color is written", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("", nil)
		s.mockColors.EXPECT().Set(gomock.Any(), termID, "00ff00").Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				s.Equal(audit.ActionColorUpdated, event.Action)
				s.Equal("", event.OldColor)
				s.Equal("00ff00", event.NewColor)
				return nil
			})

		s.Equal(OutcomeUpdated, s.service.SaveColor(ctx, termID, submission("tok", "#00ff00")))
	})

	s.Run("different color replaces the old one", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("000000", nil)
		s.mockColors.EXPECT().Set(gomock.Any(), termID, "fff").Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		s.Equal(OutcomeUpdated, s.service.SaveColor(ctx, termID, submission("tok", "fff")))
	})

	s.Run("same color is not written again", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("abcdef", nil)

		s.Equal(OutcomeUnchanged, s.service.SaveColor(ctx, termID, submission("tok", "#abcdef")))
	})

	s.Run("empty color clears an existing one", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("abcdef", nil)
		s.mockColors.EXPECT().Delete(gomock.Any(), termID).Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				s.Equal(audit.ActionColorDeleted, event.Action)
				s.Equal("abcdef", event.OldColor)
				return nil
			})

		s.Equal(OutcomeDeleted, s.service.SaveColor(ctx, termID, submission("tok", "")))
	})

	s.Run("invalid color clears an existing one", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("abcdef", nil)
		s.mockColors.EXPECT().Delete(gomock.Any(), termID).Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		s.Equal(OutcomeDeleted, s.service.SaveColor(ctx, termID, submission("tok", "red")))
	})

	s.Run("invalid color with nothing stored is a no-op", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("", nil)

		s.Equal(OutcomeUnchanged, s.service.SaveColor(ctx, termID, submission("tok", "#12")))
	})

	s.Run("corrupt stored value is replaced", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("javascript:alert(1)", nil)
		s.mockColors.EXPECT().Set(gomock.Any(), termID, "123").Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		s.Equal(OutcomeUpdated, s.service.SaveColor(ctx, termID, submission("tok", "123")))
	})
}

func (s *ServiceSuite) TestSaveColor_Failures() {
	ctx := context.Background()
	termID := id.TermID(11)

	s.Run("write failure is reported as failed", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("", nil)
		s.mockColors.EXPECT().Set(gomock.Any(), termID, "fff").Return(errors.New("disk full"))

		s.Equal(OutcomeFailed, s.service.SaveColor(ctx, termID, submission("tok", "fff")))
	})

	s.Run("delete failure is reported as failed", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("fff", nil)
		s.mockColors.EXPECT().Delete(gomock.Any(), termID).Return(errors.New("disk full"))

		s.Equal(OutcomeFailed, s.service.SaveColor(ctx, termID, submission("tok", "")))
	})

	s.Run("audit failure does not change the outcome", func() {
		s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
		s.mockColors.EXPECT().Get(gomock.Any(), termID).Return("", nil)
		s.mockColors.EXPECT().Set(gomock.Any(), termID, "aaa").Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("queue closed"))

		s.Equal(OutcomeUpdated, s.service.SaveColor(ctx, termID, submission("tok", "aaa")))
	})

	s.Equal(2.0, promtest.ToFloat64(s.metrics.Saves.WithLabelValues(string(OutcomeFailed))))
}

func (s *ServiceSuite) TestSaveColor_AuditCarriesRequestContext() {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithActor(ctx, "editor@example.com")
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	s.mockVerifier.EXPECT().Verify("tok", termcolor.NonceAction).Return(true)
	s.mockColors.EXPECT().Get(gomock.Any(), id.TermID(3)).Return("", nil)
	s.mockColors.EXPECT().Set(gomock.Any(), id.TermID(3), "C0FFEE").Return(nil)
	s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal("editor@example.com", event.Actor)
			s.Equal("req-42", event.RequestID)
			s.True(at.Equal(event.Timestamp))
			return nil
		})

	s.service.SaveColor(ctx, 3, submission("tok", "C0FFEE"))
}
