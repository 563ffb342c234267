package store

import (
	"context"

	"github.com/stretchr/testify/suite"

	id "termcolor/pkg/domain"
	"termcolor/pkg/platform/sentinel"
)

// MetaStoreSuite holds the behavior every backend must share. Backend suites
// embed it and set store in SetupTest.
type MetaStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store Store
}

// TestCreationAndLookups verifies upsert and read.
func (s *MetaStoreSuite) TestCreationAndLookups() {
	s.Run("returns ErrNotFound for unknown term", func() {
		_, err := s.store.Get(s.ctx, id.TermID(404), KeyColor)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stores and finds value", func() {
		s.Require().NoError(s.store.Update(s.ctx, id.TermID(1), KeyColor, "ABCDEF"))

		v, err := s.store.Get(s.ctx, id.TermID(1), KeyColor)
		s.Require().NoError(err)
		s.Equal("ABCDEF", v)
	})

	s.Run("update overwrites", func() {
		s.Require().NoError(s.store.Update(s.ctx, id.TermID(2), KeyColor, "fff"))
		s.Require().NoError(s.store.Update(s.ctx, id.TermID(2), KeyColor, "000"))

		v, err := s.store.Get(s.ctx, id.TermID(2), KeyColor)
		s.Require().NoError(err)
		s.Equal("000", v)
	})

	s.Run("keys are independent", func() {
		s.Require().NoError(s.store.Update(s.ctx, id.TermID(3), KeyColor, "123"))
		s.Require().NoError(s.store.Update(s.ctx, id.TermID(3), MetaKey("icon"), "star"))

		v, err := s.store.Get(s.ctx, id.TermID(3), KeyColor)
		s.Require().NoError(err)
		s.Equal("123", v)

		_, err = s.store.Get(s.ctx, id.TermID(4), MetaKey("icon"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestDeletes verifies delete semantics.
func (s *MetaStoreSuite) TestDeletes() {
	s.Run("removes value", func() {
		s.Require().NoError(s.store.Update(s.ctx, id.TermID(10), KeyColor, "abc"))
		s.Require().NoError(s.store.Delete(s.ctx, id.TermID(10), KeyColor))

		_, err := s.store.Get(s.ctx, id.TermID(10), KeyColor)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("missing key is not an error", func() {
		s.Require().NoError(s.store.Delete(s.ctx, id.TermID(11), KeyColor))
	})

	s.Run("leaves other keys alone", func() {
		s.Require().NoError(s.store.Update(s.ctx, id.TermID(12), KeyColor, "abc"))
		s.Require().NoError(s.store.Update(s.ctx, id.TermID(12), MetaKey("icon"), "star"))
		s.Require().NoError(s.store.Delete(s.ctx, id.TermID(12), KeyColor))

		v, err := s.store.Get(s.ctx, id.TermID(12), MetaKey("icon"))
		s.Require().NoError(err)
		s.Equal("star", v)
	})
}

// TestColorMeta verifies the typed accessor over this backend, including the
// bulk read path when the backend has one.
func (s *MetaStoreSuite) TestColorMeta() {
	colors := NewColorMeta(s.store)

	s.Require().NoError(colors.Set(s.ctx, id.TermID(20), "abc"))
	s.Require().NoError(colors.Set(s.ctx, id.TermID(21), "DEF012"))

	v, err := colors.Get(s.ctx, id.TermID(22))
	s.Require().NoError(err)
	s.Empty(v, "missing color reads as empty")

	got, err := colors.GetMany(s.ctx, []id.TermID{20, 21, 22})
	s.Require().NoError(err)
	s.Equal(map[id.TermID]string{20: "abc", 21: "DEF012"}, got)

	s.Require().NoError(colors.Delete(s.ctx, id.TermID(20)))
	v, err = colors.Get(s.ctx, id.TermID(20))
	s.Require().NoError(err)
	s.Empty(v)

	empty, err := colors.GetMany(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(empty)
}
