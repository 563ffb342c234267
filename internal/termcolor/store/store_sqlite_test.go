package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"termcolor/internal/platform/sqlite"
	id "termcolor/pkg/domain"
)

type SQLiteSuite struct {
	MetaStoreSuite
	sqlite *SQLiteStore
}

func (s *SQLiteSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := sqlite.Open(s.ctx, ":memory:")
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	s.sqlite = NewSQLite(db)
	s.Require().NoError(s.sqlite.Migrate(s.ctx))
	s.store = s.sqlite
}

func TestSQLiteSuite(t *testing.T) {
	suite.Run(t, new(SQLiteSuite))
}

func (s *SQLiteSuite) TestMigrateIsIdempotent() {
	s.Require().NoError(s.sqlite.Migrate(s.ctx))
}

func (s *SQLiteSuite) TestGetManyAcrossBatches() {
	ids := make([]id.TermID, 0, sqliteBatch+20)
	for i := 1; i <= sqliteBatch+20; i++ {
		ids = append(ids, id.TermID(i))
	}
	s.Require().NoError(s.sqlite.Update(s.ctx, id.TermID(1), KeyColor, "aaa"))
	s.Require().NoError(s.sqlite.Update(s.ctx, id.TermID(sqliteBatch+10), KeyColor, "bbb"))

	got, err := s.sqlite.GetMany(s.ctx, ids, KeyColor)
	s.Require().NoError(err)
	s.Equal(map[id.TermID]string{1: "aaa", id.TermID(sqliteBatch + 10): "bbb"}, got)
}
