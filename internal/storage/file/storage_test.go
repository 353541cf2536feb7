package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

type StorageSuite struct {
	suite.Suite
	dir     string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.dir = filepath.Join(s.T().TempDir(), "quizctl")
	s.storage = New(s.dir)
	s.ctx = context.Background()
}

func (s *StorageSuite) TestGetBeforeAnyWrite() {
	_, err := s.storage.Get(s.ctx, "token")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestSetCreatesPrivateFile() {
	s.Require().NoError(s.storage.Set(s.ctx, "token", "abc"))

	info, err := os.Stat(s.storage.Path())
	s.Require().NoError(err)
	s.Equal(os.FileMode(0600), info.Mode().Perm())
}

func (s *StorageSuite) TestValuesSurviveReopen() {
	s.Require().NoError(s.storage.Set(s.ctx, "token", "abc"))
	s.Require().NoError(s.storage.Set(s.ctx, "user", `{"id":"u1"}`))

	reopened := New(s.dir)
	v, err := reopened.Get(s.ctx, "user")
	s.Require().NoError(err)
	s.Equal(`{"id":"u1"}`, v)
}

func (s *StorageSuite) TestDeleteLastKeyRemovesFile() {
	_ = s.storage.Set(s.ctx, "token", "abc")
	_ = s.storage.Set(s.ctx, "user", "{}")

	s.Require().NoError(s.storage.Delete(s.ctx, "token", "user"))

	_, err := os.Stat(s.storage.Path())
	s.True(os.IsNotExist(err))
}

func (s *StorageSuite) TestDeleteKeepsOtherKeys() {
	_ = s.storage.Set(s.ctx, "token", "abc")
	_ = s.storage.Set(s.ctx, "other", "x")

	s.Require().NoError(s.storage.Delete(s.ctx, "token"))

	v, err := s.storage.Get(s.ctx, "other")
	s.Require().NoError(err)
	s.Equal("x", v)
}

func (s *StorageSuite) TestCorruptFile() {
	s.Require().NoError(os.MkdirAll(s.dir, 0700))
	s.Require().NoError(os.WriteFile(s.storage.Path(), []byte("not json"), 0600))

	_, err := s.storage.Get(s.ctx, "token")
	s.Error(err)
	s.NotErrorIs(err, model.ErrKeyNotFound)
}
