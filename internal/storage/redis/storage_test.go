package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.Namespace = "test"
	cfg.TTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSetAndGet() {
	s.Require().NoError(s.storage.Set(s.ctx, "token", "abc"))

	v, err := s.storage.Get(s.ctx, "token")
	s.Require().NoError(err)
	s.Equal("abc", v)
}

func (s *StorageSuite) TestKeysAreNamespaced() {
	s.Require().NoError(s.storage.Set(s.ctx, "token", "abc"))

	s.True(s.mini.Exists("quizctl:test:token"))
}

func (s *StorageSuite) TestGetMissing() {
	_, err := s.storage.Get(s.ctx, "token")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestValuesExpire() {
	s.Require().NoError(s.storage.Set(s.ctx, "token", "abc"))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.Get(s.ctx, "token")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestDeleteMany() {
	_ = s.storage.Set(s.ctx, "token", "abc")
	_ = s.storage.Set(s.ctx, "user", "{}")

	s.Require().NoError(s.storage.Delete(s.ctx, "token", "user"))

	s.False(s.mini.Exists("quizctl:test:token"))
	s.False(s.mini.Exists("quizctl:test:user"))
}

func (s *StorageSuite) TestDeleteNothing() {
	s.NoError(s.storage.Delete(s.ctx))
}

func (s *StorageSuite) TestNamespacesDoNotCollide() {
	other := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), Config{Namespace: "other"})
	defer other.Close()

	_ = s.storage.Set(s.ctx, "token", "mine")

	_, err := other.Get(s.ctx, "token")
	s.ErrorIs(err, model.ErrKeyNotFound)
}
