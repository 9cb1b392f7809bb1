package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
	base  time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
	s.base = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) TestSetAndGet() {
	entry, err := EncodeEntry(map[string]string{"verdict": "clean"}, s.base)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Set(s.ctx, "domain:a.example", entry))

	got, err := s.store.Get(s.ctx, "domain:a.example")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.CheckedAt.Equal(s.base))

	var decoded map[string]string
	s.Require().NoError(DecodeEntry(got, &decoded))
	s.Equal("clean", decoded["verdict"])
}

func (s *MemoryStoreSuite) TestGetMissReturnsNilNil() {
	got, err := s.store.Get(s.ctx, "absent")
	s.NoError(err)
	s.Nil(got)
}

func (s *MemoryStoreSuite) TestDeleteAndClear() {
	entry, err := EncodeEntry("v", s.base)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Set(s.ctx, "k1", entry))
	s.Require().NoError(s.store.Set(s.ctx, "k2", entry))

	s.Require().NoError(s.store.Delete(s.ctx, "k1"))
	s.Require().NoError(s.store.Delete(s.ctx, "absent"))
	s.Equal(1, s.store.Len())

	s.Require().NoError(s.store.Clear(s.ctx))
	s.Equal(0, s.store.Len())
}

func (s *MemoryStoreSuite) TestEntryExpiry() {
	entry := Entry{CheckedAt: s.base}
	s.False(entry.Expired(time.Hour, s.base.Add(30*time.Minute)))
	s.True(entry.Expired(time.Hour, s.base.Add(2*time.Hour)))

	var missing *Entry
	s.True(missing.Expired(time.Hour, s.base))
}
