package alerts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"trustmon/pkg/models"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	base  time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.base = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newAlert(category models.AlertCategory, severity models.Severity, domain string, offset time.Duration) *models.SecurityAlert {
	return &models.SecurityAlert{
		ID:        uuid.NewString(),
		Category:  category,
		Severity:  severity,
		Status:    models.StatusNew,
		Domain:    domain,
		Timestamp: s.base.Add(offset),
	}
}

func (s *MemoryStoreSuite) TestInsertAndGet() {
	alert := s.newAlert(models.AlertNRD, models.SeverityHigh, "a.example", 0)
	s.Require().NoError(s.store.Insert(alert))

	found, ok := s.store.Get(alert.ID)
	s.Require().True(ok)
	s.Equal(alert.Domain, found.Domain)

	s.Run("returned copy does not alias stored state", func() {
		found.Status = models.StatusResolved
		again, ok := s.store.Get(alert.ID)
		s.Require().True(ok)
		s.Equal(models.StatusNew, again.Status)
	})

	s.Run("unknown ID misses", func() {
		_, ok := s.store.Get("nope")
		s.False(ok)
	})
}

func (s *MemoryStoreSuite) TestUpdate() {
	alert := s.newAlert(models.AlertNRD, models.SeverityHigh, "a.example", 0)
	s.Require().NoError(s.store.Insert(alert))

	alert.Status = models.StatusAcknowledged
	s.Require().NoError(s.store.Update(alert))

	found, ok := s.store.Get(alert.ID)
	s.Require().True(ok)
	s.Equal(models.StatusAcknowledged, found.Status)

	s.Run("unknown ID is a no-op", func() {
		ghost := s.newAlert(models.AlertXSS, models.SeverityCritical, "b.example", 0)
		s.Require().NoError(s.store.Update(ghost))
		_, ok := s.store.Get(ghost.ID)
		s.False(ok)
	})
}

func (s *MemoryStoreSuite) TestListOrderingAndFilters() {
	oldest := s.newAlert(models.AlertNRD, models.SeverityHigh, "a.example", 0)
	middle := s.newAlert(models.AlertTyposquat, models.SeverityCritical, "b.example", time.Minute)
	newest := s.newAlert(models.AlertNRD, models.SeverityMedium, "a.example", 2*time.Minute)
	for _, a := range []*models.SecurityAlert{oldest, middle, newest} {
		s.Require().NoError(s.store.Insert(a))
	}

	s.Run("lists newest first", func() {
		all := s.store.List(nil)
		s.Require().Len(all, 3)
		s.Equal(newest.ID, all[0].ID)
		s.Equal(oldest.ID, all[2].ID)
	})

	s.Run("filters by category", func() {
		got := s.store.List(&Filter{Categories: []models.AlertCategory{models.AlertTyposquat}})
		s.Require().Len(got, 1)
		s.Equal(middle.ID, got[0].ID)
	})

	s.Run("filters by severity", func() {
		got := s.store.List(&Filter{Severities: []models.Severity{models.SeverityHigh, models.SeverityCritical}})
		s.Len(got, 2)
	})

	s.Run("filters by domain", func() {
		got := s.store.List(&Filter{Domain: "a.example"})
		s.Len(got, 2)
	})

	s.Run("applies limit after ordering", func() {
		got := s.store.List(&Filter{Limit: 1})
		s.Require().Len(got, 1)
		s.Equal(newest.ID, got[0].ID)
	})

	s.Run("count ignores limit", func() {
		s.Equal(3, s.store.Count(&Filter{Limit: 1}))
	})
}

func (s *MemoryStoreSuite) TestDelete() {
	alert := s.newAlert(models.AlertNRD, models.SeverityHigh, "a.example", 0)
	s.Require().NoError(s.store.Insert(alert))

	s.Require().NoError(s.store.Delete(alert.ID))
	_, ok := s.store.Get(alert.ID)
	s.False(ok)

	s.Require().NoError(s.store.Delete("nope"))
}
