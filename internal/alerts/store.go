package alerts

import (
	"sort"
	"sync"

	"trustmon/pkg/models"
)

// Filter narrows List and Count results.
type Filter struct {
	Statuses   []models.AlertStatus
	Categories []models.AlertCategory
	Severities []models.Severity
	Domain     string
	Limit      int
}

// Store holds alerts for the manager. The manager owns alert identity and
// status transitions; the store only persists them.
type Store interface {
	Insert(alert *models.SecurityAlert) error
	Update(alert *models.SecurityAlert) error
	Get(id string) (*models.SecurityAlert, bool)
	List(f *Filter) []*models.SecurityAlert
	Delete(id string) error
	Count(f *Filter) int
}

// MemoryStore is the in-process reference Store. List returns alerts
// newest-first.
type MemoryStore struct {
	mu     sync.RWMutex
	alerts map[string]models.SecurityAlert
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: make(map[string]models.SecurityAlert)}
}

// Insert stores a new alert.
func (s *MemoryStore) Insert(alert *models.SecurityAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.ID] = *alert
	return nil
}

// Update replaces a stored alert; unknown IDs are a no-op.
func (s *MemoryStore) Update(alert *models.SecurityAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[alert.ID]; !ok {
		return nil
	}
	s.alerts[alert.ID] = *alert
	return nil
}

// Get returns a copy of the alert with the given ID.
func (s *MemoryStore) Get(id string) (*models.SecurityAlert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alert, ok := s.alerts[id]
	if !ok {
		return nil, false
	}
	return &alert, true
}

// List returns matching alerts sorted by timestamp descending.
func (s *MemoryStore) List(f *Filter) []*models.SecurityAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.SecurityAlert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		if !matches(&alert, f) {
			continue
		}
		copied := alert
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if f != nil && f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Delete removes an alert; unknown IDs are a no-op.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alerts, id)
	return nil
}

// Count returns the number of matching alerts, ignoring any limit.
func (s *MemoryStore) Count(f *Filter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, alert := range s.alerts {
		if matches(&alert, f) {
			count++
		}
	}
	return count
}

func matches(alert *models.SecurityAlert, f *Filter) bool {
	if f == nil {
		return true
	}
	if len(f.Statuses) > 0 && !statusIn(alert.Status, f.Statuses) {
		return false
	}
	if len(f.Categories) > 0 && !categoryIn(alert.Category, f.Categories) {
		return false
	}
	if len(f.Severities) > 0 && !severityIn(alert.Severity, f.Severities) {
		return false
	}
	if f.Domain != "" && alert.Domain != f.Domain {
		return false
	}
	return true
}

func statusIn(s models.AlertStatus, set []models.AlertStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

func categoryIn(c models.AlertCategory, set []models.AlertCategory) bool {
	for _, candidate := range set {
		if candidate == c {
			return true
		}
	}
	return false
}

func severityIn(s models.Severity, set []models.Severity) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
