package threatintel

import (
	"context"

	"trustmon/pkg/models"
)

// Checker is one independent threat source. A nil result with a nil error
// means "no opinion", not "safe"; errors degrade to no opinion at the
// aggregator boundary.
type Checker interface {
	Name() models.ThreatSource
	Check(ctx context.Context, indicator string) (*models.ThreatCheckResult, error)
}
