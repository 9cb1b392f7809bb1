package pipeline

import "trustmon/pkg/models"

// AlertWriter delivers created alerts to a downstream sink.
type AlertWriter interface {
	WriteAlerts(alerts []*models.SecurityAlert) error
	Close() error
}
