package services

import "cloudfiles/internal/domain/models"

// EventPublisher pushes domain events to live subscribers.
// Publishing is fire-and-forget and never fails the caller.
type EventPublisher interface {
	Publish(kind models.EventKind, payload interface{}, audience models.Audience)
}
