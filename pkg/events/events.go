// Package events publishes job lifecycle notifications.
package events

import (
	"context"
	"time"

	"github.com/nikogura/job-tracker/pkg/models"
)

// Event types.
const (
	JobCreated = "job.created"
	JobUpdated = "job.updated"
	JobDeleted = "job.deleted"
)

// Event is the message body published for a job change.
type Event struct {
	Type    string    `json:"type"`
	JobID   string    `json:"job_id"`
	Company string    `json:"company,omitempty"`
	Title   string    `json:"title,omitempty"`
	At      time.Time `json:"at"`
}

// NewJobEvent builds an event for job.
func NewJobEvent(eventType string, job models.JobPosting) (event Event) {
	event = Event{
		Type:    eventType,
		JobID:   job.ID,
		Company: job.Company,
		Title:   job.Title,
		At:      time.Now().UTC(),
	}
	return event
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, Event) (err error) {
	return err
}

// Close does nothing.
func (NopPublisher) Close() (err error) {
	return err
}
