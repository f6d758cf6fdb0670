// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahoyindiemedia/community-events/internal/model"
	"github.com/ahoyindiemedia/community-events/internal/repository"
)

// EventService orchestrates event and RSVP operations.
type EventService struct {
	events *repository.EventRepository
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events}
}

// CreateEvent validates the request and delegates to the repository.
func (s *EventService) CreateEvent(req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", repository.ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", repository.ErrInvalidInput)
	}
	return s.events.Create(req)
}

// UpdateEvent applies a partial update to an existing event.
func (s *EventService) UpdateEvent(id string, req model.UpdateEventRequest) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", repository.ErrInvalidInput)
	}
	return s.events.Update(id, req)
}

// DeleteEvent removes an event. Unknown ids are a no-op.
func (s *EventService) DeleteEvent(id string) error {
	return s.events.Delete(id)
}

// ListEvents returns all events.
func (s *EventService) ListEvents() ([]model.Event, error) {
	return s.events.List()
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(id string) (*model.Event, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	return s.events.Get(id)
}

// UpcomingEvents returns events dated today or later, soonest first.
func (s *EventService) UpcomingEvents() ([]model.Event, error) {
	return s.events.Upcoming()
}

// PastEvents returns events dated before today, most recent first.
func (s *EventService) PastEvents() ([]model.Event, error) {
	return s.events.Past()
}

// AddRSVP joins an event's guest list and returns the new RSVP count.
// Domain errors from the repository surface directly so handlers can
// set the right HTTP status.
func (s *EventService) AddRSVP(eventID string, req model.RSVPRequest) (int, error) {
	count, err := s.events.AddRSVP(eventID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrRSVPDisabled) ||
			errors.Is(err, repository.ErrEventFull) ||
			errors.Is(err, repository.ErrInvalidInput) ||
			errors.Is(err, repository.ErrAlreadyRegistered) {
			return 0, err
		}
		return 0, fmt.Errorf("add rsvp: %w", err)
	}
	return count, nil
}

// CancelRSVP removes all RSVPs for the email from the event.
func (s *EventService) CancelRSVP(eventID, email string) error {
	return s.events.CancelRSVP(eventID, email)
}
