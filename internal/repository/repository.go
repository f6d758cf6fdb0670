// Package repository implements persistence for the site's collections
// on top of the JSON document store. Each repository owns one document
// and serializes its own read-modify-write cycles with a mutex.
package repository

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ahoyindiemedia/community-events/internal/model"
	"github.com/ahoyindiemedia/community-events/internal/store"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEventFull is returned when an event has reached its RSVP limit.
var ErrEventFull = errors.New("event is fully booked")

// ErrAlreadyRegistered is returned when the same email RSVPs twice to
// one event.
var ErrAlreadyRegistered = errors.New("email already has an rsvp for this event")

// ErrRSVPDisabled is returned when RSVPs are not enabled for an event.
var ErrRSVPDisabled = errors.New("rsvps are not enabled for this event")

// ErrInvalidInput is returned for missing or malformed required fields.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidEmail is returned for syntactically invalid email addresses.
var ErrInvalidEmail = errors.New("invalid email address")

// ErrSuspiciousContent is returned when a free-text field trips the
// spam filter.
var ErrSuspiciousContent = errors.New("submission rejected")

const eventsDocument = "events.json"

// defaultImages maps an event type to the image shown when the event
// has none of its own. The "default" entry is the fallback.
var defaultImages = map[string]string{
	"poetry":  "/static/images/defaults/poetry.jpg",
	"music":   "/static/images/defaults/music.jpg",
	"cabaret": "/static/images/defaults/cabaret.jpg",
	"comedy":  "/static/images/defaults/comedy.jpg",
	"dance":   "/static/images/defaults/dance.jpg",
	"theater": "/static/images/defaults/theater.jpg",
	"default": "/static/images/defaults/show.jpg",
}

// DefaultImage returns the stock image for an event type.
func DefaultImage(eventType string) string {
	if img, ok := defaultImages[eventType]; ok {
		return img
	}
	return defaultImages["default"]
}

type eventsDoc struct {
	Events []model.Event `json:"events"`
}

// EventRepository handles persistence for events and their RSVPs.
type EventRepository struct {
	store *store.Store
	mu    sync.Mutex

	// Now and NewID are swappable for tests.
	Now   func() time.Time
	NewID func() string
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(st *store.Store) *EventRepository {
	return &EventRepository{
		store: st,
		Now:   time.Now,
		NewID: func() string { return uuid.New().String() },
	}
}

func (r *EventRepository) load() (eventsDoc, error) {
	var doc eventsDoc
	if err := r.store.Load(eventsDocument, &doc); err != nil {
		return eventsDoc{}, err
	}
	return doc, nil
}

// List returns all events. Events stored without an image get the
// type-derived default substituted at read time; the documents on disk
// are left alone.
func (r *EventRepository) List() ([]model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return repairImages(doc.Events), nil
}

func repairImages(events []model.Event) []model.Event {
	for i := range events {
		if events[i].Image == "" {
			events[i].Image = DefaultImage(events[i].EventType)
		}
	}
	return events
}

// Get returns a single event or ErrNotFound.
func (r *EventRepository) Get(id string) (*model.Event, error) {
	events, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a new event with a fresh id and persists. Defaults:
// event type "cabaret", status "upcoming", RSVPs enabled only by the
// literal string "true", empty photo and RSVP lists.
func (r *EventRepository) Create(req model.CreateEventRequest) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	eventType := req.EventType
	if eventType == "" {
		eventType = "cabaret"
	}
	status := req.Status
	if status == "" {
		status = "upcoming"
	}

	event := model.Event{
		ID:           r.NewID(),
		Title:        req.Title,
		Date:         req.Date,
		Time:         req.Time,
		Venue:        req.Venue,
		VenueAddress: req.VenueAddress,
		Description:  req.Description,
		EventType:    eventType,
		Status:       status,
		Image:        req.Image,
		Photos:       []string{},
		RSVPEnabled:  req.RSVPEnabled == "true",
		RSVPLimit:    req.RSVPLimit,
		RSVPs:        []model.RSVP{},
	}

	doc.Events = append(doc.Events, event)
	if err := r.store.Save(eventsDocument, doc); err != nil {
		return nil, fmt.Errorf("save events: %w", err)
	}
	return &event, nil
}

// Update merges the provided fields into an existing event and
// persists. Fields left nil keep their prior values, and the RSVP list
// is never touched. Returns ErrNotFound for an unknown id.
func (r *EventRepository) Update(id string, req model.UpdateEventRequest) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range doc.Events {
		if doc.Events[i].ID != id {
			continue
		}
		e := &doc.Events[i]
		if req.Title != nil {
			e.Title = *req.Title
		}
		if req.Date != nil {
			e.Date = *req.Date
		}
		if req.Time != nil {
			e.Time = *req.Time
		}
		if req.Venue != nil {
			e.Venue = *req.Venue
		}
		if req.VenueAddress != nil {
			e.VenueAddress = *req.VenueAddress
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.EventType != nil {
			e.EventType = *req.EventType
		}
		if req.Status != nil {
			e.Status = *req.Status
		}
		if req.Image != nil {
			e.Image = *req.Image
		}
		if req.RSVPEnabled != nil {
			e.RSVPEnabled = *req.RSVPEnabled
		}
		if req.RSVPLimit != nil {
			e.RSVPLimit = *req.RSVPLimit
		}
		if err := r.store.Save(eventsDocument, doc); err != nil {
			return nil, fmt.Errorf("save events: %w", err)
		}
		updated := *e
		return &updated, nil
	}
	return nil, ErrNotFound
}

// Delete removes the event with the given id if present. Deleting an
// unknown id is a no-op, so delete is idempotent.
func (r *EventRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}

	kept := doc.Events[:0]
	for _, e := range doc.Events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	doc.Events = kept
	if err := r.store.Save(eventsDocument, doc); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}

// Upcoming returns events dated today or later, soonest first. Events
// on the same date keep their stored order.
func (r *EventRepository) Upcoming() ([]model.Event, error) {
	events, err := r.List()
	if err != nil {
		return nil, err
	}
	today := model.DateOf(r.Now())
	var upcoming []model.Event
	for _, e := range events {
		if !e.Date.Before(today) {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})
	return upcoming, nil
}

// Past returns events dated before today, most recent first. Events on
// the same date keep their stored order.
func (r *EventRepository) Past() ([]model.Event, error) {
	events, err := r.List()
	if err != nil {
		return nil, err
	}
	today := model.DateOf(r.Now())
	var past []model.Event
	for _, e := range events {
		if e.Date.Before(today) {
			past = append(past, e)
		}
	}
	sort.SliceStable(past, func(i, j int) bool {
		return past[j].Date.Before(past[i].Date)
	})
	return past, nil
}
