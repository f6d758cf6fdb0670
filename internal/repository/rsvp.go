package repository

import (
	"fmt"
	"strings"

	"github.com/ahoyindiemedia/community-events/internal/model"
)

// AddRSVP appends a guest-list entry to an event and returns the new
// RSVP count. Checks run in a fixed order: unknown event, RSVPs
// disabled, event full, blank name or email, duplicate email.
//
// Duplicate detection compares email strings exactly, with no case
// folding or trimming. The data files were built under that rule and
// tightening it would silently change which signups are accepted.
func (r *EventRepository) AddRSVP(eventID string, req model.RSVPRequest) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return 0, err
	}

	for i := range doc.Events {
		e := &doc.Events[i]
		if e.ID != eventID {
			continue
		}
		if !e.RSVPEnabled {
			return 0, ErrRSVPDisabled
		}
		if limit, ok := e.RSVPLimitValue(); ok && len(e.RSVPs) >= limit {
			return 0, ErrEventFull
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
			return 0, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
		}
		for _, existing := range e.RSVPs {
			if existing.Email == req.Email {
				return 0, ErrAlreadyRegistered
			}
		}

		guests := req.Guests
		if guests < 1 {
			guests = 1
		}
		e.RSVPs = append(e.RSVPs, model.RSVP{
			ID:       r.NewID(),
			Name:     req.Name,
			Email:    req.Email,
			Guests:   guests,
			RSVPDate: r.Now(),
		})

		if err := r.store.Save(eventsDocument, doc); err != nil {
			return 0, fmt.Errorf("save events: %w", err)
		}
		return len(e.RSVPs), nil
	}
	return 0, ErrNotFound
}

// CancelRSVP removes every RSVP matching the email from the event and
// persists. Cancelling an email with no RSVP is a no-op; only an
// unknown event id is an error.
func (r *EventRepository) CancelRSVP(eventID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}

	for i := range doc.Events {
		e := &doc.Events[i]
		if e.ID != eventID {
			continue
		}
		kept := e.RSVPs[:0]
		for _, rsvp := range e.RSVPs {
			if rsvp.Email != email {
				kept = append(kept, rsvp)
			}
		}
		e.RSVPs = kept
		if err := r.store.Save(eventsDocument, doc); err != nil {
			return fmt.Errorf("save events: %w", err)
		}
		return nil
	}
	return ErrNotFound
}
