package repository

import (
	"fmt"
	"sync"

	"github.com/ahoyindiemedia/community-events/internal/model"
	"github.com/ahoyindiemedia/community-events/internal/store"
)

const (
	newsletterDocument  = "newsletter.json"
	submissionsDocument = "artist_submissions.json"
)

type newsletterDoc struct {
	Subscribers []model.Subscriber `json:"subscribers"`
}

type submissionsDoc struct {
	Submissions []model.Submission `json:"submissions"`
}

// SubscriberRegistry is the append-only newsletter signup list.
type SubscriberRegistry struct {
	store *store.Store
	mu    sync.Mutex
}

// NewSubscriberRegistry constructs a SubscriberRegistry.
func NewSubscriberRegistry(st *store.Store) *SubscriberRegistry {
	return &SubscriberRegistry{store: st}
}

// All returns every subscriber in signup order.
func (r *SubscriberRegistry) All() ([]model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var doc newsletterDoc
	if err := r.store.Load(newsletterDocument, &doc); err != nil {
		return nil, err
	}
	return doc.Subscribers, nil
}

// Add appends the subscriber unless its email is already registered.
// added is false for a duplicate, which the caller reports as a normal
// success so the registry never leaks who is on the list.
func (r *SubscriberRegistry) Add(sub model.Subscriber) (added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var doc newsletterDoc
	if err := r.store.Load(newsletterDocument, &doc); err != nil {
		return false, err
	}
	for _, existing := range doc.Subscribers {
		if existing.Email == sub.Email {
			return false, nil
		}
	}
	doc.Subscribers = append(doc.Subscribers, sub)
	if err := r.store.Save(newsletterDocument, doc); err != nil {
		return false, fmt.Errorf("save newsletter: %w", err)
	}
	return true, nil
}

// SubmissionRegistry is the append-only artist submission list. It is
// structurally the newsletter registry over a different record type.
type SubmissionRegistry struct {
	store *store.Store
	mu    sync.Mutex
}

// NewSubmissionRegistry constructs a SubmissionRegistry.
func NewSubmissionRegistry(st *store.Store) *SubmissionRegistry {
	return &SubmissionRegistry{store: st}
}

// All returns every submission in arrival order.
func (r *SubmissionRegistry) All() ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var doc submissionsDoc
	if err := r.store.Load(submissionsDocument, &doc); err != nil {
		return nil, err
	}
	return doc.Submissions, nil
}

// Add appends the submission unless its email already submitted.
func (r *SubmissionRegistry) Add(sub model.Submission) (added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var doc submissionsDoc
	if err := r.store.Load(submissionsDocument, &doc); err != nil {
		return false, err
	}
	for _, existing := range doc.Submissions {
		if existing.Email == sub.Email {
			return false, nil
		}
	}
	doc.Submissions = append(doc.Submissions, sub)
	if err := r.store.Save(submissionsDocument, doc); err != nil {
		return false, fmt.Errorf("save submissions: %w", err)
	}
	return true, nil
}
