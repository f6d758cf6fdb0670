package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/ahoyindiemedia/community-events/internal/model"
	"github.com/ahoyindiemedia/community-events/internal/repository"
)

const maxStoredUserAgent = 200

// NewsletterService handles newsletter signups.
type NewsletterService struct {
	registry *repository.SubscriberRegistry

	// Now is swappable for tests.
	Now func() time.Time
}

// NewNewsletterService constructs a NewsletterService.
func NewNewsletterService(registry *repository.SubscriberRegistry) *NewsletterService {
	return &NewsletterService{registry: registry, Now: time.Now}
}

// Signup validates and records a newsletter signup. An email that is
// already registered is a soft success: added is false, no record is
// written, and no error is returned, so the endpoint never reveals
// whether an address is on the list.
func (s *NewsletterService) Signup(email string, meta model.RequestMeta) (sub *model.Subscriber, added bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, fmt.Errorf("%w: email is required", repository.ErrInvalidInput)
	}
	if err := validateEmail(email); err != nil {
		return nil, false, err
	}
	if err := checkSuspicious(email); err != nil {
		return nil, false, err
	}
	email = sanitize(email)

	now := s.Now()
	record := model.Subscriber{
		ID:              subscriberID(now, email),
		Email:           email,
		SignupDate:      now.Format("2006-01-02"),
		SignupTimestamp: now,
		Status:          "active",
		DeviceType:      deviceType(meta.UserAgent),
		ReferrerDomain:  referrerDomain(meta.Referrer),
		CampaignSource:  meta.Query["utm_source"],
		CampaignMedium:  meta.Query["utm_medium"],
		EmailDomain:     emailDomain(email),
		SignupHour:      now.Hour(),
		SignupWeekday:   now.Weekday().String(),
	}
	record.Region, record.Country = regionFromIP(meta.RemoteIP)

	added, err = s.registry.Add(record)
	if err != nil {
		return nil, false, fmt.Errorf("record signup: %w", err)
	}
	return &record, added, nil
}

// subscriberID builds the human-readable id used in exports: the
// signup timestamp plus the local part of the email.
func subscriberID(now time.Time, email string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	return now.Format("20060102150405") + "_" + local
}

// ArtistService handles artist performance submissions.
type ArtistService struct {
	registry *repository.SubmissionRegistry

	// Now is swappable for tests.
	Now func() time.Time
}

// NewArtistService constructs an ArtistService.
func NewArtistService(registry *repository.SubmissionRegistry) *ArtistService {
	return &ArtistService{registry: registry, Now: time.Now}
}

// Submit validates and records an artist submission. Duplicate emails
// are the same soft success as newsletter signups.
func (s *ArtistService) Submit(req model.SubmissionRequest, meta model.RequestMeta) (sub *model.Submission, added bool, err error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Description = strings.TrimSpace(req.Description)

	if req.Name == "" || req.Email == "" || req.PerformanceType == "" || req.Description == "" {
		return nil, false, fmt.Errorf("%w: name, email, performance type and description are required", repository.ErrInvalidInput)
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, false, err
	}
	if err := validatePerformanceType(req.PerformanceType); err != nil {
		return nil, false, err
	}
	if err := validateLink(req.Links); err != nil {
		return nil, false, err
	}
	if err := checkSuspicious(req.Name, req.Description, req.Availability); err != nil {
		return nil, false, err
	}

	now := s.Now()
	record := model.Submission{
		ID:              "sub_" + now.Format("20060102150405"),
		Name:            sanitize(req.Name),
		Email:           sanitize(req.Email),
		PerformanceType: req.PerformanceType,
		Description:     sanitize(req.Description),
		Availability:    sanitize(req.Availability),
		Links:           req.Links,
		SubmissionDate:  now,
		Status:          "pending",
		IPAddress:       meta.RemoteIP,
		UserAgent:       truncate(meta.UserAgent, maxStoredUserAgent),
	}

	added, err = s.registry.Add(record)
	if err != nil {
		return nil, false, fmt.Errorf("record submission: %w", err)
	}
	return &record, added, nil
}
