// Package model defines the core domain types for the community events site.
package model

import (
	"strconv"
	"time"
)

// Event represents a show listed on the site. Each event exclusively
// owns its RSVP list; nothing else references RSVPs.
type Event struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Date         Date   `json:"date"`
	Time         string `json:"time"`
	Venue        string `json:"venue"`
	VenueAddress string `json:"venue_address"`
	Description  string `json:"description"`
	EventType    string `json:"event_type"`
	// Status is display-only. Whether an event is upcoming or past is
	// always derived from Date against the current date.
	Status      string   `json:"status"`
	Image       string   `json:"image"`
	Photos      []string `json:"photos"`
	RSVPEnabled bool     `json:"rsvp_enabled"`
	// RSVPLimit is a positive integer as a string; empty means unlimited.
	// Kept as a string because the admin form submits it that way.
	RSVPLimit string `json:"rsvp_limit"`
	RSVPs     []RSVP `json:"rsvps"`
}

// RSVPLimitValue parses RSVPLimit. ok is false when no limit is set.
func (e *Event) RSVPLimitValue() (limit int, ok bool) {
	if e.RSVPLimit == "" {
		return 0, false
	}
	n, err := strconv.Atoi(e.RSVPLimit)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// RSVP is one guest-list entry on an event.
type RSVP struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Guests   int       `json:"guests"`
	RSVPDate time.Time `json:"rsvp_date"`
}

// Subscriber is one newsletter signup. The derived attributes are
// computed once at signup time and never recomputed.
type Subscriber struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	SignupDate      string    `json:"signup_date"`
	SignupTimestamp time.Time `json:"signup_timestamp"`
	Status          string    `json:"status"`
	DeviceType      string    `json:"device_type"`
	ReferrerDomain  string    `json:"referrer_domain"`
	CampaignSource  string    `json:"campaign_source"`
	CampaignMedium  string    `json:"campaign_medium"`
	EmailDomain     string    `json:"email_domain"`
	Region          string    `json:"region"`
	Country         string    `json:"country"`
	SignupHour      int       `json:"signup_hour"`
	SignupWeekday   string    `json:"signup_weekday"`
}

// Submission is one artist performance submission.
type Submission struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PerformanceType string    `json:"performance_type"`
	Description     string    `json:"description"`
	Availability    string    `json:"availability"`
	Links           string    `json:"links"`
	SubmissionDate  time.Time `json:"submission_date"`
	Status          string    `json:"status"`
	IPAddress       string    `json:"ip_address"`
	UserAgent       string    `json:"user_agent"`
}

// CreateEventRequest is the payload for creating a new event. String
// fields mirror the admin form, so RSVPEnabled arrives as the literal
// "true" when the box is checked.
type CreateEventRequest struct {
	Title        string `json:"title"`
	Date         Date   `json:"date"`
	Time         string `json:"time"`
	Venue        string `json:"venue"`
	VenueAddress string `json:"venue_address"`
	Description  string `json:"description"`
	EventType    string `json:"event_type"`
	Status       string `json:"status"`
	Image        string `json:"image"`
	RSVPEnabled  string `json:"rsvp_enabled"`
	RSVPLimit    string `json:"rsvp_limit"`
}

// UpdateEventRequest carries a partial event update. Only non-nil
// fields are written; the event's RSVP list is never touched.
type UpdateEventRequest struct {
	Title        *string `json:"title"`
	Date         *Date   `json:"date"`
	Time         *string `json:"time"`
	Venue        *string `json:"venue"`
	VenueAddress *string `json:"venue_address"`
	Description  *string `json:"description"`
	EventType    *string `json:"event_type"`
	Status       *string `json:"status"`
	Image        *string `json:"image"`
	RSVPEnabled  *bool   `json:"rsvp_enabled"`
	RSVPLimit    *string `json:"rsvp_limit"`
}

// RSVPRequest is the payload for joining an event's guest list.
type RSVPRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Guests int    `json:"guests"`
}

// SubmissionRequest is the payload for an artist submission.
type SubmissionRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	PerformanceType string `json:"performance_type"`
	Description     string `json:"description"`
	Availability    string `json:"availability"`
	Links           string `json:"links"`
}

// RequestMeta carries the request-level context the registries need to
// compute derived attributes. Handlers fill it in; the core never sees
// an *http.Request.
type RequestMeta struct {
	UserAgent string
	Referrer  string
	RemoteIP  string
	Query     map[string]string
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
