// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ahoyindiemedia/community-events/internal/analytics"
	"github.com/ahoyindiemedia/community-events/internal/config"
	"github.com/ahoyindiemedia/community-events/internal/model"
	"github.com/ahoyindiemedia/community-events/internal/repository"
	"github.com/ahoyindiemedia/community-events/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler holds all HTTP handlers for the site.
type Handler struct {
	events      *service.EventService
	newsletter  *service.NewsletterService
	artists     *service.ArtistService
	subscribers *repository.SubscriberRegistry
	submissions *repository.SubmissionRegistry
	tracker     *analytics.Tracker
	sessions    *sessionStore
	cfg         *config.Config
	logger      *slog.Logger
}

// New constructs a Handler.
func New(
	events *service.EventService,
	newsletter *service.NewsletterService,
	artists *service.ArtistService,
	subscribers *repository.SubscriberRegistry,
	submissions *repository.SubmissionRegistry,
	tracker *analytics.Tracker,
	cfg *config.Config,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		events:      events,
		newsletter:  newsletter,
		artists:     artists,
		subscribers: subscribers,
		submissions: submissions,
		tracker:     tracker,
		sessions:    newSessionStore(cfg.Admin.SessionTTL),
		cfg:         cfg,
		logger:      logger,
	}
}

// Router builds the full route tree with its middleware stack.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(h.accessLog)             // structured access log
	r.Use(metricsMiddleware)       // prometheus request metrics

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	// Public API, tracked for analytics.
	r.Group(func(r chi.Router) {
		r.Use(h.trackVisits)

		r.Route("/api", func(r chi.Router) {
			r.Get("/events", h.ListEvents)
			r.Get("/events/upcoming", h.UpcomingEvents)
			r.Get("/events/past", h.PastEvents)
			r.Get("/events/{id}", h.GetEvent)
			r.Post("/events/{id}/rsvp", h.AddRSVP)
			r.Delete("/events/{id}/rsvp", h.CancelRSVP)

			r.With(httprate.LimitByIP(h.cfg.Limits.NewsletterPerMinute, time.Minute)).
				Post("/newsletter/signup", h.NewsletterSignup)
			r.With(httprate.LimitByIP(h.cfg.Limits.ArtistPerHour, time.Hour)).
				Post("/artists/submit", h.ArtistSubmit)
		})
	})

	// Admin surface, password-gated.
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/events", h.ListEvents)
			r.Post("/events", h.CreateEvent)
			r.Put("/events/{id}", h.UpdateEvent)
			r.Patch("/events/{id}", h.UpdateEvent)
			r.Delete("/events/{id}", h.DeleteEvent)
			r.Get("/analytics", h.AnalyticsSummary)
			r.Get("/export/newsletter", h.ExportNewsletter)
			r.Get("/export/artist-submissions", h.ExportSubmissions)
			r.Get("/export/all-data", h.ExportAll)
		})
	})

	return r
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrEventFull),
		errors.Is(err, repository.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, repository.ErrRSVPDisabled):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidEmail),
		errors.Is(err, repository.ErrSuspiciousContent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// requestMeta collects the request context the registries derive
// attributes from. RealIP middleware has already rewritten RemoteAddr.
func requestMeta(r *http.Request) model.RequestMeta {
	query := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}
	return model.RequestMeta{
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		RemoteIP:  r.RemoteAddr,
		Query:     query,
	}
}

// ─── Event handlers ───────────────────────────────────────────────────────────

// ListEvents handles GET /api/events and GET /admin/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// UpcomingEvents handles GET /api/events/upcoming.
func (h *Handler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.UpcomingEvents()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// PastEvents handles GET /api/events/past.
func (h *Handler) PastEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.PastEvents()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /admin/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeCreateEvent(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.CreateEvent(req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// decodeCreateEvent accepts either a JSON body or the admin form.
func decodeCreateEvent(r *http.Request, req *model.CreateEventRequest) error {
	if isJSON(r) {
		return decodeJSON(r, req)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	date, err := model.ParseDate(r.PostFormValue("date"))
	if err != nil && r.PostFormValue("date") != "" {
		return err
	}
	*req = model.CreateEventRequest{
		Title:        r.PostFormValue("title"),
		Date:         date,
		Time:         r.PostFormValue("time"),
		Venue:        r.PostFormValue("venue"),
		VenueAddress: r.PostFormValue("venue_address"),
		Description:  r.PostFormValue("description"),
		EventType:    r.PostFormValue("event_type"),
		Status:       r.PostFormValue("status"),
		Image:        r.PostFormValue("image"),
		RSVPEnabled:  r.PostFormValue("rsvp_enabled"),
		RSVPLimit:    r.PostFormValue("rsvp_limit"),
	}
	return nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// UpdateEvent handles PUT/PATCH /admin/events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.UpdateEvent(chi.URLParam(r, "id"), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /admin/events/{id}. Deleting an unknown
// id still returns 204.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── RSVP handlers ────────────────────────────────────────────────────────────

// AddRSVP handles POST /api/events/{id}/rsvp.
func (h *Handler) AddRSVP(w http.ResponseWriter, r *http.Request) {
	var req model.RSVPRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		guests, _ := strconv.Atoi(r.PostFormValue("guests"))
		req = model.RSVPRequest{
			Name:   r.PostFormValue("name"),
			Email:  r.PostFormValue("email"),
			Guests: guests,
		}
	}

	count, err := h.events.AddRSVP(chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"attending": count})
}

// CancelRSVP handles DELETE /api/events/{id}/rsvp?email=...
// Removing an email with no RSVP still succeeds.
func (h *Handler) CancelRSVP(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.events.CancelRSVP(chi.URLParam(r, "id"), email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to cancel rsvp")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Registry handlers ────────────────────────────────────────────────────────

// NewsletterSignup handles POST /api/newsletter/signup.
func (h *Handler) NewsletterSignup(w http.ResponseWriter, r *http.Request) {
	email := formOrJSONField(r, "email")
	_, added, err := h.newsletter.Signup(email, requestMeta(r))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	// A duplicate signup looks identical to a fresh one from outside.
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "subscribed",
		"already_registered": !added,
	})
}

// ArtistSubmit handles POST /api/artists/submit.
func (h *Handler) ArtistSubmit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmissionRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		req = model.SubmissionRequest{
			Name:            r.PostFormValue("name"),
			Email:           r.PostFormValue("email"),
			PerformanceType: r.PostFormValue("performance_type"),
			Description:     r.PostFormValue("description"),
			Availability:    r.PostFormValue("availability"),
			Links:           r.PostFormValue("links"),
		}
	}

	sub, added, err := h.artists.Submit(req, requestMeta(r))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	resp := map[string]any{
		"status":             "received",
		"already_registered": !added,
	}
	if added {
		resp["id"] = sub.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// formOrJSONField pulls a single named field from a JSON body or form.
func formOrJSONField(r *http.Request, name string) string {
	if isJSON(r) {
		var body map[string]string
		if err := decodeJSON(r, &body); err != nil {
			return ""
		}
		return body[name]
	}
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return r.PostFormValue(name)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
