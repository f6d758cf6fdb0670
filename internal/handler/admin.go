package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/ahoyindiemedia/community-events/internal/analytics"
	"github.com/ahoyindiemedia/community-events/internal/model"
)

// AnalyticsSummary handles GET /admin/analytics?days=N.
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	days := h.cfg.Analytics.DefaultWindowDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	visits, err := h.tracker.LoadRecent(days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load visit logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":    days,
		"summary": analytics.Analyze(visits),
	})
}

// ExportNewsletter handles GET /admin/export/newsletter?format=json|csv.
func (h *Handler) ExportNewsletter(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.subscribers.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load subscribers")
		return
	}
	if subscribers == nil {
		subscribers = []model.Subscriber{}
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="newsletter.csv"`)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "email", "signup_date", "status", "device_type", "referrer_domain", "campaign_source", "campaign_medium", "email_domain", "region", "country"})
		for _, s := range subscribers {
			_ = cw.Write([]string{s.ID, s.Email, s.SignupDate, s.Status, s.DeviceType, s.ReferrerDomain, s.CampaignSource, s.CampaignMedium, s.EmailDomain, s.Region, s.Country})
		}
		cw.Flush()
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": subscribers})
}

// ExportSubmissions handles GET /admin/export/artist-submissions.
func (h *Handler) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.submissions.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load submissions")
		return
	}
	if submissions == nil {
		submissions = []model.Submission{}
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="artist_submissions.csv"`)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "name", "email", "performance_type", "description", "availability", "links", "submission_date", "status"})
		for _, s := range submissions {
			_ = cw.Write([]string{s.ID, s.Name, s.Email, s.PerformanceType, s.Description, s.Availability, s.Links, s.SubmissionDate.Format("2006-01-02 15:04:05"), s.Status})
		}
		cw.Flush()
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": submissions})
}

// ExportAll handles GET /admin/export/all-data. The shape matches what
// the companion sync client expects: each collection under its own key,
// events wrapped in their document envelope.
func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	subscribers, err := h.subscribers.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load subscribers")
		return
	}
	submissions, err := h.submissions.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load submissions")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	if subscribers == nil {
		subscribers = []model.Subscriber{}
	}
	if submissions == nil {
		submissions = []model.Submission{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events":             map[string]any{"events": events},
		"newsletter":         map[string]any{"subscribers": subscribers},
		"artist_submissions": map[string]any{"submissions": submissions},
	})
}
