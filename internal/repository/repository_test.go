package repository

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ahoyindiemedia/community-events/internal/model"
	"github.com/ahoyindiemedia/community-events/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow keeps the upcoming/past boundary stable in tests.
var fixedNow = time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *EventRepository {
	t.Helper()
	repo := NewEventRepository(store.New(t.TempDir(), slog.Default()))
	repo.Now = func() time.Time { return fixedNow }
	return repo
}

func mustCreate(t *testing.T, repo *EventRepository, title, date string) *model.Event {
	t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(t, err)
	event, err := repo.Create(model.CreateEventRequest{Title: title, Date: d})
	require.NoError(t, err)
	return event
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := newTestRepo(t)

	event, err := repo.Create(model.CreateEventRequest{
		Title: "Open Mic",
		Date:  model.NewDate(2099, time.January, 1),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "cabaret", event.EventType)
	assert.Equal(t, "upcoming", event.Status)
	assert.False(t, event.RSVPEnabled)
	assert.Empty(t, event.Photos)
	assert.Empty(t, event.RSVPs)
}

func TestCreateRSVPEnabledParsesLiteralTrue(t *testing.T) {
	repo := newTestRepo(t)

	on, err := repo.Create(model.CreateEventRequest{
		Title: "A", Date: model.NewDate(2099, time.January, 1), RSVPEnabled: "true",
	})
	require.NoError(t, err)
	assert.True(t, on.RSVPEnabled)

	// Anything other than the literal "true" leaves RSVPs off.
	off, err := repo.Create(model.CreateEventRequest{
		Title: "B", Date: model.NewDate(2099, time.January, 1), RSVPEnabled: "yes",
	})
	require.NoError(t, err)
	assert.False(t, off.RSVPEnabled)
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	repo := newTestRepo(t)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		event := mustCreate(t, repo, "Show", "2099-01-01")
		assert.False(t, seen[event.ID], "id %q assigned twice", event.ID)
		seen[event.ID] = true
	}

	events, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestListRepairsMissingImages(t *testing.T) {
	repo := newTestRepo(t)
	mustCreate(t, repo, "No Image", "2099-01-01")

	withImage, err := repo.Create(model.CreateEventRequest{
		Title: "Has Image", Date: model.NewDate(2099, time.January, 1),
		Image: "/static/uploads/flyer.jpg", EventType: "music",
	})
	require.NoError(t, err)

	events, err := repo.List()
	require.NoError(t, err)
	assert.Equal(t, DefaultImage("cabaret"), events[0].Image)
	assert.Equal(t, "/static/uploads/flyer.jpg", events[1].Image)

	// Read-time repair only: the document keeps the empty image.
	fresh, err := repo.Get(withImage.ID)
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/flyer.jpg", fresh.Image)
}

func TestDefaultImageFallback(t *testing.T) {
	assert.NotEmpty(t, DefaultImage("poetry"))
	assert.Equal(t, DefaultImage("default"), DefaultImage("juggling"))
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	repo := newTestRepo(t)
	event := mustCreate(t, repo, "Original", "2099-01-01")

	title := "Renamed"
	updated, err := repo.Update(event.ID, model.UpdateEventRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, event.Date, updated.Date)
	assert.Equal(t, event.EventType, updated.EventType)
	assert.Equal(t, event.Status, updated.Status)
}

func TestUpdateUnknownIDFails(t *testing.T) {
	repo := newTestRepo(t)
	title := "X"
	_, err := repo.Update("missing", model.UpdateEventRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateNeverTouchesRSVPs(t *testing.T) {
	repo := newTestRepo(t)
	event, err := repo.Create(model.CreateEventRequest{
		Title: "Show", Date: model.NewDate(2099, time.January, 1), RSVPEnabled: "true",
	})
	require.NoError(t, err)

	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	title := "Renamed"
	updated, err := repo.Update(event.ID, model.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Len(t, updated.RSVPs, 1)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	event := mustCreate(t, repo, "Doomed", "2099-01-01")

	require.NoError(t, repo.Delete(event.ID))
	require.NoError(t, repo.Delete(event.ID))

	events, err := repo.List()
	require.NoError(t, err)
	for _, e := range events {
		assert.NotEqual(t, event.ID, e.ID)
	}
}

func TestUpcomingPastPartition(t *testing.T) {
	repo := newTestRepo(t)
	mustCreate(t, repo, "Long Ago", "2026-01-15")
	mustCreate(t, repo, "Yesterday", "2026-08-27")
	mustCreate(t, repo, "Today", "2026-08-28")
	mustCreate(t, repo, "Next Week", "2026-09-04")

	upcoming, err := repo.Upcoming()
	require.NoError(t, err)
	past, err := repo.Past()
	require.NoError(t, err)

	// Today counts as upcoming; the two sets partition the whole list.
	assert.Equal(t, []string{"Today", "Next Week"}, titles(upcoming))
	assert.Equal(t, []string{"Yesterday", "Long Ago"}, titles(past))

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, len(upcoming)+len(past))
}

func TestUpcomingStableForEqualDates(t *testing.T) {
	repo := newTestRepo(t)
	mustCreate(t, repo, "First", "2026-09-01")
	mustCreate(t, repo, "Second", "2026-09-01")
	mustCreate(t, repo, "Third", "2026-09-01")

	upcoming, err := repo.Upcoming()
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third"}, titles(upcoming))
}

func titles(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}
