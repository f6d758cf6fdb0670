package repository

import (
	"testing"
	"time"

	"github.com/ahoyindiemedia/community-events/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRSVPEvent(t *testing.T, repo *EventRepository, limit string) *model.Event {
	t.Helper()
	event, err := repo.Create(model.CreateEventRequest{
		Title:       "Open Mic",
		Date:        model.NewDate(2099, time.January, 1),
		RSVPEnabled: "true",
		RSVPLimit:   limit,
	})
	require.NoError(t, err)
	return event
}

func TestAddRSVP(t *testing.T) {
	repo := newTestRepo(t)
	event := createRSVPEvent(t, repo, "")

	count, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com", Guests: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fresh, err := repo.Get(event.ID)
	require.NoError(t, err)
	require.Len(t, fresh.RSVPs, 1)
	assert.Equal(t, "a@x.com", fresh.RSVPs[0].Email)
	assert.Equal(t, 2, fresh.RSVPs[0].Guests)
	assert.Equal(t, fixedNow, fresh.RSVPs[0].RSVPDate)
}

func TestAddRSVPGuestsDefaultToOne(t *testing.T) {
	repo := newTestRepo(t)
	event := createRSVPEvent(t, repo, "")

	_, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	fresh, err := repo.Get(event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.RSVPs[0].Guests)
}

func TestAddRSVPUnknownEvent(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.AddRSVP("missing", model.RSVPRequest{Name: "A", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddRSVPDisabled(t *testing.T) {
	repo := newTestRepo(t)
	event, err := repo.Create(model.CreateEventRequest{
		Title: "No RSVPs", Date: model.NewDate(2099, time.January, 1),
	})
	require.NoError(t, err)

	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrRSVPDisabled)
}

func TestAddRSVPLimit(t *testing.T) {
	repo := newTestRepo(t)
	event := createRSVPEvent(t, repo, "2")

	_, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "B", Email: "b@x.com"})
	require.NoError(t, err)

	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "C", Email: "c@x.com"})
	assert.ErrorIs(t, err, ErrEventFull)
}

// The worked example: limit 1, first guest in, second refused.
func TestAddRSVPLimitOfOne(t *testing.T) {
	repo := newTestRepo(t)
	event := createRSVPEvent(t, repo, "1")

	count, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com", Guests: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "B", Email: "b@x.com", Guests: 1})
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestAddRSVPBlankNameOrEmail(t *testing.T) {
	repo := newTestRepo(t)
	event := createRSVPEvent(t, repo, "")

	_, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "  ", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddRSVPDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	event := createRSVPEvent(t, repo, "")

	_, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "Also A", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// Comparison is exact: a case variant is a different email.
	count, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "A@x.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFullCheckedBeforeInput(t *testing.T) {
	repo := newTestRepo(t)
	event := createRSVPEvent(t, repo, "1")

	_, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	// A full event refuses even a malformed request with Full, not
	// InvalidInput: the checks run in a fixed order.
	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "", Email: ""})
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestCancelRSVP(t *testing.T) {
	repo := newTestRepo(t)
	event := createRSVPEvent(t, repo, "")

	_, err := repo.AddRSVP(event.ID, model.RSVPRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = repo.AddRSVP(event.ID, model.RSVPRequest{Name: "B", Email: "b@x.com"})
	require.NoError(t, err)

	require.NoError(t, repo.CancelRSVP(event.ID, "a@x.com"))

	fresh, err := repo.Get(event.ID)
	require.NoError(t, err)
	require.Len(t, fresh.RSVPs, 1)
	assert.Equal(t, "b@x.com", fresh.RSVPs[0].Email)

	// Cancelling an email with no RSVP is a quiet no-op.
	require.NoError(t, repo.CancelRSVP(event.ID, "nobody@x.com"))
	require.NoError(t, repo.CancelRSVP(event.ID, "a@x.com"))
}

func TestCancelRSVPUnknownEvent(t *testing.T) {
	repo := newTestRepo(t)
	assert.ErrorIs(t, repo.CancelRSVP("missing", "a@x.com"), ErrNotFound)
}
