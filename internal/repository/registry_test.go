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

func TestSubscriberRegistryAdd(t *testing.T) {
	reg := NewSubscriberRegistry(store.New(t.TempDir(), slog.Default()))

	added, err := reg.Add(model.Subscriber{ID: "1", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.True(t, added)

	// Same email again: soft success, nothing written.
	added, err = reg.Add(model.Subscriber{ID: "2", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.False(t, added)

	subs, err := reg.All()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "1", subs[0].ID)
}

func TestSubscriberRegistryKeepsSignupOrder(t *testing.T) {
	reg := NewSubscriberRegistry(store.New(t.TempDir(), slog.Default()))

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := reg.Add(model.Subscriber{Email: email})
		require.NoError(t, err)
	}

	subs, err := reg.All()
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "a@x.com", subs[0].Email)
	assert.Equal(t, "c@x.com", subs[2].Email)
}

func TestSubmissionRegistryAdd(t *testing.T) {
	reg := NewSubmissionRegistry(store.New(t.TempDir(), slog.Default()))

	sub := model.Submission{
		ID:              "sub_20260828120000",
		Name:            "The Duo",
		Email:           "duo@example.com",
		PerformanceType: "music",
		SubmissionDate:  time.Now(),
		Status:          "pending",
	}
	added, err := reg.Add(sub)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = reg.Add(model.Submission{Email: "duo@example.com"})
	require.NoError(t, err)
	assert.False(t, added)

	all, err := reg.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "The Duo", all[0].Name)
}
