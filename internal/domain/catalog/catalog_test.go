package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRating(t *testing.T) {
	r, err := NewRating(1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)

	_, err = NewRating(1, 2, 6)
	assert.Error(t, err)
	_, err = NewRating(0, 2, 3)
	assert.Error(t, err)
}

func TestWatchState(t *testing.T) {
	for _, s := range WatchStates {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, WatchState("binged").IsValid())

	_, err := NewState(1, 1, "binged")
	assert.Error(t, err)
}

func TestNewEpisode(t *testing.T) {
	season := &Season{ID: 7, SerieID: 3, Number: 2}

	ep, err := NewEpisode(season, " Pilot ", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ep.SerieID)
	assert.Equal(t, int64(7), ep.SeasonID)
	assert.Equal(t, "Pilot", ep.Name)

	_, err = NewEpisode(&Season{}, "Pilot", 1)
	assert.Error(t, err)
}

func TestSeriePatch_Empty(t *testing.T) {
	assert.True(t, SeriePatch{}.Empty())
	name := "Dark"
	assert.False(t, SeriePatch{Name: &name}.Empty())
}

func TestSerieDetail_JSON(t *testing.T) {
	avg := 4.5
	rating := 4
	state := StateWatching
	d := SerieDetail{
		Serie:         Serie{ID: 1, Name: "Dark", Language: "de"},
		Genres:        []Genre{{ID: 1, Name: "Drama"}},
		Seasons:       []Season{},
		RatingSummary: RatingSummary{Average: &avg, Count: 2},
		Rating:        &rating,
		State:         &state,
	}

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Dark", got["name"])
	assert.Equal(t, 4.5, got["averageRating"])
	assert.Equal(t, float64(2), got["ratingCount"])
	assert.Equal(t, "watching", got["state"])
	assert.Len(t, got["genres"], 1)
}
