package catalog

import "fmt"

const (
	MinRating = 0
	MaxRating = 5
)

// Ratings lists every accepted rating value.
var Ratings = []int{0, 1, 2, 3, 4, 5}

// WatchState is a user's viewing progress on a series.
type WatchState string

const (
	StateWantToWatch WatchState = "want to watch"
	StateWatching    WatchState = "watching"
	StateWatched     WatchState = "watched"
)

// WatchStates lists every accepted state in display order.
var WatchStates = []WatchState{StateWantToWatch, StateWatching, StateWatched}

// IsValid checks if the state is one of WatchStates
func (s WatchState) IsValid() bool {
	switch s {
	case StateWantToWatch, StateWatching, StateWatched:
		return true
	}
	return false
}

// Rating is one user's rating of a series.
type Rating struct {
	ID      int64 `json:"id"`
	UserID  int64 `json:"user"`
	SerieID int64 `json:"serieId"`
	Rating  int   `json:"rating"`
}

// State is one user's watch state of a series.
type State struct {
	ID      int64      `json:"id"`
	UserID  int64      `json:"user"`
	SerieID int64      `json:"serieId"`
	State   WatchState `json:"state"`
}

// NewRating creates a rating with validation
func NewRating(userID, serieID int64, rating int) (*Rating, error) {
	if userID <= 0 || serieID <= 0 {
		return nil, fmt.Errorf("rating requires user and serie")
	}
	if rating < MinRating || rating > MaxRating {
		return nil, fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	}
	return &Rating{UserID: userID, SerieID: serieID, Rating: rating}, nil
}

// NewState creates a watch state with validation
func NewState(userID, serieID int64, state WatchState) (*State, error) {
	if userID <= 0 || serieID <= 0 {
		return nil, fmt.Errorf("state requires user and serie")
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid state: %q", state)
	}
	return &State{UserID: userID, SerieID: serieID, State: state}, nil
}
