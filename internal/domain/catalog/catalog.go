package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Serie is a TV series.
type Serie struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	AirDate      *time.Time `json:"air_date"`
	InProduction bool       `json:"in_production"`
	Tagline      *string    `json:"tagline"`
	Image        string     `json:"image"`
	Description  *string    `json:"description"`
	Language     string     `json:"language"`
	Network      *string    `json:"network"`
	URL          *string    `json:"url"`
}

// SeriePatch carries the columns of a partial series update. Nil fields are
// left untouched.
type SeriePatch struct {
	Name         *string
	AirDate      *time.Time
	InProduction *bool
	Tagline      *string
	Image        *string
	Description  *string
	Language     *string
	Network      *string
	URL          *string
}

// Empty reports whether the patch changes nothing.
func (p SeriePatch) Empty() bool {
	return p.Name == nil && p.AirDate == nil && p.InProduction == nil && p.Tagline == nil &&
		p.Image == nil && p.Description == nil && p.Language == nil && p.Network == nil && p.URL == nil
}

// RatingSummary aggregates the ratings of a series.
type RatingSummary struct {
	Average *float64 `json:"averageRating"`
	Count   int      `json:"ratingCount"`
}

// SerieDetail is a series with its genres, seasons, rating summary and the
// viewer's own rating and watch state when a user is known.
type SerieDetail struct {
	Serie
	Genres  []Genre  `json:"genres"`
	Seasons []Season `json:"seasons"`
	RatingSummary
	Rating *int        `json:"rating,omitempty"`
	State  *WatchState `json:"state,omitempty"`
}

// Season of a series. Seasons are addressed by their number within the series.
type Season struct {
	ID       int64      `json:"id"`
	SerieID  int64      `json:"serieId"`
	Name     string     `json:"name"`
	Number   int        `json:"number"`
	AirDate  *time.Time `json:"air_date"`
	Overview *string    `json:"overview"`
	Poster   string     `json:"poster"`
}

// SeasonDetail is a season with its episodes.
type SeasonDetail struct {
	Season
	Episodes []Episode `json:"episodes"`
}

// Episode of a season.
type Episode struct {
	ID           int64      `json:"id"`
	SerieID      int64      `json:"serieId"`
	SeasonID     int64      `json:"seasonId"`
	SeasonNumber int        `json:"seasonNumber,omitempty"`
	Name         string     `json:"name"`
	Number       int        `json:"number"`
	AirDate      *time.Time `json:"air_date"`
	Overview     *string    `json:"overview"`
}

// Genre of a series.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewGenre creates a genre with validation
func NewGenre(name string) (*Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("genre name is required")
	}
	if len(name) > 128 {
		return nil, fmt.Errorf("genre name must be at most 128 characters")
	}
	return &Genre{Name: name}, nil
}

// NewSeason creates a season with validation
func NewSeason(serieID int64, name string, number int) (*Season, error) {
	if serieID <= 0 {
		return nil, fmt.Errorf("invalid serie ID: %d", serieID)
	}
	if number < 1 {
		return nil, fmt.Errorf("season number must be larger than 0")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("season name is required")
	}
	return &Season{SerieID: serieID, Name: strings.TrimSpace(name), Number: number}, nil
}

// NewEpisode creates an episode of season with validation
func NewEpisode(season *Season, name string, number int) (*Episode, error) {
	if season == nil || season.ID <= 0 {
		return nil, fmt.Errorf("episode requires a stored season")
	}
	if number < 1 {
		return nil, fmt.Errorf("episode number must be larger than 0")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("episode name is required")
	}
	return &Episode{
		SerieID:      season.SerieID,
		SeasonID:     season.ID,
		SeasonNumber: season.Number,
		Name:         strings.TrimSpace(name),
		Number:       number,
	}, nil
}
