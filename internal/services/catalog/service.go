package catalog

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"tvcatalog/internal/domain/catalog"
	"tvcatalog/internal/domain/user"
	"tvcatalog/internal/imagehost"
	"tvcatalog/internal/store/repositories"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ImageUploader stores an uploaded image and returns where it is served from.
type ImageUploader interface {
	UploadFile(ctx context.Context, fh *multipart.FileHeader) (*imagehost.Image, error)
}

// Repositories groups the stores the catalog service reads and writes.
type Repositories struct {
	Series   repositories.SeriesRepository
	Seasons  repositories.SeasonRepository
	Episodes repositories.EpisodeRepository
	Genres   repositories.GenreRepository
	Ratings  repositories.RatingRepository
	States   repositories.StateRepository
}

// SerieInput represents the fields of a new series
type SerieInput struct {
	Name         string
	AirDate      *time.Time
	InProduction bool
	Tagline      *string
	Description  *string
	Language     string
	Network      *string
	URL          *string
}

// SeasonInput represents the fields of a new season
type SeasonInput struct {
	Name     string
	Number   int
	AirDate  *time.Time
	Overview *string
}

// EpisodeInput represents the fields of a new episode
type EpisodeInput struct {
	Name     string
	Number   int
	AirDate  *time.Time
	Overview *string
}

// Service handles series, seasons, episodes, genres and per-user ratings
type Service struct {
	repos  Repositories
	images ImageUploader
}

// NewService creates a new catalog service
func NewService(repos Repositories, images ImageUploader) *Service {
	return &Service{repos: repos, images: images}
}

// ListSeries returns a page of series ordered by id
func (s *Service) ListSeries(ctx context.Context, limit, offset int) ([]catalog.Serie, error) {
	items, err := s.repos.Series.List(ctx, limit, offset)
	if err != nil {
		return nil, &ServiceError{Op: "list_series", Err: err}
	}
	return items, nil
}

// Serie finds a series by ID
func (s *Service) Serie(ctx context.Context, id int64) (*catalog.Serie, error) {
	return s.repos.Series.FindByID(ctx, id)
}

// SerieDetail loads everything shown on a series page. Genres and seasons that
// fail to load are logged and left empty; viewer may be nil.
func (s *Service) SerieDetail(ctx context.Context, serie *catalog.Serie, viewer *user.User) (*catalog.SerieDetail, error) {
	detail := &catalog.SerieDetail{
		Serie:   *serie,
		Genres:  []catalog.Genre{},
		Seasons: []catalog.Season{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		genres, err := s.repos.Series.Genres(gctx, serie.ID)
		if err != nil {
			log.Warn().Err(err).Int64("serie_id", serie.ID).Msg("unable to query genres for serie")
			return nil
		}
		detail.Genres = genres
		return nil
	})
	g.Go(func() error {
		seasons, err := s.repos.Series.Seasons(gctx, serie.ID)
		if err != nil {
			log.Warn().Err(err).Int64("serie_id", serie.ID).Msg("unable to query seasons for serie")
			return nil
		}
		detail.Seasons = seasons
		return nil
	})
	g.Go(func() error {
		sum, err := s.repos.Series.RatingSummary(gctx, serie.ID)
		if err != nil {
			return &ServiceError{Op: "rating_summary", Err: err}
		}
		detail.RatingSummary = sum
		return nil
	})
	if viewer != nil {
		g.Go(func() error {
			r, err := s.repos.Ratings.Find(gctx, viewer.ID, serie.ID)
			switch {
			case errors.Is(err, repositories.ErrNotFound):
			case err != nil:
				return &ServiceError{Op: "find_rating", Err: err}
			default:
				detail.Rating = &r.Rating
			}
			return nil
		})
		g.Go(func() error {
			st, err := s.repos.States.Find(gctx, viewer.ID, serie.ID)
			switch {
			case errors.Is(err, repositories.ErrNotFound):
			case err != nil:
				return &ServiceError{Op: "find_state", Err: err}
			default:
				detail.State = &st.State
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// CreateSerie uploads the image and stores a new series
func (s *Service) CreateSerie(ctx context.Context, in SerieInput, image *multipart.FileHeader) (*catalog.Serie, error) {
	if image == nil {
		return nil, &ValidationError{Field: "image", Message: "image is required"}
	}
	url, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	serie := &catalog.Serie{
		Name:         in.Name,
		AirDate:      in.AirDate,
		InProduction: in.InProduction,
		Tagline:      in.Tagline,
		Image:        url,
		Description:  in.Description,
		Language:     in.Language,
		Network:      in.Network,
		URL:          in.URL,
	}
	if err := s.repos.Series.Create(ctx, serie); err != nil {
		return nil, &ServiceError{Op: "create_serie", Err: err}
	}

	log.Info().Int64("serie_id", serie.ID).Str("name", serie.Name).Msg("serie created")
	return serie, nil
}

// UpdateSerie applies patch and, when given, a replacement image
func (s *Service) UpdateSerie(ctx context.Context, id int64, patch catalog.SeriePatch, image *multipart.FileHeader) (*catalog.Serie, error) {
	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		patch.Image = &url
	}
	if patch.Empty() {
		return nil, &ValidationError{Field: "", Message: "Nothing to update"}
	}

	serie, err := s.repos.Series.Update(ctx, id, patch)
	if err != nil {
		return nil, &ServiceError{Op: "update_serie", Err: err}
	}
	return serie, nil
}

// DeleteSerie removes a series with its seasons, episodes and ratings
func (s *Service) DeleteSerie(ctx context.Context, id int64) error {
	if err := s.repos.Series.Delete(ctx, id); err != nil {
		return &ServiceError{Op: "delete_serie", Err: err}
	}
	log.Info().Int64("serie_id", id).Msg("serie deleted")
	return nil
}

// ListSeasons returns a page of the seasons of a series ordered by number
func (s *Service) ListSeasons(ctx context.Context, serieID int64, limit, offset int) ([]catalog.Season, error) {
	items, err := s.repos.Seasons.List(ctx, serieID, limit, offset)
	if err != nil {
		return nil, &ServiceError{Op: "list_seasons", Err: err}
	}
	return items, nil
}

// Season finds a season by its number within a series
func (s *Service) Season(ctx context.Context, serieID int64, number int) (*catalog.Season, error) {
	return s.repos.Seasons.FindByNumber(ctx, serieID, number)
}

// SeasonDetail loads the episodes of season
func (s *Service) SeasonDetail(ctx context.Context, season *catalog.Season) (*catalog.SeasonDetail, error) {
	episodes, err := s.repos.Seasons.Episodes(ctx, season.ID)
	if err != nil {
		return nil, &ServiceError{Op: "list_episodes", Err: err}
	}
	if episodes == nil {
		episodes = []catalog.Episode{}
	}
	return &catalog.SeasonDetail{Season: *season, Episodes: episodes}, nil
}

// CreateSeason uploads the poster and stores a new season of serie
func (s *Service) CreateSeason(ctx context.Context, serie *catalog.Serie, in SeasonInput, poster *multipart.FileHeader) (*catalog.Season, error) {
	season, err := catalog.NewSeason(serie.ID, in.Name, in.Number)
	if err != nil {
		return nil, &ValidationError{Field: "number", Message: err.Error()}
	}
	season.AirDate = in.AirDate
	season.Overview = in.Overview

	if poster == nil {
		return nil, &ValidationError{Field: "image", Message: "image is required"}
	}
	url, err := s.upload(ctx, poster)
	if err != nil {
		return nil, err
	}
	season.Poster = url

	if err := s.repos.Seasons.Create(ctx, season); err != nil {
		return nil, &ServiceError{Op: "create_season", Err: err}
	}
	return season, nil
}

// DeleteSeason removes a season and its episodes
func (s *Service) DeleteSeason(ctx context.Context, serieID int64, number int) error {
	if err := s.repos.Seasons.Delete(ctx, serieID, number); err != nil {
		return &ServiceError{Op: "delete_season", Err: err}
	}
	return nil
}

// Episode finds an episode by series, season number and episode number
func (s *Service) Episode(ctx context.Context, serieID int64, seasonNumber, number int) (*catalog.Episode, error) {
	return s.repos.Episodes.Find(ctx, serieID, seasonNumber, number)
}

// CreateEpisode stores a new episode of season
func (s *Service) CreateEpisode(ctx context.Context, season *catalog.Season, in EpisodeInput) (*catalog.Episode, error) {
	ep, err := catalog.NewEpisode(season, in.Name, in.Number)
	if err != nil {
		return nil, &ValidationError{Field: "number", Message: err.Error()}
	}
	ep.AirDate = in.AirDate
	ep.Overview = in.Overview

	if err := s.repos.Episodes.Create(ctx, ep); err != nil {
		return nil, &ServiceError{Op: "create_episode", Err: err}
	}
	return ep, nil
}

// DeleteEpisode removes an episode
func (s *Service) DeleteEpisode(ctx context.Context, serieID int64, seasonNumber, number int) error {
	if err := s.repos.Episodes.Delete(ctx, serieID, seasonNumber, number); err != nil {
		return &ServiceError{Op: "delete_episode", Err: err}
	}
	return nil
}

// ListGenres returns a page of genres ordered by id
func (s *Service) ListGenres(ctx context.Context, limit, offset int) ([]catalog.Genre, error) {
	items, err := s.repos.Genres.List(ctx, limit, offset)
	if err != nil {
		return nil, &ServiceError{Op: "list_genres", Err: err}
	}
	return items, nil
}

// Genre finds a genre by name
func (s *Service) Genre(ctx context.Context, name string) (*catalog.Genre, error) {
	return s.repos.Genres.FindByName(ctx, name)
}

// CreateGenre stores a new genre
func (s *Service) CreateGenre(ctx context.Context, name string) (*catalog.Genre, error) {
	g, err := catalog.NewGenre(name)
	if err != nil {
		return nil, &ValidationError{Field: "name", Message: err.Error()}
	}
	if err := s.repos.Genres.Create(ctx, g); err != nil {
		return nil, &ServiceError{Op: "create_genre", Err: err}
	}
	return g, nil
}

// Rating finds the rating userID gave serieID
func (s *Service) Rating(ctx context.Context, userID, serieID int64) (*catalog.Rating, error) {
	return s.repos.Ratings.Find(ctx, userID, serieID)
}

// Rate creates or, when update is set, changes a user's rating of a series
func (s *Service) Rate(ctx context.Context, userID, serieID int64, value int, update bool) (*catalog.Rating, error) {
	r, err := catalog.NewRating(userID, serieID, value)
	if err != nil {
		return nil, &ValidationError{Field: "rating", Message: err.Error()}
	}
	op, save := "create_rating", s.repos.Ratings.Create
	if update {
		op, save = "update_rating", s.repos.Ratings.Update
	}
	if err := save(ctx, r); err != nil {
		return nil, &ServiceError{Op: op, Err: err}
	}
	return r, nil
}

// Unrate removes a user's rating of a series
func (s *Service) Unrate(ctx context.Context, userID, serieID int64) error {
	if err := s.repos.Ratings.Delete(ctx, userID, serieID); err != nil {
		return &ServiceError{Op: "delete_rating", Err: err}
	}
	return nil
}

// State finds the watch state userID set on serieID
func (s *Service) State(ctx context.Context, userID, serieID int64) (*catalog.State, error) {
	return s.repos.States.Find(ctx, userID, serieID)
}

// Track creates or, when update is set, changes a user's watch state of a series
func (s *Service) Track(ctx context.Context, userID, serieID int64, state catalog.WatchState, update bool) (*catalog.State, error) {
	st, err := catalog.NewState(userID, serieID, state)
	if err != nil {
		return nil, &ValidationError{Field: "state", Message: err.Error()}
	}
	op, save := "create_state", s.repos.States.Create
	if update {
		op, save = "update_state", s.repos.States.Update
	}
	if err := save(ctx, st); err != nil {
		return nil, &ServiceError{Op: op, Err: err}
	}
	return st, nil
}

// Untrack removes a user's watch state of a series
func (s *Service) Untrack(ctx context.Context, userID, serieID int64) error {
	if err := s.repos.States.Delete(ctx, userID, serieID); err != nil {
		return &ServiceError{Op: "delete_state", Err: err}
	}
	return nil
}

func (s *Service) upload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	img, err := s.images.UploadFile(ctx, fh)
	if err != nil {
		log.Error().Err(err).Str("filename", fh.Filename).Msg("unable to upload image")
		return "", &ServiceError{Op: "upload_image", Err: err}
	}
	return img.SecureURL, nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// ServiceError represents a service operation error
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("catalog service [%s]: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
