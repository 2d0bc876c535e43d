// Package memory implements the repositories in process memory. It backs the
// handler and service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"tvcatalog/internal/domain/catalog"
	"tvcatalog/internal/domain/user"
	"tvcatalog/internal/store/repositories"
)

// Store holds every table. The repositories returned by its accessors share it.
type Store struct {
	mu sync.RWMutex

	nextID      int64
	series      map[int64]catalog.Serie
	serieGenres map[int64][]int64
	seasons     map[int64]catalog.Season
	episodes    map[int64]catalog.Episode
	genres      map[int64]catalog.Genre
	users       map[int64]user.User
	ratings     map[int64]catalog.Rating
	states      map[int64]catalog.State

	// Fail, when set, is returned by every operation.
	Fail error
}

func New() *Store {
	return &Store{
		series:      map[int64]catalog.Serie{},
		serieGenres: map[int64][]int64{},
		seasons:     map[int64]catalog.Season{},
		episodes:    map[int64]catalog.Episode{},
		genres:      map[int64]catalog.Genre{},
		users:       map[int64]user.User{},
		ratings:     map[int64]catalog.Rating{},
		states:      map[int64]catalog.State{},
	}
}

func (s *Store) Series() repositories.SeriesRepository   { return seriesRepo{s} }
func (s *Store) Seasons() repositories.SeasonRepository  { return seasonRepo{s} }
func (s *Store) Episodes() repositories.EpisodeRepository { return episodeRepo{s} }
func (s *Store) Genres() repositories.GenreRepository    { return genreRepo{s} }
func (s *Store) Users() repositories.UserRepository      { return userRepo{s} }
func (s *Store) Ratings() repositories.RatingRepository  { return ratingRepo{s} }
func (s *Store) States() repositories.StateRepository    { return stateRepo{s} }

// TagSerie links a genre to a series.
func (s *Store) TagSerie(serieID, genreID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serieGenres[serieID] = append(s.serieGenres[serieID], genreID)
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// page returns the window [offset, offset+limit) of the values of m ordered by less.
func page[T any](m map[int64]T, keep func(T) bool, less func(a, b T) bool, limit, offset int) []T {
	all := make([]T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			all = append(all, v)
		}
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

type seriesRepo struct{ s *Store }

func (r seriesRepo) List(_ context.Context, limit, offset int) ([]catalog.Serie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	return page(r.s.series, nil, func(a, b catalog.Serie) bool { return a.ID < b.ID }, limit, offset), nil
}

func (r seriesRepo) FindByID(_ context.Context, id int64) (*catalog.Serie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	v, ok := r.s.series[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

func (r seriesRepo) Genres(_ context.Context, serieID int64) ([]catalog.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	out := []catalog.Genre{}
	for _, id := range r.s.serieGenres[serieID] {
		out = append(out, r.s.genres[id])
	}
	return out, nil
}

func (r seriesRepo) Seasons(_ context.Context, serieID int64) ([]catalog.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	return page(r.s.seasons,
		func(v catalog.Season) bool { return v.SerieID == serieID },
		func(a, b catalog.Season) bool { return a.Number < b.Number }, -1, 0), nil
}

func (r seriesRepo) RatingSummary(_ context.Context, serieID int64) (catalog.RatingSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return catalog.RatingSummary{}, r.s.Fail
	}
	var sum catalog.RatingSummary
	total := 0
	for _, rt := range r.s.ratings {
		if rt.SerieID == serieID {
			sum.Count++
			total += rt.Rating
		}
	}
	if sum.Count > 0 {
		avg := float64(total) / float64(sum.Count)
		sum.Average = &avg
	}
	return sum, nil
}

func (r seriesRepo) Create(_ context.Context, v *catalog.Serie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	v.ID = r.s.id()
	r.s.series[v.ID] = *v
	return nil
}

func (r seriesRepo) Update(_ context.Context, id int64, p catalog.SeriePatch) (*catalog.Serie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	v, ok := r.s.series[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.AirDate != nil {
		d := *p.AirDate
		v.AirDate = &d
	}
	if p.InProduction != nil {
		v.InProduction = *p.InProduction
	}
	if p.Tagline != nil {
		v.Tagline = p.Tagline
	}
	if p.Image != nil {
		v.Image = *p.Image
	}
	if p.Description != nil {
		v.Description = p.Description
	}
	if p.Language != nil {
		v.Language = *p.Language
	}
	if p.Network != nil {
		v.Network = p.Network
	}
	if p.URL != nil {
		v.URL = p.URL
	}
	r.s.series[id] = v
	return &v, nil
}

func (r seriesRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	if _, ok := r.s.series[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.series, id)
	delete(r.s.serieGenres, id)
	for k, v := range r.s.seasons {
		if v.SerieID == id {
			delete(r.s.seasons, k)
		}
	}
	for k, v := range r.s.episodes {
		if v.SerieID == id {
			delete(r.s.episodes, k)
		}
	}
	for k, v := range r.s.ratings {
		if v.SerieID == id {
			delete(r.s.ratings, k)
		}
	}
	for k, v := range r.s.states {
		if v.SerieID == id {
			delete(r.s.states, k)
		}
	}
	return nil
}

type seasonRepo struct{ s *Store }

func (r seasonRepo) List(_ context.Context, serieID int64, limit, offset int) ([]catalog.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	return page(r.s.seasons,
		func(v catalog.Season) bool { return v.SerieID == serieID },
		func(a, b catalog.Season) bool { return a.Number < b.Number }, limit, offset), nil
}

func (r seasonRepo) FindByNumber(_ context.Context, serieID int64, number int) (*catalog.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	for _, v := range r.s.seasons {
		if v.SerieID == serieID && v.Number == number {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r seasonRepo) Episodes(_ context.Context, seasonID int64) ([]catalog.Episode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	return page(r.s.episodes,
		func(v catalog.Episode) bool { return v.SeasonID == seasonID },
		func(a, b catalog.Episode) bool { return a.Number < b.Number }, -1, 0), nil
}

func (r seasonRepo) Create(_ context.Context, v *catalog.Season) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	v.ID = r.s.id()
	r.s.seasons[v.ID] = *v
	return nil
}

func (r seasonRepo) Delete(_ context.Context, serieID int64, number int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	for k, v := range r.s.seasons {
		if v.SerieID == serieID && v.Number == number {
			delete(r.s.seasons, k)
			for ek, e := range r.s.episodes {
				if e.SeasonID == k {
					delete(r.s.episodes, ek)
				}
			}
			return nil
		}
	}
	return repositories.ErrNotFound
}

type episodeRepo struct{ s *Store }

func (r episodeRepo) Find(_ context.Context, serieID int64, seasonNumber, number int) (*catalog.Episode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	for _, v := range r.s.episodes {
		if v.SerieID == serieID && v.SeasonNumber == seasonNumber && v.Number == number {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r episodeRepo) Create(_ context.Context, v *catalog.Episode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	if season, ok := r.s.seasons[v.SeasonID]; ok {
		v.SeasonNumber = season.Number
	}
	v.ID = r.s.id()
	r.s.episodes[v.ID] = *v
	return nil
}

func (r episodeRepo) Delete(_ context.Context, serieID int64, seasonNumber, number int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	for k, v := range r.s.episodes {
		if v.SerieID == serieID && v.SeasonNumber == seasonNumber && v.Number == number {
			delete(r.s.episodes, k)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type genreRepo struct{ s *Store }

func (r genreRepo) List(_ context.Context, limit, offset int) ([]catalog.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	return page(r.s.genres, nil, func(a, b catalog.Genre) bool { return a.ID < b.ID }, limit, offset), nil
}

func (r genreRepo) FindByName(_ context.Context, name string) (*catalog.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	for _, v := range r.s.genres {
		if v.Name == name {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r genreRepo) Create(_ context.Context, v *catalog.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	v.ID = r.s.id()
	r.s.genres[v.ID] = *v
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) List(_ context.Context, limit, offset int) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	return page(r.s.users, nil, func(a, b user.User) bool { return a.ID < b.ID }, limit, offset), nil
}

func (r userRepo) find(match func(user.User) bool) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	for _, v := range r.s.users {
		if match(v) {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.ID == id })
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Username == username })
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r userRepo) Create(_ context.Context, v *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	now := time.Now().UTC()
	v.ID = r.s.id()
	v.Created, v.Updated = now, now
	r.s.users[v.ID] = *v
	return nil
}

func (r userRepo) UpdateProfile(_ context.Context, id int64, email, passwordHash *string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	v, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if email != nil {
		v.Email = *email
	}
	if passwordHash != nil {
		v.Password = *passwordHash
	}
	v.Updated = time.Now().UTC()
	r.s.users[id] = v
	return &v, nil
}

func (r userRepo) SetAdmin(_ context.Context, id int64, admin bool) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	v, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	v.Admin = admin
	v.Updated = time.Now().UTC()
	r.s.users[id] = v
	return &v, nil
}

type ratingRepo struct{ s *Store }

func (r ratingRepo) Find(_ context.Context, userID, serieID int64) (*catalog.Rating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	for _, v := range r.s.ratings {
		if v.UserID == userID && v.SerieID == serieID {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r ratingRepo) Create(_ context.Context, v *catalog.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	v.ID = r.s.id()
	r.s.ratings[v.ID] = *v
	return nil
}

func (r ratingRepo) Update(_ context.Context, v *catalog.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	for k, cur := range r.s.ratings {
		if cur.UserID == v.UserID && cur.SerieID == v.SerieID {
			v.ID = k
			r.s.ratings[k] = *v
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r ratingRepo) Delete(_ context.Context, userID, serieID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	for k, cur := range r.s.ratings {
		if cur.UserID == userID && cur.SerieID == serieID {
			delete(r.s.ratings, k)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type stateRepo struct{ s *Store }

func (r stateRepo) Find(_ context.Context, userID, serieID int64) (*catalog.State, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	for _, v := range r.s.states {
		if v.UserID == userID && v.SerieID == serieID {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r stateRepo) Create(_ context.Context, v *catalog.State) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	v.ID = r.s.id()
	r.s.states[v.ID] = *v
	return nil
}

func (r stateRepo) Update(_ context.Context, v *catalog.State) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	for k, cur := range r.s.states {
		if cur.UserID == v.UserID && cur.SerieID == v.SerieID {
			v.ID = k
			r.s.states[k] = *v
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r stateRepo) Delete(_ context.Context, userID, serieID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	for k, cur := range r.s.states {
		if cur.UserID == userID && cur.SerieID == serieID {
			delete(r.s.states, k)
			return nil
		}
	}
	return repositories.ErrNotFound
}
