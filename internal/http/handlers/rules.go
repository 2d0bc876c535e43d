package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"tvcatalog/internal/core/validation"
	"tvcatalog/internal/domain/catalog"
	"tvcatalog/internal/domain/user"
	middlewarex "tvcatalog/internal/http/middleware"
	"tvcatalog/internal/services/account"
	catalogsvc "tvcatalog/internal/services/catalog"
	"tvcatalog/internal/store/repositories"
)

// Keys resources are attached under by the rules.
const (
	keySerie   = "serie"
	keySeason  = "season"
	keyEpisode = "episode"
	keyUser    = "user"
	keyLogin   = "login"
)

const (
	msgSerieID    = "serieId must be an integer larger than 0"
	msgSeasonID   = "seasonId must be an integer larger than 0"
	msgEpisodeID  = "episodeId must be an integer larger than 0"
	msgUserID     = "id must be an integer larger than 0"
	msgName       = "name is required, max 128 characters"
	msgUsername   = "username is required, max 256 characters"
	msgEmail      = "email is required, max 256 characters"
	msgPassword   = "password is required, min 10 characters, max 256 characters"
	msgNumber     = "number must be an integer larger than 0"
	msgAirDate    = "airDate must be a date"
	msgOverview   = "overview must be a string"
	msgLogin      = "username or password incorrect"
	msgAdminCheck = "admin cannot change self"
)

var seriesFields = []string{"name", "airDate", "inProduction", "tagline", "image", "description", "language", "network", "url"}

// Rules builds the rule set of every route from the services the rules consult.
type Rules struct {
	Accounts *account.Service
	Catalog  *catalogsvc.Service
}

// found turns a repository miss into the (nil, nil) a Fetcher reports.
func found[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func parseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}

func join(sets ...[]validation.Rule) []validation.Rule {
	var out []validation.Rule
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// Paging validates offset and limit of list routes.
func (rs Rules) Paging() []validation.Rule {
	return validation.PagingRules()
}

// SerieExists resolves {id} to a series.
func (rs Rules) SerieExists() []validation.Rule {
	return []validation.Rule{
		validation.Param("id", validation.IntMin(1), msgSerieID).Bailing(),
		validation.ResourceExists("id", keySerie, func(ctx context.Context, id string, _ *validation.Request) (*catalog.Serie, error) {
			n, _ := parseID(id)
			return found(rs.Catalog.Serie(ctx, n))
		}).Bailing(),
	}
}

// SerieDetail resolves {id} to a series with its genres, seasons and the
// caller's own rating and state.
func (rs Rules) SerieDetail() []validation.Rule {
	return []validation.Rule{
		validation.Param("id", validation.IntMin(1), msgSerieID).Bailing(),
		validation.ResourceExists("id", keySerie, func(ctx context.Context, id string, req *validation.Request) (*catalog.SerieDetail, error) {
			n, _ := parseID(id)
			s, err := found(rs.Catalog.Serie(ctx, n))
			if s == nil || err != nil {
				return nil, err
			}
			viewer, _ := middlewarex.User(req.Context())
			return rs.Catalog.SerieDetail(ctx, s, viewer)
		}),
	}
}

func (rs Rules) seasonParam() []validation.Rule {
	return []validation.Rule{
		validation.Param("season", validation.IntMin(1), msgSeasonID).Bailing(),
		validation.ResourceExists("season", keySeason, func(ctx context.Context, number string, req *validation.Request) (*catalog.Season, error) {
			serieID, ok := parseID(req.Param("id"))
			if !ok {
				return nil, validation.ErrSkip
			}
			n, _ := parseID(number)
			return found(rs.Catalog.Season(ctx, serieID, int(n)))
		}).Bailing(),
	}
}

// SeasonExists resolves {id} and {season}.
func (rs Rules) SeasonExists() []validation.Rule {
	return join(rs.SerieExists(), rs.seasonParam())
}

// EpisodeExists resolves {id}, {season} and {episode}.
func (rs Rules) EpisodeExists() []validation.Rule {
	return join(rs.SeasonExists(), []validation.Rule{
		validation.Param("episode", validation.IntMin(1), msgEpisodeID).Bailing(),
		validation.ResourceExists("episode", keyEpisode, func(ctx context.Context, number string, req *validation.Request) (*catalog.Episode, error) {
			serieID, ok := parseID(req.Param("id"))
			if !ok {
				return nil, validation.ErrSkip
			}
			season, ok := parseID(req.Param("season"))
			if !ok {
				return nil, validation.ErrSkip
			}
			n, _ := parseID(number)
			return found(rs.Catalog.Episode(ctx, serieID, int(season), int(n)))
		}),
	})
}

// serieBody checks the fields of a series. On PATCH every field is optional.
func serieBody() []validation.Rule {
	onPatch := validation.OptionalOnPatch
	return []validation.Rule{
		validation.Body("name", validation.Length(1, 256), msgName).If(onPatch("name")),
		validation.Body("airDate", validation.Date(), msgAirDate).If(onPatch("airDate")),
		validation.Body("inProduction", validation.Exists(), "inproduction is required").If(onPatch("inProduction")),
		validation.Body("inProduction", validation.Boolean(), "inproduction must be a boolean").If(onPatch("inProduction")),
		validation.Body("tagline", validation.IsString(), "tagline must be a string").AsOptional(),
		validation.Image("image"),
		validation.Body("description", validation.All(validation.IsString(), validation.Length(1, 0)), "description must be a string").If(onPatch("description")),
		validation.Body("language", validation.All(validation.IsString(), validation.Length(2, 2)), "language must be a string of length 2").If(onPatch("language")),
		validation.Body("network", validation.IsString(), "network must be a string").AsOptional(),
		validation.Body("url", validation.IsString(), "url must be a string").AsOptional(),
	}
}

// CreateSerie validates a new series.
func (rs Rules) CreateSerie() []validation.Rule {
	return serieBody()
}

// UpdateSerie validates a partial series update.
func (rs Rules) UpdateSerie() []validation.Rule {
	return join(rs.SerieExists(), serieBody(), []validation.Rule{validation.AtLeastOneOf(seriesFields...)})
}

// CreateSeason validates a new season of {id}.
func (rs Rules) CreateSeason() []validation.Rule {
	return join(rs.SerieExists(), []validation.Rule{
		validation.Body("name", validation.Length(1, 256), msgName),
		validation.Body("number", validation.IntMin(1), msgNumber).Bailing(),
		validation.Body("number", func(ctx context.Context, value any, req *validation.Request) error {
			serieID, ok := parseID(req.Param("id"))
			if !ok {
				return validation.ErrSkip
			}
			n, _ := validation.Int(value)
			s, err := found(rs.Catalog.Season(ctx, serieID, int(n)))
			if err != nil {
				return err
			}
			if s != nil {
				return validation.ErrInvalid
			}
			return nil
		}, "season already exists"),
		validation.Body("airDate", validation.Date(), msgAirDate).AsOptional(),
		validation.Body("overview", validation.IsString(), msgOverview).AsOptional(),
		validation.Image("image"),
	})
}

// CreateEpisode validates a new episode of {id}/{season}.
func (rs Rules) CreateEpisode() []validation.Rule {
	return join(rs.SeasonExists(), []validation.Rule{
		validation.Body("name", validation.Length(1, 256), msgName),
		validation.Body("number", validation.IntMin(1), msgNumber).Bailing(),
		validation.Body("number", func(ctx context.Context, value any, req *validation.Request) error {
			serieID, ok := parseID(req.Param("id"))
			if !ok {
				return validation.ErrSkip
			}
			season, ok := parseID(req.Param("season"))
			if !ok {
				return validation.ErrSkip
			}
			n, _ := validation.Int(value)
			e, err := found(rs.Catalog.Episode(ctx, serieID, int(season), int(n)))
			if err != nil {
				return err
			}
			if e != nil {
				return validation.ErrInvalid
			}
			return nil
		}, "episode already exists"),
		validation.Body("airDate", validation.Date(), msgAirDate).AsOptional(),
		validation.Body("overview", validation.IsString(), msgOverview).AsOptional(),
	})
}

// CreateGenre validates a new genre.
func (rs Rules) CreateGenre() []validation.Rule {
	return []validation.Rule{
		validation.Body("name", validation.Length(1, 128), msgName).Bailing(),
		validation.Body("name", func(ctx context.Context, value any, _ *validation.Request) error {
			g, err := found(rs.Catalog.Genre(ctx, validation.String(value)))
			if err != nil {
				return err
			}
			if g != nil {
				return validation.ErrInvalid
			}
			return nil
		}, "genre already exists"),
	}
}

// userRating and userState fetch the caller's row for {id}.
func (rs Rules) userRating(ctx context.Context, id string, req *validation.Request) (*catalog.Rating, error) {
	u, ok := middlewarex.User(req.Context())
	if !ok {
		return nil, nil
	}
	n, _ := parseID(id)
	return found(rs.Catalog.Rating(ctx, u.ID, n))
}

func (rs Rules) userState(ctx context.Context, id string, req *validation.Request) (*catalog.State, error) {
	u, ok := middlewarex.User(req.Context())
	if !ok {
		return nil, nil
	}
	n, _ := parseID(id)
	return found(rs.Catalog.State(ctx, u.ID, n))
}

func ratingBody() validation.Rule {
	return validation.Body("rating", validation.OneOf(catalog.Ratings...), "rating must be an integer, one of 0, 1, 2, 3, 4, 5")
}

func stateBody() validation.Rule {
	return validation.Body("state", validation.OneOf(catalog.WatchStates...), `state must be one of "want to watch", "watching", "watched"`)
}

// CreateRating requires the series to exist and the caller not to have rated it.
func (rs Rules) CreateRating() []validation.Rule {
	return join(rs.SerieExists(), []validation.Rule{
		validation.ResourceNotExists("id", rs.userRating),
		ratingBody(),
	})
}

// UpdateRating requires the caller's rating to exist.
func (rs Rules) UpdateRating() []validation.Rule {
	return join(rs.SerieExists(), []validation.Rule{
		validation.ResourceExists("id", "rating", rs.userRating),
		ratingBody(),
	})
}

// DeleteRating requires the caller's rating to exist.
func (rs Rules) DeleteRating() []validation.Rule {
	return join(rs.SerieExists(), []validation.Rule{
		validation.ResourceExists("id", "rating", rs.userRating),
	})
}

// CreateState requires the series to exist and the caller to have no state on it.
func (rs Rules) CreateState() []validation.Rule {
	return join(rs.SerieExists(), []validation.Rule{
		validation.ResourceNotExists("id", rs.userState),
		stateBody(),
	})
}

// UpdateState requires the caller's state to exist.
func (rs Rules) UpdateState() []validation.Rule {
	return join(rs.SerieExists(), []validation.Rule{
		validation.ResourceExists("id", "state", rs.userState),
		stateBody(),
	})
}

// DeleteState requires the caller's state to exist.
func (rs Rules) DeleteState() []validation.Rule {
	return join(rs.SerieExists(), []validation.Rule{
		validation.ResourceExists("id", "state", rs.userState),
	})
}

// notTaken fails when find returns a user.
func notTaken(find func(context.Context, string) (*user.User, error)) validation.Predicate {
	return func(ctx context.Context, value any, _ *validation.Request) error {
		u, err := found(find(ctx, validation.String(value)))
		if err != nil {
			return err
		}
		if u != nil {
			return validation.ErrInvalid
		}
		return nil
	}
}

// Register validates a new account.
func (rs Rules) Register() []validation.Rule {
	return []validation.Rule{
		validation.Body("username", validation.Length(1, 256), msgUsername).Bailing(),
		validation.Body("username", notTaken(rs.Accounts.ByUsername), "username already exists"),
		validation.Body("email", validation.All(validation.Length(1, 256), validation.Email()), msgEmail).Bailing(),
		validation.Body("email", notTaken(rs.Accounts.ByEmail), "email already exists"),
		validation.Body("password", validation.Length(10, 256), msgPassword),
	}
}

// Login validates credentials and attaches the authenticated user.
func (rs Rules) Login() []validation.Rule {
	return []validation.Rule{
		validation.Body("username", validation.Length(1, 256), msgUsername),
		validation.Body("password", validation.Length(10, 256), msgPassword),
		validation.Body("username", func(ctx context.Context, value any, req *validation.Request) error {
			username, _ := value.(string)
			password, _ := req.BodyString("password")
			if username == "" || password == "" {
				return validation.ErrSkip
			}
			u, err := rs.Accounts.CheckCredentials(ctx, username, password)
			if errors.Is(err, account.ErrInvalidCredentials) {
				return validation.ErrInvalid
			}
			if err != nil {
				return err
			}
			req.Attach(keyLogin, u)
			return nil
		}, msgLogin).WithKind(validation.KindUnauthorized),
	}
}

// UpdateMe validates a profile update of the caller.
func (rs Rules) UpdateMe() []validation.Rule {
	return []validation.Rule{
		validation.AtLeastOneOf("email", "password"),
		validation.Body("email", validation.All(validation.Length(1, 256), validation.Email()), msgEmail).AsOptional().Bailing(),
		validation.Body("email", func(ctx context.Context, value any, req *validation.Request) error {
			other, err := found(rs.Accounts.ByEmail(ctx, validation.String(value)))
			if err != nil {
				return err
			}
			if me, ok := middlewarex.User(req.Context()); ok && other != nil && other.ID != me.ID {
				return validation.ErrInvalid
			}
			return nil
		}, "email already exists").AsOptional(),
		validation.Body("password", validation.Length(10, 256), msgPassword).AsOptional(),
	}
}

// UserExists resolves {id} to a user.
func (rs Rules) UserExists() []validation.Rule {
	return []validation.Rule{
		validation.Param("id", validation.IntMin(1), msgUserID).Bailing(),
		validation.ResourceExists("id", keyUser, func(ctx context.Context, id string, _ *validation.Request) (*user.User, error) {
			n, _ := parseID(id)
			return found(rs.Accounts.User(ctx, n))
		}),
	}
}

// SetAdmin validates an admin flag change on {id}; admins cannot change
// themselves.
func (rs Rules) SetAdmin() []validation.Rule {
	return join(rs.UserExists(), []validation.Rule{
		validation.Body("admin", validation.Exists(), "admin is required"),
		validation.Body("admin", validation.Boolean(), "admin must be a boolean").Bailing(),
		validation.Body("admin", func(_ context.Context, _ any, req *validation.Request) error {
			target, ok := parseID(req.Param("id"))
			me, known := middlewarex.User(req.Context())
			if !ok || !known || target == me.ID {
				return validation.ErrInvalid
			}
			return nil
		}, msgAdminCheck),
	})
}

// request body accessors used by the handlers after the rules passed

func bodyString(req *validation.Request, field string) string {
	return validation.String(req.Body[field])
}

func bodyOptString(req *validation.Request, field string) *string {
	v, ok := req.Body[field]
	if !ok || v == nil {
		return nil
	}
	s := validation.String(v)
	return &s
}

// patchString is bodyOptString with empty values treated as absent.
func patchString(req *validation.Request, field string) *string {
	s := bodyOptString(req, field)
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func bodyInt(req *validation.Request, field string) int {
	n, _ := validation.Int(req.Body[field])
	return int(n)
}

func bodyBool(req *validation.Request, field string) *bool {
	b, ok := validation.Bool(req.Body[field])
	if !ok {
		return nil
	}
	return &b
}

func bodyDate(req *validation.Request, field string) *time.Time {
	s := validation.String(req.Body[field])
	if s == "" {
		return nil
	}
	t, ok := validation.ParseDate(s)
	if !ok {
		return nil
	}
	return &t
}
