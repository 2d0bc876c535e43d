package httpx

import (
	"net/http"

	"tvcatalog/internal/core/paging"
	"tvcatalog/internal/core/validation"
	"tvcatalog/internal/http/handlers"
	middlewarex "tvcatalog/internal/http/middleware"
	"tvcatalog/internal/ratelimit"
	"tvcatalog/internal/services/account"
	catalogsvc "tvcatalog/internal/services/catalog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	Accounts *account.Service
	Catalog  *catalogsvc.Service
	Links    paging.Builder
	// LoginLimiter is optional; nil disables login attempt limiting.
	LoginLimiter ratelimit.Limiter
}

// NewRouter creates the HTTP router. Every route runs its validation rules
// through a gate after authentication.
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middlewarex.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(middlewarex.RequireBodyType)

	r.NotFound(handlers.NotFound())
	r.MethodNotAllowed(handlers.NotFound())

	rules := handlers.Rules{Accounts: deps.Accounts, Catalog: deps.Catalog}
	gate := func(rs []validation.Rule) func(http.Handler) http.Handler {
		return validation.Gate(rs...)
	}
	user := middlewarex.RequireUser(deps.Accounts)
	admin := chi.Chain(user, middlewarex.RequireAdmin)

	r.Get("/", handlers.Index())

	r.Route("/tv", func(r chi.Router) {
		r.With(gate(rules.Paging())).Get("/", handlers.ListSeries(deps.Catalog, deps.Links))
		r.With(admin...).With(gate(rules.CreateSerie())).Post("/", handlers.CreateSerie(deps.Catalog))

		r.Route("/{id}", func(r chi.Router) {
			r.With(middlewarex.OptionalUser(deps.Accounts), gate(rules.SerieDetail())).Get("/", handlers.GetSerie())
			r.With(admin...).With(gate(rules.UpdateSerie())).Patch("/", handlers.UpdateSerie(deps.Catalog))
			r.With(admin...).With(gate(rules.SerieExists())).Delete("/", handlers.DeleteSerie(deps.Catalog))

			r.With(user, gate(rules.CreateRating())).Post("/rate", handlers.Rate(deps.Catalog))
			r.With(user, gate(rules.UpdateRating())).Patch("/rate", handlers.Rate(deps.Catalog))
			r.With(user, gate(rules.DeleteRating())).Delete("/rate", handlers.Unrate(deps.Catalog))
			r.With(user, gate(rules.CreateState())).Post("/state", handlers.Track(deps.Catalog))
			r.With(user, gate(rules.UpdateState())).Patch("/state", handlers.Track(deps.Catalog))
			r.With(user, gate(rules.DeleteState())).Delete("/state", handlers.Untrack(deps.Catalog))

			r.Route("/season", func(r chi.Router) {
				r.With(gate(append(rules.SerieExists(), rules.Paging()...))).Get("/", handlers.ListSeasons(deps.Catalog, deps.Links))
				r.With(admin...).With(gate(rules.CreateSeason())).Post("/", handlers.CreateSeason(deps.Catalog))

				r.Route("/{season}", func(r chi.Router) {
					r.With(gate(rules.SeasonExists())).Get("/", handlers.GetSeason(deps.Catalog))
					r.With(admin...).With(gate(rules.SeasonExists())).Delete("/", handlers.DeleteSeason(deps.Catalog))

					r.With(admin...).With(gate(rules.CreateEpisode())).Post("/episode", handlers.CreateEpisode(deps.Catalog))
					r.With(gate(rules.EpisodeExists())).Get("/episode/{episode}", handlers.GetEpisode())
					r.With(admin...).With(gate(rules.EpisodeExists())).Delete("/episode/{episode}", handlers.DeleteEpisode(deps.Catalog))
				})
			})
		})
	})

	r.Route("/genres", func(r chi.Router) {
		r.With(gate(rules.Paging())).Get("/", handlers.ListGenres(deps.Catalog, deps.Links))
		r.With(admin...).With(gate(rules.CreateGenre())).Post("/", handlers.CreateGenre(deps.Catalog))
	})

	r.Route("/users", func(r chi.Router) {
		r.With(gate(rules.Register())).Post("/register", handlers.Register(deps.Accounts))

		login := r.With()
		if deps.LoginLimiter != nil {
			login = login.With(middlewarex.LoginRateLimit(deps.LoginLimiter))
		}
		login.With(gate(rules.Login())).Post("/login", handlers.Login(deps.Accounts))

		r.With(user).Get("/me", handlers.Me())
		r.With(user, gate(rules.UpdateMe())).Patch("/me", handlers.UpdateMe(deps.Accounts))

		r.With(admin...).With(gate(rules.Paging())).Get("/", handlers.ListUsers(deps.Accounts, deps.Links))
		r.With(admin...).With(gate(rules.UserExists())).Get("/{id}", handlers.GetUser())
		r.With(admin...).With(gate(rules.SetAdmin())).Patch("/{id}", handlers.SetAdmin(deps.Accounts))
	})

	return r
}
