package handlers

import (
	"net/http"

	"tvcatalog/internal/core/paging"
	"tvcatalog/internal/core/validation"
	"tvcatalog/internal/domain/user"
	middlewarex "tvcatalog/internal/http/middleware"
	"tvcatalog/internal/services/account"

	"github.com/rs/zerolog/log"
)

// Register handles account registration
func Register(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := validation.FromContext(r.Context())
		u, err := accounts.Register(r.Context(), account.RegisterRequest{
			Username: bodyString(req, "username"),
			Email:    bodyString(req, "email"),
			Password: bodyString(req, "password"),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user registered")
		writeJSON(w, http.StatusCreated, u)
	}
}

// Login issues a token for the user the login rules authenticated
func Login(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := validation.ResourceAs[*user.User](r.Context(), keyLogin)
		if !ok {
			writeError(w, http.StatusUnauthorized, "username or password incorrect")
			return
		}
		resp, err := accounts.IssueToken(u)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Me returns the authenticated user
func Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middlewarex.User(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		writeJSON(w, http.StatusOK, u.Public())
	}
}

// UpdateMe changes the email and/or password of the authenticated user
func UpdateMe(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middlewarex.User(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		req := validation.FromContext(r.Context())
		updated, err := accounts.UpdateProfile(r.Context(), u.ID, bodyOptString(req, "email"), bodyOptString(req, "password"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// ListUsers returns a page of users
func ListUsers(accounts *account.Service, links paging.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servePage(w, r, links, accounts.List)
	}
}

// GetUser returns the user resolved by the route's rules
func GetUser() http.HandlerFunc {
	return validation.ReturnResource(keyUser)
}

// SetAdmin grants or revokes admin rights of the user in the path
func SetAdmin(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := middlewarex.User(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		req := validation.FromContext(r.Context())
		admin := bodyBool(req, "admin")
		if admin == nil {
			validation.WriteFailure(w, "admin", "admin must be a boolean", validation.KindBadRequest)
			return
		}
		u, err := accounts.SetAdmin(r.Context(), me.ID, pathInt(r, "id"), *admin)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		log.Info().Int64("user_id", u.ID).Bool("admin", u.Admin).Int64("by", me.ID).Msg("admin flag changed")
		writeJSON(w, http.StatusOK, u)
	}
}
