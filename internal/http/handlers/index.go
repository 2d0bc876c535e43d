package handlers

import "net/http"

type route struct {
	Href    string   `json:"href"`
	Methods []string `json:"methods"`
}

var directory = map[string]map[string]route{
	"tv": {
		"series": {"/tv", []string{"GET", "POST"}},
		"serie":  {"/tv/{id}", []string{"GET", "PATCH", "DELETE"}},
		"rate":   {"/tv/{id}/rate", []string{"POST", "PATCH", "DELETE"}},
		"state":  {"/tv/{id}/state", []string{"POST", "PATCH", "DELETE"}},
	},
	"seasons": {
		"seasons": {"/tv/{id}/season", []string{"GET", "POST"}},
		"season":  {"/tv/{id}/season/{season}", []string{"GET", "DELETE"}},
	},
	"episodes": {
		"episodes": {"/tv/{id}/season/{season}/episode", []string{"POST"}},
		"episode":  {"/tv/{id}/season/{season}/episode/{episode}", []string{"GET", "DELETE"}},
	},
	"genres": {
		"genres": {"/genres", []string{"GET", "POST"}},
	},
	"users": {
		"users":    {"/users", []string{"GET"}},
		"user":     {"/users/{id}", []string{"GET", "PATCH"}},
		"register": {"/users/register", []string{"POST"}},
		"login":    {"/users/login", []string{"POST"}},
		"me":       {"/users/me", []string{"GET", "PATCH"}},
	},
}

// Index lists the routes of the API
func Index() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, directory)
	}
}

// NotFound answers unknown routes
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	}
}
