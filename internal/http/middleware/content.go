package middlewarex

import (
	"mime"
	"net/http"
)

// RequireBodyType rejects POST and PATCH requests that declare a body type
// other than JSON or multipart form data. Requests without a Content-Type pass.
func RequireBodyType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPatch {
			next.ServeHTTP(w, r)
			return
		}
		ct := r.Header.Get("Content-Type")
		if ct == "" {
			next.ServeHTTP(w, r)
			return
		}
		mt, _, _ := mime.ParseMediaType(ct)
		switch mt {
		case "application/json", "multipart/form-data":
			next.ServeHTTP(w, r)
		default:
			writeError(w, http.StatusBadRequest, "body must be json or form-data")
		}
	})
}
