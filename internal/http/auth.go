package http

import (
	"crypto/subtle"
	"net/http"
)

const basicAuthRealm = "todod"

// BasicAuth rejects requests that do not carry the given credentials with a
// 401, before they reach the next handler.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !secureCompare(user, username) || !secureCompare(pass, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+basicAuthRealm+`"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secureCompare(given, want string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}
