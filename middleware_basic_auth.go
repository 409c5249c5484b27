package main

import (
	"crypto/subtle"
	"net/http"
)

const basicAuthRealm = `Basic realm="geoweblog"`

// basicAuth protects API with a single pair of credentials.
func basicAuth(user, password string) func(http.Handler) http.Handler {
	userBytes := []byte(user)
	passwordBytes := []byte(password)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqUser, reqPassword, _ := req.BasicAuth()

			userMatch := subtle.ConstantTimeCompare(userBytes, []byte(reqUser))
			passwordMatch := subtle.ConstantTimeCompare(passwordBytes, []byte(reqPassword))

			if userMatch&passwordMatch == 1 {
				next.ServeHTTP(w, req)

				return
			}

			w.Header().Set("WWW-Authenticate", basicAuthRealm)
			http.Error(w, "Authentication is required", http.StatusUnauthorized)
		})
	}
}
