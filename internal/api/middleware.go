package api

import (
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
)

// RequireAdmin allows only tokens carrying an admin role claim. It must run
// after jwtauth.Verifier and jwtauth.Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, errorResponse{Success: false, Error: "unauthorized"})
			return
		}

		if role, _ := claims["role"].(string); role != "admin" {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, errorResponse{Success: false, Error: "admin access required"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
