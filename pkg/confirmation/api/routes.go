package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

// Routes mounts the handler. The confirmation link and notices are public;
// a valid JWT only changes where the visitor is redirected. Requesting a
// confirmation and reading the pending email need a signed-in user.
func Routes(h *Handler, tokenAuth *jwtauth.JWTAuth) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verify(tokenAuth, jwtauth.TokenFromHeader, jwtauth.TokenFromCookie))

	r.Get("/confirm/{key}", h.ConfirmEmail)
	r.Get("/confirm/{key}/", h.ConfirmEmail)
	r.Get("/notices", h.PopNotices)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Post("/request", h.RequestConfirmation)
		r.Get("/pending", h.GetPendingEmail)
	})

	return r
}
