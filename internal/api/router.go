package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tagscan/internal/tagservice"
)

// NewRouter creates a chi router with the tag API mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// inlineDefault is used when a request does not set ?inline.
func NewRouter(svc *tagservice.Service, authEnabled bool, token string, sseHandler http.Handler, inlineDefault bool) chi.Router {
	h := NewHandler(svc, inlineDefault)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/tags", h.ListTags)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
