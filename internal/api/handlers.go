package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/tagscan/internal/apperr"
	"github.com/starford/tagscan/internal/tagservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc           *tagservice.Service
	inlineDefault bool
}

// NewHandler creates a new Handler.
func NewHandler(svc *tagservice.Service, inlineDefault bool) *Handler {
	return &Handler{svc: svc, inlineDefault: inlineDefault}
}

// TagListResponse is the body of GET /api/tags.
type TagListResponse struct {
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

// ListTags handles GET /api/tags.
//
//	@Summary		List the vault's tags
//	@Tags			tags
//	@Produce		json
//	@Param			inline	query		bool	false	"Include inline #tags"
//	@Success		200		{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	withInline := h.inlineDefault
	if raw := r.URL.Query().Get("inline"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("inline must be a boolean"))
			return
		}
		withInline = v
	}

	tags, err := h.svc.Collect(r.Context(), withInline)
	if err != nil {
		slog.Error("list tags failed", slog.String("error", err.Error()))
		status := http.StatusInternalServerError
		if errors.Is(err, apperr.ErrScannerUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorBody(err.Error()))
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags, Count: len(tags)})
}
