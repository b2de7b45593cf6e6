package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"avelements/internal/address"
	"avelements/internal/enrichment"
	"avelements/internal/gateway"
	"avelements/internal/verification/client"
	dErrors "avelements/pkg/domain-errors"
	"avelements/pkg/platform/httputil"
	"avelements/pkg/requestcontext"
)

// FormService is the gateway behaviour the form endpoints need.
type FormService interface {
	Enrich(ctx context.Context, d enrichment.Descriptor) (*gateway.EnrichResult, error)
	Submit(ctx context.Context, formID string, fields address.Fields) (*gateway.SubmitResult, error)
	Reset(ctx context.Context, formID string) error
	Autocomplete(ctx context.Context, req client.AutocompleteRequest) ([]client.Suggestion, error)
}

// FormHandler wires the form endpoints to the gateway service.
type FormHandler struct {
	service FormService
	logger  *slog.Logger
}

func NewFormHandler(service FormService, logger *slog.Logger) *FormHandler {
	return &FormHandler{service: service, logger: logger}
}

// Register mounts the form endpoints on the router.
func (h *FormHandler) Register(r chi.Router) {
	r.Post("/v1/forms", h.HandleEnrich)
	r.Post("/v1/forms/{formID}/submit", h.HandleSubmit)
	r.Post("/v1/forms/{formID}/reset", h.HandleReset)
	r.Get("/v1/autocomplete", h.HandleAutocomplete)
}

// HandleEnrich handles POST /v1/forms.
func (h *FormHandler) HandleEnrich(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EnrichRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Enrich(ctx, req.Descriptor())
	if err != nil {
		h.logger.ErrorContext(ctx, "form enrichment failed",
			"request_id", requestID,
			"form_id", req.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if res.Wired {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, FromEnrichResult(res))
}

// HandleSubmit handles POST /v1/forms/{formID}/submit.
func (h *FormHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	formID := chi.URLParam(r, "formID")
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Submit(ctx, formID, req.Fields())
	if err != nil {
		level := slog.LevelError
		if dErrors.HasCode(err, dErrors.CodeConflict) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			level = slog.LevelWarn
		}
		h.logger.Log(ctx, level, "submit attempt failed",
			"request_id", requestID,
			"form_id", formID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submit attempt settled",
		"request_id", requestID,
		"form_id", formID,
		"attempt_id", res.AttemptID,
		"allowed", res.Allowed,
		"outcome", res.Outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSubmitResult(res))
}

// HandleReset handles POST /v1/forms/{formID}/reset.
func (h *FormHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID := chi.URLParam(r, "formID")
	if err := h.service.Reset(ctx, formID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAutocomplete handles GET /v1/autocomplete.
func (h *FormHandler) HandleAutocomplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	suggestions, err := h.service.Autocomplete(ctx, client.AutocompleteRequest{
		Prefix: q.Get("prefix"),
		City:   q.Get("city"),
		State:  q.Get("state"),
		Zip:    q.Get("zip"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "autocompletion failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []client.Suggestion{}
	}
	httputil.WriteJSON(w, http.StatusOK, AutocompleteResponse{Suggestions: suggestions})
}
