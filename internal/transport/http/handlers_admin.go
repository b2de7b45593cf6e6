package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"avelements/internal/events"
	dErrors "avelements/pkg/domain-errors"
	"avelements/pkg/platform/httputil"
	"avelements/pkg/requestcontext"
)

// EventLister reads persisted events back for operators.
type EventLister interface {
	ListByForm(ctx context.Context, formID string, names ...string) ([]events.Event, error)
}

// AdminHandler serves operator endpoints. Mount it behind
// admin.RequireAdminToken.
type AdminHandler struct {
	events EventLister
	logger *slog.Logger
}

func NewAdminHandler(lister EventLister, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{events: lister, logger: logger}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/forms/{formID}/events", h.HandleListEvents)
}

// HandleListEvents handles GET /admin/forms/{formID}/events?name=...
func (h *AdminHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID := chi.URLParam(r, "formID")
	list, err := h.events.ListByForm(ctx, formID, r.URL.Query()["name"]...)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list events",
			"request_id", requestcontext.RequestID(ctx),
			"form_id", formID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "event store unavailable"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EventListResponse{FormID: formID, Events: fromEvents(list)})
}
