package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
)

type ReconciliationHandler interface {
	Run(w http.ResponseWriter, r *http.Request)
}

type reconciliationHandlerImpl struct {
	reconciliationService reconciliation.Service
	now                   func() time.Time
}

func NewReconciliationHandler(reconciliationService reconciliation.Service) ReconciliationHandler {
	return &reconciliationHandlerImpl{
		reconciliationService: reconciliationService,
		now:                   time.Now,
	}
}

// Run implements ReconciliationHandler. The run is synchronous.
func (h *reconciliationHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	var req reconciliation.RunRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	rng, err := req.ToRange(h.now().UTC())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	actor, _ := user.IdentityFromContext(r.Context())
	slog.InfoContext(r.Context(), "Manual reconciliation requested",
		"actor_id", actor.EmployeeID,
		"from", rng.From.Format("2006-01-02"),
		"to", rng.To.Format("2006-01-02"),
	)

	summary, err := h.reconciliationService.Run(r.Context(), rng)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Reconciliation completed", summary.ToResponse())
}
