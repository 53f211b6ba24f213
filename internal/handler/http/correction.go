package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
)

type CorrectionHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService correction.Service
}

func NewCorrectionHandler(correctionService correction.Service) CorrectionHandler {
	return &correctionHandlerImpl{correctionService: correctionService}
}

// Submit implements CorrectionHandler.
func (h *correctionHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req correction.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode correction request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted", result.ToResponse())
}

func writeCorrections(w http.ResponseWriter, requests []correction.Request) {
	out := make([]correction.Response, 0, len(requests))
	for _, req := range requests {
		out = append(out, req.ToResponse())
	}
	response.Success(w, out)
}

// ListMine implements CorrectionHandler.
func (h *correctionHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	requests, err := h.correctionService.ListMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeCorrections(w, requests)
}

// ListPending implements CorrectionHandler.
func (h *correctionHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.correctionService.ListPendingForReviewer(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeCorrections(w, requests)
}

// Get implements CorrectionHandler.
func (h *correctionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.correctionService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result.ToResponse())
}

func (h *correctionHandlerImpl) review(w http.ResponseWriter, r *http.Request, decision correction.Decision, message string) {
	var req correction.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		slog.Error("Failed to decode review request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.Decision = decision

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result.ToResponse())
}

// Approve implements CorrectionHandler.
func (h *correctionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, correction.DecisionApprove, "Correction request approved")
}

// Reject implements CorrectionHandler.
func (h *correctionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, correction.DecisionReject, "Correction request rejected")
}
