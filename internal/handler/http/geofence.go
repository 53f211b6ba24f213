package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
)

type GeofenceHandler interface {
	Evaluate(w http.ResponseWriter, r *http.Request)
	RecordObservation(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	AttachReason(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type geofenceHandlerImpl struct {
	geofenceService geofence.Service
}

func NewGeofenceHandler(geofenceService geofence.Service) GeofenceHandler {
	return &geofenceHandlerImpl{geofenceService: geofenceService}
}

// Evaluate implements GeofenceHandler.
func (h *geofenceHandlerImpl) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req geofence.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.geofenceService.Evaluate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result.ToResponse())
}

// RecordObservation implements GeofenceHandler.
func (h *geofenceHandlerImpl) RecordObservation(w http.ResponseWriter, r *http.Request) {
	var req geofence.ObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode observation", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.geofenceService.RecordObservation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Location recorded", result.ToResponse())
}

// ListMine implements GeofenceHandler.
func (h *geofenceHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	req := geofence.ListRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	observations, err := h.geofenceService.ListMine(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]geofence.ObservationResponse, 0, len(observations))
	for _, obs := range observations {
		out = append(out, obs.ToResponse())
	}
	response.Success(w, out)
}

// AttachReason implements GeofenceHandler.
func (h *geofenceHandlerImpl) AttachReason(w http.ResponseWriter, r *http.Request) {
	var req geofence.AttachReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ObservationID = chi.URLParam(r, "id")

	result, err := h.geofenceService.AttachReason(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Out-of-premises request submitted", result.ToResponse())
}

func (h *geofenceHandlerImpl) review(w http.ResponseWriter, r *http.Request, decision geofence.RequestStatus, message string) {
	var req geofence.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ObservationID = chi.URLParam(r, "id")
	req.Decision = decision

	result, err := h.geofenceService.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, result.ToResponse())
}

// Approve implements GeofenceHandler.
func (h *geofenceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, geofence.RequestStatusApproved, "Out-of-premises request approved")
}

// Reject implements GeofenceHandler.
func (h *geofenceHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, geofence.RequestStatusRejected, "Out-of-premises request rejected")
}
