package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

type clockOutRequest struct {
	Date *string `json:"date,omitempty"` // YYYY-MM-DD
}

// decodeJSON decodes an optional JSON body into dst. An empty body is not an
// error.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	actor, err := user.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := attendance.OpenDayRequest{
		EmployeeID: actor.EmployeeID,
		CheckIn:    h.now().UTC(),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.OpenDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result.ToResponse())
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	actor, err := user.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var body clockOutRequest
	if err := decodeJSON(r, &body); err != nil {
		slog.Error("Failed to decode clock out request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req := attendance.CloseDayRequest{
		EmployeeID: actor.EmployeeID,
		CheckOut:   h.now().UTC(),
	}
	if body.Date != nil {
		d, ok := validator.IsValidDate(*body.Date)
		if !ok {
			response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}})
			return
		}
		req.Date = &d
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.CloseDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result.ToResponse())
}

func listRequestFromQuery(r *http.Request) attendance.ListRequest {
	q := r.URL.Query()
	req := attendance.ListRequest{
		EmployeeID: q.Get("employee_id"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	}
	if status := q.Get("status"); status != "" {
		req.Status = &status
	}
	return req
}

func (h *attendanceHandlerImpl) list(w http.ResponseWriter, r *http.Request, req attendance.ListRequest) {
	records, err := h.attendanceService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := attendance.ListResponse{
		TotalCount: len(records),
		Records:    make([]attendance.Response, 0, len(records)),
	}
	for _, rec := range records {
		out.Records = append(out.Records, rec.ToResponse())
	}
	response.Success(w, out)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	req := listRequestFromQuery(r)
	req.EmployeeID = ""
	h.list(w, r, req)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := listRequestFromQuery(r)
	if req.EmployeeID == "" {
		response.HandleError(w, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}})
		return
	}
	h.list(w, r, req)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.attendanceService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record.ToResponse())
}
