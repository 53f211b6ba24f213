package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/sse"
	attendancesvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/attendance"
	authoritysvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/authority"
	correctionsvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/correction"
	geofencesvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/geofence"
	reconciliationsvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/reconciliation"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/testkit"
)

var clockInTime = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	handler http.Handler
	jwt     jwt.Service
	store   *testkit.Store
}

func strPtr(s string) *string { return &s }

func newTestServer(t *testing.T, withShift bool) testServer {
	t.Helper()
	store := testkit.NewStore()
	if withShift {
		store.SetShift(&schedule.ShiftConfig{
			ID:           "cfg-1",
			Timezone:     "UTC",
			CheckIn:      schedule.ClockTime{Hour: 9},
			CheckOut:     schedule.ClockTime{Hour: 18},
			WorkingDays:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			FullDayHours: 8,
			HalfDayHours: 4,
		})
	}
	store.AddEmployee(employee.Employee{
		ID:               "emp-1",
		FullName:         "Ana",
		ManagerID:        strPtr("mgr-1"),
		HireDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EmploymentStatus: employee.EmploymentStatusActive,
	})

	notifier := &testkit.Notifier{}
	checker := authoritysvc.NewChecker(store.Directory())
	attendanceService := attendancesvc.NewAttendanceService(store.Transactor(), store.Attendance(), store.Shift(), store.Directory(), checker)
	correctionService := correctionsvc.NewCorrectionService(store.Transactor(), store.Corrections(), store.Attendance(), attendanceService, store.Shift(), store.Directory(), checker, notifier)
	geofenceService := geofencesvc.NewGeofenceService(store.Zones(), store.Observations(), store.Shift(), store.Directory(), checker, notifier, testkit.FixedClock(clockInTime))
	reconciliationService := reconciliationsvc.NewReconciliationService(store.Attendance(), attendanceService, store.Shift(), store.Directory(), store.Leave(), store.Holidays(), notifier, testkit.FixedClock(clockInTime))

	jwtService := jwt.NewJWTService("test-secret", time.Hour, 0)

	attendanceHandler := NewAttendanceHandler(attendanceService)
	attendanceHandler.(*attendanceHandlerImpl).now = testkit.FixedClock(clockInTime)

	router := NewRouter(jwtService, Handlers{
		Attendance:     attendanceHandler,
		Correction:     NewCorrectionHandler(correctionService),
		Geofence:       NewGeofenceHandler(geofenceService),
		Reconciliation: NewReconciliationHandler(reconciliationService),
		Events:         NewEventsHandler(sse.NewHub(), jwtService),
	}, RouterOptions{AllowedOrigins: []string{"*"}})

	return testServer{handler: router, jwt: jwtService, store: store}
}

func (s testServer) do(t *testing.T, method, path string, id *user.Identity, body any) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if id != nil {
		token, _, err := s.jwt.GenerateAccessToken(*id)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

var (
	employeeID = &user.Identity{EmployeeID: "emp-1", Role: user.RoleEmployee}
	managerID  = &user.Identity{EmployeeID: "mgr-1", Role: user.RoleManager}
	otherMgrID = &user.Identity{EmployeeID: "mgr-2", Role: user.RoleManager}
	hrID       = &user.Identity{EmployeeID: "hr-1", Role: user.RoleHR}
)

func TestRouter_Authentication(t *testing.T) {
	srv := newTestServer(t, true)

	code, resp := srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)

	code, resp = srv.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
}

func TestRouter_Permissions(t *testing.T) {
	srv := newTestServer(t, true)

	code, resp := srv.do(t, http.MethodPost, "/api/v1/reconciliation/run", employeeID, nil)
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	code, _ = srv.do(t, http.MethodGet, "/api/v1/corrections/pending", employeeID, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_ClockInOut(t *testing.T) {
	srv := newTestServer(t, true)

	code, resp := srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeID, nil)
	require.Equal(t, http.StatusCreated, code)
	var opened struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Date   string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &opened))
	assert.Equal(t, "in_progress", opened.Status)
	assert.Equal(t, "2025-06-02", opened.Date)

	code, resp = srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeID, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_HANDLED", resp.Error.Code)

	code, resp = srv.do(t, http.MethodPost, "/api/v1/attendance/check-out", employeeID, map[string]string{"date": "2025-06-02"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)

	code, resp = srv.do(t, http.MethodGet, "/api/v1/attendance/my?start_date=2025-06-01&end_date=2025-06-30", employeeID, nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, 1, list.TotalCount)

	code, _ = srv.do(t, http.MethodGet, "/api/v1/attendance/"+opened.ID, otherMgrID, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = srv.do(t, http.MethodGet, "/api/v1/attendance/"+opened.ID, managerID, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_ConfigMissing(t *testing.T) {
	srv := newTestServer(t, false)

	code, resp := srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeID, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "CONFIG_MISSING", resp.Error.Code)
}

func TestRouter_CorrectionReview(t *testing.T) {
	srv := newTestServer(t, true)

	code, resp := srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeID, nil)
	require.Equal(t, http.StatusCreated, code)
	var opened struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &opened))

	code, resp = srv.do(t, http.MethodPost, "/api/v1/corrections", employeeID, map[string]any{
		"attendance_id":       opened.ID,
		"type":                "time_adjustment",
		"requested_check_out": "2025-06-02T18:00:00Z",
		"reason":              "forgot to clock out",
	})
	require.Equal(t, http.StatusCreated, code)
	var submitted struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &submitted))
	assert.Equal(t, "pending", submitted.Status)

	code, resp = srv.do(t, http.MethodPost, "/api/v1/corrections", employeeID, map[string]any{
		"attendance_id":       opened.ID,
		"type":                "time_adjustment",
		"requested_check_out": "2025-06-02T17:00:00Z",
		"reason":              "second try",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DUPLICATE_PENDING", resp.Error.Code)

	code, resp = srv.do(t, http.MethodPost, "/api/v1/corrections/"+submitted.ID+"/reject", managerID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	code, _ = srv.do(t, http.MethodPost, "/api/v1/corrections/"+submitted.ID+"/approve", otherMgrID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = srv.do(t, http.MethodGet, "/api/v1/corrections/pending", hrID, nil)
	require.Equal(t, http.StatusOK, code)
	var pending []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.ID, pending[0].ID)

	code, resp = srv.do(t, http.MethodPost, "/api/v1/corrections/"+submitted.ID+"/approve", managerID, nil)
	require.Equal(t, http.StatusOK, code)
	var approved struct {
		Status  string `json:"status"`
		Applied *struct {
			Status string `json:"status"`
		} `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &approved))
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.Applied)
	assert.Equal(t, "present", approved.Applied.Status)

	code, resp = srv.do(t, http.MethodPost, "/api/v1/corrections/"+submitted.ID+"/approve", managerID, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_HANDLED", resp.Error.Code)
}

func TestRouter_GeofenceWithoutZones(t *testing.T) {
	srv := newTestServer(t, true)

	code, resp := srv.do(t, http.MethodPost, "/api/v1/geofence/evaluate", employeeID, map[string]float64{"latitude": -6.2, "longitude": 106.8})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "CONFIG_MISSING", resp.Error.Code)

	code, resp = srv.do(t, http.MethodPost, "/api/v1/geofence/evaluate", employeeID, map[string]float64{"latitude": 95, "longitude": 106.8})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Details, "latitude")
}

func TestRouter_ReconciliationRun(t *testing.T) {
	srv := newTestServer(t, true)

	code, resp := srv.do(t, http.MethodPost, "/api/v1/reconciliation/run", hrID, map[string]string{"start_date": "2025-05-26", "end_date": "2025-05-30"})
	require.Equal(t, http.StatusOK, code)
	var summary struct {
		AbsentCreated int `json:"absent_created"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, 5, summary.AbsentCreated)

	code, resp = srv.do(t, http.MethodPost, "/api/v1/reconciliation/run", hrID, map[string]string{"start_date": "2025-05-30", "end_date": "2025-05-26"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestRouter_StreamToken(t *testing.T) {
	srv := newTestServer(t, true)

	code, resp := srv.do(t, http.MethodPost, "/api/v1/events/token", employeeID, nil)
	require.Equal(t, http.StatusOK, code)
	var token struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &token))
	employee, err := srv.jwt.ValidateStreamToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", employee)

	code, _ = srv.do(t, http.MethodGet, "/api/v1/events?token=garbage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealth_PingFailure(t *testing.T) {
	h := health(func(context.Context) error { return errors.New("db down") })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
