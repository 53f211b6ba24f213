package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "reason", Message: "reason is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid range", fmt.Errorf("failed to close: %w", attendance.ErrInvalidRange), http.StatusBadRequest, CodeInvalidInput},
		{"already processed", correction.ErrAlreadyProcessed, http.StatusConflict, CodeAlreadyHandled},
		{"duplicate pending", correction.ErrDuplicatePending, http.StatusConflict, CodeDuplicatePending},
		{"no open record", attendance.ErrNoOpenRecord, http.StatusConflict, CodeConflict},
		{"unauthorized reviewer", authority.ErrUnauthorized, http.StatusForbidden, CodeNotPermitted},
		{"not found", correction.ErrCorrectionNotFound, http.StatusNotFound, CodeNotFound},
		{"shift config missing", schedule.ErrConfigMissing, http.StatusServiceUnavailable, CodeConfigMissing},
		{"no eligible zone", geofence.ErrNoEligibleZones, http.StatusServiceUnavailable, CodeConfigMissing},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}
