package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantType string
	}{
		{"validation", validator.ValidationErrors{{Field: "name", Message: "is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"not found", fmt.Errorf("load: %w", payroll.ErrPeriodNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"closed period", payroll.ErrPeriodClosed, http.StatusConflict, "CONFLICT"},
		{"overlap", schedule.ErrOverlappingScheduleAssignment, http.StatusConflict, "CONFLICT"},
		{"overlapping period", fmt.Errorf("%w: September 2025 A", payroll.ErrOverlappingPeriod), http.StatusConflict, "CONFLICT"},
		{"no table", fmt.Errorf("sss: %w", statutory.ErrNoActiveTable), http.StatusUnprocessableEntity, "DATA_INTEGRITY"},
		{"no compensation", fmt.Errorf("emp-1: %w", payroll.ErrNoCompensation), http.StatusUnprocessableEntity, "INCOMPLETE_INPUT"},
		{"line mismatch", &payroll.LineItemMismatchError{Field: "gross"}, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"malformed body", &json.SyntaxError{Offset: 1}, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantType, body.Error.Code)
		})
	}
}
