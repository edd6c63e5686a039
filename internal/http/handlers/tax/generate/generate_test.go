package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/models"
)

// MockService реализует интерфейс generate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, userUID string, start, end time.Time, rateOverride float64, reportType string) (*models.TaxReport, error) {
	args := m.Called(ctx, userUID, start, end, rateOverride, reportType)
	report, _ := args.Get(0).(*models.TaxReport)
	return report, args.Error(1)
}

// MockEntitlement реализует интерфейс generate.EntitlementService
type MockEntitlement struct {
	mock.Mock
}

func (m *MockEntitlement) Check(ctx context.Context, userUID string, key models.FeatureKey, isPro bool) models.EntitlementDecision {
	args := m.Called(ctx, userUID, key, isPro)
	return args.Get(0).(models.EntitlementDecision)
}

func (m *MockEntitlement) Consume(ctx context.Context, userUID string, key models.FeatureKey) (int, error) {
	args := m.Called(ctx, userUID, key)
	return args.Int(0), args.Error(1)
}

func TestGenerateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	allowed := models.EntitlementDecision{Key: models.FeatureTaxReports, Allowed: true}
	denied := models.EntitlementDecision{Key: models.FeatureTaxReports, Allowed: false}

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMocks     func(*MockService, *MockEntitlement)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "нет авторизации",
			requestBody:    models.DummyGenerateReport{StartDate: "2024-05-01", EndDate: "2024-05-31"},
			userUID:        "",
			setupMocks:     func(_ *MockService, _ *MockEntitlement) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "квота исчерпана",
			requestBody: models.DummyGenerateReport{StartDate: "2024-05-01", EndDate: "2024-05-31"},
			userUID:     "uid-1",
			setupMocks: func(_ *MockService, e *MockEntitlement) {
				e.On("Check", mock.Anything, "uid-1", models.FeatureTaxReports, false).
					Return(denied)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"feature quota exceeded"}`,
		},
		{
			name:        "некорректный JSON",
			requestBody: "not a json",
			userUID:     "uid-1",
			setupMocks: func(_ *MockService, e *MockEntitlement) {
				e.On("Check", mock.Anything, "uid-1", models.FeatureTaxReports, false).
					Return(allowed)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:        "ошибка валидации - отсутствуют даты",
			requestBody: models.DummyGenerateReport{},
			userUID:     "uid-1",
			setupMocks: func(_ *MockService, e *MockEntitlement) {
				e.On("Check", mock.Anything, "uid-1", models.FeatureTaxReports, false).
					Return(allowed)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field StartDate is a required field, field EndDate is a required field"}`,
		},
		{
			name:        "некорректный формат даты",
			requestBody: models.DummyGenerateReport{StartDate: "01.05.2024", EndDate: "2024-05-31"},
			userUID:     "uid-1",
			setupMocks: func(_ *MockService, e *MockEntitlement) {
				e.On("Check", mock.Anything, "uid-1", models.FeatureTaxReports, false).
					Return(allowed)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"start_date must be a date in format 2006-01-02"}`,
		},
		{
			name:        "конец периода раньше начала",
			requestBody: models.DummyGenerateReport{StartDate: "2024-05-31", EndDate: "2024-05-01"},
			userUID:     "uid-1",
			setupMocks: func(_ *MockService, e *MockEntitlement) {
				e.On("Check", mock.Anything, "uid-1", models.FeatureTaxReports, false).
					Return(allowed)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"end_date must not be before start_date"}`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: models.DummyGenerateReport{StartDate: "2024-05-01", EndDate: "2024-05-31"},
			userUID:     "uid-1",
			setupMocks: func(s *MockService, e *MockEntitlement) {
				e.On("Check", mock.Anything, "uid-1", models.FeatureTaxReports, false).
					Return(allowed)
				s.On("Generate", mock.Anything, "uid-1", mock.Anything, mock.Anything, 0.0, "").
					Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not generate tax report"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockService)
			mockEnt := new(MockEntitlement)
			tt.setupMocks(mockSvc, mockEnt)

			handler := New(logger, mockSvc, mockEnt)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/tax/reports", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middlewarectx.Tier, models.TierFree)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockSvc.AssertExpectations(t)
			mockEnt.AssertExpectations(t)
		})
	}
}

func TestGenerateHandler_ConsumesQuotaAfterSuccess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mockSvc := new(MockService)
	mockEnt := new(MockEntitlement)

	due := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	stored := &models.TaxReport{
		ID:      42,
		UserUID: "uid-1",
		Type:    models.ReportTypeDARF,
		Amount:  115.0,
		Status:  models.ReportStatusPending,
		DueDate: due,
	}

	// Конец периода включителен: сервис должен получить последний момент дня.
	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.May, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)

	mockEnt.On("Check", mock.Anything, "uid-1", models.FeatureTaxReports, true).
		Return(models.EntitlementDecision{Key: models.FeatureTaxReports, Allowed: true})
	mockSvc.On("Generate", mock.Anything, "uid-1", start, end, 0.0, "").
		Return(stored, nil)
	mockEnt.On("Consume", mock.Anything, "uid-1", models.FeatureTaxReports).
		Return(1, nil)

	handler := New(logger, mockSvc, mockEnt)

	body, err := json.Marshal(models.DummyGenerateReport{StartDate: "2024-05-01", EndDate: "2024-05-31"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tax/reports", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1")
	ctx = context.WithValue(ctx, middlewarectx.Tier, models.TierPro)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
	mockEnt.AssertExpectations(t)
}
