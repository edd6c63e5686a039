package entitlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/girolab/backend/internal/models"
)

type FlagRepoMock struct{ mock.Mock }

func (m *FlagRepoMock) ListFeatureFlags(ctx context.Context) ([]models.FeatureFlag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FeatureFlag), args.Error(1)
}

type UsageMock struct{ mock.Mock }

func (m *UsageMock) GetUsage(ctx context.Context, userUID, feature string, month time.Time) (int, error) {
	args := m.Called(ctx, userUID, feature, month)
	return args.Int(0), args.Error(1)
}

func (m *UsageMock) IncrUsage(ctx context.Context, userUID, feature string, month time.Time) (int, error) {
	args := m.Called(ctx, userUID, feature, month)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func intp(v int) *int { return &v }

func TestAllowed(t *testing.T) {
	registry := Registry{
		models.FeatureMissionsAI: {
			Key:       models.FeatureMissionsAI,
			Enabled:   true,
			FreeLimit: intp(3),
		},
		models.FeaturePDFExport: {
			Key:       models.FeaturePDFExport,
			Enabled:   true,
			FreeLimit: intp(0),
		},
		models.FeatureWeatherPro: {
			Key:     models.FeatureWeatherPro,
			Enabled: false,
		},
		models.FeatureTimeline: {
			Key:     models.FeatureTimeline,
			Enabled: true,
		},
	}

	tests := []struct {
		name  string
		key   models.FeatureKey
		isPro bool
		usage *int
		want  bool
	}{
		{
			name: "unknown key denied",
			key:  models.FeatureKey("unknown_feature"),
			want: false,
		},
		{
			name: "disabled flag denied even for pro",
			key:  models.FeatureWeatherPro, isPro: true, want: false,
		},
		{
			name: "pro bypasses quota",
			key:  models.FeatureMissionsAI, isPro: true, usage: intp(1000), want: true,
		},
		{
			name: "free under limit allowed",
			key:  models.FeatureMissionsAI, usage: intp(2), want: true,
		},
		{
			name: "free at limit denied, strict less-than",
			key:  models.FeatureMissionsAI, usage: intp(3), want: false,
		},
		{
			name: "zero allowance without usage denied",
			key:  models.FeaturePDFExport, want: false,
		},
		{
			name: "finite limit without usage is permissive",
			key:  models.FeatureMissionsAI, want: true,
		},
		{
			name: "no ceiling allowed",
			key:  models.FeatureTimeline, usage: intp(999), want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.key, registry, tt.isPro, tt.usage))
		})
	}
}

func TestMerge(t *testing.T) {
	rows := []models.FeatureFlag{
		{Key: models.FeatureMissionsAI, Enabled: false, FreeLimit: nil, Description: "off"},
		{Key: models.FeatureKey("invented_feature"), Enabled: true},
	}

	merged := Merge(rows)

	// Распознанный ключ заменён целиком
	assert.False(t, merged[models.FeatureMissionsAI].Enabled)
	assert.Nil(t, merged[models.FeatureMissionsAI].FreeLimit)

	// Неизвестный ключ отброшен, перечисление не расширено
	_, ok := merged[models.FeatureKey("invented_feature")]
	assert.False(t, ok)

	// Несовпавшие ключи остались на дефолтах
	assert.True(t, merged[models.FeatureTaxReports].Enabled)
}

func TestService_Refresh_FailureKeepsDefaults(t *testing.T) {
	repo := new(FlagRepoMock)
	usage := new(UsageMock)
	repo.On("ListFeatureFlags", mock.Anything).Return(nil, errors.New("store down")).Once()

	svc := New(repo, usage, newNoopLogger())
	before := svc.Registry()

	svc.Refresh(context.Background())

	assert.Equal(t, before, svc.Registry())
	repo.AssertExpectations(t)
}

func TestService_Refresh_SwapsSnapshot(t *testing.T) {
	repo := new(FlagRepoMock)
	usage := new(UsageMock)
	repo.On("ListFeatureFlags", mock.Anything).Return([]models.FeatureFlag{
		{Key: models.FeatureTaxReports, Enabled: false},
	}, nil).Once()

	svc := New(repo, usage, newNoopLogger())
	svc.Refresh(context.Background())

	assert.False(t, svc.Registry()[models.FeatureTaxReports].Enabled)
	repo.AssertExpectations(t)
}

func TestService_Check_UsageFromCounter(t *testing.T) {
	repo := new(FlagRepoMock)
	usage := new(UsageMock)
	usage.On("GetUsage", mock.Anything, "uid-1", "missions_ai", mock.Anything).
		Return(5, nil).Once()

	svc := New(repo, usage, newNoopLogger())
	decision := svc.Check(context.Background(), "uid-1", models.FeatureMissionsAI, false)

	require.NotNil(t, decision.Usage)
	assert.Equal(t, 5, *decision.Usage)
	assert.False(t, decision.Allowed) // дефолтный лимит missions_ai = 5
	usage.AssertExpectations(t)
}

func TestService_Check_CounterFailureIsBestEffort(t *testing.T) {
	repo := new(FlagRepoMock)
	usage := new(UsageMock)
	usage.On("GetUsage", mock.Anything, "uid-1", "missions_ai", mock.Anything).
		Return(0, errors.New("redis down")).Once()

	svc := New(repo, usage, newNoopLogger())
	decision := svc.Check(context.Background(), "uid-1", models.FeatureMissionsAI, false)

	assert.Nil(t, decision.Usage)
	assert.True(t, decision.Allowed) // пермиссивная ветка без счётчика
	usage.AssertExpectations(t)
}
