package tax

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

type RepoMock struct{ mock.Mock }

func (m *RepoMock) SumProfit(ctx context.Context, userUID string, start, end time.Time) (float64, error) {
	args := m.Called(ctx, userUID, start, end)
	return args.Get(0).(float64), args.Error(1)
}

func (m *RepoMock) CreateTaxReport(ctx context.Context, report models.TaxReport) (*models.TaxReport, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxReport), args.Error(1)
}

func (m *RepoMock) ListTaxReports(ctx context.Context, userUID string, start, end *time.Time) ([]*models.TaxReport, error) {
	args := m.Called(ctx, userUID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TaxReport), args.Error(1)
}

func (m *RepoMock) MarkTaxReportPaid(ctx context.Context, userUID string, id int64) (*models.TaxReport, error) {
	args := m.Called(ctx, userUID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxReport), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_Estimate(t *testing.T) {
	tests := []struct {
		name       string
		rate       float64
		setupMocks func(r *RepoMock)
		want       models.TaxEstimate
	}{
		{
			name: "default rate applied when zero",
			rate: 0,
			setupMocks: func(r *RepoMock) {
				r.On("SumProfit", mock.Anything, "uid-1", mock.Anything, mock.Anything).
					Return(1000.0, nil).Once()
			},
			want: models.TaxEstimate{Profit: 1000, Estimate: 115, Rate: DefaultRate},
		},
		{
			name: "negative rate falls back to default",
			rate: -5,
			setupMocks: func(r *RepoMock) {
				r.On("SumProfit", mock.Anything, "uid-1", mock.Anything, mock.Anything).
					Return(200.0, nil).Once()
			},
			want: models.TaxEstimate{Profit: 200, Estimate: 23, Rate: DefaultRate},
		},
		{
			name: "explicit rate used and rounded to 2 places",
			rate: 0.1,
			setupMocks: func(r *RepoMock) {
				r.On("SumProfit", mock.Anything, "uid-1", mock.Anything, mock.Anything).
					Return(123.456, nil).Once()
			},
			want: models.TaxEstimate{Profit: 123.456, Estimate: 12.35, Rate: 0.1},
		},
		{
			name: "aggregation failure degrades to zero, never errors",
			rate: 0.2,
			setupMocks: func(r *RepoMock) {
				r.On("SumProfit", mock.Anything, "uid-1", mock.Anything, mock.Anything).
					Return(0.0, errors.New("store down")).Once()
			},
			want: models.TaxEstimate{Profit: 0, Estimate: 0, Rate: 0.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := New(repo, nil, "tax_report.created", newNoopLogger())

			got := svc.Estimate(context.Background(), "uid-1", tt.rate)

			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Generate(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	publisher := new(PublisherMock)

	repo.On("SumProfit", mock.Anything, "uid-1", start, end).
		Return(2500.0, nil).Once()
	repo.On("CreateTaxReport", mock.Anything, mock.MatchedBy(func(r models.TaxReport) bool {
		return r.UserUID == "uid-1" &&
			r.Type == models.ReportTypeDARF &&
			r.Status == models.ReportStatusPending &&
			r.Amount == 287.5 && // 2500 * 0.115
			// 20-е мая раньше конца периода, срок сдвигается на июнь
			r.DueDate.Equal(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)) &&
			r.Metadata["total_profit"] == 2500.0 &&
			r.Metadata["tax_rate"] == DefaultRate
	})).Return(&models.TaxReport{
		ID:      11,
		UserUID: "uid-1",
		Type:    models.ReportTypeDARF,
		Amount:  287.5,
		Status:  models.ReportStatusPending,
		DueDate: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
	}, nil).Once()
	publisher.On("Publish", "tax_report.created", mock.MatchedBy(func(e ReportEvent) bool {
		return e.ReportID == 11 && e.Amount == 287.5
	})).Return(nil).Once()

	svc := New(repo, publisher, "tax_report.created", newNoopLogger())
	report, err := svc.Generate(context.Background(), "uid-1", start, end, 0, "")

	require.NoError(t, err)
	assert.Equal(t, int64(11), report.ID)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestService_Generate_DueDateWithoutRoll(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("SumProfit", mock.Anything, "uid-1", start, end).
		Return(100.0, nil).Once()
	repo.On("CreateTaxReport", mock.Anything, mock.MatchedBy(func(r models.TaxReport) bool {
		return r.DueDate.Equal(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	})).Return(&models.TaxReport{ID: 1}, nil).Once()

	svc := New(repo, nil, "", newNoopLogger())
	_, err := svc.Generate(context.Background(), "uid-1", start, end, 0, models.ReportTypeDAS)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Generate_AggregationFailurePropagates(t *testing.T) {
	repo := new(RepoMock)
	repo.On("SumProfit", mock.Anything, "uid-1", mock.Anything, mock.Anything).
		Return(0.0, errors.New("store down")).Once()

	svc := New(repo, nil, "", newNoopLogger())
	_, err := svc.Generate(context.Background(), "uid-1", time.Now().AddDate(0, 0, -30), time.Now(), 0, "")

	require.Error(t, err)
	repo.AssertExpectations(t)
}

func TestService_Generate_NoDeduplication(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("SumProfit", mock.Anything, "uid-1", start, end).
		Return(500.0, nil).Twice()
	repo.On("CreateTaxReport", mock.Anything, mock.Anything).
		Return(&models.TaxReport{ID: 1}, nil).Once()
	repo.On("CreateTaxReport", mock.Anything, mock.Anything).
		Return(&models.TaxReport{ID: 2}, nil).Once()

	svc := New(repo, nil, "", newNoopLogger())

	first, err := svc.Generate(context.Background(), "uid-1", start, end, 0, "")
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), "uid-1", start, end, 0, "")
	require.NoError(t, err)

	// Два идентичных вызова создают две независимые записи
	assert.NotEqual(t, first.ID, second.ID)
	repo.AssertExpectations(t)
}

func TestService_MarkPaid(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkTaxReportPaid", mock.Anything, "uid-1", int64(5)).
		Return(&models.TaxReport{ID: 5, Status: models.ReportStatusPaid}, nil).Once()

	svc := New(repo, nil, "", newNoopLogger())
	report, err := svc.MarkPaid(context.Background(), "uid-1", 5)

	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPaid, report.Status)
	repo.AssertExpectations(t)
}
