package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girolab/backend/internal/models"
)

func TestStorage_CreateAndListGiros(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "free")

	date := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	giro := models.Giro{
		UserUID:       userUID,
		Date:          date,
		Platform:      "uber",
		HoursWorked:   6,
		KmDriven:      80,
		GrossEarnings: 200,
		CostPerKm:     0.5,
		Profit:        160,
	}

	id, err := storage.CreateGiro(context.Background(), giro)
	require.NoError(t, err)
	assert.Positive(t, id)

	verification := NewTestVerification(storage)
	verification.VerifyGiroExists(t, id)

	got, err := storage.ListGiros(context.Background(), userUID,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "uber", got[0].Platform)
	assert.InDelta(t, 160.0, got[0].Profit, 0.001)
}

func TestStorage_ListGiros_Ordering(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "free")

	older := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)
	factory.CreateGiro(t, userUID, older, "uber", 6, 80, 200, 0.5, 160)
	factory.CreateGiro(t, userUID, newer, "ifood", 4, 40, 120, 0.5, 100)

	got, err := storage.ListGiros(context.Background(), userUID,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Порядок от новых к старым
	assert.Equal(t, "ifood", got[0].Platform)
	assert.Equal(t, "uber", got[1].Platform)
}

func TestStorage_SumProfit(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	otherUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "free")
	factory.CreateUser(t, otherUID, "otheruser", "other@example.com", "hashedpassword", "free")

	day := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	factory.CreateGiro(t, userUID, day, "uber", 6, 80, 200, 0.5, 160)
	factory.CreateGiro(t, userUID, day.AddDate(0, 0, 1), "ifood", 4, 40, 120, 0.5, 100)
	// Чужая сессия не попадает в агрегат
	factory.CreateGiro(t, otherUID, day, "uber", 8, 100, 300, 0.5, 250)

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)

	total, err := storage.SumProfit(context.Background(), userUID, start, end)
	require.NoError(t, err)
	assert.InDelta(t, 260.0, total, 0.001)

	// Пустой диапазон дает ноль, а не ошибку
	empty, err := storage.SumProfit(context.Background(), userUID,
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestStorage_TaxReportLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "pro")

	report := models.TaxReport{
		UserUID:     userUID,
		PeriodStart: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		Type:        models.ReportTypeDARF,
		Amount:      115.0,
		Status:      models.ReportStatusPending,
		DueDate:     time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		Metadata:    map[string]any{"total_profit": 1000.0, "tax_rate": 0.115},
	}

	created, err := storage.CreateTaxReport(context.Background(), report)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Positive(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	// Повторная генерация за тот же период создает вторую запись
	second, err := storage.CreateTaxReport(context.Background(), report)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, second.ID)

	list, err := storage.ListTaxReports(context.Background(), userUID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Фильтр по началу периода отсекает старые отчеты
	filterStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	filtered, err := storage.ListTaxReports(context.Background(), userUID, &filterStart, nil)
	require.NoError(t, err)
	assert.Empty(t, filtered)

	paid, err := storage.MarkTaxReportPaid(context.Background(), userUID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPaid, paid.Status)

	verification := NewTestVerification(storage)
	verification.VerifyReportStatus(t, created.ID, models.ReportStatusPaid)

	// Повторная отметка проходит без ошибки
	_, err = storage.MarkTaxReportPaid(context.Background(), userUID, created.ID)
	require.NoError(t, err)

	// Чужой отчет по существующему id недоступен
	otherUID := uuid.New().String()
	factory.CreateUser(t, otherUID, "otheruser", "other@example.com", "hashedpassword", "free")
	_, err = storage.MarkTaxReportPaid(context.Background(), otherUID, second.ID)
	require.ErrorIs(t, err, ErrNotFound)

	verification.VerifyReportStatus(t, second.ID, models.ReportStatusPending)
}

func TestStorage_MarkTaxReportPaid_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.MarkTaxReportPaid(context.Background(), uuid.New().String(), 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ReplaceFavorites(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "free")

	savedAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	old := models.StoredScenario{
		ID: uuid.New().String(), UserUID: userUID, Name: "Вечер пятницы",
		City: "Sao Paulo", Platform: "uber", Hours: 6, Km: 80, AverageFare: 25,
		DemandLevel: "high", Favorite: true, SavedAt: savedAt,
	}
	factory.CreateScenario(t, old)

	replacement := []models.StoredScenario{
		{
			ID: uuid.New().String(), UserUID: userUID, Name: "Утро буднего дня",
			City: "Sao Paulo", Platform: "ifood", Hours: 4, Km: 40, AverageFare: 15,
			DemandLevel: "medium", Favorite: true, SavedAt: savedAt.AddDate(0, 0, 1),
		},
		{
			ID: uuid.New().String(), UserUID: userUID, Name: "Ночная смена",
			City: "Rio", Platform: "uber", Hours: 8, Km: 120, AverageFare: 30,
			DemandLevel: "high", Favorite: true, SavedAt: savedAt.AddDate(0, 0, 2),
		},
	}

	err := storage.ReplaceFavorites(context.Background(), userUID, replacement)
	require.NoError(t, err)

	got, err := storage.ListFavorites(context.Background(), userUID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Старый набор исчез, порядок от новых к старым
	assert.Equal(t, "Ночная смена", got[0].Name)
	assert.Equal(t, "Утро буднего дня", got[1].Name)

	// Пустой список очищает избранное
	err = storage.ReplaceFavorites(context.Background(), userUID, nil)
	require.NoError(t, err)

	got, err = storage.ListFavorites(context.Background(), userUID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorage_RegisterAndGetUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	user := models.User{
		Email:        "driver@example.com",
		Username:     "driver1",
		PasswordHash: "hashedpassword",
		Tier:         models.TierFree,
	}

	uid, err := storage.RegisterUser(context.Background(), user)
	require.NoError(t, err)
	_, err = uuid.Parse(uid)
	require.NoError(t, err, "UID should be a valid uuid")

	got, err := storage.GetUserByUsername(context.Background(), "driver1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uid, got.UID)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, models.TierFree, got.Tier)

	_, err = storage.GetUserByUsername(context.Background(), "nosuchuser")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ListFeatureFlags(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.DB.Exec(`INSERT INTO feature_flags (key, enabled, free_limit, pro_limit, description) VALUES
		('missions_ai', true, 5, 100, 'AI missions'),
		('pdf_export', false, 0, NULL, 'PDF export')`)
	require.NoError(t, err)

	flags, err := storage.ListFeatureFlags(context.Background())
	require.NoError(t, err)
	require.Len(t, flags, 2)

	byKey := make(map[models.FeatureKey]models.FeatureFlag, len(flags))
	for _, f := range flags {
		byKey[f.Key] = f
	}

	ai := byKey[models.FeatureMissionsAI]
	assert.True(t, ai.Enabled)
	require.NotNil(t, ai.FreeLimit)
	assert.Equal(t, 5, *ai.FreeLimit)
	require.NotNil(t, ai.ProLimit)
	assert.Equal(t, 100, *ai.ProLimit)

	pdf := byKey[models.FeaturePDFExport]
	assert.False(t, pdf.Enabled)
	assert.Nil(t, pdf.ProLimit)
}
