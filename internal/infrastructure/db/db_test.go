package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "reports.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, RunMigrations(database))
	t.Cleanup(func() { _ = Close(database) })
	return database
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestAlertRepository_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := NewAlertRepository(newTestDB(t), logger.NewNop())

	first := []domain.AlertSnapshot{
		{Date: day("2024-01-02"), Location: "DC1", Customer: "Acme", Critical: 4},
		{Date: day("2024-01-01"), Location: "DC1", Customer: "Acme", Critical: 2},
	}
	require.NoError(t, repo.ReplaceAll(ctx, first))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rows, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Critical)
	assert.Equal(t, 4, rows[1].Critical)

	require.NoError(t, repo.ReplaceAll(ctx, []domain.AlertSnapshot{
		{Date: nil, Location: "DC2", Critical: 1},
	}))
	rows, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "DC2", rows[0].Location)
	assert.Nil(t, rows[0].Date)
}

func TestAlertRepository_ReplaceAllEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewAlertRepository(newTestDB(t), logger.NewNop())

	require.NoError(t, repo.ReplaceAll(ctx, []domain.AlertSnapshot{{Location: "DC1"}}))
	require.NoError(t, repo.ReplaceAll(ctx, nil))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTimelineRepository(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	repo := NewTimelineRepository(database, logger.NewNop())

	for _, typ := range []string{domain.EventTypeTaskStarted, domain.EventTypeTaskCompleted} {
		require.NoError(t, repo.Create(ctx, &domain.TimelineEvent{
			Type:         typ,
			Status:       domain.EventStatusSuccess,
			ResourceType: domain.ResourceTypeTask,
			ResourceID:   "task-1",
			Meta:         domain.JSONB{"progress": 100},
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.TimelineEvent{
		Type:   domain.EventTypeCacheRefresh,
		Status: domain.EventStatusSuccess,
	}))

	byTask, err := repo.GetByResource(ctx, domain.ResourceTypeTask, "task-1")
	require.NoError(t, err)
	require.Len(t, byTask, 2)
	assert.Equal(t, domain.EventTypeTaskCompleted, byTask[0].Type)
	assert.EqualValues(t, 100, byTask[0].Meta["progress"])

	all, err := repo.GetAll(ctx, 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.EventTypeCacheRefresh, all[0].Type)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, database.Model(&domain.TimelineEvent{}).
		Where("type = ?", domain.EventTypeTaskStarted).
		Update("created_at", old).Error)
	require.NoError(t, repo.CleanupOld(ctx, 24*time.Hour))

	all, err = repo.GetAll(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSystemSettingRepository(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	repo := NewSystemSettingRepository(database, logger.NewNop())

	got, err := repo.Get(ctx, "cache.last_refresh")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Set(ctx, &domain.SystemSetting{Key: "cache.last_refresh", Value: "a", Category: "cache"}))
	require.NoError(t, repo.Set(ctx, &domain.SystemSetting{Key: "cache.last_refresh", Value: "b", Category: "cache"}))

	got, err = repo.Get(ctx, "cache.last_refresh")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.Value)

	require.NoError(t, database.Where(&domain.SystemSetting{Key: "cache.last_refresh"}).Delete(&domain.SystemSetting{}).Error)
	got, err = repo.Get(ctx, "cache.last_refresh")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Set(ctx, &domain.SystemSetting{Key: "cache.last_refresh", Value: "c"}))
	got, err = repo.Get(ctx, "cache.last_refresh")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c", got.Value)
}
