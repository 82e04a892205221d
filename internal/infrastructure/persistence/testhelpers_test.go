package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dashprint/backend/internal/infrastructure/persistence/models"
)

// newMockGormDB returns a GORM handle backed by sqlmock using the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// newSQLiteDB returns a migrated in-memory database
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

func seedDashboard(t *testing.T, db *gorm.DB) *models.DashboardModel {
	t.Helper()
	d := &models.DashboardModel{
		Name:          "Ops",
		DisplayPeriod: 30,
		Pages: []models.DashboardPageModel{
			{Name: "Second", SortOrder: 1, Widgets: []models.WidgetModel{
				{Type: "problems", Y: 0, Width: 12, Height: 4, Fields: `{}`},
			}},
			{Name: "", SortOrder: 0, Widgets: []models.WidgetModel{
				{Type: "clock", Name: "UTC", Y: 0, Width: 4, Height: 3, Fields: `{"time_type":1}`},
				{Type: "graph", Y: 3, Width: 12, Height: 5, Fields: `{"graphid":"42"}`},
			}},
		},
	}
	require.NoError(t, db.Create(d).Error)
	return d
}
