// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Catalog is a small seeded catalogue: one service per category, one program
// per plan type and one active practitioner.
type Catalog struct {
	MindService  models.Service
	BodyService  models.Service
	Practitioner models.Practitioner
	Basic        models.Program
	Extended     models.Program
	Residential  models.Program
}

func SeedCatalog(t *testing.T, db *gorm.DB) Catalog {
	t.Helper()

	c := Catalog{
		MindService: models.Service{Title: "Meditation", Slug: "meditation", Category: models.CategoryMind, Status: models.StatusActive},
		BodyService: models.Service{Title: "Detox", Slug: "detox", Category: models.CategoryBody, Status: models.StatusActive, Featured: true},
	}
	require.NoError(t, db.Create(&c.MindService).Error)
	require.NoError(t, db.Create(&c.BodyService).Error)

	c.Practitioner = models.Practitioner{
		Name:     "Dr. Meera Iyer",
		Slug:     "dr-meera-iyer",
		Status:   models.StatusActive,
		Services: []models.Service{c.MindService},
	}
	require.NoError(t, db.Create(&c.Practitioner).Error)

	c.Basic = models.Program{Name: "Basic", Slug: "basic", Type: models.ProgramBasic, SessionCount: 1, Price: decimal.NewFromInt(1500), Status: models.StatusActive, ServiceID: &c.MindService.ID}
	c.Extended = models.Program{Name: "Extended", Slug: "extended", Type: models.ProgramExtended, SessionCount: 3, Price: decimal.NewFromInt(4000), Status: models.StatusActive, ServiceID: &c.MindService.ID}
	c.Residential = models.Program{Name: "Residential", Slug: "residential", Type: models.ProgramResidential, Price: decimal.NewFromInt(25000), Status: models.StatusActive}
	for _, p := range []*models.Program{&c.Basic, &c.Extended, &c.Residential} {
		require.NoError(t, db.Create(p).Error)
	}
	return c
}
