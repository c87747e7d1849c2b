// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/agenda-scheduler/internal/db"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

// NewDB opens a migrated in-memory SQLite database. It is limited to one
// connection because every new :memory: connection is an empty database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, ":memory:", 1)
}

// NewFileDB opens a migrated SQLite database file with up to conns
// connections, for tests that need real concurrent transactions. Writers
// begin IMMEDIATE and wait on the busy timeout instead of failing.
func NewFileDB(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agenda.db")
	return open(t, "file:"+path+"?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate", conns)
}

func open(t testing.TB, dsn string, conns int) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// Fixture is a business with an owner, one client and one 30 minute service.
type Fixture struct {
	Owner    models.User
	Client   models.User
	Business models.Business
	Service  models.Service
}

// Seed creates a Fixture. The business opens Monday to Friday 09:00-12:00
// with no breaks, in UTC.
func Seed(t testing.TB, gdb *gorm.DB) Fixture {
	t.Helper()

	f := Fixture{
		Owner:  models.User{Name: "Owner", Email: uuid.NewString() + "@owner.test", PasswordHash: "x", Role: models.RoleBusinessOwner},
		Client: models.User{Name: "Client", Email: uuid.NewString() + "@client.test", PasswordHash: "x", Role: models.RoleClient},
	}
	mustCreate(t, gdb, &f.Owner)
	mustCreate(t, gdb, &f.Client)

	f.Business = models.Business{
		Name:              "Studio",
		Timezone:          "UTC",
		OwnerID:           f.Owner.ID,
		IsActive:          true,
		MinAdvanceMinutes: 0,
	}
	mustCreate(t, gdb, &f.Business)

	f.Service = models.Service{
		BusinessID:      f.Business.ID,
		Name:            "Haircut",
		DurationMinutes: 30,
		Price:           decimal.RequireFromString("25.00"),
		Active:          true,
	}
	mustCreate(t, gdb, &f.Service)

	for wd := 1; wd <= 5; wd++ {
		mustCreate(t, gdb, &models.OperatingHours{
			BusinessID: f.Business.ID,
			Weekday:    wd,
			IsOpen:     true,
			OpenTime:   "09:00",
			CloseTime:  "12:00",
		})
	}
	mustCreate(t, gdb, &models.OperatingHours{BusinessID: f.Business.ID, Weekday: 0, IsOpen: false})

	return f
}

func mustCreate(t testing.TB, gdb *gorm.DB, v any) {
	t.Helper()
	if err := gdb.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}
