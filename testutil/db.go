// Package testutil builds hermetic databases and fixtures for package tests.
package testutil

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"Gin_postgres_redis_record_loans/clock"
	"Gin_postgres_redis_record_loans/db"
	"Gin_postgres_redis_record_loans/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Now is the instant every test clock is fixed at.
var Now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// NewTestDB opens a migrated SQLite database in a per-test temp dir.
// One connection only: SQLite serializes writers anyway and this keeps
// concurrent tests from tripping over SQLITE_BUSY.
func NewTestDB(t *testing.T, clk clock.Clock) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lending.db")), db.GormConfig(clk, Logger()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func NewTestRepo(t *testing.T) *db.Repo {
	t.Helper()
	clk := clock.NewFixed(Now)
	return db.NewRepo(NewTestDB(t, clk), clk, Logger())
}

func CreateRecord(t *testing.T, repo *db.Repo, code string) *models.Record {
	t.Helper()
	rec, err := repo.CreateRecord(context.Background(), "admin", db.CreateRecordInput{Code: code, Title: "Record " + code})
	if err != nil {
		t.Fatalf("create record %s: %v", code, err)
	}
	return rec
}

// LoanFor returns the loan of req for recordID, or nil.
func LoanFor(req *models.Request, recordID string) *models.Loan {
	for i := range req.Loans {
		if req.Loans[i].RecordID == recordID {
			return &req.Loans[i]
		}
	}
	return nil
}

func ItemFor(req *models.Request, recordID string) *models.RequestItem {
	for i := range req.Items {
		if req.Items[i].RecordID == recordID {
			return &req.Items[i]
		}
	}
	return nil
}

func CountActiveLoans(t *testing.T, conn *gorm.DB, recordID string) int64 {
	t.Helper()
	var n int64
	if err := conn.Model(&models.Loan{}).Where("record_id = ? AND active = ?", recordID, true).Count(&n).Error; err != nil {
		t.Fatalf("count active loans: %v", err)
	}
	return n
}
