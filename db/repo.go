package db

import (
	"context"
	"sort"
	"strings"

	"Gin_postgres_redis_record_loans/clock"
	"Gin_postgres_redis_record_loans/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo hosts the record registry, the loan ledger and the request
// orchestrator. Every mutation runs in one transaction; callers never
// write entity fields directly.
type Repo struct {
	DB    *gorm.DB
	clock clock.Clock
	log   logrus.FieldLogger
}

func NewRepo(db *gorm.DB, clk clock.Clock, log logrus.FieldLogger) *Repo {
	return &Repo{DB: db, clock: clk, log: log}
}

func (r *Repo) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

// validID rejects ids that can never match a uuid primary key, so Postgres
// never sees a malformed uuid literal.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *Repo) lockRecord(tx *gorm.DB, id string) (*models.Record, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "record")
	}
	var rec models.Record
	if err := tx.Clauses(forUpdate).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "record")
	}
	return &rec, nil
}

func (r *Repo) lockRequest(tx *gorm.DB, id string) (*models.Request, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "request")
	}
	var req models.Request
	if err := tx.Clauses(forUpdate).First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "request")
	}
	return &req, nil
}

func (r *Repo) lockLoan(tx *gorm.DB, id string) (*models.Loan, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "loan")
	}
	var l models.Loan
	if err := tx.Clauses(forUpdate).First(&l, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "loan")
	}
	return &l, nil
}

// lockLoans locks the loans of a request, optionally restricted to states.
func (r *Repo) lockLoans(tx *gorm.DB, requestID string, states ...models.LoanState) ([]models.Loan, error) {
	q := tx.Clauses(forUpdate).Where("request_id = ?", requestID)
	if len(states) > 0 {
		q = q.Where("state IN ?", states)
	}
	var ls []models.Loan
	if err := q.Order("created_at, id").Find(&ls).Error; err != nil {
		return nil, notFound(err, "loans")
	}
	return ls, nil
}

func (r *Repo) saveRequestState(tx *gorm.DB, req *models.Request) error {
	req.UpdatedAt = r.clock.Now()
	return tx.Model(&models.Request{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"state":      req.State,
			"updated_at": req.UpdatedAt,
		}).Error
}

// uniqueIDs trims, dedupes and sorts ids; sorted order is the row lock order.
func uniqueIDs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
