package db

import (
	"context"

	"Gin_postgres_redis_record_loans/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateLoanForTest(ctx context.Context, requestID, recordID, borrowerID string) (*models.Loan, error) {
	var l *models.Loan
	err := r.tx(ctx, func(tx *gorm.DB) error {
		var err error
		l, err = r.createLoan(tx, requestID, recordID, borrowerID)
		return err
	})
	return l, err
}

func (r *Repo) ApplyForTest(ctx context.Context, loanID, event string) (models.Transition, error) {
	var res models.Transition
	err := r.tx(ctx, func(tx *gorm.DB) error {
		l, err := r.lockLoan(tx, loanID)
		if err != nil {
			return err
		}
		res, err = r.applyLoan(tx, "test", l, loanEvent(event))
		return err
	})
	return res, err
}
