// db/repo_loans.go
package db

import (
	"context"

	"Gin_postgres_redis_record_loans/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type loanEvent string

const (
	eventReady     loanEvent = "ready"
	eventLost      loanEvent = "lost"
	eventDelivered loanEvent = "delivered"
	eventReturned  loanEvent = "returned"
)

// createLoan opens a pending loan for recordID inside tx.
// 原子操作 = 锁住 record → 检查进行中的借阅 → 新建 loan；部分唯一索引兜底并发
// It runs in a savepoint so a rejection leaves the outer transaction usable.
func (r *Repo) createLoan(tx *gorm.DB, requestID, recordID, borrowerID string) (*models.Loan, error) {
	var loan *models.Loan
	err := tx.Transaction(func(sp *gorm.DB) error {
		if _, err := r.lockRecord(sp, recordID); err != nil {
			return err
		}
		var n int64
		if err := sp.Model(&models.Loan{}).
			Where("record_id = ? AND active = ?", recordID, true).
			Count(&n).Error; err != nil {
			return errors.Wrap(err, "count active loans")
		}
		if n > 0 {
			return ErrRecordUnavailable
		}

		l := &models.Loan{
			ID:         uuid.NewString(),
			RequestID:  requestID,
			RecordID:   recordID,
			BorrowerID: borrowerID,
			State:      models.LoanPending,
			Active:     true,
		}
		if err := sp.Create(l).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrRecordUnavailable
			}
			return errors.Wrap(err, "insert loan")
		}
		loan = l
		return nil
	})
	if errors.Is(err, ErrRecordUnavailable) {
		loanRejections.Inc()
	}
	return loan, err
}

// applyLoan runs one guarded transition and its record side effect.
// Skipped transitions write nothing.
func (r *Repo) applyLoan(tx *gorm.DB, actorID string, l *models.Loan, ev loanEvent) (models.Transition, error) {
	now := r.clock.Now()
	var out models.LoanOutcome
	switch ev {
	case eventReady:
		out = l.MarkReady()
	case eventLost:
		out = l.MarkLost()
	case eventDelivered:
		out = l.MarkDelivered(now)
	case eventReturned:
		out = l.MarkReturned(now)
	}
	loanTransitions.WithLabelValues(string(ev), out.Result.String()).Inc()

	entry := r.log.WithFields(logrus.Fields{
		"actor":   actorID,
		"loan":    l.ID,
		"record":  l.RecordID,
		"request": l.RequestID,
		"event":   string(ev),
	})
	if out.Result == models.Skipped {
		entry.WithField("state", l.State).Debug("loan transition skipped")
		return models.Skipped, nil
	}

	if err := tx.Save(l).Error; err != nil {
		return models.Skipped, errors.Wrapf(err, "save loan %s", l.ID)
	}
	if err := r.applyRecordEffect(tx, l.RecordID, out.Effect); err != nil {
		return models.Skipped, err
	}
	entry.WithField("state", l.State).Info("loan transition applied")
	return models.Applied, nil
}

// applyRecordEffect only writes when the flag actually changes.
func (r *Repo) applyRecordEffect(tx *gorm.DB, recordID string, eff models.RecordEffect) error {
	var from, to bool
	switch eff {
	case models.EffectLock:
		from, to = false, true
	case models.EffectUnlock:
		from, to = true, false
	default:
		return nil
	}
	err := tx.Model(&models.Record{}).
		Where("id = ? AND locked = ?", recordID, from).
		Updates(map[string]any{
			"locked":     to,
			"updated_at": r.clock.Now(),
		}).Error
	return errors.Wrapf(err, "update lock of record %s", recordID)
}

// ReturnLoan marks a delivered loan returned and closes its request when
// nothing is left out, in one transaction. Other states are a no-op.
func (r *Repo) ReturnLoan(ctx context.Context, actorID, loanID string) (*models.Loan, error) {
	if !validID(loanID) {
		return nil, notFound(gorm.ErrRecordNotFound, "loan")
	}
	var loan *models.Loan
	err := r.tx(ctx, func(tx *gorm.DB) error {
		// 锁顺序：先 request 再 loan，与 Prepare/ConfirmDelivery 一致
		var probe models.Loan
		if err := tx.Select("id", "request_id").First(&probe, "id = ?", loanID).Error; err != nil {
			return notFound(err, "loan")
		}
		req, err := r.lockRequest(tx, probe.RequestID)
		if err != nil {
			return err
		}
		l, err := r.lockLoan(tx, loanID)
		if err != nil {
			return err
		}
		res, err := r.applyLoan(tx, actorID, l, eventReturned)
		if err != nil {
			return err
		}
		if res == models.Applied {
			if err := r.closeIfEligible(tx, actorID, req); err != nil {
				return err
			}
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *Repo) GetLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	if !validID(loanID) {
		return nil, notFound(gorm.ErrRecordNotFound, "loan")
	}
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", loanID).Error; err != nil {
		return nil, notFound(err, "loan")
	}
	return &l, nil
}
