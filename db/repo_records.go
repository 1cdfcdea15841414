// db/repo_records.go
package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_record_loans/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// available = 未锁定 且 不存在进行中的借阅；单条语句读取，保证与借阅状态一致
const recordViewSelect = `
	r.id, r.code, r.title, r.description, r.locked, r.created_at, r.updated_at,
	(NOT r.locked AND NOT EXISTS (
		SELECT 1 FROM ` + models.LoanTable + ` l WHERE l.record_id = r.id AND l.active
	)) AS available`

type CreateRecordInput struct {
	Code        string
	Title       string
	Description string
}

func (r *Repo) CreateRecord(ctx context.Context, actorID string, in CreateRecordInput) (*models.Record, error) {
	code := strings.TrimSpace(in.Code)
	title := strings.TrimSpace(in.Title)
	if code == "" || title == "" {
		return nil, errors.Wrap(ErrInvalidInput, "code and title are required")
	}

	rec := &models.Record{
		ID:          uuid.NewString(),
		Code:        code,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
	}
	err := r.tx(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Record{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return errors.Wrap(err, "count records by code")
		}
		if n > 0 {
			return ErrDuplicateCode
		}
		if err := tx.Create(rec).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateCode
			}
			return errors.Wrap(err, "insert record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{"actor": actorID, "record": rec.ID, "code": rec.Code}).Info("record created")
	return rec, nil
}

// ToggleLock flips the lock flag, whatever the loan state of the record.
func (r *Repo) ToggleLock(ctx context.Context, actorID, recordID string) (*models.Record, error) {
	var rec *models.Record
	err := r.tx(ctx, func(tx *gorm.DB) error {
		var err error
		if rec, err = r.lockRecord(tx, recordID); err != nil {
			return err
		}
		rec.Locked = !rec.Locked
		rec.UpdatedAt = r.clock.Now()
		return tx.Model(&models.Record{}).
			Where("id = ?", rec.ID).
			Updates(map[string]any{
				"locked":     rec.Locked,
				"updated_at": rec.UpdatedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{"actor": actorID, "record": rec.ID, "locked": rec.Locked}).Info("record lock toggled")
	return rec, nil
}

func (r *Repo) GetRecord(ctx context.Context, recordID string) (*models.RecordView, error) {
	return r.recordView(r.DB.WithContext(ctx), recordID)
}

func (r *Repo) IsAvailable(ctx context.Context, recordID string) (bool, error) {
	v, err := r.GetRecord(ctx, recordID)
	if err != nil {
		return false, err
	}
	return v.Available, nil
}

func (r *Repo) ListRecords(ctx context.Context) ([]models.RecordView, error) {
	var rows []models.RecordView
	err := r.DB.WithContext(ctx).
		Table(models.RecordTable + " r").
		Select(recordViewSelect).
		Order("r.code").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list records")
	}
	return rows, nil
}

// DeleteRecord refuses while any request item or loan references the record.
func (r *Repo) DeleteRecord(ctx context.Context, actorID, recordID string) error {
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if _, err := r.lockRecord(tx, recordID); err != nil {
			return err
		}
		var items, loans int64
		if err := tx.Model(&models.RequestItem{}).Where("record_id = ?", recordID).Count(&items).Error; err != nil {
			return errors.Wrap(err, "count request items")
		}
		if err := tx.Model(&models.Loan{}).Where("record_id = ?", recordID).Count(&loans).Error; err != nil {
			return errors.Wrap(err, "count loans")
		}
		if items > 0 || loans > 0 {
			return ErrRecordInUse
		}
		return tx.Delete(&models.Record{}, "id = ?", recordID).Error
	})
	if err != nil {
		return err
	}

	r.log.WithFields(logrus.Fields{"actor": actorID, "record": recordID}).Info("record deleted")
	return nil
}

func (r *Repo) recordView(tx *gorm.DB, recordID string) (*models.RecordView, error) {
	if !validID(recordID) {
		return nil, notFound(gorm.ErrRecordNotFound, "record")
	}
	var v models.RecordView
	res := tx.
		Table(models.RecordTable+" r").
		Select(recordViewSelect).
		Where("r.id = ?", recordID).
		Limit(1).
		Scan(&v)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "load record")
	}
	if res.RowsAffected == 0 {
		return nil, notFound(gorm.ErrRecordNotFound, "record")
	}
	return &v, nil
}
