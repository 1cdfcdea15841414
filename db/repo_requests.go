// db/repo_requests.go
package db

import (
	"context"

	"Gin_postgres_redis_record_loans/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateRequest opens a pending request with one item per record and a
// pending loan for every record the ledger accepts. Records that already
// have an active loan keep their item (availableAtCreation=false) but get
// no loan; the request still succeeds.
func (r *Repo) CreateRequest(ctx context.Context, requesterID string, recordIDs []string) (*models.Request, error) {
	ids := uniqueIDs(recordIDs)
	if len(ids) == 0 {
		return nil, ErrEmptyRequest
	}
	for _, id := range ids {
		if !validID(id) {
			return nil, notFound(gorm.ErrRecordNotFound, "record "+id)
		}
	}

	req := &models.Request{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		State:       models.RequestPending,
	}
	rejected := 0
	err := r.tx(ctx, func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&models.Record{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return errors.Wrap(err, "count records")
		}
		if int(found) != len(ids) {
			return errors.Wrap(ErrNotFound, "record")
		}
		if err := tx.Create(req).Error; err != nil {
			return errors.Wrap(err, "insert request")
		}

		for _, recordID := range ids {
			view, err := r.recordView(tx, recordID)
			if err != nil {
				return err
			}
			available := view.Available

			if _, err := r.createLoan(tx, req.ID, recordID, requesterID); err != nil {
				if !errors.Is(err, ErrRecordUnavailable) {
					return err
				}
				available = false
				rejected++
			}

			item := &models.RequestItem{
				ID:                  uuid.NewString(),
				RequestID:           req.ID,
				RecordID:            recordID,
				AvailableAtCreation: available,
			}
			if err := tx.Create(item).Error; err != nil {
				return errors.Wrap(err, "insert request item")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := "full"
	if rejected > 0 {
		outcome = "partial"
	}
	requestsCreated.WithLabelValues(outcome).Inc()
	r.log.WithFields(logrus.Fields{
		"actor":    requesterID,
		"request":  req.ID,
		"records":  len(ids),
		"rejected": rejected,
	}).Info("request created")

	return r.GetRequest(ctx, req.ID)
}

// Prepare resolves every pending loan of a pending request: loans listed in
// readyLoanIDs become ready, the rest are lost. The request becomes prepared
// if at least one loan became ready, cancelled otherwise.
func (r *Repo) Prepare(ctx context.Context, actorID, requestID string, readyLoanIDs []string) (*models.Request, error) {
	ready := make(map[string]struct{}, len(readyLoanIDs))
	for _, id := range uniqueIDs(readyLoanIDs) {
		ready[id] = struct{}{}
	}

	err := r.tx(ctx, func(tx *gorm.DB) error {
		req, err := r.lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if req.State != models.RequestPending {
			r.skipped(actorID, req, "prepare")
			return nil
		}

		loans, err := r.lockLoans(tx, req.ID, models.LoanPending)
		if err != nil {
			return err
		}
		anyReady := false
		for i := range loans {
			ev := eventLost
			if _, ok := ready[loans[i].ID]; ok {
				ev = eventReady
			}
			res, err := r.applyLoan(tx, actorID, &loans[i], ev)
			if err != nil {
				return err
			}
			if ev == eventReady && res == models.Applied {
				anyReady = true
			}
		}

		req.MarkPrepared(anyReady)
		if err := r.saveRequestState(tx, req); err != nil {
			return errors.Wrap(err, "save request state")
		}
		r.log.WithFields(logrus.Fields{"actor": actorID, "request": req.ID, "state": req.State}).Info("request prepared")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetRequest(ctx, requestID)
}

// ConfirmDelivery delivers every ready loan and marks the request delivered.
// It is a no-op unless the request is prepared or pending, no loan is still
// pending and at least one loan is ready.
func (r *Repo) ConfirmDelivery(ctx context.Context, actorID, requestID string) (*models.Request, error) {
	err := r.tx(ctx, func(tx *gorm.DB) error {
		req, err := r.lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if req.State != models.RequestPrepared && req.State != models.RequestPending {
			r.skipped(actorID, req, "confirm delivery")
			return nil
		}

		loans, err := r.lockLoans(tx, req.ID)
		if err != nil {
			return err
		}
		readyCount := 0
		for _, l := range loans {
			switch l.State {
			case models.LoanPending:
				r.skipped(actorID, req, "confirm delivery with pending loans")
				return nil
			case models.LoanReady:
				readyCount++
			}
		}
		if readyCount == 0 {
			r.skipped(actorID, req, "confirm delivery without ready loans")
			return nil
		}

		for i := range loans {
			if _, err := r.applyLoan(tx, actorID, &loans[i], eventDelivered); err != nil {
				return err
			}
		}
		if req.MarkDelivered(loans) == models.Skipped {
			return nil
		}
		if err := r.saveRequestState(tx, req); err != nil {
			return errors.Wrap(err, "save request state")
		}
		r.log.WithFields(logrus.Fields{"actor": actorID, "request": req.ID, "delivered": readyCount}).Info("request delivered")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetRequest(ctx, requestID)
}

// CloseIfEligible closes a delivered request once no loan is delivered or ready.
func (r *Repo) CloseIfEligible(ctx context.Context, actorID, requestID string) (*models.Request, error) {
	err := r.tx(ctx, func(tx *gorm.DB) error {
		req, err := r.lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		return r.closeIfEligible(tx, actorID, req)
	})
	if err != nil {
		return nil, err
	}
	return r.GetRequest(ctx, requestID)
}

// closeIfEligible expects req to be locked by tx.
func (r *Repo) closeIfEligible(tx *gorm.DB, actorID string, req *models.Request) error {
	loans, err := r.lockLoans(tx, req.ID)
	if err != nil {
		return err
	}
	if req.MarkClosed(loans) == models.Skipped {
		r.skipped(actorID, req, "close")
		return nil
	}
	if err := r.saveRequestState(tx, req); err != nil {
		return errors.Wrap(err, "save request state")
	}
	r.log.WithFields(logrus.Fields{"actor": actorID, "request": req.ID}).Info("request closed")
	return nil
}

// DeleteRequest refuses while any item or loan references the request.
func (r *Repo) DeleteRequest(ctx context.Context, actorID, requestID string) error {
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if _, err := r.lockRequest(tx, requestID); err != nil {
			return err
		}
		var items, loans int64
		if err := tx.Model(&models.RequestItem{}).Where("request_id = ?", requestID).Count(&items).Error; err != nil {
			return errors.Wrap(err, "count request items")
		}
		if err := tx.Model(&models.Loan{}).Where("request_id = ?", requestID).Count(&loans).Error; err != nil {
			return errors.Wrap(err, "count loans")
		}
		if items > 0 || loans > 0 {
			return ErrRequestInUse
		}
		return tx.Delete(&models.Request{}, "id = ?", requestID).Error
	})
	if err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{"actor": actorID, "request": requestID}).Info("request deleted")
	return nil
}

func (r *Repo) skipped(actorID string, req *models.Request, op string) {
	r.log.WithFields(logrus.Fields{
		"actor":   actorID,
		"request": req.ID,
		"state":   req.State,
	}).Debugf("%s skipped", op)
}

// Reads

func (r *Repo) GetRequest(ctx context.Context, requestID string) (*models.Request, error) {
	if !validID(requestID) {
		return nil, notFound(gorm.ErrRecordNotFound, "request")
	}
	var req models.Request
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("record_id") }).
		Preload("Loans", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&req, "id = ?", requestID).Error
	if err != nil {
		return nil, notFound(err, "request")
	}
	return &req, nil
}

func (r *Repo) ListRequestsForUser(ctx context.Context, requesterID string) ([]models.Request, error) {
	var reqs []models.Request
	err := r.DB.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC, id").
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list requests")
	}
	return reqs, nil
}

type AdminRequestsQuery struct {
	State string // "", pending, prepared, cancelled, delivered, closed
	Page  int
	Size  int
}

type PagedRequests struct {
	Total    int64                   `json:"total"`
	Requests []models.RequestSummary `json:"requests"`
}

// ListRequestsForAdministration lists requests newest first with their
// active and total loan counts.
func (r *Repo) ListRequestsForAdministration(ctx context.Context, q AdminRequestsQuery) (*PagedRequests, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
	db := r.DB.WithContext(ctx)

	base := db.Model(&models.Request{})
	if q.State != "" {
		base = base.Where("state = ?", q.State)
	}
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count requests")
	}

	var reqs []models.Request
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&reqs).Error; err != nil {
		return nil, errors.Wrap(err, "list requests")
	}

	out := &PagedRequests{Total: total, Requests: make([]models.RequestSummary, 0, len(reqs))}
	if len(reqs) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ID)
	}
	var counts []struct {
		RequestID string
		Active    int64
		Total     int64
	}
	if err := db.Model(&models.Loan{}).
		Select("request_id, COUNT(CASE WHEN active THEN 1 END) AS active, COUNT(*) AS total").
		Where("request_id IN ?", ids).
		Group("request_id").
		Scan(&counts).Error; err != nil {
		return nil, errors.Wrap(err, "count loans per request")
	}
	byID := make(map[string]int, len(counts))
	for i, c := range counts {
		byID[c.RequestID] = i
	}
	for _, req := range reqs {
		s := models.RequestSummary{Request: req}
		if i, ok := byID[req.ID]; ok {
			s.ActiveLoans = counts[i].Active
			s.TotalLoans = counts[i].Total
		}
		out.Requests = append(out.Requests, s)
	}
	return out, nil
}
