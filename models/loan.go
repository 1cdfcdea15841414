// models/loan.go
package models

import "time"

const LoanTable = "lending_loans"

type LoanState string

const (
	LoanPending   LoanState = "pending"
	LoanReady     LoanState = "ready"
	LoanLost      LoanState = "lost"
	LoanDelivered LoanState = "delivered"
	LoanReturned  LoanState = "returned"
)

// ActiveLoanStates hold the record: at most one such loan per record.
var ActiveLoanStates = []LoanState{LoanPending, LoanReady, LoanDelivered}

func (s LoanState) IsActive() bool {
	return s == LoanPending || s == LoanReady || s == LoanDelivered
}

type Loan struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID  string    `gorm:"type:uuid;index:idx_lending_loans_request_state,priority:1;not null" json:"requestId"`
	RecordID   string    `gorm:"type:uuid;index;not null" json:"recordId"`
	BorrowerID string    `gorm:"size:64;index;not null" json:"borrowerId"`
	State      LoanState `gorm:"size:20;index:idx_lending_loans_request_state,priority:2;not null" json:"state"`
	// Active 冗余列：State 属于 pending/ready/delivered 时为 true，部分唯一索引依赖它
	Active      bool       `gorm:"not null" json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	ReturnedAt  *time.Time `json:"returnedAt,omitempty"`
}

func (Loan) TableName() string { return LoanTable }

// MarkReady: pending -> ready. Unlocks the record if it was locked.
func (l *Loan) MarkReady() LoanOutcome {
	if l.State != LoanPending {
		return skippedLoan
	}
	l.State = LoanReady
	l.Active = true
	l.DeliveredAt = nil
	l.ReturnedAt = nil
	return LoanOutcome{Result: Applied, Effect: EffectUnlock}
}

// MarkLost: pending|ready -> lost. Locks the record.
func (l *Loan) MarkLost() LoanOutcome {
	if l.State != LoanPending && l.State != LoanReady {
		return skippedLoan
	}
	l.State = LoanLost
	l.Active = false
	l.DeliveredAt = nil
	l.ReturnedAt = nil
	return LoanOutcome{Result: Applied, Effect: EffectLock}
}

// MarkDelivered: ready -> delivered.
func (l *Loan) MarkDelivered(at time.Time) LoanOutcome {
	if l.State != LoanReady {
		return skippedLoan
	}
	l.State = LoanDelivered
	l.Active = true
	l.DeliveredAt = &at
	return LoanOutcome{Result: Applied, Effect: EffectNone}
}

// MarkReturned: delivered -> returned. Unlocks the record if it was locked.
func (l *Loan) MarkReturned(at time.Time) LoanOutcome {
	if l.State != LoanDelivered {
		return skippedLoan
	}
	l.State = LoanReturned
	l.Active = false
	l.ReturnedAt = &at
	return LoanOutcome{Result: Applied, Effect: EffectUnlock}
}
