// models/request.go
package models

import "time"

const (
	RequestTable     = "lending_requests"
	RequestItemTable = "lending_request_items"
)

type RequestState string

const (
	RequestPending   RequestState = "pending"
	RequestPrepared  RequestState = "prepared"
	RequestCancelled RequestState = "cancelled"
	RequestDelivered RequestState = "delivered"
	RequestClosed    RequestState = "closed"
)

// Request 申请：一个申请人一次申请一个或多个档案
type Request struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID string       `gorm:"size:64;index;not null" json:"requesterId"`
	State       RequestState `gorm:"size:20;index;not null" json:"state"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	Items []RequestItem `gorm:"foreignKey:RequestID" json:"items,omitempty"`
	Loans []Loan        `gorm:"foreignKey:RequestID" json:"loans,omitempty"`
}

func (Request) TableName() string { return RequestTable }

// RequestItem is immutable after creation.
type RequestItem struct {
	ID                  string `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID           string `gorm:"type:uuid;index;not null" json:"requestId"`
	RecordID            string `gorm:"type:uuid;index;not null" json:"recordId"`
	AvailableAtCreation bool   `gorm:"not null" json:"availableAtCreation"`
}

func (RequestItem) TableName() string { return RequestItemTable }

// MarkPrepared: pending -> prepared if any loan became ready, else cancelled.
func (r *Request) MarkPrepared(anyReady bool) Transition {
	if r.State != RequestPending {
		return Skipped
	}
	if anyReady {
		r.State = RequestPrepared
	} else {
		r.State = RequestCancelled
	}
	return Applied
}

// MarkDelivered: prepared|pending -> delivered, only once no loan is left
// pending or ready.
func (r *Request) MarkDelivered(loans []Loan) Transition {
	if r.State != RequestPrepared && r.State != RequestPending {
		return Skipped
	}
	for _, l := range loans {
		if l.State == LoanPending || l.State == LoanReady {
			return Skipped
		}
	}
	r.State = RequestDelivered
	return Applied
}

// MarkClosed: delivered -> closed once no loan is delivered or ready.
func (r *Request) MarkClosed(loans []Loan) Transition {
	if r.State != RequestDelivered {
		return Skipped
	}
	for _, l := range loans {
		if l.State == LoanDelivered || l.State == LoanReady {
			return Skipped
		}
	}
	r.State = RequestClosed
	return Applied
}

// RequestSummary is the administration list row.
type RequestSummary struct {
	Request
	ActiveLoans int64 `json:"activeLoans"`
	TotalLoans  int64 `json:"totalLoans"`
}
