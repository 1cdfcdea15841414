// models/record.go
package models

import "time"

const RecordTable = "lending_records"

// Record 实体档案（文件夹/卷宗），按 Code 唯一识别
type Record struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// Locked: physically missing, independent of loan bookkeeping.
	Locked    bool      `gorm:"not null" json:"locked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Record) TableName() string { return RecordTable }

// RecordView is a record with its availability computed at read time.
type RecordView struct {
	Record
	Available bool `json:"available"`
}
