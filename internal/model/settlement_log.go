package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettlementStatus is the outcome recorded for a finalize attempt.
type SettlementStatus string

const (
	SettlementStatusSettled  SettlementStatus = "settled"
	SettlementStatusReplayed SettlementStatus = "replayed"
	SettlementStatusFailed   SettlementStatus = "failed"
)

// SettlementLog is a relational audit row for every finalize attempt,
// successful or not. It lives in MySQL, apart from the document store.
type SettlementLog struct {
	ID                 uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	PaymentID          string           `json:"payment_id" gorm:"size:24;index"`
	Email              string           `json:"email" gorm:"size:255;not null;index"`
	CartLinesRequested int              `json:"cart_lines_requested" gorm:"not null"`
	CartLinesRemoved   int64            `json:"cart_lines_removed" gorm:"not null"`
	Status             SettlementStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ErrorMessage       string           `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt          time.Time        `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (l *SettlementLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
