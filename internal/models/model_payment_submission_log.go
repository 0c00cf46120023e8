package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentSubmissionLogStatus string

const (
	PaymentSubmissionLogStatusReceived     PaymentSubmissionLogStatus = "received"
	PaymentSubmissionLogStatusHandled      PaymentSubmissionLogStatus = "handled"
	PaymentSubmissionLogStatusHandleFailed PaymentSubmissionLogStatus = "handle_failed"
)

// PaymentSubmissionLog is the audit trail of pipeline runs, written
// asynchronously; it is used for troubleshooting only.
type PaymentSubmissionLog struct {
	ID              string                     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID          *string                    `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	TraceID         string                     `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	TransactionID   string                     `gorm:"column:transaction_id;type:varchar(128)" json:"transaction_id"`
	TransactionType string                     `gorm:"column:transaction_type;type:varchar(32)" json:"transaction_type"`
	State           string                     `gorm:"column:state;type:varchar(32)" json:"state"`
	Data            datatypes.JSON             `gorm:"column:data;type:jsonb" json:"data"`
	Result          *datatypes.JSON            `gorm:"column:result;type:jsonb" json:"result"`
	Status          PaymentSubmissionLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt       time.Time                  `json:"created_at"`
}

func (PaymentSubmissionLog) TableName() string { return "payment_submission_log" }
