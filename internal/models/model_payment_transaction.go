package models

import (
	"time"

	"github.com/swytch/paydesk/pkg/types"

	"gorm.io/datatypes"
)

// PaymentTransactionExtra is the submission context kept for the review desk.
type PaymentTransactionExtra struct {
	// PaymentURI is the UPI deep link the payer was shown.
	PaymentURI string `json:"payment_uri,omitempty"`
	// PayeeHandle is the VPA configured at submission time.
	PayeeHandle string `json:"payee_handle,omitempty"`
	// TierName snapshots the catalog name for membership purchases.
	TierName string `json:"tier_name,omitempty"`
	// DisplayName of the submitter, as the identity provider reported it.
	DisplayName string `json:"display_name,omitempty"`
	TraceID     string `json:"trace_id,omitempty"`
}

// PaymentTransaction is one manually verified payment submission. The client
// creates it as pending; only the review desk moves it to approved/rejected.
type PaymentTransaction struct {
	ID string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	// TransactionID is {userId}_{unixMillis} of the submission.
	TransactionID   string                  `gorm:"column:transaction_id;type:varchar(128);not null;uniqueIndex" json:"transaction_id"`
	UserID          string                  `gorm:"column:user_id;type:varchar(64);not null;index:idx_payment_tx_user_created,priority:1" json:"user_id"`
	Amount          string                  `gorm:"column:amount;type:varchar(32);not null" json:"amount"`
	TransactionType types.TransactionType   `gorm:"column:transaction_type;type:varchar(32);not null;index" json:"transaction_type"`
	Status          types.TransactionStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	ItemID          *string                 `gorm:"column:item_id;type:varchar(128)" json:"item_id,omitempty"`
	ScreenshotURL   *string                 `gorm:"column:screenshot_url;type:text" json:"screenshot_url,omitempty"`
	ScreenshotKey   *string                 `gorm:"column:screenshot_key;type:varchar(255)" json:"screenshot_key,omitempty"`
	// Timestamp is assigned by the database on insert.
	Timestamp time.Time                                    `gorm:"column:timestamp;not null;default:now()" json:"timestamp"`
	Extra     datatypes.JSONType[*PaymentTransactionExtra] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                                    `gorm:"index:idx_payment_tx_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time                                    `json:"updated_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transaction"
}

func (t *PaymentTransaction) IsPending() bool {
	return t != nil && t.Status == types.TransactionStatusPending
}
