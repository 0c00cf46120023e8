package models

import (
	"time"

	"github.com/swytch/paydesk/pkg/types"
)

// UserMembership holds the single tier a user currently has, or "none".
type UserMembership struct {
	UserID     string `gorm:"column:user_id;type:varchar(64);primaryKey" json:"user_id"`
	Membership string `gorm:"column:membership;type:varchar(64);not null;default:'none'" json:"membership"`
	// SourceTransactionID is the submission that last set Membership.
	SourceTransactionID *string   `gorm:"column:source_transaction_id;type:varchar(128)" json:"source_transaction_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (UserMembership) TableName() string {
	return "user_membership"
}

// Active reports whether a tier other than the "none" sentinel is set.
func (m *UserMembership) Active() bool {
	return m != nil && m.Membership != "" && m.Membership != types.MembershipNone
}
