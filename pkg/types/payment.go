package types

type TransactionType string

const (
	TransactionTypeMembership      TransactionType = "membership"
	TransactionTypeWithdraw        TransactionType = "withdraw"
	TransactionTypeContentPurchase TransactionType = "content_purchase"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeMembership, TransactionTypeWithdraw, TransactionTypeContentPurchase:
		return true
	}
	return false
}

// RequiresScreenshot reports whether a proof-of-payment image must be staged.
func (t TransactionType) RequiresScreenshot() bool {
	return t == TransactionTypeMembership || t == TransactionTypeContentPurchase
}

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// MembershipNone is stored when a user holds no tier.
const MembershipNone = "none"
