package models

import (
	"testing"

	"github.com/swytch/paydesk/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	require.Equal(t, "payment_transaction", PaymentTransaction{}.TableName())
	require.Equal(t, "user_membership", UserMembership{}.TableName())
	require.Equal(t, "payment_submission_log", PaymentSubmissionLog{}.TableName())
}

func TestUserMembership_Active(t *testing.T) {
	var missing *UserMembership
	require.False(t, missing.Active())
	require.False(t, (&UserMembership{Membership: types.MembershipNone}).Active())
	require.False(t, (&UserMembership{}).Active())
	require.True(t, (&UserMembership{Membership: "membership_pro"}).Active())
}

func TestPaymentTransaction_IsPending(t *testing.T) {
	require.True(t, (&PaymentTransaction{Status: types.TransactionStatusPending}).IsPending())
	require.False(t, (&PaymentTransaction{Status: types.TransactionStatusApproved}).IsPending())
}
