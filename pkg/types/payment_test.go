package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransactionType_RequiresScreenshot(t *testing.T) {
	require.True(t, TransactionTypeMembership.RequiresScreenshot())
	require.True(t, TransactionTypeContentPurchase.RequiresScreenshot())
	require.False(t, TransactionTypeWithdraw.RequiresScreenshot())
}

func TestTransactionType_Valid(t *testing.T) {
	require.True(t, TransactionTypeWithdraw.Valid())
	require.False(t, TransactionType("refund").Valid())
	require.False(t, TransactionType("").Valid())
}

func TestCheckFields_RejectsUnknownColumn(t *testing.T) {
	filters := []*CommonFilter{
		{Field: "status", Operator: CommonFilterOperatorEq, Values: []any{"pending"}},
		{Field: "amount; drop table x", Operator: CommonFilterOperatorEq, Values: []any{"1"}},
	}
	err := CheckFields(filters, "status", "user_id")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not allowed")

	require.NoError(t, CheckFields(filters[:1], "status", "user_id"))
}
