package handlers

import (
	"context"

	"github.com/swytch/paydesk/internal/app/service/payment"
	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/pkg/types"
)

// PaymentService is the part of payment.Service the HTTP layer uses.
type PaymentService interface {
	Submit(ctx context.Context, req *payment.SubmitRequest) (*payment.Result, error)
	Intent(amount int64, transactionType types.TransactionType, itemID string) (string, error)
	ListUserTransactions(ctx context.Context, userID string, from, size int) ([]*models.PaymentTransaction, int64, error)
	ScanTransactions(ctx context.Context, req *payment.ScanTransactionsRequest) (*payment.ScanTransactionsResponse, error)
}

// MembershipReader loads a user's membership state.
type MembershipReader interface {
	Get(ctx context.Context, userID string) (*models.UserMembership, error)
}
