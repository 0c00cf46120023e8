package handlers

import (
	"github.com/swytch/paydesk/internal/app/service/catalog"
	"github.com/swytch/paydesk/internal/app/service/statistics"
	"github.com/swytch/paydesk/pkg/response"
)

// RespSubmitPayment wraps SubmitPaymentResponse in the standard envelope.
type RespSubmitPayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SubmitPaymentResponse    `json:"data"`
}

type RespPaymentIntent struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    PaymentIntentResponse    `json:"data"`
}

type RespCatalog struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []catalog.Tier           `json:"data"`
}

type RespMembership struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    MembershipResponse       `json:"data"`
}

type RespListTransactions struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListTransactionsResponse `json:"data"`
}

type RespListPaymentTransactions struct {
	Code    response.APIResponseCode        `json:"code"`
	Message string                          `json:"message"`
	Data    ListPaymentTransactionsResponse `json:"data"`
}

type RespPaymentStatistic struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.Response      `json:"data"`
}
