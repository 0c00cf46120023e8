package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/swytch/paydesk/internal/app/service/payment"
	"github.com/swytch/paydesk/internal/app/service/statistics"
	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/pkg/response"
	"github.com/swytch/paydesk/pkg/types"
)

type ListTransactionRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// AdminTransactionItem adds the review-desk fields to TransactionItem.
type AdminTransactionItem struct {
	*TransactionItem
	ScreenshotKey *string `json:"screenshot_key,omitempty"`
	DisplayName   string  `json:"display_name,omitempty"`
	TierName      string  `json:"tier_name,omitempty"`
	TraceID       string  `json:"trace_id,omitempty"`
}

type ListPaymentTransactionsResponse struct {
	Items []*AdminTransactionItem `json:"items"`
	Total int64                   `json:"total"`
}

func toAdminTransactionItem(m *models.PaymentTransaction) *AdminTransactionItem {
	item := &AdminTransactionItem{TransactionItem: toTransactionItem(m), ScreenshotKey: m.ScreenshotKey}
	if e := m.Extra.Data(); e != nil {
		item.DisplayName = e.DisplayName
		item.TierName = e.TierName
		item.TraceID = e.TraceID
	}
	return item
}

// @Summary      List Payment Transactions (Admin)
// @Description  Paginated, filterable list of submitted payments for the review desk.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer token of an admin"
// @Param        request body ListTransactionRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListPaymentTransactions
// @Router       /api/v1/admin/list_payment_transactions [post]
func ApiListPaymentTransactions(svc PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := types.CheckFields(req.Filters, payment.ScanFilterFields...); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		scanReq := &payment.ScanTransactionsRequest{Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder}
		res, err := svc.ScanTransactions(c.Request.Context(), scanReq)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(res.Items, func(it *models.PaymentTransaction, _ int) *AdminTransactionItem { return toAdminTransactionItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListPaymentTransactionsResponse{Items: items, Total: res.Total}))
	}
}

// StatisticsService computes review-desk statistics.
type StatisticsService interface {
	GetStatistic(ctx context.Context, req *statistics.Request) (*statistics.Response, error)
}

// @Summary      Get Payment Statistics (Admin)
// @Description  Daily submission counts and amounts, review backlog and membership totals.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer token of an admin"
// @Param        request body statistics.Request true "Statistic request parameters"
// @Success      200  {object}  handlers.RespPaymentStatistic
// @Router       /api/v1/admin/get_payment_statistic [post]
func ApiGetPaymentStatistic(svc StatisticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := statistics.Validate(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// RegisterAdminRoutes expects r to require an admin caller.
func RegisterAdminRoutes(r gin.IRouter, svc PaymentService, stats StatisticsService) {
	r.POST("/list_payment_transactions", ApiListPaymentTransactions(svc))
	r.POST("/get_payment_statistic", ApiGetPaymentStatistic(stats))
}
