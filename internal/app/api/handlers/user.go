package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/pkg/auth"
	"github.com/swytch/paydesk/pkg/response"
	"github.com/swytch/paydesk/pkg/types"
)

type MembershipResponse struct {
	UserID     string `json:"user_id"`
	Membership string `json:"membership"`
	Active     bool   `json:"active"`
}

// TransactionItem is the API view of a stored payment submission.
type TransactionItem struct {
	ID              string                  `json:"id"`
	TransactionID   string                  `json:"transaction_id"`
	UserID          string                  `json:"user_id"`
	Amount          string                  `json:"amount"`
	TransactionType types.TransactionType   `json:"transaction_type"`
	Status          types.TransactionStatus `json:"status"`
	ItemID          *string                 `json:"item_id,omitempty"`
	ScreenshotURL   *string                 `json:"screenshot_url,omitempty"`
	PaymentURI      string                  `json:"payment_uri,omitempty"`
	Timestamp       time.Time               `json:"timestamp"`
	CreatedAt       time.Time               `json:"created_at"`
}

type ListTransactionsResponse struct {
	Items []*TransactionItem `json:"items"`
	Total int64              `json:"total"`
}

func toTransactionItem(m *models.PaymentTransaction) *TransactionItem {
	item := &TransactionItem{
		ID:              m.ID,
		TransactionID:   m.TransactionID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		TransactionType: m.TransactionType,
		Status:          m.Status,
		ItemID:          m.ItemID,
		ScreenshotURL:   m.ScreenshotURL,
		Timestamp:       m.Timestamp,
		CreatedAt:       m.CreatedAt,
	}
	if e := m.Extra.Data(); e != nil {
		item.PaymentURI = e.PaymentURI
	}
	return item
}

// @Summary      Get my membership
// @Tags         User
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer token"
// @Success      200  {object}  handlers.RespMembership
// @Router       /api/v1/user/membership [get]
func ApiUserMembership(svc MembershipReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.FromContext(c.Request.Context())
		m, err := svc.Get(c.Request.Context(), p.UserID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&MembershipResponse{UserID: p.UserID, Membership: m.Membership, Active: m.Active()}))
	}
}

// @Summary      List my payment submissions
// @Description  Returns the caller's submissions, newest first.
// @Tags         User
// @Produce      json
// @Param        Authorization  header  string  true   "Bearer token"
// @Param        from           query   int     false  "Offset"
// @Param        size           query   int     false  "Page size, at most 100"
// @Success      200  {object}  handlers.RespListTransactions
// @Router       /api/v1/user/transactions [get]
func ApiUserTransactions(svc PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.FromContext(c.Request.Context())
		from := 0
		if v := c.Query("from"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				from = n
			}
		}
		size := 20
		if v := c.Query("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid size"))
				return
			}
			size = n
		}
		rows, total, err := svc.ListUserTransactions(c.Request.Context(), p.UserID, from, size)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(rows, func(it *models.PaymentTransaction, _ int) *TransactionItem { return toTransactionItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListTransactionsResponse{Items: items, Total: total}))
	}
}

// RegisterUserRoutes expects r to require an authenticated caller.
func RegisterUserRoutes(r gin.IRouter, membership MembershipReader, svc PaymentService) {
	r.GET("/membership", ApiUserMembership(membership))
	r.GET("/transactions", ApiUserTransactions(svc))
}
