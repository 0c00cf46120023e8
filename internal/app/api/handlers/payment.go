package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/swytch/paydesk/internal/app/service/catalog"
	"github.com/swytch/paydesk/internal/app/service/payment"
	"github.com/swytch/paydesk/internal/app/service/screenshot"
	"github.com/swytch/paydesk/pkg/auth"
	"github.com/swytch/paydesk/pkg/logctx"
	"github.com/swytch/paydesk/pkg/response"
	"github.com/swytch/paydesk/pkg/types"
)

const (
	// form fields and multipart overhead on top of the largest screenshot
	maxSubmitBody      = screenshot.MaxSize + 1<<20
	maxMultipartMemory = 8 << 20
)

type SubmitPaymentResponse struct {
	TransactionID  string                  `json:"transaction_id"`
	Status         types.TransactionStatus `json:"status"`
	PaymentURI     string                  `json:"payment_uri"`
	ScreenshotURL  string                  `json:"screenshot_url,omitempty"`
	UnlockedItemID string                  `json:"unlocked_item_id,omitempty"`
	Message        string                  `json:"message"`
}

// SubmitPaymentFailure is the data of a failed submission envelope.
type SubmitPaymentFailure struct {
	State     payment.State `json:"state"`
	Retryable bool          `json:"retryable"`
}

type PaymentIntentResponse struct {
	PaymentURI string `json:"payment_uri"`
}

// @Summary      Submit UPI payment
// @Description  Submits a manual UPI payment with its screenshot for admin verification.
// @Tags         Payment
// @Accept       multipart/form-data
// @Produce      json
// @Param        Authorization     header    string  true   "Bearer token"
// @Param        amount            formData  int     true   "Amount in rupees"
// @Param        transaction_type  formData  string  true   "membership, withdraw or content_purchase"
// @Param        item_id           formData  string  false  "Membership tier id or content id"
// @Param        screenshot        formData  file    false  "PNG or JPEG payment screenshot, at most 5MB"
// @Success      200  {object}  handlers.RespSubmitPayment
// @Router       /api/v1/payment/submit [post]
func ApiSubmitPayment(svc PaymentService, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		lg := logctx.FromGin(c, log)
		principal := auth.FromContext(ctx)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmitBody)
		// Anonymous callers skip form errors; the pipeline asks them to log in first.
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) && principal != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusOK, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "File size must be less than 5MB", nil))
				return
			}
			c.JSON(http.StatusOK, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "Invalid payment form", nil))
			return
		}

		transactionType := types.TransactionType(strings.TrimSpace(c.PostForm("transaction_type")))
		// an unparsable amount is left at zero and rejected by the pipeline
		amount, _ := strconv.ParseInt(strings.TrimSpace(c.PostForm("amount")), 10, 64)
		itemID := strings.TrimSpace(c.PostForm("item_id"))

		slot := &screenshot.Slot{}
		if principal != nil && transactionType.RequiresScreenshot() {
			if err := stageScreenshot(c, slot); err != nil {
				if errors.Is(err, screenshot.ErrRejected) {
					c.JSON(http.StatusOK, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
					return
				}
				lg.Warnw("failed to read screenshot", "err", err)
				c.JSON(http.StatusOK, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "Could not read the uploaded screenshot", nil))
				return
			}
		}

		var unlocked string
		res, err := svc.Submit(ctx, &payment.SubmitRequest{
			Principal:       principal,
			Amount:          amount,
			ItemID:          itemID,
			TransactionType: transactionType,
			Screenshot:      slot,
			OnSuccess:       func(id string) { unlocked = id },
		})
		if err != nil {
			failure := SubmitPaymentFailure{State: payment.StateFailed, Retryable: payment.IsRetryable(err)}
			if res != nil {
				failure.State = res.State
			}
			writePaymentError(c, err, failure)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&SubmitPaymentResponse{
			TransactionID:  res.TransactionID,
			Status:         res.Status,
			PaymentURI:     res.PaymentURI,
			ScreenshotURL:  res.ScreenshotURL,
			UnlockedItemID: unlocked,
			Message:        res.Message,
		}))
	}
}

// stageScreenshot stages the "screenshot" form file, if one was sent.
func stageScreenshot(c *gin.Context, slot *screenshot.Slot) error {
	fh, err := c.FormFile("screenshot")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	if err != nil {
		return err
	}
	f, err := screenshot.ReadMultipart(fh)
	if err != nil {
		return err
	}
	return slot.Stage(f)
}

// @Summary      Build UPI intent
// @Description  Returns the upi://pay deep link for an amount without submitting anything.
// @Tags         Payment
// @Produce      json
// @Param        amount            query  int     true   "Amount in rupees"
// @Param        transaction_type  query  string  true   "membership, withdraw or content_purchase"
// @Param        item_id           query  string  false  "Membership tier id or content id"
// @Success      200  {object}  handlers.RespPaymentIntent
// @Router       /api/v1/payment/intent [get]
func ApiPaymentIntent(svc PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "Please enter a valid amount", nil))
			return
		}
		uri, err := svc.Intent(amount, types.TransactionType(c.Query("transaction_type")), c.Query("item_id"))
		if err != nil {
			writePaymentError(c, err, nil)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&PaymentIntentResponse{PaymentURI: uri}))
	}
}

// @Summary      List membership tiers
// @Tags         Payment
// @Produce      json
// @Success      200  {object}  handlers.RespCatalog
// @Router       /api/v1/payment/catalog [get]
func ApiCatalog(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(cat.Tiers()))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc PaymentService, cat *catalog.Catalog, log *zap.SugaredLogger) {
	r.POST("/submit", ApiSubmitPayment(svc, log))
	r.GET("/intent", ApiPaymentIntent(svc))
	r.GET("/catalog", ApiCatalog(cat))
}
