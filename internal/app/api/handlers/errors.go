package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swytch/paydesk/internal/app/service/payment"
	"github.com/swytch/paydesk/pkg/response"
)

// paymentErrorCode maps a pipeline error kind to the envelope code.
func paymentErrorCode(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, payment.ErrNotAuthenticated):
		return response.APIResponseCodeUnauthenticated
	case errors.Is(err, payment.ErrValidation):
		return response.APIResponseCodeBadRequest
	case errors.Is(err, payment.ErrSubmissionInProgress):
		return response.APIResponseCodeConflict
	case errors.Is(err, payment.ErrConfiguration):
		return response.APIResponseCodeServiceUnavailable
	default:
		return response.APIResponseCodeError
	}
}

func writePaymentError(c *gin.Context, err error, data any) {
	c.JSON(http.StatusOK, response.ErrorMsgT(paymentErrorCode(err), payment.UserMessage(err), data))
}
