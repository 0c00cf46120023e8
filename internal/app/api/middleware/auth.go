package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/swytch/paydesk/pkg/auth"
	"github.com/swytch/paydesk/pkg/logctx"
	"github.com/swytch/paydesk/pkg/response"
)

// TokenVerifier turns a bearer token into a Principal.
type TokenVerifier interface {
	Verify(raw string) (*auth.Principal, error)
}

// AuthMiddleware attaches the caller to the request when a valid bearer token
// is sent. Anonymous requests pass through; use RequireAuth to reject them.
func AuthMiddleware(v TokenVerifier, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.Next()
			return
		}
		p, err := v.Verify(raw)
		if err != nil {
			logctx.FromGin(c, base).Infow("bearer token rejected", "err", err)
			c.Next()
			return
		}
		ctx := auth.WithPrincipal(c.Request.Context(), p)
		c.Request = c.Request.WithContext(logctx.WithUserID(ctx, p.UserID))
		c.Set(string(logctx.UserIDKey), p.UserID)
		c.Next()
	}
}

// RequireAuth aborts anonymous requests with the unauthenticated envelope.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.FromContext(c.Request.Context()) == nil {
			c.AbortWithStatusJSON(http.StatusOK, response.ErrorMsgT[any](response.APIResponseCodeUnauthenticated, "Please log in to continue", nil))
			return
		}
		c.Next()
	}
}

// RequireAdmin lets only review-desk staff through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.FromContext(c.Request.Context())
		if p == nil {
			c.AbortWithStatusJSON(http.StatusOK, response.ErrorMsgT[any](response.APIResponseCodeUnauthenticated, "Please log in to continue", nil))
			return
		}
		if !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
