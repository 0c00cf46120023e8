// Package auth turns bearer tokens from the identity provider into a Principal.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/fx"

	"github.com/swytch/paydesk/pkg/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Principal is the authenticated caller.
type Principal struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	// Role is "admin" for review-desk staff, empty for payers.
	Role string `json:"role,omitempty"`
}

const RoleAdmin = "admin"

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the caller or nil when the request is anonymous.
func FromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// Verifier validates HS256 tokens.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

func (v *Verifier) Verify(raw string) (*Principal, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: verifier has no secret", ErrInvalidToken)
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	return &Principal{UserID: sub, DisplayName: name, Role: role}, nil
}

// Issue signs a token for p. The identity provider owns issuance in
// production; this exists for local tooling and tests.
func (v *Verifier) Issue(p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  p.UserID,
		"name": p.DisplayName,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if p.Role != "" {
		claims["role"] = p.Role
	}
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func provideVerifier(cfg *config.Config) (*Verifier, error) {
	if cfg.Auth.JWTSecret == "" && cfg.Env != config.EnvDev {
		return nil, errors.New("auth.jwt_secret is required outside dev")
	}
	return NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer), nil
}

var Module = fx.Options(
	fx.Provide(provideVerifier),
)
