package membership

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/pkg/logctx"
	"github.com/swytch/paydesk/pkg/types"
)

// Service reads the per-user membership state.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Get returns the stored state, or a "none" state when the user has no row.
func (s *Service) Get(ctx context.Context, userID string) (*models.UserMembership, error) {
	var m models.UserMembership
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserMembership{UserID: userID, Membership: types.MembershipNone}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	return &m, nil
}

// HasActiveMembership is true iff the stored membership is set and not "none".
func (s *Service) HasActiveMembership(ctx context.Context, userID string) (bool, error) {
	m, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	active := m.Active()
	logctx.FromCtx(ctx, s.log).Debugw("membership_checked", "membership", m.Membership, "active", active)
	return active, nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
