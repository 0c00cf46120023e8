package submission_log

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/pkg/logctx"
	"github.com/swytch/paydesk/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a submission log. Nil input is ignored.
// Failures are logged only; the audit trail never blocks a submission.
func (s *Service) Save(ctx context.Context, entry *models.PaymentSubmissionLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	lg := logctx.FromCtx(ctx, s.log)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.Create(entry).Error; err != nil {
			lg.Errorw("failed to save submission log", "err", err, "transaction_id", entry.TransactionID)
		}
	}()
}

// Wait blocks until pending writes finish; used on shutdown.
func (s *Service) Wait() { s.wg.Wait() }

func register(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		s.Wait()
		return nil
	}})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(register),
)
