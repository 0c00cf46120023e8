package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/swytch/paydesk/internal/app/service/catalog"
	"github.com/swytch/paydesk/internal/app/service/membership"
	submissionlog "github.com/swytch/paydesk/internal/app/service/submission_log"
	"github.com/swytch/paydesk/internal/platform/broker"
	"github.com/swytch/paydesk/internal/platform/lock"
	"github.com/swytch/paydesk/internal/platform/objectstore"
	"github.com/swytch/paydesk/pkg/config"
	"github.com/swytch/paydesk/pkg/metrics"
	"github.com/swytch/paydesk/pkg/tool"
)

type serviceParams struct {
	fx.In

	Cfg       *config.Config
	Log       *zap.SugaredLogger
	DB        *gorm.DB
	Catalog   *catalog.Catalog
	Guard     *membership.Service
	Store     objectstore.Store
	Publisher broker.Publisher
	Locker    lock.Locker
	Audit     *submissionlog.Service
	Metrics   *metrics.Payment
}

func provideService(p serviceParams) *Service {
	return NewService(Deps{
		Options:   OptionsFromConfig(p.Cfg),
		Catalog:   p.Catalog,
		Guard:     p.Guard,
		Repo:      NewGormRepository(p.DB),
		Store:     p.Store,
		Publisher: p.Publisher,
		Locker:    p.Locker,
		Audit:     p.Audit,
		Clock:     tool.SystemClock{},
		Metrics:   p.Metrics,
		Log:       p.Log,
	})
}

var Module = fx.Options(
	fx.Provide(provideService),
)
