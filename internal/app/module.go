package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/swytch/paydesk/internal/app/api/server"
	"github.com/swytch/paydesk/internal/app/service/catalog"
	"github.com/swytch/paydesk/internal/app/service/membership"
	"github.com/swytch/paydesk/internal/app/service/payment"
	"github.com/swytch/paydesk/internal/app/service/statistics"
	submissionlog "github.com/swytch/paydesk/internal/app/service/submission_log"
	"github.com/swytch/paydesk/internal/platform/broker"
	"github.com/swytch/paydesk/internal/platform/db"
	"github.com/swytch/paydesk/internal/platform/lock"
	"github.com/swytch/paydesk/internal/platform/objectstore"
	"github.com/swytch/paydesk/pkg/auth"
	"github.com/swytch/paydesk/pkg/config"
	"github.com/swytch/paydesk/pkg/logger"
	"github.com/swytch/paydesk/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	auth.Module,
	metrics.Module,
	db.Module,
	objectstore.Module,
	broker.Module,
	lock.Module,
	server.Module,
	catalog.Module,
	membership.Module,
	submissionlog.Module,
	payment.Module,
	statistics.Module,
)
