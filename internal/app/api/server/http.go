package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/swytch/paydesk/docs"
	"github.com/swytch/paydesk/internal/app/api/handlers"
	mw "github.com/swytch/paydesk/internal/app/api/middleware"
	"github.com/swytch/paydesk/internal/app/service/catalog"
	"github.com/swytch/paydesk/internal/app/service/membership"
	"github.com/swytch/paydesk/internal/app/service/payment"
	"github.com/swytch/paydesk/internal/app/service/statistics"
	"github.com/swytch/paydesk/pkg/auth"
	cfgpkg "github.com/swytch/paydesk/pkg/config"
	"github.com/swytch/paydesk/pkg/metrics"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env != cfgpkg.EnvDev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeParams struct {
	fx.In

	LC         fx.Lifecycle
	Engine     *gin.Engine
	Log        *zap.SugaredLogger
	Cfg        *cfgpkg.Config
	Verifier   *auth.Verifier
	Payments   *payment.Service
	Membership *membership.Service
	Catalog    *catalog.Catalog
	Statistics *statistics.Service
}

func registerRoutes(p routeParams) {
	r, log, cfg := p.Engine, p.Log, p.Cfg
	// Prometheus metrics
	if cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		prom.SetListenAddress(cfg.MetricsAddr)
		prom.Use(r)
		p.LC.Append(fx.Hook{OnStop: func(context.Context) error { return prom.Close() }})

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.AuthMiddleware(p.Verifier, log))

	// submit stays reachable anonymously so the pipeline reports the login error itself
	handlers.RegisterPaymentRoutes(apiV1.Group("/payment"), p.Payments, p.Catalog, log)
	handlers.RegisterUserRoutes(apiV1.Group("/user", mw.RequireAuth()), p.Membership, p.Payments)
	handlers.RegisterAdminRoutes(apiV1.Group("/admin", mw.RequireAdmin()), p.Payments, p.Statistics)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
