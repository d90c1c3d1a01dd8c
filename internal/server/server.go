package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/sitepnl/internal/config"
	"github.com/railzwaylabs/sitepnl/internal/observability"
	pnldomain "github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/railzwaylabs/sitepnl/internal/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type ServerParam struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Redis    *redis.Client `optional:"true"`
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Limiter  *ratelimit.Limiter
	PnlSvc   pnldomain.Service
}

type Server struct {
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	redis    *redis.Client
	registry *prometheus.Registry
	metrics  *observability.Metrics
	limiter  *ratelimit.Limiter
	pnlSvc   pnldomain.Service

	engine *gin.Engine
}

func NewServer(p ServerParam) *Server {
	s := &Server{
		cfg:      p.Config,
		log:      p.Log.Named("http.server"),
		db:       p.DB,
		redis:    p.Redis,
		registry: p.Registry,
		metrics:  p.Metrics,
		limiter:  p.Limiter,
		pnlSvc:   p.PnlSvc,
	}
	s.engine = s.NewEngine()
	return s
}

// NewEngine builds the gin engine with every route registered.
func (s *Server) NewEngine() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.RequestID(), s.RequestMetrics())

	s.engine = r
	s.RegisterSystemRoutes()

	r.POST("/pnl", s.RateLimit(), s.ComputePnl)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:         s.cfg.HTTP.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if s.cfg.HTTP.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
				defer cancel()
			}
			return srv.Shutdown(ctx)
		},
	})
}
