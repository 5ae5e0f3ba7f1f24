package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/smallbiznis/cushionly/internal/config"
	obslogger "github.com/smallbiznis/cushionly/internal/observability/logger"
	obstracing "github.com/smallbiznis/cushionly/internal/observability/tracing"
	pricingdomain "github.com/smallbiznis/cushionly/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           cfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	log        *zap.Logger
	catalogSvc catalogdomain.Service
	pricingSvc pricingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Log        *zap.Logger
	CatalogSvc catalogdomain.Service
	PricingSvc pricingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		log:        p.Log.Named("http.server"),
		catalogSvc: p.CatalogSvc,
		pricingSvc: p.PricingSvc,
	}
	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	shop := s.engine.Group("/api/shops/:shop")

	// -------- Storefront --------
	shop.GET("/configuration", s.GetConfiguration)
	shop.POST("/quotes", s.CreateQuote)

	// -------- Catalog --------
	shop.POST("/shapes", s.SaveShape)
	shop.POST("/fill-types", s.SaveFillType)
	shop.POST("/fabric-categories", s.SaveFabricCategory)
	shop.POST("/fabrics", s.SaveFabric)
	shop.POST("/add-ons", s.SaveAddOn)
	shop.POST("/profiles", s.SaveProfile)
	shop.DELETE("/:kind/:id", s.DeleteCatalogEntity)
	shop.GET("/diagnostics/shapes", s.DiagnoseShapes)

	// -------- Pricing rules --------
	shop.PUT("/price-tiers", s.ReplacePriceTiers)
	shop.PUT("/settings", s.SaveSettings)
	shop.POST("/cache/invalidate", s.InvalidateCache)
}
