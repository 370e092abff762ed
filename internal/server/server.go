package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/clubworks/clubledger/internal/config"
	feeplandomain "github.com/clubworks/clubledger/internal/feeplan/domain"
	generationdomain "github.com/clubworks/clubledger/internal/generation/domain"
	"github.com/clubworks/clubledger/internal/observability"
	obsmiddleware "github.com/clubworks/clubledger/internal/observability/logger"
	obsmetrics "github.com/clubworks/clubledger/internal/observability/metrics"
	obstracing "github.com/clubworks/clubledger/internal/observability/tracing"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	"github.com/clubworks/clubledger/internal/receipt"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log, obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine *gin.Engine
	cfg    config.Config

	planSvc       plandomain.Service
	feePlanSvc    feeplandomain.Service
	paymentSvc    paymentdomain.Service
	generationSvc generationdomain.Service
	receiptSvc    *receipt.Service
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config

	PlanSvc       plandomain.Service
	FeePlanSvc    feeplandomain.Service
	PaymentSvc    paymentdomain.Service
	GenerationSvc generationdomain.Service
	ReceiptSvc    *receipt.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,

		planSvc:       p.PlanSvc,
		feePlanSvc:    p.FeePlanSvc,
		paymentSvc:    p.PaymentSvc,
		generationSvc: p.GenerationSvc,
		receiptSvc:    p.ReceiptSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(s.ActorScope())

	// -------- Plans --------
	v1.POST("/plans", s.CreatePlan)
	v1.GET("/plans", s.ListPlans)
	v1.GET("/plans/:id", s.GetPlanByID)
	v1.PATCH("/plans/:id", s.UpdatePlan)
	v1.POST("/plans/:id/activate", s.ActivatePlan)
	v1.POST("/plans/:id/deactivate", s.DeactivatePlan)
	v1.DELETE("/plans/:id", s.DeletePlan)

	// -------- Fee plan subscriptions --------
	v1.PUT("/students/:id/fee-plan", s.AssignFeePlan)
	v1.GET("/students/:id/fee-plan", s.GetFeePlan)
	v1.POST("/students/:id/fee-plan/activate", s.ActivateFeePlan)
	v1.POST("/students/:id/fee-plan/deactivate", s.DeactivateFeePlan)
	v1.DELETE("/students/:id/fee-plan", s.RemoveFeePlan)

	// -------- Payments --------
	v1.POST("/payments", s.CreatePayment)
	v1.GET("/payments", s.ListPayments)
	v1.GET("/payments/:id", s.GetPaymentByID)
	v1.PATCH("/payments/:id/status", s.UpdatePaymentStatus)
	v1.GET("/payments/:id/receipt", s.GetPaymentReceipt)

	// -------- Bulk generation --------
	v1.POST("/payments/generate/preview", s.PreviewGeneration)
	v1.POST("/payments/generate", s.CommitGeneration)
}
