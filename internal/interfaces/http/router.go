package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/followup-compliance/internal/interfaces/http/handlers"
	"github.com/turtacn/followup-compliance/internal/interfaces/http/middleware"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// RouterConfig aggregates the handlers and middleware the route tree needs.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	PatientHandler *handlers.PatientHandler
	DoctorHandler  *handlers.DoctorHandler
	HealthHandler  *handlers.HealthHandler

	// CORS is optional; see middleware.CORS.
	CORS    gin.HandlerFunc
	Logging middleware.LoggingConfig

	// Metrics records HTTP metrics when set. MetricsHandler is mounted at
	// MetricsPath.
	Metrics        *prometheus.FollowupMetrics
	MetricsHandler http.Handler
	MetricsPath    string

	Logger logging.Logger
}

// NewRouter builds the gin engine: global middleware, probes, /metrics and
// the /api/v1 groups for patients and doctors.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(logger, cfg.Logging))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		middleware.AbortWithError(c, errors.Internal("panic").WithDetail(fmt.Sprint(recovered)))
	}))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}

	r.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, errors.NotFound("route not found").WithDetail(c.Request.URL.Path))
	})

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	registerPatientRoutes(api, cfg.PatientHandler, logger)
	registerDoctorRoutes(api, cfg.DoctorHandler, logger)

	return r
}

func registerPatientRoutes(api *gin.RouterGroup, h *handlers.PatientHandler, logger logging.Logger) {
	if h == nil {
		return
	}
	g := api.Group("", middleware.RequireIdentity(middleware.RolePatient, logger))

	commitments := g.Group("/patient/commitments")
	commitments.GET("", h.Compliance)
	commitments.POST("", h.Bind)
	commitments.GET("/all", h.ListBindings)
	commitments.GET("/:id", h.BindingInfo)
	commitments.PUT("/:id", h.UpdateBinding)
	commitments.PUT("/:id/current", h.SetCurrent)
	commitments.DELETE("/:id/current", h.UnsetCurrent)

	g.GET("/patient/followups", h.History)
	g.GET("/followups/plans/:id", h.PlanView)
	g.POST("/followups/records", h.Submit)
}

func registerDoctorRoutes(api *gin.RouterGroup, h *handlers.DoctorHandler, logger logging.Logger) {
	if h == nil {
		return
	}
	plans := api.Group("/doctor/plans", middleware.RequireIdentity(middleware.RoleDoctor, logger))
	plans.POST("", h.CreatePlan)
	plans.GET("", h.ListPlans)
	plans.GET("/:id", h.GetPlan)
	plans.POST("/:id/discard", h.DiscardPlan)
	plans.GET("/:id/records", h.Records)
	plans.GET("/:id/patients/:patientId/records", h.PatientRecords)
}
