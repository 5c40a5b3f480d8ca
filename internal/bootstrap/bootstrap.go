// Package bootstrap assembles the follow-up backend from configuration:
// storage (PostgreSQL or the seeded in-memory store), the optional Redis cache
// and lock, the Kafka publisher, metrics and the application services. Both
// the API server and followupctl build on it.
package bootstrap

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/followup-compliance/internal/application/followup"
	"github.com/turtacn/followup-compliance/internal/config"
	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/memory"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/postgres"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/redis"
	"github.com/turtacn/followup-compliance/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/turtacn/followup-compliance/internal/interfaces/http"
	"github.com/turtacn/followup-compliance/internal/interfaces/http/handlers"
	"github.com/turtacn/followup-compliance/internal/interfaces/http/middleware"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// Services are the use cases the interfaces call.
type Services struct {
	Plans       followup.PlanService
	Bindings    followup.BindingService
	Submissions followup.SubmissionService
	Compliance  followup.ComplianceService
}

// Container owns every long-lived dependency. Close releases them in reverse
// order of construction.
type Container struct {
	Config   *config.Config
	Logger   logging.Logger
	Services Services

	// DB is nil in mock-data mode.
	DB    *postgres.Connection
	Redis *redis.Client

	Metrics        *prometheus.FollowupMetrics
	MetricsHandler http.Handler

	checkers []handlers.HealthChecker
	closers  []func() error
}

// Option customises New.
type Option func(*options)

type options struct {
	clock      domainFollowup.Clock
	noServices bool
}

// WithClock overrides the service clock, used by followupctl --at.
func WithClock(c domainFollowup.Clock) Option {
	return func(o *options) { o.clock = c }
}

// StorageOnly opens the database without building services, events or
// metrics. The migrate command uses it.
func StorageOnly() Option {
	return func(o *options) { o.noServices = true }
}

// New builds a Container. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, errors.InvalidParam("config is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = domainFollowup.SystemClock{Location: cfg.Location()}
	}

	c := &Container{Config: cfg, Logger: logger}
	ready := false
	defer func() {
		if !ready {
			_ = c.Close()
		}
	}()

	deps := followup.Dependencies{
		Clock:     o.clock,
		GraceDays: cfg.Scheduler.GraceDays,
		Logger:    logger.Named("followup"),
	}
	if err := c.openStorage(ctx, &deps, o.clock); err != nil {
		return nil, err
	}
	if o.noServices {
		ready = true
		return c, nil
	}
	if err := c.openRedis(&deps); err != nil {
		return nil, err
	}
	if err := c.openEvents(ctx, &deps); err != nil {
		return nil, err
	}
	if err := c.openMetrics(&deps); err != nil {
		return nil, err
	}

	c.Services = Services{
		Plans:       followup.NewPlanService(deps),
		Bindings:    followup.NewBindingService(deps),
		Submissions: followup.NewSubmissionService(deps),
		Compliance:  followup.NewComplianceService(deps),
	}
	ready = true
	return c, nil
}

func (c *Container) openStorage(ctx context.Context, deps *followup.Dependencies, clock domainFollowup.Clock) error {
	if c.Config.App.UseMockData {
		store := memory.NewStore()
		if err := memory.Seed(ctx, store, clock.Now()); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to seed mock data")
		}
		deps.Plans, deps.Bindings, deps.Submissions = store.Plans(), store.Bindings(), store.Submissions()
		c.Logger.Warn("using seeded in-memory store",
			logging.String("patient_id", memory.DemoPatientID),
			logging.String("doctor_id", memory.DemoDoctorID))
		return nil
	}

	conn, err := postgres.NewConnection(c.Config.Database, c.Logger.Named("postgres"))
	if err != nil {
		return err
	}
	c.DB = conn
	c.closers = append(c.closers, conn.Close)
	c.checkers = append(c.checkers, handlers.NewCheck("database", conn.HealthCheck))

	repoLog := c.Logger.Named("repository")
	deps.Plans = repositories.NewPostgresPlanRepo(conn, repoLog)
	deps.Bindings = repositories.NewPostgresBindingRepo(conn, repoLog)
	deps.Submissions = repositories.NewPostgresSubmissionRepo(conn, repoLog)
	return nil
}

func (c *Container) openRedis(deps *followup.Dependencies) error {
	rc := c.Config.Redis
	if !rc.Enabled {
		return nil
	}
	client, err := redis.NewClient(rc, c.Logger.Named("redis"))
	if err != nil {
		return err
	}
	c.Redis = client
	c.closers = append(c.closers, client.Close)
	c.checkers = append(c.checkers, handlers.NewCheck("redis", client.Ping))

	deps.Cache = redis.NewRedisCache(client, c.Logger.Named("cache"), redis.WithPrefix("followup:"), redis.WithDefaultTTL(rc.CacheTTL))
	deps.CacheTTL = rc.CacheTTL
	deps.Locks = redis.NewLockFactory(client, "followup:lock:", c.Logger.Named("lock"))
	deps.LockTTL = rc.LockTTL
	return nil
}

func (c *Container) openEvents(ctx context.Context, deps *followup.Dependencies) error {
	kc := c.Config.Kafka
	if !kc.Enabled {
		deps.Events = kafka.NopPublisher{}
		return nil
	}
	log := c.Logger.Named("kafka")

	tm, err := kafka.NewTopicManager(ctx, kc.Brokers, log)
	if err != nil {
		log.Warn("topic manager unavailable, relying on broker auto-create", logging.Err(err))
	} else {
		if err := tm.EnsureTopics(ctx, kafka.DefaultTopics()); err != nil {
			log.Warn("failed to ensure topics", logging.Err(err))
		}
		_ = tm.Close()
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfigFrom(kc), log)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, producer.Close)
	deps.Events = producer
	return nil
}

func (c *Container) openMetrics(deps *followup.Dependencies) error {
	mc := c.Config.Metrics
	if !mc.Enabled {
		c.Metrics = prometheus.NewNoopMetrics()
		deps.Metrics = c.Metrics
		return nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            mc.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, c.Logger.Named("metrics"))
	if err != nil {
		return err
	}
	c.Metrics = prometheus.NewFollowupMetrics(collector)
	c.MetricsHandler = collector.Handler()
	deps.Metrics = c.Metrics
	return nil
}

// Router builds the HTTP handler tree over the container's services.
func (c *Container) Router(version string) (*gin.Engine, error) {
	cors, err := middleware.CORS(middleware.CORSConfig{AllowedOrigins: c.Config.Server.CORSAllowedOrigins})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid server.cors_allowed_origins")
	}
	gin.SetMode(c.Config.Server.Mode)

	s := c.Services
	httpLog := c.Logger.Named("http")
	return httpapi.NewRouter(httpapi.RouterConfig{
		PatientHandler: handlers.NewPatientHandler(s.Compliance, s.Bindings, s.Submissions, s.Plans, httpLog),
		DoctorHandler:  handlers.NewDoctorHandler(s.Plans, httpLog),
		HealthHandler:  handlers.NewHealthHandler(version, c.checkers...),
		CORS:           cors,
		Logging:        middleware.DefaultLoggingConfig(),
		Metrics:        c.Metrics,
		MetricsHandler: c.MetricsHandler,
		MetricsPath:    c.Config.Metrics.Path,
		Logger:         httpLog,
	}), nil
}

// Close releases resources in reverse order and returns the first error.
func (c *Container) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
