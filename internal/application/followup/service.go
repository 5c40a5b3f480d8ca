// Package followup holds the use cases of the follow-up backend: the
// compliance list, plan authoring, plan binding, the current-plan switch and
// questionnaire submission. Services are composed from the domain package and
// its repository interfaces; caching, locking, events and metrics are
// optional collaborators.
package followup

import (
	"context"
	"time"

	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/redis"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/followup-compliance/pkg/types/common"
)

// EventPublisher hands a domain event to the message bus. kafka.Producer and
// kafka.NopPublisher implement it.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Dependencies wires the services. Cache, Locks, Events and Metrics may be
// nil; the corresponding feature is then skipped.
type Dependencies struct {
	Plans       domainFollowup.PlanRepository
	Bindings    domainFollowup.BindingRepository
	Submissions domainFollowup.SubmissionRepository

	Clock     domainFollowup.Clock
	GraceDays int

	Cache    redis.Cache
	CacheTTL time.Duration
	Locks    redis.LockFactory
	LockTTL  time.Duration
	Events   EventPublisher
	Metrics  *prometheus.FollowupMetrics
	Logger   logging.Logger

	// NewID generates entity ids. Defaults to common.NewID.
	NewID func() string
}

const (
	complianceCacheName = "compliance"
	complianceKeyPrefix = "compliance:"
	defaultCacheTTL     = 10 * time.Minute
	defaultLockTTL      = 5 * time.Second
)

func (d Dependencies) withDefaults() Dependencies {
	if d.Clock == nil {
		d.Clock = domainFollowup.SystemClock{}
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = defaultCacheTTL
	}
	if d.LockTTL <= 0 {
		d.LockTTL = defaultLockTTL
	}
	if d.Metrics == nil {
		d.Metrics = prometheus.NewNoopMetrics()
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.NewID == nil {
		d.NewID = common.NewID
	}
	return d
}

// base carries the collaborators every service shares.
type base struct {
	deps Dependencies
}

func newBase(deps Dependencies) base {
	return base{deps: deps.withDefaults()}
}

func (b base) now() time.Time {
	return b.deps.Clock.Now()
}

// publish emits an event after a successful write. Failures are logged and
// counted, never returned.
func (b base) publish(ctx context.Context, topic, key string, payload interface{}) {
	if b.deps.Events == nil {
		return
	}
	err := b.deps.Events.Publish(ctx, topic, key, payload)
	b.deps.Metrics.RecordEvent(topic, err)
	if err != nil {
		b.deps.Logger.WithContext(ctx).Warn("event publish failed",
			logging.String("topic", topic),
			logging.String("key", key),
			logging.Err(err))
	}
}

// invalidatePatient drops every cached compliance list of the patient.
func (b base) invalidatePatient(ctx context.Context, patientID string) {
	b.invalidatePrefix(ctx, complianceKeyPrefix+patientID+":")
}

// invalidateAll drops every cached compliance list, used when a plan changes.
func (b base) invalidateAll(ctx context.Context) {
	b.invalidatePrefix(ctx, complianceKeyPrefix)
}

func (b base) invalidatePrefix(ctx context.Context, prefix string) {
	if b.deps.Cache == nil {
		return
	}
	if _, err := b.deps.Cache.DeleteByPrefix(ctx, prefix); err != nil {
		b.deps.Logger.WithContext(ctx).Warn("cache invalidation failed",
			logging.String("prefix", prefix),
			logging.Err(err))
	}
}

// complianceKey scopes a cached list to the patient and the local day, since
// the classification only changes when the day does.
func complianceKey(patientID string, now time.Time) string {
	return complianceKeyPrefix + patientID + ":" + domainFollowup.DateOf(now).String()
}
