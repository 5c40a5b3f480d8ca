package followup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/memory"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/redis"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

// fakeCache is an in-process redis.Cache that keeps JSON like the real one.
type fakeCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	loads    int
	prefixes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *fakeCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) (bool, error) {
	if err := c.Get(ctx, key, dest); err == nil {
		return true, nil
	}
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	v, err := loader(ctx)
	if err != nil {
		return false, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		return false, err
	}
	return false, c.Get(ctx, key, dest)
}

func (c *fakeCache) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefixes = append(c.prefixes, prefix)
	var n int64
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }

type fakeLocks struct {
	err   error
	names []string
	held  int
}

func (f *fakeLocks) NewMutex(name string, _ ...redis.LockOption) redis.DistributedLock {
	f.names = append(f.names, name)
	return &fakeMutex{owner: f}
}

type fakeMutex struct{ owner *fakeLocks }

func (m *fakeMutex) Lock(context.Context) error {
	if m.owner.err != nil {
		return m.owner.err
	}
	m.owner.held++
	return nil
}

func (m *fakeMutex) TryLock(ctx context.Context) (bool, error) {
	return m.Lock(ctx) == nil, nil
}

func (m *fakeMutex) Unlock(context.Context) error {
	m.owner.held--
	return nil
}

// testEnv bundles the services over one memory store and a fixed clock.
type testEnv struct {
	store       *memory.Store
	deps        Dependencies
	publisher   *mockPublisher
	plans       PlanService
	bindings    BindingService
	submissions SubmissionService
	compliance  ComplianceService
}

var testNow = time.Date(2024, time.December, 10, 9, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T, opts ...func(*Dependencies)) *testEnv {
	t.Helper()
	store := memory.NewStore()
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	n := 0
	deps := Dependencies{
		Plans:       store.Plans(),
		Bindings:    store.Bindings(),
		Submissions: store.Submissions(),
		Clock:       domainFollowup.FixedClock{T: testNow},
		Events:      pub,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{
		store:       store,
		deps:        deps,
		publisher:   pub,
		plans:       NewPlanService(deps),
		bindings:    NewBindingService(deps),
		submissions: NewSubmissionService(deps),
		compliance:  NewComplianceService(deps),
	}
}

// createKneePlan authors a plan with a daily, a pre-operative and two
// post-operative checkpoints.
func (e *testEnv) createKneePlan(t *testing.T, questions ...domainFollowup.Question) *domainFollowup.Plan {
	t.Helper()
	plan, err := e.plans.Create(context.Background(), &CreatePlanInput{
		DoctorID:    "doc-1",
		Title:       "Knee replacement",
		TimeTypes:   []string{"dailySelfAssessment", "preoperative", "oneMonth", "threeMonths"},
		Questions:   questions,
		CreatorName: "Dr. Lin",
		TeamName:    "Orthopedics A",
	})
	require.NoError(t, err)
	return plan
}

func (e *testEnv) bind(t *testing.T, patientID, planID, surgeryDate string) *BindResult {
	t.Helper()
	res, err := e.bindings.Bind(context.Background(), &BindInput{
		PatientID:   patientID,
		PlanID:      planID,
		SurgeryDate: surgeryDate,
	})
	require.NoError(t, err)
	return res
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.IsCode(err, code), "want %s, got %v", code, err)
}
