package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/apperror"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/repository/repotest"
)

// April 2024 has 30 days, so ceil(30/7) = 5 weeks.
var testNow = time.Date(2024, time.April, 15, 10, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

type fakeCache struct {
	mu          sync.Mutex
	snapshots   map[string]*model.FinancialKPIs
	invalidated []string
	events      []model.FinanceEvent
}

func newFakeCache() *fakeCache {
	return &fakeCache{snapshots: make(map[string]*model.FinancialKPIs)}
}

func (f *fakeCache) GetKPIs(_ context.Context, ref string) (*model.FinancialKPIs, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.snapshots[ref]
	return k, ok, nil
}

func (f *fakeCache) SetKPIs(_ context.Context, ref string, k *model.FinancialKPIs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[ref] = k
	return nil
}

func (f *fakeCache) InvalidateKPIs(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snapshots, ref)
	f.invalidated = append(f.invalidated, ref)
	return nil
}

func (f *fakeCache) Publish(_ context.Context, ev model.FinanceEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type harness struct {
	store    *repotest.Store
	cache    *fakeCache
	students *StudentService
	plans    *PlanService
	sessions *SessionService
	payments *PaymentService
	finance  *FinanceService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessAt(t, testNow)
}

func newHarnessAt(t *testing.T, now time.Time) *harness {
	t.Helper()
	store := repotest.New()
	cache := newFakeCache()
	clock := fixedClock(now)
	log := zerolog.Nop()
	return &harness{
		store:    store,
		cache:    cache,
		students: NewStudentService(store.Students(), store.Payments(), store.Sessions(), cache, clock, log),
		plans:    NewPlanService(store.Plans(), store.Students(), clock, log),
		sessions: NewSessionService(store.Sessions(), store.Students(), store.Plans(), store.Payments(), clock, log),
		payments: NewPaymentService(store.Payments(), store.Students(), cache, cache, clock, log),
		finance:  NewFinanceService(store.Payments(), store.Students(), cache, clock, log),
	}
}

// validCPFs pass the checksum.
var validCPFs = []string{"529.982.247-25", "111.444.777-35", "123.456.789-09", "935.411.347-80"}

func (h *harness) createStudent(t *testing.T, name, cpf string, weekly int) *model.StudentView {
	t.Helper()
	st, err := h.students.Create(context.Background(), model.CreateStudentRequest{
		Name:            name,
		CPF:             cpf,
		MonthlyFee:      150,
		WeeklyFrequency: weekly,
		DueDay:          10,
	})
	if err != nil {
		t.Fatalf("create student %s: %v", name, err)
	}
	return st
}

func (h *harness) logSession(t *testing.T, studentID int, at time.Time, performed, makeup bool) *model.Session {
	t.Helper()
	req := model.CreateSessionRequest{
		StudentID:   studentID,
		Timestamp:   &model.WallClock{Time: at},
		Performed:   &performed,
		NeedsMakeup: makeup,
	}
	if !performed {
		reason := "viagem"
		req.AbsenceReason = &reason
	}
	sess, err := h.sessions.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("log session: %v", err)
	}
	return sess
}

func assertKind(t *testing.T, err error, want apperror.Kind) *apperror.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	ae, ok := apperror.As(err)
	if !ok || ae.Kind != want {
		t.Fatalf("expected %s error, got %v", want, err)
	}
	return ae
}

func ptr[T any](v T) *T { return &v }
