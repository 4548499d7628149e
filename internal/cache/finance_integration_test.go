//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/personal-system/personal-backend/internal/model"
)

func newTestCache(t *testing.T, ttl time.Duration) *FinanceCache {
	t.Helper()
	_ = godotenv.Load("../../.env")
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return NewFinanceCache(rdb, ttl)
}

func TestKPISnapshotLifecycle(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()
	ref := "01/1999"
	t.Cleanup(func() { _ = c.InvalidateKPIs(ctx, ref) })

	if _, ok, err := c.GetKPIs(ctx, ref); err != nil || ok {
		t.Fatalf("GetKPIs on empty cache = %v, %v", ok, err)
	}

	want := &model.FinancialKPIs{
		ReferenceMonth: ref,
		Revenue:        decimal.RequireFromString("350.50"),
		TotalStudents:  4,
		StudentsPaid:   2,
	}
	if err := c.SetKPIs(ctx, ref, want); err != nil {
		t.Fatalf("SetKPIs: %v", err)
	}
	got, ok, err := c.GetKPIs(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("GetKPIs after set = %v, %v", ok, err)
	}
	if got.TotalStudents != 4 || got.StudentsPaid != 2 || !got.Revenue.Equal(want.Revenue) {
		t.Errorf("snapshot = %+v, want %+v", got, want)
	}

	if err := c.InvalidateKPIs(ctx, ref); err != nil {
		t.Fatalf("InvalidateKPIs: %v", err)
	}
	if _, ok, _ := c.GetKPIs(ctx, ref); ok {
		t.Error("snapshot still cached after invalidation")
	}
}

func TestZeroTTLDisablesSnapshots(t *testing.T) {
	c := newTestCache(t, 0)
	ctx := context.Background()

	if err := c.SetKPIs(ctx, "02/1999", &model.FinancialKPIs{TotalStudents: 1}); err != nil {
		t.Fatalf("SetKPIs: %v", err)
	}
	if _, ok, _ := c.GetKPIs(ctx, "02/1999"); ok {
		t.Error("snapshot cached with zero ttl")
	}
}

func TestEventFeedRoundTrip(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := c.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}

	if err := c.rdb.Publish(ctx, "finance:events", "not json").Err(); err != nil {
		t.Fatalf("publish garbage: %v", err)
	}
	sent := model.FinanceEvent{
		Type:           model.FinanceEventPaymentCreated,
		PaymentID:      42,
		StudentID:      7,
		ReferenceMonth: "03/1999",
		Amount:         decimal.NewFromInt(200),
	}
	if err := c.Publish(ctx, sent); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case ev := <-events:
		if ev.PaymentID != 42 || ev.StudentID != 7 || !ev.Amount.Equal(sent.Amount) {
			t.Errorf("event = %+v, want %+v", ev, sent)
		}
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Error("unexpected event after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Error("feed not closed after cancel")
	}
}
