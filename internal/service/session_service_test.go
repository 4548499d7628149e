package service

import (
	"context"
	"testing"
	"time"

	"github.com/personal-system/personal-backend/internal/apperror"
	"github.com/personal-system/personal-backend/internal/model"
)

func TestSessionMissedNeedsReason(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.createStudent(t, "Ana", validCPFs[0], 3)

	for _, reason := range []*string{nil, ptr(""), ptr("   \t")} {
		_, err := h.sessions.Create(ctx, model.CreateSessionRequest{StudentID: st.ID, Performed: ptr(false), AbsenceReason: reason})
		if ae := assertKind(t, err, apperror.KindValidation); ae.Field != "motivo_ausencia" {
			t.Errorf("field = %q", ae.Field)
		}
	}
	if n := h.store.Counts().Sessions; n != 0 {
		t.Fatalf("sessions = %d, want 0", n)
	}

	sess, err := h.sessions.Create(ctx, model.CreateSessionRequest{StudentID: st.ID, Performed: ptr(false), AbsenceReason: ptr("doente")})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Performed {
		t.Error("session should be missed")
	}
}

func TestSessionDefaults(t *testing.T) {
	h := newHarness(t)
	st := h.createStudent(t, "Ana", validCPFs[0], 3)

	sess, err := h.sessions.Create(context.Background(), model.CreateSessionRequest{StudentID: st.ID})
	if err != nil {
		t.Fatal(err)
	}
	if !sess.Performed {
		t.Error("performed should default to true")
	}
	if !sess.Timestamp.Equal(testNow) {
		t.Errorf("timestamp = %v, want %v", sess.Timestamp, testNow)
	}
}

func TestSessionTimestampKeepsWallClock(t *testing.T) {
	h := newHarness(t)
	st := h.createStudent(t, "Ana", validCPFs[0], 3)

	zone := time.FixedZone("BRT", -3*3600)
	at := time.Date(2024, 4, 20, 7, 15, 0, 0, zone)
	sess, err := h.sessions.Create(context.Background(), model.CreateSessionRequest{StudentID: st.ID, Timestamp: &model.WallClock{Time: at}})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Timestamp.Hour() != 7 || sess.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp = %v, want 07:15 wall clock without zone", sess.Timestamp)
	}
}

func TestSessionPlanMustBelongToStudent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ana := h.createStudent(t, "Ana", validCPFs[0], 3)
	bruno := h.createStudent(t, "Bruno", validCPFs[1], 3)
	plan, err := h.plans.Create(ctx, planRequest(bruno.ID, 1))
	if err != nil {
		t.Fatal(err)
	}

	for _, planID := range []int{plan.ID, 999} {
		_, err := h.sessions.Create(ctx, model.CreateSessionRequest{StudentID: ana.ID, PlanID: ptr(planID)})
		if ae := assertKind(t, err, apperror.KindBusinessRule); ae.Field != "plano_treino_id" {
			t.Errorf("field = %q", ae.Field)
		}
	}

	if _, err := h.sessions.Create(ctx, model.CreateSessionRequest{StudentID: bruno.ID, PlanID: &plan.ID}); err != nil {
		t.Errorf("own plan rejected: %v", err)
	}
}

func TestSessionUnknownStudent(t *testing.T) {
	h := newHarness(t)
	_, err := h.sessions.Create(context.Background(), model.CreateSessionRequest{StudentID: 7})
	assertKind(t, err, apperror.KindNotFound)
}

func TestSessionListPaging(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.createStudent(t, "Ana", validCPFs[0], 3)

	base := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 520; i++ {
		h.logSession(t, st.ID, base.Add(time.Duration(i)*time.Hour), true, false)
	}

	got, total, err := h.sessions.List(ctx, model.ListSessionsQuery{Limit: 500})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 500 || total != 520 {
		t.Fatalf("len = %d total = %d", len(got), total)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Fatalf("not descending at %d", i)
		}
	}

	rest, _, err := h.sessions.List(ctx, model.ListSessionsQuery{Limit: 500, Offset: 500})
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 20 {
		t.Errorf("second page = %d, want 20", len(rest))
	}

	_, _, err = h.sessions.List(ctx, model.ListSessionsQuery{Limit: 501})
	if ae := assertKind(t, err, apperror.KindValidation); ae.Field != "limit" {
		t.Errorf("field = %q", ae.Field)
	}
}

func TestSessionListFilters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ana := h.createStudent(t, "Ana", validCPFs[0], 3)
	bruno := h.createStudent(t, "Bruno", validCPFs[1], 3)

	h.logSession(t, ana.ID, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), true, false)
	h.logSession(t, ana.ID, time.Date(2024, 4, 5, 23, 59, 59, 0, time.UTC), false, true)
	h.logSession(t, ana.ID, time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC), true, false)
	h.logSession(t, bruno.ID, time.Date(2024, 4, 3, 12, 0, 0, 0, time.UTC), true, false)

	got, total, err := h.sessions.List(ctx, model.ListSessionsQuery{
		StudentID: &ana.ID, From: "2024-04-01", To: "2024-04-05", Limit: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("inclusive range returned %d", total)
	}

	got, _, err = h.sessions.List(ctx, model.ListSessionsQuery{Performed: ptr(false), Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Performed {
		t.Errorf("performed filter = %+v", got)
	}

	_, _, err = h.sessions.List(ctx, model.ListSessionsQuery{From: "01/04/2024", Limit: 100})
	assertKind(t, err, apperror.KindValidation)
}

func TestAdherence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.createStudent(t, "Ana", validCPFs[0], 3)

	// 10 qualifying: 8 performed plus 2 missed without make-up.
	for i := 0; i < 8; i++ {
		h.logSession(t, st.ID, time.Date(2024, 4, 1+i, 7, 0, 0, 0, time.UTC), true, false)
	}
	h.logSession(t, st.ID, time.Date(2024, 4, 20, 7, 0, 0, 0, time.UTC), false, false)
	h.logSession(t, st.ID, time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC), false, false)
	// Not qualifying: needs make-up, or outside the month.
	h.logSession(t, st.ID, time.Date(2024, 4, 21, 7, 0, 0, 0, time.UTC), false, true)
	h.logSession(t, st.ID, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true, false)
	h.logSession(t, st.ID, time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), true, false)

	rep, err := h.sessions.Adherence(ctx, st.ID, "04/2024")
	if err != nil {
		t.Fatal(err)
	}
	if rep.ExpectedSessions != 15 || rep.CompletedSessions != 10 || rep.AdherenceRate != 0.6667 {
		t.Errorf("report = %+v", rep)
	}
}

func TestAdherenceBonusSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.createStudent(t, "Ana", validCPFs[0], 2)

	if _, err := h.payments.Create(ctx, model.CreatePaymentRequest{StudentID: st.ID, Amount: 200, BonusSessions: ptr(2)}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.payments.Create(ctx, model.CreatePaymentRequest{StudentID: st.ID, Amount: 50, BonusSessions: ptr(3)}); err != nil {
		t.Fatal(err)
	}

	rep, err := h.sessions.Adherence(ctx, st.ID, "4/2024")
	if err != nil {
		t.Fatal(err)
	}
	if rep.ExpectedSessions != 15 {
		t.Errorf("expected = %d, want 2*5+5", rep.ExpectedSessions)
	}
	if rep.ReferenceMonth != "04/2024" || rep.AdherenceRate != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestAdherenceDefaultsToCurrentMonth(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.createStudent(t, "Ana", validCPFs[0], 3)
	h.logSession(t, st.ID, testNow, true, false)

	rep, err := h.sessions.Adherence(ctx, st.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if rep.ReferenceMonth != "04/2024" || rep.ExpectedSessions != 15 || rep.CompletedSessions != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestAdherenceErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.createStudent(t, "Ana", validCPFs[0], 3)

	for _, ref := range []string{"13/2024", "2024-04", "abril"} {
		_, err := h.sessions.Adherence(ctx, st.ID, ref)
		if ae := assertKind(t, err, apperror.KindValidation); ae.Field != "referencia_mes" {
			t.Errorf("%s: field = %q", ref, ae.Field)
		}
	}
	_, err := h.sessions.Adherence(ctx, 999, "04/2024")
	assertKind(t, err, apperror.KindNotFound)
}

func TestSessionGetDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.createStudent(t, "Ana", validCPFs[0], 3)
	sess := h.logSession(t, st.ID, testNow, true, false)

	if _, err := h.sessions.Get(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if err := h.sessions.Delete(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	_, err := h.sessions.Get(ctx, sess.ID)
	assertKind(t, err, apperror.KindNotFound)
	assertKind(t, h.sessions.Delete(ctx, sess.ID), apperror.KindNotFound)
}
