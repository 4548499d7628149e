package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/handler"
	"github.com/personal-system/personal-backend/internal/model"
)

type chanFeed struct {
	events chan model.FinanceEvent
	err    error
}

func (f *chanFeed) Events(context.Context) (<-chan model.FinanceEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type countingKPIs struct {
	calls atomic.Int32
}

func (k *countingKPIs) KPIs(context.Context) (*model.FinancialKPIs, error) {
	n := k.calls.Add(1)
	return &model.FinancialKPIs{ReferenceMonth: "04/2024", TotalStudents: int(n)}, nil
}

func newStreamServer(t *testing.T, feed handler.FinanceFeed, kpis handler.KPISource) *httptest.Server {
	t.Helper()
	h := handler.NewFinanceStreamHandler(feed, kpis, nil, zerolog.Nop())
	r := gin.New()
	r.GET("/stream", h.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestFinanceStream(t *testing.T) {
	feed := &chanFeed{events: make(chan model.FinanceEvent, 1)}
	kpis := &countingKPIs{}
	srv := newStreamServer(t, feed, kpis)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if msg := readEvent(t, conn); msg["event"] != "kpis" {
		t.Fatalf("first message = %v, want kpis snapshot", msg)
	}

	feed.events <- model.FinanceEvent{Type: model.FinanceEventPaymentCreated, PaymentID: 7, StudentID: 3}
	msg := readEvent(t, conn)
	if msg["event"] != "payment" {
		t.Fatalf("message = %v, want payment", msg)
	}
	data, _ := msg["data"].(map[string]any)
	if data["pagamento_id"] != float64(7) {
		t.Errorf("pagamento_id = %v, want 7", data["pagamento_id"])
	}
	if msg := readEvent(t, conn); msg["event"] != "kpis" {
		t.Fatalf("message = %v, want refreshed kpis", msg)
	}

	if err := conn.WriteJSON(map[string]string{"action": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readEvent(t, conn); msg["event"] != "pong" {
		t.Fatalf("message = %v, want pong", msg)
	}

	if err := conn.WriteJSON(map[string]string{"action": "refresh"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg = readEvent(t, conn)
	if msg["event"] != "kpis" {
		t.Fatalf("message = %v, want kpis", msg)
	}
	if got := kpis.calls.Load(); got != 3 {
		t.Errorf("KPI computations = %d, want 3", got)
	}

	if err := conn.WriteJSON(map[string]string{"action": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readEvent(t, conn); msg["event"] != "error" {
		t.Fatalf("message = %v, want error", msg)
	}
}

func TestFinanceStreamClosesWhenFeedEnds(t *testing.T) {
	feed := &chanFeed{events: make(chan model.FinanceEvent)}
	srv := newStreamServer(t, feed, &countingKPIs{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readEvent(t, conn)
	close(feed.events)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the server to close the connection")
	}
}

func TestFinanceStreamFeedUnavailable(t *testing.T) {
	srv := newStreamServer(t, &chanFeed{err: errors.New("redis down")}, &countingKPIs{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("response = %v, want 503", resp)
	}
}
