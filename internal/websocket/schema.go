package websocket

import "github.com/personal-system/personal-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is the only client message shape; the feed is read-only.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventPong    Event = "pong"
	EventPayment Event = "payment"
	EventKPIs    Event = "kpis"
)

// PaymentEvent forwards a payment change.
type PaymentEvent struct {
	Event Event              `json:"event"`
	Data  model.FinanceEvent `json:"data"`
}

// KPIEvent carries a fresh financial snapshot.
type KPIEvent struct {
	Event Event                `json:"event"`
	Data  *model.FinancialKPIs `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
