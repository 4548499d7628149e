package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/response"
	ws "github.com/personal-system/personal-backend/internal/websocket"
)

// refreshTimeout keeps a slow KPI query from stalling the stream loop.
const refreshTimeout = 5 * time.Second

// FinanceFeed delivers payment change events.
type FinanceFeed interface {
	Events(ctx context.Context) (<-chan model.FinanceEvent, error)
}

// KPISource computes the current KPI snapshot.
type KPISource interface {
	KPIs(ctx context.Context) (*model.FinancialKPIs, error)
}

// FinanceStreamHandler pushes payment events and refreshed KPIs to the
// dashboard over a WebSocket.
type FinanceStreamHandler struct {
	feed     FinanceFeed
	kpis     KPISource
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewFinanceStreamHandler(
	feed FinanceFeed,
	kpis KPISource,
	allowedOrigins []string,
	log zerolog.Logger,
) *FinanceStreamHandler {
	return &FinanceStreamHandler{
		feed:     feed,
		kpis:     kpis,
		log:      log.With().Str("component", "finance_stream_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/financeiro/stream?token=
// Sends a KPI snapshot on connect, then every payment event followed by
// the refreshed KPIs. Clients may send {"action":"ping"} or
// {"action":"refresh"}.
func (h *FinanceStreamHandler) Stream(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, err := h.feed.Events(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Finance feed unavailable")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// gorilla allows a single writer; the read loop only hands actions over.
	actions := make(chan ws.Action, 4)
	ws.KeepAlive(conn)
	go func() {
		defer cancel()
		for {
			var req ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &req); err != nil {
				return
			}
			select {
			case actions <- req.Action:
			case <-ctx.Done():
				return
			}
		}
	}()

	h.log.Info().Msg("Dashboard attached to finance stream")
	defer h.log.Info().Msg("Dashboard detached from finance stream")

	if err := h.sendKPIs(ctx, conn); err != nil {
		return
	}

	pingTicker := time.NewTicker(ws.PingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.PaymentEvent{Event: ws.EventPayment, Data: ev}); err != nil {
				return
			}
			if err := h.sendKPIs(ctx, conn); err != nil {
				return
			}

		case action := <-actions:
			var err error
			switch action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionRefresh:
				err = h.sendKPIs(ctx, conn)
			default:
				err = ws.WriteError(conn, "ação desconhecida")
			}
			if err != nil {
				return
			}

		case <-pingTicker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// sendKPIs writes a fresh snapshot. Only write failures are returned; a
// failed computation is reported to the client and the stream goes on.
func (h *FinanceStreamHandler) sendKPIs(ctx context.Context, conn *websocket.Conn) error {
	fetchCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	kpis, err := h.kpis.KPIs(fetchCtx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute KPIs for stream")
		return ws.WriteError(conn, "não foi possível calcular os indicadores")
	}
	return ws.WriteTyped(conn, ws.KPIEvent{Event: ws.EventKPIs, Data: kpis})
}
