package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/api/transport"
	"github.com/fastygo/shopbot/internal/infrastructure/monitor"
	"github.com/fastygo/shopbot/pkg/httpcontext"
)

// StatusSource reports the last dependency check.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check answers 200 while the gateway is connected and 503 otherwise.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]any{
		"gateway": map[string]any{
			"online":     status.Gateway,
			"latency_ms": status.LatencyMS,
		},
		"buffer": map[string]any{
			"online": status.Buffer,
			"size":   status.BufferSize,
		},
		"sessions":   status.Sessions,
		"uptime":     status.Uptime,
		"last_check": status.LastCheck,
	}

	if status.Gateway {
		h.respondSuccess(ctx, payload)
		return
	}
	h.write(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "gateway offline", payload))
}
