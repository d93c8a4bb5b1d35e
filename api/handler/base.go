package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/api/transport"
	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/pkg/httpcontext"
	"github.com/fastygo/shopbot/pkg/logger"
)

// statusByCode maps economy error codes onto ops responses. Codes that are missing
// here, and errors that are not domain errors, answer 500.
var statusByCode = map[domain.ErrorCode]int{
	domain.ErrCodeNotFound:          http.StatusNotFound,
	domain.ErrCodeInvalid:           http.StatusBadRequest,
	domain.ErrCodeInvalidPosition:   http.StatusBadRequest,
	domain.ErrCodeConflict:          http.StatusConflict,
	domain.ErrCodeForbidden:         http.StatusForbidden,
	domain.ErrCodeInsufficientFunds: http.StatusUnprocessableEntity,
	domain.ErrCodeExternal:          http.StatusBadGateway,
}

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

// requestContext scopes a request to the bot run context when an adapter is set.
func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter == nil {
		return context.WithCancel(context.Background())
	}
	return h.adapter.Attach(ctx)
}

// write sends the envelope. Ops data is a live view of the economy, so nothing is cached.
func (h baseHandler) write(ctx *fasthttp.RequestCtx, status int, envelope transport.Envelope) {
	body, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("failed to encode ops response", zap.Error(err))
		ctx.Error(http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, data any) {
	h.write(ctx, http.StatusOK, transport.NewSuccess(data))
}

// respondError shows domain messages as they are. Anything else is logged and answered
// with the bare status text.
func (h baseHandler) respondError(reqCtx context.Context, ctx *fasthttp.RequestCtx, err error) {
	code, status := classify(err)
	msg, ok := domain.UserFacing(err)
	if !ok {
		logger.FromContext(reqCtx, h.logger).Error("ops request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	h.write(ctx, status, transport.NewError(string(code), msg, nil))
}

func classify(err error) (domain.ErrorCode, int) {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		if status, ok := statusByCode[dErr.Code]; ok {
			return dErr.Code, status
		}
	}
	return domain.ErrCodeInternal, http.StatusInternalServerError
}
