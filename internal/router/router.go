package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/shopbot/api/handler"
)

type Handlers struct {
	Health *apiHandler.HealthHandler
	Stats  *apiHandler.StatsHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New wires the ops endpoints. guard protects everything but /health.
func New(handlers Handlers, guard, access Middleware) fasthttp.RequestHandler {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/stats", guard(handlers.Stats.Stats))
	r.GET("/stats/accounts/{user_id}", guard(handlers.Stats.Account))

	return access(r.Handler)
}
