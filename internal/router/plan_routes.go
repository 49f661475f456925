package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/letmebeesther/plan-prove/internal/config"
    "github.com/letmebeesther/plan-prove/internal/handler"
    "github.com/letmebeesther/plan-prove/internal/middleware"
    "github.com/letmebeesther/plan-prove/internal/model"
)

// RegisterPlans wires the owner-scoped plan, sub-goal and evidence
// endpoints.  Everything here requires a valid access token; the rate
// limiter guards the evidence and e-mail code endpoints against abuse.
func RegisterPlans(e *echo.Echo, p *handler.PlanHandler, ev *handler.EvidenceHandler,
    jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {

    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

    g.POST("/plans", p.Create)
    g.GET("/my/plans", p.ListMine)
    g.PUT("/plans/:id", p.Update)
    g.DELETE("/plans/:id", p.Delete)
    g.POST("/plans/:id/retrospective", p.SetRetrospective)

    g.POST("/plans/:id/sub-goals", p.AddSubGoal)
    g.PUT("/plans/:id/sub-goals/:sgid", p.UpdateSubGoal)
    g.DELETE("/plans/:id/sub-goals/:sgid", p.DeleteSubGoal)
    g.POST("/plans/:id/sub-goals/:sgid/fail", p.FailSubGoal)

    limited := e.Group("/v1")
    limited.Use(middleware.JWTAuth(jwtSecret))
    limited.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
    limited.Use(middleware.NewTokenBucket(rlCfg, rdb))

    limited.POST("/plans/:id/sub-goals/:sgid/evidence", ev.Submit)
    limited.DELETE("/plans/:id/sub-goals/:sgid/evidence/:evid", ev.Delete)
    limited.POST("/verification/email", ev.SendEmailCode)
}
