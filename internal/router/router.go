// Package router registers the API routes and binds middleware to route
// groups.  Unauthenticated discovery routes are registered here; the
// owner-scoped and social groups live in their own files.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/letmebeesther/plan-prove/internal/config"
    "github.com/letmebeesther/plan-prove/internal/handler"
    "github.com/letmebeesther/plan-prove/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the token endpoints.  Register, login and refresh
// are open; logout works both with a refresh token in the body and with
// a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1/auth")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.POST("/logout-all", a.Logout)
}

// RegisterPublic wires the guest-visible read endpoints: plan discovery,
// public plan detail, challenges and the hall of fame.  Responses are
// served through the Redis response cache when one is configured.
func RegisterPublic(e *echo.Echo, d *handler.DiscoverHandler, p *handler.PlanHandler,
    ch *handler.ChallengeHandler, hof *handler.HallOfFameHandler,
    cacheCfg config.CacheConfig, rdb *redis.Client, jwtSecret string) {

    g := e.Group("/v1")
    g.Use(middleware.NewRedisCache(cacheCfg, rdb))

    g.GET("/discover/plans", d.Search)
    g.GET("/challenges", ch.List)
    g.GET("/challenges/:id", ch.Get)
    g.GET("/challenges/:id/feed", ch.FeedByChallenge)
    g.GET("/hall-of-fame", hof.List)

    // Plan detail is guest-visible for public plans but shows private
    // ones to their author, so it bypasses the shared cache.
    e.GET("/v1/plans/:id", p.Get, middleware.JWTOptional(jwtSecret))
}
