package router

import (
    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/handler"
    "github.com/letmebeesther/plan-prove/internal/middleware"
    "github.com/letmebeesther/plan-prove/internal/model"
)

// RegisterSocial wires the profile, follow graph, feed and challenge
// membership endpoints.  All of them require authentication.
func RegisterSocial(e *echo.Echo, prof *handler.ProfileHandler, feed *handler.FeedHandler,
    ch *handler.ChallengeHandler, jwtSecret string) {

    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

    g.GET("/me", prof.Me)
    g.PUT("/me", prof.UpdateMe)
    g.GET("/users/:id", prof.GetUser)
    g.POST("/users/:id/follow", prof.Follow)
    g.DELETE("/users/:id/follow", prof.Unfollow)

    g.GET("/feed", feed.List)
    g.POST("/feed/:id/like", feed.Like)
    g.POST("/feed/:id/comment", feed.Comment)

    g.POST("/challenges/:id/join", ch.Join)
    g.DELETE("/challenges/:id/join", ch.Leave)
}

// RegisterAdmin wires the administrator endpoints behind the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleAdmin))

    g.PUT("/users/:id/trust-score", a.SetTrustScore)
}
