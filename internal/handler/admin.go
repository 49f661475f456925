package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/repository"
)

// AdminHandler serves the administrator-only endpoints.  Routes wired to
// this handler sit behind RequireRole(ADMIN).
type AdminHandler struct {
    Profiles *repository.ProfileRepo
}

func NewAdminHandler(p *repository.ProfileRepo) *AdminHandler {
    return &AdminHandler{Profiles: p}
}

// SetTrustScore writes a user's trust score.  Values outside 0-100 are
// clamped by the repository.
func (h *AdminHandler) SetTrustScore(c echo.Context) error {
    userID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    var req struct {
        TrustScore *int `json:"trust_score"`
    }
    if err := c.Bind(&req); err != nil || req.TrustScore == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "trust_score required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    score, err := h.Profiles.SetTrustScore(ctx, userID, *req.TrustScore)
    if err != nil {
        return repoError(c, err, "set trust score failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "trust_score": score})
}
