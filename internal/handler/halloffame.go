package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/repository"
)

// HallOfFameHandler serves the public list of fully completed plans.
type HallOfFameHandler struct {
    Fame *repository.HallOfFameRepo
}

func NewHallOfFameHandler(f *repository.HallOfFameRepo) *HallOfFameHandler {
    return &HallOfFameHandler{Fame: f}
}

type fameEntryResp struct {
    ID          uint64 `json:"id"`
    UserID      uint64 `json:"user_id"`
    PlanID      uint64 `json:"plan_id"`
    Title       string `json:"title"`
    Category    string `json:"category,omitempty"`
    CompletedAt string `json:"completed_at"`
}

// List returns the most recent hall-of-fame entries.
func (h *HallOfFameHandler) List(c echo.Context) error {
    limit, _ := strconv.Atoi(c.QueryParam("limit"))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    entries, err := h.Fame.List(ctx, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load hall of fame failed"})
    }
    out := make([]fameEntryResp, 0, len(entries))
    for _, e := range entries {
        out = append(out, fameEntryResp{
            ID:          e.ID,
            UserID:      e.UserID,
            PlanID:      e.PlanID,
            Title:       e.Title,
            Category:    e.Category,
            CompletedAt: e.CompletedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"entries": out})
}
