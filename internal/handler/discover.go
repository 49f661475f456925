package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/repository"
)

// DiscoverHandler serves the public plan discovery endpoint.
type DiscoverHandler struct {
    Plans *repository.PlanRepo
}

func NewDiscoverHandler(p *repository.PlanRepo) *DiscoverHandler {
    return &DiscoverHandler{Plans: p}
}

// Search filters public plans by title substring and category, paginated.
func (h *DiscoverHandler) Search(c echo.Context) error {
    page, pageSize := pageParams(c)
    q := repository.PlanSearchQuery{
        Title:    strings.TrimSpace(c.QueryParam("title")),
        Category: strings.TrimSpace(c.QueryParam("category")),
        Page:     page,
        PageSize: pageSize,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rows, total, err := h.Plans.SearchPublic(ctx, q)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "plans":     rows,
        "total":     total,
        "page":      page,
        "page_size": pageSize,
    })
}
