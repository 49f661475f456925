package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/model"
    "github.com/letmebeesther/plan-prove/internal/repository"
)

// FeedHandler serves the home feed and its reaction counters.
type FeedHandler struct {
    Feed   *repository.FeedRepo
    Window time.Duration // recency window for the home feed
}

func NewFeedHandler(f *repository.FeedRepo, window time.Duration) *FeedHandler {
    return &FeedHandler{Feed: f, Window: window}
}

type feedEntryResp struct {
    ID               uint64  `json:"id"`
    UserID           uint64  `json:"user_id"`
    PlanID           *uint64 `json:"plan_id,omitempty"`
    ChallengeID      *uint64 `json:"challenge_id,omitempty"`
    RelatedGoalTitle string  `json:"related_goal_title,omitempty"`
    Description      string  `json:"description,omitempty"`
    ImageURL         string  `json:"image_url,omitempty"`
    Likes            int     `json:"likes"`
    Comments         int     `json:"comments"`
    CreatedAt        string  `json:"created_at"`
}

func renderFeedEntry(e model.FeedEntry) feedEntryResp {
    return feedEntryResp{
        ID:               e.ID,
        UserID:           e.UserID,
        PlanID:           e.PlanID,
        ChallengeID:      e.ChallengeID,
        RelatedGoalTitle: e.RelatedGoalTitle,
        Description:      e.Description,
        ImageURL:         e.ImageURL,
        Likes:            e.Likes,
        Comments:         e.Comments,
        CreatedAt:        e.CreatedAt.UTC().Format(time.RFC3339),
    }
}

func renderFeedPage(c echo.Context, entries []model.FeedEntry, total int64, page, pageSize int) error {
    out := make([]feedEntryResp, 0, len(entries))
    for _, e := range entries {
        out = append(out, renderFeedEntry(e))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "entries":   out,
        "total":     total,
        "page":      page,
        "page_size": pageSize,
    })
}

// List returns recent feed entries, newest first.
func (h *FeedHandler) List(c echo.Context) error {
    page, pageSize := pageParams(c)
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    entries, total, err := h.Feed.ListRecent(ctx, h.Window, page, pageSize)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load feed failed"})
    }
    return renderFeedPage(c, entries, total, page, pageSize)
}

// Like bumps the like counter of one entry.
func (h *FeedHandler) Like(c echo.Context) error {
    entryID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Feed.AddLike(ctx, entryID); err != nil {
        return repoError(c, err, "like failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "liked"})
}

// Comment bumps the comment counter of one entry.
func (h *FeedHandler) Comment(c echo.Context) error {
    entryID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Feed.AddComment(ctx, entryID); err != nil {
        return repoError(c, err, "comment failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "comment recorded"})
}
