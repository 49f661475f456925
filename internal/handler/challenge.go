package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/model"
    "github.com/letmebeesther/plan-prove/internal/repository"
)

// ChallengeHandler serves the shared group challenges: listing, joining
// and the per-challenge leaderboard and feed.
type ChallengeHandler struct {
    Challenges *repository.ChallengeRepo
    Feed       *repository.FeedRepo
}

func NewChallengeHandler(ch *repository.ChallengeRepo, f *repository.FeedRepo) *ChallengeHandler {
    return &ChallengeHandler{Challenges: ch, Feed: f}
}

type challengeResp struct {
    ID          uint64 `json:"id"`
    Title       string `json:"title"`
    Theme       string `json:"theme"`
    Description string `json:"description,omitempty"`
    ImageURL    string `json:"image_url,omitempty"`
    Members     int    `json:"members"`
}

func renderChallenge(ch model.Challenge) challengeResp {
    return challengeResp{
        ID:          ch.ID,
        Title:       ch.Title,
        Theme:       ch.Theme,
        Description: ch.Description,
        ImageURL:    ch.ImageURL,
        Members:     ch.Members,
    }
}

// List returns every challenge with member counts.
func (h *ChallengeHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    chs, err := h.Challenges.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list challenges failed"})
    }
    out := make([]challengeResp, 0, len(chs))
    for _, ch := range chs {
        out = append(out, renderChallenge(ch))
    }
    return c.JSON(http.StatusOK, echo.Map{"challenges": out})
}

// Get returns one challenge with its roster ordered by completed goals.
func (h *ChallengeHandler) Get(c echo.Context) error {
    chID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid challenge id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ch, err := h.Challenges.Get(ctx, chID)
    if err != nil {
        return repoError(c, err, "load challenge failed")
    }
    roster, err := h.Challenges.Roster(ctx, chID)
    if err != nil {
        return repoError(c, err, "load roster failed")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "challenge":   renderChallenge(ch),
        "leaderboard": roster,
    })
}

// Join adds the caller to a challenge.
func (h *ChallengeHandler) Join(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    chID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid challenge id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Challenges.Join(ctx, chID, uid); err != nil {
        return repoError(c, err, "join challenge failed")
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "joined"})
}

// Leave removes the caller from a challenge.
func (h *ChallengeHandler) Leave(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    chID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid challenge id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Challenges.Leave(ctx, chID, uid); err != nil {
        return repoError(c, err, "leave challenge failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "left"})
}

// FeedByChallenge returns the feed entries attached to one challenge.
func (h *ChallengeHandler) FeedByChallenge(c echo.Context) error {
    chID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid challenge id"})
    }
    page, pageSize := pageParams(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    entries, total, err := h.Feed.ListByChallenge(ctx, chID, page, pageSize)
    if err != nil {
        return repoError(c, err, "load challenge feed failed")
    }
    return renderFeedPage(c, entries, total, page, pageSize)
}
