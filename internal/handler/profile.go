package handler

import (
    "context"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/certify"
    "github.com/letmebeesther/plan-prove/internal/model"
    "github.com/letmebeesther/plan-prove/internal/repository"
)

// maxAvatarUpload caps avatar reads at 5 MiB.
const maxAvatarUpload = 5 << 20

// ProfileHandler serves profile reads and updates plus the follow graph.
type ProfileHandler struct {
    Profiles *repository.ProfileRepo
    Plans    *repository.PlanRepo
    Uploads  certify.Uploader // nil when no object store is configured
}

func NewProfileHandler(p *repository.ProfileRepo, plans *repository.PlanRepo, up certify.Uploader) *ProfileHandler {
    return &ProfileHandler{Profiles: p, Plans: plans, Uploads: up}
}

type profileResp struct {
    UserID         uint64 `json:"user_id"`
    Nickname       string `json:"nickname"`
    AvatarURL      string `json:"avatar_url,omitempty"`
    StatusMessage  string `json:"status_message,omitempty"`
    TrustScore     int    `json:"trust_score"`
    Followers      int    `json:"followers"`
    Following      int    `json:"following"`
    TotalPlans     int    `json:"total_plans"`
    CompletedGoals int    `json:"completed_goals"`
}

func renderProfile(p model.Profile) profileResp {
    return profileResp{
        UserID:         p.UserID,
        Nickname:       p.Nickname,
        AvatarURL:      p.AvatarURL,
        StatusMessage:  p.StatusMessage,
        TrustScore:     p.TrustScore,
        Followers:      p.Followers,
        Following:      p.Following,
        TotalPlans:     p.TotalPlans,
        CompletedGoals: p.CompletedGoals,
    }
}

// Me returns the caller's own profile.
func (h *ProfileHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    prof, err := h.Profiles.Get(ctx, uid)
    if err != nil {
        return repoError(c, err, "load profile failed")
    }
    return c.JSON(http.StatusOK, renderProfile(prof))
}

// UpdateMe edits display fields.  JSON bodies update nickname, avatar_url
// and status_message directly; a multipart body with an "avatar" file
// uploads the image first and stores the resulting URL.
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var nickname, avatarURL, status string

    ct := c.Request().Header.Get(echo.HeaderContentType)
    if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
        nickname = c.FormValue("nickname")
        status = c.FormValue("status_message")
        fh, ferr := c.FormFile("avatar")
        if ferr != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatar file required"})
        }
        if h.Uploads == nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "uploads not configured"})
        }
        if fh.Size > maxAvatarUpload {
            return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "avatar too large"})
        }
        f, ferr := fh.Open()
        if ferr != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid avatar file"})
        }
        data, ferr := io.ReadAll(io.LimitReader(f, maxAvatarUpload))
        f.Close()
        if ferr != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid avatar file"})
        }
        uctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
        defer cancel()
        url, uerr := h.Uploads.Upload(uctx, data, "plan-prove/avatars", fh.Filename)
        if uerr != nil {
            return c.JSON(http.StatusBadGateway, echo.Map{"error": "avatar upload failed"})
        }
        avatarURL = url
    } else {
        var req struct {
            Nickname      string `json:"nickname"`
            AvatarURL     string `json:"avatar_url"`
            StatusMessage string `json:"status_message"`
        }
        if err := c.Bind(&req); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
        }
        nickname, avatarURL, status = req.Nickname, req.AvatarURL, req.StatusMessage
    }

    if strings.TrimSpace(nickname) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "nickname required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Profiles.Update(ctx, uid, nickname, avatarURL, status); err != nil {
        return repoError(c, err, "update profile failed")
    }
    prof, err := h.Profiles.Get(ctx, uid)
    if err != nil {
        return repoError(c, err, "load profile failed")
    }
    return c.JSON(http.StatusOK, renderProfile(prof))
}

// GetUser returns another user's profile together with their public
// plans.
func (h *ProfileHandler) GetUser(c echo.Context) error {
    userID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    prof, err := h.Profiles.Get(ctx, userID)
    if err != nil {
        return repoError(c, err, "load profile failed")
    }

    plans, err := h.Plans.ListByAuthor(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list plans failed"})
    }
    public := make([]planResp, 0, len(plans))
    for i := range plans {
        if plans[i].Visibility == model.VisibilityPublic {
            public = append(public, renderPlan(&plans[i]))
        }
    }

    return c.JSON(http.StatusOK, echo.Map{
        "profile": renderProfile(prof),
        "plans":   public,
    })
}

// Follow records the caller following the target user.
func (h *ProfileHandler) Follow(c echo.Context) error {
    return h.followChange(c, true)
}

// Unfollow removes the relation.
func (h *ProfileHandler) Unfollow(c echo.Context) error {
    return h.followChange(c, false)
}

func (h *ProfileHandler) followChange(c echo.Context, follow bool) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    target, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    if target == uid {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "cannot follow yourself"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tx, err := h.Profiles.DB.BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if follow {
        err = h.Profiles.FollowTx(ctx, tx, uid, target)
    } else {
        err = h.Profiles.UnfollowTx(ctx, tx, uid, target)
    }
    if err != nil {
        return repoError(c, err, "follow change failed")
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    if follow {
        return c.JSON(http.StatusCreated, echo.Map{"message": "followed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "unfollowed"})
}
