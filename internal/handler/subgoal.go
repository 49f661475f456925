package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// subGoalTx runs fn inside a plan-repo transaction and returns the
// recomputed progress.  Every sub-goal mutation that can move the
// percentage goes through here so the derived value never drifts.
func (h *PlanHandler) subGoalTx(c echo.Context, planID uint64, recompute bool, fn func(ctx context.Context, tx *sql.Tx) error) (int, error) {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tx, err := h.Plans.DB().BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := fn(ctx, tx); err != nil {
        return 0, err
    }
    pct := -1
    if recompute {
        if pct, err = h.Plans.RecomputeProgressTx(ctx, tx, planID); err != nil {
            return 0, err
        }
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return pct, nil
}

// AddSubGoal appends a milestone to a plan.
func (h *PlanHandler) AddSubGoal(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    planID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
    }
    var req subGoalReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    sg, ok := subGoalFromReq(req)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sub_goal"})
    }

    // Adding a pending sub-goal grows the denominator, so the
    // percentage must be recomputed.
    pct, err := h.subGoalTx(c, planID, true, func(ctx context.Context, tx *sql.Tx) error {
        return h.Plans.AddSubGoalTx(ctx, tx, planID, uid, &sg)
    })
    if err != nil {
        return repoError(c, err, "add sub-goal failed")
    }

    resp := renderSubGoal(sg)
    return c.JSON(http.StatusCreated, echo.Map{"sub_goal": resp, "plan_progress": pct})
}

// UpdateSubGoal edits a pending milestone.
func (h *PlanHandler) UpdateSubGoal(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    planID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
    }
    sgID, ok := parseID(c, "sgid")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sub-goal id"})
    }
    var req subGoalReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    sg, ok := subGoalFromReq(req)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sub_goal"})
    }

    _, err = h.subGoalTx(c, planID, false, func(ctx context.Context, tx *sql.Tx) error {
        return h.Plans.UpdateSubGoalTx(ctx, tx, planID, sgID, uid, sg.Title, sg.Description, sg.DueDate, sg.AllowedTypes)
    })
    if err != nil {
        return repoError(c, err, "update sub-goal failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "sub-goal updated"})
}

// DeleteSubGoal removes a pending milestone and recomputes progress.
func (h *PlanHandler) DeleteSubGoal(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    planID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
    }
    sgID, ok := parseID(c, "sgid")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sub-goal id"})
    }

    pct, err := h.subGoalTx(c, planID, true, func(ctx context.Context, tx *sql.Tx) error {
        return h.Plans.DeleteSubGoalTx(ctx, tx, planID, sgID, uid)
    })
    if err != nil {
        return repoError(c, err, "delete sub-goal failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "sub-goal deleted", "plan_progress": pct})
}

// FailSubGoal declares a pending milestone failed.  The sub-goal keeps
// counting toward the denominator, so the percentage itself does not
// move, but the recompute keeps the stored value honest.
func (h *PlanHandler) FailSubGoal(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    planID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
    }
    sgID, ok := parseID(c, "sgid")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sub-goal id"})
    }
    var req struct {
        Reason string `json:"reason"`
    }
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
    }

    pct, err := h.subGoalTx(c, planID, true, func(ctx context.Context, tx *sql.Tx) error {
        return h.Plans.FailSubGoalTx(ctx, tx, planID, sgID, uid, strings.TrimSpace(req.Reason))
    })
    if err != nil {
        return repoError(c, err, "fail sub-goal failed")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message":       "sub-goal marked failed",
        "status":        model.SubGoalFailed,
        "plan_progress": pct,
    })
}
