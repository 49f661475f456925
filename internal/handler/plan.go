package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/model"
    "github.com/letmebeesther/plan-prove/internal/repository"
)

// PlanHandler serves the owner-scoped plan and sub-goal endpoints.
type PlanHandler struct {
    Plans    *repository.PlanRepo
    Profiles *repository.ProfileRepo
}

func NewPlanHandler(p *repository.PlanRepo, prof *repository.ProfileRepo) *PlanHandler {
    return &PlanHandler{Plans: p, Profiles: prof}
}

// ----- DTOs -----

type subGoalReq struct {
    Title        string   `json:"title"`
    Description  string   `json:"description"`
    DueDate      *string  `json:"due_date"` // YYYY-MM-DD
    AllowedTypes []string `json:"allowed_types"`
}

type createPlanReq struct {
    Title       string       `json:"title"`
    Description string       `json:"description"`
    Category    string       `json:"category"`
    StartDate   string       `json:"start_date"` // YYYY-MM-DD
    EndDate     string       `json:"end_date"`
    Visibility  string       `json:"visibility"`
    SubGoals    []subGoalReq `json:"sub_goals"`
}

type updatePlanReq struct {
    Title       string `json:"title"`
    Description string `json:"description"`
    Category    string `json:"category"`
    StartDate   string `json:"start_date"`
    EndDate     string `json:"end_date"`
    Visibility  string `json:"visibility"`
}

type evidenceResp struct {
    ID             uint64 `json:"id"`
    Type           string `json:"type"`
    Content        string `json:"content,omitempty"`
    URL            string `json:"url,omitempty"`
    FileHash       string `json:"file_hash,omitempty"`
    Status         string `json:"status"`
    Feedback       string `json:"feedback,omitempty"`
    VerifiedEmail  string `json:"verified_email,omitempty"`
    APIProvider    string `json:"api_provider,omitempty"`
    APIReferenceID string `json:"api_reference_id,omitempty"`
    CreatedAt      string `json:"created_at"`
}

type subGoalResp struct {
    ID            uint64         `json:"id"`
    Position      int            `json:"position"`
    Title         string         `json:"title"`
    Description   string         `json:"description,omitempty"`
    DueDate       *string        `json:"due_date,omitempty"`
    Status        string         `json:"status"`
    FailureReason *string        `json:"failure_reason,omitempty"`
    AllowedTypes  []string       `json:"allowed_types,omitempty"`
    CompletedAt   *string        `json:"completed_at,omitempty"`
    Evidence      []evidenceResp `json:"evidence,omitempty"`
}

type planResp struct {
    ID            uint64        `json:"id"`
    AuthorID      uint64        `json:"author_id"`
    Title         string        `json:"title"`
    Description   string        `json:"description,omitempty"`
    Category      string        `json:"category,omitempty"`
    StartDate     string        `json:"start_date"`
    EndDate       string        `json:"end_date"`
    Progress      int           `json:"progress"`
    Visibility    string        `json:"visibility"`
    Retrospective *string       `json:"retrospective,omitempty"`
    SubGoals      []subGoalResp `json:"sub_goals,omitempty"`
}

const dateLayout = "2006-01-02"

func renderEvidence(ev model.Evidence) evidenceResp {
    return evidenceResp{
        ID:             ev.ID,
        Type:           ev.Type,
        Content:        ev.Content,
        URL:            ev.URL,
        FileHash:       ev.FileHash,
        Status:         ev.Status,
        Feedback:       ev.Feedback,
        VerifiedEmail:  ev.VerifiedEmail,
        APIProvider:    ev.APIProvider,
        APIReferenceID: ev.APIReferenceID,
        CreatedAt:      ev.CreatedAt.UTC().Format(time.RFC3339),
    }
}

func renderSubGoal(sg model.SubGoal) subGoalResp {
    out := subGoalResp{
        ID:            sg.ID,
        Position:      sg.Position,
        Title:         sg.Title,
        Description:   sg.Description,
        Status:        sg.Status,
        FailureReason: sg.FailureReason,
        AllowedTypes:  sg.AllowedTypes,
    }
    if sg.DueDate != nil {
        d := sg.DueDate.Format(dateLayout)
        out.DueDate = &d
    }
    if sg.CompletedAt != nil {
        t := sg.CompletedAt.UTC().Format(time.RFC3339)
        out.CompletedAt = &t
    }
    for _, ev := range sg.Evidence {
        out.Evidence = append(out.Evidence, renderEvidence(ev))
    }
    return out
}

func renderPlan(p *model.Plan) planResp {
    out := planResp{
        ID:            p.ID,
        AuthorID:      p.AuthorID,
        Title:         p.Title,
        Description:   p.Description,
        Category:      p.Category,
        StartDate:     p.StartDate.Format(dateLayout),
        EndDate:       p.EndDate.Format(dateLayout),
        Progress:      p.Progress,
        Visibility:    p.Visibility,
        Retrospective: p.Retrospective,
    }
    for _, sg := range p.SubGoals {
        out.SubGoals = append(out.SubGoals, renderSubGoal(sg))
    }
    return out
}

func parseDate(s string) (time.Time, bool) {
    t, err := time.Parse(dateLayout, strings.TrimSpace(s))
    return t, err == nil
}

func subGoalFromReq(req subGoalReq) (model.SubGoal, bool) {
    sg := model.SubGoal{
        Title:       strings.TrimSpace(req.Title),
        Description: strings.TrimSpace(req.Description),
    }
    if sg.Title == "" {
        return sg, false
    }
    for _, t := range req.AllowedTypes {
        t = strings.ToUpper(strings.TrimSpace(t))
        if !model.ValidEvidenceType(t) {
            return sg, false
        }
        sg.AllowedTypes = append(sg.AllowedTypes, t)
    }
    if req.DueDate != nil && *req.DueDate != "" {
        d, ok := parseDate(*req.DueDate)
        if !ok {
            return sg, false
        }
        sg.DueDate = &d
    }
    return sg, true
}

// Create inserts a plan with its initial sub-goals and bumps the
// author's total_plans counter in the same transaction.
func (h *PlanHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createPlanReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Title = strings.TrimSpace(req.Title)
    if req.Title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
    }
    start, ok := parseDate(req.StartDate)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
    }
    end, ok := parseDate(req.EndDate)
    if !ok || end.Before(start) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
    }
    vis := strings.ToUpper(strings.TrimSpace(req.Visibility))
    if vis != model.VisibilityPrivate {
        vis = model.VisibilityPublic
    }
    if len(req.SubGoals) > model.MaxSubGoals {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "too many sub_goals"})
    }

    plan := &model.Plan{
        AuthorID:    uid,
        Title:       req.Title,
        Description: strings.TrimSpace(req.Description),
        Category:    strings.TrimSpace(req.Category),
        StartDate:   start,
        EndDate:     end,
        Visibility:  vis,
    }
    for _, sgReq := range req.SubGoals {
        sg, ok := subGoalFromReq(sgReq)
        if !ok {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sub_goal"})
        }
        plan.SubGoals = append(plan.SubGoals, sg)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tx, err := h.Plans.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := h.Plans.CreateTx(ctx, tx, plan); err != nil {
        return repoError(c, err, "create plan failed")
    }
    if err := h.Profiles.AddTotalPlansTx(ctx, tx, uid, 1); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update counters failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusCreated, renderPlan(plan))
}

// Get returns a plan with sub-goals and evidence.  Private plans are
// visible only to their author.
func (h *PlanHandler) Get(c echo.Context) error {
    planID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    plan, err := h.Plans.GetByID(ctx, planID)
    if err != nil {
        return repoError(c, err, "load plan failed")
    }
    if plan.Visibility == model.VisibilityPrivate {
        uid, err := getUserID(c)
        if err != nil || uid != plan.AuthorID {
            // Private plans are indistinguishable from absent ones.
            return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
        }
    }
    return c.JSON(http.StatusOK, renderPlan(plan))
}

// ListMine returns all plans of the authenticated user.
func (h *PlanHandler) ListMine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    plans, err := h.Plans.ListByAuthor(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list plans failed"})
    }
    out := make([]planResp, 0, len(plans))
    for i := range plans {
        out = append(out, renderPlan(&plans[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"plans": out})
}

// Update edits plan metadata.  Progress and retrospective are not
// editable here.
func (h *PlanHandler) Update(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    planID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
    }
    var req updatePlanReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Title = strings.TrimSpace(req.Title)
    if req.Title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
    }
    start, ok := parseDate(req.StartDate)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
    }
    end, ok := parseDate(req.EndDate)
    if !ok || end.Before(start) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
    }
    vis := strings.ToUpper(strings.TrimSpace(req.Visibility))
    if vis != model.VisibilityPrivate {
        vis = model.VisibilityPublic
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Plans.Update(ctx, planID, uid, req.Title,
        strings.TrimSpace(req.Description), strings.TrimSpace(req.Category), start, end, vis); err != nil {
        return repoError(c, err, "update plan failed")
    }
    plan, err := h.Plans.GetByID(ctx, planID)
    if err != nil {
        return repoError(c, err, "load plan failed")
    }
    return c.JSON(http.StatusOK, renderPlan(plan))
}

// Delete removes a plan with all sub-goals and evidence and decrements
// the author's total_plans counter.
func (h *PlanHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    planID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tx, err := h.Plans.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := h.Plans.DeleteTx(ctx, tx, planID, uid); err != nil {
        return repoError(c, err, "delete plan failed")
    }
    if err := h.Profiles.AddTotalPlansTx(ctx, tx, uid, -1); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update counters failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.NoContent(http.StatusNoContent)
}

// SetRetrospective writes the one-time closing text on a fully completed
// plan.
func (h *PlanHandler) SetRetrospective(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    planID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
    }
    var req struct {
        Retrospective string `json:"retrospective"`
    }
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Retrospective) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "retrospective required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tx, err := h.Plans.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := h.Plans.SetRetrospectiveTx(ctx, tx, planID, uid, strings.TrimSpace(req.Retrospective)); err != nil {
        return repoError(c, err, "set retrospective failed")
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusOK, echo.Map{"message": "retrospective saved"})
}
