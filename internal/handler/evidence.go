package handler

import (
    "context"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/certify"
    "github.com/letmebeesther/plan-prove/internal/queue"
    "github.com/letmebeesther/plan-prove/internal/repository"
    queue_publisher "github.com/letmebeesther/plan-prove/internal/service"
    "github.com/letmebeesther/plan-prove/internal/verification"
)

// maxEvidenceUpload caps evidence file reads at 25 MiB.
const maxEvidenceUpload = 25 << 20

// EvidenceHandler serves evidence submission and removal together with
// the e-mail code endpoint backing EMAIL evidence.
type EvidenceHandler struct {
    Certify  *certify.Service
    Evidence *repository.EvidenceRepo
    Plans    *repository.PlanRepo
    Codes    *verification.Service
}

func NewEvidenceHandler(svc *certify.Service, ev *repository.EvidenceRepo, plans *repository.PlanRepo, codes *verification.Service) *EvidenceHandler {
    return &EvidenceHandler{Certify: svc, Evidence: ev, Plans: plans, Codes: codes}
}

type submitEvidenceReq struct {
    Type        string `json:"type"`
    Content     string `json:"content"`
    Email       string `json:"email"`
    Code        string `json:"code"`
    Provider    string `json:"provider"`
    ReferenceID string `json:"reference_id"`
}

// payloadFrom builds a certification payload from the request.  Multipart
// requests carry binary evidence (fields: type, file); JSON bodies carry
// the structured types.
func payloadFrom(c echo.Context) (certify.Payload, error) {
    ct := c.Request().Header.Get(echo.HeaderContentType)
    if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
        kind := c.FormValue("type")
        fh, err := c.FormFile("file")
        if err != nil {
            return nil, certify.ErrMissingFile
        }
        if fh.Size > maxEvidenceUpload {
            return nil, certify.ErrUploadFailed
        }
        f, err := fh.Open()
        if err != nil {
            return nil, certify.ErrMissingFile
        }
        defer f.Close()
        data, err := io.ReadAll(io.LimitReader(f, maxEvidenceUpload))
        if err != nil {
            return nil, certify.ErrMissingFile
        }
        return certify.NewFilePayload(kind, fh.Filename, data)
    }

    var req submitEvidenceReq
    if err := c.Bind(&req); err != nil {
        return nil, certify.ErrEmptyContent
    }
    switch strings.ToUpper(strings.TrimSpace(req.Type)) {
    case "TEXT":
        return certify.NewTextPayload(req.Content)
    case "EMAIL":
        return certify.NewEmailPayload(req.Email, req.Code)
    case "API":
        return certify.NewAPIPayload(req.Provider, req.ReferenceID)
    }
    return nil, certify.ErrEmptyContent
}

// Submit runs the certification flow for one sub-goal and publishes the
// certified event to the broker on success.
func (h *EvidenceHandler) Submit(c echo.Context) error {
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

    p, err := payloadFrom(c)
    if err != nil {
        return certifyError(c, err)
    }

    res, err := h.Certify.Submit(c.Request().Context(), uid, planID, sgID, p)
    if err != nil {
        return certifyError(c, err)
    }

    // Fire-and-forget: a broker outage never fails a certification.
    event := queue.EvidenceCertifiedEvent{
        EvidenceID:   res.Evidence.ID,
        UserID:       uid,
        PlanID:       planID,
        SubGoalID:    sgID,
        SubGoalTitle: res.SubGoal.Title,
        EvidenceType: res.Evidence.Type,
        Status:       res.Evidence.Status,
        Completed:    res.Completed,
        PlanProgress: res.PlanProgress,
        CertifiedAt:  res.Evidence.CreatedAt.UTC().Format(time.RFC3339),
    }
    if plan, perr := h.Plans.GetByID(c.Request().Context(), planID); perr == nil {
        event.PlanTitle = plan.Title
    }
    go func(ev queue.EvidenceCertifiedEvent) {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishEvidenceCertified(ctx, ev)
    }(event)

    return c.JSON(http.StatusCreated, echo.Map{
        "evidence":      renderEvidence(*res.Evidence),
        "completed":     res.Completed,
        "plan_progress": res.PlanProgress,
    })
}

// Delete removes one evidence record.  The sub-goal stays completed;
// certification is not undone by removing its trace.
func (h *EvidenceHandler) Delete(c echo.Context) error {
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
    evID, ok := parseID(c, "evid")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid evidence id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Evidence.Delete(ctx, planID, sgID, evID, uid); err != nil {
        return repoError(c, err, "delete evidence failed")
    }
    return c.NoContent(http.StatusNoContent)
}

// SendEmailCode issues a one-time code to an allow-listed address for a
// later EMAIL evidence submission.
func (h *EvidenceHandler) SendEmailCode(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req struct {
        Email string `json:"email"`
    }
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Codes.Send(ctx, uid, req.Email); err != nil {
        return certifyError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
}
