package certify

import (
    "context"
    "errors"
    "fmt"
    "log"
    "path"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/letmebeesther/plan-prove/internal/model"
    "github.com/letmebeesther/plan-prove/internal/repository"
    "github.com/letmebeesther/plan-prove/internal/utils"
)

// SubGoalStore is the authoritative persistence boundary of the flow.
// GetForOwner enforces ownership; SaveAccepted atomically inserts the
// evidence, performs the pending→completed transition and recomputes plan
// progress, reporting whether the sub-goal completed on this call and the
// plan's resulting progress.
type SubGoalStore interface {
    GetSubGoalForOwner(ctx context.Context, planID, subGoalID, ownerID uint64) (*model.SubGoal, error)
    SaveAccepted(ctx context.Context, ownerID, planID, subGoalID uint64, ev *model.Evidence) (completed bool, planProgress int, err error)
}

// Uploader is the object store boundary for binary evidence.
type Uploader interface {
    Upload(ctx context.Context, data []byte, folder, name string) (url string, err error)
}

// Verifier checks a one-time e-mail code against the session-held value.
// Implementations return ErrEmailNotVerified on mismatch and consume the
// code on success.
type Verifier interface {
    Consume(ctx context.Context, userID uint64, email, code string) error
}

// FeedSink receives the denormalized feed entry derived from a
// certification.  Errors from the sink are logged and swallowed: the feed
// is a projection, never part of the authoritative transaction.
type FeedSink interface {
    Append(ctx context.Context, e *model.FeedEntry) error
}

// FameSink records a fully completed plan.  Best-effort like the feed.
type FameSink interface {
    Record(ctx context.Context, userID, planID uint64) error
}

// Memberships resolves the challenges a user has joined so a
// certification also surfaces in each challenge's feed.  Optional
// projection like Feed and Fame.
type Memberships interface {
    JoinedChallengeIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// Result describes what a submission changed.
type Result struct {
    Evidence     *model.Evidence
    SubGoal      *model.SubGoal // the sub-goal as loaded before the transition
    Completed    bool           // the sub-goal transitioned to COMPLETED on this call
    PlanProgress int            // plan progress after recomputation
}

// Service wires the certification collaborators together.  Store,
// Uploads, Codes and Classify are required; Feed and Fame are optional
// projections.
type Service struct {
    Store    SubGoalStore
    Uploads  Uploader
    Codes    Verifier
    Classify Classifier
    Feed     FeedSink
    Fame     FameSink
    Members  Memberships

    // AllowedDomains restricts EMAIL evidence senders.  Empty means no
    // domain restriction is configured.
    AllowedDomains []string

    // UploadTimeout bounds the object store call.  Zero means 30s.
    UploadTimeout time.Duration

    // UploadFolder prefixes object store paths.
    UploadFolder string
}

// Submit runs one certification: validates the payload, performs the
// type-specific side effects (upload + hash, code check), obtains the
// moderation verdict, persists the evidence with the sub-goal transition
// and progress recomputation, and fans out the feed entry.  Validation
// and verification failures leave every store untouched.
func (s *Service) Submit(ctx context.Context, ownerID, planID, subGoalID uint64, p Payload) (Result, error) {
    if p == nil {
        return Result{}, ErrEmptyContent
    }
    if err := p.validate(); err != nil {
        return Result{}, err
    }

    sg, err := s.Store.GetSubGoalForOwner(ctx, planID, subGoalID, ownerID)
    if err != nil {
        return Result{}, err
    }
    // FAILED is terminal: reject here, before the upload and before the
    // one-time code is consumed.
    if sg.Status == model.SubGoalFailed {
        return Result{}, repository.ErrInvalidState
    }
    if !sg.Allows(p.EvidenceType()) {
        return Result{}, ErrTypeNotAllowed
    }

    ev := &model.Evidence{Type: p.EvidenceType()}
    switch pl := p.(type) {
    case FilePayload:
        // Hash locally before the upload so tampering at the store is
        // detectable later.
        ev.FileHash = utils.FileHash(pl.Data)
        url, err := s.upload(ctx, pl)
        if err != nil {
            return Result{}, err
        }
        ev.URL = url
    case TextPayload:
        ev.Content = pl.Content
    case EmailPayload:
        if !s.domainAllowed(pl.Domain()) {
            return Result{}, ErrDisallowedDomain
        }
        if err := s.Codes.Consume(ctx, ownerID, pl.Address, pl.Code); err != nil {
            return Result{}, err
        }
        ev.VerifiedEmail = pl.Address
    case APIPayload:
        ev.APIProvider = pl.Provider
        ev.APIReferenceID = pl.ReferenceID
    default:
        return Result{}, fmt.Errorf("certify: unsupported payload %T", p)
    }

    ev.Status, ev.Feedback = s.Classify.Review(ctx, ev)

    completed, pct, err := s.Store.SaveAccepted(ctx, ownerID, planID, subGoalID, ev)
    if err != nil {
        return Result{}, err
    }

    s.fanOut(ctx, ownerID, planID, sg, ev)
    if completed && pct >= 100 && s.Fame != nil {
        if err := s.Fame.Record(ctx, ownerID, planID); err != nil {
            log.Printf("certify: hall-of-fame record failed for plan %d: %v", planID, err)
        }
    }

    return Result{Evidence: ev, SubGoal: sg, Completed: completed, PlanProgress: pct}, nil
}

// upload pushes the file to the object store under a bounded deadline and
// maps the failure modes onto the distinct upload errors.
func (s *Service) upload(ctx context.Context, p FilePayload) (string, error) {
    if s.Uploads == nil {
        return "", fmt.Errorf("%w: no object store configured", ErrUploadFailed)
    }
    timeout := s.UploadTimeout
    if timeout <= 0 {
        timeout = 30 * time.Second
    }
    uctx, cancel := context.WithTimeout(ctx, timeout)
    defer cancel()

    name := uuid.NewString()
    if ext := path.Ext(p.Filename); ext != "" {
        name += ext
    }
    folder := s.UploadFolder
    if folder == "" {
        folder = "evidence"
    }
    folder = path.Join(folder, strings.ToLower(p.Kind))

    url, err := s.Uploads.Upload(uctx, p.Data, folder, name)
    if err != nil {
        if errors.Is(err, context.DeadlineExceeded) || uctx.Err() == context.DeadlineExceeded {
            return "", ErrUploadTimeout
        }
        return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
    }
    return url, nil
}

func (s *Service) domainAllowed(domain string) bool {
    if len(s.AllowedDomains) == 0 {
        return false // EMAIL certification requires an explicit allow-list
    }
    for _, d := range s.AllowedDomains {
        if strings.EqualFold(d, domain) {
            return true
        }
    }
    return false
}

// fanOut derives the feed entries from the certification: one base entry
// for the home feed plus one copy per challenge the author has joined.
// Failures are logged and swallowed: the feed must never block or roll
// back the primary flow.
func (s *Service) fanOut(ctx context.Context, ownerID, planID uint64, sg *model.SubGoal, ev *model.Evidence) {
    if s.Feed == nil {
        return
    }
    desc := ev.Content
    if desc == "" {
        desc = sg.Title + " certified"
    }
    pid := planID
    entry := &model.FeedEntry{
        UserID:           ownerID,
        PlanID:           &pid,
        RelatedGoalTitle: sg.Title,
        Description:      desc,
        ImageURL:         ev.URL,
        CreatedAt:        time.Now().UTC(),
    }
    if err := s.Feed.Append(ctx, entry); err != nil {
        log.Printf("certify: feed append failed for plan %d: %v", planID, err)
    }

    if s.Members == nil {
        return
    }
    ids, err := s.Members.JoinedChallengeIDs(ctx, ownerID)
    if err != nil {
        log.Printf("certify: membership lookup failed for user %d: %v", ownerID, err)
        return
    }
    for _, id := range ids {
        cid := id
        ce := *entry
        ce.ID = 0
        ce.ChallengeID = &cid
        if err := s.Feed.Append(ctx, &ce); err != nil {
            log.Printf("certify: challenge feed append failed for challenge %d: %v", cid, err)
        }
    }
}
