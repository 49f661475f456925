package certify

import (
    "context"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// Classifier is the automated review applied to accepted evidence.  It
// assigns APPROVED or WARNING together with a human-readable verdict.
// The policy is deliberately pluggable: the production intent is a real
// moderation system, and HeuristicClassifier below is an explicit
// stand-in, not the contract.
type Classifier interface {
    Review(ctx context.Context, ev *model.Evidence) (status string, feedback string)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, ev *model.Evidence) (string, string)

func (f ClassifierFunc) Review(ctx context.Context, ev *model.Evidence) (string, string) {
    return f(ctx, ev)
}

// HeuristicClassifier is the placeholder review policy.  It approves
// everything that carries verifiable material (a hashed upload, a
// verified address, an API reference) and flags bare text shorter than a
// minimal length for manual attention.
type HeuristicClassifier struct {
    // MinTextLen is the shortest TEXT evidence accepted without a
    // warning.  Zero means 20.
    MinTextLen int
}

func (h HeuristicClassifier) Review(_ context.Context, ev *model.Evidence) (string, string) {
    min := h.MinTextLen
    if min <= 0 {
        min = 20
    }
    switch ev.Type {
    case model.EvidenceText:
        if len(ev.Content) < min {
            return model.EvidenceWarning, "text evidence is very short; flagged for review"
        }
        return model.EvidenceApproved, "text evidence accepted"
    case model.EvidenceEmail:
        return model.EvidenceApproved, "verified organizational e-mail"
    case model.EvidenceAPI:
        return model.EvidenceApproved, "external provider reference recorded"
    default:
        if ev.FileHash == "" {
            return model.EvidenceWarning, "upload accepted but content hash is missing"
        }
        return model.EvidenceApproved, "upload accepted and hashed"
    }
}
