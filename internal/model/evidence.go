package model

import "time"

// Evidence types.  Binary types carry an uploaded file; the rest carry
// structured fields validated before acceptance.
const (
    EvidencePhoto      = "PHOTO"
    EvidenceVideo      = "VIDEO"
    EvidenceText       = "TEXT"
    EvidenceAppCapture = "APP_CAPTURE"
    EvidenceBiometric  = "BIOMETRIC"
    EvidenceEmail      = "EMAIL"
    EvidenceAPI        = "API"
)

// Evidence review status, auto-assigned by the moderation classifier.
const (
    EvidencePending  = "PENDING"
    EvidenceApproved = "APPROVED"
    EvidenceWarning  = "WARNING"
)

// BinaryEvidenceType reports whether the given evidence type requires an
// uploaded file (and therefore a URL and a content hash).
func BinaryEvidenceType(t string) bool {
    switch t {
    case EvidencePhoto, EvidenceVideo, EvidenceAppCapture, EvidenceBiometric:
        return true
    }
    return false
}

// ValidEvidenceType reports whether t names a known evidence type.
func ValidEvidenceType(t string) bool {
    switch t {
    case EvidencePhoto, EvidenceVideo, EvidenceText, EvidenceAppCapture,
        EvidenceBiometric, EvidenceEmail, EvidenceAPI:
        return true
    }
    return false
}

// Evidence is a certification record attached to a sub-goal.  Records are
// immutable once created; the owner may delete one, which never re-opens
// the sub-goal.  Only the fields required by the record's type are set:
// Content for TEXT, URL and FileHash for binary types, VerifiedEmail for
// EMAIL, APIProvider/APIReferenceID for API.
type Evidence struct {
    ID             uint64    // evidence.id
    SubGoalID      uint64    // evidence.sub_goal_id
    Type           string    // evidence.type
    Content        string    // evidence.content
    URL            string    // evidence.url
    FileHash       string    // evidence.file_hash (sha256 hex of the upload)
    Status         string    // evidence.status
    Feedback       string    // evidence.feedback (classifier verdict text)
    VerifiedEmail  string    // evidence.verified_email
    APIProvider    string    // evidence.api_provider
    APIReferenceID string    // evidence.api_reference_id
    CreatedAt      time.Time // evidence.created_at
}
