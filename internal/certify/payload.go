package certify

import (
    "strings"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// Payload is the tagged union of certification inputs.  Each variant
// carries only the fields its evidence type requires and is validated at
// construction, so a Payload in hand is always structurally sound.  The
// unexported method keeps the set of variants closed.
type Payload interface {
    // EvidenceType names the evidence type this payload certifies.
    EvidenceType() string

    validate() error
}

// FilePayload certifies a binary evidence type: PHOTO, VIDEO,
// APP_CAPTURE or BIOMETRIC.  The bytes are uploaded to the object store
// and hashed locally before acceptance.
type FilePayload struct {
    Kind     string // one of the binary evidence types
    Filename string
    Data     []byte
}

// NewFilePayload builds a FilePayload, rejecting unknown or non-binary
// kinds and empty files.
func NewFilePayload(kind, filename string, data []byte) (FilePayload, error) {
    kind = strings.ToUpper(strings.TrimSpace(kind))
    p := FilePayload{Kind: kind, Filename: filename, Data: data}
    return p, p.validate()
}

func (p FilePayload) EvidenceType() string { return p.Kind }

func (p FilePayload) validate() error {
    if !model.BinaryEvidenceType(p.Kind) {
        return ErrMissingFile
    }
    if len(p.Data) == 0 {
        return ErrMissingFile
    }
    return nil
}

// TextPayload certifies with free text.
type TextPayload struct {
    Content string
}

// NewTextPayload builds a TextPayload, rejecting blank content.
func NewTextPayload(content string) (TextPayload, error) {
    p := TextPayload{Content: strings.TrimSpace(content)}
    return p, p.validate()
}

func (p TextPayload) EvidenceType() string { return model.EvidenceText }

func (p TextPayload) validate() error {
    if p.Content == "" {
        return ErrEmptyContent
    }
    return nil
}

// EmailPayload certifies through an organizational e-mail: the address
// must be on the domain allow-list and the one-time code must match the
// code previously sent to it.
type EmailPayload struct {
    Address string
    Code    string
}

// NewEmailPayload builds an EmailPayload.  The code comparison itself
// happens at submission time against the session-held code.
func NewEmailPayload(address, code string) (EmailPayload, error) {
    p := EmailPayload{
        Address: strings.ToLower(strings.TrimSpace(address)),
        Code:    strings.TrimSpace(code),
    }
    return p, p.validate()
}

func (p EmailPayload) EvidenceType() string { return model.EvidenceEmail }

func (p EmailPayload) validate() error {
    if p.Address == "" || !strings.Contains(p.Address, "@") || p.Code == "" {
        return ErrEmailNotVerified
    }
    return nil
}

// Domain returns the part of the address after '@'.
func (p EmailPayload) Domain() string {
    at := strings.LastIndex(p.Address, "@")
    if at < 0 {
        return ""
    }
    return p.Address[at+1:]
}

// APIPayload certifies by reference to an external provider record.  No
// third-party call is performed; both fields just have to be present.
type APIPayload struct {
    Provider    string
    ReferenceID string
}

// NewAPIPayload builds an APIPayload, rejecting blank fields.
func NewAPIPayload(provider, referenceID string) (APIPayload, error) {
    p := APIPayload{
        Provider:    strings.TrimSpace(provider),
        ReferenceID: strings.TrimSpace(referenceID),
    }
    return p, p.validate()
}

func (p APIPayload) EvidenceType() string { return model.EvidenceAPI }

func (p APIPayload) validate() error {
    if p.Provider == "" || p.ReferenceID == "" {
        return ErrIncompleteAPIReference
    }
    return nil
}
