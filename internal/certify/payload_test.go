package certify

import (
    "errors"
    "testing"

    "github.com/letmebeesther/plan-prove/internal/model"
)

func TestNewFilePayload(t *testing.T) {
    data := []byte{0xff, 0xd8, 0xff}

    p, err := NewFilePayload("photo", "run.jpg", data)
    if err != nil {
        t.Fatalf("valid photo payload rejected: %v", err)
    }
    if p.EvidenceType() != model.EvidencePhoto {
        t.Fatalf("type = %q, want %q", p.EvidenceType(), model.EvidencePhoto)
    }

    if _, err := NewFilePayload("PHOTO", "run.jpg", nil); !errors.Is(err, ErrMissingFile) {
        t.Fatalf("empty file: err = %v, want ErrMissingFile", err)
    }
    if _, err := NewFilePayload("TEXT", "notes.txt", data); !errors.Is(err, ErrMissingFile) {
        t.Fatalf("non-binary kind: err = %v, want ErrMissingFile", err)
    }
    if _, err := NewFilePayload("GIF", "x.gif", data); !errors.Is(err, ErrMissingFile) {
        t.Fatalf("unknown kind: err = %v, want ErrMissingFile", err)
    }
}

func TestNewTextPayload(t *testing.T) {
    p, err := NewTextPayload("  ran 5k this morning  ")
    if err != nil {
        t.Fatalf("valid text rejected: %v", err)
    }
    if p.Content != "ran 5k this morning" {
        t.Fatalf("content not trimmed: %q", p.Content)
    }

    if _, err := NewTextPayload("   "); !errors.Is(err, ErrEmptyContent) {
        t.Fatalf("blank text: err = %v, want ErrEmptyContent", err)
    }
}

func TestNewEmailPayload(t *testing.T) {
    p, err := NewEmailPayload(" Dev@Corp.Example ", "123456")
    if err != nil {
        t.Fatalf("valid email rejected: %v", err)
    }
    if p.Address != "dev@corp.example" {
        t.Fatalf("address not normalized: %q", p.Address)
    }
    if p.Domain() != "corp.example" {
        t.Fatalf("domain = %q", p.Domain())
    }

    for _, tc := range []struct{ addr, code string }{
        {"", "123456"},
        {"no-at-sign", "123456"},
        {"dev@corp.example", ""},
    } {
        if _, err := NewEmailPayload(tc.addr, tc.code); !errors.Is(err, ErrEmailNotVerified) {
            t.Errorf("NewEmailPayload(%q, %q): err = %v, want ErrEmailNotVerified", tc.addr, tc.code, err)
        }
    }
}

func TestNewAPIPayload(t *testing.T) {
    if _, err := NewAPIPayload("github", "pr-991"); err != nil {
        t.Fatalf("valid reference rejected: %v", err)
    }
    if _, err := NewAPIPayload("github", " "); !errors.Is(err, ErrIncompleteAPIReference) {
        t.Fatalf("blank reference: err = %v, want ErrIncompleteAPIReference", err)
    }
    if _, err := NewAPIPayload("", "pr-991"); !errors.Is(err, ErrIncompleteAPIReference) {
        t.Fatalf("blank provider: err = %v, want ErrIncompleteAPIReference", err)
    }
}

func TestHeuristicClassifier(t *testing.T) {
    c := HeuristicClassifier{}

    status, _ := c.Review(nil, &model.Evidence{Type: model.EvidenceText, Content: "short"})
    if status != model.EvidenceWarning {
        t.Fatalf("short text: status = %q, want WARNING", status)
    }
    status, _ = c.Review(nil, &model.Evidence{Type: model.EvidenceText, Content: "a properly detailed account of the work"})
    if status != model.EvidenceApproved {
        t.Fatalf("long text: status = %q, want APPROVED", status)
    }
    status, _ = c.Review(nil, &model.Evidence{Type: model.EvidencePhoto, FileHash: "deadbeef"})
    if status != model.EvidenceApproved {
        t.Fatalf("hashed upload: status = %q, want APPROVED", status)
    }
    status, _ = c.Review(nil, &model.Evidence{Type: model.EvidencePhoto})
    if status != model.EvidenceWarning {
        t.Fatalf("unhashed upload: status = %q, want WARNING", status)
    }
}
