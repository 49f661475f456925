// Package certify implements the evidence certification flow: payload
// validation by evidence type, the upload/verification side effects, the
// moderation verdict, the sub-goal completion transition with progress
// recomputation, and the best-effort feed fan-out.
package certify

import "errors"

// Validation errors: the input is malformed and nothing was mutated.
// The caller corrects the input and resubmits; no retry is useful.
var (
    // ErrMissingFile is returned when a binary evidence type (photo,
    // video, app capture, biometric) arrives without a file.
    ErrMissingFile = errors.New("missing file")

    // ErrEmptyContent is returned when TEXT evidence has no content.
    ErrEmptyContent = errors.New("empty content")

    // ErrIncompleteAPIReference is returned when API evidence lacks the
    // provider name or the reference id.
    ErrIncompleteAPIReference = errors.New("incomplete api reference")

    // ErrTypeNotAllowed is returned when the sub-goal's allow-set does
    // not include the submitted evidence type.
    ErrTypeNotAllowed = errors.New("evidence type not allowed for sub-goal")
)

// Verification errors: the e-mail certification channel rejected the
// submission.  Surfaced with actionable text.
var (
    // ErrEmailNotVerified is returned when the submitted code does not
    // match the one sent, or no code was ever sent.
    ErrEmailNotVerified = errors.New("email not verified")

    // ErrDisallowedDomain is returned when the sender domain is not on
    // the configured allow-list.
    ErrDisallowedDomain = errors.New("email domain not allowed")
)

// Upload errors: the object store boundary failed.  Timeouts are
// reported distinctly so callers can tell a slow store from a broken one.
var (
    ErrUploadTimeout = errors.New("upload timed out")
    ErrUploadFailed  = errors.New("upload failed")
)
