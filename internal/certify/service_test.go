package certify

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/letmebeesther/plan-prove/internal/model"
    "github.com/letmebeesther/plan-prove/internal/repository"
)

// fakeStore implements SubGoalStore in memory.  saved records every
// SaveAccepted call so tests can assert nothing was persisted on
// rejection paths.
type fakeStore struct {
    subGoal *model.SubGoal
    getErr  error

    saved        []*model.Evidence
    completeNow  bool
    planProgress int
    saveErr      error
}

func (s *fakeStore) GetSubGoalForOwner(_ context.Context, _, _, _ uint64) (*model.SubGoal, error) {
    if s.getErr != nil {
        return nil, s.getErr
    }
    return s.subGoal, nil
}

func (s *fakeStore) SaveAccepted(_ context.Context, _, _, _ uint64, ev *model.Evidence) (bool, int, error) {
    if s.saveErr != nil {
        return false, 0, s.saveErr
    }
    s.saved = append(s.saved, ev)
    return s.completeNow, s.planProgress, nil
}

type fakeUploader struct {
    url string
    err error
}

func (u fakeUploader) Upload(_ context.Context, _ []byte, _, _ string) (string, error) {
    return u.url, u.err
}

// recordingUploader counts object store calls.
type recordingUploader struct{ calls int }

func (u *recordingUploader) Upload(_ context.Context, _ []byte, _, _ string) (string, error) {
    u.calls++
    return "https://cdn.example/evidence/y.jpg", nil
}

type fakeVerifier struct{ err error }

func (v fakeVerifier) Consume(_ context.Context, _ uint64, _, _ string) error { return v.err }

type fakeFeed struct {
    entries []*model.FeedEntry
    err     error
}

func (f *fakeFeed) Append(_ context.Context, e *model.FeedEntry) error {
    if f.err != nil {
        return f.err
    }
    f.entries = append(f.entries, e)
    return nil
}

// countingVerifier records how many codes it consumed so tests can
// assert a rejected submission never burns a one-time code.
type countingVerifier struct{ consumed int }

func (v *countingVerifier) Consume(_ context.Context, _ uint64, _, _ string) error {
    v.consumed++
    return nil
}

type fakeMembers struct {
    ids []uint64
    err error
}

func (m fakeMembers) JoinedChallengeIDs(_ context.Context, _ uint64) ([]uint64, error) {
    return m.ids, m.err
}

type fakeFame struct{ recorded []uint64 }

func (f *fakeFame) Record(_ context.Context, _, planID uint64) error {
    f.recorded = append(f.recorded, planID)
    return nil
}

func newService(store *fakeStore, feed *fakeFeed) *Service {
    return &Service{
        Store:          store,
        Uploads:        fakeUploader{url: "https://cdn.example/evidence/x.jpg"},
        Codes:          fakeVerifier{},
        Classify:       HeuristicClassifier{},
        Feed:           feed,
        AllowedDomains: []string{"corp.example"},
        UploadTimeout:  time.Second,
    }
}

func pendingSubGoal(types ...string) *model.SubGoal {
    return &model.SubGoal{
        ID:           7,
        PlanID:       3,
        Title:        "Run 5k",
        Status:       model.SubGoalPending,
        AllowedTypes: types,
    }
}

func TestSubmitPhoto(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidencePhoto), completeNow: true, planProgress: 50}
    feed := &fakeFeed{}
    svc := newService(store, feed)

    p, _ := NewFilePayload(model.EvidencePhoto, "run.jpg", []byte("jpegbytes"))
    res, err := svc.Submit(context.Background(), 1, 3, 7, p)
    if err != nil {
        t.Fatalf("Submit: %v", err)
    }
    if !res.Completed || res.PlanProgress != 50 {
        t.Fatalf("result = %+v, want completed at 50%%", res)
    }
    if res.Evidence.URL == "" || res.Evidence.FileHash == "" {
        t.Fatalf("binary evidence missing url or hash: %+v", res.Evidence)
    }
    if res.Evidence.Status != model.EvidenceApproved {
        t.Fatalf("status = %q, want APPROVED", res.Evidence.Status)
    }
    if len(feed.entries) != 1 {
        t.Fatalf("feed entries = %d, want exactly 1", len(feed.entries))
    }
    if feed.entries[0].RelatedGoalTitle != "Run 5k" {
        t.Fatalf("feed entry title = %q", feed.entries[0].RelatedGoalTitle)
    }
}

func TestSubmitMissingFileLeavesStoreUntouched(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidencePhoto)}
    feed := &fakeFeed{}
    svc := newService(store, feed)

    _, err := svc.Submit(context.Background(), 1, 3, 7, FilePayload{Kind: model.EvidencePhoto})
    if !errors.Is(err, ErrMissingFile) {
        t.Fatalf("err = %v, want ErrMissingFile", err)
    }
    if len(store.saved) != 0 || len(feed.entries) != 0 {
        t.Fatalf("rejected submission reached a store: saved=%d feed=%d", len(store.saved), len(feed.entries))
    }
}

func TestSubmitTypeNotAllowed(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceText)}
    svc := newService(store, &fakeFeed{})

    p, _ := NewFilePayload(model.EvidencePhoto, "run.jpg", []byte("jpegbytes"))
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); !errors.Is(err, ErrTypeNotAllowed) {
        t.Fatalf("err = %v, want ErrTypeNotAllowed", err)
    }
    if len(store.saved) != 0 {
        t.Fatal("disallowed type was persisted")
    }
}

func TestSubmitEmailVerified(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceEmail), completeNow: true, planProgress: 100}
    feed := &fakeFeed{}
    fame := &fakeFame{}
    svc := newService(store, feed)
    svc.Fame = fame

    p, _ := NewEmailPayload("dev@corp.example", "123456")
    res, err := svc.Submit(context.Background(), 1, 3, 7, p)
    if err != nil {
        t.Fatalf("Submit: %v", err)
    }
    if res.Evidence.VerifiedEmail != "dev@corp.example" {
        t.Fatalf("verified email = %q", res.Evidence.VerifiedEmail)
    }
    if len(feed.entries) != 1 {
        t.Fatalf("feed entries = %d, want exactly 1", len(feed.entries))
    }
    if len(fame.recorded) != 1 || fame.recorded[0] != 3 {
        t.Fatalf("plan at 100%% not recorded in hall of fame: %v", fame.recorded)
    }
}

func TestSubmitEmailCodeMismatch(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceEmail)}
    feed := &fakeFeed{}
    svc := newService(store, feed)
    svc.Codes = fakeVerifier{err: ErrEmailNotVerified}

    p, _ := NewEmailPayload("dev@corp.example", "999999")
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); !errors.Is(err, ErrEmailNotVerified) {
        t.Fatalf("err = %v, want ErrEmailNotVerified", err)
    }
    if len(store.saved) != 0 || len(feed.entries) != 0 {
        t.Fatal("failed verification produced persisted state")
    }
}

func TestSubmitEmailDisallowedDomain(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceEmail)}
    svc := newService(store, &fakeFeed{})

    p, _ := NewEmailPayload("me@gmail.example", "123456")
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); !errors.Is(err, ErrDisallowedDomain) {
        t.Fatalf("err = %v, want ErrDisallowedDomain", err)
    }
}

func TestSubmitFeedFailureSwallowed(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceText), planProgress: 25}
    feed := &fakeFeed{err: errors.New("feed store down")}
    svc := newService(store, feed)

    p, _ := NewTextPayload("a properly detailed account of the work")
    res, err := svc.Submit(context.Background(), 1, 3, 7, p)
    if err != nil {
        t.Fatalf("feed failure leaked into the primary flow: %v", err)
    }
    if len(store.saved) != 1 {
        t.Fatalf("evidence not persisted: saved=%d", len(store.saved))
    }
    if res.PlanProgress != 25 {
        t.Fatalf("progress = %d, want 25", res.PlanProgress)
    }
}

func TestSubmitUploadTimeout(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceVideo)}
    svc := newService(store, &fakeFeed{})
    svc.Uploads = fakeUploader{err: context.DeadlineExceeded}

    p, _ := NewFilePayload(model.EvidenceVideo, "clip.mp4", []byte("mp4"))
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); !errors.Is(err, ErrUploadTimeout) {
        t.Fatalf("err = %v, want ErrUploadTimeout", err)
    }
    if len(store.saved) != 0 {
        t.Fatal("evidence persisted despite failed upload")
    }
}

func TestSubmitUploadFailure(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceVideo)}
    svc := newService(store, &fakeFeed{})
    svc.Uploads = fakeUploader{err: errors.New("503 from object store")}

    p, _ := NewFilePayload(model.EvidenceVideo, "clip.mp4", []byte("mp4"))
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); !errors.Is(err, ErrUploadFailed) {
        t.Fatalf("err = %v, want ErrUploadFailed", err)
    }
}

func TestSubmitFailedSubGoalHasNoSideEffects(t *testing.T) {
    sg := pendingSubGoal(model.EvidenceEmail)
    sg.Status = model.SubGoalFailed
    store := &fakeStore{subGoal: sg}
    feed := &fakeFeed{}
    codes := &countingVerifier{}
    svc := newService(store, feed)
    svc.Codes = codes

    p, _ := NewEmailPayload("dev@corp.example", "123456")
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); !errors.Is(err, repository.ErrInvalidState) {
        t.Fatalf("err = %v, want repository.ErrInvalidState", err)
    }
    if codes.consumed != 0 {
        t.Fatalf("one-time code consumed %d time(s) on a terminal sub-goal", codes.consumed)
    }
    if len(store.saved) != 0 || len(feed.entries) != 0 {
        t.Fatalf("terminal sub-goal produced persisted state: saved=%d feed=%d", len(store.saved), len(feed.entries))
    }
}

func TestSubmitFailedSubGoalSkipsUpload(t *testing.T) {
    sg := pendingSubGoal(model.EvidencePhoto)
    sg.Status = model.SubGoalFailed
    store := &fakeStore{subGoal: sg}
    up := &recordingUploader{}
    svc := newService(store, &fakeFeed{})
    svc.Uploads = up

    p, _ := NewFilePayload(model.EvidencePhoto, "run.jpg", []byte("jpegbytes"))
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); !errors.Is(err, repository.ErrInvalidState) {
        t.Fatalf("err = %v, want repository.ErrInvalidState", err)
    }
    if up.calls != 0 {
        t.Fatalf("object store called %d time(s) on a terminal sub-goal", up.calls)
    }
}

func TestSubmitFansOutToJoinedChallenges(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceText), planProgress: 25}
    feed := &fakeFeed{}
    svc := newService(store, feed)
    svc.Members = fakeMembers{ids: []uint64{4, 9}}

    p, _ := NewTextPayload("a properly detailed account of the work")
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); err != nil {
        t.Fatalf("Submit: %v", err)
    }
    if len(feed.entries) != 3 {
        t.Fatalf("feed entries = %d, want base entry plus one per challenge", len(feed.entries))
    }
    if feed.entries[0].ChallengeID != nil {
        t.Fatalf("base entry carries challenge id %d", *feed.entries[0].ChallengeID)
    }
    for i, want := range []uint64{4, 9} {
        e := feed.entries[i+1]
        if e.ChallengeID == nil || *e.ChallengeID != want {
            t.Fatalf("entry %d challenge id = %v, want %d", i+1, e.ChallengeID, want)
        }
        if e.RelatedGoalTitle != "Run 5k" || e.UserID != 1 {
            t.Fatalf("challenge entry %d not derived from the certification: %+v", i+1, e)
        }
    }
}

func TestSubmitMembershipLookupFailureSwallowed(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceText)}
    feed := &fakeFeed{}
    svc := newService(store, feed)
    svc.Members = fakeMembers{err: errors.New("membership store down")}

    p, _ := NewTextPayload("a properly detailed account of the work")
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); err != nil {
        t.Fatalf("membership failure leaked into the primary flow: %v", err)
    }
    if len(feed.entries) != 1 {
        t.Fatalf("feed entries = %d, want the base entry alone", len(feed.entries))
    }
}

func TestSubmitFailedSubGoalRejected(t *testing.T) {
    store := &fakeStore{subGoal: pendingSubGoal(model.EvidenceText), saveErr: repository.ErrInvalidState}
    svc := newService(store, &fakeFeed{})

    p, _ := NewTextPayload("a properly detailed account of the work")
    if _, err := svc.Submit(context.Background(), 1, 3, 7, p); !errors.Is(err, repository.ErrInvalidState) {
        t.Fatalf("err = %v, want repository.ErrInvalidState", err)
    }
}

func TestSubmitOwnershipEnforced(t *testing.T) {
    store := &fakeStore{getErr: repository.ErrForbidden}
    svc := newService(store, &fakeFeed{})

    p, _ := NewTextPayload("a properly detailed account of the work")
    if _, err := svc.Submit(context.Background(), 99, 3, 7, p); !errors.Is(err, repository.ErrForbidden) {
        t.Fatalf("err = %v, want repository.ErrForbidden", err)
    }
}
