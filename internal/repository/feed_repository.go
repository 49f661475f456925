package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// FeedRepo stores the denormalized social timeline.  Writes are
// best-effort from the caller's perspective: the certification flow logs
// and swallows any error from Append, because the feed is a
// non-authoritative read-side projection.
type FeedRepo struct{ db *sql.DB }

func NewFeedRepo(db *sql.DB) *FeedRepo { return &FeedRepo{db: db} }

// Append inserts a feed entry.  The generated ID is written back.
func (r *FeedRepo) Append(ctx context.Context, e *model.FeedEntry) error {
    if e.CreatedAt.IsZero() {
        e.CreatedAt = time.Now().UTC()
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO feed_entries (user_id, plan_id, challenge_id, related_goal_title,
		                           description, image_url, likes, comments, created_at)
		 VALUES (?,?,?,?,?,?,0,0,?)`,
        e.UserID, e.PlanID, e.ChallengeID, e.RelatedGoalTitle,
        e.Description, e.ImageURL, e.CreatedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return nil
}

const feedColumns = `id, user_id, plan_id, challenge_id, related_goal_title,
	description, image_url, likes, comments, created_at`

func scanFeedEntry(scan func(dest ...any) error) (model.FeedEntry, error) {
    var (
        e    model.FeedEntry
        plan sql.NullInt64
        ch   sql.NullInt64
        img  sql.NullString
    )
    err := scan(&e.ID, &e.UserID, &plan, &ch, &e.RelatedGoalTitle,
        &e.Description, &img, &e.Likes, &e.Comments, &e.CreatedAt)
    if err != nil {
        return e, err
    }
    if plan.Valid {
        v := uint64(plan.Int64)
        e.PlanID = &v
    }
    if ch.Valid {
        v := uint64(ch.Int64)
        e.ChallengeID = &v
    }
    e.ImageURL = img.String
    return e, nil
}

// ListRecent returns feed entries within the recency window, newest
// first, with simple page/page_size pagination.  Each certification
// writes one base entry plus one challenge-attributed copy per joined
// challenge; the home feed lists only the base entries so a
// certification appears here exactly once.
func (r *FeedRepo) ListRecent(ctx context.Context, window time.Duration, page, pageSize int) ([]model.FeedEntry, int64, error) {
    cutoff := time.Now().UTC().Add(-window)
    var total int64
    if err := r.db.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM feed_entries WHERE created_at >= ? AND challenge_id IS NULL",
        cutoff).Scan(&total); err != nil {
        return nil, 0, err
    }
    offset := (page - 1) * pageSize
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+feedColumns+` FROM feed_entries
		 WHERE created_at >= ? AND challenge_id IS NULL
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`, cutoff, pageSize, offset)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    out := make([]model.FeedEntry, 0, pageSize)
    for rows.Next() {
        e, err := scanFeedEntry(rows.Scan)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, e)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}

// ListByChallenge returns entries attached to a challenge, newest first.
func (r *FeedRepo) ListByChallenge(ctx context.Context, challengeID uint64, page, pageSize int) ([]model.FeedEntry, int64, error) {
    var total int64
    if err := r.db.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM feed_entries WHERE challenge_id = ?", challengeID).Scan(&total); err != nil {
        return nil, 0, err
    }
    offset := (page - 1) * pageSize
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+feedColumns+` FROM feed_entries
		 WHERE challenge_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`, challengeID, pageSize, offset)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    out := make([]model.FeedEntry, 0, pageSize)
    for rows.Next() {
        e, err := scanFeedEntry(rows.Scan)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, e)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}

// AddLike bumps the like counter.  Feed counters are presentation state
// only; there is no per-user like ledger.
func (r *FeedRepo) AddLike(ctx context.Context, entryID uint64) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE feed_entries SET likes=likes+1 WHERE id=?", entryID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// AddComment bumps the comment counter.
func (r *FeedRepo) AddComment(ctx context.Context, entryID uint64) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE feed_entries SET comments=comments+1 WHERE id=?", entryID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}
