package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// ProfileRepo maintains the public profile attached to every account:
// display fields, the externally adjustable trust score, and the
// denormalized counters (followers, following, total_plans,
// completed_goals) mutated as side effects of plan and follow operations.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileColumns = `user_id, nickname, avatar_url, status_message, trust_score,
	followers, following, total_plans, completed_goals, created_at, updated_at`

func scanProfile(row *sql.Row) (model.Profile, error) {
    var p model.Profile
    err := row.Scan(&p.UserID, &p.Nickname, &p.AvatarURL, &p.StatusMessage,
        &p.TrustScore, &p.Followers, &p.Following, &p.TotalPlans,
        &p.CompletedGoals, &p.CreatedAt, &p.UpdatedAt)
    if err == sql.ErrNoRows {
        return p, ErrNotFound
    }
    return p, err
}

// CreateTx inserts the profile row for a newly registered user.  Runs in
// the registration transaction so account and profile appear atomically.
func (r *ProfileRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64, nickname string) error {
    nickname = strings.TrimSpace(nickname)
    _, err := tx.ExecContext(ctx,
        "INSERT INTO profiles (user_id, nickname) VALUES (?,?)",
        userID, nickname)
    return err
}

// Get returns a profile by user id, or ErrNotFound.
func (r *ProfileRepo) Get(ctx context.Context, userID uint64) (model.Profile, error) {
    row := r.DB.QueryRowContext(ctx,
        "SELECT "+profileColumns+" FROM profiles WHERE user_id=? LIMIT 1", userID)
    return scanProfile(row)
}

// Update writes the mutable display fields of the caller's own profile.
func (r *ProfileRepo) Update(ctx context.Context, userID uint64, nickname, avatarURL, statusMessage string) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE profiles SET nickname=?, avatar_url=?, status_message=? WHERE user_id=?",
        strings.TrimSpace(nickname), avatarURL, statusMessage, userID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // Row may exist with identical values; verify existence.
        var one int
        if err := r.DB.QueryRowContext(ctx,
            "SELECT 1 FROM profiles WHERE user_id=?", userID).Scan(&one); err == sql.ErrNoRows {
            return ErrNotFound
        } else if err != nil {
            return err
        }
    }
    return nil
}

// SetTrustScore stores an externally adjusted trust score, clamped to the
// documented 0–100 range.  Admin-only at the handler layer.
func (r *ProfileRepo) SetTrustScore(ctx context.Context, userID uint64, score int) (int, error) {
    if score < 0 {
        score = 0
    } else if score > 100 {
        score = 100
    }
    res, err := r.DB.ExecContext(ctx,
        "UPDATE profiles SET trust_score=? WHERE user_id=?", score, userID)
    if err != nil {
        return 0, err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        var one int
        if err := r.DB.QueryRowContext(ctx,
            "SELECT 1 FROM profiles WHERE user_id=?", userID).Scan(&one); err == sql.ErrNoRows {
            return 0, ErrNotFound
        } else if err != nil {
            return 0, err
        }
    }
    return score, nil
}

// AddTotalPlansTx adjusts the total_plans counter inside a plan create or
// delete transaction.  The counter never drops below zero.
func (r *ProfileRepo) AddTotalPlansTx(ctx context.Context, tx *sql.Tx, userID uint64, delta int) error {
    _, err := tx.ExecContext(ctx,
        "UPDATE profiles SET total_plans=GREATEST(CAST(total_plans AS SIGNED)+?, 0) WHERE user_id=?",
        delta, userID)
    return err
}

// FollowTx records follower -> followee and bumps both counters.  Returns
// ErrConflict when the relation already exists and ErrNotFound when the
// followee has no profile.
func (r *ProfileRepo) FollowTx(ctx context.Context, tx *sql.Tx, followerID, followeeID uint64) error {
    var one int
    if err := tx.QueryRowContext(ctx,
        "SELECT 1 FROM profiles WHERE user_id=?", followeeID).Scan(&one); err == sql.ErrNoRows {
        return ErrNotFound
    } else if err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx,
        "INSERT IGNORE INTO follows (follower_id, followee_id) VALUES (?,?)",
        followerID, followeeID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrConflict
    }
    if _, err := tx.ExecContext(ctx,
        "UPDATE profiles SET followers=followers+1 WHERE user_id=?", followeeID); err != nil {
        return err
    }
    _, err = tx.ExecContext(ctx,
        "UPDATE profiles SET following=following+1 WHERE user_id=?", followerID)
    return err
}

// UnfollowTx removes the relation and decrements both counters, flooring
// at zero.  Returns ErrNotFound when no relation existed.
func (r *ProfileRepo) UnfollowTx(ctx context.Context, tx *sql.Tx, followerID, followeeID uint64) error {
    res, err := tx.ExecContext(ctx,
        "DELETE FROM follows WHERE follower_id=? AND followee_id=?",
        followerID, followeeID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    if _, err := tx.ExecContext(ctx,
        "UPDATE profiles SET followers=GREATEST(CAST(followers AS SIGNED)-1, 0) WHERE user_id=?",
        followeeID); err != nil {
        return err
    }
    _, err = tx.ExecContext(ctx,
        "UPDATE profiles SET following=GREATEST(CAST(following AS SIGNED)-1, 0) WHERE user_id=?",
        followerID)
    return err
}
