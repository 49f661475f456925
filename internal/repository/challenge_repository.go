package repository

import (
    "context"
    "database/sql"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// ChallengeRepo manages the read-mostly challenge rosters.  Challenge
// definitions are seeded at startup; membership changes through
// join/leave and tolerates eventual consistency on the read side.
type ChallengeRepo struct{ db *sql.DB }

func NewChallengeRepo(db *sql.DB) *ChallengeRepo { return &ChallengeRepo{db: db} }

// SeedDefaults inserts the default challenge definitions when they are
// missing.  Idempotent: re-running on every startup is safe.
func (r *ChallengeRepo) SeedDefaults(ctx context.Context) error {
    defaults := []model.Challenge{
        {Title: "30-Day Morning Routine", Theme: "HABIT", Description: "Certify one morning milestone every day for a month."},
        {Title: "Read 12 Books", Theme: "LEARNING", Description: "One book a month, proven by photo or text evidence."},
        {Title: "Couch to 5K", Theme: "FITNESS", Description: "Run milestones verified with app captures."},
        {Title: "Certification Season", Theme: "CAREER", Description: "Pass an industry exam and prove it with a verified e-mail."},
    }
    for _, c := range defaults {
        if _, err := r.db.ExecContext(ctx,
            "INSERT IGNORE INTO challenges (title, theme, description) VALUES (?,?,?)",
            c.Title, c.Theme, c.Description); err != nil {
            return err
        }
    }
    return nil
}

// List returns all challenges with their member counts.
func (r *ChallengeRepo) List(ctx context.Context) ([]model.Challenge, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT c.id, c.title, c.theme, c.description, COALESCE(c.image_url, ''),
		        COUNT(m.user_id), c.created_at
		 FROM challenges c
		 LEFT JOIN challenge_members m ON m.challenge_id = c.id
		 GROUP BY c.id
		 ORDER BY c.id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Challenge, 0)
    for rows.Next() {
        var c model.Challenge
        if err := rows.Scan(&c.ID, &c.Title, &c.Theme, &c.Description,
            &c.ImageURL, &c.Members, &c.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}

// Get returns one challenge, or ErrNotFound.
func (r *ChallengeRepo) Get(ctx context.Context, id uint64) (model.Challenge, error) {
    var c model.Challenge
    err := r.db.QueryRowContext(ctx,
        `SELECT c.id, c.title, c.theme, c.description, COALESCE(c.image_url, ''),
		        (SELECT COUNT(*) FROM challenge_members m WHERE m.challenge_id = c.id),
		        c.created_at
		 FROM challenges c WHERE c.id=?`, id).Scan(
        &c.ID, &c.Title, &c.Theme, &c.Description, &c.ImageURL, &c.Members, &c.CreatedAt)
    if err == sql.ErrNoRows {
        return c, ErrNotFound
    }
    return c, err
}

// Join adds the user to the roster.  ErrConflict when already a member,
// ErrNotFound when the challenge does not exist.
func (r *ChallengeRepo) Join(ctx context.Context, challengeID, userID uint64) error {
    var one int
    if err := r.db.QueryRowContext(ctx,
        "SELECT 1 FROM challenges WHERE id=?", challengeID).Scan(&one); err == sql.ErrNoRows {
        return ErrNotFound
    } else if err != nil {
        return err
    }
    res, err := r.db.ExecContext(ctx,
        "INSERT IGNORE INTO challenge_members (challenge_id, user_id) VALUES (?,?)",
        challengeID, userID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrConflict
    }
    return nil
}

// JoinedChallengeIDs returns the ids of the challenges the user is a
// member of.  The certification fan-out uses this to attribute feed
// entries to each of the author's challenges.
func (r *ChallengeRepo) JoinedChallengeIDs(ctx context.Context, userID uint64) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT challenge_id FROM challenge_members WHERE user_id=? ORDER BY challenge_id",
        userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        out = append(out, id)
    }
    return out, rows.Err()
}

// Leave removes the user from the roster, or ErrNotFound when they were
// not a member.
func (r *ChallengeRepo) Leave(ctx context.Context, challengeID, userID uint64) error {
    res, err := r.db.ExecContext(ctx,
        "DELETE FROM challenge_members WHERE challenge_id=? AND user_id=?",
        challengeID, userID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// RosterMember is one row of a challenge roster with enough profile data
// for display.
type RosterMember struct {
    UserID         uint64 `json:"user_id"`
    Nickname       string `json:"nickname"`
    AvatarURL      string `json:"avatar_url"`
    TrustScore     int    `json:"trust_score"`
    CompletedGoals int    `json:"completed_goals"`
}

// Roster returns the members of a challenge ordered by completed goals,
// which doubles as the challenge leaderboard.
func (r *ChallengeRepo) Roster(ctx context.Context, challengeID uint64) ([]RosterMember, error) {
    var one int
    if err := r.db.QueryRowContext(ctx,
        "SELECT 1 FROM challenges WHERE id=?", challengeID).Scan(&one); err == sql.ErrNoRows {
        return nil, ErrNotFound
    } else if err != nil {
        return nil, err
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT p.user_id, p.nickname, p.avatar_url, p.trust_score, p.completed_goals
		 FROM challenge_members m
		 JOIN profiles p ON p.user_id = m.user_id
		 WHERE m.challenge_id=?
		 ORDER BY p.completed_goals DESC, p.user_id`, challengeID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]RosterMember, 0)
    for rows.Next() {
        var m RosterMember
        if err := rows.Scan(&m.UserID, &m.Nickname, &m.AvatarURL,
            &m.TrustScore, &m.CompletedGoals); err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}
