package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// HallOfFameRepo records fully completed plans for the public
// hall-of-fame view.  Like the feed, it is a best-effort read-side
// projection: a failed write is logged by the caller and the
// certification is not rolled back.
type HallOfFameRepo struct{ db *sql.DB }

func NewHallOfFameRepo(db *sql.DB) *HallOfFameRepo { return &HallOfFameRepo{db: db} }

// Record captures the plan's title and category at completion time so
// the entry survives later edits or deletion of the plan.  Duplicate
// recordings of the same plan are ignored.
func (r *HallOfFameRepo) Record(ctx context.Context, userID, planID uint64) error {
    var title, category string
    err := r.db.QueryRowContext(ctx,
        "SELECT title, category FROM plans WHERE id=?", planID).Scan(&title, &category)
    if err == sql.ErrNoRows {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    _, err = r.db.ExecContext(ctx,
        `INSERT IGNORE INTO hall_of_fame (user_id, plan_id, title, category, completed_at)
		 VALUES (?,?,?,?,?)`,
        userID, planID, title, category, time.Now().UTC())
    return err
}

// List returns the most recent hall-of-fame entries.
func (r *HallOfFameRepo) List(ctx context.Context, limit int) ([]model.HallOfFameEntry, error) {
    if limit <= 0 || limit > 100 {
        limit = 50
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, user_id, plan_id, title, category, completed_at
		 FROM hall_of_fame
		 ORDER BY completed_at DESC
		 LIMIT ?`, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.HallOfFameEntry, 0, limit)
    for rows.Next() {
        var e model.HallOfFameEntry
        if err := rows.Scan(&e.ID, &e.UserID, &e.PlanID, &e.Title,
            &e.Category, &e.CompletedAt); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}
