package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// EvidenceRepo persists certification records and drives the sub-goal
// state transition they trigger.  It implements the store interface the
// certification service is built against.
type EvidenceRepo struct {
    db    *sql.DB
    plans *PlanRepo
}

// NewEvidenceRepo returns an EvidenceRepo sharing the pool with PlanRepo
// so progress recomputation reuses the same transaction helpers.
func NewEvidenceRepo(db *sql.DB, plans *PlanRepo) *EvidenceRepo {
    return &EvidenceRepo{db: db, plans: plans}
}

// scanEvidence reads one evidence row from any row scanner.  Nullable
// columns collapse to empty strings on the model, matching the tagged
// union semantics (only the fields of the record's type are populated).
func scanEvidence(scan func(dest ...any) error) (model.Evidence, error) {
    var (
        ev       model.Evidence
        content  sql.NullString
        url      sql.NullString
        hash     sql.NullString
        email    sql.NullString
        provider sql.NullString
        ref      sql.NullString
    )
    err := scan(&ev.ID, &ev.SubGoalID, &ev.Type, &content, &url, &hash,
        &ev.Status, &ev.Feedback, &email, &provider, &ref, &ev.CreatedAt)
    if err != nil {
        return ev, err
    }
    ev.Content = content.String
    ev.URL = url.String
    ev.FileHash = hash.String
    ev.VerifiedEmail = email.String
    ev.APIProvider = provider.String
    ev.APIReferenceID = ref.String
    return ev, nil
}

// GetSubGoalForOwner loads a sub-goal after verifying that it belongs to
// the given plan and that the caller owns the plan.  Returns ErrNotFound
// when the plan/sub-goal pair does not exist and ErrForbidden when the
// plan belongs to someone else.
func (r *EvidenceRepo) GetSubGoalForOwner(ctx context.Context, planID, subGoalID, ownerID uint64) (*model.SubGoal, error) {
    var author uint64
    err := r.db.QueryRowContext(ctx,
        "SELECT author_id FROM plans WHERE id=?", planID).Scan(&author)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if author != ownerID {
        return nil, ErrForbidden
    }
    row := r.db.QueryRowContext(ctx,
        "SELECT "+subGoalColumns+" FROM sub_goals WHERE id=? AND plan_id=?",
        subGoalID, planID)
    sg, err := scanSubGoal(row.Scan)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &sg, nil
}

// SaveAccepted runs the authoritative part of a certification in one
// transaction: insert the evidence row, transition a pending sub-goal to
// COMPLETED, recompute plan progress, and bump the owner's
// completed_goals counter.  It reports whether the sub-goal completed on
// this call and the plan's resulting progress.  Evidence appended to an
// already completed sub-goal is stored without a transition; a FAILED
// sub-goal rejects evidence with ErrInvalidState.
func (r *EvidenceRepo) SaveAccepted(ctx context.Context, ownerID, planID, subGoalID uint64, ev *model.Evidence) (bool, int, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return false, 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    status, err := subGoalStatusTx(ctx, tx, planID, subGoalID)
    if err != nil {
        return false, 0, err
    }
    if status == model.SubGoalFailed {
        return false, 0, ErrInvalidState
    }

    now := time.Now().UTC()
    ev.SubGoalID = subGoalID
    ev.CreatedAt = now
    res, err := tx.ExecContext(ctx,
        `INSERT INTO evidence (sub_goal_id, type, content, url, file_hash, status,
		                       feedback, verified_email, api_provider, api_reference_id, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
        subGoalID, ev.Type, ev.Content, ev.URL, ev.FileHash, ev.Status,
        ev.Feedback, ev.VerifiedEmail, ev.APIProvider, ev.APIReferenceID, now)
    if err != nil {
        return false, 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return false, 0, err
    }
    ev.ID = uint64(id)

    completedNow := status == model.SubGoalPending
    if completedNow {
        if _, err := tx.ExecContext(ctx,
            "UPDATE sub_goals SET status=?, completed_at=? WHERE id=? AND plan_id=?",
            model.SubGoalCompleted, now, subGoalID, planID); err != nil {
            return false, 0, err
        }
        if _, err := tx.ExecContext(ctx,
            "UPDATE profiles SET completed_goals=completed_goals+1 WHERE user_id=?",
            ownerID); err != nil {
            return false, 0, err
        }
    }

    pct, err := r.plans.RecomputeProgressTx(ctx, tx, planID)
    if err != nil {
        return false, 0, err
    }

    if err := tx.Commit(); err != nil {
        return false, 0, err
    }
    committed = true
    return completedNow, pct, nil
}

// Delete removes an evidence record owned by the caller.  Deleting
// evidence never re-opens the sub-goal: completion is sticky, so progress
// is not recomputed here.
func (r *EvidenceRepo) Delete(ctx context.Context, planID, subGoalID, evidenceID, ownerID uint64) error {
    var author uint64
    err := r.db.QueryRowContext(ctx,
        `SELECT p.author_id
		 FROM evidence e
		 JOIN sub_goals s ON s.id = e.sub_goal_id
		 JOIN plans p ON p.id = s.plan_id
		 WHERE e.id=? AND s.id=? AND p.id=?`,
        evidenceID, subGoalID, planID).Scan(&author)
    if err == sql.ErrNoRows {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    if author != ownerID {
        return ErrForbidden
    }
    _, err = r.db.ExecContext(ctx, "DELETE FROM evidence WHERE id=?", evidenceID)
    return err
}
