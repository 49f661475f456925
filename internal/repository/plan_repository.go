package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/letmebeesther/plan-prove/internal/model"
    "github.com/letmebeesther/plan-prove/internal/progress"
)

// PlanRepo provides CRUD operations for plans and their embedded
// sub-goals, and maintains the derived progress column.  Ownership is
// enforced here: every mutating method takes the caller's user id and
// returns ErrForbidden when it does not match the plan's author.  All
// timestamp fields are stored in UTC.
type PlanRepo struct {
    db *sql.DB
}

// NewPlanRepo returns a new PlanRepo bound to the given database.
func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions that
// span plan, sub-goal and profile writes.
func (r *PlanRepo) DB() *sql.DB { return r.db }

const subGoalColumns = `id, plan_id, position, title, description, due_date, status,
	failure_reason, allowed_types, completed_at, created_at, updated_at`

// scanSubGoal reads one sub_goals row from any row scanner.
func scanSubGoal(scan func(dest ...any) error) (model.SubGoal, error) {
    var (
        sg         model.SubGoal
        due        sql.NullTime
        reason     sql.NullString
        allowed    sql.NullString
        completed  sql.NullTime
    )
    err := scan(&sg.ID, &sg.PlanID, &sg.Position, &sg.Title, &sg.Description,
        &due, &sg.Status, &reason, &allowed, &completed, &sg.CreatedAt, &sg.UpdatedAt)
    if err != nil {
        return sg, err
    }
    if due.Valid {
        t := due.Time
        sg.DueDate = &t
    }
    if reason.Valid {
        s := reason.String
        sg.FailureReason = &s
    }
    if allowed.Valid {
        sg.AllowedTypes = model.SplitTypes(allowed.String)
    }
    if completed.Valid {
        t := completed.Time
        sg.CompletedAt = &t
    }
    return sg, nil
}

// authorOfTx returns the author of a plan inside a transaction, or
// ErrNotFound when the plan does not exist.
func authorOfTx(ctx context.Context, tx *sql.Tx, planID uint64) (uint64, error) {
    var author uint64
    err := tx.QueryRowContext(ctx,
        "SELECT author_id FROM plans WHERE id=?", planID).Scan(&author)
    if err == sql.ErrNoRows {
        return 0, ErrNotFound
    }
    return author, err
}

// CreateTx inserts a plan and its initial sub-goals.  The generated plan
// ID is written back onto the model.  Progress is derived from the
// initial sub-goal statuses (normally zero, since new sub-goals start
// pending).  The caller must commit or roll back the transaction.
func (r *PlanRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Plan) error {
    if len(p.SubGoals) > model.MaxSubGoals {
        return ErrLimitExceeded
    }
    if p.Visibility == "" {
        p.Visibility = model.VisibilityPublic
    }
    p.Progress = progress.Of(p.SubGoals)
    res, err := tx.ExecContext(ctx,
        `INSERT INTO plans (author_id, title, description, category, start_date, end_date, progress, visibility)
		 VALUES (?,?,?,?,?,?,?,?)`,
        p.AuthorID, p.Title, p.Description, p.Category, p.StartDate, p.EndDate, p.Progress, p.Visibility)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    for i := range p.SubGoals {
        sg := &p.SubGoals[i]
        sg.PlanID = p.ID
        sg.Position = i + 1
        if sg.Status == "" {
            sg.Status = model.SubGoalPending
        }
        sres, err := tx.ExecContext(ctx,
            `INSERT INTO sub_goals (plan_id, position, title, description, due_date, status, allowed_types)
			 VALUES (?,?,?,?,?,?,?)`,
            sg.PlanID, sg.Position, sg.Title, sg.Description, sg.DueDate, sg.Status,
            model.JoinTypes(sg.AllowedTypes))
        if err != nil {
            return err
        }
        sid, err := sres.LastInsertId()
        if err != nil {
            return err
        }
        sg.ID = uint64(sid)
    }
    return nil
}

// GetByID loads a plan with its sub-goals and their evidence.  Callers
// enforce visibility: the repository returns the plan regardless of
// whether it is public or private.
func (r *PlanRepo) GetByID(ctx context.Context, planID uint64) (*model.Plan, error) {
    var (
        p     model.Plan
        retro sql.NullString
    )
    err := r.db.QueryRowContext(ctx,
        `SELECT id, author_id, title, description, category, start_date, end_date,
		        progress, visibility, retrospective, created_at, updated_at
		 FROM plans WHERE id=?`, planID).Scan(
        &p.ID, &p.AuthorID, &p.Title, &p.Description, &p.Category,
        &p.StartDate, &p.EndDate, &p.Progress, &p.Visibility, &retro,
        &p.CreatedAt, &p.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if retro.Valid {
        s := retro.String
        p.Retrospective = &s
    }
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+subGoalColumns+" FROM sub_goals WHERE plan_id=? ORDER BY position", planID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    p.SubGoals = []model.SubGoal{}
    index := make(map[uint64]int)
    for rows.Next() {
        sg, err := scanSubGoal(rows.Scan)
        if err != nil {
            return nil, err
        }
        sg.Evidence = []model.Evidence{}
        index[sg.ID] = len(p.SubGoals)
        p.SubGoals = append(p.SubGoals, sg)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(p.SubGoals) == 0 {
        return &p, nil
    }
    // Load evidence for all sub-goals of the plan in one query.
    erows, err := r.db.QueryContext(ctx,
        `SELECT e.id, e.sub_goal_id, e.type, e.content, e.url, e.file_hash, e.status,
		        e.feedback, e.verified_email, e.api_provider, e.api_reference_id, e.created_at
		 FROM evidence e
		 JOIN sub_goals s ON s.id = e.sub_goal_id
		 WHERE s.plan_id = ?
		 ORDER BY e.sub_goal_id, e.created_at`, planID)
    if err != nil {
        return nil, err
    }
    defer erows.Close()
    for erows.Next() {
        ev, err := scanEvidence(erows.Scan)
        if err != nil {
            return nil, err
        }
        if idx, ok := index[ev.SubGoalID]; ok {
            p.SubGoals[idx].Evidence = append(p.SubGoals[idx].Evidence, ev)
        }
    }
    if err := erows.Err(); err != nil {
        return nil, err
    }
    return &p, nil
}

// ListByAuthor returns all plans owned by a user, newest first, with
// sub-goals but without evidence bodies.
func (r *PlanRepo) ListByAuthor(ctx context.Context, authorID uint64) ([]model.Plan, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, author_id, title, description, category, start_date, end_date,
		        progress, visibility, retrospective, created_at, updated_at
		 FROM plans WHERE author_id=? ORDER BY created_at DESC`, authorID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    plans := make([]model.Plan, 0)
    index := make(map[uint64]int)
    for rows.Next() {
        var (
            p     model.Plan
            retro sql.NullString
        )
        if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Description, &p.Category,
            &p.StartDate, &p.EndDate, &p.Progress, &p.Visibility, &retro,
            &p.CreatedAt, &p.UpdatedAt); err != nil {
            return nil, err
        }
        if retro.Valid {
            s := retro.String
            p.Retrospective = &s
        }
        p.SubGoals = []model.SubGoal{}
        index[p.ID] = len(plans)
        plans = append(plans, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(plans) == 0 {
        return plans, nil
    }
    ids := make([]any, 0, len(plans))
    placeholders := make([]string, 0, len(plans))
    for _, p := range plans {
        ids = append(ids, p.ID)
        placeholders = append(placeholders, "?")
    }
    q := "SELECT " + subGoalColumns + " FROM sub_goals WHERE plan_id IN (" +
        strings.Join(placeholders, ",") + ") ORDER BY plan_id, position"
    srows, err := r.db.QueryContext(ctx, q, ids...)
    if err != nil {
        return nil, err
    }
    defer srows.Close()
    for srows.Next() {
        sg, err := scanSubGoal(srows.Scan)
        if err != nil {
            return nil, err
        }
        if idx, ok := index[sg.PlanID]; ok {
            plans[idx].SubGoals = append(plans[idx].SubGoals, sg)
        }
    }
    if err := srows.Err(); err != nil {
        return nil, err
    }
    return plans, nil
}

// Update rewrites the caller-editable plan fields.  The owner check runs
// first so a foreign caller sees ErrForbidden rather than a silent no-op.
func (r *PlanRepo) Update(ctx context.Context, planID, ownerID uint64, title, description, category string, startDate, endDate time.Time, visibility string) error {
    var author uint64
    err := r.db.QueryRowContext(ctx,
        "SELECT author_id FROM plans WHERE id=?", planID).Scan(&author)
    if err == sql.ErrNoRows {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    if author != ownerID {
        return ErrForbidden
    }
    _, err = r.db.ExecContext(ctx,
        `UPDATE plans SET title=?, description=?, category=?, start_date=?, end_date=?, visibility=?
		 WHERE id=?`,
        title, description, category, startDate, endDate, visibility, planID)
    return err
}

// DeleteTx removes a plan.  Sub-goals and evidence cascade via foreign
// keys, so no separate cleanup is needed; feed entries keep their plan_id
// for navigation only and are left alone.
func (r *PlanRepo) DeleteTx(ctx context.Context, tx *sql.Tx, planID, ownerID uint64) error {
    author, err := authorOfTx(ctx, tx, planID)
    if err != nil {
        return err
    }
    if author != ownerID {
        return ErrForbidden
    }
    _, err = tx.ExecContext(ctx, "DELETE FROM plans WHERE id=?", planID)
    return err
}

// AddSubGoalTx appends a sub-goal at the next position.  Returns
// ErrLimitExceeded once the plan carries the maximum number of sub-goals.
func (r *PlanRepo) AddSubGoalTx(ctx context.Context, tx *sql.Tx, planID, ownerID uint64, sg *model.SubGoal) error {
    author, err := authorOfTx(ctx, tx, planID)
    if err != nil {
        return err
    }
    if author != ownerID {
        return ErrForbidden
    }
    // Positions grow from the historical maximum, not the row count:
    // after a deletion the count would reuse a live position.
    var count, maxPos int
    if err := tx.QueryRowContext(ctx,
        "SELECT COUNT(*), COALESCE(MAX(position),0) FROM sub_goals WHERE plan_id=?",
        planID).Scan(&count, &maxPos); err != nil {
        return err
    }
    if count >= model.MaxSubGoals {
        return ErrLimitExceeded
    }
    if sg.Status == "" {
        sg.Status = model.SubGoalPending
    }
    sg.PlanID = planID
    sg.Position = maxPos + 1
    res, err := tx.ExecContext(ctx,
        `INSERT INTO sub_goals (plan_id, position, title, description, due_date, status, allowed_types)
		 VALUES (?,?,?,?,?,?,?)`,
        planID, sg.Position, sg.Title, sg.Description, sg.DueDate, sg.Status,
        model.JoinTypes(sg.AllowedTypes))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    sg.ID = uint64(id)
    return nil
}

// subGoalStatusTx returns the status of a sub-goal within its plan, or
// ErrNotFound when the pair does not exist.
func subGoalStatusTx(ctx context.Context, tx *sql.Tx, planID, subGoalID uint64) (string, error) {
    var status string
    err := tx.QueryRowContext(ctx,
        "SELECT status FROM sub_goals WHERE id=? AND plan_id=?",
        subGoalID, planID).Scan(&status)
    if err == sql.ErrNoRows {
        return "", ErrNotFound
    }
    return status, err
}

// UpdateSubGoalTx edits a sub-goal's descriptive fields.  Allowed only
// while the sub-goal is pending; completed and failed are terminal.
func (r *PlanRepo) UpdateSubGoalTx(ctx context.Context, tx *sql.Tx, planID, subGoalID, ownerID uint64, title, description string, dueDate *time.Time, allowedTypes []string) error {
    author, err := authorOfTx(ctx, tx, planID)
    if err != nil {
        return err
    }
    if author != ownerID {
        return ErrForbidden
    }
    status, err := subGoalStatusTx(ctx, tx, planID, subGoalID)
    if err != nil {
        return err
    }
    if status != model.SubGoalPending {
        return ErrInvalidState
    }
    _, err = tx.ExecContext(ctx,
        `UPDATE sub_goals SET title=?, description=?, due_date=?, allowed_types=?
		 WHERE id=? AND plan_id=?`,
        title, description, dueDate, model.JoinTypes(allowedTypes), subGoalID, planID)
    return err
}

// DeleteSubGoalTx removes a pending sub-goal.  The caller must recompute
// progress afterwards in the same transaction.
func (r *PlanRepo) DeleteSubGoalTx(ctx context.Context, tx *sql.Tx, planID, subGoalID, ownerID uint64) error {
    author, err := authorOfTx(ctx, tx, planID)
    if err != nil {
        return err
    }
    if author != ownerID {
        return ErrForbidden
    }
    status, err := subGoalStatusTx(ctx, tx, planID, subGoalID)
    if err != nil {
        return err
    }
    if status != model.SubGoalPending {
        return ErrInvalidState
    }
    _, err = tx.ExecContext(ctx,
        "DELETE FROM sub_goals WHERE id=? AND plan_id=?", subGoalID, planID)
    return err
}

// FailSubGoalTx transitions a pending sub-goal to FAILED with a reason.
// The caller must recompute progress afterwards in the same transaction.
func (r *PlanRepo) FailSubGoalTx(ctx context.Context, tx *sql.Tx, planID, subGoalID, ownerID uint64, reason string) error {
    author, err := authorOfTx(ctx, tx, planID)
    if err != nil {
        return err
    }
    if author != ownerID {
        return ErrForbidden
    }
    status, err := subGoalStatusTx(ctx, tx, planID, subGoalID)
    if err != nil {
        return err
    }
    if status != model.SubGoalPending {
        return ErrInvalidState
    }
    _, err = tx.ExecContext(ctx,
        "UPDATE sub_goals SET status=?, failure_reason=? WHERE id=? AND plan_id=?",
        model.SubGoalFailed, reason, subGoalID, planID)
    return err
}

// RecomputeProgressTx recalculates the plan's progress from the full
// sub-goal collection and stores it.  Always a full recomputation, never
// an incremental patch.
func (r *PlanRepo) RecomputeProgressTx(ctx context.Context, tx *sql.Tx, planID uint64) (int, error) {
    var total, completed int
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*), COALESCE(SUM(status = ?), 0)
		 FROM sub_goals WHERE plan_id=?`,
        model.SubGoalCompleted, planID).Scan(&total, &completed)
    if err != nil {
        return 0, err
    }
    pct := progress.Compute(completed, total)
    if _, err := tx.ExecContext(ctx,
        "UPDATE plans SET progress=? WHERE id=?", pct, planID); err != nil {
        return 0, err
    }
    return pct, nil
}

// SetRetrospectiveTx writes the one-time retrospective.  Requires the
// plan to be fully complete and no retrospective to exist yet.
func (r *PlanRepo) SetRetrospectiveTx(ctx context.Context, tx *sql.Tx, planID, ownerID uint64, text string) error {
    author, err := authorOfTx(ctx, tx, planID)
    if err != nil {
        return err
    }
    if author != ownerID {
        return ErrForbidden
    }
    var (
        pct   int
        retro sql.NullString
    )
    if err := tx.QueryRowContext(ctx,
        "SELECT progress, retrospective FROM plans WHERE id=?", planID).Scan(&pct, &retro); err != nil {
        return err
    }
    if pct < 100 || retro.Valid {
        return ErrInvalidState
    }
    _, err = tx.ExecContext(ctx,
        "UPDATE plans SET retrospective=? WHERE id=?", text, planID)
    return err
}
