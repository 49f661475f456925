package model

import (
    "strings"
    "time"
)

// Plan visibility values.
const (
    VisibilityPublic  = "PUBLIC"
    VisibilityPrivate = "PRIVATE"
)

// MaxSubGoals caps the number of milestones a single plan may carry.
const MaxSubGoals = 100

// Plan is a user's personal goal with a deadline and an ordered list of
// sub-goals (milestones).  Progress is derived — it always equals
// round(100 * completed / total) over the plan's sub-goals and is never set
// directly by a user action.  The retrospective is written once, after the
// plan reaches 100 percent.
//
// Fields:
//  ID            – primary key identifier.
//  AuthorID      – owning user; all mutations are owner-only.
//  Title         – short display title.
//  Description   – free-form description.
//  Category      – free-string category used by discovery filters.
//  StartDate     – calendar start date.
//  EndDate       – calendar end date (never before StartDate).
//  Progress      – derived completion percentage, 0–100.
//  Visibility    – PUBLIC or PRIVATE.
//  Retrospective – optional closing text, set once after completion.
//  SubGoals      – ordered milestones, loaded on detail reads.
type Plan struct {
    ID            uint64    // plans.id
    AuthorID      uint64    // plans.author_id
    Title         string    // plans.title
    Description   string    // plans.description
    Category      string    // plans.category
    StartDate     time.Time // plans.start_date
    EndDate       time.Time // plans.end_date
    Progress      int       // plans.progress (derived)
    Visibility    string    // plans.visibility
    Retrospective *string   // plans.retrospective (nullable)
    CreatedAt     time.Time // plans.created_at
    UpdatedAt     time.Time // plans.updated_at
    SubGoals      []SubGoal // ordered by position
}

// SubGoal status values.  PENDING transitions to COMPLETED on the first
// accepted evidence or to FAILED on an explicit declaration; both are
// terminal.
const (
    SubGoalPending   = "PENDING"
    SubGoalCompleted = "COMPLETED"
    SubGoalFailed    = "FAILED"
)

// SubGoal is a milestone within a plan that requires certification to
// complete.  AllowedTypes restricts which evidence types are accepted; an
// empty set means every type is allowed.
type SubGoal struct {
    ID            uint64     // sub_goals.id
    PlanID        uint64     // sub_goals.plan_id
    Position      int        // sub_goals.position (display order)
    Title         string     // sub_goals.title
    Description   string     // sub_goals.description
    DueDate       *time.Time // sub_goals.due_date (nullable)
    Status        string     // sub_goals.status
    FailureReason *string    // sub_goals.failure_reason (nullable)
    AllowedTypes  []string   // sub_goals.allowed_types (CSV column)
    CompletedAt   *time.Time // sub_goals.completed_at (nullable)
    CreatedAt     time.Time  // sub_goals.created_at
    UpdatedAt     time.Time  // sub_goals.updated_at
    Evidence      []Evidence // loaded on detail reads
}

// Allows reports whether the sub-goal accepts evidence of the given type.
// An empty allow-set accepts every type.
func (s *SubGoal) Allows(t string) bool {
    if len(s.AllowedTypes) == 0 {
        return true
    }
    for _, a := range s.AllowedTypes {
        if strings.EqualFold(a, t) {
            return true
        }
    }
    return false
}

// JoinTypes serialises an allow-set for the CSV column.
func JoinTypes(types []string) string {
    out := make([]string, 0, len(types))
    for _, t := range types {
        t = strings.ToUpper(strings.TrimSpace(t))
        if t != "" {
            out = append(out, t)
        }
    }
    return strings.Join(out, ",")
}

// SplitTypes parses the CSV column back into an allow-set.  An empty
// column yields nil, meaning "all types allowed".
func SplitTypes(raw string) []string {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return nil
    }
    parts := strings.Split(raw, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.ToUpper(strings.TrimSpace(p))
        if p != "" {
            out = append(out, p)
        }
    }
    return out
}
