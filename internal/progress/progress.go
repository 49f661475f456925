// Package progress computes the derived completion percentage of a plan.
// The value is always recomputed from the full sub-goal collection rather
// than patched incrementally, so it cannot drift.
package progress

import (
    "math"

    "github.com/letmebeesther/plan-prove/internal/model"
)

// Compute returns round(100 * completed / total), or 0 when total is zero.
// Failed sub-goals count toward total but never toward completed, so the
// result can plateau below 100 even when every sub-goal is resolved.
func Compute(completed, total int) int {
    if total <= 0 {
        return 0
    }
    return int(math.Round(100 * float64(completed) / float64(total)))
}

// Of computes the progress of a sub-goal collection.  The function is pure
// and order-independent: permuting the slice never changes the result.
func Of(subGoals []model.SubGoal) int {
    completed := 0
    for i := range subGoals {
        if subGoals[i].Status == model.SubGoalCompleted {
            completed++
        }
    }
    return Compute(completed, len(subGoals))
}
