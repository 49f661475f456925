package progress

import (
    "math/rand"
    "testing"

    "github.com/letmebeesther/plan-prove/internal/model"
)

func subGoals(statuses ...string) []model.SubGoal {
    out := make([]model.SubGoal, len(statuses))
    for i, s := range statuses {
        out[i] = model.SubGoal{ID: uint64(i + 1), Status: s}
    }
    return out
}

func TestCompute(t *testing.T) {
    cases := []struct {
        name      string
        completed int
        total     int
        want      int
    }{
        {"empty", 0, 0, 0},
        {"negative total", 0, -1, 0},
        {"none done", 0, 4, 0},
        {"all done", 4, 4, 100},
        {"one of four", 1, 4, 25},
        {"one of three rounds up", 1, 3, 33},
        {"two of three rounds up", 2, 3, 67},
        {"one of six rounds down", 1, 6, 17},
        {"one of eight rounds to nearest", 1, 8, 13},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if got := Compute(tc.completed, tc.total); got != tc.want {
                t.Errorf("Compute(%d, %d) = %d, want %d", tc.completed, tc.total, got, tc.want)
            }
        })
    }
}

func TestOfMixedStatuses(t *testing.T) {
    // One completed, one failed, two pending: failed counts toward the
    // denominator only, so progress is 25.
    sgs := subGoals(model.SubGoalCompleted, model.SubGoalFailed, model.SubGoalPending, model.SubGoalPending)
    if got := Of(sgs); got != 25 {
        t.Fatalf("Of = %d, want 25", got)
    }
}

func TestOfEmpty(t *testing.T) {
    if got := Of(nil); got != 0 {
        t.Fatalf("Of(nil) = %d, want 0", got)
    }
}

func TestOfPermutationInvariant(t *testing.T) {
    base := subGoals(
        model.SubGoalCompleted, model.SubGoalCompleted, model.SubGoalFailed,
        model.SubGoalPending, model.SubGoalCompleted, model.SubGoalPending,
        model.SubGoalFailed,
    )
    want := Of(base)
    rng := rand.New(rand.NewSource(7))
    for i := 0; i < 50; i++ {
        shuffled := make([]model.SubGoal, len(base))
        copy(shuffled, base)
        rng.Shuffle(len(shuffled), func(a, b int) {
            shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
        })
        if got := Of(shuffled); got != want {
            t.Fatalf("permutation %d: Of = %d, want %d", i, got, want)
        }
    }
}

func TestRemovalNeverRaisesBeyondAchievable(t *testing.T) {
    // Removing a pending sub-goal may raise progress; removing a completed
    // one may lower it.  Either way the recomputed value must match the
    // remaining collection exactly.
    sgs := subGoals(model.SubGoalCompleted, model.SubGoalPending, model.SubGoalPending)
    for i := range sgs {
        remaining := append([]model.SubGoal{}, sgs[:i]...)
        remaining = append(remaining, sgs[i+1:]...)
        completed := 0
        for _, s := range remaining {
            if s.Status == model.SubGoalCompleted {
                completed++
            }
        }
        if got, want := Of(remaining), Compute(completed, len(remaining)); got != want {
            t.Errorf("after removing #%d: Of = %d, want %d", i, got, want)
        }
    }
}

func TestSequentialAdditionRecomputes(t *testing.T) {
    // Appending sub-goals one at a time, recomputing after each append,
    // always yields the value of the full collection: two completed out
    // of n as pending ones keep arriving.
    sgs := subGoals(model.SubGoalCompleted, model.SubGoalCompleted)
    wants := []int{67, 50, 40, 33}
    for i, want := range wants {
        sgs = append(sgs, model.SubGoal{ID: uint64(3 + i), Status: model.SubGoalPending})
        if got := Of(sgs); got != want {
            t.Fatalf("after append %d: Of = %d, want %d", i+1, got, want)
        }
    }
}

func TestOfIdempotent(t *testing.T) {
    sgs := subGoals(model.SubGoalCompleted, model.SubGoalPending)
    first := Of(sgs)
    for i := 0; i < 3; i++ {
        if got := Of(sgs); got != first {
            t.Fatalf("repeated Of = %d, want %d", got, first)
        }
    }
}
