// Package queue defines message payloads exchanged over the message broker.
package queue

// EvidenceCertifiedEvent is published when a piece of evidence is accepted
// against a sub-goal. It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type EvidenceCertifiedEvent struct {
    EvidenceID   uint64 `json:"evidence_id"`
    UserID       uint64 `json:"user_id"`
    PlanID       uint64 `json:"plan_id"`
    PlanTitle    string `json:"plan_title"`
    SubGoalID    uint64 `json:"sub_goal_id"`
    SubGoalTitle string `json:"sub_goal_title"`
    EvidenceType string `json:"evidence_type"`
    Status       string `json:"status"`
    Completed    bool   `json:"completed"`
    PlanProgress int    `json:"plan_progress"`
    CertifiedAt  string `json:"certified_at"`
}
