package model

import "time"

// User represents an account record as stored in the `users` table.  The
// struct is used internally by the repository layer; handlers define
// separate response types with JSON tags.  Roles distinguish regular users
// from administrators, who may adjust trust scores.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – account role (USER or ADMIN).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Account roles.  Administrators can adjust trust scores and manage
// challenge definitions; everything else is owner-scoped.
const (
    RoleUser  = "USER"
    RoleAdmin = "ADMIN"
)

// Profile is the public face of a user: display data, the externally
// adjustable trust score, and denormalized counters maintained as side
// effects of plan and follow mutations.  A profile row is created together
// with the user on registration and is never hard-deleted.
//
// Counters are non-negative; followers/following move in both directions,
// total_plans and completed_goals only grow except when a plan is deleted.
type Profile struct {
    UserID         uint64    // profiles.user_id
    Nickname       string    // profiles.nickname
    AvatarURL      string    // profiles.avatar_url
    StatusMessage  string    // profiles.status_message
    TrustScore     int       // profiles.trust_score (0–100)
    Followers      int       // profiles.followers
    Following      int       // profiles.following
    TotalPlans     int       // profiles.total_plans
    CompletedGoals int       // profiles.completed_goals
    CreatedAt      time.Time // profiles.created_at
    UpdatedAt      time.Time // profiles.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the issued token is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
