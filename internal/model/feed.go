package model

import "time"

// FeedEntry is a denormalized, read-side record generated from a
// certification event.  Entries are never updated after creation except
// for the like/comment counters.  The feed is a non-authoritative
// projection: losing an entry never invalidates the certification that
// produced it.
type FeedEntry struct {
    ID               uint64    // feed_entries.id
    UserID           uint64    // feed_entries.user_id
    PlanID           *uint64   // feed_entries.plan_id (nullable, navigation only)
    ChallengeID      *uint64   // feed_entries.challenge_id (nullable)
    RelatedGoalTitle string    // feed_entries.related_goal_title
    Description      string    // feed_entries.description
    ImageURL         string    // feed_entries.image_url
    Likes            int       // feed_entries.likes
    Comments         int       // feed_entries.comments
    CreatedAt        time.Time // feed_entries.created_at
}

// Challenge is a multi-user group pursuing a shared theme.  Challenges are
// read-mostly roster documents seeded at startup; membership is tracked in
// challenge_members.
type Challenge struct {
    ID          uint64    // challenges.id
    Title       string    // challenges.title
    Theme       string    // challenges.theme
    Description string    // challenges.description
    ImageURL    string    // challenges.image_url
    Members     int       // derived member count (not a column)
    CreatedAt   time.Time // challenges.created_at
}

// HallOfFameEntry records a fully completed plan for the public
// hall-of-fame view.  Written best-effort when a plan reaches 100 percent.
type HallOfFameEntry struct {
    ID          uint64    // hall_of_fame.id
    UserID      uint64    // hall_of_fame.user_id
    PlanID      uint64    // hall_of_fame.plan_id
    Title       string    // hall_of_fame.title
    Category    string    // hall_of_fame.category
    CompletedAt time.Time // hall_of_fame.completed_at
}
