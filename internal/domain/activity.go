package domain

import "time"

// ActionType is what a user did.
type ActionType string

const (
	ActionUserLogin      ActionType = "user_login"
	ActionItemAdded      ActionType = "item_added"
	ActionItemDeleted    ActionType = "item_deleted"
	ActionCommentCreated ActionType = "comment_created"
	ActionTagApplied     ActionType = "tag_applied"
	ActionTagRemoved     ActionType = "tag_removed"
)

// EntityType is what an activity refers to.
type EntityType string

const (
	EntityItem    EntityType = "item"
	EntityComment EntityType = "comment"
	EntityTag     EntityType = "tag"
	EntityUser    EntityType = "user" // user_login refers to the user itself
)

// Activity is one entry in the shared activity feed.
type Activity struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	ActionType ActionType `json:"action_type"`
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ActivityReceipt marks an activity as seen by a user.
type ActivityReceipt struct {
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	SeenAt     time.Time `json:"seen_at"`
}

// FeedEntry is an activity as seen by a particular user.
type FeedEntry struct {
	Activity
	Seen bool `json:"seen"`
}
