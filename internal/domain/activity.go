package domain

import "time"

// Activity is an append-only audit entry. UserID may reference a user that
// no longer exists.
type Activity struct {
	ID          string    `json:"_id" bson:"_id"`
	Description string    `json:"description" bson:"description"`
	UserID      string    `json:"userId" bson:"userId"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
