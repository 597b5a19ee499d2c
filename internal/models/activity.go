package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Journal actions.
const (
	ActionUserRegistered  = "user.registered"
	ActionUserLogin       = "user.login"
	ActionUserLogout      = "user.logout"
	ActionArgumentCreated = "argument.created"
	ActionArgumentDeleted = "argument.deleted"
)

// Activity is a single journal entry stored in MongoDB.
type Activity struct {
	ID         primitive.ObjectID `json:"id"                   bson:"_id,omitempty"`
	Action     string             `json:"action"               bson:"action"`
	UserID     int64              `json:"userId"               bson:"user_id"`
	Username   string             `json:"username"             bson:"username"`
	ArgumentID int64              `json:"argumentId,omitempty" bson:"argument_id,omitempty"`
	Title      string             `json:"title,omitempty"      bson:"title,omitempty"`
	Archetype  Archetype          `json:"archetype,omitempty"  bson:"archetype,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"            bson:"created_at"`
}

// Export describes a catalog snapshot uploaded to object storage.
type Export struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	Rows int    `json:"rows"`
}
