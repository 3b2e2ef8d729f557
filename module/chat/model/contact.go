package model

import (
	"time"

	"EduTalk/service/mgo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Contact is one entry in a user's address book. Name and phone are
// snapshots taken at add time and are not synced with the directory.
// Unique index: (owner_id, contact_user_id).
type Contact struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID       string             `bson:"owner_id" json:"-"`
	ContactUserID string             `bson:"contact_user_id" json:"contact_id"`
	ContactName   string             `bson:"contact_name" json:"contact_name"`
	ContactPhone  string             `bson:"contact_phone" json:"contact_phone"`
	IsFavorite    bool               `bson:"is_favorite" json:"is_favorite"`
	CreateTime    time.Time          `bson:"create_time" json:"created_at"`
}

func (c *Contact) GetTableName() string {
	return "contacts"
}

func (c *Contact) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}
