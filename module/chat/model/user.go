package model

import (
	"time"

	"EduTalk/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// User is the platform directory record. Registration, credentials and
// profile editing belong to the identity collaborator; the messaging
// subsystem only reads these rows to resolve and decorate
// participants.
type User struct {
	UserID       string    `bson:"user_id" json:"user_id"`
	FullName     string    `bson:"full_name" json:"full_name"`
	Phone        string    `bson:"phone" json:"phone"`
	ProfileImage string    `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	University   string    `bson:"university,omitempty" json:"university,omitempty"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreateTime   time.Time `bson:"create_time" json:"-"`
}

func (u *User) GetTableName() string {
	return "users"
}

func (u *User) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(u.GetTableName())
}
