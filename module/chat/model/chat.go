package model

import (
	"strings"
	"time"

	"EduTalk/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// Chat is the single conversation between two distinct users. The
// participants are stored in creation order but the pair is logically
// unordered: PairKey normalizes it so the unique index and every
// lookup agree regardless of who created the chat first.
type Chat struct {
	ChatID  string `bson:"chat_id" json:"chat_id"`
	User1ID string `bson:"user1_id" json:"user1_id"`
	User2ID string `bson:"user2_id" json:"user2_id"`
	PairKey string `bson:"pair_key" json:"-"` // unique index

	LastMessage       string    `bson:"last_message,omitempty" json:"last_message,omitempty"`
	LastMessageType   string    `bson:"last_message_type,omitempty" json:"last_message_type,omitempty"`
	LastMessageSender string    `bson:"last_message_sender,omitempty" json:"last_message_sender,omitempty"`
	LastMessageTime   time.Time `bson:"last_message_time,omitempty" json:"last_message_time,omitempty"`

	UnreadUser1 int64 `bson:"unread_user1" json:"-"`
	UnreadUser2 int64 `bson:"unread_user2" json:"-"`

	IsActive   bool      `bson:"is_active" json:"is_active"`
	CreateTime time.Time `bson:"create_time" json:"created_at"`
	UpdateTime time.Time `bson:"update_time" json:"updated_at"`
}

// PairKeyOf builds the normalized unordered-pair key: the two ids
// sorted and joined. PairKeyOf(a,b) == PairKeyOf(b,a).
func PairKeyOf(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}

// HasParticipant reports whether userID is one of the two sides.
func (c *Chat) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherOf returns the counterpart of userID; empty when userID is not
// a participant.
func (c *Chat) OtherOf(userID string) string {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}

// UnreadFor returns the counter owned by userID's side.
func (c *Chat) UnreadFor(userID string) int64 {
	if c.User1ID == userID {
		return c.UnreadUser1
	}
	return c.UnreadUser2
}

// UnreadFieldFor returns the bson field holding userID's counter.
func (c *Chat) UnreadFieldFor(userID string) string {
	if c.User1ID == userID {
		return "unread_user1"
	}
	return "unread_user2"
}

func (c *Chat) GetTableName() string {
	return "chats"
}

func (c *Chat) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}
