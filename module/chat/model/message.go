package model

import (
	"time"

	"EduTalk/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// Message types. Everything except text carries attachment fields.
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeVideo = "video"
	TypeAudio = "audio"
	TypePDF   = "pdf"
	TypeDoc   = "doc"
	TypeXls   = "xls"
	TypePpt   = "ppt"
	TypeTxt   = "txt"
	TypeFile  = "file"
)

// Delivery-status values written to message_status.
const (
	StatusSent = "sent"
	StatusRead = "read"
)

// Message belongs to exactly one chat; receiver is always the chat's
// other participant. The row is physically removed once both deletion
// flags are set; until then a set flag only hides it from that side.
type Message struct {
	MessageID  string `bson:"message_id" json:"message_id"`
	ChatID     string `bson:"chat_id" json:"chat_id"`
	SenderID   string `bson:"sender_id" json:"sender_id"`
	ReceiverID string `bson:"receiver_id" json:"receiver_id"`

	MessageType string `bson:"message_type" json:"message_type"`
	Content     string `bson:"content,omitempty" json:"content,omitempty"`

	FileURL      string `bson:"file_url,omitempty" json:"file_url,omitempty"`
	FileName     string `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileSize     int64  `bson:"file_size,omitempty" json:"file_size,omitempty"`
	FileDuration int64  `bson:"file_duration,omitempty" json:"file_duration,omitempty"`
	ThumbnailURL string `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`

	// Optional idempotency token supplied by the client; unique per
	// (chat, sender) when present.
	ClientMsgID string `bson:"client_msg_id,omitempty" json:"client_msg_id,omitempty"`

	IsEdited           bool       `bson:"is_edited" json:"is_edited"`
	DeletedForSender   bool       `bson:"deleted_for_sender" json:"-"`
	DeletedForReceiver bool       `bson:"deleted_for_receiver" json:"-"`
	IsRead             bool       `bson:"is_read" json:"is_read"`
	ReadAt             *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"created_at"`
	UpdateTime time.Time `bson:"update_time" json:"updated_at"`
}

// VisibleTo reports whether userID's side has not hidden the message.
func (m *Message) VisibleTo(userID string) bool {
	if m.SenderID == userID {
		return !m.DeletedForSender
	}
	if m.ReceiverID == userID {
		return !m.DeletedForReceiver
	}
	return false
}

// IsMedia reports whether the type gets a chat_media index row.
func IsMedia(messageType string) bool {
	switch messageType {
	case TypeImage, TypeVideo, TypeAudio:
		return true
	}
	return false
}

// PlaceholderFor is the chat-summary label shown for non-text
// messages.
func PlaceholderFor(messageType string) string {
	switch messageType {
	case TypeImage:
		return "Image"
	case TypeVideo:
		return "Video"
	case TypeAudio:
		return "Audio"
	default:
		return "File"
	}
}

func (m *Message) GetTableName() string {
	return "messages"
}

func (m *Message) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(m.GetTableName())
}

// ChatMedia is the denormalized gallery index: one row per
// image/video/audio message, written alongside it and never mutated.
type ChatMedia struct {
	ChatID     string    `bson:"chat_id" json:"chat_id"`
	MessageID  string    `bson:"message_id" json:"message_id"`
	MediaType  string    `bson:"media_type" json:"media_type"`
	MediaURL   string    `bson:"media_url" json:"media_url"`
	FileSize   int64     `bson:"file_size" json:"file_size"`
	CreateTime time.Time `bson:"create_time" json:"created_at"`
}

func (c *ChatMedia) GetTableName() string {
	return "chat_media"
}

func (c *ChatMedia) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}

// MessageStatus records the latest transmission state per
// (message, participant): "sent" for the sender at send time, "read"
// for the receiver once a fetch marks the message read.
type MessageStatus struct {
	MessageID  string    `bson:"message_id" json:"message_id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Status     string    `bson:"status" json:"status"`
	UpdateTime time.Time `bson:"update_time" json:"updated_at"`
}

func (s *MessageStatus) GetTableName() string {
	return "message_status"
}

func (s *MessageStatus) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(s.GetTableName())
}
