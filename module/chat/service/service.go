package service

import (
	"time"

	"EduTalk/module/chat/model"
	"EduTalk/module/chat/store"
	"EduTalk/module/chat/upload"
	"EduTalk/service/natsx"
	"EduTalk/service/storage"
)

// Service carries the messaging use cases. It owns no state of its
// own: persistence lives in the Store, presence in Redis, and the
// notifier fans events out best-effort (nil notifier disables it).
type Service struct {
	store    store.Store
	presence storage.PresenceStore
	notifier *natsx.Notifier
	saver    *upload.Saver
}

func New(st store.Store, ps storage.PresenceStore, n *natsx.Notifier, saver *upload.Saver) *Service {
	return &Service{store: st, presence: ps, notifier: n, saver: saver}
}

// ContactView is a contact row decorated with the target's directory
// record and presence.
type ContactView struct {
	model.Contact
	User     *model.User `json:"user,omitempty"`
	IsOnline bool        `json:"is_online"`
	LastSeen *time.Time  `json:"last_seen,omitempty"`
}

// UserSearchView is a directory hit flagged with the caller's contact
// relation.
type UserSearchView struct {
	model.User
	IsContact bool `json:"is_contact"`
}

// ChatView is a chat decorated for one participant: the other side's
// record and presence plus the caller-side unread counter.
type ChatView struct {
	model.Chat
	Other    *model.User `json:"other_user,omitempty"`
	Unread   int64       `json:"unread_count"`
	IsOnline bool        `json:"is_online"`
	LastSeen *time.Time  `json:"last_seen,omitempty"`
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

func normalizePage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
