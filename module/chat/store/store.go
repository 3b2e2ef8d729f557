package store

import (
	"context"
	"time"

	"EduTalk/module/chat/model"
)

// Store is the data plane behind the messaging service. The Mongo
// implementation is production; the memory implementation backs tests
// and single-node development.
//
// Error contract: lookups that miss return errs.ErrRecordNotFound,
// duplicate inserts return errs.ErrDuplicateKey; everything else is an
// internal storage fault.
type Store interface {
	// Directory (read-only here; owned by the registration service).
	FindUserByIDOrPhone(ctx context.Context, userID, phone string) (*model.User, error)
	FindActiveUser(ctx context.Context, userID string) (*model.User, error)
	GetUsers(ctx context.Context, userIDs []string) (map[string]*model.User, error)
	SearchActiveUsers(ctx context.Context, excludeUserID, query string, limit int64) ([]*model.User, error)

	// Contacts.
	InsertContact(ctx context.Context, c *model.Contact) (string, error)
	HasContact(ctx context.Context, ownerID, contactUserID string) (bool, error)
	ListContacts(ctx context.Context, ownerID string) ([]*model.Contact, error)
	ToggleContactFavorite(ctx context.Context, ownerID, contactUserID string) (bool, error)
	DeleteContact(ctx context.Context, ownerID, contactUserID string) error

	// Chats. GetOrCreateChat is atomic per unordered pair: concurrent
	// calls from both sides yield exactly one row.
	GetOrCreateChat(ctx context.Context, callerID, otherID string) (chat *model.Chat, created bool, err error)
	GetChat(ctx context.Context, chatID string) (*model.Chat, error)
	ListChats(ctx context.Context, userID string, page, limit int64) ([]*model.Chat, int64, error)
	SumUnread(ctx context.Context, userID string) (int64, error)

	// Messages. InsertMessage runs one transaction: message row, chat
	// summary + receiver unread increment, sent-status row, and the
	// media index row for image/video/audio.
	InsertMessage(ctx context.Context, msg *model.Message) error
	FindMessageByClientID(ctx context.Context, chatID, senderID, clientMsgID string) (*model.Message, error)
	GetMessage(ctx context.Context, messageID string) (*model.Message, error)

	// ListMessages returns the viewer-visible page newest-first plus
	// the total visible count; before bounds to strictly older rows.
	ListMessages(ctx context.Context, chatID, viewerID string, page, limit int64, before *time.Time) ([]*model.Message, int64, error)

	// MarkRead settles a fetch: decrements the viewer's unread counter
	// by baseline (guarded, never below what concurrent sends added),
	// stamps is_read/read_at on the given messages addressed to the
	// viewer, and upserts their read-status rows.
	MarkRead(ctx context.Context, chatID, viewerID string, baseline int64, messageIDs []string) error

	UpdateMessageText(ctx context.Context, messageID, content string) error

	// HideOrPurgeMessage sets the sender-side hide flag; when the
	// receiver side is already hidden the row and its satellite rows
	// are removed instead. Reports whether a purge happened.
	HideOrPurgeMessage(ctx context.Context, messageID string) (purged bool, err error)

	// ClearChat hides every chat message from callerID's side and
	// resets the summary and both unread counters, in one transaction.
	ClearChat(ctx context.Context, chatID, callerID string) error
}
