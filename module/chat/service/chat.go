package service

import (
	"context"

	"EduTalk/module/chat/model"
	"EduTalk/tools/errs"
)

// GetOrCreateChat returns the single chat between the caller and
// otherID, creating it on first contact. Concurrent first contact from
// both sides lands on the same row (unique pair key + upsert).
func (s *Service) GetOrCreateChat(ctx context.Context, callerID, otherID string) (*ChatView, bool, error) {
	if callerID == otherID {
		return nil, false, errs.ErrArgs.WrapMsg("cannot chat with yourself")
	}
	other, err := s.store.FindActiveUser(ctx, otherID)
	if err != nil {
		return nil, false, err
	}
	chat, created, err := s.store.GetOrCreateChat(ctx, callerID, otherID)
	if err != nil {
		return nil, false, err
	}
	return s.decorateChat(ctx, chat, callerID, other), created, nil
}

// ListChats pages the caller's active chats, most recently updated
// first, each decorated for the caller.
func (s *Service) ListChats(ctx context.Context, callerID string, page, limit int64) ([]*ChatView, int64, error) {
	page, limit = normalizePage(page, limit)
	chats, total, err := s.store.ListChats(ctx, callerID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	otherIDs := make([]string, 0, len(chats))
	for _, c := range chats {
		otherIDs = append(otherIDs, c.OtherOf(callerID))
	}
	users, err := s.store.GetUsers(ctx, otherIDs)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*ChatView, 0, len(chats))
	for _, c := range chats {
		out = append(out, s.decorateChat(ctx, c, callerID, users[c.OtherOf(callerID)]))
	}
	return out, total, nil
}

// UnreadTotal sums the caller-side counters across active chats.
func (s *Service) UnreadTotal(ctx context.Context, callerID string) (int64, error) {
	return s.store.SumUnread(ctx, callerID)
}

func (s *Service) decorateChat(ctx context.Context, chat *model.Chat, callerID string, other *model.User) *ChatView {
	otherID := chat.OtherOf(callerID)
	p := s.presenceOf(ctx, otherID)
	return &ChatView{
		Chat:     *chat,
		Other:    other,
		Unread:   chat.UnreadFor(callerID),
		IsOnline: p.IsOnline,
		LastSeen: p.LastSeen,
	}
}
