package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"EduTalk/module/chat/model"
	"EduTalk/tools/errs"
	"EduTalk/tools/ids"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore keeps everything behind one mutex. It backs tests and
// single-node development; semantics match MongoStore, including the
// guarded unread decrement and the two-sided purge.
type MemStore struct {
	mu sync.Mutex

	users    map[string]*model.User
	contacts map[string]*model.Contact // owner_id + ":" + contact_user_id
	chats    map[string]*model.Chat    // chat_id
	pairs    map[string]string         // pair_key -> chat_id
	messages map[string]*model.Message // message_id
	media    []model.ChatMedia
	status   map[string]*model.MessageStatus // message_id + ":" + user_id

	seq    map[string]int64 // insertion order, tiebreak for equal create_time
	nextSq int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    map[string]*model.User{},
		contacts: map[string]*model.Contact{},
		chats:    map[string]*model.Chat{},
		pairs:    map[string]string{},
		messages: map[string]*model.Message{},
		status:   map[string]*model.MessageStatus{},
		seq:      map[string]int64{},
	}
}

// PutUser seeds the directory.
func (s *MemStore) PutUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.UserID] = &cp
}

func contactKey(ownerID, contactUserID string) string { return ownerID + ":" + contactUserID }
func statusKey(messageID, userID string) string       { return messageID + ":" + userID }

// ---- directory ----

func (s *MemStore) FindUserByIDOrPhone(_ context.Context, userID, phone string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserID == userID || (phone != "" && u.Phone == phone) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrRecordNotFound.Wrap()
}

func (s *MemStore) FindActiveUser(_ context.Context, userID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || !u.IsActive {
		return nil, errs.ErrRecordNotFound.Wrap()
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) GetUsers(_ context.Context, userIDs []string) (map[string]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*model.User, len(userIDs))
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *MemStore) SearchActiveUsers(_ context.Context, excludeUserID, query string, limit int64) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	var out []*model.User
	for _, u := range s.users {
		if !u.IsActive || u.UserID == excludeUserID {
			continue
		}
		if strings.Contains(strings.ToLower(u.UserID), q) ||
			strings.Contains(strings.ToLower(u.FullName), q) ||
			strings.Contains(strings.ToLower(u.Phone), q) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- contacts ----

func (s *MemStore) InsertContact(_ context.Context, c *model.Contact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := contactKey(c.OwnerID, c.ContactUserID)
	if _, ok := s.contacts[key]; ok {
		return "", errs.ErrDuplicateKey.WrapMsg("contact exists", "owner", c.OwnerID, "contact", c.ContactUserID)
	}
	cp := *c
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	if cp.CreateTime.IsZero() {
		cp.CreateTime = time.Now()
	}
	s.contacts[key] = &cp
	return cp.ID.Hex(), nil
}

func (s *MemStore) HasContact(_ context.Context, ownerID, contactUserID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.contacts[contactKey(ownerID, contactUserID)]
	return ok, nil
}

func (s *MemStore) ListContacts(_ context.Context, ownerID string) ([]*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Contact
	for _, c := range s.contacts {
		if c.OwnerID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsFavorite != out[j].IsFavorite {
			return out[i].IsFavorite
		}
		return out[i].ContactName < out[j].ContactName
	})
	return out, nil
}

func (s *MemStore) ToggleContactFavorite(_ context.Context, ownerID, contactUserID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[contactKey(ownerID, contactUserID)]
	if !ok {
		return false, errs.ErrRecordNotFound.Wrap()
	}
	c.IsFavorite = !c.IsFavorite
	return c.IsFavorite, nil
}

func (s *MemStore) DeleteContact(_ context.Context, ownerID, contactUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := contactKey(ownerID, contactUserID)
	if _, ok := s.contacts[key]; !ok {
		return errs.ErrRecordNotFound.Wrap()
	}
	delete(s.contacts, key)
	return nil
}

// ---- chats ----

func (s *MemStore) GetOrCreateChat(_ context.Context, callerID, otherID string) (*model.Chat, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairKey := model.PairKeyOf(callerID, otherID)
	if chatID, ok := s.pairs[pairKey]; ok {
		cp := *s.chats[chatID]
		return &cp, false, nil
	}
	now := time.Now()
	chat := &model.Chat{
		ChatID:     ids.NewChatID(),
		User1ID:    callerID,
		User2ID:    otherID,
		PairKey:    pairKey,
		IsActive:   true,
		CreateTime: now,
		UpdateTime: now,
	}
	s.chats[chat.ChatID] = chat
	s.pairs[pairKey] = chat.ChatID
	cp := *chat
	return &cp, true, nil
}

func (s *MemStore) GetChat(_ context.Context, chatID string) (*model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, errs.ErrRecordNotFound.Wrap()
	}
	cp := *chat
	return &cp, nil
}

func (s *MemStore) ListChats(_ context.Context, userID string, page, limit int64) ([]*model.Chat, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*model.Chat
	for _, c := range s.chats {
		if c.IsActive && c.HasParticipant(userID) {
			cp := *c
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdateTime.After(all[j].UpdateTime) })
	total := int64(len(all))
	return pageOf(all, page, limit), total, nil
}

func (s *MemStore) SumUnread(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, c := range s.chats {
		if c.IsActive && c.HasParticipant(userID) {
			total += c.UnreadFor(userID)
		}
	}
	return total, nil
}

// ---- messages ----

func (s *MemStore) InsertMessage(_ context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[msg.ChatID]
	if !ok {
		return errs.ErrRecordNotFound.Wrap()
	}
	if _, ok := s.messages[msg.MessageID]; ok {
		return errs.ErrDuplicateKey.WrapMsg("message exists", "message_id", msg.MessageID)
	}
	if msg.ClientMsgID != "" {
		for _, m := range s.messages {
			if m.ChatID == msg.ChatID && m.SenderID == msg.SenderID && m.ClientMsgID == msg.ClientMsgID {
				return errs.ErrDuplicateKey.WrapMsg("message", "client_msg_id", msg.ClientMsgID)
			}
		}
	}

	cp := *msg
	s.messages[cp.MessageID] = &cp
	s.nextSq++
	s.seq[cp.MessageID] = s.nextSq

	summary := cp.Content
	if cp.MessageType != model.TypeText {
		summary = model.PlaceholderFor(cp.MessageType)
	}
	chat.LastMessage = summary
	chat.LastMessageType = cp.MessageType
	chat.LastMessageSender = cp.SenderID
	chat.LastMessageTime = cp.CreateTime
	chat.UpdateTime = cp.CreateTime
	if chat.User1ID == cp.ReceiverID {
		chat.UnreadUser1++
	} else {
		chat.UnreadUser2++
	}

	if model.IsMedia(cp.MessageType) {
		s.media = append(s.media, model.ChatMedia{
			ChatID:     cp.ChatID,
			MessageID:  cp.MessageID,
			MediaType:  cp.MessageType,
			MediaURL:   cp.FileURL,
			FileSize:   cp.FileSize,
			CreateTime: cp.CreateTime,
		})
	}
	s.status[statusKey(cp.MessageID, cp.SenderID)] = &model.MessageStatus{
		MessageID:  cp.MessageID,
		UserID:     cp.SenderID,
		Status:     model.StatusSent,
		UpdateTime: cp.CreateTime,
	}
	return nil
}

func (s *MemStore) FindMessageByClientID(_ context.Context, chatID, senderID, clientMsgID string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ChatID == chatID && m.SenderID == senderID && m.ClientMsgID == clientMsgID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, errs.ErrRecordNotFound.Wrap()
}

func (s *MemStore) GetMessage(_ context.Context, messageID string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return nil, errs.ErrRecordNotFound.Wrap()
	}
	cp := *m
	return &cp, nil
}

func (s *MemStore) ListMessages(_ context.Context, chatID, viewerID string, page, limit int64, before *time.Time) ([]*model.Message, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var visible []*model.Message
	for _, m := range s.messages {
		if m.ChatID == chatID && m.VisibleTo(viewerID) {
			cp := *m
			visible = append(visible, &cp)
		}
	}
	total := int64(len(visible))
	if before != nil {
		bounded := visible[:0]
		for _, m := range visible {
			if m.CreateTime.Before(*before) {
				bounded = append(bounded, m)
			}
		}
		visible = bounded
	}
	sort.Slice(visible, func(i, j int) bool {
		if !visible[i].CreateTime.Equal(visible[j].CreateTime) {
			return visible[i].CreateTime.After(visible[j].CreateTime)
		}
		return s.seq[visible[i].MessageID] > s.seq[visible[j].MessageID]
	})
	return pageOf(visible, page, limit), total, nil
}

func (s *MemStore) MarkRead(_ context.Context, chatID, viewerID string, baseline int64, messageIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return errs.ErrRecordNotFound.Wrap()
	}
	if baseline > 0 {
		if chat.User1ID == viewerID {
			if chat.UnreadUser1 >= baseline {
				chat.UnreadUser1 -= baseline
			}
		} else {
			if chat.UnreadUser2 >= baseline {
				chat.UnreadUser2 -= baseline
			}
		}
	}
	now := time.Now()
	for _, id := range messageIDs {
		m, ok := s.messages[id]
		if ok && m.ReceiverID == viewerID && !m.IsRead {
			m.IsRead = true
			at := now
			m.ReadAt = &at
			m.UpdateTime = now
		}
		s.status[statusKey(id, viewerID)] = &model.MessageStatus{
			MessageID:  id,
			UserID:     viewerID,
			Status:     model.StatusRead,
			UpdateTime: now,
		}
	}
	return nil
}

func (s *MemStore) UpdateMessageText(_ context.Context, messageID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return errs.ErrRecordNotFound.Wrap()
	}
	m.Content = content
	m.IsEdited = true
	m.UpdateTime = time.Now()
	return nil
}

func (s *MemStore) HideOrPurgeMessage(_ context.Context, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return false, errs.ErrRecordNotFound.Wrap()
	}
	m.DeletedForSender = true
	m.UpdateTime = time.Now()
	if !m.DeletedForReceiver {
		return false, nil
	}
	delete(s.messages, messageID)
	delete(s.seq, messageID)
	kept := s.media[:0]
	for _, row := range s.media {
		if row.MessageID != messageID {
			kept = append(kept, row)
		}
	}
	s.media = kept
	for key := range s.status {
		if strings.HasPrefix(key, messageID+":") {
			delete(s.status, key)
		}
	}
	return true, nil
}

func (s *MemStore) ClearChat(_ context.Context, chatID, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return errs.ErrRecordNotFound.Wrap()
	}
	now := time.Now()
	for _, m := range s.messages {
		if m.ChatID != chatID {
			continue
		}
		if m.SenderID == callerID {
			m.DeletedForSender = true
			m.UpdateTime = now
		}
		if m.ReceiverID == callerID {
			m.DeletedForReceiver = true
			m.UpdateTime = now
		}
	}
	chat.LastMessage = ""
	chat.LastMessageType = ""
	chat.LastMessageSender = ""
	chat.LastMessageTime = time.Time{}
	chat.UnreadUser1 = 0
	chat.UnreadUser2 = 0
	chat.UpdateTime = now
	return nil
}

// ---- inspection hooks for tests ----

func (s *MemStore) MediaCount(messageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.media {
		if row.MessageID == messageID {
			n++
		}
	}
	return n
}

func (s *MemStore) StatusOf(messageID, userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.status[statusKey(messageID, userID)]
	if !ok {
		return "", false
	}
	return row.Status, true
}

func pageOf[T any](all []*T, page, limit int64) []*T {
	start := (page - 1) * limit
	if start >= int64(len(all)) {
		return nil
	}
	end := start + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end]
}
