package service

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"EduTalk/module/chat/model"
	"EduTalk/tools/errs"
	"EduTalk/tools/ids"
)

// chatForParticipant loads an active chat and checks membership.
func (s *Service) chatForParticipant(ctx context.Context, chatID, userID string) (*model.Chat, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsActive {
		return nil, errs.ErrRecordNotFound.WrapMsg("chat inactive", "chat_id", chatID)
	}
	if !chat.HasParticipant(userID) {
		return nil, errs.ErrNoPermission.WrapMsg("not a chat participant", "chat_id", chatID)
	}
	return chat, nil
}

// SendText posts a text message. With a client_msg_id a retry of the
// same send returns the original message and writes nothing.
func (s *Service) SendText(ctx context.Context, chatID, senderID, content, clientMsgID string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.ErrArgs.WrapMsg("message content is empty")
	}
	chat, err := s.chatForParticipant(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}
	if msg, ok, err := s.findResend(ctx, chatID, senderID, clientMsgID); err != nil {
		return nil, err
	} else if ok {
		return msg, nil
	}

	now := time.Now()
	msg := &model.Message{
		MessageID:   ids.NewMessageID(),
		ChatID:      chatID,
		SenderID:    senderID,
		ReceiverID:  chat.OtherOf(senderID),
		MessageType: model.TypeText,
		Content:     content,
		ClientMsgID: clientMsgID,
		CreateTime:  now,
		UpdateTime:  now,
	}
	if err := s.insertAndNotify(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendAttachment stores the upload first, so a rejected file (size
// ceiling) writes no rows. The caption rides along as content.
func (s *Service) SendAttachment(ctx context.Context, chatID, senderID string, fh *multipart.FileHeader, caption, clientMsgID string) (*model.Message, error) {
	chat, err := s.chatForParticipant(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}
	if msg, ok, err := s.findResend(ctx, chatID, senderID, clientMsgID); err != nil {
		return nil, err
	} else if ok {
		return msg, nil
	}

	stored, err := s.saver.Save(fh)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg := &model.Message{
		MessageID:   ids.NewMessageID(),
		ChatID:      chatID,
		SenderID:    senderID,
		ReceiverID:  chat.OtherOf(senderID),
		MessageType: stored.MessageType,
		Content:     strings.TrimSpace(caption),
		FileURL:     stored.URL,
		FileName:    stored.FileName,
		FileSize:    stored.FileSize,
		ClientMsgID: clientMsgID,
		CreateTime:  now,
		UpdateTime:  now,
	}
	if err := s.insertAndNotify(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) findResend(ctx context.Context, chatID, senderID, clientMsgID string) (*model.Message, bool, error) {
	if clientMsgID == "" {
		return nil, false, nil
	}
	msg, err := s.store.FindMessageByClientID(ctx, chatID, senderID, clientMsgID)
	if err == nil {
		return msg, true, nil
	}
	if errs.ErrRecordNotFound.Is(err) {
		return nil, false, nil
	}
	return nil, false, err
}

func (s *Service) insertAndNotify(ctx context.Context, msg *model.Message) error {
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		// Two retries racing past findResend: the unique index catches
		// the loser, which then returns the winner's row.
		if errs.ErrDuplicateKey.Is(err) && msg.ClientMsgID != "" {
			existing, ferr := s.store.FindMessageByClientID(ctx, msg.ChatID, msg.SenderID, msg.ClientMsgID)
			if ferr == nil {
				*msg = *existing
				return nil
			}
		}
		return err
	}
	s.notifier.NotifyMessage(msg.ReceiverID, msg.ChatID, msg.MessageID)
	return nil
}

// FetchMessages pages the caller-visible history oldest-first and
// settles read state: the caller's unread counter drops by the value
// read at fetch-start, and fetched messages addressed to the caller
// are stamped read.
func (s *Service) FetchMessages(ctx context.Context, chatID, callerID string, page, limit int64, before *time.Time) ([]*model.Message, int64, error) {
	chat, err := s.chatForParticipant(ctx, chatID, callerID)
	if err != nil {
		return nil, 0, err
	}
	baseline := chat.UnreadFor(callerID)

	page, limit = normalizePage(page, limit)
	msgs, total, err := s.store.ListMessages(ctx, chatID, callerID, page, limit, before)
	if err != nil {
		return nil, 0, err
	}

	var toMark []string
	for _, m := range msgs {
		if m.ReceiverID == callerID && !m.IsRead {
			toMark = append(toMark, m.MessageID)
		}
	}
	if baseline > 0 || len(toMark) > 0 {
		if err := s.store.MarkRead(ctx, chatID, callerID, baseline, toMark); err != nil {
			return nil, 0, err
		}
		now := time.Now()
		for _, m := range msgs {
			if m.ReceiverID == callerID && !m.IsRead {
				m.IsRead = true
				at := now
				m.ReadAt = &at
			}
		}
	}

	// Stored newest-first for paging; clients render oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, total, nil
}

// EditMessage rewrites a text message's content. Sender-only, and a
// message already hidden from the sender reads as gone.
func (s *Service) EditMessage(ctx context.Context, messageID, callerID, content string) (*model.Message, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == callerID && msg.DeletedForSender {
		return nil, errs.ErrRecordNotFound.WrapMsg("message", "message_id", messageID)
	}
	if msg.SenderID != callerID {
		return nil, errs.ErrNoPermission.WrapMsg("only the sender can edit")
	}
	if msg.MessageType != model.TypeText {
		return nil, errs.ErrArgs.WrapMsg("only text messages can be edited")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.ErrArgs.WrapMsg("message content is empty")
	}
	if err := s.store.UpdateMessageText(ctx, messageID, content); err != nil {
		return nil, err
	}
	msg.Content = content
	msg.IsEdited = true
	msg.UpdateTime = time.Now()
	return msg, nil
}

// DeleteMessage hides the message from the sender's side; once both
// sides have hidden it the row is purged. Reports whether a purge
// happened.
func (s *Service) DeleteMessage(ctx context.Context, messageID, callerID string) (bool, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return false, err
	}
	if msg.SenderID == callerID && msg.DeletedForSender {
		return false, errs.ErrRecordNotFound.WrapMsg("message", "message_id", messageID)
	}
	if msg.SenderID != callerID {
		return false, errs.ErrNoPermission.WrapMsg("only the sender can delete")
	}
	return s.store.HideOrPurgeMessage(ctx, messageID)
}

// ClearChat hides the whole history from the caller's side and resets
// the summary and both unread counters.
func (s *Service) ClearChat(ctx context.Context, chatID, callerID string) error {
	if _, err := s.chatForParticipant(ctx, chatID, callerID); err != nil {
		return err
	}
	return s.store.ClearChat(ctx, chatID, callerID)
}
