package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"EduTalk/module/chat/model"
	"EduTalk/tools/errs"
	"EduTalk/tools/ids"
)

func seedChat(t *testing.T, st *MemStore) *model.Chat {
	t.Helper()
	chat, _, err := st.GetOrCreateChat(context.Background(), "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	return chat
}

func insertText(t *testing.T, st *MemStore, chatID, sender, receiver, content string, at time.Time) *model.Message {
	t.Helper()
	msg := &model.Message{
		MessageID:   ids.NewMessageID(),
		ChatID:      chatID,
		SenderID:    sender,
		ReceiverID:  receiver,
		MessageType: model.TypeText,
		Content:     content,
		CreateTime:  at,
		UpdateTime:  at,
	}
	if err := st.InsertMessage(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestListMessagesBeforeBoundAndPaging(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	chat := seedChat(t, st)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		insertText(t, st, chat.ChatID, "a", "b", string(rune('0'+i)), base.Add(time.Duration(i)*time.Minute))
	}

	// Page 1 of 2, newest first.
	msgs, total, err := st.ListMessages(ctx, chat.ChatID, "b", 1, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(msgs) != 2 {
		t.Fatalf("total=%d len=%d", total, len(msgs))
	}
	if msgs[0].Content != "4" || msgs[1].Content != "3" {
		t.Fatalf("page = %s, %s", msgs[0].Content, msgs[1].Content)
	}

	// Strictly older than the third message.
	cut := base.Add(2 * time.Minute)
	msgs, _, err = st.ListMessages(ctx, chat.ChatID, "b", 1, 10, &cut)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Content != "1" || msgs[1].Content != "0" {
		t.Fatalf("before-bound page wrong: %d rows", len(msgs))
	}
}

func TestInsertMessageDuplicateClientID(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	chat := seedChat(t, st)

	now := time.Now()
	first := &model.Message{
		MessageID: ids.NewMessageID(), ChatID: chat.ChatID,
		SenderID: "a", ReceiverID: "b", MessageType: model.TypeText,
		Content: "x", ClientMsgID: "tok", CreateTime: now, UpdateTime: now,
	}
	if err := st.InsertMessage(ctx, first); err != nil {
		t.Fatal(err)
	}
	dup := &model.Message{
		MessageID: ids.NewMessageID(), ChatID: chat.ChatID,
		SenderID: "a", ReceiverID: "b", MessageType: model.TypeText,
		Content: "x", ClientMsgID: "tok", CreateTime: now, UpdateTime: now,
	}
	if err := st.InsertMessage(ctx, dup); !errors.Is(err, errs.ErrDuplicateKey) {
		t.Fatalf("want duplicate, got %v", err)
	}

	got, err := st.FindMessageByClientID(ctx, chat.ChatID, "a", "tok")
	if err != nil {
		t.Fatal(err)
	}
	if got.MessageID != first.MessageID {
		t.Fatal("lookup must resolve the first insert")
	}
}

func TestInsertMessageWritesSatellites(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	chat := seedChat(t, st)

	now := time.Now()
	media := &model.Message{
		MessageID: ids.NewMessageID(), ChatID: chat.ChatID,
		SenderID: "a", ReceiverID: "b", MessageType: model.TypeImage,
		FileURL: "/uploads/chat/images/x.png", FileSize: 9,
		CreateTime: now, UpdateTime: now,
	}
	if err := st.InsertMessage(ctx, media); err != nil {
		t.Fatal(err)
	}
	if st.MediaCount(media.MessageID) != 1 {
		t.Fatal("media row missing")
	}
	if status, ok := st.StatusOf(media.MessageID, "a"); !ok || status != model.StatusSent {
		t.Fatalf("sender status = %q ok=%v", status, ok)
	}

	got, err := st.GetChat(ctx, chat.ChatID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UnreadFor("b") != 1 || got.LastMessage != "Image" {
		t.Fatalf("chat summary = %+v", got)
	}
}
