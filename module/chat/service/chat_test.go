package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"EduTalk/tools/errs"
)

func TestGetOrCreateChatSingleRowUnderConcurrency(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const attempts = 16
	ids := make([]string, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller, other := "alice", "bob"
			if i%2 == 1 {
				caller, other = "bob", "alice"
			}
			view, _, err := svc.GetOrCreateChat(ctx, caller, other)
			if err != nil {
				t.Error(err)
				return
			}
			ids[i] = view.ChatID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("got two chats for one pair: %s vs %s", ids[0], id)
		}
	}
}

func TestGetOrCreateChatRejectsSelf(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.GetOrCreateChat(context.Background(), "alice", "alice")
	if !errors.Is(err, errs.ErrArgs) {
		t.Fatalf("want args error, got %v", err)
	}
}

func TestGetOrCreateChatRequiresActiveUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.GetOrCreateChat(ctx, "alice", "ghost"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("unknown user: want not-found, got %v", err)
	}
	if _, _, err := svc.GetOrCreateChat(ctx, "alice", "dora"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("inactive user: want not-found, got %v", err)
	}
}

func TestListChatsDecoratedPerCaller(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	chatID := mustChat(t, svc, "alice", "bob")
	mustSend(t, svc, chatID, "alice", "hi bob")
	mustSend(t, svc, chatID, "alice", "you there?")

	views, total, err := svc.ListChats(ctx, "bob", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("total=%d len=%d", total, len(views))
	}
	v := views[0]
	if v.Other == nil || v.Other.UserID != "alice" {
		t.Fatal("chat must be decorated with the counterpart")
	}
	if v.Unread != 2 {
		t.Fatalf("bob unread = %d, want 2", v.Unread)
	}
	if v.LastMessage != "you there?" {
		t.Fatalf("summary = %q", v.LastMessage)
	}

	// The sender's own side carries no unread.
	aliceViews, _, err := svc.ListChats(ctx, "alice", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if aliceViews[0].Unread != 0 {
		t.Fatalf("alice unread = %d, want 0", aliceViews[0].Unread)
	}
}

func TestUnreadTotalSumsAcrossChats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ab := mustChat(t, svc, "alice", "bob")
	cb := mustChat(t, svc, "carol", "bob")
	mustSend(t, svc, ab, "alice", "one")
	mustSend(t, svc, ab, "alice", "two")
	mustSend(t, svc, cb, "carol", "three")

	n, err := svc.UnreadTotal(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("unread total = %d, want 3", n)
	}
}
