package service

import (
	"context"
	"testing"

	"EduTalk/module/chat/model"
	"EduTalk/module/chat/store"
	"EduTalk/module/chat/upload"
	"EduTalk/service/storage"
)

func newTestService(t *testing.T) (*Service, *store.MemStore) {
	t.Helper()
	st := store.NewMemStore()
	for _, u := range []*model.User{
		{UserID: "alice", FullName: "Alice Ahmed", Phone: "+100", IsActive: true},
		{UserID: "bob", FullName: "Bob Baker", Phone: "+200", IsActive: true},
		{UserID: "carol", FullName: "Carol Cruz", Phone: "+300", IsActive: true},
		{UserID: "dora", FullName: "Dora Dean", Phone: "+400", IsActive: false},
	} {
		st.PutUser(u)
	}
	saver := &upload.Saver{
		BaseDir:  t.TempDir(),
		MaxImage: 1 << 20,
		MaxVideo: 4 << 20,
		MaxFile:  4 << 20,
	}
	return New(st, storage.NewMemPresence(), nil, saver), st
}

func mustChat(t *testing.T, svc *Service, caller, other string) string {
	t.Helper()
	view, _, err := svc.GetOrCreateChat(context.Background(), caller, other)
	if err != nil {
		t.Fatal(err)
	}
	return view.ChatID
}

func mustSend(t *testing.T, svc *Service, chatID, sender, content string) *model.Message {
	t.Helper()
	msg, err := svc.SendText(context.Background(), chatID, sender, content, "")
	if err != nil {
		t.Fatal(err)
	}
	return msg
}
