package service

import (
	"context"
	"errors"
	"testing"

	"EduTalk/tools/errs"
)

func TestAddContactResolvesByIDOrPhone(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, contact, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "bob"})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" || contact.ContactUserID != "bob" {
		t.Fatalf("id=%q contact=%+v", id, contact)
	}
	if contact.ContactName != "Bob Baker" || contact.ContactPhone != "+200" {
		t.Fatal("directory snapshot not taken")
	}

	if _, c, err := svc.AddContact(ctx, "alice", AddContactInput{Phone: "+300"}); err != nil {
		t.Fatal(err)
	} else if c.ContactUserID != "carol" {
		t.Fatalf("phone lookup resolved %s", c.ContactUserID)
	}
}

func TestAddContactRejectsSelf(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.AddContact(context.Background(), "alice", AddContactInput{ContactUserID: "alice"})
	if !errors.Is(err, errs.ErrArgs) {
		t.Fatalf("want args error, got %v", err)
	}
}

func TestAddContactDuplicateConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "bob"}); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "bob"})
	if !errors.Is(err, errs.ErrDuplicateKey) {
		t.Fatalf("want duplicate, got %v", err)
	}
}

func TestAddContactUnknownOrInactive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "ghost"}); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("unknown: want not-found, got %v", err)
	}
	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "dora"}); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("inactive: want not-found, got %v", err)
	}
	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{}); !errors.Is(err, errs.ErrArgs) {
		t.Fatalf("empty input: want args error, got %v", err)
	}
}

func TestListContactsFavoritesFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "bob"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "carol"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ToggleFavorite(ctx, "alice", "carol"); err != nil {
		t.Fatal(err)
	}

	out, err := svc.ListContacts(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].ContactUserID != "carol" || !out[0].IsFavorite {
		t.Fatal("favorite must sort first")
	}
	if out[0].User == nil || out[0].User.UserID != "carol" {
		t.Fatal("contact must be decorated with the directory record")
	}
}

func TestToggleFavoriteFlips(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "bob"}); err != nil {
		t.Fatal(err)
	}
	fav, err := svc.ToggleFavorite(ctx, "alice", "bob")
	if err != nil || !fav {
		t.Fatalf("first toggle: fav=%v err=%v", fav, err)
	}
	fav, err = svc.ToggleFavorite(ctx, "alice", "bob")
	if err != nil || fav {
		t.Fatalf("second toggle: fav=%v err=%v", fav, err)
	}
	if _, err := svc.ToggleFavorite(ctx, "alice", "ghost"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("want not-found, got %v", err)
	}
}

func TestRemoveContactRepeatMisses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "bob"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveContact(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveContact(ctx, "alice", "bob"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("repeat delete: want not-found, got %v", err)
	}
}

func TestSearchUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SearchUsers(ctx, "alice", " c "); !errors.Is(err, errs.ErrArgs) {
		t.Fatalf("short query: want args error, got %v", err)
	}

	if _, _, err := svc.AddContact(ctx, "alice", AddContactInput{ContactUserID: "bob"}); err != nil {
		t.Fatal(err)
	}
	out, err := svc.SearchUsers(ctx, "alice", "ba")
	if err != nil {
		t.Fatal(err)
	}
	// "ba" hits Bob Baker only; dora is inactive, alice is excluded.
	if len(out) != 1 || out[0].UserID != "bob" {
		t.Fatalf("hits = %+v", out)
	}
	if !out[0].IsContact {
		t.Fatal("existing contact must be flagged")
	}

	out, err = svc.SearchUsers(ctx, "alice", "+3")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].UserID != "carol" || out[0].IsContact {
		t.Fatalf("phone search hits = %+v", out)
	}
}
