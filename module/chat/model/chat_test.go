package model

import "testing"

func TestPairKeyOfIsOrderless(t *testing.T) {
	if PairKeyOf("alice", "bob") != PairKeyOf("bob", "alice") {
		t.Fatal("pair key must not depend on argument order")
	}
	if PairKeyOf("alice", "bob") != "alice:bob" {
		t.Fatalf("unexpected key: %s", PairKeyOf("alice", "bob"))
	}
}

func TestChatSideHelpers(t *testing.T) {
	c := &Chat{User1ID: "u1", User2ID: "u2", UnreadUser1: 3, UnreadUser2: 7}

	if !c.HasParticipant("u1") || !c.HasParticipant("u2") || c.HasParticipant("u3") {
		t.Fatal("participant check wrong")
	}
	if c.OtherOf("u1") != "u2" || c.OtherOf("u2") != "u1" || c.OtherOf("u3") != "" {
		t.Fatal("counterpart resolution wrong")
	}
	if c.UnreadFor("u1") != 3 || c.UnreadFor("u2") != 7 {
		t.Fatal("unread counter picked from the wrong side")
	}
	if c.UnreadFieldFor("u1") != "unread_user1" || c.UnreadFieldFor("u2") != "unread_user2" {
		t.Fatal("unread field picked from the wrong side")
	}
}
