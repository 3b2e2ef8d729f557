package service

import (
	"context"
	"testing"
)

func TestPresenceRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.SetPresence(ctx, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsOnline || p.LastSeen == nil {
		t.Fatalf("set returned %+v", p)
	}

	got, err := svc.GetPresence(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsOnline || got.LastSeen == nil {
		t.Fatalf("get returned %+v", got)
	}

	if p, err = svc.SetPresence(ctx, "alice", false); err != nil || p.IsOnline {
		t.Fatalf("going offline: p=%+v err=%v", p, err)
	}
	got, _ = svc.GetPresence(ctx, "alice")
	if got.IsOnline || got.LastSeen == nil {
		t.Fatal("offline flip must keep the last-seen stamp")
	}
}

func TestPresenceUnknownUserReadsOffline(t *testing.T) {
	svc, _ := newTestService(t)
	p, err := svc.GetPresence(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if p.IsOnline || p.LastSeen != nil {
		t.Fatalf("unknown user must read as offline defaults, got %+v", p)
	}
}
