package service

import (
	"context"

	"EduTalk/logger"
	"EduTalk/service/storage"

	"go.uber.org/zap"
)

// SetPresence overwrites the caller's self-reported state and stamps
// last_seen. Idempotent: repeating the same flag just refreshes the
// stamp.
func (s *Service) SetPresence(ctx context.Context, userID string, online bool) (storage.Presence, error) {
	p, err := s.presence.Set(ctx, userID, online)
	if err != nil {
		return storage.Presence{}, err
	}
	s.notifier.NotifyPresence(userID, online)
	return p, nil
}

// GetPresence never fails on unknown users: they read as offline with
// no last-seen.
func (s *Service) GetPresence(ctx context.Context, userID string) (storage.Presence, error) {
	return s.presence.Get(ctx, userID)
}

// presenceOf is the decoration lookup: errors degrade to offline
// defaults so a Redis hiccup cannot fail a contact or chat listing.
func (s *Service) presenceOf(ctx context.Context, userID string) storage.Presence {
	p, err := s.presence.Get(ctx, userID)
	if err != nil {
		logger.Warn("presence lookup failed", zap.String("user_id", userID), zap.Error(err))
		return storage.Presence{}
	}
	return p
}
