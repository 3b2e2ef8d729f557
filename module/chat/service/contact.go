package service

import (
	"context"
	"strings"
	"time"

	"EduTalk/module/chat/model"
	"EduTalk/tools/errs"
)

const searchCap = 20

// AddContactInput resolves the target by id or phone; ContactName
// overrides the directory name when set.
type AddContactInput struct {
	ContactUserID string `json:"contact_id"`
	Phone         string `json:"phone"`
	ContactName   string `json:"contact_name"`
}

// AddContact creates an address-book entry pointing at an active user.
// Adding yourself is rejected; adding the same user twice is a
// duplicate.
func (s *Service) AddContact(ctx context.Context, ownerID string, in AddContactInput) (string, *model.Contact, error) {
	if in.ContactUserID == "" && in.Phone == "" {
		return "", nil, errs.ErrArgs.WrapMsg("contact_id or phone required")
	}
	target, err := s.store.FindUserByIDOrPhone(ctx, in.ContactUserID, in.Phone)
	if err != nil {
		return "", nil, err
	}
	if !target.IsActive {
		return "", nil, errs.ErrRecordNotFound.WrapMsg("user inactive", "user_id", target.UserID)
	}
	if target.UserID == ownerID {
		return "", nil, errs.ErrArgs.WrapMsg("cannot add yourself as a contact")
	}

	name := strings.TrimSpace(in.ContactName)
	if name == "" {
		name = target.FullName
	}
	contact := &model.Contact{
		OwnerID:       ownerID,
		ContactUserID: target.UserID,
		ContactName:   name,
		ContactPhone:  target.Phone,
		CreateTime:    time.Now(),
	}
	id, err := s.store.InsertContact(ctx, contact)
	if err != nil {
		return "", nil, err
	}
	return id, contact, nil
}

// ListContacts returns the owner's book, favorites first then name
// ascending, each decorated with the target's record and presence.
func (s *Service) ListContacts(ctx context.Context, ownerID string) ([]*ContactView, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.ContactUserID)
	}
	users, err := s.store.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*ContactView, 0, len(contacts))
	for _, c := range contacts {
		p := s.presenceOf(ctx, c.ContactUserID)
		out = append(out, &ContactView{
			Contact:  *c,
			User:     users[c.ContactUserID],
			IsOnline: p.IsOnline,
			LastSeen: p.LastSeen,
		})
	}
	return out, nil
}

// SearchUsers matches active users by id, name or phone substring,
// excluding the caller. Queries under two characters are rejected.
func (s *Service) SearchUsers(ctx context.Context, ownerID, query string) ([]*UserSearchView, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, errs.ErrArgs.WrapMsg("query must be at least 2 characters")
	}
	users, err := s.store.SearchActiveUsers(ctx, ownerID, query, searchCap)
	if err != nil {
		return nil, err
	}
	out := make([]*UserSearchView, 0, len(users))
	for _, u := range users {
		isContact, err := s.store.HasContact(ctx, ownerID, u.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, &UserSearchView{User: *u, IsContact: isContact})
	}
	return out, nil
}

// ToggleFavorite flips the flag and returns the new value.
func (s *Service) ToggleFavorite(ctx context.Context, ownerID, contactUserID string) (bool, error) {
	return s.store.ToggleContactFavorite(ctx, ownerID, contactUserID)
}

// RemoveContact deletes the owner's entry; repeating the delete is a
// miss.
func (s *Service) RemoveContact(ctx context.Context, ownerID, contactUserID string) error {
	return s.store.DeleteContact(ctx, ownerID, contactUserID)
}
