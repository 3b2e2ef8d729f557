package store

import (
	"context"
	"regexp"
	"time"

	"EduTalk/data/database/utils/tx"
	"EduTalk/module/chat/model"
	"EduTalk/tools/errs"
	"EduTalk/tools/ids"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the production Store. Multi-row writes run through
// tx.Tx; single-document updates rely on Mongo's document-level
// atomicity.
type MongoStore struct {
	db *mongo.Database
	tx tx.Tx
}

func NewMongoStore(db *mongo.Database, t tx.Tx) *MongoStore {
	return &MongoStore{db: db, tx: t}
}

func (s *MongoStore) users() *mongo.Collection    { return s.db.Collection("users") }
func (s *MongoStore) contacts() *mongo.Collection { return s.db.Collection("contacts") }
func (s *MongoStore) chats() *mongo.Collection    { return s.db.Collection("chats") }
func (s *MongoStore) messages() *mongo.Collection { return s.db.Collection("messages") }
func (s *MongoStore) media() *mongo.Collection    { return s.db.Collection("chat_media") }
func (s *MongoStore) status() *mongo.Collection   { return s.db.Collection("message_status") }

// EnsureIndexes creates the indexes the invariants depend on; call at
// boot.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users(), mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique}},
		{s.contacts(), mongo.IndexModel{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "contact_user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		// The normalized unordered pair: one chat per pair, whichever
		// side creates it first.
		{s.chats(), mongo.IndexModel{Keys: bson.D{{Key: "pair_key", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.messages(), mongo.IndexModel{Keys: bson.D{{Key: "message_id", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.messages(), mongo.IndexModel{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "create_time", Value: -1}}}},
		{s.messages(), mongo.IndexModel{
			Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "sender_id", Value: 1}, {Key: "client_msg_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"client_msg_id": bson.M{"$exists": true}}),
		}},
		{s.status(), mongo.IndexModel{
			Keys:    bson.D{{Key: "message_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.media(), mongo.IndexModel{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "create_time", Value: -1}}}},
	}
	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateOne(ctx, spec.model); err != nil {
			return errs.WrapMsg(err, "create index", "collection", spec.coll.Name())
		}
	}
	return nil
}

// ---- directory ----

func (s *MongoStore) FindUserByIDOrPhone(ctx context.Context, userID, phone string) (*model.User, error) {
	var u model.User
	err := s.users().FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"user_id": userID},
		bson.M{"phone": phone},
	}}).Decode(&u)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &u, nil
}

func (s *MongoStore) FindActiveUser(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := s.users().FindOne(ctx, bson.M{"user_id": userID, "is_active": true}).Decode(&u)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &u, nil
}

func (s *MongoStore) GetUsers(ctx context.Context, userIDs []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	cur, err := s.users().Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u model.User
		if err := cur.Decode(&u); err != nil {
			return nil, errs.Wrap(err)
		}
		cp := u
		out[u.UserID] = &cp
	}
	return out, errs.Wrap(cur.Err())
}

func (s *MongoStore) SearchActiveUsers(ctx context.Context, excludeUserID, query string, limit int64) ([]*model.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"is_active": true,
		"user_id":   bson.M{"$ne": excludeUserID},
		"$or": bson.A{
			bson.M{"user_id": pattern},
			bson.M{"full_name": pattern},
			bson.M{"phone": pattern},
		},
	}
	cur, err := s.users().Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer cur.Close(ctx)
	var out []*model.User
	for cur.Next(ctx) {
		var u model.User
		if err := cur.Decode(&u); err != nil {
			return nil, errs.Wrap(err)
		}
		cp := u
		out = append(out, &cp)
	}
	return out, errs.Wrap(cur.Err())
}

// ---- contacts ----

func (s *MongoStore) InsertContact(ctx context.Context, c *model.Contact) (string, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreateTime.IsZero() {
		c.CreateTime = time.Now()
	}
	if _, err := s.contacts().InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", errs.ErrDuplicateKey.WrapMsg("contact exists", "owner", c.OwnerID, "contact", c.ContactUserID)
		}
		return "", errs.Wrap(err)
	}
	return c.ID.Hex(), nil
}

func (s *MongoStore) HasContact(ctx context.Context, ownerID, contactUserID string) (bool, error) {
	n, err := s.contacts().CountDocuments(ctx,
		bson.M{"owner_id": ownerID, "contact_user_id": contactUserID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, errs.Wrap(err)
	}
	return n > 0, nil
}

func (s *MongoStore) ListContacts(ctx context.Context, ownerID string) ([]*model.Contact, error) {
	cur, err := s.contacts().Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "is_favorite", Value: -1}, {Key: "contact_name", Value: 1}}))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer cur.Close(ctx)
	var out []*model.Contact
	for cur.Next(ctx) {
		var c model.Contact
		if err := cur.Decode(&c); err != nil {
			return nil, errs.Wrap(err)
		}
		cp := c
		out = append(out, &cp)
	}
	return out, errs.Wrap(cur.Err())
}

func (s *MongoStore) ToggleContactFavorite(ctx context.Context, ownerID, contactUserID string) (bool, error) {
	after := options.After
	res := s.contacts().FindOneAndUpdate(ctx,
		bson.M{"owner_id": ownerID, "contact_user_id": contactUserID},
		bson.A{bson.M{"$set": bson.M{"is_favorite": bson.M{"$not": "$is_favorite"}}}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	var c model.Contact
	if err := res.Decode(&c); err != nil {
		return false, mapFindErr(err)
	}
	return c.IsFavorite, nil
}

func (s *MongoStore) DeleteContact(ctx context.Context, ownerID, contactUserID string) error {
	res, err := s.contacts().DeleteOne(ctx, bson.M{"owner_id": ownerID, "contact_user_id": contactUserID})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrRecordNotFound.WrapMsg("contact", "owner", ownerID, "contact", contactUserID)
	}
	return nil
}

// ---- chats ----

func (s *MongoStore) GetOrCreateChat(ctx context.Context, callerID, otherID string) (*model.Chat, bool, error) {
	pairKey := model.PairKeyOf(callerID, otherID)

	var existing model.Chat
	err := s.chats().FindOne(ctx, bson.M{"pair_key": pairKey}).Decode(&existing)
	if err == nil {
		return &existing, false, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, errs.Wrap(err)
	}

	// Absent: upsert on the unique pair_key. If the other participant
	// creates the chat between our read and this write, $setOnInsert
	// is a no-op and both callers see the same row.
	now := time.Now()
	doc := model.Chat{
		ChatID:     ids.NewChatID(),
		User1ID:    callerID,
		User2ID:    otherID,
		PairKey:    pairKey,
		IsActive:   true,
		CreateTime: now,
		UpdateTime: now,
	}
	after := options.After
	upsert := true
	res := s.chats().FindOneAndUpdate(ctx,
		bson.M{"pair_key": pairKey},
		bson.M{"$setOnInsert": doc},
		&options.FindOneAndUpdateOptions{Upsert: &upsert, ReturnDocument: &after},
	)
	var chat model.Chat
	if err := res.Decode(&chat); err != nil {
		return nil, false, errs.Wrap(err)
	}
	return &chat, chat.ChatID == doc.ChatID, nil
}

func (s *MongoStore) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	var chat model.Chat
	if err := s.chats().FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&chat); err != nil {
		return nil, mapFindErr(err)
	}
	return &chat, nil
}

func participantFilter(userID string) bson.M {
	return bson.M{
		"$or":       bson.A{bson.M{"user1_id": userID}, bson.M{"user2_id": userID}},
		"is_active": true,
	}
}

func (s *MongoStore) ListChats(ctx context.Context, userID string, page, limit int64) ([]*model.Chat, int64, error) {
	filter := participantFilter(userID)
	total, err := s.chats().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errs.Wrap(err)
	}
	cur, err := s.chats().Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "update_time", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		return nil, 0, errs.Wrap(err)
	}
	defer cur.Close(ctx)
	var out []*model.Chat
	for cur.Next(ctx) {
		var c model.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, 0, errs.Wrap(err)
		}
		cp := c
		out = append(out, &cp)
	}
	return out, total, errs.Wrap(cur.Err())
}

func (s *MongoStore) SumUnread(ctx context.Context, userID string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: participantFilter(userID)}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$user1_id", userID}},
				"$unread_user1",
				"$unread_user2",
			}}},
		}}},
	}
	cur, err := s.chats().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, errs.Wrap(err)
	}
	defer cur.Close(ctx)
	if cur.Next(ctx) {
		var row struct {
			Total int64 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, errs.Wrap(err)
		}
		return row.Total, nil
	}
	return 0, errs.Wrap(cur.Err())
}

// ---- messages ----

func (s *MongoStore) InsertMessage(ctx context.Context, msg *model.Message) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		var chat model.Chat
		if err := s.chats().FindOne(ctx, bson.M{"chat_id": msg.ChatID}).Decode(&chat); err != nil {
			return mapFindErr(err)
		}

		if _, err := s.messages().InsertOne(ctx, msg); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return errs.ErrDuplicateKey.WrapMsg("message", "client_msg_id", msg.ClientMsgID)
			}
			return errs.Wrap(err)
		}

		summary := msg.Content
		if msg.MessageType != model.TypeText {
			summary = model.PlaceholderFor(msg.MessageType)
		}
		_, err := s.chats().UpdateOne(ctx, bson.M{"chat_id": msg.ChatID}, bson.M{
			"$set": bson.M{
				"last_message":        summary,
				"last_message_type":   msg.MessageType,
				"last_message_sender": msg.SenderID,
				"last_message_time":   msg.CreateTime,
				"update_time":         msg.CreateTime,
			},
			"$inc": bson.M{chat.UnreadFieldFor(msg.ReceiverID): 1},
		})
		if err != nil {
			return errs.Wrap(err)
		}

		if model.IsMedia(msg.MessageType) {
			media := model.ChatMedia{
				ChatID:     msg.ChatID,
				MessageID:  msg.MessageID,
				MediaType:  msg.MessageType,
				MediaURL:   msg.FileURL,
				FileSize:   msg.FileSize,
				CreateTime: msg.CreateTime,
			}
			if _, err := s.media().InsertOne(ctx, media); err != nil {
				return errs.Wrap(err)
			}
		}

		_, err = s.status().InsertOne(ctx, model.MessageStatus{
			MessageID:  msg.MessageID,
			UserID:     msg.SenderID,
			Status:     model.StatusSent,
			UpdateTime: msg.CreateTime,
		})
		return errs.Wrap(err)
	})
}

func (s *MongoStore) FindMessageByClientID(ctx context.Context, chatID, senderID, clientMsgID string) (*model.Message, error) {
	var msg model.Message
	err := s.messages().FindOne(ctx, bson.M{
		"chat_id": chatID, "sender_id": senderID, "client_msg_id": clientMsgID,
	}).Decode(&msg)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &msg, nil
}

func (s *MongoStore) GetMessage(ctx context.Context, messageID string) (*model.Message, error) {
	var msg model.Message
	if err := s.messages().FindOne(ctx, bson.M{"message_id": messageID}).Decode(&msg); err != nil {
		return nil, mapFindErr(err)
	}
	return &msg, nil
}

func visibleFilter(chatID, viewerID string) bson.M {
	// Hidden for the viewer only when the flag of their own side is
	// set: sender flag for their sent rows, receiver flag for the
	// rest.
	return bson.M{
		"chat_id": chatID,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"deleted_for_sender": false},
				bson.M{"sender_id": bson.M{"$ne": viewerID}},
			}},
			bson.M{"$or": bson.A{
				bson.M{"deleted_for_receiver": false},
				bson.M{"receiver_id": bson.M{"$ne": viewerID}},
			}},
		},
	}
}

func (s *MongoStore) ListMessages(ctx context.Context, chatID, viewerID string, page, limit int64, before *time.Time) ([]*model.Message, int64, error) {
	filter := visibleFilter(chatID, viewerID)
	total, err := s.messages().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errs.Wrap(err)
	}
	if before != nil {
		filter["create_time"] = bson.M{"$lt": *before}
	}
	cur, err := s.messages().Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "create_time", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		return nil, 0, errs.Wrap(err)
	}
	defer cur.Close(ctx)
	var out []*model.Message
	for cur.Next(ctx) {
		var m model.Message
		if err := cur.Decode(&m); err != nil {
			return nil, 0, errs.Wrap(err)
		}
		cp := m
		out = append(out, &cp)
	}
	return out, total, errs.Wrap(cur.Err())
}

func (s *MongoStore) MarkRead(ctx context.Context, chatID, viewerID string, baseline int64, messageIDs []string) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		now := time.Now()

		if baseline > 0 {
			var chat model.Chat
			if err := s.chats().FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&chat); err != nil {
				return mapFindErr(err)
			}
			field := chat.UnreadFieldFor(viewerID)
			// Guarded decrement: only subtract what existed at
			// fetch-start, so a send landing mid-fetch keeps its
			// unread credit and the counter can never go negative.
			_, err := s.chats().UpdateOne(ctx,
				bson.M{"chat_id": chatID, field: bson.M{"$gte": baseline}},
				bson.M{"$inc": bson.M{field: -baseline}})
			if err != nil {
				return errs.Wrap(err)
			}
		}

		if len(messageIDs) == 0 {
			return nil
		}
		_, err := s.messages().UpdateMany(ctx,
			bson.M{"message_id": bson.M{"$in": messageIDs}, "receiver_id": viewerID, "is_read": false},
			bson.M{"$set": bson.M{"is_read": true, "read_at": now, "update_time": now}})
		if err != nil {
			return errs.Wrap(err)
		}

		upsert := true
		for _, id := range messageIDs {
			_, err := s.status().UpdateOne(ctx,
				bson.M{"message_id": id, "user_id": viewerID},
				bson.M{"$set": bson.M{"status": model.StatusRead, "update_time": now}},
				&options.UpdateOptions{Upsert: &upsert})
			if err != nil {
				return errs.Wrap(err)
			}
		}
		return nil
	})
}

func (s *MongoStore) UpdateMessageText(ctx context.Context, messageID, content string) error {
	res, err := s.messages().UpdateOne(ctx, bson.M{"message_id": messageID}, bson.M{
		"$set": bson.M{"content": content, "is_edited": true, "update_time": time.Now()},
	})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WrapMsg("message", "message_id", messageID)
	}
	return nil
}

func (s *MongoStore) HideOrPurgeMessage(ctx context.Context, messageID string) (bool, error) {
	after := options.After
	res := s.messages().FindOneAndUpdate(ctx,
		bson.M{"message_id": messageID},
		bson.M{"$set": bson.M{"deleted_for_sender": true, "update_time": time.Now()}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	var msg model.Message
	if err := res.Decode(&msg); err != nil {
		return false, mapFindErr(err)
	}
	if !msg.DeletedForReceiver {
		return false, nil
	}
	// Both sides hidden: remove the row and its satellites.
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.messages().DeleteOne(ctx, bson.M{"message_id": messageID}); err != nil {
			return errs.Wrap(err)
		}
		if _, err := s.media().DeleteMany(ctx, bson.M{"message_id": messageID}); err != nil {
			return errs.Wrap(err)
		}
		_, err := s.status().DeleteMany(ctx, bson.M{"message_id": messageID})
		return errs.Wrap(err)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MongoStore) ClearChat(ctx context.Context, chatID, callerID string) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		now := time.Now()
		_, err := s.messages().UpdateMany(ctx,
			bson.M{"chat_id": chatID, "sender_id": callerID},
			bson.M{"$set": bson.M{"deleted_for_sender": true, "update_time": now}})
		if err != nil {
			return errs.Wrap(err)
		}
		_, err = s.messages().UpdateMany(ctx,
			bson.M{"chat_id": chatID, "receiver_id": callerID},
			bson.M{"$set": bson.M{"deleted_for_receiver": true, "update_time": now}})
		if err != nil {
			return errs.Wrap(err)
		}
		_, err = s.chats().UpdateOne(ctx, bson.M{"chat_id": chatID}, bson.M{
			"$set": bson.M{
				"last_message":        "",
				"last_message_type":   "",
				"last_message_sender": "",
				"last_message_time":   time.Time{},
				"unread_user1":        int64(0),
				"unread_user2":        int64(0),
				"update_time":         now,
			},
		})
		return errs.Wrap(err)
	})
}

func mapFindErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return errs.ErrRecordNotFound.Wrap()
	}
	return errs.Wrap(err)
}
