package store

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentmart/models"
)

// Messages is the durable message log. Handlers depend on this interface so
// they can be tested against a stub; MongoMessages is the real thing.
type Messages interface {
	Send(ctx context.Context, senderID, recipientID primitive.ObjectID, content string, productRef *primitive.ObjectID) (*models.Message, error)
	Conversation(ctx context.Context, userID, partnerID primitive.ObjectID) ([]models.Message, error)
	Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, messageID, actorID primitive.ObjectID) (*models.Message, error)
	Delete(ctx context.Context, messageID, actorID primitive.ObjectID) error
}

type MongoMessages struct {
	coll     *mongo.Collection
	users    Directory
	products Catalog
	now      func() time.Time
}

func NewMongoMessages(coll *mongo.Collection, users Directory, products Catalog) *MongoMessages {
	return &MongoMessages{
		coll:     coll,
		users:    users,
		products: products,
		now:      time.Now,
	}
}

func (m *MongoMessages) Send(ctx context.Context, senderID, recipientID primitive.ObjectID, content string, productRef *primitive.ObjectID) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ValidationError("message content is required")
	}
	if senderID == recipientID {
		return nil, ValidationError("cannot send a message to yourself")
	}

	exists, err := m.users.Exists(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ValidationError("recipient not found")
	}

	msg := models.Message{
		ID:          primitive.NewObjectID(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		ProductRef:  productRef,
		IsRead:      false,
		CreatedAt:   m.now().UTC(),
	}

	if _, err := m.coll.InsertOne(ctx, msg); err != nil {
		return nil, upstream("insert message", err)
	}

	if err := m.enrich(ctx, []*models.Message{&msg}); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Conversation returns both directions of the message history between userID
// and partnerID, oldest first, then marks every unread message addressed to
// userID as read. The returned slice reflects the state before the mark, so
// a second call observes the read flags flipped.
func (m *MongoMessages) Conversation(ctx context.Context, userID, partnerID primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": userID, "recipient": partnerID},
		bson.M{"sender": partnerID, "recipient": userID},
	}}

	msgs, err := m.find(ctx, filter, 1)
	if err != nil {
		return nil, err
	}

	if err := m.MarkConversationRead(ctx, userID, partnerID); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkConversationRead flips every unread message from partnerID to userID to
// read. Separated from Conversation so the read path stays testable on its own.
func (m *MongoMessages) MarkConversationRead(ctx context.Context, userID, partnerID primitive.ObjectID) error {
	_, err := m.coll.UpdateMany(ctx,
		bson.M{"sender": partnerID, "recipient": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": m.now().UTC()}},
	)
	if err != nil {
		return upstream("mark conversation read", err)
	}
	return nil
}

func (m *MongoMessages) Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": userID},
		bson.M{"recipient": userID},
	}}

	msgs, err := m.find(ctx, filter, -1)
	if err != nil {
		return nil, err
	}
	return Summarize(msgs, userID), nil
}

func (m *MongoMessages) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := m.coll.CountDocuments(ctx, bson.M{"recipient": userID, "isRead": false})
	if err != nil {
		return 0, upstream("count unread", err)
	}
	return count, nil
}

func (m *MongoMessages) MarkRead(ctx context.Context, messageID, actorID primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := m.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, upstream("find message", err)
	}

	if msg.RecipientID != actorID {
		return nil, ErrNotAuthorized
	}

	if !msg.IsRead {
		readAt := m.now().UTC()
		_, err = m.coll.UpdateOne(ctx,
			bson.M{"_id": messageID},
			bson.M{"$set": bson.M{"isRead": true, "readAt": readAt}},
		)
		if err != nil {
			return nil, upstream("mark message read", err)
		}
		msg.IsRead = true
		msg.ReadAt = &readAt
	}

	if err := m.enrich(ctx, []*models.Message{&msg}); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *MongoMessages) Delete(ctx context.Context, messageID, actorID primitive.ObjectID) error {
	var msg models.Message
	err := m.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return upstream("find message", err)
	}

	if msg.SenderID != actorID {
		return ErrNotAuthorized
	}

	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": messageID}); err != nil {
		return upstream("delete message", err)
	}
	return nil
}

func (m *MongoMessages) find(ctx context.Context, filter bson.M, order int) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: order}})
	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, upstream("find messages", err)
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, upstream("decode messages", err)
	}

	refs := make([]*models.Message, len(msgs))
	for i := range msgs {
		refs[i] = &msgs[i]
	}
	if err := m.enrich(ctx, refs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// enrich attaches sender/recipient/product display snapshots. Lookups go
// through the Directory and Catalog interfaces; a reference that no longer
// resolves simply stays nil.
func (m *MongoMessages) enrich(ctx context.Context, msgs []*models.Message) error {
	users := make(map[primitive.ObjectID]*models.UserSnapshot)
	products := make(map[primitive.ObjectID]*models.ProductSnapshot)

	userSnapshot := func(id primitive.ObjectID) (*models.UserSnapshot, error) {
		if snap, ok := users[id]; ok {
			return snap, nil
		}
		user, err := m.users.FindByID(ctx, id)
		if err == ErrNotFound {
			users[id] = nil
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		snap := user.Snapshot()
		users[id] = &snap
		return &snap, nil
	}

	for _, msg := range msgs {
		var err error
		if msg.Sender, err = userSnapshot(msg.SenderID); err != nil {
			return err
		}
		if msg.Recipient, err = userSnapshot(msg.RecipientID); err != nil {
			return err
		}

		if msg.ProductRef == nil {
			continue
		}
		if snap, ok := products[*msg.ProductRef]; ok {
			msg.Product = snap
			continue
		}
		product, err := m.products.FindByID(ctx, *msg.ProductRef)
		if err == ErrNotFound {
			products[*msg.ProductRef] = nil
			continue
		}
		if err != nil {
			return err
		}
		snap := product.Snapshot()
		products[*msg.ProductRef] = &snap
		msg.Product = &snap
	}
	return nil
}
