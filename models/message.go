package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a directed message between two users, optionally referencing a
// product listing. Content is immutable after creation; only the read flag
// and read timestamp may change, and only the sender may delete it.
type Message struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SenderID    primitive.ObjectID  `bson:"sender" json:"senderId"`
	RecipientID primitive.ObjectID  `bson:"recipient" json:"recipientId"`
	Content     string              `bson:"content" json:"content"`
	ProductRef  *primitive.ObjectID `bson:"productReference,omitempty" json:"productReference,omitempty"`
	IsRead      bool                `bson:"isRead" json:"isRead"`
	ReadAt      *time.Time          `bson:"readAt,omitempty" json:"readAt,omitempty"`
	Attachments []string            `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`

	// Display data resolved from the user and product collections, never
	// persisted alongside the message itself.
	Sender    *UserSnapshot    `bson:"-" json:"sender,omitempty"`
	Recipient *UserSnapshot    `bson:"-" json:"recipient,omitempty"`
	Product   *ProductSnapshot `bson:"-" json:"product,omitempty"`
}

// ConversationSummary is the derived per-partner view of a message history.
// It has no identity of its own and is recomputed from messages on demand.
type ConversationSummary struct {
	Partner     UserSnapshot `json:"partner"`
	LastMessage Message      `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount"`
}
