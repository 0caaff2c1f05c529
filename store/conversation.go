package store

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentmart/models"
)

// Summarize groups a newest-first message snapshot by conversation partner.
// The first message seen for a partner becomes the conversation's last
// message and is never overwritten by older ones; unread counts accumulate
// over every message addressed to userID. Output keeps the order in which
// partners were first encountered.
func Summarize(messages []models.Message, userID primitive.ObjectID) []models.ConversationSummary {
	index := make(map[primitive.ObjectID]int)
	summaries := make([]models.ConversationSummary, 0, len(messages))

	for _, msg := range messages {
		partnerID := msg.SenderID
		snapshot := msg.Sender
		if msg.SenderID == userID {
			partnerID = msg.RecipientID
			snapshot = msg.Recipient
		}

		i, seen := index[partnerID]
		if !seen {
			partner := models.UserSnapshot{ID: partnerID}
			if snapshot != nil {
				partner = *snapshot
			}
			summaries = append(summaries, models.ConversationSummary{
				Partner:     partner,
				LastMessage: msg,
			})
			i = len(summaries) - 1
			index[partnerID] = i
		}

		if msg.RecipientID == userID && !msg.IsRead {
			summaries[i].UnreadCount++
		}
	}

	return summaries
}
