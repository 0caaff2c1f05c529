package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SendMessageRequest struct {
	RecipientID      string `json:"recipientId" binding:"required"`
	Content          string `json:"content"`
	ProductReference string `json:"productReference"`
}

func SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipient ID"})
		return
	}

	var productRef *primitive.ObjectID
	if req.ProductReference != "" {
		ref, err := primitive.ObjectIDFromHex(req.ProductReference)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product reference"})
			return
		}
		productRef = &ref
	}

	ctx, cancel := dbCtx()
	defer cancel()

	msg, err := msgStore.Send(ctx, userID, recipientID, req.Content, productRef)
	if err != nil {
		storeError(c, err)
		return
	}

	// Durable write done. The websocket relay is driven by the sender's
	// client; we only fall back to a browser push when the recipient has
	// no live connection.
	if hub == nil || !hub.Online(recipientID.Hex()) {
		go notifyNewMessage(msg)
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func GetConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	partnerID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	messages, err := msgStore.Conversation(ctx, userID, partnerID)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(messages),
		"messages": messages,
	})
}

func GetConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	conversations, err := msgStore.Conversations(ctx, userID)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":         len(conversations),
		"conversations": conversations,
	})
}

func GetUnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	count, err := msgStore.UnreadCount(ctx, userID)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func MarkMessageRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	msg, err := msgStore.MarkRead(ctx, messageID, userID)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func DeleteMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if err := msgStore.Delete(ctx, messageID, userID); err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
