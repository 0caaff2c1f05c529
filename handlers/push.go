package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentmart/database"
	"studentmart/logger"
	"studentmart/models"
)

// PushSubscription binds a browser push endpoint to a user. One per user,
// upserted on every subscribe.
type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

func GetVapidPublicKey(c *gin.Context) {
	if vapidPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": vapidPublicKey})
}

func SubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	sub := PushSubscription{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Sub: webpush.Subscription{
			Endpoint: req.Endpoint,
			Keys: webpush.Keys{
				P256dh: req.Keys.P256dh,
				Auth:   req.Keys.Auth,
			},
		},
	}

	_, err := database.PushSubs.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": sub},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push subscription saved"})
}

// notifyNewMessage pushes a preview of a freshly stored message to the
// recipient's browser. Best effort only; the message is already durable.
func notifyNewMessage(msg *models.Message) {
	if vapidPrivateKey == "" {
		return
	}

	senderName := "Someone"
	if msg.Sender != nil && msg.Sender.FullName != "" {
		senderName = msg.Sender.FullName
	}

	sendPush(msg.RecipientID, senderName+" sent you a message", messagePreview(msg.Content))
}

// messagePreview shortens content for a notification body. Truncation is by
// rune so a multi-byte character is never split.
func messagePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= 100 {
		return content
	}
	return string(runes[:100]) + "..."
}

func sendPush(userID primitive.ObjectID, title, body string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorw("panic in push notification", "recover", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var sub PushSubscription
	err := database.PushSubs.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return
	}
	if err != nil {
		logger.Log.Warnw("find push subscription failed", "userId", userID.Hex(), "err", err)
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"title": title,
		"body":  body,
		"data": map[string]interface{}{
			"url":       "/messages",
			"timestamp": time.Now().Unix(),
		},
	})
	if err != nil {
		return
	}

	resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
		Subscriber:      vapidSubscriber,
		VAPIDPublicKey:  vapidPublicKey,
		VAPIDPrivateKey: vapidPrivateKey,
		TTL:             30,
	})
	if err != nil {
		logger.Log.Warnw("push notification failed", "userId", userID.Hex(), "err", err)
		if resp != nil && resp.StatusCode == http.StatusGone {
			// Subscription expired, drop it.
			if _, delErr := database.PushSubs.DeleteOne(ctx, bson.M{"userId": userID}); delErr != nil {
				logger.Log.Warnw("delete expired subscription failed", "err", delErr)
			}
		}
		return
	}
	resp.Body.Close()
}
