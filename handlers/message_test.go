package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentmart/models"
	"studentmart/store"
)

// stubMessages satisfies store.Messages with canned per-call behavior.
type stubMessages struct {
	sendFn          func(senderID, recipientID primitive.ObjectID, content string) (*models.Message, error)
	conversationFn  func(userID, partnerID primitive.ObjectID) ([]models.Message, error)
	conversationsFn func(userID primitive.ObjectID) ([]models.ConversationSummary, error)
	unreadFn        func(userID primitive.ObjectID) (int64, error)
	markReadFn      func(messageID, actorID primitive.ObjectID) (*models.Message, error)
	deleteFn        func(messageID, actorID primitive.ObjectID) error
}

func (s *stubMessages) Send(_ context.Context, senderID, recipientID primitive.ObjectID, content string, _ *primitive.ObjectID) (*models.Message, error) {
	return s.sendFn(senderID, recipientID, content)
}

func (s *stubMessages) Conversation(_ context.Context, userID, partnerID primitive.ObjectID) ([]models.Message, error) {
	return s.conversationFn(userID, partnerID)
}

func (s *stubMessages) Conversations(_ context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error) {
	return s.conversationsFn(userID)
}

func (s *stubMessages) UnreadCount(_ context.Context, userID primitive.ObjectID) (int64, error) {
	return s.unreadFn(userID)
}

func (s *stubMessages) MarkRead(_ context.Context, messageID, actorID primitive.ObjectID) (*models.Message, error) {
	return s.markReadFn(messageID, actorID)
}

func (s *stubMessages) Delete(_ context.Context, messageID, actorID primitive.ObjectID) error {
	return s.deleteFn(messageID, actorID)
}

func messageRouter(userID string, stub *stubMessages) *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetMessageStore(stub)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userId", userID)
		}
	})
	r.POST("/api/messages", SendMessage)
	r.GET("/api/messages/conversations", GetConversations)
	r.GET("/api/messages/unread-count", GetUnreadCount)
	r.GET("/api/messages/conversation/:userId", GetConversation)
	r.PUT("/api/messages/:id/read", MarkMessageRead)
	r.DELETE("/api/messages/:id", DeleteMessage)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendMessageCreated(t *testing.T) {
	sender := primitive.NewObjectID()
	recipient := primitive.NewObjectID()

	stub := &stubMessages{
		sendFn: func(senderID, recipientID primitive.ObjectID, content string) (*models.Message, error) {
			assert.Equal(t, sender, senderID)
			assert.Equal(t, recipient, recipientID)
			assert.Equal(t, "hello there", content)
			return &models.Message{
				ID:          primitive.NewObjectID(),
				SenderID:    senderID,
				RecipientID: recipientID,
				Content:     content,
				CreatedAt:   time.Now(),
			}, nil
		},
	}
	r := messageRouter(sender.Hex(), stub)

	w := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"recipientId": recipient.Hex(),
		"content":     "hello there",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Message models.Message `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hello there", resp.Message.Content)
}

func TestSendMessageInvalidRecipientID(t *testing.T) {
	r := messageRouter(primitive.NewObjectID().Hex(), &stubMessages{})

	w := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"recipientId": "not-a-hex-id",
		"content":     "hi",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageValidationErrorMapsTo400(t *testing.T) {
	stub := &stubMessages{
		sendFn: func(_, _ primitive.ObjectID, _ string) (*models.Message, error) {
			return nil, store.ValidationError("Message content is required")
		},
	}
	r := messageRouter(primitive.NewObjectID().Hex(), stub)

	w := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"recipientId": primitive.NewObjectID().Hex(),
		"content":     "   ",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message content is required")
}

func TestSendMessageUpstreamErrorMapsTo502(t *testing.T) {
	stub := &stubMessages{
		sendFn: func(_, _ primitive.ObjectID, _ string) (*models.Message, error) {
			return nil, &store.UpstreamError{Op: "insert message", Err: assert.AnError}
		},
	}
	r := messageRouter(primitive.NewObjectID().Hex(), stub)

	w := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"recipientId": primitive.NewObjectID().Hex(),
		"content":     "hi",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSendMessageWithoutAuthContext(t *testing.T) {
	r := messageRouter("", &stubMessages{})

	w := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"recipientId": primitive.NewObjectID().Hex(),
		"content":     "hi",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetConversationReturnsMessages(t *testing.T) {
	user := primitive.NewObjectID()
	partner := primitive.NewObjectID()

	stub := &stubMessages{
		conversationFn: func(userID, partnerID primitive.ObjectID) ([]models.Message, error) {
			assert.Equal(t, user, userID)
			assert.Equal(t, partner, partnerID)
			return []models.Message{
				{ID: primitive.NewObjectID(), SenderID: user, RecipientID: partner, Content: "first"},
				{ID: primitive.NewObjectID(), SenderID: partner, RecipientID: user, Content: "second"},
			}, nil
		},
	}
	r := messageRouter(user.Hex(), stub)

	w := doJSON(t, r, http.MethodGet, "/api/messages/conversation/"+partner.Hex(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Count    int              `json:"count"`
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "first", resp.Messages[0].Content)
}

func TestGetConversationInvalidPartnerID(t *testing.T) {
	r := messageRouter(primitive.NewObjectID().Hex(), &stubMessages{})

	w := doJSON(t, r, http.MethodGet, "/api/messages/conversation/garbage", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConversationsReturnsSummaries(t *testing.T) {
	user := primitive.NewObjectID()
	partner := primitive.NewObjectID()

	stub := &stubMessages{
		conversationsFn: func(userID primitive.ObjectID) ([]models.ConversationSummary, error) {
			return []models.ConversationSummary{
				{
					Partner:     models.UserSnapshot{ID: partner, FullName: "Ada"},
					LastMessage: models.Message{Content: "bye"},
					UnreadCount: 3,
				},
			}, nil
		},
	}
	r := messageRouter(user.Hex(), stub)

	w := doJSON(t, r, http.MethodGet, "/api/messages/conversations", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Count         int                          `json:"count"`
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Ada", resp.Conversations[0].Partner.FullName)
	assert.Equal(t, 3, resp.Conversations[0].UnreadCount)
}

func TestGetUnreadCount(t *testing.T) {
	stub := &stubMessages{
		unreadFn: func(_ primitive.ObjectID) (int64, error) { return 7, nil },
	}
	r := messageRouter(primitive.NewObjectID().Hex(), stub)

	w := doJSON(t, r, http.MethodGet, "/api/messages/unread-count", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count": 7}`, w.Body.String())
}

func TestMarkMessageReadForbiddenForSender(t *testing.T) {
	stub := &stubMessages{
		markReadFn: func(_, _ primitive.ObjectID) (*models.Message, error) {
			return nil, store.ErrNotAuthorized
		},
	}
	r := messageRouter(primitive.NewObjectID().Hex(), stub)

	w := doJSON(t, r, http.MethodPut, "/api/messages/"+primitive.NewObjectID().Hex()+"/read", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkMessageReadNotFound(t *testing.T) {
	stub := &stubMessages{
		markReadFn: func(_, _ primitive.ObjectID) (*models.Message, error) {
			return nil, store.ErrNotFound
		},
	}
	r := messageRouter(primitive.NewObjectID().Hex(), stub)

	w := doJSON(t, r, http.MethodPut, "/api/messages/"+primitive.NewObjectID().Hex()+"/read", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMessageSuccess(t *testing.T) {
	actor := primitive.NewObjectID()
	messageID := primitive.NewObjectID()

	stub := &stubMessages{
		deleteFn: func(id, actorID primitive.ObjectID) error {
			assert.Equal(t, messageID, id)
			assert.Equal(t, actor, actorID)
			return nil
		},
	}
	r := messageRouter(actor.Hex(), stub)

	w := doJSON(t, r, http.MethodDelete, "/api/messages/"+messageID.Hex(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Message deleted successfully")
}

func TestDeleteMessageForbiddenForRecipient(t *testing.T) {
	stub := &stubMessages{
		deleteFn: func(_, _ primitive.ObjectID) error { return store.ErrNotAuthorized },
	}
	r := messageRouter(primitive.NewObjectID().Hex(), stub)

	w := doJSON(t, r, http.MethodDelete, "/api/messages/"+primitive.NewObjectID().Hex(), nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
