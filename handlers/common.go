package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentmart/realtime"
	"studentmart/services"
	"studentmart/store"
)

// Collaborators wired in from main. Handlers stay plain functions, the way
// the router expects them.
var (
	msgStore store.Messages
	hub      *realtime.Hub
	mailer   *services.Mailer
	paystack *services.Paystack

	clientURL       string
	vapidPublicKey  string
	vapidPrivateKey string
	vapidSubscriber string
)

func SetMessageStore(s store.Messages) { msgStore = s }

func SetHub(h *realtime.Hub) { hub = h }

func SetMailer(m *services.Mailer) { mailer = m }

func SetPaystack(p *services.Paystack) { paystack = p }

func SetClientURL(url string) { clientURL = url }

func SetVAPIDKeys(publicKey, privateKey, subscriber string) {
	vapidPublicKey = publicKey
	vapidPrivateKey = privateKey
	vapidSubscriber = subscriber
}

// dbCtx bounds one store round trip.
func dbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// currentUserID reads the authenticated user id set by the JWT middleware.
// Writes a 401 and returns false if it is missing or malformed.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// storeError maps the store error taxonomy onto HTTP statuses.
func storeError(c *gin.Context, err error) {
	var validation store.ValidationError
	var up *store.UpstreamError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, store.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.As(err, &up):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
