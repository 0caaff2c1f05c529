package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentmart/models"
)

// fakeDirectory resolves only the ids it was told about. Send's validation
// runs before any collection access, so these tests need no database.
type fakeDirectory struct {
	known map[primitive.ObjectID]bool
	err   error
}

func (f *fakeDirectory) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[id] {
		return nil, ErrNotFound
	}
	return &models.User{ID: id, FullName: "someone", IsActive: true}, nil
}

func (f *fakeDirectory) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[id], nil
}

func TestSendRejectsEmptyContent(t *testing.T) {
	sender := primitive.NewObjectID()
	recipient := primitive.NewObjectID()
	messages := NewMongoMessages(nil, &fakeDirectory{known: map[primitive.ObjectID]bool{recipient: true}}, nil)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := messages.Send(context.Background(), sender, recipient, content, nil)
		var validation ValidationError
		require.ErrorAs(t, err, &validation, "content %q", content)
	}
}

func TestSendRejectsSelfMessage(t *testing.T) {
	user := primitive.NewObjectID()
	messages := NewMongoMessages(nil, &fakeDirectory{known: map[primitive.ObjectID]bool{user: true}}, nil)

	_, err := messages.Send(context.Background(), user, user, "hello me", nil)

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Error(), "yourself")
}

func TestSendRejectsUnknownRecipient(t *testing.T) {
	messages := NewMongoMessages(nil, &fakeDirectory{known: map[primitive.ObjectID]bool{}}, nil)

	_, err := messages.Send(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "hi", nil)

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Error(), "recipient")
}

func TestSendPropagatesDirectoryFailure(t *testing.T) {
	upstreamErr := upstream("count users", errors.New("connection reset"))
	messages := NewMongoMessages(nil, &fakeDirectory{err: upstreamErr}, nil)

	_, err := messages.Send(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "hi", nil)

	var up *UpstreamError
	require.ErrorAs(t, err, &up)
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError("message content is required")
	assert.EqualError(t, err, "message content is required")
}
