package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKoboRoundsInsteadOfTruncating(t *testing.T) {
	assert.Equal(t, int64(1999), kobo(19.99))
	assert.Equal(t, int64(150000), kobo(1500))
	assert.Equal(t, int64(1), kobo(0.01))
	assert.Equal(t, int64(0), kobo(0))
	assert.Equal(t, int64(1005), kobo(10.049))
}
