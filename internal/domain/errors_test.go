package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		kind error
	}{
		{Invalid("name is required"), ErrValidation},
		{NotFound("product %d not found", 3), ErrNotFound},
		{Conflict("cart exists"), ErrConflict},
		{Unauthorized("Invalid credentials"), ErrUnauthorized},
		{Deadline("storage timed out"), ErrDeadlineExceeded},
	}
	for _, c := range cases {
		assert.ErrorIs(t, c.err, c.kind)
		assert.ErrorIs(t, fmt.Errorf("wrapped: %w", c.err), c.kind)
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	msg, ok := Message(fmt.Errorf("ctx: %w", NotFound("product %d not found", 3)))
	assert.True(t, ok)
	assert.Equal(t, "product 3 not found", msg)

	_, ok = Message(errors.New("boom"))
	assert.False(t, ok)
}
