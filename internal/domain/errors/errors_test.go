// File: internal/domain/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(ErrTokenNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrUserNotFound)))
	assert.False(t, IsNotFound(ErrTokenExpired))
	assert.False(t, IsNotFound(nil))
}

func TestIsTokenRejection(t *testing.T) {
	assert.True(t, IsTokenRejection(ErrTokenNotFound))
	assert.True(t, IsTokenRejection(ErrTokenExpired))
	assert.True(t, IsTokenRejection(ErrTokenAlreadyClaimed))
	assert.False(t, IsTokenRejection(ErrTokenNotClaimed))
	assert.False(t, IsTokenRejection(ErrInternal))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(ErrDuplicateValue))
	assert.True(t, IsConflict(fmt.Errorf("insert: %w", ErrTelegramIDExists)))
	assert.False(t, IsConflict(ErrNotFound))
}
