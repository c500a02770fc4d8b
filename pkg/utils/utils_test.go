package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "teamchat/pkg/errors"
)

type sample struct {
	Name  string `validate:"required,max=5"`
	Email string `validate:"required,email"`
	Role  string `validate:"oneof=admin member"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(sample{Name: "ann", Email: "ann@example.com", Role: "admin"}))
	})

	t.Run("reports every field", func(t *testing.T) {
		err := ValidateStruct(sample{Name: "toolong", Email: "nope", Role: "owner"})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
		assert.Contains(t, err.Error(), "name must be at most 5 characters")
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "role must be one of: admin member")
	})
}

func TestRequireNonEmpty(t *testing.T) {
	assert.NoError(t, RequireNonEmpty("userId", "user-1", "conversationId", "team-1"))

	err := RequireNonEmpty("userId", "user-1", "conversationId", "  ")
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "conversationId is required")
}

func TestClock(t *testing.T) {
	pinned := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))

	assert.Equal(t, pinned.UTC(), FixedClock(pinned).Now())

	var unset Clock
	assert.WithinDuration(t, time.Now(), unset.Now(), time.Second)
}
