package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	v := &ValidationError{}
	assert.True(t, v.Empty())
	v.Add("username", "required")
	v.Add("email", "invalid")
	v.Add("username", "too short")
	assert.False(t, v.Empty())
	assert.Equal(t, []string{"required", "too short"}, v.Fields["username"])
	assert.Equal(t, "validation failed: email: invalid, username: required; too short", v.Error())
}

func TestUpstream_WrapsOnce(t *testing.T) {
	base := errors.New("timeout")
	err := Upstream(base)
	assert.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("analyze: %w", err)
	assert.Same(t, wrapped, Upstream(wrapped))

	var ue *UpstreamError
	assert.ErrorAs(t, wrapped, &ue)
}
