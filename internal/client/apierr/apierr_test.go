package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{400, KindValidation},
		{401, KindAuth},
		{403, KindAuth},
		{404, KindValidation},
		{422, KindValidation},
		{500, KindServer},
		{503, KindServer},
		{0, KindNetwork},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindFromStatus(tt.status))
		})
	}
}

func TestError_Message(t *testing.T) {
	err := New(401, "Incorrect email or password", nil)
	assert.Equal(t, KindAuth, err.Kind)
	assert.Equal(t, 401, err.Status)
	assert.Contains(t, err.Error(), "Incorrect email or password")
	assert.Contains(t, err.Error(), "401")
}

func TestNetwork_HasNoStatus(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network(cause)

	assert.Equal(t, KindNetwork, err.Kind)
	assert.Zero(t, err.Status)
	require.ErrorIs(t, err, cause, "cause must stay reachable for errors.Is")
}

func TestIsKind_UnwrapsChains(t *testing.T) {
	inner := New(403, "forbidden", nil)
	wrapped := fmt.Errorf("fetching profile: %w", inner)

	assert.True(t, IsKind(wrapped, KindAuth))
	assert.True(t, IsAuth(wrapped))
	assert.False(t, IsKind(wrapped, KindServer))
	assert.False(t, IsAuth(errors.New("plain")))
}
