package xerrors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusOK, nil},
		{http.StatusCreated, nil},
		{http.StatusUnauthorized, ErrAuth},
		{http.StatusTooManyRequests, ErrRateLimit},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}

	for _, tc := range cases {
		got := FromStatus(tc.status)
		if tc.want == nil {
			assert.NoError(t, got, "status %d", tc.status)
			continue
		}
		assert.True(t, Is(got, tc.want), "status %d: got %v", tc.status, got)
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrNetwork))
	assert.True(t, Retryable(ErrServer))
	assert.True(t, Retryable(ErrRateLimit))
	assert.True(t, Retryable(Wrap(ErrNetwork, "dial tcp")))

	assert.False(t, Retryable(ErrAuth))
	assert.False(t, Retryable(ErrDecode))
	assert.False(t, Retryable(ErrValidation))
}
