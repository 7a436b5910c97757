package integration_testing

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luisthe-dev/myinvite-go/internal/devserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The login surfaces are rate limited per client IP when redis is around.
func TestDevserver_loginRateLimit(t *testing.T) {
	s := devserver.NewServer(devserver.Config{
		RedisAddr: suite.redisAddr,
	})
	testServer := httptest.NewServer(s.Handler())
	defer testServer.Close()

	loginBody := []byte(`{"email":"nobody@myinvite.co","password":"wrong"}`)

	var tooEarlySeen bool
	for i := 0; i < 30; i++ {
		resp, err := http.Post(testServer.URL+"/auth/login", "application/json", bytes.NewReader(loginBody))
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		if resp.StatusCode == http.StatusTooEarly {
			tooEarlySeen = true
			break
		}
		// until the limit kicks in these are plain rejected credentials
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	assert.True(t, tooEarlySeen, "rate limiter never kicked in")
}
