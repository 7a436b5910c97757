package integration_testing

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/luisthe-dev/myinvite-go/internal/session"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var suite *Suite

func TestMain(m *testing.M) {
	var err error
	suite, err = newSuite()
	if err != nil {
		log.Printf("integration suite setup failed: %s", err)
		os.Exit(1)
	}

	code := m.Run()
	suite.cleanup()
	os.Exit(code)
}

func newStore(t *testing.T) *session.RedisStore {
	t.Helper()
	redisClient := suite.newRedisClient()
	t.Cleanup(func() {
		require.NoError(t, redisClient.FlushAll(context.Background()).Err())
		require.NoError(t, redisClient.Close())
	})
	return session.NewRedisStore(redisClient)
}

func randomPrincipal() *session.Principal {
	return &session.Principal{
		ID:       gofakeit.Number(1, 5000),
		Role:     "user",
		FullName: gofakeit.Name(),
		Email:    gofakeit.Email(),
	}
}

func TestRedisStore_roundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	principal := randomPrincipal()
	require.NoError(t, store.Set(ctx, session.KindUser, "integration-token", principal, session.UserSessionTTL))

	sess, err := store.Get(ctx, session.KindUser)
	require.NoError(t, err)
	assert.Equal(t, "integration-token", sess.Token)
	require.NotNil(t, sess.Principal)
	assert.Equal(t, principal.Email, sess.Principal.Email)

	// expiry is driven by the engine TTL, reconstructed on read
	assert.WithinDuration(t, time.Now().Add(session.UserSessionTTL), sess.ExpiresAt, 10*time.Second)
}

func TestRedisStore_kindsAreDisjoint(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, session.KindUser, "user-token", randomPrincipal(), session.UserSessionTTL))
	require.NoError(t, store.Set(ctx, session.KindAdmin, "admin-token", nil, session.AdminSessionTTL))

	userSess, err := store.Get(ctx, session.KindUser)
	require.NoError(t, err)
	assert.Equal(t, "user-token", userSess.Token)

	adminSess, err := store.Get(ctx, session.KindAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin-token", adminSess.Token)
	assert.Nil(t, adminSess.Principal)

	require.NoError(t, store.Clear(ctx, session.KindAdmin))

	_, err = store.Get(ctx, session.KindAdmin)
	assert.True(t, errors.Is(err, session.ErrNoSession))

	// user session untouched by the admin clear
	_, err = store.Get(ctx, session.KindUser)
	require.NoError(t, err)
}

func TestRedisStore_engineExpiry(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, session.KindUser, "short-lived", randomPrincipal(), time.Second))

	_, err := store.Get(ctx, session.KindUser)
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	_, err = store.Get(ctx, session.KindUser)
	assert.True(t, errors.Is(err, session.ErrNoSession))
}

func TestRedisStore_overwriteReplacesSession(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, session.KindUser, "first", randomPrincipal(), session.UserSessionTTL))
	second := randomPrincipal()
	require.NoError(t, store.Set(ctx, session.KindUser, "second", second, session.UserSessionTTL))

	sess, err := store.Get(ctx, session.KindUser)
	require.NoError(t, err)
	assert.Equal(t, "second", sess.Token)
	require.NotNil(t, sess.Principal)
	assert.Equal(t, second.Email, sess.Principal.Email)
}

func TestRedisStore_clearIsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Clear(ctx, session.KindUser))
	require.NoError(t, store.Set(ctx, session.KindUser, "to-clear", nil, session.UserSessionTTL))
	require.NoError(t, store.Clear(ctx, session.KindUser))
	require.NoError(t, store.Clear(ctx, session.KindUser))

	_, err := store.Get(ctx, session.KindUser)
	assert.True(t, errors.Is(err, session.ErrNoSession))
}
