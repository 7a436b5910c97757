package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestRedisStore_SetAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db)
	require.NotNil(t, store)

	principal := &Principal{
		ID:       1,
		Role:     "admin",
		FullName: "Ada A.",
		Email:    "ada@myinvite.co",
	}
	principalBytes, err := json.Marshal(principal)
	require.NoError(t, err)

	mock.ExpectSet(tokenKey(KindAdmin), "tok123", AdminSessionTTL).SetVal("OK")
	mock.ExpectSet(principalKey(KindAdmin), principalBytes, AdminSessionTTL).SetVal("OK")
	require.NoError(t, store.Set(context.Background(), KindAdmin, "tok123", principal, AdminSessionTTL))

	mock.ExpectGet(tokenKey(KindAdmin)).SetVal("tok123")
	mock.ExpectTTL(tokenKey(KindAdmin)).SetVal(time.Hour)
	mock.ExpectGet(principalKey(KindAdmin)).SetVal(string(principalBytes))

	sess, err := store.Get(context.Background(), KindAdmin)
	require.NoError(t, err)
	assert.Equal(t, "tok123", sess.Token)
	require.NotNil(t, sess.Principal)
	assert.Equal(t, "ada@myinvite.co", sess.Principal.Email)
	assert.False(t, sess.ExpiresAt.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Get_NoSession(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db)

	mock.ExpectGet(tokenKey(KindUser)).RedisNil()

	sess, err := store.Get(context.Background(), KindUser)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Nil(t, sess)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Get_PrincipalMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db)

	mock.ExpectGet(tokenKey(KindUser)).SetVal("tok456")
	mock.ExpectTTL(tokenKey(KindUser)).SetVal(time.Minute)
	mock.ExpectGet(principalKey(KindUser)).RedisNil()

	sess, err := store.Get(context.Background(), KindUser)
	require.NoError(t, err)
	assert.Equal(t, "tok456", sess.Token)
	assert.Nil(t, sess.Principal)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Set_NoPrincipal(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db)

	mock.ExpectSet(tokenKey(KindUser), "tok789", UserSessionTTL).SetVal("OK")
	mock.ExpectDel(principalKey(KindUser)).SetVal(0)

	require.NoError(t, store.Set(context.Background(), KindUser, "tok789", nil, UserSessionTTL))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Clear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db)

	// both entries removed in one operation, no orphaned principal
	mock.ExpectDel(tokenKey(KindAdmin), principalKey(KindAdmin)).SetVal(2)
	require.NoError(t, store.Clear(context.Background(), KindAdmin))

	// clearing an absent session is a no-op, never an error
	mock.ExpectDel(tokenKey(KindAdmin), principalKey(KindAdmin)).SetVal(0)
	require.NoError(t, store.Clear(context.Background(), KindAdmin))

	require.NoError(t, mock.ExpectationsWereMet())
}
