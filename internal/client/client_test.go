package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luisthe-dev/myinvite-go/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	dataBytes, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"message":%q,"data":%s}`, message, dataBytes)
}

// backendStub mimics the external API envelope for client tests.
func backendStub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["password"] != "sesame" {
			writeEnvelope(w, http.StatusUnauthorized, "wrong credentials", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "welcome", loginData{
			Token: "issued-token",
			User:  &session.Principal{ID: 7, Role: "user", FullName: "Lena L.", Email: req["email"]},
		})
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer issued-token" {
			writeEnvelope(w, http.StatusUnauthorized, "session expired", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "", session.Principal{ID: 7, Role: "user", FullName: "Lena L."})
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "", []Event{
			{ID: 1, Title: "Lagos Tech Fest", City: "Lagos"},
			{ID: 2, Title: "Open Air Cinema", City: "Abuja"},
		})
	})

	return httptest.NewServer(mux)
}

func TestUserClient_LoginThenFetch(t *testing.T) {
	ctx := context.Background()
	server := backendStub(t)
	defer server.Close()

	store := session.NewTestStore()
	navigator := NewTestNavigator("/")

	userClient, err := NewUserClient(Config{BaseAddress: server.URL}, store, navigator)
	require.NoError(t, err)
	assert.False(t, userClient.Authenticated(ctx))

	principal, err := userClient.Login(ctx, "lena@myinvite.co", "sesame")
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, 7, principal.ID)

	// the very next request carries the issued token
	assert.True(t, userClient.Authenticated(ctx))
	me, err := userClient.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lena L.", me.FullName)

	// the snapshot is readable without a round trip
	cached, err := userClient.Principal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lena@myinvite.co", cached.Email)

	assert.Empty(t, navigator.Redirects)
}

func TestUserClient_LoginRejected(t *testing.T) {
	ctx := context.Background()
	server := backendStub(t)
	defer server.Close()

	store := session.NewTestStore()
	userClient, err := NewUserClient(Config{BaseAddress: server.URL}, store, NewTestNavigator("/login"))
	require.NoError(t, err)

	_, err = userClient.Login(ctx, "lena@myinvite.co", "wrong")
	require.Error(t, err)
	assert.True(t, IsAuthRejection(err))
	assert.Contains(t, err.Error(), "wrong credentials")
	assert.False(t, userClient.Authenticated(ctx))
}

func TestUserClient_ExpiryDrivenLogout(t *testing.T) {
	ctx := context.Background()
	server := backendStub(t)
	defer server.Close()

	store := session.NewTestStore()
	// a stale token the backend no longer accepts
	require.NoError(t, store.Set(ctx, session.KindUser, "revoked-token", nil, session.UserSessionTTL))

	navigator := NewTestNavigator("/dashboard")
	userClient, err := NewUserClient(Config{BaseAddress: server.URL}, store, navigator)
	require.NoError(t, err)

	_, err = userClient.Me(ctx)
	require.Error(t, err)
	assert.True(t, IsAuthRejection(err))

	// guard ran: session gone, one navigation to the sign-in surface
	_, err = store.Get(ctx, session.KindUser)
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, []string{UserSignInPath}, navigator.Redirects)
}

func TestUserClient_AnonymousEvents(t *testing.T) {
	ctx := context.Background()
	server := backendStub(t)
	defer server.Close()

	store := session.NewTestStore()
	navigator := NewTestNavigator("/")
	userClient, err := NewUserClient(Config{BaseAddress: server.URL}, store, navigator)
	require.NoError(t, err)

	events, err := userClient.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Lagos Tech Fest", events[0].Title)
	assert.Empty(t, navigator.Redirects)
}

func TestUserClient_LogoutClearsLocallyEvenWhenServerFails(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, "backend down", nil)
	}))
	defer server.Close()

	store := session.NewTestStore()
	require.NoError(t, store.Set(ctx, session.KindUser, "tok", nil, session.UserSessionTTL))

	userClient, err := NewUserClient(Config{BaseAddress: server.URL}, store, NewTestNavigator("/"))
	require.NoError(t, err)

	err = userClient.Logout(ctx)
	require.Error(t, err)

	_, err = store.Get(ctx, session.KindUser)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestAdminClient_UsesAdminSurfaces(t *testing.T) {
	ctx := context.Background()

	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/admin/auth/login":
			writeEnvelope(w, http.StatusOK, "", loginData{
				Token: "admin-token",
				User:  &session.Principal{ID: 1, Role: "admin"},
			})
		case "/admin/dashboard":
			writeEnvelope(w, http.StatusOK, "", DashboardStats{TotalUsers: 120, TicketsSold: 450})
		default:
			writeEnvelope(w, http.StatusNotFound, "not found", nil)
		}
	}))
	defer server.Close()

	store := session.NewTestStore()
	adminClient, err := NewAdminClient(Config{BaseAddress: server.URL}, store, NewTestNavigator("/admin"))
	require.NoError(t, err)

	_, err = adminClient.Login(ctx, "root", "pass")
	require.NoError(t, err)
	assert.Equal(t, "/admin/auth/login", gotPath)

	stats, err := adminClient.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer admin-token", gotAuth)
	assert.Equal(t, 120, stats.TotalUsers)

	// the admin session landed under the admin kind only
	sess, err := store.Get(ctx, session.KindAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin-token", sess.Token)
	_, err = store.Get(ctx, session.KindUser)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestBaseAddressFromEnv(t *testing.T) {
	t.Setenv(BaseAddressEnvVar, "")
	assert.Equal(t, DefaultBaseAddress, BaseAddressFromEnv())

	t.Setenv(BaseAddressEnvVar, "https://api.myinvite.co")
	assert.Equal(t, "https://api.myinvite.co", BaseAddressFromEnv())
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: http.StatusUnprocessableEntity, Message: "title is required"}
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "422")
	assert.False(t, IsAuthRejection(err))
	assert.True(t, IsAuthRejection(&APIError{StatusCode: http.StatusUnauthorized}))
	assert.False(t, IsAuthRejection(assert.AnError))
}
