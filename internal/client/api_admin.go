package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/luisthe-dev/myinvite-go/internal/session"

	log "github.com/sirupsen/logrus"
)

// AdminClient is the dispatcher scoped to back-office administrators. It
// never shares credential storage keys or redirect targets with the user
// client, so both sessions can live in the same process side by side.
type AdminClient struct {
	*Client
}

func NewAdminClient(cfg Config, store session.Store, navigator Navigator) (*AdminClient, error) {
	c, err := newClient(session.KindAdmin, cfg, store, navigator)
	if err != nil {
		return nil, err
	}
	return &AdminClient{Client: c}, nil
}

// DashboardStats is the back-office aggregate snapshot.
type DashboardStats struct {
	TotalUsers    int `json:"total_users"`
	TotalEvents   int `json:"total_events"`
	TicketsSold   int `json:"tickets_sold"`
	RevenueCents  int `json:"revenue_cents"`
	OpenPayouts   int `json:"open_payouts"`
	ActiveEvents  int `json:"active_events"`
	FlaggedEvents int `json:"flagged_events"`
}

// Login exchanges back-office credentials for an admin session with the
// short admin TTL.
func (c *AdminClient) Login(ctx context.Context, username, password string) (*session.Principal, error) {
	var data loginData
	err := c.do(ctx, http.MethodPost, "/admin/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	return c.storeSession(ctx, data)
}

// Logout invalidates the admin session server-side and clears the local
// store regardless of the outcome.
func (c *AdminClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/admin/auth/logout", nil, nil)
	if clearErr := c.store.Clear(ctx, c.kind); clearErr != nil {
		log.Errorf("admin logout, clear session: %s", clearErr)
	}
	return err
}

// Dashboard fetches the aggregate stats for the back-office landing page.
func (c *AdminClient) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.do(ctx, http.MethodGet, "/admin/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Users lists platform users for the back office.
func (c *AdminClient) Users(ctx context.Context) ([]session.Principal, error) {
	var users []session.Principal
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Events lists all events, including unpublished ones.
func (c *AdminClient) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/admin/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func eventPath(id int) string {
	return fmt.Sprintf("/events/%d", id)
}
