package client

import (
	"context"
	"net/http"
	"time"

	"github.com/luisthe-dev/myinvite-go/internal/session"

	log "github.com/sirupsen/logrus"
)

// UserClient is the dispatcher scoped to ordinary attendees, with the typed
// calls the attendee surfaces use.
type UserClient struct {
	*Client
}

func NewUserClient(cfg Config, store session.Store, navigator Navigator) (*UserClient, error) {
	c, err := newClient(session.KindUser, cfg, store, navigator)
	if err != nil {
		return nil, err
	}
	return &UserClient{Client: c}, nil
}

// Event is a public listing entry.
type Event struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Venue       string    `json:"venue"`
	City        string    `json:"city"`
	StartsAt    time.Time `json:"starts_at"`
	PriceCents  int       `json:"price_cents"`
	TicketsLeft int       `json:"tickets_left"`
}

// Ticket is an issued ticket of the logged-in attendee.
type Ticket struct {
	ID         int       `json:"id"`
	EventID    int       `json:"event_id"`
	EventTitle string    `json:"event_title"`
	Code       string    `json:"code"`
	Status     string    `json:"status"`
	IssuedAt   time.Time `json:"issued_at"`
}

// loginData is the payload of a successful login or OTP verification.
type loginData struct {
	Token string             `json:"token"`
	User  *session.Principal `json:"user"`
}

// Login exchanges credentials for a session. On success the credential and
// the principal snapshot are stored together with the user TTL, replacing
// whatever session existed before.
func (c *UserClient) Login(ctx context.Context, email, password string) (*session.Principal, error) {
	var data loginData
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	return c.storeSession(ctx, data)
}

// VerifyOTP completes a signup or reset flow. A successful verification
// issues a session just like a login does.
func (c *UserClient) VerifyOTP(ctx context.Context, email, code string) (*session.Principal, error) {
	var data loginData
	err := c.do(ctx, http.MethodPost, "/auth/verify", map[string]string{
		"email": email,
		"code":  code,
	}, &data)
	if err != nil {
		return nil, err
	}
	return c.storeSession(ctx, data)
}

// Logout tells the backend to invalidate the session and clears the local
// store either way. A dead server must not leave a credential behind.
func (c *UserClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if clearErr := c.store.Clear(ctx, c.kind); clearErr != nil {
		log.Errorf("user logout, clear session: %s", clearErr)
	}
	return err
}

// Me fetches the authenticated identity from the backend.
func (c *UserClient) Me(ctx context.Context) (*session.Principal, error) {
	var principal session.Principal
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

// Events lists public events; works anonymous.
func (c *UserClient) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Event fetches one public event.
func (c *UserClient) Event(ctx context.Context, id int) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodGet, eventPath(id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// MyTickets lists the logged-in attendee's tickets.
func (c *UserClient) MyTickets(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets/mine", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) storeSession(ctx context.Context, data loginData) (*session.Principal, error) {
	if err := c.store.Set(ctx, c.kind, data.Token, data.User, c.sessionTTL); err != nil {
		// the call succeeded, only persistence failed; the caller is logged
		// in for this response but the session will not stick
		log.Errorf("store %s session: %s", c.kind, err)
	}
	return data.User, nil
}
