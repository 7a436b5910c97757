package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/luisthe-dev/myinvite-go/internal/client"
	"github.com/luisthe-dev/myinvite-go/internal/middleware"
	"github.com/luisthe-dev/myinvite-go/internal/session"
	"github.com/luisthe-dev/myinvite-go/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// envelope mirrors the shape the real backend wraps every payload in.
type envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	payload, err := json.Marshal(envelope{Message: message, Data: data})
	if err != nil {
		log.Errorf("marshal response envelope: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payload, statusCode)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var creds credentialsRequest
	err := json.NewDecoder(r.Body).Decode(&creds)
	return creds, err
}

type sessionResponse struct {
	Token string            `json:"token"`
	User  session.Principal `json:"user"`
}

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, account Account, ttl time.Duration) {
	token, err := s.authService.Login(r.Context(), account.Principal, ttl)
	if err != nil {
		log.Errorf("devserver login, mint token: %s", err)
		writeEnvelope(w, http.StatusInternalServerError, "failed to create session", nil)
		return
	}

	s.metricsManager.CounterLogins.Inc()
	writeEnvelope(w, http.StatusOK, "logged in", sessionResponse{
		Token: token,
		User:  account.Principal,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeEnvelope(w, http.StatusBadRequest, "email and password required", nil)
		return
	}

	account, ok := s.userAccounts[creds.Email]
	if !ok || !pkg.CheckPasswordHash(creds.Password, account.PasswordHash) {
		log.Tracef("devserver login, rejected credentials for: %s", creds.Email)
		writeEnvelope(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	s.issueSession(w, r, account, session.UserSessionTTL)
}

// handleVerify completes a signup or reset flow. The dev backend accepts a
// single fixed code for any seeded account instead of sending mails.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if creds.Email == "" || creds.Code == "" {
		writeEnvelope(w, http.StatusBadRequest, "email and code required", nil)
		return
	}

	account, ok := s.userAccounts[creds.Email]
	if !ok || creds.Code != s.config.OTPCode {
		writeEnvelope(w, http.StatusUnauthorized, "invalid verification code", nil)
		return
	}

	s.issueSession(w, r, account, session.UserSessionTTL)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeEnvelope(w, http.StatusBadRequest, "username and password required", nil)
		return
	}

	account, ok := s.adminAccounts[creds.Username]
	if !ok || !pkg.CheckPasswordHash(creds.Password, account.PasswordHash) {
		log.Tracef("devserver admin login, rejected credentials for: %s", creds.Username)
		writeEnvelope(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	s.issueSession(w, r, account, session.AdminSessionTTL)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if loggedOut := s.authService.Logout(r.Context(), middleware.BearerToken(r)); !loggedOut {
		log.Trace("devserver logout, token was not live")
	}
	writeEnvelope(w, http.StatusOK, "logged out", nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principalFromRequest(r)
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "session expired", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "", principal)
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, "", s.data.events)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid event id", nil)
		return
	}

	event, ok := s.data.eventByID(id)
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "event not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "", event)
}

func (s *Server) handleMyTickets(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principalFromRequest(r)
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "session expired", nil)
		return
	}

	tickets := s.data.tickets[principal.ID]
	if tickets == nil {
		tickets = []client.Ticket{}
	}
	writeEnvelope(w, http.StatusOK, "", tickets)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principalFromRequest(r)
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "session expired", nil)
		return
	}
	if !requireAdmin(w, principal) {
		return
	}
	writeEnvelope(w, http.StatusOK, "", s.data.dashboardStats())
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principalFromRequest(r)
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "session expired", nil)
		return
	}
	if !requireAdmin(w, principal) {
		return
	}
	writeEnvelope(w, http.StatusOK, "", s.data.users)
}

func (s *Server) handleAdminEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principalFromRequest(r)
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "session expired", nil)
		return
	}
	if !requireAdmin(w, principal) {
		return
	}
	writeEnvelope(w, http.StatusOK, "", s.data.events)
}
