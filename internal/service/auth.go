package service

import (
	"net/http"
	"time"

	"github.com/saasgenius/saasgenius/internal/biz"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func userPayload(u *biz.User) map[string]any {
	var lastLogin *string
	if u.LastLogin != nil {
		s := u.LastLogin.UTC().Format(time.RFC3339)
		lastLogin = &s
	}
	return map[string]any{
		"id":                u.ID,
		"username":          u.Username,
		"email":             u.Email,
		"subscription_type": u.SubscriptionType,
		"created_at":        u.CreatedAt.UTC().Format(time.RFC3339),
		"last_login":        lastLogin,
	}
}

// Register handles POST /auth/register.
func (s *WebService) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, err := s.users.Register(s.ctx(r), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	s.signIn(w, u, false)
}

// Login handles POST /auth/login. The username field also accepts an email.
func (s *WebService) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, err := s.users.Login(s.ctx(r), req.Username, req.Password)
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	s.signIn(w, u, req.Remember)
}

// DemoLogin handles POST /auth/demo-login.
func (s *WebService) DemoLogin(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.DemoLogin(s.ctx(r))
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	s.signIn(w, u, false)
}

func (s *WebService) signIn(w http.ResponseWriter, u *biz.User, remember bool) {
	token, ttl, err := s.users.IssueSession(u, remember)
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	s.setSession(w, token, ttl)
	writeSuccess(w, map[string]any{"user": userPayload(u)})
}

// Logout handles POST /auth/logout.
func (s *WebService) Logout(w http.ResponseWriter, r *http.Request) {
	if u := s.CurrentUser(r); u != nil {
		s.users.Logout(s.ctx(r), u)
	}
	s.clearSession(w)
	writeSuccess(w, nil)
}

// Profile handles GET /auth/profile.
func (s *WebService) Profile(w http.ResponseWriter, r *http.Request) {
	u := s.requireUser(w, r)
	if u == nil {
		return
	}
	writeSuccess(w, map[string]any{"user": userPayload(u)})
}

// ChangePassword handles POST /auth/change-password.
func (s *WebService) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u := s.requireUser(w, r)
	if u == nil {
		return
	}
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.users.ChangePassword(s.ctx(r), u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeBizError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"message": "Password changed successfully"})
}
