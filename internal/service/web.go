package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/saasgenius/saasgenius/internal/biz"
	"github.com/saasgenius/saasgenius/internal/metrics"
)

// SessionCookie is the name of the JWT session cookie.
const SessionCookie = "sg_session"

// WebService exposes the page and JSON API handlers. Every JSON response
// uses the {"success": bool, ...} envelope the frontend expects.
type WebService struct {
	users    *biz.UserUseCase
	projects *biz.ProjectUseCase
	analysis *biz.AnalysisUseCase
	db       biz.Pinger
	metrics  *metrics.Collector
	log      *log.Helper
}

func NewWebService(
	users *biz.UserUseCase,
	projects *biz.ProjectUseCase,
	analysis *biz.AnalysisUseCase,
	db biz.Pinger,
	mc *metrics.Collector,
	logger log.Logger,
) *WebService {
	return &WebService{
		users:    users,
		projects: projects,
		analysis: analysis,
		db:       db,
		metrics:  mc,
		log:      log.NewHelper(logger),
	}
}

// ctx attaches request attribution for analytics events.
func (s *WebService) ctx(r *http.Request) context.Context {
	return biz.WithEventMeta(r.Context(), biz.EventMeta{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSuccess merges payload keys into the success envelope.
func writeSuccess(w http.ResponseWriter, payload map[string]any) {
	out := map[string]any{"success": true}
	for k, v := range payload {
		out[k] = v
	}
	writeJSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeBizError maps a use case error onto the envelope, preserving the
// HTTP status kratos encoded into it.
func (s *WebService) writeBizError(w http.ResponseWriter, err error) {
	ke := kerrors.FromError(err)
	status := int(ke.Code)
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	msg := ke.Message
	if status == http.StatusInternalServerError {
		s.log.Errorf("internal error: %v", err)
		msg = "Internal server error"
	}
	writeError(w, status, msg)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *WebService) setSession(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *WebService) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentUser resolves the session cookie to a user, or nil for guests.
func (s *WebService) CurrentUser(r *http.Request) *biz.User {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	userID, err := s.users.ParseSession(cookie.Value)
	if err != nil {
		return nil
	}
	u, err := s.users.Profile(r.Context(), userID)
	if err != nil {
		return nil
	}
	return u
}

// requireUser writes the 401 envelope and returns nil for guests.
func (s *WebService) requireUser(w http.ResponseWriter, r *http.Request) *biz.User {
	u := s.CurrentUser(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return u
}
