package auth

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/activity"
	"github.com/ayush/argumetrics/internal/httpx"
	"github.com/ayush/argumetrics/internal/metrics"
	"github.com/ayush/argumetrics/internal/models"
)

// CookieConfig controls the session cookie written on register and login.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc     *Service
	journal *activity.Journal
	cookie  CookieConfig
	log     *zap.Logger
}

func NewHandler(svc *Service, journal *activity.Journal, cookie CookieConfig, log *zap.Logger) *Handler {
	if cookie.TTL <= 0 {
		cookie.TTL = DefaultSessionTTL
	}
	return &Handler{svc: svc, journal: journal, cookie: cookie, log: log}
}

// Register creates a new user and logs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.InsertUser
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.svc.Register(r.Context(), req)
	if err != nil {
		var verr *models.ValidationError
		switch {
		case errors.As(err, &verr):
			metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
			httpx.WriteMessage(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, ErrUsernameTaken):
			metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
			httpx.WriteMessage(w, http.StatusBadRequest, "Username already exists")
		default:
			metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
			h.log.Error("register failed", zap.Error(err))
			httpx.WriteInternalError(w)
		}
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	h.setSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusCreated, user)
	h.journal.Record(r.Context(), models.Activity{
		Action:   models.ActionUserRegistered,
		UserID:   user.ID,
		Username: user.Username,
	})
}

// Login authenticates a user and creates a session. Bad credentials get a
// bare 401.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.InsertUser
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		var verr *models.ValidationError
		switch {
		case errors.As(err, &verr):
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
			httpx.WriteMessage(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, ErrInvalidCredentials):
			metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
			w.WriteHeader(http.StatusUnauthorized)
		default:
			metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
			h.log.Error("login failed", zap.Error(err))
			httpx.WriteInternalError(w)
		}
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	h.setSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusOK, user)
	h.journal.Record(r.Context(), models.Activity{
		Action:   models.ActionUserLogin,
		UserID:   user.ID,
		Username: user.Username,
	})
}

// Logout destroys the current session, if any, and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var user *models.User
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		user, err = h.svc.Resolve(r.Context(), cookie.Value)
		if err != nil && !errors.Is(err, ErrUnauthenticated) {
			h.log.Warn("could not resolve session on logout", zap.Error(err))
		}
		if err := h.svc.Logout(r.Context(), cookie.Value); err != nil {
			h.log.Error("logout failed", zap.Error(err))
			httpx.WriteInternalError(w)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	httpx.WriteMessage(w, http.StatusOK, "logged out")

	if user != nil {
		h.journal.Record(r.Context(), models.Activity{
			Action:   models.ActionUserLogout,
			UserID:   user.ID,
			Username: user.Username,
		})
	}
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookie.TTL / time.Second),
	})
}
