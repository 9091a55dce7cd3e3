package http

import (
	"log"
	"net/http"

	"github.com/guntanalaganesh-web/shoe-store/internal/middleware"
	"github.com/guntanalaganesh-web/shoe-store/internal/session"
	"github.com/guntanalaganesh-web/shoe-store/internal/user"
)

type AuthHandler struct {
	users    *user.Service
	sessions session.Store
	logger   *log.Logger
}

func NewAuthHandler(users *user.Service, sessions session.Store, logger *log.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.bindUser(r, u.ID)
	writeData(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.bindUser(r, u.ID)
	writeData(w, http.StatusOK, u)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.bindUser(r, "")
	writeData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

// bindUser rewrites the session's user binding. The session itself, and with
// it the cart, survives login and logout. Store failures only cost the
// binding, so they are logged rather than surfaced.
func (h *AuthHandler) bindUser(r *http.Request, userID string) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		return
	}
	sess.UserID = userID
	if err := h.sessions.Put(r.Context(), sess); err != nil {
		h.logger.Printf("session %s: bind user: %v", sess.ID, err)
	}
}
