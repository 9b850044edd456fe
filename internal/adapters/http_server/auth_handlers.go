package httpserver

import (
	"net/http"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string         `json:"token"`
	Session domain.Session `json:"session"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "email and password are required", nil)
		return
	}
	token, sess, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, loginResponse{Token: token, Session: sess})
}

// logout and revoke both invalidate the presented token. Logout takes it
// from the Authorization header, revoke from the body so an admin can
// kill a leaked token without holding it in a header.
func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeFail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	if err := h.Auth.Revoke(r.Context(), token); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"revoked": true})
}

func (h *Handlers) revoke(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if req.Token == "" {
		writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "token is required", nil)
		return
	}
	if err := h.Auth.Revoke(r.Context(), req.Token); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"revoked": true})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeFail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	user, err := h.Auth.Me(r.Context(), token)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"is_admin": user.IsAdmin,
	})
}

func (h *Handlers) tokenStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Auth.TokenStats(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (h *Handlers) emailCheck(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "email is required", nil)
		return
	}
	exists, err := h.Auth.EmailCheck(r.Context(), email)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"exists": exists})
}
