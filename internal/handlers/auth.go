package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/canvistapp/canvist/internal/session"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.sessionManager.CreateSession(r.Context(), w, &session.Data{
		UserID: user.ID,
		Email:  user.Email,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.sessionManager.CreateSession(r.Context(), w, &session.Data{
		UserID: user.ID,
		Email:  user.Email,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, user)
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLogin authenticates against the single configured admin credential.
// Admin access is a session flag, not a customer account.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.AdminLogin(r.Context(), req.Password, clientIP(r)); err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.sessionManager.CreateSession(r.Context(), w, &session.Data{IsAdmin: true}); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.DestroySession(r.Context(), w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the current session's user.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	data := session.FromContext(r.Context())
	if data == nil {
		writeMessage(r.Context(), w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if data.IsAdmin && data.UserID == uuid.Nil {
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"admin": true})
		return
	}

	user, err := h.authService.GetUser(r.Context(), data.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, user)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword always responds with the same body, whether or not the
// account exists.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email, clientIP(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status": "If the account exists, a reset email has been sent.",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "password updated"})
}
