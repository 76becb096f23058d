package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mananladha/expense-tracker/internal/auth"
	"github.com/mananladha/expense-tracker/internal/core"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/storage"
)

type userJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	body.Name = sanitizeInput(body.Name)
	body.Username = sanitizeInput(body.Username)
	if body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hashing failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	user := &core.User{Name: body.Name, Username: body.Username}
	id, err := s.repo.CreateUser(r.Context(), user, hash)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			writeError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		slog.ErrorContext(r.Context(), "User creation failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := s.tokens.GenerateToken(id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  userJSON{ID: id, Name: body.Name, Username: body.Username},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, hash, err := s.repo.GetUserByUsername(r.Context(), sanitizeInput(body.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		slog.ErrorContext(r.Context(), "User lookup failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if !auth.CheckPassword(hash, body.Password) {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  userJSON{ID: user.ID, Name: user.Name, Username: user.Username},
	})
}
