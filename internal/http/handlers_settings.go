package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mananladha/expense-tracker/internal/auth"
	"github.com/mananladha/expense-tracker/internal/core"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/storage"
)

type paymentModeJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type settingsJSON struct {
	Name         string            `json:"name"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Email2       string            `json:"email2"`
	Phone        string            `json:"phone"`
	PaymentModes []paymentModeJSON `json:"paymentModes"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := s.repo.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.ErrorContext(r.Context(), "Settings fetch failed", applog.FieldUserID, userID, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error fetching settings")
		return
	}

	modes := make([]paymentModeJSON, 0, len(user.PaymentModes))
	for _, m := range user.PaymentModes {
		modes = append(modes, paymentModeJSON{ID: m.ID, Name: m.Name})
	}

	writeJSON(w, http.StatusOK, settingsJSON{
		Name:         user.Name,
		Username:     user.Username,
		Email:        user.ReportEmail,
		Email2:       user.ReportEmail2,
		Phone:        user.ReportPhone,
		PaymentModes: modes,
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var body struct {
		Name        string            `json:"name"`
		Email       string            `json:"email"`
		Email2      string            `json:"email2"`
		Phone       string            `json:"phone"`
		CustomModes []json.RawMessage `json:"customModes"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	current, err := s.repo.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.ErrorContext(r.Context(), "Settings fetch failed", applog.FieldUserID, userID, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error updating settings")
		return
	}

	settings := storage.UserSettings{
		Name:         sanitizeInput(body.Name),
		ReportEmail:  sanitizeInput(body.Email),
		ReportEmail2: sanitizeInput(body.Email2),
		ReportPhone:  sanitizeInput(body.Phone),
	}
	if settings.Name == "" {
		settings.Name = current.Name
	}

	if body.CustomModes != nil {
		modes, err := normalizeModes(body.CustomModes)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := core.ValidateModes(modes); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		settings.PaymentModes = modes
	}

	if err := s.repo.UpdateUserSettings(r.Context(), userID, settings); err != nil {
		slog.ErrorContext(r.Context(), "Settings update failed", applog.FieldUserID, userID, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error updating settings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Settings updated successfully"})
}

// normalizeModes accepts the two wire shapes clients send, bare name
// strings and {id, name} objects, and produces the canonical mode list.
// String entries get positional ids, matching what the original web
// client generated.
func normalizeModes(raw []json.RawMessage) ([]core.PaymentMode, error) {
	modes := make([]core.PaymentMode, 0, len(raw))
	for i, entry := range raw {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			name = sanitizeInput(name)
			if name == "" {
				continue
			}
			modes = append(modes, core.PaymentMode{
				ID:   fmt.Sprintf("mode%d", i+1),
				Name: name,
			})
			continue
		}

		var obj paymentModeJSON
		if err := json.Unmarshal(entry, &obj); err != nil {
			return nil, errors.New("invalid payment mode entry")
		}
		obj.ID = sanitizeInput(obj.ID)
		obj.Name = sanitizeInput(obj.Name)
		if obj.ID == "" {
			obj.ID = fmt.Sprintf("mode%d", i+1)
		}
		if obj.Name == "" {
			continue
		}
		modes = append(modes, core.PaymentMode{ID: obj.ID, Name: obj.Name})
	}
	return modes, nil
}
