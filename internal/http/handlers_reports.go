package http

import (
	"log/slog"
	"net/http"

	"github.com/mananladha/expense-tracker/internal/auth"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/notify"
	"github.com/mananladha/expense-tracker/internal/report"
)

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var body struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bundle, err := s.generator.Generate(r.Context(), userID, body.StartDate, body.EndDate)
	if err != nil {
		s.writeReportError(w, r, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Report  string         `json:"report"`
		Summary report.Summary `json:"summary"`
	}{Success: true, Report: bundle.Report, Summary: bundle.Summary})
}

func (s *Server) handleSendReport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var body struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Method    string `json:"method"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	method := notify.Method(body.Method)
	if !method.Valid() {
		writeError(w, http.StatusBadRequest, "Method must be sms, email, or both")
		return
	}

	bundle, err := s.generator.Generate(r.Context(), userID, body.StartDate, body.EndDate)
	if err != nil {
		s.writeReportError(w, r, userID, err)
		return
	}

	user, err := s.repo.GetUser(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "User fetch failed", applog.FieldUserID, userID, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error sending report")
		return
	}

	results := s.dispatcher.Dispatch(r.Context(), bundle, method, notify.Recipients{
		Emails: []string{user.ReportEmail, user.ReportEmail2},
		Phone:  user.ReportPhone,
	})

	writeJSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Results notify.Results `json:"results"`
	}{Success: true, Message: "Report processed", Results: results})
}

func (s *Server) writeReportError(w http.ResponseWriter, r *http.Request, userID int64, err error) {
	if report.IsValidationError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.ErrorContext(r.Context(), "Report generation failed", applog.FieldUserID, userID, applog.FieldError, err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": err.Error(),
	})
}
