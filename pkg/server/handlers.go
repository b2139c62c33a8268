package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendwatch/budgetgate/pkg/service"
)

// recordSpendingRequest is the body of POST /record_spending.
type recordSpendingRequest struct {
	ConfigName string  `json:"config_name"`
	ProjectID  uint64  `json:"project_id"`
	Spent      float64 `json:"spent"`
}

// exceedsBudgetRequest is the body of POST /exceeds_budget.
type exceedsBudgetRequest struct {
	ConfigName string `json:"config_name"`
	ProjectID  uint64 `json:"project_id"`
}

// budgetResponse is the body of both budget endpoints' replies.
type budgetResponse struct {
	ExceedsBudget bool `json:"exceeds_budget"`
}

// errorResponse is the body of error replies.
type errorResponse struct {
	Error string `json:"error"`
}

// recordSpendingHandler handles POST /record_spending.
func (s *Server) recordSpendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordSpendingRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		exceeds, err := s.service.RecordSpending(req.ConfigName, req.ProjectID, req.Spent)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, budgetResponse{ExceedsBudget: exceeds})
	}
}

// exceedsBudgetHandler handles POST /exceeds_budget.
func (s *Server) exceedsBudgetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exceedsBudgetRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		exceeds, err := s.service.ExceedsBudget(req.ConfigName, req.ProjectID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, budgetResponse{ExceedsBudget: exceeds})
	}
}

// decodeRequest enforces POST and decodes the JSON body into dst. It
// writes the error reply itself and reports whether decoding succeeded.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return false
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP status codes. Both
// rejection classes are client mistakes, so both map to 400.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownConfig), errors.Is(err, service.ErrInvalidSpend):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("failed to encode response", "error", err)
	}
}
