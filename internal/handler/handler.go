// Package handler exposes the interview service over a JSON HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prepdesk/prepdesk/internal/extract"
	"github.com/prepdesk/prepdesk/internal/interview"
	"github.com/prepdesk/prepdesk/internal/model"
	"github.com/prepdesk/prepdesk/internal/session"
	"github.com/prepdesk/prepdesk/internal/store"
)

// maxResumeSize caps uploaded resume files at 10 MiB.
const maxResumeSize = 10 << 20

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc  *interview.Service
	repo store.Repository
}

// New creates a new Handler.
func New(svc *interview.Service, repo store.Repository) *Handler {
	return &Handler{svc: svc, repo: repo}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/resume", h.handleUploadResume)

	r.Route("/interviews", func(r chi.Router) {
		r.Post("/", h.handleBegin)
		r.Get("/resumable", h.handleResumable)

		r.Route("/{candidateID}", func(r chi.Router) {
			r.Get("/", h.handleSessionState)
			r.Post("/answers", h.handleSubmitAnswer)
			r.Put("/draft", h.handleUpdateDraft)
			r.Put("/timer", h.handleTimer)
			r.Post("/resume", h.handleResume)
			r.Post("/abandon", h.handleAbandon)
		})
	})

	r.Get("/candidates", h.handleListCandidates)
	r.Get("/candidates/{id}", h.handleGetCandidate)
	r.Get("/questions", h.handleQuestions)
}

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiResponse{Success: status >= 200 && status < 300, Data: data}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiResponse{Error: &apiError{Code: code, Message: message, Details: details}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps the error taxonomy onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	var incomplete *model.ContactIncompleteError
	switch {
	case errors.As(err, &incomplete):
		respondError(w, http.StatusUnprocessableEntity, "CONTACT_INCOMPLETE", incomplete.Error(), map[string]any{"missingFields": incomplete.Missing})
	case errors.Is(err, model.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, model.ErrInvalidState):
		respondError(w, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, model.ErrUnsupportedFormat):
		respondError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error(), nil)
	case errors.Is(err, model.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, model.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)
	default:
		slog.Error("internal error", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

// sessionView is the live-attempt snapshot the interviewee UI polls.
type sessionView struct {
	Candidate *model.Candidate `json:"candidate"`
	Question  *model.Question  `json:"question,omitempty"`
	Session   *session.State   `json:"session,omitempty"`
}

func (h *Handler) sessionViewFor(c *model.Candidate) sessionView {
	view := sessionView{Candidate: c}
	if st, ok := h.svc.SessionState(c.ID); ok && st.Active {
		if q, err := h.svc.Bank().ForIndex(st.QuestionIndex); err == nil {
			view.Question = &q
		}
		view.Session = &st
	}
	return view
}

// Resume upload and contact extraction

type resumeResponse struct {
	model.ContactInfo
	MissingFields []string `json:"missingFields"`
}

func (h *Handler) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "expected multipart form with a resume file", nil)
		return
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "missing resume file field", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "failed to read upload", nil)
		return
	}

	text, err := extract.Text(header.Filename, data)
	if err != nil {
		// Never fatal: the UI prompts for manual entry instead.
		respondServiceError(w, err)
		return
	}

	contact := extract.ContactInfo(text)
	slog.Info("resume processed", "filename", header.Filename, "bytes", len(data), "missing_fields", contact.MissingFields())
	respondJSON(w, http.StatusOK, resumeResponse{ContactInfo: contact, MissingFields: contact.MissingFields()})
}

// Interview lifecycle

func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	var contact model.ContactInfo
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed contact body", nil)
		return
	}

	c, err := h.svc.BeginSession(r.Context(), contact)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.sessionViewFor(c))
}

func (h *Handler) handleSessionState(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")
	c, err := h.repo.FindByID(r.Context(), candidateID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.sessionViewFor(c))
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed answer body", nil)
		return
	}

	c, err := h.svc.SubmitAnswer(r.Context(), candidateID, req.Answer)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.sessionViewFor(c))
}

type draftRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed draft body", nil)
		return
	}
	if err := h.svc.UpdateDraft(candidateID, req.Text); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

type timerRequest struct {
	Paused bool `json:"paused"`
}

func (h *Handler) handleTimer(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")
	var req timerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed timer body", nil)
		return
	}
	var err error
	if req.Paused {
		err = h.svc.PauseTimer(candidateID)
	} else {
		err = h.svc.ResumeTimer(candidateID)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")
	c, _, err := h.svc.Resume(r.Context(), candidateID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.sessionViewFor(c))
}

func (h *Handler) handleResumable(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Resumable(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidate": c})
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")
	c, err := h.svc.Abandon(r.Context(), candidateID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidate": c})
}

// Interviewer dashboard

// candidateSummary is one dashboard row; the full transcript stays on
// the detail endpoint.
type candidateSummary struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Phone       string                `json:"phone"`
	Status      model.CandidateStatus `json:"status"`
	Score       int                   `json:"score"`
	Band        string                `json:"band,omitempty"`
	Answers     int                   `json:"answers"`
	CreatedAt   time.Time             `json:"createdAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
}

func (h *Handler) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.repo.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := candidates[:0]
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Email), q) {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	switch r.URL.Query().Get("sort") {
	case "created":
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		})
	default: // score, descending
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
	}

	rows := make([]candidateSummary, 0, len(candidates))
	for _, c := range candidates {
		row := candidateSummary{
			ID:          c.ID,
			Name:        c.Name,
			Email:       c.Email,
			Phone:       c.Phone,
			Status:      c.Status,
			Score:       c.Score,
			Answers:     len(c.Answers),
			CreatedAt:   c.CreatedAt,
			CompletedAt: c.CompletedAt,
		}
		if c.Status == model.StatusCompleted {
			row.Band = model.SummaryBand(c.Score)
		}
		rows = append(rows, row)
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidates": rows})
}

func (h *Handler) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidate": c})
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"questions": h.svc.Bank().All()})
}
