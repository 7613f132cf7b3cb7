package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"rscasurvey/internal/model"
	"rscasurvey/internal/service"
)

// SessionHandler handles participant session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create handles POST /api/sessions
// @Summary Start a session
// @Tags sessions
// @Produce json
// @Success 201 {object} model.CreateSessionResponse
// @Router /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionSvc.Create(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.CreateSessionResponse{SessionID: session.SessionID})
}

// Get handles GET /api/sessions/{id}
// @Summary Get a session with its background profile
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.SessionView
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.View(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update handles PUT /api/sessions/{id}
// @Summary Set the study variant or vignette
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body model.SessionUpdate true "Metadata"
// @Success 200 {object} model.Session
// @Failure 400 {object} map[string]string
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.SessionUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.UpdateMetadata(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SubmitAnswer handles POST /api/sessions/{id}/answers
// @Summary Upsert an answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body model.SubmitAnswerRequest true "Answer"
// @Success 200 {object} model.Session
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/answers [post]
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == 0 {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	session, err := h.sessionSvc.SubmitAnswer(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Complete handles POST /api/sessions/{id}/complete
// @Summary Mark a session completed
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.Session
// @Router /sessions/{id}/complete [post]
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionSvc.Complete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Recordings handles GET /api/sessions/{id}/eeg-recordings
// @Summary List the recordings of a session
// @Tags eeg
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} model.EEGRecording
// @Router /sessions/{id}/eeg-recordings [get]
func (h *SessionHandler) Recordings(w http.ResponseWriter, r *http.Request) {
	recordings, err := h.sessionSvc.Recordings(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordings)
}
