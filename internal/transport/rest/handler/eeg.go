package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"rscasurvey/internal/service"
)

// EEGHandler drives the recorder slot
type EEGHandler struct {
	recorderSvc *service.RecorderService
}

// NewEEGHandler creates a new EEG handler
func NewEEGHandler(recorderSvc *service.RecorderService) *EEGHandler {
	return &EEGHandler{recorderSvc: recorderSvc}
}

// Start handles POST /api/sessions/{id}/questions/{qid}/start-eeg
// @Summary Start recording for a question
// @Tags eeg
// @Produce json
// @Param id path string true "Session ID"
// @Param qid path int true "Question ID"
// @Success 200 {object} model.RecorderSlot
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/questions/{qid}/start-eeg [post]
func (h *EEGHandler) Start(w http.ResponseWriter, r *http.Request) {
	qid, ok := questionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	slot, err := h.recorderSvc.Start(r.Context(), mux.Vars(r)["id"], qid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

// Stop handles POST /api/sessions/{id}/questions/{qid}/stop-eeg
// @Summary Stop recording and store it
// @Tags eeg
// @Produce json
// @Param id path string true "Session ID"
// @Param qid path int true "Question ID"
// @Success 200 {object} model.EEGRecording
// @Failure 409 {object} map[string]string
// @Router /sessions/{id}/questions/{qid}/stop-eeg [post]
func (h *EEGHandler) Stop(w http.ResponseWriter, r *http.Request) {
	qid, ok := questionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	recording, err := h.recorderSvc.Stop(r.Context(), mux.Vars(r)["id"], qid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recording)
}

// Status handles GET /api/eeg/status
// @Summary Report the active recording
// @Tags eeg
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /eeg/status [get]
func (h *EEGHandler) Status(w http.ResponseWriter, r *http.Request) {
	slot := h.recorderSvc.Active()
	if slot == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"recording": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recording": true, "active": slot})
}
