package handler

import (
	"net/http"

	"rscasurvey/internal/service"
)

// ProfileHandler serves background profile reporting
type ProfileHandler struct {
	profileSvc *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileSvc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// Stats handles GET /api/background-profiles/stats
// @Summary Aggregate background profile statistics
// @Tags profiles
// @Produce json
// @Success 200 {object} model.ProfileStats
// @Router /background-profiles/stats [get]
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.profileSvc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
