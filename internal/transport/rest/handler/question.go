package handler

import (
	"net/http"

	"rscasurvey/internal/service"
)

// QuestionHandler serves the question bank
type QuestionHandler struct {
	questionSvc *service.QuestionService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questionSvc *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionSvc: questionSvc}
}

// List handles GET /api/questions
// @Summary List questions
// @Tags questions
// @Produce json
// @Success 200 {array} model.Question
// @Router /questions [get]
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questionSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}
