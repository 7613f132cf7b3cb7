package service

import (
	"context"
	"fmt"
	"log"

	"rscasurvey/internal/model"
	"rscasurvey/internal/questionbank"
	"rscasurvey/internal/repository"
)

// QuestionService serves the question bank
type QuestionService struct {
	questionRepo repository.QuestionRepo
}

// NewQuestionService creates a new question service
func NewQuestionService(questionRepo repository.QuestionRepo) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
	}
}

// List returns every question ordered by id
func (s *QuestionService) List(ctx context.Context) ([]*model.Question, error) {
	questions, err := s.questionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// Get returns ErrUnknownQuestion when id is not in the bank
func (s *QuestionService) Get(ctx context.Context, id int) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if q == nil {
		return nil, ErrUnknownQuestion
	}
	return q, nil
}

// SeedIfEmpty inserts the static bank when the collection has no questions
func (s *QuestionService) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.questionRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	return s.insertBank(ctx)
}

// Reseed drops every stored question and inserts the static bank
func (s *QuestionService) Reseed(ctx context.Context) (int, error) {
	if err := s.questionRepo.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear questions: %w", err)
	}
	return s.insertBank(ctx)
}

func (s *QuestionService) insertBank(ctx context.Context) (int, error) {
	bank := questionbank.Questions()
	if err := questionbank.Validate(bank); err != nil {
		return 0, fmt.Errorf("invalid question bank: %w", err)
	}
	if err := s.questionRepo.InsertMany(ctx, bank); err != nil {
		return 0, fmt.Errorf("failed to insert questions: %w", err)
	}
	log.Printf("[Questions] Seeded %d questions", len(bank))
	return len(bank), nil
}
