package service

import (
	"context"

	"github.com/cpptutor/cpptutor-backend/internal/model"
	"github.com/cpptutor/cpptutor-backend/internal/repository"
	"github.com/cpptutor/cpptutor-backend/internal/response"
)

// AttemptService serves quiz attempt history.
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(attemptRepo *repository.AttemptRepository) *AttemptService {
	return &AttemptService{attemptRepo: attemptRepo}
}

// ListByUser retrieves a user's attempts with clamped pagination.
func (s *AttemptService) ListByUser(ctx context.Context, userID, page, perPage int) ([]model.QuizAttempt, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	attempts, total, err := s.attemptRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if attempts == nil {
		attempts = []model.QuizAttempt{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return attempts, pagination, nil
}
