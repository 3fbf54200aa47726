package service

import (
	"context"

	"hostelportal/internal/auth"
	apperrors "hostelportal/internal/errors"
	"hostelportal/internal/model"
	"hostelportal/internal/repository"
)

// FeedbackService lists feedback as seen by the caller.
type FeedbackService interface {
	ListFeedback(ctx context.Context, claims *auth.Claims) ([]model.Feedback, error)
}

type feedbackService struct {
	repo repository.FeedbackRepository
}

// NewFeedbackService builds a FeedbackService.
func NewFeedbackService(repo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo}
}

// ListFeedback returns all feedback to staff and a student's own entries to
// that student.
func (s *feedbackService) ListFeedback(ctx context.Context, claims *auth.Claims) ([]model.Feedback, error) {
	switch claims.Role {
	case model.RoleAdmin, model.RoleWarden:
		return s.repo.List(ctx)
	case model.RoleStudent:
		return s.repo.ListByStudent(ctx, claims.UserID)
	default:
		return nil, apperrors.ErrForbidden
	}
}
