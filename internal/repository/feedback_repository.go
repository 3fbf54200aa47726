package repository

import (
	"context"

	"gorm.io/gorm"

	"hostelportal/internal/model"
)

// FeedbackRepository defines persistence operations for feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *model.Feedback) error
	List(ctx context.Context) ([]model.Feedback, error)
	ListByStudent(ctx context.Context, studentID uint) ([]model.Feedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository builds a GORM-backed feedback repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *model.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) List(ctx context.Context) ([]model.Feedback, error) {
	var items []model.Feedback
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *feedbackRepository) ListByStudent(ctx context.Context, studentID uint) ([]model.Feedback, error) {
	var items []model.Feedback
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
