package model

import "time"

// FeedbackStatus tracks a feedback entry through review.
type FeedbackStatus string

const (
	FeedbackOpen     FeedbackStatus = "open"
	FeedbackResolved FeedbackStatus = "resolved"
)

// Feedback is a complaint or suggestion raised by a student.
type Feedback struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	StudentID uint           `json:"student_id" gorm:"index;not null"`
	Subject   string         `json:"subject" gorm:"size:255;not null"`
	Message   string         `json:"message" gorm:"type:text"`
	Status    FeedbackStatus `json:"status" gorm:"size:20;not null;default:'open'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
