package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Engagement levels produced by the classifier
const (
	EngagementLow      = 0
	EngagementModerate = 1
	EngagementHigh     = 2
)

// Prediction represents a single stored inference result. Every successful
// manual or CSV prediction appends one record owned by the requesting user.
type Prediction struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID   uint   `gorm:"index;not null" json:"-"`
	Username string `gorm:"index;not null;type:varchar(30)" json:"username"`

	// Optional student identifier when a user records readings on behalf
	// of a monitored student.
	StudentID string `gorm:"index;type:varchar(64)" json:"student_id,omitempty"`

	InputFeatures  datatypes.JSON `gorm:"type:jsonb;not null" json:"input_features"`
	PredictedLevel int            `gorm:"not null" json:"predicted_engagement_level"`
	Feedback       string         `gorm:"type:text" json:"feedback,omitempty"`
	TopFeatures    datatypes.JSON `gorm:"type:jsonb" json:"top_features,omitempty"`
	Severities     datatypes.JSON `gorm:"type:jsonb" json:"severities,omitempty"`
	Timestamp      time.Time      `gorm:"index;not null" json:"timestamp"`
}

// TableName specifies the table name for Prediction
func (Prediction) TableName() string {
	return "predictions"
}

// EngagementLabel returns the human-readable name for the predicted level
func (p *Prediction) EngagementLabel() string {
	switch p.PredictedLevel {
	case EngagementLow:
		return "Low"
	case EngagementModerate:
		return "Moderate"
	case EngagementHigh:
		return "High"
	default:
		return "Unknown"
	}
}
