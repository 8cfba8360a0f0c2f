package model

import (
	"time"
)

// PredictionStat holds daily aggregated prediction counts per engagement
// level, maintained by the stats cron job.
type PredictionStat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Day       time.Time `gorm:"type:date;uniqueIndex:idx_stat_day_level;not null" json:"day"`
	Level     int       `gorm:"uniqueIndex:idx_stat_day_level;not null" json:"level"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for PredictionStat
func (PredictionStat) TableName() string {
	return "prediction_stats"
}
