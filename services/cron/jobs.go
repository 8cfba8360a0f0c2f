package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/focusmonitor/engagement-api/model"
	"github.com/focusmonitor/engagement-api/utils/auth"
	"gorm.io/gorm/clause"
)

// CleanupTokenBlacklist purges blacklist entries whose tokens have expired
// on their own. Runs hourly.
func (m *CronManager) CleanupTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "cleanup_token_blacklist"

	blacklist := auth.NewBlacklistService(m.db)
	if err := blacklist.CleanupExpiredTokens(ctx); err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to purge blacklist: %w", err))
		return
	}

	m.logJobComplete(jobName, "Expired blacklist entries purged")
}

// AggregatePredictionStats recomputes yesterday's per-level prediction
// counts into the prediction_stats table. Runs daily.
func (m *CronManager) AggregatePredictionStats() {
	jobName := "aggregate_prediction_stats"

	day := time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	next := day.AddDate(0, 0, 1)

	type levelCount struct {
		PredictedLevel int
		Count          int64
	}

	var counts []levelCount
	err := m.db.Model(&model.Prediction{}).
		Select("predicted_level, COUNT(*) AS count").
		Where("timestamp >= ? AND timestamp < ?", day, next).
		Group("predicted_level").
		Scan(&counts).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to aggregate predictions: %w", err))
		return
	}

	for _, c := range counts {
		stat := model.PredictionStat{
			Day:   day,
			Level: c.PredictedLevel,
			Count: c.Count,
		}
		err := m.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day"}, {Name: "level"}},
			DoUpdates: clause.AssignmentColumns([]string{"count", "updated_at"}),
		}).Create(&stat).Error
		if err != nil {
			m.logJobError(jobName, fmt.Errorf("failed to upsert stat for level %d: %w", c.PredictedLevel, err))
			return
		}
	}

	m.logJobComplete(jobName, fmt.Sprintf("Aggregated %d level buckets for %s", len(counts), day.Format("2006-01-02")))
}

// CleanupResetTokens removes password reset tokens that expired or were
// consumed more than a day ago. Runs daily.
func (m *CronManager) CleanupResetTokens() {
	jobName := "cleanup_reset_tokens"

	cutoff := time.Now().AddDate(0, 0, -1)
	result := m.db.
		Where("expires_at < ? OR (used_at IS NOT NULL AND used_at < ?)", cutoff, cutoff).
		Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete reset tokens: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d stale reset tokens", result.RowsAffected))
}
