package database

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/focusmonitor/engagement-api/model"
	"github.com/focusmonitor/engagement-api/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedDemoUser(); err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	if err := s.SeedSamplePredictions(); err != nil {
		return fmt.Errorf("failed to seed sample predictions: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// SeedDemoUser creates a demo account from DEMO_USERNAME and DEMO_PASSWORD
func (s *Seeder) SeedDemoUser() error {
	demoUsername := os.Getenv("DEMO_USERNAME")
	demoPassword := os.Getenv("DEMO_PASSWORD")

	if demoUsername == "" || demoPassword == "" {
		log.Println("DEMO_USERNAME and DEMO_PASSWORD not set, skipping demo user creation")
		return nil
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("username = ?", demoUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo user already exists, skipping...")
		return nil
	}

	passwordHash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	demoEmail := os.Getenv("DEMO_EMAIL")
	if demoEmail == "" {
		demoEmail = demoUsername + "@example.com"
	}

	user := model.User{
		Username:     demoUsername,
		Email:        demoEmail,
		PasswordHash: passwordHash,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return err
	}

	log.Printf("Created demo user %q", demoUsername)
	return nil
}

// SeedSamplePredictions gives the demo user a small history to browse
func (s *Seeder) SeedSamplePredictions() error {
	demoUsername := os.Getenv("DEMO_USERNAME")
	if demoUsername == "" {
		return nil
	}

	var user model.User
	if err := s.db.Where("username = ?", demoUsername).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	var count int64
	if err := s.db.Model(&model.Prediction{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo predictions already exist, skipping...")
		return nil
	}

	samples := []struct {
		heartRate float64
		skin      float64
		eeg       float64
		level     int
		student   string
	}{
		{62.4, 0.71, 13.6, model.EngagementHigh, "S-1001"},
		{48.0, 0.35, 6.2, model.EngagementModerate, "S-1001"},
		{33.5, 0.12, 2.8, model.EngagementLow, "S-1002"},
	}

	now := time.Now().UTC()
	for i, sample := range samples {
		features, err := json.Marshal(map[string]float64{
			"HeartRate":       sample.heartRate,
			"SkinConductance": sample.skin,
			"EEG":             sample.eeg,
		})
		if err != nil {
			return err
		}

		prediction := model.Prediction{
			UserID:         user.ID,
			Username:       user.Username,
			StudentID:      sample.student,
			InputFeatures:  datatypes.JSON(features),
			PredictedLevel: sample.level,
			Timestamp:      now.Add(-time.Duration(i) * time.Hour),
		}

		if err := s.db.Create(&prediction).Error; err != nil {
			return err
		}
	}

	log.Printf("Created %d sample predictions", len(samples))
	return nil
}

// RunSeeds is a helper to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
