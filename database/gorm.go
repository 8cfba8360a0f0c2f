package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/focusmonitor/engagement-api/config"
	"github.com/focusmonitor/engagement-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	// Build DSN (Data Source Name)
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	err := s.db.AutoMigrate(
		&model.User{},
		&model.Prediction{},
		&model.PredictionStat{},
		&model.JWTTokenBlacklist{},
		&model.PasswordResetToken{},
		&model.CronJobLog{},
	)
	if err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Println("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in middleware and services
func (s *GORMStore) GetDB() interface{} {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *GORMStore) CreateUser(user *model.User) error {
	return s.db.Create(user).Error
}

func (s *GORMStore) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GORMStore) UserExists(username string) (bool, error) {
	var count int64
	err := s.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (s *GORMStore) AppendPrediction(prediction *model.Prediction) error {
	return s.db.Create(prediction).Error
}

func (s *GORMStore) ListPredictionsByUser(username string, limit int) ([]model.Prediction, error) {
	predictions := []model.Prediction{}
	err := s.db.Where("username = ?", username).
		Order("timestamp DESC").
		Limit(limit).
		Find(&predictions).Error
	return predictions, err
}

func (s *GORMStore) ListPredictionsByStudent(username, studentID string) ([]model.Prediction, error) {
	predictions := []model.Prediction{}
	err := s.db.Where("username = ? AND student_id = ?", username, studentID).
		Order("id").
		Find(&predictions).Error
	return predictions, err
}

// DeletePrediction removes a record only when it belongs to the user.
// A nonexistent id and a non-owned record both report ErrNotFound.
func (s *GORMStore) DeletePrediction(username string, id uint) error {
	result := s.db.Where("id = ? AND username = ?", id, username).Delete(&model.Prediction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
