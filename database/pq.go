package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/focusmonitor/engagement-api/config"
	"github.com/focusmonitor/engagement-api/model"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a lookup matches no row. Ownership failures
// on deletes are reported the same way so callers cannot distinguish
// "wrong owner" from "no such record".
var ErrNotFound = errors.New("record not found")

// Storage defines the interface that all database implementations must
// satisfy. Handlers depend on this narrow surface rather than a concrete
// driver; the GORM store is the default and the raw lib/pq store remains
// available via STORAGE_DRIVER=pq.
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// GetDB returns *gorm.DB for GORMStore, *sql.DB for PostgreSQLStore
	GetDB() interface{}

	// Credential store
	CreateUser(user *model.User) error
	GetUserByUsername(username string) (*model.User, error)
	UserExists(username string) (bool, error)

	// Prediction history store
	AppendPrediction(prediction *model.Prediction) error
	ListPredictionsByUser(username string, limit int) ([]model.Prediction, error)
	ListPredictionsByStudent(username, studentID string) ([]model.Prediction, error)
	DeletePrediction(username string, id uint) error
}

// PostgreSQLStore is the raw database/sql implementation of Storage
type PostgreSQLStore struct {
	db *sql.DB
}

// Start opens a raw PostgreSQL connection using lib/pq
func Start() (*PostgreSQLStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST,
		getEnv.DB_PORT,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		fmt.Println("Unable to Start PostgresSQL Database.")
		return nil, err
	}

	log.Println("Successfully connected to PostgresSQL Database.")
	return &PostgreSQLStore{
		db: db,
	}, nil
}

func (s *PostgreSQLStore) Init() error {
	log.Println("Initializing PostgresSQL Database.")
	return s.Initialize()
}

func (s *PostgreSQLStore) Close() error {
	log.Println("Closing PostgresSQL Database.")
	return s.db.Close()
}

// HealthCheck verifies the database connection is alive
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}

// GetDB returns the underlying *sql.DB
func (s *PostgreSQLStore) GetDB() interface{} {
	return s.db
}
