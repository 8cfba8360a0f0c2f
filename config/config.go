package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadENV loads the environment variables from .env if GO_ENV is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV         string
	DB_USER_NAME   string
	DB_PASSWORD    string
	DB_NAME        string
	DB_HOST        string
	DB_PORT        string
	DB_SSL_MODE    string
	PORT           int
	STORAGE_DRIVER string
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	// Redis Configuration
	REDIS_URL string
	// Classifier artifact
	ARTIFACT_PATH       string
	ARTIFACT_OBJECT_KEY string
	// Spaces (S3-compatible) object storage for artifacts
	SPACES_ACCESS_KEY string
	SPACES_SECRET_KEY string
	SPACES_BUCKET     string
	SPACES_REGION     string
	SPACES_ENDPOINT   string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	artifactPath := os.Getenv("ARTIFACT_PATH")
	if artifactPath == "" {
		artifactPath = "artifacts/model_bundle.json"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:         os.Getenv("GO_ENV"),
		DB_USER_NAME:   os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        os.Getenv("DB_NAME"),
		DB_HOST:        dbHost,
		DB_PORT:        dbPort,
		DB_SSL_MODE:    os.Getenv("DB_SSL_MODE"),
		PORT:           port,
		STORAGE_DRIVER: os.Getenv("STORAGE_DRIVER"),
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: os.Getenv("JWT_ISSUER"),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Artifact
		ARTIFACT_PATH:       artifactPath,
		ARTIFACT_OBJECT_KEY: os.Getenv("ARTIFACT_OBJECT_KEY"),
		// Spaces
		SPACES_ACCESS_KEY: os.Getenv("SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY: os.Getenv("SPACES_SECRET_KEY"),
		SPACES_BUCKET:     os.Getenv("SPACES_BUCKET"),
		SPACES_REGION:     os.Getenv("SPACES_REGION"),
		SPACES_ENDPOINT:   os.Getenv("SPACES_ENDPOINT"),
	}

	return envVariables, nil
}
