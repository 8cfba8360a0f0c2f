package database

import (
	"log"
)

func (s *PostgreSQLStore) Initialize() error {
	log.Println("Initializing PostgresSQL Database.", "Initializing Tables")
	return s.InitTables()
}

func (s *PostgreSQLStore) InitTables() error {
	// users table
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
		username VARCHAR(30) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL,
		password_hash TEXT NOT NULL,
		token_version INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	);
	`

	// predictions table
	predictionsTable := `
	CREATE TABLE IF NOT EXISTS predictions (
		id INTEGER PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
		user_id INTEGER NOT NULL,
		username VARCHAR(30) NOT NULL,
		student_id VARCHAR(64),
		input_features JSONB NOT NULL,
		predicted_level INTEGER NOT NULL,
		feedback TEXT,
		top_features JSONB,
		severities JSONB,
		timestamp TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_predictions_username ON predictions (username);
	CREATE INDEX IF NOT EXISTS idx_predictions_student ON predictions (username, student_id);
	CREATE INDEX IF NOT EXISTS idx_predictions_timestamp ON predictions (timestamp);
	`

	for _, query := range []string{usersTable, predictionsTable} {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
