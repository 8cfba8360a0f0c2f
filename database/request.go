package database

import (
	"database/sql"

	"github.com/focusmonitor/engagement-api/model"
)

func (s *PostgreSQLStore) CreateUser(user *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`
	return s.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (s *PostgreSQLStore) GetUserByUsername(username string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, token_version, created_at, updated_at
		FROM users
		WHERE username = $1 AND deleted_at IS NULL;
	`
	user := new(model.User)
	err := s.db.QueryRow(query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.TokenVersion,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *PostgreSQLStore) UserExists(username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND deleted_at IS NULL);`

	var exists bool
	if err := s.db.QueryRow(query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PostgreSQLStore) AppendPrediction(prediction *model.Prediction) error {
	query := `
		INSERT INTO predictions
			(user_id, username, student_id, input_features, predicted_level,
			 feedback, top_features, severities, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at;
	`
	return s.db.QueryRow(
		query,
		prediction.UserID,
		prediction.Username,
		prediction.StudentID,
		prediction.InputFeatures,
		prediction.PredictedLevel,
		prediction.Feedback,
		prediction.TopFeatures,
		prediction.Severities,
		prediction.Timestamp,
	).Scan(&prediction.ID, &prediction.CreatedAt, &prediction.UpdatedAt)
}

func (s *PostgreSQLStore) ListPredictionsByUser(username string, limit int) ([]model.Prediction, error) {
	query := `
		SELECT id, user_id, username, student_id, input_features, predicted_level,
		       feedback, top_features, severities, timestamp, created_at, updated_at
		FROM predictions
		WHERE username = $1 AND deleted_at IS NULL
		ORDER BY timestamp DESC
		LIMIT $2;
	`
	rows, err := s.db.Query(query, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPredictions(rows)
}

func (s *PostgreSQLStore) ListPredictionsByStudent(username, studentID string) ([]model.Prediction, error) {
	query := `
		SELECT id, user_id, username, student_id, input_features, predicted_level,
		       feedback, top_features, severities, timestamp, created_at, updated_at
		FROM predictions
		WHERE username = $1 AND student_id = $2 AND deleted_at IS NULL
		ORDER BY id;
	`
	rows, err := s.db.Query(query, username, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPredictions(rows)
}

// DeletePrediction removes a record only when it belongs to the user.
// A nonexistent id and a non-owned record both report ErrNotFound.
func (s *PostgreSQLStore) DeletePrediction(username string, id uint) error {
	query := `DELETE FROM predictions WHERE id = $1 AND username = $2;`

	result, err := s.db.Exec(query, id, username)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPredictions(rows *sql.Rows) ([]model.Prediction, error) {
	predictions := []model.Prediction{}
	for rows.Next() {
		prediction, err := scanIntoPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, *prediction)
	}
	return predictions, rows.Err()
}

func scanIntoPrediction(rows *sql.Rows) (*model.Prediction, error) {
	prediction := new(model.Prediction)
	var studentID sql.NullString
	err := rows.Scan(
		&prediction.ID,
		&prediction.UserID,
		&prediction.Username,
		&studentID,
		&prediction.InputFeatures,
		&prediction.PredictedLevel,
		&prediction.Feedback,
		&prediction.TopFeatures,
		&prediction.Severities,
		&prediction.Timestamp,
		&prediction.CreatedAt,
		&prediction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	prediction.StudentID = studentID.String
	return prediction, nil
}
