package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils"
	"github.com/google/uuid"
)

type SubmissionRepository struct {
	DB *sql.DB
}

func NewSubmissionRepo(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) CreateSubmission(ctx context.Context, submission *models.Submission) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}

	diff := submission.Diff
	if diff == nil {
		diff = []models.EditableDiff{}
	}

	diffJSON, err := json.Marshal(diff)
	if err != nil {
		return fmt.Errorf("failed to marshal diff: %w", err)
	}

	query := `
		INSERT INTO wizard_submissions (id, session_id, order_id, email, flow, outcome, diff, address_id, sync_status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at
	`

	err = r.DB.QueryRowContext(dbCtx, query,
		submission.ID, submission.SessionID, submission.OrderID, submission.Email, submission.Flow,
		submission.Outcome, diffJSON, submission.AddressID, submission.SyncStatus, submission.Error,
	).Scan(&submission.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil

}

func (r *SubmissionRepository) ListSubmissionsByOrder(ctx context.Context, orderID string, limit int) ([]*models.Submission, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if limit < 1 || limit > 50 {
		limit = 50
	}

	query := `
		SELECT id, session_id, order_id, email, flow, outcome, diff, address_id, sync_status, error_message, created_at
		FROM wizard_submissions
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission

	for rows.Next() {
		submission := &models.Submission{}

		var diff []byte
		var addressID, syncStatus, errorMessage sql.NullString

		if err := rows.Scan(&submission.ID, &submission.SessionID, &submission.OrderID, &submission.Email,
			&submission.Flow, &submission.Outcome, &diff, &addressID, &syncStatus, &errorMessage, &submission.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}

		if err := json.Unmarshal(diff, &submission.Diff); err != nil {
			return nil, fmt.Errorf("failed to decode submission diff: %w", err)
		}

		submission.AddressID = addressID.String
		submission.SyncStatus = syncStatus.String
		submission.Error = errorMessage.String

		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return submissions, nil

}
