package service

import (
	"context"
	"log/slog"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/metrics"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/sendgrid"
)

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	ListSubmissionsByOrder(ctx context.Context, orderID string, limit int) ([]*models.Submission, error)
}

// Journal records every resolved confirmation: metrics always, the database and the
// cancellation e-mail when they are configured. Failures are logged and swallowed.
type Journal struct {
	store  SubmissionStore
	email  sendgrid.EmailService
	logger *slog.Logger
}

func NewJournal(store SubmissionStore, email sendgrid.EmailService, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}

	return &Journal{store: store, email: email, logger: logger}
}

// Submitted implements wizard.Observer.
func (j *Journal) Submitted(ctx context.Context, submission models.Submission) {

	metrics.ObserveSubmission(string(submission.Flow), string(submission.Outcome))

	logger := j.logger.With(
		slog.String("session_id", submission.SessionID.String()),
		slog.String("order_id", submission.OrderID),
		slog.String("flow", string(submission.Flow)),
	)

	if j.store != nil {
		if err := j.store.CreateSubmission(ctx, &submission); err != nil {
			logger.Error("Failed to journal submission", slog.String("error", err.Error()))
		}
	}

	if j.email == nil || submission.Flow != models.FlowCancel || submission.Outcome != models.ConfirmSuccess {
		return
	}

	if err := j.email.Send(ctx, sendgrid.CancellationRequest(submission.Email, submission.OrderID)); err != nil {
		logger.Error("Failed to send cancellation e-mail", slog.String("error", err.Error()))
		return
	}

	logger.Info("Cancellation e-mail sent")
}

// History lists the journal entries for an order, newest first.
func (j *Journal) History(ctx context.Context, orderID string, limit int) ([]*models.Submission, error) {
	if j.store == nil {
		return []*models.Submission{}, nil
	}

	return j.store.ListSubmissionsByOrder(ctx, orderID, limit)
}
