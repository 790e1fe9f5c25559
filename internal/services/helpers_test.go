package service_test

import (
	"context"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/stretchr/testify/mock"
)

type mockSubmissionStore struct {
	mock.Mock
}

func (m *mockSubmissionStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return m.Called(ctx, submission).Error(0)
}

func (m *mockSubmissionStore) ListSubmissionsByOrder(ctx context.Context, orderID string, limit int) ([]*models.Submission, error) {
	ret := m.Called(ctx, orderID, limit)

	var r0 []*models.Submission
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Submission)
	}

	return r0, ret.Error(1)
}

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) Send(ctx context.Context, req *models.EmailNotificationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockEmailService) GetSendGridClient() *sg.Client {
	return nil
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) CheckAccessRateLimit(ctx context.Context, key string) (bool, int, int, error) {
	ret := m.Called(ctx, key)

	return ret.Bool(0), ret.Int(1), ret.Int(2), ret.Error(3)
}
