package sendgrid

import (
	"context"
	"fmt"
	"html"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService interface {
	Send(ctx context.Context, req *models.EmailNotificationRequest) error
	GetSendGridClient() *sg.Client
}

type emailService struct {
	client    *sg.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) EmailService {
	return &emailService{client: sg.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

// Send implements EmailService.
func (e *emailService) Send(ctx context.Context, req *models.EmailNotificationRequest) error {

	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail("", req.To)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)

	for _, cc := range req.CC {
		personalization.AddCCs(mail.NewEmail("", cc))
	}

	for _, bcc := range req.BCC {
		personalization.AddBCCs(mail.NewEmail("", bcc))
	}

	personalization.Subject = req.Subject
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", req.Content))

	if req.HTMLContent != "" {
		message.AddContent(mail.NewContent("text/html", req.HTMLContent))
	}

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}

// GetSendGridClient provides access to the internal sendgrid.Client.
func (e *emailService) GetSendGridClient() *sg.Client {
	return e.client
}

// CancellationRequest builds the confirmation sent after a cancellation request is accepted.
func CancellationRequest(to, orderID string) *models.EmailNotificationRequest {
	return &models.EmailNotificationRequest{
		To:      to,
		Subject: fmt.Sprintf("Richiesta di annullamento ordine %s", orderID),
		Content: fmt.Sprintf("Abbiamo ricevuto la tua richiesta di annullamento per l'ordine %s. "+
			"Ti confermeremo l'esito via email.", orderID),
		HTMLContent: fmt.Sprintf("<p>Abbiamo ricevuto la tua richiesta di annullamento per l'ordine <strong>%s</strong>.</p>"+
			"<p>Ti confermeremo l'esito via email.</p>", html.EscapeString(orderID)),
	}
}
