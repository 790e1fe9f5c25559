package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/addressbook"
	appErrors "github.com/aaravmahajanofficial/selfservice-widget/internal/errors"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/metrics"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	repository "github.com/aaravmahajanofficial/selfservice-widget/internal/repositories"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/wizard"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
	"github.com/google/uuid"
)

const historyLimit = 20

type WizardService interface {
	Open(ctx context.Context) (*OpenedSession, error)
	Discard(ctx context.Context, id uuid.UUID) error
	View(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	SubmitAccess(ctx context.Context, id uuid.UUID, req *models.AccessRequest) (*wizard.View, error)
	Reset(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	ChooseFlow(ctx context.Context, id uuid.UUID, flow models.FlowType) (*wizard.View, error)
	Back(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	Review(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	Confirm(ctx context.Context, id uuid.UUID, req *models.ConfirmRequest) (*wizard.View, error)
	CloseOutcome(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	SetContact(ctx context.Context, id uuid.UUID, req *models.ContactRequest) (*wizard.View, error)
	SetCancelConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) (*wizard.View, error)
	SelectAddress(ctx context.Context, id uuid.UUID, addressID string) (*wizard.View, error)
	RefreshAddresses(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, addressID string, input *addressapi.AddressInput) (*wizard.View, error)
	OpenDraft(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	CloseDraft(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, req *models.DraftUpdateRequest) (*wizard.View, error)
	RetrySync(ctx context.Context, id uuid.UUID) (*wizard.View, error)
	History(ctx context.Context, id uuid.UUID) ([]*models.Submission, error)
}

type OpenedSession struct {
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expiresIn"`
	View      wizard.View `json:"view"`
}

type WizardDeps struct {
	Orders    wizard.OrderSource
	Addresses addressapi.API
	Verifier  wizard.Verifier
	Journal   *Journal
	Limiter   repository.RateLimitRepository
	Tokens    *TokenIssuer
	Scheduler wizard.Scheduler
	Logger    *slog.Logger
}

var _ WizardService = (*Wizard)(nil)

// Wizard keeps the live wizard sessions in memory, one per browser visit.
type Wizard struct {
	cfg  wizard.Config
	ttl  time.Duration
	deps WizardDeps

	mu       sync.RWMutex
	sessions map[uuid.UUID]*wizard.Session
}

func NewWizardService(cfg wizard.Config, sessionTTL time.Duration, deps WizardDeps) *Wizard {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Wizard{
		cfg:      cfg,
		ttl:      sessionTTL,
		deps:     deps,
		sessions: make(map[uuid.UUID]*wizard.Session),
	}
}

// Open implements WizardService.
func (s *Wizard) Open(ctx context.Context) (*OpenedSession, error) {

	wizardDeps := wizard.Deps{
		Orders:    s.deps.Orders,
		Addresses: s.deps.Addresses,
		Verifier:  s.deps.Verifier,
		Scheduler: s.deps.Scheduler,
		Logger:    s.deps.Logger,
	}
	if s.deps.Journal != nil {
		wizardDeps.Observer = s.deps.Journal
	}

	session := wizard.NewSession(s.cfg, wizardDeps)

	token, expiresAt, err := s.deps.Tokens.Issue(session.ID())
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate session token").WithError(err)
	}

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	metrics.SessionOpened()

	return &OpenedSession{
		Token:     token,
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
		View:      session.View(),
	}, nil
}

// Discard implements WizardService.
func (s *Wizard) Discard(ctx context.Context, id uuid.UUID) error {

	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return appErrors.NotFoundError("Sessione non trovata.")
	}

	metrics.SessionClosed()

	return nil
}

func (s *Wizard) lookup(id uuid.UUID) (*wizard.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, appErrors.NotFoundError("Sessione non trovata.")
	}

	return session, nil
}

// apply runs action against the session and renders the resulting view.
func (s *Wizard) apply(id uuid.UUID, action func(*wizard.Session) error) (*wizard.View, error) {

	session, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	if err := action(session); err != nil {
		return nil, translate(err)
	}

	view := session.View()

	return &view, nil
}

// View implements WizardService.
func (s *Wizard) View(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, func(*wizard.Session) error { return nil })
}

// SubmitAccess implements WizardService.
func (s *Wizard) SubmitAccess(ctx context.Context, id uuid.UUID, req *models.AccessRequest) (*wizard.View, error) {

	if _, err := s.lookup(id); err != nil {
		return nil, err
	}

	orderID := strings.TrimSpace(req.OrderID)

	if s.deps.Limiter != nil && orderID != "" {
		allowed, _, retryAfter, err := s.deps.Limiter.CheckAccessRateLimit(ctx, repository.AccessAttemptsKey(orderID))
		if err != nil {
			return nil, appErrors.ThirdPartyError("Rate limit check failed").WithError(err)
		}

		if !allowed {
			return nil, appErrors.TooManyRequestsError("Troppi tentativi. Riprova tra qualche istante.").
				WithDetail(fmt.Sprintf("retry after %d seconds", retryAfter))
		}
	}

	return s.apply(id, func(session *wizard.Session) error {
		return session.SubmitAccess(req.OrderID, req.Email)
	})
}

// Reset implements WizardService.
func (s *Wizard) Reset(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		session.Reset()
		return nil
	})
}

// ChooseFlow implements WizardService.
func (s *Wizard) ChooseFlow(ctx context.Context, id uuid.UUID, flow models.FlowType) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.ChooseFlow(flow)
	})
}

// Back implements WizardService.
func (s *Wizard) Back(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, (*wizard.Session).Back)
}

// Review implements WizardService.
func (s *Wizard) Review(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, (*wizard.Session).Review)
}

// Confirm implements WizardService.
func (s *Wizard) Confirm(ctx context.Context, id uuid.UUID, req *models.ConfirmRequest) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.Confirm(ctx, req.DeliveryInstructions)
	})
}

// CloseOutcome implements WizardService.
func (s *Wizard) CloseOutcome(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, (*wizard.Session).Close)
}

// SetContact implements WizardService.
func (s *Wizard) SetContact(ctx context.Context, id uuid.UUID, req *models.ContactRequest) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.SetContact(req.Email, req.Phone)
	})
}

// SetCancelConfirmed implements WizardService.
func (s *Wizard) SetCancelConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.SetCancelConfirmed(confirmed)
	})
}

// SelectAddress implements WizardService.
func (s *Wizard) SelectAddress(ctx context.Context, id uuid.UUID, addressID string) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.SelectAddress(addressID)
	})
}

// RefreshAddresses implements WizardService.
func (s *Wizard) RefreshAddresses(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.RefreshAddresses(ctx)
	})
}

// UpdateAddress implements WizardService.
func (s *Wizard) UpdateAddress(ctx context.Context, id uuid.UUID, addressID string, input *addressapi.AddressInput) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.UpdateAddress(ctx, addressID, *input)
	})
}

// OpenDraft implements WizardService.
func (s *Wizard) OpenDraft(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, (*wizard.Session).OpenDraft)
}

// CloseDraft implements WizardService.
func (s *Wizard) CloseDraft(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, (*wizard.Session).CloseDraft)
}

// UpdateDraft implements WizardService.
func (s *Wizard) UpdateDraft(ctx context.Context, id uuid.UUID, req *models.DraftUpdateRequest) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.UpdateDraft(req.Field, req.Value)
	})
}

// RetrySync implements WizardService.
func (s *Wizard) RetrySync(ctx context.Context, id uuid.UUID) (*wizard.View, error) {
	return s.apply(id, func(session *wizard.Session) error {
		return session.RetrySync(ctx)
	})
}

// History implements WizardService.
func (s *Wizard) History(ctx context.Context, id uuid.UUID) ([]*models.Submission, error) {

	session, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	orderID := session.OrderID()
	if orderID == "" {
		return nil, translate(wizard.ErrInvalidTransition)
	}

	if s.deps.Journal == nil {
		return []*models.Submission{}, nil
	}

	submissions, err := s.deps.Journal.History(ctx, orderID, historyLimit)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list submissions").WithError(err)
	}

	return submissions, nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed.
func (s *Wizard) Sweep(now time.Time) int {

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for id, session := range s.sessions {
		if now.Sub(session.LastActivity()) > s.ttl {
			delete(s.sessions, id)
			metrics.SessionClosed()
			removed++
		}
	}

	return removed
}

// Run sweeps idle sessions until ctx is done.
func (s *Wizard) Run(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				s.deps.Logger.Info("Swept idle wizard sessions", slog.Int("removed", removed))
			}
		}
	}
}

func (s *Wizard) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// translate maps wizard and address errors onto the API error taxonomy.
func translate(err error) error {

	var validationErr *wizard.ValidationError
	if errors.As(err, &validationErr) {
		return appErrors.ValidationError("Dati non validi.").WithFields(validationErr.Fields).WithError(err)
	}

	switch {
	case errors.Is(err, wizard.ErrInvalidTransition):
		return appErrors.ConflictError("Azione non consentita in questo momento.").WithError(err)
	case errors.Is(err, wizard.ErrEditingDisabled):
		return appErrors.ConflictError("L'ordine non puo' essere modificato.").WithError(err)
	case errors.Is(err, wizard.ErrNotReady):
		return appErrors.ConflictError("Nessuna modifica da confermare.").WithError(err)
	}

	var apiErr *addressapi.APIError
	if errors.As(err, &apiErr) {
		return appErrors.NewAppError(string(apiErr.Code), addressbook.Message(apiErr), addressStatus(apiErr.Code)).
			WithFields(apiErr.Fields).
			WithError(err)
	}

	return appErrors.InternalError("An unexpected error occured").WithError(err)
}

func addressStatus(code addressapi.ErrorCode) int {
	switch code {
	case addressapi.CodeInvalidZip, addressapi.CodeInvalidPhone, addressapi.CodeRequiredField, addressapi.CodeAddressNotFound:
		return http.StatusUnprocessableEntity
	case addressapi.CodeForbidden:
		return http.StatusForbidden
	case addressapi.CodeAddressExists, addressapi.CodeOrderLocked:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
