// Package wizard implements the self-service order wizard: access lookup, flow
// selection, per-flow editing, review and confirmation, one Session per visit.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/addressbook"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("wizard: action not allowed in the current state")
	ErrEditingDisabled   = errors.New("wizard: order cannot be edited")
	ErrNotReady          = errors.New("wizard: change is not ready")
)

const (
	DefaultContactPhone = "+39 02 1234 5678"

	msgOrderIDRequired = "Order ID richiesto."
	msgInvalidEmail    = "Email non valida."
	msgOrderNotFound   = "Ordine non trovato."
)

// ValidationError carries field-level messages for a rejected access submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "wizard: invalid access data"
}

type Config struct {
	LoadDelayMin time.Duration
	LoadDelayMax time.Duration
	ConfirmDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		LoadDelayMin: 900 * time.Millisecond,
		LoadDelayMax: 1400 * time.Millisecond,
		ConfirmDelay: 900 * time.Millisecond,
	}
}

type OrderSource interface {
	FetchOrder(ctx context.Context, orderID, email string) (*models.Order, error)
}

// Verifier issues the diagnostic order lookup. Its outcome is never consumed.
type Verifier interface {
	Verify(ctx context.Context, orderID, email string)
}

// Observer is told about every resolved confirmation.
type Observer interface {
	Submitted(ctx context.Context, submission models.Submission)
}

type ObserverFunc func(ctx context.Context, submission models.Submission)

func (f ObserverFunc) Submitted(ctx context.Context, submission models.Submission) {
	f(ctx, submission)
}

type Deps struct {
	Orders    OrderSource
	Addresses addressapi.API
	Verifier  Verifier
	Observer  Observer
	Scheduler Scheduler
	Logger    *slog.Logger
	// Jitter returns a value in [0, n). Defaults to math/rand.
	Jitter func(n int64) int64
}

type Session struct {
	mu sync.Mutex

	id     uuid.UUID
	cfg    Config
	deps   Deps
	logger *slog.Logger

	seq          uint64
	lastActivity time.Time

	view         models.ViewState
	orderID      string
	email        string
	accessErrors map[string]string

	order  *models.Order
	isPaid bool
	book   *addressbook.Book

	step            int
	flow            models.FlowType
	current         models.EditableDetails
	baseline        models.EditableDetails
	draftOpen       bool
	cancelConfirmed bool

	status       models.ConfirmStatus
	diff         []models.EditableDiff
	lastAction   models.FlowType
	failure      string
	instructions string
	deliveryID   string
}

func NewSession(cfg Config, deps Deps) *Session {
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Jitter == nil {
		deps.Jitter = rand.Int64N
	}

	id := uuid.New()

	return &Session{
		id:           id,
		cfg:          cfg,
		deps:         deps,
		logger:       deps.Logger.With(slog.String("session_id", id.String())),
		view:         models.ViewAccess,
		status:       models.ConfirmIdle,
		lastActivity: time.Now(),
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastActivity
}

// caller holds s.mu
func (s *Session) touch() {
	s.lastActivity = time.Now()
}

// SubmitAccess validates the lookup form and, when valid, schedules the order load.
func (s *Session) SubmitAccess(orderID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if s.view != models.ViewAccess {
		return ErrInvalidTransition
	}

	orderID = strings.TrimSpace(orderID)
	email = strings.TrimSpace(email)

	fields := map[string]string{}
	if orderID == "" {
		fields["orderId"] = msgOrderIDRequired
	}
	if !utils.IsValidEmail(email) {
		fields["email"] = msgInvalidEmail
	}

	s.orderID = orderID
	s.email = email
	s.accessErrors = fields

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	s.view = models.ViewLoading
	s.seq++
	seq := s.seq

	s.logger.Info("Access submitted", slog.String("order_id", orderID), slog.String("email", email))

	s.deps.Scheduler.After(s.loadDelay(), func() {
		s.load(seq, orderID, email)
	})

	return nil
}

func (s *Session) loadDelay() time.Duration {
	spread := s.cfg.LoadDelayMax - s.cfg.LoadDelayMin
	if spread <= 0 {
		return s.cfg.LoadDelayMin
	}

	return s.cfg.LoadDelayMin + time.Duration(s.deps.Jitter(int64(spread)))
}

func (s *Session) stale(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.seq != seq
}

func (s *Session) load(seq uint64, orderID, email string) {
	if s.stale(seq) {
		s.logger.Debug("Discarding stale order load")
		return
	}

	ctx := context.Background()

	if s.deps.Verifier != nil {
		go s.deps.Verifier.Verify(ctx, orderID, email)
	}

	order, err := s.deps.Orders.FetchOrder(ctx, orderID, email)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.seq != seq {
			return
		}

		s.logger.Warn("Order fetch failed", slog.String("order_id", orderID), slog.String("error", err.Error()))
		s.view = models.ViewAccess
		s.accessErrors = map[string]string{"orderId": msgOrderNotFound}

		return
	}

	book := addressbook.New(s.deps.Addresses, email, s.logger)
	if err := book.Activate(ctx); err != nil {
		s.logger.Warn("Address list unavailable", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != seq {
		s.logger.Debug("Discarding stale order load")
		return
	}

	s.order = order
	s.isPaid = order.IsPaid()
	s.book = book
	s.current = models.EditableDetails{
		DeliveryAddresses:  toDeliveryAddresses(book.Addresses()),
		SelectedDeliveryID: book.SelectedID(),
		ContactEmail:       email,
		ContactPhone:       DefaultContactPhone,
	}
	s.baseline = s.current.Clone()

	s.view = models.ViewData
	s.step = 1
	s.flow = models.FlowNone
	s.draftOpen = false
	s.cancelConfirmed = false
	s.status = models.ConfirmIdle
	s.diff = nil
	s.lastAction = models.FlowNone
	s.failure = ""
	s.deliveryID = ""

	s.logger.Info("Order loaded",
		slog.String("order_id", orderID),
		slog.Bool("is_paid", s.isPaid),
		slog.String("state", order.State),
		slog.Int("addresses", len(s.current.DeliveryAddresses)),
	)
}

func toDeliveryAddresses(in []addressapi.Address) []models.DeliveryAddress {
	out := make([]models.DeliveryAddress, 0, len(in))
	for _, a := range in {
		out = append(out, models.DeliveryAddress{ID: a.ID, Street: a.Street, City: a.City, Zip: a.Zip, Country: a.Country})
	}

	return out
}

// caller holds s.mu
func (s *Session) editable() bool {
	return s.order != nil && s.isPaid && !s.order.IsCompleted()
}

// caller holds s.mu
func (s *Session) syncFromBook() {
	s.current.DeliveryAddresses = toDeliveryAddresses(s.book.Addresses())
	s.current.SelectedDeliveryID = s.book.SelectedID()
}

// resetEdits drops uncommitted edits while keeping the address list the backend reported.
// caller holds s.mu
func (s *Session) resetEdits() {
	s.current = s.baseline.Clone()
	s.current.DeliveryAddresses = toDeliveryAddresses(s.book.Addresses())
	s.book.Select(s.baseline.SelectedDeliveryID)
	s.draftOpen = false
	s.cancelConfirmed = false
}

// caller holds s.mu
func (s *Session) requireStep(step int) error {
	if s.view != models.ViewData || s.step != step || s.status != models.ConfirmIdle {
		return ErrInvalidTransition
	}

	return nil
}

// caller holds s.mu
func (s *Session) requireFlow(flow models.FlowType) error {
	if err := s.requireStep(2); err != nil {
		return err
	}
	if s.flow != flow {
		return ErrInvalidTransition
	}

	return nil
}

func (s *Session) ChooseFlow(flow models.FlowType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if err := s.requireStep(1); err != nil {
		return err
	}
	if !s.editable() {
		return ErrEditingDisabled
	}

	switch flow {
	case models.FlowShipping, models.FlowInfo, models.FlowCancel:
	default:
		return ErrInvalidTransition
	}

	s.flow = flow
	s.step = 2
	s.cancelConfirmed = false

	return nil
}

func (s *Session) SelectAddress(addressID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if err := s.requireFlow(models.FlowShipping); err != nil {
		return err
	}

	found := false
	for _, a := range s.current.DeliveryAddresses {
		if a.ID == addressID {
			found = true
			break
		}
	}
	if !found {
		return &addressapi.APIError{Code: addressapi.CodeAddressNotFound, Message: "Indirizzo non disponibile."}
	}

	s.book.Select(addressID)
	s.current.SelectedDeliveryID = addressID
	s.draftOpen = false

	return nil
}

func (s *Session) OpenDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if err := s.requireFlow(models.FlowShipping); err != nil {
		return err
	}

	s.draftOpen = true

	return nil
}

func (s *Session) CloseDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if err := s.requireFlow(models.FlowShipping); err != nil {
		return err
	}

	s.draftOpen = false
	s.current.NewDeliveryAddress = models.NewDeliveryAddress{}

	return nil
}

func (s *Session) UpdateDraft(field models.DraftField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if err := s.requireFlow(models.FlowShipping); err != nil {
		return err
	}
	if !s.draftOpen {
		return ErrInvalidTransition
	}

	draft := &s.current.NewDeliveryAddress
	switch field {
	case models.DraftFieldStreet:
		draft.Street = value
	case models.DraftFieldCity:
		draft.City = value
	case models.DraftFieldZip:
		draft.Zip = value
	case models.DraftFieldCountry:
		draft.Country = value
	default:
		return ErrInvalidTransition
	}

	return nil
}

// UpdateAddress edits a saved address through the backend and refreshes the local list.
func (s *Session) UpdateAddress(ctx context.Context, addressID string, input addressapi.AddressInput) error {
	s.mu.Lock()
	s.touch()
	if err := s.requireFlow(models.FlowShipping); err != nil {
		s.mu.Unlock()
		return err
	}
	seq, book := s.seq, s.book
	s.mu.Unlock()

	if _, err := book.Update(ctx, addressID, input); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == seq {
		s.syncFromBook()
	}

	return nil
}

// RefreshAddresses re-fetches the list. The selection falls back to the first address.
func (s *Session) RefreshAddresses(ctx context.Context) error {
	s.mu.Lock()
	s.touch()
	if err := s.requireFlow(models.FlowShipping); err != nil {
		s.mu.Unlock()
		return err
	}
	seq, book := s.seq, s.book
	s.mu.Unlock()

	err := book.Refresh(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == seq && err == nil {
		s.syncFromBook()
	}

	return err
}

func (s *Session) SetContact(email, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if err := s.requireFlow(models.FlowInfo); err != nil {
		return err
	}

	s.current.ContactEmail = strings.TrimSpace(email)
	s.current.ContactPhone = strings.TrimSpace(phone)

	return nil
}

func (s *Session) SetCancelConfirmed(confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if err := s.requireFlow(models.FlowCancel); err != nil {
		return err
	}

	s.cancelConfirmed = confirmed

	return nil
}

func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if s.view != models.ViewData || s.status != models.ConfirmIdle {
		return ErrInvalidTransition
	}

	switch s.step {
	case 2:
		s.step = 1
		s.flow = models.FlowNone
		s.resetEdits()
	case 3:
		s.step = 2
	default:
		return ErrInvalidTransition
	}

	return nil
}

// caller holds s.mu
func (s *Session) ready() bool {
	switch s.flow {
	case models.FlowShipping:
		if s.draftOpen {
			return draftComplete(s.current.NewDeliveryAddress)
		}

		return formatSelected(s.current) != formatSelected(s.baseline)
	case models.FlowInfo:
		changed := s.current.ContactEmail != s.baseline.ContactEmail ||
			s.current.ContactPhone != s.baseline.ContactPhone

		return changed && utils.IsValidEmail(s.current.ContactEmail)
	case models.FlowCancel:
		return s.cancelConfirmed
	}

	return false
}

func (s *Session) Review() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if err := s.requireStep(2); err != nil {
		return err
	}
	if !s.ready() {
		return ErrNotReady
	}

	s.step = 3

	return nil
}

type pendingChange struct {
	seq          uint64
	flow         models.FlowType
	orderID      string
	book         *addressbook.Book
	draft        models.NewDeliveryAddress
	createDraft  bool
	addressID    string
	instructions string
}

// Confirm submits the reviewed change. Network work runs before returning; the outcome
// becomes visible once ConfirmDelay has elapsed.
func (s *Session) Confirm(ctx context.Context, deliveryInstructions string) error {
	s.mu.Lock()
	s.touch()
	if err := s.requireStep(3); err != nil {
		s.mu.Unlock()
		return err
	}

	s.status = models.ConfirmLoading
	change := pendingChange{
		seq:          s.seq,
		flow:         s.flow,
		orderID:      s.orderID,
		book:         s.book,
		draft:        s.current.NewDeliveryAddress,
		createDraft:  s.draftOpen && draftComplete(s.current.NewDeliveryAddress),
		addressID:    s.current.SelectedDeliveryID,
		instructions: strings.TrimSpace(deliveryInstructions),
	}
	s.mu.Unlock()

	syncResp, err := s.perform(ctx, &change)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != change.seq {
		s.logger.Debug("Discarding confirmation for a reset session")
		return nil
	}

	outcome := models.ConfirmSuccess
	s.failure = ""

	switch {
	case err != nil:
		outcome = models.ConfirmError
		s.failure = addressbook.Message(addressbook.MapError(err))
		s.diff = nil
		s.logger.Warn("Submit failed", slog.String("flow", string(change.flow)), slog.String("error", err.Error()))
	case change.flow == models.FlowCancel:
		s.diff = []models.EditableDiff{}
		s.logger.Info("Cancellation requested", slog.String("order_id", change.orderID), slog.String("email", s.email))
	default:
		if change.flow == models.FlowShipping {
			s.syncFromBook()
			s.deliveryID = change.addressID
			s.instructions = change.instructions
		}

		before := s.baseline
		s.diff = ComputeDiff(before, s.current)

		s.logger.Info("Submitting changes",
			slog.String("flow", string(change.flow)),
			slog.String("order_id", change.orderID),
			slog.Any("before", before),
			slog.Any("after", s.current),
			slog.Any("diff", s.diff),
		)

		s.current.NewDeliveryAddress = models.NewDeliveryAddress{}
		s.draftOpen = false
		s.baseline = s.current.Clone()
	}

	submission := models.Submission{
		SessionID: s.id,
		OrderID:   change.orderID,
		Email:     s.email,
		Flow:      change.flow,
		Outcome:   outcome,
		Diff:      s.diff,
		AddressID: change.addressID,
		Error:     s.failure,
	}
	if syncResp != nil {
		submission.SyncStatus = string(syncResp.Status)
	}

	seq := change.seq
	s.deps.Scheduler.After(s.cfg.ConfirmDelay, func() {
		s.resolve(seq, outcome, submission)
	})

	return nil
}

// perform runs the network side of a confirmation. It updates change.addressID when a
// draft address is created.
func (s *Session) perform(ctx context.Context, change *pendingChange) (*addressapi.SyncResponse, error) {
	if change.flow != models.FlowShipping {
		return nil, nil
	}

	if change.createDraft {
		created, err := change.book.Create(ctx, addressapi.AddressInput{
			Street:  change.draft.Street,
			City:    change.draft.City,
			Zip:     change.draft.Zip,
			Country: change.draft.Country,
		})
		if err != nil {
			return nil, err
		}

		change.addressID = created.ID
	}

	return change.book.SetDelivery(ctx, change.orderID, change.addressID, change.instructions)
}

func (s *Session) resolve(seq uint64, outcome models.ConfirmStatus, submission models.Submission) {
	s.mu.Lock()
	if s.seq != seq || s.status != models.ConfirmLoading {
		s.mu.Unlock()
		return
	}

	s.status = outcome
	s.lastAction = submission.Flow
	s.mu.Unlock()

	s.logger.Info("Confirmation resolved", slog.String("flow", string(submission.Flow)), slog.String("outcome", string(outcome)))

	if s.deps.Observer != nil {
		s.deps.Observer.Submitted(context.Background(), submission)
	}
}

// Close returns to flow selection once a confirmation has resolved.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if s.view != models.ViewData || s.step != 3 {
		return ErrInvalidTransition
	}
	if s.status != models.ConfirmSuccess && s.status != models.ConfirmError {
		return ErrInvalidTransition
	}

	s.step = 1
	s.flow = models.FlowNone
	s.status = models.ConfirmIdle
	s.diff = nil
	s.failure = ""
	s.resetEdits()

	return nil
}

// RetrySync re-issues the delivery association after the backend reported FAILED.
func (s *Session) RetrySync(ctx context.Context) error {
	s.mu.Lock()
	s.touch()
	if s.view != models.ViewData || s.book == nil || s.deliveryID == "" ||
		s.book.SyncStatus() != addressapi.SyncFailed {
		s.mu.Unlock()
		return ErrNotReady
	}
	book, orderID, addressID, instructions := s.book, s.orderID, s.deliveryID, s.instructions
	s.mu.Unlock()

	s.logger.Info("Retrying delivery sync", slog.String("order_id", orderID), slog.String("address_id", addressID))

	_, err := book.SetDelivery(ctx, orderID, addressID, instructions)

	return err
}

// Reset discards everything and returns to the access form. Pending callbacks become stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	s.seq++
	s.view = models.ViewAccess
	s.orderID = ""
	s.email = ""
	s.accessErrors = nil
	s.order = nil
	s.isPaid = false
	s.book = nil
	s.step = 0
	s.flow = models.FlowNone
	s.current = models.EditableDetails{}
	s.baseline = models.EditableDetails{}
	s.draftOpen = false
	s.cancelConfirmed = false
	s.status = models.ConfirmIdle
	s.diff = nil
	s.lastAction = models.FlowNone
	s.failure = ""
	s.instructions = ""
	s.deliveryID = ""
}

// Baseline returns a copy of the last confirmed snapshot.
func (s *Session) Baseline() models.EditableDetails {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.baseline.Clone()
}

// Current returns a copy of the in-progress snapshot.
func (s *Session) Current() models.EditableDetails {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current.Clone()
}

func (s *Session) Diff() []models.EditableDiff {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.EditableDiff(nil), s.diff...)
}

func (s *Session) State() (models.ViewState, int, models.FlowType, models.ConfirmStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view, s.step, s.flow, s.status
}

func (s *Session) IsPaid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isPaid
}

// OrderID is the order loaded into the session, empty until DATA is reached.
func (s *Session) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != models.ViewData {
		return ""
	}

	return s.orderID
}
