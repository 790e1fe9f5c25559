package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/wizard"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	order *models.Order
	err   error
}

func (s stubOrders) FetchOrder(_ context.Context, _, _ string) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.order, nil
}

type recordingObserver struct {
	mu          sync.Mutex
	submissions []models.Submission
}

func (r *recordingObserver) Submitted(_ context.Context, submission models.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.submissions = append(r.submissions, submission)
}

func (r *recordingObserver) all() []models.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]models.Submission(nil), r.submissions...)
}

func paidOrder() *models.Order {
	return &models.Order{
		DateOrder: "2024-12-12T00:00:00.000Z",
		State:     "processing",
		Products:  []models.Product{{Name: "Platform Tray", Brand: "Muuto", State: "processing", Quantity: 1}},
		Invoices:  []models.Invoice{{Number: "4/E/2024/5768", Date: "2024-12-12", State: "paid"}},
	}
}

type harness struct {
	session   *wizard.Session
	scheduler *wizard.ManualScheduler
	observer  *recordingObserver
}

func newHarness(t *testing.T, orders wizard.OrderSource, api addressapi.API) *harness {
	t.Helper()

	scheduler := wizard.NewManualScheduler()
	observer := &recordingObserver{}

	session := wizard.NewSession(wizard.DefaultConfig(), wizard.Deps{
		Orders:    orders,
		Addresses: api,
		Observer:  observer,
		Scheduler: scheduler,
		Jitter:    func(int64) int64 { return 0 },
	})

	return &harness{session: session, scheduler: scheduler, observer: observer}
}

// loaded drives a fresh session to DATA step 1.
func loaded(t *testing.T, orders wizard.OrderSource, api addressapi.API, email string) *harness {
	t.Helper()

	h := newHarness(t, orders, api)
	require.NoError(t, h.session.SubmitAccess("ECOMMSO180809", email))
	h.scheduler.RunAll()

	view, step, _, _ := h.session.State()
	require.Equal(t, models.ViewData, view)
	require.Equal(t, 1, step)

	return h
}

func TestSession_SubmitAccess_RejectsMalformedEmails(t *testing.T) {
	emails := []string{
		"",
		"dariotoscano",
		"dariotoscano.gmail.com",
		"dariotoscano@gmail",
		"dario toscano@gmail.com",
		"dario@gmail .com",
		"dario@gm ail.com",
		"@gmail.com",
	}

	for _, email := range emails {
		t.Run(email, func(t *testing.T) {
			h := newHarness(t, stubOrders{order: paidOrder()}, addressapi.NewMock())

			err := h.session.SubmitAccess("ECOMMSO180809", email)

			var validationErr *wizard.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "Email non valida.", validationErr.Fields["email"])

			view, _, _, _ := h.session.State()
			assert.Equal(t, models.ViewAccess, view)
			assert.Zero(t, h.scheduler.Pending())
		})
	}
}

func TestSession_SubmitAccess_RequiresOrderID(t *testing.T) {
	h := newHarness(t, stubOrders{order: paidOrder()}, addressapi.NewMock())

	err := h.session.SubmitAccess("   ", "dariotoscano@gmail.com")

	var validationErr *wizard.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Order ID richiesto.", validationErr.Fields["orderId"])
	assert.NotContains(t, validationErr.Fields, "email")

	v := h.session.View()
	require.NotNil(t, v.Access)
	assert.Equal(t, "dariotoscano@gmail.com", v.Access.Email)
	assert.Equal(t, "Order ID richiesto.", v.Access.Errors["orderId"])
}

func TestSession_SubmitAccess_SingleTransition(t *testing.T) {
	h := newHarness(t, stubOrders{order: paidOrder()}, addressapi.NewMock())

	require.NoError(t, h.session.SubmitAccess(" ECOMMSO180809 ", " dariotoscano@gmail.com "))

	view, _, _, _ := h.session.State()
	assert.Equal(t, models.ViewLoading, view)

	assert.ErrorIs(t, h.session.SubmitAccess("ECOMMSO180809", "dariotoscano@gmail.com"), wizard.ErrInvalidTransition)
	assert.ErrorIs(t, h.session.SubmitAccess("ECOMMSO180809", "dariotoscano@gmail.com"), wizard.ErrInvalidTransition)
	assert.Equal(t, 1, h.scheduler.Pending())

	h.scheduler.RunAll()

	view, step, flow, status := h.session.State()
	assert.Equal(t, models.ViewData, view)
	assert.Equal(t, 1, step)
	assert.Equal(t, models.FlowNone, flow)
	assert.Equal(t, models.ConfirmIdle, status)

	assert.ErrorIs(t, h.session.SubmitAccess("ECOMMSO180809", "dariotoscano@gmail.com"), wizard.ErrInvalidTransition)
}

func TestSession_LoadDelayWithinRange(t *testing.T) {
	for _, jitter := range []func(int64) int64{
		func(int64) int64 { return 0 },
		func(n int64) int64 { return n - 1 },
		func(n int64) int64 { return n / 2 },
	} {
		scheduler := wizard.NewManualScheduler()
		session := wizard.NewSession(wizard.DefaultConfig(), wizard.Deps{
			Orders:    stubOrders{order: paidOrder()},
			Addresses: addressapi.NewMock(),
			Scheduler: scheduler,
			Jitter:    jitter,
		})

		require.NoError(t, session.SubmitAccess("ECOMMSO180809", "dariotoscano@gmail.com"))

		delays := scheduler.Delays()
		require.Len(t, delays, 1)
		assert.GreaterOrEqual(t, delays[0], 900*time.Millisecond)
		assert.Less(t, delays[0], 1400*time.Millisecond)
	}
}

func TestSession_MockScenario(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "dariotoscano@gmail.com")

	assert.True(t, h.session.IsPaid())

	baseline := h.session.Baseline()
	assert.Equal(t, "+39 02 1234 5678", baseline.ContactPhone)
	assert.Equal(t, "dariotoscano@gmail.com", baseline.ContactEmail)
	assert.Len(t, baseline.DeliveryAddresses, 2)
	assert.Equal(t, "addr-1", baseline.SelectedDeliveryID)
	assert.Empty(t, wizard.ComputeDiff(baseline, h.session.Current()))
}

func TestSession_EditingDisabled(t *testing.T) {
	unpaid := paidOrder()
	unpaid.Invoices[0].State = "open"

	completed := paidOrder()
	completed.State = "Completed"

	noInvoices := paidOrder()
	noInvoices.Invoices = nil

	for name, order := range map[string]*models.Order{"unpaid": unpaid, "completed": completed, "no invoices": noInvoices} {
		t.Run(name, func(t *testing.T) {
			h := loaded(t, stubOrders{order: order}, addressapi.NewMock(), "dariotoscano@gmail.com")

			for _, flow := range []models.FlowType{models.FlowShipping, models.FlowInfo, models.FlowCancel} {
				assert.ErrorIs(t, h.session.ChooseFlow(flow), wizard.ErrEditingDisabled)
			}

			view, step, flow, _ := h.session.State()
			assert.Equal(t, models.ViewData, view)
			assert.Equal(t, 1, step)
			assert.Equal(t, models.FlowNone, flow)

			data := h.session.View().Data
			require.NotNil(t, data)
			assert.False(t, data.Editable)
			for _, choice := range data.Flows {
				assert.True(t, choice.Disabled)
			}
		})
	}
}

func TestSession_ChooseFlow_RejectsUnknownFlow(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

	assert.ErrorIs(t, h.session.ChooseFlow("refund"), wizard.ErrInvalidTransition)
	assert.ErrorIs(t, h.session.ChooseFlow(models.FlowNone), wizard.ErrInvalidTransition)
}

func TestSession_InfoFlowScenario(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

	require.NoError(t, h.session.ChooseFlow(models.FlowInfo))
	require.NoError(t, h.session.SetContact("b@b.it", wizard.DefaultContactPhone))
	require.NoError(t, h.session.Review())
	require.NoError(t, h.session.Confirm(context.Background(), ""))

	_, step, _, status := h.session.State()
	assert.Equal(t, 3, step)
	assert.Equal(t, models.ConfirmLoading, status)

	h.scheduler.RunAll()

	_, step, _, status = h.session.State()
	assert.Equal(t, 3, step)
	assert.Equal(t, models.ConfirmSuccess, status)

	diff := h.session.Diff()
	require.Len(t, diff, 1)
	assert.Equal(t, models.EditableDiff{Field: "Contatto - Email", Before: "a@a.it", After: "b@b.it"}, diff[0])

	assert.Equal(t, "b@b.it", h.session.Baseline().ContactEmail)

	submissions := h.observer.all()
	require.Len(t, submissions, 1)
	assert.Equal(t, models.FlowInfo, submissions[0].Flow)
	assert.Equal(t, models.ConfirmSuccess, submissions[0].Outcome)
	assert.Equal(t, h.session.ID(), submissions[0].SessionID)
}

func TestSession_InfoFlow_NotReady(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")
	require.NoError(t, h.session.ChooseFlow(models.FlowInfo))

	assert.ErrorIs(t, h.session.Review(), wizard.ErrNotReady, "no change")

	require.NoError(t, h.session.SetContact("not-an-email", wizard.DefaultContactPhone))
	assert.ErrorIs(t, h.session.Review(), wizard.ErrNotReady, "malformed email")

	require.NoError(t, h.session.SetContact("a@a.it", "+39 333 1234567"))
	assert.NoError(t, h.session.Review(), "phone change alone is enough")
}

func TestSession_ShippingSelection(t *testing.T) {
	t.Run("Selecting another address", func(t *testing.T) {
		h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

		require.NoError(t, h.session.ChooseFlow(models.FlowShipping))
		require.NoError(t, h.session.SelectAddress("addr-2"))
		require.NoError(t, h.session.Review())
		require.NoError(t, h.session.Confirm(context.Background(), "Citofono 3"))
		h.scheduler.RunAll()

		_, _, _, status := h.session.State()
		require.Equal(t, models.ConfirmSuccess, status)

		diff := h.session.Diff()
		require.Len(t, diff, 1)
		assert.Equal(t, "Indirizzo di consegna - selezione", diff[0].Field)
		assert.Equal(t, "Via Roma 12, Milano 20121, Italia", diff[0].Before)
		assert.Equal(t, "Via Torino 8, Milano 20123, Italia", diff[0].After)
		assert.Equal(t, "addr-2", h.session.Baseline().SelectedDeliveryID)

		submissions := h.observer.all()
		require.Len(t, submissions, 1)
		assert.Equal(t, "addr-2", submissions[0].AddressID)
		assert.Equal(t, "SYNCED", submissions[0].SyncStatus)
	})

	t.Run("Selecting the already selected address twice", func(t *testing.T) {
		h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

		require.NoError(t, h.session.ChooseFlow(models.FlowShipping))
		require.NoError(t, h.session.SelectAddress("addr-1"))
		require.NoError(t, h.session.SelectAddress("addr-1"))

		assert.Empty(t, wizard.ComputeDiff(h.session.Baseline(), h.session.Current()))
		assert.ErrorIs(t, h.session.Review(), wizard.ErrNotReady)
	})

	t.Run("Unknown address", func(t *testing.T) {
		h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")
		require.NoError(t, h.session.ChooseFlow(models.FlowShipping))

		err := h.session.SelectAddress("addr-404")

		var apiErr *addressapi.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, addressapi.CodeAddressNotFound, apiErr.Code)
		assert.Equal(t, "addr-1", h.session.Current().SelectedDeliveryID)
	})
}

func fillDraft(t *testing.T, session *wizard.Session) {
	t.Helper()

	require.NoError(t, session.OpenDraft())
	require.NoError(t, session.UpdateDraft(models.DraftFieldStreet, "Via Nuova 3"))
	require.NoError(t, session.UpdateDraft(models.DraftFieldCity, "Torino"))
	require.NoError(t, session.UpdateDraft(models.DraftFieldZip, "10100"))
}

func TestSession_ShippingDraft(t *testing.T) {
	t.Run("Incomplete draft cannot be reviewed", func(t *testing.T) {
		h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")
		require.NoError(t, h.session.ChooseFlow(models.FlowShipping))

		fillDraft(t, h.session)
		assert.ErrorIs(t, h.session.Review(), wizard.ErrNotReady)
		assert.ErrorIs(t, h.session.UpdateDraft("province", "TO"), wizard.ErrInvalidTransition)
	})

	t.Run("Draft edits require an open draft", func(t *testing.T) {
		h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")
		require.NoError(t, h.session.ChooseFlow(models.FlowShipping))

		assert.ErrorIs(t, h.session.UpdateDraft(models.DraftFieldStreet, "Via"), wizard.ErrInvalidTransition)

		fillDraft(t, h.session)
		require.NoError(t, h.session.CloseDraft())
		assert.Equal(t, models.NewDeliveryAddress{}, h.session.Current().NewDeliveryAddress)
	})

	t.Run("Complete draft is created and selected", func(t *testing.T) {
		h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")
		require.NoError(t, h.session.ChooseFlow(models.FlowShipping))

		fillDraft(t, h.session)
		require.NoError(t, h.session.UpdateDraft(models.DraftFieldCountry, "Italia"))
		require.NoError(t, h.session.Review())
		require.NoError(t, h.session.Confirm(context.Background(), ""))
		h.scheduler.RunAll()

		_, step, _, status := h.session.State()
		assert.Equal(t, 3, step)
		require.Equal(t, models.ConfirmSuccess, status)

		diff := h.session.Diff()
		require.Len(t, diff, 5)
		assert.Equal(t, "Indirizzo di consegna - selezione", diff[0].Field)
		assert.Equal(t, "Via Nuova 3, Torino 10100, Italia", diff[0].After)
		assert.Equal(t, models.EditableDiff{Field: "Nuovo indirizzo - Via", After: "Via Nuova 3"}, diff[1])
		assert.Equal(t, models.EditableDiff{Field: "Nuovo indirizzo - Paese", After: "Italia"}, diff[4])

		baseline := h.session.Baseline()
		assert.Len(t, baseline.DeliveryAddresses, 3)
		assert.Equal(t, baseline.DeliveryAddresses[2].ID, baseline.SelectedDeliveryID)
		assert.Equal(t, models.NewDeliveryAddress{}, baseline.NewDeliveryAddress)
	})

	t.Run("Create rejection leaves the baseline untouched", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		api.On("ListAddresses", mock.Anything, "a@a.it").Return([]addressapi.Address{
			{ID: "addr-1", Street: "Via Roma 12", City: "Milano", Zip: "20121", Country: "Italia"},
		}, nil).Once()
		api.On("CreateAddress", mock.Anything, "a@a.it", mock.Anything).
			Return(nil, &addressapi.APIError{Code: addressapi.CodeInvalidZip, Message: "zip"}).Once()

		h := loaded(t, stubOrders{order: paidOrder()}, api, "a@a.it")
		before := h.session.Baseline()

		require.NoError(t, h.session.ChooseFlow(models.FlowShipping))
		fillDraft(t, h.session)
		require.NoError(t, h.session.UpdateDraft(models.DraftFieldCountry, "Italia"))
		require.NoError(t, h.session.Review())
		require.NoError(t, h.session.Confirm(context.Background(), ""))
		h.scheduler.RunAll()

		_, step, _, status := h.session.State()
		assert.Equal(t, models.ConfirmError, status)
		assert.Equal(t, 3, step)
		assert.Equal(t, before, h.session.Baseline())
		assert.Empty(t, h.session.Diff())

		review := h.session.View().Data.Review
		require.NotNil(t, review)
		assert.Equal(t, "Operazione non riuscita", review.Message)
		assert.Equal(t, "CAP non valido.", review.Detail)

		submissions := h.observer.all()
		require.Len(t, submissions, 1)
		assert.Equal(t, models.ConfirmError, submissions[0].Outcome)

		require.NoError(t, h.session.Close())
		_, step, flow, status := h.session.State()
		assert.Equal(t, 1, step)
		assert.Equal(t, models.FlowNone, flow)
		assert.Equal(t, models.ConfirmIdle, status)
	})
}

func TestSession_SetDeliveryRejected(t *testing.T) {
	api := mocks.NewMockAPI(t)
	api.On("ListAddresses", mock.Anything, "a@a.it").Return([]addressapi.Address{
		{ID: "addr-1", Street: "Via Roma 12", City: "Milano", Zip: "20121", Country: "Italia"},
		{ID: "addr-2", Street: "Via Torino 8", City: "Milano", Zip: "20123", Country: "Italia"},
	}, nil).Once()
	api.On("SetOrderDeliveryAddress", mock.Anything, "ECOMMSO180809", "addr-2", "").
		Return(nil, &addressapi.APIError{Code: addressapi.CodeOrderLocked, Message: "locked"}).Once()

	h := loaded(t, stubOrders{order: paidOrder()}, api, "a@a.it")
	before := h.session.Baseline()

	require.NoError(t, h.session.ChooseFlow(models.FlowShipping))
	require.NoError(t, h.session.SelectAddress("addr-2"))
	require.NoError(t, h.session.Review())
	require.NoError(t, h.session.Confirm(context.Background(), ""))
	h.scheduler.RunAll()

	_, _, _, status := h.session.State()
	assert.Equal(t, models.ConfirmError, status)
	assert.Equal(t, before, h.session.Baseline())
	assert.Equal(t, "L'ordine non puo' essere modificato.", h.session.View().Data.Review.Detail)
}

func TestSession_RetrySync(t *testing.T) {
	api := mocks.NewMockAPI(t)
	api.On("ListAddresses", mock.Anything, "a@a.it").Return([]addressapi.Address{
		{ID: "addr-1", Street: "Via Roma 12", City: "Milano", Zip: "20121", Country: "Italia"},
		{ID: "addr-2", Street: "Via Torino 8", City: "Milano", Zip: "20123", Country: "Italia"},
	}, nil).Once()
	api.On("SetOrderDeliveryAddress", mock.Anything, "ECOMMSO180809", "addr-2", "Piano 2").
		Return(&addressapi.SyncResponse{Status: addressapi.SyncFailed, AddressID: "addr-2", LastSyncError: "Timeout ERP"}, nil).Once()
	api.On("SetOrderDeliveryAddress", mock.Anything, "ECOMMSO180809", "addr-2", "Piano 2").
		Return(&addressapi.SyncResponse{Status: addressapi.SyncSynced, AddressID: "addr-2"}, nil).Once()

	h := loaded(t, stubOrders{order: paidOrder()}, api, "a@a.it")

	assert.ErrorIs(t, h.session.RetrySync(context.Background()), wizard.ErrNotReady)

	require.NoError(t, h.session.ChooseFlow(models.FlowShipping))
	require.NoError(t, h.session.SelectAddress("addr-2"))
	require.NoError(t, h.session.Review())
	require.NoError(t, h.session.Confirm(context.Background(), "Piano 2"))
	h.scheduler.RunAll()

	_, _, _, status := h.session.State()
	require.Equal(t, models.ConfirmSuccess, status)

	review := h.session.View().Data.Review
	assert.True(t, review.CanRetrySync)
	assert.Equal(t, "Timeout ERP", review.SyncError)

	require.NoError(t, h.session.RetrySync(context.Background()))

	review = h.session.View().Data.Review
	assert.False(t, review.CanRetrySync)
	assert.ErrorIs(t, h.session.RetrySync(context.Background()), wizard.ErrNotReady)
}

func TestSession_CancelFlow(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

	require.NoError(t, h.session.ChooseFlow(models.FlowCancel))
	assert.ErrorIs(t, h.session.Review(), wizard.ErrNotReady)

	require.NoError(t, h.session.SetCancelConfirmed(true))
	require.NoError(t, h.session.Review())
	require.NoError(t, h.session.Confirm(context.Background(), ""))
	h.scheduler.RunAll()

	_, _, _, status := h.session.State()
	assert.Equal(t, models.ConfirmSuccess, status)
	assert.Empty(t, h.session.Diff())

	submissions := h.observer.all()
	require.Len(t, submissions, 1)
	assert.Equal(t, models.FlowCancel, submissions[0].Flow)
	assert.Equal(t, "ECOMMSO180809", submissions[0].OrderID)
}

func TestSession_FlowActionsRequireMatchingFlow(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

	assert.ErrorIs(t, h.session.SetContact("b@b.it", ""), wizard.ErrInvalidTransition)
	assert.ErrorIs(t, h.session.SelectAddress("addr-2"), wizard.ErrInvalidTransition)

	require.NoError(t, h.session.ChooseFlow(models.FlowInfo))

	assert.ErrorIs(t, h.session.SetCancelConfirmed(true), wizard.ErrInvalidTransition)
	assert.ErrorIs(t, h.session.OpenDraft(), wizard.ErrInvalidTransition)
	assert.ErrorIs(t, h.session.ChooseFlow(models.FlowShipping), wizard.ErrInvalidTransition)
}

func TestSession_Back(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

	assert.ErrorIs(t, h.session.Back(), wizard.ErrInvalidTransition)

	require.NoError(t, h.session.ChooseFlow(models.FlowInfo))
	require.NoError(t, h.session.SetContact("b@b.it", wizard.DefaultContactPhone))
	require.NoError(t, h.session.Review())

	require.NoError(t, h.session.Back())
	_, step, flow, _ := h.session.State()
	assert.Equal(t, 2, step)
	assert.Equal(t, models.FlowInfo, flow)
	assert.Equal(t, "b@b.it", h.session.Current().ContactEmail)

	require.NoError(t, h.session.Back())
	_, step, flow, _ = h.session.State()
	assert.Equal(t, 1, step)
	assert.Equal(t, models.FlowNone, flow)
	assert.Equal(t, "a@a.it", h.session.Current().ContactEmail)
}

func TestSession_ConfirmGuards(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

	assert.ErrorIs(t, h.session.Confirm(context.Background(), ""), wizard.ErrInvalidTransition)

	require.NoError(t, h.session.ChooseFlow(models.FlowCancel))
	require.NoError(t, h.session.SetCancelConfirmed(true))
	require.NoError(t, h.session.Review())
	require.NoError(t, h.session.Confirm(context.Background(), ""))

	assert.ErrorIs(t, h.session.Confirm(context.Background(), ""), wizard.ErrInvalidTransition)
	assert.ErrorIs(t, h.session.Close(), wizard.ErrInvalidTransition)
	assert.ErrorIs(t, h.session.Back(), wizard.ErrInvalidTransition)

	assert.Equal(t, []time.Duration{900 * time.Millisecond}, h.scheduler.Delays())
	h.scheduler.RunAll()

	require.NoError(t, h.session.Close())
}

func TestSession_ResetDiscardsPendingLoad(t *testing.T) {
	h := newHarness(t, stubOrders{order: paidOrder()}, addressapi.NewMock())

	require.NoError(t, h.session.SubmitAccess("ECOMMSO180809", "a@a.it"))
	h.session.Reset()
	h.scheduler.RunAll()

	view, _, _, _ := h.session.State()
	assert.Equal(t, models.ViewAccess, view)
	assert.Equal(t, "", h.session.View().Access.OrderID)

	require.NoError(t, h.session.SubmitAccess("ECOMMSO180809", "b@b.it"))
	h.scheduler.RunAll()

	view, _, _, _ = h.session.State()
	assert.Equal(t, models.ViewData, view)
	assert.Equal(t, "b@b.it", h.session.Baseline().ContactEmail)
}

func TestSession_ResetDiscardsPendingConfirmation(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")

	require.NoError(t, h.session.ChooseFlow(models.FlowCancel))
	require.NoError(t, h.session.SetCancelConfirmed(true))
	require.NoError(t, h.session.Review())
	require.NoError(t, h.session.Confirm(context.Background(), ""))

	h.session.Reset()
	h.scheduler.RunAll()

	assert.Empty(t, h.observer.all())
}

func TestSession_OrderFetchFailure(t *testing.T) {
	h := newHarness(t, stubOrders{err: errors.New("lookup failed")}, addressapi.NewMock())

	require.NoError(t, h.session.SubmitAccess("ECOMMSO180809", "a@a.it"))
	h.scheduler.RunAll()

	v := h.session.View()
	assert.Equal(t, models.ViewAccess, v.View)
	require.NotNil(t, v.Access)
	assert.Equal(t, "Ordine non trovato.", v.Access.Errors["orderId"])
}

type chanVerifier chan string

func (c chanVerifier) Verify(_ context.Context, orderID, _ string) {
	c <- orderID
}

func TestSession_VerifierDoesNotGateLoad(t *testing.T) {
	verifier := make(chanVerifier, 1)
	scheduler := wizard.NewManualScheduler()

	session := wizard.NewSession(wizard.DefaultConfig(), wizard.Deps{
		Orders:    stubOrders{order: paidOrder()},
		Addresses: addressapi.NewMock(),
		Verifier:  verifier,
		Scheduler: scheduler,
	})

	require.NoError(t, session.SubmitAccess("ECOMMSO180809", "a@a.it"))
	scheduler.RunAll()

	view, _, _, _ := session.State()
	assert.Equal(t, models.ViewData, view)

	select {
	case orderID := <-verifier:
		assert.Equal(t, "ECOMMSO180809", orderID)
	case <-time.After(time.Second):
		t.Fatal("diagnostic lookup was not issued")
	}
}

func TestSession_RefreshAddresses(t *testing.T) {
	api := mocks.NewMockAPI(t)
	api.On("ListAddresses", mock.Anything, "a@a.it").Return([]addressapi.Address{
		{ID: "addr-1", Street: "Via Roma 12", City: "Milano", Zip: "20121", Country: "Italia"},
		{ID: "addr-2", Street: "Via Torino 8", City: "Milano", Zip: "20123", Country: "Italia"},
	}, nil).Twice()

	h := loaded(t, stubOrders{order: paidOrder()}, api, "a@a.it")

	assert.ErrorIs(t, h.session.RefreshAddresses(context.Background()), wizard.ErrInvalidTransition)

	require.NoError(t, h.session.ChooseFlow(models.FlowShipping))
	require.NoError(t, h.session.SelectAddress("addr-2"))
	require.NoError(t, h.session.RefreshAddresses(context.Background()))

	assert.Equal(t, "addr-1", h.session.Current().SelectedDeliveryID)
}

func TestSession_UpdateAddress(t *testing.T) {
	h := loaded(t, stubOrders{order: paidOrder()}, addressapi.NewMock(), "a@a.it")
	require.NoError(t, h.session.ChooseFlow(models.FlowShipping))

	err := h.session.UpdateAddress(context.Background(), "addr-1", addressapi.AddressInput{
		Street: "Via Roma 14", City: "Milano", Zip: "20121", Country: "Italia",
	})
	require.NoError(t, err)

	current := h.session.Current()
	assert.Equal(t, "Via Roma 14", current.DeliveryAddresses[0].Street)

	diff := wizard.ComputeDiff(h.session.Baseline(), current)
	require.Len(t, diff, 1)
	assert.Equal(t, "Via Roma 14, Milano 20121, Italia", diff[0].After)

	var apiErr *addressapi.APIError
	err = h.session.UpdateAddress(context.Background(), "addr-404", addressapi.AddressInput{Street: "x", City: "y", Zip: "1", Country: "z"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, addressapi.CodeAddressNotFound, apiErr.Code)
}
