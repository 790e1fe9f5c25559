package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/api/middleware"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/errors"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	service "github.com/aaravmahajanofficial/selfservice-widget/internal/services"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils/response"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/wizard"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type WizardHandler struct {
	wizardService service.WizardService
	validator     *validator.Validate
}

func NewWizardHandler(wizardService service.WizardService) *WizardHandler {
	return &WizardHandler{wizardService: wizardService, validator: utils.NewValidator()}
}

// session extracts the session id placed in the context by SessionAuth.
func session(w http.ResponseWriter, r *http.Request) (uuid.UUID, *slog.Logger, bool) {

	logger := middleware.LoggerFromContext(r.Context())

	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		logger.Warn("Wizard request without a session")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return uuid.Nil, logger, false
	}

	return id, logger, true
}

func writeView(w http.ResponseWriter, logger *slog.Logger, action string, view *wizard.View, err error) {
	if err != nil {
		logger.Warn("Wizard action rejected", slog.String("action", action), slog.String("error", err.Error()))
		response.Error(w, err)
		return
	}

	logger.Info("Wizard action applied", slog.String("action", action), slog.String("view", string(view.View)))
	response.Success(w, http.StatusOK, view)
}

// OpenSession godoc
//
//	@Summary		Open a wizard session
//	@Description	Starts a new self-service session on the access form and returns the bearer token bound to it.
//	@Tags			Session
//	@Produce		json
//	@Success		201	{object}	service.OpenedSession	"Session opened"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Router			/sessions [post]
func (h *WizardHandler) OpenSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		opened, err := h.wizardService.Open(r.Context())
		if err != nil {
			logger.Error("Failed to open wizard session", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Wizard session opened", slog.String("session_id", opened.View.SessionID))
		response.Success(w, http.StatusCreated, opened)
	}
}

// GetSession godoc
//
//	@Summary		Render the current view
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	wizard.View				"Current view"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Session not found"
//	@Security		BearerAuth
//	@Router			/session [get]
func (h *WizardHandler) GetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.View(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to render session", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

// DiscardSession godoc
//
//	@Summary		Discard the session
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	response.APIResponse	"Session discarded"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Session not found"
//	@Security		BearerAuth
//	@Router			/session [delete]
func (h *WizardHandler) DiscardSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		if err := h.wizardService.Discard(r.Context(), id); err != nil {
			logger.Warn("Failed to discard session", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Wizard session discarded")
		response.Success(w, http.StatusOK, map[string]string{"message": "Session discarded"})
	}
}

// SubmitAccess godoc
//
//	@Summary		Submit the order lookup form
//	@Description	Validates order id and e-mail. On success the session moves to LOADING and the order is loaded shortly after.
//	@Tags			Access
//	@Accept			json
//	@Produce		json
//	@Param			access	body		models.AccessRequest	true	"Order lookup"
//	@Success		200		{object}	wizard.View				"Loading view"
//	@Failure		409		{object}	response.ErrorResponse	"Not on the access form"
//	@Failure		422		{object}	response.ErrorResponse	"Field errors"
//	@Failure		429		{object}	response.ErrorResponse	"Too many attempts for this order"
//	@Security		BearerAuth
//	@Router			/session/access [post]
func (h *WizardHandler) SubmitAccess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		var req models.AccessRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid access input")
			return
		}

		req.OrderID = utils.SanitizeText(req.OrderID)
		req.Email = utils.SanitizeText(req.Email)

		view, err := h.wizardService.SubmitAccess(r.Context(), id, &req)
		writeView(w, logger.With(slog.String("order_id", strings.TrimSpace(req.OrderID))), "access", view, err)
	}
}

// Reset godoc
//
//	@Summary		Return to the access form
//	@Tags			Access
//	@Produce		json
//	@Success		200	{object}	wizard.View	"Access view"
//	@Security		BearerAuth
//	@Router			/session/reset [post]
func (h *WizardHandler) Reset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.Reset(r.Context(), id)
		writeView(w, logger, "reset", view, err)
	}
}

// ChooseFlow godoc
//
//	@Summary		Choose what to change
//	@Tags			Wizard
//	@Accept			json
//	@Produce		json
//	@Param			flow	body		models.FlowRequest		true	"shipping, info or cancel"
//	@Success		200		{object}	wizard.View				"Step 2"
//	@Failure		409		{object}	response.ErrorResponse	"Order not editable or wrong step"
//	@Security		BearerAuth
//	@Router			/session/flow [post]
func (h *WizardHandler) ChooseFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		var req models.FlowRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid flow input")
			return
		}

		view, err := h.wizardService.ChooseFlow(r.Context(), id, req.Flow)
		writeView(w, logger, "flow", view, err)
	}
}

// Back godoc
//
//	@Summary		Go back one step
//	@Tags			Wizard
//	@Produce		json
//	@Success		200	{object}	wizard.View				"Previous step"
//	@Failure		409	{object}	response.ErrorResponse	"Nothing to go back to"
//	@Security		BearerAuth
//	@Router			/session/back [post]
func (h *WizardHandler) Back() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.Back(r.Context(), id)
		writeView(w, logger, "back", view, err)
	}
}

// Review godoc
//
//	@Summary		Move to the review step
//	@Tags			Wizard
//	@Produce		json
//	@Success		200	{object}	wizard.View				"Step 3"
//	@Failure		409	{object}	response.ErrorResponse	"Change not ready"
//	@Security		BearerAuth
//	@Router			/session/review [post]
func (h *WizardHandler) Review() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.Review(r.Context(), id)
		writeView(w, logger, "review", view, err)
	}
}

// Confirm godoc
//
//	@Summary		Confirm the reviewed change
//	@Description	Submits the change to the backend. The outcome is shown once the confirmation delay has elapsed.
//	@Tags			Wizard
//	@Accept			json
//	@Produce		json
//	@Param			confirm	body		models.ConfirmRequest	false	"Optional delivery instructions"
//	@Success		200		{object}	wizard.View				"Review step, status loading"
//	@Failure		409		{object}	response.ErrorResponse	"Not on the review step"
//	@Security		BearerAuth
//	@Router			/session/confirm [post]
func (h *WizardHandler) Confirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		var req models.ConfirmRequest
		if r.ContentLength != 0 && !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid confirm input")
			return
		}

		req.DeliveryInstructions = utils.SanitizeText(req.DeliveryInstructions)

		view, err := h.wizardService.Confirm(r.Context(), id, &req)
		writeView(w, logger, "confirm", view, err)
	}
}

// CloseOutcome godoc
//
//	@Summary		Dismiss the confirmation outcome
//	@Tags			Wizard
//	@Produce		json
//	@Success		200	{object}	wizard.View				"Step 1"
//	@Failure		409	{object}	response.ErrorResponse	"Confirmation still pending"
//	@Security		BearerAuth
//	@Router			/session/close [post]
func (h *WizardHandler) CloseOutcome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.CloseOutcome(r.Context(), id)
		writeView(w, logger, "close", view, err)
	}
}

// SetContact godoc
//
//	@Summary		Edit contact details
//	@Tags			Info
//	@Accept			json
//	@Produce		json
//	@Param			contact	body		models.ContactRequest	true	"Contact e-mail and phone"
//	@Success		200		{object}	wizard.View				"Step 2"
//	@Security		BearerAuth
//	@Router			/session/contact [put]
func (h *WizardHandler) SetContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		var req models.ContactRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid contact input")
			return
		}

		req.Email = utils.SanitizeText(req.Email)
		req.Phone = utils.SanitizeText(req.Phone)

		view, err := h.wizardService.SetContact(r.Context(), id, &req)
		writeView(w, logger, "contact", view, err)
	}
}

// SetCancelConfirmed godoc
//
//	@Summary		Tick or untick the cancellation confirmation
//	@Tags			Cancel
//	@Accept			json
//	@Produce		json
//	@Param			cancel	body		models.CancelRequest	true	"Confirmation checkbox"
//	@Success		200		{object}	wizard.View				"Step 2"
//	@Security		BearerAuth
//	@Router			/session/cancel [put]
func (h *WizardHandler) SetCancelConfirmed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		var req models.CancelRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid cancel input")
			return
		}

		view, err := h.wizardService.SetCancelConfirmed(r.Context(), id, req.Confirmed)
		writeView(w, logger, "cancel", view, err)
	}
}

// SelectAddress godoc
//
//	@Summary		Select a saved delivery address
//	@Tags			Shipping
//	@Accept			json
//	@Produce		json
//	@Param			address	body		models.SelectAddressRequest	true	"Address id"
//	@Success		200		{object}	wizard.View					"Step 2"
//	@Failure		422		{object}	response.ErrorResponse		"Unknown address"
//	@Security		BearerAuth
//	@Router			/session/addresses/select [post]
func (h *WizardHandler) SelectAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		var req models.SelectAddressRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid address selection")
			return
		}

		view, err := h.wizardService.SelectAddress(r.Context(), id, req.AddressID)
		writeView(w, logger, "select_address", view, err)
	}
}

// RefreshAddresses godoc
//
//	@Summary		Reload the saved addresses
//	@Tags			Shipping
//	@Produce		json
//	@Success		200	{object}	wizard.View				"Step 2"
//	@Failure		502	{object}	response.ErrorResponse	"Address service unavailable"
//	@Security		BearerAuth
//	@Router			/session/addresses/refresh [post]
func (h *WizardHandler) RefreshAddresses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.RefreshAddresses(r.Context(), id)
		writeView(w, logger, "refresh_addresses", view, err)
	}
}

// UpdateAddress godoc
//
//	@Summary		Edit a saved address
//	@Tags			Shipping
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Address id"
//	@Param			address	body		addressapi.AddressInput	true	"New address values"
//	@Success		200		{object}	wizard.View				"Step 2"
//	@Failure		422		{object}	response.ErrorResponse	"Rejected by the address service"
//	@Security		BearerAuth
//	@Router			/session/addresses/{id} [put]
func (h *WizardHandler) UpdateAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		addressID := strings.TrimSpace(r.PathValue("id"))
		if addressID == "" {
			logger.Warn("Missing address id")
			response.Error(w, errors.BadRequestError("Address id is required"))
			return
		}

		var req addressapi.AddressInput
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid address input", slog.String("address_id", addressID))
			return
		}

		sanitizeAddress(&req)

		view, err := h.wizardService.UpdateAddress(r.Context(), id, addressID, &req)
		writeView(w, logger.With(slog.String("address_id", addressID)), "update_address", view, err)
	}
}

func sanitizeAddress(in *addressapi.AddressInput) {
	in.Street = utils.SanitizeText(in.Street)
	in.City = utils.SanitizeText(in.City)
	in.Zip = utils.SanitizeText(in.Zip)
	in.Country = utils.SanitizeText(in.Country)
	in.Label = utils.SanitizeText(in.Label)
	in.FirstName = utils.SanitizeText(in.FirstName)
	in.LastName = utils.SanitizeText(in.LastName)
	in.Phone = utils.SanitizeText(in.Phone)
	in.Email = utils.SanitizeText(in.Email)
}

// OpenDraft godoc
//
//	@Summary		Start entering a new address
//	@Tags			Shipping
//	@Produce		json
//	@Success		200	{object}	wizard.View	"Step 2 with the draft form"
//	@Security		BearerAuth
//	@Router			/session/draft/open [post]
func (h *WizardHandler) OpenDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.OpenDraft(r.Context(), id)
		writeView(w, logger, "open_draft", view, err)
	}
}

// CloseDraft godoc
//
//	@Summary		Discard the new address form
//	@Tags			Shipping
//	@Produce		json
//	@Success		200	{object}	wizard.View	"Step 2"
//	@Security		BearerAuth
//	@Router			/session/draft/close [post]
func (h *WizardHandler) CloseDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.CloseDraft(r.Context(), id)
		writeView(w, logger, "close_draft", view, err)
	}
}

// UpdateDraft godoc
//
//	@Summary		Edit one field of the new address
//	@Tags			Shipping
//	@Accept			json
//	@Produce		json
//	@Param			draft	body		models.DraftUpdateRequest	true	"Field and value"
//	@Success		200		{object}	wizard.View					"Step 2"
//	@Failure		409		{object}	response.ErrorResponse		"No draft open"
//	@Security		BearerAuth
//	@Router			/session/draft [put]
func (h *WizardHandler) UpdateDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		var req models.DraftUpdateRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid draft input")
			return
		}

		req.Value = utils.SanitizeText(req.Value)

		view, err := h.wizardService.UpdateDraft(r.Context(), id, &req)
		writeView(w, logger, "update_draft", view, err)
	}
}

// RetrySync godoc
//
//	@Summary		Retry a failed delivery synchronization
//	@Tags			Shipping
//	@Produce		json
//	@Success		200	{object}	wizard.View				"Review step"
//	@Failure		409	{object}	response.ErrorResponse	"Nothing to retry"
//	@Security		BearerAuth
//	@Router			/session/sync/retry [post]
func (h *WizardHandler) RetrySync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		view, err := h.wizardService.RetrySync(r.Context(), id)
		writeView(w, logger, "retry_sync", view, err)
	}
}

// History godoc
//
//	@Summary		List the confirmed changes for the loaded order
//	@Tags			Wizard
//	@Produce		json
//	@Success		200	{array}		models.Submission		"Newest first"
//	@Failure		409	{object}	response.ErrorResponse	"No order loaded"
//	@Security		BearerAuth
//	@Router			/session/history [get]
func (h *WizardHandler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, logger, ok := session(w, r)
		if !ok {
			return
		}

		submissions, err := h.wizardService.History(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to list submissions", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, submissions)
	}
}

// Register mounts the wizard routes on mux. Session routes go through auth.
func (h *WizardHandler) Register(mux *http.ServeMux, auth *middleware.SessionAuth) {
	mux.HandleFunc("POST /api/v1/sessions", h.OpenSession())
	mux.HandleFunc("GET /api/v1/session", auth.Authenticate(h.GetSession()))
	mux.HandleFunc("DELETE /api/v1/session", auth.Authenticate(h.DiscardSession()))
	mux.HandleFunc("POST /api/v1/session/access", auth.Authenticate(h.SubmitAccess()))
	mux.HandleFunc("POST /api/v1/session/reset", auth.Authenticate(h.Reset()))
	mux.HandleFunc("POST /api/v1/session/flow", auth.Authenticate(h.ChooseFlow()))
	mux.HandleFunc("POST /api/v1/session/back", auth.Authenticate(h.Back()))
	mux.HandleFunc("POST /api/v1/session/review", auth.Authenticate(h.Review()))
	mux.HandleFunc("POST /api/v1/session/confirm", auth.Authenticate(h.Confirm()))
	mux.HandleFunc("POST /api/v1/session/close", auth.Authenticate(h.CloseOutcome()))
	mux.HandleFunc("PUT /api/v1/session/contact", auth.Authenticate(h.SetContact()))
	mux.HandleFunc("PUT /api/v1/session/cancel", auth.Authenticate(h.SetCancelConfirmed()))
	mux.HandleFunc("POST /api/v1/session/addresses/select", auth.Authenticate(h.SelectAddress()))
	mux.HandleFunc("POST /api/v1/session/addresses/refresh", auth.Authenticate(h.RefreshAddresses()))
	mux.HandleFunc("PUT /api/v1/session/addresses/{id}", auth.Authenticate(h.UpdateAddress()))
	mux.HandleFunc("POST /api/v1/session/draft/open", auth.Authenticate(h.OpenDraft()))
	mux.HandleFunc("POST /api/v1/session/draft/close", auth.Authenticate(h.CloseDraft()))
	mux.HandleFunc("PUT /api/v1/session/draft", auth.Authenticate(h.UpdateDraft()))
	mux.HandleFunc("POST /api/v1/session/sync/retry", auth.Authenticate(h.RetrySync()))
	mux.HandleFunc("GET /api/v1/session/history", auth.Authenticate(h.History()))
}
