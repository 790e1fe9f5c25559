package wizard

import (
	"fmt"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
)

// View is the render model of a session. The widget draws it without further logic.
type View struct {
	SessionID string           `json:"sessionId"`
	View      models.ViewState `json:"view"`
	Access    *AccessView      `json:"access,omitempty"`
	Loading   *LoadingView     `json:"loading,omitempty"`
	Data      *DataView        `json:"data,omitempty"`
}

type AccessView struct {
	Title    string            `json:"title"`
	Subtitle string            `json:"subtitle"`
	OrderID  string            `json:"orderId"`
	Email    string            `json:"email"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type LoadingView struct {
	Message string `json:"message"`
}

type DataView struct {
	Step     int                   `json:"step"`
	Flow     models.FlowType       `json:"flow,omitempty"`
	IsPaid   bool                  `json:"isPaid"`
	Editable bool                  `json:"editable"`
	Notice   string                `json:"notice,omitempty"`
	Order    OrderSummaryView      `json:"order"`
	Flows    []FlowChoice          `json:"flows,omitempty"`
	Shipping *AddressSelectionView `json:"shipping,omitempty"`
	Info     *ContactInfoView      `json:"info,omitempty"`
	Cancel   *CancelView           `json:"cancel,omitempty"`
	Review   *ReviewView           `json:"review,omitempty"`
}

type OrderSummaryView struct {
	Title    string        `json:"title"`
	Date     string        `json:"date"`
	State    string        `json:"state"`
	Products []ProductView `json:"products"`
	Invoices []InvoiceView `json:"invoices"`
	Empty    string        `json:"empty,omitempty"`
}

type ProductView struct {
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Options      []models.Option `json:"options,omitempty"`
	State        string          `json:"state"`
	Quantity     int             `json:"quantity"`
	ShippingDate string          `json:"shippingDate,omitempty"`
	TrackingURL  string          `json:"trackingUrl,omitempty"`
	DeliveryDate string          `json:"deliveryDate,omitempty"`
}

type InvoiceView struct {
	Number string `json:"number"`
	Date   string `json:"date"`
	State  string `json:"state"`
	URL    string `json:"url"`
}

type FlowChoice struct {
	Flow     models.FlowType `json:"flow"`
	Label    string          `json:"label"`
	Disabled bool            `json:"disabled"`
}

type AddressOption struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Selected bool   `json:"selected"`
}

type AddressSelectionView struct {
	Title      string                    `json:"title"`
	Helper     string                    `json:"helper"`
	Addresses  []AddressOption           `json:"addresses"`
	Loading    bool                      `json:"loading"`
	Error      string                    `json:"error,omitempty"`
	HelperText string                    `json:"helperText,omitempty"`
	DraftOpen  bool                      `json:"draftOpen"`
	Draft      models.NewDeliveryAddress `json:"draft"`
	CanReview  bool                      `json:"canReview"`
}

type ContactInfoView struct {
	Title     string `json:"title"`
	Helper    string `json:"helper"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CanReview bool   `json:"canReview"`
}

type CancelView struct {
	Title     string `json:"title"`
	Helper    string `json:"helper"`
	Label     string `json:"label"`
	Confirmed bool   `json:"confirmed"`
	CanReview bool   `json:"canReview"`
}

type ReviewView struct {
	Title        string                `json:"title"`
	Helper       string                `json:"helper"`
	Status       models.ConfirmStatus  `json:"status"`
	SummaryTitle string                `json:"summaryTitle,omitempty"`
	Lines        []string              `json:"lines,omitempty"`
	Message      string                `json:"message,omitempty"`
	Detail       string                `json:"detail,omitempty"`
	SyncNotice   string                `json:"syncNotice,omitempty"`
	SyncError    string                `json:"syncError,omitempty"`
	CanRetrySync bool                  `json:"canRetrySync"`
	Diff         []models.EditableDiff `json:"diff,omitempty"`
}

func RenderAccess(orderID, email string, errs map[string]string) *AccessView {
	return &AccessView{
		Title:    "Accesso spedizione",
		Subtitle: "Inserisci ordine ed email per recuperare i dati.",
		OrderID:  orderID,
		Email:    email,
		Errors:   errs,
	}
}

func RenderLoading() *LoadingView {
	return &LoadingView{Message: "Stiamo recuperando i dati dell'ordine..."}
}

func RenderOrderSummary(order *models.Order) OrderSummaryView {
	view := OrderSummaryView{
		Title:    "Riepilogo ordine",
		Date:     utils.FormatDate(order.DateOrder),
		State:    utils.FormatStateLabel(order.State),
		Products: make([]ProductView, 0, len(order.Products)),
		Invoices: make([]InvoiceView, 0, len(order.Invoices)),
	}

	for _, p := range order.Products {
		pv := ProductView{
			Name:        p.Name,
			Brand:       p.Brand,
			Options:     p.Options,
			State:       utils.FormatStateLabel(p.State),
			Quantity:    p.Quantity,
			TrackingURL: p.ShippingTrackingURL,
		}
		if p.ShippingDate != "" {
			pv.ShippingDate = utils.FormatDateTime(p.ShippingDate)
		}
		if p.DeliveryDate != "" {
			pv.DeliveryDate = utils.FormatDate(p.DeliveryDate)
		}
		view.Products = append(view.Products, pv)
	}

	if len(view.Products) == 0 {
		view.Empty = "Nessun prodotto disponibile."
	}

	for _, inv := range order.Invoices {
		view.Invoices = append(view.Invoices, InvoiceView{
			Number: inv.Number,
			Date:   utils.FormatDate(inv.Date),
			State:  utils.FormatStateLabel(inv.State),
			URL:    inv.URL,
		})
	}

	return view
}

func RenderFlowChoices(editable bool) []FlowChoice {
	return []FlowChoice{
		{Flow: models.FlowShipping, Label: "Modifica indirizzo di consegna", Disabled: !editable},
		{Flow: models.FlowInfo, Label: "Aggiorna i contatti", Disabled: !editable},
		{Flow: models.FlowCancel, Label: "Richiedi la cancellazione", Disabled: !editable},
	}
}

func RenderAddressSelection(details models.EditableDetails, draftOpen, loading bool, errMessage string) *AddressSelectionView {
	view := &AddressSelectionView{
		Title:     "Indirizzo di consegna",
		Helper:    "Scegli un indirizzo salvato oppure aggiungine uno nuovo.",
		Addresses: make([]AddressOption, 0, len(details.DeliveryAddresses)),
		Loading:   loading,
		Error:     errMessage,
		DraftOpen: draftOpen,
		Draft:     details.NewDeliveryAddress,
	}

	for _, a := range details.DeliveryAddresses {
		view.Addresses = append(view.Addresses, AddressOption{
			ID:       a.ID,
			Title:    a.Street,
			Detail:   fmt.Sprintf("%s %s, %s", a.City, a.Zip, a.Country),
			Selected: a.ID == details.SelectedDeliveryID,
		})
	}

	switch {
	case loading:
		view.HelperText = "Stiamo caricando gli indirizzi..."
	case details.SelectedAddress() == nil && !draftOpen:
		view.HelperText = "Seleziona un indirizzo per continuare"
	}

	return view
}

func RenderContactInfo(details models.EditableDetails) *ContactInfoView {
	return &ContactInfoView{
		Title:  "Informazioni di contatto",
		Helper: "Aggiorna i riferimenti di contatto associati all'ordine.",
		Email:  details.ContactEmail,
		Phone:  details.ContactPhone,
	}
}

func RenderCancel(confirmed bool) *CancelView {
	return &CancelView{
		Title:     "Cancellazione ordine",
		Helper:    "La richiesta annulla l'ordine e invia una conferma via email.",
		Label:     "Confermo di voler cancellare l'ordine.",
		Confirmed: confirmed,
	}
}

// ReviewInput gathers what the review step needs to render.
type ReviewInput struct {
	Flow       models.FlowType
	Status     models.ConfirmStatus
	Current    models.EditableDetails
	DraftOpen  bool
	Diff       []models.EditableDiff
	Failure    string
	SyncStatus addressapi.SyncStatus
	SyncError  string
}

func RenderReview(in ReviewInput) *ReviewView {
	view := &ReviewView{
		Title:  "Rivedi e conferma",
		Helper: "Controlla i dettagli prima di inviare la richiesta.",
		Status: in.Status,
	}

	switch in.Status {
	case models.ConfirmIdle:
		renderReviewSummary(view, in)
	case models.ConfirmLoading:
		view.Message = "Stiamo aggiornando i dati..."
	case models.ConfirmError:
		view.Message = "Operazione non riuscita"
		view.Detail = "Riprova tra qualche istante."
		if in.Failure != "" {
			view.Detail = in.Failure
		}
	case models.ConfirmSuccess:
		view.Message = "Modifica salvata"
		view.Detail = "Abbiamo registrato la tua richiesta."
		view.Diff = in.Diff

		switch in.SyncStatus {
		case addressapi.SyncSyncing, addressapi.SyncPending:
			view.SyncNotice = "La sincronizzazione e' in corso."
		case addressapi.SyncFailed:
			view.SyncError = in.SyncError
			view.CanRetrySync = true
		}
	}

	return view
}

func renderReviewSummary(view *ReviewView, in ReviewInput) {
	switch in.Flow {
	case models.FlowShipping:
		view.SummaryTitle = "Nuovo indirizzo di consegna"

		var street, city, zip, country string
		if draft := in.Current.NewDeliveryAddress; in.DraftOpen && draftComplete(draft) {
			street, city, zip, country = draft.Street, draft.City, draft.Zip, draft.Country
		} else if selected := in.Current.SelectedAddress(); selected != nil {
			street, city, zip, country = selected.Street, selected.City, selected.Zip, selected.Country
		} else {
			view.Message = "Nessun indirizzo selezionato."
			return
		}

		view.Lines = []string{street, city + " " + zip, country}
	case models.FlowInfo:
		view.SummaryTitle = "Nuovi contatti"
		view.Lines = []string{orDash(in.Current.ContactEmail), orDash(in.Current.ContactPhone)}
	case models.FlowCancel:
		view.SummaryTitle = "Richiesta cancellazione"
		view.Lines = []string{"La richiesta verra' verificata e riceverai un'email di conferma."}
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

// View renders the current state of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := View{SessionID: s.id.String(), View: s.view}

	switch s.view {
	case models.ViewAccess:
		out.Access = RenderAccess(s.orderID, s.email, s.accessErrors)
	case models.ViewLoading:
		out.Loading = RenderLoading()
	case models.ViewData:
		out.Data = s.renderData()
	}

	return out
}

// caller holds s.mu
func (s *Session) renderData() *DataView {
	editable := s.editable()

	data := &DataView{
		Step:     s.step,
		Flow:     s.flow,
		IsPaid:   s.isPaid,
		Editable: editable,
		Order:    RenderOrderSummary(s.order),
	}

	if !editable {
		data.Notice = "L'ordine non puo' essere modificato."
	}

	switch s.step {
	case 1:
		data.Flows = RenderFlowChoices(editable)
	case 2:
		switch s.flow {
		case models.FlowShipping:
			data.Shipping = RenderAddressSelection(s.current, s.draftOpen, s.book.Loading(), s.book.ErrorMessage())
			data.Shipping.CanReview = s.ready()
		case models.FlowInfo:
			data.Info = RenderContactInfo(s.current)
			data.Info.CanReview = s.ready()
		case models.FlowCancel:
			data.Cancel = RenderCancel(s.cancelConfirmed)
			data.Cancel.CanReview = s.ready()
		}
	case 3:
		data.Review = RenderReview(ReviewInput{
			Flow:       s.flow,
			Status:     s.status,
			Current:    s.current,
			DraftOpen:  s.draftOpen,
			Diff:       s.diff,
			Failure:    s.failure,
			SyncStatus: s.book.SyncStatus(),
			SyncError:  s.book.SyncErrorMessage(),
		})
	}

	return data
}
