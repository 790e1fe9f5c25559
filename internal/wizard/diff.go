package wizard

import (
	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils"
)

const (
	LabelSelection    = "Indirizzo di consegna - selezione"
	LabelDraftStreet  = "Nuovo indirizzo - Via"
	LabelDraftCity    = "Nuovo indirizzo - Citta"
	LabelDraftZip     = "Nuovo indirizzo - CAP"
	LabelDraftCountry = "Nuovo indirizzo - Paese"
	LabelContactEmail = "Contatto - Email"
	LabelContactPhone = "Contatto - Telefono"
)

func formatSelected(d models.EditableDetails) string {
	address := d.SelectedAddress()
	if address == nil {
		return "-"
	}

	return utils.FormatDeliveryAddress(address.Street, address.City, address.Zip, address.Country)
}

func draftComplete(d models.NewDeliveryAddress) bool {
	return utils.IsAddressComplete(d.Street, d.City, d.Zip, d.Country)
}

// ComputeDiff lists every editable field whose value differs between the two snapshots.
// The selection is compared by its formatted address, not by id. A complete draft that
// is not already part of before contributes its four sub-fields as additions.
func ComputeDiff(before, after models.EditableDetails) []models.EditableDiff {
	diff := []models.EditableDiff{}

	add := func(field, prev, next string) {
		if prev != next {
			diff = append(diff, models.EditableDiff{Field: field, Before: prev, After: next})
		}
	}

	add(LabelSelection, formatSelected(before), formatSelected(after))

	draft := after.NewDeliveryAddress
	if draftComplete(draft) && draft != before.NewDeliveryAddress {
		diff = append(diff,
			models.EditableDiff{Field: LabelDraftStreet, After: draft.Street},
			models.EditableDiff{Field: LabelDraftCity, After: draft.City},
			models.EditableDiff{Field: LabelDraftZip, After: draft.Zip},
			models.EditableDiff{Field: LabelDraftCountry, After: draft.Country},
		)
	}

	add(LabelContactEmail, before.ContactEmail, after.ContactEmail)
	add(LabelContactPhone, before.ContactPhone, after.ContactPhone)

	return diff
}
