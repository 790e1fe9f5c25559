package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/errors"
	"github.com/go-playground/validator/v10"
)

type APIResponse struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []string          `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// interface {} == any
func WriteJson(w http.ResponseWriter, statusCode int, data any) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data) //struct to json
}

func Success(w http.ResponseWriter, statusCode int, data any) {
	response := APIResponse{
		Success: true,
		Data:    data,
	}

	WriteJson(w, statusCode, response)
}

func Error(w http.ResponseWriter, err error) {

	var statusCode int
	var errorResponse *ErrorResponse

	if appErr, ok := errors.IsAppError(err); ok {
		statusCode = appErr.StatusCode
		errorResponse = &ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Fields:  appErr.Fields,
		}

		if appErr.Detail != "" {
			errorResponse.Details = []string{appErr.Detail}
		}

	} else {

		statusCode = http.StatusInternalServerError
		errorResponse = &ErrorResponse{
			Code:    errors.ErrCodeInternal,
			Message: "An unexpected error occured",
		}

	}

	response := APIResponse{
		Success: false,
		Error:   errorResponse,
	}

	WriteJson(w, statusCode, response)
}

// ValidationError reports validator failures per field, in the same shape the
// wizard uses for its own field errors.
func ValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {

	fields := make(map[string]string, len(errs))
	details := make([]string, 0, len(errs))

	for _, err := range errs {

		var message string

		switch err.Tag() {
		case "required":
			message = "Campo obbligatorio."
		case "email":
			message = "Email non valida."
		case "min":
			message = fmt.Sprintf("Inserisci almeno %s caratteri.", err.Param())
		case "max":
			message = fmt.Sprintf("Massimo %s caratteri.", err.Param())
		case "oneof":
			message = fmt.Sprintf("Valori ammessi: %s.", err.Param())
		default:
			message = "Valore non valido."
		}

		fields[err.Field()] = message
		details = append(details, err.Field()+": "+message)
	}

	WriteJson(w, http.StatusBadRequest, APIResponse{
		Success: false,
		Error: &ErrorResponse{
			Code:    errors.ErrCodeValidation,
			Message: "Dati non validi.",
			Details: details,
			Fields:  fields,
		},
	})
}
