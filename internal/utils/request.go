package utils

import (
	"errors"
	"log/slog"
	"net/http"

	appErrors "github.com/aaravmahajanofficial/selfservice-widget/internal/errors"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		slog.Warn("Invalid request", slog.String("error", err.Error()))
		response.Error(w, appErrors.BadRequestError(err.Error()))
		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {
		slog.Warn("Validation failed", slog.String("error", err.Error()))

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
			return false
		}

		response.Error(w, appErrors.BadRequestError("invalid input data"))
		return false
	}

	return true

}
