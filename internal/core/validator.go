package core

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"weatherview/internal/types"
)

const maxCityLength = 100

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validator wraps go-playground/validator with the service's custom tags:
//   - city: non-blank after trimming, at most 100 characters
//   - isodate: a YYYY-MM-DD calendar date
//   - is_timezone: an IANA zone name loadable by time.LoadLocation
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator and registers the custom tags. Field names
// in errors use the json tag when present.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "city", validateCity)
	mustRegister(v, "isodate", validateISODate)
	mustRegister(v, "is_timezone", validateTimezone)

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("registering validation " + tag + ": " + err.Error())
	}
}

// ValidateStruct validates s and returns a *types.AppError listing every
// failed field, or nil.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.logger.Error("validator misuse", "error", err)
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request could not be validated", err)
	}

	fields := make([]ValidationError, 0, len(verrs))
	code := types.ErrCodeValidationInvalidQuery
	for _, fe := range verrs {
		fields = append(fields, ValidationError{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: validationMessage(fe),
		})
		switch fe.Tag() {
		case "required":
			code = types.ErrCodeValidationMissingField
		case "city":
			if code != types.ErrCodeValidationMissingField {
				code = types.ErrCodeValidationBlankCity
			}
		case "isodate":
			if code == types.ErrCodeValidationInvalidQuery {
				code = types.ErrCodeValidationInvalidDate
			}
		}
	}

	return types.NewAppErrorWithDetails(code, fields[0].Message, err, map[string]any{
		"fields": fields,
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "city":
		return fe.Field() + " must be a non-blank city name of at most 100 characters"
	case "isodate":
		return fe.Field() + " must use the YYYY-MM-DD format"
	case "is_timezone":
		return fe.Field() + " must be an IANA time zone"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

func validateCity(fl validator.FieldLevel) bool {
	city := strings.TrimSpace(fl.Field().String())
	return city != "" && len([]rune(city)) <= maxCityLength
}

func validateISODate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func validateTimezone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.LoadLocation(value)
	return err == nil
}
