package validator

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/election-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates struct tags for any request or import row
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateElectionCreate validates election creation business rules
func (bv *BusinessValidator) ValidateElectionCreate(req *ElectionCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateElectionUpdate checks the update against the stored election so the
// resulting date range is still ordered.
func (bv *BusinessValidator) ValidateElectionUpdate(req *ElectionUpdateRequest, existing *models.Election) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	start, end := existing.StartDate, existing.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	errors = append(errors, ValidateDateRange(start, end)...)

	return errors
}

// ValidateDateRange requires the end date to be strictly after the start date
func ValidateDateRange(start, end time.Time) ValidationErrors {
	if end.After(start) {
		return nil
	}
	return ValidationErrors{{
		Field:   "end_date",
		Message: "must be after start_date",
		Value:   end,
		Rule:    "date_range",
	}}
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("election_status", func(fl validator.FieldLevel) bool {
		return models.ElectionStatus(fl.Field().String()).IsValid()
	})

	// Title validation (1-200 characters)
	bv.validate.RegisterValidation("election_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		n := utf8.RuneCountInString(title)
		return n >= 1 && n <= 200
	})

	bv.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
