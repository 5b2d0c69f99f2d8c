package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/election-service/internal/validator"
)

// Generic errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("resource conflict")
)

// Not found errors
var (
	ErrElectionNotFound  = errors.New("election not found")
	ErrPositionNotFound  = errors.New("position not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrSnapshotNotFound  = errors.New("result snapshot not found")
)

// Voting errors
var (
	ErrDuplicateVote     = errors.New("you have already voted for this position")
	ErrElectionClosed    = errors.New("election is not active")
	ErrCandidateMismatch = errors.New("candidate does not belong to this position")
)

// Uniqueness errors
var (
	ErrDuplicateTitle     = errors.New("election title already exists")
	ErrDuplicateStudentID = errors.New("candidate student id already exists")
	ErrDuplicatePosition  = errors.New("position name already exists in this election")
)

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    "business_logic",
	}
}

// BusinessRuleError reports a request that is well-formed but violates a domain rule
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}
