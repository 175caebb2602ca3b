package employeeerrors

import (
	"go-employee/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	// Duplicates are reported as 400, which is what API clients already handle.
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee ID already exists",
		http.StatusBadRequest,
	)
	ErrInvalidJoiningDate = apperror.New(
		apperror.CodeValidation,
		"Joining Date must be an ISO-8601 date or date-time",
		http.StatusBadRequest,
	)
	ErrEmptyUpdate = apperror.New(
		apperror.CodeValidation,
		"At least one field must be provided",
		http.StatusBadRequest,
	)
	ErrMissingSkills = apperror.New(
		apperror.CodeValidation,
		"At least one skill is required",
		http.StatusBadRequest,
	)
	ErrDocumentRejected = apperror.New(
		apperror.CodeInvalidInput,
		"Employee document failed store validation",
		http.StatusBadRequest,
	)
)
