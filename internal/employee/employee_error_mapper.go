package employee

import (
	"errors"

	employeeerrors "go-employee/internal/employee/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// documentValidationFailure is returned when an insert or update violates
// the collection $jsonSchema validator.
const documentValidationFailure = 121

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return employeeerrors.ErrEmployeeNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == documentValidationFailure {
				return employeeerrors.ErrDocumentRejected
			}
		}
	}

	return err
}
